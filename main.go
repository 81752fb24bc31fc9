package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	inknet "inkboard/internal/net"
	"inkboard/internal/state"
	"inkboard/internal/ui"
)

const defaultPort = 8888

func main() {
	host := flag.Bool("host", false, "host a shared session on this machine")
	join := flag.String("join", "", "join a session at host:port")
	browse := flag.Bool("browse", false, "discover sessions on the local network and exit")
	port := flag.Int("port", defaultPort, "port to host the session on")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	level := zerolog.InfoLevel
	if *debug {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).
		With().Timestamp().Logger()

	if *browse {
		runBrowse(log)
		return
	}

	store := state.NewStore(log)
	shareLink := ""

	switch {
	case *host:
		hub := inknet.NewHub(store, log)
		if err := hub.Listen(*port); err != nil {
			log.Fatal().Err(err).Msg("failed to host session")
		}
		mdnsServer, err := inknet.Advertise(*port)
		if err != nil {
			log.Warn().Err(err).Msg("mdns advertisement unavailable")
		} else {
			defer mdnsServer.Shutdown()
		}
		ip, err := inknet.OutgoingIP()
		if err != nil {
			log.Warn().Err(err).Msg("could not determine share address")
			ip = "127.0.0.1"
		}
		shareLink = fmt.Sprintf("%s:%d", ip, *port)

	case *join != "":
		err := inknet.Join(*join, store, log, func(error) {
			log.Warn().Msg("session ended; continuing locally")
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to join session")
		}
		shareLink = *join
	}

	ui.RunApp(store, log, shareLink)
}

func runBrowse(log zerolog.Logger) {
	found := false
	err := inknet.Browse(func(addr string) {
		found = true
		fmt.Println(addr)
	})
	if err != nil {
		log.Fatal().Err(err).Msg("discovery failed")
	}
	if !found {
		log.Info().Msg("no sessions found")
	}
}
