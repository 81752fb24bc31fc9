package net

import (
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"inkboard/internal/state"
)

// peer is one connected client. Writes are serialized per connection;
// the websocket layer allows a single concurrent writer.
type peer struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (p *peer) send(op state.Op) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.conn.WriteJSON(op)
}

// Hub is the host side of a session: it accepts websocket peers,
// replays the current board to joiners, and relays ops between the
// local store and every peer.
type Hub struct {
	store *state.Store
	log   zerolog.Logger

	mu    sync.RWMutex
	peers map[*peer]bool
}

// NewHub wires a hub to the store: every locally committed op is
// broadcast to all peers.
func NewHub(store *state.Store, log zerolog.Logger) *Hub {
	h := &Hub{
		store: store,
		log:   log,
		peers: make(map[*peer]bool),
	}
	store.OnLocalOp = func(op state.Op) {
		h.broadcast(op, nil)
	}
	return h
}

// Listen starts accepting peers on the given port. It returns once the
// listener is bound; serving continues in the background.
func (h *Hub) Listen(port int) error {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return fmt.Errorf("session listener: %w", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.handleWS)

	go func() {
		if err := http.Serve(listener, mux); err != nil {
			h.log.Error().Err(err).Msg("session server stopped")
		}
	}()
	h.log.Info().Int("port", port).Msg("hosting session")
	return nil
}

var upgrader = websocket.Upgrader{
	// Sessions are joined by LAN link or mdns discovery, not browsers.
	CheckOrigin: func(*http.Request) bool { return true },
}

func (h *Hub) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}
	p := &peer{conn: conn}

	h.mu.Lock()
	h.peers[p] = true
	h.mu.Unlock()
	h.log.Info().Str("peer", conn.RemoteAddr().String()).Msg("peer joined")

	// Replay the board so the joiner starts from the current state.
	for _, a := range h.store.Annotations() {
		ann := a
		if err := p.send(state.Op{Type: state.OpInsert, Annotation: &ann, Site: h.store.SiteID()}); err != nil {
			h.log.Error().Err(err).Msg("snapshot replay failed")
			break
		}
	}

	go h.readLoop(p)
}

func (h *Hub) readLoop(p *peer) {
	defer func() {
		h.mu.Lock()
		delete(h.peers, p)
		h.mu.Unlock()
		p.conn.Close()
		h.log.Info().Str("peer", p.conn.RemoteAddr().String()).Msg("peer left")
	}()

	for {
		var op state.Op
		if err := p.conn.ReadJSON(&op); err != nil {
			return
		}
		h.store.ApplyRemote(op)
		// Relay to the other peers; the sender already has it.
		h.broadcast(op, p)
	}
}

func (h *Hub) broadcast(op state.Op, exclude *peer) {
	h.mu.RLock()
	peers := make([]*peer, 0, len(h.peers))
	for p := range h.peers {
		if p != exclude {
			peers = append(peers, p)
		}
	}
	h.mu.RUnlock()

	for _, p := range peers {
		if err := p.send(op); err != nil {
			h.log.Error().Err(err).Str("peer", p.conn.RemoteAddr().String()).Msg("broadcast failed")
		}
	}
}

// Join connects to a hosted session as a client. Local ops are sent to
// the host; ops from the host feed the store. Join returns once the
// connection is established; the read loop runs in the background and
// onClose fires when the connection drops.
func Join(addr string, store *state.Store, log zerolog.Logger, onClose func(error)) error {
	url := fmt.Sprintf("ws://%s/ws", addr)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return fmt.Errorf("join session %s: %w", addr, err)
	}
	p := &peer{conn: conn}

	store.OnLocalOp = func(op state.Op) {
		if err := p.send(op); err != nil {
			log.Error().Err(err).Msg("send failed")
		}
	}

	go func() {
		defer conn.Close()
		for {
			var op state.Op
			if err := conn.ReadJSON(&op); err != nil {
				log.Warn().Err(err).Msg("disconnected from host")
				if onClose != nil {
					onClose(err)
				}
				return
			}
			store.ApplyRemote(op)
		}
	}()

	log.Info().Str("addr", addr).Msg("joined session")
	return nil
}
