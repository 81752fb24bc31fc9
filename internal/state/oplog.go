package state

import "sync"

// OpType names a replicated board mutation.
type OpType string

const (
	OpInsert OpType = "insert"
	OpDelete OpType = "delete"
	OpClear  OpType = "clear"
)

// Op is one replicated mutation. Lamport and Site order ops across
// peers; insert ops carry the full annotation so late joiners need no
// separate snapshot exchange.
type Op struct {
	Type       OpType      `json:"type"`
	Annotation *Annotation `json:"annotation,omitempty"`
	Target     string      `json:"target,omitempty"`
	Lamport    uint64      `json:"lamport"`
	Site       string      `json:"site"`
}

// clock is a Lamport logical clock.
type clock struct {
	mu      sync.Mutex
	counter uint64
}

func (c *clock) tick() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counter++
	return c.counter
}

// merge advances the clock past a timestamp observed from a peer.
func (c *clock) merge(remote uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if remote > c.counter {
		c.counter = remote
	}
}

// ApplyRemote merges an op received from a peer. Application is
// idempotent: an insert for an annotation we already hold is ignored,
// a delete for an unknown ID no-ops. Ops originating from this site
// are skipped; the local mutation already happened.
func (s *Store) ApplyRemote(op Op) {
	if op.Site == s.siteID {
		return
	}
	s.clock.merge(op.Lamport)

	s.mu.Lock()
	changed := false
	switch op.Type {
	case OpInsert:
		if op.Annotation != nil {
			if _, exists := s.index[op.Annotation.ID]; !exists {
				a := *op.Annotation
				s.addLocked(&a)
				changed = true
			}
		}
	case OpDelete:
		changed = s.removeLocked(op.Target)
	case OpClear:
		// A remote clear drops the shared annotations but leaves any
		// local in-flight gesture alone.
		changed = len(s.annotations) > 0
		s.annotations = nil
		s.index = make(map[string]*Annotation)
		s.selection = make(map[string]struct{})
		s.editingID = ""
	}
	s.mu.Unlock()

	if changed {
		s.log.Debug().Str("type", string(op.Type)).Str("site", op.Site).Msg("applied remote op")
		s.notify()
	}
}
