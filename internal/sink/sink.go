// Package sink collects diagnostics emitted during a traversal.
package sink

import (
	"sync"

	tt "github.com/gnolang/plint/internal/types"
)

// Sink is an append-only collector of diagnostics. It is safe for
// concurrent use; Drain returns entries in the order their Add calls
// completed.
type Sink struct {
	mu    sync.Mutex
	items []tt.Diagnostic
}

func New() *Sink {
	return &Sink{}
}

func (s *Sink) Add(d tt.Diagnostic) {
	s.mu.Lock()
	s.items = append(s.items, d)
	s.mu.Unlock()
}

// Drain returns every diagnostic added so far and empties the sink.
func (s *Sink) Drain() []tt.Diagnostic {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.items
	s.items = nil
	if out == nil {
		return []tt.Diagnostic{}
	}
	return out
}

func (s *Sink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
