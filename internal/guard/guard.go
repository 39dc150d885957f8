// Package guard debounces mutating actions: while a named action is in
// flight, a second invocation is rejected instead of queued. The guard
// releases on every exit path, including timeouts, so a failed destructive
// call never strands its trigger in a disabled state.
package guard

import (
	"errors"
	"sync"
)

var ErrInFlight = errors.New("action already in flight")

type Guard struct {
	mu   sync.Mutex
	busy map[string]struct{}
}

func New() *Guard {
	return &Guard{busy: make(map[string]struct{})}
}

func (g *Guard) Do(name string, fn func() error) error {
	g.mu.Lock()
	if _, inFlight := g.busy[name]; inFlight {
		g.mu.Unlock()
		return ErrInFlight
	}
	g.busy[name] = struct{}{}
	g.mu.Unlock()

	defer func() {
		g.mu.Lock()
		delete(g.busy, name)
		g.mu.Unlock()
	}()
	return fn()
}

func (g *Guard) InFlight(name string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, inFlight := g.busy[name]
	return inFlight
}
