package command

import (
	"sync"
	"sync/atomic"
)

// Gate is held while an interactive command is in flight. The dispatcher
// drops input lines while it is busy.
type Gate struct {
	busy atomic.Bool
}

// Acquire takes the gate. The returned release is safe to call more than
// once. ok is false if the gate is already held.
func (g *Gate) Acquire() (release func(), ok bool) {
	if !g.busy.CompareAndSwap(false, true) {
		return nil, false
	}
	var once sync.Once
	return func() {
		once.Do(func() { g.busy.Store(false) })
	}, true
}

// Busy reports whether an interactive command holds the gate.
func (g *Gate) Busy() bool {
	return g.busy.Load()
}
