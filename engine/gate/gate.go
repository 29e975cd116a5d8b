// Package gate defers work until something becomes ready asynchronously.
//
// A Gate is used for a screen's structural load and for the resource
// catalog: actions submitted before MarkReady are queued, and run once, in
// submission order, when it is called. Later submissions run immediately.
package gate

import "errors"

// Action is a unit of deferred work.
type Action func() error

type Gate struct {
	ready bool
	queue []Action
}

func New() *Gate { return &Gate{} }

// Ready reports whether MarkReady has been called.
func (g *Gate) Ready() bool { return g.ready }

// Pending returns the number of queued actions.
func (g *Gate) Pending() int { return len(g.queue) }

// Submit queues a while the gate is not ready and returns nil. Once ready,
// a runs immediately and its error is returned.
func (g *Gate) Submit(a Action) error {
	if a == nil {
		return nil
	}
	if !g.ready {
		g.queue = append(g.queue, a)
		return nil
	}
	return a()
}

// Discard drops every queued action without running it and returns how
// many were dropped. Actions of a drain already in progress still run.
func (g *Gate) Discard() int {
	n := len(g.queue)
	g.queue = nil
	return n
}

// MarkReady opens the gate and drains the queue in FIFO order. A failing
// action does not stop the drain; all failures are joined into the result.
// Calls after the first are no-ops.
func (g *Gate) MarkReady() error {
	if g.ready {
		return nil
	}
	g.ready = true
	q := g.queue
	g.queue = nil

	var errs []error
	for _, a := range q {
		if err := a(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
