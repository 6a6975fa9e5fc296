package pipeline

import (
	"context"
	"sync"
)

// Latest guards against stale results when layouts are re-run while the
// user keeps editing. Every run gets a ticket from Start; starting a run
// cancels the previous one, and only the newest ticket is reported current.
//
//	ctx, ticket := latest.Start(parent)
//	res, err := runner.Execute(ctx, doc, opts)
//	if !latest.Finish(ticket) {
//	    return // a newer run has started
//	}
type Latest struct {
	mu     sync.Mutex
	issued uint64
	cancel context.CancelFunc
}

// Start issues a new ticket and a context for the run. The context of the
// previous run, if still active, is canceled.
func (l *Latest) Start(parent context.Context) (context.Context, uint64) {
	ctx, cancel := context.WithCancel(parent)

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		l.cancel()
	}
	l.issued++
	l.cancel = cancel
	return ctx, l.issued
}

// Finish ends the run holding ticket and reports whether its result should
// be used, that is whether no newer run has started since.
func (l *Latest) Finish(ticket uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if ticket != l.issued {
		return false
	}
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	return true
}

// Stop cancels the active run, if any, and invalidates its ticket.
func (l *Latest) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.issued++
}
