package pipeline

import (
	"context"
	"sync"
	"testing"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestLatest(t *testing.T) {
	var l Latest
	parent := context.Background()

	ctx1, t1 := l.Start(parent)
	ctx2, t2 := l.Start(parent)

	if ctx1.Err() == nil {
		t.Error("starting a new run should cancel the previous one")
	}
	if ctx2.Err() != nil {
		t.Error("newest run should not be canceled")
	}
	if l.Finish(t1) {
		t.Error("stale ticket reported current")
	}
	if !l.Finish(t2) {
		t.Error("newest ticket reported stale")
	}
	if ctx2.Err() == nil {
		t.Error("Finish should release the run's context")
	}

	_, t3 := l.Start(parent)
	l.Stop()
	if l.Finish(t3) {
		t.Error("ticket still current after Stop")
	}
}

func TestLatestConcurrent(t *testing.T) {
	var l Latest
	var wg sync.WaitGroup
	accepted := make(chan uint64, 32)

	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx, ticket := l.Start(context.Background())
			<-ctx.Done()
			if l.Finish(ticket) {
				accepted <- ticket
			}
		}()
	}
	// The last run is never canceled by a successor; Stop releases it.
	for {
		l.mu.Lock()
		n := l.issued
		l.mu.Unlock()
		if n == 32 {
			break
		}
	}
	l.Stop()
	wg.Wait()
	close(accepted)

	if n := len(accepted); n != 0 {
		t.Errorf("%d runs accepted after Stop, want 0", n)
	}
}
