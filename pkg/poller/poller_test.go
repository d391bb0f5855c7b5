package poller

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"crawl-mgmt-go/pkg/actions"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingLister struct {
	calls atomic.Int32
	err   error
}

func (l *countingLister) ListCrawls(context.Context) actions.Result {
	l.calls.Add(1)
	return actions.Result{Dispatched: true, Err: l.err}
}

func TestRunPollsUntilCancelled(t *testing.T) {
	lister := &countingLister{}
	p := New(lister, 10*time.Millisecond, nil)

	var ticks atomic.Int32
	p.OnTick = func(actions.Result) { ticks.Add(1) }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	require.Eventually(t, func() bool { return lister.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Equal(t, lister.calls.Load(), ticks.Load())
}

func TestRunContinuesAfterFailure(t *testing.T) {
	lister := &countingLister{err: errors.New("backend down")}
	p := New(lister, 5*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = p.Run(ctx) }()

	require.Eventually(t, func() bool { return lister.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
}

func TestNewDefaultsInterval(t *testing.T) {
	p := New(&countingLister{}, 0, nil)
	assert.Equal(t, 5*time.Second, p.interval)
}
