package audit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu     sync.Mutex
	events []Event
	fail   bool
}

func (s *recordingSink) Deliver(_ context.Context, e Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("broker down")
	}
	s.events = append(s.events, e)
	return nil
}

func (s *recordingSink) Close() {}

func (s *recordingSink) delivered() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event(nil), s.events...)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWorkerDeliversEvents(t *testing.T) {
	sink := &recordingSink{}
	inbox := make(chan Event, 8)
	worker := NewWorker(sink, inbox, discardLogger())
	pub := NewPublisher(inbox, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()

	ev := NewEvent(KindDecisionFinalized)
	ev.ApplicationID = "APP-1"
	pub.Emit(ctx, ev)

	require.Eventually(t, func() bool {
		return len(sink.delivered()) == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	err := <-done
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "APP-1", sink.delivered()[0].ApplicationID)
}

func TestWorkerDrainsOnShutdown(t *testing.T) {
	sink := &recordingSink{}
	inbox := make(chan Event, 8)
	worker := NewWorker(sink, inbox, discardLogger())

	for i := 0; i < 5; i++ {
		inbox <- NewEvent(KindDecisionFinalized)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = worker.Run(ctx)

	assert.Len(t, sink.delivered(), 5, "buffered events must be drained before exit")
}

func TestWorkerSkipsFailedDeliveries(t *testing.T) {
	sink := &recordingSink{fail: true}
	inbox := make(chan Event, 1)
	worker := NewWorker(sink, inbox, discardLogger())

	inbox <- NewEvent(KindDecisionFinalized)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Must return despite the failing sink.
	err := worker.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPublisherDropsWhenFull(t *testing.T) {
	inbox := make(chan Event) // unbuffered and never read
	pub := NewPublisher(inbox, discardLogger())

	done := make(chan struct{})
	go func() {
		pub.Emit(context.Background(), NewEvent(KindDecisionFinalized))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Emit must never block the decision path")
	}
}

func TestNewEvent(t *testing.T) {
	ev := NewEvent(KindRegistrySwapped)
	assert.Equal(t, KindRegistrySwapped, ev.Kind)
	assert.False(t, ev.OccurredAt.IsZero())
	assert.NotEqual(t, ev.ID.String(), "00000000-0000-0000-0000-000000000000")
}
