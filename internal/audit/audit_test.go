package audit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"formflow/internal/platform/logger"
	"formflow/pkg/domain"
	"formflow/pkg/requestcontext"
)

type failingStore struct {
	mu    sync.Mutex
	calls int
}

func (f *failingStore) Append(context.Context, Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return errors.New("sink unavailable")
}

func TestPublisherStampsRequestMetadata(t *testing.T) {
	store := NewInMemoryStore()
	pub := NewPublisher(store)
	appID := domain.ApplicationID(uuid.New())
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	ctx := requestcontext.WithTime(context.Background(), now)
	ctx = requestcontext.WithRequestID(ctx, "req-42")
	ctx = requestcontext.WithApplicant(ctx, "applicant-7")

	require.NoError(t, pub.Emit(ctx, Event{Action: ActionAnswerSubmitted, ApplicationID: appID, Subject: "q-1"}))

	events, err := store.ListByApplication(ctx, appID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, now, events[0].Timestamp)
	assert.Equal(t, "req-42", events[0].RequestID)
	assert.Equal(t, "applicant-7", events[0].Actor)
}

func TestQueuedPublisherDoesNotBlock(t *testing.T) {
	queue := make(chan Event, 1)
	pub := NewQueuedPublisher(queue, WithLogger(logger.Discard()))
	ctx := context.Background()

	require.NoError(t, pub.Emit(ctx, Event{Action: ActionAnswerSubmitted}))
	assert.ErrorIs(t, pub.Emit(ctx, Event{Action: ActionAnswerSubmitted}), ErrQueueFull)
}

func TestWorkerDrainsQueue(t *testing.T) {
	queue := make(chan Event, 4)
	store := NewInMemoryStore()
	appID := domain.ApplicationID(uuid.New())
	pub := NewQueuedPublisher(queue)

	for _, action := range []Action{ActionAnswerSubmitted, ActionTaskStatusChanged} {
		require.NoError(t, pub.Emit(context.Background(), Event{Action: action, ApplicationID: appID}))
	}
	close(queue)

	require.NoError(t, NewWorker(store, queue, logger.Discard()).Run(context.Background()))

	events, err := store.ListByApplication(context.Background(), appID)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, ActionTaskStatusChanged, events[1].Action)
}

func TestWorkerKeepsGoingAfterAppendFailure(t *testing.T) {
	queue := make(chan Event, 2)
	queue <- Event{Action: ActionAnswerSubmitted}
	queue <- Event{Action: ActionAnswerRejected}
	close(queue)

	store := &failingStore{}
	require.NoError(t, NewWorker(store, queue, logger.Discard()).Run(context.Background()))
	assert.Equal(t, 2, store.calls)
}

func TestWorkerDrainsBufferedEventsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	appID := domain.ApplicationID(uuid.New())
	queue := make(chan Event, 2)
	queue <- Event{Action: ActionAnswerSubmitted, ApplicationID: appID}

	store := NewInMemoryStore()
	require.NoError(t, NewWorker(store, queue, nil).Run(ctx))

	events, err := store.ListByApplication(context.Background(), appID)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}
