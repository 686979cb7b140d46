package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fachwerk-hq/fachwerk/internal/domain/marketplace"
	domainevents "github.com/fachwerk-hq/fachwerk/internal/domain/shared/events"
)

func TestRelayOutboxUseCase_Execute_MarksDelivered(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	requestID, _ := h.engaged(t)
	_, err := h.sendMessage.Execute(ctx, SendMessageCommand{Caller: consumer, RequestID: requestID, Text: "Hallo"})
	require.NoError(t, err)

	dispatcher := &mockDispatcher{}
	uc := NewRelayOutboxUseCase(h.messages, h.conversations, dispatcher, RelayPolicy{BatchSize: 10}, testLogger())

	res, err := uc.Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Dispatched)
	require.Len(t, dispatcher.dispatched, 2)
	delivery := dispatcher.dispatched[0].(marketplace.Delivery)
	assert.Equal(t, "application_accepted", delivery.GetEventType())
	assert.Equal(t, partnerP, delivery.Conversation.PartnerID())

	again, err := uc.Execute(ctx)
	require.NoError(t, err)
	assert.Zero(t, again.Dispatched)
}

func TestRelayOutboxUseCase_Execute_FailureHoldsBackConversation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	requestID, convP := h.engaged(t)
	_, err := h.sendMessage.Execute(ctx, SendMessageCommand{Caller: consumer, RequestID: requestID, Text: "eins"})
	require.NoError(t, err)
	_, err = h.sendMessage.Execute(ctx, SendMessageCommand{Caller: ownerQ, RequestID: requestID, Text: "zwei"})
	require.NoError(t, err)

	failed := false
	dispatcher := &mockDispatcher{DispatchFunc: func(_ context.Context, e domainevents.DomainEvent) error {
		if e.GetAggregateID() == convP && !failed {
			failed = true
			return assert.AnError
		}
		return nil
	}}
	uc := NewRelayOutboxUseCase(h.messages, h.conversations, dispatcher, RelayPolicy{BatchSize: 10}, testLogger())

	res, err := uc.Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 1, res.Deferred)
	assert.Equal(t, 1, res.Dispatched)

	// Nothing of P moves before its retry is due.
	res, err = uc.Execute(ctx)
	require.NoError(t, err)
	assert.Zero(t, res.Dispatched)
	assert.Zero(t, res.Failed)

	// Once due, the held entries are delivered in order.
	uc.now = func() time.Time { return time.Now().UTC().Add(time.Hour) }
	res, err = uc.Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Dispatched)
	require.Len(t, dispatcher.dispatched, 3)
	assert.Equal(t, "application_accepted", dispatcher.dispatched[1].GetEventType())
	assert.Equal(t, "chat_text", dispatcher.dispatched[2].GetEventType())
}

func TestRelayOutboxUseCase_Execute_ListError(t *testing.T) {
	h := newHarness(t)
	h.store.ListUndispatchedFunc = func(context.Context, time.Time, int) ([]*marketplace.Message, error) {
		return nil, assert.AnError
	}
	uc := NewRelayOutboxUseCase(h.messages, h.conversations, &mockDispatcher{}, RelayPolicy{}, testLogger())

	_, err := uc.Execute(context.Background())

	require.Error(t, err)
}

func TestRelayOutboxUseCase_Execute_PermanentFailureIsDeadLettered(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	requestID, convP := h.engaged(t)
	_, err := h.sendMessage.Execute(ctx, SendMessageCommand{Caller: consumer, RequestID: requestID, Text: "eins"})
	require.NoError(t, err)
	_, err = h.sendMessage.Execute(ctx, SendMessageCommand{Caller: ownerQ, RequestID: requestID, Text: "zwei"})
	require.NoError(t, err)
	_, err = h.sendMessage.Execute(ctx, SendMessageCommand{Caller: ownerQ, RequestID: requestID, Text: "drei"})
	require.NoError(t, err)

	// The bus always accepts; the mailer rejects the acceptance notice for good.
	published := make(map[string]int)
	others := 0
	dispatcher := domainevents.NewSyncDispatcher()
	require.NoError(t, dispatcher.Subscribe(domainevents.AllEvents, domainevents.HandlerFunc(
		func(_ context.Context, e domainevents.DomainEvent) error {
			if e.GetAggregateID() != convP {
				others++
			}
			published[e.GetAggregateID()+"/"+e.GetEventType()]++
			return nil
		})))
	require.NoError(t, dispatcher.Subscribe("application_accepted", domainevents.HandlerFunc(
		func(context.Context, domainevents.DomainEvent) error {
			return assert.AnError
		})))

	clock := time.Date(2026, 11, 3, 9, 0, 0, 0, time.UTC)
	uc := NewRelayOutboxUseCase(h.messages, h.conversations, dispatcher,
		RelayPolicy{BatchSize: 2, MaxAttempts: 3, RetryBase: time.Minute, RetryMax: time.Minute}, testLogger())
	uc.now = func() time.Time { return clock }

	res, err := uc.Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 1, res.Deferred)

	// The held conversation stays out of the batch, so Q is not starved.
	res, err = uc.Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Dispatched)
	assert.Equal(t, 2, others)

	deadLettered := 0
	for range 5 {
		clock = clock.Add(2 * time.Minute)
		res, err = uc.Execute(ctx)
		require.NoError(t, err)
		deadLettered += res.DeadLettered
	}

	assert.Equal(t, 1, deadLettered)
	assert.Equal(t, 3, published[convP+"/application_accepted"])
	assert.Equal(t, 1, published[convP+"/chat_text"])
	assert.Equal(t, 2, others)

	entries, err := h.messages.ListAfter(ctx, convP, marketplace.MessageCursor{}, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	state := entries[0].DispatchState()
	assert.Equal(t, 3, state.Attempts)
	assert.NotNil(t, state.DeadLetteredAt)
	assert.Nil(t, entries[0].DispatchedAt())
	assert.NotNil(t, entries[1].DispatchedAt())

	pending, err := h.messages.ListUndispatched(ctx, clock.Add(time.Hour), 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}
