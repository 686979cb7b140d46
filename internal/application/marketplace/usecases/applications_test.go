package usecases

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fachwerk-hq/fachwerk/internal/domain/identity"
	"github.com/fachwerk-hq/fachwerk/internal/domain/marketplace"
	"github.com/fachwerk-hq/fachwerk/internal/domain/marketplace/events"
	vo "github.com/fachwerk-hq/fachwerk/internal/domain/marketplace/valueobjects"
	"github.com/fachwerk-hq/fachwerk/internal/shared/errors"
)

func TestSubmitApplicationUseCase_Execute_Success(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	requestID := h.newRequest(t)

	res, err := h.submitApplication.Execute(ctx, SubmitApplicationCommand{
		Caller:    ownerP,
		RequestID: requestID,
		PartnerID: partnerP,
		Message:   "**Termin** nächste Woche möglich",
	})

	require.NoError(t, err)
	assert.Equal(t, vo.ApplicationStatusSubmitted.String(), res.Application.Status)
	assert.Equal(t, "<p>**Termin** nächste Woche möglich</p>", res.Application.MessageHTML)
	assert.NotEmpty(t, res.ConversationID)

	req, err := h.requests.GetByID(ctx, requestID)
	require.NoError(t, err)
	assert.Equal(t, 1, req.ApplicationCount())

	conv, err := h.conversations.FindByRequestAndPartner(ctx, requestID, partnerP)
	require.NoError(t, err)
	assert.Equal(t, res.ConversationID, conv.ID())
	assert.Equal(t, consumerID, conv.ConsumerID())
}

func TestSubmitApplicationUseCase_Execute_Rejections(t *testing.T) {
	tests := []struct {
		name       string
		prepare    func(t *testing.T, h *harness) string
		caller     identity.Caller
		partnerID  string
		wantType   errors.ErrorType
		wantReason string
	}{
		{
			name:      "anonymous",
			prepare:   func(t *testing.T, h *harness) string { return h.newRequest(t) },
			caller:    identity.Anonymous(),
			partnerID: partnerP,
			wantType:  errors.ErrorTypeUnauthorized,
		},
		{
			name:      "caller does not own the partner",
			prepare:   func(t *testing.T, h *harness) string { return h.newRequest(t) },
			caller:    ownerQ,
			partnerID: partnerP,
			wantType:  errors.ErrorTypeForbidden,
		},
		{
			name: "second application by the same partner",
			prepare: func(t *testing.T, h *harness) string {
				id := h.newRequest(t)
				h.apply(t, id, ownerP, partnerP)
				return id
			},
			caller:     ownerP,
			partnerID:  partnerP,
			wantType:   errors.ErrorTypeConflict,
			wantReason: errors.ReasonAlreadyApplied,
		},
		{
			name: "repeat after acceptance still reports already applied",
			prepare: func(t *testing.T, h *harness) string {
				id, _ := h.engaged(t)
				return id
			},
			caller:     ownerQ,
			partnerID:  partnerQ,
			wantType:   errors.ErrorTypeConflict,
			wantReason: errors.ReasonAlreadyApplied,
		},
		{
			name: "newcomer after acceptance cannot see the request",
			prepare: func(t *testing.T, h *harness) string {
				id, _ := h.engaged(t)
				return id
			},
			caller:    ownerR,
			partnerID: partnerR,
			wantType:  errors.ErrorTypeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			requestID := tt.prepare(t, h)

			_, err := h.submitApplication.Execute(context.Background(), SubmitApplicationCommand{
				Caller:    tt.caller,
				RequestID: requestID,
				PartnerID: tt.partnerID,
			})

			require.Error(t, err)
			appErr := errors.GetAppError(err)
			require.NotNil(t, appErr)
			assert.Equal(t, tt.wantType, appErr.Type)
			if tt.wantReason != "" {
				assert.Equal(t, tt.wantReason, appErr.Reason)
			}
		})
	}
}

func TestDecideApplicationUseCase_Accept_DeclinesSiblings(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	requestID := h.newRequest(t)
	appP := h.apply(t, requestID, ownerP, partnerP)
	appQ := h.apply(t, requestID, ownerQ, partnerQ)
	appR := h.apply(t, requestID, ownerR, partnerR)

	res := h.accept(t, requestID, appP)

	assert.Equal(t, vo.ApplicationStatusAccepted.String(), res.Application.Status)
	assert.Equal(t, vo.RequestStatusActive.String(), res.Request.Status)
	assert.Equal(t, int64(2), res.DeclinedSiblings)

	for _, id := range []string{appQ, appR} {
		a, err := h.applications.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, vo.ApplicationStatusDeclined, a.Status(), id)
	}

	conv, err := h.conversations.FindByRequestAndPartner(ctx, requestID, partnerP)
	require.NoError(t, err)
	assert.Equal(t, conv.ID(), res.ConversationID)
	assert.Equal(t, int64(1), h.countEvents(t, conv.ID(), events.TypeApplicationAccepted))
	assert.Contains(t, h.observer.transitions, "request:new->active")
}

func TestDecideApplicationUseCase_Accept_SecondAcceptRejected(t *testing.T) {
	h := newHarness(t)
	requestID := h.newRequest(t)
	appP := h.apply(t, requestID, ownerP, partnerP)
	appQ := h.apply(t, requestID, ownerQ, partnerQ)
	h.accept(t, requestID, appP)

	_, err := h.decideApplication.Execute(context.Background(), DecideApplicationCommand{
		Caller:        consumer,
		RequestID:     requestID,
		ApplicationID: appQ,
		Decision:      DecisionAccept,
	})

	require.Error(t, err)
	assert.True(t, errors.HasReason(err, errors.ReasonAlreadyAccepted))
}

func TestDecideApplicationUseCase_Accept_ConcurrentExactlyOneWins(t *testing.T) {
	h := newHarness(t)
	requestID := h.newRequest(t)
	appIDs := []string{
		h.apply(t, requestID, ownerP, partnerP),
		h.apply(t, requestID, ownerQ, partnerQ),
		h.apply(t, requestID, ownerR, partnerR),
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		wins     int
		conflict int
	)
	for _, id := range appIDs {
		wg.Add(1)
		go func(applicationID string) {
			defer wg.Done()
			_, err := h.decideApplication.Execute(context.Background(), DecideApplicationCommand{
				Caller:        consumer,
				RequestID:     requestID,
				ApplicationID: applicationID,
				Decision:      DecisionAccept,
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				wins++
			} else if errors.IsConflictError(err) {
				conflict++
			}
		}(id)
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.Equal(t, 2, conflict)

	apps, err := h.applications.ListByRequest(context.Background(), requestID)
	require.NoError(t, err)
	accepted := 0
	for _, a := range apps {
		if a.Status() == vo.ApplicationStatusAccepted {
			accepted++
		} else {
			assert.Equal(t, vo.ApplicationStatusDeclined, a.Status())
		}
	}
	assert.Equal(t, 1, accepted)
}

func TestDecideApplicationUseCase_Accept_RollsBackOnLedgerFailure(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	requestID := h.newRequest(t)
	appP := h.apply(t, requestID, ownerP, partnerP)
	appQ := h.apply(t, requestID, ownerQ, partnerQ)

	h.store.AppendFunc = func(context.Context, *marketplace.Message) error {
		return assert.AnError
	}

	_, err := h.decideApplication.Execute(ctx, DecideApplicationCommand{
		Caller:        consumer,
		ApplicationID: appP,
		Decision:      DecisionAccept,
	})

	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeInternal, errors.GetAppError(err).Type)
	assert.Equal(t, vo.RequestStatusNew, h.requestStatus(t, requestID))
	for _, id := range []string{appP, appQ} {
		a, err := h.applications.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, vo.ApplicationStatusSubmitted, a.Status())
	}
}

func TestDecideApplicationUseCase_NonOwnerForbidden(t *testing.T) {
	h := newHarness(t)
	requestID := h.newRequest(t)
	appP := h.apply(t, requestID, ownerP, partnerP)

	_, err := h.decideApplication.Execute(context.Background(), DecideApplicationCommand{
		Caller:        ownerP,
		ApplicationID: appP,
		Decision:      DecisionAccept,
	})

	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeForbidden, errors.GetAppError(err).Type)
}

func TestDecideApplicationUseCase_Decline(t *testing.T) {
	h := newHarness(t)
	requestID := h.newRequest(t)
	appP := h.apply(t, requestID, ownerP, partnerP)

	res, err := h.decideApplication.Execute(context.Background(), DecideApplicationCommand{
		Caller:        consumer,
		ApplicationID: appP,
		Decision:      DecisionDecline,
	})

	require.NoError(t, err)
	assert.Equal(t, vo.ApplicationStatusDeclined.String(), res.Application.Status)
	assert.Equal(t, vo.RequestStatusNew, h.requestStatus(t, requestID))
	assert.Empty(t, res.ConversationID)
}

func TestListApplicationsUseCase_PartnerSeesOwnOnly(t *testing.T) {
	h := newHarness(t)
	requestID := h.newRequest(t)
	h.apply(t, requestID, ownerP, partnerP)
	h.apply(t, requestID, ownerQ, partnerQ)
	uc := NewListApplicationsUseCase(h.requests, h.applications, testReader(), testLogger())

	own, err := uc.Execute(context.Background(), ListApplicationsQuery{Caller: ownerQ, RequestID: requestID})
	require.NoError(t, err)
	require.Len(t, own.Applications, 1)
	assert.Equal(t, partnerQ, own.Applications[0].PartnerID)

	all, err := uc.Execute(context.Background(), ListApplicationsQuery{Caller: consumer, RequestID: requestID})
	require.NoError(t, err)
	assert.Len(t, all.Applications, 2)
}

// readCommittedTx gives each statement its own visibility, so writes committed
// by other transactions show up between a use case's reads and writes.
type readCommittedTx struct{}

func (readCommittedTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// applicationsWithHook runs onHasApplied before every HasApplied lookup.
// Submit's first lookup comes right after it read the request.
type applicationsWithHook struct {
	memApplications
	onHasApplied func()
}

func (r applicationsWithHook) HasApplied(ctx context.Context, requestID string, partnerIDs []string) (bool, error) {
	r.onHasApplied()
	return r.memApplications.HasApplied(ctx, requestID, partnerIDs)
}

func TestSubmitApplicationUseCase_Execute_AcceptCommitsMidSubmit(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	requestID := h.newRequest(t)
	appP := h.apply(t, requestID, ownerP, partnerP)

	var once sync.Once
	apps := applicationsWithHook{
		memApplications: h.applications,
		onHasApplied:    func() { once.Do(func() { h.accept(t, requestID, appP) }) },
	}
	late := NewSubmitApplicationUseCase(readCommittedTx{}, h.requests, apps, h.conversations, &mockRenderer{}, testLogger())

	_, err := late.Execute(ctx, SubmitApplicationCommand{
		Caller:    ownerQ,
		RequestID: requestID,
		PartnerID: partnerQ,
	})

	require.Error(t, err)
	assert.True(t, errors.HasReason(err, errors.ReasonInvalidTransition))

	stored, err := h.applications.ListByRequest(ctx, requestID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, vo.ApplicationStatusAccepted, stored[0].Status())

	req, err := h.requests.GetByID(ctx, requestID)
	require.NoError(t, err)
	assert.Equal(t, 1, req.ApplicationCount())
}
