package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fachwerk-hq/fachwerk/internal/domain/identity"
	"github.com/fachwerk-hq/fachwerk/internal/domain/marketplace"
	"github.com/fachwerk-hq/fachwerk/internal/domain/marketplace/events"
	vo "github.com/fachwerk-hq/fachwerk/internal/domain/marketplace/valueobjects"
	"github.com/fachwerk-hq/fachwerk/internal/shared/errors"
)

func (h *harness) issue(t *testing.T, requestID string) *OrderResult {
	t.Helper()
	res, err := h.issueOrder.Execute(context.Background(), IssueOrderCommand{
		Caller:    ownerP,
		RequestID: requestID,
		Terms: marketplace.OrderTerms{
			Title:         "Badsanierung komplett",
			NetCents:      100000,
			TaxRateBP:     1900,
			DiscountType:  vo.DiscountPercent,
			DiscountValue: 500,
		},
	})
	require.NoError(t, err)
	return res
}

func TestIssueOrderUseCase_Execute_ComputesTotals(t *testing.T) {
	h := newHarness(t)
	requestID, convID := h.engaged(t)

	res := h.issue(t, requestID)

	assert.Equal(t, vo.OrderStatusCreated.String(), res.Order.Status)
	assert.Equal(t, int64(5000), res.Order.DiscountCents)
	assert.Equal(t, int64(18050), res.Order.TaxCents)
	assert.Equal(t, int64(113050), res.Order.GrossCents)
	assert.Equal(t, int64(1), h.countEvents(t, convID, events.TypeOrderIssued))
}

func TestIssueOrderUseCase_Execute_OnlyAcceptedPartner(t *testing.T) {
	h := newHarness(t)
	requestID, _ := h.engaged(t)

	_, err := h.issueOrder.Execute(context.Background(), IssueOrderCommand{
		Caller:    ownerQ,
		RequestID: requestID,
		Terms:     marketplace.OrderTerms{Title: "Angebot", NetCents: 1000},
	})

	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeForbidden, errors.GetAppError(err).Type)
	assert.Empty(t, h.store.state.orders)
}

func TestIssueOrderUseCase_Execute_NoAcceptedPartner(t *testing.T) {
	h := newHarness(t)
	requestID := h.newRequest(t)
	h.apply(t, requestID, ownerP, partnerP)

	_, err := h.issueOrder.Execute(context.Background(), IssueOrderCommand{
		Caller:    ownerP,
		RequestID: requestID,
		Terms:     marketplace.OrderTerms{Title: "Angebot", NetCents: 1000},
	})

	require.Error(t, err)
	assert.True(t, errors.HasReason(err, errors.ReasonInvalidTransition))
}

func TestDecideOrderUseCase_Decline_IsIdempotent(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	requestID, convID := h.engaged(t)
	order := h.issue(t, requestID)

	first, err := h.decideOrder.Execute(ctx, DecideOrderCommand{Caller: consumer, OrderID: order.Order.ID, Action: OrderActionDecline})
	require.NoError(t, err)
	second, err := h.decideOrder.Execute(ctx, DecideOrderCommand{Caller: consumer, OrderID: order.Order.ID, Action: OrderActionDecline})
	require.NoError(t, err)

	assert.True(t, first.Changed)
	assert.False(t, second.Changed)
	assert.Equal(t, vo.OrderStatusDeclined.String(), first.Order.Status)
	assert.Equal(t, first.Order.Status, second.Order.Status)
	assert.Equal(t, vo.RequestStatusOrderDeclined, h.requestStatus(t, requestID))
	assert.Equal(t, int64(1), h.countEvents(t, convID, events.TypeOrderDeclined))
}

func TestDecideOrderUseCase_Decline_ConcurrentRepeatIsSuccess(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	requestID, _ := h.engaged(t)
	order := h.issue(t, requestID)

	// Another decline commits between this call's read and its write.
	h.store.UpdateOrderFunc = func(ctx context.Context, o *marketplace.Order, from vo.OrderStatus) error {
		h.store.UpdateOrderFunc = nil
		h.store.AfterRollbackFunc = func() {
			stored, err := h.orders.GetByID(ctx, o.ID())
			require.NoError(t, err)
			_, err = stored.Decline()
			require.NoError(t, err)
			require.NoError(t, h.orders.UpdateStatus(ctx, stored, from))
		}
		return errors.NewVersionConflictError("order")
	}

	res, err := h.decideOrder.Execute(ctx, DecideOrderCommand{Caller: consumer, OrderID: order.Order.ID, Action: OrderActionDecline})

	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Equal(t, vo.OrderStatusDeclined.String(), res.Order.Status)
}

func TestDecideOrderUseCase_TerminalStates(t *testing.T) {
	tests := []struct {
		name   string
		first  OrderAction
		second OrderAction
	}{
		{"accept then decline", OrderActionAccept, OrderActionDecline},
		{"accept twice", OrderActionAccept, OrderActionAccept},
		{"decline then accept", OrderActionDecline, OrderActionAccept},
		{"cancel then accept", OrderActionCancel, OrderActionAccept},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			ctx := context.Background()
			requestID, _ := h.engaged(t)
			order := h.issue(t, requestID)

			_, err := h.decideOrder.Execute(ctx, DecideOrderCommand{Caller: actorFor(tt.first), OrderID: order.Order.ID, Action: tt.first})
			require.NoError(t, err)

			_, err = h.decideOrder.Execute(ctx, DecideOrderCommand{Caller: actorFor(tt.second), OrderID: order.Order.ID, Action: tt.second})
			require.Error(t, err)
			assert.True(t, errors.HasReason(err, errors.ReasonOrderTerminal))
		})
	}
}

func TestDecideOrderUseCase_Accept_UpdatesRequest(t *testing.T) {
	h := newHarness(t)
	requestID, convID := h.engaged(t)
	order := h.issue(t, requestID)

	res, err := h.decideOrder.Execute(context.Background(), DecideOrderCommand{Caller: consumer, OrderID: order.Order.ID, Action: OrderActionAccept})

	require.NoError(t, err)
	assert.Equal(t, vo.RequestStatusOrderAccepted.String(), res.Request.Status)
	assert.NotNil(t, res.Order.DecidedAt)
	assert.Equal(t, int64(1), h.countEvents(t, convID, events.TypeOrderAccepted))
}

func TestDecideOrderUseCase_Accept_CancelsOtherOpenOrders(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	requestID, convID := h.engaged(t)
	first := h.issue(t, requestID)
	second := h.issue(t, requestID)

	_, err := h.decideOrder.Execute(ctx, DecideOrderCommand{Caller: consumer, OrderID: first.Order.ID, Action: OrderActionAccept})
	require.NoError(t, err)

	stored, err := h.orders.GetByID(ctx, second.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, vo.OrderStatusCanceled, stored.Status())
	assert.Equal(t, int64(1), h.countEvents(t, convID, events.TypeOrderCanceled))

	open, err := h.orders.ListOpenByRequest(ctx, requestID)
	require.NoError(t, err)
	assert.Empty(t, open)

	// the superseded order answers a late decline as already decided
	_, err = h.decideOrder.Execute(ctx, DecideOrderCommand{Caller: consumer, OrderID: second.Order.ID, Action: OrderActionDecline})
	require.Error(t, err)
	assert.True(t, errors.HasReason(err, errors.ReasonOrderTerminal))
	assert.Equal(t, vo.RequestStatusOrderAccepted, h.requestStatus(t, requestID))
}

func TestDecideOrderUseCase_Decline_KeepsAcceptedRequest(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	requestID, convID := h.engaged(t)
	first := h.issue(t, requestID)
	second := h.issue(t, requestID)

	_, err := h.decideOrder.Execute(ctx, DecideOrderCommand{Caller: consumer, OrderID: first.Order.ID, Action: OrderActionAccept})
	require.NoError(t, err)

	// an order left open by an older writer is still declinable
	stale, err := h.orders.GetByID(ctx, second.Order.ID)
	require.NoError(t, err)
	reopened, err := marketplace.ReconstructOrder(stale.ID(), stale.RequestID(), stale.ConversationID(), stale.PartnerID(),
		stale.IssuedBy(), stale.Terms(), stale.Totals(), vo.OrderStatusCreated, stale.CreatedAt(), stale.UpdatedAt(), nil)
	require.NoError(t, err)
	require.NoError(t, h.orders.UpdateStatus(ctx, reopened, vo.OrderStatusCanceled))

	res, err := h.decideOrder.Execute(ctx, DecideOrderCommand{Caller: consumer, OrderID: second.Order.ID, Action: OrderActionDecline})

	require.NoError(t, err)
	assert.Equal(t, vo.OrderStatusDeclined.String(), res.Order.Status)
	assert.Equal(t, vo.RequestStatusOrderAccepted.String(), res.Request.Status)
	assert.Equal(t, int64(1), h.countEvents(t, convID, events.TypeOrderDeclined))
}

func TestDecideOrderUseCase_Decline_WhileProblemReported(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	requestID, convID := h.engaged(t)
	order := h.issue(t, requestID)
	report := NewReportProblemUseCase(h.store, h.requests, h.applications, h.conversations, h.messages, 5, h.observer, testLogger())
	_, err := report.Execute(ctx, ReportProblemCommand{Caller: consumer, RequestID: requestID, Note: "Angebot unklar"})
	require.NoError(t, err)

	res, err := h.decideOrder.Execute(ctx, DecideOrderCommand{Caller: consumer, OrderID: order.Order.ID, Action: OrderActionDecline})

	require.NoError(t, err)
	assert.Equal(t, vo.OrderStatusDeclined.String(), res.Order.Status)
	assert.Equal(t, vo.RequestStatusProblem, h.requestStatus(t, requestID))
	assert.Equal(t, int64(1), h.countEvents(t, convID, events.TypeOrderDeclined))
}

func TestDecideOrderUseCase_Authorization(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	requestID, _ := h.engaged(t)
	order := h.issue(t, requestID)

	_, err := h.decideOrder.Execute(ctx, DecideOrderCommand{Caller: ownerP, OrderID: order.Order.ID, Action: OrderActionDecline})
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeForbidden, errors.GetAppError(err).Type)

	_, err = h.decideOrder.Execute(ctx, DecideOrderCommand{Caller: ownerR, OrderID: order.Order.ID, Action: OrderActionDecline})
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeNotFound, errors.GetAppError(err).Type)

	_, err = h.decideOrder.Execute(ctx, DecideOrderCommand{Caller: consumer, OrderID: order.Order.ID, Action: OrderActionCancel})
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeForbidden, errors.GetAppError(err).Type)
}

func TestGetOrderUseCase_HidesFromOutsiders(t *testing.T) {
	h := newHarness(t)
	requestID, _ := h.engaged(t)
	order := h.issue(t, requestID)
	uc := NewGetOrderUseCase(h.orders, h.conversations, testReader(), testLogger())

	res, err := uc.Execute(context.Background(), GetOrderQuery{Caller: consumer, OrderID: order.Order.ID})
	require.NoError(t, err)
	assert.Equal(t, order.Order.ID, res.Order.ID)

	_, err = uc.Execute(context.Background(), GetOrderQuery{Caller: ownerQ, OrderID: order.Order.ID})
	require.Error(t, err)
	assert.True(t, errors.IsNotFoundError(err))
}

func actorFor(a OrderAction) identity.Caller {
	if a == OrderActionCancel {
		return ownerP
	}
	return consumer
}
