package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fachwerk-hq/fachwerk/internal/domain/identity"
	"github.com/fachwerk-hq/fachwerk/internal/domain/marketplace"
	"github.com/fachwerk-hq/fachwerk/internal/domain/marketplace/events"
	vo "github.com/fachwerk-hq/fachwerk/internal/domain/marketplace/valueobjects"
)

const (
	consumerID = "user-consumer"
	partnerP   = "partner-p"
	partnerQ   = "partner-q"
	partnerR   = "partner-r"
)

var (
	consumer = identity.Consumer(consumerID)
	ownerP   = identity.PartnerOwner("user-p", []string{partnerP})
	ownerQ   = identity.PartnerOwner("user-q", []string{partnerQ})
	ownerR   = identity.PartnerOwner("user-r", []string{partnerR})
	admin    = identity.Admin("user-admin")
)

type harness struct {
	store    *memStore
	observer *mockObserver

	requests      memRequests
	applications  memApplications
	conversations memConversations
	messages      memMessages
	appointments  memAppointments
	orders        memOrders
	ratings       memRatings

	createRequest     *CreateRequestUseCase
	submitApplication *SubmitApplicationUseCase
	decideApplication *DecideApplicationUseCase
	propose           *ProposeAppointmentUseCase
	respond           *RespondAppointmentUseCase
	issueOrder        *IssueOrderUseCase
	decideOrder       *DecideOrderUseCase
	submitRating      *SubmitRatingUseCase
	sendMessage       *SendMessageUseCase
	listMessages      *ListMessagesUseCase
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	s := newMemStore()
	h := &harness{
		store:         s,
		observer:      &mockObserver{},
		requests:      memRequests{s},
		applications:  memApplications{s},
		conversations: memConversations{s},
		messages:      memMessages{s},
		appointments:  memAppointments{s},
		orders:        memOrders{s},
		ratings:       memRatings{s},
	}
	log := testLogger()
	renderer := &mockRenderer{}

	h.createRequest = NewCreateRequestUseCase(h.requests, log)
	h.submitApplication = NewSubmitApplicationUseCase(s, h.requests, h.applications, h.conversations, renderer, log)
	h.decideApplication = NewDecideApplicationUseCase(s, h.requests, h.applications, h.conversations, h.messages, h.observer, log)
	h.propose = NewProposeAppointmentUseCase(s, h.requests, h.applications, h.conversations, h.appointments, h.messages, h.observer, log)
	h.respond = NewRespondAppointmentUseCase(s, h.requests, h.appointments, h.messages, h.observer, log)
	h.issueOrder = NewIssueOrderUseCase(s, h.requests, h.applications, h.conversations, h.orders, h.messages, log)
	h.decideOrder = NewDecideOrderUseCase(s, h.requests, h.orders, h.messages, h.observer, log)
	h.submitRating = NewSubmitRatingUseCase(s, h.requests, h.applications, h.conversations, h.ratings, h.messages,
		marketplace.RatingScale{Min: 0, Max: 10}, log)
	h.sendMessage = NewSendMessageUseCase(h.requests, h.applications, h.conversations, h.messages, renderer, log)
	h.listMessages = NewListMessagesUseCase(h.requests, h.applications, h.conversations, h.messages, testReader(), log)
	return h
}

func (h *harness) newRequest(t *testing.T) string {
	t.Helper()
	res, err := h.createRequest.Execute(context.Background(), CreateRequestCommand{
		Caller: consumer,
		Draft: marketplace.RequestDraft{
			Summary:  "Bad sanieren",
			Category: "sanitaer",
			Location: "10115 Berlin",
		},
	})
	require.NoError(t, err)
	return res.Request.ID
}

func (h *harness) apply(t *testing.T, requestID string, caller identity.Caller, partnerID string) string {
	t.Helper()
	res, err := h.submitApplication.Execute(context.Background(), SubmitApplicationCommand{
		Caller:    caller,
		RequestID: requestID,
		PartnerID: partnerID,
		Message:   "Gern übernehmen wir das.",
	})
	require.NoError(t, err)
	return res.Application.ID
}

func (h *harness) accept(t *testing.T, requestID, applicationID string) *DecideApplicationResult {
	t.Helper()
	res, err := h.decideApplication.Execute(context.Background(), DecideApplicationCommand{
		Caller:        consumer,
		RequestID:     requestID,
		ApplicationID: applicationID,
		Decision:      DecisionAccept,
	})
	require.NoError(t, err)
	return res
}

// engaged returns a request with partner P accepted and Q declined.
func (h *harness) engaged(t *testing.T) (requestID, conversationID string) {
	t.Helper()
	requestID = h.newRequest(t)
	appP := h.apply(t, requestID, ownerP, partnerP)
	h.apply(t, requestID, ownerQ, partnerQ)
	res := h.accept(t, requestID, appP)
	return requestID, res.ConversationID
}

func (h *harness) requestStatus(t *testing.T, requestID string) vo.RequestStatus {
	t.Helper()
	req, err := h.requests.GetByID(context.Background(), requestID)
	require.NoError(t, err)
	return req.Status()
}

func (h *harness) countEvents(t *testing.T, conversationID string, typ events.Type) int64 {
	t.Helper()
	n, err := h.messages.CountByType(context.Background(), conversationID, typ)
	require.NoError(t, err)
	return n
}

func slot(kind vo.AppointmentKind) marketplace.AppointmentSlot {
	return marketplace.AppointmentSlot{
		Kind:        kind,
		StartAt:     time.Date(2026, 11, 3, 9, 0, 0, 0, time.UTC),
		DurationMin: 60,
		Location:    "Musterstraße 1, Berlin",
	}
}
