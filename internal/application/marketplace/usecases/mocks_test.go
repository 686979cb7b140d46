package usecases

import (
	"context"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/fachwerk-hq/fachwerk/internal/domain/marketplace"
	"github.com/fachwerk-hq/fachwerk/internal/domain/marketplace/events"
	vo "github.com/fachwerk-hq/fachwerk/internal/domain/marketplace/valueobjects"
	domainevents "github.com/fachwerk-hq/fachwerk/internal/domain/shared/events"
	"github.com/fachwerk-hq/fachwerk/internal/shared/errors"
	"github.com/fachwerk-hq/fachwerk/internal/shared/logger"
	"github.com/fachwerk-hq/fachwerk/internal/shared/retry"
	"github.com/fachwerk-hq/fachwerk/internal/shared/services/markdown"
)

// memState is the committed content of memStore. Entities are stored as
// private copies so a use case mutating its instance does not leak into the
// store before Update.
type memState struct {
	requests      map[string]*marketplace.Request
	applications  map[string]*marketplace.Application
	conversations map[string]*marketplace.Conversation
	appointments  map[string]*marketplace.Appointment
	orders        map[string]*marketplace.Order
	ratings       map[string]*marketplace.Rating
	messages      []*marketplace.Message
}

func (s memState) clone() memState {
	return memState{
		requests:      maps.Clone(s.requests),
		applications:  maps.Clone(s.applications),
		conversations: maps.Clone(s.conversations),
		appointments:  maps.Clone(s.appointments),
		orders:        maps.Clone(s.orders),
		ratings:       maps.Clone(s.ratings),
		messages:      slices.Clone(s.messages),
	}
}

// memStore implements every marketplace repository plus db.Transactor.
// Transactions are serialized and roll back on error.
type memStore struct {
	txMu  sync.Mutex
	mu    sync.Mutex
	state memState

	// Injected failures.
	AppendFunc           func(ctx context.Context, m *marketplace.Message) error
	ListUndispatchedFunc func(ctx context.Context, now time.Time, limit int) ([]*marketplace.Message, error)
	GetRequestFunc       func(ctx context.Context, requestID string) (*marketplace.Request, error)
	UpdateOrderFunc      func(ctx context.Context, o *marketplace.Order, from vo.OrderStatus) error
	// AfterRollbackFunc runs once after the next rollback, standing in for a
	// competing transaction that commits meanwhile.
	AfterRollbackFunc func()
}

func newMemStore() *memStore {
	return &memStore{state: memState{
		requests:      map[string]*marketplace.Request{},
		applications:  map[string]*marketplace.Application{},
		conversations: map[string]*marketplace.Conversation{},
		appointments:  map[string]*marketplace.Appointment{},
		orders:        map[string]*marketplace.Order{},
		ratings:       map[string]*marketplace.Rating{},
	}}
}

type memTxKey struct{}

func (s *memStore) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(memTxKey{}) != nil {
		return fn(ctx)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.state.clone()
	s.mu.Unlock()

	if err := fn(context.WithValue(ctx, memTxKey{}, true)); err != nil {
		s.mu.Lock()
		s.state = snapshot
		s.mu.Unlock()
		if f := s.AfterRollbackFunc; f != nil {
			s.AfterRollbackFunc = nil
			f()
		}
		return err
	}
	return nil
}

func copyRequest(r *marketplace.Request) *marketplace.Request {
	c, _ := marketplace.ReconstructRequest(r.ID(), r.ConsumerID(), marketplace.RequestDraft{
		Summary:        r.Summary(),
		Category:       r.Category(),
		Location:       r.Location(),
		Description:    r.Description(),
		BudgetMinCents: r.BudgetMinCents(),
		BudgetMaxCents: r.BudgetMaxCents(),
	}, r.Status(), r.Extras(), r.ApplicationCount(), r.Version(), r.CreatedAt(), r.UpdatedAt())
	return c
}

func copyApplication(a *marketplace.Application) *marketplace.Application {
	c, _ := marketplace.ReconstructApplication(a.ID(), a.RequestID(), a.PartnerID(), a.SubmittedBy(),
		a.Status(), a.MessageText(), a.MessageHTML(), a.CreatedAt(), a.UpdatedAt())
	return c
}

func copyAppointment(a *marketplace.Appointment) *marketplace.Appointment {
	c, _ := marketplace.ReconstructAppointment(a.ID(), a.RequestID(), a.ConversationID(), a.PartnerID(), a.CreatorID(),
		a.Slot(), a.Status(), a.CreatedAt(), a.UpdatedAt())
	return c
}

func copyOrder(o *marketplace.Order) *marketplace.Order {
	c, _ := marketplace.ReconstructOrder(o.ID(), o.RequestID(), o.ConversationID(), o.PartnerID(), o.IssuedBy(),
		o.Terms(), o.Totals(), o.Status(), o.CreatedAt(), o.UpdatedAt(), o.DecidedAt())
	return c
}

func notFound(entity string) error {
	return errors.NewNotFoundError(entity + " not found")
}

func conflictVersion(entity string) error {
	return errors.NewVersionConflictError(entity)
}

// memRequests

type memRequests struct{ *memStore }

func (r memRequests) Create(_ context.Context, req *marketplace.Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.requests[req.ID()] = copyRequest(req)
	return nil
}

func (r memRequests) GetByID(ctx context.Context, requestID string) (*marketplace.Request, error) {
	if r.GetRequestFunc != nil {
		return r.GetRequestFunc(ctx, requestID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.state.requests[requestID]
	if !ok || req.Status() == vo.RequestStatusDeleted {
		return nil, notFound("request")
	}
	return copyRequest(req), nil
}

func (r memRequests) Update(_ context.Context, req *marketplace.Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.state.requests[req.ID()]
	if !ok {
		return notFound("request")
	}
	if stored.Version() != req.Version() {
		return conflictVersion("request")
	}
	req.SetVersion(req.Version() + 1)
	// The counter is owned by IncrementApplicationCount.
	c := copyRequest(req)
	for range stored.ApplicationCount() - c.ApplicationCount() {
		c.IncrementApplicationCount()
	}
	r.state.requests[req.ID()] = c
	return nil
}

func (r memRequests) List(_ context.Context, f marketplace.RequestFilter) ([]*marketplace.Request, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*marketplace.Request
	for _, req := range r.state.requests {
		if f.ConsumerID != "" && req.ConsumerID() != f.ConsumerID {
			continue
		}
		if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, req.Status()) {
			continue
		}
		if !f.IncludeDeleted && req.Status() == vo.RequestStatusDeleted {
			continue
		}
		out = append(out, copyRequest(req))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out, int64(len(out)), nil
}

func (r memRequests) IncrementApplicationCount(_ context.Context, requestID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.state.requests[requestID]
	if !ok {
		return notFound("request")
	}
	if !stored.Status().AcceptsApplications() {
		return marketplace.ErrBiddingClosed()
	}
	c := copyRequest(stored)
	c.IncrementApplicationCount()
	r.state.requests[requestID] = c
	return nil
}

// memApplications

type memApplications struct{ *memStore }

func (r memApplications) Create(_ context.Context, a *marketplace.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.state.applications {
		if existing.RequestID() == a.RequestID() && existing.PartnerID() == a.PartnerID() {
			return marketplace.ErrAlreadyApplied()
		}
	}
	r.state.applications[a.ID()] = copyApplication(a)
	return nil
}

func (r memApplications) GetByID(_ context.Context, applicationID string) (*marketplace.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.state.applications[applicationID]
	if !ok {
		return nil, notFound("application")
	}
	return copyApplication(a), nil
}

func (r memApplications) ListByRequest(_ context.Context, requestID string) ([]*marketplace.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*marketplace.Application
	for _, a := range r.state.applications {
		if a.RequestID() == requestID {
			out = append(out, copyApplication(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out, nil
}

func (r memApplications) FindAccepted(_ context.Context, requestID string) (*marketplace.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.state.applications {
		if a.RequestID() == requestID && a.Status() == vo.ApplicationStatusAccepted {
			return copyApplication(a), nil
		}
	}
	return nil, nil
}

func (r memApplications) UpdateStatus(_ context.Context, a *marketplace.Application, from vo.ApplicationStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.state.applications[a.ID()]
	if !ok {
		return notFound("application")
	}
	if stored.Status() != from {
		return conflictVersion("application")
	}
	r.state.applications[a.ID()] = copyApplication(a)
	return nil
}

func (r memApplications) DeclineSubmitted(_ context.Context, requestID, exceptID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, a := range r.state.applications {
		if a.RequestID() != requestID || id == exceptID || a.Status() != vo.ApplicationStatusSubmitted {
			continue
		}
		c := copyApplication(a)
		if err := c.Decline(); err != nil {
			return n, err
		}
		r.state.applications[id] = c
		n++
	}
	return n, nil
}

func (r memApplications) HasApplied(_ context.Context, requestID string, partnerIDs []string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.state.applications {
		if a.RequestID() == requestID && slices.Contains(partnerIDs, a.PartnerID()) {
			return true, nil
		}
	}
	return false, nil
}

// memConversations

type memConversations struct{ *memStore }

func (r memConversations) GetOrCreate(_ context.Context, c *marketplace.Conversation) (*marketplace.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.state.conversations {
		if existing.RequestID() == c.RequestID() && existing.PartnerID() == c.PartnerID() {
			return existing, nil
		}
	}
	r.state.conversations[c.ID()] = c
	return c, nil
}

func (r memConversations) GetByID(_ context.Context, conversationID string) (*marketplace.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.state.conversations[conversationID]
	if !ok {
		return nil, notFound("conversation")
	}
	return c, nil
}

func (r memConversations) FindByRequestAndPartner(_ context.Context, requestID, partnerID string) (*marketplace.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.state.conversations {
		if c.RequestID() == requestID && c.PartnerID() == partnerID {
			return c, nil
		}
	}
	return nil, notFound("conversation")
}

func (r memConversations) ListByRequest(_ context.Context, requestID string) ([]*marketplace.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*marketplace.Conversation
	for _, c := range r.state.conversations {
		if c.RequestID() == requestID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out, nil
}

// memMessages

type memMessages struct{ *memStore }

func (r memMessages) Append(ctx context.Context, m *marketplace.Message) error {
	if r.AppendFunc != nil {
		if err := r.AppendFunc(ctx, m); err != nil {
			return err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.messages = append(r.state.messages, m)
	return nil
}

func (r memMessages) ListAfter(_ context.Context, conversationID string, after marketplace.MessageCursor, limit int) ([]*marketplace.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*marketplace.Message
	for _, m := range r.state.messages {
		if m.ConversationID() != conversationID {
			continue
		}
		if !after.IsZero() {
			if m.CreatedAt().Before(after.CreatedAt) ||
				(m.CreatedAt().Equal(after.CreatedAt) && m.ID() <= after.ID) {
				continue
			}
		}
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt().Equal(out[j].CreatedAt()) {
			return out[i].CreatedAt().Before(out[j].CreatedAt())
		}
		return out[i].ID() < out[j].ID()
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r memMessages) ListUndispatched(ctx context.Context, now time.Time, limit int) ([]*marketplace.Message, error) {
	if r.ListUndispatchedFunc != nil {
		return r.ListUndispatchedFunc(ctx, now, limit)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	pending := func(m *marketplace.Message) bool {
		return m.DispatchedAt() == nil && m.DispatchState().DeadLetteredAt == nil
	}
	waiting := make(map[string]bool)
	for _, m := range r.state.messages {
		if next := m.DispatchState().NextAttemptAt; pending(m) && next != nil && next.After(now) {
			waiting[m.ConversationID()] = true
		}
	}
	var out []*marketplace.Message
	for _, m := range r.state.messages {
		if pending(m) && !waiting[m.ConversationID()] {
			out = append(out, m)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r memMessages) MarkDispatched(_ context.Context, messageIDs []string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, m := range r.state.messages {
		if slices.Contains(messageIDs, m.ID()) {
			r.state.messages[i] = rebuildMessage(m, &at, m.DispatchState())
		}
	}
	return nil
}

func (r memMessages) DeferDispatch(_ context.Context, messageID string, retryAt time.Time) error {
	return r.fail(messageID, func(s *marketplace.DispatchState) { s.NextAttemptAt = &retryAt })
}

func (r memMessages) DeadLetter(_ context.Context, messageID string, at time.Time) error {
	return r.fail(messageID, func(s *marketplace.DispatchState) {
		s.NextAttemptAt = nil
		s.DeadLetteredAt = &at
	})
}

func (r memMessages) fail(messageID string, apply func(*marketplace.DispatchState)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, m := range r.state.messages {
		if m.ID() == messageID && m.DispatchedAt() == nil {
			s := m.DispatchState()
			s.Attempts++
			apply(&s)
			r.state.messages[i] = rebuildMessage(m, nil, s)
		}
	}
	return nil
}

func rebuildMessage(m *marketplace.Message, dispatchedAt *time.Time, s marketplace.DispatchState) *marketplace.Message {
	out := marketplace.ReconstructMessage(m.ID(), m.ConversationID(), m.SenderID(),
		m.Event(), m.BodyHTML(), m.CreatedAt(), dispatchedAt)
	out.SetDispatchState(s)
	return out
}

func (r memMessages) CountByType(_ context.Context, conversationID string, t events.Type) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, m := range r.state.messages {
		if m.ConversationID() == conversationID && m.Event().Type() == t {
			n++
		}
	}
	return n, nil
}

// memAppointments

type memAppointments struct{ *memStore }

func (r memAppointments) Create(_ context.Context, a *marketplace.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.appointments[a.ID()] = copyAppointment(a)
	return nil
}

func (r memAppointments) GetByID(_ context.Context, appointmentID string) (*marketplace.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.state.appointments[appointmentID]
	if !ok {
		return nil, notFound("appointment")
	}
	return copyAppointment(a), nil
}

func (r memAppointments) UpdateStatus(_ context.Context, a *marketplace.Appointment, from vo.AppointmentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.state.appointments[a.ID()]
	if !ok {
		return notFound("appointment")
	}
	if stored.Status() != from {
		return conflictVersion("appointment")
	}
	r.state.appointments[a.ID()] = copyAppointment(a)
	return nil
}

func (r memAppointments) ListByRequestAndStatus(_ context.Context, requestID string, status vo.AppointmentStatus) ([]*marketplace.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*marketplace.Appointment
	for _, a := range r.state.appointments {
		if a.RequestID() == requestID && a.Status() == status {
			out = append(out, copyAppointment(a))
		}
	}
	return out, nil
}

// memOrders

type memOrders struct{ *memStore }

func (r memOrders) Create(_ context.Context, o *marketplace.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.orders[o.ID()] = copyOrder(o)
	return nil
}

func (r memOrders) GetByID(_ context.Context, orderID string) (*marketplace.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.state.orders[orderID]
	if !ok {
		return nil, notFound("order")
	}
	return copyOrder(o), nil
}

func (r memOrders) UpdateStatus(ctx context.Context, o *marketplace.Order, from vo.OrderStatus) error {
	if r.UpdateOrderFunc != nil {
		return r.UpdateOrderFunc(ctx, o, from)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.state.orders[o.ID()]
	if !ok {
		return notFound("order")
	}
	if stored.Status() != from {
		return conflictVersion("order")
	}
	r.state.orders[o.ID()] = copyOrder(o)
	return nil
}

func (r memOrders) ListOpenByRequest(_ context.Context, requestID string) ([]*marketplace.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*marketplace.Order
	for _, o := range r.state.orders {
		if o.RequestID() == requestID && o.Status() == vo.OrderStatusCreated {
			out = append(out, copyOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt().Equal(out[j].CreatedAt()) {
			return out[i].ID() < out[j].ID()
		}
		return out[i].CreatedAt().Before(out[j].CreatedAt())
	})
	return out, nil
}

// memRatings

type memRatings struct{ *memStore }

func (r memRatings) Create(_ context.Context, rt *marketplace.Rating) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.state.ratings {
		if existing.RequestID() == rt.RequestID() && existing.ConsumerID() == rt.ConsumerID() {
			return marketplace.ErrAlreadyRated()
		}
	}
	r.state.ratings[rt.ID()] = rt
	return nil
}

func (r memRatings) ExistsForRequest(_ context.Context, requestID, consumerID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rt := range r.state.ratings {
		if rt.RequestID() == requestID && rt.ConsumerID() == consumerID {
			return true, nil
		}
	}
	return false, nil
}

func (r memRatings) ListByPartner(_ context.Context, partnerID string, _, _ int) ([]*marketplace.Rating, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*marketplace.Rating
	for _, rt := range r.state.ratings {
		if rt.PartnerID() == partnerID {
			out = append(out, rt)
		}
	}
	return out, int64(len(out)), nil
}

func (r memRatings) SummaryForPartner(_ context.Context, partnerID string) (marketplace.PartnerRatingSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sum marketplace.PartnerRatingSummary
	total := 0
	for _, rt := range r.state.ratings {
		if rt.PartnerID() == partnerID {
			sum.Count++
			total += rt.Stars()
		}
	}
	if sum.Count > 0 {
		sum.Average = float64(total) / float64(sum.Count)
	}
	return sum, nil
}

// mockObserver records transitions.
type mockObserver struct {
	mu          sync.Mutex
	transitions []string
}

func (o *mockObserver) ObserveTransition(entity, from, to string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.transitions = append(o.transitions, entity+":"+from+"->"+to)
}

type mockRenderer struct {
	ToHTMLSanitizedFunc func(markdown string) (string, error)
}

func (m *mockRenderer) ToHTMLSanitized(md string) (string, error) {
	if m.ToHTMLSanitizedFunc != nil {
		return m.ToHTMLSanitizedFunc(md)
	}
	return "<p>" + md + "</p>", nil
}

var _ markdown.Renderer = (*mockRenderer)(nil)

type mockDispatcher struct {
	DispatchFunc func(ctx context.Context, event domainevents.DomainEvent) error
	mu           sync.Mutex
	dispatched   []domainevents.DomainEvent
}

func (m *mockDispatcher) Subscribe(string, domainevents.EventHandler) error {
	return nil
}

func (m *mockDispatcher) Dispatch(ctx context.Context, event domainevents.DomainEvent) error {
	if m.DispatchFunc != nil {
		if err := m.DispatchFunc(ctx, event); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dispatched = append(m.dispatched, event)
	return nil
}

func testReader() *retry.Reader {
	return retry.NewReader(retry.Policy{Attempts: 3, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond})
}

func testLogger() logger.Interface {
	return logger.NewNopLogger()
}
