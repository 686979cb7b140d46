package marketplace

import (
	"context"
	"time"

	"github.com/fachwerk-hq/fachwerk/internal/domain/marketplace/events"
	vo "github.com/fachwerk-hq/fachwerk/internal/domain/marketplace/valueobjects"
)

type RequestRepository interface {
	Create(ctx context.Context, r *Request) error
	GetByID(ctx context.Context, requestID string) (*Request, error)
	// Update writes r only if the stored version still equals r.Version().
	Update(ctx context.Context, r *Request) error
	List(ctx context.Context, filter RequestFilter) ([]*Request, int64, error)
	// IncrementApplicationCount bumps the counter without touching the version.
	// It fails with ErrBiddingClosed once the request has left Anfrage.
	IncrementApplicationCount(ctx context.Context, requestID string) error
}

// RequestFilter scopes a request listing. Zero fields do not filter.
type RequestFilter struct {
	ConsumerID string
	Statuses   []vo.RequestStatus
	// PartnerIDs limits results to open requests plus those these partners applied to.
	PartnerIDs     []string
	IncludeDeleted bool
	Page           int
	PageSize       int
}

type ApplicationRepository interface {
	Create(ctx context.Context, a *Application) error
	GetByID(ctx context.Context, applicationID string) (*Application, error)
	ListByRequest(ctx context.Context, requestID string) ([]*Application, error)
	// FindAccepted returns nil without error when the request has no accepted application.
	FindAccepted(ctx context.Context, requestID string) (*Application, error)
	// UpdateStatus writes a's status only if the stored status still equals from.
	UpdateStatus(ctx context.Context, a *Application, from vo.ApplicationStatus) error
	// DeclineSubmitted declines every submitted application of the request except exceptID.
	DeclineSubmitted(ctx context.Context, requestID, exceptID string) (int64, error)
	HasApplied(ctx context.Context, requestID string, partnerIDs []string) (bool, error)
}

type ConversationRepository interface {
	// GetOrCreate returns the conversation for (request, partner), creating it if absent.
	GetOrCreate(ctx context.Context, c *Conversation) (*Conversation, error)
	GetByID(ctx context.Context, conversationID string) (*Conversation, error)
	FindByRequestAndPartner(ctx context.Context, requestID, partnerID string) (*Conversation, error)
	ListByRequest(ctx context.Context, requestID string) ([]*Conversation, error)
}

// MessageReader reads a conversation ledger in (created_at, id) order.
type MessageReader interface {
	ListAfter(ctx context.Context, conversationID string, after MessageCursor, limit int) ([]*Message, error)
}

type MessageRepository interface {
	MessageReader
	Append(ctx context.Context, m *Message) error
	// ListUndispatched returns entries not yet relayed, oldest first. It skips
	// dead-lettered entries and every conversation that has an entry waiting
	// for a retry later than now.
	ListUndispatched(ctx context.Context, now time.Time, limit int) ([]*Message, error)
	MarkDispatched(ctx context.Context, messageIDs []string, at time.Time) error
	// DeferDispatch counts a failed attempt and schedules the next one.
	DeferDispatch(ctx context.Context, messageID string, retryAt time.Time) error
	// DeadLetter counts a failed attempt and gives up on the entry.
	DeadLetter(ctx context.Context, messageID string, at time.Time) error
	CountByType(ctx context.Context, conversationID string, t events.Type) (int64, error)
}

type AppointmentRepository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, appointmentID string) (*Appointment, error)
	UpdateStatus(ctx context.Context, a *Appointment, from vo.AppointmentStatus) error
	ListByRequestAndStatus(ctx context.Context, requestID string, status vo.AppointmentStatus) ([]*Appointment, error)
}

type OrderRepository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, orderID string) (*Order, error)
	UpdateStatus(ctx context.Context, o *Order, from vo.OrderStatus) error
	// ListOpenByRequest returns the orders of requestID still awaiting a
	// decision, oldest first.
	ListOpenByRequest(ctx context.Context, requestID string) ([]*Order, error)
}

// PartnerRatingSummary aggregates a partner's ratings.
type PartnerRatingSummary struct {
	Count   int64
	Average float64
}

type RatingRepository interface {
	Create(ctx context.Context, r *Rating) error
	ExistsForRequest(ctx context.Context, requestID, consumerID string) (bool, error)
	ListByPartner(ctx context.Context, partnerID string, page, pageSize int) ([]*Rating, int64, error)
	SummaryForPartner(ctx context.Context, partnerID string) (PartnerRatingSummary, error)
}
