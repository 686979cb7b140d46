package marketplace

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	vo "github.com/fachwerk-hq/fachwerk/internal/domain/marketplace/valueobjects"
	apperrors "github.com/fachwerk-hq/fachwerk/internal/shared/errors"
	"github.com/fachwerk-hq/fachwerk/internal/shared/id"
	"github.com/fachwerk-hq/fachwerk/internal/shared/money"
)

const (
	maxOrderTitleLength = 200
	maxTaxRateBP        = 10000
)

// OrderTerms are the commercial fields a partner offers. Percentages are in
// basis points (1900 = 19%).
type OrderTerms struct {
	Title         string
	NetCents      int64
	TaxRateBP     int64
	DiscountType  vo.DiscountType
	DiscountValue int64
}

// Totals are derived server side from the terms.
type Totals struct {
	NetCents      int64
	DiscountCents int64
	TaxCents      int64
	GrossCents    int64
}

func (t OrderTerms) validate() error {
	title := strings.TrimSpace(t.Title)
	if title == "" {
		return apperrors.NewValidationError("title is required")
	}
	if utf8.RuneCountInString(title) > maxOrderTitleLength {
		return apperrors.NewValidationError(fmt.Sprintf("title exceeds %d characters", maxOrderTitleLength))
	}
	if t.NetCents <= 0 {
		return apperrors.NewValidationError("net total must be positive")
	}
	if t.TaxRateBP < 0 || t.TaxRateBP > maxTaxRateBP {
		return apperrors.NewValidationError("tax rate must be between 0 and 10000 basis points")
	}
	if !t.DiscountType.IsValid() {
		return apperrors.NewValidationError("invalid discount type")
	}
	if t.DiscountValue < 0 {
		return apperrors.NewValidationError("discount must not be negative")
	}
	switch t.DiscountType {
	case vo.DiscountPercent:
		if t.DiscountValue > 10000 {
			return apperrors.NewValidationError("percent discount must not exceed 10000 basis points")
		}
	case vo.DiscountAmount:
		if t.DiscountValue > t.NetCents {
			return apperrors.NewValidationError("discount must not exceed the net total")
		}
	}
	return nil
}

// ComputeTotals applies the discount to the net amount, then tax.
func (t OrderTerms) ComputeTotals() Totals {
	var discount int64
	switch t.DiscountType {
	case vo.DiscountPercent:
		discount = money.ApplyBasisPoints(t.NetCents, t.DiscountValue)
	case vo.DiscountAmount:
		discount = t.DiscountValue
	}
	taxable := t.NetCents - discount
	tax := money.ApplyBasisPoints(taxable, t.TaxRateBP)
	return Totals{
		NetCents:      t.NetCents,
		DiscountCents: discount,
		TaxCents:      tax,
		GrossCents:    taxable + tax,
	}
}

// Order is a partner's commercial offer on an engaged request.
type Order struct {
	id             string
	requestID      string
	conversationID string
	partnerID      string
	issuedBy       string
	terms          OrderTerms
	totals         Totals
	status         vo.OrderStatus
	createdAt      time.Time
	updatedAt      time.Time
	decidedAt      *time.Time
}

func NewOrder(conv *Conversation, issuedBy string, terms OrderTerms) (*Order, error) {
	if terms.DiscountType == "" {
		terms.DiscountType = vo.DiscountNone
	}
	if err := terms.validate(); err != nil {
		return nil, err
	}
	terms.Title = strings.TrimSpace(terms.Title)
	now := time.Now().UTC()
	return &Order{
		id:             id.New(id.PrefixOrder),
		requestID:      conv.RequestID(),
		conversationID: conv.ID(),
		partnerID:      conv.PartnerID(),
		issuedBy:       issuedBy,
		terms:          terms,
		totals:         terms.ComputeTotals(),
		status:         vo.OrderStatusCreated,
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

func ReconstructOrder(
	orderID, requestID, conversationID, partnerID, issuedBy string,
	terms OrderTerms,
	totals Totals,
	status vo.OrderStatus,
	createdAt, updatedAt time.Time,
	decidedAt *time.Time,
) (*Order, error) {
	if orderID == "" {
		return nil, fmt.Errorf("order ID is required")
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid order status %q", status)
	}
	return &Order{
		id:             orderID,
		requestID:      requestID,
		conversationID: conversationID,
		partnerID:      partnerID,
		issuedBy:       issuedBy,
		terms:          terms,
		totals:         totals,
		status:         status,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
		decidedAt:      decidedAt,
	}, nil
}

func (o *Order) ID() string {
	return o.id
}

func (o *Order) RequestID() string {
	return o.requestID
}

func (o *Order) ConversationID() string {
	return o.conversationID
}

func (o *Order) PartnerID() string {
	return o.partnerID
}

func (o *Order) IssuedBy() string {
	return o.issuedBy
}

func (o *Order) Terms() OrderTerms {
	return o.terms
}

func (o *Order) Totals() Totals {
	return o.totals
}

func (o *Order) Status() vo.OrderStatus {
	return o.status
}

func (o *Order) CreatedAt() time.Time {
	return o.createdAt
}

func (o *Order) UpdatedAt() time.Time {
	return o.updatedAt
}

func (o *Order) DecidedAt() *time.Time {
	return o.decidedAt
}

// decide moves the order into a terminal state. Repeating a decline or cancel
// reports changed=false without error; any other move out of a terminal state
// is a conflict.
func (o *Order) decide(next vo.OrderStatus) (bool, error) {
	if o.status == next && next.IsIdempotentReentry() {
		return false, nil
	}
	if o.status.IsTerminal() {
		return false, ErrOrderTerminal(o.status.String())
	}
	if !o.status.CanTransitionTo(next) {
		return false, invalidTransition("order", o.status, next)
	}
	now := time.Now().UTC()
	o.status = next
	o.updatedAt = now
	o.decidedAt = &now
	return true, nil
}

func (o *Order) Accept() (bool, error) {
	return o.decide(vo.OrderStatusAccepted)
}

func (o *Order) Decline() (bool, error) {
	return o.decide(vo.OrderStatusDeclined)
}

func (o *Order) Cancel() (bool, error) {
	return o.decide(vo.OrderStatusCanceled)
}
