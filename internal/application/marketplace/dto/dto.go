package dto

import (
	"encoding/json"
	"time"

	"github.com/fachwerk-hq/fachwerk/internal/application/marketplace/render"
	"github.com/fachwerk-hq/fachwerk/internal/domain/marketplace"
	"github.com/fachwerk-hq/fachwerk/internal/domain/marketplace/events"
)

type RequestExtrasDTO struct {
	AppointmentID        string `json:"appointment_id,omitempty"`
	AppointmentConfirmed bool   `json:"appointment_confirmed"`
	ProblemNote          string `json:"problem_note,omitempty"`
}

type RequestDTO struct {
	ID               string           `json:"id"`
	ConsumerID       string           `json:"consumer_id"`
	Summary          string           `json:"summary"`
	Category         string           `json:"category"`
	Location         string           `json:"location"`
	Description      string           `json:"description"`
	BudgetMinCents   *int64           `json:"budget_min_cents"`
	BudgetMaxCents   *int64           `json:"budget_max_cents"`
	Status           string           `json:"status"`
	StatusCode       string           `json:"status_code"`
	Extras           RequestExtrasDTO `json:"extras"`
	ApplicationCount int              `json:"application_count"`
	Version          int              `json:"version"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

func ToRequestDTO(r *marketplace.Request) *RequestDTO {
	if r == nil {
		return nil
	}
	extras := r.Extras()
	return &RequestDTO{
		ID:             r.ID(),
		ConsumerID:     r.ConsumerID(),
		Summary:        r.Summary(),
		Category:       r.Category(),
		Location:       r.Location(),
		Description:    r.Description(),
		BudgetMinCents: r.BudgetMinCents(),
		BudgetMaxCents: r.BudgetMaxCents(),
		Status:         r.Status().String(),
		StatusCode:     r.Status().Code(),
		Extras: RequestExtrasDTO{
			AppointmentID:        extras.AppointmentID,
			AppointmentConfirmed: extras.AppointmentConfirmed,
			ProblemNote:          extras.ProblemNote,
		},
		ApplicationCount: r.ApplicationCount(),
		Version:          r.Version(),
		CreatedAt:        r.CreatedAt(),
		UpdatedAt:        r.UpdatedAt(),
	}
}

func ToRequestDTOList(requests []*marketplace.Request) []*RequestDTO {
	out := make([]*RequestDTO, 0, len(requests))
	for _, r := range requests {
		out = append(out, ToRequestDTO(r))
	}
	return out
}

type ApplicationDTO struct {
	ID          string    `json:"id"`
	RequestID   string    `json:"request_id"`
	PartnerID   string    `json:"partner_id"`
	SubmittedBy string    `json:"submitted_by"`
	Status      string    `json:"status"`
	MessageText string    `json:"message_text"`
	MessageHTML string    `json:"message_html"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func ToApplicationDTO(a *marketplace.Application) *ApplicationDTO {
	if a == nil {
		return nil
	}
	return &ApplicationDTO{
		ID:          a.ID(),
		RequestID:   a.RequestID(),
		PartnerID:   a.PartnerID(),
		SubmittedBy: a.SubmittedBy(),
		Status:      a.Status().String(),
		MessageText: a.MessageText(),
		MessageHTML: a.MessageHTML(),
		CreatedAt:   a.CreatedAt(),
		UpdatedAt:   a.UpdatedAt(),
	}
}

type AppointmentDTO struct {
	ID             string    `json:"id"`
	RequestID      string    `json:"request_id"`
	ConversationID string    `json:"conversation_id"`
	PartnerID      string    `json:"partner_id"`
	Kind           string    `json:"kind"`
	KindLabel      string    `json:"kind_label"`
	StartAt        time.Time `json:"start_at"`
	DurationMin    int       `json:"duration_min"`
	Location       string    `json:"location,omitempty"`
	VideoURL       string    `json:"video_url,omitempty"`
	Phone          string    `json:"phone,omitempty"`
	Note           string    `json:"note,omitempty"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

func ToAppointmentDTO(a *marketplace.Appointment) *AppointmentDTO {
	if a == nil {
		return nil
	}
	slot := a.Slot()
	return &AppointmentDTO{
		ID:             a.ID(),
		RequestID:      a.RequestID(),
		ConversationID: a.ConversationID(),
		PartnerID:      a.PartnerID(),
		Kind:           string(slot.Kind),
		KindLabel:      slot.Kind.Label(),
		StartAt:        slot.StartAt,
		DurationMin:    slot.DurationMin,
		Location:       slot.Location,
		VideoURL:       slot.VideoURL,
		Phone:          slot.Phone,
		Note:           slot.Note,
		Status:         a.Status().String(),
		CreatedAt:      a.CreatedAt(),
	}
}

type OrderDTO struct {
	ID             string     `json:"id"`
	RequestID      string     `json:"request_id"`
	ConversationID string     `json:"conversation_id"`
	PartnerID      string     `json:"partner_id"`
	Title          string     `json:"title"`
	TaxRateBP      int64      `json:"tax_rate_bp"`
	DiscountType   string     `json:"discount_type"`
	DiscountValue  int64      `json:"discount_value"`
	NetCents       int64      `json:"net_cents"`
	DiscountCents  int64      `json:"discount_cents"`
	TaxCents       int64      `json:"tax_cents"`
	GrossCents     int64      `json:"gross_cents"`
	Status         string     `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
	DecidedAt      *time.Time `json:"decided_at,omitempty"`
}

func ToOrderDTO(o *marketplace.Order) *OrderDTO {
	if o == nil {
		return nil
	}
	terms := o.Terms()
	totals := o.Totals()
	return &OrderDTO{
		ID:             o.ID(),
		RequestID:      o.RequestID(),
		ConversationID: o.ConversationID(),
		PartnerID:      o.PartnerID(),
		Title:          terms.Title,
		TaxRateBP:      terms.TaxRateBP,
		DiscountType:   string(terms.DiscountType),
		DiscountValue:  terms.DiscountValue,
		NetCents:       totals.NetCents,
		DiscountCents:  totals.DiscountCents,
		TaxCents:       totals.TaxCents,
		GrossCents:     totals.GrossCents,
		Status:         o.Status().String(),
		CreatedAt:      o.CreatedAt(),
		DecidedAt:      o.DecidedAt(),
	}
}

type RatingDTO struct {
	ID          string    `json:"id"`
	PartnerID   string    `json:"partner_id"`
	RequestID   string    `json:"request_id"`
	Stars       int       `json:"stars"`
	Text        string    `json:"text"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

func ToRatingDTO(r *marketplace.Rating) *RatingDTO {
	if r == nil {
		return nil
	}
	return &RatingDTO{
		ID:          r.ID(),
		PartnerID:   r.PartnerID(),
		RequestID:   r.RequestID(),
		Stars:       r.Stars(),
		Text:        r.Text(),
		DisplayName: r.DisplayName(),
		CreatedAt:   r.CreatedAt(),
	}
}

type ConversationDTO struct {
	ID         string    `json:"id"`
	RequestID  string    `json:"request_id"`
	PartnerID  string    `json:"partner_id"`
	ConsumerID string    `json:"consumer_id"`
	CreatedAt  time.Time `json:"created_at"`
}

func ToConversationDTO(c *marketplace.Conversation) *ConversationDTO {
	if c == nil {
		return nil
	}
	return &ConversationDTO{
		ID:         c.ID(),
		RequestID:  c.RequestID(),
		PartnerID:  c.PartnerID(),
		ConsumerID: c.ConsumerID(),
		CreatedAt:  c.CreatedAt(),
	}
}

// MessageDTO is a ledger entry as the web client and the live stream see it.
type MessageDTO struct {
	ID             string          `json:"id"`
	ConversationID string          `json:"conversation_id"`
	SenderID       string          `json:"sender_id"`
	Kind           string          `json:"kind"`
	Type           events.Type     `json:"type"`
	Data           json.RawMessage `json:"data"`
	Text           string          `json:"text"`
	HTML           string          `json:"html,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	Cursor         string          `json:"cursor"`
}

func ToMessageDTO(m *marketplace.Message) (*MessageDTO, error) {
	if m == nil {
		return nil, nil
	}
	env, err := events.Wrap(m.Event())
	if err != nil {
		return nil, err
	}
	return &MessageDTO{
		ID:             m.ID(),
		ConversationID: m.ConversationID(),
		SenderID:       m.SenderID(),
		Kind:           string(m.Kind()),
		Type:           env.Type,
		Data:           env.Data,
		Text:           render.Text(m.Event()),
		HTML:           m.BodyHTML(),
		CreatedAt:      m.CreatedAt(),
		Cursor:         m.Cursor().Encode(),
	}, nil
}

func ToMessageDTOList(messages []*marketplace.Message) ([]*MessageDTO, error) {
	out := make([]*MessageDTO, 0, len(messages))
	for _, m := range messages {
		d, err := ToMessageDTO(m)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}
