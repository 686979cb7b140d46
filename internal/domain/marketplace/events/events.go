// Package events defines the typed entries of the conversation ledger. Each
// entry is one concrete type behind the sealed Event interface and is stored
// as a type tag plus a JSON payload.
package events

import (
	"encoding/json"
	"fmt"
	"time"
)

// Type is the discriminator persisted next to the payload.
type Type string

const (
	TypeChatText             Type = "chat_text"
	TypeApplicationAccepted  Type = "application_accepted"
	TypeAppointmentProposed  Type = "appointment_proposed"
	TypeAppointmentConfirmed Type = "appointment_confirmed"
	TypeAppointmentDeclined  Type = "appointment_declined"
	TypeOrderIssued          Type = "order_issued"
	TypeOrderAccepted        Type = "order_accepted"
	TypeOrderDeclined        Type = "order_declined"
	TypeOrderCanceled        Type = "order_canceled"
	TypeRatingSubmitted      Type = "rating_submitted"
	TypeInvoiceStatusChanged Type = "invoice_status_changed"
	TypeProblemReported      Type = "problem_reported"
)

// Event is implemented only by the types in this package.
type Event interface {
	Type() Type
	sealed()
}

type ChatText struct {
	Body string `json:"body"`
}

type ApplicationAccepted struct {
	ApplicationID string `json:"application_id"`
	PartnerID     string `json:"partner_id"`
}

type AppointmentProposed struct {
	AppointmentID string    `json:"appointment_id"`
	Kind          string    `json:"kind"`
	StartAt       time.Time `json:"start_at"`
	DurationMin   int       `json:"duration_min"`
}

type AppointmentConfirmed struct {
	AppointmentID string `json:"appointment_id"`
}

type AppointmentDeclined struct {
	AppointmentID string `json:"appointment_id"`
	// Superseded is set when a newer proposal replaced this one.
	Superseded bool `json:"superseded,omitempty"`
}

type OrderIssued struct {
	OrderID    string `json:"order_id"`
	Title      string `json:"title"`
	GrossCents int64  `json:"gross_cents"`
}

type OrderAccepted struct {
	OrderID    string `json:"order_id"`
	Title      string `json:"title"`
	GrossCents int64  `json:"gross_cents"`
}

type OrderDeclined struct {
	OrderID    string `json:"order_id"`
	Title      string `json:"title"`
	TotalCents int64  `json:"total_cents"`
}

type OrderCanceled struct {
	OrderID string `json:"order_id"`
	Title   string `json:"title"`
	// Superseded is set when the consumer accepted another order instead.
	Superseded bool `json:"superseded,omitempty"`
}

type RatingSubmitted struct {
	RequestID string `json:"request_id"`
	Stars     int    `json:"stars"`
}

type InvoiceStatusChanged struct {
	InvoiceID string `json:"invoice_id"`
	Status    string `json:"status"`
}

type ProblemReported struct {
	Note           string `json:"note"`
	PreviousStatus string `json:"previous_status"`
}

func (ChatText) Type() Type             { return TypeChatText }
func (ApplicationAccepted) Type() Type  { return TypeApplicationAccepted }
func (AppointmentProposed) Type() Type  { return TypeAppointmentProposed }
func (AppointmentConfirmed) Type() Type { return TypeAppointmentConfirmed }
func (AppointmentDeclined) Type() Type  { return TypeAppointmentDeclined }
func (OrderIssued) Type() Type          { return TypeOrderIssued }
func (OrderAccepted) Type() Type        { return TypeOrderAccepted }
func (OrderDeclined) Type() Type        { return TypeOrderDeclined }
func (OrderCanceled) Type() Type        { return TypeOrderCanceled }
func (RatingSubmitted) Type() Type      { return TypeRatingSubmitted }
func (InvoiceStatusChanged) Type() Type { return TypeInvoiceStatusChanged }
func (ProblemReported) Type() Type      { return TypeProblemReported }

func (ChatText) sealed()             {}
func (ApplicationAccepted) sealed()  {}
func (AppointmentProposed) sealed()  {}
func (AppointmentConfirmed) sealed() {}
func (AppointmentDeclined) sealed()  {}
func (OrderIssued) sealed()          {}
func (OrderAccepted) sealed()        {}
func (OrderDeclined) sealed()        {}
func (OrderCanceled) sealed()        {}
func (RatingSubmitted) sealed()      {}
func (InvoiceStatusChanged) sealed() {}
func (ProblemReported) sealed()      {}

// IsSystem reports whether e was produced by a state transition rather than a person.
func IsSystem(e Event) bool {
	return e.Type() != TypeChatText
}

// Encode returns the discriminator and JSON payload for e.
func Encode(e Event) (Type, []byte, error) {
	if e == nil {
		return "", nil, fmt.Errorf("nil event")
	}
	data, err := json.Marshal(e)
	if err != nil {
		return "", nil, fmt.Errorf("failed to encode %s event: %w", e.Type(), err)
	}
	return e.Type(), data, nil
}

// Decode rebuilds the concrete event for a stored discriminator and payload.
func Decode(t Type, data []byte) (Event, error) {
	switch t {
	case TypeChatText:
		return decodeAs[ChatText](t, data)
	case TypeApplicationAccepted:
		return decodeAs[ApplicationAccepted](t, data)
	case TypeAppointmentProposed:
		return decodeAs[AppointmentProposed](t, data)
	case TypeAppointmentConfirmed:
		return decodeAs[AppointmentConfirmed](t, data)
	case TypeAppointmentDeclined:
		return decodeAs[AppointmentDeclined](t, data)
	case TypeOrderIssued:
		return decodeAs[OrderIssued](t, data)
	case TypeOrderAccepted:
		return decodeAs[OrderAccepted](t, data)
	case TypeOrderDeclined:
		return decodeAs[OrderDeclined](t, data)
	case TypeOrderCanceled:
		return decodeAs[OrderCanceled](t, data)
	case TypeRatingSubmitted:
		return decodeAs[RatingSubmitted](t, data)
	case TypeInvoiceStatusChanged:
		return decodeAs[InvoiceStatusChanged](t, data)
	case TypeProblemReported:
		return decodeAs[ProblemReported](t, data)
	}
	return nil, fmt.Errorf("unknown event type %q", t)
}

func decodeAs[T Event](t Type, data []byte) (Event, error) {
	var e T
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("failed to decode %s event: %w", t, err)
	}
	return e, nil
}

// Envelope is the wire form {type, data} used on the stream and in API payloads.
type Envelope struct {
	Type Type            `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Wrap builds an Envelope for e.
func Wrap(e Event) (Envelope, error) {
	t, data, err := Encode(e)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Type: t, Data: data}, nil
}

// Unwrap decodes the event carried by env.
func (env Envelope) Unwrap() (Event, error) {
	return Decode(env.Type, env.Data)
}
