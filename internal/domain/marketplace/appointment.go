package marketplace

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	vo "github.com/fachwerk-hq/fachwerk/internal/domain/marketplace/valueobjects"
	apperrors "github.com/fachwerk-hq/fachwerk/internal/shared/errors"
	"github.com/fachwerk-hq/fachwerk/internal/shared/id"
)

const maxAppointmentMinutes = 24 * 60

// Appointment is a scheduling proposal between partner and consumer.
type Appointment struct {
	id             string
	requestID      string
	conversationID string
	partnerID      string
	creatorID      string
	kind           vo.AppointmentKind
	startAt        time.Time
	durationMin    int
	location       string
	videoURL       string
	phone          string
	note           string
	status         vo.AppointmentStatus
	createdAt      time.Time
	updatedAt      time.Time
}

// AppointmentSlot describes when and how to meet.
type AppointmentSlot struct {
	Kind        vo.AppointmentKind
	StartAt     time.Time
	DurationMin int
	Location    string
	VideoURL    string
	Phone       string
	Note        string
}

func (s AppointmentSlot) validate() error {
	if !s.Kind.IsValid() {
		return apperrors.NewValidationError("kind must be one of onsite, video, phone")
	}
	if s.StartAt.IsZero() {
		return apperrors.NewValidationError("start_at is required")
	}
	if s.DurationMin < 1 || s.DurationMin > maxAppointmentMinutes {
		return apperrors.NewValidationError(fmt.Sprintf("duration_min must be between 1 and %d", maxAppointmentMinutes))
	}
	switch s.Kind {
	case vo.AppointmentKindOnsite:
		if strings.TrimSpace(s.Location) == "" {
			return apperrors.NewValidationError("location is required for onsite appointments")
		}
	case vo.AppointmentKindVideo:
		if s.VideoURL != "" {
			u, err := url.Parse(s.VideoURL)
			if err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
				return apperrors.NewValidationError("video_url must be an http(s) URL")
			}
		}
	}
	return nil
}

func NewAppointment(conv *Conversation, creatorID string, slot AppointmentSlot) (*Appointment, error) {
	if err := slot.validate(); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &Appointment{
		id:             id.New(id.PrefixAppointment),
		requestID:      conv.RequestID(),
		conversationID: conv.ID(),
		partnerID:      conv.PartnerID(),
		creatorID:      creatorID,
		kind:           slot.Kind,
		startAt:        slot.StartAt.UTC(),
		durationMin:    slot.DurationMin,
		location:       strings.TrimSpace(slot.Location),
		videoURL:       slot.VideoURL,
		phone:          strings.TrimSpace(slot.Phone),
		note:           slot.Note,
		status:         vo.AppointmentStatusProposed,
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

func ReconstructAppointment(
	appointmentID, requestID, conversationID, partnerID, creatorID string,
	slot AppointmentSlot,
	status vo.AppointmentStatus,
	createdAt, updatedAt time.Time,
) (*Appointment, error) {
	if appointmentID == "" {
		return nil, fmt.Errorf("appointment ID is required")
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid appointment status %q", status)
	}
	return &Appointment{
		id:             appointmentID,
		requestID:      requestID,
		conversationID: conversationID,
		partnerID:      partnerID,
		creatorID:      creatorID,
		kind:           slot.Kind,
		startAt:        slot.StartAt,
		durationMin:    slot.DurationMin,
		location:       slot.Location,
		videoURL:       slot.VideoURL,
		phone:          slot.Phone,
		note:           slot.Note,
		status:         status,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}, nil
}

func (a *Appointment) ID() string {
	return a.id
}

func (a *Appointment) RequestID() string {
	return a.requestID
}

func (a *Appointment) ConversationID() string {
	return a.conversationID
}

func (a *Appointment) PartnerID() string {
	return a.partnerID
}

func (a *Appointment) CreatorID() string {
	return a.creatorID
}

func (a *Appointment) Slot() AppointmentSlot {
	return AppointmentSlot{
		Kind:        a.kind,
		StartAt:     a.startAt,
		DurationMin: a.durationMin,
		Location:    a.location,
		VideoURL:    a.videoURL,
		Phone:       a.phone,
		Note:        a.note,
	}
}

func (a *Appointment) Status() vo.AppointmentStatus {
	return a.status
}

func (a *Appointment) CreatedAt() time.Time {
	return a.createdAt
}

func (a *Appointment) UpdatedAt() time.Time {
	return a.updatedAt
}

func (a *Appointment) transitionTo(next vo.AppointmentStatus) error {
	if !a.status.CanTransitionTo(next) {
		return invalidTransition("appointment", a.status, next)
	}
	a.status = next
	a.updatedAt = time.Now().UTC()
	return nil
}

func (a *Appointment) Confirm() error {
	return a.transitionTo(vo.AppointmentStatusConfirmed)
}

func (a *Appointment) Decline() error {
	return a.transitionTo(vo.AppointmentStatusDeclined)
}
