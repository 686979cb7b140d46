package marketplace

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	vo "github.com/fachwerk-hq/fachwerk/internal/domain/marketplace/valueobjects"
	apperrors "github.com/fachwerk-hq/fachwerk/internal/shared/errors"
	"github.com/fachwerk-hq/fachwerk/internal/shared/id"
)

const (
	maxSummaryLength     = 200
	maxDescriptionLength = 5000
)

// Extras is the typed side channel stored with a request.
type Extras struct {
	AppointmentID         string           `json:"appointment_id,omitempty"`
	AppointmentConfirmed  bool             `json:"appointment_confirmed"`
	ProblemNote           string           `json:"problem_note,omitempty"`
	ProblemReportedBy     string           `json:"problem_reported_by,omitempty"`
	ProblemPreviousStatus vo.RequestStatus `json:"problem_previous_status,omitempty"`
}

// Request is a consumer's posted service request.
type Request struct {
	id               string
	consumerID       string
	summary          string
	category         string
	location         string
	description      string
	budgetMinCents   *int64
	budgetMaxCents   *int64
	status           vo.RequestStatus
	extras           Extras
	applicationCount int
	version          int
	createdAt        time.Time
	updatedAt        time.Time
}

// RequestDraft carries the consumer-supplied fields of a new request.
type RequestDraft struct {
	Summary        string
	Category       string
	Location       string
	Description    string
	BudgetMinCents *int64
	BudgetMaxCents *int64
}

func NewRequest(consumerID string, d RequestDraft) (*Request, error) {
	if consumerID == "" {
		return nil, apperrors.NewValidationError("consumer id is required")
	}
	summary := strings.TrimSpace(d.Summary)
	if summary == "" {
		return nil, apperrors.NewValidationError("summary is required")
	}
	if utf8.RuneCountInString(summary) > maxSummaryLength {
		return nil, apperrors.NewValidationError(fmt.Sprintf("summary exceeds %d characters", maxSummaryLength))
	}
	if utf8.RuneCountInString(d.Description) > maxDescriptionLength {
		return nil, apperrors.NewValidationError(fmt.Sprintf("description exceeds %d characters", maxDescriptionLength))
	}
	if d.BudgetMinCents != nil && *d.BudgetMinCents < 0 {
		return nil, apperrors.NewValidationError("budget_min must not be negative")
	}
	if d.BudgetMinCents != nil && d.BudgetMaxCents != nil && *d.BudgetMaxCents < *d.BudgetMinCents {
		return nil, apperrors.NewValidationError("budget_max must not be below budget_min")
	}

	now := time.Now().UTC()
	return &Request{
		id:             id.New(id.PrefixRequest),
		consumerID:     consumerID,
		summary:        summary,
		category:       strings.TrimSpace(d.Category),
		location:       strings.TrimSpace(d.Location),
		description:    d.Description,
		budgetMinCents: d.BudgetMinCents,
		budgetMaxCents: d.BudgetMaxCents,
		status:         vo.RequestStatusNew,
		version:        1,
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

// ReconstructRequest rebuilds a request from persistence.
func ReconstructRequest(
	requestID, consumerID string,
	d RequestDraft,
	status vo.RequestStatus,
	extras Extras,
	applicationCount, version int,
	createdAt, updatedAt time.Time,
) (*Request, error) {
	if requestID == "" {
		return nil, fmt.Errorf("request ID is required")
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid request status %q", status)
	}
	return &Request{
		id:               requestID,
		consumerID:       consumerID,
		summary:          d.Summary,
		category:         d.Category,
		location:         d.Location,
		description:      d.Description,
		budgetMinCents:   d.BudgetMinCents,
		budgetMaxCents:   d.BudgetMaxCents,
		status:           status,
		extras:           extras,
		applicationCount: applicationCount,
		version:          version,
		createdAt:        createdAt,
		updatedAt:        updatedAt,
	}, nil
}

func (r *Request) ID() string {
	return r.id
}

func (r *Request) ConsumerID() string {
	return r.consumerID
}

func (r *Request) Summary() string {
	return r.summary
}

func (r *Request) Category() string {
	return r.category
}

func (r *Request) Location() string {
	return r.location
}

func (r *Request) Description() string {
	return r.description
}

func (r *Request) BudgetMinCents() *int64 {
	return r.budgetMinCents
}

func (r *Request) BudgetMaxCents() *int64 {
	return r.budgetMaxCents
}

func (r *Request) Status() vo.RequestStatus {
	return r.status
}

func (r *Request) Extras() Extras {
	return r.extras
}

func (r *Request) ApplicationCount() int {
	return r.applicationCount
}

func (r *Request) Version() int {
	return r.version
}

func (r *Request) CreatedAt() time.Time {
	return r.createdAt
}

func (r *Request) UpdatedAt() time.Time {
	return r.updatedAt
}

func (r *Request) IsOwnedBy(userID string) bool {
	return userID != "" && r.consumerID == userID
}

// SetVersion records the version persisted by the repository.
func (r *Request) SetVersion(v int) {
	r.version = v
}

func (r *Request) transitionTo(next vo.RequestStatus) error {
	if !r.status.CanTransitionTo(next) {
		return invalidTransition("request", r.status, next)
	}
	r.status = next
	r.updatedAt = time.Now().UTC()
	return nil
}

// Activate moves a fresh request into an active engagement.
func (r *Request) Activate() error {
	return r.transitionTo(vo.RequestStatusActive)
}

// ProposeAppointment points the request at a new proposal.
func (r *Request) ProposeAppointment(appointmentID string) error {
	if err := r.transitionTo(vo.RequestStatusAppointmentProposed); err != nil {
		return err
	}
	r.extras.AppointmentID = appointmentID
	r.extras.AppointmentConfirmed = false
	return nil
}

// ConfirmAppointment requires appointmentID to be the current proposal.
func (r *Request) ConfirmAppointment(appointmentID string) error {
	if r.extras.AppointmentID != appointmentID {
		return apperrors.NewConflictError("appointment is not the current proposal").
			WithReason(apperrors.ReasonInvalidTransition)
	}
	if err := r.transitionTo(vo.RequestStatusAppointmentConfirmed); err != nil {
		return err
	}
	r.extras.AppointmentConfirmed = true
	return nil
}

// DeclineAppointment reverts to Aktiv and clears the appointment pointer.
func (r *Request) DeclineAppointment(appointmentID string) error {
	if r.extras.AppointmentID != appointmentID {
		return apperrors.NewConflictError("appointment is not the current proposal").
			WithReason(apperrors.ReasonInvalidTransition)
	}
	if err := r.transitionTo(vo.RequestStatusActive); err != nil {
		return err
	}
	r.extras.AppointmentID = ""
	r.extras.AppointmentConfirmed = false
	return nil
}

func (r *Request) RecordOrderAccepted() error {
	return r.transitionTo(vo.RequestStatusOrderAccepted)
}

// RecordOrderDeclined moves the request to Auftrag abgelehnt. A request that
// already holds an accepted order or is escalated keeps its status; the
// declined order is still recorded on its own.
func (r *Request) RecordOrderDeclined() error {
	switch r.status {
	case vo.RequestStatusOrderAccepted, vo.RequestStatusProblem:
		return nil
	}
	return r.transitionTo(vo.RequestStatusOrderDeclined)
}

// ReportProblem escalates from any live state. The status held before the
// first report is kept so an admin can restore it.
func (r *Request) ReportProblem(note, reporterID string, minLength int) error {
	note = strings.TrimSpace(note)
	if utf8.RuneCountInString(note) < minLength {
		return apperrors.NewValidationError(fmt.Sprintf("note must be at least %d characters", minLength))
	}
	previous := r.status
	if err := r.transitionTo(vo.RequestStatusProblem); err != nil {
		return err
	}
	if previous != vo.RequestStatusProblem {
		r.extras.ProblemPreviousStatus = previous
	}
	r.extras.ProblemNote = note
	r.extras.ProblemReportedBy = reporterID
	return nil
}

// ResolveProblem restores the status held before escalation.
func (r *Request) ResolveProblem() (vo.RequestStatus, error) {
	if r.status != vo.RequestStatusProblem {
		return "", invalidTransition("request", r.status, vo.RequestStatusActive)
	}
	restored := r.extras.ProblemPreviousStatus
	if !restored.IsLive() || restored == vo.RequestStatusProblem {
		restored = vo.RequestStatusActive
	}
	r.status = restored
	r.extras.ProblemNote = ""
	r.extras.ProblemReportedBy = ""
	r.extras.ProblemPreviousStatus = ""
	r.updatedAt = time.Now().UTC()
	return restored, nil
}

// SoftDelete withdraws a request that has no engagement beyond acceptance.
func (r *Request) SoftDelete() error {
	return r.transitionTo(vo.RequestStatusDeleted)
}

func (r *Request) IncrementApplicationCount() {
	r.applicationCount++
}
