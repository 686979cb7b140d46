package marketplace

import (
	"fmt"
	"time"
	"unicode/utf8"

	vo "github.com/fachwerk-hq/fachwerk/internal/domain/marketplace/valueobjects"
	apperrors "github.com/fachwerk-hq/fachwerk/internal/shared/errors"
	"github.com/fachwerk-hq/fachwerk/internal/shared/id"
)

const maxApplicationMessageLength = 4000

// Application is a partner's bid on a request.
type Application struct {
	id          string
	requestID   string
	partnerID   string
	submittedBy string
	status      vo.ApplicationStatus
	messageText string
	messageHTML string
	createdAt   time.Time
	updatedAt   time.Time
}

func NewApplication(requestID, partnerID, submittedBy, messageText, messageHTML string) (*Application, error) {
	if requestID == "" || partnerID == "" {
		return nil, apperrors.NewValidationError("request_id and partner_id are required")
	}
	if utf8.RuneCountInString(messageText) > maxApplicationMessageLength {
		return nil, apperrors.NewValidationError(fmt.Sprintf("message exceeds %d characters", maxApplicationMessageLength))
	}
	now := time.Now().UTC()
	return &Application{
		id:          id.New(id.PrefixApplication),
		requestID:   requestID,
		partnerID:   partnerID,
		submittedBy: submittedBy,
		status:      vo.ApplicationStatusSubmitted,
		messageText: messageText,
		messageHTML: messageHTML,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

func ReconstructApplication(
	applicationID, requestID, partnerID, submittedBy string,
	status vo.ApplicationStatus,
	messageText, messageHTML string,
	createdAt, updatedAt time.Time,
) (*Application, error) {
	if applicationID == "" {
		return nil, fmt.Errorf("application ID is required")
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid application status %q", status)
	}
	return &Application{
		id:          applicationID,
		requestID:   requestID,
		partnerID:   partnerID,
		submittedBy: submittedBy,
		status:      status,
		messageText: messageText,
		messageHTML: messageHTML,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}, nil
}

func (a *Application) ID() string {
	return a.id
}

func (a *Application) RequestID() string {
	return a.requestID
}

func (a *Application) PartnerID() string {
	return a.partnerID
}

func (a *Application) SubmittedBy() string {
	return a.submittedBy
}

func (a *Application) Status() vo.ApplicationStatus {
	return a.status
}

func (a *Application) MessageText() string {
	return a.messageText
}

func (a *Application) MessageHTML() string {
	return a.messageHTML
}

func (a *Application) CreatedAt() time.Time {
	return a.createdAt
}

func (a *Application) UpdatedAt() time.Time {
	return a.updatedAt
}

func (a *Application) transitionTo(next vo.ApplicationStatus) error {
	if !a.status.CanTransitionTo(next) {
		return invalidTransition("application", a.status, next)
	}
	a.status = next
	a.updatedAt = time.Now().UTC()
	return nil
}

func (a *Application) Accept() error {
	return a.transitionTo(vo.ApplicationStatusAccepted)
}

func (a *Application) Decline() error {
	return a.transitionTo(vo.ApplicationStatusDeclined)
}
