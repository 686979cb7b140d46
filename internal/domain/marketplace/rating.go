package marketplace

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	apperrors "github.com/fachwerk-hq/fachwerk/internal/shared/errors"
	"github.com/fachwerk-hq/fachwerk/internal/shared/id"
)

const (
	maxRatingTextLength = 2000
	maxRatingNameLength = 100
)

// RatingScale bounds the star value.
type RatingScale struct {
	Min int
	Max int
}

// Rating is a consumer's review of the partner that served a request.
type Rating struct {
	id          string
	partnerID   string
	requestID   string
	consumerID  string
	stars       int
	text        string
	displayName string
	createdAt   time.Time
}

func NewRating(scale RatingScale, partnerID, requestID, consumerID string, stars int, text, displayName string) (*Rating, error) {
	if stars < scale.Min || stars > scale.Max {
		return nil, apperrors.NewValidationError(fmt.Sprintf("stars must be between %d and %d", scale.Min, scale.Max))
	}
	if utf8.RuneCountInString(text) > maxRatingTextLength {
		return nil, apperrors.NewValidationError(fmt.Sprintf("text exceeds %d characters", maxRatingTextLength))
	}
	displayName = strings.TrimSpace(displayName)
	if utf8.RuneCountInString(displayName) > maxRatingNameLength {
		return nil, apperrors.NewValidationError(fmt.Sprintf("name exceeds %d characters", maxRatingNameLength))
	}
	return &Rating{
		id:          id.New(id.PrefixRating),
		partnerID:   partnerID,
		requestID:   requestID,
		consumerID:  consumerID,
		stars:       stars,
		text:        strings.TrimSpace(text),
		displayName: displayName,
		createdAt:   time.Now().UTC(),
	}, nil
}

func ReconstructRating(ratingID, partnerID, requestID, consumerID string, stars int, text, displayName string, createdAt time.Time) *Rating {
	return &Rating{
		id:          ratingID,
		partnerID:   partnerID,
		requestID:   requestID,
		consumerID:  consumerID,
		stars:       stars,
		text:        text,
		displayName: displayName,
		createdAt:   createdAt,
	}
}

func (r *Rating) ID() string {
	return r.id
}

func (r *Rating) PartnerID() string {
	return r.partnerID
}

func (r *Rating) RequestID() string {
	return r.requestID
}

func (r *Rating) ConsumerID() string {
	return r.consumerID
}

func (r *Rating) Stars() int {
	return r.stars
}

func (r *Rating) Text() string {
	return r.text
}

func (r *Rating) DisplayName() string {
	return r.displayName
}

func (r *Rating) CreatedAt() time.Time {
	return r.createdAt
}
