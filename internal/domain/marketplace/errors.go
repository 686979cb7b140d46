package marketplace

import (
	apperrors "github.com/fachwerk-hq/fachwerk/internal/shared/errors"
)

func invalidTransition(entity string, from, to interface{ String() string }) error {
	return apperrors.NewInvalidTransitionError(entity, from.String(), to.String())
}

// ErrAlreadyApplied is returned for a second application by the same partner.
func ErrAlreadyApplied() error {
	return apperrors.NewConflictError("partner already applied to this request").
		WithReason(apperrors.ReasonAlreadyApplied)
}

// ErrAlreadyAccepted is returned when the request already has an accepted application.
func ErrAlreadyAccepted() error {
	return apperrors.NewConflictError("request already has an accepted application").
		WithReason(apperrors.ReasonAlreadyAccepted)
}

// ErrAlreadyRated is returned for a second rating of the same request by its consumer.
func ErrAlreadyRated() error {
	return apperrors.NewConflictError("request was already rated").
		WithReason(apperrors.ReasonAlreadyRated)
}

// ErrOrderTerminal is returned for any change to a decided order.
func ErrOrderTerminal(status string) error {
	return apperrors.NewConflictError("order is already " + status).
		WithReason(apperrors.ReasonOrderTerminal)
}

// ErrBiddingClosed is returned for an application to a request past Anfrage.
func ErrBiddingClosed() error {
	return apperrors.NewConflictError("request no longer accepts applications").
		WithReason(apperrors.ReasonInvalidTransition)
}
