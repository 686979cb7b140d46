package usecases

import (
	"context"

	"github.com/fachwerk-hq/fachwerk/internal/domain/identity"
	"github.com/fachwerk-hq/fachwerk/internal/domain/marketplace"
	"github.com/fachwerk-hq/fachwerk/internal/domain/marketplace/events"
	apperrors "github.com/fachwerk-hq/fachwerk/internal/shared/errors"
	"github.com/fachwerk-hq/fachwerk/internal/shared/logger"
)

// TransitionObserver is notified after a committed status change.
type TransitionObserver interface {
	ObserveTransition(entity, from, to string)
}

type nopObserver struct{}

func (nopObserver) ObserveTransition(string, string, string) {}

// NopObserver discards transitions.
func NopObserver() TransitionObserver {
	return nopObserver{}
}

func orNop(o TransitionObserver) TransitionObserver {
	if o == nil {
		return nopObserver{}
	}
	return o
}

// internalError keeps application errors and hides everything else behind a
// generic 500 after logging it.
func internalError(log logger.Interface, msg string, err error, keysAndValues ...any) error {
	if apperrors.IsAppError(err) {
		return err
	}
	log.Errorw(msg, append(keysAndValues, "error", err)...)
	return apperrors.NewInternalError(msg)
}

func appendEvent(ctx context.Context, messages marketplace.MessageRepository, conversationID, senderID string, e events.Event) error {
	return messages.Append(ctx, marketplace.NewEventMessage(conversationID, senderID, e))
}

// acceptedPartner returns the accepted application of requestID or a conflict
// when nobody was accepted yet.
func acceptedPartner(ctx context.Context, apps marketplace.ApplicationRepository, requestID string) (*marketplace.Application, error) {
	accepted, err := apps.FindAccepted(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if accepted == nil {
		return nil, apperrors.NewConflictError("request has no accepted partner").
			WithReason(apperrors.ReasonInvalidTransition)
	}
	return accepted, nil
}

// loadVisibleRequest fetches a request and hides it from callers without a
// relationship to it.
func loadVisibleRequest(
	ctx context.Context,
	requests marketplace.RequestRepository,
	apps marketplace.ApplicationRepository,
	caller identity.Caller,
	requestID string,
) (*marketplace.Request, error) {
	req, err := requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if marketplace.CanManageRequest(caller, req) {
		return req, nil
	}
	applied := false
	if owned := caller.OwnedPartnerIDs(); len(owned) > 0 {
		applied, err = apps.HasApplied(ctx, req.ID(), owned)
		if err != nil {
			return nil, err
		}
	}
	if !marketplace.CanViewRequest(caller, req, applied) {
		return nil, apperrors.NewNotFoundError("request not found")
	}
	return req, nil
}

// conversationLocator picks the conversation a caller talks in.
type conversationLocator struct {
	conversations marketplace.ConversationRepository
	applications  marketplace.ApplicationRepository
}

// locate resolves the conversation of req for caller. partnerID narrows the
// choice when the consumer talks to several applicants.
func (l conversationLocator) locate(ctx context.Context, caller identity.Caller, req *marketplace.Request, partnerID string) (*marketplace.Conversation, error) {
	if partnerID != "" {
		conv, err := l.conversations.FindByRequestAndPartner(ctx, req.ID(), partnerID)
		if err != nil {
			return nil, err
		}
		if err := marketplace.RequireParticipant(caller, conv); err != nil {
			return nil, err
		}
		return conv, nil
	}

	convs, err := l.conversations.ListByRequest(ctx, req.ID())
	if err != nil {
		return nil, err
	}
	for _, conv := range convs {
		if caller.OwnsPartner(conv.PartnerID()) {
			return conv, nil
		}
	}
	if !marketplace.CanManageRequest(caller, req) {
		return nil, apperrors.NewNotFoundError("conversation not found").WithReason(apperrors.ReasonNotParticipant)
	}

	accepted, err := l.applications.FindAccepted(ctx, req.ID())
	if err != nil {
		return nil, err
	}
	if accepted != nil {
		for _, conv := range convs {
			if conv.PartnerID() == accepted.PartnerID() {
				return conv, nil
			}
		}
	}
	switch len(convs) {
	case 0:
		return nil, apperrors.NewNotFoundError("conversation not found")
	case 1:
		return convs[0], nil
	}
	return nil, apperrors.NewValidationError("partner_id is required while several partners applied")
}
