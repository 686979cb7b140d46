package marketplace

import (
	"github.com/fachwerk-hq/fachwerk/internal/domain/identity"
	apperrors "github.com/fachwerk-hq/fachwerk/internal/shared/errors"
)

// Capability checks re-derive the caller's relationship to an entity on every
// call. Visibility failures are reported as not found so existence does not leak.

// CanManageRequest: the owning consumer or an admin.
func CanManageRequest(c identity.Caller, r *Request) bool {
	return c.IsAdmin() || r.IsOwnedBy(c.UserID())
}

// CanActForPartner: an owner of the partner or an admin.
func CanActForPartner(c identity.Caller, partnerID string) bool {
	return c.IsAdmin() || c.OwnsPartner(partnerID)
}

// CanParticipate: the conversation's consumer, an owner of its partner, or an admin.
func CanParticipate(c identity.Caller, conv *Conversation) bool {
	if c.IsAdmin() {
		return true
	}
	if c.UserID() != "" && conv.ConsumerID() == c.UserID() {
		return true
	}
	return c.OwnsPartner(conv.PartnerID())
}

// CanViewRequest: owners and admins always; partner-owners while the request
// takes bids or once one of their partners applied.
func CanViewRequest(c identity.Caller, r *Request, appliedAsPartner bool) bool {
	if CanManageRequest(c, r) {
		return true
	}
	if c.Kind() != identity.KindPartnerOwner {
		return false
	}
	return appliedAsPartner || r.Status().AcceptsApplications()
}

// RequireAuthenticated rejects anonymous callers.
func RequireAuthenticated(c identity.Caller) error {
	if !c.IsAuthenticated() {
		return apperrors.NewUnauthorizedError("authentication required")
	}
	return nil
}

// RequireRequestOwner rejects callers that may see but not manage r.
func RequireRequestOwner(c identity.Caller, r *Request) error {
	if !CanManageRequest(c, r) {
		return apperrors.NewForbiddenError("only the request owner may do this")
	}
	return nil
}

// RequirePartnerOwner rejects callers that do not own partnerID.
func RequirePartnerOwner(c identity.Caller, partnerID string) error {
	if !CanActForPartner(c, partnerID) {
		return apperrors.NewForbiddenError("caller does not own this partner")
	}
	return nil
}

// RequireParticipant hides conversations from outsiders.
func RequireParticipant(c identity.Caller, conv *Conversation) error {
	if !CanParticipate(c, conv) {
		return apperrors.NewNotFoundError("conversation not found").WithReason(apperrors.ReasonNotParticipant)
	}
	return nil
}
