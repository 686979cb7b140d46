package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/fachwerk-hq/fachwerk/internal/domain/identity"
	apperrors "github.com/fachwerk-hq/fachwerk/internal/shared/errors"
	"github.com/fachwerk-hq/fachwerk/internal/shared/logger"
)

// CallerResolver turns a bearer token into a Caller. Partner ownership is
// read on every call.
type CallerResolver struct {
	verifier    *SessionVerifier
	memberships identity.PartnerMembershipReader
	logger      logger.Interface
}

func NewCallerResolver(verifier *SessionVerifier, memberships identity.PartnerMembershipReader, logger logger.Interface) *CallerResolver {
	return &CallerResolver{
		verifier:    verifier,
		memberships: memberships,
		logger:      logger,
	}
}

// ResolveCaller returns Anonymous for an empty token and a 401 for a token
// that does not verify.
func (r *CallerResolver) ResolveCaller(ctx context.Context, bearerToken string) (identity.Caller, error) {
	token := strings.TrimSpace(bearerToken)
	if token == "" {
		return identity.Anonymous(), nil
	}

	claims, err := r.verifier.Verify(token)
	if err != nil {
		r.logger.Debugw("session verification failed", "error", err)
		return identity.Anonymous(), apperrors.NewUnauthorizedError("invalid or expired session").
			WithReason(apperrors.ReasonUnauthenticated)
	}
	if claims.IsAdmin() {
		return identity.Admin(claims.Subject), nil
	}

	owned, err := r.memberships.OwnedPartnerIDs(ctx, claims.Subject)
	if err != nil {
		return identity.Anonymous(), fmt.Errorf("failed to load partner memberships: %w", err)
	}
	return identity.PartnerOwner(claims.Subject, owned), nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) string {
	const prefix = "bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
