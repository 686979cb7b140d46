// Package identity models who is calling: resolved once per HTTP request from
// the session and never cached across requests.
package identity

import (
	"context"
	"slices"
)

// Kind discriminates the Caller variants.
type Kind string

const (
	KindAnonymous    Kind = "anonymous"
	KindConsumer     Kind = "consumer"
	KindPartnerOwner Kind = "partner_owner"
	KindAdmin        Kind = "admin"
)

// Caller is the resolved principal. Construct it with the helpers below; the
// zero value is Anonymous.
type Caller struct {
	kind            Kind
	userID          string
	ownedPartnerIDs []string
}

// Anonymous is a caller without a valid session.
func Anonymous() Caller {
	return Caller{kind: KindAnonymous}
}

// Consumer is an authenticated user owning no partner.
func Consumer(userID string) Caller {
	return Caller{kind: KindConsumer, userID: userID}
}

// PartnerOwner is an authenticated user owning at least one partner. The same
// user may also own service requests as a consumer.
func PartnerOwner(userID string, ownedPartnerIDs []string) Caller {
	if len(ownedPartnerIDs) == 0 {
		return Consumer(userID)
	}
	ids := slices.Clone(ownedPartnerIDs)
	slices.Sort(ids)
	return Caller{kind: KindPartnerOwner, userID: userID, ownedPartnerIDs: slices.Compact(ids)}
}

// Admin may override every relationship check.
func Admin(userID string) Caller {
	return Caller{kind: KindAdmin, userID: userID}
}

func (c Caller) Kind() Kind {
	if c.kind == "" {
		return KindAnonymous
	}
	return c.kind
}

func (c Caller) UserID() string {
	return c.userID
}

func (c Caller) OwnedPartnerIDs() []string {
	return slices.Clone(c.ownedPartnerIDs)
}

func (c Caller) IsAuthenticated() bool {
	return c.Kind() != KindAnonymous && c.userID != ""
}

func (c Caller) IsAdmin() bool {
	return c.Kind() == KindAdmin
}

// OwnsPartner reports whether the caller owns partnerID.
func (c Caller) OwnsPartner(partnerID string) bool {
	_, found := slices.BinarySearch(c.ownedPartnerIDs, partnerID)
	return found
}

// Role is the coarse role used for policy lookups.
func (c Caller) Role() string {
	return string(c.Kind())
}

type callerKey struct{}

// WithCaller stores c in ctx.
func WithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, c)
}

// FromContext returns the caller stored in ctx or Anonymous.
func FromContext(ctx context.Context) Caller {
	if c, ok := ctx.Value(callerKey{}).(Caller); ok {
		return c
	}
	return Anonymous()
}
