package identity

import "context"

// PartnerMembershipReader lists the partners a user owns.
type PartnerMembershipReader interface {
	OwnedPartnerIDs(ctx context.Context, userID string) ([]string, error)
}

// Profile is the read-only directory entry for a user.
type Profile struct {
	UserID      string
	Email       string
	DisplayName string
}

// ProfileReader looks up contact details for notifications.
type ProfileReader interface {
	GetProfile(ctx context.Context, userID string) (*Profile, error)
	// PartnerOwnerProfiles returns the owners of a partner.
	PartnerOwnerProfiles(ctx context.Context, partnerID string) ([]*Profile, error)
}
