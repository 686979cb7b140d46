package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/fachwerk-hq/fachwerk/internal/domain/identity"
	"github.com/fachwerk-hq/fachwerk/internal/infrastructure/persistence/models"
)

// PartnerMemberRepository reads partner ownership on every call; the identity
// gate must not cache it across requests.
type PartnerMemberRepository struct {
	db *gorm.DB
}

func NewPartnerMemberRepository(db *gorm.DB) *PartnerMemberRepository {
	return &PartnerMemberRepository{db: db}
}

func (r *PartnerMemberRepository) OwnedPartnerIDs(ctx context.Context, userID string) ([]string, error) {
	var partnerIDs []string
	if err := r.db.WithContext(ctx).
		Model(&models.PartnerMemberModel{}).
		Where("user_id = ? AND role = ?", userID, models.PartnerMemberRoleOwner).
		Order("partner_id ASC").
		Pluck("partner_id", &partnerIDs).Error; err != nil {
		return nil, fmt.Errorf("failed to load partner memberships: %w", err)
	}
	return partnerIDs, nil
}

// AddMember upserts a membership row; used by seeding.
func (r *PartnerMemberRepository) AddMember(ctx context.Context, partnerID, userID, role string) error {
	if err := r.db.WithContext(ctx).
		Where(models.PartnerMemberModel{PartnerID: partnerID, UserID: userID}).
		Assign(models.PartnerMemberModel{Role: role}).
		FirstOrCreate(&models.PartnerMemberModel{}).Error; err != nil {
		return fmt.Errorf("failed to add partner member: %w", err)
	}
	return nil
}

var _ identity.PartnerMembershipReader = (*PartnerMemberRepository)(nil)
