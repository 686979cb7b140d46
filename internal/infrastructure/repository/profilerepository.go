package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/fachwerk-hq/fachwerk/internal/domain/identity"
	"github.com/fachwerk-hq/fachwerk/internal/infrastructure/persistence/models"
)

type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) GetProfile(ctx context.Context, userID string) (*identity.Profile, error) {
	var model models.ProfileModel
	if err := r.db.WithContext(ctx).Where("id = ?", userID).First(&model).Error; err != nil {
		if isNotFound(err) {
			return nil, notFoundError("profile")
		}
		return nil, fmt.Errorf("failed to find profile: %w", err)
	}
	return toProfile(&model), nil
}

func (r *ProfileRepository) PartnerOwnerProfiles(ctx context.Context, partnerID string) ([]*identity.Profile, error) {
	var profileModels []models.ProfileModel
	members := r.db.Model(&models.PartnerMemberModel{}).
		Select("user_id").
		Where("partner_id = ? AND role = ?", partnerID, models.PartnerMemberRoleOwner)

	if err := r.db.WithContext(ctx).
		Where("id IN (?)", members).
		Order("id ASC").
		Find(&profileModels).Error; err != nil {
		return nil, fmt.Errorf("failed to load partner owner profiles: %w", err)
	}

	profiles := make([]*identity.Profile, len(profileModels))
	for i := range profileModels {
		profiles[i] = toProfile(&profileModels[i])
	}
	return profiles, nil
}

// Upsert writes a directory entry; used by seeding.
func (r *ProfileRepository) Upsert(ctx context.Context, p *identity.Profile) error {
	model := models.ProfileModel{ID: p.UserID, Email: p.Email, DisplayName: p.DisplayName}
	if err := r.db.WithContext(ctx).Save(&model).Error; err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

func toProfile(model *models.ProfileModel) *identity.Profile {
	return &identity.Profile{
		UserID:      model.ID,
		Email:       model.Email,
		DisplayName: model.DisplayName,
	}
}

var _ identity.ProfileReader = (*ProfileRepository)(nil)
