package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/fachwerk-hq/fachwerk/internal/domain/marketplace"
	vo "github.com/fachwerk-hq/fachwerk/internal/domain/marketplace/valueobjects"
	"github.com/fachwerk-hq/fachwerk/internal/infrastructure/persistence/mappers"
	"github.com/fachwerk-hq/fachwerk/internal/infrastructure/persistence/models"
	"github.com/fachwerk-hq/fachwerk/internal/shared/db"
	apperrors "github.com/fachwerk-hq/fachwerk/internal/shared/errors"
)

type ApplicationRepository struct {
	db     *gorm.DB
	mapper mappers.ApplicationMapper
}

func NewApplicationRepository(db *gorm.DB) *ApplicationRepository {
	return &ApplicationRepository{
		db:     db,
		mapper: mappers.NewApplicationMapper(),
	}
}

func (r *ApplicationRepository) Create(ctx context.Context, a *marketplace.Application) error {
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.Create(r.mapper.ToModel(a)).Error; err != nil {
		if isDuplicate(err) {
			return marketplace.ErrAlreadyApplied()
		}
		return fmt.Errorf("failed to create application: %w", err)
	}
	return nil
}

func (r *ApplicationRepository) GetByID(ctx context.Context, applicationID string) (*marketplace.Application, error) {
	var model models.ApplicationModel
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.Where("id = ?", applicationID).First(&model).Error; err != nil {
		if isNotFound(err) {
			return nil, notFoundError("application")
		}
		return nil, fmt.Errorf("failed to find application: %w", err)
	}
	return r.mapper.ToDomain(&model)
}

func (r *ApplicationRepository) ListByRequest(ctx context.Context, requestID string) ([]*marketplace.Application, error) {
	var applicationModels []models.ApplicationModel
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.Where("request_id = ?", requestID).
		Order("created_at ASC").Order("id ASC").
		Find(&applicationModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}

	return r.toDomainList(applicationModels)
}

func (r *ApplicationRepository) FindAccepted(ctx context.Context, requestID string) (*marketplace.Application, error) {
	var applicationModels []models.ApplicationModel
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.Where("request_id = ? AND status = ?", requestID, vo.ApplicationStatusAccepted.String()).
		Limit(1).
		Find(&applicationModels).Error; err != nil {
		return nil, fmt.Errorf("failed to find accepted application: %w", err)
	}
	if len(applicationModels) == 0 {
		return nil, nil
	}
	return r.mapper.ToDomain(&applicationModels[0])
}

// UpdateStatus is a compare-and-swap on the status column. Accepting sets
// accepted_request_id, so a second accepted sibling violates its unique index.
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, a *marketplace.Application, from vo.ApplicationStatus) error {
	model := r.mapper.ToModel(a)
	tx := db.GetTxFromContext(ctx, r.db)

	result := tx.Model(&models.ApplicationModel{}).
		Where("id = ? AND status = ?", model.ID, from.String()).
		Updates(map[string]interface{}{
			"status":              model.Status,
			"accepted_request_id": model.AcceptedRequestID,
			"updated_at":          time.Now().UnixMilli(),
		})
	if result.Error != nil {
		if isDuplicate(result.Error) {
			return marketplace.ErrAlreadyAccepted()
		}
		return fmt.Errorf("failed to update application status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewVersionConflictError("application")
	}
	return nil
}

func (r *ApplicationRepository) DeclineSubmitted(ctx context.Context, requestID, exceptID string) (int64, error) {
	tx := db.GetTxFromContext(ctx, r.db)

	result := tx.Model(&models.ApplicationModel{}).
		Where("request_id = ? AND id <> ? AND status = ?", requestID, exceptID, vo.ApplicationStatusSubmitted.String()).
		Updates(map[string]interface{}{
			"status":     vo.ApplicationStatusDeclined.String(),
			"updated_at": time.Now().UnixMilli(),
		})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to decline sibling applications: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *ApplicationRepository) HasApplied(ctx context.Context, requestID string, partnerIDs []string) (bool, error) {
	if len(partnerIDs) == 0 {
		return false, nil
	}
	tx := db.GetTxFromContext(ctx, r.db)

	var count int64
	if err := tx.Model(&models.ApplicationModel{}).
		Where("request_id = ? AND partner_id IN ?", requestID, partnerIDs).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check applications: %w", err)
	}
	return count > 0, nil
}

func (r *ApplicationRepository) toDomainList(applicationModels []models.ApplicationModel) ([]*marketplace.Application, error) {
	applications := make([]*marketplace.Application, len(applicationModels))
	for i := range applicationModels {
		a, err := r.mapper.ToDomain(&applicationModels[i])
		if err != nil {
			return nil, err
		}
		applications[i] = a
	}
	return applications, nil
}
