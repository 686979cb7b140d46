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

type RequestRepository struct {
	db     *gorm.DB
	mapper mappers.RequestMapper
}

func NewRequestRepository(db *gorm.DB) *RequestRepository {
	return &RequestRepository{
		db:     db,
		mapper: mappers.NewRequestMapper(),
	}
}

func (r *RequestRepository) Create(ctx context.Context, req *marketplace.Request) error {
	model, err := r.mapper.ToModel(req)
	if err != nil {
		return err
	}
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.Create(model).Error; err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return nil
}

func (r *RequestRepository) GetByID(ctx context.Context, requestID string) (*marketplace.Request, error) {
	var model models.RequestModel
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.Scopes(db.NotDeleted()).
		Where("id = ?", requestID).
		First(&model).Error; err != nil {
		if isNotFound(err) {
			return nil, notFoundError("request")
		}
		return nil, fmt.Errorf("failed to find request: %w", err)
	}

	return r.mapper.ToDomain(&model)
}

// Update writes the mutable columns guarded by the version the caller read.
// The application counter is left alone.
func (r *RequestRepository) Update(ctx context.Context, req *marketplace.Request) error {
	model, err := r.mapper.ToModel(req)
	if err != nil {
		return err
	}
	tx := db.GetTxFromContext(ctx, r.db)

	result := tx.Model(&models.RequestModel{}).
		Where("id = ? AND version = ?", model.ID, model.Version).
		Updates(map[string]interface{}{
			"status":     model.Status,
			"extras":     model.Extras,
			"deleted_at": model.DeletedAt,
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now().UnixMilli(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update request: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := tx.Model(&models.RequestModel{}).Where("id = ?", model.ID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check request: %w", err)
		}
		if count == 0 {
			return notFoundError("request")
		}
		return apperrors.NewVersionConflictError("request")
	}

	req.SetVersion(model.Version + 1)
	return nil
}

// IncrementApplicationCount only matches a request that still accepts
// applications. It runs before the application insert, so the row lock it
// takes orders the submit against a concurrent accept.
func (r *RequestRepository) IncrementApplicationCount(ctx context.Context, requestID string) error {
	tx := db.GetTxFromContext(ctx, r.db)

	result := tx.Model(&models.RequestModel{}).
		Where("id = ? AND status = ? AND deleted_at IS NULL", requestID, vo.RequestStatusNew.String()).
		UpdateColumn("application_count", gorm.Expr("application_count + 1"))
	if result.Error != nil {
		return fmt.Errorf("failed to increment application count: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := tx.Model(&models.RequestModel{}).Where("id = ? AND deleted_at IS NULL", requestID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check request: %w", err)
		}
		if count == 0 {
			return notFoundError("request")
		}
		return marketplace.ErrBiddingClosed()
	}
	return nil
}

func (r *RequestRepository) List(ctx context.Context, filter marketplace.RequestFilter) ([]*marketplace.Request, int64, error) {
	tx := db.GetTxFromContext(ctx, r.db)
	query := tx.Model(&models.RequestModel{})

	if !filter.IncludeDeleted {
		query = query.Scopes(db.NotDeleted())
	}
	if filter.ConsumerID != "" {
		query = query.Where("consumer_id = ?", filter.ConsumerID)
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = s.String()
		}
		query = query.Where("status IN ?", statuses)
	}
	if len(filter.PartnerIDs) > 0 {
		applied := tx.Model(&models.ApplicationModel{}).
			Select("request_id").
			Where("partner_id IN ?", filter.PartnerIDs)
		query = query.Where("status = ? OR id IN (?)", vo.RequestStatusNew.String(), applied)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count requests: %w", err)
	}

	query = query.Order("created_at DESC").Order("id DESC")
	if filter.PageSize > 0 {
		query = query.Scopes(db.Paginate(filter.Page, filter.PageSize))
	}

	var requestModels []models.RequestModel
	if err := query.Find(&requestModels).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list requests: %w", err)
	}

	requests := make([]*marketplace.Request, len(requestModels))
	for i := range requestModels {
		req, err := r.mapper.ToDomain(&requestModels[i])
		if err != nil {
			return nil, 0, err
		}
		requests[i] = req
	}

	return requests, total, nil
}
