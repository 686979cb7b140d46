package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/fachwerk-hq/fachwerk/internal/domain/marketplace"
	"github.com/fachwerk-hq/fachwerk/internal/infrastructure/persistence/mappers"
	"github.com/fachwerk-hq/fachwerk/internal/infrastructure/persistence/models"
	"github.com/fachwerk-hq/fachwerk/internal/shared/db"
)

type RatingRepository struct {
	db     *gorm.DB
	mapper mappers.RatingMapper
}

func NewRatingRepository(db *gorm.DB) *RatingRepository {
	return &RatingRepository{
		db:     db,
		mapper: mappers.NewRatingMapper(),
	}
}

func (r *RatingRepository) Create(ctx context.Context, rating *marketplace.Rating) error {
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.Create(r.mapper.ToModel(rating)).Error; err != nil {
		if isDuplicate(err) {
			return marketplace.ErrAlreadyRated()
		}
		return fmt.Errorf("failed to create rating: %w", err)
	}
	return nil
}

func (r *RatingRepository) ExistsForRequest(ctx context.Context, requestID, consumerID string) (bool, error) {
	tx := db.GetTxFromContext(ctx, r.db)

	var count int64
	if err := tx.Model(&models.RatingModel{}).
		Where("request_id = ? AND consumer_id = ?", requestID, consumerID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check rating: %w", err)
	}
	return count > 0, nil
}

func (r *RatingRepository) ListByPartner(ctx context.Context, partnerID string, page, pageSize int) ([]*marketplace.Rating, int64, error) {
	tx := db.GetTxFromContext(ctx, r.db)
	query := tx.Model(&models.RatingModel{}).Where("partner_id = ?", partnerID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count ratings: %w", err)
	}

	query = query.Order("created_at DESC").Order("id DESC")
	if pageSize > 0 {
		query = query.Scopes(db.Paginate(page, pageSize))
	}

	var ratingModels []models.RatingModel
	if err := query.Find(&ratingModels).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list ratings: %w", err)
	}

	ratings := make([]*marketplace.Rating, len(ratingModels))
	for i := range ratingModels {
		ratings[i] = r.mapper.ToDomain(&ratingModels[i])
	}
	return ratings, total, nil
}

func (r *RatingRepository) SummaryForPartner(ctx context.Context, partnerID string) (marketplace.PartnerRatingSummary, error) {
	tx := db.GetTxFromContext(ctx, r.db)

	var row struct {
		Count   int64
		Average float64
	}
	if err := tx.Model(&models.RatingModel{}).
		Select("COUNT(*) AS count, COALESCE(AVG(stars), 0) AS average").
		Where("partner_id = ?", partnerID).
		Scan(&row).Error; err != nil {
		return marketplace.PartnerRatingSummary{}, fmt.Errorf("failed to summarize ratings: %w", err)
	}
	return marketplace.PartnerRatingSummary{Count: row.Count, Average: row.Average}, nil
}
