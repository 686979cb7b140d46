package mappers

import (
	"github.com/fachwerk-hq/fachwerk/internal/domain/marketplace"
	"github.com/fachwerk-hq/fachwerk/internal/infrastructure/persistence/models"
)

type RatingMapper interface {
	ToModel(r *marketplace.Rating) *models.RatingModel
	ToDomain(model *models.RatingModel) *marketplace.Rating
}

type RatingMapperImpl struct{}

func NewRatingMapper() RatingMapper {
	return &RatingMapperImpl{}
}

func (m *RatingMapperImpl) ToModel(r *marketplace.Rating) *models.RatingModel {
	return &models.RatingModel{
		ID:          r.ID(),
		PartnerID:   r.PartnerID(),
		RequestID:   r.RequestID(),
		ConsumerID:  r.ConsumerID(),
		Stars:       r.Stars(),
		Text:        r.Text(),
		DisplayName: r.DisplayName(),
		CreatedAt:   r.CreatedAt().UnixMilli(),
	}
}

func (m *RatingMapperImpl) ToDomain(model *models.RatingModel) *marketplace.Rating {
	return marketplace.ReconstructRating(
		model.ID,
		model.PartnerID,
		model.RequestID,
		model.ConsumerID,
		model.Stars,
		model.Text,
		model.DisplayName,
		millisToTime(model.CreatedAt),
	)
}
