package mappers

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"github.com/fachwerk-hq/fachwerk/internal/domain/marketplace"
	vo "github.com/fachwerk-hq/fachwerk/internal/domain/marketplace/valueobjects"
	"github.com/fachwerk-hq/fachwerk/internal/infrastructure/persistence/models"
)

// RequestMapper converts between service requests and their rows.
type RequestMapper interface {
	ToModel(r *marketplace.Request) (*models.RequestModel, error)
	ToDomain(model *models.RequestModel) (*marketplace.Request, error)
}

type RequestMapperImpl struct{}

func NewRequestMapper() RequestMapper {
	return &RequestMapperImpl{}
}

func (m *RequestMapperImpl) ToModel(r *marketplace.Request) (*models.RequestModel, error) {
	extras, err := json.Marshal(r.Extras())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request extras (id=%s): %w", r.ID(), err)
	}

	model := &models.RequestModel{
		ID:               r.ID(),
		ConsumerID:       r.ConsumerID(),
		Summary:          r.Summary(),
		Category:         r.Category(),
		Location:         r.Location(),
		Description:      r.Description(),
		BudgetMinCents:   r.BudgetMinCents(),
		BudgetMaxCents:   r.BudgetMaxCents(),
		Status:           r.Status().String(),
		Extras:           datatypes.JSON(extras),
		ApplicationCount: r.ApplicationCount(),
		Version:          r.Version(),
		CreatedAt:        r.CreatedAt().UnixMilli(),
		UpdatedAt:        r.UpdatedAt().UnixMilli(),
	}
	if r.Status() == vo.RequestStatusDeleted {
		deleted := r.UpdatedAt().UnixMilli()
		model.DeletedAt = &deleted
	}
	return model, nil
}

func (m *RequestMapperImpl) ToDomain(model *models.RequestModel) (*marketplace.Request, error) {
	status, err := vo.NewRequestStatus(model.Status)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", model.ID, err)
	}

	var extras marketplace.Extras
	if len(model.Extras) > 0 {
		if err := json.Unmarshal(model.Extras, &extras); err != nil {
			return nil, fmt.Errorf("failed to unmarshal request extras (id=%s): %w", model.ID, err)
		}
	}

	return marketplace.ReconstructRequest(
		model.ID,
		model.ConsumerID,
		marketplace.RequestDraft{
			Summary:        model.Summary,
			Category:       model.Category,
			Location:       model.Location,
			Description:    model.Description,
			BudgetMinCents: model.BudgetMinCents,
			BudgetMaxCents: model.BudgetMaxCents,
		},
		status,
		extras,
		model.ApplicationCount,
		model.Version,
		millisToTime(model.CreatedAt),
		millisToTime(model.UpdatedAt),
	)
}
