package mappers

import (
	"fmt"

	"github.com/fachwerk-hq/fachwerk/internal/domain/marketplace"
	vo "github.com/fachwerk-hq/fachwerk/internal/domain/marketplace/valueobjects"
	"github.com/fachwerk-hq/fachwerk/internal/infrastructure/persistence/models"
)

type ApplicationMapper interface {
	ToModel(a *marketplace.Application) *models.ApplicationModel
	ToDomain(model *models.ApplicationModel) (*marketplace.Application, error)
}

type ApplicationMapperImpl struct{}

func NewApplicationMapper() ApplicationMapper {
	return &ApplicationMapperImpl{}
}

func (m *ApplicationMapperImpl) ToModel(a *marketplace.Application) *models.ApplicationModel {
	model := &models.ApplicationModel{
		ID:          a.ID(),
		RequestID:   a.RequestID(),
		PartnerID:   a.PartnerID(),
		SubmittedBy: a.SubmittedBy(),
		Status:      a.Status().String(),
		MessageText: a.MessageText(),
		MessageHTML: a.MessageHTML(),
		CreatedAt:   a.CreatedAt().UnixMilli(),
		UpdatedAt:   a.UpdatedAt().UnixMilli(),
	}
	if a.Status() == vo.ApplicationStatusAccepted {
		requestID := a.RequestID()
		model.AcceptedRequestID = &requestID
	}
	return model
}

func (m *ApplicationMapperImpl) ToDomain(model *models.ApplicationModel) (*marketplace.Application, error) {
	status, err := vo.NewApplicationStatus(model.Status)
	if err != nil {
		return nil, fmt.Errorf("application %s: %w", model.ID, err)
	}

	return marketplace.ReconstructApplication(
		model.ID,
		model.RequestID,
		model.PartnerID,
		model.SubmittedBy,
		status,
		model.MessageText,
		model.MessageHTML,
		millisToTime(model.CreatedAt),
		millisToTime(model.UpdatedAt),
	)
}
