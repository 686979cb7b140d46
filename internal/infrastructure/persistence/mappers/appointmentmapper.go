package mappers

import (
	"fmt"

	"github.com/fachwerk-hq/fachwerk/internal/domain/marketplace"
	vo "github.com/fachwerk-hq/fachwerk/internal/domain/marketplace/valueobjects"
	"github.com/fachwerk-hq/fachwerk/internal/infrastructure/persistence/models"
)

type AppointmentMapper interface {
	ToModel(a *marketplace.Appointment) *models.AppointmentModel
	ToDomain(model *models.AppointmentModel) (*marketplace.Appointment, error)
}

type AppointmentMapperImpl struct{}

func NewAppointmentMapper() AppointmentMapper {
	return &AppointmentMapperImpl{}
}

func (m *AppointmentMapperImpl) ToModel(a *marketplace.Appointment) *models.AppointmentModel {
	slot := a.Slot()
	return &models.AppointmentModel{
		ID:             a.ID(),
		RequestID:      a.RequestID(),
		ConversationID: a.ConversationID(),
		PartnerID:      a.PartnerID(),
		CreatorID:      a.CreatorID(),
		Kind:           slot.Kind.String(),
		StartAt:        slot.StartAt.UnixMilli(),
		DurationMin:    slot.DurationMin,
		Location:       slot.Location,
		VideoURL:       slot.VideoURL,
		Phone:          slot.Phone,
		Note:           slot.Note,
		Status:         a.Status().String(),
		CreatedAt:      a.CreatedAt().UnixMilli(),
		UpdatedAt:      a.UpdatedAt().UnixMilli(),
	}
}

func (m *AppointmentMapperImpl) ToDomain(model *models.AppointmentModel) (*marketplace.Appointment, error) {
	status, err := vo.NewAppointmentStatus(model.Status)
	if err != nil {
		return nil, fmt.Errorf("appointment %s: %w", model.ID, err)
	}

	return marketplace.ReconstructAppointment(
		model.ID,
		model.RequestID,
		model.ConversationID,
		model.PartnerID,
		model.CreatorID,
		marketplace.AppointmentSlot{
			Kind:        vo.AppointmentKind(model.Kind),
			StartAt:     millisToTime(model.StartAt),
			DurationMin: model.DurationMin,
			Location:    model.Location,
			VideoURL:    model.VideoURL,
			Phone:       model.Phone,
			Note:        model.Note,
		},
		status,
		millisToTime(model.CreatedAt),
		millisToTime(model.UpdatedAt),
	)
}
