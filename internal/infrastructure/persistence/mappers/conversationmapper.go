package mappers

import (
	"github.com/fachwerk-hq/fachwerk/internal/domain/marketplace"
	"github.com/fachwerk-hq/fachwerk/internal/infrastructure/persistence/models"
)

type ConversationMapper interface {
	ToModel(c *marketplace.Conversation) *models.ConversationModel
	ToDomain(model *models.ConversationModel) *marketplace.Conversation
}

type ConversationMapperImpl struct{}

func NewConversationMapper() ConversationMapper {
	return &ConversationMapperImpl{}
}

func (m *ConversationMapperImpl) ToModel(c *marketplace.Conversation) *models.ConversationModel {
	return &models.ConversationModel{
		ID:         c.ID(),
		RequestID:  c.RequestID(),
		PartnerID:  c.PartnerID(),
		ConsumerID: c.ConsumerID(),
		CreatedAt:  c.CreatedAt().UnixMilli(),
	}
}

func (m *ConversationMapperImpl) ToDomain(model *models.ConversationModel) *marketplace.Conversation {
	return marketplace.ReconstructConversation(
		model.ID,
		model.RequestID,
		model.PartnerID,
		model.ConsumerID,
		millisToTime(model.CreatedAt),
	)
}
