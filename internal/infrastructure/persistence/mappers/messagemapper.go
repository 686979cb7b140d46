package mappers

import (
	"fmt"
	"time"

	"gorm.io/datatypes"

	"github.com/fachwerk-hq/fachwerk/internal/domain/marketplace"
	"github.com/fachwerk-hq/fachwerk/internal/domain/marketplace/events"
	"github.com/fachwerk-hq/fachwerk/internal/infrastructure/persistence/models"
)

// MessageMapper stores the typed event as a discriminator plus JSON payload.
type MessageMapper interface {
	ToModel(msg *marketplace.Message) (*models.MessageModel, error)
	ToDomain(model *models.MessageModel) (*marketplace.Message, error)
}

type MessageMapperImpl struct{}

func NewMessageMapper() MessageMapper {
	return &MessageMapperImpl{}
}

func (m *MessageMapperImpl) ToModel(msg *marketplace.Message) (*models.MessageModel, error) {
	eventType, payload, err := events.Encode(msg.Event())
	if err != nil {
		return nil, fmt.Errorf("message %s: %w", msg.ID(), err)
	}

	model := &models.MessageModel{
		ID:             msg.ID(),
		ConversationID: msg.ConversationID(),
		SenderID:       msg.SenderID(),
		Kind:           string(msg.Kind()),
		EventType:      string(eventType),
		Payload:        datatypes.JSON(payload),
		BodyText:       msg.BodyText(),
		BodyHTML:       msg.BodyHTML(),
		CreatedAt:      msg.CreatedAt().UnixMicro(),
	}
	model.DispatchedAt = timeToMicrosPtr(msg.DispatchedAt())
	state := msg.DispatchState()
	model.DispatchAttempts = state.Attempts
	model.NextAttemptAt = timeToMicrosPtr(state.NextAttemptAt)
	model.DeadLetteredAt = timeToMicrosPtr(state.DeadLetteredAt)
	return model, nil
}

func (m *MessageMapperImpl) ToDomain(model *models.MessageModel) (*marketplace.Message, error) {
	e, err := events.Decode(events.Type(model.EventType), model.Payload)
	if err != nil {
		return nil, fmt.Errorf("message %s: %w", model.ID, err)
	}

	msg := marketplace.ReconstructMessage(
		model.ID,
		model.ConversationID,
		model.SenderID,
		e,
		model.BodyHTML,
		microsToTime(model.CreatedAt),
		microsToTimePtr(model.DispatchedAt),
	)
	msg.SetDispatchState(marketplace.DispatchState{
		Attempts:       model.DispatchAttempts,
		NextAttemptAt:  microsToTimePtr(model.NextAttemptAt),
		DeadLetteredAt: microsToTimePtr(model.DeadLetteredAt),
	})
	return msg, nil
}

func timeToMicrosPtr(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	micros := t.UnixMicro()
	return &micros
}

func microsToTimePtr(micros *int64) *time.Time {
	if micros == nil {
		return nil
	}
	t := microsToTime(*micros)
	return &t
}
