package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/fachwerk-hq/fachwerk/internal/domain/marketplace"
	"github.com/fachwerk-hq/fachwerk/internal/domain/marketplace/events"
	"github.com/fachwerk-hq/fachwerk/internal/infrastructure/persistence/mappers"
	"github.com/fachwerk-hq/fachwerk/internal/infrastructure/persistence/models"
	"github.com/fachwerk-hq/fachwerk/internal/shared/db"
)

// MessageRepository stores the conversation ledger. Rows are never updated
// except for the dispatch columns, which the outbox relay owns.
type MessageRepository struct {
	db     *gorm.DB
	mapper mappers.MessageMapper
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{
		db:     db,
		mapper: mappers.NewMessageMapper(),
	}
}

func (r *MessageRepository) Append(ctx context.Context, m *marketplace.Message) error {
	model, err := r.mapper.ToModel(m)
	if err != nil {
		return err
	}
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.Create(model).Error; err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}
	return nil
}

func (r *MessageRepository) ListAfter(ctx context.Context, conversationID string, after marketplace.MessageCursor, limit int) ([]*marketplace.Message, error) {
	tx := db.GetTxFromContext(ctx, r.db)
	query := tx.Where("conversation_id = ?", conversationID)

	if !after.IsZero() {
		micros := after.CreatedAt.UnixMicro()
		query = query.Where("(created_at > ?) OR (created_at = ? AND id > ?)", micros, micros, after.ID)
	}

	var messageModels []models.MessageModel
	if err := query.Order("created_at ASC").Order("id ASC").
		Limit(limit).
		Find(&messageModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	return r.toDomainList(messageModels)
}

func (r *MessageRepository) ListUndispatched(ctx context.Context, now time.Time, limit int) ([]*marketplace.Message, error) {
	var messageModels []models.MessageModel
	tx := db.GetTxFromContext(ctx, r.db)

	waiting := tx.Model(&models.MessageModel{}).
		Select("conversation_id").
		Where("dispatched_at IS NULL AND dead_lettered_at IS NULL AND next_attempt_at > ?", now.UnixMicro())

	if err := tx.Where("dispatched_at IS NULL AND dead_lettered_at IS NULL").
		Where("conversation_id NOT IN (?)", waiting).
		Order("created_at ASC").Order("id ASC").
		Limit(limit).
		Find(&messageModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list undispatched messages: %w", err)
	}

	return r.toDomainList(messageModels)
}

func (r *MessageRepository) MarkDispatched(ctx context.Context, messageIDs []string, at time.Time) error {
	if len(messageIDs) == 0 {
		return nil
	}
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.Model(&models.MessageModel{}).
		Where("id IN ? AND dispatched_at IS NULL", messageIDs).
		Update("dispatched_at", at.UnixMicro()).Error; err != nil {
		return fmt.Errorf("failed to mark messages dispatched: %w", err)
	}
	return nil
}

func (r *MessageRepository) DeferDispatch(ctx context.Context, messageID string, retryAt time.Time) error {
	return r.recordFailure(ctx, messageID, map[string]interface{}{
		"next_attempt_at": retryAt.UnixMicro(),
	})
}

func (r *MessageRepository) DeadLetter(ctx context.Context, messageID string, at time.Time) error {
	return r.recordFailure(ctx, messageID, map[string]interface{}{
		"next_attempt_at":  nil,
		"dead_lettered_at": at.UnixMicro(),
	})
}

func (r *MessageRepository) recordFailure(ctx context.Context, messageID string, columns map[string]interface{}) error {
	tx := db.GetTxFromContext(ctx, r.db)

	columns["dispatch_attempts"] = gorm.Expr("dispatch_attempts + 1")
	if err := tx.Model(&models.MessageModel{}).
		Where("id = ? AND dispatched_at IS NULL", messageID).
		Updates(columns).Error; err != nil {
		return fmt.Errorf("failed to record dispatch failure: %w", err)
	}
	return nil
}

func (r *MessageRepository) CountByType(ctx context.Context, conversationID string, t events.Type) (int64, error) {
	tx := db.GetTxFromContext(ctx, r.db)

	var count int64
	if err := tx.Model(&models.MessageModel{}).
		Where("conversation_id = ? AND event_type = ?", conversationID, string(t)).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return count, nil
}

func (r *MessageRepository) toDomainList(messageModels []models.MessageModel) ([]*marketplace.Message, error) {
	messages := make([]*marketplace.Message, len(messageModels))
	for i := range messageModels {
		m, err := r.mapper.ToDomain(&messageModels[i])
		if err != nil {
			return nil, err
		}
		messages[i] = m
	}
	return messages, nil
}
