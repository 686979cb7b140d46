package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fachwerk-hq/fachwerk/internal/domain/marketplace"
	"github.com/fachwerk-hq/fachwerk/internal/infrastructure/persistence/mappers"
	"github.com/fachwerk-hq/fachwerk/internal/infrastructure/persistence/models"
	"github.com/fachwerk-hq/fachwerk/internal/shared/db"
)

type ConversationRepository struct {
	db     *gorm.DB
	mapper mappers.ConversationMapper
}

func NewConversationRepository(db *gorm.DB) *ConversationRepository {
	return &ConversationRepository{
		db:     db,
		mapper: mappers.NewConversationMapper(),
	}
}

// GetOrCreate inserts c unless (request, partner) already has a conversation,
// then returns the stored row.
func (r *ConversationRepository) GetOrCreate(ctx context.Context, c *marketplace.Conversation) (*marketplace.Conversation, error) {
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "request_id"}, {Name: "partner_id"}},
		DoNothing: true,
	}).Create(r.mapper.ToModel(c)).Error; err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}

	return r.FindByRequestAndPartner(ctx, c.RequestID(), c.PartnerID())
}

func (r *ConversationRepository) GetByID(ctx context.Context, conversationID string) (*marketplace.Conversation, error) {
	var model models.ConversationModel
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.Where("id = ?", conversationID).First(&model).Error; err != nil {
		if isNotFound(err) {
			return nil, notFoundError("conversation")
		}
		return nil, fmt.Errorf("failed to find conversation: %w", err)
	}
	return r.mapper.ToDomain(&model), nil
}

func (r *ConversationRepository) FindByRequestAndPartner(ctx context.Context, requestID, partnerID string) (*marketplace.Conversation, error) {
	var model models.ConversationModel
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.Where("request_id = ? AND partner_id = ?", requestID, partnerID).
		First(&model).Error; err != nil {
		if isNotFound(err) {
			return nil, notFoundError("conversation")
		}
		return nil, fmt.Errorf("failed to find conversation: %w", err)
	}
	return r.mapper.ToDomain(&model), nil
}

func (r *ConversationRepository) ListByRequest(ctx context.Context, requestID string) ([]*marketplace.Conversation, error) {
	var conversationModels []models.ConversationModel
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.Where("request_id = ?", requestID).
		Order("created_at ASC").Order("id ASC").
		Find(&conversationModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}

	conversations := make([]*marketplace.Conversation, len(conversationModels))
	for i := range conversationModels {
		conversations[i] = r.mapper.ToDomain(&conversationModels[i])
	}
	return conversations, nil
}
