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

type OrderRepository struct {
	db     *gorm.DB
	mapper mappers.OrderMapper
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{
		db:     db,
		mapper: mappers.NewOrderMapper(),
	}
}

func (r *OrderRepository) Create(ctx context.Context, o *marketplace.Order) error {
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.Create(r.mapper.ToModel(o)).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (r *OrderRepository) GetByID(ctx context.Context, orderID string) (*marketplace.Order, error) {
	var model models.OrderModel
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.Where("id = ?", orderID).First(&model).Error; err != nil {
		if isNotFound(err) {
			return nil, notFoundError("order")
		}
		return nil, fmt.Errorf("failed to find order: %w", err)
	}
	return r.mapper.ToDomain(&model)
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, o *marketplace.Order, from vo.OrderStatus) error {
	model := r.mapper.ToModel(o)
	tx := db.GetTxFromContext(ctx, r.db)

	result := tx.Model(&models.OrderModel{}).
		Where("id = ? AND status = ?", model.ID, from.String()).
		Updates(map[string]interface{}{
			"status":     model.Status,
			"decided_at": model.DecidedAt,
			"updated_at": time.Now().UnixMilli(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update order status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewVersionConflictError("order")
	}
	return nil
}

func (r *OrderRepository) ListOpenByRequest(ctx context.Context, requestID string) ([]*marketplace.Order, error) {
	tx := db.GetTxFromContext(ctx, r.db)

	var orderModels []models.OrderModel
	if err := tx.Where("request_id = ? AND status = ?", requestID, vo.OrderStatusCreated.String()).
		Order("created_at ASC").Order("id ASC").
		Find(&orderModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list open orders: %w", err)
	}

	orders := make([]*marketplace.Order, len(orderModels))
	for i := range orderModels {
		o, err := r.mapper.ToDomain(&orderModels[i])
		if err != nil {
			return nil, err
		}
		orders[i] = o
	}
	return orders, nil
}
