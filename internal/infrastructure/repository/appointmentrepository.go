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

type AppointmentRepository struct {
	db     *gorm.DB
	mapper mappers.AppointmentMapper
}

func NewAppointmentRepository(db *gorm.DB) *AppointmentRepository {
	return &AppointmentRepository{
		db:     db,
		mapper: mappers.NewAppointmentMapper(),
	}
}

func (r *AppointmentRepository) Create(ctx context.Context, a *marketplace.Appointment) error {
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.Create(r.mapper.ToModel(a)).Error; err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *AppointmentRepository) GetByID(ctx context.Context, appointmentID string) (*marketplace.Appointment, error) {
	var model models.AppointmentModel
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.Where("id = ?", appointmentID).First(&model).Error; err != nil {
		if isNotFound(err) {
			return nil, notFoundError("appointment")
		}
		return nil, fmt.Errorf("failed to find appointment: %w", err)
	}
	return r.mapper.ToDomain(&model)
}

func (r *AppointmentRepository) UpdateStatus(ctx context.Context, a *marketplace.Appointment, from vo.AppointmentStatus) error {
	tx := db.GetTxFromContext(ctx, r.db)

	result := tx.Model(&models.AppointmentModel{}).
		Where("id = ? AND status = ?", a.ID(), from.String()).
		Updates(map[string]interface{}{
			"status":     a.Status().String(),
			"updated_at": time.Now().UnixMilli(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update appointment status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewVersionConflictError("appointment")
	}
	return nil
}

func (r *AppointmentRepository) ListByRequestAndStatus(ctx context.Context, requestID string, status vo.AppointmentStatus) ([]*marketplace.Appointment, error) {
	var appointmentModels []models.AppointmentModel
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.Where("request_id = ? AND status = ?", requestID, status.String()).
		Order("created_at ASC").Order("id ASC").
		Find(&appointmentModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}

	appointments := make([]*marketplace.Appointment, len(appointmentModels))
	for i := range appointmentModels {
		a, err := r.mapper.ToDomain(&appointmentModels[i])
		if err != nil {
			return nil, err
		}
		appointments[i] = a
	}
	return appointments, nil
}
