package migration

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/fachwerk-hq/fachwerk/internal/infrastructure/persistence/models"
	"github.com/fachwerk-hq/fachwerk/internal/shared/logger"
)

// AutoMigrateModels lists every table the service owns.
func AutoMigrateModels() []interface{} {
	return []interface{}{
		&models.RequestModel{},
		&models.ApplicationModel{},
		&models.ConversationModel{},
		&models.MessageModel{},
		&models.AppointmentModel{},
		&models.OrderModel{},
		&models.RatingModel{},
		&models.PartnerMemberModel{},
		&models.ProfileModel{},
	}
}

// GormAutoMigrateStrategy derives the schema from the model structs. Used for
// SQLite and local development.
type GormAutoMigrateStrategy struct {
	logger logger.Interface
}

func NewGormAutoMigrateStrategy() *GormAutoMigrateStrategy {
	return &GormAutoMigrateStrategy{
		logger: logger.NewLogger().With("component", "migration.automigrate"),
	}
}

func (s *GormAutoMigrateStrategy) GetName() string {
	return "gorm_auto_migrate"
}

func (s *GormAutoMigrateStrategy) Migrate(db *gorm.DB, models ...interface{}) error {
	if len(models) == 0 {
		models = AutoMigrateModels()
	}

	s.logger.Infow("starting auto migration", "models_count", len(models))

	if err := db.AutoMigrate(models...); err != nil {
		s.logger.Errorw("auto migration failed", "error", err)
		return fmt.Errorf("failed to auto migrate: %w", err)
	}

	s.logger.Infow("auto migration completed successfully")
	return nil
}
