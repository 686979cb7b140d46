package migration

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/fachwerk-hq/fachwerk/internal/shared/config"
	"github.com/fachwerk-hq/fachwerk/internal/shared/logger"
)

// Manager handles database migrations with different strategies
type Manager struct {
	strategy Strategy
	logger   logger.Interface
}

// NewManager picks goose scripts for server databases and AutoMigrate for
// SQLite or when auto is set.
func NewManager(driver string, auto bool) *Manager {
	var strategy Strategy
	if auto || driver == config.DriverSQLite {
		strategy = NewGormAutoMigrateStrategy()
	} else {
		strategy = NewGooseStrategy()
	}
	return NewManagerWithStrategy(strategy)
}

// NewManagerWithStrategy creates a new migration manager with a specific strategy
func NewManagerWithStrategy(strategy Strategy) *Manager {
	return &Manager{
		strategy: strategy,
		logger:   logger.NewLogger().With("component", "migration.manager"),
	}
}

// Migrate executes the configured migration strategy
func (m *Manager) Migrate(db *gorm.DB, models ...interface{}) error {
	m.logger.Infow("starting database migration",
		"strategy", m.strategy.GetName(),
		"models_count", len(models))

	if err := m.strategy.Migrate(db, models...); err != nil {
		m.logger.Errorw("migration failed",
			"strategy", m.strategy.GetName(),
			"error", err)
		return fmt.Errorf("migration failed with strategy %s: %w", m.strategy.GetName(), err)
	}

	m.logger.Infow("database migration completed successfully",
		"strategy", m.strategy.GetName())
	return nil
}

// Down rolls back steps versions; only versioned strategies support it.
func (m *Manager) Down(db *gorm.DB, steps int) error {
	versioned, ok := m.strategy.(VersionedStrategy)
	if !ok {
		return fmt.Errorf("strategy %s does not support rollback", m.strategy.GetName())
	}
	return versioned.MigrateDown(db, steps)
}

// Version reports the applied schema version.
func (m *Manager) Version(db *gorm.DB) (int64, error) {
	versioned, ok := m.strategy.(VersionedStrategy)
	if !ok {
		return 0, fmt.Errorf("strategy %s is not versioned", m.strategy.GetName())
	}
	return versioned.GetVersion(db)
}

// Status prints the state of every script.
func (m *Manager) Status(db *gorm.DB) error {
	versioned, ok := m.strategy.(VersionedStrategy)
	if !ok {
		return fmt.Errorf("strategy %s is not versioned", m.strategy.GetName())
	}
	return versioned.Status(db)
}

// GetStrategy returns the current migration strategy
func (m *Manager) GetStrategy() Strategy {
	return m.strategy
}
