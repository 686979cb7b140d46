package http

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/fachwerk-hq/fachwerk/internal/infrastructure/config"
	"github.com/fachwerk-hq/fachwerk/internal/infrastructure/metrics"
	"github.com/fachwerk-hq/fachwerk/internal/infrastructure/permission"
	"github.com/fachwerk-hq/fachwerk/internal/infrastructure/scheduler"
	marketplaceHandlers "github.com/fachwerk-hq/fachwerk/internal/interfaces/http/handlers/marketplace"
	"github.com/fachwerk-hq/fachwerk/internal/interfaces/http/middleware"
	"github.com/fachwerk-hq/fachwerk/internal/shared/db"
	"github.com/fachwerk-hq/fachwerk/internal/shared/logger"
)

// Container holds all infrastructure components, repositories, use cases,
// handlers and background jobs, and owns their shutdown.
type Container struct {
	// Core infrastructure
	engine  *gin.Engine
	db      *gorm.DB
	cfg     *config.Config
	log     logger.Interface
	redis   *redis.Client // nil when Redis is disabled
	metrics *metrics.Metrics

	repos *repositories
	ucs   *allUseCases
	hdlrs *allHandlers

	// Middlewares
	authMiddleware       *middleware.AuthMiddleware
	permissionMiddleware *middleware.PermissionMiddleware
	rateLimitMiddleware  *middleware.RateLimitMiddleware // nil when disabled

	enforcer *permission.Enforcer

	// Background jobs
	relayJob  *scheduler.RelayJob
	scheduler *scheduler.SchedulerManager // nil when the relay is disabled
}

// NewContainer wires every dependency. redisClient may be nil, in which case
// the live stream, the relay lock and rate limiting are unavailable.
func NewContainer(gormDB *gorm.DB, redisClient *redis.Client, cfg *config.Config, log logger.Interface) (*Container, error) {
	c := &Container{
		engine:  gin.New(),
		db:      gormDB,
		cfg:     cfg,
		log:     log,
		redis:   redisClient,
		metrics: metrics.New(),
	}

	c.repos = newRepositories(gormDB)
	c.ucs = newUseCases(cfg, c.repos, db.NewTransactionManager(gormDB), c.metrics, log)

	if err := c.initSecurity(); err != nil {
		return nil, err
	}

	bus, err := c.initRelay()
	if err != nil {
		return nil, fmt.Errorf("failed to wire outbox relay: %w", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	// A nil *RedisConversationBus must not become a non-nil interface.
	var subscriber marketplaceHandlers.ConversationSubscriber
	if bus != nil {
		subscriber = bus
	}
	c.initHandlers(sqlDB, subscriber)

	return c, nil
}

// RelayJob exposes the outbox relay for one-shot draining.
func (c *Container) RelayJob() *scheduler.RelayJob {
	return c.relayJob
}

// StartBackground starts the scheduled jobs, if any.
func (c *Container) StartBackground() {
	if c.scheduler != nil {
		c.scheduler.Start()
	}
}

// Shutdown stops background jobs and waits for in-flight runs until ctx expires.
func (c *Container) Shutdown(ctx context.Context) {
	if c.scheduler != nil {
		c.scheduler.Stop(ctx)
	}
}
