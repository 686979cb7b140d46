package http

import (
	"fmt"
	"time"

	"github.com/fachwerk-hq/fachwerk/internal/application/marketplace/usecases"
	"github.com/fachwerk-hq/fachwerk/internal/domain/shared/events"
	"github.com/fachwerk-hq/fachwerk/internal/infrastructure/auth"
	"github.com/fachwerk-hq/fachwerk/internal/infrastructure/cache"
	"github.com/fachwerk-hq/fachwerk/internal/infrastructure/email"
	"github.com/fachwerk-hq/fachwerk/internal/infrastructure/permission"
	"github.com/fachwerk-hq/fachwerk/internal/infrastructure/pubsub"
	"github.com/fachwerk-hq/fachwerk/internal/infrastructure/ratelimit"
	"github.com/fachwerk-hq/fachwerk/internal/infrastructure/scheduler"
	"github.com/fachwerk-hq/fachwerk/internal/interfaces/http/middleware"
)

const (
	relayLockKey    = "fachwerk:relay:lock"
	relayJobName    = "outbox-relay"
	relayJobTimeout = 30 * time.Second
)

// initSecurity builds the caller resolver, the casbin enforcer and the
// middlewares that depend on them.
func (c *Container) initSecurity() error {
	cfg := c.cfg
	log := c.log

	verifier := auth.NewSessionVerifier(cfg.Auth)
	resolver := auth.NewCallerResolver(verifier, c.repos.partnerMemberRepo, log.Named("auth"))
	c.authMiddleware = middleware.NewAuthMiddleware(resolver, log)

	enforcer, err := permission.NewEnforcer(c.db, log.Named("permission"))
	if err != nil {
		return fmt.Errorf("failed to create permission enforcer: %w", err)
	}
	if err := enforcer.InitMarketplacePermissions(); err != nil {
		return fmt.Errorf("failed to seed marketplace permissions: %w", err)
	}
	c.enforcer = enforcer
	c.permissionMiddleware = middleware.NewPermissionMiddleware(enforcer, log)

	if cfg.RateLimit.Enabled && c.redis != nil {
		limiter := ratelimit.NewRedisRateLimiter(c.redis, cfg.RateLimit.Limit, cfg.RateLimit.Window)
		c.rateLimitMiddleware = middleware.NewRateLimitMiddleware(limiter, log)
	} else if cfg.RateLimit.Enabled {
		log.Warnw("rate limiting requires redis, continuing without it")
	}

	return nil
}

// initRelay wires the outbox: the dispatcher fans relayed ledger entries out
// to the conversation bus and the mail notifier, and the relay job is
// registered with the scheduler. Returns the conversation bus, nil without Redis.
func (c *Container) initRelay() (*pubsub.RedisConversationBus, error) {
	cfg := c.cfg
	log := c.log
	repos := c.repos

	dispatcher := events.NewSyncDispatcher()

	var bus *pubsub.RedisConversationBus
	if c.redis != nil {
		bus = pubsub.NewRedisConversationBus(c.redis, log.Named("pubsub"))
		if err := dispatcher.Subscribe(events.AllEvents, bus); err != nil {
			return nil, fmt.Errorf("failed to subscribe conversation bus: %w", err)
		}
	}

	if cfg.Email.Enabled {
		notifier := email.NewLedgerNotifier(
			email.NewSMTPSender(cfg.Email), repos.profileRepo, repos.requestRepo,
			cfg.Server.BaseURL, log.Named("email"),
		)
		if err := dispatcher.Subscribe(events.AllEvents, notifier); err != nil {
			return nil, fmt.Errorf("failed to subscribe mail notifier: %w", err)
		}
	}

	relay := usecases.NewRelayOutboxUseCase(repos.messageRepo, repos.conversationRepo, dispatcher, usecases.RelayPolicy{
		BatchSize:   cfg.Relay.BatchSize,
		MaxAttempts: cfg.Relay.MaxAttempts,
		RetryBase:   cfg.Relay.RetryBase,
		RetryMax:    cfg.Relay.RetryMax,
	}, log)

	var lock scheduler.Locker
	if c.redis != nil {
		lock = cache.NewRedisLock(c.redis, relayLockKey, cfg.Relay.LockTTL)
	}
	c.relayJob = scheduler.NewRelayJob(relay, lock, c.metrics, log.Named("relay"))

	if cfg.Relay.Enabled {
		c.scheduler = scheduler.NewSchedulerManager(log.Named("scheduler"))
		if err := c.scheduler.RegisterJob(relayJobName, cfg.Relay.Interval, relayJobTimeout, c.relayJob); err != nil {
			return nil, err
		}
	}

	return bus, nil
}
