package usecases

import (
	"context"
	"time"

	"github.com/fachwerk-hq/fachwerk/internal/domain/marketplace"
	"github.com/fachwerk-hq/fachwerk/internal/domain/shared/events"
	"github.com/fachwerk-hq/fachwerk/internal/shared/logger"
	"github.com/fachwerk-hq/fachwerk/internal/shared/retry"
)

const (
	defaultRelayBatch       = 100
	defaultRelayMaxAttempts = 8
	defaultRelayRetryBase   = 30 * time.Second
	defaultRelayRetryMax    = 30 * time.Minute
)

// RelayPolicy bounds how the relay retries an entry a subscriber rejected.
// Zero fields take the defaults.
type RelayPolicy struct {
	BatchSize   int
	MaxAttempts int
	RetryBase   time.Duration
	RetryMax    time.Duration
}

func (p RelayPolicy) withDefaults() RelayPolicy {
	if p.BatchSize <= 0 {
		p.BatchSize = defaultRelayBatch
	}
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = defaultRelayMaxAttempts
	}
	if p.RetryBase <= 0 {
		p.RetryBase = defaultRelayRetryBase
	}
	if p.RetryMax < p.RetryBase {
		p.RetryMax = max(defaultRelayRetryMax, p.RetryBase)
	}
	return p
}

type RelayResult struct {
	Dispatched int
	Failed     int
	// Deferred entries sit behind a failed one in the same conversation.
	Deferred int
	// DeadLettered entries failed for the last allowed time and are dropped
	// from the outbox.
	DeadLettered int
}

// RelayOutboxUseCase hands undispatched ledger entries to the subscribers of
// the dispatcher and marks the delivered ones. Delivery is at least once:
// entries are marked only after every subscriber succeeded. A failed entry is
// retried with growing delays and holds back its conversation until it is
// delivered or dead-lettered; other conversations keep flowing meanwhile.
type RelayOutboxUseCase struct {
	messageRepo      marketplace.MessageRepository
	conversationRepo marketplace.ConversationRepository
	dispatcher       events.EventDispatcher
	policy           RelayPolicy
	now              func() time.Time
	logger           logger.Interface
}

func NewRelayOutboxUseCase(
	messageRepo marketplace.MessageRepository,
	conversationRepo marketplace.ConversationRepository,
	dispatcher events.EventDispatcher,
	policy RelayPolicy,
	logger logger.Interface,
) *RelayOutboxUseCase {
	return &RelayOutboxUseCase{
		messageRepo:      messageRepo,
		conversationRepo: conversationRepo,
		dispatcher:       dispatcher,
		policy:           policy.withDefaults(),
		now:              func() time.Time { return time.Now().UTC() },
		logger:           logger,
	}
}

func (uc *RelayOutboxUseCase) Execute(ctx context.Context) (*RelayResult, error) {
	now := uc.now()
	pending, err := uc.messageRepo.ListUndispatched(ctx, now, uc.policy.BatchSize)
	if err != nil {
		return nil, internalError(uc.logger, "failed to list undispatched messages", err)
	}
	result := &RelayResult{}
	if len(pending) == 0 {
		return result, nil
	}

	convs := make(map[string]*marketplace.Conversation)
	// A failed entry holds back later entries of its conversation so
	// subscribers never see them out of order.
	blocked := make(map[string]bool)
	delivered := make([]string, 0, len(pending))

	for _, m := range pending {
		if blocked[m.ConversationID()] {
			result.Deferred++
			continue
		}
		conv, ok := convs[m.ConversationID()]
		if !ok {
			conv, err = uc.conversationRepo.GetByID(ctx, m.ConversationID())
			if err != nil {
				uc.logger.Errorw("failed to load conversation for relay",
					"conversation_id", m.ConversationID(),
					"error", err,
				)
				blocked[m.ConversationID()] = true
				if err := uc.recordFailure(ctx, m, now, result); err != nil {
					return nil, err
				}
				continue
			}
			convs[conv.ID()] = conv
		}

		if err := uc.dispatcher.Dispatch(ctx, marketplace.Delivery{Message: m, Conversation: conv}); err != nil {
			if ctx.Err() != nil {
				break
			}
			uc.logger.Warnw("failed to dispatch ledger entry",
				"message_id", m.ID(),
				"type", m.Event().Type(),
				"attempt", m.DispatchState().Attempts+1,
				"error", err,
			)
			blocked[m.ConversationID()] = true
			if err := uc.recordFailure(ctx, m, now, result); err != nil {
				return nil, err
			}
			continue
		}
		delivered = append(delivered, m.ID())
	}

	if len(delivered) > 0 {
		if err := uc.messageRepo.MarkDispatched(ctx, delivered, now); err != nil {
			return nil, internalError(uc.logger, "failed to mark messages dispatched", err)
		}
	}
	result.Dispatched = len(delivered)

	uc.logger.Debugw("outbox relay pass finished",
		"dispatched", result.Dispatched,
		"failed", result.Failed,
		"deferred", result.Deferred,
		"dead_lettered", result.DeadLettered,
	)
	return result, nil
}

// recordFailure schedules the retry of m, or gives up on it after the last
// allowed attempt.
func (uc *RelayOutboxUseCase) recordFailure(ctx context.Context, m *marketplace.Message, now time.Time, result *RelayResult) error {
	result.Failed++
	attempt := m.DispatchState().Attempts + 1
	if attempt >= uc.policy.MaxAttempts {
		uc.logger.Errorw("ledger entry dead-lettered",
			"message_id", m.ID(),
			"conversation_id", m.ConversationID(),
			"type", m.Event().Type(),
			"attempts", attempt,
		)
		result.DeadLettered++
		if err := uc.messageRepo.DeadLetter(ctx, m.ID(), now); err != nil {
			return internalError(uc.logger, "failed to dead-letter message", err, "message_id", m.ID())
		}
		return nil
	}

	retryAt := now.Add(retry.Delay(uc.policy.RetryBase, uc.policy.RetryMax, attempt))
	if err := uc.messageRepo.DeferDispatch(ctx, m.ID(), retryAt); err != nil {
		return internalError(uc.logger, "failed to defer message", err, "message_id", m.ID())
	}
	return nil
}
