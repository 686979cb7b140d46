package usecases

import (
	"context"

	"github.com/fachwerk-hq/fachwerk/internal/application/marketplace/dto"
	"github.com/fachwerk-hq/fachwerk/internal/domain/identity"
	"github.com/fachwerk-hq/fachwerk/internal/domain/marketplace"
	"github.com/fachwerk-hq/fachwerk/internal/domain/marketplace/events"
	vo "github.com/fachwerk-hq/fachwerk/internal/domain/marketplace/valueobjects"
	"github.com/fachwerk-hq/fachwerk/internal/shared/db"
	"github.com/fachwerk-hq/fachwerk/internal/shared/errors"
	"github.com/fachwerk-hq/fachwerk/internal/shared/logger"
	"github.com/fachwerk-hq/fachwerk/internal/shared/retry"
)

type OrderResult struct {
	Order   *dto.OrderDTO
	Request *dto.RequestDTO
	// Changed is false when a repeated decline or cancel found the order
	// already in that state.
	Changed bool
}

type IssueOrderCommand struct {
	Caller    identity.Caller
	RequestID string
	Terms     marketplace.OrderTerms
}

type IssueOrderUseCase struct {
	txManager        db.Transactor
	requestRepo      marketplace.RequestRepository
	applicationRepo  marketplace.ApplicationRepository
	conversationRepo marketplace.ConversationRepository
	orderRepo        marketplace.OrderRepository
	messageRepo      marketplace.MessageRepository
	logger           logger.Interface
}

func NewIssueOrderUseCase(
	txManager db.Transactor,
	requestRepo marketplace.RequestRepository,
	applicationRepo marketplace.ApplicationRepository,
	conversationRepo marketplace.ConversationRepository,
	orderRepo marketplace.OrderRepository,
	messageRepo marketplace.MessageRepository,
	logger logger.Interface,
) *IssueOrderUseCase {
	return &IssueOrderUseCase{
		txManager:        txManager,
		requestRepo:      requestRepo,
		applicationRepo:  applicationRepo,
		conversationRepo: conversationRepo,
		orderRepo:        orderRepo,
		messageRepo:      messageRepo,
		logger:           logger,
	}
}

func (uc *IssueOrderUseCase) Execute(ctx context.Context, cmd IssueOrderCommand) (*OrderResult, error) {
	uc.logger.Infow("executing issue order use case", "request_id", cmd.RequestID, "user_id", cmd.Caller.UserID())

	if err := marketplace.RequireAuthenticated(cmd.Caller); err != nil {
		return nil, err
	}
	if !cmd.Caller.IsAdmin() && cmd.Caller.Kind() != identity.KindPartnerOwner {
		return nil, errors.NewForbiddenError("only the accepted partner may issue orders")
	}

	var (
		order *marketplace.Order
		req   *marketplace.Request
	)
	err := uc.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		req, err = uc.requestRepo.GetByID(ctx, cmd.RequestID)
		if err != nil {
			return err
		}
		accepted, err := acceptedPartner(ctx, uc.applicationRepo, req.ID())
		if err != nil {
			return err
		}
		if err := marketplace.RequirePartnerOwner(cmd.Caller, accepted.PartnerID()); err != nil {
			return err
		}
		if !req.Status().AllowsOrders() {
			return errors.NewConflictError("request does not take orders while " + req.Status().String()).
				WithReason(errors.ReasonInvalidTransition)
		}
		conv, err := uc.conversationRepo.FindByRequestAndPartner(ctx, req.ID(), accepted.PartnerID())
		if err != nil {
			return err
		}

		order, err = marketplace.NewOrder(conv, cmd.Caller.UserID(), cmd.Terms)
		if err != nil {
			return err
		}
		if err := uc.orderRepo.Create(ctx, order); err != nil {
			return err
		}
		return appendEvent(ctx, uc.messageRepo, conv.ID(), cmd.Caller.UserID(), events.OrderIssued{
			OrderID:    order.ID(),
			Title:      order.Terms().Title,
			GrossCents: order.Totals().GrossCents,
		})
	})
	if err != nil {
		return nil, internalError(uc.logger, "failed to issue order", err, "request_id", cmd.RequestID)
	}

	uc.logger.Infow("order issued successfully", "order_id", order.ID(), "gross_cents", order.Totals().GrossCents)
	return &OrderResult{
		Order:   dto.ToOrderDTO(order),
		Request: dto.ToRequestDTO(req),
		Changed: true,
	}, nil
}

// OrderAction is a decision on a created order.
type OrderAction string

const (
	OrderActionAccept  OrderAction = "accept"
	OrderActionDecline OrderAction = "decline"
	OrderActionCancel  OrderAction = "cancel"
)

type DecideOrderCommand struct {
	Caller  identity.Caller
	OrderID string
	Action  OrderAction
}

// DecideOrderUseCase moves an order into a terminal state. The consumer
// accepts or declines; the issuing partner cancels. Repeating a decline or
// cancel is a no-op success without a second ledger entry.
type DecideOrderUseCase struct {
	txManager   db.Transactor
	requestRepo marketplace.RequestRepository
	orderRepo   marketplace.OrderRepository
	messageRepo marketplace.MessageRepository
	observer    TransitionObserver
	logger      logger.Interface
}

func NewDecideOrderUseCase(
	txManager db.Transactor,
	requestRepo marketplace.RequestRepository,
	orderRepo marketplace.OrderRepository,
	messageRepo marketplace.MessageRepository,
	observer TransitionObserver,
	logger logger.Interface,
) *DecideOrderUseCase {
	return &DecideOrderUseCase{
		txManager:   txManager,
		requestRepo: requestRepo,
		orderRepo:   orderRepo,
		messageRepo: messageRepo,
		observer:    orNop(observer),
		logger:      logger,
	}
}

func (uc *DecideOrderUseCase) Execute(ctx context.Context, cmd DecideOrderCommand) (*OrderResult, error) {
	uc.logger.Infow("executing decide order use case",
		"order_id", cmd.OrderID,
		"action", cmd.Action,
		"user_id", cmd.Caller.UserID(),
	)

	if err := uc.validateCommand(cmd); err != nil {
		return nil, err
	}

	var (
		order      *marketplace.Order
		req        *marketplace.Request
		orderFrom  vo.OrderStatus
		reqFrom    vo.RequestStatus
		changed    bool
		superseded int
	)
	err := uc.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		order, err = uc.orderRepo.GetByID(ctx, cmd.OrderID)
		if err != nil {
			return err
		}
		req, err = uc.requestRepo.GetByID(ctx, order.RequestID())
		if err != nil {
			return err
		}
		if err := uc.authorize(cmd, req, order); err != nil {
			return err
		}

		orderFrom = order.Status()
		reqFrom = req.Status()
		switch cmd.Action {
		case OrderActionAccept:
			changed, err = order.Accept()
		case OrderActionDecline:
			changed, err = order.Decline()
		case OrderActionCancel:
			changed, err = order.Cancel()
		}
		if err != nil || !changed {
			return err
		}

		if err := uc.orderRepo.UpdateStatus(ctx, order, orderFrom); err != nil {
			return err
		}

		var e events.Event
		switch cmd.Action {
		case OrderActionAccept:
			if err := req.RecordOrderAccepted(); err != nil {
				return err
			}
			if superseded, err = uc.supersede(ctx, order, cmd.Caller.UserID()); err != nil {
				return err
			}
			e = events.OrderAccepted{OrderID: order.ID(), Title: order.Terms().Title, GrossCents: order.Totals().GrossCents}
		case OrderActionDecline:
			if err := req.RecordOrderDeclined(); err != nil {
				return err
			}
			e = events.OrderDeclined{OrderID: order.ID(), Title: order.Terms().Title, TotalCents: order.Totals().GrossCents}
		case OrderActionCancel:
			e = events.OrderCanceled{OrderID: order.ID(), Title: order.Terms().Title}
		}
		if req.Status() != reqFrom {
			if err := uc.requestRepo.Update(ctx, req); err != nil {
				return err
			}
		}
		return appendEvent(ctx, uc.messageRepo, order.ConversationID(), cmd.Caller.UserID(), e)
	})
	if err != nil {
		if errors.HasReason(err, errors.ReasonVersionConflict) {
			if res, ok := uc.concurrentRepeat(ctx, cmd); ok {
				return res, nil
			}
		}
		return nil, internalError(uc.logger, "failed to decide order", err, "order_id", cmd.OrderID)
	}

	if changed {
		uc.observer.ObserveTransition("order", orderFrom.String(), order.Status().String())
		if req.Status() != reqFrom {
			uc.observer.ObserveTransition("request", reqFrom.Code(), req.Status().Code())
		}
		for i := 0; i < superseded; i++ {
			uc.observer.ObserveTransition("order", vo.OrderStatusCreated.String(), vo.OrderStatusCanceled.String())
		}
	}
	uc.logger.Infow("order decided",
		"order_id", order.ID(),
		"status", order.Status(),
		"changed", changed,
		"superseded", superseded,
	)
	return &OrderResult{
		Order:   dto.ToOrderDTO(order),
		Request: dto.ToRequestDTO(req),
		Changed: changed,
	}, nil
}

// supersede cancels the other orders of the request still awaiting a
// decision once one of them is accepted.
func (uc *DecideOrderUseCase) supersede(ctx context.Context, accepted *marketplace.Order, actorID string) (int, error) {
	open, err := uc.orderRepo.ListOpenByRequest(ctx, accepted.RequestID())
	if err != nil {
		return 0, err
	}
	count := 0
	for _, other := range open {
		if other.ID() == accepted.ID() {
			continue
		}
		if _, err := other.Cancel(); err != nil {
			return count, err
		}
		if err := uc.orderRepo.UpdateStatus(ctx, other, vo.OrderStatusCreated); err != nil {
			return count, err
		}
		if err := appendEvent(ctx, uc.messageRepo, other.ConversationID(), actorID, events.OrderCanceled{
			OrderID:    other.ID(),
			Title:      other.Terms().Title,
			Superseded: true,
		}); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// concurrentRepeat covers two identical declines racing: the loser sees a
// version conflict, but the order already holds the state it asked for.
func (uc *DecideOrderUseCase) concurrentRepeat(ctx context.Context, cmd DecideOrderCommand) (*OrderResult, bool) {
	target := map[OrderAction]vo.OrderStatus{
		OrderActionDecline: vo.OrderStatusDeclined,
		OrderActionCancel:  vo.OrderStatusCanceled,
	}[cmd.Action]
	if target == "" {
		return nil, false
	}
	order, err := uc.orderRepo.GetByID(ctx, cmd.OrderID)
	if err != nil || order.Status() != target {
		return nil, false
	}
	req, err := uc.requestRepo.GetByID(ctx, order.RequestID())
	if err != nil {
		return nil, false
	}
	return &OrderResult{Order: dto.ToOrderDTO(order), Request: dto.ToRequestDTO(req)}, true
}

func (uc *DecideOrderUseCase) authorize(cmd DecideOrderCommand, req *marketplace.Request, order *marketplace.Order) error {
	if cmd.Action == OrderActionCancel {
		return marketplace.RequirePartnerOwner(cmd.Caller, order.PartnerID())
	}
	if marketplace.CanManageRequest(cmd.Caller, req) {
		return nil
	}
	if cmd.Caller.OwnsPartner(order.PartnerID()) {
		return errors.NewForbiddenError("only the consumer may " + string(cmd.Action) + " an order")
	}
	return errors.NewNotFoundError("order not found")
}

func (uc *DecideOrderUseCase) validateCommand(cmd DecideOrderCommand) error {
	if err := marketplace.RequireAuthenticated(cmd.Caller); err != nil {
		return err
	}
	if cmd.OrderID == "" {
		return errors.NewValidationError("order id is required")
	}
	switch cmd.Action {
	case OrderActionAccept, OrderActionDecline, OrderActionCancel:
		return nil
	}
	return errors.NewValidationError("action must be accept, decline or cancel")
}

type GetOrderQuery struct {
	Caller  identity.Caller
	OrderID string
}

type GetOrderUseCase struct {
	orderRepo        marketplace.OrderRepository
	conversationRepo marketplace.ConversationRepository
	reader           *retry.Reader
	logger           logger.Interface
}

func NewGetOrderUseCase(
	orderRepo marketplace.OrderRepository,
	conversationRepo marketplace.ConversationRepository,
	reader *retry.Reader,
	logger logger.Interface,
) *GetOrderUseCase {
	return &GetOrderUseCase{
		orderRepo:        orderRepo,
		conversationRepo: conversationRepo,
		reader:           reader,
		logger:           logger,
	}
}

func (uc *GetOrderUseCase) Execute(ctx context.Context, query GetOrderQuery) (*OrderResult, error) {
	if err := marketplace.RequireAuthenticated(query.Caller); err != nil {
		return nil, err
	}

	order, err := retry.Read(ctx, uc.reader, func(ctx context.Context) (*marketplace.Order, error) {
		o, err := uc.orderRepo.GetByID(ctx, query.OrderID)
		if err != nil {
			return nil, err
		}
		conv, err := uc.conversationRepo.GetByID(ctx, o.ConversationID())
		if err != nil {
			return nil, err
		}
		if !marketplace.CanParticipate(query.Caller, conv) {
			return nil, errors.NewNotFoundError("order not found")
		}
		return o, nil
	})
	if err != nil {
		return nil, internalError(uc.logger, "failed to get order", err, "order_id", query.OrderID)
	}
	return &OrderResult{Order: dto.ToOrderDTO(order)}, nil
}
