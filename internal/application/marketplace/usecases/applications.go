package usecases

import (
	"context"
	"strings"

	"github.com/fachwerk-hq/fachwerk/internal/application/marketplace/dto"
	"github.com/fachwerk-hq/fachwerk/internal/domain/identity"
	"github.com/fachwerk-hq/fachwerk/internal/domain/marketplace"
	"github.com/fachwerk-hq/fachwerk/internal/domain/marketplace/events"
	vo "github.com/fachwerk-hq/fachwerk/internal/domain/marketplace/valueobjects"
	"github.com/fachwerk-hq/fachwerk/internal/shared/db"
	"github.com/fachwerk-hq/fachwerk/internal/shared/errors"
	"github.com/fachwerk-hq/fachwerk/internal/shared/logger"
	"github.com/fachwerk-hq/fachwerk/internal/shared/retry"
	"github.com/fachwerk-hq/fachwerk/internal/shared/services/markdown"
)

type SubmitApplicationCommand struct {
	Caller    identity.Caller
	RequestID string
	PartnerID string
	Message   string
}

type SubmitApplicationResult struct {
	Application    *dto.ApplicationDTO
	ConversationID string
}

type SubmitApplicationUseCase struct {
	txManager        db.Transactor
	requestRepo      marketplace.RequestRepository
	applicationRepo  marketplace.ApplicationRepository
	conversationRepo marketplace.ConversationRepository
	renderer         markdown.Renderer
	logger           logger.Interface
}

func NewSubmitApplicationUseCase(
	txManager db.Transactor,
	requestRepo marketplace.RequestRepository,
	applicationRepo marketplace.ApplicationRepository,
	conversationRepo marketplace.ConversationRepository,
	renderer markdown.Renderer,
	logger logger.Interface,
) *SubmitApplicationUseCase {
	return &SubmitApplicationUseCase{
		txManager:        txManager,
		requestRepo:      requestRepo,
		applicationRepo:  applicationRepo,
		conversationRepo: conversationRepo,
		renderer:         renderer,
		logger:           logger,
	}
}

func (uc *SubmitApplicationUseCase) Execute(ctx context.Context, cmd SubmitApplicationCommand) (*SubmitApplicationResult, error) {
	uc.logger.Infow("executing submit application use case",
		"request_id", cmd.RequestID,
		"partner_id", cmd.PartnerID,
		"user_id", cmd.Caller.UserID(),
	)

	if err := uc.validateCommand(cmd); err != nil {
		return nil, err
	}

	var html string
	if text := strings.TrimSpace(cmd.Message); text != "" {
		var err error
		if html, err = uc.renderer.ToHTMLSanitized(text); err != nil {
			return nil, internalError(uc.logger, "failed to render application message", err)
		}
	}

	var (
		app  *marketplace.Application
		conv *marketplace.Conversation
	)
	err := uc.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		req, err := loadVisibleRequest(ctx, uc.requestRepo, uc.applicationRepo, cmd.Caller, cmd.RequestID)
		if err != nil {
			return err
		}
		if req.IsOwnedBy(cmd.Caller.UserID()) {
			return errors.NewForbiddenError("cannot apply to your own request")
		}

		// A repeat is reported as such even after bidding closed.
		applied, err := uc.applicationRepo.HasApplied(ctx, req.ID(), []string{cmd.PartnerID})
		if err != nil {
			return err
		}
		if applied {
			return marketplace.ErrAlreadyApplied()
		}
		if !req.Status().AcceptsApplications() {
			return marketplace.ErrBiddingClosed()
		}

		app, err = marketplace.NewApplication(req.ID(), cmd.PartnerID, cmd.Caller.UserID(), cmd.Message, html)
		if err != nil {
			return err
		}
		// The counter write re-checks the status under the row lock; the
		// request read above may predate a concurrent accept.
		if err := uc.requestRepo.IncrementApplicationCount(ctx, req.ID()); err != nil {
			return err
		}
		if err := uc.applicationRepo.Create(ctx, app); err != nil {
			return err
		}
		conv, err = uc.conversationRepo.GetOrCreate(ctx, marketplace.NewConversation(req.ID(), cmd.PartnerID, req.ConsumerID()))
		return err
	})
	if err != nil {
		return nil, internalError(uc.logger, "failed to submit application", err, "request_id", cmd.RequestID)
	}

	uc.logger.Infow("application submitted successfully", "application_id", app.ID(), "conversation_id", conv.ID())
	return &SubmitApplicationResult{
		Application:    dto.ToApplicationDTO(app),
		ConversationID: conv.ID(),
	}, nil
}

func (uc *SubmitApplicationUseCase) validateCommand(cmd SubmitApplicationCommand) error {
	if err := marketplace.RequireAuthenticated(cmd.Caller); err != nil {
		return err
	}
	if cmd.RequestID == "" {
		return errors.NewValidationError("request id is required")
	}
	if cmd.PartnerID == "" {
		return errors.NewValidationError("partner_id is required")
	}
	return marketplace.RequirePartnerOwner(cmd.Caller, cmd.PartnerID)
}

// ApplicationDecision is the consumer's answer to an application.
type ApplicationDecision string

const (
	DecisionAccept  ApplicationDecision = "accept"
	DecisionDecline ApplicationDecision = "decline"
)

type DecideApplicationCommand struct {
	Caller        identity.Caller
	RequestID     string
	ApplicationID string
	Decision      ApplicationDecision
}

type DecideApplicationResult struct {
	Application      *dto.ApplicationDTO
	Request          *dto.RequestDTO
	ConversationID   string
	DeclinedSiblings int64
}

// DecideApplicationUseCase accepts or declines an application. Accepting is
// all or nothing: the application, its declined siblings, the request status
// and the ledger entry commit together.
type DecideApplicationUseCase struct {
	txManager        db.Transactor
	requestRepo      marketplace.RequestRepository
	applicationRepo  marketplace.ApplicationRepository
	conversationRepo marketplace.ConversationRepository
	messageRepo      marketplace.MessageRepository
	observer         TransitionObserver
	logger           logger.Interface
}

func NewDecideApplicationUseCase(
	txManager db.Transactor,
	requestRepo marketplace.RequestRepository,
	applicationRepo marketplace.ApplicationRepository,
	conversationRepo marketplace.ConversationRepository,
	messageRepo marketplace.MessageRepository,
	observer TransitionObserver,
	logger logger.Interface,
) *DecideApplicationUseCase {
	return &DecideApplicationUseCase{
		txManager:        txManager,
		requestRepo:      requestRepo,
		applicationRepo:  applicationRepo,
		conversationRepo: conversationRepo,
		messageRepo:      messageRepo,
		observer:         orNop(observer),
		logger:           logger,
	}
}

func (uc *DecideApplicationUseCase) Execute(ctx context.Context, cmd DecideApplicationCommand) (*DecideApplicationResult, error) {
	uc.logger.Infow("executing decide application use case",
		"application_id", cmd.ApplicationID,
		"decision", cmd.Decision,
		"user_id", cmd.Caller.UserID(),
	)

	if err := uc.validateCommand(cmd); err != nil {
		return nil, err
	}

	var (
		app      *marketplace.Application
		req      *marketplace.Request
		conv     *marketplace.Conversation
		declined int64
		reqFrom  vo.RequestStatus
		appFrom  vo.ApplicationStatus
	)
	err := uc.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		app, err = uc.applicationRepo.GetByID(ctx, cmd.ApplicationID)
		if err != nil {
			return err
		}
		if cmd.RequestID != "" && app.RequestID() != cmd.RequestID {
			return errors.NewNotFoundError("application not found")
		}
		req, err = uc.requestRepo.GetByID(ctx, app.RequestID())
		if err != nil {
			return err
		}
		if err := marketplace.RequireRequestOwner(cmd.Caller, req); err != nil {
			return err
		}

		reqFrom = req.Status()
		appFrom = app.Status()
		if cmd.Decision == DecisionDecline {
			if err := app.Decline(); err != nil {
				return err
			}
			return uc.applicationRepo.UpdateStatus(ctx, app, appFrom)
		}

		existing, err := uc.applicationRepo.FindAccepted(ctx, req.ID())
		if err != nil {
			return err
		}
		if existing != nil {
			return marketplace.ErrAlreadyAccepted()
		}
		if err := app.Accept(); err != nil {
			return err
		}
		if err := req.Activate(); err != nil {
			return err
		}
		// The version check on the request serializes concurrent accepts.
		if err := uc.requestRepo.Update(ctx, req); err != nil {
			return err
		}
		if err := uc.applicationRepo.UpdateStatus(ctx, app, appFrom); err != nil {
			return err
		}
		if declined, err = uc.applicationRepo.DeclineSubmitted(ctx, req.ID(), app.ID()); err != nil {
			return err
		}
		conv, err = uc.conversationRepo.GetOrCreate(ctx, marketplace.NewConversation(req.ID(), app.PartnerID(), req.ConsumerID()))
		if err != nil {
			return err
		}
		return appendEvent(ctx, uc.messageRepo, conv.ID(), cmd.Caller.UserID(), events.ApplicationAccepted{
			ApplicationID: app.ID(),
			PartnerID:     app.PartnerID(),
		})
	})
	if err != nil {
		if errors.HasReason(err, errors.ReasonVersionConflict) && cmd.Decision == DecisionAccept {
			err = marketplace.ErrAlreadyAccepted()
		}
		return nil, internalError(uc.logger, "failed to decide application", err, "application_id", cmd.ApplicationID)
	}

	uc.observer.ObserveTransition("application", appFrom.String(), app.Status().String())
	result := &DecideApplicationResult{
		Application: dto.ToApplicationDTO(app),
		Request:     dto.ToRequestDTO(req),
	}
	if cmd.Decision == DecisionAccept {
		uc.observer.ObserveTransition("request", reqFrom.Code(), req.Status().Code())
		result.ConversationID = conv.ID()
		result.DeclinedSiblings = declined
	}

	uc.logger.Infow("application decided successfully",
		"application_id", app.ID(),
		"status", app.Status(),
		"declined_siblings", declined,
	)
	return result, nil
}

func (uc *DecideApplicationUseCase) validateCommand(cmd DecideApplicationCommand) error {
	if err := marketplace.RequireAuthenticated(cmd.Caller); err != nil {
		return err
	}
	if cmd.ApplicationID == "" {
		return errors.NewValidationError("application id is required")
	}
	if cmd.Decision != DecisionAccept && cmd.Decision != DecisionDecline {
		return errors.NewValidationError("decision must be accept or decline")
	}
	return nil
}

type ListApplicationsQuery struct {
	Caller    identity.Caller
	RequestID string
}

type ListApplicationsResult struct {
	Applications []*dto.ApplicationDTO
}

// ListApplicationsUseCase shows the owner every application and a
// partner-owner only their own partners' ones.
type ListApplicationsUseCase struct {
	requestRepo     marketplace.RequestRepository
	applicationRepo marketplace.ApplicationRepository
	reader          *retry.Reader
	logger          logger.Interface
}

func NewListApplicationsUseCase(
	requestRepo marketplace.RequestRepository,
	applicationRepo marketplace.ApplicationRepository,
	reader *retry.Reader,
	logger logger.Interface,
) *ListApplicationsUseCase {
	return &ListApplicationsUseCase{
		requestRepo:     requestRepo,
		applicationRepo: applicationRepo,
		reader:          reader,
		logger:          logger,
	}
}

func (uc *ListApplicationsUseCase) Execute(ctx context.Context, query ListApplicationsQuery) (*ListApplicationsResult, error) {
	if err := marketplace.RequireAuthenticated(query.Caller); err != nil {
		return nil, err
	}

	apps, err := retry.Read(ctx, uc.reader, func(ctx context.Context) ([]*marketplace.Application, error) {
		req, err := loadVisibleRequest(ctx, uc.requestRepo, uc.applicationRepo, query.Caller, query.RequestID)
		if err != nil {
			return nil, err
		}
		all, err := uc.applicationRepo.ListByRequest(ctx, req.ID())
		if err != nil {
			return nil, err
		}
		if marketplace.CanManageRequest(query.Caller, req) {
			return all, nil
		}
		own := make([]*marketplace.Application, 0, len(all))
		for _, a := range all {
			if query.Caller.OwnsPartner(a.PartnerID()) {
				own = append(own, a)
			}
		}
		return own, nil
	})
	if err != nil {
		return nil, internalError(uc.logger, "failed to list applications", err, "request_id", query.RequestID)
	}

	out := make([]*dto.ApplicationDTO, 0, len(apps))
	for _, a := range apps {
		out = append(out, dto.ToApplicationDTO(a))
	}
	return &ListApplicationsResult{Applications: out}, nil
}
