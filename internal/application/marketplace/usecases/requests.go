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
)

type RequestResult struct {
	Request *dto.RequestDTO
}

type CreateRequestCommand struct {
	Caller identity.Caller
	Draft  marketplace.RequestDraft
}

type CreateRequestUseCase struct {
	requestRepo marketplace.RequestRepository
	logger      logger.Interface
}

func NewCreateRequestUseCase(requestRepo marketplace.RequestRepository, logger logger.Interface) *CreateRequestUseCase {
	return &CreateRequestUseCase{
		requestRepo: requestRepo,
		logger:      logger,
	}
}

func (uc *CreateRequestUseCase) Execute(ctx context.Context, cmd CreateRequestCommand) (*RequestResult, error) {
	uc.logger.Infow("executing create request use case", "user_id", cmd.Caller.UserID(), "category", cmd.Draft.Category)

	if err := marketplace.RequireAuthenticated(cmd.Caller); err != nil {
		return nil, err
	}

	req, err := marketplace.NewRequest(cmd.Caller.UserID(), cmd.Draft)
	if err != nil {
		return nil, err
	}

	if err := uc.requestRepo.Create(ctx, req); err != nil {
		return nil, internalError(uc.logger, "failed to save request", err)
	}

	uc.logger.Infow("request created successfully", "request_id", req.ID())
	return &RequestResult{Request: dto.ToRequestDTO(req)}, nil
}

type GetRequestQuery struct {
	Caller    identity.Caller
	RequestID string
}

type GetRequestUseCase struct {
	requestRepo     marketplace.RequestRepository
	applicationRepo marketplace.ApplicationRepository
	reader          *retry.Reader
	logger          logger.Interface
}

func NewGetRequestUseCase(
	requestRepo marketplace.RequestRepository,
	applicationRepo marketplace.ApplicationRepository,
	reader *retry.Reader,
	logger logger.Interface,
) *GetRequestUseCase {
	return &GetRequestUseCase{
		requestRepo:     requestRepo,
		applicationRepo: applicationRepo,
		reader:          reader,
		logger:          logger,
	}
}

func (uc *GetRequestUseCase) Execute(ctx context.Context, query GetRequestQuery) (*RequestResult, error) {
	if err := marketplace.RequireAuthenticated(query.Caller); err != nil {
		return nil, err
	}
	if query.RequestID == "" {
		return nil, errors.NewValidationError("request id is required")
	}

	req, err := retry.Read(ctx, uc.reader, func(ctx context.Context) (*marketplace.Request, error) {
		return loadVisibleRequest(ctx, uc.requestRepo, uc.applicationRepo, query.Caller, query.RequestID)
	})
	if err != nil {
		return nil, internalError(uc.logger, "failed to get request", err, "request_id", query.RequestID)
	}
	return &RequestResult{Request: dto.ToRequestDTO(req)}, nil
}

type ListRequestsQuery struct {
	Caller   identity.Caller
	Statuses []string
	// Mine restricts an admin or partner-owner to requests they posted as consumer.
	Mine     bool
	Page     int
	PageSize int
}

type ListRequestsResult struct {
	Requests []*dto.RequestDTO
	Total    int64
	Page     int
	PageSize int
}

type ListRequestsUseCase struct {
	requestRepo marketplace.RequestRepository
	reader      *retry.Reader
	logger      logger.Interface
}

func NewListRequestsUseCase(requestRepo marketplace.RequestRepository, reader *retry.Reader, logger logger.Interface) *ListRequestsUseCase {
	return &ListRequestsUseCase{
		requestRepo: requestRepo,
		reader:      reader,
		logger:      logger,
	}
}

func (uc *ListRequestsUseCase) Execute(ctx context.Context, query ListRequestsQuery) (*ListRequestsResult, error) {
	if err := marketplace.RequireAuthenticated(query.Caller); err != nil {
		return nil, err
	}

	filter := marketplace.RequestFilter{Page: query.Page, PageSize: query.PageSize}
	for _, s := range query.Statuses {
		status, err := vo.ParseRequestStatus(strings.TrimSpace(s))
		if err != nil {
			return nil, errors.NewValidationError(err.Error())
		}
		filter.Statuses = append(filter.Statuses, status)
	}

	// Consumers only ever see their own requests; partner-owners see the open
	// market plus what they applied to.
	switch {
	case query.Mine || query.Caller.Kind() == identity.KindConsumer:
		filter.ConsumerID = query.Caller.UserID()
	case query.Caller.Kind() == identity.KindPartnerOwner:
		filter.PartnerIDs = query.Caller.OwnedPartnerIDs()
	}

	type page struct {
		items []*marketplace.Request
		total int64
	}
	res, err := retry.Read(ctx, uc.reader, func(ctx context.Context) (page, error) {
		items, total, err := uc.requestRepo.List(ctx, filter)
		return page{items: items, total: total}, err
	})
	if err != nil {
		return nil, internalError(uc.logger, "failed to list requests", err)
	}

	return &ListRequestsResult{
		Requests: dto.ToRequestDTOList(res.items),
		Total:    res.total,
		Page:     query.Page,
		PageSize: query.PageSize,
	}, nil
}

type DeleteRequestCommand struct {
	Caller    identity.Caller
	RequestID string
}

type DeleteRequestUseCase struct {
	requestRepo marketplace.RequestRepository
	observer    TransitionObserver
	logger      logger.Interface
}

func NewDeleteRequestUseCase(requestRepo marketplace.RequestRepository, observer TransitionObserver, logger logger.Interface) *DeleteRequestUseCase {
	return &DeleteRequestUseCase{
		requestRepo: requestRepo,
		observer:    orNop(observer),
		logger:      logger,
	}
}

func (uc *DeleteRequestUseCase) Execute(ctx context.Context, cmd DeleteRequestCommand) (*RequestResult, error) {
	uc.logger.Infow("executing delete request use case", "request_id", cmd.RequestID, "user_id", cmd.Caller.UserID())

	if err := marketplace.RequireAuthenticated(cmd.Caller); err != nil {
		return nil, err
	}

	req, err := uc.requestRepo.GetByID(ctx, cmd.RequestID)
	if err != nil {
		return nil, internalError(uc.logger, "failed to get request", err, "request_id", cmd.RequestID)
	}
	if !marketplace.CanManageRequest(cmd.Caller, req) {
		return nil, errors.NewNotFoundError("request not found")
	}

	from := req.Status()
	if err := req.SoftDelete(); err != nil {
		return nil, err
	}
	if err := uc.requestRepo.Update(ctx, req); err != nil {
		return nil, internalError(uc.logger, "failed to delete request", err, "request_id", req.ID())
	}

	uc.observer.ObserveTransition("request", from.Code(), req.Status().Code())
	uc.logger.Infow("request deleted successfully", "request_id", req.ID())
	return &RequestResult{Request: dto.ToRequestDTO(req)}, nil
}

type ReportProblemCommand struct {
	Caller    identity.Caller
	RequestID string
	Note      string
}

// ReportProblemUseCase escalates a request. The consumer or any partner with a
// conversation on the request may report.
type ReportProblemUseCase struct {
	txManager        db.Transactor
	requestRepo      marketplace.RequestRepository
	applicationRepo  marketplace.ApplicationRepository
	conversationRepo marketplace.ConversationRepository
	messageRepo      marketplace.MessageRepository
	minNoteLength    int
	observer         TransitionObserver
	logger           logger.Interface
}

func NewReportProblemUseCase(
	txManager db.Transactor,
	requestRepo marketplace.RequestRepository,
	applicationRepo marketplace.ApplicationRepository,
	conversationRepo marketplace.ConversationRepository,
	messageRepo marketplace.MessageRepository,
	minNoteLength int,
	observer TransitionObserver,
	logger logger.Interface,
) *ReportProblemUseCase {
	return &ReportProblemUseCase{
		txManager:        txManager,
		requestRepo:      requestRepo,
		applicationRepo:  applicationRepo,
		conversationRepo: conversationRepo,
		messageRepo:      messageRepo,
		minNoteLength:    minNoteLength,
		observer:         orNop(observer),
		logger:           logger,
	}
}

func (uc *ReportProblemUseCase) Execute(ctx context.Context, cmd ReportProblemCommand) (*RequestResult, error) {
	uc.logger.Infow("executing report problem use case", "request_id", cmd.RequestID, "user_id", cmd.Caller.UserID())

	if err := marketplace.RequireAuthenticated(cmd.Caller); err != nil {
		return nil, err
	}

	var (
		req  *marketplace.Request
		from vo.RequestStatus
	)
	err := uc.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		req, err = loadVisibleRequest(ctx, uc.requestRepo, uc.applicationRepo, cmd.Caller, cmd.RequestID)
		if err != nil {
			return err
		}

		conv, err := uc.reporterConversation(ctx, cmd.Caller, req)
		if err != nil {
			return err
		}

		from = req.Status()
		if err := req.ReportProblem(cmd.Note, cmd.Caller.UserID(), uc.minNoteLength); err != nil {
			return err
		}
		if err := uc.requestRepo.Update(ctx, req); err != nil {
			return err
		}
		if conv == nil {
			return nil
		}
		return appendEvent(ctx, uc.messageRepo, conv.ID(), cmd.Caller.UserID(), problemReported(req, from))
	})
	if err != nil {
		return nil, internalError(uc.logger, "failed to report problem", err, "request_id", cmd.RequestID)
	}

	uc.observer.ObserveTransition("request", from.Code(), req.Status().Code())
	uc.logger.Warnw("problem reported", "request_id", req.ID(), "previous_status", from.Code())
	return &RequestResult{Request: dto.ToRequestDTO(req)}, nil
}

// reporterConversation returns the conversation the report is recorded in, or
// nil when the request has none yet. Before acceptance any applicant may
// report; afterwards only the accepted partner is involved.
func (uc *ReportProblemUseCase) reporterConversation(ctx context.Context, caller identity.Caller, req *marketplace.Request) (*marketplace.Conversation, error) {
	convs, err := uc.conversationRepo.ListByRequest(ctx, req.ID())
	if err != nil {
		return nil, err
	}
	accepted, err := uc.applicationRepo.FindAccepted(ctx, req.ID())
	if err != nil {
		return nil, err
	}
	involved := func(conv *marketplace.Conversation) bool {
		return accepted == nil || conv.PartnerID() == accepted.PartnerID()
	}

	for _, conv := range convs {
		if caller.OwnsPartner(conv.PartnerID()) && involved(conv) {
			return conv, nil
		}
	}
	if !marketplace.CanManageRequest(caller, req) {
		return nil, errors.NewForbiddenError("only participants may report a problem")
	}
	if accepted == nil {
		return nil, nil
	}
	for _, conv := range convs {
		if involved(conv) {
			return conv, nil
		}
	}
	return nil, nil
}

func problemReported(req *marketplace.Request, from vo.RequestStatus) events.ProblemReported {
	return events.ProblemReported{Note: req.Extras().ProblemNote, PreviousStatus: from.String()}
}

type ResolveProblemCommand struct {
	Caller    identity.Caller
	RequestID string
}

type ResolveProblemUseCase struct {
	requestRepo marketplace.RequestRepository
	observer    TransitionObserver
	logger      logger.Interface
}

func NewResolveProblemUseCase(requestRepo marketplace.RequestRepository, observer TransitionObserver, logger logger.Interface) *ResolveProblemUseCase {
	return &ResolveProblemUseCase{
		requestRepo: requestRepo,
		observer:    orNop(observer),
		logger:      logger,
	}
}

func (uc *ResolveProblemUseCase) Execute(ctx context.Context, cmd ResolveProblemCommand) (*RequestResult, error) {
	uc.logger.Infow("executing resolve problem use case", "request_id", cmd.RequestID, "user_id", cmd.Caller.UserID())

	if err := marketplace.RequireAuthenticated(cmd.Caller); err != nil {
		return nil, err
	}
	if !cmd.Caller.IsAdmin() {
		return nil, errors.NewForbiddenError("only admins may resolve problems")
	}

	req, err := uc.requestRepo.GetByID(ctx, cmd.RequestID)
	if err != nil {
		return nil, internalError(uc.logger, "failed to get request", err, "request_id", cmd.RequestID)
	}
	from := req.Status()
	if _, err := req.ResolveProblem(); err != nil {
		return nil, err
	}
	if err := uc.requestRepo.Update(ctx, req); err != nil {
		return nil, internalError(uc.logger, "failed to resolve problem", err, "request_id", req.ID())
	}

	uc.observer.ObserveTransition("request", from.Code(), req.Status().Code())
	uc.logger.Infow("problem resolved", "request_id", req.ID(), "restored_status", req.Status().Code())
	return &RequestResult{Request: dto.ToRequestDTO(req)}, nil
}
