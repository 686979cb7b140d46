package http

import (
	"github.com/fachwerk-hq/fachwerk/internal/application/marketplace/usecases"
	"github.com/fachwerk-hq/fachwerk/internal/domain/marketplace"
	"github.com/fachwerk-hq/fachwerk/internal/infrastructure/config"
	"github.com/fachwerk-hq/fachwerk/internal/shared/db"
	"github.com/fachwerk-hq/fachwerk/internal/shared/logger"
	"github.com/fachwerk-hq/fachwerk/internal/shared/retry"
	"github.com/fachwerk-hq/fachwerk/internal/shared/services/markdown"
)

// allUseCases holds every marketplace use case exposed over HTTP.
type allUseCases struct {
	// Requests
	createRequestUC  *usecases.CreateRequestUseCase
	getRequestUC     *usecases.GetRequestUseCase
	listRequestsUC   *usecases.ListRequestsUseCase
	deleteRequestUC  *usecases.DeleteRequestUseCase
	reportProblemUC  *usecases.ReportProblemUseCase
	resolveProblemUC *usecases.ResolveProblemUseCase
	recordInvoiceUC  *usecases.RecordInvoiceStatusUseCase

	// Applications
	submitApplicationUC *usecases.SubmitApplicationUseCase
	decideApplicationUC *usecases.DecideApplicationUseCase
	listApplicationsUC  *usecases.ListApplicationsUseCase

	// Chat
	openConversationUC *usecases.OpenConversationUseCase
	sendMessageUC      *usecases.SendMessageUseCase
	listMessagesUC     *usecases.ListMessagesUseCase

	// Appointments
	proposeAppointmentUC *usecases.ProposeAppointmentUseCase
	respondAppointmentUC *usecases.RespondAppointmentUseCase

	// Orders
	issueOrderUC  *usecases.IssueOrderUseCase
	decideOrderUC *usecases.DecideOrderUseCase
	getOrderUC    *usecases.GetOrderUseCase

	// Ratings
	submitRatingUC *usecases.SubmitRatingUseCase
	listRatingsUC  *usecases.ListRatingsUseCase
}

func newUseCases(
	cfg *config.Config,
	repos *repositories,
	txManager db.Transactor,
	observer usecases.TransitionObserver,
	log logger.Interface,
) *allUseCases {
	reader := retry.NewReader(retry.Policy{
		Attempts:  cfg.Retry.Attempts,
		BaseDelay: cfg.Retry.BaseDelay,
	})
	renderer := markdown.NewRenderer()
	scale := marketplace.RatingScale{Min: cfg.Marketplace.RatingMin, Max: cfg.Marketplace.RatingMax}

	req, app, conv, msg := repos.requestRepo, repos.applicationRepo, repos.conversationRepo, repos.messageRepo

	return &allUseCases{
		createRequestUC:  usecases.NewCreateRequestUseCase(req, log),
		getRequestUC:     usecases.NewGetRequestUseCase(req, app, reader, log),
		listRequestsUC:   usecases.NewListRequestsUseCase(req, reader, log),
		deleteRequestUC:  usecases.NewDeleteRequestUseCase(req, observer, log),
		reportProblemUC:  usecases.NewReportProblemUseCase(txManager, req, app, conv, msg, cfg.Marketplace.ProblemNoteMinLength, observer, log),
		resolveProblemUC: usecases.NewResolveProblemUseCase(req, observer, log),
		recordInvoiceUC:  usecases.NewRecordInvoiceStatusUseCase(req, app, conv, msg, log),

		submitApplicationUC: usecases.NewSubmitApplicationUseCase(txManager, req, app, conv, renderer, log),
		decideApplicationUC: usecases.NewDecideApplicationUseCase(txManager, req, app, conv, msg, observer, log),
		listApplicationsUC:  usecases.NewListApplicationsUseCase(req, app, reader, log),

		openConversationUC: usecases.NewOpenConversationUseCase(req, app, conv, reader, log),
		sendMessageUC:      usecases.NewSendMessageUseCase(req, app, conv, msg, renderer, log),
		listMessagesUC:     usecases.NewListMessagesUseCase(req, app, conv, msg, reader, log),

		proposeAppointmentUC: usecases.NewProposeAppointmentUseCase(txManager, req, app, conv, repos.appointmentRepo, msg, observer, log),
		respondAppointmentUC: usecases.NewRespondAppointmentUseCase(txManager, req, repos.appointmentRepo, msg, observer, log),

		issueOrderUC:  usecases.NewIssueOrderUseCase(txManager, req, app, conv, repos.orderRepo, msg, log),
		decideOrderUC: usecases.NewDecideOrderUseCase(txManager, req, repos.orderRepo, msg, observer, log),
		getOrderUC:    usecases.NewGetOrderUseCase(repos.orderRepo, conv, reader, log),

		submitRatingUC: usecases.NewSubmitRatingUseCase(txManager, req, app, conv, repos.ratingRepo, msg, scale, log),
		listRatingsUC:  usecases.NewListRatingsUseCase(repos.ratingRepo, reader, log),
	}
}
