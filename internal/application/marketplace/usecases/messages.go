package usecases

import (
	"context"
	"strings"

	"github.com/fachwerk-hq/fachwerk/internal/application/marketplace/dto"
	"github.com/fachwerk-hq/fachwerk/internal/domain/identity"
	"github.com/fachwerk-hq/fachwerk/internal/domain/marketplace"
	"github.com/fachwerk-hq/fachwerk/internal/domain/marketplace/events"
	"github.com/fachwerk-hq/fachwerk/internal/shared/constants"
	"github.com/fachwerk-hq/fachwerk/internal/shared/errors"
	"github.com/fachwerk-hq/fachwerk/internal/shared/logger"
	"github.com/fachwerk-hq/fachwerk/internal/shared/retry"
	"github.com/fachwerk-hq/fachwerk/internal/shared/services/markdown"
)

type MessageResult struct {
	Message *dto.MessageDTO
}

type ConversationResult struct {
	Conversation *dto.ConversationDTO
}

type OpenConversationQuery struct {
	Caller    identity.Caller
	RequestID string
	PartnerID string
}

// OpenConversationUseCase resolves which conversation of a request the caller
// talks in. The live stream uses it before subscribing.
type OpenConversationUseCase struct {
	requestRepo marketplace.RequestRepository
	locator     conversationLocator
	reader      *retry.Reader
	logger      logger.Interface
}

func NewOpenConversationUseCase(
	requestRepo marketplace.RequestRepository,
	applicationRepo marketplace.ApplicationRepository,
	conversationRepo marketplace.ConversationRepository,
	reader *retry.Reader,
	logger logger.Interface,
) *OpenConversationUseCase {
	return &OpenConversationUseCase{
		requestRepo: requestRepo,
		locator:     conversationLocator{conversations: conversationRepo, applications: applicationRepo},
		reader:      reader,
		logger:      logger,
	}
}

func (uc *OpenConversationUseCase) Execute(ctx context.Context, query OpenConversationQuery) (*ConversationResult, error) {
	if err := marketplace.RequireAuthenticated(query.Caller); err != nil {
		return nil, err
	}
	conv, err := retry.Read(ctx, uc.reader, func(ctx context.Context) (*marketplace.Conversation, error) {
		return openConversation(ctx, uc.requestRepo, uc.locator, query.Caller, query.RequestID, query.PartnerID)
	})
	if err != nil {
		return nil, internalError(uc.logger, "failed to open conversation", err, "request_id", query.RequestID)
	}
	return &ConversationResult{Conversation: dto.ToConversationDTO(conv)}, nil
}

func openConversation(
	ctx context.Context,
	requests marketplace.RequestRepository,
	locator conversationLocator,
	caller identity.Caller,
	requestID, partnerID string,
) (*marketplace.Conversation, error) {
	req, err := requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	return locator.locate(ctx, caller, req, partnerID)
}

type SendMessageCommand struct {
	Caller    identity.Caller
	RequestID string
	PartnerID string
	Text      string
}

type SendMessageUseCase struct {
	requestRepo marketplace.RequestRepository
	messageRepo marketplace.MessageRepository
	locator     conversationLocator
	renderer    markdown.Renderer
	logger      logger.Interface
}

func NewSendMessageUseCase(
	requestRepo marketplace.RequestRepository,
	applicationRepo marketplace.ApplicationRepository,
	conversationRepo marketplace.ConversationRepository,
	messageRepo marketplace.MessageRepository,
	renderer markdown.Renderer,
	logger logger.Interface,
) *SendMessageUseCase {
	return &SendMessageUseCase{
		requestRepo: requestRepo,
		messageRepo: messageRepo,
		locator:     conversationLocator{conversations: conversationRepo, applications: applicationRepo},
		renderer:    renderer,
		logger:      logger,
	}
}

func (uc *SendMessageUseCase) Execute(ctx context.Context, cmd SendMessageCommand) (*MessageResult, error) {
	uc.logger.Infow("executing send message use case", "request_id", cmd.RequestID, "user_id", cmd.Caller.UserID())

	if err := marketplace.RequireAuthenticated(cmd.Caller); err != nil {
		return nil, err
	}
	text := strings.TrimSpace(cmd.Text)
	if text == "" {
		return nil, errors.NewValidationError("text is required")
	}

	conv, err := openConversation(ctx, uc.requestRepo, uc.locator, cmd.Caller, cmd.RequestID, cmd.PartnerID)
	if err != nil {
		return nil, internalError(uc.logger, "failed to resolve conversation", err, "request_id", cmd.RequestID)
	}

	html, err := uc.renderer.ToHTMLSanitized(text)
	if err != nil {
		return nil, internalError(uc.logger, "failed to render message", err)
	}
	msg, err := marketplace.NewChatMessage(conv.ID(), cmd.Caller.UserID(), text, html)
	if err != nil {
		return nil, err
	}
	if err := uc.messageRepo.Append(ctx, msg); err != nil {
		return nil, internalError(uc.logger, "failed to append message", err, "conversation_id", conv.ID())
	}

	out, err := dto.ToMessageDTO(msg)
	if err != nil {
		return nil, internalError(uc.logger, "failed to map message", err)
	}
	uc.logger.Infow("message sent", "message_id", msg.ID(), "conversation_id", conv.ID())
	return &MessageResult{Message: out}, nil
}

type ListMessagesQuery struct {
	Caller    identity.Caller
	RequestID string
	PartnerID string
	After     string
	Limit     int
}

type ListMessagesResult struct {
	ConversationID string
	Messages       []*dto.MessageDTO
	// Next is empty when the ledger was read to its end.
	Next string
}

// ListMessagesUseCase pages through a conversation ledger with an opaque cursor.
type ListMessagesUseCase struct {
	requestRepo marketplace.RequestRepository
	messageRepo marketplace.MessageReader
	locator     conversationLocator
	reader      *retry.Reader
	logger      logger.Interface
}

func NewListMessagesUseCase(
	requestRepo marketplace.RequestRepository,
	applicationRepo marketplace.ApplicationRepository,
	conversationRepo marketplace.ConversationRepository,
	messageRepo marketplace.MessageReader,
	reader *retry.Reader,
	logger logger.Interface,
) *ListMessagesUseCase {
	return &ListMessagesUseCase{
		requestRepo: requestRepo,
		messageRepo: messageRepo,
		locator:     conversationLocator{conversations: conversationRepo, applications: applicationRepo},
		reader:      reader,
		logger:      logger,
	}
}

func (uc *ListMessagesUseCase) Execute(ctx context.Context, query ListMessagesQuery) (*ListMessagesResult, error) {
	if err := marketplace.RequireAuthenticated(query.Caller); err != nil {
		return nil, err
	}
	after, err := marketplace.ParseCursor(query.After)
	if err != nil {
		return nil, err
	}
	limit := query.Limit
	if limit <= 0 {
		limit = constants.DefaultMessageLimit
	}
	if limit > constants.MaxMessageLimit {
		limit = constants.MaxMessageLimit
	}

	type page struct {
		conv     *marketplace.Conversation
		messages []*marketplace.Message
	}
	res, err := retry.Read(ctx, uc.reader, func(ctx context.Context) (page, error) {
		conv, err := openConversation(ctx, uc.requestRepo, uc.locator, query.Caller, query.RequestID, query.PartnerID)
		if err != nil {
			return page{}, err
		}
		// One row beyond the limit tells whether another page exists.
		msgs, err := uc.messageRepo.ListAfter(ctx, conv.ID(), after, limit+1)
		return page{conv: conv, messages: msgs}, err
	})
	if err != nil {
		return nil, internalError(uc.logger, "failed to list messages", err, "request_id", query.RequestID)
	}

	msgs := res.messages
	var next string
	if len(msgs) > limit {
		msgs = msgs[:limit]
		next = msgs[len(msgs)-1].Cursor().Encode()
	}
	out, err := dto.ToMessageDTOList(msgs)
	if err != nil {
		return nil, internalError(uc.logger, "failed to map messages", err)
	}
	return &ListMessagesResult{
		ConversationID: res.conv.ID(),
		Messages:       out,
		Next:           next,
	}, nil
}

type RecordInvoiceStatusCommand struct {
	Caller    identity.Caller
	RequestID string
	InvoiceID string
	Status    string
}

var invoiceStatuses = map[string]bool{
	"draft":    true,
	"sent":     true,
	"paid":     true,
	"overdue":  true,
	"canceled": true,
}

// RecordInvoiceStatusUseCase notes an invoice update from billing in the
// accepted partner's conversation.
type RecordInvoiceStatusUseCase struct {
	requestRepo      marketplace.RequestRepository
	applicationRepo  marketplace.ApplicationRepository
	conversationRepo marketplace.ConversationRepository
	messageRepo      marketplace.MessageRepository
	logger           logger.Interface
}

func NewRecordInvoiceStatusUseCase(
	requestRepo marketplace.RequestRepository,
	applicationRepo marketplace.ApplicationRepository,
	conversationRepo marketplace.ConversationRepository,
	messageRepo marketplace.MessageRepository,
	logger logger.Interface,
) *RecordInvoiceStatusUseCase {
	return &RecordInvoiceStatusUseCase{
		requestRepo:      requestRepo,
		applicationRepo:  applicationRepo,
		conversationRepo: conversationRepo,
		messageRepo:      messageRepo,
		logger:           logger,
	}
}

func (uc *RecordInvoiceStatusUseCase) Execute(ctx context.Context, cmd RecordInvoiceStatusCommand) (*MessageResult, error) {
	uc.logger.Infow("executing record invoice status use case",
		"request_id", cmd.RequestID,
		"invoice_id", cmd.InvoiceID,
		"status", cmd.Status,
	)

	if err := marketplace.RequireAuthenticated(cmd.Caller); err != nil {
		return nil, err
	}
	if strings.TrimSpace(cmd.InvoiceID) == "" {
		return nil, errors.NewValidationError("invoice_id is required")
	}
	if !invoiceStatuses[cmd.Status] {
		return nil, errors.NewValidationError("unknown invoice status: " + cmd.Status)
	}

	req, err := uc.requestRepo.GetByID(ctx, cmd.RequestID)
	if err != nil {
		return nil, internalError(uc.logger, "failed to get request", err, "request_id", cmd.RequestID)
	}
	accepted, err := acceptedPartner(ctx, uc.applicationRepo, req.ID())
	if err != nil {
		return nil, internalError(uc.logger, "failed to find accepted partner", err, "request_id", req.ID())
	}
	if err := marketplace.RequirePartnerOwner(cmd.Caller, accepted.PartnerID()); err != nil {
		return nil, err
	}
	conv, err := uc.conversationRepo.FindByRequestAndPartner(ctx, req.ID(), accepted.PartnerID())
	if err != nil {
		return nil, internalError(uc.logger, "failed to find conversation", err, "request_id", req.ID())
	}

	msg := marketplace.NewEventMessage(conv.ID(), cmd.Caller.UserID(), events.InvoiceStatusChanged{
		InvoiceID: strings.TrimSpace(cmd.InvoiceID),
		Status:    cmd.Status,
	})
	if err := uc.messageRepo.Append(ctx, msg); err != nil {
		return nil, internalError(uc.logger, "failed to record invoice status", err, "conversation_id", conv.ID())
	}
	out, err := dto.ToMessageDTO(msg)
	if err != nil {
		return nil, internalError(uc.logger, "failed to map message", err)
	}
	return &MessageResult{Message: out}, nil
}
