package usecases

import (
	"context"

	"github.com/fachwerk-hq/fachwerk/internal/application/marketplace/dto"
	"github.com/fachwerk-hq/fachwerk/internal/domain/identity"
	"github.com/fachwerk-hq/fachwerk/internal/domain/marketplace"
	"github.com/fachwerk-hq/fachwerk/internal/domain/marketplace/events"
	"github.com/fachwerk-hq/fachwerk/internal/shared/db"
	"github.com/fachwerk-hq/fachwerk/internal/shared/errors"
	"github.com/fachwerk-hq/fachwerk/internal/shared/logger"
	"github.com/fachwerk-hq/fachwerk/internal/shared/retry"
)

type RatingResult struct {
	Rating *dto.RatingDTO
}

type SubmitRatingCommand struct {
	Caller      identity.Caller
	RequestID   string
	Stars       int
	Text        string
	DisplayName string
}

// SubmitRatingUseCase records the consumer's single rating of the partner
// that was accepted on the request.
type SubmitRatingUseCase struct {
	txManager        db.Transactor
	requestRepo      marketplace.RequestRepository
	applicationRepo  marketplace.ApplicationRepository
	conversationRepo marketplace.ConversationRepository
	ratingRepo       marketplace.RatingRepository
	messageRepo      marketplace.MessageRepository
	scale            marketplace.RatingScale
	logger           logger.Interface
}

func NewSubmitRatingUseCase(
	txManager db.Transactor,
	requestRepo marketplace.RequestRepository,
	applicationRepo marketplace.ApplicationRepository,
	conversationRepo marketplace.ConversationRepository,
	ratingRepo marketplace.RatingRepository,
	messageRepo marketplace.MessageRepository,
	scale marketplace.RatingScale,
	logger logger.Interface,
) *SubmitRatingUseCase {
	return &SubmitRatingUseCase{
		txManager:        txManager,
		requestRepo:      requestRepo,
		applicationRepo:  applicationRepo,
		conversationRepo: conversationRepo,
		ratingRepo:       ratingRepo,
		messageRepo:      messageRepo,
		scale:            scale,
		logger:           logger,
	}
}

func (uc *SubmitRatingUseCase) Execute(ctx context.Context, cmd SubmitRatingCommand) (*RatingResult, error) {
	uc.logger.Infow("executing submit rating use case", "request_id", cmd.RequestID, "user_id", cmd.Caller.UserID())

	if err := marketplace.RequireAuthenticated(cmd.Caller); err != nil {
		return nil, err
	}

	var rating *marketplace.Rating
	err := uc.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		req, err := uc.requestRepo.GetByID(ctx, cmd.RequestID)
		if err != nil {
			return err
		}
		// Admins may not rate on a consumer's behalf.
		if !req.IsOwnedBy(cmd.Caller.UserID()) {
			return errors.NewForbiddenError("only the request owner may rate")
		}
		exists, err := uc.ratingRepo.ExistsForRequest(ctx, req.ID(), req.ConsumerID())
		if err != nil {
			return err
		}
		if exists {
			return marketplace.ErrAlreadyRated()
		}
		accepted, err := acceptedPartner(ctx, uc.applicationRepo, req.ID())
		if err != nil {
			return err
		}

		rating, err = marketplace.NewRating(uc.scale, accepted.PartnerID(), req.ID(), req.ConsumerID(), cmd.Stars, cmd.Text, cmd.DisplayName)
		if err != nil {
			return err
		}
		if err := uc.ratingRepo.Create(ctx, rating); err != nil {
			return err
		}
		conv, err := uc.conversationRepo.FindByRequestAndPartner(ctx, req.ID(), accepted.PartnerID())
		if err != nil {
			return err
		}
		return appendEvent(ctx, uc.messageRepo, conv.ID(), cmd.Caller.UserID(), events.RatingSubmitted{
			RequestID: req.ID(),
			Stars:     rating.Stars(),
		})
	})
	if err != nil {
		return nil, internalError(uc.logger, "failed to submit rating", err, "request_id", cmd.RequestID)
	}

	uc.logger.Infow("rating submitted successfully", "rating_id", rating.ID(), "partner_id", rating.PartnerID())
	return &RatingResult{Rating: dto.ToRatingDTO(rating)}, nil
}

type ListRatingsQuery struct {
	Caller    identity.Caller
	PartnerID string
	Page      int
	PageSize  int
}

type ListRatingsResult struct {
	Ratings  []*dto.RatingDTO
	Total    int64
	Average  float64
	Page     int
	PageSize int
}

type ListRatingsUseCase struct {
	ratingRepo marketplace.RatingRepository
	reader     *retry.Reader
	logger     logger.Interface
}

func NewListRatingsUseCase(ratingRepo marketplace.RatingRepository, reader *retry.Reader, logger logger.Interface) *ListRatingsUseCase {
	return &ListRatingsUseCase{
		ratingRepo: ratingRepo,
		reader:     reader,
		logger:     logger,
	}
}

func (uc *ListRatingsUseCase) Execute(ctx context.Context, query ListRatingsQuery) (*ListRatingsResult, error) {
	if err := marketplace.RequireAuthenticated(query.Caller); err != nil {
		return nil, err
	}
	if query.PartnerID == "" {
		return nil, errors.NewValidationError("partner id is required")
	}

	result := &ListRatingsResult{Page: query.Page, PageSize: query.PageSize}
	err := uc.reader.Do(ctx, func(ctx context.Context) error {
		ratings, total, err := uc.ratingRepo.ListByPartner(ctx, query.PartnerID, query.Page, query.PageSize)
		if err != nil {
			return err
		}
		summary, err := uc.ratingRepo.SummaryForPartner(ctx, query.PartnerID)
		if err != nil {
			return err
		}
		result.Ratings = make([]*dto.RatingDTO, 0, len(ratings))
		for _, r := range ratings {
			result.Ratings = append(result.Ratings, dto.ToRatingDTO(r))
		}
		result.Total = total
		result.Average = summary.Average
		return nil
	})
	if err != nil {
		return nil, internalError(uc.logger, "failed to list ratings", err, "partner_id", query.PartnerID)
	}
	return result, nil
}
