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
)

type AppointmentResult struct {
	Appointment *dto.AppointmentDTO
	Request     *dto.RequestDTO
}

type ProposeAppointmentCommand struct {
	Caller    identity.Caller
	RequestID string
	Slot      marketplace.AppointmentSlot
}

// ProposeAppointmentUseCase lets the accepted partner propose a slot. Open or
// confirmed earlier appointments are declined as superseded.
type ProposeAppointmentUseCase struct {
	txManager        db.Transactor
	requestRepo      marketplace.RequestRepository
	applicationRepo  marketplace.ApplicationRepository
	conversationRepo marketplace.ConversationRepository
	appointmentRepo  marketplace.AppointmentRepository
	messageRepo      marketplace.MessageRepository
	observer         TransitionObserver
	logger           logger.Interface
}

func NewProposeAppointmentUseCase(
	txManager db.Transactor,
	requestRepo marketplace.RequestRepository,
	applicationRepo marketplace.ApplicationRepository,
	conversationRepo marketplace.ConversationRepository,
	appointmentRepo marketplace.AppointmentRepository,
	messageRepo marketplace.MessageRepository,
	observer TransitionObserver,
	logger logger.Interface,
) *ProposeAppointmentUseCase {
	return &ProposeAppointmentUseCase{
		txManager:        txManager,
		requestRepo:      requestRepo,
		applicationRepo:  applicationRepo,
		conversationRepo: conversationRepo,
		appointmentRepo:  appointmentRepo,
		messageRepo:      messageRepo,
		observer:         orNop(observer),
		logger:           logger,
	}
}

func (uc *ProposeAppointmentUseCase) Execute(ctx context.Context, cmd ProposeAppointmentCommand) (*AppointmentResult, error) {
	uc.logger.Infow("executing propose appointment use case", "request_id", cmd.RequestID, "user_id", cmd.Caller.UserID())

	if err := marketplace.RequireAuthenticated(cmd.Caller); err != nil {
		return nil, err
	}
	if !cmd.Caller.IsAdmin() && cmd.Caller.Kind() != identity.KindPartnerOwner {
		return nil, errors.NewForbiddenError("only the accepted partner may propose appointments")
	}

	var (
		appt       *marketplace.Appointment
		req        *marketplace.Request
		from       vo.RequestStatus
		superseded int
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
		conv, err := uc.conversationRepo.FindByRequestAndPartner(ctx, req.ID(), accepted.PartnerID())
		if err != nil {
			return err
		}

		appt, err = marketplace.NewAppointment(conv, cmd.Caller.UserID(), cmd.Slot)
		if err != nil {
			return err
		}
		from = req.Status()
		if err := req.ProposeAppointment(appt.ID()); err != nil {
			return err
		}
		if err := uc.requestRepo.Update(ctx, req); err != nil {
			return err
		}

		superseded, err = uc.supersede(ctx, req.ID(), cmd.Caller.UserID())
		if err != nil {
			return err
		}
		if err := uc.appointmentRepo.Create(ctx, appt); err != nil {
			return err
		}
		return appendEvent(ctx, uc.messageRepo, conv.ID(), cmd.Caller.UserID(), events.AppointmentProposed{
			AppointmentID: appt.ID(),
			Kind:          appt.Slot().Kind.String(),
			StartAt:       appt.Slot().StartAt,
			DurationMin:   appt.Slot().DurationMin,
		})
	})
	if err != nil {
		return nil, internalError(uc.logger, "failed to propose appointment", err, "request_id", cmd.RequestID)
	}

	uc.observer.ObserveTransition("request", from.Code(), req.Status().Code())
	uc.logger.Infow("appointment proposed successfully",
		"appointment_id", appt.ID(),
		"request_id", req.ID(),
		"superseded", superseded,
	)
	return &AppointmentResult{
		Appointment: dto.ToAppointmentDTO(appt),
		Request:     dto.ToRequestDTO(req),
	}, nil
}

func (uc *ProposeAppointmentUseCase) supersede(ctx context.Context, requestID, actorID string) (int, error) {
	count := 0
	for _, status := range []vo.AppointmentStatus{vo.AppointmentStatusProposed, vo.AppointmentStatusConfirmed} {
		open, err := uc.appointmentRepo.ListByRequestAndStatus(ctx, requestID, status)
		if err != nil {
			return count, err
		}
		for _, old := range open {
			if err := old.Decline(); err != nil {
				return count, err
			}
			if err := uc.appointmentRepo.UpdateStatus(ctx, old, status); err != nil {
				return count, err
			}
			if err := appendEvent(ctx, uc.messageRepo, old.ConversationID(), actorID, events.AppointmentDeclined{
				AppointmentID: old.ID(),
				Superseded:    true,
			}); err != nil {
				return count, err
			}
			count++
		}
	}
	return count, nil
}

// AppointmentResponse is the consumer's answer to a proposal.
type AppointmentResponse string

const (
	AppointmentConfirm AppointmentResponse = "confirm"
	AppointmentDecline AppointmentResponse = "decline"
)

type RespondAppointmentCommand struct {
	Caller        identity.Caller
	RequestID     string
	AppointmentID string
	Response      AppointmentResponse
}

// RespondAppointmentUseCase confirms or declines the current proposal on
// behalf of the request owner.
type RespondAppointmentUseCase struct {
	txManager       db.Transactor
	requestRepo     marketplace.RequestRepository
	appointmentRepo marketplace.AppointmentRepository
	messageRepo     marketplace.MessageRepository
	observer        TransitionObserver
	logger          logger.Interface
}

func NewRespondAppointmentUseCase(
	txManager db.Transactor,
	requestRepo marketplace.RequestRepository,
	appointmentRepo marketplace.AppointmentRepository,
	messageRepo marketplace.MessageRepository,
	observer TransitionObserver,
	logger logger.Interface,
) *RespondAppointmentUseCase {
	return &RespondAppointmentUseCase{
		txManager:       txManager,
		requestRepo:     requestRepo,
		appointmentRepo: appointmentRepo,
		messageRepo:     messageRepo,
		observer:        orNop(observer),
		logger:          logger,
	}
}

func (uc *RespondAppointmentUseCase) Execute(ctx context.Context, cmd RespondAppointmentCommand) (*AppointmentResult, error) {
	uc.logger.Infow("executing respond appointment use case",
		"appointment_id", cmd.AppointmentID,
		"response", cmd.Response,
		"user_id", cmd.Caller.UserID(),
	)

	if err := marketplace.RequireAuthenticated(cmd.Caller); err != nil {
		return nil, err
	}
	if cmd.Response != AppointmentConfirm && cmd.Response != AppointmentDecline {
		return nil, errors.NewValidationError("response must be confirm or decline")
	}

	var (
		appt *marketplace.Appointment
		req  *marketplace.Request
		from vo.RequestStatus
	)
	err := uc.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		req, err = uc.requestRepo.GetByID(ctx, cmd.RequestID)
		if err != nil {
			return err
		}
		if err := marketplace.RequireRequestOwner(cmd.Caller, req); err != nil {
			return err
		}
		appt, err = uc.appointmentRepo.GetByID(ctx, cmd.AppointmentID)
		if err != nil {
			return err
		}
		if appt.RequestID() != req.ID() {
			return errors.NewNotFoundError("appointment not found")
		}

		apptFrom := appt.Status()
		from = req.Status()
		touchesRequest := true
		var e events.Event
		if cmd.Response == AppointmentConfirm {
			if err := appt.Confirm(); err != nil {
				return err
			}
			if err := req.ConfirmAppointment(appt.ID()); err != nil {
				return err
			}
			e = events.AppointmentConfirmed{AppointmentID: appt.ID()}
		} else {
			if err := appt.Decline(); err != nil {
				return err
			}
			// Declining a stale proposal leaves the request alone.
			touchesRequest = req.Extras().AppointmentID == appt.ID()
			if touchesRequest {
				if err := req.DeclineAppointment(appt.ID()); err != nil {
					return err
				}
			}
			e = events.AppointmentDeclined{AppointmentID: appt.ID()}
		}

		if touchesRequest {
			if err := uc.requestRepo.Update(ctx, req); err != nil {
				return err
			}
		}
		if err := uc.appointmentRepo.UpdateStatus(ctx, appt, apptFrom); err != nil {
			return err
		}
		return appendEvent(ctx, uc.messageRepo, appt.ConversationID(), cmd.Caller.UserID(), e)
	})
	if err != nil {
		return nil, internalError(uc.logger, "failed to respond to appointment", err, "appointment_id", cmd.AppointmentID)
	}

	if req.Status() != from {
		uc.observer.ObserveTransition("request", from.Code(), req.Status().Code())
	}
	uc.logger.Infow("appointment answered successfully",
		"appointment_id", appt.ID(),
		"status", appt.Status(),
		"request_status", req.Status().Code(),
	)
	return &AppointmentResult{
		Appointment: dto.ToAppointmentDTO(appt),
		Request:     dto.ToRequestDTO(req),
	}, nil
}
