package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fachwerk-hq/fachwerk/internal/domain/identity"
	"github.com/fachwerk-hq/fachwerk/internal/domain/marketplace/events"
	vo "github.com/fachwerk-hq/fachwerk/internal/domain/marketplace/valueobjects"
	"github.com/fachwerk-hq/fachwerk/internal/shared/errors"
)

func TestProposeAppointmentUseCase_Execute_Success(t *testing.T) {
	h := newHarness(t)
	requestID, convID := h.engaged(t)

	res, err := h.propose.Execute(context.Background(), ProposeAppointmentCommand{
		Caller:    ownerP,
		RequestID: requestID,
		Slot:      slot(vo.AppointmentKindOnsite),
	})

	require.NoError(t, err)
	assert.Equal(t, vo.AppointmentStatusProposed.String(), res.Appointment.Status)
	assert.Equal(t, vo.RequestStatusAppointmentProposed.String(), res.Request.Status)
	assert.Equal(t, res.Appointment.ID, res.Request.Extras.AppointmentID)
	assert.Equal(t, convID, res.Appointment.ConversationID)
	assert.Equal(t, int64(1), h.countEvents(t, convID, events.TypeAppointmentProposed))
}

func TestProposeAppointmentUseCase_Execute_Forbidden(t *testing.T) {
	tests := []struct {
		name     string
		caller   identity.Caller
		wantType errors.ErrorType
	}{
		{"declined partner", ownerQ, errors.ErrorTypeForbidden},
		{"unrelated partner", ownerR, errors.ErrorTypeForbidden},
		{"consumer", consumer, errors.ErrorTypeForbidden},
		{"anonymous", identity.Anonymous(), errors.ErrorTypeUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			requestID, _ := h.engaged(t)

			_, err := h.propose.Execute(context.Background(), ProposeAppointmentCommand{
				Caller:    tt.caller,
				RequestID: requestID,
				Slot:      slot(vo.AppointmentKindOnsite),
			})

			require.Error(t, err)
			assert.Equal(t, tt.wantType, errors.GetAppError(err).Type)
			assert.Empty(t, h.store.state.appointments)
			assert.Equal(t, vo.RequestStatusActive, h.requestStatus(t, requestID))
		})
	}
}

func TestProposeAppointmentUseCase_Execute_InvalidSlot(t *testing.T) {
	h := newHarness(t)
	requestID, _ := h.engaged(t)
	s := slot(vo.AppointmentKindOnsite)
	s.Location = ""

	_, err := h.propose.Execute(context.Background(), ProposeAppointmentCommand{
		Caller:    ownerP,
		RequestID: requestID,
		Slot:      s,
	})

	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
}

func TestProposeAppointmentUseCase_Execute_SupersedesOpenProposal(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	requestID, convID := h.engaged(t)

	first, err := h.propose.Execute(ctx, ProposeAppointmentCommand{Caller: ownerP, RequestID: requestID, Slot: slot(vo.AppointmentKindOnsite)})
	require.NoError(t, err)
	second, err := h.propose.Execute(ctx, ProposeAppointmentCommand{Caller: ownerP, RequestID: requestID, Slot: slot(vo.AppointmentKindPhone)})
	require.NoError(t, err)

	old, err := h.appointments.GetByID(ctx, first.Appointment.ID)
	require.NoError(t, err)
	assert.Equal(t, vo.AppointmentStatusDeclined, old.Status())
	assert.Equal(t, second.Appointment.ID, second.Request.Extras.AppointmentID)
	assert.Equal(t, int64(1), h.countEvents(t, convID, events.TypeAppointmentDeclined))

	// Confirming the stale proposal is no longer possible.
	_, err = h.respond.Execute(ctx, RespondAppointmentCommand{
		Caller:        consumer,
		RequestID:     requestID,
		AppointmentID: first.Appointment.ID,
		Response:      AppointmentConfirm,
	})
	require.Error(t, err)
	assert.True(t, errors.IsConflictError(err))
}

func TestRespondAppointmentUseCase_Execute(t *testing.T) {
	tests := []struct {
		name              string
		response          AppointmentResponse
		wantAppointment   vo.AppointmentStatus
		wantRequestStatus vo.RequestStatus
		wantEvent         events.Type
	}{
		{"confirm", AppointmentConfirm, vo.AppointmentStatusConfirmed, vo.RequestStatusAppointmentConfirmed, events.TypeAppointmentConfirmed},
		{"decline", AppointmentDecline, vo.AppointmentStatusDeclined, vo.RequestStatusActive, events.TypeAppointmentDeclined},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			ctx := context.Background()
			requestID, convID := h.engaged(t)
			s := slot(vo.AppointmentKindVideo)
			s.VideoURL = "ftp://meet.example.org/fachwerk"
			_, err := h.propose.Execute(ctx, ProposeAppointmentCommand{Caller: ownerP, RequestID: requestID, Slot: s})
			require.Error(t, err, "non-http video URL must be rejected")

			s.VideoURL = "https://meet.example.org/fachwerk"
			proposed, err := h.propose.Execute(ctx, ProposeAppointmentCommand{Caller: ownerP, RequestID: requestID, Slot: s})
			require.NoError(t, err)

			res, err := h.respond.Execute(ctx, RespondAppointmentCommand{
				Caller:        consumer,
				RequestID:     requestID,
				AppointmentID: proposed.Appointment.ID,
				Response:      tt.response,
			})

			require.NoError(t, err)
			assert.Equal(t, tt.wantAppointment.String(), res.Appointment.Status)
			assert.Equal(t, tt.wantRequestStatus, h.requestStatus(t, requestID))
			assert.Equal(t, int64(1), h.countEvents(t, convID, tt.wantEvent))
		})
	}
}

func TestRespondAppointmentUseCase_Execute_PartnerCannotConfirm(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	requestID, _ := h.engaged(t)
	proposed, err := h.propose.Execute(ctx, ProposeAppointmentCommand{Caller: ownerP, RequestID: requestID, Slot: slot(vo.AppointmentKindOnsite)})
	require.NoError(t, err)

	_, err = h.respond.Execute(ctx, RespondAppointmentCommand{
		Caller:        ownerP,
		RequestID:     requestID,
		AppointmentID: proposed.Appointment.ID,
		Response:      AppointmentConfirm,
	})

	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeForbidden, errors.GetAppError(err).Type)
	assert.Equal(t, vo.RequestStatusAppointmentProposed, h.requestStatus(t, requestID))
}
