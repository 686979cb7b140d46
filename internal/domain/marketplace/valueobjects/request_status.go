package valueobjects

import "fmt"

// RequestStatus is the lifecycle state of a service request. The value is the
// German label persisted in market_requests.status.
type RequestStatus string

const (
	RequestStatusNew                  RequestStatus = "Anfrage"
	RequestStatusActive               RequestStatus = "Aktiv"
	RequestStatusAppointmentProposed  RequestStatus = "Termin angelegt"
	RequestStatusAppointmentConfirmed RequestStatus = "Termin bestätigt"
	RequestStatusOrderAccepted        RequestStatus = "Auftrag erteilt"
	RequestStatusOrderDeclined        RequestStatus = "Auftrag abgelehnt"
	RequestStatusProblem              RequestStatus = "Problem"
	RequestStatusDeleted              RequestStatus = "Gelöscht"
)

var requestStatusCodes = map[RequestStatus]string{
	RequestStatusNew:                  "new",
	RequestStatusActive:               "active",
	RequestStatusAppointmentProposed:  "appointment_proposed",
	RequestStatusAppointmentConfirmed: "appointment_confirmed",
	RequestStatusOrderAccepted:        "order_accepted",
	RequestStatusOrderDeclined:        "order_declined",
	RequestStatusProblem:              "problem",
	RequestStatusDeleted:              "deleted",
}

// Problem is reachable from every live state and is handled in CanTransitionTo.
var requestStatusTransitions = map[RequestStatus][]RequestStatus{
	RequestStatusNew: {
		RequestStatusActive,
		RequestStatusDeleted,
	},
	RequestStatusActive: {
		RequestStatusAppointmentProposed,
		RequestStatusOrderAccepted,
		RequestStatusOrderDeclined,
		RequestStatusDeleted,
	},
	RequestStatusAppointmentProposed: {
		RequestStatusAppointmentProposed,
		RequestStatusAppointmentConfirmed,
		RequestStatusActive,
		RequestStatusOrderAccepted,
		RequestStatusOrderDeclined,
	},
	RequestStatusAppointmentConfirmed: {
		RequestStatusAppointmentProposed,
		RequestStatusActive,
		RequestStatusOrderAccepted,
		RequestStatusOrderDeclined,
	},
	RequestStatusOrderDeclined: {
		RequestStatusAppointmentProposed,
		RequestStatusOrderAccepted,
		RequestStatusOrderDeclined,
	},
	RequestStatusOrderAccepted: {},
	RequestStatusProblem:       {},
	RequestStatusDeleted:       {},
}

func (s RequestStatus) String() string {
	return string(s)
}

// Code is the stable ASCII token used in metrics and logs.
func (s RequestStatus) Code() string {
	return requestStatusCodes[s]
}

func (s RequestStatus) IsValid() bool {
	_, ok := requestStatusCodes[s]
	return ok
}

// IsLive reports whether the request still takes part in the marketplace.
func (s RequestStatus) IsLive() bool {
	return s.IsValid() && s != RequestStatusDeleted
}

func (s RequestStatus) CanTransitionTo(next RequestStatus) bool {
	if next == RequestStatusProblem {
		return s.IsLive()
	}
	for _, allowed := range requestStatusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// AcceptsApplications reports whether partners may still bid. Aktiv is only
// reached by accepting an application, so bidding ends there.
func (s RequestStatus) AcceptsApplications() bool {
	return s == RequestStatusNew
}

// AllowsOrders reports whether a partner may issue an order in this state.
func (s RequestStatus) AllowsOrders() bool {
	switch s {
	case RequestStatusActive, RequestStatusAppointmentProposed,
		RequestStatusAppointmentConfirmed, RequestStatusOrderDeclined:
		return true
	}
	return false
}

func NewRequestStatus(s string) (RequestStatus, error) {
	rs := RequestStatus(s)
	if !rs.IsValid() {
		return "", fmt.Errorf("invalid request status: %s", s)
	}
	return rs, nil
}

// ParseRequestStatus accepts either the persisted label or its ASCII code.
func ParseRequestStatus(s string) (RequestStatus, error) {
	for status, code := range requestStatusCodes {
		if code == s {
			return status, nil
		}
	}
	return NewRequestStatus(s)
}
