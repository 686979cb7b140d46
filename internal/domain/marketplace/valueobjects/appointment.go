package valueobjects

import "fmt"

type AppointmentStatus string

const (
	AppointmentStatusProposed  AppointmentStatus = "proposed"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusDeclined  AppointmentStatus = "declined"
)

var appointmentStatusTransitions = map[AppointmentStatus][]AppointmentStatus{
	AppointmentStatusProposed:  {AppointmentStatusConfirmed, AppointmentStatusDeclined},
	AppointmentStatusConfirmed: {AppointmentStatusDeclined},
	AppointmentStatusDeclined:  {},
}

func (s AppointmentStatus) String() string {
	return string(s)
}

func (s AppointmentStatus) IsValid() bool {
	_, ok := appointmentStatusTransitions[s]
	return ok
}

func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	for _, allowed := range appointmentStatusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func NewAppointmentStatus(s string) (AppointmentStatus, error) {
	as := AppointmentStatus(s)
	if !as.IsValid() {
		return "", fmt.Errorf("invalid appointment status: %s", s)
	}
	return as, nil
}

// AppointmentKind is how the partner and consumer meet.
type AppointmentKind string

const (
	AppointmentKindOnsite AppointmentKind = "onsite"
	AppointmentKindVideo  AppointmentKind = "video"
	AppointmentKindPhone  AppointmentKind = "phone"
)

func (k AppointmentKind) String() string {
	return string(k)
}

func (k AppointmentKind) IsValid() bool {
	switch k {
	case AppointmentKindOnsite, AppointmentKindVideo, AppointmentKindPhone:
		return true
	}
	return false
}

// Label is the German display name.
func (k AppointmentKind) Label() string {
	switch k {
	case AppointmentKindOnsite:
		return "Vor-Ort-Termin"
	case AppointmentKindVideo:
		return "Videotermin"
	case AppointmentKindPhone:
		return "Telefontermin"
	}
	return string(k)
}

func NewAppointmentKind(s string) (AppointmentKind, error) {
	k := AppointmentKind(s)
	if !k.IsValid() {
		return "", fmt.Errorf("invalid appointment kind: %s", s)
	}
	return k, nil
}
