package valueobjects

import "fmt"

type ApplicationStatus string

const (
	ApplicationStatusSubmitted ApplicationStatus = "submitted"
	ApplicationStatusAccepted  ApplicationStatus = "accepted"
	ApplicationStatusDeclined  ApplicationStatus = "declined"
)

var applicationStatusTransitions = map[ApplicationStatus][]ApplicationStatus{
	ApplicationStatusSubmitted: {ApplicationStatusAccepted, ApplicationStatusDeclined},
	ApplicationStatusAccepted:  {},
	ApplicationStatusDeclined:  {},
}

func (s ApplicationStatus) String() string {
	return string(s)
}

func (s ApplicationStatus) IsValid() bool {
	_, ok := applicationStatusTransitions[s]
	return ok
}

func (s ApplicationStatus) CanTransitionTo(next ApplicationStatus) bool {
	for _, allowed := range applicationStatusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func NewApplicationStatus(s string) (ApplicationStatus, error) {
	as := ApplicationStatus(s)
	if !as.IsValid() {
		return "", fmt.Errorf("invalid application status: %s", s)
	}
	return as, nil
}
