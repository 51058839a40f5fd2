package reservation

import "github.com/frontdesk/service-reservation/internal/pkg/apperror"

// Status represents the current state of a reservation in its lifecycle.
type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusCheckedIn  Status = "checked_in"
	StatusCheckedOut Status = "checked_out"
	StatusCancelled  Status = "cancelled"
	StatusNoShow     Status = "no_show"
)

// validTransitions defines the state machine for reservation status transitions.
var validTransitions = map[Status][]Status{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusCheckedIn, StatusNoShow, StatusCancelled},
	StatusCheckedIn:  {StatusCheckedOut},
	StatusCheckedOut: {},
	StatusCancelled:  {},
	StatusNoShow:     {},
}

// ActiveStatuses are the non-terminal statuses; only these claim a room for
// their date range.
var ActiveStatuses = []Status{StatusPending, StatusConfirmed, StatusCheckedIn}

// IsValid returns true if the status is a recognized reservation status.
func (s Status) IsValid() bool {
	_, exists := validTransitions[s]
	return exists
}

// CanTransitionTo returns true if a transition from this status to the target is allowed.
func (s Status) CanTransitionTo(target Status) bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return false
	}
	for _, t := range allowed {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if no further transitions are possible from this status.
func (s Status) IsTerminal() bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return true
	}
	return len(allowed) == 0
}

// IsActive returns true if a reservation in this status blocks its room's dates.
func (s Status) IsActive() bool {
	return s.IsValid() && !s.IsTerminal()
}

// AllowedTargets returns the statuses reachable in one step.
func (s Status) AllowedTargets() []Status {
	out := make([]Status, len(validTransitions[s]))
	copy(out, validTransitions[s])
	return out
}

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// ParseStatus converts a string to a Status, rejecting unknown values before
// they reach the state machine.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.IsValid() {
		return "", apperror.Validation("invalid reservation status: %q", s)
	}
	return status, nil
}

// Strings converts statuses for storage queries.
func Strings(statuses []Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
