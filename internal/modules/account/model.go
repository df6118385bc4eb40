// README: Account status definitions and the lifecycle transition table.
package account

import (
	"errors"
	"fmt"
	"time"

	"feastly/internal/types"
)

// Status is the account standing of a restaurant or delivery driver.
// It is a closed enum; values coming off the wire must go through
// ParseStatus so typo'd or differently-cased strings are rejected early.
type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
	StatusRejected  Status = "rejected"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNotFound          = errors.New("account not found")
	ErrConflict          = errors.New("account status conflict")
)

// AllowedTransitions represents the account state flow (diagram) as code.
// rejected is terminal: a rejected applicant registers again rather than
// re-entering pending.
var AllowedTransitions = map[Status][]Status{
	StatusPending:   {StatusActive, StatusRejected},
	StatusActive:    {StatusSuspended},
	StatusSuspended: {StatusActive},
}

func CanTransition(from, to Status) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusActive, StatusSuspended, StatusRejected:
		return Status(s), nil
	}
	return "", fmt.Errorf("%w: unknown status %q", ErrValidation, s)
}

// Snapshot is the lifecycle-relevant view of an account row, read once
// before a transition and used as the compare side of the CAS write.
type Snapshot struct {
	ID               types.ID
	Status           Status
	StatusVersion    int
	SuspensionReason *string
	PendingSince     time.Time
}

// Event is one entry of the append-only status audit trail.
type Event struct {
	EntityID   types.ID
	FromStatus Status
	ToStatus   Status
	Actor      string
	Reason     *string
	CreatedAt  time.Time
}
