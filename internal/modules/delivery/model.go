// README: Delivery aggregate and status definitions.
package delivery

import (
	"errors"
	"time"

	"feastly/internal/types"
)

type Status string

const (
	StatusNone       Status = "none"
	StatusNew        Status = "new"
	StatusAccepted   Status = "accepted"
	StatusPreparing  Status = "preparing"
	StatusReady      Status = "ready"
	StatusPickedUp   Status = "picked_up"
	StatusDelivering Status = "delivering"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrInvalidTransition = errors.New("invalid delivery transition")
	ErrNotFound          = errors.New("delivery not found")
	ErrConflict          = errors.New("delivery status conflict")
	ErrNotSettleable     = errors.New("delivery not settleable")
)

// AllowedTransitions represents the delivery flow as code: a strict forward
// chain, cancellable from any non-terminal state.
var AllowedTransitions = map[Status][]Status{
	StatusNew:        {StatusAccepted, StatusCancelled},
	StatusAccepted:   {StatusPreparing, StatusCancelled},
	StatusPreparing:  {StatusReady, StatusCancelled},
	StatusReady:      {StatusPickedUp, StatusCancelled},
	StatusPickedUp:   {StatusDelivering, StatusCancelled},
	StatusDelivering: {StatusDelivered, StatusCancelled},
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

type Delivery struct {
	ID            types.ID
	RestaurantID  types.ID
	DriverID      *types.ID
	Status        Status
	StatusVersion int
	Fee           types.Money
	CreatedAt     time.Time
	AcceptedAt    *time.Time
	ReadyAt       *time.Time
	PickedUpAt    *time.Time
	DeliveredAt   *time.Time
	CancelledAt   *time.Time
	CancelReason  *string
}

type Event struct {
	ID         int64
	DeliveryID types.ID
	FromStatus Status
	ToStatus   Status
	ActorType  string
	ActorID    *types.ID
	CreatedAt  time.Time
}
