// README: Delivery driver record and the operational availability enum.
package driver

import (
	"fmt"
	"time"

	"feastly/internal/modules/account"
	"feastly/internal/types"
)

// DeliveryStatus is the driver's operational availability. It is independent
// of the account status: a suspended driver keeps whatever availability they
// had, they just cannot set it or be dispatched.
type DeliveryStatus string

const (
	DeliveryAvailable DeliveryStatus = "available"
	DeliveryBusy      DeliveryStatus = "busy"
	DeliveryOnBreak   DeliveryStatus = "on_break"
	DeliveryOffline   DeliveryStatus = "offline"
)

func ParseDeliveryStatus(s string) (DeliveryStatus, error) {
	switch DeliveryStatus(s) {
	case DeliveryAvailable, DeliveryBusy, DeliveryOnBreak, DeliveryOffline:
		return DeliveryStatus(s), nil
	}
	return "", fmt.Errorf("%w: unknown delivery status %q", account.ErrValidation, s)
}

type Driver struct {
	ID               types.ID
	Name             string
	Status           account.Status
	StatusVersion    int
	DeliveryStatus   DeliveryStatus
	SuspensionReason *string
	PendingSince     time.Time
	CreatedAt        time.Time
}

type Filter struct {
	Status *account.Status
}

type Page struct {
	Limit  int
	Offset int
}

func (p Page) normalized() Page {
	if p.Limit <= 0 || p.Limit > 100 {
		p.Limit = 20
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}
