// README: Restaurant record and listing parameters.
package restaurant

import (
	"time"

	"feastly/internal/modules/account"
	"feastly/internal/types"
)

// Restaurant is the single typed shape for a restaurant row. All reads go
// through the store's scan so nullable columns are normalized in one place.
type Restaurant struct {
	ID            types.ID
	Name          string
	Status        account.Status
	StatusVersion int
	// CommissionRate is the per-restaurant override; nil means the platform
	// default applies.
	CommissionRate   *float64
	SuspensionReason *string
	OpeningHours     string
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
