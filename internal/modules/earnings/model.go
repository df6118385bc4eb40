// README: Earnings record and reporting window definitions.
package earnings

import (
	"errors"
	"fmt"
	"time"

	"feastly/internal/types"
)

// DriverShareNumerator is the platform-wide driver share of the delivery fee,
// over a denominator of 100. Hardcoded pending a product decision on
// per-driver or per-region splits; it is deliberately not part of
// CommissionSettings because the fee split and the order-value commission are
// separate mechanisms.
const DriverShareNumerator = 70

const shareDenominator = 100

var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("earnings record not found")
)

// Record is written exactly once when a delivery is settled and never
// mutated afterwards.
type Record struct {
	ID             types.ID
	DeliveryID     types.ID
	DriverID       types.ID
	RestaurantID   types.ID
	Fee            types.Money
	DriverShare    types.Money
	PlatformShare  types.Money
	ShareNumerator int64
	// CommissionRate is the restaurant commission percent effective at
	// settlement, recorded for reporting. It does not participate in the
	// fee split.
	CommissionRate float64
	SettledAt      time.Time
}

type Window string

const (
	WindowToday      Window = "today"
	WindowLast7Days  Window = "last_7_days"
	WindowLast30Days Window = "last_30_days"
	WindowAllTime    Window = "all_time"
)

func ParseWindow(s string) (Window, error) {
	switch Window(s) {
	case WindowToday, WindowLast7Days, WindowLast30Days, WindowAllTime:
		return Window(s), nil
	}
	return "", fmt.Errorf("%w: unknown window %q", ErrValidation, s)
}

// Totals is the sum of shares over one window.
type Totals struct {
	Window        Window
	DriverTotal   int64
	PlatformTotal int64
	Count         int
}
