// README: Earnings service; settlement writes and windowed reporting reads.
package earnings

import (
	"context"
	"time"

	"feastly/internal/types"
)

// Ledger is the persistence side of the earnings module.
type Ledger interface {
	Insert(ctx context.Context, r *Record) (bool, error)
	GetByDelivery(ctx context.Context, deliveryID types.ID) (*Record, error)
	ListByDriver(ctx context.Context, driverID types.ID, since time.Time) ([]Record, error)
	TotalsByDriver(ctx context.Context, driverID types.ID, w Window, now time.Time, loc *time.Location) (Totals, error)
}

type Service struct {
	ledger Ledger
	loc    *time.Location
}

func NewService(ledger Ledger, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{ledger: ledger, loc: loc}
}

// SettleCommand carries everything settlement needs; the fee split itself
// happens here so every record satisfies driver+platform == fee.
type SettleCommand struct {
	DeliveryID     types.ID
	DriverID       types.ID
	RestaurantID   types.ID
	Fee            types.Money
	CommissionRate float64
	SettledAt      time.Time
}

// Settle writes the earnings record for a completed delivery exactly once.
// A repeated settle returns the record written the first time.
func (s *Service) Settle(ctx context.Context, cmd SettleCommand) (*Record, error) {
	driver, platform, err := SplitFee(cmd.Fee, DriverShareNumerator)
	if err != nil {
		return nil, err
	}
	rec := &Record{
		ID:             types.NewID(),
		DeliveryID:     cmd.DeliveryID,
		DriverID:       cmd.DriverID,
		RestaurantID:   cmd.RestaurantID,
		Fee:            cmd.Fee,
		DriverShare:    driver,
		PlatformShare:  platform,
		ShareNumerator: DriverShareNumerator,
		CommissionRate: cmd.CommissionRate,
		SettledAt:      cmd.SettledAt,
	}
	inserted, err := s.ledger.Insert(ctx, rec)
	if err != nil {
		return nil, err
	}
	if !inserted {
		return s.ledger.GetByDelivery(ctx, cmd.DeliveryID)
	}
	return rec, nil
}

// TotalsFor reports a driver's summed shares for one window.
func (s *Service) TotalsFor(ctx context.Context, driverID types.ID, w Window) (Totals, error) {
	return s.ledger.TotalsByDriver(ctx, driverID, w, time.Now(), s.loc)
}

// History returns a driver's raw records inside the window, oldest first.
func (s *Service) History(ctx context.Context, driverID types.ID, w Window) ([]Record, error) {
	var since time.Time
	if start, bounded := WindowStart(w, time.Now(), s.loc); bounded {
		since = start
	}
	return s.ledger.ListByDriver(ctx, driverID, since)
}
