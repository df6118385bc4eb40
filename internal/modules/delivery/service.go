// README: Delivery service; state transitions, courier assignment, settlement.
package delivery

import (
	"context"
	"time"

	"feastly/internal/modules/earnings"
	"feastly/internal/types"
)

// Storage is the persistence side of the delivery lifecycle.
type Storage interface {
	Create(ctx context.Context, d *Delivery) error
	Get(ctx context.Context, id types.ID) (*Delivery, error)
	UpdateStatusCAS(ctx context.Context, id types.ID, from, to Status, version int, driverID *types.ID, cancelReason *string) (bool, error)
	AppendEvent(ctx context.Context, e *Event) error
}

// RateResolver yields the commission rate effective for a restaurant at
// settlement time.
type RateResolver interface {
	EffectiveRateFor(ctx context.Context, restaurantID types.ID) (float64, error)
}

// Settler writes the earnings record for a completed delivery exactly once.
type Settler interface {
	Settle(ctx context.Context, cmd earnings.SettleCommand) (*earnings.Record, error)
}

type Service struct {
	store  Storage
	rates  RateResolver
	ledger Settler
}

func NewService(store Storage, rates RateResolver, ledger Settler) *Service {
	return &Service{store: store, rates: rates, ledger: ledger}
}

type CreateCommand struct {
	RestaurantID types.ID
	Fee          types.Money
}

type AcceptCommand struct {
	DeliveryID types.ID
	DriverID   types.ID
}

type CancelCommand struct {
	DeliveryID types.ID
	ActorType  string
	Reason     string
}

func (s *Service) Create(ctx context.Context, cmd CreateCommand) (types.ID, error) {
	if cmd.RestaurantID == "" || cmd.Fee.Amount < 0 {
		return "", ErrValidation
	}
	d := &Delivery{
		ID:           types.NewID(),
		RestaurantID: cmd.RestaurantID,
		Status:       StatusNew,
		Fee:          cmd.Fee,
		CreatedAt:    time.Now(),
	}
	if err := s.store.Create(ctx, d); err != nil {
		return "", err
	}
	_ = s.store.AppendEvent(ctx, &Event{
		DeliveryID: d.ID,
		FromStatus: StatusNone,
		ToStatus:   StatusNew,
		ActorType:  "system",
		CreatedAt:  d.CreatedAt,
	})
	return d.ID, nil
}

// Accept moves new → accepted and records the courier taking the delivery.
func (s *Service) Accept(ctx context.Context, cmd AcceptCommand) error {
	if cmd.DriverID == "" {
		return ErrValidation
	}
	return s.advance(ctx, cmd.DeliveryID, StatusAccepted, "driver", &cmd.DriverID, nil)
}

func (s *Service) StartPreparing(ctx context.Context, id types.ID) error {
	return s.advance(ctx, id, StatusPreparing, "restaurant", nil, nil)
}

func (s *Service) MarkReady(ctx context.Context, id types.ID) error {
	return s.advance(ctx, id, StatusReady, "restaurant", nil, nil)
}

func (s *Service) PickUp(ctx context.Context, id types.ID) error {
	return s.advance(ctx, id, StatusPickedUp, "driver", nil, nil)
}

func (s *Service) Depart(ctx context.Context, id types.ID) error {
	return s.advance(ctx, id, StatusDelivering, "driver", nil, nil)
}

func (s *Service) Complete(ctx context.Context, id types.ID) error {
	return s.advance(ctx, id, StatusDelivered, "driver", nil, nil)
}

func (s *Service) Cancel(ctx context.Context, cmd CancelCommand) error {
	var reason *string
	if cmd.Reason != "" {
		reason = &cmd.Reason
	}
	actorType := cmd.ActorType
	if actorType == "" {
		actorType = "system"
	}
	return s.advance(ctx, cmd.DeliveryID, StatusCancelled, actorType, nil, reason)
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Delivery, error) {
	return s.store.Get(ctx, id)
}

// Settle turns a delivered delivery into an earnings record. The effective
// commission rate is resolved here (override vs platform default) and stored
// on the record for reporting; the fee split itself is the ledger's job.
// Settling an already-settled delivery returns the original record.
func (s *Service) Settle(ctx context.Context, id types.ID) (*earnings.Record, error) {
	d, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.Status != StatusDelivered {
		return nil, ErrNotSettleable
	}
	if d.DriverID == nil {
		return nil, ErrValidation
	}
	rate, err := s.rates.EffectiveRateFor(ctx, d.RestaurantID)
	if err != nil {
		return nil, err
	}
	settledAt := time.Now()
	if d.DeliveredAt != nil {
		settledAt = *d.DeliveredAt
	}
	return s.ledger.Settle(ctx, earnings.SettleCommand{
		DeliveryID:     d.ID,
		DriverID:       *d.DriverID,
		RestaurantID:   d.RestaurantID,
		Fee:            d.Fee,
		CommissionRate: rate,
		SettledAt:      settledAt,
	})
}

func (s *Service) advance(ctx context.Context, id types.ID, to Status, actorType string, driverID *types.ID, cancelReason *string) error {
	d, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if !CanTransition(d.Status, to) {
		return ErrInvalidTransition
	}
	ok, err := s.store.UpdateStatusCAS(ctx, d.ID, d.Status, to, d.StatusVersion, driverID, cancelReason)
	if err != nil {
		return err
	}
	if !ok {
		return ErrConflict
	}
	actorID := driverID
	if actorID == nil && actorType == "driver" {
		actorID = d.DriverID
	}
	_ = s.store.AppendEvent(ctx, &Event{
		DeliveryID: d.ID,
		FromStatus: d.Status,
		ToStatus:   to,
		ActorType:  actorType,
		ActorID:    actorID,
		CreatedAt:  time.Now(),
	})
	return nil
}
