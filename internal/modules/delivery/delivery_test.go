// README: Delivery lifecycle and settlement tests.
package delivery

import (
	"context"
	"errors"
	"testing"
	"time"

	"feastly/internal/modules/earnings"
	"feastly/internal/types"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		// forward chain
		{StatusNew, StatusAccepted, true},
		{StatusAccepted, StatusPreparing, true},
		{StatusPreparing, StatusReady, true},
		{StatusReady, StatusPickedUp, true},
		{StatusPickedUp, StatusDelivering, true},
		{StatusDelivering, StatusDelivered, true},
		// cancel from every non-terminal state
		{StatusNew, StatusCancelled, true},
		{StatusAccepted, StatusCancelled, true},
		{StatusPreparing, StatusCancelled, true},
		{StatusReady, StatusCancelled, true},
		{StatusPickedUp, StatusCancelled, true},
		{StatusDelivering, StatusCancelled, true},
		// invalid: skipping states
		{StatusNew, StatusPreparing, false},
		{StatusNew, StatusDelivered, false},
		{StatusAccepted, StatusPickedUp, false},
		{StatusReady, StatusDelivering, false},
		// invalid: going backwards
		{StatusPreparing, StatusAccepted, false},
		{StatusDelivered, StatusDelivering, false},
		// invalid: terminal states
		{StatusDelivered, StatusCancelled, false},
		{StatusCancelled, StatusNew, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

// memStorage is an in-memory delivery.Storage for service tests.
type memStorage struct {
	rows   map[types.ID]*Delivery
	events []Event
}

func newMemStorage() *memStorage { return &memStorage{rows: make(map[types.ID]*Delivery)} }

func (m *memStorage) Create(_ context.Context, d *Delivery) error {
	cp := *d
	m.rows[d.ID] = &cp
	return nil
}

func (m *memStorage) Get(_ context.Context, id types.ID) (*Delivery, error) {
	d, ok := m.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (m *memStorage) UpdateStatusCAS(_ context.Context, id types.ID, from, to Status, version int, driverID *types.ID, cancelReason *string) (bool, error) {
	d, ok := m.rows[id]
	if !ok || d.Status != from || d.StatusVersion != version {
		return false, nil
	}
	now := time.Now()
	d.Status = to
	d.StatusVersion++
	if driverID != nil {
		d.DriverID = driverID
	}
	if cancelReason != nil {
		d.CancelReason = cancelReason
	}
	switch to {
	case StatusAccepted:
		d.AcceptedAt = &now
	case StatusReady:
		d.ReadyAt = &now
	case StatusPickedUp:
		d.PickedUpAt = &now
	case StatusDelivered:
		d.DeliveredAt = &now
	case StatusCancelled:
		d.CancelledAt = &now
	}
	return true, nil
}

func (m *memStorage) AppendEvent(_ context.Context, e *Event) error {
	m.events = append(m.events, *e)
	return nil
}

type fixedRates struct{ rate float64 }

func (f fixedRates) EffectiveRateFor(context.Context, types.ID) (float64, error) {
	return f.rate, nil
}

// memSettler mimics the ledger's insert-once behavior keyed on delivery id.
type memSettler struct {
	records map[types.ID]*earnings.Record
}

func newMemSettler() *memSettler { return &memSettler{records: make(map[types.ID]*earnings.Record)} }

func (m *memSettler) Settle(_ context.Context, cmd earnings.SettleCommand) (*earnings.Record, error) {
	if rec, ok := m.records[cmd.DeliveryID]; ok {
		return rec, nil
	}
	driver, platform, err := earnings.SplitFee(cmd.Fee, earnings.DriverShareNumerator)
	if err != nil {
		return nil, err
	}
	rec := &earnings.Record{
		ID:             types.NewID(),
		DeliveryID:     cmd.DeliveryID,
		DriverID:       cmd.DriverID,
		RestaurantID:   cmd.RestaurantID,
		Fee:            cmd.Fee,
		DriverShare:    driver,
		PlatformShare:  platform,
		ShareNumerator: earnings.DriverShareNumerator,
		CommissionRate: cmd.CommissionRate,
		SettledAt:      cmd.SettledAt,
	}
	m.records[cmd.DeliveryID] = rec
	return rec, nil
}

func newFixture() (*Service, *memStorage, *memSettler) {
	store := newMemStorage()
	settler := newMemSettler()
	return NewService(store, fixedRates{rate: 15}, settler), store, settler
}

func mustCreate(t *testing.T, svc *Service, fee int64) types.ID {
	t.Helper()
	id, err := svc.Create(context.Background(), CreateCommand{
		RestaurantID: "r1",
		Fee:          types.Money{Amount: fee, Currency: "TWD"},
	})
	if err != nil {
		t.Fatalf("create delivery: %v", err)
	}
	return id
}

func assertStatus(t *testing.T, svc *Service, id types.ID, want Status) {
	t.Helper()
	d, err := svc.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("get delivery: %v", err)
	}
	if d.Status != want {
		t.Fatalf("status = %s, want %s", d.Status, want)
	}
}

func runToDelivered(t *testing.T, svc *Service, id types.ID) {
	t.Helper()
	ctx := context.Background()
	if err := svc.Accept(ctx, AcceptCommand{DeliveryID: id, DriverID: "d1"}); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if err := svc.StartPreparing(ctx, id); err != nil {
		t.Fatalf("start preparing: %v", err)
	}
	if err := svc.MarkReady(ctx, id); err != nil {
		t.Fatalf("mark ready: %v", err)
	}
	if err := svc.PickUp(ctx, id); err != nil {
		t.Fatalf("pick up: %v", err)
	}
	if err := svc.Depart(ctx, id); err != nil {
		t.Fatalf("depart: %v", err)
	}
	if err := svc.Complete(ctx, id); err != nil {
		t.Fatalf("complete: %v", err)
	}
}

func TestDeliveryHappyPath(t *testing.T) {
	svc, store, _ := newFixture()
	id := mustCreate(t, svc, 1000)

	assertStatus(t, svc, id, StatusNew)
	runToDelivered(t, svc, id)
	assertStatus(t, svc, id, StatusDelivered)

	d, _ := svc.Get(context.Background(), id)
	if d.DriverID == nil || *d.DriverID != "d1" {
		t.Fatal("driver not recorded at accept")
	}

	// create + 6 transitions
	if len(store.events) != 7 {
		t.Fatalf("events = %d, want 7", len(store.events))
	}
}

func TestDeliverySkipStates(t *testing.T) {
	svc, _, _ := newFixture()
	id := mustCreate(t, svc, 500)
	ctx := context.Background()

	if err := svc.PickUp(ctx, id); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("pick up from new = %v, want ErrInvalidTransition", err)
	}
	if err := svc.Complete(ctx, id); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("complete from new = %v, want ErrInvalidTransition", err)
	}
	assertStatus(t, svc, id, StatusNew)
}

func TestDeliveryCancel(t *testing.T) {
	svc, _, _ := newFixture()
	ctx := context.Background()

	id := mustCreate(t, svc, 500)
	if err := svc.Accept(ctx, AcceptCommand{DeliveryID: id, DriverID: "d1"}); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if err := svc.Cancel(ctx, CancelCommand{DeliveryID: id, ActorType: "restaurant", Reason: "out of stock"}); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	assertStatus(t, svc, id, StatusCancelled)

	d, _ := svc.Get(ctx, id)
	if d.CancelReason == nil || *d.CancelReason != "out of stock" {
		t.Fatal("cancel reason not stored")
	}

	// terminal: no further transitions
	if err := svc.Accept(ctx, AcceptCommand{DeliveryID: id, DriverID: "d2"}); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("accept cancelled = %v, want ErrInvalidTransition", err)
	}
}

func TestSettleDelivered(t *testing.T) {
	svc, _, _ := newFixture()
	id := mustCreate(t, svc, 1000)
	runToDelivered(t, svc, id)

	rec, err := svc.Settle(context.Background(), id)
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if rec.DriverShare.Amount != 700 || rec.PlatformShare.Amount != 300 {
		t.Fatalf("shares = %d/%d, want 700/300", rec.DriverShare.Amount, rec.PlatformShare.Amount)
	}
	if rec.DriverShare.Amount+rec.PlatformShare.Amount != rec.Fee.Amount {
		t.Fatal("shares must sum to the fee")
	}
	if rec.CommissionRate != 15 {
		t.Fatalf("commission rate = %v, want 15", rec.CommissionRate)
	}
	if rec.DriverID != "d1" {
		t.Fatalf("driver = %s, want d1", rec.DriverID)
	}
}

func TestSettleIdempotent(t *testing.T) {
	svc, _, settler := newFixture()
	id := mustCreate(t, svc, 999)
	runToDelivered(t, svc, id)
	ctx := context.Background()

	first, err := svc.Settle(ctx, id)
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	second, err := svc.Settle(ctx, id)
	if err != nil {
		t.Fatalf("repeat settle: %v", err)
	}
	if second.ID != first.ID {
		t.Fatal("repeat settle must return the original record")
	}
	if len(settler.records) != 1 {
		t.Fatalf("ledger rows = %d, want 1", len(settler.records))
	}
}

func TestSettleRequiresDelivered(t *testing.T) {
	svc, _, _ := newFixture()
	ctx := context.Background()

	id := mustCreate(t, svc, 500)
	if _, err := svc.Settle(ctx, id); !errors.Is(err, ErrNotSettleable) {
		t.Fatalf("settle new = %v, want ErrNotSettleable", err)
	}

	if err := svc.Cancel(ctx, CancelCommand{DeliveryID: id}); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := svc.Settle(ctx, id); !errors.Is(err, ErrNotSettleable) {
		t.Fatalf("settle cancelled = %v, want ErrNotSettleable", err)
	}

	if _, err := svc.Settle(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("settle unknown = %v, want ErrNotFound", err)
	}
}
