// README: Driver service; registration and availability updates.
package driver

import (
	"context"
	"strings"
	"time"

	"feastly/internal/modules/account"
	"feastly/internal/types"
)

type Service struct {
	store *Store
}

func NewService(store *Store) *Service {
	return &Service{store: store}
}

type RegisterCommand struct {
	Name string
}

// Register creates a driver in pending state, offline until approved and
// explicitly going available.
func (s *Service) Register(ctx context.Context, cmd RegisterCommand) (types.ID, error) {
	if strings.TrimSpace(cmd.Name) == "" {
		return "", account.ErrValidation
	}
	now := time.Now()
	d := &Driver{
		ID:             types.NewID(),
		Name:           cmd.Name,
		Status:         account.StatusPending,
		DeliveryStatus: DeliveryOffline,
		PendingSince:   now,
		CreatedAt:      now,
	}
	if err := s.store.Create(ctx, d); err != nil {
		return "", err
	}
	return d.ID, nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Driver, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, f Filter, p Page) ([]Driver, error) {
	return s.store.List(ctx, f, p)
}

// SetDeliveryStatus flips operational availability for an active driver.
func (s *Service) SetDeliveryStatus(ctx context.Context, id types.ID, raw string) (DeliveryStatus, error) {
	ds, err := ParseDeliveryStatus(raw)
	if err != nil {
		return "", err
	}
	if err := s.store.SetDeliveryStatus(ctx, id, ds); err != nil {
		return "", err
	}
	return ds, nil
}
