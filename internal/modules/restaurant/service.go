// README: Restaurant service; registration and admin reads.
package restaurant

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
	Name         string
	OpeningHours string
}

// Register creates a restaurant in pending state; only admin actions move it
// from there.
func (s *Service) Register(ctx context.Context, cmd RegisterCommand) (types.ID, error) {
	if strings.TrimSpace(cmd.Name) == "" {
		return "", account.ErrValidation
	}
	now := time.Now()
	r := &Restaurant{
		ID:           types.NewID(),
		Name:         cmd.Name,
		Status:       account.StatusPending,
		OpeningHours: cmd.OpeningHours,
		PendingSince: now,
		CreatedAt:    now,
	}
	if err := s.store.Create(ctx, r); err != nil {
		return "", err
	}
	return r.ID, nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Restaurant, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, f Filter, p Page) ([]Restaurant, error) {
	return s.store.List(ctx, f, p)
}
