// README: Commission service; platform default and per-restaurant override management.
package commission

import (
	"context"
	"errors"
	"log"

	"feastly/internal/types"
)

// SettingsStore is the persistence side of the platform default.
type SettingsStore interface {
	GetSettings(ctx context.Context) (Settings, error)
	UpdateSettingsCAS(ctx context.Context, rate float64, version int) (bool, error)
}

// RateStore is implemented by the restaurant store; it reads and CAS-writes
// the nullable per-restaurant override.
type RateStore interface {
	GetRate(ctx context.Context, id types.ID) (*float64, error)
	SetRateCAS(ctx context.Context, id types.ID, from, to *float64) (bool, error)
}

// SnapshotCache is the optional read-through cache in front of the settings
// row; a nil cache disables it.
type SnapshotCache interface {
	Get(ctx context.Context) (Settings, bool, error)
	Set(ctx context.Context, st Settings) error
	Invalidate(ctx context.Context) error
}

type Service struct {
	settings SettingsStore
	rates    RateStore
	cache    SnapshotCache
}

func NewService(settings SettingsStore, rates RateStore, cache SnapshotCache) *Service {
	return &Service{settings: settings, rates: rates, cache: cache}
}

// Settings returns the current platform configuration. A missing row is not
// an error for callers: they get a zero snapshot and Resolve falls back to
// FallbackRatePercent.
func (s *Service) Settings(ctx context.Context) (Settings, error) {
	if s.cache != nil {
		if st, ok, err := s.cache.Get(ctx); err == nil && ok {
			return st, nil
		} else if err != nil {
			log.Printf("commission: settings cache read: %v", err)
		}
	}
	st, err := s.settings.GetSettings(ctx)
	if errors.Is(err, ErrNotFound) {
		return Settings{}, nil
	}
	if err != nil {
		return Settings{}, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, st); err != nil {
			log.Printf("commission: settings cache write: %v", err)
		}
	}
	return st, nil
}

// SetPlatformDefault updates the platform-wide rate. Prospective only:
// earnings records already written keep the rate they were settled with.
func (s *Service) SetPlatformDefault(ctx context.Context, rate float64) (Settings, error) {
	if err := ValidateRate(rate); err != nil {
		return Settings{}, err
	}
	cur, err := s.settings.GetSettings(ctx)
	if err != nil {
		return Settings{}, err
	}
	ok, err := s.settings.UpdateSettingsCAS(ctx, rate, cur.Version)
	if err != nil {
		return Settings{}, err
	}
	if !ok {
		return Settings{}, ErrConflict
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			log.Printf("commission: settings cache invalidate: %v", err)
		}
	}
	return s.settings.GetSettings(ctx)
}

// SetOverride stores a per-restaurant commission rate. The write is CAS'd
// against the rate read here so two admins editing the same restaurant
// cannot silently overwrite each other.
func (s *Service) SetOverride(ctx context.Context, restaurantID types.ID, rate float64) error {
	if err := ValidateRate(rate); err != nil {
		return err
	}
	return s.writeOverride(ctx, restaurantID, &rate)
}

// ClearOverride removes the override so future resolutions use the platform
// default again.
func (s *Service) ClearOverride(ctx context.Context, restaurantID types.ID) error {
	return s.writeOverride(ctx, restaurantID, nil)
}

func (s *Service) writeOverride(ctx context.Context, restaurantID types.ID, to *float64) error {
	cur, err := s.rates.GetRate(ctx, restaurantID)
	if err != nil {
		return err
	}
	ok, err := s.rates.SetRateCAS(ctx, restaurantID, cur, to)
	if err != nil {
		return err
	}
	if !ok {
		return ErrConflict
	}
	return nil
}

// EffectiveRateFor resolves the rate applied to a restaurant right now.
func (s *Service) EffectiveRateFor(ctx context.Context, restaurantID types.ID) (float64, error) {
	override, err := s.rates.GetRate(ctx, restaurantID)
	if err != nil {
		return 0, err
	}
	st, err := s.Settings(ctx)
	if err != nil {
		return 0, err
	}
	return Resolve(override, st), nil
}
