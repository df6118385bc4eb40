// README: Platform commission settings and the effective-rate precedence rule.
package commission

import (
	"errors"
	"fmt"
	"time"
)

// FallbackRatePercent is applied when no settings row exists yet. It is the
// last resort, not the platform default admins edit.
const FallbackRatePercent = 15.0

var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("commission settings not found")
	ErrConflict   = errors.New("commission settings conflict")
)

// Settings is the single platform-wide commission configuration. Version is
// bumped on every update and is the compare side of the CAS write. A
// zero-valued Settings (Version 0) means the row is unavailable.
type Settings struct {
	DefaultRatePercent float64
	Version            int
	UpdatedAt          time.Time
}

// ValidateRate checks a commission percentage against the [0,100] range.
func ValidateRate(rate float64) error {
	if rate < 0 || rate > 100 {
		return fmt.Errorf("%w: commission rate %.2f outside [0,100]", ErrValidation, rate)
	}
	return nil
}

// Resolve returns the commission rate effective for a restaurant: its
// override when set, otherwise the platform default, otherwise the hardcoded
// fallback. Pure; callers pass an immutable settings snapshot rather than
// reading shared state.
func Resolve(override *float64, s Settings) float64 {
	if override != nil {
		return *override
	}
	if s.Version == 0 {
		return FallbackRatePercent
	}
	return s.DefaultRatePercent
}
