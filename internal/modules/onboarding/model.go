// README: Onboarding correction-request record and entity kinds.
package onboarding

import (
	"time"

	"feastly/internal/types"
)

// Kind distinguishes which applicant table a workflow instance serves.
type Kind string

const (
	KindRestaurant Kind = "restaurant"
	KindDriver     Kind = "driver"
)

// CorrectionRequest asks a pending applicant to fix their submission without
// rejecting them; the account stays pending. Tracked separately from
// rejections so admins can tell "asked to resubmit" from "turned away".
type CorrectionRequest struct {
	ID        int64
	Kind      Kind
	EntityID  types.ID
	Actor     string
	Message   string
	CreatedAt time.Time
}
