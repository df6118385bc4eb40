// README: Validation workflow over the account lifecycle's pending phase.
package onboarding

import (
	"context"
	"log"
	"strings"
	"time"

	"feastly/internal/modules/account"
	"feastly/internal/types"
)

// Notifier delivers a correction message to the applicant. Transport is an
// external collaborator; a no-op or log implementation is fine for callers
// that do not care.
type Notifier interface {
	NotifyCorrections(ctx context.Context, kind Kind, entityID types.ID, message string) error
}

// CorrectionStore persists correction requests.
type CorrectionStore interface {
	Append(ctx context.Context, r CorrectionRequest) error
	ListByEntity(ctx context.Context, kind Kind, id types.ID) ([]CorrectionRequest, error)
}

// Service orchestrates the approval path for one entity kind. It owns no
// state machine of its own: approve and reject are the lifecycle's
// transitions, and corrections deliberately leave the status untouched.
type Service struct {
	kind      Kind
	lifecycle *account.Lifecycle
	store     CorrectionStore
	notifier  Notifier
}

func NewService(kind Kind, lifecycle *account.Lifecycle, store CorrectionStore, notifier Notifier) *Service {
	return &Service{kind: kind, lifecycle: lifecycle, store: store, notifier: notifier}
}

func (s *Service) Approve(ctx context.Context, id types.ID, actor string) error {
	return s.lifecycle.Approve(ctx, id, actor)
}

func (s *Service) Reject(ctx context.Context, id types.ID, actor, reason string) error {
	return s.lifecycle.Reject(ctx, id, actor, reason)
}

// RequestCorrections records the message and notifies the applicant. The
// account must be pending and stays pending; resubmission after rejection is
// a new registration, not a workflow step.
func (s *Service) RequestCorrections(ctx context.Context, id types.ID, actor, message string) error {
	if strings.TrimSpace(message) == "" {
		return account.ErrValidation
	}
	snap, err := s.lifecycle.Get(ctx, id)
	if err != nil {
		return err
	}
	if snap.Status != account.StatusPending {
		return account.ErrInvalidTransition
	}
	if err := s.store.Append(ctx, CorrectionRequest{
		Kind:      s.kind,
		EntityID:  id,
		Actor:     actor,
		Message:   message,
		CreatedAt: time.Now(),
	}); err != nil {
		return err
	}
	if s.notifier != nil {
		if err := s.notifier.NotifyCorrections(ctx, s.kind, id, message); err != nil {
			// the request is recorded; delivery failures are logged only
			log.Printf("onboarding: notify %s %s: %v", s.kind, id, err)
		}
	}
	return nil
}

// Corrections lists the messages sent to one applicant, oldest first.
func (s *Service) Corrections(ctx context.Context, id types.ID) ([]CorrectionRequest, error) {
	return s.store.ListByEntity(ctx, s.kind, id)
}

// PendingDays reports how long an applicant has been waiting, for admin
// queue prioritization. Derived, never an input to the state machine.
func PendingDays(snap account.Snapshot, now time.Time) int {
	if snap.Status != account.StatusPending || snap.PendingSince.IsZero() {
		return 0
	}
	d := now.Sub(snap.PendingSince)
	if d < 0 {
		return 0
	}
	return int(d.Hours() / 24)
}
