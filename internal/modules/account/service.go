// README: Lifecycle service; guarded CAS status transitions shared by restaurants and drivers.
package account

import (
	"context"
	"log"
	"strings"
	"time"

	"feastly/internal/types"
)

// Store is implemented by the restaurant and driver stores. UpdateStatusCAS
// must only write when the row still carries (from, version) and must clear
// the suspension reason when transitioning back to active.
type Store interface {
	GetAccount(ctx context.Context, id types.ID) (Snapshot, error)
	UpdateStatusCAS(ctx context.Context, id types.ID, from, to Status, version int, reason *string) (bool, error)
	AppendEvent(ctx context.Context, e Event) error
}

// Lifecycle runs the account state machine over one entity kind. The same
// machine is instantiated once for restaurants and once for drivers; only the
// backing store differs.
type Lifecycle struct {
	store Store
}

func NewLifecycle(store Store) *Lifecycle {
	return &Lifecycle{store: store}
}

// Each verb pins its source state: approving an already-active account or
// reactivating a pending one is an invalid transition even though the target
// state is reachable from elsewhere in the table.

func (l *Lifecycle) Approve(ctx context.Context, id types.ID, actor string) error {
	return l.transition(ctx, id, StatusPending, StatusActive, actor, nil, false)
}

func (l *Lifecycle) Reject(ctx context.Context, id types.ID, actor, reason string) error {
	return l.transition(ctx, id, StatusPending, StatusRejected, actor, &reason, true)
}

func (l *Lifecycle) Suspend(ctx context.Context, id types.ID, actor, reason string) error {
	return l.transition(ctx, id, StatusActive, StatusSuspended, actor, &reason, true)
}

// Reactivate moves a suspended account back to active and clears the stored
// suspension reason.
func (l *Lifecycle) Reactivate(ctx context.Context, id types.ID, actor string) error {
	return l.transition(ctx, id, StatusSuspended, StatusActive, actor, nil, false)
}

func (l *Lifecycle) Get(ctx context.Context, id types.ID) (Snapshot, error) {
	return l.store.GetAccount(ctx, id)
}

func (l *Lifecycle) transition(ctx context.Context, id types.ID, from, to Status, actor string, reason *string, reasonRequired bool) error {
	if reasonRequired && (reason == nil || strings.TrimSpace(*reason) == "") {
		return ErrValidation
	}

	snap, err := l.store.GetAccount(ctx, id)
	if err != nil {
		return err
	}
	if snap.Status != from || !CanTransition(snap.Status, to) {
		return ErrInvalidTransition
	}

	ok, err := l.store.UpdateStatusCAS(ctx, id, snap.Status, to, snap.StatusVersion, reason)
	if err != nil {
		return err
	}
	if !ok {
		return ErrConflict
	}

	if err := l.store.AppendEvent(ctx, Event{
		EntityID:   id,
		FromStatus: snap.Status,
		ToStatus:   to,
		Actor:      actor,
		Reason:     reason,
		CreatedAt:  time.Now(),
	}); err != nil {
		// The transition itself committed; losing the audit row is logged,
		// not rolled back.
		log.Printf("account: append status event for %s: %v", id, err)
	}
	return nil
}
