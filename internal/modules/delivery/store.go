// README: Delivery store backed by PostgreSQL; CAS status writes and event log.
package delivery

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"feastly/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, d *Delivery) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO deliveries (
			id, restaurant_id, driver_id, status, status_version,
			fee, currency, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		string(d.ID),
		string(d.RestaurantID),
		toStringPtr(d.DriverID),
		string(d.Status),
		d.StatusVersion,
		d.Fee.Amount,
		d.Fee.Currency,
		d.CreatedAt,
	)
	return err
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Delivery, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, restaurant_id, driver_id, status, status_version,
		       fee, currency,
		       created_at, accepted_at, ready_at, picked_up_at, delivered_at, cancelled_at, cancel_reason
		FROM deliveries
		WHERE id = $1`, string(id),
	)

	var d Delivery
	var driverID sql.NullString
	var acceptedAt, readyAt, pickedUpAt, deliveredAt, cancelledAt sql.NullTime
	var cancelReason sql.NullString

	err := row.Scan(
		&d.ID, &d.RestaurantID, &driverID, &d.Status, &d.StatusVersion,
		&d.Fee.Amount, &d.Fee.Currency,
		&d.CreatedAt, &acceptedAt, &readyAt, &pickedUpAt, &deliveredAt, &cancelledAt, &cancelReason,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if driverID.Valid {
		v := types.ID(driverID.String)
		d.DriverID = &v
	}
	d.AcceptedAt = toTimePtr(acceptedAt)
	d.ReadyAt = toTimePtr(readyAt)
	d.PickedUpAt = toTimePtr(pickedUpAt)
	d.DeliveredAt = toTimePtr(deliveredAt)
	d.CancelledAt = toTimePtr(cancelledAt)
	if cancelReason.Valid {
		d.CancelReason = &cancelReason.String
	}
	return &d, nil
}

func (s *Store) UpdateStatusCAS(ctx context.Context, id types.ID, from, to Status, version int, driverID *types.ID, cancelReason *string) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE deliveries
		SET status = $1,
		    status_version = status_version + 1,
		    driver_id = COALESCE($2, driver_id),
		    cancel_reason = COALESCE($3, cancel_reason),
		    accepted_at = CASE WHEN $1 = 'accepted' THEN NOW() ELSE accepted_at END,
		    ready_at = CASE WHEN $1 = 'ready' THEN NOW() ELSE ready_at END,
		    picked_up_at = CASE WHEN $1 = 'picked_up' THEN NOW() ELSE picked_up_at END,
		    delivered_at = CASE WHEN $1 = 'delivered' THEN NOW() ELSE delivered_at END,
		    cancelled_at = CASE WHEN $1 = 'cancelled' THEN NOW() ELSE cancelled_at END
		WHERE id = $4 AND status = $5 AND status_version = $6`,
		string(to),
		toStringPtr(driverID),
		cancelReason,
		string(id),
		string(from),
		version,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) AppendEvent(ctx context.Context, e *Event) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO delivery_status_events (
			delivery_id, from_status, to_status, actor_type, actor_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6)`,
		string(e.DeliveryID),
		string(e.FromStatus),
		string(e.ToStatus),
		e.ActorType,
		toStringPtr(e.ActorID),
		e.CreatedAt,
	)
	return err
}

func toStringPtr(v *types.ID) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}

func toTimePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}
