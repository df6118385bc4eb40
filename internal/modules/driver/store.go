// README: Driver store backed by PostgreSQL; implements the account lifecycle store.
package driver

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"feastly/internal/modules/account"
	"feastly/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, d *Driver) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO drivers (
			id, name, status, status_version, delivery_status,
			suspension_reason, pending_since, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		string(d.ID),
		d.Name,
		string(d.Status),
		d.StatusVersion,
		string(d.DeliveryStatus),
		d.SuspensionReason,
		d.PendingSince,
		d.CreatedAt,
	)
	return err
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Driver, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, name, status, status_version, delivery_status,
		       suspension_reason, pending_since, created_at
		FROM drivers
		WHERE id = $1`, string(id),
	)
	return scanDriver(row)
}

func (s *Store) List(ctx context.Context, f Filter, p Page) ([]Driver, error) {
	p = p.normalized()
	var status *string
	if f.Status != nil {
		v := string(*f.Status)
		status = &v
	}
	rows, err := s.db.Query(ctx, `
		SELECT id, name, status, status_version, delivery_status,
		       suspension_reason, pending_since, created_at
		FROM drivers
		WHERE ($1::text IS NULL OR status = $1)
		ORDER BY pending_since, created_at
		LIMIT $2 OFFSET $3`,
		status, p.Limit, p.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Driver
	for rows.Next() {
		d, err := scanDriver(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

// SetDeliveryStatus updates operational availability. Guarded to active
// accounts in the WHERE clause: suspended, pending and rejected drivers
// cannot change it.
func (s *Store) SetDeliveryStatus(ctx context.Context, id types.ID, ds DeliveryStatus) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE drivers
		SET delivery_status = $1
		WHERE id = $2 AND status = 'active'`,
		string(ds), string(id),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	// distinguish "not active" from "no such driver"
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return account.ErrInvalidTransition
}

// GetAccount implements account.Store.
func (s *Store) GetAccount(ctx context.Context, id types.ID) (account.Snapshot, error) {
	d, err := s.Get(ctx, id)
	if err != nil {
		return account.Snapshot{}, err
	}
	return account.Snapshot{
		ID:               d.ID,
		Status:           d.Status,
		StatusVersion:    d.StatusVersion,
		SuspensionReason: d.SuspensionReason,
		PendingSince:     d.PendingSince,
	}, nil
}

// UpdateStatusCAS implements account.Store.
func (s *Store) UpdateStatusCAS(ctx context.Context, id types.ID, from, to account.Status, version int, reason *string) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE drivers
		SET status = $1,
		    status_version = status_version + 1,
		    suspension_reason = CASE WHEN $1 = 'active' THEN NULL ELSE COALESCE($2, suspension_reason) END
		WHERE id = $3 AND status = $4 AND status_version = $5`,
		string(to), reason, string(id), string(from), version,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// AppendEvent implements account.Store.
func (s *Store) AppendEvent(ctx context.Context, e account.Event) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO driver_status_events (
			driver_id, from_status, to_status, actor, reason, created_at
		) VALUES ($1, $2, $3, $4, $5, $6)`,
		string(e.EntityID),
		string(e.FromStatus),
		string(e.ToStatus),
		e.Actor,
		e.Reason,
		e.CreatedAt,
	)
	return err
}

type pgxRow interface {
	Scan(dest ...any) error
}

func scanDriver(row pgxRow) (*Driver, error) {
	var d Driver
	var status, deliveryStatus string
	var reason sql.NullString
	var pendingSince, createdAt time.Time

	err := row.Scan(
		&d.ID, &d.Name, &status, &d.StatusVersion, &deliveryStatus,
		&reason, &pendingSince, &createdAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, account.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	st, err := account.ParseStatus(status)
	if err != nil {
		return nil, err
	}
	ds, err := ParseDeliveryStatus(deliveryStatus)
	if err != nil {
		return nil, err
	}
	d.Status = st
	d.DeliveryStatus = ds
	if reason.Valid {
		v := reason.String
		d.SuspensionReason = &v
	}
	d.PendingSince = pendingSince
	d.CreatedAt = createdAt
	return &d, nil
}
