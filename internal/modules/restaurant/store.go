// README: Restaurant store backed by PostgreSQL; implements the account lifecycle store.
package restaurant

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

// Create registers a new restaurant in pending state.
func (s *Store) Create(ctx context.Context, r *Restaurant) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO restaurants (
			id, name, status, status_version, commission_rate,
			suspension_reason, opening_hours, pending_since, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		string(r.ID),
		r.Name,
		string(r.Status),
		r.StatusVersion,
		r.CommissionRate,
		r.SuspensionReason,
		r.OpeningHours,
		r.PendingSince,
		r.CreatedAt,
	)
	return err
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Restaurant, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, name, status, status_version, commission_rate,
		       suspension_reason, opening_hours, pending_since, created_at
		FROM restaurants
		WHERE id = $1`, string(id),
	)
	return scanRestaurant(row)
}

func (s *Store) List(ctx context.Context, f Filter, p Page) ([]Restaurant, error) {
	p = p.normalized()
	var status *string
	if f.Status != nil {
		v := string(*f.Status)
		status = &v
	}
	rows, err := s.db.Query(ctx, `
		SELECT id, name, status, status_version, commission_rate,
		       suspension_reason, opening_hours, pending_since, created_at
		FROM restaurants
		WHERE ($1::text IS NULL OR status = $1)
		ORDER BY pending_since, created_at
		LIMIT $2 OFFSET $3`,
		status, p.Limit, p.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Restaurant
	for rows.Next() {
		r, err := scanRestaurant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

// GetAccount implements account.Store.
func (s *Store) GetAccount(ctx context.Context, id types.ID) (account.Snapshot, error) {
	r, err := s.Get(ctx, id)
	if err != nil {
		return account.Snapshot{}, err
	}
	return account.Snapshot{
		ID:               r.ID,
		Status:           r.Status,
		StatusVersion:    r.StatusVersion,
		SuspensionReason: r.SuspensionReason,
		PendingSince:     r.PendingSince,
	}, nil
}

// UpdateStatusCAS implements account.Store. The row is written only when it
// still carries (from, version); moving to active clears the suspension
// reason, suspend/reject store the given one.
func (s *Store) UpdateStatusCAS(ctx context.Context, id types.ID, from, to account.Status, version int, reason *string) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE restaurants
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

// AppendEvent implements account.Store; one audit row per transition.
func (s *Store) AppendEvent(ctx context.Context, e account.Event) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO restaurant_status_events (
			restaurant_id, from_status, to_status, actor, reason, created_at
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

// GetRate implements commission.RateStore.
func (s *Store) GetRate(ctx context.Context, id types.ID) (*float64, error) {
	row := s.db.QueryRow(ctx, `SELECT commission_rate FROM restaurants WHERE id = $1`, string(id))
	var rate sql.NullFloat64
	err := row.Scan(&rate)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, account.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if !rate.Valid {
		return nil, nil
	}
	v := rate.Float64
	return &v, nil
}

// SetRateCAS implements commission.RateStore. IS NOT DISTINCT FROM makes the
// compare null-aware, so clearing and setting race safely too.
func (s *Store) SetRateCAS(ctx context.Context, id types.ID, from, to *float64) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE restaurants
		SET commission_rate = $1
		WHERE id = $2 AND commission_rate IS NOT DISTINCT FROM $3`,
		to, string(id), from,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

type pgxRow interface {
	Scan(dest ...any) error
}

func scanRestaurant(row pgxRow) (*Restaurant, error) {
	var r Restaurant
	var status string
	var rate sql.NullFloat64
	var reason sql.NullString
	var pendingSince, createdAt time.Time

	err := row.Scan(
		&r.ID, &r.Name, &status, &r.StatusVersion, &rate,
		&reason, &r.OpeningHours, &pendingSince, &createdAt,
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
	r.Status = st
	if rate.Valid {
		v := rate.Float64
		r.CommissionRate = &v
	}
	if reason.Valid {
		v := reason.String
		r.SuspensionReason = &v
	}
	r.PendingSince = pendingSince
	r.CreatedAt = createdAt
	return &r, nil
}
