// README: Earnings ledger store backed by PostgreSQL; insert-once per delivery.
package earnings

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"feastly/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// Insert appends one earnings record. The ledger is keyed on delivery_id, so
// a second settlement of the same delivery inserts nothing; the bool reports
// whether this call created the row.
func (s *Store) Insert(ctx context.Context, r *Record) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		INSERT INTO earnings_records (
			id, delivery_id, driver_id, restaurant_id,
			fee, driver_share, platform_share, currency,
			share_numerator, commission_rate, settled_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (delivery_id) DO NOTHING`,
		string(r.ID),
		string(r.DeliveryID),
		string(r.DriverID),
		string(r.RestaurantID),
		r.Fee.Amount,
		r.DriverShare.Amount,
		r.PlatformShare.Amount,
		r.Fee.Currency,
		r.ShareNumerator,
		r.CommissionRate,
		r.SettledAt,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) GetByDelivery(ctx context.Context, deliveryID types.ID) (*Record, error) {
	rows, err := s.db.Query(ctx, selectRecords+` WHERE delivery_id = $1`, string(deliveryID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	recs, err := scanRecords(rows)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, ErrNotFound
	}
	return &recs[0], nil
}

// ListByDriver returns the driver's records settled at or after since; a zero
// since returns the full history.
func (s *Store) ListByDriver(ctx context.Context, driverID types.ID, since time.Time) ([]Record, error) {
	rows, err := s.db.Query(ctx, selectRecords+`
		WHERE driver_id = $1 AND ($2::timestamptz IS NULL OR settled_at >= $2)
		ORDER BY settled_at`,
		string(driverID), nullableTime(since),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

// TotalsByDriver sums shares in SQL for one window.
func (s *Store) TotalsByDriver(ctx context.Context, driverID types.ID, w Window, now time.Time, loc *time.Location) (Totals, error) {
	var since *time.Time
	if start, bounded := WindowStart(w, now, loc); bounded {
		since = &start
	}
	row := s.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(driver_share), 0), COALESCE(SUM(platform_share), 0), COUNT(*)
		FROM earnings_records
		WHERE driver_id = $1 AND ($2::timestamptz IS NULL OR settled_at >= $2)`,
		string(driverID), since,
	)
	t := Totals{Window: w}
	if err := row.Scan(&t.DriverTotal, &t.PlatformTotal, &t.Count); err != nil {
		return Totals{}, err
	}
	return t, nil
}

const selectRecords = `
	SELECT id, delivery_id, driver_id, restaurant_id,
	       fee, driver_share, platform_share, currency,
	       share_numerator, commission_rate, settled_at
	FROM earnings_records`

type pgxRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanRecords(rows pgxRows) ([]Record, error) {
	var out []Record
	for rows.Next() {
		var r Record
		var currency string
		if err := rows.Scan(
			&r.ID, &r.DeliveryID, &r.DriverID, &r.RestaurantID,
			&r.Fee.Amount, &r.DriverShare.Amount, &r.PlatformShare.Amount, &currency,
			&r.ShareNumerator, &r.CommissionRate, &r.SettledAt,
		); err != nil {
			return nil, err
		}
		r.Fee.Currency = currency
		r.DriverShare.Currency = currency
		r.PlatformShare.Currency = currency
		out = append(out, r)
	}
	return out, rows.Err()
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
