// README: Commission settings store backed by PostgreSQL (single versioned row).
package commission

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// The settings table holds exactly one row, pinned to id = 1.
const settingsRowID = 1

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) GetSettings(ctx context.Context) (Settings, error) {
	row := s.db.QueryRow(ctx, `
		SELECT default_rate_percent, version, updated_at
		FROM commission_settings
		WHERE id = $1`, settingsRowID,
	)
	var st Settings
	err := row.Scan(&st.DefaultRatePercent, &st.Version, &st.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Settings{}, ErrNotFound
	}
	if err != nil {
		return Settings{}, err
	}
	return st, nil
}

// UpdateSettingsCAS writes a new platform default only when the row still
// carries the given version. Returns false when a concurrent update won.
func (s *Store) UpdateSettingsCAS(ctx context.Context, rate float64, version int) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE commission_settings
		SET default_rate_percent = $1,
		    version = version + 1,
		    updated_at = NOW()
		WHERE id = $2 AND version = $3`,
		rate, settingsRowID, version,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
