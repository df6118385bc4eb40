// README: Correction-request store backed by PostgreSQL.
package onboarding

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"feastly/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Append(ctx context.Context, r CorrectionRequest) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO correction_requests (
			entity_kind, entity_id, actor, message, created_at
		) VALUES ($1, $2, $3, $4, $5)`,
		string(r.Kind),
		string(r.EntityID),
		r.Actor,
		r.Message,
		r.CreatedAt,
	)
	return err
}

func (s *Store) ListByEntity(ctx context.Context, kind Kind, id types.ID) ([]CorrectionRequest, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, entity_kind, entity_id, actor, message, created_at
		FROM correction_requests
		WHERE entity_kind = $1 AND entity_id = $2
		ORDER BY created_at`,
		string(kind), string(id),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CorrectionRequest
	for rows.Next() {
		var r CorrectionRequest
		if err := rows.Scan(&r.ID, &r.Kind, &r.EntityID, &r.Actor, &r.Message, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
