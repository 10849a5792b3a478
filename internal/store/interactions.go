package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/MikeSquared-Agency/rolodex/internal/engine"
	"github.com/google/uuid"
)

// ErrSinkUnavailable wraps any append failure so callers can distinguish
// persistence trouble from completion itself.
var ErrSinkUnavailable = errors.New("record sink unavailable")

// Append writes one completed interaction record. Column order matches the
// record's Values() contract:
//
//	interactions (id, interaction_id, person_name, context, occurred_on, contact_info, status, created_at)
func (s *Store) Append(ctx context.Context, rec engine.Record) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO interactions (id, interaction_id, person_name, context, occurred_on, contact_info, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())`,
		uuid.New(), rec.ID, rec.Name, rec.Context, rec.Date, rec.ContactInfo, rec.Status,
	)
	if err != nil {
		return fmt.Errorf("insert interaction: %w: %w", ErrSinkUnavailable, err)
	}
	return nil
}

// ListRecent returns the newest committed records, most recent first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]engine.Record, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT interaction_id, person_name, context, to_char(occurred_on, 'YYYY-MM-DD'), contact_info, status
		FROM interactions
		ORDER BY created_at DESC
		LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query interactions: %w", err)
	}
	defer rows.Close()

	var recs []engine.Record
	for rows.Next() {
		var rec engine.Record
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Context, &rec.Date, &rec.ContactInfo, &rec.Status); err != nil {
			return nil, fmt.Errorf("scan interaction: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}
