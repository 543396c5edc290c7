// README: Picked-location store backed by Postgres (chat_locations).
package location

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Append(ctx context.Context, p *Pick) error {
	row := s.db.QueryRow(ctx, `
		INSERT INTO chat_locations (session_id, role, lat, lng, address, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		p.SessionID, string(p.Role), p.Position.Lat, p.Position.Lng, p.Address, p.CreatedAt,
	)
	return row.Scan(&p.ID)
}

func (s *Store) ListBySession(ctx context.Context, sessionID string) ([]*Pick, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, session_id, role, lat, lng, address, created_at
		FROM chat_locations
		WHERE session_id = $1
		ORDER BY created_at DESC, id DESC`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Pick
	for rows.Next() {
		var p Pick
		if err := rows.Scan(&p.ID, &p.SessionID, &p.Role, &p.Position.Lat, &p.Position.Lng, &p.Address, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}
