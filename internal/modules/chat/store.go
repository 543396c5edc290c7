// README: Monthly chat token quota in Postgres (ai_usage).
package chat

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	db  *pgxpool.Pool
	now func() time.Time
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db, now: time.Now}
}

func (s *Store) month() string {
	return s.now().Format("2006-01")
}

// UseToken atomically checks the monthly quota and deducts one token,
// resetting to DefaultTokens first when the stored month is behind. Returns
// ErrInsufficientTokens when no row was updated (quota exhausted or user absent).
func (s *Store) UseToken(ctx context.Context, uid string) (int, error) {
	var remaining int
	err := s.db.QueryRow(ctx, `
		UPDATE ai_usage SET
			tokens_remaining = CASE WHEN last_reset_month != $1 THEN $2 - 1 ELSE tokens_remaining - 1 END,
			last_reset_month = $1
		WHERE user_id = $3 AND (last_reset_month < $1 OR tokens_remaining > 0)
		RETURNING tokens_remaining`,
		s.month(), DefaultTokens, uid,
	).Scan(&remaining)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrInsufficientTokens
	}
	if err != nil {
		return 0, err
	}
	return remaining, nil
}

// EnsureUser inserts the quota row with the default allowance if it is missing.
func (s *Store) EnsureUser(ctx context.Context, uid string) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO ai_usage (user_id, tokens_remaining, last_reset_month)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO NOTHING`,
		uid, DefaultTokens, s.month(),
	)
	return err
}

// Remaining reports the tokens left this month without spending any.
func (s *Store) Remaining(ctx context.Context, uid string) (int, error) {
	var remaining int
	var month string
	err := s.db.QueryRow(ctx, `
		SELECT tokens_remaining, last_reset_month FROM ai_usage WHERE user_id = $1`, uid,
	).Scan(&remaining, &month)
	if errors.Is(err, pgx.ErrNoRows) {
		return DefaultTokens, nil
	}
	if err != nil {
		return 0, err
	}
	if month < s.month() {
		return DefaultTokens, nil
	}
	return remaining, nil
}
