// README: Profile store backed by PostgreSQL.
package profile

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"petlove/internal/modules/access"
)

const profileColumns = `user_id, email, first_name, last_name, role, created_at, updated_at`

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// Create inserts the profile unless one already exists. Reports whether a row was written.
func (s *Store) Create(ctx context.Context, p *Profile) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		INSERT INTO user_roles (user_id, email, first_name, last_name, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (user_id) DO NOTHING`,
		p.UserID, p.Email, p.FirstName, p.LastName, nullRole(p.Role), p.CreatedAt,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) Get(ctx context.Context, userID string) (*Profile, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+profileColumns+`
		FROM user_roles
		WHERE user_id = $1`, userID,
	)
	p, err := scanProfile(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Store) List(ctx context.Context) ([]*Profile, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+profileColumns+`
		FROM user_roles
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) UpdateRole(ctx context.Context, userID string, role access.Role) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE user_roles
		SET role = $1, updated_at = NOW()
		WHERE user_id = $2`,
		string(role), userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateName sets the display name.
func (s *Store) UpdateName(ctx context.Context, userID, firstName, lastName string) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE user_roles
		SET first_name = $1, last_name = $2, updated_at = NOW()
		WHERE user_id = $3`,
		firstName, lastName, userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, userID string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM user_roles WHERE user_id = $1`, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanProfile(row pgx.Row) (*Profile, error) {
	var p Profile
	var role sql.NullString
	if err := row.Scan(&p.UserID, &p.Email, &p.FirstName, &p.LastName, &role, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if role.Valid {
		p.Role = access.Role(role.String)
	}
	return &p, nil
}

func nullRole(r access.Role) *string {
	if r == access.RoleNone {
		return nil
	}
	s := string(r)
	return &s
}
