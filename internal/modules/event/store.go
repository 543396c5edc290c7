// README: Event registration store backed by PostgreSQL.
package event

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

const registrationColumns = `
	id, voucher_number, voucher_code,
	first_name, last_name, contact_number, email,
	facebook, instagram, city, registered_at`

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// Create inserts the registration and fills in the id, voucher and timestamp
// the database assigned. A second registration for the same email fails with
// ErrAlreadyRegistered.
func (s *Store) Create(ctx context.Context, r *Registration) error {
	err := s.db.QueryRow(ctx, `
		INSERT INTO event_registrations (
			first_name, last_name, contact_number, email, facebook, instagram, city
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, voucher_number, voucher_code, registered_at`,
		r.FirstName, r.LastName, r.ContactNumber, r.Email,
		nullText(r.Facebook), nullText(r.Instagram), r.City,
	).Scan(&r.ID, &r.VoucherNumber, &r.VoucherCode, &r.RegisteredAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrAlreadyRegistered
	}
	return err
}

func (s *Store) List(ctx context.Context) ([]*Registration, error) {
	rows, err := s.db.Query(ctx, `SELECT `+registrationColumns+` FROM event_registrations ORDER BY voucher_number DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Registration
	for rows.Next() {
		r, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) FindByVoucher(ctx context.Context, code string) (*Registration, error) {
	row := s.db.QueryRow(ctx, `SELECT `+registrationColumns+` FROM event_registrations WHERE voucher_code = $1`, code)
	r, err := scanRegistration(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

func scanRegistration(row pgx.Row) (*Registration, error) {
	var r Registration
	var facebook, instagram *string
	err := row.Scan(
		&r.ID, &r.VoucherNumber, &r.VoucherCode,
		&r.FirstName, &r.LastName, &r.ContactNumber, &r.Email,
		&facebook, &instagram, &r.City, &r.RegisteredAt,
	)
	if err != nil {
		return nil, err
	}
	if facebook != nil {
		r.Facebook = *facebook
	}
	if instagram != nil {
		r.Instagram = *instagram
	}
	return &r, nil
}

func nullText(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
