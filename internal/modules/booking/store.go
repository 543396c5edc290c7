// README: Booking store backed by PostgreSQL.
package booking

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"petlove/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

const bookingColumns = `
	id, user_id, status, status_version,
	pickup_lat, pickup_lng, dropoff_lat, dropoff_lng,
	pickup_address, dropoff_address,
	pickup_name, pickup_contact, dropoff_name, dropoff_contact,
	vehicle_type, pet_size, pet_count, transport_date, notes,
	distance, base_fare, extra_charge, fare, currency,
	created_at, updated_at`

func (s *Store) Create(ctx context.Context, b *Booking) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO bookings (`+bookingColumns+`
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7, $8,
			$9, $10,
			$11, $12, $13, $14,
			$15, $16, $17, $18, $19,
			$20, $21, $22, $23, $24,
			$25, $26
		)`,
		string(b.ID), b.UserID, string(b.Status), b.StatusVersion,
		b.Pickup.Lat, b.Pickup.Lng, b.Dropoff.Lat, b.Dropoff.Lng,
		b.PickupAddress, b.DropoffAddress,
		b.PickupName, b.PickupContact, b.DropoffName, b.DropoffContact,
		string(b.VehicleType), string(b.PetSize), b.PetCount, b.TransportDate, b.Notes,
		b.DistanceKm, b.BaseFare.Amount, b.ExtraCharge.Amount, b.Fare.Amount, b.Fare.Currency,
		b.CreatedAt, b.UpdatedAt,
	)
	return err
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Booking, error) {
	row := s.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, string(id))
	b, err := scanBooking(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Store) ListByUser(ctx context.Context, userID string) ([]*Booking, error) {
	return s.list(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

// ListAll returns every booking, optionally filtered by status.
func (s *Store) ListAll(ctx context.Context, status Status) ([]*Booking, error) {
	if status == "" {
		return s.list(ctx, `SELECT `+bookingColumns+` FROM bookings ORDER BY created_at DESC`)
	}
	return s.list(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE status = $1 ORDER BY created_at DESC`, string(status))
}

// CountByStatus counts bookings per status. An empty userID counts every booking.
func (s *Store) CountByStatus(ctx context.Context, userID string) (map[Status]int, error) {
	rows, err := s.db.Query(ctx, `
		SELECT status, COUNT(*)
		FROM bookings
		WHERE $1 = '' OR user_id = $1
		GROUP BY status`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[Status]int)
	for rows.Next() {
		var status Status
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

func (s *Store) list(ctx context.Context, query string, args ...any) ([]*Booking, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// UpdateStatus moves the booking only if it is still at the expected status
// and version. Reports whether the row was updated.
func (s *Store) UpdateStatus(ctx context.Context, id types.ID, from, to Status, version int) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE bookings
		SET status = $1,
			status_version = status_version + 1,
			updated_at = NOW()
		WHERE id = $2 AND status = $3 AND status_version = $4`,
		string(to), string(id), string(from), version,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) AppendEvent(ctx context.Context, e *Event) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO booking_status_events (
			booking_id, from_status, to_status, actor_id, created_at
		) VALUES ($1, $2, $3, $4, $5)`,
		string(e.BookingID), string(e.FromStatus), string(e.ToStatus), e.ActorID, e.CreatedAt,
	)
	return err
}

func (s *Store) Events(ctx context.Context, id types.ID) ([]*Event, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, booking_id, from_status, to_status, actor_id, created_at
		FROM booking_status_events
		WHERE booking_id = $1
		ORDER BY id`, string(id))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.BookingID, &e.FromStatus, &e.ToStatus, &e.ActorID, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

func scanBooking(row pgx.Row) (*Booking, error) {
	var b Booking
	var currency string
	err := row.Scan(
		&b.ID, &b.UserID, &b.Status, &b.StatusVersion,
		&b.Pickup.Lat, &b.Pickup.Lng, &b.Dropoff.Lat, &b.Dropoff.Lng,
		&b.PickupAddress, &b.DropoffAddress,
		&b.PickupName, &b.PickupContact, &b.DropoffName, &b.DropoffContact,
		&b.VehicleType, &b.PetSize, &b.PetCount, &b.TransportDate, &b.Notes,
		&b.DistanceKm, &b.BaseFare.Amount, &b.ExtraCharge.Amount, &b.Fare.Amount, &currency,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	currency = strings.TrimSpace(currency)
	if currency == "" {
		currency = types.CurrencyPHP
	}
	b.BaseFare.Currency = currency
	b.ExtraCharge.Currency = currency
	b.Fare.Currency = currency
	return &b, nil
}
