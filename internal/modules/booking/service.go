// README: Booking service. Quotes and persists bookings, drives the status flow, notifies admins.
package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"petlove/internal/modules/pricing"
	"petlove/internal/observability"
	"petlove/internal/types"
)

var (
	ErrInvalidState        = errors.New("invalid status transition")
	ErrNotFound            = errors.New("booking not found")
	ErrConflict            = errors.New("booking status conflict")
	ErrForbidden           = errors.New("booking belongs to another user")
	ErrBadRequest          = errors.New("bad request")
	ErrDistanceUnavailable = errors.New("unable to calculate route distance")
)

// DistanceProvider returns the driving distance between two points in kilometres.
type DistanceProvider interface {
	DrivingDistanceKm(ctx context.Context, origin, destination types.Point) (float64, error)
}

// Notifier is told about new bookings. Failures never fail the booking.
type Notifier interface {
	BookingCreated(ctx context.Context, b *Booking) error
}

// Quoter prices a trip. *pricing.Service implements it and records every quote.
type Quoter interface {
	Quote(req pricing.QuoteRequest) (pricing.Quote, error)
}

// Repository is the persistence the service needs. *Store implements it.
type Repository interface {
	Create(ctx context.Context, b *Booking) error
	Get(ctx context.Context, id types.ID) (*Booking, error)
	ListByUser(ctx context.Context, userID string) ([]*Booking, error)
	ListAll(ctx context.Context, status Status) ([]*Booking, error)
	CountByStatus(ctx context.Context, userID string) (map[Status]int, error)
	UpdateStatus(ctx context.Context, id types.ID, from, to Status, version int) (bool, error)
	AppendEvent(ctx context.Context, e *Event) error
}

type Service struct {
	repo     Repository
	distance DistanceProvider
	quoter   Quoter
	notifier Notifier
	log      *slog.Logger
	now      func() time.Time
}

func NewService(repo Repository, distance DistanceProvider, notifier Notifier, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		repo:     repo,
		distance: distance,
		quoter:   pricing.NewService(),
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

type CreateCommand struct {
	UserID string
	Draft  Draft
}

type StatusCommand struct {
	BookingID types.ID
	To        Status
	ActorID   string
}

type CancelCommand struct {
	BookingID types.ID
	UserID    string
}

// Estimate looks up the driving distance and quotes it without persisting anything.
func (s *Service) Estimate(ctx context.Context, d Draft) (pricing.Quote, error) {
	if err := ValidateStep(StepRoute, d); err != nil {
		return pricing.Quote{}, err
	}
	km, err := s.drivingDistance(ctx, *d.Pickup, *d.Dropoff)
	if err != nil {
		return pricing.Quote{}, err
	}
	return s.quoter.Quote(pricing.QuoteRequest{
		DistanceKm:  km,
		VehicleType: d.VehicleType,
		PetSize:     d.PetSize,
		PetCount:    d.PetCount,
	})
}

func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*Booking, error) {
	if strings.TrimSpace(cmd.UserID) == "" {
		return nil, ErrBadRequest
	}
	d := cmd.Draft
	if err := ValidateAll(d); err != nil {
		return nil, err
	}

	quote, err := s.Estimate(ctx, d)
	if err != nil {
		return nil, err
	}

	now := s.now()
	b := &Booking{
		ID:             types.ID(uuid.NewString()),
		UserID:         cmd.UserID,
		Status:         StatusPending,
		Pickup:         *d.Pickup,
		Dropoff:        *d.Dropoff,
		PickupAddress:  d.PickupAddress,
		DropoffAddress: d.DropoffAddress,
		PickupName:     strings.TrimSpace(d.PickupName),
		PickupContact:  strings.TrimSpace(d.PickupContact),
		DropoffName:    strings.TrimSpace(d.DropoffName),
		DropoffContact: strings.TrimSpace(d.DropoffContact),
		VehicleType:    d.VehicleType,
		PetSize:        d.PetSize,
		PetCount:       d.PetCount,
		TransportDate:  d.TransportDate.UTC(),
		Notes:          d.Notes,
		DistanceKm:     quote.DistanceKm,
		BaseFare:       quote.BaseFare,
		ExtraCharge:    quote.ExtraCharge,
		Fare:           quote.TotalFare,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("insert booking: %w", err)
	}
	s.appendEvent(ctx, b.ID, StatusNone, StatusPending, cmd.UserID)
	observability.BookingsCreatedTotal.WithLabelValues(string(b.VehicleType)).Inc()

	if s.notifier != nil {
		if err := s.notifier.BookingCreated(ctx, b); err != nil {
			s.log.WarnContext(ctx, "booking notification failed", "booking_id", string(b.ID), "error", err)
		}
	}
	return b, nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Booking, error) {
	return s.repo.Get(ctx, id)
}

// GetForUser returns the booking if the caller owns it or is an admin.
func (s *Service) GetForUser(ctx context.Context, id types.ID, userID string, admin bool) (*Booking, error) {
	b, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !admin && b.UserID != userID {
		return nil, ErrForbidden
	}
	return b, nil
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]*Booking, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) ListAll(ctx context.Context, status Status) ([]*Booking, error) {
	return s.repo.ListAll(ctx, status)
}

// Stats counts the user's bookings per status.
func (s *Service) Stats(ctx context.Context, userID string) (Stats, error) {
	if strings.TrimSpace(userID) == "" {
		return Stats{}, ErrBadRequest
	}
	counts, err := s.repo.CountByStatus(ctx, userID)
	if err != nil {
		return Stats{}, err
	}
	return StatsFromCounts(counts), nil
}

// AllStats counts every booking per status.
func (s *Service) AllStats(ctx context.Context) (Stats, error) {
	counts, err := s.repo.CountByStatus(ctx, "")
	if err != nil {
		return Stats{}, err
	}
	return StatsFromCounts(counts), nil
}

// UpdateStatus applies an admin transition.
func (s *Service) UpdateStatus(ctx context.Context, cmd StatusCommand) (*Booking, error) {
	b, err := s.repo.Get(ctx, cmd.BookingID)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, b, cmd.To, cmd.ActorID)
}

// Cancel lets the owner cancel while the booking is pending or confirmed.
func (s *Service) Cancel(ctx context.Context, cmd CancelCommand) (*Booking, error) {
	b, err := s.repo.Get(ctx, cmd.BookingID)
	if err != nil {
		return nil, err
	}
	if b.UserID != cmd.UserID {
		return nil, ErrForbidden
	}
	return s.transition(ctx, b, StatusCancelled, cmd.UserID)
}

func (s *Service) transition(ctx context.Context, b *Booking, to Status, actorID string) (*Booking, error) {
	if !CanTransition(b.Status, to) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidState, b.Status, to)
	}
	ok, err := s.repo.UpdateStatus(ctx, b.ID, b.Status, to, b.StatusVersion)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrConflict
	}
	s.appendEvent(ctx, b.ID, b.Status, to, actorID)
	return s.repo.Get(ctx, b.ID)
}

func (s *Service) appendEvent(ctx context.Context, id types.ID, from, to Status, actorID string) {
	err := s.repo.AppendEvent(ctx, &Event{
		BookingID:  id,
		FromStatus: from,
		ToStatus:   to,
		ActorID:    actorID,
		CreatedAt:  s.now(),
	})
	if err != nil {
		s.log.WarnContext(ctx, "append booking event failed", "booking_id", string(id), "error", err)
	}
}

func (s *Service) drivingDistance(ctx context.Context, origin, destination types.Point) (float64, error) {
	if s.distance == nil {
		return 0, ErrDistanceUnavailable
	}
	km, err := s.distance.DrivingDistanceKm(ctx, origin, destination)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrDistanceUnavailable, err)
	}
	return km, nil
}
