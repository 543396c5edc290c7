// README: Event registration service. Validates sign-ups and hands out vouchers.
package event

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"petlove/internal/observability"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Repository is the persistence the service needs. *Store implements it.
type Repository interface {
	Create(ctx context.Context, r *Registration) error
	List(ctx context.Context) ([]*Registration, error)
	FindByVoucher(ctx context.Context, code string) (*Registration, error)
}

type Service struct {
	repo Repository
	log  *slog.Logger
}

func NewService(repo Repository, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{repo: repo, log: log}
}

type RegisterCommand struct {
	FirstName     string `json:"first_name" validate:"required,max=80"`
	LastName      string `json:"last_name" validate:"required,max=80"`
	ContactNumber string `json:"contact_number" validate:"required,max=40"`
	Email         string `json:"email" validate:"required,email,max=254"`
	Facebook      string `json:"facebook" validate:"omitempty,url,max=300"`
	Instagram     string `json:"instagram" validate:"omitempty,url,max=300"`
	City          string `json:"city" validate:"required,max=120"`
}

func (c *RegisterCommand) normalize() {
	c.FirstName = strings.TrimSpace(c.FirstName)
	c.LastName = strings.TrimSpace(c.LastName)
	c.ContactNumber = strings.TrimSpace(c.ContactNumber)
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	c.Facebook = strings.TrimSpace(c.Facebook)
	c.Instagram = strings.TrimSpace(c.Instagram)
	c.City = strings.TrimSpace(c.City)
}

// Register stores the sign-up and returns it with its voucher code.
func (s *Service) Register(ctx context.Context, cmd RegisterCommand) (*Registration, error) {
	cmd.normalize()
	if err := validate.Struct(cmd); err != nil {
		observability.EventRegistrationsTotal.WithLabelValues("invalid").Inc()
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	r := &Registration{
		FirstName:     cmd.FirstName,
		LastName:      cmd.LastName,
		ContactNumber: cmd.ContactNumber,
		Email:         cmd.Email,
		Facebook:      cmd.Facebook,
		Instagram:     cmd.Instagram,
		City:          cmd.City,
	}
	if err := s.repo.Create(ctx, r); err != nil {
		if errors.Is(err, ErrAlreadyRegistered) {
			observability.EventRegistrationsTotal.WithLabelValues("duplicate").Inc()
			return nil, err
		}
		return nil, fmt.Errorf("insert event registration: %w", err)
	}
	observability.EventRegistrationsTotal.WithLabelValues("ok").Inc()
	s.log.InfoContext(ctx, "event registration stored", "voucher_code", r.VoucherCode, "city", r.City)
	return r, nil
}

func (s *Service) List(ctx context.Context) ([]*Registration, error) {
	return s.repo.List(ctx)
}

// FindByVoucher looks a registration up by code, ignoring case and surrounding spaces.
func (s *Service) FindByVoucher(ctx context.Context, code string) (*Registration, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !strings.HasPrefix(code, VoucherPrefix) {
		return nil, ErrNotFound
	}
	return s.repo.FindByVoucher(ctx, code)
}
