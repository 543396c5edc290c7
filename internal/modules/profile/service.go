// README: Profile service. Registration, admin role management, and the role lookup used by the resolver.
package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"petlove/internal/modules/access"
)

// Repository is the persistence the service needs. *Store implements it.
type Repository interface {
	Create(ctx context.Context, p *Profile) (bool, error)
	Get(ctx context.Context, userID string) (*Profile, error)
	List(ctx context.Context) ([]*Profile, error)
	UpdateRole(ctx context.Context, userID string, role access.Role) error
	UpdateName(ctx context.Context, userID, firstName, lastName string) error
	Delete(ctx context.Context, userID string) error
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

type RegisterCommand struct {
	UserID    string
	Email     string
	FirstName string
	LastName  string
}

type UpdateNameCommand struct {
	UserID    string
	FirstName string
	LastName  string
}

// Register creates the profile with role user. Names are optional here since
// some sign-in methods carry none. Registering twice returns the existing profile.
func (s *Service) Register(ctx context.Context, cmd RegisterCommand) (*Profile, error) {
	if strings.TrimSpace(cmd.UserID) == "" {
		return nil, ErrInvalidUser
	}
	p := &Profile{
		UserID:    cmd.UserID,
		Email:     strings.TrimSpace(cmd.Email),
		FirstName: strings.TrimSpace(cmd.FirstName),
		LastName:  strings.TrimSpace(cmd.LastName),
		Role:      access.RoleUser,
		CreatedAt: s.now(),
	}
	if utf8.RuneCountInString(p.FirstName) > MaxNameRunes || utf8.RuneCountInString(p.LastName) > MaxNameRunes {
		return nil, fmt.Errorf("%w: names are limited to %d characters", ErrInvalidName, MaxNameRunes)
	}
	if _, err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}
	return s.repo.Get(ctx, cmd.UserID)
}

func (s *Service) Get(ctx context.Context, userID string) (*Profile, error) {
	return s.repo.Get(ctx, userID)
}

func (s *Service) List(ctx context.Context) ([]*Profile, error) {
	return s.repo.List(ctx)
}

func (s *Service) UpdateRole(ctx context.Context, userID, role string) (*Profile, error) {
	parsed, err := access.ParseRole(role)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
	if err := s.repo.UpdateRole(ctx, userID, parsed); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, userID)
}

// UpdateName changes the display name. Both parts are required.
func (s *Service) UpdateName(ctx context.Context, cmd UpdateNameCommand) (*Profile, error) {
	first := strings.TrimSpace(cmd.FirstName)
	last := strings.TrimSpace(cmd.LastName)
	if first == "" || last == "" {
		return nil, ErrInvalidName
	}
	if utf8.RuneCountInString(first) > MaxNameRunes || utf8.RuneCountInString(last) > MaxNameRunes {
		return nil, fmt.Errorf("%w: names are limited to %d characters", ErrInvalidName, MaxNameRunes)
	}
	if err := s.repo.UpdateName(ctx, cmd.UserID, first, last); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, cmd.UserID)
}

func (s *Service) Delete(ctx context.Context, userID string) error {
	return s.repo.Delete(ctx, userID)
}

// LookupRole implements access.ProfileLookup.
func (s *Service) LookupRole(ctx context.Context, identityID string) (access.Role, error) {
	p, err := s.repo.Get(ctx, identityID)
	if errors.Is(err, ErrNotFound) {
		return access.RoleNone, access.ErrProfileNotFound
	}
	if err != nil {
		return access.RoleNone, err
	}
	return p.EffectiveRole(), nil
}
