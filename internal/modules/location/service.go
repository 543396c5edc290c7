// README: Location service resolves a picked point to an address and logs it.
package location

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"petlove/internal/maps"
	"petlove/internal/types"
)

type Geocoder interface {
	ReverseGeocode(ctx context.Context, p types.Point) (string, error)
}

type Repository interface {
	Append(ctx context.Context, p *Pick) error
	ListBySession(ctx context.Context, sessionID string) ([]*Pick, error)
}

type Service struct {
	repo     Repository
	geocoder Geocoder
	log      *slog.Logger
	now      func() time.Time
}

func NewService(repo Repository, geocoder Geocoder, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{repo: repo, geocoder: geocoder, log: log, now: time.Now}
}

type PickCommand struct {
	SessionID string
	Role      Role
	Position  types.Point
}

// Pick reverse geocodes the point and logs it under the session. A new
// session id is issued when none is given. Geocoding failures degrade to the
// coordinate label; a failed log write is reported but the address is still returned.
func (s *Service) Pick(ctx context.Context, cmd PickCommand) (*Pick, error) {
	if cmd.Role != RolePickup && cmd.Role != RoleDropoff {
		return nil, ErrInvalidRole
	}
	sessionID := cmd.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	address, err := s.geocoder.ReverseGeocode(ctx, cmd.Position)
	if err != nil {
		s.log.WarnContext(ctx, "reverse geocode failed, using coordinates", "error", err)
		address = maps.CoordinateLabel(cmd.Position)
	}

	p := &Pick{
		SessionID: sessionID,
		Role:      cmd.Role,
		Position:  cmd.Position,
		Address:   address,
		CreatedAt: s.now(),
	}
	if err := s.repo.Append(ctx, p); err != nil {
		return p, err
	}
	return p, nil
}

func (s *Service) History(ctx context.Context, sessionID string) ([]*Pick, error) {
	return s.repo.ListBySession(ctx, sessionID)
}
