package location

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petlove/internal/logging"
	"petlove/internal/types"
)

type memRepo struct {
	mu    sync.Mutex
	picks []*Pick
	err   error
}

func (m *memRepo) Append(_ context.Context, p *Pick) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	p.ID = int64(len(m.picks) + 1)
	m.picks = append(m.picks, p)
	return nil
}

func (m *memRepo) ListBySession(_ context.Context, sessionID string) ([]*Pick, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Pick
	for _, p := range m.picks {
		if p.SessionID == sessionID {
			out = append(out, p)
		}
	}
	return out, nil
}

type stubGeocoder struct {
	address string
	err     error
}

func (s stubGeocoder) ReverseGeocode(context.Context, types.Point) (string, error) {
	return s.address, s.err
}

func TestService_Pick(t *testing.T) {
	repo := &memRepo{}
	svc := NewService(repo, stubGeocoder{address: "Ayala Ave, Makati"}, logging.Discard())

	p, err := svc.Pick(context.Background(), PickCommand{Role: RolePickup, Position: types.Point{Lat: 14.55, Lng: 121.02}})
	require.NoError(t, err)
	assert.Equal(t, "Ayala Ave, Makati", p.Address)
	assert.NotEmpty(t, p.SessionID, "a session id is issued")

	second, err := svc.Pick(context.Background(), PickCommand{SessionID: p.SessionID, Role: RoleDropoff, Position: types.Point{Lat: 14.67, Lng: 121.04}})
	require.NoError(t, err)
	assert.Equal(t, p.SessionID, second.SessionID)

	history, err := svc.History(context.Background(), p.SessionID)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestService_PickGeocodeFailureUsesCoordinates(t *testing.T) {
	svc := NewService(&memRepo{}, stubGeocoder{err: errors.New("quota")}, logging.Discard())

	p, err := svc.Pick(context.Background(), PickCommand{SessionID: "s1", Role: RoleDropoff, Position: types.Point{Lat: 14.5, Lng: 121}})
	require.NoError(t, err)
	assert.Equal(t, "Lat: 14.5, Lng: 121", p.Address)
}

func TestService_PickRejectsUnknownRole(t *testing.T) {
	svc := NewService(&memRepo{}, stubGeocoder{address: "x"}, logging.Discard())
	_, err := svc.Pick(context.Background(), PickCommand{Role: "waypoint"})
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestService_PickStoreFailureStillReturnsAddress(t *testing.T) {
	svc := NewService(&memRepo{err: errors.New("db down")}, stubGeocoder{address: "BGC"}, logging.Discard())
	p, err := svc.Pick(context.Background(), PickCommand{SessionID: "s1", Role: RolePickup})
	assert.Error(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "BGC", p.Address)
}
