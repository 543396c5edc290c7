// README: Picked map location, logged per client session.
package location

import (
	"errors"
	"time"

	"petlove/internal/types"
)

type Role string

const (
	RolePickup  Role = "pickup"
	RoleDropoff Role = "dropoff"
)

var ErrInvalidRole = errors.New("location role must be pickup or dropoff")

type Pick struct {
	ID        int64       `json:"id"`
	SessionID string      `json:"session_id"`
	Role      Role        `json:"role"`
	Position  types.Point `json:"position"`
	Address   string      `json:"address"`
	CreatedAt time.Time   `json:"created_at"`
}
