// README: Profile record backing role resolution (user_roles table).
package profile

import (
	"errors"
	"time"

	"petlove/internal/modules/access"
)

var (
	ErrNotFound    = errors.New("profile not found")
	ErrInvalidRole = errors.New("invalid role")
	ErrInvalidUser = errors.New("invalid user id")
	ErrInvalidName = errors.New("first and last name are required")
)

// MaxNameRunes bounds each name field.
const MaxNameRunes = 80

// Profile is one row of user_roles. Role may be empty for legacy rows.
type Profile struct {
	UserID    string      `json:"user_id"`
	Email     string      `json:"email"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	Role      access.Role `json:"role"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// EffectiveRole is the role the resolver will report for this profile.
func (p Profile) EffectiveRole() access.Role {
	if p.Role == access.RoleNone {
		return access.RoleUser
	}
	return p.Role
}
