// README: Role, identity and decision types shared by the resolver, the session and the guard.
package access

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

type Role string

const (
	RoleNone       Role = ""
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// ParseRole accepts the persisted role names. An empty string is not a valid
// stored role.
func ParseRole(v string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(v))) {
	case RoleUser:
		return RoleUser, nil
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleSuperAdmin:
		return RoleSuperAdmin, nil
	}
	return RoleNone, fmt.Errorf("%w: %q", ErrUnknownRole, v)
}

func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

type Source string

const (
	SourceProfile          Source = "profile"
	SourceMetadataFallback Source = "metadata-fallback"
	SourceNone             Source = "none"
)

// Identity is the authenticated principal as reported by the identity
// provider. Metadata carries custom claims.
type Identity struct {
	ID       string
	Email    string
	Metadata map[string]any
}

type RoleDecision struct {
	IdentityID string    `json:"identity_id,omitempty"`
	Role       Role      `json:"role"`
	Source     Source    `json:"source"`
	ResolvedAt time.Time `json:"resolved_at"`
}

func (d RoleDecision) IsAdmin() bool {
	return d.Role.IsAdmin()
}

// Authenticated reports whether the decision belongs to a signed-in identity.
func (d RoleDecision) Authenticated() bool {
	return d.Role != RoleNone
}

// Anonymous is the terminal decision for an absent identity.
func Anonymous() RoleDecision {
	return RoleDecision{Role: RoleNone, Source: SourceNone}
}

// ProfileLookup is the authoritative role store.
type ProfileLookup interface {
	LookupRole(ctx context.Context, identityID string) (Role, error)
}

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrLookupTimeout   = errors.New("profile lookup timed out")
	ErrLookupFailed    = errors.New("profile lookup failed")
	ErrUnknownRole     = errors.New("unknown role")
)

// FallbackRole derives a role from identity metadata when the profile store is
// unavailable. An explicit admin or super_admin role wins, then the is_admin
// flag, then plain user.
func FallbackRole(metadata map[string]any) Role {
	if raw, ok := metadata["role"].(string); ok {
		if role, err := ParseRole(raw); err == nil && role.IsAdmin() {
			return role
		}
	}
	if flag, ok := metadata["is_admin"].(bool); ok && flag {
		return RoleAdmin
	}
	return RoleUser
}
