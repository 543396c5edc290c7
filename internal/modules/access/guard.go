// README: Access guard. Pure decision over a RoleDecision plus the redirect mapping used by route guards.
package access

import (
	"net/url"
	"slices"
)

type Reason string

const (
	ReasonLoading         Reason = "loading"
	ReasonUnauthenticated Reason = "unauthenticated"
	ReasonNoRolesRequired Reason = "no_roles_required"
	ReasonAuthorized      Reason = "authorized"
	ReasonUnauthorized    Reason = "unauthorized"
)

const (
	LoginPath        = "/login"
	UnauthorizedPath = "/unauthorized"
)

type AccessOutcome struct {
	Allowed bool   `json:"allowed"`
	Reason  Reason `json:"reason"`
}

var (
	AdminRoles      = []Role{RoleAdmin, RoleSuperAdmin}
	SuperAdminRoles = []Role{RoleSuperAdmin}
)

func EvaluateAccess(decision *RoleDecision, required []Role, requireAuth, stillResolving bool) AccessOutcome {
	if stillResolving {
		return AccessOutcome{Allowed: false, Reason: ReasonLoading}
	}
	if requireAuth && (decision == nil || decision.Role == RoleNone) {
		return AccessOutcome{Allowed: false, Reason: ReasonUnauthenticated}
	}
	if len(required) == 0 {
		return AccessOutcome{Allowed: true, Reason: ReasonNoRolesRequired}
	}
	if decision != nil && decision.Role != RoleNone && slices.Contains(required, decision.Role) {
		return AccessOutcome{Allowed: true, Reason: ReasonAuthorized}
	}
	return AccessOutcome{Allowed: false, Reason: ReasonUnauthorized}
}

// RedirectFor returns where a denied request should go. Empty means render
// in place (allowed, or still loading).
func RedirectFor(outcome AccessOutcome, requestedPath string) string {
	switch outcome.Reason {
	case ReasonUnauthenticated:
		if requestedPath == "" {
			return LoginPath
		}
		return LoginPath + "?redirect=" + url.QueryEscape(requestedPath)
	case ReasonUnauthorized:
		return UnauthorizedPath
	default:
		return ""
	}
}
