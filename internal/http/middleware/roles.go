// README: Role guard middleware built on the access engine.
package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"petlove/internal/modules/access"
)

const decisionKey = "petlove.decision"

// RoleResolver is satisfied by *access.Resolver.
type RoleResolver interface {
	Resolve(ctx context.Context, identity *access.Identity) access.RoleDecision
}

// CallerDecision resolves the caller's role once per request.
func CallerDecision(c *gin.Context, resolver RoleResolver) access.RoleDecision {
	if v, ok := c.Get(decisionKey); ok {
		return v.(access.RoleDecision)
	}
	d := resolver.Resolve(c.Request.Context(), CallerIdentity(c))
	c.Set(decisionKey, d)
	return d
}

func CallerRole(c *gin.Context, resolver RoleResolver) access.Role {
	return CallerDecision(c, resolver).Role
}

// RequireRoles admits authenticated callers holding one of roles. With no
// roles any authenticated caller passes. Resolution finishes inside the
// request, so the loading outcome never reaches the client.
func RequireRoles(resolver RoleResolver, roles ...access.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		var decision *access.RoleDecision
		if CallerIdentity(c) != nil {
			d := CallerDecision(c, resolver)
			decision = &d
		}
		outcome := access.EvaluateAccess(decision, roles, true, false)
		if !outcome.Allowed {
			deny(c, outcome)
			return
		}
		c.Next()
	}
}
