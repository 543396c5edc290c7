// README: Firebase auth middleware. Verifies Bearer ID tokens and stores the caller identity on the context.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"petlove/internal/modules/access"
)

const identityKey = "petlove.identity"

// TokenVerifier verifies a raw ID token. *infra.FirebaseAuth implements it.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*access.Identity, error)
}

// Auth rejects requests without a valid token.
func Auth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := verify(c, verifier)
		if !ok {
			deny(c, access.AccessOutcome{Reason: access.ReasonUnauthenticated})
			return
		}
		c.Set(identityKey, identity)
		c.Next()
	}
}

// OptionalAuth attaches the identity when a valid token is present and lets
// anonymous requests through. A malformed or invalid token is still rejected.
func OptionalAuth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}
		identity, ok := verify(c, verifier)
		if !ok {
			deny(c, access.AccessOutcome{Reason: access.ReasonUnauthenticated})
			return
		}
		c.Set(identityKey, identity)
		c.Next()
	}
}

func verify(c *gin.Context, verifier TokenVerifier) (*access.Identity, bool) {
	header := c.GetHeader("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	token = strings.TrimSpace(token)
	if !found || token == "" {
		return nil, false
	}
	identity, err := verifier.VerifyIDToken(c.Request.Context(), token)
	if err != nil || identity == nil || identity.ID == "" {
		return nil, false
	}
	return identity, true
}

// CallerIdentity returns the verified identity, or nil for anonymous requests.
func CallerIdentity(c *gin.Context) *access.Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil
	}
	identity, _ := v.(*access.Identity)
	return identity
}

func CallerUID(c *gin.Context) string {
	if identity := CallerIdentity(c); identity != nil {
		return identity.ID
	}
	return ""
}

type denial struct {
	Error    string        `json:"error"`
	Reason   access.Reason `json:"reason"`
	Redirect string        `json:"redirect,omitempty"`
}

func deny(c *gin.Context, outcome access.AccessOutcome) {
	status := http.StatusForbidden
	msg := "forbidden"
	if outcome.Reason == access.ReasonUnauthenticated {
		status = http.StatusUnauthorized
		msg = "unauthorized"
	}
	c.AbortWithStatusJSON(status, denial{
		Error:    msg,
		Reason:   outcome.Reason,
		Redirect: access.RedirectFor(outcome, c.Request.URL.RequestURI()),
	})
}
