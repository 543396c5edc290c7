// README: Account handlers. Registration, current role, refresh, sign-out and a live role stream.
package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"petlove/internal/http/middleware"
	"petlove/internal/modules/access"
	"petlove/internal/modules/profile"
)

// SessionRevoker ends the caller's sessions with the identity provider.
// *infra.FirebaseAuth implements it.
type SessionRevoker interface {
	RevokeSessions(ctx context.Context, uid string) error
}

type AccountHandler struct {
	profile  *profile.Service
	resolver *access.Resolver
	revoker  SessionRevoker
}

// NewAccountHandler accepts a nil revoker; sign-out then only clears local state.
func NewAccountHandler(profileSvc *profile.Service, resolver *access.Resolver, revoker SessionRevoker) *AccountHandler {
	return &AccountHandler{profile: profileSvc, resolver: resolver, revoker: revoker}
}

type meResp struct {
	UserID   string              `json:"user_id"`
	Email    string              `json:"email,omitempty"`
	Decision access.RoleDecision `json:"decision"`
	IsAdmin  bool                `json:"is_admin"`
}

func newMeResp(identity *access.Identity, d access.RoleDecision) meResp {
	return meResp{UserID: identity.ID, Email: identity.Email, Decision: d, IsAdmin: d.IsAdmin()}
}

type nameReq struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Register handles POST /api/register. The body with names is optional.
// Repeating it is harmless.
func (h *AccountHandler) Register(c *gin.Context) {
	identity := middleware.CallerIdentity(c)
	var req nameReq
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	p, err := h.profile.Register(c.Request.Context(), profile.RegisterCommand{
		UserID:    identity.ID,
		Email:     identity.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		writeProfileError(c, err)
		return
	}
	// A fallback decision cached before the profile existed is replaced now.
	d := h.resolver.Refresh(c.Request.Context(), identity)
	writeJSON(c, http.StatusCreated, gin.H{"profile": p, "decision": d})
}

func (h *AccountHandler) Me(c *gin.Context) {
	identity := middleware.CallerIdentity(c)
	writeJSON(c, http.StatusOK, newMeResp(identity, middleware.CallerDecision(c, h.resolver)))
}

// Profile handles GET /api/me/profile.
func (h *AccountHandler) Profile(c *gin.Context) {
	p, err := h.profile.Get(c.Request.Context(), middleware.CallerUID(c))
	if err != nil {
		writeProfileError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, p)
}

// UpdateProfile handles PUT /api/me. Only the display name is editable.
func (h *AccountHandler) UpdateProfile(c *gin.Context) {
	var req nameReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	p, err := h.profile.UpdateName(c.Request.Context(), profile.UpdateNameCommand{
		UserID:    middleware.CallerUID(c),
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		writeProfileError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, p)
}

func (h *AccountHandler) Refresh(c *gin.Context) {
	identity := middleware.CallerIdentity(c)
	writeJSON(c, http.StatusOK, newMeResp(identity, h.resolver.Refresh(c.Request.Context(), identity)))
}

// SignOut drops the cached role and revokes refresh tokens when possible.
func (h *AccountHandler) SignOut(c *gin.Context) {
	uid := middleware.CallerUID(c)
	h.resolver.SignOut(uid)
	if h.revoker != nil {
		if err := h.revoker.RevokeSessions(c.Request.Context(), uid); err != nil {
			writeError(c, http.StatusBadGateway, "sign-out could not be completed")
			return
		}
	}
	c.Status(http.StatusNoContent)
}

// Events handles GET /api/me/events: a server-sent event per role change,
// starting with the current decision. The stream ends on sign-out.
func (h *AccountHandler) Events(c *gin.Context) {
	identity := middleware.CallerIdentity(c)
	session := access.NewSession(h.resolver)
	defer session.Close()

	// The stream outlives the server write timeout.
	_ = http.NewResponseController(c.Writer).SetWriteDeadline(time.Time{})

	last := session.SetIdentity(c.Request.Context(), identity)
	c.SSEvent("role", last)
	c.Writer.Flush()

	updates := session.Updates()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case d, ok := <-updates:
			if !ok {
				return false
			}
			if d == last {
				return true
			}
			last = d
			c.SSEvent("role", d)
			return d.Authenticated()
		}
	})
}
