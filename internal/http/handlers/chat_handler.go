// README: AI chat handler (token-guarded pet transport assistant).
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"petlove/internal/http/middleware"
	"petlove/internal/modules/chat"
)

const chatTimeout = 20 * time.Second

type ChatHandler struct {
	chat *chat.Service
}

func NewChatHandler(svc *chat.Service) *ChatHandler {
	return &ChatHandler{chat: svc}
}

type chatReq struct {
	Message string `json:"message"`
}

// Chat handles POST /api/chat for the signed-in user.
func (h *ChatHandler) Chat(c *gin.Context) {
	var req chatReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), chatTimeout)
	defer cancel()

	reply, err := h.chat.Chat(ctx, middleware.CallerUID(c), req.Message)
	if err != nil {
		writeChatError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, reply)
}

func (h *ChatHandler) Quota(c *gin.Context) {
	left, err := h.chat.Remaining(c.Request.Context(), middleware.CallerUID(c))
	if err != nil {
		writeChatError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"tokens_left": left, "monthly_tokens": chat.DefaultTokens})
}
