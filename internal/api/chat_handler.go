package api

import (
	"aifitness/coach-app/internal/ai"
	"aifitness/coach-app/internal/domain"
	"aifitness/coach-app/internal/service"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ChatHandler exposes the coaching assistant conversation.
type ChatHandler struct {
	chatService service.ChatService
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(chatService service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

type ChatRequest struct {
	Message string `json:"message" binding:"required"`
}

// Send forwards a message to the assistant and returns its reply.
func (h *ChatHandler) Send(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithFields(c, http.StatusBadRequest, "validation_error", "invalid chat payload", bindingFields(err))
		return
	}

	reply, err := h.chatService.Send(c.Request.Context(), userID, req.Message)
	if err != nil {
		var apiErr *ai.APIError
		switch {
		case errors.Is(err, ai.ErrNoModelsAvailable):
			abortWithError(c, http.StatusServiceUnavailable, "no_models_available", "no AI models are configured")
		case errors.As(err, &apiErr) && apiErr.IsRateLimit():
			abortWithError(c, http.StatusTooManyRequests, "rate_limited", apiErr.UserMessage())
		default:
			abortWithError(c, http.StatusInternalServerError, "internal_error", "could not answer the message")
		}
		return
	}
	c.JSON(http.StatusOK, reply)
}

// History returns recent conversation turns in chronological order.
func (h *ChatHandler) History(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)

	msgs, err := h.chatService.History(c.Request.Context(), userID, limit)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "internal_error", "could not load history")
		return
	}
	if msgs == nil {
		msgs = []domain.ChatMessage{}
	}
	c.JSON(http.StatusOK, msgs)
}
