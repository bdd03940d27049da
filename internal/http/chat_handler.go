package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"workmate-ai/internal/metrics"
	"workmate-ai/internal/service"
)

// ChatHandler holds dependencies for the chat endpoints.
type ChatHandler struct {
	logger  *zap.Logger
	chatSvc *service.ChatService
}

// NewChatHandler creates a ChatHandler with its dependencies.
func NewChatHandler(logger *zap.Logger, chatSvc *service.ChatService) *ChatHandler {
	return &ChatHandler{
		logger:  logger,
		chatSvc: chatSvc,
	}
}

// PostMessage handles POST /chat/message.
func (h *ChatHandler) PostMessage(c *gin.Context) {
	var req struct {
		Identity string `json:"identity"`
		Text     string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid post message request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	identity := resolveIdentity(c, req.Identity)
	if identity == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "identity required"})
		return
	}

	start := time.Now()
	result, err := h.chatSvc.Send(c.Request.Context(), identity, req.Text)
	metrics.ChatResponseDuration.Observe(time.Since(start).Seconds())

	switch {
	case errors.Is(err, service.ErrQuotaExceeded):
		metrics.ChatMessagesSent.WithLabelValues("quota_exceeded").Inc()
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":           "usage limit reached",
			"quota_exceeded":  true,
			"remaining_quota": result.RemainingQuota,
		})
		return
	case errors.Is(err, service.ErrChatInvalidInput):
		metrics.ChatMessagesSent.WithLabelValues("invalid").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	case err != nil:
		// Transport and backend failures get the generic retry message; the
		// user message is already persisted so nothing is lost on retry.
		metrics.ChatMessagesSent.WithLabelValues("error").Inc()
		h.logger.Error("chat send failed", zap.Error(err), zap.String("identity", identity))
		c.JSON(http.StatusBadGateway, gin.H{"error": "response failed, please try again"})
		return
	}

	metrics.ChatMessagesSent.WithLabelValues("ok").Inc()
	metrics.CitationRuleHits.WithLabelValues(string(result.Rule)).Inc()

	c.JSON(http.StatusCreated, gin.H{
		"user_message":      result.UserMessage,
		"assistant_message": result.AssistantMessage,
		"remaining_quota":   result.RemainingQuota,
	})
}

// GetHistory handles GET /chat/history.
func (h *ChatHandler) GetHistory(c *gin.Context) {
	identity := resolveIdentity(c, c.Query("identity"))
	if identity == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "identity required"})
		return
	}

	messages, err := h.chatSvc.History(c.Request.Context(), identity)
	if err != nil {
		h.logger.Error("load history failed", zap.Error(err), zap.String("identity", identity))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// GetSources handles GET /chat/sources: the ranked reference panel feed.
func (h *ChatHandler) GetSources(c *gin.Context) {
	identity := resolveIdentity(c, c.Query("identity"))
	if identity == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "identity required"})
		return
	}

	sources, err := h.chatSvc.Sources(c.Request.Context(), identity)
	if err != nil {
		h.logger.Error("aggregate sources failed", zap.Error(err), zap.String("identity", identity))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not aggregate sources"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"sources": sources})
}

// ClearHistory handles DELETE /chat/history.
func (h *ChatHandler) ClearHistory(c *gin.Context) {
	identity := resolveIdentity(c, c.Query("identity"))
	if identity == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "identity required"})
		return
	}

	if err := h.chatSvc.ClearHistory(c.Request.Context(), identity); err != nil {
		h.logger.Error("clear history failed", zap.Error(err), zap.String("identity", identity))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not clear history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"cleared": true})
}

// resolveIdentity prefers the token-derived identity over the one the client
// put in the request body or query string.
func resolveIdentity(c *gin.Context, fromRequest string) string {
	if id, ok := GetIdentity(c); ok {
		return id
	}
	return strings.TrimSpace(fromRequest)
}
