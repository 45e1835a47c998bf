package handler

import (
	"errors"
	"io"
	"net/http"

	"land-steward-backend/internal/payment"
	"land-steward-backend/internal/service"
	apperrors "land-steward-backend/pkg/app_errors"
	"land-steward-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// 限制 webhook 請求本文大小, 避免惡意大包
const maxWebhookBodySize = 1 << 20

type EventVerifier interface {
	VerifyEvent(payload []byte, sigHeader string) (*payment.Event, error)
}

type WebhookHandler struct {
	verifier EventVerifier
	service  service.WebhookService
}

func NewWebhookHandler(verifier EventVerifier, service service.WebhookService) *WebhookHandler {
	return &WebhookHandler{verifier: verifier, service: service}
}

func (h *WebhookHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.POST("payments/webhook", h.HandleWebhook)
	}
}

// HandleWebhook 驗簽必須用原始位元組, 不可先解析再重組
func (h *WebhookHandler) HandleWebhook(c *gin.Context) {
	log := logger.WithComponent("handler")

	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBodySize))
	if err != nil {
		log.Warn("Failed to read webhook body", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	event, err := h.verifier.VerifyEvent(payload, c.GetHeader("Webhook-Signature"))
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidSignature) {
			log.Warn("Webhook signature verification failed", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid signature"})
			return
		}
		log.Error("Failed to verify webhook event", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process webhook"})
		return
	}

	if err := h.service.HandleEvent(c, event); err != nil {
		log.Error("Failed to handle webhook event",
			zap.String("event_id", event.ID),
			zap.String("event_type", event.Type),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process webhook"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
