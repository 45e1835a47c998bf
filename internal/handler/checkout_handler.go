package handler

import (
	"errors"
	"net/http"

	"land-steward-backend/internal/middleware"
	"land-steward-backend/internal/model"
	"land-steward-backend/internal/service"
	apperrors "land-steward-backend/pkg/app_errors"
	"land-steward-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CheckoutHandler struct {
	service service.CheckoutService
	auth    *middleware.AuthMiddleware
}

func NewCheckoutHandler(service service.CheckoutService, auth *middleware.AuthMiddleware) *CheckoutHandler {
	return &CheckoutHandler{service: service, auth: auth}
}

func (h *CheckoutHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.POST("checkout", h.auth.RequireAuth(), h.CreateCheckout)
	}
}

func (h *CheckoutHandler) CreateCheckout(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Login required to checkout"})
		return
	}

	var req model.CreateCheckoutRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	resp, err := h.service.CreateCheckout(c, userID, req)
	if err != nil {
		h.handleCheckoutError(c, err, "CreateCheckout")
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *CheckoutHandler) handleCheckoutError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrInvalidInput):
		log.Warn("Invalid checkout input")
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid checkout input",
		})
	case errors.Is(err, apperrors.ErrUserNotFound):
		log.Warn("User not found")
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Login required to checkout",
		})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to create checkout session",
		})
	}
}
