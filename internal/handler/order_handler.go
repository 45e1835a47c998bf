package handler

import (
	"errors"
	"net/http"
	"strconv"

	"land-steward-backend/internal/middleware"
	"land-steward-backend/internal/service"
	apperrors "land-steward-backend/pkg/app_errors"
	"land-steward-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type OrderHandler struct {
	service service.OrderService
	auth    *middleware.AuthMiddleware
}

func NewOrderHandler(service service.OrderService, auth *middleware.AuthMiddleware) *OrderHandler {
	return &OrderHandler{service: service, auth: auth}
}

func (h *OrderHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1/orders", h.auth.RequireAuth())
	{
		router.GET("", h.ListOrders)
		router.GET(":id", h.GetOrder)
	}
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Login required"})
		return
	}

	orders, err := h.service.ListUserOrders(c, userID)
	if err != nil {
		h.handleOrderError(c, err, "ListOrders")
		return
	}

	c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Login required"})
		return
	}

	orderID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order id"})
		return
	}

	order, err := h.service.GetOrderByID(c, userID, orderID)
	if err != nil {
		h.handleOrderError(c, err, "GetOrder")
		return
	}

	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) handleOrderError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrOrderNotFound):
		log.Warn("Order not found")
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Order not found",
		})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to load orders",
		})
	}
}
