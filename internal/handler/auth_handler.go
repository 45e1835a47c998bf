package handler

import (
	"errors"
	"net/http"
	"path/filepath"

	"land-steward-backend/internal/middleware"
	"land-steward-backend/internal/model"
	"land-steward-backend/internal/service"
	apperrors "land-steward-backend/pkg/app_errors"
	"land-steward-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxAvatarSize = 5 << 20 // 5MB

var avatarExts = []string{"jpg", "jpeg", "png", "webp"}

type AuthHandler struct {
	service   service.UserService
	auth      *middleware.AuthMiddleware
	uploadDir string
}

func NewAuthHandler(service service.UserService, auth *middleware.AuthMiddleware, uploadDir string) *AuthHandler {
	return &AuthHandler{service: service, auth: auth, uploadDir: uploadDir}
}

func (h *AuthHandler) RegisterRoutes(r *gin.Engine) {
	auth := r.Group("/api/v1/auth")
	{
		auth.POST("register", h.Register)
		auth.POST("login", h.Login)
		auth.GET("me", h.auth.RequireAuth(), h.Me)
	}

	users := r.Group("/api/v1/users", h.auth.RequireAuth())
	{
		users.POST("avatar", h.UploadAvatar)
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	user, err := h.service.Register(c, req)
	if err != nil {
		h.handleAuthError(c, err, "Register")
		return
	}

	h.auth.SetAuthCookie(c, user.ID)
	c.JSON(http.StatusCreated, toUserResponse(user))
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	user, err := h.service.Authenticate(c, req)
	if err != nil {
		h.handleAuthError(c, err, "Login")
		return
	}

	h.auth.SetAuthCookie(c, user.ID)
	c.JSON(http.StatusOK, toUserResponse(user))
}

func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Login required"})
		return
	}

	user, err := h.service.GetByID(c, userID)
	if err != nil {
		h.handleAuthError(c, err, "Me")
		return
	}

	c.JSON(http.StatusOK, toUserResponse(user))
}

func (h *AuthHandler) UploadAvatar(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Login required"})
		return
	}

	file, err := c.FormFile("avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Avatar file is required"})
		return
	}

	dir := filepath.Join(h.uploadDir, "avatars")
	name, err := saveUpload(c, file, dir, avatarExts, maxAvatarSize)
	if err != nil {
		h.handleAuthError(c, err, "UploadAvatar")
		return
	}

	avatarPath := filepath.Join("avatars", name)
	if err := h.service.UpdateAvatar(c, userID, avatarPath); err != nil {
		h.handleAuthError(c, err, "UploadAvatar")
		return
	}

	c.JSON(http.StatusOK, gin.H{"avatar_path": avatarPath})
}

func toUserResponse(user *model.User) model.UserResponse {
	return model.UserResponse{
		ID:         user.ID,
		Name:       user.Name,
		Email:      user.Email,
		AvatarPath: user.AvatarPath,
	}
}

func (h *AuthHandler) handleAuthError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrUserExists):
		log.Warn("Email already registered")
		c.JSON(http.StatusConflict, gin.H{
			"error": "Email already registered",
		})
	case errors.Is(err, apperrors.ErrUnauthorized):
		log.Warn("Invalid credentials")
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Invalid email or password",
		})
	case errors.Is(err, apperrors.ErrUserNotFound):
		log.Warn("User not found")
		c.JSON(http.StatusNotFound, gin.H{
			"error": "User not found",
		})
	case errors.Is(err, apperrors.ErrInvalidInput):
		log.Warn("Invalid input")
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid input",
		})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Something went wrong",
		})
	}
}
