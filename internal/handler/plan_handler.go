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

var (
	planPhotoExts = []string{"jpg", "jpeg", "png", "webp"}
	planMapExts   = []string{"jpg", "jpeg", "png", "pdf"}
)

type PlanHandler struct {
	service   service.PlanService
	auth      *middleware.AuthMiddleware
	uploadDir string
}

func NewPlanHandler(service service.PlanService, auth *middleware.AuthMiddleware, uploadDir string) *PlanHandler {
	return &PlanHandler{service: service, auth: auth, uploadDir: uploadDir}
}

func (h *PlanHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1/plans", h.auth.RequireAuth())
	{
		router.GET("draft", h.GetDraft)
		router.POST("step1", h.Step1)
		router.POST("step2", h.Step2)
		router.POST("step3", h.Step3)
		router.POST("step4", h.Step4)
	}
}

func (h *PlanHandler) GetDraft(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Login required"})
		return
	}

	plan, err := h.service.GetDraft(c, userID)
	if err != nil {
		// 還沒開始填寫不是錯誤
		if errors.Is(err, apperrors.ErrPlanNotFound) {
			c.Status(http.StatusNoContent)
			return
		}
		h.handlePlanError(c, err, "GetDraft")
		return
	}

	c.JSON(http.StatusOK, plan)
}

func (h *PlanHandler) Step1(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Login required"})
		return
	}

	var req model.PlanStep1Request
	if err := BindJson(c, &req); err != nil {
		return
	}

	resp, err := h.service.Step1(c, userID, req)
	if err != nil {
		h.handlePlanError(c, err, "Step1")
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *PlanHandler) Step2(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Login required"})
		return
	}

	var req model.PlanStep2Request
	if err := BindJson(c, &req); err != nil {
		return
	}

	if err := h.service.Step2(c, userID, req); err != nil {
		h.handlePlanError(c, err, "Step2")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Step3 走 multipart: 文字欄位之外可帶多張照片與一張地圖截圖
func (h *PlanHandler) Step3(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Login required"})
		return
	}

	var req model.PlanStep3Request
	if err := BindForm(c, &req); err != nil {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	dir := filepath.Join(h.uploadDir, "plans")

	var photoPaths []string
	for _, file := range form.File["photos"] {
		name, err := saveUpload(c, file, dir, planPhotoExts, maxUploadSize)
		if err != nil {
			h.handlePlanError(c, err, "Step3")
			return
		}
		photoPaths = append(photoPaths, filepath.Join("plans", name))
	}

	var mapPath *string
	if files := form.File["map_screenshot"]; len(files) > 0 {
		name, err := saveUpload(c, files[0], dir, planMapExts, maxUploadSize)
		if err != nil {
			h.handlePlanError(c, err, "Step3")
			return
		}
		p := filepath.Join("plans", name)
		mapPath = &p
	}

	if err := h.service.Step3(c, userID, req, photoPaths, mapPath); err != nil {
		h.handlePlanError(c, err, "Step3")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *PlanHandler) Step4(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Login required"})
		return
	}

	var req model.PlanStep4Request
	if err := BindJson(c, &req); err != nil {
		return
	}

	caseNumber, err := h.service.Step4(c, userID, req)
	if err != nil {
		h.handlePlanError(c, err, "Step4")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "case_number": caseNumber})
}

func (h *PlanHandler) handlePlanError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrPlanNotFound):
		log.Warn("Draft plan not found")
		c.JSON(http.StatusNotFound, gin.H{
			"error": "No draft plan found, complete step 1 first",
		})
	case errors.Is(err, apperrors.ErrInvalidInput):
		log.Warn("Invalid plan input")
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid plan input",
		})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to save plan",
		})
	}
}
