package handler

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	apperrors "land-steward-backend/pkg/app_errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const maxUploadSize = 10 << 20 // 10MB

// saveUpload 檢查副檔名與大小後落地檔案, 檔名用 uuid 重新命名避免路徑穿越
func saveUpload(c *gin.Context, file *multipart.FileHeader, dir string, allowedExts []string, maxSize int64) (string, error) {
	if file.Size > maxSize {
		return "", apperrors.ErrInvalidInput
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(file.Filename)), ".")
	allowed := false
	for _, e := range allowedExts {
		if ext == e {
			allowed = true
			break
		}
	}
	if !allowed {
		return "", apperrors.ErrInvalidInput
	}

	name := fmt.Sprintf("%s.%s", uuid.New().String(), ext)
	dst := filepath.Join(dir, name)
	if err := c.SaveUploadedFile(file, dst); err != nil {
		return "", err
	}

	return name, nil
}
