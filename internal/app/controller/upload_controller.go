package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/wuwumall/wuwumall-backend/internal/errors"
	"github.com/wuwumall/wuwumall-backend/internal/middleware"
	"github.com/wuwumall/wuwumall-backend/internal/storage"
)

type UploadController struct {
	storage *storage.S3Storage
}

func NewUploadController(storage *storage.S3Storage) *UploadController {
	return &UploadController{storage: storage}
}

type PresignUploadRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"contentType" binding:"required"`
	Size        int64  `json:"size"`
	Folder      string `json:"folder"` // optional, defaults to products
}

// Presign issues a short-lived upload URL for an image
// POST /api/v1/upload/presign
func (ctrl *UploadController) Presign(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req PresignUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "请提供文件名和类型")
		return
	}

	if !storage.ValidateContentType(req.ContentType) {
		apperrors.BadRequest(c, apperrors.UploadInvalidFileType, "仅支持 JPEG、PNG、GIF、WEBP 格式的图片")
		return
	}
	if req.Size > 0 && !storage.ValidateFileSize(req.Size) {
		apperrors.BadRequest(c, apperrors.UploadFileTooLarge, "图片大小不能超过5MB")
		return
	}

	folder := req.Folder
	if folder == "" {
		folder = "products"
	}

	upload, err := ctrl.storage.PresignUpload(c.Request.Context(), req.Filename, req.ContentType, folder)
	if err != nil {
		log.Error("Failed to generate presigned URL", err, map[string]interface{}{
			"filename": req.Filename,
			"folder":   folder,
		})
		apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.UploadFailed, "上传链接生成失败")
		return
	}

	log.Info("Presigned upload URL issued", map[string]interface{}{
		"key":     upload.Key,
		"user_id": c.GetString(middleware.UserIDKey),
	})

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"upload":  upload,
	})
}
