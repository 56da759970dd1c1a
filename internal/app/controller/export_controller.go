package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wuwumall/wuwumall-backend/internal/app/service"
	apperrors "github.com/wuwumall/wuwumall-backend/internal/errors"
	"github.com/wuwumall/wuwumall-backend/internal/middleware"
)

type ExportController struct {
	exportService service.ExportService
}

func NewExportController(exportService service.ExportService) *ExportController {
	return &ExportController{exportService: exportService}
}

// Export returns the current user's data snapshot
// GET /api/v1/export
func (ctrl *ExportController) Export(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)

	snapshot, err := ctrl.exportService.Export(c.Request.Context(), userID)
	if err != nil {
		apperrors.InternalError(c, "导出失败，请稍后重试")
		return
	}

	c.Header("Content-Disposition", "attachment; filename=wuwumall_backup.json")
	c.JSON(http.StatusOK, snapshot)
}

// Import restores a previously exported snapshot
// POST /api/v1/export/import
func (ctrl *ExportController) Import(c *gin.Context) {
	var snapshot service.Snapshot
	if err := c.ShouldBindJSON(&snapshot); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "数据格式有误，无法导入")
		return
	}

	userID := c.GetString(middleware.UserIDKey)
	if err := ctrl.exportService.Import(c.Request.Context(), userID, &snapshot); err != nil {
		switch {
		case errors.Is(err, service.ErrUnsupportedSnapshot):
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		case errors.Is(err, service.ErrSnapshotMismatch):
			apperrors.Forbidden(c, err.Error())
		default:
			apperrors.InternalError(c, "导入失败，请稍后重试")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "数据导入成功",
	})
}
