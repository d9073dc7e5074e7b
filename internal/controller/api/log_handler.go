package api

import (
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Freeeeeet/lingua_automation/internal/model"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type logQuery struct {
	Type      string `form:"type" binding:"omitempty,oneof=meeting_creation notification reminder scheduled_task cleanup"`
	Status    string `form:"status" binding:"omitempty,oneof=success error simulated"`
	RelatedID *int64 `form:"related_id" binding:"omitempty,min=1"`
	Limit     int    `form:"limit" binding:"omitempty,min=1,max=500"`
}

func (q logQuery) filter() model.LogFilter {
	return model.LogFilter{
		Type:      model.LogType(q.Type),
		Status:    model.LogStatus(q.Status),
		RelatedID: q.RelatedID,
		Limit:     q.Limit,
	}
}

type pruneQuery struct {
	Before time.Time `form:"before" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
}

// ListLogs возвращает записи журнала, новые первыми
// GET /api/v1/logs?type=&status=&related_id=&limit=
func (h *Handler) ListLogs(c *gin.Context) {
	var q logQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		BadRequest(c, codeBadRequest, err.Error())
		return
	}

	entries, err := h.audit.List(c.Request.Context(), q.filter())
	if err != nil {
		InternalError(c, err)
		return
	}

	OK(c, entries)
}

// PruneLogs удаляет записи старше before
// DELETE /api/v1/logs?before=2024-01-01T00:00:00Z
func (h *Handler) PruneLogs(c *gin.Context) {
	var q pruneQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		BadRequest(c, codeBadRequest, "before must be an RFC3339 timestamp")
		return
	}

	deleted, err := h.audit.Prune(c.Request.Context(), q.Before)
	if err != nil {
		InternalError(c, err)
		return
	}

	OK(c, gin.H{"deleted": deleted})
}

// ExportLogs выгружает журнал в Excel
// GET /api/v1/logs/export?type=&status=&related_id=
func (h *Handler) ExportLogs(c *gin.Context) {
	var q logQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		BadRequest(c, codeBadRequest, err.Error())
		return
	}

	buf, filename, err := h.audit.Export(c.Request.Context(), q.filter())
	if err != nil {
		_ = c.Error(err)
		Error(c, http.StatusInternalServerError, codeExportFailed, "failed to export automation log")
		return
	}

	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
