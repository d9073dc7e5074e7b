package api

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const defaultMeetingsLimit = 50

// ListSchedules возвращает все расписания курсов
// GET /api/v1/schedules
func (h *Handler) ListSchedules(c *gin.Context) {
	schedules, err := h.schedules.List(c.Request.Context())
	if err != nil {
		InternalError(c, err)
		return
	}

	OK(c, schedules)
}

// ListMeetings возвращает последние встречи
// GET /api/v1/meetings?limit=
func (h *Handler) ListMeetings(c *gin.Context) {
	limit := defaultMeetingsLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			BadRequest(c, codeBadRequest, "limit must be a positive number")
			return
		}
		limit = parsed
	}

	meetings, err := h.meetings.List(c.Request.Context(), limit)
	if err != nil {
		InternalError(c, err)
		return
	}

	OK(c, meetings)
}

// SchedulerStatus возвращает зарегистрированные задачи и взведённые напоминания
// GET /api/v1/scheduler/status
func (h *Handler) SchedulerStatus(c *gin.Context) {
	OK(c, h.scheduler.Status())
}
