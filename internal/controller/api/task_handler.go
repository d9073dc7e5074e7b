package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Freeeeeet/lingua_automation/internal/app"
	"github.com/Freeeeeet/lingua_automation/internal/config"
	"github.com/Freeeeeet/lingua_automation/internal/model"
)

// RunNotifications запускает ежедневную задачу вручную
// POST /api/v1/tasks/notifications?day=monday
func (h *Handler) RunNotifications(c *gin.Context) {
	var day *time.Weekday
	if raw := c.Query("day"); raw != "" {
		parsed, err := config.ParseWeekday(raw)
		if err != nil {
			BadRequest(c, codeBadRequest, err.Error())
			return
		}
		day = &parsed
	}

	report, err := h.scheduler.RunNotifications(c.Request.Context(), day)
	h.respondRun(c, report, err)
}

// RunMeetingCreation запускает еженедельное создание встреч вручную
// POST /api/v1/tasks/meetings
func (h *Handler) RunMeetingCreation(c *gin.Context) {
	report, err := h.scheduler.RunMeetingCreation(c.Request.Context())
	h.respondRun(c, report, err)
}

// RunCleanup закрывает прошедшие встречи
// POST /api/v1/tasks/cleanup
func (h *Handler) RunCleanup(c *gin.Context) {
	completed, err := h.meetings.CompleteFinishedMeetings(c.Request.Context())
	if err != nil {
		InternalError(c, err)
		return
	}

	OK(c, gin.H{"completed": completed})
}

// respondRun: ошибки отдельных расписаний уже в журнале, клиенту отдаём отчёт и 500
func (h *Handler) respondRun(c *gin.Context, report *app.RunReport, err error) {
	switch {
	case err == nil:
		OK(c, report)
	case errors.Is(err, model.ErrSchedulerSuperseded):
		ErrorWithData(c, http.StatusConflict, codeSuperseded, messageSuperseded, report, "")
	default:
		_ = c.Error(err)
		ErrorWithData(c, http.StatusInternalServerError, codeTaskFailed, "task finished with errors", report, err.Error())
	}
}
