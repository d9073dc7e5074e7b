package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Freeeeeet/lingua_automation/internal/model"
)

// настройки, смена которых требует перерегистрации задач
var reinitializeOn = map[string]bool{
	model.SettingSimulationMode: true,
	model.SettingTimezone:       true,
}

type updateSettingRequest struct {
	Value json.RawMessage `json:"value" binding:"required"`
}

// ListSettings возвращает все настройки
// GET /api/v1/settings
func (h *Handler) ListSettings(c *gin.Context) {
	settings, err := h.settings.All(c.Request.Context())
	if err != nil {
		InternalError(c, err)
		return
	}

	OK(c, settings)
}

// UpdateSetting сохраняет настройку и при необходимости перезапускает планировщик
// PUT /api/v1/settings/:key
func (h *Handler) UpdateSetting(c *gin.Context) {
	key := c.Param("key")

	var req updateSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, codeBadRequest, "body must be {\"value\": ...}")
		return
	}

	value, ok := settingValue(req.Value)
	if !ok {
		BadRequest(c, codeInvalidValue, "value must be a string, number or boolean")
		return
	}

	setting, err := h.settings.Set(c.Request.Context(), key, value)
	if err != nil {
		if errors.Is(err, model.ErrInvalidSetting) {
			BadRequest(c, codeInvalidValue, err.Error())
			return
		}
		InternalError(c, err)
		return
	}

	if reinitializeOn[key] {
		if err := h.scheduler.Reinitialize(); err != nil {
			h.logger.Error("Failed to reinitialize scheduler after setting change",
				zap.String("key", key),
				zap.Error(err))
			ErrorWithData(c, http.StatusInternalServerError, codeReinitFailed,
				"setting saved but scheduler failed to reinitialize", setting, err.Error())
			return
		}
	}

	OK(c, setting)
}

// settingValue приводит JSON-значение к строке: строки без кавычек, числа и bool как есть
func settingValue(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "", false
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", false
		}
		return s, true
	case '{', '[', 'n':
		return "", false
	}

	return string(raw), true
}
