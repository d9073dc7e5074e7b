package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Freeeeeet/lingua_automation/internal/model"
	"github.com/Freeeeeet/lingua_automation/internal/testfixtures"
)

func newSettings(t *testing.T, initial map[string]string) *SettingsService {
	t.Helper()
	s := NewSettingsService(testfixtures.NewSettingRepository(initial), zap.NewNop())
	require.NoError(t, s.Load(context.Background()))
	return s
}

func TestSettingsService_Defaults(t *testing.T) {
	s := newSettings(t, nil)

	assert.True(t, s.SimulationMode())
	assert.Equal(t, 30*time.Minute, s.ReminderLead())
	assert.Equal(t, time.UTC, s.Location())
}

func TestSettingsService_ReadsLoadedValues(t *testing.T) {
	s := newSettings(t, map[string]string{
		model.SettingSimulationMode:        "false",
		model.SettingReminderMinutesBefore: "45",
		model.SettingTimezone:              "UTC",
	})

	assert.False(t, s.SimulationMode())
	assert.Equal(t, 45*time.Minute, s.ReminderLead())
}

func TestSettingsService_SetIsVisibleImmediately(t *testing.T) {
	s := newSettings(t, nil)

	setting, err := s.Set(context.Background(), model.SettingSimulationMode, "FALSE")
	require.NoError(t, err)
	assert.Equal(t, "false", setting.Value)
	assert.False(t, s.SimulationMode())

	_, err = s.Set(context.Background(), model.SettingReminderMinutesBefore, "15")
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, s.ReminderLead())
}

func TestSettingsService_SetRejectsInvalidValues(t *testing.T) {
	s := newSettings(t, nil)

	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"empty key", "", "x"},
		{"not a boolean", model.SettingSimulationMode, "maybe"},
		{"negative lead", model.SettingReminderMinutesBefore, "-5"},
		{"lead over a day", model.SettingReminderMinutesBefore, "1441"},
		{"not a number", model.SettingReminderMinutesBefore, "soon"},
		{"unknown timezone", model.SettingTimezone, "Mars/Olympus"},
		{"empty timezone", model.SettingTimezone, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Set(context.Background(), tt.key, tt.value)
			assert.ErrorIs(t, err, model.ErrInvalidSetting)
		})
	}

	// значения не изменились
	assert.True(t, s.SimulationMode())
	assert.Equal(t, 30*time.Minute, s.ReminderLead())
}

func TestSettingsService_UnknownKeyStoredAsIs(t *testing.T) {
	s := newSettings(t, nil)

	_, err := s.Set(context.Background(), "school_name", "Lingua")
	require.NoError(t, err)
	assert.Equal(t, "Lingua", s.String("school_name", ""))

	all, err := s.All(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSettingsService_InvalidStoredValueFallsBack(t *testing.T) {
	s := newSettings(t, map[string]string{
		model.SettingSimulationMode:        "yes please",
		model.SettingReminderMinutesBefore: "-1",
		model.SettingTimezone:              "Nowhere/City",
	})

	assert.True(t, s.SimulationMode())
	assert.Equal(t, 30*time.Minute, s.ReminderLead())
	assert.Equal(t, time.UTC, s.Location())
}
