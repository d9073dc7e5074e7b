package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/Freeeeeet/lingua_automation/internal/model"
	"github.com/Freeeeeet/lingua_automation/internal/testfixtures"
)

func TestAuditService_RecordAndList(t *testing.T) {
	repo := testfixtures.NewLogRepository(nil)
	audit := NewAuditService(repo, zap.NewNop())
	ctx := context.Background()

	first := audit.Record(ctx, model.LogTypeNotification, model.LogStatusSuccess, "sent", map[string]any{"channel_id": "@a"}, testfixtures.Int64(1))
	require.NotNil(t, first)
	audit.Record(ctx, model.LogTypeNotification, model.LogStatusError, "failed", nil, testfixtures.Int64(2))
	audit.Record(ctx, model.LogTypeMeetingCreation, model.LogStatusSimulated, "created", nil, testfixtures.Int64(1))

	all, err := audit.List(ctx, model.LogFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "created", all[0].Message)

	byType, err := audit.List(ctx, model.LogFilter{Type: model.LogTypeNotification})
	require.NoError(t, err)
	assert.Len(t, byType, 2)

	byStatus, err := audit.List(ctx, model.LogFilter{Status: model.LogStatusError})
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, int64(2), *byStatus[0].RelatedID)

	byEntity, err := audit.List(ctx, model.LogFilter{RelatedID: testfixtures.Int64(1)})
	require.NoError(t, err)
	assert.Len(t, byEntity, 2)
}

func TestAuditService_ListClampsLimit(t *testing.T) {
	repo := testfixtures.NewLogRepository(nil)
	audit := NewAuditService(repo, zap.NewNop())
	ctx := context.Background()

	for i := 0; i < defaultLogLimit+5; i++ {
		audit.Record(ctx, model.LogTypeCleanup, model.LogStatusSuccess, "tick", nil, nil)
	}

	entries, err := audit.List(ctx, model.LogFilter{})
	require.NoError(t, err)
	assert.Len(t, entries, defaultLogLimit)

	entries, err = audit.List(ctx, model.LogFilter{Limit: 3})
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestAuditService_RecordFailureDoesNotPropagate(t *testing.T) {
	repo := testfixtures.NewLogRepository(nil)
	repo.CreateErr = errors.New("disk full")
	audit := NewAuditService(repo, zap.NewNop())

	entry := audit.Record(context.Background(), model.LogTypeReminder, model.LogStatusSuccess, "sent", nil, nil)
	assert.Nil(t, entry)
}

func TestAuditService_RecordSurvivesCancelledContext(t *testing.T) {
	repo := testfixtures.NewLogRepository(nil)
	audit := NewAuditService(repo, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NotNil(t, audit.Record(ctx, model.LogTypeReminder, model.LogStatusSuccess, "sent", nil, nil))
}

func TestAuditService_Prune(t *testing.T) {
	clock := testfixtures.NewClock(time.Date(2026, time.October, 1, 12, 0, 0, 0, time.UTC))
	repo := testfixtures.NewLogRepository(clock.NowFunc())
	audit := NewAuditService(repo, zap.NewNop())
	ctx := context.Background()

	audit.Record(ctx, model.LogTypeNotification, model.LogStatusSuccess, "old", nil, nil)
	clock.Advance(48 * time.Hour)
	audit.Record(ctx, model.LogTypeNotification, model.LogStatusSuccess, "new", nil, nil)

	deleted, err := audit.Prune(ctx, clock.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	entries := repo.Entries(model.LogFilter{})
	require.Len(t, entries, 2)
	assert.Equal(t, "new", entries[0].Message)
	assert.Equal(t, model.LogTypeCleanup, entries[1].Type)
}

func TestAuditService_Export(t *testing.T) {
	repo := testfixtures.NewLogRepository(nil)
	audit := NewAuditService(repo, zap.NewNop())
	ctx := context.Background()

	audit.Record(ctx, model.LogTypeNotification, model.LogStatusSimulated, "Simulated notification", map[string]any{"channel_id": "@a"}, testfixtures.Int64(4))
	audit.Record(ctx, model.LogTypeReminder, model.LogStatusError, "Failed reminder", nil, nil)

	buf, filename, err := audit.Export(ctx, model.LogFilter{})
	require.NoError(t, err)
	assert.Contains(t, filename, ".xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, exportHeaders, rows[0])
	assert.Equal(t, "reminder", rows[1][2])
	assert.Equal(t, "4", rows[2][4])
	assert.Contains(t, rows[2][6], "@a")
}
