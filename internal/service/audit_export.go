package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/Freeeeeet/lingua_automation/internal/model"
)

const exportSheet = "Automation log"

var exportHeaders = []string{"ID", "Created at", "Type", "Status", "Schedule", "Message", "Details"}

// Export выгружает отфильтрованный журнал в Excel (.xlsx).
// Возвращает содержимое файла и предлагаемое имя.
func (s *AuditService) Export(ctx context.Context, filter model.LogFilter) (*bytes.Buffer, string, error) {
	filter.Limit = maxLogLimit
	entries, err := s.List(ctx, filter)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("Failed to close export workbook", zap.Error(err))
		}
	}()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, "", fmt.Errorf("rename sheet: %w", err)
	}

	if err := f.SetSheetRow(exportSheet, "A1", &exportHeaders); err != nil {
		return nil, "", fmt.Errorf("write header: %w", err)
	}

	for i, entry := range entries {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, "", fmt.Errorf("cell name: %w", err)
		}

		related := ""
		if entry.RelatedID != nil {
			related = fmt.Sprintf("%d", *entry.RelatedID)
		}

		details := ""
		if len(entry.Details) > 0 {
			raw, err := json.Marshal(entry.Details)
			if err == nil {
				details = string(raw)
			}
		}

		row := []interface{}{
			entry.ID,
			entry.CreatedAt.Format(time.RFC3339),
			string(entry.Type),
			string(entry.Status),
			related,
			entry.Message,
			details,
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, "", fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("write workbook: %w", err)
	}

	filename := fmt.Sprintf("automation_log_%s.xlsx", time.Now().Format("20060102_150405"))
	return buf, filename, nil
}
