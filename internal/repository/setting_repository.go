package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/lingua_automation/internal/model"
	"github.com/Freeeeeet/lingua_automation/internal/repository/base"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// SettingRepository хранит системные настройки
type SettingRepository struct {
	*base.Repository
	logger *zap.Logger
}

// NewSettingRepository создаёт новый репозиторий
func NewSettingRepository(pool *pgxpool.Pool, logger *zap.Logger) *SettingRepository {
	return &SettingRepository{
		Repository: base.NewRepository(pool),
		logger:     logger,
	}
}

// GetAll получает все настройки
func (r *SettingRepository) GetAll(ctx context.Context) ([]*model.SystemSetting, error) {
	rows, err := r.Query(ctx, `SELECT key, value, updated_at FROM system_settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("get all settings: %w", err)
	}
	defer rows.Close()

	var settings []*model.SystemSetting
	for rows.Next() {
		setting := &model.SystemSetting{}
		if err := rows.Scan(&setting.Key, &setting.Value, &setting.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		settings = append(settings, setting)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate settings: %w", err)
	}

	return settings, nil
}

// Upsert создаёт или обновляет настройку
func (r *SettingRepository) Upsert(ctx context.Context, key, value string) (*model.SystemSetting, error) {
	query := `
		INSERT INTO system_settings (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
		RETURNING key, value, updated_at
	`

	setting := &model.SystemSetting{}
	err := r.QueryRow(ctx, query, key, value).Scan(&setting.Key, &setting.Value, &setting.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("upsert setting: %w", err)
	}

	return setting, nil
}
