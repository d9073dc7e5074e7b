package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/lingua_automation/internal/model"
	"github.com/Freeeeeet/lingua_automation/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const meetingColumns = `id, schedule_id, external_id, join_url, start_time, duration_minutes,
	status, simulated, created_at, updated_at`

// MeetingRepository управляет видео-встречами в базе данных
type MeetingRepository struct {
	*base.Repository
	logger *zap.Logger
}

// NewMeetingRepository создаёт новый репозиторий
func NewMeetingRepository(pool *pgxpool.Pool, logger *zap.Logger) *MeetingRepository {
	return &MeetingRepository{
		Repository: base.NewRepository(pool),
		logger:     logger,
	}
}

// Create сохраняет встречу. Возвращает model.ErrDuplicateMeeting, если у расписания
// уже есть незавершённая встреча (частичный уникальный индекс).
func (r *MeetingRepository) Create(ctx context.Context, meeting *model.Meeting) error {
	query := `
		INSERT INTO meetings (schedule_id, external_id, join_url, start_time, duration_minutes, status, simulated)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	err := r.QueryRow(
		ctx,
		query,
		meeting.ScheduleID,
		meeting.ExternalID,
		meeting.JoinURL,
		meeting.StartTime,
		meeting.DurationMinutes,
		meeting.Status,
		meeting.Simulated,
	).Scan(&meeting.ID, &meeting.CreatedAt, &meeting.UpdatedAt)

	if base.IsUniqueViolation(err) {
		return model.ErrDuplicateMeeting
	}
	if err != nil {
		return fmt.Errorf("create meeting: %w", err)
	}

	return nil
}

// GetLiveBySchedule получает незавершённую встречу расписания. Возвращает nil, nil если её нет.
func (r *MeetingRepository) GetLiveBySchedule(ctx context.Context, scheduleID int64) (*model.Meeting, error) {
	query := `SELECT ` + meetingColumns + ` FROM meetings WHERE schedule_id = $1 AND status = $2`

	meeting, err := scanMeeting(r.QueryRow(ctx, query, scheduleID, model.MeetingStatusScheduled))
	if base.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get live meeting by schedule: %w", err)
	}

	return meeting, nil
}

// CompleteEndedBefore переводит в completed встречи, закончившиеся до момента t.
// scheduleID ограничивает обновление одним расписанием.
func (r *MeetingRepository) CompleteEndedBefore(ctx context.Context, t time.Time, scheduleID *int64) (int64, error) {
	query := `
		UPDATE meetings
		SET status = $1, updated_at = NOW()
		WHERE status = $2
		  AND start_time + duration_minutes * INTERVAL '1 minute' <= $3
		  AND ($4::bigint IS NULL OR schedule_id = $4)
	`

	affected, err := r.ExecAffected(ctx, query, model.MeetingStatusCompleted, model.MeetingStatusScheduled, t, scheduleID)
	if err != nil {
		return 0, fmt.Errorf("complete ended meetings: %w", err)
	}

	return affected, nil
}

// List получает последние встречи
func (r *MeetingRepository) List(ctx context.Context, limit int) ([]*model.Meeting, error) {
	query := `SELECT ` + meetingColumns + ` FROM meetings ORDER BY start_time DESC, id DESC LIMIT $1`

	rows, err := r.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list meetings: %w", err)
	}
	defer rows.Close()

	var meetings []*model.Meeting
	for rows.Next() {
		meeting, err := scanMeeting(rows)
		if err != nil {
			return nil, fmt.Errorf("scan meeting: %w", err)
		}
		meetings = append(meetings, meeting)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate meetings: %w", err)
	}

	return meetings, nil
}

func scanMeeting(row pgx.Row) (*model.Meeting, error) {
	meeting := &model.Meeting{}
	err := row.Scan(
		&meeting.ID,
		&meeting.ScheduleID,
		&meeting.ExternalID,
		&meeting.JoinURL,
		&meeting.StartTime,
		&meeting.DurationMinutes,
		&meeting.Status,
		&meeting.Simulated,
		&meeting.CreatedAt,
		&meeting.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return meeting, nil
}
