package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/lingua_automation/internal/model"
	"github.com/Freeeeeet/lingua_automation/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const courseScheduleColumns = `id, course_name, level, instructor, weekday, start_hour, start_minute,
	duration_minutes, channel_id, host_id, is_active, created_at, updated_at`

// CourseScheduleRepository читает и создаёт расписания курсов
type CourseScheduleRepository struct {
	*base.Repository
	logger *zap.Logger
}

// NewCourseScheduleRepository создаёт новый репозиторий
func NewCourseScheduleRepository(pool *pgxpool.Pool, logger *zap.Logger) *CourseScheduleRepository {
	return &CourseScheduleRepository{
		Repository: base.NewRepository(pool),
		logger:     logger,
	}
}

// Create создаёт новое расписание курса
func (r *CourseScheduleRepository) Create(ctx context.Context, schedule *model.CourseSchedule) error {
	query := `
		INSERT INTO course_schedules (course_name, level, instructor, weekday, start_hour, start_minute,
			duration_minutes, channel_id, host_id, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`

	err := r.QueryRow(
		ctx,
		query,
		schedule.CourseName,
		schedule.Level,
		schedule.Instructor,
		schedule.Weekday,
		schedule.StartHour,
		schedule.StartMinute,
		schedule.DurationMinutes,
		schedule.ChannelID,
		schedule.HostID,
		schedule.IsActive,
	).Scan(&schedule.ID, &schedule.CreatedAt, &schedule.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create course schedule: %w", err)
	}

	return nil
}

// GetByID получает расписание по ID. Возвращает nil, nil если расписание не найдено.
func (r *CourseScheduleRepository) GetByID(ctx context.Context, id int64) (*model.CourseSchedule, error) {
	query := `SELECT ` + courseScheduleColumns + ` FROM course_schedules WHERE id = $1`

	schedule, err := scanCourseSchedule(r.QueryRow(ctx, query, id))
	if base.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get course schedule by id: %w", err)
	}

	return schedule, nil
}

// ListActive получает активные расписания, опционально только для одного дня недели.
// Порядок: по времени начала, затем по ID.
func (r *CourseScheduleRepository) ListActive(ctx context.Context, weekday *int) ([]*model.CourseSchedule, error) {
	query := `
		SELECT ` + courseScheduleColumns + `
		FROM course_schedules
		WHERE is_active = true AND ($1::smallint IS NULL OR weekday = $1)
		ORDER BY start_hour, start_minute, id
	`

	rows, err := r.Query(ctx, query, weekday)
	if err != nil {
		return nil, fmt.Errorf("list active course schedules: %w", err)
	}

	return collectCourseSchedules(rows)
}

// List получает все расписания для дашборда
func (r *CourseScheduleRepository) List(ctx context.Context) ([]*model.CourseSchedule, error) {
	query := `
		SELECT ` + courseScheduleColumns + `
		FROM course_schedules
		ORDER BY weekday, start_hour, start_minute, id
	`

	rows, err := r.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list course schedules: %w", err)
	}

	return collectCourseSchedules(rows)
}

func collectCourseSchedules(rows pgx.Rows) ([]*model.CourseSchedule, error) {
	defer rows.Close()

	var schedules []*model.CourseSchedule
	for rows.Next() {
		schedule, err := scanCourseSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan course schedule: %w", err)
		}
		schedules = append(schedules, schedule)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate course schedules: %w", err)
	}

	return schedules, nil
}

func scanCourseSchedule(row pgx.Row) (*model.CourseSchedule, error) {
	schedule := &model.CourseSchedule{}
	err := row.Scan(
		&schedule.ID,
		&schedule.CourseName,
		&schedule.Level,
		&schedule.Instructor,
		&schedule.Weekday,
		&schedule.StartHour,
		&schedule.StartMinute,
		&schedule.DurationMinutes,
		&schedule.ChannelID,
		&schedule.HostID,
		&schedule.IsActive,
		&schedule.CreatedAt,
		&schedule.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return schedule, nil
}
