package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Freeeeeet/lingua_automation/internal/model"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var errMeetingProviderNotConfigured = errors.New("meeting provider is not configured")

// MeetingProvider - стратегия создания встреч (симуляция или реальный провайдер)
type MeetingProvider interface {
	CreateMeeting(ctx context.Context, req model.MeetingRequest) (*model.ProviderMeeting, error)
}

// MeetingRepository - хранилище встреч
type MeetingRepository interface {
	Create(ctx context.Context, meeting *model.Meeting) error
	GetLiveBySchedule(ctx context.Context, scheduleID int64) (*model.Meeting, error)
	CompleteEndedBefore(ctx context.Context, t time.Time, scheduleID *int64) (int64, error)
	List(ctx context.Context, limit int) ([]*model.Meeting, error)
}

// MeetingService - шлюз видео-провайдера с идемпотентным созданием встреч
type MeetingService struct {
	repo      MeetingRepository
	settings  SimulationSwitch
	audit     *AuditService
	simulated MeetingProvider
	real      MeetingProvider
	now       func() time.Time
	logger    *zap.Logger

	// одновременные EnsureMeeting для одного расписания выполняются один раз
	inflight singleflight.Group
}

// NewMeetingService создаёт шлюз. real может быть nil, если провайдер не настроен.
func NewMeetingService(
	repo MeetingRepository,
	settings SimulationSwitch,
	audit *AuditService,
	simulated, real MeetingProvider,
	now func() time.Time,
	logger *zap.Logger,
) *MeetingService {
	if now == nil {
		now = time.Now
	}
	return &MeetingService{
		repo:      repo,
		settings:  settings,
		audit:     audit,
		simulated: simulated,
		real:      real,
		now:       now,
		logger:    logger,
	}
}

// EnsureMeeting возвращает незавершённую встречу расписания или создаёт новую.
// Проверка и создание - одна критическая секция на ScheduleID.
func (s *MeetingService) EnsureMeeting(ctx context.Context, req model.MeetingRequest) (*model.Meeting, error) {
	key := strconv.FormatInt(req.ScheduleID, 10)

	v, err, shared := s.inflight.Do(key, func() (interface{}, error) {
		return s.ensure(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	if shared {
		s.logger.Debug("EnsureMeeting joined in-flight call", zap.Int64("schedule_id", req.ScheduleID))
	}

	return v.(*model.Meeting), nil
}

func (s *MeetingService) ensure(ctx context.Context, req model.MeetingRequest) (*model.Meeting, error) {
	// Прошедшие встречи этого расписания больше не считаются живыми
	if _, err := s.repo.CompleteEndedBefore(ctx, s.now(), &req.ScheduleID); err != nil {
		return nil, fmt.Errorf("complete finished meetings: %w", err)
	}

	existing, err := s.repo.GetLiveBySchedule(ctx, req.ScheduleID)
	if err != nil {
		return nil, fmt.Errorf("get live meeting: %w", err)
	}
	if existing != nil {
		s.logger.Debug("Meeting already exists",
			zap.Int64("schedule_id", req.ScheduleID),
			zap.Int64("meeting_id", existing.ID))
		return existing, nil
	}

	simulated := s.settings.SimulationMode()
	provider := s.real
	if simulated {
		provider = s.simulated
	}

	details := map[string]any{
		"topic":            req.Topic,
		"start_time":       req.StartTime.Format(time.RFC3339),
		"duration_minutes": req.DurationMinutes,
		"host_id":          req.HostID,
	}

	if provider == nil {
		return nil, s.fail(ctx, req, details, errMeetingProviderNotConfigured)
	}

	created, err := provider.CreateMeeting(ctx, req)
	if err != nil {
		if simulated {
			return nil, fmt.Errorf("simulated create meeting: %w", err)
		}
		return nil, s.fail(ctx, req, details, err)
	}

	meeting := &model.Meeting{
		ScheduleID:      req.ScheduleID,
		ExternalID:      created.ExternalID,
		JoinURL:         created.JoinURL,
		StartTime:       req.StartTime,
		DurationMinutes: req.DurationMinutes,
		Status:          model.MeetingStatusScheduled,
		Simulated:       simulated,
	}

	if err := s.repo.Create(ctx, meeting); err != nil {
		if errors.Is(err, model.ErrDuplicateMeeting) {
			// встречу успел создать другой процесс - возвращаем её
			return s.repo.GetLiveBySchedule(ctx, req.ScheduleID)
		}
		return nil, fmt.Errorf("save meeting: %w", err)
	}

	status := model.LogStatusSuccess
	message := fmt.Sprintf("Meeting created for %s", req.Topic)
	if simulated {
		status = model.LogStatusSimulated
		message = fmt.Sprintf("Simulated meeting for %s", req.Topic)
	}

	details["meeting_id"] = meeting.ID
	details["external_id"] = meeting.ExternalID
	details["join_url"] = meeting.JoinURL
	s.audit.Record(ctx, model.LogTypeMeetingCreation, status, message, details, &req.ScheduleID)

	s.logger.Info("Meeting created",
		zap.Int64("schedule_id", req.ScheduleID),
		zap.Int64("meeting_id", meeting.ID),
		zap.String("external_id", meeting.ExternalID),
		zap.Bool("simulated", simulated))

	return meeting, nil
}

func (s *MeetingService) fail(ctx context.Context, req model.MeetingRequest, details map[string]any, err error) error {
	details["error"] = err.Error()
	var upstream *model.UpstreamError
	if errors.As(err, &upstream) {
		details["upstream_status"] = upstream.StatusCode
		details["upstream_body"] = upstream.Body
	}

	s.audit.Record(ctx, model.LogTypeMeetingCreation, model.LogStatusError,
		fmt.Sprintf("Failed to create meeting for %s", req.Topic), details, &req.ScheduleID)

	s.logger.Error("Failed to create meeting",
		zap.Int64("schedule_id", req.ScheduleID),
		zap.Error(err))

	return &model.ExternalGatewayError{Gateway: "meeting", Op: "create", Err: err}
}

// CompleteFinishedMeetings переводит в completed все встречи, которые уже закончились
func (s *MeetingService) CompleteFinishedMeetings(ctx context.Context) (int64, error) {
	completed, err := s.repo.CompleteEndedBefore(ctx, s.now(), nil)
	if err != nil {
		s.audit.Record(ctx, model.LogTypeCleanup, model.LogStatusError,
			"Failed to complete finished meetings", map[string]any{"error": err.Error()}, nil)
		return 0, fmt.Errorf("complete finished meetings: %w", err)
	}

	if completed > 0 {
		s.audit.Record(ctx, model.LogTypeCleanup, model.LogStatusSuccess,
			fmt.Sprintf("Marked %d meetings as completed", completed),
			map[string]any{"completed": completed}, nil)
	}

	return completed, nil
}

// List получает последние встречи
func (s *MeetingService) List(ctx context.Context, limit int) ([]*model.Meeting, error) {
	if limit <= 0 || limit > maxLogLimit {
		limit = defaultLogLimit
	}
	return s.repo.List(ctx, limit)
}
