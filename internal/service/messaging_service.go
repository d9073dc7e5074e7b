package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Freeeeeet/lingua_automation/internal/model"
	"go.uber.org/zap"
)

var errMessengerNotConfigured = errors.New("messenger is not configured")

// Messenger - стратегия отправки сообщений (симуляция или реальный бот)
type Messenger interface {
	Send(ctx context.Context, msg model.OutgoingMessage) (*model.SendResult, error)
}

// SimulationSwitch сообщает текущее значение режима симуляции
type SimulationSwitch interface {
	SimulationMode() bool
}

// MessagingService - шлюз мессенджера. Стратегия выбирается при каждом вызове
// по настройке simulation_mode; каждый вызов попадает в журнал.
type MessagingService struct {
	settings  SimulationSwitch
	audit     *AuditService
	simulated Messenger
	real      Messenger
	logger    *zap.Logger
}

// NewMessagingService создаёт шлюз. real может быть nil, если бот не настроен.
func NewMessagingService(settings SimulationSwitch, audit *AuditService, simulated, real Messenger, logger *zap.Logger) *MessagingService {
	return &MessagingService{
		settings:  settings,
		audit:     audit,
		simulated: simulated,
		real:      real,
		logger:    logger,
	}
}

// Send отправляет сообщение. Ошибка реального мессенджера записывается в журнал
// и возвращается как *model.ExternalGatewayError.
func (s *MessagingService) Send(ctx context.Context, msg model.OutgoingMessage) error {
	logType := msg.Kind
	if logType == "" {
		logType = model.LogTypeNotification
	}

	details := map[string]any{
		"channel_id": msg.ChannelID,
		"parse_mode": string(msg.ParseMode),
		"text":       msg.Text,
	}

	if s.settings.SimulationMode() {
		result, err := s.simulated.Send(ctx, msg)
		if err != nil {
			// симуляция не ходит в сеть и не должна падать
			return fmt.Errorf("simulated send: %w", err)
		}
		details["message_id"] = result.MessageID
		s.audit.Record(ctx, logType, model.LogStatusSimulated,
			fmt.Sprintf("Simulated %s to %s", logType, msg.ChannelID), details, msg.ScheduleID)
		return nil
	}

	if s.real == nil {
		return s.fail(ctx, logType, msg, details, errMessengerNotConfigured)
	}

	result, err := s.real.Send(ctx, msg)
	if err != nil {
		return s.fail(ctx, logType, msg, details, err)
	}

	details["message_id"] = result.MessageID
	s.audit.Record(ctx, logType, model.LogStatusSuccess,
		fmt.Sprintf("Sent %s to %s", logType, msg.ChannelID), details, msg.ScheduleID)

	s.logger.Info("Message sent",
		zap.String("kind", string(logType)),
		zap.String("channel_id", msg.ChannelID),
		zap.String("message_id", result.MessageID))

	return nil
}

func (s *MessagingService) fail(ctx context.Context, logType model.LogType, msg model.OutgoingMessage, details map[string]any, err error) error {
	details["error"] = err.Error()
	var upstream *model.UpstreamError
	if errors.As(err, &upstream) {
		details["upstream_status"] = upstream.StatusCode
		details["upstream_body"] = upstream.Body
	}

	s.audit.Record(ctx, logType, model.LogStatusError,
		fmt.Sprintf("Failed to send %s to %s", logType, msg.ChannelID), details, msg.ScheduleID)

	s.logger.Error("Failed to send message",
		zap.String("kind", string(logType)),
		zap.String("channel_id", msg.ChannelID),
		zap.Error(err))

	return &model.ExternalGatewayError{Gateway: "messaging", Op: "send", Err: err}
}
