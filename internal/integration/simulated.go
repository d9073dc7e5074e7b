// Package integration содержит реализации внешних шлюзов: реальные клиенты
// мессенджера и видео-провайдера и их симуляции без сетевых вызовов.
package integration

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Freeeeeet/lingua_automation/internal/model"
)

const simulatedMeetingHost = "https://meet.simulated.local/j/"

// SimulatedMessenger имитирует отправку сообщения
type SimulatedMessenger struct {
	logger *zap.Logger
}

func NewSimulatedMessenger(logger *zap.Logger) *SimulatedMessenger {
	return &SimulatedMessenger{logger: logger}
}

func (m *SimulatedMessenger) Send(_ context.Context, msg model.OutgoingMessage) (*model.SendResult, error) {
	id := "sim-msg-" + uuid.NewString()

	m.logger.Info("[SIMULATION] Message not sent",
		zap.String("channel_id", msg.ChannelID),
		zap.String("kind", string(msg.Kind)),
		zap.String("message_id", id))

	return &model.SendResult{MessageID: id}, nil
}

// SimulatedMeetingProvider имитирует создание встречи.
// Идентификатор детерминирован для пары (расписание, время начала).
type SimulatedMeetingProvider struct {
	logger *zap.Logger
}

func NewSimulatedMeetingProvider(logger *zap.Logger) *SimulatedMeetingProvider {
	return &SimulatedMeetingProvider{logger: logger}
}

func (p *SimulatedMeetingProvider) CreateMeeting(_ context.Context, req model.MeetingRequest) (*model.ProviderMeeting, error) {
	seed := fmt.Sprintf("%d/%d", req.ScheduleID, req.StartTime.Unix())
	id := "sim-" + uuid.NewSHA1(uuid.NameSpaceURL, []byte(seed)).String()

	p.logger.Info("[SIMULATION] Meeting not created",
		zap.Int64("schedule_id", req.ScheduleID),
		zap.String("topic", req.Topic),
		zap.String("external_id", id))

	return &model.ProviderMeeting{
		ExternalID: id,
		JoinURL:    simulatedMeetingHost + id,
	}, nil
}
