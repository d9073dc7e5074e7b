package testfixtures

import (
	"context"
	"fmt"
	"sync"

	"github.com/Freeeeeet/lingua_automation/internal/model"
)

// RecordingMessenger - реальный мессенджер-шпион. Запоминает отправленные сообщения
// и падает для каналов из Failures.
type RecordingMessenger struct {
	mu       sync.Mutex
	sent     []model.OutgoingMessage
	calls    int
	failures map[string]error
}

func NewRecordingMessenger() *RecordingMessenger {
	return &RecordingMessenger{failures: make(map[string]error)}
}

// FailFor заставляет Send возвращать err для канала channelID
func (m *RecordingMessenger) FailFor(channelID string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[channelID] = err
}

func (m *RecordingMessenger) Send(_ context.Context, msg model.OutgoingMessage) (*model.SendResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if err, ok := m.failures[msg.ChannelID]; ok {
		return nil, err
	}

	m.sent = append(m.sent, msg)
	return &model.SendResult{MessageID: fmt.Sprintf("msg-%d", m.calls)}, nil
}

// Calls - число вызовов Send, включая неудачные
func (m *RecordingMessenger) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Sent возвращает успешно отправленные сообщения
func (m *RecordingMessenger) Sent() []model.OutgoingMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.OutgoingMessage(nil), m.sent...)
}

// RecordingMeetingProvider - реальный провайдер встреч-шпион
type RecordingMeetingProvider struct {
	mu       sync.Mutex
	calls    int
	requests []model.MeetingRequest

	// Err, если задан, возвращается из CreateMeeting
	Err error
	// Block, если задан, задерживает CreateMeeting до закрытия канала
	Block chan struct{}
}

func NewRecordingMeetingProvider() *RecordingMeetingProvider {
	return &RecordingMeetingProvider{}
}

func (p *RecordingMeetingProvider) CreateMeeting(_ context.Context, req model.MeetingRequest) (*model.ProviderMeeting, error) {
	p.mu.Lock()
	p.calls++
	n := p.calls
	p.requests = append(p.requests, req)
	block := p.Block
	err := p.Err
	p.mu.Unlock()

	if block != nil {
		<-block
	}
	if err != nil {
		return nil, err
	}

	return &model.ProviderMeeting{
		ExternalID: fmt.Sprintf("real-%d", n),
		JoinURL:    fmt.Sprintf("https://meet.example.com/j/real-%d", n),
	}, nil
}

// Calls - число вызовов CreateMeeting
func (p *RecordingMeetingProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}
