package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Freeeeeet/lingua_automation/internal/integration"
	"github.com/Freeeeeet/lingua_automation/internal/model"
	"github.com/Freeeeeet/lingua_automation/internal/testfixtures"
)

type meetingFixture struct {
	clock    *testfixtures.Clock
	repo     *testfixtures.MeetingRepository
	logs     *testfixtures.LogRepository
	provider *testfixtures.RecordingMeetingProvider
	service  *MeetingService
}

func newMeetingFixture(t *testing.T, simulation string) *meetingFixture {
	t.Helper()

	logger := zap.NewNop()
	f := &meetingFixture{
		clock:    testfixtures.NewClock(time.Date(2026, time.October, 19, 6, 0, 0, 0, time.UTC)),
		repo:     testfixtures.NewMeetingRepository(),
		logs:     testfixtures.NewLogRepository(nil),
		provider: testfixtures.NewRecordingMeetingProvider(),
	}
	settings := newSettings(t, map[string]string{model.SettingSimulationMode: simulation})
	f.service = NewMeetingService(f.repo, settings, NewAuditService(f.logs, logger),
		integration.NewSimulatedMeetingProvider(logger), f.provider, f.clock.NowFunc(), logger)
	return f
}

func meetingRequest(scheduleID int64) model.MeetingRequest {
	return model.MeetingRequest{
		ScheduleID:      scheduleID,
		Topic:           "English (B1) with Anna",
		StartTime:       time.Date(2026, time.October, 19, 20, 0, 0, 0, time.UTC),
		DurationMinutes: 60,
		HostID:          "host@school.example",
	}
}

func TestMeetingService_EnsureIsIdempotent(t *testing.T) {
	f := newMeetingFixture(t, "false")
	ctx := context.Background()

	first, err := f.service.EnsureMeeting(ctx, meetingRequest(1))
	require.NoError(t, err)
	second, err := f.service.EnsureMeeting(ctx, meetingRequest(1))
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.False(t, first.Simulated)
	assert.Equal(t, 1, f.provider.Calls())
	assert.Len(t, f.repo.All(), 1)
	assert.Equal(t, 1, f.logs.Count(model.LogTypeMeetingCreation, model.LogStatusSuccess, testfixtures.Int64(1)))
}

func TestMeetingService_ConcurrentEnsureCreatesOnce(t *testing.T) {
	f := newMeetingFixture(t, "false")
	f.provider.Block = make(chan struct{})

	const callers = 8
	var wg sync.WaitGroup
	ids := make([]int64, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m, err := f.service.EnsureMeeting(context.Background(), meetingRequest(1))
			if assert.NoError(t, err) {
				ids[i] = m.ID
			}
		}(i)
	}

	require.Eventually(t, func() bool { return f.provider.Calls() >= 1 }, time.Second, time.Millisecond)
	close(f.provider.Block)
	wg.Wait()

	assert.Len(t, f.repo.All(), 1)
	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
}

func TestMeetingService_SimulationNeverCallsReal(t *testing.T) {
	f := newMeetingFixture(t, "true")

	m, err := f.service.EnsureMeeting(context.Background(), meetingRequest(2))
	require.NoError(t, err)

	assert.True(t, m.Simulated)
	assert.Contains(t, m.JoinURL, "simulated")
	assert.Equal(t, 0, f.provider.Calls())
	assert.Equal(t, 1, f.logs.Count(model.LogTypeMeetingCreation, model.LogStatusSimulated, testfixtures.Int64(2)))
}

func TestMeetingService_ProviderFailure(t *testing.T) {
	f := newMeetingFixture(t, "false")
	f.provider.Err = &model.UpstreamError{StatusCode: 404, Body: `{"code":1001,"message":"User does not exist"}`}

	_, err := f.service.EnsureMeeting(context.Background(), meetingRequest(3))

	var gwErr *model.ExternalGatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, "meeting", gwErr.Gateway)
	assert.Empty(t, f.repo.All())

	entries := f.logs.Entries(model.LogFilter{Status: model.LogStatusError})
	require.Len(t, entries, 1)
	assert.Equal(t, 404, entries[0].Details["upstream_status"])
}

func TestMeetingService_EndedMeetingIsReplaced(t *testing.T) {
	f := newMeetingFixture(t, "true")
	ctx := context.Background()

	first, err := f.service.EnsureMeeting(ctx, meetingRequest(1))
	require.NoError(t, err)

	f.clock.Set(time.Date(2026, time.October, 20, 6, 0, 0, 0, time.UTC))
	next := meetingRequest(1)
	next.StartTime = next.StartTime.AddDate(0, 0, 7)

	second, err := f.service.EnsureMeeting(ctx, next)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.NotEqual(t, first.ExternalID, second.ExternalID)
}

func TestMeetingService_CompleteFinishedMeetings(t *testing.T) {
	f := newMeetingFixture(t, "true")
	ctx := context.Background()

	_, err := f.service.EnsureMeeting(ctx, meetingRequest(1))
	require.NoError(t, err)

	completed, err := f.service.CompleteFinishedMeetings(ctx)
	require.NoError(t, err)
	assert.Zero(t, completed)
	assert.Equal(t, 0, f.logs.Count(model.LogTypeCleanup, "", nil))

	f.clock.Set(time.Date(2026, time.October, 19, 21, 0, 0, 0, time.UTC))
	completed, err = f.service.CompleteFinishedMeetings(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), completed)
	assert.Equal(t, 1, f.logs.Count(model.LogTypeCleanup, model.LogStatusSuccess, nil))

	meetings, err := f.service.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, meetings, 1)
	assert.Equal(t, model.MeetingStatusCompleted, meetings[0].Status)
}
