package integration

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freeeeeet/lingua_automation/internal/model"
)

func newZoomServer(t *testing.T, meetingHandler http.HandlerFunc) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "account_credentials", r.PostForm.Get("grant_type"))
		assert.Equal(t, "acc-1", r.PostForm.Get("account_id"))

		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "client", user)
		assert.Equal(t, "secret", pass)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"token-1","token_type":"bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/v2/users/", meetingHandler)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestZoomProvider(srv *httptest.Server) *ZoomProvider {
	return NewZoomProvider(ZoomConfig{
		AccountID:    "acc-1",
		ClientID:     "client",
		ClientSecret: "secret",
		APIURL:       srv.URL + "/v2/",
		TokenURL:     srv.URL + "/oauth/token",
	})
}

func TestZoomProvider_CreateMeeting(t *testing.T) {
	srv := newZoomServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2/users/host@school.test/meetings", r.URL.Path)
		assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))

		var body zoomMeetingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Spanish (B1) with Lucia", body.Topic)
		assert.Equal(t, zoomScheduledMeeting, body.Type)
		assert.Equal(t, "2024-03-04T17:00:00Z", body.StartTime)
		assert.Equal(t, 90, body.Duration)

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":85746065432,"join_url":"https://zoom.us/j/85746065432"}`))
	})

	provider := newTestZoomProvider(srv)
	start := time.Date(2024, time.March, 4, 20, 0, 0, 0, time.FixedZone("MSK", 3*60*60))

	created, err := provider.CreateMeeting(context.Background(), model.MeetingRequest{
		ScheduleID:      1,
		Topic:           "Spanish (B1) with Lucia",
		StartTime:       start,
		DurationMinutes: 90,
		HostID:          "host@school.test",
	})
	require.NoError(t, err)
	assert.Equal(t, "85746065432", created.ExternalID)
	assert.Equal(t, "https://zoom.us/j/85746065432", created.JoinURL)
}

func TestZoomProvider_UpstreamError(t *testing.T) {
	srv := newZoomServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"code":1001,"message":"User does not exist"}`))
	})

	provider := newTestZoomProvider(srv)

	_, err := provider.CreateMeeting(context.Background(), model.MeetingRequest{
		ScheduleID:      1,
		Topic:           "French",
		StartTime:       time.Now(),
		DurationMinutes: 60,
		HostID:          "ghost",
	})
	require.Error(t, err)

	var upstream *model.UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusNotFound, upstream.StatusCode)
	assert.Contains(t, upstream.Body, "User does not exist")
}
