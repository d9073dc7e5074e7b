package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/Freeeeeet/lingua_automation/internal/model"
)

const (
	zoomScheduledMeeting = 2
	maxErrorBody         = 4 << 10
)

// ZoomConfig - учётные данные Server-to-Server OAuth приложения
type ZoomConfig struct {
	AccountID    string
	ClientID     string
	ClientSecret string
	APIURL       string
	TokenURL     string
}

// ZoomProvider создаёт встречи через Zoom REST API
type ZoomProvider struct {
	client *http.Client
	apiURL string
}

func NewZoomProvider(cfg ZoomConfig) *ZoomProvider {
	cc := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
		AuthStyle:    oauth2.AuthStyleInHeader,
		EndpointParams: url.Values{
			"grant_type": {"account_credentials"},
			"account_id": {cfg.AccountID},
		},
	}

	client := cc.Client(context.Background())
	client.Timeout = 15 * time.Second

	return &ZoomProvider{
		client: client,
		apiURL: strings.TrimRight(cfg.APIURL, "/"),
	}
}

type zoomMeetingRequest struct {
	Topic     string              `json:"topic"`
	Type      int                 `json:"type"`
	StartTime string              `json:"start_time"`
	Duration  int                 `json:"duration"`
	Timezone  string              `json:"timezone"`
	Settings  zoomMeetingSettings `json:"settings"`
}

type zoomMeetingSettings struct {
	JoinBeforeHost bool `json:"join_before_host"`
	WaitingRoom    bool `json:"waiting_room"`
}

type zoomMeetingResponse struct {
	ID      int64  `json:"id"`
	JoinURL string `json:"join_url"`
}

func (p *ZoomProvider) CreateMeeting(ctx context.Context, req model.MeetingRequest) (*model.ProviderMeeting, error) {
	body, err := json.Marshal(zoomMeetingRequest{
		Topic:     req.Topic,
		Type:      zoomScheduledMeeting,
		StartTime: req.StartTime.UTC().Format("2006-01-02T15:04:05Z"),
		Duration:  req.DurationMinutes,
		Timezone:  "UTC",
		Settings: zoomMeetingSettings{
			JoinBeforeHost: false,
			WaitingRoom:    true,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal meeting request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/users/%s/meetings", p.apiURL, url.PathEscape(req.HostID))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build meeting request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("zoom create meeting: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &model.UpstreamError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var created zoomMeetingResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, fmt.Errorf("decode meeting response: %w", err)
	}

	return &model.ProviderMeeting{
		ExternalID: strconv.FormatInt(created.ID, 10),
		JoinURL:    created.JoinURL,
	}, nil
}
