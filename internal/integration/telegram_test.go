package integration

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freeeeeet/lingua_automation/internal/model"
)

func TestParseChatID(t *testing.T) {
	id, err := parseChatID("-1001234567890")
	require.NoError(t, err)
	assert.Equal(t, int64(-1001234567890), id)

	id, err = parseChatID("@spanish_b1")
	require.NoError(t, err)
	assert.Equal(t, "@spanish_b1", id)

	_, err = parseChatID("")
	assert.Error(t, err)

	_, err = parseChatID("not-a-chat")
	assert.Error(t, err)
}

func TestTelegramMessenger_Send(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":42,"date":1709575200,"chat":{"id":-100123,"type":"supergroup"},"text":"hi"}}`))
	}))
	defer srv.Close()

	b, err := bot.New("123:test-token", bot.WithServerURL(srv.URL), bot.WithSkipGetMe())
	require.NoError(t, err)

	messenger := NewTelegramMessenger(b)
	result, err := messenger.Send(context.Background(), model.OutgoingMessage{
		ChannelID: "-100123",
		Text:      "hi",
		ParseMode: model.ParseModeHTML,
	})
	require.NoError(t, err)
	assert.Equal(t, "42", result.MessageID)
	assert.True(t, strings.HasSuffix(gotPath, "/sendMessage"), gotPath)
}

func TestTelegramMessenger_InvalidChannel(t *testing.T) {
	b, err := bot.New("123:test-token", bot.WithSkipGetMe())
	require.NoError(t, err)

	_, err = NewTelegramMessenger(b).Send(context.Background(), model.OutgoingMessage{ChannelID: "oops"})
	assert.Error(t, err)
}
