package integration

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/Freeeeeet/lingua_automation/internal/model"
)

// TelegramMessenger отправляет сообщения через Telegram Bot API
type TelegramMessenger struct {
	bot *bot.Bot
}

func NewTelegramMessenger(b *bot.Bot) *TelegramMessenger {
	return &TelegramMessenger{bot: b}
}

func (m *TelegramMessenger) Send(ctx context.Context, msg model.OutgoingMessage) (*model.SendResult, error) {
	chatID, err := parseChatID(msg.ChannelID)
	if err != nil {
		return nil, err
	}

	sent, err := m.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      msg.Text,
		ParseMode: models.ParseMode(msg.ParseMode),
	})
	if err != nil {
		return nil, fmt.Errorf("telegram send message: %w", err)
	}

	return &model.SendResult{MessageID: strconv.Itoa(sent.ID)}, nil
}

// parseChatID принимает числовой id чата или @username канала
func parseChatID(channelID string) (any, error) {
	channelID = strings.TrimSpace(channelID)
	if channelID == "" {
		return nil, fmt.Errorf("empty channel id")
	}
	if strings.HasPrefix(channelID, "@") {
		return channelID, nil
	}
	id, err := strconv.ParseInt(channelID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid channel id %q", channelID)
	}
	return id, nil
}
