package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// reply отправляет ответ в чат и логирует, если не удалось
func (h *Handlers) reply(ctx context.Context, b *bot.Bot, chatID int64, text string, parseMode models.ParseMode) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: parseMode,
	})
	if err != nil {
		h.logger.Error("Failed to send reply",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}
}
