package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/Freeeeeet/lingua_automation/internal/formatting"
)

// сколько ближайших напоминаний показывать в /status
const statusRemindersShown = 5

// HandleStart обрабатывает команду /start
func (h *Handlers) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	h.reply(ctx, b, update.Message.Chat.ID,
		"👋 Hi! I post class notifications and reminders for the school.\n\n"+
			"Add me to a class group or channel and send /chatid there "+
			"to get the id for the course schedule.\n\n"+
			"/help - list of commands", "")
}

// HandleHelp обрабатывает команду /help
func (h *Handlers) HandleHelp(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	h.reply(ctx, b, update.Message.Chat.ID,
		"📚 Commands:\n\n"+
			"/chatid - id of this chat for the course schedule\n"+
			"/status - automation status\n"+
			"/help - this help", "")
}

// HandleChatID отвечает id текущего чата, его подставляют в channel_id расписания
func (h *Handlers) HandleChatID(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	chat := update.Message.Chat
	h.logger.Info("Chat id requested",
		zap.Int64("chat_id", chat.ID),
		zap.String("chat_type", string(chat.Type)))

	text := fmt.Sprintf("🆔 Chat id: <code>%d</code>", chat.ID)
	if chat.Username != "" {
		text += fmt.Sprintf("\nUsername: <code>@%s</code>", chat.Username)
	}

	h.reply(ctx, b, chat.ID, text, models.ParseModeHTML)
}

// HandleStatus показывает режим симуляции, задачи и ближайшие напоминания
func (h *Handlers) HandleStatus(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	h.reply(ctx, b, update.Message.Chat.ID, h.statusText(), models.ParseModeHTML)
}

func (h *Handlers) statusText() string {
	status := h.scheduler.Status()
	loc := h.settings.Location()

	mode := "🟢 live"
	if h.settings.SimulationMode() {
		mode = "🧪 simulation"
	}

	var sb strings.Builder
	sb.WriteString("<b>Automation status</b>\n\n")
	fmt.Fprintf(&sb, "Mode: %s\n", mode)
	fmt.Fprintf(&sb, "Timezone: %s\n", loc.String())
	fmt.Fprintf(&sb, "Reminder lead: %s\n", formatting.FormatDuration(int(h.settings.ReminderLead().Minutes())))
	fmt.Fprintf(&sb, "Triggers: %d\n", len(status.Triggers))
	fmt.Fprintf(&sb, "Armed reminders: %d\n", len(status.Reminders))

	for i, r := range status.Reminders {
		if i == statusRemindersShown {
			fmt.Fprintf(&sb, "… and %d more\n", len(status.Reminders)-statusRemindersShown)
			break
		}
		fireAt := r.FireAt.In(loc)
		fmt.Fprintf(&sb, "• #%d at %s %s\n", r.ScheduleID, fireAt.Weekday().String()[:3], formatting.FormatTime(fireAt))
	}

	return sb.String()
}
