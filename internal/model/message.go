package model

// ParseMode определяет форматирование текста сообщения
type ParseMode string

const (
	ParseModePlain    ParseMode = ""
	ParseModeHTML     ParseMode = "HTML"
	ParseModeMarkdown ParseMode = "MarkdownV2"
)

// OutgoingMessage - сообщение для отправки через мессенджер
type OutgoingMessage struct {
	ChannelID  string
	Text       string
	ParseMode  ParseMode
	Kind       LogType // LogTypeNotification или LogTypeReminder
	ScheduleID *int64
}

// SendResult - результат отправки сообщения
type SendResult struct {
	MessageID string
}
