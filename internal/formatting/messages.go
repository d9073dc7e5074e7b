// Package formatting собирает тексты уведомлений для мессенджера.
package formatting

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/Freeeeeet/lingua_automation/internal/model"
)

// ClassNotification - текст уведомления в день занятия (HTML)
func ClassNotification(cs *model.CourseSchedule, start time.Time, meeting *model.Meeting) string {
	var b strings.Builder

	fmt.Fprintf(&b, "📚 <b>%s</b>", html.EscapeString(cs.CourseName))
	if cs.Level != "" {
		fmt.Fprintf(&b, " (%s)", html.EscapeString(cs.Level))
	}
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "📅 %s\n", FormatDateWithWeekday(start))
	fmt.Fprintf(&b, "🕐 %s (%s)\n", FormatTimeRange(start, start.Add(time.Duration(cs.DurationMinutes)*time.Minute)), FormatDuration(cs.DurationMinutes))
	fmt.Fprintf(&b, "👩‍🏫 %s\n", html.EscapeString(cs.Instructor))

	if meeting != nil && meeting.JoinURL != "" {
		fmt.Fprintf(&b, "\n🔗 <a href=\"%s\">Join the class</a>", html.EscapeString(meeting.JoinURL))
	}

	return b.String()
}

// ClassReminder - текст напоминания перед началом занятия (HTML)
func ClassReminder(cs *model.CourseSchedule, start time.Time, lead time.Duration, meeting *model.Meeting) string {
	var b strings.Builder

	fmt.Fprintf(&b, "⏰ <b>%s</b> starts in %s at %s",
		html.EscapeString(cs.CourseName),
		FormatDuration(int(lead/time.Minute)),
		FormatTime(start))

	if meeting != nil && meeting.JoinURL != "" {
		fmt.Fprintf(&b, "\n\n🔗 <a href=\"%s\">Join the class</a>", html.EscapeString(meeting.JoinURL))
	}

	return b.String()
}
