package formatting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Freeeeeet/lingua_automation/internal/model"
)

func TestClassNotification(t *testing.T) {
	cs := &model.CourseSchedule{
		CourseName:      "English <Advanced>",
		Level:           "C1",
		Instructor:      "Tom",
		DurationMinutes: 90,
	}
	start := time.Date(2024, time.March, 4, 20, 0, 0, 0, time.UTC)
	meeting := &model.Meeting{JoinURL: "https://zoom.us/j/1?pwd=a&b"}

	text := ClassNotification(cs, start, meeting)

	assert.Contains(t, text, "English &lt;Advanced&gt;")
	assert.Contains(t, text, "(C1)")
	assert.Contains(t, text, "Monday, 04.03.2024")
	assert.Contains(t, text, "20:00-21:30 (1 h 30 min)")
	assert.Contains(t, text, `href="https://zoom.us/j/1?pwd=a&amp;b"`)
}

func TestClassReminder(t *testing.T) {
	cs := &model.CourseSchedule{CourseName: "Italian"}
	start := time.Date(2024, time.March, 4, 20, 0, 0, 0, time.UTC)

	text := ClassReminder(cs, start, 15*time.Minute, nil)

	assert.Contains(t, text, "Italian")
	assert.Contains(t, text, "starts in 15 min at 20:00")
	assert.NotContains(t, text, "href")
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "45 min", FormatDuration(45))
	assert.Equal(t, "2 h", FormatDuration(120))
	assert.Equal(t, "1 h 5 min", FormatDuration(65))
}
