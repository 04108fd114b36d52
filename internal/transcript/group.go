// internal/transcript/group.go
package transcript

import (
	"time"

	"github.com/dnaweav/tradesman-ai-assist/internal/types"
)

// DayGroup is one date-bucketed segment of a transcript.
type DayGroup struct {
	Date     time.Time        `json:"date"`
	Label    string           `json:"label"`
	Messages []*types.Message `json:"messages"`
}

// Group buckets an ordered transcript by calendar date in a single pass.
// A new group starts whenever a message's date differs from the running
// group's date. Pure: the same input and now always yield the same
// grouping, and the input order is preserved untouched.
func Group(msgs []*types.Message, now time.Time) []DayGroup {
	if len(msgs) == 0 {
		return nil
	}

	var groups []DayGroup
	var current *DayGroup

	for _, msg := range msgs {
		day := truncateToDay(msg.CreatedAt)
		if current == nil || !day.Equal(current.Date) {
			groups = append(groups, DayGroup{
				Date:  day,
				Label: DateLabel(day, now),
			})
			current = &groups[len(groups)-1]
		}
		current.Messages = append(current.Messages, msg)
	}
	return groups
}

// DateLabel renders the divider text for a calendar day relative to now:
// "Today", "Yesterday", or a weekday+month+day form like "Monday, Jan 2".
func DateLabel(day, now time.Time) string {
	today := truncateToDay(now)
	switch truncateToDay(day) {
	case today:
		return "Today"
	case today.AddDate(0, 0, -1):
		return "Yesterday"
	}
	return day.Format("Monday, Jan 2")
}

func truncateToDay(t time.Time) time.Time {
	t = t.Local()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
