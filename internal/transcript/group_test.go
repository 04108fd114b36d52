package transcript

import (
	"testing"
	"time"

	"github.com/dnaweav/tradesman-ai-assist/internal/types"
)

func msgAt(t time.Time, content string) *types.Message {
	return &types.Message{
		ID:        types.NewMessageID(),
		Sender:    types.SenderUser,
		Content:   content,
		CreatedAt: t,
	}
}

func TestGroupEmptyTranscript(t *testing.T) {
	if got := Group(nil, time.Now()); got != nil {
		t.Errorf("Group(nil) = %v, want nil", got)
	}
}

func TestGroupBucketsByDay(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.Local)
	msgs := []*types.Message{
		msgAt(now.AddDate(0, 0, -2), "older a"),
		msgAt(now.AddDate(0, 0, -2).Add(time.Hour), "older b"),
		msgAt(now.AddDate(0, 0, -1), "yesterday"),
		msgAt(now.Add(-time.Hour), "today a"),
		msgAt(now, "today b"),
	}

	groups := Group(msgs, now)
	if len(groups) != 3 {
		t.Fatalf("got %d groups, want 3", len(groups))
	}

	if groups[0].Label != "Sunday, Mar 8" {
		t.Errorf("groups[0].Label = %q, want %q", groups[0].Label, "Sunday, Mar 8")
	}
	if groups[1].Label != "Yesterday" {
		t.Errorf("groups[1].Label = %q, want Yesterday", groups[1].Label)
	}
	if groups[2].Label != "Today" {
		t.Errorf("groups[2].Label = %q, want Today", groups[2].Label)
	}

	if len(groups[0].Messages) != 2 || len(groups[1].Messages) != 1 || len(groups[2].Messages) != 2 {
		t.Errorf("group sizes = %d/%d/%d, want 2/1/2",
			len(groups[0].Messages), len(groups[1].Messages), len(groups[2].Messages))
	}

	// Input order is preserved within groups.
	if groups[0].Messages[0].Content != "older a" || groups[0].Messages[1].Content != "older b" {
		t.Error("message order changed within a group")
	}
}

func TestGroupIsPure(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.Local)
	msgs := []*types.Message{
		msgAt(now.AddDate(0, 0, -1), "a"),
		msgAt(now, "b"),
	}

	first := Group(msgs, now)
	second := Group(msgs, now)
	if len(first) != len(second) {
		t.Fatalf("repeat grouping changed shape: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Label != second[i].Label || len(first[i].Messages) != len(second[i].Messages) {
			t.Errorf("group %d differs between runs", i)
		}
	}
}

func TestDateLabelBoundaries(t *testing.T) {
	now := time.Date(2026, 3, 10, 0, 30, 0, 0, time.Local)

	// Late last night is still Yesterday even though it is under an hour ago.
	lateLastNight := time.Date(2026, 3, 9, 23, 50, 0, 0, time.Local)
	if got := DateLabel(lateLastNight, now); got != "Yesterday" {
		t.Errorf("DateLabel(23:50 yesterday) = %q, want Yesterday", got)
	}

	if got := DateLabel(now, now); got != "Today" {
		t.Errorf("DateLabel(now) = %q, want Today", got)
	}

	twoDaysAgo := now.AddDate(0, 0, -2)
	if got := DateLabel(twoDaysAgo, now); got != "Sunday, Mar 8" {
		t.Errorf("DateLabel(two days ago) = %q, want %q", got, "Sunday, Mar 8")
	}
}
