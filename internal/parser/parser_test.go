package parser

import (
	"testing"
	"time"
)

// Anchor: Thursday 2025-02-27 10:00 local time.
var anchor = time.Date(2025, 2, 27, 10, 0, 0, 0, time.Local)

func TestParseAt(t *testing.T) {
	cases := []struct {
		name     string
		text     string
		wantName string
		wantDL   string
	}{
		{
			name:     "relative day with afternoon clock",
			text:     "明天下午3点开会",
			wantName: "开会",
			wantDL:   "2025-02-28 15:00",
		},
		{
			name:     "explicit datetime",
			text:     "2025-03-01 09:30 提交报告",
			wantName: "提交报告",
			wantDL:   "2025-03-01 09:30",
		},
		{
			name:     "no temporal cue",
			text:     "买菜",
			wantName: "买菜",
			wantDL:   "",
		},
		{
			name:     "day word with colon clock",
			text:     "后天3:00跑步",
			wantName: "跑步",
			wantDL:   "2025-03-01 03:00",
		},
		{
			name:     "bare colon clock defaults to today",
			text:     "3:00跑步",
			wantName: "跑步",
			wantDL:   "2025-02-27 03:00",
		},
		{
			name:     "days from now keeps current clock time",
			text:     "3天后交稿",
			wantName: "交稿",
			wantDL:   "2025-03-02 10:00",
		},
		{
			name:     "weeks from now",
			text:     "2周后复查",
			wantName: "复查",
			wantDL:   "2025-03-13 10:00",
		},
		{
			name:     "months from now with clock",
			text:     "1个月后9点续租",
			wantName: "续租",
			wantDL:   "2025-03-27 09:00",
		},
		{
			name:     "bare day word defaults to end of day",
			text:     "明天交房租",
			wantName: "交房租",
			wantDL:   "2025-02-28 23:59",
		},
		{
			name:     "evening qualifier bumps to 24h form",
			text:     "晚上8点健身",
			wantName: "健身",
			wantDL:   "2025-02-27 20:00",
		},
		{
			name:     "morning twelve becomes midnight",
			text:     "上午12点吃药",
			wantName: "吃药",
			wantDL:   "2025-02-27 00:00",
		},
		{
			name:     "half past",
			text:     "3点半喝咖啡",
			wantName: "喝咖啡",
			wantDL:   "2025-02-27 03:30",
		},
		{
			name:     "minutes with fen suffix",
			text:     "下午4点20分取快递",
			wantName: "取快递",
			wantDL:   "2025-02-27 16:20",
		},
		{
			name:     "stripping empties name",
			text:     "明天下午3点",
			wantName: DefaultName,
			wantDL:   "2025-02-28 15:00",
		},
		{
			name:     "out of range hour yields no deadline",
			text:     "下午25点开会",
			wantName: "下午25点开会",
			wantDL:   "",
		},
		{
			name:     "out of range explicit hour yields no deadline",
			text:     "2025-03-01 25:30 提交报告",
			wantName: "2025-03-01 25:30 提交报告",
			wantDL:   "",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseAt(tc.text, anchor)
			if got.Name != tc.wantName {
				t.Errorf("name: expected %q, got %q", tc.wantName, got.Name)
			}
			if got.Deadline != tc.wantDL {
				t.Errorf("deadline: expected %q, got %q", tc.wantDL, got.Deadline)
			}
		})
	}
}

// Rule order is part of the contract: a day word followed by a clock must be
// consumed by the day-word rule, never by the bare-clock rule.
func TestParseAt_RuleOrder(t *testing.T) {
	withDay := ParseAt("后天3:00", anchor)
	if withDay.Deadline != "2025-03-01 03:00" {
		t.Errorf("expected day-word rule to win, got %q", withDay.Deadline)
	}

	bare := ParseAt("3:00", anchor)
	if bare.Deadline != "2025-02-27 03:00" {
		t.Errorf("expected bare clock to default to today, got %q", bare.Deadline)
	}
}

func TestParseAt_InvalidTimeFallsThrough(t *testing.T) {
	// The day-word-plus-clock rule matches 明天30点 but rejects the hour;
	// the bare day-word rule further down still produces a deadline, and
	// only its own match is stripped from the name.
	got := ParseAt("明天30点交接", anchor)
	if got.Deadline != "2025-02-28 23:59" {
		t.Errorf("expected fall-through to bare day word, got %q", got.Deadline)
	}
	if got.Name != "30点交接" {
		t.Errorf("expected only the day word stripped, got %q", got.Name)
	}
}

func TestParse_UsesCurrentTime(t *testing.T) {
	got := Parse("买菜")
	if got.Deadline != "" || got.Name != "买菜" {
		t.Errorf("unexpected result: %+v", got)
	}
}
