// Package parser turns free-form task text into a cleaned project name and
// an optional absolute deadline. An ordered list of pattern rules is tried
// top to bottom; the first rule whose pattern matches wins. A matched rule
// may still reject the time it extracted (hour out of range and so on), in
// which case parsing falls through to the next rule.
package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/meikiegian-prog/SFree-Manager/internal/models"
)

// DefaultName substitutes a project name when stripping the temporal phrase
// leaves nothing behind.
const DefaultName = "未命名任务"

// Result carries the cleaned name and the deadline in models.DeadlineLayout
// form. Deadline is empty when no rule matched.
type Result struct {
	Name     string
	Deadline string
}

// clock matches 3点 / 3点半 / 3点20分 / 15:00 / 15：00.
// Group 1 is the hour, group 2 is either 半 or the minutes.
const clock = `(\d{1,2})[点:：](半|\d{1,2})?分?`

type rule struct {
	re *regexp.Regexp
	// build converts the submatches into an absolute time. ok reports
	// whether the extracted values form a valid wall-clock time.
	build func(m []string, now time.Time) (time.Time, bool)
}

// Rule order is load-bearing: reordering changes the outcome for inputs
// matched by more than one pattern (such as 后天3:00 versus a bare 3:00).
var rules = []rule{
	// Explicit YYYY-MM-DD HH:mm.
	{
		re: regexp.MustCompile(`(\d{4})-(\d{1,2})-(\d{1,2})\s+(\d{1,2}):(\d{2})`),
		build: func(m []string, now time.Time) (time.Time, bool) {
			year := atoi(m[1])
			month := atoi(m[2])
			day := atoi(m[3])
			hour := atoi(m[4])
			minute := atoi(m[5])
			if month < 1 || month > 12 || day < 1 || day > 31 || hour > 23 || minute > 59 {
				return time.Time{}, false
			}
			return time.Date(year, time.Month(month), day, hour, minute, 0, 0, now.Location()), true
		},
	},
	// Relative day word plus clock time: 明天下午3点, 后天3:00.
	{
		re: regexp.MustCompile(`(今天|明天|后天|大后天)(上午|早上|中午|下午|晚上)?` + clock),
		build: func(m []string, now time.Time) (time.Time, bool) {
			hour, minute, ok := parseClock(m[3], m[4])
			if !ok {
				return time.Time{}, false
			}
			hour, ok = applyMeridiem(m[2], hour)
			if !ok {
				return time.Time{}, false
			}
			day := now.AddDate(0, 0, dayOffset(m[1]))
			return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, now.Location()), true
		},
	},
	// N units from now: 3天后, 2周后, 1个月后, optionally with a clock time.
	{
		re: regexp.MustCompile(`(\d+)个?(天|日|周|星期|月)之?后(?:` + clock + `)?`),
		build: func(m []string, now time.Time) (time.Time, bool) {
			n := atoi(m[1])
			var day time.Time
			switch m[2] {
			case "天", "日":
				day = now.AddDate(0, 0, n)
			case "周", "星期":
				day = now.AddDate(0, 0, 7*n)
			case "月":
				day = now.AddDate(0, n, 0)
			}
			if m[3] == "" {
				// No explicit time keeps the current wall-clock time.
				return day, true
			}
			hour, minute, ok := parseClock(m[3], m[4])
			if !ok || hour > 23 {
				return time.Time{}, false
			}
			return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, now.Location()), true
		},
	},
	// Bare relative day word: 明天交房租. Defaults to the end of that day.
	{
		re: regexp.MustCompile(`(今天|明天|后天|大后天)`),
		build: func(m []string, now time.Time) (time.Time, bool) {
			day := now.AddDate(0, 0, dayOffset(m[1]))
			return time.Date(day.Year(), day.Month(), day.Day(), 23, 59, 0, 0, now.Location()), true
		},
	},
	// Meridiem plus clock time, defaulting to today: 下午3点.
	{
		re: regexp.MustCompile(`(上午|早上|中午|下午|晚上)` + clock),
		build: func(m []string, now time.Time) (time.Time, bool) {
			hour, minute, ok := parseClock(m[2], m[3])
			if !ok {
				return time.Time{}, false
			}
			hour, ok = applyMeridiem(m[1], hour)
			if !ok {
				return time.Time{}, false
			}
			return time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location()), true
		},
	},
	// Bare clock time, defaulting to today: 15:00, 3点半.
	{
		re: regexp.MustCompile(clock),
		build: func(m []string, now time.Time) (time.Time, bool) {
			hour, minute, ok := parseClock(m[1], m[2])
			if !ok || hour > 23 {
				return time.Time{}, false
			}
			return time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location()), true
		},
	},
}

// Parse runs the rule cascade against text using the current time as the
// anchor for relative expressions.
func Parse(text string) Result {
	return ParseAt(text, time.Now())
}

// ParseAt is Parse with an explicit anchor time.
func ParseAt(text string, now time.Time) Result {
	trimmed := strings.TrimSpace(text)
	for _, r := range rules {
		loc := r.re.FindStringSubmatchIndex(trimmed)
		if loc == nil {
			continue
		}
		m := expand(trimmed, loc, r.re.NumSubexp())
		deadline, ok := r.build(m, now)
		if !ok {
			continue
		}
		name := cleanName(trimmed[:loc[0]] + trimmed[loc[1]:])
		if name == "" {
			name = DefaultName
		}
		return Result{Name: name, Deadline: deadline.Format(models.DeadlineLayout)}
	}
	return Result{Name: trimmed}
}

func expand(text string, loc []int, groups int) []string {
	m := make([]string, groups+1)
	for i := 0; i <= groups; i++ {
		if loc[2*i] >= 0 {
			m[i] = text[loc[2*i]:loc[2*i+1]]
		}
	}
	return m
}

func parseClock(hourStr, frag string) (hour, minute int, ok bool) {
	hour = atoi(hourStr)
	switch {
	case frag == "半":
		minute = 30
	case frag != "":
		minute = atoi(frag)
	}
	if hour > 23 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}

// applyMeridiem adjusts a 1-12 hour into 24-hour form. Afternoon words bump
// an hour below 12 by twelve; a morning 12 becomes 0.
func applyMeridiem(meridiem string, hour int) (int, bool) {
	switch meridiem {
	case "下午", "晚上", "中午":
		if hour < 12 {
			hour += 12
		}
	case "上午", "早上":
		if hour == 12 {
			hour = 0
		}
	}
	if hour > 23 {
		return 0, false
	}
	return hour, true
}

func dayOffset(word string) int {
	switch word {
	case "明天":
		return 1
	case "后天":
		return 2
	case "大后天":
		return 3
	}
	return 0
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

var nameTrim = regexp.MustCompile(`^[\s，。,、：:；;！!的]+|[\s，。,、：:；;！!]+$`)

func cleanName(s string) string {
	for {
		next := nameTrim.ReplaceAllString(s, "")
		if next == s {
			return strings.TrimSpace(next)
		}
		s = next
	}
}
