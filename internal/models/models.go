package models

import (
	"fmt"
	"time"
)

// DeadlineLayout is the canonical textual form for deadlines, both on disk
// and on screen. Local wall-clock, 24-hour, zero-padded.
const DeadlineLayout = "2006-01-02 15:04"

// DateLayout is the day-granularity form used by the streak tracker.
const DateLayout = "2006-01-02"

// Project status values.
const (
	StatusDoing    = "doing"
	StatusTracking = "tracking"
	StatusPaused   = "paused"
	StatusTimeout  = "timeout"
	StatusFinished = "finished"
)

// Project is a trackable unit of work with an optional deadline and income.
type Project struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Deadline   string    `json:"deadline"` // DeadlineLayout, empty if unset
	TotalTime  int64     `json:"total_time"`
	Income     float64   `json:"income"`
	Status     string    `json:"status"`
	Priority   int       `json:"priority"` // 1-5, 1 is highest, 0 if unset
	CreateTime time.Time `json:"create_time"`
	FinishTime time.Time `json:"finish_time"` // zero until finished
}

// DeadlineTime parses the deadline string. ok is false when the deadline is
// unset or malformed.
func (p *Project) DeadlineTime() (time.Time, bool) {
	if p.Deadline == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(DeadlineLayout, p.Deadline, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// TrackingSession is a live timing record bound to exactly one project.
// Only a restart-safe snapshot of these is persisted, for crash and
// suspend recovery.
type TrackingSession struct {
	ProjectID   string    `json:"project_id"`
	ProjectName string    `json:"project_name"` // denormalized for restore
	StartTime   time.Time `json:"start_time"`   // most recent resumption point
	Accumulated int64     `json:"accumulated"`  // seconds banked before StartTime
}

// StreakState tracks consecutive calendar days containing at least one
// project completion.
type StreakState struct {
	LastCompletionDate string `json:"last_completion_date"` // DateLayout
	StreakCount        int    `json:"streak_count"`
}

// FormatSeconds renders a second count as zero-padded HH:MM:SS.
func FormatSeconds(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
