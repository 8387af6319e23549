// Package achievement maintains the day-granularity completion streak:
// consecutive calendar days containing at least one finished project.
package achievement

import (
	"log"
	"time"

	"github.com/meikiegian-prog/SFree-Manager/internal/models"
)

// MilestoneStreak is the streak length that triggers the one-time milestone
// notification. Reaching multiples of it later does not re-trigger.
const MilestoneStreak = 7

// MilestoneKind identifies the milestone in the notification contract.
const MilestoneKind = "seven_day_streak"

// Store persists the streak state between runs.
type Store interface {
	LoadStreak() (models.StreakState, error)
	SaveStreak(models.StreakState) error
}

// Tracker records completions and derives the streak counter.
type Tracker struct {
	store Store
	state models.StreakState

	// Now is replaceable in tests.
	Now func() time.Time
}

func NewTracker(store Store) *Tracker {
	t := &Tracker{store: store, Now: time.Now}
	state, err := store.LoadStreak()
	if err != nil {
		log.Printf("achievement: failed to load streak state: %v", err)
	}
	t.state = state
	return t
}

// State returns the current streak state.
func (t *Tracker) State() models.StreakState {
	return t.state
}

// RecordCompletion notes that a project was completed right now and returns
// the updated streak count plus whether the milestone was just reached.
// A second completion on the same calendar day leaves the count unchanged.
func (t *Tracker) RecordCompletion() (count int, milestone bool) {
	now := t.Now()
	today := now.Format(models.DateLayout)

	if t.state.LastCompletionDate == today {
		return t.state.StreakCount, false
	}

	if t.gapExceeds24h(now) {
		t.state.StreakCount = 1
	} else {
		t.state.StreakCount++
	}
	t.state.LastCompletionDate = today

	if err := t.store.SaveStreak(t.state); err != nil {
		log.Printf("achievement: failed to save streak state: %v", err)
	}
	return t.state.StreakCount, t.state.StreakCount == MilestoneStreak
}

// gapExceeds24h reports whether the gap since the last completion day breaks
// the streak. Only the calendar date is stored, so the cutoff is measured
// from midnight of that day: anything past the following day resets.
func (t *Tracker) gapExceeds24h(now time.Time) bool {
	if t.state.LastCompletionDate == "" {
		return true
	}
	last, err := time.ParseInLocation(models.DateLayout, t.state.LastCompletionDate, now.Location())
	if err != nil {
		return true
	}
	return now.Sub(last) > 48*time.Hour
}
