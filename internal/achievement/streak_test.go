package achievement

import (
	"testing"
	"time"

	"github.com/meikiegian-prog/SFree-Manager/internal/models"
)

type memoryStore struct {
	state models.StreakState
	saves int
}

func (m *memoryStore) LoadStreak() (models.StreakState, error) {
	return m.state, nil
}

func (m *memoryStore) SaveStreak(s models.StreakState) error {
	m.state = s
	m.saves++
	return nil
}

func newTestTracker(state models.StreakState) (*Tracker, *memoryStore) {
	ms := &memoryStore{state: state}
	tr := NewTracker(ms)
	return tr, ms
}

func at(day int, hour int) time.Time {
	return time.Date(2025, 6, day, hour, 0, 0, 0, time.Local)
}

func TestFirstCompletionStartsStreak(t *testing.T) {
	tr, ms := newTestTracker(models.StreakState{})
	tr.Now = func() time.Time { return at(1, 14) }

	count, milestone := tr.RecordCompletion()
	if count != 1 || milestone {
		t.Errorf("expected count 1 no milestone, got %d %v", count, milestone)
	}
	if ms.state.LastCompletionDate != "2025-06-01" {
		t.Errorf("expected date persisted, got %q", ms.state.LastCompletionDate)
	}
}

func TestSameDayCompletionIdempotent(t *testing.T) {
	tr, ms := newTestTracker(models.StreakState{})
	tr.Now = func() time.Time { return at(1, 9) }
	tr.RecordCompletion()

	tr.Now = func() time.Time { return at(1, 22) }
	count, milestone := tr.RecordCompletion()

	if count != 1 || milestone {
		t.Errorf("expected count unchanged, got %d %v", count, milestone)
	}
	if ms.saves != 1 {
		t.Errorf("expected no second save, got %d", ms.saves)
	}
}

func TestConsecutiveDaysIncrement(t *testing.T) {
	tr, _ := newTestTracker(models.StreakState{})

	for day := 1; day <= 3; day++ {
		d := day
		tr.Now = func() time.Time { return at(d, 20) }
		count, _ := tr.RecordCompletion()
		if count != day {
			t.Fatalf("day %d: expected count %d, got %d", day, day, count)
		}
	}
}

func TestLateNextDayStillCounts(t *testing.T) {
	// Completing at 23:50 the next day is more than 24h after the previous
	// completion, but still the consecutive calendar day.
	tr, _ := newTestTracker(models.StreakState{})
	tr.Now = func() time.Time { return at(1, 8) }
	tr.RecordCompletion()

	tr.Now = func() time.Time { return time.Date(2025, 6, 2, 23, 50, 0, 0, time.Local) }
	count, _ := tr.RecordCompletion()
	if count != 2 {
		t.Errorf("expected consecutive day to count, got %d", count)
	}
}

func TestGapResetsStreak(t *testing.T) {
	tr, _ := newTestTracker(models.StreakState{LastCompletionDate: "2025-06-01", StreakCount: 5})

	// Skipping June 2 entirely breaks the chain.
	tr.Now = func() time.Time { return at(3, 10) }
	count, milestone := tr.RecordCompletion()
	if count != 1 || milestone {
		t.Errorf("expected reset to 1, got %d %v", count, milestone)
	}
}

func TestCorruptDateResets(t *testing.T) {
	tr, _ := newTestTracker(models.StreakState{LastCompletionDate: "not-a-date", StreakCount: 4})
	tr.Now = func() time.Time { return at(1, 10) }

	count, _ := tr.RecordCompletion()
	if count != 1 {
		t.Errorf("expected unparseable date to reset, got %d", count)
	}
}

func TestMilestoneFiresAtSeven(t *testing.T) {
	tr, _ := newTestTracker(models.StreakState{LastCompletionDate: "2025-06-06", StreakCount: 6})
	tr.Now = func() time.Time { return at(7, 12) }

	count, milestone := tr.RecordCompletion()
	if count != MilestoneStreak || !milestone {
		t.Errorf("expected milestone at %d, got %d %v", MilestoneStreak, count, milestone)
	}
}

func TestMilestoneDoesNotRepeat(t *testing.T) {
	tr, _ := newTestTracker(models.StreakState{LastCompletionDate: "2025-06-07", StreakCount: 7})
	tr.Now = func() time.Time { return at(8, 12) }

	count, milestone := tr.RecordCompletion()
	if count != 8 || milestone {
		t.Errorf("expected day 8 without milestone, got %d %v", count, milestone)
	}

	// Nor at the next multiple.
	tr.state = models.StreakState{LastCompletionDate: "2025-06-13", StreakCount: 13}
	tr.Now = func() time.Time { return at(14, 12) }
	count, milestone = tr.RecordCompletion()
	if count != 14 || milestone {
		t.Errorf("expected day 14 without milestone, got %d %v", count, milestone)
	}
}
