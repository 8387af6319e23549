package tracking

import (
	"testing"
	"time"

	"github.com/meikiegian-prog/SFree-Manager/internal/models"
)

func TestTimeoutOverBudget(t *testing.T) {
	e, _, fn, _ := newTestEngine()
	e.projects = []models.Project{
		{ID: "p1", Name: "设计稿", Status: models.StatusDoing, TotalTime: 3601},
	}

	e.CheckAllTimeouts()

	p, _ := e.Project("p1")
	if p.Status != models.StatusTimeout {
		t.Errorf("expected timeout status, got %s", p.Status)
	}
	if len(fn.timeouts) != 1 || fn.timeouts[0] != "设计稿" {
		t.Errorf("expected one timeout notification, got %v", fn.timeouts)
	}
}

func TestTimeoutBudgetBoundaryExclusive(t *testing.T) {
	e, _, fn, _ := newTestEngine()
	e.projects = []models.Project{
		{ID: "p1", Name: "设计稿", Status: models.StatusDoing, TotalTime: timeoutThreshold},
	}

	e.CheckAllTimeouts()

	// Exactly at the budget is still within it.
	if p, _ := e.Project("p1"); p.Status != models.StatusDoing {
		t.Errorf("expected doing at the boundary, got %s", p.Status)
	}
	if len(fn.timeouts) != 0 {
		t.Errorf("expected no notification, got %v", fn.timeouts)
	}
}

func TestTimeoutPastDeadline(t *testing.T) {
	e, _, _, clock := newTestEngine()
	past := clock.Now().Add(-time.Minute).Format(models.DeadlineLayout)
	e.projects = []models.Project{
		{ID: "p1", Name: "设计稿", Status: models.StatusDoing, Deadline: past},
	}

	e.CheckAllTimeouts()

	if p, _ := e.Project("p1"); p.Status != models.StatusTimeout {
		t.Errorf("expected timeout for a past deadline, got %s", p.Status)
	}
}

func TestTimeoutFoldsLiveSessionFirst(t *testing.T) {
	e, _, _, clock := newTestEngine()
	e.projects = []models.Project{
		{ID: "p1", Name: "设计稿", Status: models.StatusDoing, TotalTime: 3590},
	}

	e.StartSession("p1", "设计稿")
	clock.Advance(20 * time.Second)
	e.Tick()

	p, _ := e.Project("p1")
	if p.Status != models.StatusTimeout {
		t.Fatalf("expected timeout after crossing the budget, got %s", p.Status)
	}
	// The 20 live seconds must not be lost on the forced stop.
	if p.TotalTime != 3610 {
		t.Errorf("expected 3610s total, got %d", p.TotalTime)
	}
	if e.SessionCount() != 0 {
		t.Error("expected session force-stopped")
	}
}

func TestTimeoutRecovery(t *testing.T) {
	e, _, fn, clock := newTestEngine()
	past := clock.Now().Add(-time.Minute).Format(models.DeadlineLayout)
	e.projects = []models.Project{
		{ID: "p1", Name: "设计稿", Status: models.StatusDoing, Deadline: past},
	}

	e.CheckAllTimeouts()
	if p, _ := e.Project("p1"); p.Status != models.StatusTimeout {
		t.Fatalf("expected timeout first, got %s", p.Status)
	}

	// Moving the deadline forward clears the condition and the project
	// recovers without user intervention.
	future := clock.Now().Add(time.Hour).Format(models.DeadlineLayout)
	if err := e.EditProject("p1", ProjectPatch{Deadline: &future}); err != nil {
		t.Fatal(err)
	}
	if p, _ := e.Project("p1"); p.Status != models.StatusDoing {
		t.Errorf("expected recovery to doing, got %s", p.Status)
	}

	// Recovery is silent and the original notification fired only once.
	if len(fn.timeouts) != 1 {
		t.Errorf("expected exactly one timeout notification, got %v", fn.timeouts)
	}
}

func TestTimeoutNotificationNotRepeated(t *testing.T) {
	e, _, fn, _ := newTestEngine()
	e.projects = []models.Project{
		{ID: "p1", Name: "设计稿", Status: models.StatusDoing, TotalTime: 5000},
	}

	e.CheckAllTimeouts()
	e.CheckAllTimeouts()
	e.CheckAllTimeouts()

	if len(fn.timeouts) != 1 {
		t.Errorf("expected one notification for a sticky condition, got %d", len(fn.timeouts))
	}
}

func TestTimeoutExcludesFinished(t *testing.T) {
	e, _, fn, clock := newTestEngine()
	past := clock.Now().Add(-time.Hour).Format(models.DeadlineLayout)
	e.projects = []models.Project{
		{ID: "p1", Name: "设计稿", Status: models.StatusFinished, TotalTime: 9000, Deadline: past},
	}

	e.CheckAllTimeouts()

	if p, _ := e.Project("p1"); p.Status != models.StatusFinished {
		t.Errorf("finished is terminal, got %s", p.Status)
	}
	if len(fn.timeouts) != 0 {
		t.Errorf("expected no notification for finished work, got %v", fn.timeouts)
	}
}

func TestTimeoutMalformedDeadlineIgnored(t *testing.T) {
	e, _, _, _ := newTestEngine()
	e.projects = []models.Project{
		{ID: "p1", Name: "设计稿", Status: models.StatusDoing, Deadline: "someday"},
	}

	e.CheckAllTimeouts()

	if p, _ := e.Project("p1"); p.Status != models.StatusDoing {
		t.Errorf("expected malformed deadline treated as none, got %s", p.Status)
	}
}

func TestCheckProjectTimeoutSingle(t *testing.T) {
	e, _, _, _ := newTestEngine()
	e.projects = []models.Project{
		{ID: "p1", Name: "设计稿", Status: models.StatusDoing, TotalTime: 4000},
		{ID: "p2", Name: "翻译", Status: models.StatusDoing, TotalTime: 4000},
	}

	e.CheckProjectTimeout("p1")

	if p, _ := e.Project("p1"); p.Status != models.StatusTimeout {
		t.Errorf("expected p1 timed out, got %s", p.Status)
	}
	if p, _ := e.Project("p2"); p.Status != models.StatusDoing {
		t.Errorf("expected p2 untouched, got %s", p.Status)
	}
}
