package tracking

import (
	"github.com/meikiegian-prog/SFree-Manager/internal/models"
)

// timeoutThreshold is the absolute overtime budget in seconds. It applies to
// every project, deadline or not, so work without a deadline still gets
// feedback.
const timeoutThreshold = 3600

// CheckProjectTimeout re-evaluates a single project against the timeout
// rules, as after a direct edit.
func (e *Engine) CheckProjectTimeout(projectID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if p := e.findProjectLocked(projectID); p != nil {
		e.checkProjectTimeoutLocked(p)
	}
}

// CheckAllTimeouts evaluates every project, as on launch.
func (e *Engine) CheckAllTimeouts() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.checkAllTimeoutsLocked()
}

func (e *Engine) checkAllTimeoutsLocked() {
	for i := range e.projects {
		e.checkProjectTimeoutLocked(&e.projects[i])
	}
}

// checkProjectTimeoutLocked drives the timeout state machine for one
// project. A project times out when its accumulated time exceeds the budget
// or its deadline has passed. The transition is not sticky: once the
// condition clears (deadline moved, time corrected) the project recovers to
// doing. Finished projects are excluded entirely.
func (e *Engine) checkProjectTimeoutLocked(p *models.Project) {
	if p.Status == models.StatusFinished {
		return
	}

	isTimeout := p.TotalTime > timeoutThreshold
	if !isTimeout {
		if deadline, ok := p.DeadlineTime(); ok && deadline.Before(e.now()) {
			isTimeout = true
		}
	}

	switch {
	case isTimeout && p.Status != models.StatusTimeout:
		// Fold in the live session first so no tracked time is lost, then
		// force the terminal-for-now status.
		e.pauseSessionLocked(p.ID, false)
		p.Status = models.StatusTimeout
		e.persistProjectsLocked()
		e.notifier.NotifyTimeout(p.Name)
	case !isTimeout && p.Status == models.StatusTimeout:
		p.Status = models.StatusDoing
		e.persistProjectsLocked()
	}
}
