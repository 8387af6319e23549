// Package tracking implements the time-tracking engine: concurrent timed
// sessions over a shared one-second tick, elapsed-time reconciliation across
// app suspension, and the timeout/recovery state machine.
package tracking

import (
	"log"
	"sync"
	"time"

	"github.com/meikiegian-prog/SFree-Manager/internal/models"
	"github.com/meikiegian-prog/SFree-Manager/internal/parser"

	"github.com/google/uuid"
)

// maxSessionSeconds caps live elapsed time at 7 days to guard against clock
// anomalies.
const maxSessionSeconds = 7 * 24 * 3600

// Store mirrors the engine state to disk. Writes are fire and forget: the
// in-memory state stays authoritative even when a write fails.
type Store interface {
	LoadProjects() ([]models.Project, error)
	SaveProjects([]models.Project) error
	LoadSessions() ([]models.TrackingSession, error)
	SaveSessions([]models.TrackingSession) error
}

// Notifier is the outbound presentation contract. All calls are fire and
// forget; the engine never consumes a return value.
type Notifier interface {
	NotifyTimeout(projectName string)
	NotifyMilestone(kind string)
	NotifyTick(projectID, formattedElapsed string)
}

// Achievements records project completions (the streak counter).
type Achievements interface {
	RecordCompletion() (count int, milestone bool)
}

// ProjectPatch carries direct edits from the project detail view. Nil fields
// are left untouched.
type ProjectPatch struct {
	Name     *string
	Deadline *string
	Income   *float64
}

// Engine owns the project catalog and the live session registry. All
// mutation happens synchronously under one lock, so two operations on the
// same project can never race.
type Engine struct {
	mu           sync.Mutex
	store        Store
	notifier     Notifier
	achievements Achievements

	projects    []models.Project
	sessions    map[string]*models.TrackingSession
	suspendedAt time.Time

	ticking  bool
	stopTick chan struct{}

	// now is replaceable in tests.
	now func() time.Time
	// noTicker disables the background tick goroutine in tests that drive
	// Tick by hand.
	noTicker bool
}

func NewEngine(store Store, notifier Notifier, achievements Achievements) *Engine {
	return &Engine{
		store:        store,
		notifier:     notifier,
		achievements: achievements,
		sessions:     make(map[string]*models.TrackingSession),
		now:          time.Now,
	}
}

// OnLaunch loads the catalog and the persisted session snapshots, purges
// sessions that no longer reference a valid project, and re-evaluates every
// project against the timeout rules.
func (e *Engine) OnLaunch() error {
	projects, err := e.store.LoadProjects()
	if err != nil {
		return err
	}
	sessions, err := e.store.LoadSessions()
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.projects = projects
	known := make(map[string]bool, len(projects))
	for _, p := range projects {
		known[p.ID] = true
	}
	e.restoreSessionsLocked(sessions, known)

	// A project can only be tracking while a live session exists for it.
	changed := false
	for i := range e.projects {
		p := &e.projects[i]
		if p.Status == models.StatusTracking && e.sessions[p.ID] == nil {
			p.Status = models.StatusPaused
			changed = true
		}
	}
	if changed {
		e.persistProjectsLocked()
	}

	e.checkAllTimeoutsLocked()

	if len(e.sessions) > 0 {
		e.startTickerLocked()
	}
	return nil
}

// restoreSessionsLocked keeps only snapshots that carry a project name and
// reference a known project, and persists the filtered result immediately so
// corrupt entries never resurface.
func (e *Engine) restoreSessionsLocked(persisted []models.TrackingSession, known map[string]bool) {
	dropped := 0
	for i := range persisted {
		s := persisted[i]
		if s.ProjectName == "" || !known[s.ProjectID] {
			dropped++
			continue
		}
		copied := s
		e.sessions[s.ProjectID] = &copied
	}
	if dropped > 0 {
		log.Printf("tracking: dropped %d invalid session snapshot(s) on restore", dropped)
	}
	e.persistSessionsLocked()
}

// StartSession begins tracking a project. An existing session for the same
// project is replaced and its banked time discarded: starting again means
// starting fresh.
func (e *Engine) StartSession(projectID, projectName string) {
	if projectID == "" || projectName == "" {
		log.Printf("tracking: start rejected, empty project id or name")
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	p := e.findProjectLocked(projectID)
	if p == nil {
		log.Printf("tracking: start rejected, unknown project %s", projectID)
		return
	}
	// Finished is terminal: its total must never advance again.
	if p.Status == models.StatusFinished {
		log.Printf("tracking: start rejected, project %s is finished", projectID)
		return
	}

	e.sessions[projectID] = &models.TrackingSession{
		ProjectID:   projectID,
		ProjectName: projectName,
		StartTime:   e.now(),
	}
	p.Status = models.StatusTracking

	e.persistProjectsLocked()
	e.persistSessionsLocked()
	e.startTickerLocked()
}

// PauseSession folds the session's elapsed time into the project's total and
// removes the session. With applyPausedStatus false the project status is
// left alone, for callers that are about to set a terminal status of their
// own. No-op when no session exists.
func (e *Engine) PauseSession(projectID string, applyPausedStatus bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pauseSessionLocked(projectID, applyPausedStatus)
}

func (e *Engine) pauseSessionLocked(projectID string, applyPausedStatus bool) {
	s, ok := e.sessions[projectID]
	if !ok {
		return
	}

	elapsed := e.liveElapsedLocked(s)
	delete(e.sessions, projectID)

	if p := e.findProjectLocked(projectID); p != nil {
		p.TotalTime += elapsed
		if applyPausedStatus {
			p.Status = models.StatusPaused
		}
		e.persistProjectsLocked()
	}
	e.persistSessionsLocked()

	if len(e.sessions) == 0 {
		e.stopTickerLocked()
	}
}

// liveElapsedLocked computes the seconds attributable to a session right
// now: the banked amount plus the wall-clock delta since the last
// resumption point, clamped to a sane range.
func (e *Engine) liveElapsedLocked(s *models.TrackingSession) int64 {
	delta := int64(e.now().Sub(s.StartTime) / time.Second)
	if delta < 0 {
		delta = 0
	}
	elapsed := s.Accumulated + delta
	if elapsed > maxSessionSeconds {
		elapsed = maxSessionSeconds
	}
	return elapsed
}

// Tick refreshes the live elapsed time of every session and re-evaluates the
// timeout rules. It never advances TotalTime; only PauseSession and the
// suspend/resume reconciliation do that.
func (e *Engine) Tick() {
	e.mu.Lock()
	defer e.mu.Unlock()

	for id, s := range e.sessions {
		e.notifier.NotifyTick(id, models.FormatSeconds(e.liveElapsedLocked(s)))
	}
	e.checkAllTimeoutsLocked()
}

// OnSuspend banks the running delta of every session and records the
// suspension point. Sessions stay alive: tracking continues logically while
// the app is in the background, even though no ticks fire.
func (e *Engine) OnSuspend() {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	for _, s := range e.sessions {
		delta := int64(now.Sub(s.StartTime) / time.Second)
		if delta < 0 {
			delta = 0
		}
		s.Accumulated += delta
		s.StartTime = now
	}
	e.suspendedAt = now
	e.persistSessionsLocked()
}

// OnResume credits the background interval to every session and resets the
// resumption point, so time spent suspended is fully accounted.
func (e *Engine) OnResume() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.suspendedAt.IsZero() {
		return
	}
	now := e.now()
	background := int64(now.Sub(e.suspendedAt) / time.Second)
	if background < 0 {
		background = 0
	}
	for _, s := range e.sessions {
		s.Accumulated += background
		s.StartTime = now
	}
	e.suspendedAt = time.Time{}
	e.persistSessionsLocked()
}

// CreateProject makes a project from free-form text, running it through the
// deadline parser first. Returns the new project for immediate display.
func (e *Engine) CreateProject(text string) (models.Project, bool) {
	parsed := parser.Parse(text)
	if parsed.Name == "" {
		log.Printf("tracking: create rejected, empty project name")
		return models.Project{}, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	p := models.Project{
		ID:         uuid.New().String(),
		Name:       parsed.Name,
		Deadline:   parsed.Deadline,
		Status:     models.StatusDoing,
		CreateTime: e.now(),
	}
	e.projects = append(e.projects, p)
	e.persistProjectsLocked()
	// Quick-entry text can parse to a deadline that has already passed;
	// evaluate immediately rather than waiting for the next tick.
	e.checkProjectTimeoutLocked(&e.projects[len(e.projects)-1])
	return e.projects[len(e.projects)-1], true
}

// ToggleTracking pauses a tracked project or starts tracking an untracked
// one. Finished projects are left alone.
func (e *Engine) ToggleTracking(projectID string) {
	e.mu.Lock()
	p := e.findProjectLocked(projectID)
	if p == nil {
		e.mu.Unlock()
		log.Printf("tracking: toggle rejected, unknown project %s", projectID)
		return
	}
	status, name := p.Status, p.Name
	e.mu.Unlock()

	switch status {
	case models.StatusFinished:
		return
	case models.StatusTracking:
		e.PauseSession(projectID, true)
	default:
		e.StartSession(projectID, name)
	}
}

// FinishProject marks a project finished, folding in any live session first.
// Finished is terminal: total time stops advancing and the status never
// changes again. The completion feeds the streak counter.
func (e *Engine) FinishProject(projectID string) {
	e.mu.Lock()

	p := e.findProjectLocked(projectID)
	if p == nil {
		e.mu.Unlock()
		log.Printf("tracking: finish rejected, unknown project %s", projectID)
		return
	}
	if p.Status == models.StatusFinished {
		e.mu.Unlock()
		return
	}

	e.pauseSessionLocked(projectID, false)
	p.Status = models.StatusFinished
	p.FinishTime = e.now()
	e.persistProjectsLocked()
	e.mu.Unlock()

	if e.achievements != nil {
		if _, milestone := e.achievements.RecordCompletion(); milestone {
			e.notifier.NotifyMilestone("seven_day_streak")
		}
	}
}

// DeleteProject force-stops any live session for the project before removing
// the record, so no orphaned session survives referencing a deleted id.
func (e *Engine) DeleteProject(projectID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.pauseSessionLocked(projectID, false)

	for i := range e.projects {
		if e.projects[i].ID == projectID {
			e.projects = append(e.projects[:i], e.projects[i+1:]...)
			e.persistProjectsLocked()
			return
		}
	}
	log.Printf("tracking: delete ignored, unknown project %s", projectID)
}

// EditProject applies direct edits and re-runs the timeout check, since a
// moved deadline can trigger either the timeout or the recovery transition.
func (e *Engine) EditProject(projectID string, patch ProjectPatch) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	p := e.findProjectLocked(projectID)
	if p == nil {
		log.Printf("tracking: edit ignored, unknown project %s", projectID)
		return nil
	}

	// Validate the whole patch before touching anything: a rejected edit
	// must leave the project exactly as it was.
	if patch.Deadline != nil && *patch.Deadline != "" {
		if _, err := time.ParseInLocation(models.DeadlineLayout, *patch.Deadline, time.Local); err != nil {
			log.Printf("tracking: edit rejected, bad deadline %q: %v", *patch.Deadline, err)
			return err
		}
	}

	if patch.Name != nil && *patch.Name != "" {
		p.Name = *patch.Name
		if s, ok := e.sessions[projectID]; ok {
			s.ProjectName = *patch.Name
			e.persistSessionsLocked()
		}
	}
	if patch.Deadline != nil {
		p.Deadline = *patch.Deadline
	}
	if patch.Income != nil && *patch.Income >= 0 {
		p.Income = *patch.Income
	}

	err := e.persistProjectsLocked()
	e.checkProjectTimeoutLocked(p)
	return err
}

// SetPriority stores a 1-5 priority, 1 highest. Out-of-range values are
// rejected.
func (e *Engine) SetPriority(projectID string, priority int) {
	if priority < 1 || priority > 5 {
		log.Printf("tracking: priority %d out of range for project %s", priority, projectID)
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	p := e.findProjectLocked(projectID)
	if p == nil {
		log.Printf("tracking: priority ignored, unknown project %s", projectID)
		return
	}
	p.Priority = priority
	e.persistProjectsLocked()
}

// PauseAll folds every live session into its project, as when quitting from
// the tray.
func (e *Engine) PauseAll() {
	e.mu.Lock()
	defer e.mu.Unlock()

	for id := range e.sessions {
		e.pauseSessionLocked(id, true)
	}
}

// Projects returns a snapshot copy of the catalog.
func (e *Engine) Projects() []models.Project {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]models.Project, len(e.projects))
	copy(out, e.projects)
	return out
}

// Project returns a snapshot of a single project.
func (e *Engine) Project(projectID string) (models.Project, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if p := e.findProjectLocked(projectID); p != nil {
		return *p, true
	}
	return models.Project{}, false
}

// LiveElapsed returns the seconds currently attributable to the project's
// session, or false when the project is not being tracked.
func (e *Engine) LiveElapsed(projectID string) (int64, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.sessions[projectID]
	if !ok {
		return 0, false
	}
	return e.liveElapsedLocked(s), true
}

// SessionCount reports how many projects are being tracked at once.
func (e *Engine) SessionCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.sessions)
}

func (e *Engine) findProjectLocked(projectID string) *models.Project {
	for i := range e.projects {
		if e.projects[i].ID == projectID {
			return &e.projects[i]
		}
	}
	return nil
}

func (e *Engine) persistProjectsLocked() error {
	if err := e.store.SaveProjects(e.projects); err != nil {
		log.Printf("tracking: failed to persist projects: %v", err)
		return err
	}
	return nil
}

func (e *Engine) persistSessionsLocked() error {
	snapshot := make([]models.TrackingSession, 0, len(e.sessions))
	for _, s := range e.sessions {
		snapshot = append(snapshot, *s)
	}
	if err := e.store.SaveSessions(snapshot); err != nil {
		log.Printf("tracking: failed to persist sessions: %v", err)
		return err
	}
	return nil
}

// startTickerLocked spins up the shared one-second tick driver. One driver
// serves every session; it is torn down entirely once the registry drains.
func (e *Engine) startTickerLocked() {
	if e.ticking || e.noTicker {
		return
	}
	e.ticking = true
	e.stopTick = make(chan struct{})

	go func(stop chan struct{}) {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				e.Tick()
			}
		}
	}(e.stopTick)
}

func (e *Engine) stopTickerLocked() {
	if !e.ticking {
		return
	}
	e.ticking = false
	close(e.stopTick)
}
