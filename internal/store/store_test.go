package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/meikiegian-prog/SFree-Manager/internal/models"
)

func TestLoadMissingFilesReturnsEmpty(t *testing.T) {
	s := NewStorage(t.TempDir())

	projects, err := s.LoadProjects()
	if err != nil {
		t.Fatal(err)
	}
	if len(projects) != 0 {
		t.Errorf("expected empty catalog, got %d", len(projects))
	}

	sessions, err := s.LoadSessions()
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 0 {
		t.Errorf("expected no sessions, got %d", len(sessions))
	}

	streak, err := s.LoadStreak()
	if err != nil {
		t.Fatal(err)
	}
	if streak.StreakCount != 0 || streak.LastCompletionDate != "" {
		t.Errorf("expected zero streak state, got %+v", streak)
	}
}

func TestProjectsRoundTrip(t *testing.T) {
	s := NewStorage(t.TempDir())
	in := []models.Project{
		{
			ID:         "p1",
			Name:       "设计稿",
			Deadline:   "2025-07-01 18:00",
			TotalTime:  1234,
			Income:     500,
			Status:     models.StatusPaused,
			Priority:   2,
			CreateTime: time.Date(2025, 6, 1, 9, 0, 0, 0, time.Local),
		},
	}

	if err := s.SaveProjects(in); err != nil {
		t.Fatal(err)
	}
	out, err := s.LoadProjects()
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 {
		t.Fatalf("expected 1 project, got %d", len(out))
	}
	got := out[0]
	if got.ID != "p1" || got.Name != "设计稿" || got.TotalTime != 1234 || got.Priority != 2 {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if !got.CreateTime.Equal(in[0].CreateTime) {
		t.Errorf("create time mismatch: %v vs %v", got.CreateTime, in[0].CreateTime)
	}
}

func TestSessionsRoundTrip(t *testing.T) {
	s := NewStorage(t.TempDir())
	in := []models.TrackingSession{
		{
			ProjectID:   "p1",
			ProjectName: "设计稿",
			StartTime:   time.Date(2025, 6, 1, 9, 0, 0, 0, time.Local),
			Accumulated: 42,
		},
	}

	if err := s.SaveSessions(in); err != nil {
		t.Fatal(err)
	}
	out, err := s.LoadSessions()
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 || out[0].Accumulated != 42 || out[0].ProjectID != "p1" {
		t.Errorf("round trip mismatch: %+v", out)
	}
}

func TestStreakRoundTrip(t *testing.T) {
	s := NewStorage(t.TempDir())

	if err := s.SaveStreak(models.StreakState{LastCompletionDate: "2025-06-01", StreakCount: 3}); err != nil {
		t.Fatal(err)
	}
	streak, err := s.LoadStreak()
	if err != nil {
		t.Fatal(err)
	}
	if streak.StreakCount != 3 || streak.LastCompletionDate != "2025-06-01" {
		t.Errorf("round trip mismatch: %+v", streak)
	}
}

func TestCorruptFileSurfacesError(t *testing.T) {
	dir := t.TempDir()
	s := NewStorage(dir)
	if err := os.WriteFile(filepath.Join(dir, "projects.json"), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := s.LoadProjects(); err == nil {
		t.Error("expected an error for corrupt data")
	}
}

func TestMoveData(t *testing.T) {
	oldDir := t.TempDir()
	newDir := filepath.Join(t.TempDir(), "nested", "data")

	s := NewStorage(oldDir)
	if err := s.SaveProjects([]models.Project{{ID: "p1", Name: "设计稿"}}); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveStreak(models.StreakState{StreakCount: 2, LastCompletionDate: "2025-06-01"}); err != nil {
		t.Fatal(err)
	}

	if err := s.MoveData(newDir); err != nil {
		t.Fatal(err)
	}
	if s.BaseDir != newDir {
		t.Errorf("expected base dir switched, got %s", s.BaseDir)
	}

	projects, err := s.LoadProjects()
	if err != nil {
		t.Fatal(err)
	}
	if len(projects) != 1 || projects[0].ID != "p1" {
		t.Errorf("expected data readable from new folder, got %+v", projects)
	}
	streak, _ := s.LoadStreak()
	if streak.StreakCount != 2 {
		t.Errorf("expected streak moved, got %+v", streak)
	}
}

func TestUpdateBaseDirStartsEmpty(t *testing.T) {
	oldDir := t.TempDir()
	newDir := filepath.Join(t.TempDir(), "fresh")

	s := NewStorage(oldDir)
	if err := s.SaveProjects([]models.Project{{ID: "p1", Name: "设计稿"}}); err != nil {
		t.Fatal(err)
	}

	s.UpdateBaseDir(newDir)

	projects, err := s.LoadProjects()
	if err != nil {
		t.Fatal(err)
	}
	if len(projects) != 0 {
		t.Errorf("expected empty catalog in the new folder, got %d", len(projects))
	}
}

func TestDeleteAllDataKeepsAppState(t *testing.T) {
	s := NewStorage(t.TempDir())
	if err := s.SaveProjects([]models.Project{{ID: "p1", Name: "设计稿"}}); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveStreak(models.StreakState{StreakCount: 3}); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveAppState(AppState{LastRunVersion: "v1.1.0"}); err != nil {
		t.Fatal(err)
	}

	if err := s.DeleteAllData(); err != nil {
		t.Fatal(err)
	}

	projects, _ := s.LoadProjects()
	if len(projects) != 0 {
		t.Error("expected projects wiped")
	}
	streak, _ := s.LoadStreak()
	if streak.StreakCount != 0 {
		t.Error("expected streak wiped")
	}
	state, _ := s.LoadAppState()
	if state.LastRunVersion != "v1.1.0" {
		t.Errorf("expected app state kept, got %+v", state)
	}
}
