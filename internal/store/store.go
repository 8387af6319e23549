package store

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/meikiegian-prog/SFree-Manager/internal/models"
)

// File names inside the data folder. Each file is one key of the
// key-value store.
const (
	projectsFile = "projects.json"
	sessionsFile = "sessions.json"
	streakFile   = "streak.json"
	appStateFile = "appstate.json"
)

// AppState holds small cross-run flags that are not part of the catalog.
type AppState struct {
	LastRunVersion string `json:"last_run_version"`
}

// Storage is a JSON-file key-value store. Writes are best effort: callers
// keep their in-memory state authoritative and only log failures.
type Storage struct {
	BaseDir string
	mu      sync.Mutex
}

func NewStorage(baseDir string) *Storage {
	os.MkdirAll(baseDir, 0755)
	return &Storage{BaseDir: baseDir}
}

func (s *Storage) readJSON(name string, v interface{}) error {
	data, err := os.ReadFile(filepath.Join(s.BaseDir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil // absent key, leave v zero-valued
		}
		return err
	}
	return json.Unmarshal(data, v)
}

func (s *Storage) writeJSON(name string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.BaseDir, 0755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.BaseDir, name), data, 0644)
}

// LoadProjects returns the project catalog, empty if never saved.
func (s *Storage) LoadProjects() ([]models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var projects []models.Project
	if err := s.readJSON(projectsFile, &projects); err != nil {
		return nil, err
	}
	if projects == nil {
		projects = []models.Project{}
	}
	return projects, nil
}

func (s *Storage) SaveProjects(projects []models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeJSON(projectsFile, projects)
}

// LoadSessions returns the persisted session snapshots.
func (s *Storage) LoadSessions() ([]models.TrackingSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var sessions []models.TrackingSession
	if err := s.readJSON(sessionsFile, &sessions); err != nil {
		return nil, err
	}
	if sessions == nil {
		sessions = []models.TrackingSession{}
	}
	return sessions, nil
}

func (s *Storage) SaveSessions(sessions []models.TrackingSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeJSON(sessionsFile, sessions)
}

func (s *Storage) LoadStreak() (models.StreakState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var streak models.StreakState
	err := s.readJSON(streakFile, &streak)
	return streak, err
}

func (s *Storage) SaveStreak(streak models.StreakState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeJSON(streakFile, streak)
}

func (s *Storage) LoadAppState() (AppState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var state AppState
	err := s.readJSON(appStateFile, &state)
	return state, err
}

func (s *Storage) SaveAppState(state AppState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeJSON(appStateFile, state)
}

// UpdateBaseDir points the storage at a new folder without moving anything.
func (s *Storage) UpdateBaseDir(newDir string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.BaseDir = newDir
	os.MkdirAll(newDir, 0755)
}

// MoveData copies all data files into newDir and switches over to it.
func (s *Storage) MoveData(newDir string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(newDir, 0755); err != nil {
		return fmt.Errorf("failed to create data folder: %w", err)
	}
	for _, name := range []string{projectsFile, sessionsFile, streakFile, appStateFile} {
		src := filepath.Join(s.BaseDir, name)
		if _, err := os.Stat(src); os.IsNotExist(err) {
			continue
		}
		if err := copyFile(src, filepath.Join(newDir, name)); err != nil {
			return fmt.Errorf("failed to move %s: %w", name, err)
		}
	}
	s.BaseDir = newDir
	return nil
}

// DeleteAllData removes every data file. The app state file survives so the
// welcome dialog is not shown again.
func (s *Storage) DeleteAllData() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, name := range []string{projectsFile, sessionsFile, streakFile} {
		path := filepath.Join(s.BaseDir, name)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
