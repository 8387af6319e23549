package ui

import (
	_ "embed"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/meikiegian-prog/SFree-Manager/internal/store"
	"github.com/meikiegian-prog/SFree-Manager/internal/version"
)

//go:embed CHANGELOG.md
var changelogData string

// CheckVersion shows the release notes once after an update or first run.
func CheckVersion(w fyne.Window, s *store.Storage) {
	appState, _ := s.LoadAppState()

	currentVersion := version.Version
	if appState.LastRunVersion == currentVersion {
		return
	}

	showWelcomeDialog(w, currentVersion)
	appState.LastRunVersion = currentVersion
	s.SaveAppState(appState)
}

func showWelcomeDialog(w fyne.Window, v string) {
	notes := parseChangelog(v)
	if notes == "" {
		return
	}

	content := widget.NewRichTextFromMarkdown(notes)
	scroll := container.NewScroll(content)
	scroll.SetMinSize(fyne.NewSize(400, 300))

	dlg := dialog.NewCustom("新版本 "+v, "关闭", scroll, w)
	dlg.Resize(fyne.NewSize(500, 400))
	dlg.Show()
}

// parseChangelog extracts the section for version v: everything between its
// "## " heading and the next one.
func parseChangelog(v string) string {
	lines := strings.Split(changelogData, "\n")
	var extracted []string
	capture := false

	isVersionHeader := func(line, ver string) bool {
		if !strings.HasPrefix(line, "## ") {
			return false
		}
		return strings.Contains(line, "["+ver+"]") || strings.Contains(line, " "+ver+" ") || strings.HasSuffix(line, " "+ver)
	}

	for _, line := range lines {
		if strings.HasPrefix(line, "## ") {
			if capture {
				break
			}
			if isVersionHeader(line, v) || (!strings.HasPrefix(v, "v") && isVersionHeader(line, "v"+v)) {
				capture = true
				continue
			}
		}
		if capture {
			extracted = append(extracted, line)
		}
	}

	return strings.Join(extracted, "\n")
}
