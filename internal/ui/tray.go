package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
)

// SetupTray keeps the app resident: closing the window hides it and the
// tray menu offers the global actions.
func SetupTray(a fyne.App, w fyne.Window, icon fyne.Resource, d *Dashboard) {
	if desk, ok := a.(desktop.App); ok {
		m := fyne.NewMenu("SFree",
			fyne.NewMenuItem("显示窗口", func() {
				w.Show()
			}),
			fyne.NewMenuItem("全部暂停", func() {
				d.PauseAll()
			}),
			fyne.NewMenuItemSeparator(),
			fyne.NewMenuItem("退出", func() {
				d.PauseAll()
				a.Quit()
			}),
		)
		desk.SetSystemTrayMenu(m)
		desk.SetSystemTrayIcon(icon)
	}

	w.SetCloseIntercept(func() {
		w.Hide()
	})
}
