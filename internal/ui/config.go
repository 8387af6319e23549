package ui

import (
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/spf13/viper"

	"github.com/meikiegian-prog/SFree-Manager/internal/store"
)

// Config is the settings tab: data folder location and destructive actions.
type Config struct {
	window             fyne.Window
	storage            *store.Storage
	userConfigFilePath string
}

func NewConfig(w fyne.Window, s *store.Storage, userConfigFilePath string) *Config {
	return &Config{window: w, storage: s, userConfigFilePath: userConfigFilePath}
}

func (c *Config) MakeUI() fyne.CanvasObject {
	entry := widget.NewEntry()
	entry.SetText(viper.GetString("data_folder"))

	browseBtn := widget.NewButtonWithIcon("", theme.FolderOpenIcon(), func() {
		dialog.NewFolderOpen(func(uri fyne.ListableURI, err error) {
			if err != nil {
				dialog.ShowError(err, c.window)
				return
			}
			if uri == nil {
				return
			}
			entry.SetText(uri.Path())
		}, c.window).Show()
	})

	folderContainer := container.NewBorder(nil, nil, nil, browseBtn, entry)

	saveBtn := widget.NewButton("保存设置", func() {
		newDataFolder := entry.Text
		if newDataFolder == "" {
			dialog.ShowError(filepath.ErrBadPattern, c.window)
			return
		}

		oldDataFolder := c.storage.BaseDir

		saveConfig := func() {
			viper.Set("data_folder", newDataFolder)
			if err := viper.WriteConfigAs(c.userConfigFilePath); err != nil {
				dialog.ShowError(err, c.window)
				return
			}
			dialog.ShowInformation("成功", "设置已保存", c.window)
		}

		if newDataFolder != oldDataFolder {
			var d dialog.Dialog

			moveBtn := widget.NewButton("迁移现有数据", func() {
				d.Hide()
				if err := c.storage.MoveData(newDataFolder); err != nil {
					dialog.ShowError(err, c.window)
					return
				}
				saveConfig()
			})

			freshBtn := widget.NewButton("从空数据开始", func() {
				d.Hide()
				c.storage.UpdateBaseDir(newDataFolder)
				saveConfig()
			})

			content := container.NewVBox(
				widget.NewLabel("数据目录已更改，现有数据如何处理？"),
				container.NewHBox(moveBtn, freshBtn),
			)
			d = dialog.NewCustom("数据目录更改", "取消", content, c.window)
			d.Show()
			return
		}

		saveConfig()
	})

	eraseBtn := widget.NewButtonWithIcon("清空全部数据", theme.DeleteIcon(), func() {
		dialog.ShowConfirm("清空全部数据", "项目、会话和打卡记录将被删除，不可恢复。是否确认？", func(confirmed bool) {
			if !confirmed {
				return
			}
			if err := c.storage.DeleteAllData(); err != nil {
				dialog.ShowError(err, c.window)
			} else {
				dialog.ShowInformation("成功", "数据已清空，重启后生效", c.window)
			}
		}, c.window)
	})
	eraseBtn.Importance = widget.DangerImportance

	quitBtn := widget.NewButtonWithIcon("退出应用", theme.LogoutIcon(), func() {
		fyne.CurrentApp().Quit()
	})

	return container.NewVBox(
		widget.NewLabel("设置"),
		widget.NewForm(
			widget.NewFormItem("数据目录", folderContainer),
		),
		saveBtn,
		widget.NewSeparator(),
		eraseBtn,
		widget.NewSeparator(),
		quitBtn,
	)
}
