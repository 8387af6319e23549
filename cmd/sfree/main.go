package main

import (
	_ "embed" // Required for go:embed

	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/viper"

	"github.com/meikiegian-prog/SFree-Manager/internal/achievement"
	"github.com/meikiegian-prog/SFree-Manager/internal/store"
	"github.com/meikiegian-prog/SFree-Manager/internal/tracking"
	"github.com/meikiegian-prog/SFree-Manager/internal/ui"
	"github.com/meikiegian-prog/SFree-Manager/internal/updater"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
)

//go:embed Icon.png
var embeddedIconBytes []byte

var userConfigFilePath string

func setupViper() error {
	viper.SetConfigName("sfree")
	viper.SetConfigType("yaml")

	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("error getting user home directory: %w", err)
		}
		if runtime.GOOS == "windows" {
			configHome = filepath.Join(homeDir, "AppData", "Roaming")
		} else {
			configHome = filepath.Join(homeDir, ".config")
		}
	}

	userConfigFilePath = filepath.Join(configHome, "sfree", "sfree.yml")
	viper.SetConfigFile(userConfigFilePath)

	if err := os.MkdirAll(filepath.Dir(userConfigFilePath), 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	viper.SetDefault("data_folder", filepath.Join(filepath.Dir(userConfigFilePath), "data"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok || os.IsNotExist(err) {
			log.Println("Config file not found; creating one with default values")
			if err := viper.WriteConfigAs(userConfigFilePath); err != nil {
				return fmt.Errorf("error creating config file: %w", err)
			}
		} else {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}

func main() {
	os.Setenv("FYNE_SCALE", "auto")

	go func() {
		if err := updater.SelfUpdate("meikiegian-prog", "SFree-Manager"); err != nil {
			log.Printf("Self-update failed: %v", err)
		}
	}()

	a := app.NewWithID("com.meikiegian.sfree")
	a.Settings().SetTheme(theme.DarkTheme())

	iconResource := fyne.NewStaticResource("sfree.png", embeddedIconBytes)
	a.SetIcon(iconResource)

	w := a.NewWindow("SFree 时间追踪")
	w.Resize(fyne.NewSize(420, 640))

	if err := setupViper(); err != nil {
		dialog.ShowError(err, w)
		w.ShowAndRun()
		return
	}

	storage := store.NewStorage(viper.GetString("data_folder"))
	streak := achievement.NewTracker(storage)
	notifier := ui.NewNotifier(a)
	engine := tracking.NewEngine(storage, notifier, streak)

	if err := engine.OnLaunch(); err != nil {
		log.Printf("Failed to load saved state: %v", err)
	}

	dashboard := ui.NewDashboard(engine, streak)
	dashboard.BindTicker(notifier)
	reports := ui.NewReports(engine)
	configUI := ui.NewConfig(w, storage, userConfigFilePath)

	tabs := container.NewAppTabs(
		container.NewTabItem("追踪", dashboard.MakeUI()),
		container.NewTabItem("统计", reports.MakeUI()),
		container.NewTabItem("设置", configUI.MakeUI()),
	)
	w.SetContent(tabs)

	// No ticks fire while the app is in the background; the engine banks
	// elapsed time on the way out and reconciles it on the way back.
	a.Lifecycle().SetOnExitedForeground(engine.OnSuspend)
	a.Lifecycle().SetOnEnteredForeground(func() {
		engine.OnResume()
		dashboard.Refresh()
	})

	ui.SetupTray(a, w, iconResource, dashboard)
	ui.CheckVersion(w, storage)

	w.ShowAndRun()
}
