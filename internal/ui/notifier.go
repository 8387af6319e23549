package ui

import (
	"fmt"

	"fyne.io/fyne/v2"
)

// Notifier delivers the engine's outbound notifications through the desktop
// notification center. Tick updates are routed to whichever view registered
// for them.
type Notifier struct {
	app fyne.App

	// OnTick receives the per-second elapsed refresh for a tracked project.
	// Set by the dashboard; may be nil.
	OnTick func(projectID, formattedElapsed string)
}

func NewNotifier(a fyne.App) *Notifier {
	return &Notifier{app: a}
}

func (n *Notifier) NotifyTimeout(projectName string) {
	n.app.SendNotification(fyne.NewNotification(
		"进度超时",
		fmt.Sprintf("【%s】进度超时！", projectName),
	))
}

func (n *Notifier) NotifyMilestone(kind string) {
	var content string
	switch kind {
	case "seven_day_streak":
		content = "连续7天完成任务，解锁「高效达人」勋章！"
	default:
		content = "解锁新勋章，奖励自己一杯咖啡吧～"
	}
	n.app.SendNotification(fyne.NewNotification("🎉 成就解锁", content))
}

func (n *Notifier) NotifyTick(projectID, formattedElapsed string) {
	if n.OnTick != nil {
		n.OnTick(projectID, formattedElapsed)
	}
}
