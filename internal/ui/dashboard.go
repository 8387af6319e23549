package ui

import (
	"fmt"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/data/binding"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/meikiegian-prog/SFree-Manager/internal/achievement"
	"github.com/meikiegian-prog/SFree-Manager/internal/models"
	"github.com/meikiegian-prog/SFree-Manager/internal/tracking"
)

// Dashboard is the tracker tab: quick entry, the project card list and the
// live elapsed readout.
type Dashboard struct {
	engine *tracking.Engine
	streak *achievement.Tracker

	summaryData binding.String
	projects    []models.Project
	elapsed     map[string]string // projectID -> formatted live elapsed
	refreshList func()
}

func NewDashboard(engine *tracking.Engine, streak *achievement.Tracker) *Dashboard {
	return &Dashboard{
		engine:      engine,
		streak:      streak,
		summaryData: binding.NewString(),
		elapsed:     make(map[string]string),
	}
}

// BindTicker routes the engine's per-second tick notifications into the
// card list. Updates land on the UI thread via fyne.Do.
func (d *Dashboard) BindTicker(n *Notifier) {
	n.OnTick = func(projectID, formattedElapsed string) {
		fyne.Do(func() {
			d.elapsed[projectID] = formattedElapsed
			if d.refreshList != nil {
				d.refreshList()
			}
		})
	}
}

func (d *Dashboard) MakeUI() fyne.CanvasObject {
	summaryLabel := widget.NewLabelWithData(d.summaryData)
	summaryLabel.Alignment = fyne.TextAlignCenter

	// Quick entry: free-form text, the deadline parser does the rest.
	entry := widget.NewEntry()
	entry.PlaceHolder = "快速记录（如：明天下午3点开会）"

	addBtn := widget.NewButtonWithIcon("记录", theme.ContentAddIcon(), func() {
		if entry.Text == "" {
			return
		}
		if p, ok := d.engine.CreateProject(entry.Text); ok {
			entry.SetText("")
			d.refreshList()
			if p.Deadline != "" {
				d.showToast(fmt.Sprintf("已创建「%s」，截止 %s", p.Name, p.Deadline))
			}
		}
	})
	entry.OnSubmitted = func(string) { addBtn.OnTapped() }

	list := widget.NewList(
		func() int { return len(d.projects) },
		func() fyne.CanvasObject {
			return container.NewBorder(nil, nil, nil,
				container.NewHBox(
					widget.NewLabel("00:00:00"),
					widget.NewButtonWithIcon("", theme.MediaPlayIcon(), nil),
					widget.NewButtonWithIcon("", theme.ConfirmIcon(), nil),
					widget.NewButtonWithIcon("", theme.DocumentCreateIcon(), nil),
					widget.NewButtonWithIcon("", theme.DeleteIcon(), nil),
				),
				container.NewVBox(
					widget.NewLabelWithStyle("Name", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
					widget.NewLabel("Status"),
				))
		},
		func(i int, o fyne.CanvasObject) {
			p := d.projects[i]

			box := o.(*fyne.Container)
			info := box.Objects[0].(*fyne.Container)
			nameLabel := info.Objects[0].(*widget.Label)
			statusLabel := info.Objects[1].(*widget.Label)
			right := box.Objects[1].(*fyne.Container)
			timeLabel := right.Objects[0].(*widget.Label)
			toggleBtn := right.Objects[1].(*widget.Button)
			finishBtn := right.Objects[2].(*widget.Button)
			editBtn := right.Objects[3].(*widget.Button)
			deleteBtn := right.Objects[4].(*widget.Button)

			nameLabel.SetText(p.Name)
			statusLabel.Importance = statusImportance(p)
			statusLabel.SetText(statusLine(p, time.Now()))

			if p.Status == models.StatusTracking {
				if s, ok := d.elapsed[p.ID]; ok {
					timeLabel.SetText(s)
				} else {
					timeLabel.SetText(models.FormatSeconds(0))
				}
				timeLabel.TextStyle = fyne.TextStyle{Italic: true}
				toggleBtn.SetIcon(theme.MediaPauseIcon())
			} else {
				timeLabel.SetText(models.FormatSeconds(p.TotalTime))
				timeLabel.TextStyle = fyne.TextStyle{}
				toggleBtn.SetIcon(theme.MediaPlayIcon())
			}

			if p.Status == models.StatusFinished {
				toggleBtn.Disable()
				finishBtn.Disable()
			} else {
				toggleBtn.Enable()
				finishBtn.Enable()
			}

			toggleBtn.OnTapped = func() {
				d.engine.ToggleTracking(p.ID)
				d.refreshList()
			}
			finishBtn.OnTapped = func() {
				d.engine.FinishProject(p.ID)
				d.refreshList()
				d.showCelebration()
			}
			editBtn.OnTapped = func() {
				d.showEditDialog(p)
			}
			deleteBtn.OnTapped = func() {
				dialog.ShowConfirm("确认删除", "删除后数据不可恢复，是否确认？", func(confirmed bool) {
					if !confirmed {
						return
					}
					d.engine.DeleteProject(p.ID)
					d.refreshList()
				}, d.parentWindow())
			}
		},
	)

	d.refreshList = func() {
		d.projects = d.engine.Projects()
		d.updateSummary()
		list.Refresh()
	}
	d.refreshList()

	return container.NewBorder(
		container.NewVBox(summaryLabel, container.NewBorder(nil, nil, nil, addBtn, entry)),
		nil, nil, nil,
		list,
	)
}

// Refresh reloads the card list, for callers outside this tab.
func (d *Dashboard) Refresh() {
	if d.refreshList != nil {
		fyne.Do(d.refreshList)
	}
}

// PauseAll stops every live session, used from the system tray.
func (d *Dashboard) PauseAll() {
	d.engine.PauseAll()
	d.Refresh()
}

func (d *Dashboard) updateSummary() {
	count := d.engine.SessionCount()
	streak := d.streak.State().StreakCount
	d.summaryData.Set(fmt.Sprintf("追踪中 %d 个项目 · 连续完成 %d 天", count, streak))
}

func (d *Dashboard) showEditDialog(p models.Project) {
	nameEntry := widget.NewEntry()
	nameEntry.SetText(p.Name)

	deadlineEntry := widget.NewEntry()
	deadlineEntry.SetText(p.Deadline)
	deadlineEntry.PlaceHolder = "2006-01-02 15:04（留空表示无截止）"

	incomeEntry := widget.NewEntry()
	incomeEntry.SetText(strconv.FormatFloat(p.Income, 'f', -1, 64))

	priorityOptions := []string{"1", "2", "3", "4", "5"}
	prioritySelect := widget.NewSelect(priorityOptions, nil)
	if p.Priority >= 1 && p.Priority <= 5 {
		prioritySelect.SetSelected(strconv.Itoa(p.Priority))
	}

	items := []*widget.FormItem{
		widget.NewFormItem("名称", nameEntry),
		widget.NewFormItem("截止时间", deadlineEntry),
		widget.NewFormItem("收入", incomeEntry),
		widget.NewFormItem("优先级", prioritySelect),
	}

	dlg := dialog.NewForm("编辑项目", "保存", "取消", items, func(ok bool) {
		if !ok {
			return
		}

		name := nameEntry.Text
		deadline := deadlineEntry.Text
		income, err := strconv.ParseFloat(incomeEntry.Text, 64)
		if err != nil || income < 0 {
			income = p.Income
		}

		patch := tracking.ProjectPatch{Name: &name, Deadline: &deadline, Income: &income}
		if err := d.engine.EditProject(p.ID, patch); err != nil {
			dialog.ShowError(err, d.parentWindow())
			return
		}
		if prioritySelect.Selected != "" {
			if priority, err := strconv.Atoi(prioritySelect.Selected); err == nil {
				d.engine.SetPriority(p.ID, priority)
			}
		}
		d.refreshList()
	}, d.parentWindow())
	dlg.Resize(fyne.NewSize(400, dlg.MinSize().Height))
	dlg.Show()
}

func (d *Dashboard) showCelebration() {
	dialog.ShowInformation("🎉 任务完成！", "解锁「高效达人」勋章，奖励自己一杯咖啡吧～", d.parentWindow())
}

func (d *Dashboard) showToast(text string) {
	dialog.ShowInformation("提示", text, d.parentWindow())
}

func (d *Dashboard) parentWindow() fyne.Window {
	return fyne.CurrentApp().Driver().AllWindows()[0]
}

func statusText(status string) string {
	switch status {
	case models.StatusDoing:
		return "进行中"
	case models.StatusTracking:
		return "追踪中"
	case models.StatusPaused:
		return "已暂停"
	case models.StatusTimeout:
		return "已超时"
	case models.StatusFinished:
		return "已完成"
	}
	return status
}

// statusLine renders the status plus the deadline countdown when one is set.
func statusLine(p models.Project, now time.Time) string {
	text := statusText(p.Status)
	if remaining := remainingText(p, now); remaining != "" {
		text += " · " + remaining
	}
	return text
}

// remainingText mirrors the countdown granularity of the tracking card:
// days+hours, then hours+minutes, then minutes+seconds.
func remainingText(p models.Project, now time.Time) string {
	deadline, ok := p.DeadlineTime()
	if !ok {
		return ""
	}
	diff := deadline.Sub(now)
	if diff <= 0 {
		return "已过期"
	}

	days := int(diff.Hours()) / 24
	hours := int(diff.Hours()) % 24
	minutes := int(diff.Minutes()) % 60
	seconds := int(diff.Seconds()) % 60

	switch {
	case days > 0:
		return fmt.Sprintf("剩%d天%d小时", days, hours)
	case hours > 0:
		return fmt.Sprintf("剩%d小时%d分", hours, minutes)
	default:
		return fmt.Sprintf("剩%d分%d秒", minutes, seconds)
	}
}

// statusImportance maps deadline urgency onto label colors: green for a week
// or more of slack, then orange, then red.
func statusImportance(p models.Project) widget.Importance {
	if p.Status == models.StatusFinished {
		return widget.LowImportance
	}
	if p.Status == models.StatusTimeout {
		return widget.DangerImportance
	}
	deadline, ok := p.DeadlineTime()
	if !ok {
		return widget.MediumImportance
	}

	remainingDays := int(time.Until(deadline).Hours() / 24)
	switch {
	case remainingDays >= 7:
		return widget.SuccessImportance
	case remainingDays >= 3:
		return widget.WarningImportance
	default:
		return widget.DangerImportance
	}
}
