package ui

import (
	"fmt"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/meikiegian-prog/SFree-Manager/internal/models"
	"github.com/meikiegian-prog/SFree-Manager/internal/service"
	"github.com/meikiegian-prog/SFree-Manager/internal/tracking"
)

// Reports is the statistics tab: finished projects filtered by period, with
// time and income shares, plus the PDF export.
type Reports struct {
	engine *tracking.Engine

	filterType string
	year       int
	month      int
	dimension  string
}

func NewReports(engine *tracking.Engine) *Reports {
	now := time.Now()
	return &Reports{
		engine:     engine,
		filterType: service.FilterAll,
		year:       now.Year(),
		month:      int(now.Month()),
		dimension:  service.DimensionTime,
	}
}

func (r *Reports) MakeUI() fyne.CanvasObject {
	content := container.NewStack()

	var refresh func()

	// Period filter.
	years := service.Years(time.Now())
	yearOptions := make([]string, len(years))
	for i, y := range years {
		yearOptions[i] = strconv.Itoa(y)
	}
	monthOptions := make([]string, 12)
	for i := range monthOptions {
		monthOptions[i] = strconv.Itoa(i + 1)
	}

	yearSelect := widget.NewSelect(yearOptions, func(s string) {
		r.year, _ = strconv.Atoi(s)
		refresh()
	})
	yearSelect.Selected = strconv.Itoa(r.year)
	yearSelect.Disable()

	monthSelect := widget.NewSelect(monthOptions, func(s string) {
		r.month, _ = strconv.Atoi(s)
		refresh()
	})
	monthSelect.Selected = strconv.Itoa(r.month)
	monthSelect.Disable()

	filterRadio := widget.NewRadioGroup([]string{"全部", "按年", "按月"}, func(s string) {
		switch s {
		case "按年":
			r.filterType = service.FilterYear
			yearSelect.Enable()
			monthSelect.Disable()
		case "按月":
			r.filterType = service.FilterMonth
			yearSelect.Enable()
			monthSelect.Enable()
		default:
			r.filterType = service.FilterAll
			yearSelect.Disable()
			monthSelect.Disable()
		}
		refresh()
	})
	filterRadio.Horizontal = true
	filterRadio.Selected = "全部"

	dimensionRadio := widget.NewRadioGroup([]string{"时间", "收入"}, func(s string) {
		if s == "收入" {
			r.dimension = service.DimensionIncome
		} else {
			r.dimension = service.DimensionTime
		}
		refresh()
	})
	dimensionRadio.Horizontal = true
	dimensionRadio.Selected = "时间"

	exportBtn := widget.NewButtonWithIcon("导出PDF", theme.DocumentSaveIcon(), func() {
		r.exportPDF()
	})

	refreshBtn := widget.NewButtonWithIcon("", theme.ViewRefreshIcon(), func() {
		refresh()
	})

	refresh = func() {
		content.Objects = []fyne.CanvasObject{r.render()}
		content.Refresh()
	}
	refresh()

	header := container.NewVBox(
		container.NewHBox(filterRadio, yearSelect, monthSelect, layout.NewSpacer(), refreshBtn),
		container.NewHBox(dimensionRadio, layout.NewSpacer(), exportBtn),
	)

	return container.NewBorder(header, nil, nil, nil, content)
}

func (r *Reports) render() fyne.CanvasObject {
	projects := r.engine.Projects()
	finished := service.FilterFinished(projects, r.filterType, r.year, r.month)
	trackingNow := service.Tracking(projects)

	totalTime, totalIncome := service.Summarize(finished)
	summary := widget.NewLabel(fmt.Sprintf(
		"%s已完成 %d 个项目 · 总时长 %s · 总收入 %.2f 元",
		r.periodTitle(), len(finished), models.FormatSeconds(totalTime), totalIncome,
	))
	summary.TextStyle = fyne.TextStyle{Bold: true}

	items := []fyne.CanvasObject{summary, widget.NewSeparator()}

	shares := service.Shares(finished, r.dimension)
	if len(shares) == 0 {
		items = append(items, widget.NewLabel("该时间段内没有数据。"))
	}
	for _, s := range shares {
		var value string
		if r.dimension == service.DimensionIncome {
			value = fmt.Sprintf("%.2f 元", s.Value)
		} else {
			value = models.FormatSeconds(int64(s.Value))
		}
		row := container.NewBorder(nil, nil,
			widget.NewLabel(s.Name), widget.NewLabel(fmt.Sprintf("%s（%.1f%%）", value, s.Percent)))
		bar := widget.NewProgressBar()
		bar.SetValue(s.Percent / 100)
		items = append(items, row, bar)
	}

	if len(trackingNow) > 0 {
		items = append(items, widget.NewSeparator(),
			widget.NewLabelWithStyle("追踪中", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}))
		for _, p := range trackingNow {
			elapsed, _ := r.engine.LiveElapsed(p.ID)
			items = append(items, widget.NewLabel(
				fmt.Sprintf("%s · %s", p.Name, models.FormatSeconds(p.TotalTime+elapsed))))
		}
	}

	return container.NewVScroll(container.NewVBox(items...))
}

func (r *Reports) periodTitle() string {
	switch r.filterType {
	case service.FilterYear:
		return fmt.Sprintf("%d年", r.year)
	case service.FilterMonth:
		return fmt.Sprintf("%d年%d月", r.year, r.month)
	}
	return "全部"
}

func (r *Reports) exportPDF() {
	parent := fyne.CurrentApp().Driver().AllWindows()[0]

	groupOptions := map[string]string{
		"不分组": service.GroupByNone,
		"按天":  service.GroupByDay,
		"按周":  service.GroupByWeek,
		"按月":  service.GroupByMonth,
	}
	groupSelect := widget.NewSelect([]string{"不分组", "按天", "按周", "按月"}, nil)
	groupSelect.SetSelected("不分组")

	dialog.ShowForm("导出报告", "导出", "取消",
		[]*widget.FormItem{widget.NewFormItem("分组", groupSelect)},
		func(ok bool) {
			if !ok {
				return
			}
			groupBy := groupOptions[groupSelect.Selected]

			dialog.ShowFileSave(func(writer fyne.URIWriteCloser, err error) {
				if err != nil {
					dialog.ShowError(err, parent)
					return
				}
				if writer == nil {
					return
				}
				path := writer.URI().Path()
				writer.Close()

				projects := service.FilterFinished(r.engine.Projects(), r.filterType, r.year, r.month)
				if err := GeneratePDF(path, projects, r.periodTitle(), groupBy); err != nil {
					dialog.ShowError(err, parent)
					return
				}
				dialog.ShowInformation("导出成功", "报告已保存到 "+path, parent)
			}, parent)
		}, parent)
}
