package ui

import (
	"fmt"
	"sort"
	"time"

	"github.com/johnfercher/maroto/pkg/color"
	"github.com/johnfercher/maroto/pkg/consts"
	"github.com/johnfercher/maroto/pkg/pdf"
	"github.com/johnfercher/maroto/pkg/props"

	"github.com/meikiegian-prog/SFree-Manager/internal/models"
	"github.com/meikiegian-prog/SFree-Manager/internal/service"
)

var tableGrid = []uint{3, 4, 3, 2}

// GeneratePDF writes a statistics report of finished projects, optionally
// grouped by completion period.
func GeneratePDF(path string, projects []models.Project, periodTitle, groupBy string) error {
	m := pdf.NewMaroto(consts.Portrait, consts.A4)
	m.SetPageMargins(20, 10, 20)

	m.RegisterHeader(func() {
		m.Row(10, func() {
			m.Col(12, func() {
				m.Text("SFree 项目统计报告", props.Text{
					Top:   3,
					Style: consts.Bold,
					Align: consts.Center,
					Size:  16,
				})
			})
		})
		m.Row(10, func() {
			m.Col(12, func() {
				m.Text(fmt.Sprintf("%s · 生成于 %s", periodTitle, time.Now().Format("2006-01-02")), props.Text{
					Top:   3,
					Align: consts.Center,
					Size:  12,
				})
			})
		})
	})

	headers := []string{"完成日期", "项目", "时长", "收入"}

	totalTime, totalIncome := service.Summarize(projects)

	if groupBy == service.GroupByNone {
		m.TableList(headers, projectRows(projects), tableProps())
	} else {
		groups := make(map[string][]models.Project)
		var keys []string
		for _, p := range projects {
			key := service.GetGroupKey(service.GroupKeyTime(p), groupBy)
			if _, exists := groups[key]; !exists {
				keys = append(keys, key)
			}
			groups[key] = append(groups[key], p)
		}
		sort.Sort(sort.Reverse(sort.StringSlice(keys)))

		for _, key := range keys {
			group := groups[key]
			groupTime, groupIncome := service.Summarize(group)

			title := service.GetGroupTitle(service.GroupKeyTime(group[0]), groupBy)
			m.Row(10, func() {
				m.Col(12, func() {
					m.Text(title, props.Text{
						Top:   5,
						Style: consts.Bold,
						Size:  12,
					})
				})
			})

			m.TableList(headers, projectRows(group), tableProps())

			m.Row(10, func() {
				m.Col(12, func() {
					m.Text(fmt.Sprintf("小计：%s / %.2f 元", models.FormatSeconds(groupTime), groupIncome), props.Text{
						Style: consts.Bold,
						Align: consts.Right,
						Size:  10,
					})
				})
			})
			m.Row(5, func() {})
		}
	}

	m.Row(20, func() {
		m.Col(12, func() {
			m.Text(fmt.Sprintf("总时长：%s    总收入：%.2f 元", models.FormatSeconds(totalTime), totalIncome), props.Text{
				Top:   10,
				Style: consts.Bold,
				Align: consts.Right,
				Size:  12,
			})
		})
	})

	return m.OutputFileAndClose(path)
}

func projectRows(projects []models.Project) [][]string {
	rows := make([][]string, 0, len(projects))
	for _, p := range projects {
		rows = append(rows, []string{
			service.GroupKeyTime(p).Format("2006-01-02"),
			p.Name,
			models.FormatSeconds(p.TotalTime),
			fmt.Sprintf("%.2f", p.Income),
		})
	}
	return rows
}

func tableProps() props.TableList {
	return props.TableList{
		HeaderProp: props.TableListContent{
			Size:      10,
			GridSizes: tableGrid,
		},
		ContentProp: props.TableListContent{
			Size:      10,
			GridSizes: tableGrid,
		},
		Align:                consts.Center,
		AlternatedBackground: &color.Color{Red: 240, Green: 240, Blue: 240},
		HeaderContentSpace:   1,
		Line:                 false,
	}
}
