// Package service holds the pure statistics helpers behind the reports
// view: period filtering of finished projects, time and income totals, and
// per-project shares.
package service

import (
	"fmt"
	"time"

	"github.com/meikiegian-prog/SFree-Manager/internal/models"
)

// Period filter kinds for the statistics view.
const (
	FilterAll   = "all"
	FilterYear  = "year"
	FilterMonth = "month"
)

// Statistics dimensions.
const (
	DimensionTime   = "time"
	DimensionIncome = "income"
)

// FirstStatsYear anchors the year picker.
const FirstStatsYear = 2024

// Share is one project's slice of the selected dimension.
type Share struct {
	Name    string
	Value   float64 // seconds for time, currency for income
	Percent float64
}

// Years lists the selectable statistics years, from FirstStatsYear through
// the current one.
func Years(now time.Time) []int {
	var years []int
	for y := FirstStatsYear; y <= now.Year(); y++ {
		years = append(years, y)
	}
	return years
}

// statsTime picks the timestamp a project is filed under: the finish time,
// falling back to the creation time.
func statsTime(p models.Project) time.Time {
	if !p.FinishTime.IsZero() {
		return p.FinishTime
	}
	return p.CreateTime
}

// FilterFinished keeps only finished projects inside the selected period.
func FilterFinished(projects []models.Project, filterType string, year, month int) []models.Project {
	var out []models.Project
	for _, p := range projects {
		if p.Status != models.StatusFinished {
			continue
		}
		t := statsTime(p)
		switch filterType {
		case FilterYear:
			if t.Year() != year {
				continue
			}
		case FilterMonth:
			if t.Year() != year || int(t.Month()) != month {
				continue
			}
		}
		out = append(out, p)
	}
	return out
}

// Tracking returns the projects currently being tracked, for the separate
// live section of the statistics view.
func Tracking(projects []models.Project) []models.Project {
	var out []models.Project
	for _, p := range projects {
		if p.Status == models.StatusTracking {
			out = append(out, p)
		}
	}
	return out
}

// Summarize totals tracked seconds and income over the given projects.
func Summarize(projects []models.Project) (totalTime int64, totalIncome float64) {
	for _, p := range projects {
		totalTime += p.TotalTime
		totalIncome += p.Income
	}
	return totalTime, totalIncome
}

// Shares computes each project's portion of the selected dimension,
// skipping zero-valued projects.
func Shares(projects []models.Project, dimension string) []Share {
	var total float64
	for _, p := range projects {
		total += dimensionValue(p, dimension)
	}

	var shares []Share
	for _, p := range projects {
		v := dimensionValue(p, dimension)
		if v <= 0 {
			continue
		}
		shares = append(shares, Share{
			Name:    p.Name,
			Value:   v,
			Percent: v / total * 100,
		})
	}
	return shares
}

func dimensionValue(p models.Project, dimension string) float64 {
	if dimension == DimensionIncome {
		return p.Income
	}
	return float64(p.TotalTime)
}

// Report grouping options for the PDF export.
const (
	GroupByNone  = "None"
	GroupByDay   = "Daily"
	GroupByWeek  = "Weekly"
	GroupByMonth = "Monthly"
)

// GetGroupKey buckets a timestamp for the selected grouping.
func GetGroupKey(t time.Time, groupBy string) string {
	switch groupBy {
	case GroupByDay:
		return t.Format("2006-01-02")
	case GroupByWeek:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	case GroupByMonth:
		return t.Format("2006-01")
	}
	return ""
}

// GetWeekRange returns the Monday and Sunday enclosing t.
func GetWeekRange(t time.Time) (time.Time, time.Time) {
	offset := int(t.Weekday())
	if offset == 0 {
		offset = 7
	}
	start := t.AddDate(0, 0, -offset+1)
	end := start.AddDate(0, 0, 6)
	return start, end
}

// GetGroupTitle renders a human heading for the bucket containing t.
func GetGroupTitle(t time.Time, groupBy string) string {
	switch groupBy {
	case GroupByDay:
		return t.Format("Monday, 02 Jan 2006")
	case GroupByWeek:
		start, end := GetWeekRange(t)
		return fmt.Sprintf("%s - %s", start.Format("Jan 02"), end.Format("Jan 02, 2006"))
	case GroupByMonth:
		return t.Format("January 2006")
	}
	return ""
}

// GroupKeyTime exposes the stats timestamp for grouping in reports.
func GroupKeyTime(p models.Project) time.Time {
	return statsTime(p)
}
