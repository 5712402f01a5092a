package dashboard

import (
	"time"

	"github.com/tmsolberg/hrdeck/internal/domain"
)

// TimelineBar is one positioned row of the shared-axis layout. Percentages
// are relative to the axis; ProgressPct is relative to the bar's own width.
type TimelineBar struct {
	Item        domain.WorkItem
	LeftPct     float64
	WidthPct    float64
	ProgressPct float64
}

// TimelineLayout is the full projection: a shared date axis plus one bar per
// scheduled item. Empty marks the no-layout case; when set, no axis math was
// performed and the consumer renders a call-to-action instead.
type TimelineLayout struct {
	Empty    bool
	MinDate  time.Time
	MaxDate  time.Time
	SpanDays int
	Bars     []TimelineBar
}

// EligibleForTimeline returns only items carrying both a start and a due
// date. LayoutTimeline requires this pre-filter; feeding it a partial item is
// a programming error on the caller's side.
func EligibleForTimeline(items []domain.WorkItem) []domain.WorkItem {
	out := make([]domain.WorkItem, 0, len(items))
	for _, item := range items {
		if item.HasSchedule() {
			out = append(out, item)
		}
	}
	return out
}

// LayoutTimeline computes the shared axis and per-item bar geometry. An
// empty input yields Layout{Empty: true} without any division. An inverted
// range (start after due) clamps the bar width to zero rather than rejecting
// the item.
func LayoutTimeline(items []domain.WorkItem) TimelineLayout {
	if len(items) == 0 {
		return TimelineLayout{Empty: true}
	}

	minDate := *domain.NormalizeDate(items[0].StartDate)
	maxDate := *domain.NormalizeDate(items[0].DueDate)
	for _, item := range items[1:] {
		start := *domain.NormalizeDate(item.StartDate)
		due := *domain.NormalizeDate(item.DueDate)
		if start.Before(minDate) {
			minDate = start
		}
		if due.After(maxDate) {
			maxDate = due
		}
	}

	spanDays := daysBetween(minDate, maxDate)
	// A single-day axis would divide by zero; treat it as one day wide.
	axis := spanDays
	if axis < 1 {
		axis = 1
	}

	bars := make([]TimelineBar, 0, len(items))
	for _, item := range items {
		start := *domain.NormalizeDate(item.StartDate)
		due := *domain.NormalizeDate(item.DueDate)
		width := float64(daysBetween(start, due)) / float64(axis) * 100
		if width < 0 {
			width = 0
		}
		bars = append(bars, TimelineBar{
			Item:        item,
			LeftPct:     float64(daysBetween(minDate, start)) / float64(axis) * 100,
			WidthPct:    width,
			ProgressPct: float64(item.Progress),
		})
	}

	return TimelineLayout{
		MinDate:  minDate,
		MaxDate:  maxDate,
		SpanDays: spanDays,
		Bars:     bars,
	}
}

func daysBetween(a, b time.Time) int {
	return int(b.Sub(a) / (24 * time.Hour))
}
