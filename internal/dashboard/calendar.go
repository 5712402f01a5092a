package dashboard

import (
	"time"

	"github.com/tmsolberg/hrdeck/internal/domain"
)

// calendar grid shape: 6 weeks of 7 days, and the per-cell visible item cap.
const (
	CalendarRows     = 6
	CalendarCols     = 7
	CalendarCells    = CalendarRows * CalendarCols
	calendarCapacity = 3
)

// CalendarCell is one day of the month grid.
type CalendarCell struct {
	Date    time.Time
	InMonth bool
	Today   bool
	// Items holds every item due on this date; Visible is the leading slice
	// shown directly and Overflow the count collapsed into a "+N more" marker.
	Items    []domain.WorkItem
	Visible  []domain.WorkItem
	Overflow int
}

// CalendarGrid is the full projection for one month.
type CalendarGrid struct {
	Year  int
	Month time.Month
	Cells []CalendarCell
}

// GenerateCalendar produces exactly 42 cells for the given month. The first
// cell is the most recent Sunday on or before the 1st; each later cell is one
// day after the previous one. Items are bucketed by due date. The generator
// knows nothing about filters; callers filter upstream.
func GenerateCalendar(year int, month time.Month, items []domain.WorkItem, today time.Time) CalendarGrid {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	start := first.AddDate(0, 0, -int(first.Weekday()))

	cells := make([]CalendarCell, 0, CalendarCells)
	for i := 0; i < CalendarCells; i++ {
		date := start.AddDate(0, 0, i)
		cell := CalendarCell{
			Date:    date,
			InMonth: date.Month() == month && date.Year() == year,
			Today:   domain.SameDate(date, today),
		}
		for _, item := range items {
			if item.DueDate == nil {
				continue
			}
			if domain.SameDate(*item.DueDate, date) {
				cell.Items = append(cell.Items, item)
			}
		}
		cell.Visible = cell.Items
		if len(cell.Items) > calendarCapacity {
			cell.Visible = cell.Items[:calendarCapacity]
			cell.Overflow = len(cell.Items) - calendarCapacity
		}
		cells = append(cells, cell)
	}
	return CalendarGrid{Year: year, Month: month, Cells: cells}
}

// Week returns the seven cells of one grid row.
func (g CalendarGrid) Week(row int) []CalendarCell {
	if row < 0 || row >= CalendarRows {
		return nil
	}
	return g.Cells[row*CalendarCols : (row+1)*CalendarCols]
}
