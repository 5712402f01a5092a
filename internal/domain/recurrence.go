package domain

import (
	"slices"
	"strings"
	"time"
)

// RecurringType identifies one repeat cadence.
type RecurringType string

const (
	RecurringDaily     RecurringType = "daily"
	RecurringWeekly    RecurringType = "weekly"
	RecurringMonthly   RecurringType = "monthly"
	RecurringQuarterly RecurringType = "quarterly"
	RecurringYearly    RecurringType = "yearly"
)

var validRecurringTypes = []RecurringType{
	RecurringDaily,
	RecurringWeekly,
	RecurringMonthly,
	RecurringQuarterly,
	RecurringYearly,
}

// Recurrence describes an optional repeat schedule for a work item.
type Recurrence struct {
	IsRecurring bool
	Type        RecurringType
	Interval    int
	EndDate     *time.Time
}

// normalize validates recurrence fields; a non-recurring value is zeroed.
func (r Recurrence) normalize() (Recurrence, error) {
	if !r.IsRecurring {
		return Recurrence{}, nil
	}
	r.Type = RecurringType(strings.ToLower(strings.TrimSpace(string(r.Type))))
	if !slices.Contains(validRecurringTypes, r.Type) {
		return Recurrence{}, ErrInvalidRecurring
	}
	if r.Interval <= 0 {
		r.Interval = 1
	}
	r.EndDate = NormalizeDate(r.EndDate)
	return r, nil
}

// NextOccurrence returns the next due date strictly after the given date, or
// false when the schedule has ended or the item does not recur.
func (r Recurrence) NextOccurrence(after time.Time) (time.Time, bool) {
	if !r.IsRecurring {
		return time.Time{}, false
	}
	interval := r.Interval
	if interval <= 0 {
		interval = 1
	}
	base := after.UTC()
	var next time.Time
	switch r.Type {
	case RecurringDaily:
		next = base.AddDate(0, 0, interval)
	case RecurringWeekly:
		next = base.AddDate(0, 0, 7*interval)
	case RecurringMonthly:
		next = base.AddDate(0, interval, 0)
	case RecurringQuarterly:
		next = base.AddDate(0, 3*interval, 0)
	case RecurringYearly:
		next = base.AddDate(interval, 0, 0)
	default:
		return time.Time{}, false
	}
	if r.EndDate != nil && next.After(*r.EndDate) {
		return time.Time{}, false
	}
	return next, true
}
