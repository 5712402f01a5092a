// Package dashboard turns a shared work-item collection plus view state into
// the four presentation descriptors (board lanes, list rows, calendar grid,
// timeline bars). Projections are pure; the Controller owns the mutable state.
package dashboard

import (
	"strings"
	"time"

	"github.com/tmsolberg/hrdeck/internal/domain"
)

// FilterAll is the sentinel meaning "dimension unconstrained".
const FilterAll = "all"

// AssigneeMe is the user-facing sentinel for "assigned to the acting user".
// The Controller resolves it to a concrete user id before predicates are
// built; BuildPredicate never inspects session state.
const AssigneeMe = "me"

// unbounded ends for a half-open due-date range filter.
var (
	farPast   = time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC)
	farFuture = time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)
)

// Filters holds one value per filter dimension. Empty or FilterAll means the
// dimension is unconstrained.
type Filters struct {
	Search     string
	Status     string
	Priority   string
	AssignedTo string
	Department string
	DueFrom    *time.Time
	DueTo      *time.Time
}

// Active reports whether any dimension constrains the collection.
func (f Filters) Active() bool {
	return dimensionSet(f.Search) || dimensionSet(f.Status) || dimensionSet(f.Priority) ||
		dimensionSet(f.AssignedTo) || dimensionSet(f.Department) ||
		f.DueFrom != nil || f.DueTo != nil
}

// Predicate reports whether one work item passes every active dimension.
type Predicate func(domain.WorkItem) bool

// BuildPredicate composes the active dimensions into a single AND predicate.
// Malformed or absent values degrade to unconstrained, never to an error.
func BuildPredicate(f Filters) Predicate {
	subs := make([]Predicate, 0, 6)

	if query := strings.ToLower(strings.TrimSpace(f.Search)); query != "" {
		subs = append(subs, func(item domain.WorkItem) bool {
			return strings.Contains(strings.ToLower(item.Title), query) ||
				strings.Contains(strings.ToLower(item.Description), query)
		})
	}
	if status := normalizeDimension(f.Status); status != "" {
		subs = append(subs, func(item domain.WorkItem) bool {
			return string(item.Status) == status
		})
	}
	if priority := normalizeDimension(f.Priority); priority != "" {
		subs = append(subs, func(item domain.WorkItem) bool {
			return string(item.Priority) == priority
		})
	}
	if assignee := strings.TrimSpace(f.AssignedTo); dimensionSet(assignee) {
		subs = append(subs, func(item domain.WorkItem) bool {
			return item.AssignedToUser(assignee)
		})
	}
	if department := strings.TrimSpace(f.Department); dimensionSet(department) {
		subs = append(subs, func(item domain.WorkItem) bool {
			return strings.EqualFold(item.Department, department)
		})
	}
	if f.DueFrom != nil || f.DueTo != nil {
		from, to := dueRange(f.DueFrom, f.DueTo)
		subs = append(subs, func(item domain.WorkItem) bool {
			// An undated item never matches a bounded range.
			if item.DueDate == nil {
				return false
			}
			due := *domain.NormalizeDate(item.DueDate)
			return !due.Before(from) && !due.After(to)
		})
	}

	return func(item domain.WorkItem) bool {
		for _, sub := range subs {
			if !sub(item) {
				return false
			}
		}
		return true
	}
}

// Apply returns the items passing the filters, preserving input order.
func Apply(items []domain.WorkItem, f Filters) []domain.WorkItem {
	predicate := BuildPredicate(f)
	out := make([]domain.WorkItem, 0, len(items))
	for _, item := range items {
		if predicate(item) {
			out = append(out, item)
		}
	}
	return out
}

// dueRange closes an optionally half-open range. An inverted range (from
// after to) is kept as-is and simply matches nothing.
func dueRange(from, to *time.Time) (time.Time, time.Time) {
	lo, hi := farPast, farFuture
	if from != nil {
		lo = *domain.NormalizeDate(from)
	}
	if to != nil {
		hi = *domain.NormalizeDate(to)
	}
	return lo, hi
}

func normalizeDimension(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == FilterAll {
		return ""
	}
	return value
}

func dimensionSet(value string) bool {
	value = strings.TrimSpace(value)
	return value != "" && !strings.EqualFold(value, FilterAll)
}
