package dashboard

import (
	"sort"
	"strings"
	"time"

	"github.com/tmsolberg/hrdeck/internal/domain"
)

// SortKey identifies one sortable extraction rule.
type SortKey string

const (
	SortByPriority  SortKey = "priority"
	SortByDueDate   SortKey = "dueDate"
	SortByCreatedAt SortKey = "createdAt"
	SortByTitle     SortKey = "title"
	SortByStatus    SortKey = "status"
)

// SortOrder identifies the comparison direction.
type SortOrder string

const (
	SortAscending  SortOrder = "asc"
	SortDescending SortOrder = "desc"
)

// SortKeys lists the supported keys in display order.
var SortKeys = []SortKey{SortByDueDate, SortByPriority, SortByCreatedAt, SortByTitle, SortByStatus}

// SortItems returns a new slice ordered by the extracted key. The input is
// never mutated, the sort is stable, and descending simply inverts every
// comparison: under SortByDueDate descending, undated items (which sort as if
// dated far in the future) surface first. That asymmetry is deliberate.
func SortItems(items []domain.WorkItem, key SortKey, order SortOrder) []domain.WorkItem {
	out := append([]domain.WorkItem(nil), items...)
	less := lessFunc(key)
	if less == nil {
		return out
	}
	sort.SliceStable(out, func(i, j int) bool {
		if order == SortDescending {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out
}

// lessFunc returns the ascending comparison for a key, or nil for unknown
// keys (which leave the input order untouched).
func lessFunc(key SortKey) func(a, b domain.WorkItem) bool {
	switch key {
	case SortByPriority:
		return func(a, b domain.WorkItem) bool {
			return domain.PriorityRank(a.Priority) < domain.PriorityRank(b.Priority)
		}
	case SortByDueDate:
		return func(a, b domain.WorkItem) bool {
			return dueOrFarFuture(a).Before(dueOrFarFuture(b))
		}
	case SortByCreatedAt:
		return func(a, b domain.WorkItem) bool {
			return a.CreatedAt.Before(b.CreatedAt)
		}
	case SortByTitle:
		return func(a, b domain.WorkItem) bool {
			return strings.ToLower(a.Title) < strings.ToLower(b.Title)
		}
	case SortByStatus:
		return func(a, b domain.WorkItem) bool {
			return a.Status < b.Status
		}
	default:
		return nil
	}
}

func dueOrFarFuture(item domain.WorkItem) time.Time {
	if item.DueDate == nil {
		return farFuture
	}
	return *item.DueDate
}
