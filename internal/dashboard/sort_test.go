package dashboard

import (
	"testing"
	"time"

	"github.com/tmsolberg/hrdeck/internal/domain"
)

func ids(items []domain.WorkItem) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.ID)
	}
	return out
}

func equalIDs(a []string, b ...string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSortByDueDateUndatedSink(t *testing.T) {
	items := []domain.WorkItem{
		item("undated", nil),
		item("late", func(w *domain.WorkItem) { w.DueDate = datePtr(2026, 6, 1) }),
		item("early", func(w *domain.WorkItem) { w.DueDate = datePtr(2026, 5, 1) }),
	}

	asc := SortItems(items, SortByDueDate, SortAscending)
	if !equalIDs(ids(asc), "early", "late", "undated") {
		t.Fatalf("ascending order wrong: %v", ids(asc))
	}

	// Descending inverts the comparison wholesale, so undated items surface
	// first. That asymmetry is part of the contract.
	desc := SortItems(items, SortByDueDate, SortDescending)
	if !equalIDs(ids(desc), "undated", "late", "early") {
		t.Fatalf("descending order wrong: %v", ids(desc))
	}
}

func TestSortDoesNotMutateInput(t *testing.T) {
	items := []domain.WorkItem{
		item("b", func(w *domain.WorkItem) { w.Title = "beta" }),
		item("a", func(w *domain.WorkItem) { w.Title = "Alpha" }),
	}
	_ = SortItems(items, SortByTitle, SortAscending)
	if items[0].ID != "b" {
		t.Fatal("input slice was reordered")
	}
}

func TestSortIdempotent(t *testing.T) {
	items := []domain.WorkItem{
		item("c", func(w *domain.WorkItem) { w.Priority = domain.PriorityCritical }),
		item("a", func(w *domain.WorkItem) { w.Priority = domain.PriorityLow }),
		item("b", func(w *domain.WorkItem) { w.Priority = domain.PriorityLow }),
	}
	once := SortItems(items, SortByPriority, SortAscending)
	twice := SortItems(once, SortByPriority, SortAscending)
	if !equalIDs(ids(twice), ids(once)...) {
		t.Fatalf("sort(sort(x)) != sort(x): %v vs %v", ids(twice), ids(once))
	}
}

func TestSortByPriorityOrdinal(t *testing.T) {
	items := []domain.WorkItem{
		item("med", func(w *domain.WorkItem) { w.Priority = domain.PriorityMedium }),
		item("crit", func(w *domain.WorkItem) { w.Priority = domain.PriorityCritical }),
		item("low", func(w *domain.WorkItem) { w.Priority = domain.PriorityLow }),
		item("high", func(w *domain.WorkItem) { w.Priority = domain.PriorityHigh }),
	}
	got := SortItems(items, SortByPriority, SortAscending)
	if !equalIDs(ids(got), "low", "med", "high", "crit") {
		t.Fatalf("priority order wrong: %v", ids(got))
	}
}

func TestSortByTitleCaseInsensitive(t *testing.T) {
	items := []domain.WorkItem{
		item("2", func(w *domain.WorkItem) { w.Title = "benefits audit" }),
		item("1", func(w *domain.WorkItem) { w.Title = "Annual review" }),
	}
	got := SortItems(items, SortByTitle, SortAscending)
	if !equalIDs(ids(got), "1", "2") {
		t.Fatalf("title order wrong: %v", ids(got))
	}
}

func TestSortByCreatedAt(t *testing.T) {
	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	items := []domain.WorkItem{
		item("newer", func(w *domain.WorkItem) { w.CreatedAt = base.Add(time.Hour) }),
		item("older", func(w *domain.WorkItem) { w.CreatedAt = base }),
	}
	got := SortItems(items, SortByCreatedAt, SortAscending)
	if !equalIDs(ids(got), "older", "newer") {
		t.Fatalf("createdAt order wrong: %v", ids(got))
	}
}

func TestSortByStatusLiteral(t *testing.T) {
	items := []domain.WorkItem{
		item("p", func(w *domain.WorkItem) { w.Status = domain.StatusPending }),
		item("c", func(w *domain.WorkItem) { w.Status = domain.StatusCompleted }),
		item("i", func(w *domain.WorkItem) { w.Status = domain.StatusInProgress }),
	}
	// Plain string comparison over the literal status values, no custom rank.
	got := SortItems(items, SortByStatus, SortAscending)
	if !equalIDs(ids(got), "c", "i", "p") {
		t.Fatalf("status order wrong: %v", ids(got))
	}
}

func TestSortUnknownKeyLeavesOrder(t *testing.T) {
	items := []domain.WorkItem{item("b", nil), item("a", nil)}
	got := SortItems(items, SortKey("bogus"), SortAscending)
	if !equalIDs(ids(got), "b", "a") {
		t.Fatalf("unknown key must keep input order: %v", ids(got))
	}
}
