package dashboard

import (
	"testing"

	"github.com/tmsolberg/hrdeck/internal/domain"
)

func TestProjectBoardPartitionComplete(t *testing.T) {
	items := []domain.WorkItem{
		item("a", func(w *domain.WorkItem) { w.Status = domain.StatusPending }),
		item("b", func(w *domain.WorkItem) { w.Status = domain.StatusCompleted }),
		item("c", func(w *domain.WorkItem) { w.Status = domain.StatusPending }),
		item("d", func(w *domain.WorkItem) { w.Status = domain.StatusOnHold }),
		item("e", func(w *domain.WorkItem) { w.Status = domain.StatusInProgress }),
	}
	lanes := ProjectBoard(items, domain.BoardLanes)
	if len(lanes) != 4 {
		t.Fatalf("expected 4 lanes, got %d", len(lanes))
	}

	total := 0
	seen := map[string]int{}
	for _, lane := range lanes {
		total += len(lane.Items)
		for _, laneItem := range lane.Items {
			seen[laneItem.ID]++
			if laneItem.Status != lane.Status {
				t.Fatalf("item %s placed in lane %s", laneItem.ID, lane.Status)
			}
		}
	}
	if total != len(items) {
		t.Fatalf("lane sizes sum to %d, want %d", total, len(items))
	}
	for id, count := range seen {
		if count != 1 {
			t.Fatalf("item %s appears %d times", id, count)
		}
	}
}

func TestProjectBoardPreservesRelativeOrder(t *testing.T) {
	items := []domain.WorkItem{
		item("first", func(w *domain.WorkItem) { w.Status = domain.StatusPending }),
		item("mid", func(w *domain.WorkItem) { w.Status = domain.StatusInProgress }),
		item("second", func(w *domain.WorkItem) { w.Status = domain.StatusPending }),
	}
	lanes := ProjectBoard(items, domain.BoardLanes)
	pending := lanes[0]
	if len(pending.Items) != 2 || pending.Items[0].ID != "first" || pending.Items[1].ID != "second" {
		t.Fatalf("pending lane order wrong: %#v", ids(pending.Items))
	}
}

func TestProjectBoardEmptyInput(t *testing.T) {
	lanes := ProjectBoard(nil, domain.BoardLanes)
	if len(lanes) != 4 {
		t.Fatalf("expected 4 empty lanes, got %d", len(lanes))
	}
	for _, lane := range lanes {
		if len(lane.Items) != 0 {
			t.Fatalf("lane %s not empty", lane.Status)
		}
		if lane.Label == "" {
			t.Fatalf("lane %s missing label", lane.Status)
		}
	}
}
