package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/tmsolberg/hrdeck/internal/app"
	"github.com/tmsolberg/hrdeck/internal/domain"
)

func openTestRepo(t *testing.T) *Repo {
	t.Helper()
	repo, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func testItem(t *testing.T, id string) domain.WorkItem {
	t.Helper()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	due := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	item, err := domain.NewWorkItem(domain.WorkItemInput{
		ID:             id,
		Title:          "Review onboarding packet",
		Description:    "Check the new-hire forms",
		Priority:       domain.PriorityHigh,
		Status:         domain.StatusInProgress,
		Category:       "onboarding",
		Department:     "HR",
		AssignedTo:     []string{"u1", "u2"},
		DueDate:        &due,
		EstimatedHours: 4.5,
		Progress:       40,
		Dependencies:   []string{"item-0"},
		Tags:           []string{"Forms", "urgent"},
		Recurrence: domain.Recurrence{
			IsRecurring: true,
			Type:        domain.RecurringWeekly,
			Interval:    2,
		},
	}, now)
	if err != nil {
		t.Fatalf("NewWorkItem: %v", err)
	}
	return item
}

func TestWorkItemRoundTrip(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	want := testItem(t, "item-1")
	if err := repo.CreateWorkItem(ctx, want); err != nil {
		t.Fatalf("CreateWorkItem: %v", err)
	}

	got, err := repo.GetWorkItem(ctx, "item-1")
	if err != nil {
		t.Fatalf("GetWorkItem: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("round trip mismatch\n got %#v\nwant %#v", got, want)
	}
}

func TestWorkItemUpdate(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	item := testItem(t, "item-1")
	if err := repo.CreateWorkItem(ctx, item); err != nil {
		t.Fatalf("CreateWorkItem: %v", err)
	}

	later := item.UpdatedAt.Add(time.Hour)
	updated := item
	if err := updated.ChangeStatus(domain.StatusCompleted, later); err != nil {
		t.Fatalf("ChangeStatus: %v", err)
	}
	if err := repo.UpdateWorkItem(ctx, updated); err != nil {
		t.Fatalf("UpdateWorkItem: %v", err)
	}

	got, err := repo.GetWorkItem(ctx, "item-1")
	if err != nil {
		t.Fatalf("GetWorkItem: %v", err)
	}
	if got.Status != domain.StatusCompleted {
		t.Fatalf("status = %q, want %q", got.Status, domain.StatusCompleted)
	}
	if !got.UpdatedAt.Equal(later) {
		t.Fatalf("updated at = %v, want %v", got.UpdatedAt, later)
	}
	if !got.CreatedAt.Equal(item.CreatedAt) {
		t.Fatalf("created at changed: %v", got.CreatedAt)
	}
}

func TestWorkItemNotFound(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	if _, err := repo.GetWorkItem(ctx, "missing"); !errors.Is(err, app.ErrNotFound) {
		t.Fatalf("GetWorkItem err = %v, want ErrNotFound", err)
	}
	if err := repo.UpdateWorkItem(ctx, testItem(t, "missing")); !errors.Is(err, app.ErrNotFound) {
		t.Fatalf("UpdateWorkItem err = %v, want ErrNotFound", err)
	}
	if err := repo.DeleteWorkItem(ctx, "missing"); !errors.Is(err, app.ErrNotFound) {
		t.Fatalf("DeleteWorkItem err = %v, want ErrNotFound", err)
	}
}

func TestListWorkItemsOrderedByCreation(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"item-b", "item-a", "item-c"} {
		item, err := domain.NewWorkItem(domain.WorkItemInput{ID: id, Title: "Task " + id}, base.Add(time.Duration(i)*time.Minute))
		if err != nil {
			t.Fatalf("NewWorkItem: %v", err)
		}
		if err := repo.CreateWorkItem(ctx, item); err != nil {
			t.Fatalf("CreateWorkItem: %v", err)
		}
	}

	items, err := repo.ListWorkItems(ctx)
	if err != nil {
		t.Fatalf("ListWorkItems: %v", err)
	}
	want := []string{"item-b", "item-a", "item-c"}
	if len(items) != len(want) {
		t.Fatalf("got %d items, want %d", len(items), len(want))
	}
	for i, id := range want {
		if items[i].ID != id {
			t.Fatalf("items[%d].ID = %q, want %q", i, items[i].ID, id)
		}
	}
}

func TestDeleteWorkItem(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	if err := repo.CreateWorkItem(ctx, testItem(t, "item-1")); err != nil {
		t.Fatalf("CreateWorkItem: %v", err)
	}
	if err := repo.DeleteWorkItem(ctx, "item-1"); err != nil {
		t.Fatalf("DeleteWorkItem: %v", err)
	}
	if _, err := repo.GetWorkItem(ctx, "item-1"); !errors.Is(err, app.ErrNotFound) {
		t.Fatalf("GetWorkItem after delete err = %v, want ErrNotFound", err)
	}
}

func TestUserRoundTrip(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	u, err := domain.NewUser("u1", "Dana Holt", "manager", "HR", now)
	if err != nil {
		t.Fatalf("NewUser: %v", err)
	}
	if err := repo.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	got, err := repo.GetUser(ctx, "u1")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if !reflect.DeepEqual(got, u) {
		t.Fatalf("user mismatch\n got %#v\nwant %#v", got, u)
	}

	if _, err := repo.GetUser(ctx, "missing"); !errors.Is(err, app.ErrNotFound) {
		t.Fatalf("GetUser missing err = %v, want ErrNotFound", err)
	}
}

func TestListUsersOrderedByName(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	for _, spec := range []struct{ id, name string }{
		{"u2", "Zoe Park"},
		{"u1", "Ade Bello"},
	} {
		u, err := domain.NewUser(spec.id, spec.name, "", "", now)
		if err != nil {
			t.Fatalf("NewUser: %v", err)
		}
		if err := repo.CreateUser(ctx, u); err != nil {
			t.Fatalf("CreateUser: %v", err)
		}
	}

	users, err := repo.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 2 || users[0].ID != "u1" || users[1].ID != "u2" {
		t.Fatalf("unexpected order: %#v", users)
	}
}

func TestChangeEventsNewestFirst(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	ops := []domain.ChangeOperation{
		domain.ChangeOperationCreate,
		domain.ChangeOperationUpdate,
		domain.ChangeOperationStatusChange,
	}
	for i, op := range ops {
		ev := domain.ChangeEvent{
			WorkItemID: "item-1",
			Operation:  op,
			ActorID:    "u1",
			Detail:     "step",
			OccurredAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := repo.AppendChangeEvent(ctx, ev); err != nil {
			t.Fatalf("AppendChangeEvent: %v", err)
		}
	}

	events, err := repo.ListChangeEvents(ctx, 2)
	if err != nil {
		t.Fatalf("ListChangeEvents: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Operation != domain.ChangeOperationStatusChange {
		t.Fatalf("events[0].Operation = %q, want status-change", events[0].Operation)
	}
	if events[1].Operation != domain.ChangeOperationUpdate {
		t.Fatalf("events[1].Operation = %q, want update", events[1].Operation)
	}
	if events[0].ID <= events[1].ID {
		t.Fatalf("ids not descending: %d then %d", events[0].ID, events[1].ID)
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hrdeck.db")

	repo, err := Open(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	if err := repo.CreateWorkItem(context.Background(), testItem(t, "item-1")); err != nil {
		t.Fatalf("CreateWorkItem: %v", err)
	}
	if err := repo.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	again, err := Open(path)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	defer again.Close()

	items, err := again.ListWorkItems(context.Background())
	if err != nil {
		t.Fatalf("ListWorkItems: %v", err)
	}
	if len(items) != 1 || items[0].ID != "item-1" {
		t.Fatalf("unexpected items after reopen: %#v", items)
	}
}
