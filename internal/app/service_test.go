package app

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/tmsolberg/hrdeck/internal/domain"
)

// memRepo is an in-memory Repository for service tests.
type memRepo struct {
	items  map[string]domain.WorkItem
	users  map[string]domain.User
	events []domain.ChangeEvent
	nextID int64
}

func newMemRepo() *memRepo {
	return &memRepo{
		items: map[string]domain.WorkItem{},
		users: map[string]domain.User{},
	}
}

func (r *memRepo) CreateWorkItem(_ context.Context, item domain.WorkItem) error {
	r.items[item.ID] = item
	return nil
}

func (r *memRepo) UpdateWorkItem(_ context.Context, item domain.WorkItem) error {
	if _, ok := r.items[item.ID]; !ok {
		return ErrNotFound
	}
	r.items[item.ID] = item
	return nil
}

func (r *memRepo) GetWorkItem(_ context.Context, id string) (domain.WorkItem, error) {
	item, ok := r.items[id]
	if !ok {
		return domain.WorkItem{}, ErrNotFound
	}
	return item, nil
}

func (r *memRepo) ListWorkItems(context.Context) ([]domain.WorkItem, error) {
	out := make([]domain.WorkItem, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, item)
	}
	return out, nil
}

func (r *memRepo) DeleteWorkItem(_ context.Context, id string) error {
	if _, ok := r.items[id]; !ok {
		return ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *memRepo) CreateUser(_ context.Context, user domain.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *memRepo) GetUser(_ context.Context, id string) (domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return domain.User{}, ErrNotFound
	}
	return user, nil
}

func (r *memRepo) ListUsers(context.Context) ([]domain.User, error) {
	out := make([]domain.User, 0, len(r.users))
	for _, user := range r.users {
		out = append(out, user)
	}
	return out, nil
}

func (r *memRepo) AppendChangeEvent(_ context.Context, event domain.ChangeEvent) error {
	r.nextID++
	event.ID = r.nextID
	r.events = append(r.events, event)
	return nil
}

func (r *memRepo) ListChangeEvents(_ context.Context, limit int) ([]domain.ChangeEvent, error) {
	out := append([]domain.ChangeEvent(nil), r.events...)
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func newTestService(repo *memRepo) *Service {
	seq := 0
	idGen := func() string {
		seq++
		return fmt.Sprintf("id-%d", seq)
	}
	clock := func() time.Time {
		return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	}
	return NewService(repo, idGen, clock, ServiceConfig{ActingUserID: "u1"})
}

func TestCreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	svc := newTestService(repo)

	created, err := svc.Create(ctx, CreateItemInput{Title: "Run payroll", Department: "Finance"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	got, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Title != "Run payroll" || got.Status != domain.StatusPending {
		t.Fatalf("unexpected item %#v", got)
	}
	if len(repo.events) != 1 || repo.events[0].Operation != domain.ChangeOperationCreate {
		t.Fatalf("expected one create event, got %#v", repo.events)
	}
}

func TestCreateValidationFailure(t *testing.T) {
	svc := newTestService(newMemRepo())
	if _, err := svc.Create(context.Background(), CreateItemInput{Title: "  "}); err != domain.ErrInvalidTitle {
		t.Fatalf("expected ErrInvalidTitle, got %v", err)
	}
}

func TestUpdatePartial(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemRepo())
	created, err := svc.Create(ctx, CreateItemInput{
		Title:    "Benefits review",
		Priority: domain.PriorityHigh,
		Progress: 25,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	newTitle := "Benefits review 2026"
	progress := 70
	updated, err := svc.Update(ctx, UpdateItemInput{
		ItemID:   created.ID,
		Title:    &newTitle,
		Progress: &progress,
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Title != newTitle || updated.Progress != 70 {
		t.Fatalf("unexpected update %#v", updated)
	}
	if updated.Priority != domain.PriorityHigh {
		t.Fatal("untouched fields must keep their values")
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Fatal("CreatedAt must be immutable")
	}
}

func TestUpdateClearsDueDate(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemRepo())
	due := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	created, err := svc.Create(ctx, CreateItemInput{Title: "x", DueDate: &due})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	updated, err := svc.Update(ctx, UpdateItemInput{ItemID: created.ID, ClearDueDate: true})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.DueDate != nil {
		t.Fatal("due date should be cleared")
	}
}

func TestUpdateMissingItem(t *testing.T) {
	svc := newTestService(newMemRepo())
	if _, err := svc.Update(context.Background(), UpdateItemInput{ItemID: "ghost"}); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestChangeStatusRecordsTransitionOnly(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	svc := newTestService(repo)
	created, err := svc.Create(ctx, CreateItemInput{Title: "x", Progress: 55})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	moved, err := svc.ChangeStatus(ctx, created.ID, domain.StatusCompleted)
	if err != nil {
		t.Fatalf("ChangeStatus() error = %v", err)
	}
	if moved.Status != domain.StatusCompleted {
		t.Fatalf("status = %s", moved.Status)
	}
	if moved.Progress != 55 {
		t.Fatal("progress must not change as a transition side effect")
	}
	last := repo.events[len(repo.events)-1]
	if last.Operation != domain.ChangeOperationStatusChange {
		t.Fatalf("expected status-change event, got %s", last.Operation)
	}
}

func TestChangeStatusInvalidTarget(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemRepo())
	created, err := svc.Create(ctx, CreateItemInput{Title: "x"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := svc.ChangeStatus(ctx, created.ID, domain.Status("limbo")); err != domain.ErrInvalidStatus {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestSearch(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemRepo())
	if _, err := svc.Create(ctx, CreateItemInput{Title: "Payroll run", Department: "Finance"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := svc.Create(ctx, CreateItemInput{Title: "Offsite", Description: "plan summer payroll party", Department: "People"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	all, err := svc.Search(ctx, "PAYROLL", SearchFilter{})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(all))
	}

	finance, err := svc.Search(ctx, "payroll", SearchFilter{Department: "finance"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(finance) != 1 || finance[0].Title != "Payroll run" {
		t.Fatalf("unexpected filtered matches %#v", finance)
	}
}

func TestOverdueQuery(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemRepo())
	past := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	future := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	late, err := svc.Create(ctx, CreateItemInput{Title: "late", DueDate: &past})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := svc.Create(ctx, CreateItemInput{Title: "on time", DueDate: &future}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	doneLate, err := svc.Create(ctx, CreateItemInput{Title: "done late", DueDate: &past})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := svc.ChangeStatus(ctx, doneLate.ID, domain.StatusCompleted); err != nil {
		t.Fatalf("ChangeStatus() error = %v", err)
	}

	got, err := svc.Overdue(ctx)
	if err != nil {
		t.Fatalf("Overdue() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != late.ID {
		t.Fatalf("unexpected overdue set %#v", got)
	}
}

func TestDependencyRollup(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemRepo())
	dep, err := svc.Create(ctx, CreateItemInput{Title: "prepare census"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := svc.Create(ctx, CreateItemInput{
		Title:        "file report",
		Dependencies: []string{dep.ID, "missing-id"},
	}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	rollup, err := svc.DependencyRollup(ctx)
	if err != nil {
		t.Fatalf("DependencyRollup() error = %v", err)
	}
	if rollup.TotalItems != 2 || rollup.ItemsWithDependencies != 1 {
		t.Fatalf("unexpected rollup %#v", rollup)
	}
	if rollup.DependencyEdges != 2 || rollup.UnresolvedDependencyEdges != 1 {
		t.Fatalf("unexpected edge counts %#v", rollup)
	}
	if rollup.BlockedItems != 1 {
		t.Fatalf("expected one blocked item, got %d", rollup.BlockedItems)
	}
}

func TestDirectoryResolveAndCurrentUser(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemRepo())
	if _, err := svc.CreateUser(ctx, "u1", "Dana Whitfield", "HR Manager", "People"); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	name, err := svc.Resolve(ctx, "u1")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if name != "Dana Whitfield" {
		t.Fatalf("Resolve() = %q", name)
	}
	// Unknown ids degrade to the raw id instead of failing the render.
	fallback, err := svc.Resolve(ctx, "ghost")
	if err != nil || fallback != "ghost" {
		t.Fatalf("Resolve(ghost) = %q, %v", fallback, err)
	}

	current, err := svc.CurrentUser(ctx)
	if err != nil || current != "u1" {
		t.Fatalf("CurrentUser() = %q, %v", current, err)
	}

	anon := NewService(newMemRepo(), nil, nil, ServiceConfig{})
	if _, err := anon.CurrentUser(ctx); err != ErrNoUser {
		t.Fatalf("expected ErrNoUser, got %v", err)
	}
}

func TestDeleteRecordsEvent(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	svc := newTestService(repo)
	created, err := svc.Create(ctx, CreateItemInput{Title: "x"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := svc.Delete(ctx, created.ID); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	events, err := svc.RecentChanges(ctx, 1)
	if err != nil {
		t.Fatalf("RecentChanges() error = %v", err)
	}
	if len(events) != 1 || events[0].Operation != domain.ChangeOperationDelete {
		t.Fatalf("unexpected latest event %#v", events)
	}
}

type recordingNotifier struct {
	messages   []string
	severities []Severity
}

func (n *recordingNotifier) Notify(message string, severity Severity) {
	n.messages = append(n.messages, message)
	n.severities = append(n.severities, severity)
}

func TestNotifierOnCompletion(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	notifier := &recordingNotifier{}
	svc := NewService(repo,
		func() string { return "id-1" },
		func() time.Time { return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC) },
		ServiceConfig{ActingUserID: "u1", Notifier: notifier})

	created, err := svc.Create(ctx, CreateItemInput{Title: "Close payroll"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if len(notifier.messages) != 0 {
		t.Fatalf("unexpected notification on create: %v", notifier.messages)
	}

	if _, err := svc.ChangeStatus(ctx, created.ID, domain.StatusCompleted); err != nil {
		t.Fatalf("ChangeStatus() error = %v", err)
	}
	if len(notifier.messages) != 1 || notifier.messages[0] != "completed: Close payroll" {
		t.Fatalf("unexpected notifications %v", notifier.messages)
	}
	if notifier.severities[0] != SeverityInfo {
		t.Fatalf("unexpected severity %q", notifier.severities[0])
	}

	// A repeat transition into completed stays quiet.
	if _, err := svc.ChangeStatus(ctx, created.ID, domain.StatusCompleted); err != nil {
		t.Fatalf("ChangeStatus() error = %v", err)
	}
	if len(notifier.messages) != 1 {
		t.Fatalf("expected no repeat notification, got %v", notifier.messages)
	}
}

func TestNotifyOverdue(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	notifier := &recordingNotifier{}
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	seq := 0
	svc := NewService(repo,
		func() string { seq++; return fmt.Sprintf("id-%d", seq) },
		func() time.Time { return now },
		ServiceConfig{Notifier: notifier})

	count, err := svc.NotifyOverdue(ctx)
	if err != nil {
		t.Fatalf("NotifyOverdue() error = %v", err)
	}
	if count != 0 || len(notifier.messages) != 0 {
		t.Fatalf("expected quiet no-op, got count=%d messages=%v", count, notifier.messages)
	}

	past := now.AddDate(0, 0, -2)
	if _, err := svc.Create(ctx, CreateItemInput{Title: "Late", DueDate: &past}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	count, err = svc.NotifyOverdue(ctx)
	if err != nil {
		t.Fatalf("NotifyOverdue() error = %v", err)
	}
	if count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}
	if len(notifier.messages) != 1 || notifier.severities[0] != SeverityWarning {
		t.Fatalf("unexpected notifications %v %v", notifier.messages, notifier.severities)
	}
}
