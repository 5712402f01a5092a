package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tmsolberg/hrdeck/internal/domain"
)

// IDGenerator returns unique identifiers for new entities.
type IDGenerator func() string

// Clock returns the current time.
type Clock func() time.Time

// ServiceConfig holds construction options for the task store service.
type ServiceConfig struct {
	// ActingUserID identifies the dashboard's single user; it feeds the
	// directory's CurrentUser answer and change-event attribution.
	ActingUserID string
	// Notifier, when set, receives user-facing notifications for completed
	// items and overdue summaries.
	Notifier Notifier
}

// Service is the task store: the single mutation entry point for the
// work-item collection. The dashboard controller consumes it read-mostly and
// funnels every write (create, update, delete, status change) through here.
type Service struct {
	repo       Repository
	idGen      IDGenerator
	clock      Clock
	actingUser string
	notifier   Notifier
}

// NewService constructs a service over the given repository.
func NewService(repo Repository, idGen IDGenerator, clock Clock, cfg ServiceConfig) *Service {
	if idGen == nil {
		idGen = func() string { return "" }
	}
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		repo:       repo,
		idGen:      idGen,
		clock:      clock,
		actingUser: strings.TrimSpace(cfg.ActingUserID),
		notifier:   cfg.Notifier,
	}
}

func (s *Service) notify(message string, severity Severity) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(message, severity)
}

// CreateItemInput holds write-time values for Create.
type CreateItemInput struct {
	Title          string
	Description    string
	Priority       domain.Priority
	Status         domain.Status
	Category       string
	Department     string
	AssignedTo     []string
	StartDate      *time.Time
	DueDate        *time.Time
	EstimatedHours float64
	ActualHours    float64
	Progress       int
	Dependencies   []string
	Tags           []string
	Recurrence     domain.Recurrence
}

// UpdateItemInput carries a partial update; nil fields keep current values.
type UpdateItemInput struct {
	ItemID         string
	Title          *string
	Description    *string
	Priority       *domain.Priority
	Status         *domain.Status
	Category       *string
	Department     *string
	AssignedTo     []string
	StartDate      *time.Time
	ClearStartDate bool
	DueDate        *time.Time
	ClearDueDate   bool
	EstimatedHours *float64
	ActualHours    *float64
	Progress       *int
	Dependencies   []string
	Tags           []string
	Recurrence     *domain.Recurrence
}

// List returns every work item.
func (s *Service) List(ctx context.Context) ([]domain.WorkItem, error) {
	return s.repo.ListWorkItems(ctx)
}

// Get returns one work item by id.
func (s *Service) Get(ctx context.Context, id string) (domain.WorkItem, error) {
	return s.repo.GetWorkItem(ctx, id)
}

// Create validates and persists a new work item.
func (s *Service) Create(ctx context.Context, in CreateItemInput) (domain.WorkItem, error) {
	now := s.clock()
	itemInput := domain.WorkItemInput{
		ID:             s.idGen(),
		Title:          in.Title,
		Description:    in.Description,
		Priority:       in.Priority,
		Status:         in.Status,
		Category:       in.Category,
		Department:     in.Department,
		AssignedTo:     in.AssignedTo,
		StartDate:      in.StartDate,
		DueDate:        in.DueDate,
		EstimatedHours: in.EstimatedHours,
		ActualHours:    in.ActualHours,
		Progress:       in.Progress,
		Dependencies:   in.Dependencies,
		Tags:           in.Tags,
		Recurrence:     in.Recurrence,
	}
	item, err := domain.NewWorkItem(itemInput, now)
	if err != nil {
		return domain.WorkItem{}, err
	}
	if err := s.repo.CreateWorkItem(ctx, item); err != nil {
		return domain.WorkItem{}, fmt.Errorf("create work item: %w", err)
	}
	s.recordChange(ctx, item.ID, domain.ChangeOperationCreate, item.Title, now)
	return item, nil
}

// Update applies a partial update to one work item.
func (s *Service) Update(ctx context.Context, in UpdateItemInput) (domain.WorkItem, error) {
	item, err := s.repo.GetWorkItem(ctx, in.ItemID)
	if err != nil {
		return domain.WorkItem{}, err
	}

	merged := domain.WorkItemInput{
		ID:             item.ID,
		Title:          item.Title,
		Description:    item.Description,
		Priority:       item.Priority,
		Status:         item.Status,
		Category:       item.Category,
		Department:     item.Department,
		AssignedTo:     item.AssignedTo,
		StartDate:      item.StartDate,
		DueDate:        item.DueDate,
		EstimatedHours: item.EstimatedHours,
		ActualHours:    item.ActualHours,
		Progress:       item.Progress,
		Dependencies:   item.Dependencies,
		Tags:           item.Tags,
		Recurrence:     item.Recurrence,
	}
	if in.Title != nil {
		merged.Title = *in.Title
	}
	if in.Description != nil {
		merged.Description = *in.Description
	}
	if in.Priority != nil {
		merged.Priority = *in.Priority
	}
	if in.Status != nil {
		merged.Status = *in.Status
	}
	if in.Category != nil {
		merged.Category = *in.Category
	}
	if in.Department != nil {
		merged.Department = *in.Department
	}
	if in.AssignedTo != nil {
		merged.AssignedTo = in.AssignedTo
	}
	if in.StartDate != nil {
		merged.StartDate = in.StartDate
	}
	if in.ClearStartDate {
		merged.StartDate = nil
	}
	if in.DueDate != nil {
		merged.DueDate = in.DueDate
	}
	if in.ClearDueDate {
		merged.DueDate = nil
	}
	if in.EstimatedHours != nil {
		merged.EstimatedHours = *in.EstimatedHours
	}
	if in.ActualHours != nil {
		merged.ActualHours = *in.ActualHours
	}
	if in.Progress != nil {
		merged.Progress = *in.Progress
	}
	if in.Dependencies != nil {
		merged.Dependencies = in.Dependencies
	}
	if in.Tags != nil {
		merged.Tags = in.Tags
	}
	if in.Recurrence != nil {
		merged.Recurrence = *in.Recurrence
	}

	now := s.clock()
	if err := item.UpdateDetails(merged, now); err != nil {
		return domain.WorkItem{}, err
	}
	if err := s.repo.UpdateWorkItem(ctx, item); err != nil {
		return domain.WorkItem{}, fmt.Errorf("update work item: %w", err)
	}
	s.recordChange(ctx, item.ID, domain.ChangeOperationUpdate, item.Title, now)
	return item, nil
}

// Delete removes one work item.
func (s *Service) Delete(ctx context.Context, id string) error {
	item, err := s.repo.GetWorkItem(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteWorkItem(ctx, id); err != nil {
		return fmt.Errorf("delete work item: %w", err)
	}
	s.recordChange(ctx, id, domain.ChangeOperationDelete, item.Title, s.clock())
	return nil
}

// ChangeStatus moves one item into a different lane. This is the mutation
// path shared by form edits and board lane drops; it changes nothing but the
// status and records the transition. Dependencies are not consulted.
func (s *Service) ChangeStatus(ctx context.Context, id string, target domain.Status) (domain.WorkItem, error) {
	item, err := s.repo.GetWorkItem(ctx, id)
	if err != nil {
		return domain.WorkItem{}, err
	}
	from := item.Status
	if err := item.ChangeStatus(target, s.clock()); err != nil {
		return domain.WorkItem{}, err
	}
	if err := s.repo.UpdateWorkItem(ctx, item); err != nil {
		return domain.WorkItem{}, fmt.Errorf("update work item status: %w", err)
	}
	s.recordChange(ctx, item.ID, domain.ChangeOperationStatusChange,
		fmt.Sprintf("%s → %s", from, target), item.UpdatedAt)
	if target == domain.StatusCompleted && from != domain.StatusCompleted {
		s.notify("completed: "+item.Title, SeverityInfo)
	}
	return item, nil
}

// SearchFilter narrows a Search call; zero values are unconstrained.
type SearchFilter struct {
	Status     domain.Status
	Priority   domain.Priority
	Department string
	AssignedTo string
}

// Search returns items whose title or description contains the query,
// case-insensitively, further narrowed by the filter.
func (s *Service) Search(ctx context.Context, query string, filter SearchFilter) ([]domain.WorkItem, error) {
	items, err := s.repo.ListWorkItems(ctx)
	if err != nil {
		return nil, err
	}
	query = strings.ToLower(strings.TrimSpace(query))
	out := make([]domain.WorkItem, 0, len(items))
	for _, item := range items {
		if query != "" &&
			!strings.Contains(strings.ToLower(item.Title), query) &&
			!strings.Contains(strings.ToLower(item.Description), query) {
			continue
		}
		if filter.Status != "" && item.Status != filter.Status {
			continue
		}
		if filter.Priority != "" && item.Priority != filter.Priority {
			continue
		}
		if filter.Department != "" && !strings.EqualFold(item.Department, filter.Department) {
			continue
		}
		if filter.AssignedTo != "" && !item.AssignedToUser(filter.AssignedTo) {
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

// Overdue returns every item past its due date and not completed.
func (s *Service) Overdue(ctx context.Context) ([]domain.WorkItem, error) {
	items, err := s.repo.ListWorkItems(ctx)
	if err != nil {
		return nil, err
	}
	now := s.clock()
	out := make([]domain.WorkItem, 0, len(items))
	for _, item := range items {
		if item.Overdue(now) {
			out = append(out, item)
		}
	}
	return out, nil
}

// NotifyOverdue surfaces a one-line overdue summary through the notifier.
// It is a no-op when nothing is overdue.
func (s *Service) NotifyOverdue(ctx context.Context) (int, error) {
	overdue, err := s.Overdue(ctx)
	if err != nil {
		return 0, err
	}
	if len(overdue) > 0 {
		s.notify(fmt.Sprintf("%d overdue item(s)", len(overdue)), SeverityWarning)
	}
	return len(overdue), nil
}

// Priorities exposes the label/color/ordinal lookup per priority value.
func (s *Service) Priorities() []domain.PriorityInfo {
	return domain.Priorities()
}

// DependencyRollup summarizes dependency edges across the collection. An
// item is blocked when any dependency is not completed; an edge is
// unresolved when its target id no longer exists. Informational only.
func (s *Service) DependencyRollup(ctx context.Context) (domain.DependencyRollup, error) {
	items, err := s.repo.ListWorkItems(ctx)
	if err != nil {
		return domain.DependencyRollup{}, err
	}
	byID := make(map[string]domain.WorkItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	rollup := domain.DependencyRollup{TotalItems: len(items)}
	for _, item := range items {
		if len(item.Dependencies) == 0 {
			continue
		}
		rollup.ItemsWithDependencies++
		blocked := false
		for _, depID := range item.Dependencies {
			rollup.DependencyEdges++
			dep, ok := byID[depID]
			if !ok {
				rollup.UnresolvedDependencyEdges++
				continue
			}
			if dep.Status != domain.StatusCompleted {
				blocked = true
			}
		}
		if blocked {
			rollup.BlockedItems++
		}
	}
	return rollup, nil
}

// RecentChanges returns the newest activity entries, newest first.
func (s *Service) RecentChanges(ctx context.Context, limit int) ([]domain.ChangeEvent, error) {
	return s.repo.ListChangeEvents(ctx, limit)
}

// CreateUser adds one directory entry.
func (s *Service) CreateUser(ctx context.Context, id, displayName, role, department string) (domain.User, error) {
	if strings.TrimSpace(id) == "" {
		id = s.idGen()
	}
	user, err := domain.NewUser(id, displayName, role, department, s.clock())
	if err != nil {
		return domain.User{}, err
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// ListUsers returns every directory entry.
func (s *Service) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.repo.ListUsers(ctx)
}

// Resolve maps a user id to a display name. Unknown ids fall back to the
// raw id so rendering never blocks on directory gaps.
func (s *Service) Resolve(ctx context.Context, id string) (string, error) {
	user, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return id, nil
	}
	return user.DisplayName, nil
}

// CurrentUser returns the configured acting user id.
func (s *Service) CurrentUser(context.Context) (string, error) {
	if s.actingUser == "" {
		return "", ErrNoUser
	}
	return s.actingUser, nil
}

// recordChange appends one activity entry. Ledger write failures are
// swallowed: activity is never worth failing the primary mutation for.
func (s *Service) recordChange(ctx context.Context, itemID string, op domain.ChangeOperation, detail string, at time.Time) {
	_ = s.repo.AppendChangeEvent(ctx, domain.ChangeEvent{
		WorkItemID: itemID,
		Operation:  op,
		ActorID:    s.actingUser,
		Detail:     detail,
		OccurredAt: at.UTC(),
	})
}
