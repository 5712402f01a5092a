package domain

import (
	"slices"
	"strings"
	"time"
)

// Priority represents the urgency bucket of a work item.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

var validPriorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}

// PriorityInfo carries the display label, color, and sort ordinal for a priority value.
type PriorityInfo struct {
	Value   Priority
	Label   string
	Color   string
	Ordinal int
}

// priorityInfos is ordered by ordinal, lowest first.
var priorityInfos = []PriorityInfo{
	{Value: PriorityLow, Label: "Low", Color: "#10b981", Ordinal: 0},
	{Value: PriorityMedium, Label: "Medium", Color: "#f59e0b", Ordinal: 1},
	{Value: PriorityHigh, Label: "High", Color: "#f97316", Ordinal: 2},
	{Value: PriorityCritical, Label: "Critical", Color: "#ef4444", Ordinal: 3},
}

// Priorities returns every priority descriptor in ascending ordinal order.
func Priorities() []PriorityInfo {
	return append([]PriorityInfo(nil), priorityInfos...)
}

// PriorityLookup returns the descriptor for one priority value.
func PriorityLookup(p Priority) (PriorityInfo, bool) {
	for _, info := range priorityInfos {
		if info.Value == p {
			return info, true
		}
	}
	return PriorityInfo{}, false
}

// PriorityRank returns the sort ordinal for a priority; unknown values rank last.
func PriorityRank(p Priority) int {
	if info, ok := PriorityLookup(p); ok {
		return info.Ordinal
	}
	return len(priorityInfos)
}

// Status represents the lifecycle lane of a work item.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusOnHold     Status = "on-hold"
	StatusCompleted  Status = "completed"
)

// BoardLanes is the fixed, ordered lane list used by the board projection.
var BoardLanes = []Status{StatusPending, StatusInProgress, StatusOnHold, StatusCompleted}

// IsValidStatus reports whether a status value is one of the four lanes.
func IsValidStatus(s Status) bool {
	return slices.Contains(BoardLanes, s)
}

// StatusLabel returns the display name for a status lane.
func StatusLabel(s Status) string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusInProgress:
		return "In Progress"
	case StatusOnHold:
		return "On Hold"
	case StatusCompleted:
		return "Completed"
	default:
		return string(s)
	}
}

// WorkItem is one HR task record. Instances handed to projections are value
// snapshots; all mutation goes through the app service.
type WorkItem struct {
	ID             string
	Title          string
	Description    string
	Priority       Priority
	Status         Status
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
	Recurrence     Recurrence
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// WorkItemInput holds write-time values for NewWorkItem.
type WorkItemInput struct {
	ID             string
	Title          string
	Description    string
	Priority       Priority
	Status         Status
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
	Recurrence     Recurrence
}

// NewWorkItem validates and normalizes one work item.
func NewWorkItem(in WorkItemInput, now time.Time) (WorkItem, error) {
	in.ID = strings.TrimSpace(in.ID)
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Category = strings.TrimSpace(in.Category)
	in.Department = strings.TrimSpace(in.Department)

	if in.ID == "" {
		return WorkItem{}, ErrInvalidID
	}
	if in.Title == "" {
		return WorkItem{}, ErrInvalidTitle
	}
	if in.Priority == "" {
		in.Priority = PriorityMedium
	}
	if !slices.Contains(validPriorities, in.Priority) {
		return WorkItem{}, ErrInvalidPriority
	}
	if in.Status == "" {
		in.Status = StatusPending
	}
	if !IsValidStatus(in.Status) {
		return WorkItem{}, ErrInvalidStatus
	}
	if in.EstimatedHours < 0 || in.ActualHours < 0 {
		return WorkItem{}, ErrInvalidHours
	}
	if in.Progress < 0 || in.Progress > 100 {
		return WorkItem{}, ErrInvalidProgress
	}
	recurrence, err := in.Recurrence.normalize()
	if err != nil {
		return WorkItem{}, err
	}

	return WorkItem{
		ID:             in.ID,
		Title:          in.Title,
		Description:    in.Description,
		Priority:       in.Priority,
		Status:         in.Status,
		Category:       in.Category,
		Department:     in.Department,
		AssignedTo:     uniqueIDs(in.AssignedTo),
		StartDate:      NormalizeDate(in.StartDate),
		DueDate:        NormalizeDate(in.DueDate),
		EstimatedHours: in.EstimatedHours,
		ActualHours:    in.ActualHours,
		Progress:       in.Progress,
		Dependencies:   uniqueIDs(in.Dependencies),
		Tags:           normalizeTags(in.Tags),
		Recurrence:     recurrence,
		CreatedAt:      now.UTC(),
		UpdatedAt:      now.UTC(),
	}, nil
}

// UpdateDetails replaces the editable fields of an item.
func (w *WorkItem) UpdateDetails(in WorkItemInput, now time.Time) error {
	in.ID = w.ID
	updated, err := NewWorkItem(in, now)
	if err != nil {
		return err
	}
	created := w.CreatedAt
	*w = updated
	w.CreatedAt = created
	return nil
}

// ChangeStatus moves the item into a different lane. No other field is
// touched; in particular Progress stays as-is when entering completed.
func (w *WorkItem) ChangeStatus(target Status, now time.Time) error {
	if !IsValidStatus(target) {
		return ErrInvalidStatus
	}
	w.Status = target
	w.UpdatedAt = now.UTC()
	return nil
}

// Overdue reports whether the item is past due: a due date exists, it is
// before now, and the item is not completed. Recomputed on every call, never
// cached on the item.
func (w WorkItem) Overdue(now time.Time) bool {
	if w.DueDate == nil {
		return false
	}
	if w.Status == StatusCompleted {
		return false
	}
	return w.DueDate.Before(now)
}

// HasSchedule reports whether both the start and due date are set, which is
// the admission requirement for timeline layout.
func (w WorkItem) HasSchedule() bool {
	return w.StartDate != nil && w.DueDate != nil
}

// AssignedToUser reports whether the item is assigned to the given user id.
func (w WorkItem) AssignedToUser(userID string) bool {
	return slices.Contains(w.AssignedTo, userID)
}

// NormalizeDate truncates a calendar date to midnight UTC. Dates carry no
// time-of-day in this model.
func NormalizeDate(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	d := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	return &d
}

// SameDate reports whether two timestamps fall on the same calendar day in UTC.
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

func uniqueIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := map[string]struct{}{}
	for _, raw := range ids {
		id := strings.TrimSpace(raw)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := map[string]struct{}{}
	for _, raw := range tags {
		tag := strings.ToLower(strings.TrimSpace(raw))
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
