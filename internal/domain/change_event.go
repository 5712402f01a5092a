package domain

import "time"

// ChangeOperation describes a persisted activity operation for a work item.
type ChangeOperation string

// ChangeOperation values used by the local activity ledger.
const (
	ChangeOperationCreate       ChangeOperation = "create"
	ChangeOperationUpdate       ChangeOperation = "update"
	ChangeOperationStatusChange ChangeOperation = "status-change"
	ChangeOperationDelete       ChangeOperation = "delete"
)

// ChangeEvent represents a single activity-log entry for a work item.
type ChangeEvent struct {
	ID         int64
	WorkItemID string
	Operation  ChangeOperation
	ActorID    string
	Detail     string
	OccurredAt time.Time
}

// DependencyRollup summarizes dependency and blocked-state counts across the
// collection. Informational only: no status transition is ever gated on it.
type DependencyRollup struct {
	TotalItems                int
	ItemsWithDependencies     int
	DependencyEdges           int
	BlockedItems              int
	UnresolvedDependencyEdges int
}
