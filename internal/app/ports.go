package app

import (
	"context"

	"github.com/tmsolberg/hrdeck/internal/domain"
)

// Repository is the persistence port behind the task store.
type Repository interface {
	CreateWorkItem(context.Context, domain.WorkItem) error
	UpdateWorkItem(context.Context, domain.WorkItem) error
	GetWorkItem(context.Context, string) (domain.WorkItem, error)
	ListWorkItems(context.Context) ([]domain.WorkItem, error)
	DeleteWorkItem(context.Context, string) error

	CreateUser(context.Context, domain.User) error
	GetUser(context.Context, string) (domain.User, error)
	ListUsers(context.Context) ([]domain.User, error)

	AppendChangeEvent(context.Context, domain.ChangeEvent) error
	ListChangeEvents(context.Context, int) ([]domain.ChangeEvent, error)
}

// Notifier receives user-facing notifications. Fire-and-forget: callers do
// not depend on any return value.
type Notifier interface {
	Notify(message string, severity Severity)
}

// Severity classifies one notification.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)
