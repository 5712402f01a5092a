// Package sqlite persists work items, users, and change events in a local
// SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/tmsolberg/hrdeck/internal/app"
	"github.com/tmsolberg/hrdeck/internal/domain"
)

// Repo implements app.Repository on top of a SQLite database.
type Repo struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and runs migrations.
func Open(path string) (*Repo, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	repo := &Repo{db: db}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return repo, nil
}

// OpenInMemory opens a fresh in-memory database, used by tests.
func OpenInMemory() (*Repo, error) {
	return Open(":memory:")
}

// Close releases the underlying database handle.
func (r *Repo) Close() error {
	return r.db.Close()
}

func (r *Repo) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS work_items (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			priority TEXT NOT NULL,
			status TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT '',
			department TEXT NOT NULL DEFAULT '',
			assigned_to_json TEXT NOT NULL DEFAULT '[]',
			start_date TEXT,
			due_date TEXT,
			estimated_hours REAL NOT NULL DEFAULT 0,
			actual_hours REAL NOT NULL DEFAULT 0,
			progress INTEGER NOT NULL DEFAULT 0,
			dependencies_json TEXT NOT NULL DEFAULT '[]',
			tags_json TEXT NOT NULL DEFAULT '[]',
			recurring INTEGER NOT NULL DEFAULT 0,
			recurring_type TEXT NOT NULL DEFAULT '',
			recurring_interval INTEGER NOT NULL DEFAULT 0,
			recurring_end_date TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			display_name TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT '',
			department TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS change_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			work_item_id TEXT NOT NULL,
			operation TEXT NOT NULL,
			actor_id TEXT NOT NULL DEFAULT '',
			detail TEXT NOT NULL DEFAULT '',
			occurred_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_work_items_status ON work_items(status)`,
		`CREATE INDEX IF NOT EXISTS idx_change_events_item ON change_events(work_item_id)`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// CreateWorkItem inserts a new work item row.
func (r *Repo) CreateWorkItem(ctx context.Context, item domain.WorkItem) error {
	assigned, deps, tags, err := encodeLists(item)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `INSERT INTO work_items
		(id, title, description, priority, status, category, department,
		 assigned_to_json, start_date, due_date, estimated_hours, actual_hours,
		 progress, dependencies_json, tags_json,
		 recurring, recurring_type, recurring_interval, recurring_end_date,
		 created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.Title, item.Description, string(item.Priority), string(item.Status),
		item.Category, item.Department,
		assigned, nullableTS(item.StartDate), nullableTS(item.DueDate),
		item.EstimatedHours, item.ActualHours,
		item.Progress, deps, tags,
		boolToInt(item.Recurrence.IsRecurring), string(item.Recurrence.Type),
		item.Recurrence.Interval, nullableTS(item.Recurrence.EndDate),
		ts(item.CreatedAt), ts(item.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert work item: %w", err)
	}
	return nil
}

// UpdateWorkItem rewrites every mutable column of an existing row.
func (r *Repo) UpdateWorkItem(ctx context.Context, item domain.WorkItem) error {
	assigned, deps, tags, err := encodeLists(item)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `UPDATE work_items SET
		title = ?, description = ?, priority = ?, status = ?, category = ?,
		department = ?, assigned_to_json = ?, start_date = ?, due_date = ?,
		estimated_hours = ?, actual_hours = ?, progress = ?,
		dependencies_json = ?, tags_json = ?,
		recurring = ?, recurring_type = ?, recurring_interval = ?, recurring_end_date = ?,
		updated_at = ?
		WHERE id = ?`,
		item.Title, item.Description, string(item.Priority), string(item.Status), item.Category,
		item.Department, assigned, nullableTS(item.StartDate), nullableTS(item.DueDate),
		item.EstimatedHours, item.ActualHours, item.Progress,
		deps, tags,
		boolToInt(item.Recurrence.IsRecurring), string(item.Recurrence.Type),
		item.Recurrence.Interval, nullableTS(item.Recurrence.EndDate),
		ts(item.UpdatedAt),
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("update work item: %w", err)
	}
	return translateNoRows(res)
}

// GetWorkItem loads one work item by id.
func (r *Repo) GetWorkItem(ctx context.Context, id string) (domain.WorkItem, error) {
	row := r.db.QueryRowContext(ctx, workItemSelect+` WHERE id = ?`, id)
	item, err := scanWorkItem(row)
	if err == sql.ErrNoRows {
		return domain.WorkItem{}, app.ErrNotFound
	}
	return item, err
}

// ListWorkItems returns every work item ordered by creation time.
func (r *Repo) ListWorkItems(ctx context.Context) ([]domain.WorkItem, error) {
	rows, err := r.db.QueryContext(ctx, workItemSelect+` ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list work items: %w", err)
	}
	defer rows.Close()

	var items []domain.WorkItem
	for rows.Next() {
		item, err := scanWorkItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// DeleteWorkItem removes one work item by id.
func (r *Repo) DeleteWorkItem(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM work_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete work item: %w", err)
	}
	return translateNoRows(res)
}

// CreateUser inserts a directory entry.
func (r *Repo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, display_name, role, department, created_at) VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.DisplayName, u.Role, u.Department, ts(u.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetUser loads one directory entry by id.
func (r *Repo) GetUser(ctx context.Context, id string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, display_name, role, department, created_at FROM users WHERE id = ?`, id)
	var (
		u       domain.User
		created string
	)
	err := row.Scan(&u.ID, &u.DisplayName, &u.Role, &u.Department, &created)
	if err == sql.ErrNoRows {
		return domain.User{}, app.ErrNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("get user: %w", err)
	}
	u.CreatedAt, err = parseTS(created)
	if err != nil {
		return domain.User{}, err
	}
	return u, nil
}

// ListUsers returns the directory ordered by display name.
func (r *Repo) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, display_name, role, department, created_at FROM users ORDER BY display_name, id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var (
			u       domain.User
			created string
		)
		if err := rows.Scan(&u.ID, &u.DisplayName, &u.Role, &u.Department, &created); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		if u.CreatedAt, err = parseTS(created); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// AppendChangeEvent records one activity-log entry.
func (r *Repo) AppendChangeEvent(ctx context.Context, ev domain.ChangeEvent) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO change_events (work_item_id, operation, actor_id, detail, occurred_at)
		 VALUES (?, ?, ?, ?, ?)`,
		ev.WorkItemID, string(ev.Operation), ev.ActorID, ev.Detail, ts(ev.OccurredAt))
	if err != nil {
		return fmt.Errorf("insert change event: %w", err)
	}
	return nil
}

// ListChangeEvents returns the most recent entries, newest first.
func (r *Repo) ListChangeEvents(ctx context.Context, limit int) ([]domain.ChangeEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, work_item_id, operation, actor_id, detail, occurred_at
		 FROM change_events ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list change events: %w", err)
	}
	defer rows.Close()

	var events []domain.ChangeEvent
	for rows.Next() {
		var (
			ev       domain.ChangeEvent
			op       string
			occurred string
		)
		if err := rows.Scan(&ev.ID, &ev.WorkItemID, &op, &ev.ActorID, &ev.Detail, &occurred); err != nil {
			return nil, fmt.Errorf("scan change event: %w", err)
		}
		ev.Operation = domain.ChangeOperation(op)
		if ev.OccurredAt, err = parseTS(occurred); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

const workItemSelect = `SELECT id, title, description, priority, status, category, department,
	assigned_to_json, start_date, due_date, estimated_hours, actual_hours,
	progress, dependencies_json, tags_json,
	recurring, recurring_type, recurring_interval, recurring_end_date,
	created_at, updated_at
	FROM work_items`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorkItem(row rowScanner) (domain.WorkItem, error) {
	var (
		item                 domain.WorkItem
		priority, status     string
		assigned, deps, tags string
		start, due, recEnd   sql.NullString
		recurring            int
		recType              string
		created, updated     string
	)
	err := row.Scan(&item.ID, &item.Title, &item.Description, &priority, &status,
		&item.Category, &item.Department,
		&assigned, &start, &due, &item.EstimatedHours, &item.ActualHours,
		&item.Progress, &deps, &tags,
		&recurring, &recType, &item.Recurrence.Interval, &recEnd,
		&created, &updated)
	if err == sql.ErrNoRows {
		return domain.WorkItem{}, err
	}
	if err != nil {
		return domain.WorkItem{}, fmt.Errorf("scan work item: %w", err)
	}
	item.Priority = domain.Priority(priority)
	item.Status = domain.Status(status)
	item.Recurrence.IsRecurring = recurring != 0
	item.Recurrence.Type = domain.RecurringType(recType)
	if err := json.Unmarshal([]byte(assigned), &item.AssignedTo); err != nil {
		return domain.WorkItem{}, fmt.Errorf("decode assigned list: %w", err)
	}
	if err := json.Unmarshal([]byte(deps), &item.Dependencies); err != nil {
		return domain.WorkItem{}, fmt.Errorf("decode dependency list: %w", err)
	}
	if err := json.Unmarshal([]byte(tags), &item.Tags); err != nil {
		return domain.WorkItem{}, fmt.Errorf("decode tag list: %w", err)
	}
	if item.StartDate, err = parseNullTS(start); err != nil {
		return domain.WorkItem{}, err
	}
	if item.DueDate, err = parseNullTS(due); err != nil {
		return domain.WorkItem{}, err
	}
	if item.Recurrence.EndDate, err = parseNullTS(recEnd); err != nil {
		return domain.WorkItem{}, err
	}
	if item.CreatedAt, err = parseTS(created); err != nil {
		return domain.WorkItem{}, err
	}
	if item.UpdatedAt, err = parseTS(updated); err != nil {
		return domain.WorkItem{}, err
	}
	return item, nil
}

func encodeLists(item domain.WorkItem) (assigned, deps, tags string, err error) {
	a, err := json.Marshal(emptyIfNil(item.AssignedTo))
	if err != nil {
		return "", "", "", fmt.Errorf("encode assigned list: %w", err)
	}
	d, err := json.Marshal(emptyIfNil(item.Dependencies))
	if err != nil {
		return "", "", "", fmt.Errorf("encode dependency list: %w", err)
	}
	t, err := json.Marshal(emptyIfNil(item.Tags))
	if err != nil {
		return "", "", "", fmt.Errorf("encode tag list: %w", err)
	}
	return string(a), string(d), string(t), nil
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func ts(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func nullableTS(t *time.Time) any {
	if t == nil {
		return nil
	}
	return ts(*t)
}

func parseTS(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}

func parseNullTS(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := parseTS(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func translateNoRows(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return app.ErrNotFound
	}
	return nil
}
