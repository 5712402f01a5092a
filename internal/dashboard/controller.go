package dashboard

import (
	"context"
	"sort"
	"time"

	"github.com/tmsolberg/hrdeck/internal/domain"
)

// ViewMode identifies one of the four presentations.
type ViewMode string

const (
	ViewBoard    ViewMode = "board"
	ViewList     ViewMode = "list"
	ViewCalendar ViewMode = "calendar"
	ViewTimeline ViewMode = "timeline"
)

// ViewModes lists the cycle order used by the view toggle.
var ViewModes = []ViewMode{ViewBoard, ViewList, ViewCalendar, ViewTimeline}

// DefaultDebounce is the quiet period applied to free-text search input.
const DefaultDebounce = 300 * time.Millisecond

// Store is the slice of the task store the controller consumes. All writes
// funnel through it; the controller never mutates item snapshots directly.
type Store interface {
	List(context.Context) ([]domain.WorkItem, error)
	ChangeStatus(context.Context, string, domain.Status) (domain.WorkItem, error)
}

// Directory resolves assignee identifiers and the acting user.
type Directory interface {
	Resolve(context.Context, string) (string, error)
	CurrentUser(context.Context) (string, error)
}

// Controller owns the mutable view state: active view mode, filters, sort,
// and the selection set. One instance is constructed per dashboard and
// injected into every consumer; there is no package-level singleton.
type Controller struct {
	store     Store
	directory Directory

	view      ViewMode
	filters   Filters
	sortBy    SortKey
	sortOrder SortOrder

	selection map[string]struct{}

	items   []domain.WorkItem
	visible []domain.WorkItem

	debounce      time.Duration
	pendingSearch string
	searchGen     int
}

// ControllerOption configures a Controller at construction time.
type ControllerOption func(*Controller)

// WithDebounce overrides the search debounce quiet period.
func WithDebounce(d time.Duration) ControllerOption {
	return func(c *Controller) {
		if d > 0 {
			c.debounce = d
		}
	}
}

// WithInitialView sets the starting view mode.
func WithInitialView(mode ViewMode) ControllerOption {
	return func(c *Controller) {
		for _, known := range ViewModes {
			if mode == known {
				c.view = mode
				return
			}
		}
	}
}

// WithInitialSort sets the starting sort key and direction.
func WithInitialSort(key SortKey, order SortOrder) ControllerOption {
	return func(c *Controller) {
		c.sortBy = key
		c.sortOrder = order
	}
}

// NewController constructs a controller over the given store and directory.
func NewController(store Store, directory Directory, opts ...ControllerOption) *Controller {
	c := &Controller{
		store:     store,
		directory: directory,
		view:      ViewBoard,
		sortBy:    SortByDueDate,
		sortOrder: SortAscending,
		selection: map[string]struct{}{},
		debounce:  DefaultDebounce,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// View returns the active view mode.
func (c *Controller) View() ViewMode { return c.view }

// SetView switches the presentation. Filters, sort, and selection are left
// untouched; only the derived descriptor changes.
func (c *Controller) SetView(mode ViewMode) {
	for _, known := range ViewModes {
		if mode == known {
			c.view = mode
			return
		}
	}
}

// CycleView advances to the next view mode in display order.
func (c *Controller) CycleView() ViewMode {
	for i, known := range ViewModes {
		if c.view == known {
			c.view = ViewModes[(i+1)%len(ViewModes)]
			return c.view
		}
	}
	c.view = ViewModes[0]
	return c.view
}

// Filters returns a copy of the current filter state.
func (c *Controller) Filters() Filters { return c.filters }

// Sort returns the current sort key and direction.
func (c *Controller) Sort() (SortKey, SortOrder) { return c.sortBy, c.sortOrder }

// SetSort reorders the derived sequence. The selection set survives a
// re-sort; only membership changes (filtering) discard it.
func (c *Controller) SetSort(key SortKey, order SortOrder) {
	c.sortBy = key
	c.sortOrder = order
	c.visible = SortItems(c.visible, c.sortBy, c.sortOrder)
}

// ToggleSortOrder flips the sort direction in place.
func (c *Controller) ToggleSortOrder() {
	order := SortAscending
	if c.sortOrder == SortAscending {
		order = SortDescending
	}
	c.SetSort(c.sortBy, order)
}

// SetStatusFilter constrains the status dimension. Like every filter
// mutation it discards the selection; callers follow with Refresh.
func (c *Controller) SetStatusFilter(value string) {
	c.filters.Status = value
	c.filtersChanged()
}

// SetPriorityFilter constrains the priority dimension.
func (c *Controller) SetPriorityFilter(value string) {
	c.filters.Priority = value
	c.filtersChanged()
}

// SetAssigneeFilter constrains the assignee dimension. AssigneeMe is kept
// verbatim here and resolved against the directory during Refresh.
func (c *Controller) SetAssigneeFilter(value string) {
	c.filters.AssignedTo = value
	c.filtersChanged()
}

// SetDepartmentFilter constrains the department dimension.
func (c *Controller) SetDepartmentFilter(value string) {
	c.filters.Department = value
	c.filtersChanged()
}

// SetDueRange constrains the due-date window. A from bound after the to
// bound is accepted and simply matches nothing.
func (c *Controller) SetDueRange(from, to *time.Time) {
	c.filters.DueFrom = from
	c.filters.DueTo = to
	c.filtersChanged()
}

// ClearFilters resets every dimension, including pending search input.
func (c *Controller) ClearFilters() {
	c.filters = Filters{}
	c.pendingSearch = ""
	c.searchGen++
	c.filtersChanged()
}

// Debounce returns the quiet period for free-text search input.
func (c *Controller) Debounce() time.Duration { return c.debounce }

// SearchInput records one keystroke's worth of search text and returns a
// generation token. Scheduling is the caller's job: arm a timer for
// Debounce() and call CommitSearch with the token when it fires. A newer
// keystroke bumps the generation, invalidating older pending commits.
func (c *Controller) SearchInput(text string) int {
	c.pendingSearch = text
	c.searchGen++
	return c.searchGen
}

// CommitSearch applies the pending search text if the token is still
// current. Returns whether the filter state changed (callers then Refresh).
func (c *Controller) CommitSearch(gen int) bool {
	if gen != c.searchGen {
		return false
	}
	if c.filters.Search == c.pendingSearch {
		return false
	}
	c.filters.Search = c.pendingSearch
	c.filtersChanged()
	return true
}

// Refresh re-queries the store and fully re-derives the filtered/sorted
// sequence. There is no partial invalidation: every caller-visible slice is
// rebuilt from the fresh snapshot.
func (c *Controller) Refresh(ctx context.Context) error {
	items, err := c.store.List(ctx)
	if err != nil {
		return err
	}
	c.items = items
	c.derive(ctx)
	return nil
}

// derive applies filter and sort to the current snapshot.
func (c *Controller) derive(ctx context.Context) {
	filters := c.filters
	if filters.AssignedTo == AssigneeMe {
		filters.AssignedTo = c.resolveActingUser(ctx)
	}
	c.visible = SortItems(Apply(c.items, filters), c.sortBy, c.sortOrder)
}

// resolveActingUser maps the "me" sentinel to a concrete id. Absence of a
// session degrades the dimension to unconstrained rather than erroring.
func (c *Controller) resolveActingUser(ctx context.Context) string {
	if c.directory == nil {
		return FilterAll
	}
	userID, err := c.directory.CurrentUser(ctx)
	if err != nil || userID == "" {
		return FilterAll
	}
	return userID
}

// Visible returns the current filtered/sorted sequence.
func (c *Controller) Visible() []domain.WorkItem {
	return append([]domain.WorkItem(nil), c.visible...)
}

// Board projects the visible sequence into the fixed status lanes.
func (c *Controller) Board() []Lane {
	return ProjectBoard(c.visible, domain.BoardLanes)
}

// Calendar projects the visible sequence into the month grid.
func (c *Controller) Calendar(year int, month time.Month, today time.Time) CalendarGrid {
	return GenerateCalendar(year, month, c.visible, today)
}

// Timeline projects the schedulable subset of the visible sequence onto a
// shared date axis.
func (c *Controller) Timeline() TimelineLayout {
	return LayoutTimeline(EligibleForTimeline(c.visible))
}

// IsSelected reports whether an item id is in the selection set.
func (c *Controller) IsSelected(id string) bool {
	_, ok := c.selection[id]
	return ok
}

// ToggleSelect flips one item's membership and reports the new state.
func (c *Controller) ToggleSelect(id string) bool {
	if _, ok := c.selection[id]; ok {
		delete(c.selection, id)
		return false
	}
	c.selection[id] = struct{}{}
	return true
}

// SetAllVisible adds every currently visible item id when checked, and
// removes exactly those ids when unchecked. Previously selected items that
// the active filter hides are left alone; this is set union / difference,
// never a blanket clear.
func (c *Controller) SetAllVisible(checked bool) {
	for _, item := range c.visible {
		if checked {
			c.selection[item.ID] = struct{}{}
		} else {
			delete(c.selection, item.ID)
		}
	}
}

// Selected returns the selection as a sorted id slice.
func (c *Controller) Selected() []string {
	out := make([]string, 0, len(c.selection))
	for id := range c.selection {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// SelectionCount returns the number of selected ids.
func (c *Controller) SelectionCount() int { return len(c.selection) }

// filtersChanged discards the selection: after a membership change the
// selected ids may no longer be visible or meaningful.
func (c *Controller) filtersChanged() {
	c.selection = map[string]struct{}{}
}
