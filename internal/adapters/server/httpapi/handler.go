// Package httpapi provides the REST adapter for the dashboard service,
// mounted under /api/v1.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tmsolberg/hrdeck/internal/app"
	"github.com/tmsolberg/hrdeck/internal/dashboard"
	"github.com/tmsolberg/hrdeck/internal/domain"
)

// maxRequestBodyBytes limits decoded JSON payload size.
const maxRequestBodyBytes int64 = 1 << 20

// Handler serves the versioned API subrouter.
type Handler struct {
	svc   *app.Service
	clock func() time.Time
}

// NewHandler constructs the HTTP API adapter over the dashboard service.
func NewHandler(svc *app.Service, clock func() time.Time) *Handler {
	if clock == nil {
		clock = time.Now
	}
	return &Handler{svc: svc, clock: clock}
}

// Routes returns the chi subrouter with every API endpoint registered.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/items", func(r chi.Router) {
		r.Get("/", h.listItems)
		r.Post("/", h.createItem)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.getItem)
			r.Put("/", h.updateItem)
			r.Delete("/", h.deleteItem)
			r.Patch("/status", h.changeStatus)
		})
	})
	r.Get("/board", h.board)
	r.Get("/calendar", h.calendar)
	r.Get("/timeline", h.timeline)
	r.Get("/overdue", h.overdue)
	r.Get("/rollup", h.rollup)
	r.Get("/changes", h.changes)
	r.Get("/priorities", h.priorities)
	r.Route("/users", func(r chi.Router) {
		r.Get("/", h.listUsers)
		r.Post("/", h.createUser)
	})

	return r
}

type workItemJSON struct {
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	Description    string          `json:"description,omitempty"`
	Priority       string          `json:"priority"`
	Status         string          `json:"status"`
	Category       string          `json:"category,omitempty"`
	Department     string          `json:"department,omitempty"`
	AssignedTo     []string        `json:"assignedTo"`
	StartDate      *time.Time      `json:"startDate,omitempty"`
	DueDate        *time.Time      `json:"dueDate,omitempty"`
	EstimatedHours float64         `json:"estimatedHours"`
	ActualHours    float64         `json:"actualHours"`
	Progress       int             `json:"progress"`
	Dependencies   []string        `json:"dependencies"`
	Tags           []string        `json:"tags"`
	Recurrence     *recurrenceJSON `json:"recurrence,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

type recurrenceJSON struct {
	Type     string     `json:"type"`
	Interval int        `json:"interval"`
	EndDate  *time.Time `json:"endDate,omitempty"`
}

func toItemJSON(item domain.WorkItem) workItemJSON {
	out := workItemJSON{
		ID:             item.ID,
		Title:          item.Title,
		Description:    item.Description,
		Priority:       string(item.Priority),
		Status:         string(item.Status),
		Category:       item.Category,
		Department:     item.Department,
		AssignedTo:     emptyIfNil(item.AssignedTo),
		StartDate:      item.StartDate,
		DueDate:        item.DueDate,
		EstimatedHours: item.EstimatedHours,
		ActualHours:    item.ActualHours,
		Progress:       item.Progress,
		Dependencies:   emptyIfNil(item.Dependencies),
		Tags:           emptyIfNil(item.Tags),
		CreatedAt:      item.CreatedAt,
		UpdatedAt:      item.UpdatedAt,
	}
	if item.Recurrence.IsRecurring {
		out.Recurrence = &recurrenceJSON{
			Type:     string(item.Recurrence.Type),
			Interval: item.Recurrence.Interval,
			EndDate:  item.Recurrence.EndDate,
		}
	}
	return out
}

func toItemsJSON(items []domain.WorkItem) []workItemJSON {
	out := make([]workItemJSON, 0, len(items))
	for _, item := range items {
		out = append(out, toItemJSON(item))
	}
	return out
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// listItems serves GET /items with optional query narrowing and sorting.
func (h *Handler) listItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items, err := h.svc.Search(r.Context(), q.Get("q"), app.SearchFilter{
		Status:     domain.Status(q.Get("status")),
		Priority:   domain.Priority(q.Get("priority")),
		Department: q.Get("department"),
		AssignedTo: q.Get("assignee"),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	key := dashboard.SortKey(q.Get("sort"))
	order := dashboard.SortAscending
	if q.Get("order") == string(dashboard.SortDescending) {
		order = dashboard.SortDescending
	}
	if key != "" {
		items = dashboard.SortItems(items, key, order)
	}
	writeJSON(w, http.StatusOK, toItemsJSON(items))
}

type createItemRequest struct {
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Priority       string          `json:"priority"`
	Status         string          `json:"status"`
	Category       string          `json:"category"`
	Department     string          `json:"department"`
	AssignedTo     []string        `json:"assignedTo"`
	StartDate      *time.Time      `json:"startDate"`
	DueDate        *time.Time      `json:"dueDate"`
	EstimatedHours float64         `json:"estimatedHours"`
	ActualHours    float64         `json:"actualHours"`
	Progress       int             `json:"progress"`
	Dependencies   []string        `json:"dependencies"`
	Tags           []string        `json:"tags"`
	Recurrence     *recurrenceJSON `json:"recurrence"`
}

func (h *Handler) createItem(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	in := app.CreateItemInput{
		Title:          req.Title,
		Description:    req.Description,
		Priority:       domain.Priority(req.Priority),
		Status:         domain.Status(req.Status),
		Category:       req.Category,
		Department:     req.Department,
		AssignedTo:     req.AssignedTo,
		StartDate:      req.StartDate,
		DueDate:        req.DueDate,
		EstimatedHours: req.EstimatedHours,
		ActualHours:    req.ActualHours,
		Progress:       req.Progress,
		Dependencies:   req.Dependencies,
		Tags:           req.Tags,
	}
	if req.Recurrence != nil {
		in.Recurrence = domain.Recurrence{
			IsRecurring: true,
			Type:        domain.RecurringType(req.Recurrence.Type),
			Interval:    req.Recurrence.Interval,
			EndDate:     req.Recurrence.EndDate,
		}
	}
	item, err := h.svc.Create(r.Context(), in)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusCreated, toItemJSON(item))
}

func (h *Handler) getItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toItemJSON(item))
}

type updateItemRequest struct {
	Title          *string         `json:"title"`
	Description    *string         `json:"description"`
	Priority       *string         `json:"priority"`
	Status         *string         `json:"status"`
	Category       *string         `json:"category"`
	Department     *string         `json:"department"`
	AssignedTo     []string        `json:"assignedTo"`
	StartDate      *time.Time      `json:"startDate"`
	ClearStartDate bool            `json:"clearStartDate"`
	DueDate        *time.Time      `json:"dueDate"`
	ClearDueDate   bool            `json:"clearDueDate"`
	EstimatedHours *float64        `json:"estimatedHours"`
	ActualHours    *float64        `json:"actualHours"`
	Progress       *int            `json:"progress"`
	Dependencies   []string        `json:"dependencies"`
	Tags           []string        `json:"tags"`
	Recurrence     *recurrenceJSON `json:"recurrence"`
}

func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request) {
	var req updateItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	in := app.UpdateItemInput{
		ItemID:         chi.URLParam(r, "id"),
		Title:          req.Title,
		Description:    req.Description,
		Category:       req.Category,
		Department:     req.Department,
		AssignedTo:     req.AssignedTo,
		StartDate:      req.StartDate,
		ClearStartDate: req.ClearStartDate,
		DueDate:        req.DueDate,
		ClearDueDate:   req.ClearDueDate,
		EstimatedHours: req.EstimatedHours,
		ActualHours:    req.ActualHours,
		Progress:       req.Progress,
		Dependencies:   req.Dependencies,
		Tags:           req.Tags,
	}
	if req.Priority != nil {
		p := domain.Priority(*req.Priority)
		in.Priority = &p
	}
	if req.Status != nil {
		s := domain.Status(*req.Status)
		in.Status = &s
	}
	if req.Recurrence != nil {
		in.Recurrence = &domain.Recurrence{
			IsRecurring: true,
			Type:        domain.RecurringType(req.Recurrence.Type),
			Interval:    req.Recurrence.Interval,
			EndDate:     req.Recurrence.EndDate,
		}
	}
	item, err := h.svc.Update(r.Context(), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toItemJSON(item))
}

func (h *Handler) deleteItem(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type changeStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) changeStatus(w http.ResponseWriter, r *http.Request) {
	var req changeStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	item, err := h.svc.ChangeStatus(r.Context(), chi.URLParam(r, "id"), domain.Status(req.Status))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toItemJSON(item))
}

type laneJSON struct {
	Status string         `json:"status"`
	Label  string         `json:"label"`
	Items  []workItemJSON `json:"items"`
}

// board serves GET /board: every item partitioned into the fixed lanes.
func (h *Handler) board(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	lanes := dashboard.ProjectBoard(items, domain.BoardLanes)
	out := make([]laneJSON, 0, len(lanes))
	for _, lane := range lanes {
		out = append(out, laneJSON{
			Status: string(lane.Status),
			Label:  lane.Label,
			Items:  toItemsJSON(lane.Items),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type calendarCellJSON struct {
	Date     string         `json:"date"`
	InMonth  bool           `json:"inMonth"`
	Today    bool           `json:"today"`
	Visible  []workItemJSON `json:"visible"`
	Overflow int            `json:"overflow"`
}

type calendarJSON struct {
	Year  int                `json:"year"`
	Month int                `json:"month"`
	Cells []calendarCellJSON `json:"cells"`
}

// calendar serves GET /calendar?year=&month= with the 42-cell month grid.
func (h *Handler) calendar(w http.ResponseWriter, r *http.Request) {
	now := h.clock()
	year, month := now.Year(), now.Month()
	if v := r.URL.Query().Get("year"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, errors.New("invalid year"))
			return
		}
		year = n
	}
	if v := r.URL.Query().Get("month"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 12 {
			writeError(w, http.StatusBadRequest, errors.New("invalid month"))
			return
		}
		month = time.Month(n)
	}

	items, err := h.svc.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	grid := dashboard.GenerateCalendar(year, month, items, now)
	out := calendarJSON{Year: grid.Year, Month: int(grid.Month)}
	for _, cell := range grid.Cells {
		out.Cells = append(out.Cells, calendarCellJSON{
			Date:     cell.Date.Format("2006-01-02"),
			InMonth:  cell.InMonth,
			Today:    cell.Today,
			Visible:  toItemsJSON(cell.Visible),
			Overflow: cell.Overflow,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type timelineBarJSON struct {
	Item        workItemJSON `json:"item"`
	LeftPct     float64      `json:"leftPct"`
	WidthPct    float64      `json:"widthPct"`
	ProgressPct float64      `json:"progressPct"`
}

type timelineJSON struct {
	Empty    bool              `json:"empty"`
	MinDate  *time.Time        `json:"minDate,omitempty"`
	MaxDate  *time.Time        `json:"maxDate,omitempty"`
	SpanDays int               `json:"spanDays"`
	Bars     []timelineBarJSON `json:"bars"`
}

// timeline serves GET /timeline with bar geometry for scheduled items.
func (h *Handler) timeline(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	layout := dashboard.LayoutTimeline(dashboard.EligibleForTimeline(items))
	out := timelineJSON{Empty: layout.Empty, SpanDays: layout.SpanDays, Bars: []timelineBarJSON{}}
	if !layout.Empty {
		min, max := layout.MinDate, layout.MaxDate
		out.MinDate, out.MaxDate = &min, &max
	}
	for _, bar := range layout.Bars {
		out.Bars = append(out.Bars, timelineBarJSON{
			Item:        toItemJSON(bar.Item),
			LeftPct:     bar.LeftPct,
			WidthPct:    bar.WidthPct,
			ProgressPct: bar.ProgressPct,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) overdue(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Overdue(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, toItemsJSON(items))
}

type rollupJSON struct {
	TotalItems                int `json:"totalItems"`
	ItemsWithDependencies     int `json:"itemsWithDependencies"`
	DependencyEdges           int `json:"dependencyEdges"`
	BlockedItems              int `json:"blockedItems"`
	UnresolvedDependencyEdges int `json:"unresolvedDependencyEdges"`
}

func (h *Handler) rollup(w http.ResponseWriter, r *http.Request) {
	rollup, err := h.svc.DependencyRollup(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, rollupJSON(rollup))
}

type changeEventJSON struct {
	ID         int64     `json:"id"`
	WorkItemID string    `json:"workItemId"`
	Operation  string    `json:"operation"`
	ActorID    string    `json:"actorId,omitempty"`
	Detail     string    `json:"detail,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

func (h *Handler) changes(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, errors.New("invalid limit"))
			return
		}
		limit = n
	}
	events, err := h.svc.RecentChanges(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	out := make([]changeEventJSON, 0, len(events))
	for _, ev := range events {
		out = append(out, changeEventJSON{
			ID:         ev.ID,
			WorkItemID: ev.WorkItemID,
			Operation:  string(ev.Operation),
			ActorID:    ev.ActorID,
			Detail:     ev.Detail,
			OccurredAt: ev.OccurredAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type priorityJSON struct {
	Value   string `json:"value"`
	Label   string `json:"label"`
	Color   string `json:"color"`
	Ordinal int    `json:"ordinal"`
}

func (h *Handler) priorities(w http.ResponseWriter, _ *http.Request) {
	infos := h.svc.Priorities()
	out := make([]priorityJSON, 0, len(infos))
	for _, info := range infos {
		out = append(out, priorityJSON{
			Value:   string(info.Value),
			Label:   info.Label,
			Color:   info.Color,
			Ordinal: info.Ordinal,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type userJSON struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"displayName"`
	Role        string    `json:"role,omitempty"`
	Department  string    `json:"department,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListUsers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	out := make([]userJSON, 0, len(users))
	for _, u := range users {
		out = append(out, userJSON{
			ID:          u.ID,
			DisplayName: u.DisplayName,
			Role:        u.Role,
			Department:  u.Department,
			CreatedAt:   u.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type createUserRequest struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Role        string `json:"role"`
	Department  string `json:"department"`
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	u, err := h.svc.CreateUser(r.Context(), req.ID, req.DisplayName, req.Role, req.Department)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusCreated, userJSON{
		ID:          u.ID,
		DisplayName: u.DisplayName,
		Role:        u.Role,
		Department:  u.Department,
		CreatedAt:   u.CreatedAt,
	})
}

type errorJSON struct {
	Error string `json:"error"`
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid JSON body"))
		return false
	}
	return true
}

func writeServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, app.ErrNotFound) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeError(w, http.StatusUnprocessableEntity, err)
}

func writeError(w http.ResponseWriter, status int, err error) {
	msg := "internal error"
	if err != nil && status < http.StatusInternalServerError {
		msg = err.Error()
	}
	writeJSON(w, status, errorJSON{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
