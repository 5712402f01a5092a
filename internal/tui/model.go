// Package tui implements the terminal dashboard: board, list, calendar, and
// timeline views over the shared work-item collection.
package tui

import (
	"context"
	"fmt"
	"image/color"
	"strconv"
	"strings"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/atotto/clipboard"

	"github.com/tmsolberg/hrdeck/internal/app"
	"github.com/tmsolberg/hrdeck/internal/dashboard"
	"github.com/tmsolberg/hrdeck/internal/domain"
)

// Service represents service data used by this package. It covers the write
// paths the dashboard controller does not own.
type Service interface {
	Create(context.Context, app.CreateItemInput) (domain.WorkItem, error)
	Update(context.Context, app.UpdateItemInput) (domain.WorkItem, error)
	Delete(context.Context, string) error
	RecentChanges(context.Context, int) ([]domain.ChangeEvent, error)
	NotifyOverdue(context.Context) (int, error)
}

// inputMode represents a selectable mode.
type inputMode int

// modeNone and related constants define package defaults.
const (
	modeNone inputMode = iota
	modeSearch
	modeForm
	modeItemInfo
	modeActivityLog
	modeConfirmDelete
)

// item-form field indexes used throughout keyboard/update logic.
const (
	fieldTitle = iota
	fieldDescription
	fieldDepartment
	fieldAssignees
	fieldStartDate
	fieldDueDate
	fieldEstimated
	fieldTags
	fieldCount
)

// fieldPriority is the virtual focus slot after the text fields; left/right
// cycle the priority value there.
const fieldPriority = fieldCount

const (
	dateLayout         = "2006-01-02"
	activityFetchLimit = 50
	activityViewWindow = 12
	calendarDayCellMin = 9
)

// statusFilterCycle is the f-key rotation over the status dimension.
var statusFilterCycle = []string{
	dashboard.FilterAll,
	string(domain.StatusPending),
	string(domain.StatusInProgress),
	string(domain.StatusOnHold),
	string(domain.StatusCompleted),
}

// priorityFilterCycle is the p-key rotation over the priority dimension.
var priorityFilterCycle = []string{
	dashboard.FilterAll,
	string(domain.PriorityLow),
	string(domain.PriorityMedium),
	string(domain.PriorityHigh),
	string(domain.PriorityCritical),
}

// Model is the bubbletea model for the dashboard.
type Model struct {
	svc  Service
	ctrl *dashboard.Controller

	ready  bool
	width  int
	height int
	err    error

	status string

	help help.Model
	keys keyMap

	clock          func() time.Time
	clipboardWrite func(string) error

	mode inputMode

	laneIdx int
	rowIdx  int
	listIdx int
	calRow  int
	calCol  int

	calYear  int
	calMonth time.Month

	searchInput textinput.Model

	formInputs    []textinput.Model
	formFocus     int
	priorityIdx   int
	editingItemID string

	infoItemID string
	detail     detailRenderer

	activity []domain.ChangeEvent

	pendingDeleteIDs []string
}

// loadedMsg carries message data through update handling.
type loadedMsg struct {
	err error
}

// actionMsg carries message data through update handling.
type actionMsg struct {
	err    error
	status string
	reload bool
}

// searchTickMsg fires when a search debounce timer expires.
type searchTickMsg struct {
	gen int
}

// activityLoadedMsg carries recent change events for the activity overlay.
type activityLoadedMsg struct {
	events []domain.ChangeEvent
	err    error
}

// NewModel constructs a new value for this package.
func NewModel(svc Service, ctrl *dashboard.Controller, opts ...Option) Model {
	h := help.New()
	h.ShowAll = false
	searchInput := textinput.New()
	searchInput.Prompt = "/ "
	searchInput.Placeholder = "title or description"
	searchInput.CharLimit = 120

	now := time.Now()
	m := Model{
		svc:            svc,
		ctrl:           ctrl,
		status:         "loading...",
		help:           h,
		keys:           newKeyMap(),
		clock:          time.Now,
		clipboardWrite: clipboard.WriteAll,
		searchInput:    searchInput,
		calYear:        now.Year(),
		calMonth:       now.Month(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	now = m.clock()
	m.calYear = now.Year()
	m.calMonth = now.Month()
	return m
}

// Init handles init.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadData, m.notifyOverdueCmd)
}

// Update updates state for the requested operation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		if m.status == "loading..." {
			m.status = "ready"
		}
		m.clampCursor()
		return m, nil

	case actionMsg:
		if msg.err != nil {
			m.status = "error: " + msg.err.Error()
			return m, nil
		}
		if msg.status != "" {
			m.status = msg.status
		}
		if msg.reload {
			return m, m.loadData
		}
		return m, nil

	case searchTickMsg:
		if m.ctrl.CommitSearch(msg.gen) {
			m.clampCursor()
			return m, m.loadData
		}
		return m, nil

	case activityLoadedMsg:
		if msg.err != nil {
			m.status = "error: " + msg.err.Error()
			m.mode = modeNone
			return m, nil
		}
		m.activity = msg.events
		return m, nil

	case tea.KeyPressMsg:
		if m.err != nil {
			switch msg.String() {
			case "r":
				return m, m.loadData
			case "q", "ctrl+c":
				return m, tea.Quit
			}
			return m, nil
		}
		if m.mode != modeNone {
			return m.handleInputModeKey(msg)
		}
		return m.handleNormalModeKey(msg)
	}
	return m, nil
}

// loadData refreshes the controller snapshot from the store.
func (m Model) loadData() tea.Msg {
	return loadedMsg{err: m.ctrl.Refresh(context.Background())}
}

// notifyOverdueCmd surfaces the startup overdue summary through the service notifier.
func (m Model) notifyOverdueCmd() tea.Msg {
	if _, err := m.svc.NotifyOverdue(context.Background()); err != nil {
		return actionMsg{err: err}
	}
	return nil
}

func (m Model) loadActivity() tea.Msg {
	events, err := m.svc.RecentChanges(context.Background(), activityFetchLimit)
	if err != nil {
		return activityLoadedMsg{err: err}
	}
	return activityLoadedMsg{events: events}
}

func (m Model) handleNormalModeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	keys := m.keys
	switch {
	case key.Matches(msg, keys.quit):
		return m, tea.Quit

	case key.Matches(msg, keys.reload):
		m.status = "reloading"
		return m, m.loadData

	case key.Matches(msg, keys.toggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, keys.cycleView):
		mode := m.ctrl.CycleView()
		m.status = "view: " + string(mode)
		m.clampCursor()
		return m, nil

	case key.Matches(msg, keys.search):
		m.mode = modeSearch
		m.searchInput.SetValue(m.ctrl.Filters().Search)
		m.status = "search"
		return m, m.searchInput.Focus()

	case key.Matches(msg, keys.cycleStatus):
		next := cycleValue(statusFilterCycle, m.ctrl.Filters().Status)
		m.ctrl.SetStatusFilter(next)
		m.status = "status filter: " + next
		m.clampCursor()
		return m, m.loadData

	case key.Matches(msg, keys.cyclePriority):
		next := cycleValue(priorityFilterCycle, m.ctrl.Filters().Priority)
		m.ctrl.SetPriorityFilter(next)
		m.status = "priority filter: " + next
		m.clampCursor()
		return m, m.loadData

	case key.Matches(msg, keys.toggleMine):
		if m.ctrl.Filters().AssignedTo == dashboard.AssigneeMe {
			m.ctrl.SetAssigneeFilter(dashboard.FilterAll)
			m.status = "assignee filter: all"
		} else {
			m.ctrl.SetAssigneeFilter(dashboard.AssigneeMe)
			m.status = "assignee filter: me"
		}
		m.clampCursor()
		return m, m.loadData

	case key.Matches(msg, keys.clearFilters):
		m.ctrl.ClearFilters()
		m.searchInput.SetValue("")
		m.status = "filters cleared"
		m.clampCursor()
		return m, m.loadData

	case key.Matches(msg, keys.cycleSort):
		sortKey, order := m.ctrl.Sort()
		nextKey := cycleSortKey(sortKey)
		m.ctrl.SetSort(nextKey, order)
		m.status = "sort: " + string(nextKey)
		return m, nil

	case key.Matches(msg, keys.toggleOrder):
		m.ctrl.ToggleSortOrder()
		_, order := m.ctrl.Sort()
		m.status = "order: " + string(order)
		return m, nil

	case key.Matches(msg, keys.toggleSelect):
		item, ok := m.currentItem()
		if !ok {
			return m, nil
		}
		if m.ctrl.ToggleSelect(item.ID) {
			m.status = "selected: " + item.Title
		} else {
			m.status = "deselected: " + item.Title
		}
		return m, nil

	case key.Matches(msg, keys.selectAll):
		m.ctrl.SetAllVisible(true)
		m.status = fmt.Sprintf("selected %d item(s)", m.ctrl.SelectionCount())
		return m, nil

	case key.Matches(msg, keys.clearSelection):
		m.ctrl.SetAllVisible(false)
		m.status = "selection cleared"
		return m, nil

	case key.Matches(msg, keys.moveItemLeft):
		return m.moveCurrentOrSelected(-1)

	case key.Matches(msg, keys.moveItemRight):
		return m.moveCurrentOrSelected(1)

	case key.Matches(msg, keys.addItem):
		m.startForm(nil)
		return m, m.focusFormField(fieldTitle)

	case key.Matches(msg, keys.editItem):
		item, ok := m.currentItem()
		if !ok {
			return m, nil
		}
		m.startForm(&item)
		return m, m.focusFormField(fieldTitle)

	case key.Matches(msg, keys.itemInfo):
		item, ok := m.currentItem()
		if !ok {
			return m, nil
		}
		m.mode = modeItemInfo
		m.infoItemID = item.ID
		m.status = "item info"
		return m, nil

	case key.Matches(msg, keys.deleteItem):
		ids := m.ctrl.Selected()
		if len(ids) == 0 {
			item, ok := m.currentItem()
			if !ok {
				return m, nil
			}
			ids = []string{item.ID}
		}
		m.pendingDeleteIDs = ids
		m.mode = modeConfirmDelete
		m.status = fmt.Sprintf("delete %d item(s)?", len(ids))
		return m, nil

	case key.Matches(msg, keys.yank):
		item, ok := m.currentItem()
		if !ok {
			return m, nil
		}
		if err := m.clipboardWrite(itemSummary(item)); err != nil {
			m.status = "clipboard unavailable"
		} else {
			m.status = "copied: " + item.Title
		}
		return m, nil

	case key.Matches(msg, keys.activityLog):
		m.mode = modeActivityLog
		m.status = "activity log"
		return m, m.loadActivity

	case key.Matches(msg, keys.prevPeriod):
		if m.ctrl.View() == dashboard.ViewCalendar {
			m.shiftMonth(-1)
		}
		return m, nil

	case key.Matches(msg, keys.nextPeriod):
		if m.ctrl.View() == dashboard.ViewCalendar {
			m.shiftMonth(1)
		}
		return m, nil

	case key.Matches(msg, keys.moveLeft):
		m.moveCursor(-1, 0)
		return m, nil
	case key.Matches(msg, keys.moveRight):
		m.moveCursor(1, 0)
		return m, nil
	case key.Matches(msg, keys.moveUp):
		m.moveCursor(0, -1)
		return m, nil
	case key.Matches(msg, keys.moveDown):
		m.moveCursor(0, 1)
		return m, nil
	}
	return m, nil
}

func (m Model) handleInputModeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeSearch:
		switch {
		case msg.Code == tea.KeyEscape || msg.String() == "esc":
			m.mode = modeNone
			m.searchInput.Blur()
			m.status = "cancelled"
			return m, nil
		case msg.Code == tea.KeyEnter || msg.String() == "enter":
			// Commit immediately, skipping the remaining quiet period.
			gen := m.ctrl.SearchInput(m.searchInput.Value())
			m.mode = modeNone
			m.searchInput.Blur()
			m.status = "search applied"
			if m.ctrl.CommitSearch(gen) {
				m.clampCursor()
				return m, m.loadData
			}
			return m, nil
		default:
			var cmd tea.Cmd
			m.searchInput, cmd = m.searchInput.Update(msg)
			gen := m.ctrl.SearchInput(m.searchInput.Value())
			return m, tea.Batch(cmd, m.debounceCmd(gen))
		}

	case modeForm:
		return m.handleFormKey(msg)

	case modeItemInfo:
		switch msg.String() {
		case "esc", "i", "enter", "q":
			m.mode = modeNone
			m.infoItemID = ""
			m.status = "ready"
			return m, nil
		case "e":
			if item, ok := m.itemByID(m.infoItemID); ok {
				m.startForm(&item)
				return m, m.focusFormField(fieldTitle)
			}
			return m, nil
		case "y":
			if item, ok := m.itemByID(m.infoItemID); ok {
				if err := m.clipboardWrite(itemSummary(item)); err != nil {
					m.status = "clipboard unavailable"
				} else {
					m.status = "copied: " + item.Title
				}
			}
			return m, nil
		}
		return m, nil

	case modeActivityLog:
		switch {
		case msg.String() == "esc" || msg.String() == "q" || key.Matches(msg, m.keys.activityLog):
			m.mode = modeNone
			m.status = "ready"
			return m, nil
		}
		return m, nil

	case modeConfirmDelete:
		switch msg.String() {
		case "y", "Y", "enter":
			ids := m.pendingDeleteIDs
			m.pendingDeleteIDs = nil
			m.mode = modeNone
			return m, m.deleteItemsCmd(ids)
		case "n", "N", "esc":
			m.pendingDeleteIDs = nil
			m.mode = modeNone
			m.status = "cancelled"
			return m, nil
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleFormKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Code == tea.KeyEscape || msg.String() == "esc":
		m.mode = modeNone
		m.status = "cancelled"
		return m, nil

	case msg.Code == tea.KeyTab || msg.String() == "tab" || msg.String() == "down":
		return m, m.focusFormField(wrapIndex(m.formFocus, 1, fieldCount+1))

	case msg.String() == "shift+tab" || msg.String() == "backtab" || msg.String() == "up":
		return m, m.focusFormField(wrapIndex(m.formFocus, -1, fieldCount+1))

	case m.formFocus == fieldPriority && (msg.String() == "left" || msg.String() == "h"):
		m.priorityIdx = wrapIndex(m.priorityIdx, -1, len(domain.Priorities()))
		return m, nil

	case m.formFocus == fieldPriority && (msg.String() == "right" || msg.String() == "l" || msg.String() == " "):
		m.priorityIdx = wrapIndex(m.priorityIdx, 1, len(domain.Priorities()))
		return m, nil

	case msg.Code == tea.KeyEnter || msg.String() == "enter" || msg.String() == "ctrl+s":
		if m.formFocus < fieldCount-1 && msg.String() != "ctrl+s" {
			return m, m.focusFormField(m.formFocus + 1)
		}
		return m.submitForm()

	default:
		if m.formFocus < fieldCount {
			var cmd tea.Cmd
			m.formInputs[m.formFocus], cmd = m.formInputs[m.formFocus].Update(msg)
			return m, cmd
		}
		return m, nil
	}
}

// startForm prepares the add/edit form; a nil item means create.
func (m *Model) startForm(item *domain.WorkItem) {
	placeholders := [fieldCount]string{
		"title",
		"description",
		"department",
		"comma-separated user ids, or me",
		"YYYY-MM-DD",
		"YYYY-MM-DD",
		"hours, e.g. 4.5",
		"comma-separated tags",
	}
	m.formInputs = make([]textinput.Model, fieldCount)
	for i := range m.formInputs {
		in := textinput.New()
		in.Prompt = ""
		in.Placeholder = placeholders[i]
		in.CharLimit = 400
		m.formInputs[i] = in
	}
	m.priorityIdx = 1 // medium
	m.editingItemID = ""
	if item != nil {
		m.editingItemID = item.ID
		m.formInputs[fieldTitle].SetValue(item.Title)
		m.formInputs[fieldDescription].SetValue(item.Description)
		m.formInputs[fieldDepartment].SetValue(item.Department)
		m.formInputs[fieldAssignees].SetValue(strings.Join(item.AssignedTo, ", "))
		if item.StartDate != nil {
			m.formInputs[fieldStartDate].SetValue(item.StartDate.Format(dateLayout))
		}
		if item.DueDate != nil {
			m.formInputs[fieldDueDate].SetValue(item.DueDate.Format(dateLayout))
		}
		if item.EstimatedHours > 0 {
			m.formInputs[fieldEstimated].SetValue(strconv.FormatFloat(item.EstimatedHours, 'f', -1, 64))
		}
		m.formInputs[fieldTags].SetValue(strings.Join(item.Tags, ", "))
		m.priorityIdx = domain.PriorityRank(item.Priority)
		if m.priorityIdx >= len(domain.Priorities()) {
			m.priorityIdx = 1
		}
	}
	m.mode = modeForm
	if item == nil {
		m.status = "new item"
	} else {
		m.status = "edit item"
	}
}

func (m *Model) focusFormField(idx int) tea.Cmd {
	m.formFocus = clamp(idx, 0, fieldCount)
	var cmd tea.Cmd
	for i := range m.formInputs {
		if i == m.formFocus {
			cmd = m.formInputs[i].Focus()
		} else {
			m.formInputs[i].Blur()
		}
	}
	return cmd
}

func (m Model) submitForm() (tea.Model, tea.Cmd) {
	title := strings.TrimSpace(m.formInputs[fieldTitle].Value())
	if title == "" {
		m.status = "title is required"
		return m, nil
	}

	start, err := parseOptionalDate(m.formInputs[fieldStartDate].Value())
	if err != nil {
		m.status = "invalid start date"
		return m, nil
	}
	due, err := parseOptionalDate(m.formInputs[fieldDueDate].Value())
	if err != nil {
		m.status = "invalid due date"
		return m, nil
	}
	estimated := 0.0
	if v := strings.TrimSpace(m.formInputs[fieldEstimated].Value()); v != "" {
		estimated, err = strconv.ParseFloat(v, 64)
		if err != nil || estimated < 0 {
			m.status = "invalid estimated hours"
			return m, nil
		}
	}

	priority := domain.Priorities()[clamp(m.priorityIdx, 0, len(domain.Priorities())-1)].Value
	description := m.formInputs[fieldDescription].Value()
	department := strings.TrimSpace(m.formInputs[fieldDepartment].Value())
	assignees := splitList(m.formInputs[fieldAssignees].Value())
	tags := splitList(m.formInputs[fieldTags].Value())

	editingID := m.editingItemID
	m.mode = modeNone
	m.editingItemID = ""

	if editingID == "" {
		in := app.CreateItemInput{
			Title:          title,
			Description:    description,
			Priority:       priority,
			Department:     department,
			AssignedTo:     assignees,
			StartDate:      start,
			DueDate:        due,
			EstimatedHours: estimated,
			Tags:           tags,
		}
		return m, func() tea.Msg {
			item, err := m.svc.Create(context.Background(), in)
			if err != nil {
				return actionMsg{err: err}
			}
			return actionMsg{status: "created: " + item.Title, reload: true}
		}
	}

	in := app.UpdateItemInput{
		ItemID:         editingID,
		Title:          &title,
		Description:    &description,
		Priority:       &priority,
		Department:     &department,
		AssignedTo:     assignees,
		StartDate:      start,
		ClearStartDate: start == nil,
		DueDate:        due,
		ClearDueDate:   due == nil,
		EstimatedHours: &estimated,
		Tags:           tags,
	}
	return m, func() tea.Msg {
		item, err := m.svc.Update(context.Background(), in)
		if err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{status: "updated: " + item.Title, reload: true}
	}
}

// moveCurrentOrSelected shifts the selection (or the cursor item) one lane in
// the given direction. Items already at the boundary stay put.
func (m Model) moveCurrentOrSelected(dir int) (tea.Model, tea.Cmd) {
	ids := m.ctrl.Selected()
	if len(ids) == 0 {
		item, ok := m.currentItem()
		if !ok {
			return m, nil
		}
		ids = []string{item.ID}
	}

	visible := m.ctrl.Visible()
	byID := make(map[string]domain.WorkItem, len(visible))
	for _, item := range visible {
		byID[item.ID] = item
	}

	requests := make([]dashboard.StatusChangeRequest, 0, len(ids))
	for _, id := range ids {
		item, ok := byID[id]
		if !ok {
			continue
		}
		idx := laneIndex(item.Status)
		next := idx + dir
		if idx < 0 || next < 0 || next >= len(domain.BoardLanes) {
			continue
		}
		requests = append(requests, dashboard.StatusChangeRequest{
			ItemID: id,
			Target: string(domain.BoardLanes[next]),
		})
	}
	if len(requests) == 0 {
		return m, nil
	}

	ctrl := m.ctrl
	return m, func() tea.Msg {
		moved := 0
		for _, req := range requests {
			ok, err := ctrl.RequestStatusChange(context.Background(), req)
			if err != nil {
				return actionMsg{err: err}
			}
			if ok {
				moved++
			}
		}
		return actionMsg{status: fmt.Sprintf("moved %d item(s)", moved), reload: true}
	}
}

func (m Model) deleteItemsCmd(ids []string) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		for _, id := range ids {
			if err := svc.Delete(context.Background(), id); err != nil {
				return actionMsg{err: err}
			}
		}
		return actionMsg{status: fmt.Sprintf("deleted %d item(s)", len(ids)), reload: true}
	}
}

func (m Model) debounceCmd(gen int) tea.Cmd {
	return tea.Tick(m.ctrl.Debounce(), func(time.Time) tea.Msg {
		return searchTickMsg{gen: gen}
	})
}

// moveCursor shifts the navigation cursor; behavior depends on the view.
func (m *Model) moveCursor(dx, dy int) {
	switch m.ctrl.View() {
	case dashboard.ViewBoard:
		lanes := m.ctrl.Board()
		m.laneIdx = clamp(m.laneIdx+dx, 0, len(lanes)-1)
		laneItems := lanes[m.laneIdx].Items
		m.rowIdx = clamp(m.rowIdx+dy, 0, max(0, len(laneItems)-1))
	case dashboard.ViewCalendar:
		m.calCol = clamp(m.calCol+dx, 0, dashboard.CalendarCols-1)
		m.calRow = clamp(m.calRow+dy, 0, dashboard.CalendarRows-1)
	default:
		visible := m.ctrl.Visible()
		m.listIdx = clamp(m.listIdx+dy+dx, 0, max(0, len(visible)-1))
	}
}

func (m *Model) clampCursor() {
	lanes := m.ctrl.Board()
	m.laneIdx = clamp(m.laneIdx, 0, max(0, len(lanes)-1))
	if len(lanes) > 0 {
		m.rowIdx = clamp(m.rowIdx, 0, max(0, len(lanes[m.laneIdx].Items)-1))
	} else {
		m.rowIdx = 0
	}
	m.listIdx = clamp(m.listIdx, 0, max(0, len(m.ctrl.Visible())-1))
	m.calRow = clamp(m.calRow, 0, dashboard.CalendarRows-1)
	m.calCol = clamp(m.calCol, 0, dashboard.CalendarCols-1)
}

func (m *Model) shiftMonth(delta int) {
	month := time.Date(m.calYear, m.calMonth, 1, 0, 0, 0, 0, time.UTC).AddDate(0, delta, 0)
	m.calYear = month.Year()
	m.calMonth = month.Month()
	m.status = fmt.Sprintf("calendar: %s %d", m.calMonth, m.calYear)
}

// currentItem resolves the cursor to a work item for the active view.
func (m Model) currentItem() (domain.WorkItem, bool) {
	switch m.ctrl.View() {
	case dashboard.ViewBoard:
		lanes := m.ctrl.Board()
		if len(lanes) == 0 {
			return domain.WorkItem{}, false
		}
		lane := lanes[clamp(m.laneIdx, 0, len(lanes)-1)]
		if len(lane.Items) == 0 {
			return domain.WorkItem{}, false
		}
		return lane.Items[clamp(m.rowIdx, 0, len(lane.Items)-1)], true
	case dashboard.ViewCalendar:
		grid := m.calendarGrid()
		idx := clamp(m.calRow, 0, dashboard.CalendarRows-1)*dashboard.CalendarCols +
			clamp(m.calCol, 0, dashboard.CalendarCols-1)
		if idx >= len(grid.Cells) || len(grid.Cells[idx].Items) == 0 {
			return domain.WorkItem{}, false
		}
		return grid.Cells[idx].Items[0], true
	case dashboard.ViewTimeline:
		layout := m.ctrl.Timeline()
		if len(layout.Bars) == 0 {
			return domain.WorkItem{}, false
		}
		return layout.Bars[clamp(m.listIdx, 0, len(layout.Bars)-1)].Item, true
	default:
		visible := m.ctrl.Visible()
		if len(visible) == 0 {
			return domain.WorkItem{}, false
		}
		return visible[clamp(m.listIdx, 0, len(visible)-1)], true
	}
}

func (m Model) itemByID(id string) (domain.WorkItem, bool) {
	for _, item := range m.ctrl.Visible() {
		if item.ID == id {
			return item, true
		}
	}
	return domain.WorkItem{}, false
}

func (m Model) calendarGrid() dashboard.CalendarGrid {
	return m.ctrl.Calendar(m.calYear, m.calMonth, m.clock())
}

// View renders the active view plus any overlay.
func (m Model) View() tea.View {
	if m.err != nil {
		v := tea.NewView("error: " + m.err.Error() + "\n\npress r to retry • q quit\n")
		v.AltScreen = true
		return v
	}
	if !m.ready {
		v := tea.NewView("loading...")
		v.AltScreen = true
		return v
	}

	accent := lipgloss.Color("62")
	muted := lipgloss.Color("241")
	dim := lipgloss.Color("239")
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	statusStyle := lipgloss.NewStyle().Foreground(dim)

	header := titleStyle.Render("hrdeck") +
		statusStyle.Render("  ["+string(m.ctrl.View())+"]") +
		statusStyle.Render(m.filtersSummary())
	if count := m.ctrl.SelectionCount(); count > 0 {
		header += statusStyle.Render(fmt.Sprintf("  selected: %d", count))
	}
	sortKey, sortOrder := m.ctrl.Sort()
	header += statusStyle.Render(fmt.Sprintf("  sort: %s %s", sortKey, sortOrder))

	var body string
	switch m.ctrl.View() {
	case dashboard.ViewBoard:
		body = m.renderBoard(accent, muted, dim)
	case dashboard.ViewList:
		body = m.renderList(accent, muted)
	case dashboard.ViewCalendar:
		body = m.renderCalendar(accent, muted, dim)
	case dashboard.ViewTimeline:
		body = m.renderTimeline(accent, muted)
	}

	statusLine := statusStyle.Render(m.status)
	helpBubble := m.help
	helpBubble.SetWidth(max(0, m.width-2))
	helpLine := lipgloss.NewStyle().
		Foreground(muted).
		Padding(0, 1).
		Render(helpBubble.View(m.keys))

	content := header + "\n\n" + body + "\n" + statusLine + "\n" + helpLine
	if overlay := m.renderOverlay(accent, muted); overlay != "" {
		content += "\n" + overlay
	}

	v := tea.NewView(content)
	v.AltScreen = true
	return v
}

func (m Model) filtersSummary() string {
	f := m.ctrl.Filters()
	var parts []string
	if f.Search != "" {
		parts = append(parts, "search: "+f.Search)
	}
	if f.Status != "" && f.Status != dashboard.FilterAll {
		parts = append(parts, "status: "+f.Status)
	}
	if f.Priority != "" && f.Priority != dashboard.FilterAll {
		parts = append(parts, "priority: "+f.Priority)
	}
	if f.AssignedTo != "" && f.AssignedTo != dashboard.FilterAll {
		parts = append(parts, "assignee: "+f.AssignedTo)
	}
	if f.Department != "" && f.Department != dashboard.FilterAll {
		parts = append(parts, "dept: "+f.Department)
	}
	if len(parts) == 0 {
		return ""
	}
	return "  " + strings.Join(parts, "  ")
}

func (m Model) renderBoard(accent, muted, dim color.Color) string {
	lanes := m.ctrl.Board()
	colWidth := max(18, m.width/max(1, len(lanes))-3)

	baseCol := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(dim).
		Padding(0, 1).
		MarginRight(1).
		Width(colWidth)
	selCol := baseCol.BorderForeground(accent)
	laneTitle := lipgloss.NewStyle().Bold(true).Foreground(accent)
	cursorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	subStyle := lipgloss.NewStyle().Foreground(muted)

	views := make([]string, 0, len(lanes))
	for laneIdx, lane := range lanes {
		lines := []string{laneTitle.Render(fmt.Sprintf("%s (%d)", lane.Label, len(lane.Items)))}
		for rowIdx, item := range lane.Items {
			marker := "  "
			if m.ctrl.IsSelected(item.ID) {
				marker = "✓ "
			}
			line := marker + truncate(item.Title, colWidth-4)
			if laneIdx == m.laneIdx && rowIdx == m.rowIdx {
				line = cursorStyle.Render(line)
			}
			lines = append(lines, line)
			lines = append(lines, subStyle.Render("   "+m.itemMeta(item, colWidth-5)))
		}
		if len(lane.Items) == 0 {
			lines = append(lines, subStyle.Render("  (empty)"))
		}
		style := baseCol
		if laneIdx == m.laneIdx {
			style = selCol
		}
		views = append(views, style.Render(strings.Join(lines, "\n")))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, views...)
}

func (m Model) renderList(accent, muted color.Color) string {
	visible := m.ctrl.Visible()
	if len(visible) == 0 {
		return lipgloss.NewStyle().Foreground(muted).Render("no items match the active filters")
	}
	cursorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	subStyle := lipgloss.NewStyle().Foreground(muted)

	var b strings.Builder
	for idx, item := range visible {
		marker := "  "
		if m.ctrl.IsSelected(item.ID) {
			marker = "✓ "
		}
		line := fmt.Sprintf("%s%-10s %-12s %s", marker,
			domain.StatusLabel(item.Status), priorityLabel(item.Priority),
			truncate(item.Title, max(10, m.width-30)))
		if idx == m.listIdx {
			line = cursorStyle.Render(line)
		}
		b.WriteString(line + "\n")
		if meta := m.itemMeta(item, m.width-6); meta != "" {
			b.WriteString(subStyle.Render("    "+meta) + "\n")
		}
	}
	return b.String()
}

func (m Model) renderCalendar(accent, muted, dim color.Color) string {
	grid := m.calendarGrid()
	cellWidth := max(calendarDayCellMin, m.width/dashboard.CalendarCols-2)

	header := lipgloss.NewStyle().Bold(true).Foreground(accent).
		Render(fmt.Sprintf("%s %d", grid.Month, grid.Year))

	dayStyle := lipgloss.NewStyle().Foreground(muted).Width(cellWidth + 2)
	var dayNames strings.Builder
	for _, name := range []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"} {
		dayNames.WriteString(dayStyle.Render(name))
	}

	baseCell := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(dim).
		Width(cellWidth)
	selCell := baseCell.BorderForeground(accent)
	outStyle := lipgloss.NewStyle().Foreground(dim)
	todayStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	itemStyle := lipgloss.NewStyle().Foreground(muted)

	var rows []string
	for row := 0; row < dashboard.CalendarRows; row++ {
		var cells []string
		for col := 0; col < dashboard.CalendarCols; col++ {
			cell := grid.Cells[row*dashboard.CalendarCols+col]
			day := strconv.Itoa(cell.Date.Day())
			switch {
			case cell.Today:
				day = todayStyle.Render(day)
			case !cell.InMonth:
				day = outStyle.Render(day)
			}
			lines := []string{day}
			for _, item := range cell.Visible {
				lines = append(lines, itemStyle.Render("• "+truncate(item.Title, cellWidth-3)))
			}
			if cell.Overflow > 0 {
				lines = append(lines, itemStyle.Render(fmt.Sprintf("+%d more", cell.Overflow)))
			}
			style := baseCell
			if row == m.calRow && col == m.calCol {
				style = selCell
			}
			cells = append(cells, style.Render(strings.Join(lines, "\n")))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return header + "\n" + dayNames.String() + "\n" + strings.Join(rows, "\n")
}

func (m Model) renderTimeline(accent, muted color.Color) string {
	layout := m.ctrl.Timeline()
	if layout.Empty {
		return lipgloss.NewStyle().Foreground(muted).
			Render("no items with both a start and a due date")
	}
	axisWidth := max(20, m.width-36)
	cursorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	barStyle := lipgloss.NewStyle().Foreground(accent)
	subStyle := lipgloss.NewStyle().Foreground(muted)

	header := subStyle.Render(fmt.Sprintf("%s — %s (%d days)",
		layout.MinDate.Format(dateLayout), layout.MaxDate.Format(dateLayout), layout.SpanDays))

	var b strings.Builder
	b.WriteString(header + "\n")
	for idx, bar := range layout.Bars {
		label := truncate(bar.Item.Title, 24)
		if idx == m.listIdx {
			label = cursorStyle.Render(label)
		}
		left := int(bar.LeftPct / 100 * float64(axisWidth))
		width := int(bar.WidthPct / 100 * float64(axisWidth))
		if width < 1 {
			width = 1
		}
		if left+width > axisWidth {
			width = max(1, axisWidth-left)
		}
		track := strings.Repeat(" ", left) + barStyle.Render(strings.Repeat("█", width))
		b.WriteString(fmt.Sprintf("%-26s %s %3.0f%%\n", label, track, bar.ProgressPct))
	}
	return b.String()
}

func (m Model) renderOverlay(accent, muted color.Color) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(1, 2).
		Width(max(30, min(m.width-4, 78)))
	headStyle := lipgloss.NewStyle().Bold(true).Foreground(accent)
	subStyle := lipgloss.NewStyle().Foreground(muted)

	switch m.mode {
	case modeSearch:
		return boxStyle.Render(headStyle.Render("Search") + "\n\n" + m.searchInput.View() +
			"\n\n" + subStyle.Render("enter apply • esc cancel"))

	case modeForm:
		labels := [fieldCount]string{
			"Title", "Description", "Department", "Assignees",
			"Start date", "Due date", "Estimated hours", "Tags",
		}
		var b strings.Builder
		title := "New Item"
		if m.editingItemID != "" {
			title = "Edit Item"
		}
		b.WriteString(headStyle.Render(title) + "\n\n")
		for i := 0; i < fieldCount; i++ {
			cursor := "  "
			if i == m.formFocus {
				cursor = "> "
			}
			b.WriteString(fmt.Sprintf("%s%-16s %s\n", cursor, labels[i], m.formInputs[i].View()))
		}
		cursor := "  "
		if m.formFocus == fieldPriority {
			cursor = "> "
		}
		info := domain.Priorities()[clamp(m.priorityIdx, 0, len(domain.Priorities())-1)]
		b.WriteString(fmt.Sprintf("%s%-16s ◀ %s ▶\n", cursor, "Priority", info.Label))
		b.WriteString("\n" + subStyle.Render("tab next • enter save • esc cancel"))
		return boxStyle.Render(b.String())

	case modeItemInfo:
		item, ok := m.itemByID(m.infoItemID)
		if !ok {
			return boxStyle.Render(subStyle.Render("item is no longer visible • esc close"))
		}
		body := m.detail.renderItem(item, min(m.width-12, 70))
		return boxStyle.Render(headStyle.Render(item.Title) + "\n" + body +
			"\n\n" + subStyle.Render("e edit • y copy • esc close"))

	case modeActivityLog:
		var b strings.Builder
		b.WriteString(headStyle.Render("Activity") + "\n\n")
		if len(m.activity) == 0 {
			b.WriteString(subStyle.Render("no recorded changes"))
		}
		limit := min(len(m.activity), activityViewWindow)
		for _, ev := range m.activity[:limit] {
			line := fmt.Sprintf("%s  %-13s %s",
				ev.OccurredAt.Local().Format("Jan 02 15:04"), ev.Operation, truncate(ev.Detail, 40))
			b.WriteString(line + "\n")
		}
		b.WriteString("\n" + subStyle.Render("esc close"))
		return boxStyle.Render(b.String())

	case modeConfirmDelete:
		return boxStyle.Render(headStyle.Render("Delete") + "\n\n" +
			fmt.Sprintf("Delete %d item(s)? This cannot be undone.", len(m.pendingDeleteIDs)) +
			"\n\n" + subStyle.Render("y confirm • n cancel"))
	}
	return ""
}

func (m Model) itemMeta(item domain.WorkItem, width int) string {
	parts := []string{priorityLabel(item.Priority)}
	if item.DueDate != nil {
		due := "due " + item.DueDate.Format(dateLayout)
		if item.Overdue(m.clock()) {
			due += " (overdue)"
		}
		parts = append(parts, due)
	}
	if len(item.AssignedTo) > 0 {
		parts = append(parts, strings.Join(item.AssignedTo, ","))
	}
	if item.Progress > 0 {
		parts = append(parts, fmt.Sprintf("%d%%", item.Progress))
	}
	return truncate(strings.Join(parts, " • "), max(0, width))
}

func priorityLabel(p domain.Priority) string {
	if info, ok := domain.PriorityLookup(p); ok {
		return info.Label
	}
	return string(p)
}

func laneIndex(s domain.Status) int {
	for i, lane := range domain.BoardLanes {
		if lane == s {
			return i
		}
	}
	return -1
}

func itemSummary(item domain.WorkItem) string {
	parts := []string{item.Title, "status: " + string(item.Status), "priority: " + string(item.Priority)}
	if item.DueDate != nil {
		parts = append(parts, "due: "+item.DueDate.Format(dateLayout))
	}
	return strings.Join(parts, "\n")
}

func parseOptionalDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, err
	}
	t = t.UTC()
	return &t, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func cycleValue(cycle []string, current string) string {
	if current == "" {
		current = dashboard.FilterAll
	}
	for i, v := range cycle {
		if v == current {
			return cycle[(i+1)%len(cycle)]
		}
	}
	return cycle[0]
}

func cycleSortKey(current dashboard.SortKey) dashboard.SortKey {
	for i, k := range dashboard.SortKeys {
		if k == current {
			return dashboard.SortKeys[(i+1)%len(dashboard.SortKeys)]
		}
	}
	return dashboard.SortKeys[0]
}

func wrapIndex(current, delta, size int) int {
	if size <= 0 {
		return 0
	}
	next := (current + delta) % size
	if next < 0 {
		next += size
	}
	return next
}

func clamp(v, minV, maxV int) int {
	if maxV < minV {
		return minV
	}
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

func truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen == 1 {
		return "…"
	}
	return string(runes[:maxLen-1]) + "…"
}
