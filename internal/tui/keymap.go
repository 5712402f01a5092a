package tui

import "charm.land/bubbles/v2/key"

// keyMap represents key map data used by this package.
type keyMap struct {
	quit           key.Binding
	reload         key.Binding
	toggleHelp     key.Binding
	cycleView      key.Binding
	moveLeft       key.Binding
	moveRight      key.Binding
	moveUp         key.Binding
	moveDown       key.Binding
	prevPeriod     key.Binding
	nextPeriod     key.Binding
	addItem        key.Binding
	itemInfo       key.Binding
	editItem       key.Binding
	deleteItem     key.Binding
	moveItemLeft   key.Binding
	moveItemRight  key.Binding
	search         key.Binding
	cycleStatus    key.Binding
	cyclePriority  key.Binding
	toggleMine     key.Binding
	clearFilters   key.Binding
	cycleSort      key.Binding
	toggleOrder    key.Binding
	toggleSelect   key.Binding
	selectAll      key.Binding
	clearSelection key.Binding
	yank           key.Binding
	activityLog    key.Binding
}

// newKeyMap constructs key map.
func newKeyMap() keyMap {
	return keyMap{
		quit:           key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		reload:         key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		toggleHelp:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		cycleView:      key.NewBinding(key.WithKeys("v", "tab"), key.WithHelp("v", "next view")),
		moveLeft:       key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "lane left")),
		moveRight:      key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "lane right")),
		moveUp:         key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "item up")),
		moveDown:       key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "item down")),
		prevPeriod:     key.NewBinding(key.WithKeys("<", "pgup"), key.WithHelp("<", "previous month")),
		nextPeriod:     key.NewBinding(key.WithKeys(">", "pgdown"), key.WithHelp(">", "next month")),
		addItem:        key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new item")),
		itemInfo:       key.NewBinding(key.WithKeys("i", "enter"), key.WithHelp("i/enter", "item info")),
		editItem:       key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit item")),
		deleteItem:     key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		moveItemLeft:   key.NewBinding(key.WithKeys("["), key.WithHelp("[", "move to earlier lane")),
		moveItemRight:  key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "move to later lane")),
		search:         key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		cycleStatus:    key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "status filter")),
		cyclePriority:  key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "priority filter")),
		toggleMine:     key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "assigned to me")),
		clearFilters:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "clear filters")),
		cycleSort:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort key")),
		toggleOrder:    key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "sort order")),
		toggleSelect:   key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "select item")),
		selectAll:      key.NewBinding(key.WithKeys("V"), key.WithHelp("V", "select all visible")),
		clearSelection: key.NewBinding(key.WithKeys("X"), key.WithHelp("X", "clear selection")),
		yank:           key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy item")),
		activityLog:    key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "activity log")),
	}
}

// ShortHelp handles short help.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.cycleView, k.addItem, k.itemInfo, k.search, k.toggleSelect, k.toggleHelp, k.quit,
	}
}

// FullHelp handles full help.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.cycleView, k.addItem, k.itemInfo, k.editItem, k.deleteItem, k.search, k.activityLog, k.reload, k.quit},
		{k.moveLeft, k.moveRight, k.moveUp, k.moveDown, k.moveItemLeft, k.moveItemRight, k.prevPeriod, k.nextPeriod},
		{k.cycleStatus, k.cyclePriority, k.toggleMine, k.clearFilters, k.cycleSort, k.toggleOrder},
		{k.toggleSelect, k.selectAll, k.clearSelection, k.yank},
	}
}
