package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/tmsolberg/hrdeck/internal/domain"
)

// minDetailWrap keeps glamour output readable on very narrow terminals.
const minDetailWrap = 24

// detailRenderer turns one work item into the glamour-styled body of the
// info overlay. The underlying term renderer is rebuilt lazily whenever the
// wrap width changes.
type detailRenderer struct {
	wrap     int
	renderer *glamour.TermRenderer
}

// renderItem produces the ANSI-styled detail body for an item at the given
// wrap width. Rendering failures fall back to the raw markdown source.
func (r *detailRenderer) renderItem(item domain.WorkItem, width int) string {
	source := strings.TrimSpace(itemMarkdown(item))
	if source == "" {
		return ""
	}

	wrap := width
	if wrap < minDetailWrap {
		wrap = minDetailWrap
	}
	renderer := r.ensure(wrap)
	if renderer == nil {
		return source
	}

	rendered, err := renderer.Render(source)
	if err != nil {
		return source
	}
	return strings.TrimRight(rendered, "\n")
}

func (r *detailRenderer) ensure(wrap int) *glamour.TermRenderer {
	if r.renderer != nil && r.wrap == wrap {
		return r.renderer
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return nil
	}
	r.renderer = renderer
	r.wrap = wrap
	return renderer
}

// itemMarkdown builds the markdown source for the info overlay.
func itemMarkdown(item domain.WorkItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**Status:** %s  \n**Priority:** %s\n\n", domain.StatusLabel(item.Status), priorityLabel(item.Priority))
	if item.Description != "" {
		b.WriteString(item.Description + "\n\n")
	}
	if item.Department != "" {
		fmt.Fprintf(&b, "- Department: %s\n", item.Department)
	}
	if len(item.AssignedTo) > 0 {
		fmt.Fprintf(&b, "- Assigned: %s\n", strings.Join(item.AssignedTo, ", "))
	}
	if item.StartDate != nil {
		fmt.Fprintf(&b, "- Start: %s\n", item.StartDate.Format(dateLayout))
	}
	if item.DueDate != nil {
		fmt.Fprintf(&b, "- Due: %s\n", item.DueDate.Format(dateLayout))
	}
	if item.EstimatedHours > 0 {
		fmt.Fprintf(&b, "- Estimated: %.1fh (actual %.1fh)\n", item.EstimatedHours, item.ActualHours)
	}
	if item.Progress > 0 {
		fmt.Fprintf(&b, "- Progress: %d%%\n", item.Progress)
	}
	if len(item.Dependencies) > 0 {
		fmt.Fprintf(&b, "- Depends on: %s\n", strings.Join(item.Dependencies, ", "))
	}
	if len(item.Tags) > 0 {
		fmt.Fprintf(&b, "- Tags: %s\n", strings.Join(item.Tags, ", "))
	}
	if item.Recurrence.IsRecurring {
		fmt.Fprintf(&b, "- Repeats: every %d %s\n", item.Recurrence.Interval, item.Recurrence.Type)
	}
	return b.String()
}
