package schedule

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bnema/duty-agent/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

type RenderOptions struct {
	Now time.Time
}

func renderView(state domain.State, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render("Duty Schedule"),
		s.header.Render(fmt.Sprintf("days: %d", len(state.Pool))),
	}

	if len(state.Pool) == 0 {
		lines = append(lines, s.empty.Render("No schedule entries. Run `duty run` first."))
	}

	today := ""
	if !opts.Now.IsZero() {
		today = opts.Now.Format(domain.DateLayout)
	}

	for _, entry := range state.Pool {
		lines = append(lines, renderDay(entry, today, s))
	}

	lines = append(lines, s.section.Render(renderFairness(state.Fairness, s)))

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderDay(entry domain.DayEntry, today string, s styles) string {
	dateStyle := s.date
	marker := "  "
	switch {
	case entry.Date == today:
		dateStyle = s.today
		marker = "> "
	case today != "" && entry.Date < today:
		dateStyle = s.past
	}

	header := dateStyle.Render(strings.TrimSpace(marker + entry.Date + " " + entry.Day))
	parts := []string{header}

	for _, area := range sortedAreaNames(entry.AreaAssignments) {
		names := entry.AreaAssignments[area]
		rendered := s.empty.Render("(unassigned)")
		if len(names) > 0 {
			rendered = s.names.Render(strings.Join(names, ", "))
		}
		parts = append(parts, "  "+s.area.Render(area+":")+" "+rendered)
	}

	if entry.Note != "" {
		parts = append(parts, "  "+s.note.Render("note: "+entry.Note))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func renderFairness(fairness domain.FairnessState, s styles) string {
	parts := []string{
		s.queueKey.Render("debt:") + " " + renderIDList(fairness.DebtIDs, s.debt, s),
		s.queueKey.Render("credit:") + " " + renderIDList(fairness.CreditIDs, s.credit, s),
	}
	if fairness.MemoryNote != "" {
		parts = append(parts, s.queueKey.Render("memory:")+" "+s.note.Render(fairness.MemoryNote))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func renderIDList(ids []int, style lipgloss.Style, s styles) string {
	if len(ids) == 0 {
		return s.empty.Render("none")
	}

	rendered := make([]string, 0, len(ids))
	for _, id := range ids {
		rendered = append(rendered, fmt.Sprintf("%d", id))
	}
	return style.Render(strings.Join(rendered, ", "))
}

func sortedAreaNames(assignments map[string][]string) []string {
	names := make([]string, 0, len(assignments))
	for name := range assignments {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
