// internal/ui/render.go
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/jason-s-yu/deckforge/internal/models"
	"github.com/jason-s-yu/deckforge/internal/monitor"
	"github.com/jason-s-yu/deckforge/internal/presenter"
)

// LogLine renders one monitor line as "[15:04:05] Agent: message".
func LogLine(s Styles, l monitor.Line) string {
	agent := s.Agent.Render(l.Agent)
	if l.System {
		agent = s.System.Render(l.Agent)
	}
	ts := s.Subtle.Render("[" + l.Time.Format("15:04:05") + "]")
	return fmt.Sprintf("%s %s: %s", ts, agent, l.Message)
}

// LogLines renders the log in arrival order.
func LogLines(s Styles, lines []monitor.Line) string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = LogLine(s, l)
	}
	return strings.Join(out, "\n")
}

// MonitorHeader renders the job title, its state, and any notice.
func MonitorHeader(s Styles, v monitor.View) string {
	var b strings.Builder
	b.WriteString(s.Title.Render(fmt.Sprintf("Job #%d", v.JobID)))
	b.WriteString("  ")
	b.WriteString(s.StateStyle(v.State).Render(strings.ToUpper(string(v.State))))
	if v.Checking {
		b.WriteString(s.Subtle.Render("  checking status..."))
	}
	if v.Notice != "" {
		b.WriteString("\n")
		b.WriteString(s.Notice.Render(v.Notice))
	}
	return b.String()
}

// Deck renders a loaded deck as headed category buckets.
func Deck(s Styles, v presenter.View) string {
	switch v.Phase {
	case presenter.PhaseLoading, presenter.PhaseIdle:
		return s.Subtle.Render("Loading deck...")
	case presenter.PhaseFailed:
		return s.Error.Render("Could not load deck: " + v.Error)
	}

	var b strings.Builder
	b.WriteString(s.Title.Render(v.Commander))
	b.WriteString(s.Count.Render(fmt.Sprintf("  %d cards  %s", v.CardCount, v.CreatedAt)))
	b.WriteString("\n")
	for _, bucket := range v.Buckets {
		b.WriteString("\n")
		b.WriteString(s.Heading.Render(string(bucket.Category)))
		b.WriteString(s.Count.Render(fmt.Sprintf(" (%d)", len(bucket.Cards))))
		b.WriteString("\n")
		for _, c := range bucket.Cards {
			b.WriteString("  ")
			b.WriteString(c.Name)
			if c.TypeLine != "" {
				b.WriteString(s.Subtle.Render("  " + c.TypeLine))
			}
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// Combos renders the combo overlay box.
func Combos(s Styles, v presenter.View) string {
	var b strings.Builder
	b.WriteString(s.Title.Render("Combos"))
	b.WriteString("\n")
	if v.ComboMessage != "" {
		b.WriteString(s.Subtle.Render(v.ComboMessage))
		return s.Overlay.Render(b.String())
	}
	for i, c := range v.Combos {
		names := make([]string, len(c.Cards))
		for j, card := range c.Cards {
			names[j] = card.Name
		}
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(s.Heading.Render(strings.Join(names, " + ")))
		b.WriteString("\n")
		if c.Result != "" {
			b.WriteString("Result: " + c.Result + "\n")
		}
		if c.Instructions != "" {
			b.WriteString(s.Subtle.Render(c.Instructions) + "\n")
		}
	}
	return s.Overlay.Render(strings.TrimRight(b.String(), "\n"))
}

// Jobs renders the deck list, newest first as the service orders it.
func Jobs(s Styles, jobs []models.Job) string {
	if len(jobs) == 0 {
		return s.Subtle.Render("No decks yet.")
	}
	lines := make([]string, len(jobs))
	for i, j := range jobs {
		lines[i] = fmt.Sprintf("#%-5d %-12s %-32s %s",
			j.ID, s.StatusStyle(j.Status).Render(string(j.Status)), j.Commander, s.Subtle.Render(j.CreatedAt))
	}
	return strings.Join(lines, "\n")
}

// Inventory renders owned cards.
func Inventory(s Styles, items []models.InventoryItem) string {
	if len(items) == 0 {
		return s.Subtle.Render("Inventory is empty.")
	}
	lines := make([]string, len(items))
	for i, it := range items {
		lines[i] = fmt.Sprintf("%4d  %2dx %s%s", it.ID, it.Quantity, it.Name, s.Subtle.Render("  "+it.TypeLine))
	}
	return strings.Join(lines, "\n")
}

// ImportResult summarises a bulk import.
func ImportResult(s Styles, failed []string) string {
	if len(failed) == 0 {
		return s.Title.Render("All cards imported.")
	}
	var b strings.Builder
	b.WriteString(s.Notice.Render(fmt.Sprintf("%d card(s) could not be imported:", len(failed))))
	for _, name := range failed {
		b.WriteString("\n  " + name)
	}
	return b.String()
}

// NewMarkdownRenderer builds the glamour renderer used for commander reasoning.
func NewMarkdownRenderer(width int) (*glamour.TermRenderer, error) {
	return glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
}

// Commander renders the chosen commander with its reasoning as markdown. A nil
// renderer prints the reasoning unformatted.
func Commander(s Styles, md *glamour.TermRenderer, c *models.Commander) string {
	var b strings.Builder
	b.WriteString(s.Title.Render(c.Name))
	if len(c.Commanders) > 1 {
		names := make([]string, len(c.Commanders))
		for i, d := range c.Commanders {
			names[i] = d.Name
		}
		b.WriteString(s.Subtle.Render("  partners: " + strings.Join(names, ", ")))
	}
	if c.Reasoning == "" {
		return b.String()
	}
	b.WriteString("\n")
	if md != nil {
		if out, err := md.Render(c.Reasoning); err == nil {
			b.WriteString(strings.TrimRight(out, "\n"))
			return b.String()
		}
	}
	b.WriteString(c.Reasoning)
	return b.String()
}
