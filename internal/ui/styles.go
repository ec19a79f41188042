// internal/ui/styles.go

// Package ui renders deckforge screens as styled terminal text. Renderers are
// pure functions of their inputs so the CLI and the TUI share them.
package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jason-s-yu/deckforge/internal/models"
	"github.com/jason-s-yu/deckforge/internal/monitor"
)

var (
	ColorAccent  = lipgloss.Color("#8BC34A")
	ColorMuted   = lipgloss.Color("#7A8599")
	ColorWarning = lipgloss.Color("#FFC107")
	ColorError   = lipgloss.Color("#E53935")
	ColorInfo    = lipgloss.Color("#2196F3")
	ColorSystem  = lipgloss.Color("#AB47BC")
)

// Styles is the set of lipgloss styles the renderers use.
type Styles struct {
	Title    lipgloss.Style
	Subtle   lipgloss.Style
	Agent    lipgloss.Style
	System   lipgloss.Style
	Notice   lipgloss.Style
	Error    lipgloss.Style
	Heading  lipgloss.Style
	Count    lipgloss.Style
	Overlay  lipgloss.Style
	Help     lipgloss.Style
	Selected lipgloss.Style
}

// DefaultStyles returns the standard palette.
func DefaultStyles() Styles {
	return Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(ColorAccent),
		Subtle:   lipgloss.NewStyle().Foreground(ColorMuted),
		Agent:    lipgloss.NewStyle().Bold(true).Foreground(ColorInfo),
		System:   lipgloss.NewStyle().Bold(true).Foreground(ColorSystem),
		Notice:   lipgloss.NewStyle().Foreground(ColorWarning),
		Error:    lipgloss.NewStyle().Bold(true).Foreground(ColorError),
		Heading:  lipgloss.NewStyle().Bold(true).Underline(true),
		Count:    lipgloss.NewStyle().Foreground(ColorMuted),
		Overlay:  lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(ColorAccent).Padding(0, 1),
		Help:     lipgloss.NewStyle().Foreground(ColorMuted).Italic(true),
		Selected: lipgloss.NewStyle().Foreground(ColorAccent),
	}
}

// StateStyle colours a monitor state.
func (s Styles) StateStyle(state monitor.State) lipgloss.Style {
	switch state {
	case monitor.StateCompleted:
		return lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	case monitor.StateError:
		return s.Error
	case monitor.StateDisconnected:
		return s.Notice.Bold(true)
	default:
		return lipgloss.NewStyle().Bold(true).Foreground(ColorInfo)
	}
}

// StatusStyle colours a job status in lists.
func (s Styles) StatusStyle(status models.JobStatus) lipgloss.Style {
	switch status {
	case models.StatusCompleted:
		return lipgloss.NewStyle().Foreground(ColorAccent)
	case models.StatusError:
		return lipgloss.NewStyle().Foreground(ColorError)
	case models.StatusProcessing:
		return lipgloss.NewStyle().Foreground(ColorInfo)
	default:
		return s.Subtle
	}
}
