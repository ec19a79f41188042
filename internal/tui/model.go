// internal/tui/model.go

// Package tui is the interactive job view: it follows a job on the monitor
// screen and switches to the result screen once the job is handed off.
package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/deckforge/internal/monitor"
	"github.com/jason-s-yu/deckforge/internal/presenter"
	"github.com/jason-s-yu/deckforge/internal/ui"
)

type screen int

const (
	screenMonitor screen = iota
	screenResult
)

// headerLines is the space reserved above and below the viewport.
const headerLines = 5

// Config wires the model to the service.
type Config struct {
	JobID   int
	Backend monitor.Backend
	Loader  presenter.Loader
	Sink    presenter.ExportSink
	// Notice is shown above the log, e.g. the multi-job notice after a submit.
	Notice         string
	MonitorOptions monitor.Options
	Logger         *logrus.Logger
}

type (
	monitorChangedMsg struct{}
	monitorDoneMsg    struct{ err error }
	deckLoadedMsg     struct{ err error }
	flashMsg          string
)

// Model is the bubbletea model for one job.
type Model struct {
	ctx    context.Context
	cancel context.CancelFunc
	jobID  int
	notice string
	logger *logrus.Logger

	mon     *monitor.Monitor
	changed chan struct{}
	pres    *presenter.Presenter

	screen   screen
	monView  monitor.View
	presView presenter.View
	flash    string
	quitting bool

	styles   ui.Styles
	viewport viewport.Model
	spinner  spinner.Model
	width    int
	height   int
}

// New builds the model. Cancelling parent deactivates the monitor.
func New(parent context.Context, cfg Config) Model {
	ctx, cancel := context.WithCancel(parent)
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}

	changed := make(chan struct{}, 1)
	opts := cfg.MonitorOptions
	opts.Logger = cfg.Logger
	opts.OnChange = func(monitor.View) {
		select {
		case changed <- struct{}{}:
		default:
		}
	}

	styles := ui.DefaultStyles()
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(ui.ColorAccent)

	mon := monitor.New(cfg.Backend, cfg.JobID, opts)
	return Model{
		ctx:      ctx,
		cancel:   cancel,
		jobID:    cfg.JobID,
		notice:   cfg.Notice,
		logger:   cfg.Logger,
		mon:      mon,
		changed:  changed,
		pres:     presenter.New(cfg.Loader, cfg.Sink, nil, cfg.Logger),
		screen:   screenMonitor,
		monView:  mon.Snapshot(),
		styles:   styles,
		viewport: viewport.New(80, 20),
		spinner:  sp,
		width:    80,
		height:   20 + headerLines,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.runMonitor(), m.waitForChange())
}

func (m Model) runMonitor() tea.Cmd {
	mon, ctx := m.mon, m.ctx
	return func() tea.Msg {
		return monitorDoneMsg{err: mon.Run(ctx)}
	}
}

func (m Model) waitForChange() tea.Cmd {
	changed, ctx := m.changed, m.ctx
	return func() tea.Msg {
		select {
		case <-changed:
			return monitorChangedMsg{}
		case <-ctx.Done():
			return nil
		}
	}
}

func (m Model) loadDeck() tea.Cmd {
	pres, ctx, id := m.pres, m.ctx, m.jobID
	return func() tea.Msg {
		_, err := pres.Load(ctx, id)
		return deckLoadedMsg{err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-headerLines, 3)
		m.refreshContent()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case monitorChangedMsg:
		m.monView = m.mon.Snapshot()
		m.refreshContent()
		return m, m.waitForChange()

	case monitorDoneMsg:
		m.monView = m.mon.Snapshot()
		if msg.err != nil {
			// deactivated
			return m, nil
		}
		m.screen = screenResult
		m.presView = m.pres.View()
		m.refreshContent()
		return m, m.loadDeck()

	case deckLoadedMsg:
		m.presView = m.pres.View()
		m.refreshContent()
		return m, nil

	case flashMsg:
		m.flash = string(msg)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		m.quitting = true
		m.cancel()
		return m, tea.Quit
	}

	switch m.screen {
	case screenMonitor:
		if key.Matches(msg, keys.Recheck) && m.monView.CanRecheck {
			m.mon.Recheck()
			m.flash = ""
			return m, nil
		}
	case screenResult:
		switch {
		case key.Matches(msg, keys.Combos):
			m.pres.ToggleCombos()
			m.presView = m.pres.View()
			m.refreshContent()
			return m, nil
		case key.Matches(msg, keys.Close):
			m.pres.CloseCombos()
			m.presView = m.pres.View()
			m.refreshContent()
			return m, nil
		case key.Matches(msg, keys.Copy):
			return m, m.copyDeck()
		case key.Matches(msg, keys.Save):
			return m, m.saveDeck()
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) copyDeck() tea.Cmd {
	pres, logger := m.pres, m.logger
	return func() tea.Msg {
		if err := pres.Copy(); err != nil {
			logger.WithError(err).Warn("copy failed")
			return flashMsg("Copy failed: " + err.Error())
		}
		return flashMsg("Deck list copied to clipboard.")
	}
}

func (m Model) saveDeck() tea.Cmd {
	pres, logger := m.pres, m.logger
	return func() tea.Msg {
		name, err := pres.Download()
		if err != nil {
			if !errors.Is(err, presenter.ErrNotReady) {
				logger.WithError(err).Warn("save failed")
			}
			return flashMsg("Save failed: " + err.Error())
		}
		return flashMsg("Saved " + name)
	}
}

// refreshContent re-renders the viewport body for the current screen.
func (m *Model) refreshContent() {
	switch m.screen {
	case screenMonitor:
		atBottom := m.viewport.AtBottom()
		m.viewport.SetContent(ui.LogLines(m.styles, m.monView.Lines))
		if atBottom {
			m.viewport.GotoBottom()
		}
	case screenResult:
		if m.presView.CombosOpen && m.presView.Phase == presenter.PhaseReady {
			m.viewport.SetContent(lipgloss.Place(m.viewport.Width, m.viewport.Height,
				lipgloss.Center, lipgloss.Center, ui.Combos(m.styles, m.presView)))
		} else {
			m.viewport.SetContent(ui.Deck(m.styles, m.presView))
		}
		m.viewport.GotoTop()
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	var header, help string
	switch m.screen {
	case screenMonitor:
		header = ui.MonitorHeader(m.styles, m.monView)
		if !m.monView.Completed && (m.monView.State == monitor.StatePending || m.monView.State == monitor.StateProcessing) {
			header = m.spinner.View() + " " + header
		}
		bindings := []key.Binding{keys.Quit}
		if m.monView.CanRecheck {
			bindings = append([]key.Binding{keys.Recheck}, bindings...)
		}
		help = helpLine(bindings...)
	case screenResult:
		header = m.styles.Title.Render(fmt.Sprintf("Deck #%d", m.jobID))
		help = helpLine(keys.Combos, keys.Copy, keys.Save, keys.Quit)
	}
	if m.notice != "" {
		header += "\n" + m.styles.Notice.Render(m.notice)
	}
	footer := m.styles.Help.Render(help)
	if m.flash != "" {
		footer = m.styles.Subtle.Render(m.flash) + "\n" + footer
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, "", m.viewport.View(), footer)
}

// Run starts the full-screen program and blocks until the user quits.
func Run(ctx context.Context, cfg Config) error {
	m := New(ctx, cfg)
	defer m.cancel()
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
