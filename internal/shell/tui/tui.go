// Package tui shows the launch status in the terminal with Bubble Tea.
package tui

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/loykin/airlaunch/internal/shell"
	"github.com/loykin/airlaunch/internal/status"
)

const Kind = "tui"

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#BD93F9")).MarginBottom(1)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6272A4")).Width(11)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#50FA7B"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB86C"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5555"))
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6272A4")).MarginTop(1)
)

// Shell shows the launcher status in the terminal.
type Shell struct {
	opts shell.Options
	in   io.Reader
	out  io.Writer
}

// Option customizes the terminal streams, mainly for tests.
type Option func(*Shell)

func WithInput(r io.Reader) Option  { return func(s *Shell) { s.in = r } }
func WithOutput(w io.Writer) Option { return func(s *Shell) { s.out = w } }

// New returns a terminal shell reading stdin and drawing on stdout.
func New(opts shell.Options, o ...Option) *Shell {
	s := &Shell{opts: opts.WithDefaults()}
	for _, fn := range o {
		fn(s)
	}
	return s
}

func (s *Shell) Kind() string { return Kind }

// Run shows the status screen until q/ctrl+c or ctx cancellation.
func (s *Shell) Run(ctx context.Context, src status.Source) error {
	popts := []tea.ProgramOption{tea.WithContext(ctx), tea.WithAltScreen()}
	if s.in != nil {
		popts = append(popts, tea.WithInput(s.in))
	}
	if s.out != nil {
		popts = append(popts, tea.WithOutput(s.out))
	}
	p := tea.NewProgram(newModel(s.opts, src), popts...)
	_, err := p.Run()
	if err != nil && errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

type tickMsg time.Time

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

type model struct {
	title   string
	refresh time.Duration
	src     status.Source
	snap    status.Snapshot
	spin    spinner.Model
	width   int
}

func newModel(opts shell.Options, src status.Source) model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = warnStyle
	return model{
		title:   opts.Title,
		refresh: opts.Refresh,
		src:     src,
		snap:    src.Snapshot(),
		spin:    sp,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, tickCmd(m.refresh))
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tickMsg:
		m.snap = m.src.Snapshot()
		return m, tickCmd(m.refresh)
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n")

	row := func(label, value string) {
		b.WriteString(labelStyle.Render(label))
		b.WriteString(value)
		b.WriteString("\n")
	}
	row("backend", m.backendValue())
	row("readiness", m.readinessValue())
	row("probe", m.snap.Readiness.Probe)
	row("usage", m.snap.UsageLine())

	b.WriteString(helpStyle.Render("q quit"))
	return b.String()
}

func (m model) backendValue() string {
	line := m.snap.BackendLine()
	switch {
	case m.snap.Backend.Running:
		return okStyle.Render(line)
	case m.snap.Backend.PID != 0:
		return errStyle.Render(line)
	}
	return line
}

func (m model) readinessValue() string {
	line := m.snap.ReadinessLine()
	switch m.snap.Readiness.State {
	case status.StateReady:
		return okStyle.Render(line)
	case status.StateWaiting, status.StatePending, "":
		return m.spin.View() + " " + line
	default:
		return warnStyle.Render(line)
	}
}
