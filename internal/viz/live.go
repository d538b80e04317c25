// Package viz implements the live terminal dashboard for a running
// batch: a Bubble Tea program fed by a progress channel, rendering
// completion count, hit/exit split, and rejection-sampling fallback
// counts as they accumulate. Grounded on internal/viz.Model's
// tea.Program/Init/Update/View structure, stripped of its per-model
// 2D/3D physics canvas (this engine has one kind of trajectory, not a
// gallery of dynamical systems to draw) down to the scalar counters
// and asciigraph sparkline its stats panel already drew from a history
// slice.
package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/sankum/buffergas/internal/diag"
	"github.com/sankum/buffergas/internal/geometry"
)

const historyCapacity = 600

var (
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(50)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(16)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(2)
)

// tickMsg drives the redraw loop; doneMsg marks the channel closed.
type tickMsg time.Time
type progressMsg struct {
	code      geometry.Code
	fallbacks int64
}
type doneMsg struct{}

// Update is the value a running driver.ProgressFunc feeds into the
// channel passed to Run: one per completed trajectory.
type Update struct {
	Code    geometry.Code
	Counter *diag.Counter
}

// Model is the Bubble Tea program state for the live progress view.
type Model struct {
	total     int
	done      int
	hits      int
	exits     int
	fallbacks int64
	history   []float64
	updates   <-chan Update
	finished  bool
	startedAt time.Time
}

// NewModel returns a fresh dashboard over total trajectories, reading
// completions from updates until it is closed.
func NewModel(total int, updates <-chan Update) Model {
	return Model{
		total:     total,
		updates:   updates,
		history:   make([]float64, 0, historyCapacity),
		startedAt: time.Now(),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForUpdate(m.updates), tickEvery())
}

func tickEvery() tea.Cmd {
	return tea.Tick(time.Second/10, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func waitForUpdate(ch <-chan Update) tea.Cmd {
	return func() tea.Msg {
		u, ok := <-ch
		if !ok {
			return doneMsg{}
		}
		vg, theta := int64(0), int64(0)
		if u.Counter != nil {
			vg, theta = u.Counter.Snapshot()
		}
		return progressMsg{code: u.Code, fallbacks: vg + theta}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
	case progressMsg:
		m.done++
		switch msg.code {
		case geometry.Hit:
			m.hits++
		case geometry.Exit:
			m.exits++
		}
		m.fallbacks = msg.fallbacks
		if !m.finished {
			return m, waitForUpdate(m.updates)
		}
	case doneMsg:
		m.finished = true
	case tickMsg:
		m.history = append(m.history, float64(m.done))
		if len(m.history) > historyCapacity {
			m.history = m.history[1:]
		}
		if m.finished && m.done >= m.total {
			return m, tea.Quit
		}
		return m, tickEvery()
	}
	return m, nil
}

func (m Model) View() string {
	var s strings.Builder
	s.WriteString(headerStyle.Render("BUFFER-GAS TRAJECTORY BATCH") + "\n")

	status := "RUNNING"
	if m.finished {
		status = "DONE"
	}
	s.WriteString(status + "\n\n")

	if len(m.history) > 1 {
		chart := asciigraph.Plot(m.history, asciigraph.Height(6), asciigraph.Width(40), asciigraph.Caption("trajectories completed"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	frac := 0.0
	if m.total > 0 {
		frac = float64(m.done) / float64(m.total)
	}
	s.WriteString(labelStyle.Render("Progress") + valueStyle.Render(fmt.Sprintf("%d / %d (%.1f%%)", m.done, m.total, frac*100)) + "\n")
	s.WriteString(labelStyle.Render("Elapsed") + valueStyle.Render(time.Since(m.startedAt).Round(time.Millisecond).String()) + "\n")

	if m.done > 0 {
		s.WriteString(labelStyle.Render("Hit") + valueStyle.Render(fmt.Sprintf("%d (%.1f%%)", m.hits, 100*float64(m.hits)/float64(m.done))) + "\n")
		s.WriteString(labelStyle.Render("Exit") + valueStyle.Render(fmt.Sprintf("%d (%.1f%%)", m.exits, 100*float64(m.exits)/float64(m.done))) + "\n")
	}
	s.WriteString(labelStyle.Render("Fallbacks") + valueStyle.Render(fmt.Sprintf("%d", m.fallbacks)) + "\n")

	s.WriteString(helpStyle.Render("q: quit"))
	return statsStyle.Render(s.String())
}

// Run launches the Bubble Tea program and blocks until the batch
// finishes or the user quits.
func Run(total int, updates <-chan Update) error {
	p := tea.NewProgram(NewModel(total, updates))
	_, err := p.Run()
	return err
}
