// Package tui renders a live view of a running simulation: simulated time,
// instantaneous spike rate, and the activity per execution lane.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"spikekernel/internal/kernel"
)

var (
	cyan   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white  = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim    = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	green  = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
)

const historyLen = 60

type model struct {
	k          *kernel.Kernel
	durationMs float64

	stepsPerTick int
	paused       bool
	done         bool

	history []int // spike counts of recent steps
	width   int
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(33*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Run drives the kernel step by step under a live display until the
// requested duration has been simulated or the user quits.
func Run(k *kernel.Kernel, durationMs float64) error {
	m := model{
		k:            k,
		durationMs:   durationMs,
		stepsPerTick: 10,
		history:      make([]int, 0, historyLen),
		width:        80,
	}
	_, err := tea.NewProgram(m).Run()
	return err
}

func (m model) Init() tea.Cmd { return tick() }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			m.paused = !m.paused
		case "+":
			m.stepsPerTick *= 2
		case "-":
			if m.stepsPerTick > 1 {
				m.stepsPerTick /= 2
			}
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tickMsg:
		if m.done {
			return m, tea.Quit
		}
		if !m.paused {
			for i := 0; i < m.stepsPerTick; i++ {
				if m.k.Simulation.Time() >= m.durationMs {
					m.done = true
					break
				}
				m.k.Simulation.Step()
				trace := m.k.Simulation.Trace()
				m.history = append(m.history, trace[len(trace)-1])
				if len(m.history) > historyLen {
					m.history = m.history[1:]
				}
			}
		}
		return m, tick()
	}
	return m, nil
}

func (m model) View() string {
	st := m.k.Status()

	var b strings.Builder
	b.WriteString(cyan.Render("spikekernel live") + "\n\n")

	b.WriteString(fmt.Sprintf("  %s %s / %s ms\n",
		dim.Render("time"),
		white.Render(fmt.Sprintf("%.1f", st.Time)),
		white.Render(fmt.Sprintf("%.0f", m.durationMs))))
	b.WriteString(fmt.Sprintf("  %s %s threads, %s vps, %s nodes, %s connections\n",
		dim.Render("grid"),
		white.Render(fmt.Sprintf("%d", st.LocalNumThreads)),
		white.Render(fmt.Sprintf("%d", st.TotalNumVirtualProcs)),
		white.Render(fmt.Sprintf("%d", st.NetworkSize)),
		white.Render(fmt.Sprintf("%d", st.NumConnections))))

	b.WriteString("\n  " + dim.Render("activity") + "\n")
	b.WriteString(m.sparkline())

	b.WriteString("\n  " + dim.Render("lanes") + "\n")
	for t := 0; t < st.LocalNumThreads; t++ {
		n := len(m.k.Nodes.Local(t))
		bar := strings.Repeat("█", scale(n, st.NetworkSize, 40))
		b.WriteString(fmt.Sprintf("  %s %s %s\n",
			dim.Render(fmt.Sprintf("t%d", t)),
			green.Render(bar),
			dim.Render(fmt.Sprintf("%d nodes", n))))
	}

	if m.paused {
		b.WriteString("\n  " + yellow.Render("paused"))
	}
	b.WriteString("\n  " + dim.Render("space pause · +/- speed · q quit") + "\n")
	return b.String()
}

func (m model) sparkline() string {
	if len(m.history) == 0 {
		return "  " + dim.Render("waiting for spikes") + "\n"
	}
	blocks := []rune(" ▁▂▃▄▅▆▇█")
	peak := 1
	for _, n := range m.history {
		if n > peak {
			peak = n
		}
	}
	var line strings.Builder
	for _, n := range m.history {
		idx := n * (len(blocks) - 1) / peak
		line.WriteRune(blocks[idx])
	}
	return "  " + green.Render(line.String()) +
		dim.Render(fmt.Sprintf("  peak %d/step", peak)) + "\n"
}

func scale(v, max, width int) int {
	if max <= 0 {
		return 0
	}
	n := v * width / max
	if n < 1 && v > 0 {
		n = 1
	}
	return n
}
