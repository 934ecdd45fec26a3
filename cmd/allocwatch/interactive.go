package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	allocguard "github.com/wippyai/alloc-guard"
	"github.com/wippyai/alloc-guard/guard"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type watchModel struct {
	err     error
	input   textinput.Model
	totals  allocguard.Snapshot
	delta   allocguard.Delta
	size    int
	running bool
	done    bool
}

type tickMsg time.Time

type workloadDoneMsg struct {
	err   error
	delta allocguard.Delta
}

func newWatchModel(size int) *watchModel {
	ti := textinput.New()
	ti.Placeholder = "1000"
	ti.Prompt = "iterations: "
	ti.Width = 20
	ti.Focus()

	return &watchModel{
		input:  ti,
		size:   size,
		totals: allocguard.Current(),
	}
}

func tick() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *watchModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tick())
}

func (m *watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "enter":
			if m.running {
				return m, nil
			}
			ops, err := strconv.Atoi(m.input.Value())
			if err != nil || ops <= 0 {
				ops = 1000
			}
			m.running = true
			m.done = false
			m.err = nil
			return m, m.runWorkload(ops)

		case "esc":
			m.done = false
			m.err = nil
		}

	case tickMsg:
		m.totals = allocguard.Current()
		return m, tick()

	case workloadDoneMsg:
		m.running = false
		m.done = true
		m.delta = msg.delta
		m.err = msg.err
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *watchModel) runWorkload(ops int) tea.Cmd {
	return func() (msg tea.Msg) {
		defer func() {
			if r := recover(); r != nil {
				msg = workloadDoneMsg{err: fmt.Errorf("policy violated: %v", r)}
			}
		}()

		var delta allocguard.Delta
		g := guard.BeginFunc(func(d allocguard.Delta) { delta = d })
		workload(ops, m.size)
		g.End()

		return workloadDoneMsg{delta: delta}
	}
}

func (m *watchModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("allocwatch"))
	b.WriteString("\n\n")

	b.WriteString(labelStyle.Render("process totals"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  allocations:   %s\n", valueStyle.Render(fmt.Sprint(m.totals.Allocs)))
	fmt.Fprintf(&b, "  reallocations: %s\n", valueStyle.Render(fmt.Sprint(m.totals.Reallocs)))
	fmt.Fprintf(&b, "  deallocations: %s\n", valueStyle.Render(fmt.Sprint(m.totals.Deallocs)))
	b.WriteString("\n")

	switch {
	case m.running:
		b.WriteString("running workload...\n")

	case m.err != nil:
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n")

	case m.done:
		b.WriteString(labelStyle.Render("last measured delta"))
		b.WriteString("\n")
		b.WriteString(resultStyle.Render(fmt.Sprintf("  (%d, %d, %d)",
			m.delta.Allocs, m.delta.Reallocs, m.delta.Deallocs)))
		b.WriteString("\n")

	default:
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter run • esc reset • q quit"))
	return b.String()
}

func runInteractive(size int) error {
	p := tea.NewProgram(newWatchModel(size), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
