package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sigbridge/sigbridge"
	"github.com/sigbridge/sigbridge/engine"
	"github.com/sigbridge/sigbridge/sim"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	dirStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type tuiState int

const (
	stateTable tuiState = iota
	statePokeInput
)

type tuiModel struct {
	err       error
	eng       *engine.Engine
	inst      *engine.Instance
	sim       *sim.Sim
	modelFile string
	portsDesc string
	clock     string
	scope     string
	timescale string
	vcdPath   string
	ports     []sigbridge.PortSpec
	input     textinput.Model
	selected  int
	stepCount int
	state     tuiState
}

func newTUIModel(modelFile, portsDesc, clock, scope, timescale, vcdPath string) *tuiModel {
	return &tuiModel{
		modelFile: modelFile,
		portsDesc: portsDesc,
		clock:     clock,
		scope:     scope,
		timescale: timescale,
		vcdPath:   vcdPath,
		state:     stateTable,
	}
}

type loadedMsg struct {
	err   error
	eng   *engine.Engine
	inst  *engine.Instance
	sim   *sim.Sim
	ports []sigbridge.PortSpec
}

type steppedMsg struct {
	err error
}

func (m *tuiModel) Init() tea.Cmd {
	return m.loadModel
}

func (m *tuiModel) loadModel() tea.Msg {
	ctx := context.Background()

	ports, err := sigbridge.ParsePorts(m.portsDesc)
	if err != nil {
		return loadedMsg{err: err}
	}

	data, err := os.ReadFile(m.modelFile)
	if err != nil {
		return loadedMsg{err: err}
	}

	eng, err := engine.New(ctx)
	if err != nil {
		return loadedMsg{err: err}
	}

	model, err := eng.Load(ctx, data, ports)
	if err != nil {
		eng.Close(ctx)
		return loadedMsg{err: err}
	}

	inst, err := model.Instantiate(ctx)
	if err != nil {
		eng.Close(ctx)
		return loadedMsg{err: err}
	}

	s, err := sim.New(inst, sim.Options{
		TracePath: m.vcdPath,
		Timescale: m.timescale,
		Clock:     m.clock,
		Scope:     m.scope,
	})
	if err != nil {
		inst.Close(ctx)
		eng.Close(ctx)
		return loadedMsg{err: err}
	}

	return loadedMsg{eng: eng, inst: inst, sim: s, ports: ports}
}

func (m *tuiModel) step() tea.Msg {
	return steppedMsg{err: m.sim.Step(context.Background())}
}

func (m *tuiModel) teardown() {
	ctx := context.Background()
	if m.sim != nil {
		m.sim.Close(ctx)
	}
	if m.eng != nil {
		m.eng.Close(ctx)
	}
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.state == statePokeInput && msg.String() == "q" {
				break
			}
			m.teardown()
			return m, tea.Quit

		case "up", "k":
			if m.state == stateTable && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateTable && m.selected < len(m.ports)-1 {
				m.selected++
			}

		case " ":
			if m.state == stateTable && m.sim != nil {
				return m, m.step
			}

		case "enter":
			switch m.state {
			case stateTable:
				if m.sim == nil || len(m.ports) == 0 {
					break
				}
				p := m.ports[m.selected]
				if p.Dir == sigbridge.Out {
					break
				}
				ti := textinput.New()
				ti.Placeholder = fmt.Sprintf("value (%d bits)", p.Width)
				ti.Prompt = p.Name + " = "
				ti.Width = 24
				ti.Focus()
				m.input = ti
				m.state = statePokeInput

			case statePokeInput:
				p := m.ports[m.selected]
				v, err := strconv.ParseUint(strings.TrimSpace(m.input.Value()), 0, 64)
				if err != nil {
					m.err = err
				} else {
					m.err = m.sim.Poke(p.Name, v)
				}
				m.state = stateTable
			}

		case "esc":
			if m.state == statePokeInput {
				m.state = stateTable
			}
		}

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.eng = msg.eng
		m.inst = msg.inst
		m.sim = msg.sim
		m.ports = msg.ports

	case steppedMsg:
		m.err = msg.err
		if msg.err == nil {
			m.stepCount++
		}
	}

	if m.state == statePokeInput {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *tuiModel) View() string {
	if m.err != nil && m.sim == nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}

	if m.sim == nil {
		return "Loading model..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("sigrun"))
	b.WriteString(" ")
	b.WriteString(m.modelFile)
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf("Step %d", m.stepCount))
	if m.sim.Tracing() {
		b.WriteString("  ")
		b.WriteString(timeStyle.Render(fmt.Sprintf("trace time %d", m.sim.Time())))
	}
	if m.inst.Finished() {
		b.WriteString("  ")
		b.WriteString(errorStyle.Render("finished"))
	}
	b.WriteString("\n\n")

	for i, p := range m.ports {
		v, err := m.sim.Peek(p.Name)
		val := "?"
		if err == nil {
			val = fmt.Sprintf("%#x", v)
		}
		line := fmt.Sprintf("%s %s %s",
			nameStyle.Render(fmt.Sprintf("%-16s", p.Name)),
			dirStyle.Render(fmt.Sprintf("%-5s %2d", p.Dir, p.Width)),
			val)
		if i == m.selected && m.state == stateTable {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch m.state {
	case statePokeInput:
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter apply • esc cancel"))

	default:
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
			b.WriteString("\n\n")
		}
		b.WriteString(helpStyle.Render("space step • ↑/↓ select • enter poke input • q quit"))
	}

	return b.String()
}

func runInteractive(modelFile, portsDesc, clock, scope, timescale, vcdPath string) error {
	p := tea.NewProgram(newTUIModel(modelFile, portsDesc, clock, scope, timescale, vcdPath), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
