package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/uiabridge/olevariant/variant"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	opStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#98FB98"))

	tagStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type interactiveModel struct {
	err      error
	result   string
	ops      []opInfo
	history  []string
	inputs   []textinput.Model
	selected int
	focusIdx int
	state    modelState
}

type opInfo struct {
	name string
	op   operation
}

type modelState int

const (
	stateSelectOp modelState = iota
	stateInputArgs
	stateShowResult
)

func newInteractiveModel() *interactiveModel {
	ops := make([]opInfo, 0, len(operations))
	for name, op := range operations {
		ops = append(ops, opInfo{name: name, op: op})
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i].name < ops[j].name })
	return &interactiveModel{
		ops:   ops,
		state: stateSelectOp,
	}
}

type evalResultMsg struct {
	err    error
	expr   string
	result string
}

func (m *interactiveModel) Init() tea.Cmd {
	return nil
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "q":
			if m.state != stateInputArgs {
				return m, tea.Quit
			}

		case "up", "k":
			if m.state == stateSelectOp && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectOp && m.selected < len(m.ops)-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateSelectOp:
				m.prepareInputs()
				m.state = stateInputArgs

			case stateInputArgs:
				return m, m.evaluate

			case stateShowResult:
				m.state = stateSelectOp
				m.result = ""
				m.err = nil
			}

		case "tab":
			if m.state == stateInputArgs && len(m.inputs) > 1 {
				m.inputs[m.focusIdx].Blur()
				m.focusIdx = (m.focusIdx + 1) % len(m.inputs)
				m.inputs[m.focusIdx].Focus()
			}

		case "esc":
			switch m.state {
			case stateInputArgs:
				m.state = stateSelectOp
				m.inputs = nil
			case stateShowResult:
				m.state = stateSelectOp
				m.result = ""
				m.err = nil
			}
		}

	case evalResultMsg:
		m.result = msg.result
		m.err = msg.err
		m.state = stateShowResult
		if msg.err == nil {
			m.history = append(m.history, msg.expr+" = "+msg.result)
		}
	}

	if m.state == stateInputArgs {
		var cmds []tea.Cmd
		for i := range m.inputs {
			var cmd tea.Cmd
			m.inputs[i], cmd = m.inputs[i].Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m *interactiveModel) prepareInputs() {
	info := m.ops[m.selected]
	prompts := []string{"value: "}
	if info.op.binary {
		prompts = append(prompts, "with:  ")
	}
	m.inputs = make([]textinput.Model, len(prompts))
	for i, prompt := range prompts {
		ti := textinput.New()
		ti.Placeholder = "tag:payload, e.g. i4:42"
		ti.Prompt = prompt
		ti.Width = 40
		if i == 0 {
			ti.Focus()
		}
		m.inputs[i] = ti
	}
	m.focusIdx = 0
}

func (m *interactiveModel) evaluate() tea.Msg {
	info := m.ops[m.selected]
	expr := info.name + " " + m.inputs[0].Value()

	v, err := parseLiteral(m.inputs[0].Value())
	if err != nil {
		return evalResultMsg{err: err}
	}
	defer v.Close()

	var other *variant.Variant
	if info.op.binary {
		expr += " " + m.inputs[1].Value()
		w, err := parseLiteral(m.inputs[1].Value())
		if err != nil {
			return evalResultMsg{err: err}
		}
		defer w.Close()
		other = &w
	}

	result, err := info.op.apply(&v, other)
	if err != nil {
		return evalResultMsg{err: err}
	}
	return evalResultMsg{expr: expr, result: result}
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Variant Inspector"))
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectOp:
		b.WriteString("Select an operation:\n\n")
		for i, info := range m.ops {
			cursor := "  "
			if i == m.selected {
				cursor = "> "
				b.WriteString(selectedStyle.Render(cursor + m.formatOp(info)))
			} else {
				b.WriteString(cursor + m.formatOp(info))
			}
			b.WriteString("\n")
		}
		if len(m.history) > 0 {
			b.WriteString("\nHistory:\n")
			start := 0
			if len(m.history) > 5 {
				start = len(m.history) - 5
			}
			for _, line := range m.history[start:] {
				b.WriteString(helpStyle.Render("  " + line))
				b.WriteString("\n")
			}
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter choose • q quit"))

	case stateInputArgs:
		info := m.ops[m.selected]
		b.WriteString(fmt.Sprintf("Operation %s\n\n", opStyle.Render(info.name)))
		for _, input := range m.inputs {
			b.WriteString(input.View())
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("tab next field • enter evaluate • esc back"))

	case stateShowResult:
		info := m.ops[m.selected]
		b.WriteString(fmt.Sprintf("Result of %s:\n\n", opStyle.Render(info.name)))
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString(resultStyle.Render(m.result))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter continue • q quit"))
	}

	return b.String()
}

func (m *interactiveModel) formatOp(info opInfo) string {
	arity := "(value)"
	if info.op.binary {
		arity = "(value, with)"
	}
	return opStyle.Render(info.name) + tagStyle.Render(arity) + "  " + info.op.help
}

func runInteractive() error {
	p := tea.NewProgram(newInteractiveModel(), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
