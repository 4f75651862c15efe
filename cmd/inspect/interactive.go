package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/storyge/corert/typesystem"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#5F5FD7")).
			Padding(0, 1)

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	fieldStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	flagStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD787"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#5F5FD7"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type modelState int

const (
	stateSelectType modelState = iota
	stateShowFields
)

type inspectModel struct {
	err      error
	mod      *typesystem.Module
	filename string
	types    []*typesystem.TypeDescriptor
	filtered []int
	filter   textinput.Model
	selected int
	state    modelState
}

type loadedMsg struct {
	err   error
	mod   *typesystem.Module
	types []*typesystem.TypeDescriptor
}

func newInspectModel(filename string) *inspectModel {
	filter := textinput.New()
	filter.Placeholder = "filter types"
	filter.Prompt = "/ "
	filter.Width = 40

	return &inspectModel{
		filename: filename,
		filter:   filter,
		state:    stateSelectType,
	}
}

func (m *inspectModel) Init() tea.Cmd {
	return m.loadImage
}

func (m *inspectModel) loadImage() tea.Msg {
	data, err := os.ReadFile(m.filename)
	if err != nil {
		return loadedMsg{err: err}
	}

	mod, err := typesystem.LoadModule(data)
	if err != nil {
		return loadedMsg{err: err}
	}

	types, err := mod.Types()
	if err != nil {
		return loadedMsg{err: err}
	}

	return loadedMsg{mod: mod, types: types}
}

func (m *inspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.state == stateSelectType && !m.filter.Focused() {
				return m, tea.Quit
			}
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}

		case "up", "k":
			if m.state == stateSelectType && m.selected > 0 && !m.filter.Focused() {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectType && m.selected < len(m.filtered)-1 && !m.filter.Focused() {
				m.selected++
			}

		case "/":
			if m.state == stateSelectType && !m.filter.Focused() {
				m.filter.Focus()
				return m, nil
			}

		case "enter":
			switch m.state {
			case stateSelectType:
				if m.filter.Focused() {
					m.filter.Blur()
				} else if len(m.filtered) > 0 {
					m.state = stateShowFields
				}
			case stateShowFields:
				m.state = stateSelectType
			}

		case "esc":
			switch {
			case m.filter.Focused():
				m.filter.Blur()
				m.filter.SetValue("")
				m.applyFilter()
			case m.state == stateShowFields:
				m.state = stateSelectType
			default:
				return m, tea.Quit
			}
		}

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.mod = msg.mod
		m.types = msg.types
		m.applyFilter()
	}

	if m.filter.Focused() {
		var cmd tea.Cmd
		m.filter, cmd = m.filter.Update(msg)
		m.applyFilter()
		return m, cmd
	}

	return m, nil
}

func (m *inspectModel) applyFilter() {
	needle := strings.ToLower(m.filter.Value())
	m.filtered = m.filtered[:0]
	for i, t := range m.types {
		if needle == "" || strings.Contains(strings.ToLower(t.FullName()), needle) {
			m.filtered = append(m.filtered, i)
		}
	}
	if m.selected >= len(m.filtered) {
		m.selected = 0
	}
}

func (m *inspectModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}

	if m.mod == nil {
		return "Loading image..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("Metadata Inspector"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectType:
		b.WriteString(m.filter.View())
		b.WriteString("\n\n")
		for i, ti := range m.filtered {
			t := m.types[ti]
			line := fmt.Sprintf("%s (%d fields)", t.FullName(), len(t.Fields()))
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + typeStyle.Render(line))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter fields • / filter • q quit"))

	case stateShowFields:
		t := m.types[m.filtered[m.selected]]
		b.WriteString(typeStyle.Render(t.FullName()))
		b.WriteString("\n\n")
		for _, f := range t.Fields() {
			name, err := f.Name()
			if err != nil {
				name = f.Handle().String()
			}
			b.WriteString("  ")
			b.WriteString(fieldStyle.Render(fmt.Sprintf("%-24s", name)))
			b.WriteString(fmt.Sprintf(" %-20s ", fieldTypeString(f)))
			b.WriteString(flagStyle.Render(flagString(f)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("enter/esc back • ctrl+c quit"))
	}

	return b.String()
}

func runInteractive(filename string) error {
	p := tea.NewProgram(newInspectModel(filename), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
