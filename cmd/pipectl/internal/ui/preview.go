// Package ui implements the interactive preview for pipectl. A text input
// holds the template; every keystroke re-renders it through the placeholder
// engine so authors see substitutions as they type.
package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// RenderFunc resolves one template string through the engine.
type RenderFunc func(template string) (string, error)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00A6FF")).
			Bold(true)

	outputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#888888")).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5F5F"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))
)

// previewModel is the bubbletea model for the preview loop.
type previewModel struct {
	input    textinput.Model
	render   RenderFunc
	rendered string
	renderEr error
	width    int
}

// NewPreview creates the preview model seeded with an initial template.
func NewPreview(initial string, render RenderFunc) tea.Model {
	ti := textinput.New()
	ti.Placeholder = "Post content with @{source.expression} placeholders..."
	ti.Prompt = "template> "
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00A6FF")).Bold(true)
	ti.CharLimit = 500
	ti.Width = 80
	ti.SetValue(initial)
	ti.Focus()

	m := previewModel{input: ti, render: render, width: 80}
	m.rendered, m.renderEr = render(initial)
	return m
}

func (m previewModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m previewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - len(m.input.Prompt) - 2
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		m.rendered, m.renderEr = m.render(m.input.Value())
	}
	return m, cmd
}

func (m previewModel) View() string {
	var body string
	if m.renderEr != nil {
		body = errorStyle.Render(fmt.Sprintf("error: %v", m.renderEr))
	} else {
		body = m.rendered
	}

	return fmt.Sprintf("%s\n\n%s\n\n%s\n\n%s\n",
		titleStyle.Render("pipectl preview"),
		m.input.View(),
		outputStyle.Width(m.width-2).Render(body),
		helpStyle.Render("esc or ctrl+c to quit"))
}

// RunPreview starts the interactive preview loop and blocks until it exits.
func RunPreview(initial string, render RenderFunc) error {
	p := tea.NewProgram(NewPreview(initial, render))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("preview failed: %w", err)
	}
	return nil
}
