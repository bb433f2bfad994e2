package component

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// UIModel embeds a Component in a bubbletea program. It forwards keys to
// the live editor widget and renders the editor (or diff view), a status
// line and an optional help overlay.
type UIModel struct {
	c *Component

	width    int
	height   int
	showHelp bool
	notice   string
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	faintStyle = lipgloss.NewStyle().Faint(true)
)

// NewUIModel wraps a started component.
func NewUIModel(c *Component) *UIModel {
	return &UIModel{c: c}
}

func (m *UIModel) Init() tea.Cmd { return nil }

func (m *UIModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if app := m.c.App(); app != nil && app.Editor() != nil {
			app.Editor().SetSize(msg.Width, msg.Height-2)
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			_ = m.c.Dispose(context.Background())
			return m, tea.Quit
		case "ctrl+g":
			m.showHelp = !m.showHelp
			return m, nil
		case "ctrl+y":
			if app := m.c.App(); app != nil && app.Editor() != nil {
				if err := app.Editor().YankToClipboard(); err != nil {
					m.notice = err.Error()
				} else {
					m.notice = "buffer copied"
				}
			}
			return m, nil
		}
		// Everything else goes to the editor buffer.
		if app := m.c.App(); app != nil && app.Editor() != nil {
			cmd := app.Editor().Update(msg)
			m.syncBuffer()
			return m, cmd
		}
		return m, nil
	}
	return m, nil
}

// syncBuffer reflects widget edits back into the code property.
func (m *UIModel) syncBuffer() {
	if app := m.c.App(); app != nil && app.Editor() != nil {
		m.c.props.Code = app.Editor().Text()
		m.c.cfg.Editor.Code = app.Editor().Text()
	}
}

func (m *UIModel) View() string {
	if m.showHelp {
		return m.viewHelp()
	}
	var b strings.Builder
	app := m.c.App()
	switch {
	case app == nil:
		b.WriteString(faintStyle.Render("editor not started") + "\n")
	case app.DiffEditor() != nil:
		b.WriteString(app.DiffEditor().View(m.width) + "\n")
	case app.Editor() != nil:
		b.WriteString(app.Editor().View() + "\n")
	}
	b.WriteString(m.statusLine() + "\n")
	return b.String()
}

// statusLine summarizes language, theme and client run state.
func (m *UIModel) statusLine() string {
	props := m.c.Properties()
	parts := []string{
		fmt.Sprintf("lang:%s", orDash(props.LanguageID)),
		fmt.Sprintf("theme:%s", orDash(props.Theme)),
		fmt.Sprintf("client:%s", m.c.Wrapper().State()),
	}
	if props.UseDiffEditor {
		parts = append(parts, "diff")
	}
	if m.notice != "" {
		parts = append(parts, m.notice)
	}
	return faintStyle.Render(strings.Join(parts, "  "))
}

func (m *UIModel) viewHelp() string {
	sections := []struct {
		title string
		keys  []string
	}{
		{"Editing", []string{"type to edit", "ctrl+y: copy buffer"}},
		{"Session", []string{"ctrl+g: toggle help", "ctrl+c: quit"}},
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("Help") + "\n")
	for _, sec := range sections {
		fmt.Fprintf(&b, "\n%s:\n", sec.title)
		for _, k := range sec.keys {
			fmt.Fprintf(&b, "  %s\n", k)
		}
	}
	return b.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
