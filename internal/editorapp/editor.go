package editorapp

import (
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
)

// Model identifies one in-memory text buffer. Replacing a model bumps the
// URI; edits to the same model bump the version.
type Model struct {
	URI        string
	LanguageID string
	Version    int
}

// Editor is one live editor instance: a textarea widget plus its model.
type Editor struct {
	area  textarea.Model
	model Model
	theme Theme
}

func newEditor(services *Services, code, languageID string, theme Theme) *Editor {
	ta := textarea.New()
	ta.ShowLineNumbers = true
	ta.Prompt = ""
	ta.CharLimit = 0
	ta.SetValue(code)
	ta.Focus()

	e := &Editor{
		area: ta,
		model: Model{
			URI:        fmt.Sprintf("inmemory://model/%d", services.nextModelID()),
			LanguageID: languageID,
			Version:    1,
		},
	}
	e.ApplyTheme(theme)
	return e
}

// Model returns the current buffer identity.
func (e *Editor) Model() Model { return e.model }

// Text returns the buffer content.
func (e *Editor) Text() string { return e.area.Value() }

// SetText replaces the content of the current model and bumps its version.
func (e *Editor) SetText(code string) {
	e.area.SetValue(code)
	e.model.Version++
}

// replaceModel swaps in a fresh model with new content and language.
func (e *Editor) replaceModel(services *Services, code, languageID string) {
	e.area.SetValue(code)
	e.model = Model{
		URI:        fmt.Sprintf("inmemory://model/%d", services.nextModelID()),
		LanguageID: languageID,
		Version:    1,
	}
}

// ApplyTheme restyles the widget in place; the buffer is untouched.
func (e *Editor) ApplyTheme(theme Theme) {
	e.theme = theme
	e.area.FocusedStyle.Text = theme.Text
	e.area.FocusedStyle.LineNumber = theme.Gutter
	e.area.FocusedStyle.CursorLineNumber = theme.Gutter
	e.area.BlurredStyle = e.area.FocusedStyle
}

// Theme returns the currently applied theme.
func (e *Editor) Theme() Theme { return e.theme }

// SetSize resizes the widget.
func (e *Editor) SetSize(width, height int) {
	e.area.SetWidth(width)
	e.area.SetHeight(height)
}

// Update forwards a bubbletea message to the widget.
func (e *Editor) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	e.area, cmd = e.area.Update(msg)
	return cmd
}

// View renders the widget.
func (e *Editor) View() string { return e.area.View() }

// YankToClipboard copies the whole buffer to the system clipboard.
func (e *Editor) YankToClipboard() error {
	if err := clipboard.WriteAll(e.area.Value()); err != nil {
		return fmt.Errorf("copy to clipboard: %w", err)
	}
	return nil
}
