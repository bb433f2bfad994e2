package editorapp

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DiffEditor is the paired original/modified instance used in diff mode.
// The original side is read-only; the modified side is a full editor.
type DiffEditor struct {
	original *Editor
	modified *Editor
	theme    Theme
}

func newDiffEditor(services *Services, original, modified, languageID, modifiedLanguageID string, theme Theme) *DiffEditor {
	if modifiedLanguageID == "" {
		modifiedLanguageID = languageID
	}
	d := &DiffEditor{
		original: newEditor(services, original, languageID, theme),
		modified: newEditor(services, modified, modifiedLanguageID, theme),
		theme:    theme,
	}
	return d
}

// Original returns the read-only side.
func (d *DiffEditor) Original() *Editor { return d.original }

// Modified returns the editable side.
func (d *DiffEditor) Modified() *Editor { return d.modified }

// ApplyTheme restyles both sides in place.
func (d *DiffEditor) ApplyTheme(theme Theme) {
	d.theme = theme
	d.original.ApplyTheme(theme)
	d.modified.ApplyTheme(theme)
}

// View renders a line diff of original vs modified. Width splits the two
// columns; zero width falls back to a unified rendering.
func (d *DiffEditor) View(width int) string {
	if width <= 0 {
		return d.unified()
	}
	return d.sideBySide(width)
}

// lineDiffs computes a line-level diff between the two buffers.
func (d *DiffEditor) lineDiffs() []diffmatchpatch.Diff {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(d.original.Text(), d.modified.Text())
	diffs := dmp.DiffMain(a, b, false)
	return dmp.DiffCharsToLines(diffs, lines)
}

func (d *DiffEditor) unified() string {
	var b strings.Builder
	for _, df := range d.lineDiffs() {
		for _, line := range splitLines(df.Text) {
			switch df.Type {
			case diffmatchpatch.DiffDelete:
				b.WriteString(d.theme.Removed.Render("- "+line) + "\n")
			case diffmatchpatch.DiffInsert:
				b.WriteString(d.theme.Added.Render("+ "+line) + "\n")
			default:
				b.WriteString("  " + line + "\n")
			}
		}
	}
	return b.String()
}

func (d *DiffEditor) sideBySide(width int) string {
	const sep = " │ "
	colWidth := (width - len([]rune(sep))) / 2
	if colWidth < 10 {
		colWidth = 10
	}

	var left, right []string
	for _, df := range d.lineDiffs() {
		lines := splitLines(df.Text)
		switch df.Type {
		case diffmatchpatch.DiffDelete:
			for _, l := range lines {
				left = append(left, d.theme.Removed.Render(pad(l, colWidth)))
				right = append(right, pad("", colWidth))
			}
		case diffmatchpatch.DiffInsert:
			for _, l := range lines {
				left = append(left, pad("", colWidth))
				right = append(right, d.theme.Added.Render(pad(l, colWidth)))
			}
		default:
			for _, l := range lines {
				left = append(left, pad(l, colWidth))
				right = append(right, pad(l, colWidth))
			}
		}
	}

	var b strings.Builder
	for i := range left {
		b.WriteString(left[i] + sep + right[i] + "\n")
	}
	return b.String()
}

func splitLines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func pad(s string, width int) string {
	r := []rune(s)
	if len(r) > width {
		return string(r[:width])
	}
	return s + strings.Repeat(" ", width-len(r))
}
