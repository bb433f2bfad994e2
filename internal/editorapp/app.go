package editorapp

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"editbridge/internal/config"
)

// Errors returned for operations against missing editor instances. Update
// calls before CreateEditors are reported, not silently dropped.
var (
	ErrNoEditor     = errors.New("no editor instance exists")
	ErrNoDiffEditor = errors.New("no diff editor instance exists")
)

// OptionsPatch is a partial update to the editor options. Nil fields are
// left unchanged.
type OptionsPatch struct {
	Code               *string
	LanguageID         *string
	Theme              *string
	UseDiffEditor      *bool
	Code2              *string
	ModifiedLanguageID *string
}

// App owns zero, one or two live editor instances depending on diff mode,
// plus the options they were created from. Instances are replaced (old
// disposed, new created) when mode or language changes; the App's lifetime
// is bounded by its component's.
type App struct {
	services *Services
	logger   *zap.Logger

	opts config.EditorOptions

	editor *Editor
	diff   *DiffEditor
}

// NewApp creates an editor app over the injected shared services.
func NewApp(services *Services, opts config.EditorOptions, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &App{
		services: services,
		logger:   logger.With(zap.String("component", "editor_app")),
		opts:     opts,
	}
}

// Init bootstraps the shared services. Idempotent across all apps in the
// process; a second init is detected and skipped.
func (a *App) Init() {
	a.services.Init()
}

// Options returns a copy of the current editor options.
func (a *App) Options() config.EditorOptions { return a.opts }

// Editor returns the single-editor instance, or nil in diff mode.
func (a *App) Editor() *Editor { return a.editor }

// DiffEditor returns the diff pair, or nil outside diff mode.
func (a *App) DiffEditor() *DiffEditor { return a.diff }

// CreateEditors creates the editor, or the diff pair when diff mode is set.
// Diff mode without the paired content fails before anything is created.
// Existing instances are disposed first, so the call doubles as a rebuild.
func (a *App) CreateEditors() error {
	if a.opts.UseDiffEditor && a.opts.Code2 == "" {
		return fmt.Errorf("create editors: diff mode requires both original and modified content")
	}
	a.DisposeEditor()
	a.DisposeDiffEditor()

	theme := a.services.Theme(a.opts.Theme)
	if a.opts.UseDiffEditor {
		a.diff = newDiffEditor(a.services, a.opts.Code, a.opts.Code2, a.opts.LanguageID, a.opts.ModifiedLanguageID, theme)
		a.logger.Debug("diff editor created", zap.String("language", a.opts.LanguageID))
	} else {
		a.editor = newEditor(a.services, a.opts.Code, a.opts.LanguageID, theme)
		a.logger.Debug("editor created", zap.String("language", a.opts.LanguageID))
	}
	return nil
}

// UpdateModel replaces the single editor's buffer content and language.
func (a *App) UpdateModel(code, languageID string) error {
	if a.editor == nil {
		return ErrNoEditor
	}
	a.editor.replaceModel(a.services, code, languageID)
	a.opts.Code = code
	a.opts.LanguageID = languageID
	return nil
}

// UpdateDiffModel replaces both sides of the diff pair.
func (a *App) UpdateDiffModel(original, modified, languageID string) error {
	if a.diff == nil {
		return ErrNoDiffEditor
	}
	a.diff.original.replaceModel(a.services, original, languageID)
	a.diff.modified.replaceModel(a.services, modified, languageID)
	a.opts.Code = original
	a.opts.Code2 = modified
	a.opts.LanguageID = languageID
	return nil
}

// UpdateConfig applies an option patch. Content, language and mode changes
// take effect on the next CreateEditors; theme changes apply immediately.
func (a *App) UpdateConfig(patch OptionsPatch) {
	if patch.Code != nil {
		a.opts.Code = *patch.Code
	}
	if patch.LanguageID != nil {
		a.opts.LanguageID = *patch.LanguageID
	}
	if patch.UseDiffEditor != nil {
		a.opts.UseDiffEditor = *patch.UseDiffEditor
	}
	if patch.Code2 != nil {
		a.opts.Code2 = *patch.Code2
	}
	if patch.ModifiedLanguageID != nil {
		a.opts.ModifiedLanguageID = *patch.ModifiedLanguageID
	}
	if patch.Theme != nil {
		a.UpdateTheme(*patch.Theme)
	}
}

// UpdateTheme restyles live instances without recreating them.
func (a *App) UpdateTheme(theme string) {
	a.opts.Theme = theme
	t := a.services.Theme(theme)
	if a.editor != nil {
		a.editor.ApplyTheme(t)
	}
	if a.diff != nil {
		a.diff.ApplyTheme(t)
	}
}

// DisposeEditor releases the single-editor instance.
func (a *App) DisposeEditor() {
	a.editor = nil
}

// DisposeDiffEditor releases the diff pair.
func (a *App) DisposeDiffEditor() {
	a.diff = nil
}
