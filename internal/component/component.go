package component

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"editbridge/internal/config"
	"editbridge/internal/editorapp"
	"editbridge/internal/languageclient"
)

// Property names, mirroring the component's externally visible attributes.
const (
	PropCode               = "code"
	PropLanguageID         = "language-id"
	PropModifiedCode       = "modified-code"
	PropModifiedLanguageID = "modified-language-id"
	PropTheme              = "theme"
	PropEnableInlineConfig = "enable-inline-config"
	PropUseDiffEditor      = "use-diff-editor"
)

// Properties is the externally visible state of a component. Every field is
// reflected: external changes land here and in the config, imperative
// setters write back here.
type Properties struct {
	Code               string
	LanguageID         string
	ModifiedCode       string
	ModifiedLanguageID string
	Theme              string
	EnableInlineConfig bool
	UseDiffEditor      bool
}

// Component mirrors property changes into its configuration and delegates
// editor and language-client lifecycle to the wrapped app and wrapper.
// Property setters never re-render; rendering happens on Start or an
// explicit UpdateEditor call.
type Component struct {
	id     string
	logger *zap.Logger

	props Properties
	cfg   *config.Config

	services *editorapp.Services
	app      *editorapp.App
	wrapper  *languageclient.Wrapper

	provider      OptionsProvider
	notifier      ColorSchemeNotifier
	cancelScheme  func()
	started       bool
	onPropChanged map[string]func(c *Component, value string) error
}

// Option configures a component.
type Option func(*Component)

// WithID pins the component id; default is a random UUID.
func WithID(id string) Option {
	return func(c *Component) { c.id = id }
}

// WithLogger sets the component logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Component) { c.logger = logger }
}

// WithServices injects the shared editor services. Components on the same
// page share one instance so initialization happens at most once.
func WithServices(s *editorapp.Services) Option {
	return func(c *Component) { c.services = s }
}

// WithOptionsProvider injects the inline configuration capability.
func WithOptionsProvider(p OptionsProvider) Option {
	return func(c *Component) { c.provider = p }
}

// WithColorSchemeNotifier injects the dark/light preference source.
func WithColorSchemeNotifier(n ColorSchemeNotifier) Option {
	return func(c *Component) { c.notifier = n }
}

// WithWrapper injects a pre-built language-client wrapper, mainly for
// embedding and tests; default is one built from cfg.LanguageClient.
func WithWrapper(w *languageclient.Wrapper) Option {
	return func(c *Component) { c.wrapper = w }
}

// New creates a component over cfg. The config object is owned by the
// component from here on and mutated in place as properties change.
func New(cfg *config.Config, opts ...Option) *Component {
	if cfg == nil {
		cfg = &config.Config{}
	}
	c := &Component{cfg: cfg}
	for _, opt := range opts {
		opt(c)
	}
	if c.id == "" {
		c.id = uuid.NewString()
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	c.logger = c.logger.With(zap.String("component", "editor_component"), zap.String("id", c.id))
	if c.services == nil {
		c.services = editorapp.NewServices(c.logger)
	}
	if c.wrapper == nil {
		c.wrapper = languageclient.New(cfg.LanguageClient, languageclient.WithLogger(c.logger))
	}

	// Seed reflected properties from the initial config.
	c.props = Properties{
		Code:               cfg.Editor.Code,
		LanguageID:         cfg.Editor.LanguageID,
		ModifiedCode:       cfg.Editor.Code2,
		ModifiedLanguageID: cfg.Editor.ModifiedLanguageID,
		Theme:              cfg.Editor.Theme,
		UseDiffEditor:      cfg.Editor.UseDiffEditor,
	}

	c.onPropChanged = map[string]func(c *Component, value string) error{
		PropCode:               func(c *Component, v string) error { c.SetCode(v); return nil },
		PropLanguageID:         func(c *Component, v string) error { c.SetLanguageID(v); return nil },
		PropModifiedCode:       func(c *Component, v string) error { c.SetModifiedCode(v); return nil },
		PropModifiedLanguageID: func(c *Component, v string) error { c.SetModifiedLanguageID(v); return nil },
		PropTheme:              func(c *Component, v string) error { c.SetTheme(v); return nil },
		PropEnableInlineConfig: setBoolProp(func(c *Component, b bool) { c.SetEnableInlineConfig(b) }),
		PropUseDiffEditor:      setBoolProp(func(c *Component, b bool) { c.SetUseDiffEditor(b) }),
	}
	return c
}

func setBoolProp(set func(*Component, bool)) func(*Component, string) error {
	return func(c *Component, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parse bool property: %w", err)
		}
		set(c, b)
		return nil
	}
}

// ID returns the component id.
func (c *Component) ID() string { return c.id }

// Properties returns the current reflected property values.
func (c *Component) Properties() Properties { return c.props }

// Config returns the live configuration object.
func (c *Component) Config() *config.Config { return c.cfg }

// App returns the editor app; nil before the first Start.
func (c *Component) App() *editorapp.App { return c.app }

// Wrapper returns the language-client wrapper.
func (c *Component) Wrapper() *languageclient.Wrapper { return c.wrapper }

// SetProperty dispatches an attribute-style property change by name.
func (c *Component) SetProperty(name, value string) error {
	handler, ok := c.onPropChanged[name]
	if !ok {
		return fmt.Errorf("unknown property %q", name)
	}
	return handler(c, value)
}

// SetCode updates the code property and the configuration.
func (c *Component) SetCode(code string) {
	c.props.Code = code
	c.cfg.Editor.Code = code
}

// SetLanguageID updates the language property and the configuration.
func (c *Component) SetLanguageID(languageID string) {
	c.props.LanguageID = languageID
	c.cfg.Editor.LanguageID = languageID
}

// SetModifiedCode updates the diff-mode modified content.
func (c *Component) SetModifiedCode(code string) {
	c.props.ModifiedCode = code
	c.cfg.Editor.Code2 = code
}

// SetModifiedLanguageID updates the diff-mode modified language.
func (c *Component) SetModifiedLanguageID(languageID string) {
	c.props.ModifiedLanguageID = languageID
	c.cfg.Editor.ModifiedLanguageID = languageID
}

// SetTheme updates the theme property and pushes a theme-only update to any
// live editors; instances are not recreated.
func (c *Component) SetTheme(theme string) {
	c.props.Theme = theme
	c.cfg.Editor.Theme = theme
	if c.app != nil {
		c.app.UpdateTheme(theme)
	}
}

// SetUseDiffEditor flips diff mode; takes effect on the next Start/Update.
func (c *Component) SetUseDiffEditor(useDiff bool) {
	c.props.UseDiffEditor = useDiff
	c.cfg.Editor.UseDiffEditor = useDiff
}

// SetEnableInlineConfig opts into inline configuration on first render.
func (c *Component) SetEnableInlineConfig(enable bool) {
	c.props.EnableInlineConfig = enable
}

// Start is the first render: inline configuration is applied when enabled,
// editors are created, then the language client starts if one is configured.
func (c *Component) Start(ctx context.Context) error {
	if c.props.EnableInlineConfig {
		c.applyInlineConfig()
	}

	c.app = editorapp.NewApp(c.services, c.cfg.Editor, c.logger)
	c.app.Init()
	if err := c.app.CreateEditors(); err != nil {
		c.app = nil
		return err
	}
	c.started = true

	if c.notifier != nil && c.cancelScheme == nil {
		c.cancelScheme = c.notifier.Subscribe(c.handleColorScheme)
	}

	if c.cfg.LanguageClient != nil {
		if err := c.wrapper.Start(ctx); err != nil {
			return err
		}
		c.announceDocuments(ctx)
	}
	return nil
}

// applyInlineConfig pulls overrides from the provider and merges them into
// the configuration before the editors are built.
func (c *Component) applyInlineConfig() {
	if c.provider == nil {
		return
	}
	var in InlineOptions
	var ok bool
	if c.props.UseDiffEditor {
		in, ok = c.provider.DiffEditorOptions(c.id)
	} else {
		in, ok = c.provider.EditorOptions(c.id)
	}
	if !ok {
		return
	}
	mergeInline(&c.cfg.Editor, in)
	// Reflect merged values back into the visible properties.
	c.props.Code = c.cfg.Editor.Code
	c.props.LanguageID = c.cfg.Editor.LanguageID
	c.props.ModifiedCode = c.cfg.Editor.Code2
	c.props.ModifiedLanguageID = c.cfg.Editor.ModifiedLanguageID
	c.props.Theme = c.cfg.Editor.Theme
	c.logger.Debug("inline config applied")
}

// announceDocuments opens the live models on the language client.
func (c *Component) announceDocuments(ctx context.Context) {
	client := c.wrapper.Client()
	if client == nil || c.app == nil {
		return
	}
	if ed := c.app.Editor(); ed != nil {
		m := ed.Model()
		if err := client.DidOpen(ctx, m.URI, m.LanguageID, ed.Text()); err != nil {
			c.logger.Warn("didOpen failed", zap.Error(err))
		}
	}
	if d := c.app.DiffEditor(); d != nil {
		for _, ed := range []*editorapp.Editor{d.Original(), d.Modified()} {
			m := ed.Model()
			if err := client.DidOpen(ctx, m.URI, m.LanguageID, ed.Text()); err != nil {
				c.logger.Warn("didOpen failed", zap.Error(err))
			}
		}
	}
}

// UpdateEditor re-applies the current configuration to the editors,
// recreating instances as needed, and re-announces the models.
func (c *Component) UpdateEditor(ctx context.Context) error {
	if c.app == nil {
		return editorapp.ErrNoEditor
	}
	c.app.UpdateConfig(editorapp.OptionsPatch{
		Code:               &c.cfg.Editor.Code,
		LanguageID:         &c.cfg.Editor.LanguageID,
		Theme:              &c.cfg.Editor.Theme,
		UseDiffEditor:      &c.cfg.Editor.UseDiffEditor,
		Code2:              &c.cfg.Editor.Code2,
		ModifiedLanguageID: &c.cfg.Editor.ModifiedLanguageID,
	})
	if err := c.app.CreateEditors(); err != nil {
		return err
	}
	if c.wrapper.IsRunning() {
		c.announceDocuments(ctx)
	}
	return nil
}

// handleColorScheme flips the theme property on preference changes. Only
// the styling changes; the editor instances stay.
func (c *Component) handleColorScheme(dark bool) {
	theme := config.ThemeLight
	if dark {
		theme = config.ThemeDark
	}
	c.SetTheme(theme)
	c.logger.Debug("color scheme switched", zap.String("theme", theme))
}

// Dispose stops the language client if running and releases the editors.
func (c *Component) Dispose(ctx context.Context) error {
	if c.cancelScheme != nil {
		c.cancelScheme()
		c.cancelScheme = nil
	}
	var err error
	if c.wrapper != nil && c.wrapper.IsRunning() {
		err = c.wrapper.Dispose(ctx)
	}
	if c.app != nil {
		c.app.DisposeEditor()
		c.app.DisposeDiffEditor()
		c.app = nil
	}
	c.started = false
	return err
}
