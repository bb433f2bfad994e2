package editorapp

import (
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"editbridge/internal/config"
)

// Theme is a named style set applied to editors without recreating them.
type Theme struct {
	Name string
	Dark bool

	Text    lipgloss.Style
	Gutter  lipgloss.Style
	Status  lipgloss.Style
	Added   lipgloss.Style
	Removed lipgloss.Style
}

// Services is the shared editor service registry: built-in themes and model
// id allocation. It is process-wide state, so it is injected into every App
// and initialized at most once; later Init calls detect this and skip.
type Services struct {
	once        sync.Once
	initialized atomic.Bool

	mu     sync.RWMutex
	themes map[string]Theme

	modelSeq atomic.Int64
	logger   *zap.Logger
}

// NewServices creates an uninitialized registry.
func NewServices(logger *zap.Logger) *Services {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Services{
		themes: map[string]Theme{},
		logger: logger.With(zap.String("component", "editor_services")),
	}
}

// Init registers the built-in themes. Idempotent: only the first call acts.
func (s *Services) Init() {
	s.once.Do(func() {
		s.mu.Lock()
		s.themes[config.ThemeLight] = Theme{
			Name:    config.ThemeLight,
			Text:    lipgloss.NewStyle().Foreground(lipgloss.Color("235")).Background(lipgloss.Color("255")),
			Gutter:  lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
			Status:  lipgloss.NewStyle().Foreground(lipgloss.Color("235")).Bold(true),
			Added:   lipgloss.NewStyle().Foreground(lipgloss.Color("28")),
			Removed: lipgloss.NewStyle().Foreground(lipgloss.Color("160")),
		}
		s.themes[config.ThemeDark] = Theme{
			Name:    config.ThemeDark,
			Dark:    true,
			Text:    lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Background(lipgloss.Color("235")),
			Gutter:  lipgloss.NewStyle().Foreground(lipgloss.Color("243")),
			Status:  lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Bold(true),
			Added:   lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
			Removed: lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		}
		s.mu.Unlock()
		s.initialized.Store(true)
		s.logger.Debug("editor services initialized")
	})
}

// Initialized reports whether Init has completed.
func (s *Services) Initialized() bool {
	return s.initialized.Load()
}

// RegisterTheme adds or replaces a theme.
func (s *Services) RegisterTheme(t Theme) {
	s.mu.Lock()
	s.themes[t.Name] = t
	s.mu.Unlock()
}

// Theme resolves a theme by name, falling back to the light set.
func (s *Services) Theme(name string) Theme {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if t, ok := s.themes[name]; ok {
		return t
	}
	return s.themes[config.ThemeLight]
}

// nextModelID allocates a unique in-memory model id.
func (s *Services) nextModelID() int64 {
	return s.modelSeq.Add(1)
}
