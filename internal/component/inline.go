package component

import (
	"sync"

	"editbridge/internal/config"
)

// InlineOptions are option overrides supplied by the embedding program
// rather than through component properties. Nil fields are not overridden.
type InlineOptions struct {
	Code               *string
	LanguageID         *string
	ModifiedCode       *string
	ModifiedLanguageID *string
	Theme              *string
}

// OptionsProvider supplies inline editor and diff-editor option overrides.
// Providers resolve by component id so multiple instances can coexist;
// absence of overrides is fine, the feature is opt-in.
type OptionsProvider interface {
	EditorOptions(id string) (InlineOptions, bool)
	DiffEditorOptions(id string) (InlineOptions, bool)
}

// Registry is the standard OptionsProvider: option sources registered under
// a component id, with the empty id acting as the shared default.
type Registry struct {
	mu     sync.RWMutex
	editor map[string]func() InlineOptions
	diff   map[string]func() InlineOptions
}

func NewRegistry() *Registry {
	return &Registry{
		editor: map[string]func() InlineOptions{},
		diff:   map[string]func() InlineOptions{},
	}
}

// RegisterEditorOptions binds an editor option source to a component id.
// An empty id registers the default used by components without a dedicated
// entry.
func (r *Registry) RegisterEditorOptions(id string, fn func() InlineOptions) {
	r.mu.Lock()
	r.editor[id] = fn
	r.mu.Unlock()
}

// RegisterDiffEditorOptions binds a diff-editor option source to an id.
func (r *Registry) RegisterDiffEditorOptions(id string, fn func() InlineOptions) {
	r.mu.Lock()
	r.diff[id] = fn
	r.mu.Unlock()
}

func (r *Registry) EditorOptions(id string) (InlineOptions, bool) {
	return lookup(r, r.editor, id)
}

func (r *Registry) DiffEditorOptions(id string) (InlineOptions, bool) {
	return lookup(r, r.diff, id)
}

// lookup resolves id-specific sources first, then the default.
func lookup(r *Registry, m map[string]func() InlineOptions, id string) (InlineOptions, bool) {
	r.mu.RLock()
	fn, ok := m[id]
	if !ok {
		fn, ok = m[""]
	}
	r.mu.RUnlock()
	if !ok || fn == nil {
		return InlineOptions{}, false
	}
	return fn(), true
}

// mergeInline folds returned fields into the editor options.
func mergeInline(opts *config.EditorOptions, in InlineOptions) {
	if in.Code != nil {
		opts.Code = *in.Code
	}
	if in.LanguageID != nil {
		opts.LanguageID = *in.LanguageID
	}
	if in.ModifiedCode != nil {
		opts.Code2 = *in.ModifiedCode
	}
	if in.ModifiedLanguageID != nil {
		opts.ModifiedLanguageID = *in.ModifiedLanguageID
	}
	if in.Theme != nil {
		opts.Theme = *in.Theme
	}
}
