package component

import (
	"context"
	"testing"

	"editbridge/internal/config"
)

func strp(s string) *string { return &s }

func TestRegistryLookupFallsBackToDefault(t *testing.T) {
	r := NewRegistry()
	r.RegisterEditorOptions("", func() InlineOptions {
		return InlineOptions{Code: strp("default")}
	})
	r.RegisterEditorOptions("special", func() InlineOptions {
		return InlineOptions{Code: strp("special")}
	})

	if in, ok := r.EditorOptions("special"); !ok || *in.Code != "special" {
		t.Fatalf("dedicated entry: %+v %v", in, ok)
	}
	if in, ok := r.EditorOptions("other"); !ok || *in.Code != "default" {
		t.Fatalf("default fallback: %+v %v", in, ok)
	}

	empty := NewRegistry()
	if _, ok := empty.EditorOptions("any"); ok {
		t.Fatal("empty registry reported options")
	}
	if _, ok := empty.DiffEditorOptions("any"); ok {
		t.Fatal("empty registry reported diff options")
	}
}

func TestMergeInlineSkipsNilFields(t *testing.T) {
	opts := config.EditorOptions{Code: "keep", LanguageID: "go", Theme: config.ThemeLight}
	mergeInline(&opts, InlineOptions{
		LanguageID: strp("json"),
		Theme:      strp(config.ThemeDark),
	})
	if opts.Code != "keep" {
		t.Fatalf("nil field overwrote code: %q", opts.Code)
	}
	if opts.LanguageID != "json" || opts.Theme != config.ThemeDark {
		t.Fatalf("merge: %+v", opts)
	}
}

func TestInlineConfigAppliedOnStart(t *testing.T) {
	r := NewRegistry()
	r.RegisterEditorOptions("t", func() InlineOptions {
		return InlineOptions{
			Code:       strp(`{"inline":true}`),
			LanguageID: strp("json"),
			Theme:      strp(config.ThemeDark),
		}
	})

	c := New(&config.Config{Editor: config.EditorOptions{Code: "ignored"}},
		WithID("t"), WithOptionsProvider(r))
	c.SetEnableInlineConfig(true)

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	// Merged values are reflected into the visible properties.
	p := c.Properties()
	if p.Code != `{"inline":true}` || p.LanguageID != "json" || p.Theme != config.ThemeDark {
		t.Fatalf("properties: %+v", p)
	}
	if got := c.App().Editor().Text(); got != `{"inline":true}` {
		t.Fatalf("editor content: %q", got)
	}
}

func TestInlineConfigUsesDiffSourceInDiffMode(t *testing.T) {
	r := NewRegistry()
	r.RegisterEditorOptions("t", func() InlineOptions {
		return InlineOptions{Code: strp("editor source")}
	})
	r.RegisterDiffEditorOptions("t", func() InlineOptions {
		return InlineOptions{
			Code:         strp("original"),
			ModifiedCode: strp("modified"),
		}
	})

	c := New(&config.Config{Editor: config.EditorOptions{UseDiffEditor: true}},
		WithID("t"), WithOptionsProvider(r))
	c.SetEnableInlineConfig(true)

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	p := c.Properties()
	if p.Code != "original" || p.ModifiedCode != "modified" {
		t.Fatalf("properties: %+v", p)
	}
	if c.App().DiffEditor() == nil {
		t.Fatal("diff editor missing")
	}
}

func TestInlineConfigIgnoredWhenDisabled(t *testing.T) {
	r := NewRegistry()
	r.RegisterEditorOptions("t", func() InlineOptions {
		return InlineOptions{Code: strp("inline")}
	})

	c := New(&config.Config{Editor: config.EditorOptions{Code: "configured"}},
		WithID("t"), WithOptionsProvider(r))

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if got := c.Properties().Code; got != "configured" {
		t.Fatalf("inline config applied without opt-in: %q", got)
	}
}

func TestManualNotifierCancel(t *testing.T) {
	n := NewManualNotifier()
	calls := 0
	cancel := n.Subscribe(func(bool) { calls++ })

	n.Notify(true)
	cancel()
	n.Notify(false)

	if calls != 1 {
		t.Fatalf("calls: %d", calls)
	}
}
