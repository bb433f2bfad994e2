package main

import (
	"os"
	"path/filepath"
	"testing"

	cfg "editbridge/internal/config"
)

func TestLanguageFromPath(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{"main.go", "go"},
		{"data.JSON", "json"},
		{"script.py", "python"},
		{"notes.md", "markdown"},
		{"deploy.yml", "yaml"},
		{"strange.xyz", "xyz"},
		{"noext", ""},
	}
	for _, tc := range cases {
		if got := languageFromPath(tc.path); got != tc.want {
			t.Fatalf("%s: got %q want %q", tc.path, got, tc.want)
		}
	}
}

func TestBuildConfigFlagsWinOverFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "conf.json")
	if err := cfg.Save(configPath, &cfg.Config{
		Editor: cfg.EditorOptions{Code: "from-file", LanguageID: "json", Theme: cfg.ThemeLight},
	}); err != nil {
		t.Fatalf("save: %v", err)
	}

	srcPath := filepath.Join(dir, "main.go")
	if err := os.WriteFile(srcPath, []byte("package main\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	conf, err := buildConfig(configPath, srcPath, "", cfg.ThemeDark, "", "", "")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if conf.Editor.Code != "package main\n" {
		t.Fatalf("code: %q", conf.Editor.Code)
	}
	// The file already set a language, so the extension guess does not apply.
	if conf.Editor.LanguageID != "json" {
		t.Fatalf("language: %q", conf.Editor.LanguageID)
	}
	if conf.Editor.Theme != cfg.ThemeDark {
		t.Fatalf("theme: %q", conf.Editor.Theme)
	}
}

func TestBuildConfigDiffMode(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	for path, content := range map[string]string{a: "one\n", b: "two\n"} {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	conf, err := buildConfig("", a, "", "", b, "", "")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !conf.Editor.UseDiffEditor {
		t.Fatal("diff mode not enabled")
	}
	if conf.Editor.Code != "one\n" || conf.Editor.Code2 != "two\n" {
		t.Fatalf("contents: %q / %q", conf.Editor.Code, conf.Editor.Code2)
	}
}

func TestBuildConfigTransports(t *testing.T) {
	conf, err := buildConfig("", "", "", "", "", "ws://localhost:3000/ls", "")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if conf.LanguageClient == nil || conf.LanguageClient.Transport != cfg.TransportSocket {
		t.Fatalf("socket transport: %+v", conf.LanguageClient)
	}
	if conf.LanguageClient.Endpoint() != "ws://localhost:3000/ls" {
		t.Fatalf("endpoint: %q", conf.LanguageClient.Endpoint())
	}

	conf, err = buildConfig("", "", "", "", "", "", "gopls serve -rpc.trace")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	lc := conf.LanguageClient
	if lc == nil || lc.Transport != cfg.TransportWorker || lc.Worker == nil {
		t.Fatalf("worker transport: %+v", lc)
	}
	if lc.Worker.Command != "gopls" || len(lc.Worker.Args) != 2 {
		t.Fatalf("worker: %+v", lc.Worker)
	}

	conf, err = buildConfig("", "", "", "", "", "", "")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if conf.LanguageClient != nil {
		t.Fatalf("unexpected language client: %+v", conf.LanguageClient)
	}
}

func TestBuildConfigMissingFile(t *testing.T) {
	if _, err := buildConfig("", filepath.Join(t.TempDir(), "absent.go"), "", "", "", "", ""); err == nil {
		t.Fatal("expected error for missing file")
	}
	if _, err := buildConfig(filepath.Join(t.TempDir(), "absent.json"), "", "", "", "", "", ""); err == nil {
		t.Fatal("expected error for missing config")
	}
}
