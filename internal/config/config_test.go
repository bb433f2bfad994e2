package config

import (
	"path/filepath"
	"testing"
)

func TestSocketURL(t *testing.T) {
	cases := []struct {
		name string
		in   SocketOptions
		want string
	}{
		{"plain", SocketOptions{Host: "localhost", Port: 3000}, "ws://localhost:3000"},
		{"secured", SocketOptions{Secured: true, Host: "example.com", Port: 443, Path: "/ls"}, "wss://example.com:443/ls"},
		{"no port", SocketOptions{Host: "example.com", Path: "ls"}, "ws://example.com/ls"},
		{"path without slash", SocketOptions{Host: "h", Port: 80, Path: "sampleServer"}, "ws://h:80/sampleServer"},
	}
	for _, tc := range cases {
		if got := tc.in.URL(); got != tc.want {
			t.Fatalf("%s: got %q want %q", tc.name, got, tc.want)
		}
	}
}

func TestEndpointPrefersLiteralURL(t *testing.T) {
	lc := &LanguageClientOptions{
		URL:    "ws://literal:9999",
		Socket: &SocketOptions{Host: "structured", Port: 3000},
	}
	if got := lc.Endpoint(); got != "ws://literal:9999" {
		t.Fatalf("got %q", got)
	}
	lc.URL = ""
	if got := lc.Endpoint(); got != "ws://structured:3000" {
		t.Fatalf("got %q", got)
	}
}

func TestCloneIsDeep(t *testing.T) {
	c := &Config{
		Editor: EditorOptions{Code: "x", LanguageID: "json"},
		LanguageClient: &LanguageClientOptions{
			Transport: TransportWorker,
			Worker:    &WorkerOptions{Command: "gopls", Args: []string{"serve"}, Env: map[string]string{"A": "1"}},
		},
	}
	cp := Clone(c)
	cp.Editor.Code = "y"
	cp.LanguageClient.Worker.Args[0] = "changed"
	cp.LanguageClient.Worker.Env["A"] = "2"

	if c.Editor.Code != "x" {
		t.Fatalf("editor options not copied")
	}
	if c.LanguageClient.Worker.Args[0] != "serve" {
		t.Fatalf("worker args shared between clone and original")
	}
	if c.LanguageClient.Worker.Env["A"] != "1" {
		t.Fatalf("worker env shared between clone and original")
	}
}

func TestLoadSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "editbridge.json")
	c := &Config{
		Editor: EditorOptions{Code: "{}", LanguageID: "json", Theme: ThemeDark, UseDiffEditor: true, Code2: "{ }"},
		LanguageClient: &LanguageClientOptions{
			Transport: TransportSocket,
			Socket:    &SocketOptions{Secured: true, Host: "localhost", Port: 30000, Path: "/sampleServer"},
		},
	}
	if err := Save(path, c); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Editor != c.Editor {
		t.Fatalf("editor options round trip mismatch: %+v", got.Editor)
	}
	if got.LanguageClient == nil || got.LanguageClient.Socket == nil {
		t.Fatalf("language client options lost")
	}
	if got.LanguageClient.Socket.URL() != "wss://localhost:30000/sampleServer" {
		t.Fatalf("socket url mismatch: %s", got.LanguageClient.Socket.URL())
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
