package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Transport kinds for the language client.
const (
	TransportSocket = "socket"
	TransportWorker = "worker"
)

// Well-known theme identifiers. Anything else is passed through to the
// theme registry and falls back to the light set if unknown.
const (
	ThemeLight = "vs-light"
	ThemeDark  = "vs-dark"
)

// EditorOptions holds the buffer-level options of a single component
// instance. It is created once per component and mutated in place when a
// property changes; nothing here is persisted unless the caller saves it.
type EditorOptions struct {
	Code               string `json:"code,omitempty"`
	LanguageID         string `json:"languageId,omitempty"`
	Theme              string `json:"theme,omitempty"`
	UseDiffEditor      bool   `json:"useDiffEditor,omitempty"`
	Code2              string `json:"code2,omitempty"` // modified side in diff mode
	ModifiedLanguageID string `json:"modifiedLanguageId,omitempty"`
}

// SocketOptions describes a structured WebSocket endpoint. Either this or a
// literal URL is used to reach a language server over the network.
type SocketOptions struct {
	Secured bool   `json:"secured,omitempty"`
	Host    string `json:"host"`
	Port    int    `json:"port,omitempty"`
	Path    string `json:"path,omitempty"`
}

// URL builds the ws:// or wss:// endpoint from the structured fields.
func (s SocketOptions) URL() string {
	scheme := "ws"
	if s.Secured {
		scheme = "wss"
	}
	addr := s.Host
	if s.Port > 0 {
		addr = fmt.Sprintf("%s:%d", s.Host, s.Port)
	}
	path := s.Path
	if path != "" && path[0] != '/' {
		path = "/" + path
	}
	return fmt.Sprintf("%s://%s%s", scheme, addr, path)
}

// WorkerOptions describes a language server launched as a child process
// owned by the wrapper ("worker" transport).
type WorkerOptions struct {
	Command string            `json:"command"`
	Args    []string          `json:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
	Name    string            `json:"name,omitempty"`
}

// LanguageClientOptions configures the optional language-client connection.
// Exactly one transport family applies: socket (structured options or a
// literal URL) or worker (options, or a pre-built handle supplied at runtime
// through the wrapper API).
type LanguageClientOptions struct {
	Transport   string          `json:"transport"` // "socket" | "worker"
	Socket      *SocketOptions  `json:"socket,omitempty"`
	URL         string          `json:"url,omitempty"` // literal ws:// or wss:// URL
	Worker      *WorkerOptions  `json:"worker,omitempty"`
	InitOptions json.RawMessage `json:"initOptions,omitempty"`

	// Lifecycle hooks; never serialized.
	OnStart func() `json:"-"`
	OnStop  func() `json:"-"`
}

// Endpoint resolves the socket endpoint, preferring the literal URL.
func (lc *LanguageClientOptions) Endpoint() string {
	if lc.URL != "" {
		return lc.URL
	}
	if lc.Socket != nil {
		return lc.Socket.URL()
	}
	return ""
}

// Config is the root configuration object of one component instance.
type Config struct {
	Editor         EditorOptions          `json:"editor"`
	LanguageClient *LanguageClientOptions `json:"languageClient,omitempty"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var c Config
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse config JSON: %w", err)
	}
	return &c, nil
}

func Save(path string, c *Config) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone deep-copies the config so callers can patch a copy without
// disturbing the live instance.
func Clone(c *Config) *Config {
	out := &Config{Editor: c.Editor}
	if c.LanguageClient != nil {
		lc := *c.LanguageClient
		if c.LanguageClient.Socket != nil {
			sock := *c.LanguageClient.Socket
			lc.Socket = &sock
		}
		if c.LanguageClient.Worker != nil {
			w := *c.LanguageClient.Worker
			if w.Args != nil {
				w.Args = append([]string(nil), c.LanguageClient.Worker.Args...)
			}
			if w.Env != nil {
				w.Env = map[string]string{}
				for k, v := range c.LanguageClient.Worker.Env {
					w.Env[k] = v
				}
			}
			lc.Worker = &w
		}
		if c.LanguageClient.InitOptions != nil {
			lc.InitOptions = append(json.RawMessage(nil), c.LanguageClient.InitOptions...)
		}
		out.LanguageClient = &lc
	}
	return out
}
