// Copyright
// SPDX-License-Identifier: MIT
// editbridge: terminal code editor component bridged to a language server over WebSocket or a worker process
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	cfg "editbridge/internal/config"
	"editbridge/internal/component"
	"editbridge/internal/editorapp"
)

const Version = "0.3.0"

func main() {
	var (
		configPath = flag.String("config", "", "JSON config file (editor + language client)")
		filePath   = flag.String("file", "", "file to open into the editor")
		language   = flag.String("language", "", "language id (default: from file extension)")
		theme      = flag.String("theme", "", "theme: vs-light | vs-dark (default: terminal background)")
		diffWith   = flag.String("diff-with", "", "second file; enables diff mode")
		wsURL      = flag.String("ws", "", "language server WebSocket URL (ws:// or wss://)")
		serverCmd  = flag.String("server", "", "language server command run as a worker process")
		verbose    = flag.Bool("v", false, "debug logging to stderr")
		version    = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *version {
		fmt.Println("editbridge", Version)
		return
	}

	logger := zap.NewNop()
	if *verbose {
		l, err := zap.NewDevelopment()
		if err == nil {
			logger = l
		}
	}
	defer logger.Sync() //nolint:errcheck

	conf, err := buildConfig(*configPath, *filePath, *language, *theme, *diffWith, *wsURL, *serverCmd)
	if err != nil {
		fmt.Fprintln(os.Stderr, "editbridge:", err)
		os.Exit(1)
	}

	notifier := component.NewManualNotifier()
	comp := component.New(conf,
		component.WithLogger(logger),
		component.WithServices(editorapp.NewServices(logger)),
		component.WithColorSchemeNotifier(notifier),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	err = comp.Start(ctx)
	cancel()
	if err != nil {
		fmt.Fprintln(os.Stderr, "editbridge:", err)
		os.Exit(1)
	}

	// Seed the theme from the terminal unless pinned explicitly.
	if conf.Editor.Theme == "" {
		notifier.Notify(component.DetectDark())
	}

	p := tea.NewProgram(component.NewUIModel(comp), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "editbridge:", err)
		os.Exit(1)
	}
	// Normal quits dispose inside the program; this covers abnormal exits.
	if comp.Wrapper().IsRunning() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = comp.Dispose(ctx)
		cancel()
	}
}

// buildConfig assembles the component config from a config file and flag
// overrides. Flags win over the file.
func buildConfig(configPath, filePath, language, theme, diffWith, wsURL, serverCmd string) (*cfg.Config, error) {
	conf := &cfg.Config{}
	if configPath != "" {
		loaded, err := cfg.Load(configPath)
		if err != nil {
			return nil, err
		}
		conf = loaded
	}

	if filePath != "" {
		data, err := os.ReadFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("read file: %w", err)
		}
		conf.Editor.Code = string(data)
		if conf.Editor.LanguageID == "" {
			conf.Editor.LanguageID = languageFromPath(filePath)
		}
	}
	if diffWith != "" {
		data, err := os.ReadFile(diffWith)
		if err != nil {
			return nil, fmt.Errorf("read diff file: %w", err)
		}
		conf.Editor.Code2 = string(data)
		conf.Editor.UseDiffEditor = true
	}
	if language != "" {
		conf.Editor.LanguageID = language
	}
	if theme != "" {
		conf.Editor.Theme = theme
	}

	switch {
	case wsURL != "":
		conf.LanguageClient = &cfg.LanguageClientOptions{
			Transport: cfg.TransportSocket,
			URL:       wsURL,
		}
	case serverCmd != "":
		parts := strings.Fields(serverCmd)
		conf.LanguageClient = &cfg.LanguageClientOptions{
			Transport: cfg.TransportWorker,
			Worker:    &cfg.WorkerOptions{Command: parts[0], Args: parts[1:]},
		}
	}
	return conf, nil
}

// languageFromPath guesses a language id from the file extension.
func languageFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".go":
		return "go"
	case ".json":
		return "json"
	case ".py":
		return "python"
	case ".ts":
		return "typescript"
	case ".js":
		return "javascript"
	case ".rs":
		return "rust"
	case ".md":
		return "markdown"
	case ".yaml", ".yml":
		return "yaml"
	default:
		return strings.TrimPrefix(filepath.Ext(path), ".")
	}
}
