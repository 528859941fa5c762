// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package config loads the pyphon configuration file.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileName is the configuration file looked up in the home directory.
const FileName = ".pyphon.yml"

// Config holds the settings of the command-line shell.
type Config struct {
	// Database is the SQLite file for saved scripts; empty keeps them in memory.
	Database string `yaml:"database"`
	// RecursionLimit bounds nested calls; 0 keeps the interpreter default.
	RecursionLimit int `yaml:"recursion_limit"`
	// HistoryFile stores REPL line history.
	HistoryFile string `yaml:"history_file"`
	// Prelude is a file whose source replaces the default prelude.
	Prelude string `yaml:"prelude"`
	// LogLevel is one of debug, info, warn or error.
	LogLevel string `yaml:"log_level"`
	// LogFormat is text or json.
	LogFormat string `yaml:"log_format"`
}

// ValidationError aggregates configuration failures.
type ValidationError struct {
	Path   string
	Issues []string
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("config: ")
	b.WriteString(e.Path)
	b.WriteString(" is invalid:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// Default returns the settings used when no file is present.
func Default() *Config {
	c := &Config{LogLevel: "warn", LogFormat: "text"}
	if home, err := os.UserHomeDir(); err == nil {
		c.HistoryFile = filepath.Join(home, ".pyphon_history")
	}
	return c
}

// DefaultPath returns $HOME/.pyphon.yml, or "" when there is no home directory.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, FileName)
}

// Load reads the file at path over the defaults. A missing or empty file
// yields the defaults.
func Load(path string) (*Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}
	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	c.Database = expandHome(c.Database)
	c.HistoryFile = expandHome(c.HistoryFile)
	c.Prelude = expandHome(c.Prelude)
	if err := c.validate(path); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) validate(path string) error {
	var issues []string
	if _, ok := levels[strings.ToLower(c.LogLevel)]; !ok {
		issues = append(issues, fmt.Sprintf("log_level %q must be one of debug, info, warn, error", c.LogLevel))
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		issues = append(issues, fmt.Sprintf("log_format %q must be text or json", c.LogFormat))
	}
	if c.RecursionLimit < 0 {
		issues = append(issues, fmt.Sprintf("recursion_limit %d must not be negative", c.RecursionLimit))
	}
	if len(issues) > 0 {
		return &ValidationError{Path: path, Issues: issues}
	}
	return nil
}

var levels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// Level returns the slog level named by LogLevel.
func (c *Config) Level() slog.Level {
	if l, ok := levels[strings.ToLower(c.LogLevel)]; ok {
		return l
	}
	return slog.LevelWarn
}

// Logger builds a logger writing to w in the configured format.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.Level()}
	if strings.EqualFold(c.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
