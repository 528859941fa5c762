// Package store provides persistence for pyphon scripts and their runs.
package store

import "time"

// Script is a named program source.
type Script struct {
	Name    string
	Source  string
	Version int
	Updated time.Time
}

// Run records one execution of a stored script.
type Run struct {
	Script   string
	OK       bool
	Output   string
	Duration time.Duration
	Ts       time.Time
}

// Store is the interface for script persistence.
type Store interface {
	// GetScript retrieves a script by name. Returns nil if not found.
	GetScript(name string) (*Script, error)
	// PutScript stores a script, overwriting any previous source.
	PutScript(name, source string) error
	// DeleteScript removes a script and its history.
	DeleteScript(name string) error
	// Scripts lists the stored script names in sorted order.
	Scripts() ([]string, error)
	// AddRun appends a run record.
	AddRun(r Run) error
	// Runs returns the most recent runs of a script, newest first.
	Runs(script string, limit int) ([]Run, error)
	// GetMetadata retrieves a metadata value. Returns "" if unset.
	GetMetadata(key string) (string, error)
	// SetMetadata stores a metadata value.
	SetMetadata(key, value string) error
	// Close releases resources.
	Close() error
}

// VersionEntry represents a single saved version of a script.
type VersionEntry struct {
	Version int
	Source  string
	Ts      time.Time
}

// HistoryStore extends Store with script version history queries.
type HistoryStore interface {
	GetHistory(name string, limit int) ([]VersionEntry, error)
}
