package store

import (
	"slices"
	"sync"
	"time"
)

// Memory is an in-memory store for testing.
type Memory struct {
	mu       sync.RWMutex
	scripts  map[string][]VersionEntry
	runs     []Run
	metadata map[string]string
	now      func() time.Time
}

// NewMemory creates a new in-memory store.
func NewMemory() *Memory {
	return &Memory{
		scripts:  make(map[string][]VersionEntry),
		metadata: make(map[string]string),
		now:      time.Now,
	}
}

// GetScript retrieves the latest version of a script.
func (m *Memory) GetScript(name string) (*Script, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	versions, ok := m.scripts[name]
	if !ok {
		return nil, nil
	}
	v := versions[len(versions)-1]
	return &Script{Name: name, Source: v.Source, Version: v.Version, Updated: v.Ts}, nil
}

// PutScript stores a new version of a script.
func (m *Memory) PutScript(name, source string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	versions := m.scripts[name]
	if n := len(versions); n > 0 && versions[n-1].Source == source {
		return nil
	}
	m.scripts[name] = append(versions, VersionEntry{
		Version: len(versions) + 1,
		Source:  source,
		Ts:      m.now(),
	})
	return nil
}

// DeleteScript removes a script, its versions and its runs.
func (m *Memory) DeleteScript(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.scripts, name)
	m.runs = slices.DeleteFunc(m.runs, func(r Run) bool { return r.Script == name })
	return nil
}

// Scripts lists the stored script names.
func (m *Memory) Scripts() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.scripts))
	for name := range m.scripts {
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

// AddRun appends a run record.
func (m *Memory) AddRun(r Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.Ts.IsZero() {
		r.Ts = m.now()
	}
	m.runs = append(m.runs, r)
	return nil
}

// Runs returns the latest runs of a script, newest first.
func (m *Memory) Runs(script string, limit int) ([]Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Run
	for i := len(m.runs) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		if m.runs[i].Script == script {
			out = append(out, m.runs[i])
		}
	}
	return out, nil
}

// GetHistory returns the saved versions of a script, newest first.
func (m *Memory) GetHistory(name string, limit int) ([]VersionEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	versions := m.scripts[name]
	var out []VersionEntry
	for i := len(versions) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		out = append(out, versions[i])
	}
	return out, nil
}

// Close is a no-op for memory store.
func (m *Memory) Close() error {
	return nil
}

// GetMetadata retrieves a metadata value by key.
func (m *Memory) GetMetadata(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.metadata[key], nil
}

// SetMetadata stores a metadata value by key.
func (m *Memory) SetMetadata(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metadata[key] = value
	return nil
}
