// Package memory keeps the agent's conversational history: an append-only
// entry log plus a rolling summary of entries that have aged out of the
// context window. State is written through to a persistent store on every
// mutation.
package memory

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// Entry is one conversational turn.
type Entry struct {
	Role     string         `json:"role"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Store persists memory state.
type Store interface {
	// Load returns the persisted summary and history. A missing backing
	// file or empty database is not an error; it loads as fresh state.
	Load() (summary string, history []Entry, err error)
	// Save persists the full state atomically with respect to Load.
	Save(summary string, history []Entry) error
	// Close releases backing resources.
	Close() error
}

// snapshot is the on-disk document shape.
type snapshot struct {
	Summary string  `json:"summary"`
	History []Entry `json:"history"`
}

// FileStore persists memory as a JSON document on disk.
type FileStore struct {
	path   string
	logger *slog.Logger
}

// NewFileStore creates a file-backed store at path.
func NewFileStore(path string, logger *slog.Logger) *FileStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileStore{
		path:   path,
		logger: logger.With("component", "memory"),
	}
}

// Load reads the document. Two shapes are accepted: the current
// {"summary": ..., "history": [...]} document, and the legacy bare entry
// list which loads as history with an empty summary. An unreadable or
// corrupt file starts fresh with a warning rather than failing the agent.
func (s *FileStore) Load() (string, []Entry, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil, nil
		}
		s.logger.Warn("could not read memory file, starting fresh",
			"path", s.path,
			"error", err)
		return "", nil, nil
	}

	// Legacy format: a bare list of entries.
	var legacy []Entry
	if err := json.Unmarshal(data, &legacy); err == nil {
		return "", legacy, nil
	}

	var doc snapshot
	if err := json.Unmarshal(data, &doc); err == nil {
		return doc.Summary, doc.History, nil
	}

	s.logger.Warn("corrupt memory file, starting fresh", "path", s.path)
	return "", nil, nil
}

// Save writes the document via a temp file rename.
func (s *FileStore) Save(summary string, history []Entry) error {
	if history == nil {
		history = []Entry{}
	}
	data, err := json.MarshalIndent(snapshot{Summary: summary, History: history}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode memory: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".memory-*.json")
	if err != nil {
		return fmt.Errorf("create temp memory file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write memory: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close memory file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace memory file: %w", err)
	}
	return nil
}

// Close is a no-op for file stores.
func (s *FileStore) Close() error { return nil }

// Manager owns the in-memory state and writes every mutation through to
// the store before returning.
type Manager struct {
	store  Store
	logger *slog.Logger

	mu      sync.RWMutex
	summary string
	history []Entry

	onCompaction func()
}

// SetCompactionHook registers a callback invoked whenever the rolling
// summary is rewritten. Used for metrics.
func (m *Manager) SetCompactionHook(fn func()) {
	m.mu.Lock()
	m.onCompaction = fn
	m.mu.Unlock()
}

// NewManager loads state from the store.
func NewManager(store Store, logger *slog.Logger) (*Manager, error) {
	if logger == nil {
		logger = slog.Default()
	}

	summary, history, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load memory: %w", err)
	}

	return &Manager{
		store:   store,
		logger:  logger.With("component", "memory"),
		summary: summary,
		history: history,
	}, nil
}

// AddEntry appends a turn and persists before returning.
func (m *Manager) AddEntry(role, content string, metadata map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.history = append(m.history, Entry{Role: role, Content: content, Metadata: metadata})
	if err := m.store.Save(m.summary, m.history); err != nil {
		return fmt.Errorf("persist memory: %w", err)
	}
	return nil
}

// History returns a copy of the full history.
func (m *Manager) History() []Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Entry, len(m.history))
	copy(out, m.history)
	return out
}

// Summary returns the rolling summary.
func (m *Manager) Summary() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.summary
}

// Len returns the history length.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.history)
}

// Clear drops all state and persists the empty document.
func (m *Manager) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.summary = ""
	m.history = nil
	if err := m.store.Save("", nil); err != nil {
		return fmt.Errorf("persist memory: %w", err)
	}
	return nil
}

// Close closes the backing store.
func (m *Manager) Close() error {
	return m.store.Close()
}
