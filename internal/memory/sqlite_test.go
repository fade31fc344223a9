package memory

import (
	"path/filepath"
	"testing"
)

func TestSQLiteStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory.db")
	store, err := NewSQLiteStore(path, nil)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	defer store.Close()

	history := []Entry{
		{Role: "user", Content: "hello", Metadata: map[string]any{"turn": "1"}},
		{Role: "assistant", Content: "hi there"},
	}
	if err := store.Save("a summary", history); err != nil {
		t.Fatalf("Save: %v", err)
	}

	summary, loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if summary != "a summary" {
		t.Errorf("summary = %q", summary)
	}
	if len(loaded) != 2 {
		t.Fatalf("history length = %d, want 2", len(loaded))
	}
	if loaded[0].Role != "user" || loaded[0].Content != "hello" {
		t.Errorf("loaded[0] = %+v", loaded[0])
	}
	if loaded[0].Metadata["turn"] != "1" {
		t.Errorf("metadata = %+v", loaded[0].Metadata)
	}
	if loaded[1].Metadata != nil {
		t.Errorf("empty metadata should load as nil, got %+v", loaded[1].Metadata)
	}
}

func TestSQLiteStoreEmptyDatabase(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "memory.db"), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	summary, history, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if summary != "" || len(history) != 0 {
		t.Errorf("fresh database not empty: %q, %d entries", summary, len(history))
	}
}

func TestSQLiteStoreSaveReplacesState(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "memory.db"), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	if err := store.Save("first", []Entry{{Role: "user", Content: "a"}}); err != nil {
		t.Fatal(err)
	}
	if err := store.Save("second", []Entry{{Role: "user", Content: "b"}, {Role: "tool", Content: "c"}}); err != nil {
		t.Fatal(err)
	}

	summary, history, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if summary != "second" {
		t.Errorf("summary = %q", summary)
	}
	if len(history) != 2 || history[0].Content != "b" {
		t.Errorf("history = %+v", history)
	}
}
