package memory

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

// spyStore counts saves so tests can assert when persistence happens.
type spyStore struct {
	summary string
	history []Entry
	saves   int
}

func (s *spyStore) Load() (string, []Entry, error) { return s.summary, s.history, nil }
func (s *spyStore) Save(summary string, history []Entry) error {
	s.summary = summary
	s.history = append([]Entry(nil), history...)
	s.saves++
	return nil
}
func (s *spyStore) Close() error { return nil }

func managerWithEntries(t *testing.T, n int) (*Manager, *spyStore) {
	t.Helper()
	store := &spyStore{}
	manager, err := NewManager(store, nil)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < n; i++ {
		if err := manager.AddEntry("user", fmt.Sprintf("message %d", i), nil); err != nil {
			t.Fatal(err)
		}
	}
	return manager, store
}

func TestContextWindowPassThrough(t *testing.T) {
	manager, _ := managerWithEntries(t, 4)

	summarizerCalled := false
	window, err := manager.ContextWindow("system prompt", 10, func([]Entry, string) (string, error) {
		summarizerCalled = true
		return "", nil
	})
	if err != nil {
		t.Fatalf("ContextWindow: %v", err)
	}

	if summarizerCalled {
		t.Error("summarizer must not run while history fits the window")
	}
	if len(window) != 5 {
		t.Fatalf("window length = %d, want 5 (system + 4 entries)", len(window))
	}
	if window[0].Role != "system" || window[0].Content != "system prompt" {
		t.Errorf("window[0] = %+v", window[0])
	}
	for i := 1; i < len(window); i++ {
		want := fmt.Sprintf("message %d", i-1)
		if window[i].Content != want {
			t.Errorf("window[%d].Content = %q, want %q", i, window[i].Content, want)
		}
	}
}

func TestContextWindowOverflowSummarizes(t *testing.T) {
	manager, _ := managerWithEntries(t, 7)

	var agedSeen []Entry
	window, err := manager.ContextWindow("system", 3, func(aged []Entry, prev string) (string, error) {
		agedSeen = aged
		if prev != "" {
			t.Errorf("previous summary = %q, want empty", prev)
		}
		return "condensed", nil
	})
	if err != nil {
		t.Fatalf("ContextWindow: %v", err)
	}

	if len(agedSeen) != 4 {
		t.Fatalf("summarizer got %d aged entries, want 4", len(agedSeen))
	}
	if agedSeen[0].Content != "message 0" || agedSeen[3].Content != "message 3" {
		t.Errorf("wrong aged slice: first %q last %q", agedSeen[0].Content, agedSeen[3].Content)
	}

	// system + summary + exact 3-entry tail
	if len(window) != 5 {
		t.Fatalf("window length = %d, want 5", len(window))
	}
	if window[1].Role != "system" || window[1].Content != "Previous Summary: condensed" {
		t.Errorf("summary message = %+v", window[1])
	}
	if window[2].Content != "message 4" || window[4].Content != "message 6" {
		t.Errorf("tail entries wrong: %+v", window[2:])
	}

	// History itself is never rewritten by windowing.
	if manager.Len() != 7 {
		t.Errorf("history length = %d, want 7", manager.Len())
	}
}

func TestContextWindowPersistsSummaryOnlyWhenChanged(t *testing.T) {
	manager, store := managerWithEntries(t, 5)
	savesBefore := store.saves

	stable := func([]Entry, string) (string, error) { return "stable summary", nil }

	if _, err := manager.ContextWindow("system", 2, stable); err != nil {
		t.Fatal(err)
	}
	if store.saves != savesBefore+1 {
		t.Errorf("saves = %d, want %d (new summary persisted)", store.saves, savesBefore+1)
	}
	if store.summary != "stable summary" {
		t.Errorf("persisted summary = %q", store.summary)
	}

	if _, err := manager.ContextWindow("system", 2, stable); err != nil {
		t.Fatal(err)
	}
	if store.saves != savesBefore+1 {
		t.Errorf("unchanged summary was re-persisted: saves = %d", store.saves)
	}
}

func TestContextWindowContractViolations(t *testing.T) {
	manager, _ := managerWithEntries(t, 2)

	if _, err := manager.ContextWindow("", 5, nil); !errors.Is(err, ErrContract) {
		t.Errorf("empty system prompt: err = %v, want ErrContract", err)
	}
	if _, err := manager.ContextWindow("system", 0, nil); !errors.Is(err, ErrContract) {
		t.Errorf("maxRecent 0: err = %v, want ErrContract", err)
	}
	if _, err := manager.ContextWindow("system", -1, nil); !errors.Is(err, ErrContract) {
		t.Errorf("negative maxRecent: err = %v, want ErrContract", err)
	}
}

func TestContextWindowSummarizerFailureLeavesSummaryUnchanged(t *testing.T) {
	manager, store := managerWithEntries(t, 5)

	if _, err := manager.ContextWindow("system", 2, func([]Entry, string) (string, error) {
		return "ok", nil
	}); err != nil {
		t.Fatal(err)
	}

	savesBefore := store.saves
	_, err := manager.ContextWindow("system", 2, func([]Entry, string) (string, error) {
		return "", errors.New("boom")
	})
	if !errors.Is(err, ErrContract) {
		t.Fatalf("err = %v, want ErrContract", err)
	}
	if manager.Summary() != "ok" {
		t.Errorf("summary changed after failed summarizer: %q", manager.Summary())
	}
	if store.saves != savesBefore {
		t.Errorf("failed summarization persisted state")
	}
}

func TestDefaultSummarizer(t *testing.T) {
	aged := []Entry{
		{Role: "user", Content: "ask"},
		{Role: "assistant", Content: "answer"},
	}

	summary, err := DefaultSummarizer(aged, "earlier context")
	if err != nil {
		t.Fatal(err)
	}

	want := "earlier context\nuser: ask\nassistant: answer"
	if summary != want {
		t.Errorf("summary = %q, want %q", summary, want)
	}

	summary, err = DefaultSummarizer(aged, "")
	if err != nil {
		t.Fatal(err)
	}
	if strings.HasPrefix(summary, "\n") {
		t.Errorf("summary has leading newline without previous summary: %q", summary)
	}
}

func TestCompactionHook(t *testing.T) {
	manager, _ := managerWithEntries(t, 5)

	compactions := 0
	manager.SetCompactionHook(func() { compactions++ })

	stable := func([]Entry, string) (string, error) { return "s", nil }
	if _, err := manager.ContextWindow("system", 2, stable); err != nil {
		t.Fatal(err)
	}
	if _, err := manager.ContextWindow("system", 2, stable); err != nil {
		t.Fatal(err)
	}

	if compactions != 1 {
		t.Errorf("compactions = %d, want 1 (only on summary change)", compactions)
	}
}
