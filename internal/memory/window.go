package memory

import (
	"errors"
	"fmt"
	"strings"
)

// ErrContract marks a caller-side violation of the memory API: bad
// arguments or a summarizer that does not honor its contract. Callers can
// detect it with errors.Is.
var ErrContract = errors.New("memory contract violation")

// Summarizer condenses entries that fall out of the context window. It
// receives the aged-out entries and the previous summary, and returns the
// replacement summary. A non-nil error is treated as a contract violation
// and leaves the stored summary unchanged.
type Summarizer func(aged []Entry, previousSummary string) (string, error)

// DefaultSummarizer concatenates aged entries as "role: content" lines
// under the previous summary. It never fails.
func DefaultSummarizer(aged []Entry, previousSummary string) (string, error) {
	var b strings.Builder
	if prev := strings.TrimSpace(previousSummary); prev != "" {
		b.WriteString(prev)
		b.WriteString("\n")
	}
	for _, e := range aged {
		fmt.Fprintf(&b, "%s: %s\n", e.Role, e.Content)
	}
	return strings.TrimSpace(b.String()), nil
}

// ContextWindow builds the message window for the next model call.
//
// While the history fits within maxRecent the summarizer is never invoked
// and the window is the system prompt plus the full history. Once the
// history exceeds maxRecent, the aged prefix is folded into the rolling
// summary, a "Previous Summary" system message is inserted, and only the
// exact maxRecent tail stays verbatim. The full history itself is never
// rewritten; the updated summary is persisted only when it changed.
func (m *Manager) ContextWindow(systemPrompt string, maxRecent int, summarize Summarizer) ([]Entry, error) {
	if systemPrompt == "" {
		return nil, fmt.Errorf("%w: system prompt must not be empty", ErrContract)
	}
	if maxRecent < 1 {
		return nil, fmt.Errorf("%w: max recent must be at least 1, got %d", ErrContract, maxRecent)
	}
	if summarize == nil {
		summarize = DefaultSummarizer
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	window := []Entry{{Role: "system", Content: systemPrompt}}

	if len(m.history) <= maxRecent {
		return append(window, m.history...), nil
	}

	split := len(m.history) - maxRecent
	aged := append([]Entry(nil), m.history[:split]...)
	recent := m.history[split:]

	newSummary, err := summarize(aged, m.summary)
	if err != nil {
		return nil, fmt.Errorf("%w: summarizer failed: %v", ErrContract, err)
	}
	newSummary = strings.TrimSpace(newSummary)

	if newSummary != m.summary {
		m.summary = newSummary
		if err := m.store.Save(m.summary, m.history); err != nil {
			return nil, fmt.Errorf("persist memory: %w", err)
		}
		if m.onCompaction != nil {
			m.onCompaction()
		}
	}

	window = append(window, Entry{Role: "system", Content: "Previous Summary: " + m.summary})
	return append(window, recent...), nil
}
