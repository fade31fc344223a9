package memory

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists memory in a SQLite database. The schema mirrors
// the JSON document: one summary row plus an ordered entry log.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS memory_summary (
	id      INTEGER PRIMARY KEY CHECK (id = 1),
	summary TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS memory_entries (
	seq      INTEGER PRIMARY KEY AUTOINCREMENT,
	role     TEXT NOT NULL,
	content  TEXT NOT NULL,
	metadata TEXT
);
`

// NewSQLiteStore opens (creating if needed) the database at path.
func NewSQLiteStore(path string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open memory database: %w", err)
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init memory schema: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		logger: logger.With("component", "memory"),
	}, nil
}

// Load reads the summary and the entry log in insertion order.
func (s *SQLiteStore) Load() (string, []Entry, error) {
	var summary string
	err := s.db.QueryRow(`SELECT summary FROM memory_summary WHERE id = 1`).Scan(&summary)
	if err != nil && err != sql.ErrNoRows {
		return "", nil, fmt.Errorf("load summary: %w", err)
	}

	rows, err := s.db.Query(`SELECT role, content, metadata FROM memory_entries ORDER BY seq`)
	if err != nil {
		return "", nil, fmt.Errorf("load entries: %w", err)
	}
	defer rows.Close()

	var history []Entry
	for rows.Next() {
		var entry Entry
		var metadata sql.NullString
		if err := rows.Scan(&entry.Role, &entry.Content, &metadata); err != nil {
			return "", nil, fmt.Errorf("scan entry: %w", err)
		}
		if metadata.Valid && metadata.String != "" {
			if err := json.Unmarshal([]byte(metadata.String), &entry.Metadata); err != nil {
				s.logger.Warn("dropping unreadable entry metadata", "error", err)
			}
		}
		history = append(history, entry)
	}
	if err := rows.Err(); err != nil {
		return "", nil, fmt.Errorf("load entries: %w", err)
	}

	return summary, history, nil
}

// Save rewrites the whole state in one transaction.
func (s *SQLiteStore) Save(summary string, history []Entry) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO memory_summary (id, summary) VALUES (1, ?)
		ON CONFLICT (id) DO UPDATE SET summary = excluded.summary`, summary); err != nil {
		return fmt.Errorf("save summary: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM memory_entries`); err != nil {
		return fmt.Errorf("clear entries: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO memory_entries (role, content, metadata) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, entry := range history {
		var metadata any
		if entry.Metadata != nil {
			data, err := json.Marshal(entry.Metadata)
			if err != nil {
				return fmt.Errorf("encode entry metadata: %w", err)
			}
			metadata = string(data)
		}
		if _, err := stmt.Exec(entry.Role, entry.Content, metadata); err != nil {
			return fmt.Errorf("save entry: %w", err)
		}
	}

	return tx.Commit()
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
