// ABOUTME: SQLite ledger tracking ingested sources by content digest
// ABOUTME: Lets repeat ingestion runs skip unchanged documents
package ingest

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Ledger records which sources have been ingested and with what content
// digest. It is a driver-side convenience only; the vector index remains
// the owner of the points themselves.
type Ledger struct {
	conn *sql.DB
	path string
}

// Entry is one ledger row.
type Entry struct {
	SourceID   string
	Digest     string
	Chunks     int
	IngestedAt time.Time
}

// OpenLedger opens or creates the ledger database at the given path.
func OpenLedger(path string) (*Ledger, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create ledger directory: %w", err)
	}

	// WAL mode so a status query can run alongside an ingestion.
	conn, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)")
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS sources (
		source_id   TEXT PRIMARY KEY,
		sha256      TEXT NOT NULL,
		chunks      INTEGER NOT NULL DEFAULT 0,
		ingested_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`
	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create ledger schema: %w", err)
	}

	return &Ledger{conn: conn, path: path}, nil
}

// Close closes the underlying database.
func (l *Ledger) Close() error {
	return l.conn.Close()
}

// Seen reports whether the source was already ingested with the same
// content digest. A changed digest means the document was updated and
// must be re-ingested.
func (l *Ledger) Seen(sourceID, digest string) (bool, error) {
	var stored string
	err := l.conn.QueryRow(`SELECT sha256 FROM sources WHERE source_id = ?`, sourceID).Scan(&stored)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("querying ledger: %w", err)
	}
	return stored == digest, nil
}

// Record upserts the ledger row for a source.
func (l *Ledger) Record(sourceID, digest string, chunks int) error {
	_, err := l.conn.Exec(`
		INSERT INTO sources (source_id, sha256, chunks, ingested_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(source_id) DO UPDATE SET
			sha256 = excluded.sha256,
			chunks = excluded.chunks,
			ingested_at = excluded.ingested_at`,
		sourceID, digest, chunks)
	if err != nil {
		return fmt.Errorf("recording source %s: %w", sourceID, err)
	}
	return nil
}

// Entries returns all ledger rows, most recently ingested first.
func (l *Ledger) Entries() ([]Entry, error) {
	rows, err := l.conn.Query(`
		SELECT source_id, sha256, chunks, ingested_at
		FROM sources ORDER BY ingested_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing ledger: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.SourceID, &e.Digest, &e.Chunks, &e.IngestedAt); err != nil {
			return nil, fmt.Errorf("scanning ledger row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
