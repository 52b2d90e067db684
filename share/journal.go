// ABOUTME: Durable commit journal recording per-operation saga outcomes
// ABOUTME: SQLite-backed at an XDG path, one row per attempted remote call
package share

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/harperreed/packshare/models"
)

const journalSchema = `
CREATE TABLE IF NOT EXISTS commits (
	id TEXT PRIMARY KEY,
	session_id TEXT NOT NULL,
	target_type TEXT NOT NULL,
	target_id INTEGER NOT NULL,
	committed_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS operations (
	id TEXT PRIMARY KEY,
	commit_id TEXT NOT NULL,
	kind TEXT NOT NULL,
	pack_id INTEGER,
	song_id INTEGER,
	user_id INTEGER,
	error TEXT,
	at DATETIME NOT NULL,
	FOREIGN KEY (commit_id) REFERENCES commits(id)
);

CREATE INDEX IF NOT EXISTS idx_operations_commit_id ON operations(commit_id);
CREATE INDEX IF NOT EXISTS idx_commits_committed_at ON commits(committed_at);
`

// Journal persists what each commit attempted and how every call fared.
// It is the recorded saga outcome, a retry and audit point that survives
// the session.
type Journal struct {
	db *sql.DB
}

// JournalPath returns the default XDG location of the journal database.
func JournalPath() string {
	return filepath.Join(xdg.DataHome, "packshare", "journal.db")
}

// OpenJournal opens (and if needed creates) the journal database.
func OpenJournal(path string) (*Journal, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, err
	}

	// Single connection avoids sqlite locked errors
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(journalSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize journal schema: %w", err)
	}

	return &Journal{db: db}, nil
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// RecordCommit writes one commit and its operation outcomes.
func (j *Journal) RecordCommit(sessionID uuid.UUID, target models.TargetType, targetID int64, result models.CommitResult) error {
	tx, err := j.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin journal transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	commitID := uuid.New().String()
	_, err = tx.Exec(
		`INSERT INTO commits (id, session_id, target_type, target_id, committed_at) VALUES (?, ?, ?, ?, ?)`,
		commitID, sessionID.String(), string(target), targetID, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert commit row: %w", err)
	}

	for _, op := range result.Outcomes {
		_, err = tx.Exec(
			`INSERT INTO operations (id, commit_id, kind, pack_id, song_id, user_id, error, at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			op.ID, commitID, string(op.Kind), op.PackID, op.SongID, op.UserID, op.Error, op.At,
		)
		if err != nil {
			return fmt.Errorf("failed to insert operation row: %w", err)
		}
	}

	return tx.Commit()
}

// CommitRecord is one journaled commit with its operations.
type CommitRecord struct {
	ID          string
	SessionID   string
	Target      models.TargetType
	TargetID    int64
	CommittedAt time.Time
	Operations  []models.OpOutcome
}

// RecentCommits returns the latest commits, newest first.
func (j *Journal) RecentCommits(limit int) ([]CommitRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := j.db.Query(
		`SELECT id, session_id, target_type, target_id, committed_at FROM commits ORDER BY committed_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query commits: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []CommitRecord
	for rows.Next() {
		var rec CommitRecord
		var target string
		if err := rows.Scan(&rec.ID, &rec.SessionID, &target, &rec.TargetID, &rec.CommittedAt); err != nil {
			return nil, fmt.Errorf("failed to scan commit row: %w", err)
		}
		rec.Target = models.TargetType(target)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range records {
		ops, err := j.operations(records[i].ID)
		if err != nil {
			return nil, err
		}
		records[i].Operations = ops
	}
	return records, nil
}

func (j *Journal) operations(commitID string) ([]models.OpOutcome, error) {
	rows, err := j.db.Query(
		`SELECT id, kind, pack_id, song_id, user_id, error, at FROM operations WHERE commit_id = ? ORDER BY at, id`,
		commitID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query operations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ops []models.OpOutcome
	for rows.Next() {
		var op models.OpOutcome
		var kind string
		if err := rows.Scan(&op.ID, &kind, &op.PackID, &op.SongID, &op.UserID, &op.Error, &op.At); err != nil {
			return nil, fmt.Errorf("failed to scan operation row: %w", err)
		}
		op.Kind = models.OpKind(kind)
		ops = append(ops, op)
	}
	return ops, rows.Err()
}
