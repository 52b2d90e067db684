// ABOUTME: Tests for the SQLite commit journal
// ABOUTME: Verifies schema creation and commit/operation round-trips
package share

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/harperreed/packshare/models"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := OpenJournal(path)
	if err != nil {
		t.Fatalf("OpenJournal failed: %v", err)
	}
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func TestJournalRoundTrip(t *testing.T) {
	j := openTestJournal(t)

	sessionID := uuid.New()
	result := models.CommitResult{Outcomes: []models.OpOutcome{
		{ID: "01HQZX0000000000000000001A", Kind: models.OpGrantPack, PackID: 1, UserID: 7, At: time.Now().UTC()},
		{ID: "01HQZX0000000000000000001B", Kind: models.OpGrantSong, SongID: 101, UserID: 7, Error: "grant song 101 rejected", At: time.Now().UTC()},
	}}

	if err := j.RecordCommit(sessionID, models.TargetPack, 1, result); err != nil {
		t.Fatalf("RecordCommit failed: %v", err)
	}

	records, err := j.RecentCommits(10)
	if err != nil {
		t.Fatalf("RecentCommits failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 commit, got %d", len(records))
	}

	rec := records[0]
	if rec.SessionID != sessionID.String() {
		t.Errorf("session id = %q, want %q", rec.SessionID, sessionID.String())
	}
	if rec.Target != models.TargetPack || rec.TargetID != 1 {
		t.Errorf("target = %s %d, want pack 1", rec.Target, rec.TargetID)
	}
	if len(rec.Operations) != 2 {
		t.Fatalf("expected 2 operations, got %d", len(rec.Operations))
	}

	var failed int
	for _, op := range rec.Operations {
		if !op.Succeeded() {
			failed++
		}
	}
	if failed != 1 {
		t.Errorf("expected 1 failed operation, got %d", failed)
	}
}

func TestJournalRecordsEveryAttemptedOp(t *testing.T) {
	j := openTestJournal(t)

	svc := packFixture()
	svc.failGrantSong[102] = true
	s := openPackSession(t, svc)
	s.AttachJournal(j)

	_ = s.SelectUser(context.Background(), "kay")
	s.ChoosePermissionType(models.KindFull)

	result, err := s.CommitAll(context.Background())
	if err != nil {
		t.Fatalf("CommitAll failed: %v", err)
	}

	records, err := j.RecentCommits(1)
	if err != nil {
		t.Fatalf("RecentCommits failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 journaled commit, got %d", len(records))
	}
	if len(records[0].Operations) != len(result.Outcomes) {
		t.Errorf("journaled %d operations, result carried %d",
			len(records[0].Operations), len(result.Outcomes))
	}
}

func TestRecentCommitsOrder(t *testing.T) {
	j := openTestJournal(t)

	for i := int64(1); i <= 3; i++ {
		result := models.CommitResult{Outcomes: []models.OpOutcome{
			{ID: uuid.New().String(), Kind: models.OpGrantPack, PackID: i, At: time.Now().UTC()},
		}}
		if err := j.RecordCommit(uuid.New(), models.TargetPack, i, result); err != nil {
			t.Fatalf("RecordCommit failed: %v", err)
		}
		time.Sleep(5 * time.Millisecond) // distinct committed_at timestamps
	}

	records, err := j.RecentCommits(2)
	if err != nil {
		t.Fatalf("RecentCommits failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].TargetID != 3 || records[1].TargetID != 2 {
		t.Errorf("expected newest first, got targets %d, %d", records[0].TargetID, records[1].TargetID)
	}
}
