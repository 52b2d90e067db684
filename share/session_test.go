// ABOUTME: Tests for the collaboration edit session state machine
// ABOUTME: Covers wizard transitions, staging purity, and direct collaborator edits
package share

import (
	"context"
	"testing"

	"github.com/harperreed/packshare/models"
)

func packFixture() *fakeService {
	svc := newFakeService()
	svc.addUser(1, "owner")
	svc.addUser(7, "kay")
	svc.addUser(9, "riff")
	svc.addSong(1, 101, "Hammer Down", "drums", "bass", "vocals", "midi")
	svc.addSong(1, 102, "Night Drive", "drums", "guitar", "vocals")
	return svc
}

func openPackSession(t *testing.T, svc *fakeService) *Session {
	t.Helper()
	s, err := OpenSession(context.Background(), svc, models.TargetPack, 1, "owner")
	if err != nil {
		t.Fatalf("OpenSession failed: %v", err)
	}
	return s
}

func openSongSession(t *testing.T, svc *fakeService) *Session {
	t.Helper()
	s, err := OpenSession(context.Background(), svc, models.TargetSong, 101, "owner")
	if err != nil {
		t.Fatalf("OpenSession failed: %v", err)
	}
	return s
}

func TestOpenSessionUnknownUser(t *testing.T) {
	svc := packFixture()
	_, err := OpenSession(context.Background(), svc, models.TargetPack, 1, "stranger")
	if err == nil {
		t.Fatal("expected error for unresolvable current user")
	}
}

func TestPackWizardFullAccessEmitsImmediately(t *testing.T) {
	svc := packFixture()
	s := openPackSession(t, svc)

	if err := s.SelectUser(context.Background(), "kay"); err != nil {
		t.Fatalf("SelectUser failed: %v", err)
	}
	if s.Step() != StepChoosePermissionType {
		t.Fatalf("expected step 2, got %d", s.Step())
	}

	s.ChoosePermissionType(models.KindFull)

	adds := s.PendingAdditions()
	if len(adds) != 1 {
		t.Fatalf("expected 1 pending addition, got %d", len(adds))
	}
	if adds[0].Kind != models.KindFull || adds[0].UserID != 7 {
		t.Errorf("unexpected addition: %+v", adds[0])
	}
	if s.Step() != StepSelectUser {
		t.Errorf("expected wizard back at step 1, got %d", s.Step())
	}
}

func TestPackWizardSpecificRequiresSongSelection(t *testing.T) {
	svc := packFixture()
	s := openPackSession(t, svc)

	_ = s.SelectUser(context.Background(), "kay")
	s.ChoosePermissionType(models.KindSpecific)
	if s.Step() != StepSelectSongsOrFields {
		t.Fatalf("expected step 3, got %d", s.Step())
	}

	// No song selected: the transition is refused, no change emitted.
	if s.AddPendingChange() {
		t.Error("AddPendingChange should refuse with no songs selected")
	}
	if len(s.PendingAdditions()) != 0 {
		t.Errorf("expected no additions, got %d", len(s.PendingAdditions()))
	}
	if s.Step() != StepSelectSongsOrFields {
		t.Errorf("session should remain in step 3")
	}

	s.ToggleSongSelection(101)
	if !s.AddPendingChange() {
		t.Fatal("AddPendingChange should succeed with one song selected")
	}

	adds := s.PendingAdditions()
	if len(adds) != 1 || len(adds[0].SongIDs) != 1 || adds[0].SongIDs[0] != 101 {
		t.Errorf("unexpected addition: %+v", adds)
	}
}

func TestSongWizardAutoSelectsSpecific(t *testing.T) {
	svc := packFixture()
	s := openSongSession(t, svc)

	_ = s.SelectUser(context.Background(), "kay")
	if s.Step() != StepSelectSongsOrFields {
		t.Fatalf("song scope should jump to step 3, got %d", s.Step())
	}
	if !s.SongSelected(101) {
		t.Error("the single song in scope should be pre-selected")
	}

	if s.AddPendingChange() {
		t.Error("AddPendingChange should refuse with no fields selected")
	}

	s.ToggleFieldSelection("drums")
	s.ToggleFieldSelection("bass")
	if !s.AddPendingChange() {
		t.Fatal("AddPendingChange should succeed with fields selected")
	}

	adds := s.PendingAdditions()
	if len(adds) != 1 {
		t.Fatalf("expected 1 addition, got %d", len(adds))
	}
	if got := adds[0].Fields; len(got) != 2 || got[0] != "bass" || got[1] != "drums" {
		t.Errorf("unexpected fields: %v", got)
	}
}

func TestSongWizardFullSongAccess(t *testing.T) {
	svc := packFixture()
	s := openSongSession(t, svc)

	_ = s.SelectUser(context.Background(), "kay")
	s.ChoosePermissionType(models.KindSongEdit)

	adds := s.PendingAdditions()
	if len(adds) != 1 || adds[0].Kind != models.KindSongEdit {
		t.Fatalf("expected one song_edit addition, got %+v", adds)
	}
	if s.Step() != StepSelectUser {
		t.Errorf("expected wizard back at step 1, got %d", s.Step())
	}
}

func TestStagedChangesDoNotTouchStores(t *testing.T) {
	svc := packFixture()
	svc.songGrants[101] = map[int64]bool{9: true}
	s := openPackSession(t, svc)

	_ = s.SelectUser(context.Background(), "kay")
	s.ChoosePermissionType(models.KindSpecific)
	s.ToggleSongSelection(101)
	s.ToggleSongSelection(102)
	s.AddPendingChange()
	s.RequestRemoval(9)

	if svc.mutations != 0 {
		t.Errorf("staging mutated the stores %d times", svc.mutations)
	}
}

func TestRemovePendingChange(t *testing.T) {
	svc := packFixture()
	s := openPackSession(t, svc)

	_ = s.SelectUser(context.Background(), "kay")
	s.ChoosePermissionType(models.KindFull)
	_ = s.SelectUser(context.Background(), "riff")
	s.ChoosePermissionType(models.KindPackShare)

	s.RemovePendingChange(0)
	adds := s.PendingAdditions()
	if len(adds) != 1 || adds[0].Username != "riff" {
		t.Errorf("expected only riff's addition to remain, got %+v", adds)
	}
}

func TestRemovalUndo(t *testing.T) {
	svc := packFixture()
	svc.packGrants[1] = map[int64]map[models.PermissionLevel]bool{
		7: {models.PermissionView: true},
	}
	s := openPackSession(t, svc)

	s.RequestRemoval(7)
	s.RequestRemoval(7) // duplicate collapses
	if len(s.PendingRemovals()) != 1 {
		t.Fatalf("expected 1 removal, got %d", len(s.PendingRemovals()))
	}
	if !s.IsRemovalPending(7) {
		t.Error("removal should be pending")
	}

	s.UndoRemoval(7)
	if s.HasPendingChanges() {
		t.Error("undo should clear the pending removal")
	}
}

func TestCancelDiscardsStagedChanges(t *testing.T) {
	svc := packFixture()
	s := openPackSession(t, svc)

	_ = s.SelectUser(context.Background(), "kay")
	s.ChoosePermissionType(models.KindFull)
	if !s.HasPendingChanges() {
		t.Fatal("expected pending changes")
	}

	s.Cancel()
	if s.HasPendingChanges() {
		t.Error("cancel should discard staged changes")
	}
	if s.Step() != StepSelectUser {
		t.Errorf("cancel should reset the wizard, got step %d", s.Step())
	}
	if svc.mutations != 0 {
		t.Errorf("cancel mutated the stores %d times", svc.mutations)
	}
}

func TestResetWizardKeepsStagedChanges(t *testing.T) {
	svc := packFixture()
	s := openPackSession(t, svc)

	_ = s.SelectUser(context.Background(), "kay")
	s.ChoosePermissionType(models.KindFull)

	_ = s.SelectUser(context.Background(), "riff")
	s.ChoosePermissionType(models.KindSpecific)
	s.ToggleSongSelection(101)

	s.ResetWizard()
	if s.Step() != StepSelectUser {
		t.Errorf("expected wizard back at step 1, got %d", s.Step())
	}
	if s.SongSelected(101) {
		t.Error("reset should clear the in-flight selection")
	}
	if len(s.PendingAdditions()) != 1 {
		t.Errorf("reset must not discard staged additions, got %d", len(s.PendingAdditions()))
	}
}

func TestBeginEditExistingIsSongScopedOnly(t *testing.T) {
	svc := packFixture()
	s := openPackSession(t, svc)

	if err := s.BeginEditExisting(context.Background(), 7); err == nil {
		t.Error("expected error at pack scope")
	}
}

func TestSaveEditWritesDirectly(t *testing.T) {
	svc := packFixture()
	svc.songGrants[101] = map[int64]bool{7: true, 9: true}
	svc.assignments[101] = []models.FieldAssignment{
		{SongID: 101, Collaborator: "kay", Field: "drums"},
		{SongID: 101, Collaborator: "riff", Field: "vocals"},
	}
	s := openSongSession(t, svc)

	if err := s.BeginEditExisting(context.Background(), 7); err != nil {
		t.Fatalf("BeginEditExisting failed: %v", err)
	}
	edit := s.Editing()
	if edit == nil || !edit.Selected["drums"] {
		t.Fatalf("expected kay's current selection loaded, got %+v", edit)
	}

	s.ToggleExistingField("drums") // drop drums
	s.ToggleExistingField("midi")  // pick up midi

	if err := s.SaveEdit(context.Background()); err != nil {
		t.Fatalf("SaveEdit failed: %v", err)
	}
	if s.Editing() != nil {
		t.Error("SaveEdit should leave editing mode")
	}

	if got := svc.assignmentsFor(101, "kay"); len(got) != 1 || got[0] != "midi" {
		t.Errorf("kay's assignments = %v, want [midi]", got)
	}
	if got := svc.assignmentsFor(101, "riff"); len(got) != 1 || got[0] != "vocals" {
		t.Errorf("riff's rows must be untouched, got %v", got)
	}
}

func TestEditingBlocksWizard(t *testing.T) {
	svc := packFixture()
	svc.songGrants[101] = map[int64]bool{7: true}
	svc.assignments[101] = []models.FieldAssignment{
		{SongID: 101, Collaborator: "kay", Field: "drums"},
	}
	s := openSongSession(t, svc)

	if err := s.BeginEditExisting(context.Background(), 7); err != nil {
		t.Fatalf("BeginEditExisting failed: %v", err)
	}

	if err := s.SelectUser(context.Background(), "riff"); err == nil {
		t.Error("SelectUser should refuse while editing")
	}

	s.CancelEdit()
	if err := s.SelectUser(context.Background(), "riff"); err != nil {
		t.Errorf("SelectUser should work after CancelEdit: %v", err)
	}
}
