// ABOUTME: Collaboration edit session state machine for staged grant changes
// ABOUTME: Walks the three-step selection wizard and accumulates pending changes
package share

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/google/uuid"

	"github.com/harperreed/packshare/models"
)

// Step is the wizard position within a session.
type Step int

const (
	StepSelectUser Step = iota + 1
	StepChoosePermissionType
	StepSelectSongsOrFields
)

// ExistingEdit holds one collaborator's field selection while the session is
// in editing-existing mode. It is mutually exclusive with wizard progress and
// saves through a direct, unstaged write.
type ExistingEdit struct {
	UserID   int64
	Username string
	Selected map[string]bool
}

// Session is one open collaboration editing dialog, scoped to a pack or a
// single song. It never mutates remote state itself; staged changes are
// flushed by CommitAll, and only SaveEdit writes directly.
type Session struct {
	ID          uuid.UUID
	Target      models.TargetType
	TargetID    int64
	CurrentUser models.User

	svc     Service
	journal *Journal

	step           Step
	pendingUser    *models.User
	pendingKind    models.AdditionKind
	selectedSongs  map[int64]bool
	selectedFields map[string]bool

	additions []models.Addition
	removals  []models.Removal

	editing *ExistingEdit

	songs       []models.Song // pack scope: songs in the pack
	song        *models.Song  // song scope: the single target
	grants      []models.GrantRecord
	assignments []models.FieldAssignment
	summaries   []models.UserSummary
}

// OpenSession starts an editing session for one target. Resolving the current
// user is the only blocking precondition; failing reads of collaborator or
// song state degrade to empty and are reported through logs.
func OpenSession(ctx context.Context, svc Service, target models.TargetType, targetID int64, currentUsername string) (*Session, error) {
	user, err := svc.ResolveUsername(ctx, currentUsername)
	if err != nil {
		return nil, fmt.Errorf("cannot open session: %w", err)
	}

	s := &Session{
		ID:          uuid.New(),
		Target:      target,
		TargetID:    targetID,
		CurrentUser: *user,
		svc:         svc,
		step:        StepSelectUser,
	}
	s.resetSelection()

	switch target {
	case models.TargetPack:
		songs, err := svc.ListPackSongs(ctx, targetID)
		if err != nil {
			log.Printf("warning: failed to fetch songs for pack %d: %v", targetID, err)
		}
		s.songs = songs
	case models.TargetSong:
		song, err := svc.GetSong(ctx, targetID)
		if err != nil {
			return nil, fmt.Errorf("cannot open session: %w", err)
		}
		s.song = song
	default:
		return nil, fmt.Errorf("unknown target type %q", target)
	}

	if err := s.Refresh(ctx); err != nil {
		log.Printf("warning: failed to load collaborators for %s %d: %v", target, targetID, err)
	}
	return s, nil
}

// AttachJournal records every future commit of this session in the journal.
func (s *Session) AttachJournal(j *Journal) {
	s.journal = j
}

func (s *Session) resetSelection() {
	s.pendingUser = nil
	s.pendingKind = ""
	s.selectedSongs = make(map[int64]bool)
	s.selectedFields = make(map[string]bool)
}

// ResetWizard abandons the in-flight selection and returns the wizard to user
// selection. Staged changes are kept; this is a step-back, not a cancel.
func (s *Session) ResetWizard() {
	if s.editing != nil {
		return
	}
	s.resetSelection()
	s.step = StepSelectUser
}

// Step returns the current wizard step.
func (s *Session) Step() Step {
	return s.step
}

// Editing returns the active editing-existing state, nil when the wizard owns
// the session.
func (s *Session) Editing() *ExistingEdit {
	return s.editing
}

// SelectUser resolves a username and advances the wizard. At pack scope the
// next step chooses the permission type; at song scope the permission type is
// always "specific" and the single target song is pre-selected, so the wizard
// jumps straight to field selection.
func (s *Session) SelectUser(ctx context.Context, username string) error {
	if s.editing != nil {
		return fmt.Errorf("finish or cancel the collaborator edit first")
	}
	if s.step != StepSelectUser {
		return fmt.Errorf("a user is already selected")
	}

	user, err := s.svc.ResolveUsername(ctx, username)
	if err != nil {
		return err
	}

	s.pendingUser = user
	switch s.Target {
	case models.TargetPack:
		s.step = StepChoosePermissionType
	case models.TargetSong:
		s.pendingKind = models.KindSpecific
		s.selectedSongs[s.TargetID] = true
		s.step = StepSelectSongsOrFields
	}
	return nil
}

// ChoosePermissionType picks the addition kind. Full access and pack sharing
// need no further narrowing, so they emit immediately and the wizard returns
// to user selection. "Specific" moves on to song selection. At song scope the
// only choice left is upgrading to full song access. Invalid choices for the
// current step or scope are silently refused.
func (s *Session) ChoosePermissionType(kind models.AdditionKind) {
	if s.editing != nil || s.pendingUser == nil {
		return
	}

	switch s.Target {
	case models.TargetPack:
		if s.step != StepChoosePermissionType {
			return
		}
		switch kind {
		case models.KindFull, models.KindPackShare:
			s.emitAddition(kind)
		case models.KindSpecific:
			s.pendingKind = kind
			s.step = StepSelectSongsOrFields
		}
	case models.TargetSong:
		if s.step != StepSelectSongsOrFields {
			return
		}
		if kind == models.KindSongEdit {
			s.emitAddition(kind)
		}
	}
}

// ToggleSongSelection flips one song in the specific-access selection.
// Only meaningful at pack scope during the third step.
func (s *Session) ToggleSongSelection(songID int64) {
	if s.editing != nil || s.step != StepSelectSongsOrFields || s.Target != models.TargetPack {
		return
	}
	if s.selectedSongs[songID] {
		delete(s.selectedSongs, songID)
	} else {
		s.selectedSongs[songID] = true
	}
}

// ToggleFieldSelection flips one checklist field in the selection.
// Only meaningful at song scope during the third step.
func (s *Session) ToggleFieldSelection(field string) {
	if s.editing != nil || s.step != StepSelectSongsOrFields || s.Target != models.TargetSong {
		return
	}
	if s.selectedFields[field] {
		delete(s.selectedFields, field)
	} else {
		s.selectedFields[field] = true
	}
}

// AddPendingChange emits the staged "specific" addition built up in step
// three and returns the wizard to user selection. It refuses, returning
// false, until at least one song (pack scope) or one field (song scope) is
// selected. No error is involved; an incomplete selection is simply not a
// transition.
func (s *Session) AddPendingChange() bool {
	if s.editing != nil || s.step != StepSelectSongsOrFields || s.pendingUser == nil {
		return false
	}

	switch s.Target {
	case models.TargetPack:
		if len(s.selectedSongs) == 0 {
			return false
		}
	case models.TargetSong:
		if len(s.selectedFields) == 0 {
			return false
		}
	}

	s.emitAddition(models.KindSpecific)
	return true
}

// emitAddition appends a staged addition for the pending user and resets the
// wizard to the first step.
func (s *Session) emitAddition(kind models.AdditionKind) {
	add := models.Addition{
		Kind:     kind,
		UserID:   s.pendingUser.ID,
		Username: s.pendingUser.Username,
	}

	if kind == models.KindSpecific {
		switch s.Target {
		case models.TargetPack:
			add.SongIDs = sortedSongIDs(s.selectedSongs)
		case models.TargetSong:
			add.Fields = sortedFields(s.selectedFields)
		}
	}

	s.additions = append(s.additions, add)
	s.resetSelection()
	s.step = StepSelectUser
}

func sortedSongIDs(set map[int64]bool) []int64 {
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func sortedFields(set map[string]bool) []string {
	fields := make([]string, 0, len(set))
	for f := range set {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// RemovePendingChange drops a staged addition by queue position.
func (s *Session) RemovePendingChange(index int) {
	if index < 0 || index >= len(s.additions) {
		return
	}
	s.additions = append(s.additions[:index], s.additions[index+1:]...)
}

// RequestRemoval stages the removal of an existing collaborator. It may be
// invoked at any point while the wizard is idle between steps and is undoable
// until commit. Duplicate requests collapse into one.
func (s *Session) RequestRemoval(userID int64) {
	if s.editing != nil {
		return
	}
	for _, r := range s.removals {
		if r.UserID == userID {
			return
		}
	}
	s.removals = append(s.removals, models.Removal{
		UserID:   userID,
		Username: s.usernameFor(userID),
		Scope:    s.Target,
	})
}

// UndoRemoval withdraws a staged removal before commit.
func (s *Session) UndoRemoval(userID int64) {
	for i, r := range s.removals {
		if r.UserID == userID {
			s.removals = append(s.removals[:i], s.removals[i+1:]...)
			return
		}
	}
}

// usernameFor maps a user ID to its username via the fetched grant records.
// Assignment rows are keyed by username on the wire, so removals carry it.
func (s *Session) usernameFor(userID int64) string {
	for _, g := range s.grants {
		if g.UserID == userID {
			return g.Username
		}
	}
	return ""
}

// BeginEditExisting enters editing-existing mode for one current collaborator
// of a song-scoped session, loading their field selection from the store.
func (s *Session) BeginEditExisting(ctx context.Context, userID int64) error {
	if s.Target != models.TargetSong {
		return fmt.Errorf("collaborator editing is song-scoped only")
	}
	if s.editing != nil {
		return fmt.Errorf("another collaborator edit is in progress")
	}

	username := s.usernameFor(userID)
	if username == "" {
		return fmt.Errorf("user %d is not a collaborator on song %d", userID, s.TargetID)
	}

	selected := make(map[string]bool)
	for _, a := range s.svc.GetAssignments(ctx, s.TargetID) {
		if a.Collaborator == username {
			selected[a.Field] = true
		}
	}

	s.editing = &ExistingEdit{UserID: userID, Username: username, Selected: selected}
	return nil
}

// ToggleExistingField flips a field in the editing-existing selection.
func (s *Session) ToggleExistingField(field string) {
	if s.editing == nil {
		return
	}
	if s.editing.Selected[field] {
		delete(s.editing.Selected, field)
	} else {
		s.editing.Selected[field] = true
	}
}

// SaveEdit writes the editing-existing selection immediately, bypassing the
// pending queue: everyone else's assignment rows are kept, this collaborator's
// are replaced wholesale. Control returns to the wizard's current step.
func (s *Session) SaveEdit(ctx context.Context) error {
	if s.editing == nil {
		return fmt.Errorf("no collaborator edit in progress")
	}

	current := s.svc.GetAssignments(ctx, s.TargetID)
	merged := make([]models.FieldAssignment, 0, len(current)+len(s.editing.Selected))
	for _, a := range current {
		if a.Collaborator != s.editing.Username {
			merged = append(merged, a)
		}
	}
	for _, field := range sortedFields(s.editing.Selected) {
		merged = append(merged, models.FieldAssignment{
			SongID:       s.TargetID,
			Collaborator: s.editing.Username,
			Field:        field,
		})
	}

	if err := s.svc.ReplaceAssignments(ctx, s.TargetID, merged); err != nil {
		return err
	}

	s.editing = nil
	if err := s.Refresh(ctx); err != nil {
		log.Printf("warning: failed to refresh after edit: %v", err)
	}
	return nil
}

// CancelEdit leaves editing-existing mode without writing anything.
func (s *Session) CancelEdit() {
	s.editing = nil
}

// HasPendingChanges reports whether any staged work would be lost on cancel.
// Callers must confirm with the user before discarding.
func (s *Session) HasPendingChanges() bool {
	return len(s.additions) > 0 || len(s.removals) > 0
}

// Cancel discards all staged changes and resets the wizard.
func (s *Session) Cancel() {
	s.additions = nil
	s.removals = nil
	s.editing = nil
	s.resetSelection()
	s.step = StepSelectUser
}

// CommitAll flushes every staged change through the commit coordinator and
// re-fetches store state so the session reflects whatever subset actually
// landed.
func (s *Session) CommitAll(ctx context.Context) (models.CommitResult, error) {
	coord := NewCoordinator(s.svc, s.journal)
	return coord.CommitAll(ctx, s)
}

// Refresh re-fetches grants (and, at song scope, assignments) and re-derives
// the per-user summaries. A failed read leaves the previous view in place and
// returns the error for logging.
func (s *Session) Refresh(ctx context.Context) error {
	grants, err := s.svc.ListCollaborators(ctx, s.Target, s.TargetID)
	if err != nil {
		return err
	}
	s.grants = grants

	switch s.Target {
	case models.TargetPack:
		s.assignments = nil
		s.summaries = DerivePackView(s.grants, s.songs)
	case models.TargetSong:
		s.assignments = s.svc.GetAssignments(ctx, s.TargetID)
		s.summaries = DeriveSongView(s.grants, s.assignments)
	}
	return nil
}

// Accessors used by the TUI, CLI, and MCP surfaces.

func (s *Session) PendingAdditions() []models.Addition { return s.additions }
func (s *Session) PendingRemovals() []models.Removal   { return s.removals }
func (s *Session) PendingUser() *models.User           { return s.pendingUser }
func (s *Session) Songs() []models.Song                { return s.songs }
func (s *Session) Song() *models.Song                  { return s.song }
func (s *Session) Grants() []models.GrantRecord        { return s.grants }
func (s *Session) Assignments() []models.FieldAssignment {
	return s.assignments
}
func (s *Session) Summaries() []models.UserSummary { return s.summaries }

// SongSelected reports whether a song is in the current specific selection.
func (s *Session) SongSelected(songID int64) bool {
	return s.selectedSongs[songID]
}

// FieldSelected reports whether a field is in the current specific selection.
func (s *Session) FieldSelected(field string) bool {
	return s.selectedFields[field]
}

// IsRemovalPending reports whether a collaborator is staged for removal.
func (s *Session) IsRemovalPending(userID int64) bool {
	for _, r := range s.removals {
		if r.UserID == userID {
			return true
		}
	}
	return false
}
