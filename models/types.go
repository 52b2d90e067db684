// ABOUTME: Data models for pack/song collaboration
// ABOUTME: Defines grants, field assignments, pending changes, and commit outcomes
package models

import (
	"time"
)

// User is a service account. Grants reference users by ID; field assignment
// rows on the wire reference them by username, so both travel together.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type Pack struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	OwnerID int64  `json:"owner_id"`
}

type Song struct {
	ID      int64    `json:"id"`
	PackID  int64    `json:"pack_id"`
	Title   string   `json:"title"`
	Artist  string   `json:"artist,omitempty"`
	OwnerID int64    `json:"owner_id"`
	Fields  []string `json:"fields,omitempty"` // authoring checklist vocabulary, service-defined
}

// TargetType scopes a collaboration session to a pack or a single song.
type TargetType string

const (
	TargetPack TargetType = "pack"
	TargetSong TargetType = "song"
)

// CollabType is the raw grant type as reported by the service.
type CollabType string

const (
	CollabPackView CollabType = "pack_view"
	CollabPackEdit CollabType = "pack_edit"
	CollabSongEdit CollabType = "song_edit"
)

// GrantRecord is one raw collaboration row fetched from the service.
// SongID is set only for song_edit rows in a pack-scoped listing.
type GrantRecord struct {
	UserID   int64      `json:"user_id"`
	Username string     `json:"username"`
	Type     CollabType `json:"collaboration_type"`
	SongID   int64      `json:"song_id,omitempty"`
}

// PermissionLevel is a pack grant level. Edit strictly implies view.
type PermissionLevel string

const (
	PermissionView PermissionLevel = "view"
	PermissionEdit PermissionLevel = "edit"
)

// FieldAssignment records that a collaborator, not the song owner, is
// responsible for one checklist field. Fields without a row belong to the
// owner implicitly. The wire keys collaborators by username.
type FieldAssignment struct {
	SongID       int64  `json:"song_id"`
	Collaborator string `json:"collaborator"`
	Field        string `json:"field"`
}

// AdditionKind is the closed set of staged-addition shapes.
type AdditionKind string

const (
	// KindFull grants pack edit plus song edit on every song in the pack.
	KindFull AdditionKind = "full"
	// KindSpecific grants pack view plus song edit on chosen songs, or field
	// assignments on a single song.
	KindSpecific AdditionKind = "specific"
	// KindSongEdit grants edit on one song (the "full" choice at song scope).
	KindSongEdit AdditionKind = "song_edit"
	// KindPackShare grants read-only pack view with no song fan-out.
	KindPackShare AdditionKind = "pack_share"
)

// Addition is a staged grant, not yet written to the service.
type Addition struct {
	Kind     AdditionKind `json:"kind"`
	UserID   int64        `json:"user_id"`
	Username string       `json:"username"`
	SongIDs  []int64      `json:"song_ids,omitempty"` // KindSpecific, pack scope
	Fields   []string     `json:"fields,omitempty"`   // KindSpecific, song scope
}

// Removal is a staged revocation of a collaborator.
type Removal struct {
	UserID   int64      `json:"user_id"`
	Username string     `json:"username"`
	Scope    TargetType `json:"scope"`
}

// OpKind identifies one remote call issued during a commit.
type OpKind string

const (
	OpGrantPack          OpKind = "grant_pack"
	OpGrantSong          OpKind = "grant_song"
	OpRevokePack         OpKind = "revoke_pack"
	OpRevokeSong         OpKind = "revoke_song"
	OpReplaceAssignments OpKind = "replace_assignments"
)

// OpOutcome is the recorded result of one remote call in a commit. Error is
// empty on success.
type OpOutcome struct {
	ID     string    `json:"id"` // ULID, assigned at execution time
	Kind   OpKind    `json:"kind"`
	PackID int64     `json:"pack_id,omitempty"`
	SongID int64     `json:"song_id,omitempty"`
	UserID int64     `json:"user_id,omitempty"`
	Error  string    `json:"error,omitempty"`
	At     time.Time `json:"at"`
}

// Succeeded reports whether the operation completed without error.
func (o OpOutcome) Succeeded() bool {
	return o.Error == ""
}

// CommitResult aggregates the per-operation outcomes of one commitAll run.
// A partially failed commit is still a result, not an error; callers inspect
// Failed to find out what did not land.
type CommitResult struct {
	Outcomes []OpOutcome `json:"outcomes"`
}

// Succeeded returns the outcomes that completed cleanly.
func (r CommitResult) Succeeded() []OpOutcome {
	var out []OpOutcome
	for _, o := range r.Outcomes {
		if o.Succeeded() {
			out = append(out, o)
		}
	}
	return out
}

// Failed returns the outcomes that recorded an error.
func (r CommitResult) Failed() []OpOutcome {
	var out []OpOutcome
	for _, o := range r.Outcomes {
		if !o.Succeeded() {
			out = append(out, o)
		}
	}
	return out
}

// Clean reports whether every operation succeeded.
func (r CommitResult) Clean() bool {
	return len(r.Failed()) == 0
}

// UserSummary is the derived "who has what" line for one collaborator.
type UserSummary struct {
	UserID        int64           `json:"user_id"`
	Username      string          `json:"username"`
	PackLevel     PermissionLevel `json:"pack_level,omitempty"`
	EditableSongs []int64         `json:"editable_songs,omitempty"`
	Fields        []string        `json:"fields,omitempty"` // song scope only
	Summary       string          `json:"summary"`
}

// FieldOwnership maps each checklist field of a song to the username
// responsible for it. Unassigned fields map to the song owner's username.
type FieldOwnership map[string]string
