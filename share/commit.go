// ABOUTME: Commit coordinator translating staged changes into remote calls
// ABOUTME: Applies additions, assignment merges, and removals with per-call isolation
package share

import (
	"context"
	"log"
	"math/rand"
	"sort"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/harperreed/packshare/models"
)

// Coordinator flushes a session's staged changes. Every remote call runs in a
// fixed order, one at a time, and an individual failure is recorded without
// halting the rest; the aggregate outcome list is the commit's result.
type Coordinator struct {
	svc     Service
	journal *Journal
	entropy *ulid.MonotonicEntropy
}

// NewCoordinator creates a coordinator over a service. journal may be nil.
func NewCoordinator(svc Service, journal *Journal) *Coordinator {
	return &Coordinator{
		svc:     svc,
		journal: journal,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}
}

func (c *Coordinator) newOpID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), c.entropy).String()
}

// record logs one attempted remote call into the running result.
func record(result *models.CommitResult, c *Coordinator, kind models.OpKind, packID, songID, userID int64, err error) {
	outcome := models.OpOutcome{
		ID:     c.newOpID(),
		Kind:   kind,
		PackID: packID,
		SongID: songID,
		UserID: userID,
		At:     time.Now().UTC(),
	}
	if err != nil {
		outcome.Error = err.Error()
		log.Printf("commit: %s failed (pack=%d song=%d user=%d): %v", kind, packID, songID, userID, err)
	}
	result.Outcomes = append(result.Outcomes, outcome)
}

// CommitAll executes the session's staged changes in the fixed order
// additions → assignment merges → removals, then re-fetches store state so
// the session reflects whatever subset of operations actually landed.
//
// Cancelling the context stops the coordinator between calls; the outcomes
// recorded so far are returned with the context error, and no state update
// (including the final re-fetch) happens afterward. An in-flight call may
// still complete server-side.
func (c *Coordinator) CommitAll(ctx context.Context, s *Session) (models.CommitResult, error) {
	var result models.CommitResult

	// Field claims accumulated from song-scoped "specific" additions,
	// keyed (song, field) so one field holds at most one collaborator.
	claims := make(map[int64]map[string]string)

	for _, add := range s.PendingAdditions() {
		if ctx.Err() != nil {
			break
		}
		c.applyAddition(ctx, s, add, claims, &result)
	}

	for _, songID := range sortedClaimSongs(claims) {
		if ctx.Err() != nil {
			break
		}
		c.applyAssignmentMerge(ctx, songID, claims[songID], &result)
	}

	for _, rem := range s.PendingRemovals() {
		if ctx.Err() != nil {
			break
		}
		c.applyRemoval(ctx, s, rem, &result)
	}

	if c.journal != nil {
		if err := c.journal.RecordCommit(s.ID, s.Target, s.TargetID, result); err != nil {
			log.Printf("warning: failed to journal commit: %v", err)
		}
	}

	// Teardown mid-commit: report what was recorded, touch nothing else.
	if err := ctx.Err(); err != nil {
		return result, err
	}

	// Staged changes are consumed whether or not every call landed; the
	// re-fetched view is the source of truth from here on.
	s.additions = nil
	s.removals = nil

	if err := s.Refresh(ctx); err != nil {
		log.Printf("warning: failed to refresh after commit: %v", err)
	}
	return result, nil
}

// applyAddition issues the remote calls for one staged addition. The switch
// is exhaustive over the closed addition kinds.
func (c *Coordinator) applyAddition(ctx context.Context, s *Session, add models.Addition, claims map[int64]map[string]string, result *models.CommitResult) {
	packID := s.TargetID
	songID := s.TargetID

	switch add.Kind {
	case models.KindFull:
		err := c.svc.GrantPack(ctx, packID, add.UserID, []models.PermissionLevel{models.PermissionView, models.PermissionEdit})
		record(result, c, models.OpGrantPack, packID, 0, add.UserID, err)

		// Fan out to every song currently in the pack. A per-song failure is
		// recorded and the loop continues; a partially granted "full"
		// addition is an accepted outcome.
		for _, song := range c.packSongs(ctx, s) {
			if ctx.Err() != nil {
				return
			}
			err := c.svc.GrantSong(ctx, song.ID, add.UserID)
			record(result, c, models.OpGrantSong, packID, song.ID, add.UserID, err)
		}

	case models.KindSongEdit:
		err := c.svc.GrantSong(ctx, songID, add.UserID)
		record(result, c, models.OpGrantSong, 0, songID, add.UserID, err)

	case models.KindSpecific:
		switch s.Target {
		case models.TargetPack:
			err := c.svc.GrantPack(ctx, packID, add.UserID, []models.PermissionLevel{models.PermissionView})
			record(result, c, models.OpGrantPack, packID, 0, add.UserID, err)
			for _, id := range add.SongIDs {
				if ctx.Err() != nil {
					return
				}
				err := c.svc.GrantSong(ctx, id, add.UserID)
				record(result, c, models.OpGrantSong, packID, id, add.UserID, err)
			}
		case models.TargetSong:
			err := c.svc.GrantSong(ctx, songID, add.UserID)
			record(result, c, models.OpGrantSong, 0, songID, add.UserID, err)
			if len(add.Fields) > 0 {
				if claims[songID] == nil {
					claims[songID] = make(map[string]string)
				}
				for _, field := range add.Fields {
					claims[songID][field] = add.Username
				}
			}
		}

	case models.KindPackShare:
		err := c.svc.GrantPack(ctx, packID, add.UserID, []models.PermissionLevel{models.PermissionView})
		record(result, c, models.OpGrantPack, packID, 0, add.UserID, err)
	}
}

// applyAssignmentMerge rewrites one song's assignment list with the staged
// field claims folded in. Merging goes through a map keyed by field, so a
// field ends up with at most one collaborator; a staged claim displaces any
// existing row for the same field.
func (c *Coordinator) applyAssignmentMerge(ctx context.Context, songID int64, fieldClaims map[string]string, result *models.CommitResult) {
	byField := make(map[string]string)
	for _, a := range c.svc.GetAssignments(ctx, songID) {
		byField[a.Field] = a.Collaborator
	}
	for field, username := range fieldClaims {
		byField[field] = username
	}

	fields := make([]string, 0, len(byField))
	for field := range byField {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	merged := make([]models.FieldAssignment, 0, len(fields))
	for _, field := range fields {
		merged = append(merged, models.FieldAssignment{
			SongID:       songID,
			Collaborator: byField[field],
			Field:        field,
		})
	}

	err := c.svc.ReplaceAssignments(ctx, songID, merged)
	record(result, c, models.OpReplaceAssignments, 0, songID, 0, err)
}

// applyRemoval revokes one collaborator. Pack-scoped removals also revoke
// every song grant under the pack and strip the user's assignment rows from
// every song, re-reading and rewriting each song's list.
func (c *Coordinator) applyRemoval(ctx context.Context, s *Session, rem models.Removal, result *models.CommitResult) {
	switch rem.Scope {
	case models.TargetSong:
		err := c.svc.RevokeSong(ctx, s.TargetID, rem.UserID)
		record(result, c, models.OpRevokeSong, 0, s.TargetID, rem.UserID, err)

	case models.TargetPack:
		err := c.svc.RevokePack(ctx, s.TargetID, rem.UserID)
		record(result, c, models.OpRevokePack, s.TargetID, 0, rem.UserID, err)

		for _, song := range c.packSongs(ctx, s) {
			if ctx.Err() != nil {
				return
			}
			err := c.svc.RevokeSong(ctx, song.ID, rem.UserID)
			record(result, c, models.OpRevokeSong, s.TargetID, song.ID, rem.UserID, err)

			if rem.Username == "" {
				// Assignment rows are keyed by username; without one there
				// is nothing to match against.
				continue
			}
			current := c.svc.GetAssignments(ctx, song.ID)
			kept := make([]models.FieldAssignment, 0, len(current))
			for _, a := range current {
				if a.Collaborator != rem.Username {
					kept = append(kept, a)
				}
			}
			if len(kept) == len(current) {
				continue
			}
			err = c.svc.ReplaceAssignments(ctx, song.ID, kept)
			record(result, c, models.OpReplaceAssignments, s.TargetID, song.ID, rem.UserID, err)
		}
	}
}

// packSongs returns the songs of a pack-scoped session, re-fetching when the
// session opened without them. A failed fetch degrades to an empty list.
func (c *Coordinator) packSongs(ctx context.Context, s *Session) []models.Song {
	if len(s.songs) > 0 {
		return s.songs
	}
	songs, err := c.svc.ListPackSongs(ctx, s.TargetID)
	if err != nil {
		log.Printf("warning: failed to fetch songs for pack %d: %v", s.TargetID, err)
		return nil
	}
	s.songs = songs
	return songs
}

func sortedClaimSongs(claims map[int64]map[string]string) []int64 {
	ids := make([]int64, 0, len(claims))
	for id := range claims {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
