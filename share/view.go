// ABOUTME: Permission view derivation from raw grants and field assignments
// ABOUTME: Pure functions producing per-user "who has what" summaries
package share

import (
	"fmt"
	"sort"
	"strings"

	"github.com/harperreed/packshare/models"
)

// DerivePackView groups raw pack-scoped grant records into one summary per
// user. A user holding pack edit reads as "full access". A view-only user is
// checked against song grants under the same pack: with some, the summary
// names the editable songs; with none, it is "pack view only". When edit and
// view rows coexist for the same user (transient staged state), edit wins.
func DerivePackView(grants []models.GrantRecord, songs []models.Song) []models.UserSummary {
	titles := make(map[int64]string, len(songs))
	for _, song := range songs {
		titles[song.ID] = song.Title
	}

	type packAccess struct {
		username string
		hasEdit  bool
		hasView  bool
		songIDs  []int64
	}

	byUser := make(map[int64]*packAccess)
	order := make([]int64, 0)
	for _, g := range grants {
		acc, ok := byUser[g.UserID]
		if !ok {
			acc = &packAccess{username: g.Username}
			byUser[g.UserID] = acc
			order = append(order, g.UserID)
		}
		if acc.username == "" {
			acc.username = g.Username
		}
		switch g.Type {
		case models.CollabPackEdit:
			acc.hasEdit = true
		case models.CollabPackView:
			acc.hasView = true
		case models.CollabSongEdit:
			acc.songIDs = append(acc.songIDs, g.SongID)
		}
	}

	summaries := make([]models.UserSummary, 0, len(byUser))
	for _, userID := range order {
		acc := byUser[userID]
		summary := models.UserSummary{
			UserID:        userID,
			Username:      acc.username,
			EditableSongs: acc.songIDs,
		}

		switch {
		case acc.hasEdit:
			summary.PackLevel = models.PermissionEdit
			summary.Summary = "full access"
		case acc.hasView && len(acc.songIDs) > 0:
			summary.PackLevel = models.PermissionView
			summary.Summary = "pack view + song edit for: " + songTitleList(acc.songIDs, titles)
		case acc.hasView:
			summary.PackLevel = models.PermissionView
			summary.Summary = "pack view only"
		default:
			// Song grants without a pack row; normally a transient state.
			summary.Summary = "song edit for: " + songTitleList(acc.songIDs, titles)
		}
		summaries = append(summaries, summary)
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Username < summaries[j].Username
	})
	return summaries
}

// songTitleList renders song titles in ID order, falling back to the numeric
// ID for songs not in the fetched listing.
func songTitleList(songIDs []int64, titles map[int64]string) string {
	ids := append([]int64(nil), songIDs...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		if title, ok := titles[id]; ok && title != "" {
			parts = append(parts, title)
		} else {
			parts = append(parts, fmt.Sprintf("song %d", id))
		}
	}
	return strings.Join(parts, ", ")
}

// DeriveSongView summarizes song-scoped grants, annotating each collaborator
// with the subset of fields assigned to them by username.
func DeriveSongView(grants []models.GrantRecord, assignments []models.FieldAssignment) []models.UserSummary {
	fieldsByUser := make(map[string][]string)
	for _, a := range assignments {
		fieldsByUser[a.Collaborator] = append(fieldsByUser[a.Collaborator], a.Field)
	}

	seen := make(map[int64]bool)
	summaries := make([]models.UserSummary, 0, len(grants))
	for _, g := range grants {
		if seen[g.UserID] {
			continue
		}
		seen[g.UserID] = true

		fields := append([]string(nil), fieldsByUser[g.Username]...)
		sort.Strings(fields)

		summary := models.UserSummary{
			UserID:   g.UserID,
			Username: g.Username,
			Fields:   fields,
			Summary:  "song edit permission",
		}
		if len(fields) > 0 {
			summary.Summary += ", fields: " + strings.Join(fields, ", ")
		}
		summaries = append(summaries, summary)
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Username < summaries[j].Username
	})
	return summaries
}

// DeriveFieldOwnership maps every checklist field of a song to the username
// responsible for it. Fields without an assignment row belong to the song
// owner even though no explicit row exists for them.
func DeriveFieldOwnership(song *models.Song, assignments []models.FieldAssignment, ownerUsername string) models.FieldOwnership {
	ownership := make(models.FieldOwnership, len(song.Fields))
	for _, field := range song.Fields {
		ownership[field] = ownerUsername
	}
	for _, a := range assignments {
		if a.SongID != song.ID {
			continue
		}
		ownership[a.Field] = a.Collaborator
	}
	return ownership
}
