// ABOUTME: In-memory fake of the pack service for session and coordinator tests
// ABOUTME: Records every mutating call so tests can assert ordering and isolation
package share

import (
	"context"
	"fmt"
	"strings"

	"github.com/harperreed/packshare/models"
)

type fakeService struct {
	users     []models.User
	songs     map[int64]models.Song
	packSongs map[int64][]int64

	packGrants  map[int64]map[int64]map[models.PermissionLevel]bool // pack → user → levels
	songGrants  map[int64]map[int64]bool                            // song → user
	assignments map[int64][]models.FieldAssignment

	failGrantSong      map[int64]bool
	failListSongs      bool
	failListCollabs    bool
	failGetAssignments map[int64]bool

	onGrantSong func(songID, userID int64)

	calls     []string
	mutations int
}

func newFakeService() *fakeService {
	return &fakeService{
		songs:              make(map[int64]models.Song),
		packSongs:          make(map[int64][]int64),
		packGrants:         make(map[int64]map[int64]map[models.PermissionLevel]bool),
		songGrants:         make(map[int64]map[int64]bool),
		assignments:        make(map[int64][]models.FieldAssignment),
		failGrantSong:      make(map[int64]bool),
		failGetAssignments: make(map[int64]bool),
	}
}

func (f *fakeService) addUser(id int64, username string) {
	f.users = append(f.users, models.User{ID: id, Username: username})
}

func (f *fakeService) addSong(packID, songID int64, title string, fields ...string) {
	f.songs[songID] = models.Song{ID: songID, PackID: packID, Title: title, Fields: fields}
	if packID != 0 {
		f.packSongs[packID] = append(f.packSongs[packID], songID)
	}
}

func (f *fakeService) logCall(format string, args ...interface{}) {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *fakeService) callsMatching(substr string) []string {
	var out []string
	for _, c := range f.calls {
		if strings.Contains(c, substr) {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeService) hasPackGrant(packID, userID int64, level models.PermissionLevel) bool {
	return f.packGrants[packID][userID][level]
}

func (f *fakeService) hasSongGrant(songID, userID int64) bool {
	return f.songGrants[songID][userID]
}

func (f *fakeService) assignmentsFor(songID int64, username string) []string {
	var fields []string
	for _, a := range f.assignments[songID] {
		if a.Collaborator == username {
			fields = append(fields, a.Field)
		}
	}
	return fields
}

// --- Service implementation ---

func (f *fakeService) ListCollaborators(_ context.Context, target models.TargetType, id int64) ([]models.GrantRecord, error) {
	if f.failListCollabs {
		return nil, fmt.Errorf("list collaborators unavailable")
	}

	var records []models.GrantRecord
	switch target {
	case models.TargetPack:
		for userID, levels := range f.packGrants[id] {
			for level := range levels {
				records = append(records, models.GrantRecord{
					UserID:   userID,
					Username: f.usernameOf(userID),
					Type:     models.CollabType("pack_" + string(level)),
				})
			}
		}
		for _, songID := range f.packSongs[id] {
			for userID := range f.songGrants[songID] {
				records = append(records, models.GrantRecord{
					UserID:   userID,
					Username: f.usernameOf(userID),
					Type:     models.CollabSongEdit,
					SongID:   songID,
				})
			}
		}
	case models.TargetSong:
		for userID := range f.songGrants[id] {
			records = append(records, models.GrantRecord{
				UserID:   userID,
				Username: f.usernameOf(userID),
				Type:     models.CollabSongEdit,
				SongID:   id,
			})
		}
	}
	return records, nil
}

func (f *fakeService) usernameOf(userID int64) string {
	for _, u := range f.users {
		if u.ID == userID {
			return u.Username
		}
	}
	return ""
}

func (f *fakeService) GrantPack(_ context.Context, packID, userID int64, levels []models.PermissionLevel) error {
	f.logCall("grant_pack pack=%d user=%d levels=%v", packID, userID, levels)
	f.mutations++
	if f.packGrants[packID] == nil {
		f.packGrants[packID] = make(map[int64]map[models.PermissionLevel]bool)
	}
	if f.packGrants[packID][userID] == nil {
		f.packGrants[packID][userID] = make(map[models.PermissionLevel]bool)
	}
	for _, level := range levels {
		f.packGrants[packID][userID][level] = true
	}
	return nil
}

func (f *fakeService) GrantSong(_ context.Context, songID, userID int64) error {
	f.logCall("grant_song song=%d user=%d", songID, userID)
	if f.onGrantSong != nil {
		f.onGrantSong(songID, userID)
	}
	if f.failGrantSong[songID] {
		return fmt.Errorf("grant song %d rejected", songID)
	}
	f.mutations++
	if f.songGrants[songID] == nil {
		f.songGrants[songID] = make(map[int64]bool)
	}
	f.songGrants[songID][userID] = true
	return nil
}

func (f *fakeService) RevokePack(_ context.Context, packID, userID int64) error {
	f.logCall("revoke_pack pack=%d user=%d", packID, userID)
	f.mutations++
	delete(f.packGrants[packID], userID)
	return nil
}

func (f *fakeService) RevokeSong(_ context.Context, songID, userID int64) error {
	f.logCall("revoke_song song=%d user=%d", songID, userID)
	f.mutations++
	delete(f.songGrants[songID], userID)
	return nil
}

func (f *fakeService) GetAssignments(_ context.Context, songID int64) []models.FieldAssignment {
	if f.failGetAssignments[songID] {
		return nil
	}
	return append([]models.FieldAssignment(nil), f.assignments[songID]...)
}

func (f *fakeService) ReplaceAssignments(_ context.Context, songID int64, assignments []models.FieldAssignment) error {
	f.logCall("replace_assignments song=%d rows=%d", songID, len(assignments))
	f.mutations++
	f.assignments[songID] = append([]models.FieldAssignment(nil), assignments...)
	return nil
}

func (f *fakeService) GetSong(_ context.Context, songID int64) (*models.Song, error) {
	song, ok := f.songs[songID]
	if !ok {
		return nil, fmt.Errorf("song %d not found", songID)
	}
	return &song, nil
}

func (f *fakeService) ListPackSongs(_ context.Context, packID int64) ([]models.Song, error) {
	if f.failListSongs {
		return nil, fmt.Errorf("song listing unavailable")
	}
	var songs []models.Song
	for _, id := range f.packSongs[packID] {
		songs = append(songs, f.songs[id])
	}
	return songs, nil
}

func (f *fakeService) ResolveUsername(_ context.Context, username string) (*models.User, error) {
	for _, u := range f.users {
		if strings.EqualFold(u.Username, username) {
			user := u
			return &user, nil
		}
	}
	return nil, fmt.Errorf("unknown user %q", username)
}
