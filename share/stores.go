// ABOUTME: Store interfaces consumed by the collaboration session and coordinator
// ABOUTME: Implemented by api.Client in production and by fakes in tests
package share

import (
	"context"

	"github.com/harperreed/packshare/models"
)

// PermissionStore reads and writes raw grant records. Every method is one
// independent remote call; there is no batching primitive server-side.
type PermissionStore interface {
	ListCollaborators(ctx context.Context, target models.TargetType, id int64) ([]models.GrantRecord, error)
	GrantPack(ctx context.Context, packID, userID int64, levels []models.PermissionLevel) error
	GrantSong(ctx context.Context, songID, userID int64) error
	RevokePack(ctx context.Context, packID, userID int64) error
	RevokeSong(ctx context.Context, songID, userID int64) error
}

// AssignmentStore reads and rewrites per-song field assignment lists.
// GetAssignments fails soft by contract: an error becomes an empty list.
type AssignmentStore interface {
	GetAssignments(ctx context.Context, songID int64) []models.FieldAssignment
	ReplaceAssignments(ctx context.Context, songID int64, assignments []models.FieldAssignment) error
}

// Directory resolves packs, songs, and usernames.
type Directory interface {
	GetSong(ctx context.Context, songID int64) (*models.Song, error)
	ListPackSongs(ctx context.Context, packID int64) ([]models.Song, error)
	ResolveUsername(ctx context.Context, username string) (*models.User, error)
}

// Service is the full remote surface a collaboration session needs.
type Service interface {
	PermissionStore
	AssignmentStore
	Directory
}
