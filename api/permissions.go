// ABOUTME: Permission store facade over the pack service collaboration endpoints
// ABOUTME: Lists, grants, and revokes pack- and song-scoped collaboration rights
package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/harperreed/packshare/models"
)

// ListCollaborators fetches the raw grant records for a pack or song.
// Failure means "no collaborators known", not "no collaborators exist";
// callers decide how to degrade.
func (c *Client) ListCollaborators(ctx context.Context, target models.TargetType, id int64) ([]models.GrantRecord, error) {
	var resp struct {
		Collaborators []models.GrantRecord `json:"collaborators"`
	}

	var path string
	switch target {
	case models.TargetPack:
		path = fmt.Sprintf("/packs/%d/collaborators", id)
	case models.TargetSong:
		path = fmt.Sprintf("/songs/%d/collaborators", id)
	default:
		return nil, fmt.Errorf("unknown target type %q", target)
	}

	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return resp.Collaborators, nil
}

// GrantPack grants pack-level permissions to a user. The service stores edit
// as implying view; both levels may still be sent together for a full grant.
func (c *Client) GrantPack(ctx context.Context, packID, userID int64, levels []models.PermissionLevel) error {
	body := struct {
		UserID      int64                    `json:"user_id"`
		Permissions []models.PermissionLevel `json:"permissions"`
	}{UserID: userID, Permissions: levels}

	if err := c.post(ctx, fmt.Sprintf("/packs/%d/collaborators", packID), body, nil); err != nil {
		return fmt.Errorf("failed to grant pack %d to user %d: %w", packID, userID, err)
	}
	return nil
}

// GrantSong grants edit rights on a single song. Song grants are binary,
// there is no view-only level at song granularity.
func (c *Client) GrantSong(ctx context.Context, songID, userID int64) error {
	body := struct {
		UserID int64 `json:"user_id"`
	}{UserID: userID}

	if err := c.post(ctx, fmt.Sprintf("/songs/%d/collaborators", songID), body, nil); err != nil {
		return fmt.Errorf("failed to grant song %d to user %d: %w", songID, userID, err)
	}
	return nil
}

// RevokePack removes a user's pack-level grant. Revoking a grant that does
// not exist is not an error.
func (c *Client) RevokePack(ctx context.Context, packID, userID int64) error {
	err := c.delete(ctx, fmt.Sprintf("/packs/%d/collaborators/%d", packID, userID))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("failed to revoke pack %d from user %d: %w", packID, userID, err)
	}
	return nil
}

// RevokeSong removes a user's song grant. Idempotent like RevokePack.
func (c *Client) RevokeSong(ctx context.Context, songID, userID int64) error {
	err := c.delete(ctx, fmt.Sprintf("/songs/%d/collaborators/%d", songID, userID))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("failed to revoke song %d from user %d: %w", songID, userID, err)
	}
	return nil
}
