// ABOUTME: Pack, song, and user lookup calls against the pack service
// ABOUTME: Resolves usernames to stable user IDs before any grant is issued
package api

import (
	"context"
	"fmt"
	"strings"

	"github.com/harperreed/packshare/models"
)

// GetPack fetches one pack by ID.
func (c *Client) GetPack(ctx context.Context, packID int64) (*models.Pack, error) {
	var pack models.Pack
	if err := c.get(ctx, fmt.Sprintf("/packs/%d", packID), &pack); err != nil {
		return nil, err
	}
	return &pack, nil
}

// GetSong fetches one song by ID, including its checklist field vocabulary.
func (c *Client) GetSong(ctx context.Context, songID int64) (*models.Song, error) {
	var song models.Song
	if err := c.get(ctx, fmt.Sprintf("/songs/%d", songID), &song); err != nil {
		return nil, err
	}
	return &song, nil
}

// ListPackSongs fetches every song in a pack.
func (c *Client) ListPackSongs(ctx context.Context, packID int64) ([]models.Song, error) {
	var resp struct {
		Songs []models.Song `json:"songs"`
	}
	if err := c.get(ctx, fmt.Sprintf("/packs/%d/songs", packID), &resp); err != nil {
		return nil, err
	}
	for i := range resp.Songs {
		if resp.Songs[i].PackID == 0 {
			resp.Songs[i].PackID = packID
		}
	}
	return resp.Songs, nil
}

// ListUsers fetches the service's user directory.
func (c *Client) ListUsers(ctx context.Context) ([]models.User, error) {
	var resp struct {
		Users []models.User `json:"users"`
	}
	if err := c.get(ctx, "/users", &resp); err != nil {
		return nil, err
	}
	return resp.Users, nil
}

// ResolveUsername looks a username up in the user directory. Grants are keyed
// by user ID while the UI collects usernames, so every addition starts here.
// The match is case-insensitive, usernames are unique either way.
func (c *Client) ResolveUsername(ctx context.Context, username string) (*models.User, error) {
	users, err := c.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	for _, u := range users {
		if strings.EqualFold(u.Username, username) {
			user := u
			return &user, nil
		}
	}
	return nil, fmt.Errorf("unknown user %q", username)
}
