// ABOUTME: MCP resource handlers exposing collaboration state
// ABOUTME: Read-only access to collaborators, assignments, and the journal via URI
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/packshare/models"
	"github.com/harperreed/packshare/share"
)

type ResourceHandlers struct {
	svc     share.Service
	journal *share.Journal
}

// NewResourceHandlers creates the resource handler set. journal may be nil,
// in which case the journal resource reports as empty.
func NewResourceHandlers(svc share.Service, journal *share.Journal) *ResourceHandlers {
	return &ResourceHandlers{svc: svc, journal: journal}
}

// ReadResource handles resource read requests
func (h *ResourceHandlers) ReadResource(ctx context.Context, request *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := request.Params.URI
	if !strings.HasPrefix(uri, "packshare://") {
		return nil, fmt.Errorf("invalid URI scheme: expected packshare://")
	}

	path := strings.TrimPrefix(uri, "packshare://")
	parts := strings.Split(path, "/")

	switch {
	case len(parts) == 3 && parts[0] == "packs" && parts[2] == "collaborators":
		return h.readCollaborators(ctx, uri, models.TargetPack, parts[1])
	case len(parts) == 3 && parts[0] == "songs" && parts[2] == "collaborators":
		return h.readCollaborators(ctx, uri, models.TargetSong, parts[1])
	case len(parts) == 3 && parts[0] == "songs" && parts[2] == "assignments":
		return h.readAssignments(ctx, uri, parts[1])
	case len(parts) == 2 && parts[0] == "journal" && parts[1] == "recent":
		return h.readJournal(uri)
	default:
		return nil, fmt.Errorf("unknown resource: %s", path)
	}
}

func jsonContents(uri string, v interface{}) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource: %w", err)
	}

	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
		{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}}, nil
}

func (h *ResourceHandlers) readCollaborators(ctx context.Context, uri string, target models.TargetType, idStr string) (*mcp.ReadResourceResult, error) {
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s ID: %w", target, err)
	}

	grants, err := h.svc.ListCollaborators(ctx, target, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch collaborators: %w", err)
	}

	var summaries []models.UserSummary
	switch target {
	case models.TargetPack:
		songs, err := h.svc.ListPackSongs(ctx, id)
		if err != nil {
			songs = nil
		}
		summaries = share.DerivePackView(grants, songs)
	case models.TargetSong:
		summaries = share.DeriveSongView(grants, h.svc.GetAssignments(ctx, id))
	}

	return jsonContents(uri, summaries)
}

func (h *ResourceHandlers) readAssignments(ctx context.Context, uri, idStr string) (*mcp.ReadResourceResult, error) {
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid song ID: %w", err)
	}

	song, err := h.svc.GetSong(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch song: %w", err)
	}

	ownership := share.DeriveFieldOwnership(song, h.svc.GetAssignments(ctx, id), ownerMarker)
	return jsonContents(uri, ownership)
}

func (h *ResourceHandlers) readJournal(uri string) (*mcp.ReadResourceResult, error) {
	if h.journal == nil {
		return jsonContents(uri, []share.CommitRecord{})
	}

	commits, err := h.journal.RecentCommits(20)
	if err != nil {
		return nil, fmt.Errorf("failed to read journal: %w", err)
	}
	return jsonContents(uri, commits)
}
