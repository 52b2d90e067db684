// ABOUTME: Collaboration MCP tool handlers
// ABOUTME: Implements list_collaborators, grant/revoke, and assignment tools
package handlers

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/packshare/models"
	"github.com/harperreed/packshare/share"
)

// CollabHandlers exposes collaboration operations as MCP tools. Staged-wizard
// semantics collapse to one-shot here: a grant tool opens a session, stages a
// single addition, and commits it.
type CollabHandlers struct {
	svc         share.Service
	currentUser string
	journal     *share.Journal
}

// NewCollabHandlers creates the handler set. journal may be nil.
func NewCollabHandlers(svc share.Service, currentUser string, journal *share.Journal) *CollabHandlers {
	return &CollabHandlers{svc: svc, currentUser: currentUser, journal: journal}
}

func parseTarget(targetType string) (models.TargetType, error) {
	switch targetType {
	case "pack":
		return models.TargetPack, nil
	case "song":
		return models.TargetSong, nil
	default:
		return "", fmt.Errorf("target_type must be \"pack\" or \"song\", got %q", targetType)
	}
}

type ListCollaboratorsInput struct {
	TargetType string `json:"target_type" jsonschema:"Either pack or song"`
	TargetID   int64  `json:"target_id" jsonschema:"Pack or song ID"`
}

type SummaryOutput struct {
	UserID   int64    `json:"user_id"`
	Username string   `json:"username"`
	Summary  string   `json:"summary"`
	Fields   []string `json:"fields,omitempty"`
}

type ListCollaboratorsOutput struct {
	Collaborators []SummaryOutput `json:"collaborators"`
}

func (h *CollabHandlers) ListCollaborators(ctx context.Context, request *mcp.CallToolRequest, input ListCollaboratorsInput) (*mcp.CallToolResult, ListCollaboratorsOutput, error) {
	target, err := parseTarget(input.TargetType)
	if err != nil {
		return nil, ListCollaboratorsOutput{}, err
	}

	grants, err := h.svc.ListCollaborators(ctx, target, input.TargetID)
	if err != nil {
		return nil, ListCollaboratorsOutput{}, fmt.Errorf("failed to list collaborators: %w", err)
	}

	var summaries []models.UserSummary
	switch target {
	case models.TargetPack:
		songs, err := h.svc.ListPackSongs(ctx, input.TargetID)
		if err != nil {
			// Titles degrade to numeric IDs; the listing itself still works.
			songs = nil
		}
		summaries = share.DerivePackView(grants, songs)
	case models.TargetSong:
		assignments := h.svc.GetAssignments(ctx, input.TargetID)
		summaries = share.DeriveSongView(grants, assignments)
	}

	out := ListCollaboratorsOutput{}
	for _, s := range summaries {
		out.Collaborators = append(out.Collaborators, SummaryOutput{
			UserID:   s.UserID,
			Username: s.Username,
			Summary:  s.Summary,
			Fields:   s.Fields,
		})
	}
	return nil, out, nil
}

type GrantCollaboratorInput struct {
	TargetType string   `json:"target_type" jsonschema:"Either pack or song"`
	TargetID   int64    `json:"target_id" jsonschema:"Pack or song ID"`
	Username   string   `json:"username" jsonschema:"Collaborator username (required)"`
	Kind       string   `json:"kind" jsonschema:"Access kind: full, specific, song_edit, or pack_share"`
	SongIDs    []int64  `json:"song_ids,omitempty" jsonschema:"Songs for specific pack access"`
	Fields     []string `json:"fields,omitempty" jsonschema:"Checklist fields for specific song access"`
}

type CommitOutput struct {
	Succeeded int      `json:"succeeded"`
	Failed    int      `json:"failed"`
	Errors    []string `json:"errors,omitempty"`
}

func commitOutput(result models.CommitResult) CommitOutput {
	out := CommitOutput{
		Succeeded: len(result.Succeeded()),
		Failed:    len(result.Failed()),
	}
	for _, op := range result.Failed() {
		out.Errors = append(out.Errors, fmt.Sprintf("%s: %s", op.Kind, op.Error))
	}
	return out
}

func (h *CollabHandlers) GrantCollaborator(ctx context.Context, request *mcp.CallToolRequest, input GrantCollaboratorInput) (*mcp.CallToolResult, CommitOutput, error) {
	target, err := parseTarget(input.TargetType)
	if err != nil {
		return nil, CommitOutput{}, err
	}
	if input.Username == "" {
		return nil, CommitOutput{}, fmt.Errorf("username is required")
	}

	session, err := share.OpenSession(ctx, h.svc, target, input.TargetID, h.currentUser)
	if err != nil {
		return nil, CommitOutput{}, err
	}
	if h.journal != nil {
		session.AttachJournal(h.journal)
	}

	if err := session.SelectUser(ctx, input.Username); err != nil {
		return nil, CommitOutput{}, err
	}

	switch models.AdditionKind(input.Kind) {
	case models.KindFull, models.KindPackShare:
		session.ChoosePermissionType(models.AdditionKind(input.Kind))
	case models.KindSongEdit:
		session.ChoosePermissionType(models.KindSongEdit)
	case models.KindSpecific:
		if target == models.TargetPack {
			session.ChoosePermissionType(models.KindSpecific)
			for _, id := range input.SongIDs {
				session.ToggleSongSelection(id)
			}
		} else {
			for _, field := range input.Fields {
				session.ToggleFieldSelection(field)
			}
		}
		if !session.AddPendingChange() {
			return nil, CommitOutput{}, fmt.Errorf("specific access needs at least one song or field")
		}
	default:
		return nil, CommitOutput{}, fmt.Errorf("unknown access kind %q", input.Kind)
	}

	if !session.HasPendingChanges() {
		return nil, CommitOutput{}, fmt.Errorf("nothing was staged for %q", input.Username)
	}

	result, err := session.CommitAll(ctx)
	if err != nil {
		return nil, CommitOutput{}, err
	}
	return nil, commitOutput(result), nil
}

type RevokeCollaboratorInput struct {
	TargetType string `json:"target_type" jsonschema:"Either pack or song"`
	TargetID   int64  `json:"target_id" jsonschema:"Pack or song ID"`
	UserID     int64  `json:"user_id" jsonschema:"Collaborator user ID (required)"`
}

func (h *CollabHandlers) RevokeCollaborator(ctx context.Context, request *mcp.CallToolRequest, input RevokeCollaboratorInput) (*mcp.CallToolResult, CommitOutput, error) {
	target, err := parseTarget(input.TargetType)
	if err != nil {
		return nil, CommitOutput{}, err
	}
	if input.UserID == 0 {
		return nil, CommitOutput{}, fmt.Errorf("user_id is required")
	}

	session, err := share.OpenSession(ctx, h.svc, target, input.TargetID, h.currentUser)
	if err != nil {
		return nil, CommitOutput{}, err
	}
	if h.journal != nil {
		session.AttachJournal(h.journal)
	}

	session.RequestRemoval(input.UserID)
	result, err := session.CommitAll(ctx)
	if err != nil {
		return nil, CommitOutput{}, err
	}
	return nil, commitOutput(result), nil
}

type ListAssignmentsInput struct {
	SongID int64 `json:"song_id" jsonschema:"Song ID (required)"`
}

type ListAssignmentsOutput struct {
	// Ownership maps every checklist field to the responsible username;
	// fields without an assignment row show the song owner marker.
	Ownership map[string]string `json:"ownership"`
}

// ownerMarker labels fields that fall to the song owner in tool output.
const ownerMarker = "(owner)"

func (h *CollabHandlers) ListAssignments(ctx context.Context, request *mcp.CallToolRequest, input ListAssignmentsInput) (*mcp.CallToolResult, ListAssignmentsOutput, error) {
	song, err := h.svc.GetSong(ctx, input.SongID)
	if err != nil {
		return nil, ListAssignmentsOutput{}, fmt.Errorf("failed to fetch song: %w", err)
	}

	assignments := h.svc.GetAssignments(ctx, input.SongID)
	ownership := share.DeriveFieldOwnership(song, assignments, ownerMarker)
	return nil, ListAssignmentsOutput{Ownership: ownership}, nil
}

type SummaryInput struct {
	TargetType string `json:"target_type" jsonschema:"Either pack or song"`
	TargetID   int64  `json:"target_id" jsonschema:"Pack or song ID"`
	Username   string `json:"username" jsonschema:"Collaborator username (required)"`
}

// DerivePermissionSummary returns the one-line access summary for a single
// collaborator, e.g. "pack view + song edit for: Hammer Down".
func (h *CollabHandlers) DerivePermissionSummary(ctx context.Context, request *mcp.CallToolRequest, input SummaryInput) (*mcp.CallToolResult, SummaryOutput, error) {
	if input.Username == "" {
		return nil, SummaryOutput{}, fmt.Errorf("username is required")
	}

	_, all, err := h.ListCollaborators(ctx, request, ListCollaboratorsInput{
		TargetType: input.TargetType,
		TargetID:   input.TargetID,
	})
	if err != nil {
		return nil, SummaryOutput{}, err
	}

	for _, s := range all.Collaborators {
		if s.Username == input.Username {
			return nil, s, nil
		}
	}
	return nil, SummaryOutput{}, fmt.Errorf("%q has no access to this %s", input.Username, input.TargetType)
}

type SetAssignmentsInput struct {
	SongID   int64    `json:"song_id" jsonschema:"Song ID (required)"`
	Username string   `json:"username" jsonschema:"Collaborator username (required)"`
	Fields   []string `json:"fields" jsonschema:"The collaborator's new field list; empty clears their rows"`
}

type SetAssignmentsOutput struct {
	Assignments int `json:"assignments"`
}

// SetAssignments rewrites one collaborator's field list on a song: everyone
// else's rows are kept, this collaborator's are replaced wholesale.
func (h *CollabHandlers) SetAssignments(ctx context.Context, request *mcp.CallToolRequest, input SetAssignmentsInput) (*mcp.CallToolResult, SetAssignmentsOutput, error) {
	if input.Username == "" {
		return nil, SetAssignmentsOutput{}, fmt.Errorf("username is required")
	}

	current := h.svc.GetAssignments(ctx, input.SongID)
	merged := make([]models.FieldAssignment, 0, len(current)+len(input.Fields))
	for _, a := range current {
		if a.Collaborator != input.Username {
			merged = append(merged, a)
		}
	}
	for _, field := range input.Fields {
		merged = append(merged, models.FieldAssignment{
			SongID:       input.SongID,
			Collaborator: input.Username,
			Field:        field,
		})
	}

	if err := h.svc.ReplaceAssignments(ctx, input.SongID, merged); err != nil {
		return nil, SetAssignmentsOutput{}, err
	}
	return nil, SetAssignmentsOutput{Assignments: len(merged)}, nil
}
