// ABOUTME: Assignment store facade over the pack service field-assignment endpoints
// ABOUTME: Reads fail soft to an empty list; writes use full-replace semantics
package api

import (
	"context"
	"fmt"
	"log"

	"github.com/harperreed/packshare/models"
)

// assignmentRow is the wire shape of one field assignment. The service keys
// collaborators by username here, unlike grants.
type assignmentRow struct {
	Collaborator string `json:"collaborator"`
	Field        string `json:"field"`
}

// GetAssignments fetches the field assignments for a song. Reads fail soft:
// on any error the result is an empty list plus a logged warning, so one
// song's missing assignment history never blocks a larger operation.
func (c *Client) GetAssignments(ctx context.Context, songID int64) []models.FieldAssignment {
	var resp struct {
		Assignments []assignmentRow `json:"assignments"`
	}

	if err := c.get(ctx, fmt.Sprintf("/songs/%d/assignments", songID), &resp); err != nil {
		log.Printf("warning: failed to fetch assignments for song %d: %v", songID, err)
		return nil
	}

	out := make([]models.FieldAssignment, 0, len(resp.Assignments))
	for _, row := range resp.Assignments {
		out = append(out, models.FieldAssignment{
			SongID:       songID,
			Collaborator: row.Collaborator,
			Field:        row.Field,
		})
	}
	return out
}

// ReplaceAssignments overwrites the entire assignment list for a song.
// There is no patch primitive; editing one collaborator's fields means
// "keep everyone else's rows, append the new ones, replace all".
func (c *Client) ReplaceAssignments(ctx context.Context, songID int64, assignments []models.FieldAssignment) error {
	rows := make([]assignmentRow, 0, len(assignments))
	for _, a := range assignments {
		rows = append(rows, assignmentRow{Collaborator: a.Collaborator, Field: a.Field})
	}

	body := struct {
		Assignments []assignmentRow `json:"assignments"`
	}{Assignments: rows}

	if err := c.put(ctx, fmt.Sprintf("/songs/%d/assignments", songID), body); err != nil {
		return fmt.Errorf("failed to replace assignments for song %d: %w", songID, err)
	}
	return nil
}
