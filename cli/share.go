// ABOUTME: Sharing CLI commands
// ABOUTME: One-shot grant, revoke, listing, and assignment commands
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/harperreed/packshare/models"
	"github.com/harperreed/packshare/share"
)

func parseTargetFlags(packID, songID int64) (models.TargetType, int64, error) {
	switch {
	case packID != 0 && songID != 0:
		return "", 0, fmt.Errorf("--pack and --song are mutually exclusive")
	case packID != 0:
		return models.TargetPack, packID, nil
	case songID != 0:
		return models.TargetSong, songID, nil
	default:
		return "", 0, fmt.Errorf("either --pack or --song is required")
	}
}

func parseIDList(raw string) ([]int64, error) {
	if raw == "" {
		return nil, nil
	}
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid song ID %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parseFieldList(raw string) []string {
	if raw == "" {
		return nil
	}
	var fields []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			fields = append(fields, trimmed)
		}
	}
	return fields
}

func printCommitResult(result models.CommitResult) {
	for _, op := range result.Outcomes {
		if op.Succeeded() {
			fmt.Printf("✓ %s", op.Kind)
		} else {
			fmt.Printf("✗ %s: %s", op.Kind, op.Error)
		}
		if op.SongID != 0 {
			fmt.Printf(" (song %d)", op.SongID)
		}
		fmt.Println()
	}

	failed := result.Failed()
	if len(failed) > 0 {
		fmt.Printf("\n%d of %d operation(s) failed\n", len(failed), len(result.Outcomes))
	} else {
		fmt.Printf("\nAll %d operation(s) applied\n", len(result.Outcomes))
	}
}

// ShareListCommand prints the collaborator summaries for a pack or song.
func ShareListCommand(svc share.Service, currentUser string, args []string) error {
	fs := flag.NewFlagSet("share list", flag.ExitOnError)
	packID := fs.Int64("pack", 0, "Pack ID")
	songID := fs.Int64("song", 0, "Song ID")
	_ = fs.Parse(args)

	target, targetID, err := parseTargetFlags(*packID, *songID)
	if err != nil {
		return err
	}

	ctx := context.Background()
	session, err := share.OpenSession(ctx, svc, target, targetID, currentUser)
	if err != nil {
		return err
	}

	summaries := session.Summaries()
	if len(summaries) == 0 {
		fmt.Println("No collaborators")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "USER\tID\tACCESS")
	_, _ = fmt.Fprintln(w, "----\t--\t------")
	for _, summary := range summaries {
		_, _ = fmt.Fprintf(w, "%s\t%d\t%s\n", summary.Username, summary.UserID, summary.Summary)
	}
	_ = w.Flush()

	fmt.Printf("\nTotal: %d collaborator(s)\n", len(summaries))
	return nil
}

// ShareGrantCommand stages a single addition and commits it.
func ShareGrantCommand(svc share.Service, journal *share.Journal, currentUser string, args []string) error {
	fs := flag.NewFlagSet("share grant", flag.ExitOnError)
	packID := fs.Int64("pack", 0, "Pack ID")
	songID := fs.Int64("song", 0, "Song ID")
	username := fs.String("user", "", "Collaborator username (required)")
	kind := fs.String("kind", "", "Access kind: full, specific, song_edit, or pack_share")
	songs := fs.String("songs", "", "Comma-separated song IDs (specific pack access)")
	fields := fs.String("fields", "", "Comma-separated fields (specific song access)")
	_ = fs.Parse(args)

	target, targetID, err := parseTargetFlags(*packID, *songID)
	if err != nil {
		return err
	}
	if *username == "" {
		return fmt.Errorf("--user is required")
	}
	if *kind == "" {
		return fmt.Errorf("--kind is required")
	}

	songIDs, err := parseIDList(*songs)
	if err != nil {
		return err
	}

	ctx := context.Background()
	session, err := share.OpenSession(ctx, svc, target, targetID, currentUser)
	if err != nil {
		return err
	}
	if journal != nil {
		session.AttachJournal(journal)
	}

	if err := session.SelectUser(ctx, *username); err != nil {
		return err
	}

	switch models.AdditionKind(*kind) {
	case models.KindFull, models.KindPackShare, models.KindSongEdit:
		session.ChoosePermissionType(models.AdditionKind(*kind))
	case models.KindSpecific:
		if target == models.TargetPack {
			session.ChoosePermissionType(models.KindSpecific)
			for _, id := range songIDs {
				session.ToggleSongSelection(id)
			}
		} else {
			for _, field := range parseFieldList(*fields) {
				session.ToggleFieldSelection(field)
			}
		}
		if !session.AddPendingChange() {
			return fmt.Errorf("specific access needs --songs or --fields")
		}
	default:
		return fmt.Errorf("unknown access kind %q", *kind)
	}

	if !session.HasPendingChanges() {
		return fmt.Errorf("kind %q is not valid at %s scope", *kind, target)
	}

	result, err := session.CommitAll(ctx)
	if err != nil {
		return err
	}

	printCommitResult(result)
	return nil
}

// ShareRevokeCommand removes a collaborator's access and commits immediately.
func ShareRevokeCommand(svc share.Service, journal *share.Journal, currentUser string, args []string) error {
	fs := flag.NewFlagSet("share revoke", flag.ExitOnError)
	packID := fs.Int64("pack", 0, "Pack ID")
	songID := fs.Int64("song", 0, "Song ID")
	username := fs.String("user", "", "Collaborator username (required)")
	_ = fs.Parse(args)

	target, targetID, err := parseTargetFlags(*packID, *songID)
	if err != nil {
		return err
	}
	if *username == "" {
		return fmt.Errorf("--user is required")
	}

	ctx := context.Background()
	user, err := svc.ResolveUsername(ctx, *username)
	if err != nil {
		return err
	}

	session, err := share.OpenSession(ctx, svc, target, targetID, currentUser)
	if err != nil {
		return err
	}
	if journal != nil {
		session.AttachJournal(journal)
	}

	session.RequestRemoval(user.ID)
	result, err := session.CommitAll(ctx)
	if err != nil {
		return err
	}

	printCommitResult(result)
	return nil
}

// ShareAssignmentsCommand prints who holds each checklist field of a song.
func ShareAssignmentsCommand(svc share.Service, args []string) error {
	fs := flag.NewFlagSet("share assignments", flag.ExitOnError)
	songID := fs.Int64("song", 0, "Song ID (required)")
	_ = fs.Parse(args)

	if *songID == 0 {
		return fmt.Errorf("--song is required")
	}

	ctx := context.Background()
	song, err := svc.GetSong(ctx, *songID)
	if err != nil {
		return err
	}

	ownership := share.DeriveFieldOwnership(song, svc.GetAssignments(ctx, *songID), "(owner)")

	fields := make([]string, 0, len(ownership))
	for field := range ownership {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "FIELD\tHELD BY")
	_, _ = fmt.Fprintln(w, "-----\t-------")
	for _, field := range fields {
		_, _ = fmt.Fprintf(w, "%s\t%s\n", field, ownership[field])
	}
	_ = w.Flush()
	return nil
}

// ShareAssignCommand rewrites one collaborator's field list on a song.
func ShareAssignCommand(svc share.Service, args []string) error {
	fs := flag.NewFlagSet("share assign", flag.ExitOnError)
	songID := fs.Int64("song", 0, "Song ID (required)")
	username := fs.String("user", "", "Collaborator username (required)")
	fields := fs.String("fields", "", "Comma-separated fields; empty clears their rows")
	_ = fs.Parse(args)

	if *songID == 0 {
		return fmt.Errorf("--song is required")
	}
	if *username == "" {
		return fmt.Errorf("--user is required")
	}

	ctx := context.Background()
	current := svc.GetAssignments(ctx, *songID)
	merged := make([]models.FieldAssignment, 0, len(current))
	for _, a := range current {
		if a.Collaborator != *username {
			merged = append(merged, a)
		}
	}
	for _, field := range parseFieldList(*fields) {
		merged = append(merged, models.FieldAssignment{
			SongID:       *songID,
			Collaborator: *username,
			Field:        field,
		})
	}

	if err := svc.ReplaceAssignments(ctx, *songID, merged); err != nil {
		return err
	}

	fmt.Printf("✓ %s now holds %d field(s) on song %d\n", *username, len(parseFieldList(*fields)), *songID)
	return nil
}

// ShareHistoryCommand prints recent commits from the local journal.
func ShareHistoryCommand(journal *share.Journal, args []string) error {
	fs := flag.NewFlagSet("share history", flag.ExitOnError)
	limit := fs.Int("limit", 10, "Maximum commits to show")
	_ = fs.Parse(args)

	commits, err := journal.RecentCommits(*limit)
	if err != nil {
		return fmt.Errorf("failed to read journal: %w", err)
	}

	if len(commits) == 0 {
		fmt.Println("No commits recorded")
		return nil
	}

	for _, commit := range commits {
		fmt.Printf("%s  %s %d  (%d op(s))\n", commit.CommittedAt.Format("2006-01-02 15:04:05"), commit.Target, commit.TargetID, len(commit.Operations))
		for _, op := range commit.Operations {
			if op.Succeeded() {
				fmt.Printf("  ✓ %s", op.Kind)
			} else {
				fmt.Printf("  ✗ %s: %s", op.Kind, op.Error)
			}
			if op.SongID != 0 {
				fmt.Printf(" (song %d)", op.SongID)
			}
			fmt.Println()
		}
	}
	return nil
}
