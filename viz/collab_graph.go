// ABOUTME: Collaboration graph generation using graphviz
// ABOUTME: Renders pack, song, and collaborator relationships as DOT
package viz

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"

	"github.com/harperreed/packshare/models"
	"github.com/harperreed/packshare/share"
)

// GraphGenerator renders collaboration state fetched from the remote service.
type GraphGenerator struct {
	svc share.Service
}

func NewGraphGenerator(svc share.Service) *GraphGenerator {
	return &GraphGenerator{svc: svc}
}

// GeneratePackGraph creates a graph of one pack: the pack node, its songs,
// and every collaborator with their grant kind as the edge label.
func (g *GraphGenerator) GeneratePackGraph(ctx context.Context, packID int64) (string, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create graphviz: %w", err)
	}
	defer func() {
		if err := gv.Close(); err != nil {
			fmt.Printf("Error closing graphviz: %v\n", err)
		}
	}()

	graph, err := gv.Graph()
	if err != nil {
		return "", fmt.Errorf("failed to create graph: %w", err)
	}
	defer func() {
		if err := graph.Close(); err != nil {
			fmt.Printf("Error closing graph: %v\n", err)
		}
	}()

	graph.SetRankDir(cgraph.LRRank)

	packNode, err := graph.CreateNodeByName(fmt.Sprintf("pack_%d", packID))
	if err != nil {
		return "", fmt.Errorf("failed to create pack node: %w", err)
	}
	packNode.SetLabel(fmt.Sprintf("Pack %d", packID))
	packNode.SetShape("box")

	songs, err := g.svc.ListPackSongs(ctx, packID)
	if err != nil {
		return "", fmt.Errorf("failed to fetch songs: %w", err)
	}

	songNodes := make(map[int64]*cgraph.Node)
	for _, song := range songs {
		node, err := graph.CreateNodeByName(fmt.Sprintf("song_%d", song.ID))
		if err != nil {
			continue
		}
		node.SetLabel(song.Title)
		songNodes[song.ID] = node
		_, _ = graph.CreateEdgeByName("", packNode, node)
	}

	grants, err := g.svc.ListCollaborators(ctx, models.TargetPack, packID)
	if err != nil {
		return "", fmt.Errorf("failed to fetch collaborators: %w", err)
	}

	userNodes := make(map[int64]*cgraph.Node)
	for _, grant := range grants {
		node, ok := userNodes[grant.UserID]
		if !ok {
			node, err = graph.CreateNodeByName(fmt.Sprintf("user_%d", grant.UserID))
			if err != nil {
				continue
			}
			label := grant.Username
			if label == "" {
				label = fmt.Sprintf("user %d", grant.UserID)
			}
			node.SetLabel(label)
			node.SetShape("ellipse")
			userNodes[grant.UserID] = node
		}

		switch grant.Type {
		case models.CollabPackView, models.CollabPackEdit:
			edge, err := graph.CreateEdgeByName("", node, packNode)
			if err == nil {
				edge.SetLabel(string(grant.Type))
			}
		case models.CollabSongEdit:
			target, ok := songNodes[grant.SongID]
			if !ok {
				continue
			}
			edge, err := graph.CreateEdgeByName("", node, target)
			if err == nil {
				edge.SetLabel("edit")
			}
		}
	}

	var buf bytes.Buffer
	if err := gv.Render(ctx, graph, graphviz.XDOT, &buf); err != nil {
		return "", fmt.Errorf("failed to render graph: %w", err)
	}
	return buf.String(), nil
}

// GenerateSongGraph creates a graph of one song's checklist fields and who
// holds each one. Unassigned fields point back to the song node itself.
func (g *GraphGenerator) GenerateSongGraph(ctx context.Context, songID int64) (string, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create graphviz: %w", err)
	}
	defer func() {
		if err := gv.Close(); err != nil {
			fmt.Printf("Error closing graphviz: %v\n", err)
		}
	}()

	graph, err := gv.Graph()
	if err != nil {
		return "", fmt.Errorf("failed to create graph: %w", err)
	}
	defer func() {
		if err := graph.Close(); err != nil {
			fmt.Printf("Error closing graph: %v\n", err)
		}
	}()

	song, err := g.svc.GetSong(ctx, songID)
	if err != nil {
		return "", fmt.Errorf("failed to fetch song: %w", err)
	}

	songNode, err := graph.CreateNodeByName(fmt.Sprintf("song_%d", songID))
	if err != nil {
		return "", fmt.Errorf("failed to create song node: %w", err)
	}
	songNode.SetLabel(fmt.Sprintf("%s - %s", song.Title, song.Artist))
	songNode.SetShape("box")

	assignments := g.svc.GetAssignments(ctx, songID)
	byCollaborator := make(map[string][]string)
	for _, a := range assignments {
		byCollaborator[a.Collaborator] = append(byCollaborator[a.Collaborator], a.Field)
	}

	for collaborator, fields := range byCollaborator {
		node, err := graph.CreateNodeByName("user_" + collaborator)
		if err != nil {
			continue
		}
		node.SetLabel(collaborator)
		node.SetShape("ellipse")

		edge, err := graph.CreateEdgeByName("", node, songNode)
		if err == nil {
			edge.SetLabel(strings.Join(fields, ", "))
		}
	}

	var buf bytes.Buffer
	if err := gv.Render(ctx, graph, graphviz.XDOT, &buf); err != nil {
		return "", fmt.Errorf("failed to render graph: %w", err)
	}
	return buf.String(), nil
}
