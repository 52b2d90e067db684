// ABOUTME: MCP server subcommand
// ABOUTME: Exposes sharing operations as tools over stdio
package cli

import (
	"context"
	"log"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/packshare/handlers"
	"github.com/harperreed/packshare/share"
)

// MCPCommand starts the MCP server on stdio
func MCPCommand(svc share.Service, currentUser string, journal *share.Journal) error {
	log.Println("Starting packshare MCP server...")

	collabHandlers := handlers.NewCollabHandlers(svc, currentUser, journal)
	resourceHandlers := handlers.NewResourceHandlers(svc, journal)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "packshare",
		Version: "0.1.0",
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_collaborators",
		Description: "List everyone with access to a pack or song, with a one-line access summary each",
	}, collabHandlers.ListCollaborators)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "grant_collaborator",
		Description: "Grant a user access to a pack or song (full, specific songs/fields, song edit, or view only)",
	}, collabHandlers.GrantCollaborator)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "revoke_collaborator",
		Description: "Remove a collaborator's access, including their field assignments",
	}, collabHandlers.RevokeCollaborator)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_assignments",
		Description: "Show who holds each checklist field of a song",
	}, collabHandlers.ListAssignments)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "set_assignments",
		Description: "Rewrite one collaborator's checklist field list on a song",
	}, collabHandlers.SetAssignments)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "derive_permission_summary",
		Description: "Get the one-line access summary for a single collaborator",
	}, collabHandlers.DerivePermissionSummary)

	server.AddResource(&mcp.Resource{
		URI:         "packshare://journal/recent",
		Name:        "recent_commits",
		Description: "The last 20 journaled commits",
		MIMEType:    "application/json",
	}, resourceHandlers.ReadResource)

	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "packshare://packs/{id}/collaborators",
		Name:        "pack_collaborators",
		Description: "Collaborator summaries for a pack",
		MIMEType:    "application/json",
	}, resourceHandlers.ReadResource)

	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "packshare://songs/{id}/collaborators",
		Name:        "song_collaborators",
		Description: "Collaborator summaries for a song",
		MIMEType:    "application/json",
	}, resourceHandlers.ReadResource)

	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "packshare://songs/{id}/assignments",
		Name:        "song_assignments",
		Description: "Who holds each checklist field of a song",
		MIMEType:    "application/json",
	}, resourceHandlers.ReadResource)

	ctx := context.Background()
	return server.Run(ctx, &mcp.StdioTransport{})
}
