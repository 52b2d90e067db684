// ABOUTME: Entry point for the packshare CLI and MCP server
// ABOUTME: Routes to sharing, TUI, viz, and MCP commands based on arguments
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/harperreed/packshare/api"
	"github.com/harperreed/packshare/cli"
	"github.com/harperreed/packshare/share"
)

const version = "0.1.0"

func main() {
	// Global flags
	showVersion := flag.Bool("version", false, "Show version and exit")

	// A .env file can carry PACKSHARE_* overrides for development.
	_ = godotenv.Load()

	_ = flag.CommandLine.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("packshare version %s\n", version)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(0)
	}

	command := args[0]
	commandArgs := args[1:]

	switch command {
	case "login":
		if err := cli.LoginCommand(commandArgs); err != nil {
			log.Fatalf("Error: %v", err)
		}

	case "whoami":
		if err := cli.WhoamiCommand(commandArgs); err != nil {
			log.Fatalf("Error: %v", err)
		}

	case "share":
		client, cfg := mustClient()
		journal := openJournal()

		if len(commandArgs) == 0 {
			fmt.Println("Error: share requires a subcommand")
			printUsage()
			os.Exit(1)
		}

		shareCommand := commandArgs[0]
		shareArgs := commandArgs[1:]

		switch shareCommand {
		case "list":
			if err := cli.ShareListCommand(client, cfg.Username, shareArgs); err != nil {
				log.Fatalf("Error: %v", err)
			}
		case "grant":
			if err := cli.ShareGrantCommand(client, journal, cfg.Username, shareArgs); err != nil {
				log.Fatalf("Error: %v", err)
			}
		case "revoke":
			if err := cli.ShareRevokeCommand(client, journal, cfg.Username, shareArgs); err != nil {
				log.Fatalf("Error: %v", err)
			}
		case "assignments":
			if err := cli.ShareAssignmentsCommand(client, shareArgs); err != nil {
				log.Fatalf("Error: %v", err)
			}
		case "assign":
			if err := cli.ShareAssignCommand(client, shareArgs); err != nil {
				log.Fatalf("Error: %v", err)
			}
		case "history":
			if journal == nil {
				log.Fatal("Error: journal unavailable")
			}
			if err := cli.ShareHistoryCommand(journal, shareArgs); err != nil {
				log.Fatalf("Error: %v", err)
			}
		default:
			fmt.Printf("Unknown share command: %s\n\n", shareCommand)
			printUsage()
			os.Exit(1)
		}

	case "tui":
		client, cfg := mustClient()
		journal := openJournal()
		if err := cli.TUICommand(client, journal, cfg.Username, commandArgs); err != nil {
			log.Fatalf("Error: %v", err)
		}

	case "viz":
		client, _ := mustClient()

		if len(commandArgs) == 0 {
			fmt.Println("Error: viz requires a subcommand (pack or song)")
			printUsage()
			os.Exit(1)
		}

		vizCommand := commandArgs[0]
		vizArgs := commandArgs[1:]

		switch vizCommand {
		case "pack":
			if err := cli.VizPackCommand(client, vizArgs); err != nil {
				log.Fatalf("Error: %v", err)
			}
		case "song":
			if err := cli.VizSongCommand(client, vizArgs); err != nil {
				log.Fatalf("Error: %v", err)
			}
		default:
			fmt.Printf("Unknown viz command: %s\n\n", vizCommand)
			printUsage()
			os.Exit(1)
		}

	case "mcp":
		client, cfg := mustClient()
		journal := openJournal()
		if err := cli.MCPCommand(client, cfg.Username, journal); err != nil {
			log.Fatalf("MCP server failed: %v", err)
		}

	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func mustClient() (*api.Client, *api.Config) {
	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if !cfg.IsConfigured() {
		log.Fatal("Not logged in. Run 'packshare login' first.")
	}

	client, err := api.NewClient(cfg)
	if err != nil {
		log.Fatalf("Failed to create client: %v", err)
	}
	return client, cfg
}

// openJournal is fail-soft: commits still work without local history.
func openJournal() *share.Journal {
	journal, err := share.OpenJournal(share.JournalPath())
	if err != nil {
		log.Printf("warning: commit journal unavailable: %v", err)
		return nil
	}
	return journal
}

func printUsage() {
	fmt.Printf(`packshare v%s - collaboration manager for song packs

USAGE:
  packshare [global flags] <command> [subcommand] [flags]

GLOBAL FLAGS:
  --version              Show version and exit

COMMANDS:
  login                  Authenticate and store credentials
    --server <url>          Server URL (required)
    --username <name>       Username (required)

  whoami                 Show the current login

  share list             List collaborators
    --pack <id> | --song <id>

  share grant            Grant access and commit immediately
    --pack <id> | --song <id>
    --user <name>           Collaborator username (required)
    --kind <kind>           full, specific, song_edit, or pack_share
    --songs <ids>           Comma-separated song IDs (specific, pack scope)
    --fields <names>        Comma-separated fields (specific, song scope)

  share revoke           Remove a collaborator's access
    --pack <id> | --song <id>
    --user <name>           Collaborator username (required)

  share assignments      Show who holds each field of a song
    --song <id>

  share assign           Rewrite one collaborator's field list
    --song <id>
    --user <name>
    --fields <names>        Empty clears their rows

  share history          Show recent commits from the local journal
    --limit <n>             Max commits (default: 10)

  tui                    Interactive sharing dialog
    --pack <id> | --song <id>

  viz pack               Collaboration graph for a pack (DOT)
    --pack <id>
    --output <file>         Write to file instead of stdout

  viz song               Field assignment graph for a song (DOT)
    --song <id>
    --output <file>         Write to file instead of stdout

  mcp                    Start MCP server (stdio)
`, version)
}
