// ABOUTME: Visualization CLI commands
// ABOUTME: Renders pack and song collaboration graphs as DOT
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/harperreed/packshare/share"
	"github.com/harperreed/packshare/viz"
)

// VizPackCommand generates a graph of a pack's songs and collaborators.
func VizPackCommand(svc share.Service, args []string) error {
	fs := flag.NewFlagSet("viz pack", flag.ExitOnError)
	packID := fs.Int64("pack", 0, "Pack ID (required)")
	output := fs.String("output", "", "Output file (default: stdout)")
	_ = fs.Parse(args)

	if *packID == 0 {
		return fmt.Errorf("--pack is required")
	}

	generator := viz.NewGraphGenerator(svc)
	dot, err := generator.GeneratePackGraph(context.Background(), *packID)
	if err != nil {
		return err
	}

	if *output != "" {
		return os.WriteFile(*output, []byte(dot), 0644)
	}

	fmt.Println(dot)
	return nil
}

// VizSongCommand generates a graph of one song's field assignments.
func VizSongCommand(svc share.Service, args []string) error {
	fs := flag.NewFlagSet("viz song", flag.ExitOnError)
	songID := fs.Int64("song", 0, "Song ID (required)")
	output := fs.String("output", "", "Output file (default: stdout)")
	_ = fs.Parse(args)

	if *songID == 0 {
		return fmt.Errorf("--song is required")
	}

	generator := viz.NewGraphGenerator(svc)
	dot, err := generator.GenerateSongGraph(context.Background(), *songID)
	if err != nil {
		return err
	}

	if *output != "" {
		return os.WriteFile(*output, []byte(dot), 0644)
	}

	fmt.Println(dot)
	return nil
}
