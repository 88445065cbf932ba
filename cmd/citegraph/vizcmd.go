package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matsen/citegraph/internal/config"
	"github.com/matsen/citegraph/internal/store"
	"github.com/matsen/citegraph/internal/viz"
)

var (
	vizDir    string
	vizOutput string
	vizLayout string
)

// vizResult is the JSON output of the viz command
type vizResult struct {
	Nodes  int    `json:"nodes"`
	Edges  int    `json:"edges"`
	Output string `json:"output"`
}

var vizCmd = &cobra.Command{
	Use:   "viz",
	Short: "Render the stored graph as interactive HTML",
	Long: `Render the stored relationship graph as an interactive HTML page.

Nodes are papers sized by citation count; edges are colored by
relationship type and weighted by strength.

Examples:
  citegraph viz
  citegraph viz --layout circle --output graph.html`,
	Args: cobra.NoArgs,
	RunE: runViz,
}

func init() {
	rootCmd.AddCommand(vizCmd)
	vizCmd.Flags().StringVarP(&vizDir, "dir", "d", ".", "Workspace directory")
	vizCmd.Flags().StringVarP(&vizOutput, "output", "o", "graph.html", "Output HTML file")
	vizCmd.Flags().StringVarP(&vizLayout, "layout", "l", "force", "Layout algorithm: force, circle, or grid")
}

func runViz(cmd *cobra.Command, args []string) error {
	root := config.ExpandPath(vizDir)
	g, err := store.ReadGraphJSON(config.GraphPath(root))
	if err != nil {
		exitWithError(fmt.Errorf("reading graph: %w", err), ExitDataError)
	}

	data := viz.FromGraph(g)
	html, err := viz.GenerateHTML(data, viz.HTMLOptions{Layout: vizLayout})
	if err != nil {
		return err
	}

	if err := os.WriteFile(vizOutput, []byte(html), 0644); err != nil {
		exitWithError(err, ExitDataError)
	}

	if humanOutput {
		outputHuman("Wrote %s: %d node(s), %d edge(s)", vizOutput, len(data.Nodes), len(data.Edges))
		return nil
	}
	return outputJSON(vizResult{Nodes: len(data.Nodes), Edges: len(data.Edges), Output: vizOutput})
}
