package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matsen/citegraph/internal/config"
	"github.com/matsen/citegraph/internal/graph"
	"github.com/matsen/citegraph/internal/paper"
	"github.com/matsen/citegraph/internal/store"
)

var showDir string

// showResult is the JSON output of the show command
type showResult struct {
	Papers []paper.Paper `json:"papers"`
	Edges  []graph.Edge  `json:"edges"`
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the stored graph",
	Long: `Show the papers and relationship edges stored in the workspace.

Examples:
  citegraph show
  citegraph show --dir ~/papers --human`,
	Args: cobra.NoArgs,
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().StringVarP(&showDir, "dir", "d", ".", "Workspace directory")
}

func runShow(cmd *cobra.Command, args []string) error {
	root := config.ExpandPath(showDir)
	db, err := store.Open(config.DBPath(root))
	if err != nil {
		exitWithError(fmt.Errorf("opening store: %w", err), ExitDataError)
	}
	defer db.Close()

	papers, err := db.ListPapers()
	if err != nil {
		exitWithError(err, ExitDataError)
	}
	edges, err := db.LoadEdges()
	if err != nil {
		exitWithError(err, ExitDataError)
	}

	if humanOutput {
		outputHuman("%d paper(s), %d edge(s)", len(papers), len(edges))
		for _, p := range papers {
			outputHuman("  %s  %s (%s)", p.ID, p.Title, p.Year)
		}
		for _, e := range edges {
			outputHuman("  %s -[%s %.2f]-> %s", e.Source, e.Relationship, e.Strength, e.Target)
		}
		return nil
	}
	return outputJSON(showResult{Papers: papers, Edges: edges})
}
