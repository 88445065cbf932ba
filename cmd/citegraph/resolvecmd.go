package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matsen/citegraph/internal/logging"
	"github.com/matsen/citegraph/internal/resolve"
	"github.com/matsen/citegraph/internal/s2"
)

var (
	resolveAuthors []string
	resolveYear    string
)

// resolveResult is the JSON output of the resolve command
type resolveResult struct {
	Found         bool   `json:"found"`
	PaperID       string `json:"paper_id,omitempty"`
	Title         string `json:"title,omitempty"`
	Year          int    `json:"year,omitempty"`
	Venue         string `json:"venue,omitempty"`
	CitationCount int    `json:"citation_count,omitempty"`
	URL           string `json:"url,omitempty"`
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <title>",
	Short: "Resolve a paper title against Semantic Scholar",
	Long: `Resolve a paper title to a Semantic Scholar identity.

Uses the same cascade of search strategies as the build pipeline, so it
is useful for checking why a citation did or did not resolve.

Examples:
  citegraph resolve "Attention Is All You Need"
  citegraph resolve --author Vaswani --year 2017 "Attention Is All You Need"`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)
	resolveCmd.Flags().StringSliceVarP(&resolveAuthors, "author", "a", nil, "Author name to narrow the search (repeatable)")
	resolveCmd.Flags().StringVarP(&resolveYear, "year", "y", "", "Publication year to narrow the search")
}

func runResolve(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(".")
	if err != nil {
		exitWithError(err, ExitConfigError)
	}

	log, err := logging.New(verbose)
	if err != nil {
		exitWithError(err, ExitError)
	}
	defer log.Sync()

	resolver := resolve.New(s2.NewClient(
		s2.WithMinDelay(cfg.S2MinDelay()),
		s2.WithLogger(log),
	), log)

	found, err := resolver.Resolve(cmd.Context(), resolve.Query{
		Title:   args[0],
		Authors: resolveAuthors,
		Year:    resolveYear,
	})
	if err != nil {
		return fmt.Errorf("resolving %q: %w", args[0], err)
	}

	if found == nil {
		if humanOutput {
			outputHuman("No confident match for %q", args[0])
			return nil
		}
		return outputJSON(resolveResult{Found: false})
	}

	if humanOutput {
		outputHuman("%s (%d) %s", found.Title, found.Year, found.Venue)
		outputHuman("  id: %s  citations: %d", found.PaperID, found.CitationCount)
		return nil
	}
	return outputJSON(resolveResult{
		Found:         true,
		PaperID:       found.PaperID,
		Title:         found.Title,
		Year:          found.Year,
		Venue:         found.Venue,
		CitationCount: found.CitationCount,
		URL:           found.URL,
	})
}
