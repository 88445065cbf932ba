package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matsen/citegraph/internal/config"
	"github.com/matsen/citegraph/internal/export"
	"github.com/matsen/citegraph/internal/store"
)

var (
	exportDir    string
	exportOutput string
	exportAppend bool
)

// exportResult is the JSON output of the export command
type exportResult struct {
	Papers  int    `json:"papers"`
	Skipped int    `json:"skipped"`
	Output  string `json:"output,omitempty"`
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored papers as BibTeX",
	Long: `Export the papers in the workspace store as BibTeX entries.

Without --output the entries go to stdout. With --append, entries whose
DOI or citation key already appear in the output file are skipped.

Examples:
  citegraph export > refs.bib
  citegraph export --output refs.bib --append`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportDir, "dir", "d", ".", "Workspace directory")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Write entries to this .bib file")
	exportCmd.Flags().BoolVar(&exportAppend, "append", false, "Append to --output, skipping entries already present")
}

func runExport(cmd *cobra.Command, args []string) error {
	root := config.ExpandPath(exportDir)
	db, err := store.Open(config.DBPath(root))
	if err != nil {
		exitWithError(fmt.Errorf("opening store: %w", err), ExitDataError)
	}
	defer db.Close()

	papers, err := db.ListPapers()
	if err != nil {
		exitWithError(err, ExitDataError)
	}

	skipped := 0
	if exportAppend && exportOutput != "" {
		idx, err := export.ParseBibTeXFile(exportOutput)
		if err != nil {
			exitWithError(fmt.Errorf("reading %s: %w", exportOutput, err), ExitDataError)
		}
		kept := papers[:0]
		for _, p := range papers {
			if idx.HasEntry(export.CitationKey(p), export.DOI(p)) {
				skipped++
				continue
			}
			kept = append(kept, p)
		}
		papers = kept
	}

	content := export.ToBibTeXList(papers)

	if exportOutput == "" {
		fmt.Fprint(os.Stdout, content)
		return nil
	}

	if exportAppend {
		if len(papers) > 0 {
			if err := export.AppendToBibFile(exportOutput, content); err != nil {
				exitWithError(err, ExitDataError)
			}
		}
	} else {
		if err := os.WriteFile(exportOutput, []byte(content), 0644); err != nil {
			exitWithError(err, ExitDataError)
		}
	}

	if humanOutput {
		outputHuman("Exported %d paper(s) to %s (%d already present)", len(papers), exportOutput, skipped)
		return nil
	}
	return outputJSON(exportResult{Papers: len(papers), Skipped: skipped, Output: exportOutput})
}
