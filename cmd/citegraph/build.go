package main

import (
	"fmt"

	"github.com/openai/openai-go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/matsen/citegraph/internal/classify"
	"github.com/matsen/citegraph/internal/config"
	"github.com/matsen/citegraph/internal/grobid"
	"github.com/matsen/citegraph/internal/logging"
	"github.com/matsen/citegraph/internal/oracle"
	"github.com/matsen/citegraph/internal/pipeline"
	"github.com/matsen/citegraph/internal/resolve"
	"github.com/matsen/citegraph/internal/s2"
	"github.com/matsen/citegraph/internal/store"
)

var (
	buildDir    string
	buildNoSave bool
)

// buildResult is the JSON output of the build command
type buildResult struct {
	Report     *pipeline.Report `json:"report"`
	Nodes      int              `json:"nodes"`
	Edges      int              `json:"edges"`
	GraphPath  string           `json:"graph_path,omitempty"`
	PapersPath string           `json:"papers_path,omitempty"`
}

var buildCmd = &cobra.Command{
	Use:   "build <url>...",
	Short: "Build a relationship graph from paper URLs",
	Long: `Build a relationship graph from one or more paper PDF URLs.

Each paper is fetched, structured through GROBID, and mined for in-text
citation contexts. Papers are resolved against Semantic Scholar, derivative
works are sampled from their citing papers, and candidate pairs are
classified into relationships by the configured model. The merged graph
is written to the workspace data directory unless --no-save is set.

Examples:
  citegraph build https://arxiv.org/pdf/1706.03762
  citegraph build --dir ~/papers url1 url2 url3
  citegraph build --no-save --human https://example.org/paper.pdf`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().StringVarP(&buildDir, "dir", "d", ".", "Workspace directory for config and output")
	buildCmd.Flags().BoolVar(&buildNoSave, "no-save", false, "Print the graph without persisting it")
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(buildDir)
	if err != nil {
		exitWithError(err, ExitConfigError)
	}

	if config.OpenAIAPIKey() == "" {
		exitWithError(fmt.Errorf("OPENAI_API_KEY is not set"), ExitConfigError)
	}

	log, err := logging.New(verbose)
	if err != nil {
		exitWithError(err, ExitError)
	}
	defer log.Sync()

	log.Debug("citation database access",
		zap.Bool("authenticated", config.S2APIKey() != ""))

	s2Client := s2.NewClient(
		s2.WithMinDelay(cfg.S2MinDelay()),
		s2.WithWindow(cfg.S2WindowCap, cfg.S2WindowSpan(), cfg.S2Cooldown()),
		s2.WithRetryPolicy(cfg.S2MaxRetries, s2.DefaultBackoffBase),
		s2.WithLogger(log),
	)

	completer := oracle.NewClient(
		oracle.WithModel(openai.ChatModel(cfg.OracleModel)),
		oracle.WithTemperature(cfg.OracleTemperature),
		oracle.WithMaxTokens(int64(cfg.OracleMaxTokens)),
	)
	orchestrator := classify.New(completer,
		classify.WithBatchSize(cfg.BatchSize),
		classify.WithBatchDelay(cfg.BatchDelay()),
		classify.WithLogger(log),
	)

	p := pipeline.New(
		pipeline.NewHTTPFetcher(),
		grobid.NewClient(grobid.WithBaseURL(cfg.GrobidURL)),
		s2Client,
		resolve.New(s2Client, log),
		orchestrator,
		cfg,
		log,
	)

	g, report, err := p.Run(cmd.Context(), args)
	if err != nil {
		// The pipeline only errors when every input paper failed.
		exitWithError(fmt.Errorf("building graph: %w", err), ExitDataError)
	}

	result := buildResult{
		Report: report,
		Nodes:  len(g.Nodes),
		Edges:  len(g.Edges),
	}

	if !buildNoSave {
		root := config.ExpandPath(buildDir)
		if err := config.EnsureDataDir(root); err != nil {
			exitWithError(err, ExitDataError)
		}

		db, err := store.Open(config.DBPath(root))
		if err != nil {
			exitWithError(err, ExitDataError)
		}
		defer db.Close()

		if err := db.SaveGraph(g); err != nil {
			exitWithError(err, ExitDataError)
		}
		papers, err := db.ListPapers()
		if err != nil {
			exitWithError(err, ExitDataError)
		}
		if err := store.WriteGraphJSON(config.GraphPath(root), g); err != nil {
			exitWithError(err, ExitDataError)
		}
		if err := store.WritePapersJSONL(config.PapersPath(root), papers); err != nil {
			exitWithError(err, ExitDataError)
		}
		result.GraphPath = config.GraphPath(root)
		result.PapersPath = config.PapersPath(root)
	}

	if humanOutput {
		outputHuman("Run %s: %d input(s), %d parsed, %d resolved, %d derivative(s)",
			report.RunID, report.Inputs, report.Parsed, report.Resolved, report.Derivatives)
		outputHuman("Classified %d relationship(s) from %d pair(s) (%d skipped, %d failed)",
			report.Classification.Classified, report.Classification.Pairs,
			report.Classification.SkippedNoEvidence, report.Classification.Failed)
		outputHuman("Graph: %d node(s), %d edge(s)", len(g.Nodes), len(g.Edges))
		if result.GraphPath != "" {
			outputHuman("Saved to %s", result.GraphPath)
		}
		return nil
	}
	return outputJSON(result)
}
