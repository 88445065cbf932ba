// Package main provides the citegraph CLI entry point.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/matsen/citegraph/internal/config"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

// verbose enables debug logging
var verbose bool

// configPath points at an optional YAML config file
var configPath string

func main() {
	config.LoadEnv()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "citegraph",
	Short: "Citation-context relationship graph builder",
	Long: `citegraph builds relationship graphs between academic papers.

It structures source PDFs, extracts in-text citation contexts, resolves
paper identities against Semantic Scholar, samples derivative works, and
classifies paper relationships with an LLM into one deduplicated graph.
All commands output JSON by default.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file")
	rootCmd.Version = Version
}

// loadConfig loads the workspace config (or defaults) with env overrides.
// An explicit --config path wins over the workspace location.
func loadConfig(root string) (*config.Config, error) {
	path := configPath
	if path == "" {
		path = config.ConfigPath(config.ExpandPath(root))
	}
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	return cfg, nil
}
