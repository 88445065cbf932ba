package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matsen/citegraph/internal/config"
)

var initDir string

// initResult is the JSON output of the init command
type initResult struct {
	ConfigPath string `json:"config_path"`
	Created    bool   `json:"created"`
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a citegraph workspace",
	Long: `Initialize a citegraph workspace in the given directory.

Creates the data directory and writes a default config file that can be
edited to tune the pipeline. Does not overwrite an existing config.

Examples:
  citegraph init
  citegraph init --dir ~/papers`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVarP(&initDir, "dir", "d", ".", "Workspace directory")
}

func runInit(cmd *cobra.Command, args []string) error {
	root := config.ExpandPath(initDir)
	if err := config.EnsureDataDir(root); err != nil {
		exitWithError(err, ExitDataError)
	}

	path := config.ConfigPath(root)
	created := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := config.Default().Save(path); err != nil {
			exitWithError(fmt.Errorf("writing config: %w", err), ExitConfigError)
		}
		created = true
	}

	if humanOutput {
		if created {
			outputHuman("Initialized workspace, config at %s", path)
		} else {
			outputHuman("Workspace already initialized, config at %s", path)
		}
		return nil
	}
	return outputJSON(initResult{ConfigPath: path, Created: created})
}
