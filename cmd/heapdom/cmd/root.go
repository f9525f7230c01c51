package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/memsnap/heapdom/pkg/utils"
)

var (
	// Global flags
	verbose bool
	logger  utils.Logger
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "heapdom",
	Short: "Dominator tree and retained-size analysis over a heap snapshot",
	Long: `heapdom computes, for every reachable object in a heap snapshot, its
immediate dominator and the total size and count of objects it retains.

It reads a heap through a pluggable collaborator (a line-delimited JSON
snapshot file by default), runs the Lengauer-Tarjan dominator algorithm
over the object reference graph, and writes the result as a queryable
SQLite database and, optionally, also as a JSON Top-K report.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logLevel := utils.LevelInfo
		if verbose {
			logLevel = utils.LevelDebug
		}
		logger = utils.NewDefaultLogger(logLevel, os.Stdout)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	binName := BinName()
	rootCmd.Example = `  # Analyze a heap snapshot and write a SQLite database
  ` + binName + ` analyze -i ./heap.jsonl -o ./heap.db

  # Analyze and also write the top 20 retainers to a JSON report file
  ` + binName + ` analyze -i ./heap.jsonl --top 20 --report ./report.json`
}

// GetLogger returns the configured logger.
func GetLogger() utils.Logger {
	return logger
}

// BinName returns the base name of the current executable.
func BinName() string {
	return filepath.Base(os.Args[0])
}
