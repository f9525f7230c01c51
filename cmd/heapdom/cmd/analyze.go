package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/memsnap/heapdom/internal/domtree"
	"github.com/memsnap/heapdom/internal/heapsnapshot"
	"github.com/memsnap/heapdom/internal/storage"
	"github.com/memsnap/heapdom/pkg/config"
	"github.com/memsnap/heapdom/pkg/utils"
	"github.com/memsnap/heapdom/pkg/writer"
)

var (
	analyzeInput      string
	analyzeSQLitePath string
	analyzeTopK       int
	analyzeReportPath string
	analyzeRuntimeID  string
	analyzeMaxWorkers int
	analyzeChunkSize  int
	analyzeConfigPath string
	analyzeUpload     bool
)

// analyzeCmd represents the analyze command.
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Compute dominator tree and retained sizes for a heap snapshot",
	Long: `analyze loads a line-delimited JSON heap snapshot, runs the
five-stage dominator analysis pipeline over it, and writes the result.

The bulk extract (one row per reachable object: address, immediate
dominator, dominated size, dominated count) is written to a SQLite
database. If --report is set, the top --top objects by dominated size
are additionally written as a JSON report. If --upload is set, both
are also shipped to the storage backend named by the --config file's
storage section (local filesystem or Tencent COS).`,
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	binName := BinName()
	analyzeCmd.Example = `  # Analyze a heap snapshot and write a SQLite database
  ` + binName + ` analyze -i ./heap.jsonl -o ./heap.db

  # Analyze and also write the top 20 retainers as a JSON report
  ` + binName + ` analyze -i ./heap.jsonl -o ./heap.db --top 20 --report ./report.json`

	analyzeCmd.Flags().StringVarP(&analyzeInput, "input", "i", "", "Input heap snapshot file, line-delimited JSON (required)")
	analyzeCmd.Flags().StringVarP(&analyzeSQLitePath, "output", "o", "./heapdom.db", "SQLite database path for the bulk extract")
	analyzeCmd.Flags().IntVar(&analyzeTopK, "top", 50, "Number of top retainers to include in the JSON report")
	analyzeCmd.Flags().StringVar(&analyzeReportPath, "report", "", "If set, write a JSON Top-K report to this path")
	analyzeCmd.Flags().StringVar(&analyzeRuntimeID, "runtime-id", "", "Runtime identifier tagging rows in the SQLite database (auto-generated if empty)")
	analyzeCmd.Flags().IntVar(&analyzeMaxWorkers, "max-workers", 0, "Bound on parallel edge-resolution workers (0 = default)")
	analyzeCmd.Flags().IntVar(&analyzeChunkSize, "chunk-size", 0, "Objects per worker chunk during edge resolution (0 = default)")
	analyzeCmd.Flags().StringVar(&analyzeConfigPath, "config", "", "Config file providing the storage backend for --upload (default: config.yaml searched in ., ./configs, /etc/heapdom)")
	analyzeCmd.Flags().BoolVar(&analyzeUpload, "upload", false, "Upload the SQLite database (and JSON report, if --report is set) to the configured storage backend")
	analyzeCmd.MarkFlagRequired("input")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	log := GetLogger()

	f, err := os.Open(analyzeInput)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer f.Close()

	log.Info("Loading heap snapshot from %s", analyzeInput)
	snap, err := heapsnapshot.Load(f)
	if err != nil {
		return fmt.Errorf("failed to load heap snapshot: %w", err)
	}

	runtimeID := analyzeRuntimeID
	if runtimeID == "" {
		runtimeID = fmt.Sprintf("run-%d", time.Now().UnixNano())
	}

	engine := domtree.New(snap, domtree.Options{
		MaxWorkers: analyzeMaxWorkers,
		ChunkSize:  analyzeChunkSize,
		Logger:     log,
	})

	log.Info("Running dominator analysis...")
	ctx := context.Background()
	start := time.Now()
	if err := engine.Run(ctx); err != nil {
		return fmt.Errorf("dominator analysis failed: %w", err)
	}
	log.Info("Analysis completed in %s (%d objects observed)", time.Since(start), engine.NodeCount())

	extract, err := engine.BulkExtract()
	if err != nil {
		return fmt.Errorf("failed to extract results: %w", err)
	}

	log.Info("Writing bulk extract to %s (runtime_id=%s)", analyzeSQLitePath, runtimeID)
	sqliteWriter, err := writer.NewSQLiteWriter(analyzeSQLitePath)
	if err != nil {
		return fmt.Errorf("failed to open sqlite writer: %w", err)
	}
	defer sqliteWriter.Close()

	if err := sqliteWriter.WriteBulkExtract(ctx, runtimeID, extract); err != nil {
		return fmt.Errorf("failed to write bulk extract: %w", err)
	}
	log.Info("Wrote %d dominator rows", len(extract.ObjectAddresses))

	if analyzeReportPath != "" {
		log.Info("Computing top %d retainers for %s", analyzeTopK, analyzeReportPath)
		topK, err := engine.TopK(analyzeTopK)
		if err != nil {
			return fmt.Errorf("failed to compute top-K: %w", err)
		}

		reportWriter := writer.NewPrettyJSONWriter[[]domtree.TopKEntry]()
		if err := reportWriter.WriteToFile(topK, analyzeReportPath); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		log.Info("Wrote %d entries to %s", len(topK), analyzeReportPath)
	}

	if analyzeUpload {
		if err := uploadResults(ctx, log); err != nil {
			return fmt.Errorf("failed to upload results: %w", err)
		}
	}

	return nil
}

// uploadResults pushes the SQLite database (and the JSON report, if one was
// written) to the storage backend named by --config, keyed by their base
// file names.
func uploadResults(ctx context.Context, log utils.Logger) error {
	cfg, err := config.Load(analyzeConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	backend, err := storage.NewStorage(&cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize storage backend: %w", err)
	}

	key := filepath.Base(analyzeSQLitePath)
	log.Info("Uploading %s to %s storage as %s", analyzeSQLitePath, cfg.Storage.Type, key)
	if err := backend.UploadFile(ctx, key, analyzeSQLitePath); err != nil {
		return fmt.Errorf("failed to upload sqlite database: %w", err)
	}

	if analyzeReportPath != "" {
		reportKey := filepath.Base(analyzeReportPath)
		log.Info("Uploading %s to %s storage as %s", analyzeReportPath, cfg.Storage.Type, reportKey)
		if err := backend.UploadFile(ctx, reportKey, analyzeReportPath); err != nil {
			return fmt.Errorf("failed to upload report: %w", err)
		}
	}

	return nil
}
