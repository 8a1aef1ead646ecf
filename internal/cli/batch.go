package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/veracity/internal/llm"
	"github.com/ppiankov/veracity/internal/model"
	"github.com/ppiankov/veracity/internal/pipeline"
	"github.com/ppiankov/veracity/internal/rank"
	"github.com/ppiankov/veracity/internal/search"
	"github.com/ppiankov/veracity/internal/worker"
)

var (
	concurrency  int
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Fact-check multiple statements from a file in parallel",
	Long: `Batch processes statements concurrently:
- Read statements from the input file (one per line, # comments skipped)
- Check statements in parallel with a configurable worker count
- Print one record per statement as a JSON array

Example:
  veracity batch statements.txt
  veracity batch statements.txt --concurrency 4 --timeout 10m`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "verdict backend (ollama, openai)")
	batchCmd.Flags().StringVar(&llmModel, "llm-model", "", "verdict model name")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.Hub.ForwardURL = "" // batch runs do not broadcast
	if llmProvider != "" {
		cfg.LLM.Provider = llmProvider
	}
	if llmModel != "" {
		cfg.LLM.Model = llmModel
	}

	logger := newLogger()

	provider, err := llm.NewProvider(cfg.LLM)
	if err != nil {
		return err
	}
	if err := provider.EnsureReady(ctx); err != nil {
		return fmt.Errorf("verdict backend unavailable: %w", err)
	}

	searcher := search.NewDuckDuckGo(cfg.Search, cfg.Extract.UserAgent, cfg.HTTP)
	embedder := rank.NewOllamaEmbedder(cfg.Rank)
	checker := pipeline.NewChecker(cfg, searcher, embedder, provider, logger)

	processor := worker.NewBatchProcessor(checker, concurrency)

	fmt.Fprintf(os.Stderr, "Processing statements from %s with %d workers...\n", file, concurrency)

	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	records := make([]model.FactCheckRecord, 0, len(results))
	for _, r := range results {
		records = append(records, r.Record)
	}

	out, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal records: %w", err)
	}

	fmt.Fprintln(os.Stdout, string(out))
	fmt.Fprintf(os.Stderr, "✓ Checked %d statements\n", len(results))
	return nil
}
