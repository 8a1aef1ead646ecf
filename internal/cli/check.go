package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/veracity/internal/llm"
	"github.com/ppiankov/veracity/internal/model"
	"github.com/ppiankov/veracity/internal/pipeline"
	"github.com/ppiankov/veracity/internal/rank"
	"github.com/ppiankov/veracity/internal/search"
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check <statement>",
	Short: "Fact-check one statement and print the record",
	Long: `Run a single fact check from the command line.

Example:
  veracity check "The sky is blue"
  veracity check --llm-model llama3.1:8b "Coffee was discovered in Ethiopia"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVar(&hubForward, "hub-url", "", "broadcast hub publish URL (empty disables forwarding)")
	checkCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "verdict backend (ollama, openai)")
	checkCmd.Flags().StringVar(&llmModel, "llm-model", "", "verdict model name")
}

func runCheck(cmd *cobra.Command, args []string) error {
	statement := model.NormalizeClaim(strings.Join(args, " "))
	if statement == "" {
		return fmt.Errorf("statement cannot be empty")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	// One-shot checks do not broadcast unless asked.
	cfg.Hub.ForwardURL = hubForward
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

	ctx := context.Background()
	if err := provider.EnsureReady(ctx); err != nil {
		return fmt.Errorf("verdict backend unavailable: %w", err)
	}

	searcher := search.NewDuckDuckGo(cfg.Search, cfg.Extract.UserAgent, cfg.HTTP)
	embedder := rank.NewOllamaEmbedder(cfg.Rank)
	checker := pipeline.NewChecker(cfg, searcher, embedder, provider, logger)

	record := checker.Check(ctx, statement)

	out, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	fmt.Fprintln(os.Stdout, string(out))
	return nil
}
