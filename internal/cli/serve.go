package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	"github.com/ppiankov/veracity/internal/llm"
	"github.com/ppiankov/veracity/internal/model"
	"github.com/ppiankov/veracity/internal/pipeline"
	"github.com/ppiankov/veracity/internal/rank"
	"github.com/ppiankov/veracity/internal/search"
	"github.com/ppiankov/veracity/internal/server"
)

var (
	serveAddr   string
	hubForward  string
	llmProvider string
	llmModel    string
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the fact-check API server",
	Long: `Start the fact-check API server.

Endpoints:
  POST /check   {"statement": "..."}  -> fact-check record
  GET  /health                        -> {"status": "healthy"}

Before accepting requests the server verifies the verdict backend is
reachable and the configured model is available, starting and pulling
as needed. The process exits if the backend never becomes usable.

Completed records are forwarded to the broadcast hub as a best-effort
side channel.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, :8000)")
	serveCmd.Flags().StringVar(&hubForward, "hub-url", "", "broadcast hub publish URL (empty disables forwarding)")
	serveCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "verdict backend (ollama, openai)")
	serveCmd.Flags().StringVar(&llmModel, "llm-model", "", "verdict model name")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyServeFlags(cfg)

	logger := newLogger()

	provider, err := llm.NewProvider(cfg.LLM)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Checking verdict backend (%s/%s)...\n", provider.Name(), cfg.LLM.Model)
	if err := provider.EnsureReady(context.Background()); err != nil {
		return fmt.Errorf("verdict backend unavailable: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Verdict backend ready\n")

	searcher := search.NewDuckDuckGo(cfg.Search, cfg.Extract.UserAgent, cfg.HTTP)
	embedder := rank.NewOllamaEmbedder(cfg.Rank)
	checker := pipeline.NewChecker(cfg, searcher, embedder, provider, logger)

	e := echo.New()
	e.HideBanner = true
	server.New(checker, logger).Routes(e)

	fmt.Fprintf(os.Stderr, "Starting fact-check server on %s\n", cfg.Server.Addr)
	return e.Start(cfg.Server.Addr)
}

func applyServeFlags(cfg *model.Config) {
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}
	if hubForward != "" {
		cfg.Hub.ForwardURL = hubForward
	}
	if llmProvider != "" {
		cfg.LLM.Provider = llmProvider
	}
	if llmModel != "" {
		cfg.LLM.Model = llmModel
	}
}
