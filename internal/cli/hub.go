package cli

import (
	"fmt"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	"github.com/ppiankov/veracity/internal/hub"
)

var hubAddr string

// hubCmd represents the hub command
var hubCmd = &cobra.Command{
	Use:   "hub",
	Short: "Run the broadcast hub service",
	Long: `Start the broadcast hub.

Subscribers connect over a persistent websocket and receive a typed
NEW_FACT_CHECK event for every published record. The checker service
publishes records to POST /send-fact-check; a failed delivery removes
only that subscriber.`,
	RunE: runHub,
}

func init() {
	rootCmd.AddCommand(hubCmd)

	hubCmd.Flags().StringVar(&hubAddr, "addr", "", "listen address (default from config, :8001)")
}

func runHub(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if hubAddr != "" {
		cfg.Hub.Addr = hubAddr
	}

	logger := newLogger()

	h := hub.New(logger)

	e := echo.New()
	e.HideBanner = true
	hub.NewServer(h, cfg.LLM.Labels, logger).Routes(e, cfg.Hub.Path)

	fmt.Fprintf(os.Stderr, "Starting broadcast hub on %s (subscribe at %s)\n", cfg.Hub.Addr, cfg.Hub.Path)
	return e.Start(cfg.Hub.Addr)
}
