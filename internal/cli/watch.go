package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/callebtc/bitchat-simulator-sub000/internal/config"
	"github.com/callebtc/bitchat-simulator-sub000/internal/logging"
	"github.com/callebtc/bitchat-simulator-sub000/internal/tui"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the simulation behind a terminal dashboard",
	Long: `Build and drive the simulation the same way "run" does, but headlessly:
the engine advances on its own ticker while a bubbletea dashboard polls
Engine.Snapshot() and tails the log feed. Quit the dashboard (q) to stop
both.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logCfg := logging.Config{
		Level:    "error",
		Format:   "text",
		SimRunID: fmt.Sprintf("seed-%d", cfg.Sim.Seed),
	}
	if err := logging.Initialize(logCfg); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer logging.Sync()

	eng, err := buildEngine(cfg)
	if err != nil {
		return fmt.Errorf("failed to build simulation: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	go func() {
		if err := eng.Run(ctx, cfg.Sim.TickHz); err != nil && err != context.Canceled {
			logging.Error("simulation driver error", zap.Error(err))
		}
	}()

	if err := tui.Run(eng); err != nil {
		return fmt.Errorf("failed to run dashboard: %w", err)
	}
	cancel()
	return nil
}
