package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/callebtc/bitchat-simulator-sub000/internal/config"
	"github.com/callebtc/bitchat-simulator-sub000/internal/logging"
	"github.com/callebtc/bitchat-simulator-sub000/internal/sink"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the simulation and stream events over a websocket",
	Long: `Run the mesh chat simulation headlessly, fanning out every event over
a websocket ("/events" on --addr) instead of the configured sink, until
the process receives SIGINT/SIGTERM.

The simulation driver and the signal watcher run as sibling goroutines
under one errgroup. Events reach the websocket through a bus
subscription; the websocket server runs in its own goroutine, and its
errors do not stop the driver.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "address to serve the websocket feed on")
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logCfg := logging.Config{
		Level:    viper.GetString("logging.level"),
		Format:   viper.GetString("logging.format"),
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

	ws, err := sink.NewWebSocket(serveAddr)
	if err != nil {
		return fmt.Errorf("failed to start websocket feed: %w", err)
	}
	defer func() { _ = ws.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-sigChan:
			cancel()
		case <-gctx.Done():
		}
		return nil
	})

	stopForward := forwardEvents(gctx, eng, ws)
	defer stopForward()

	g.Go(func() error {
		return eng.Run(gctx, cfg.Sim.TickHz)
	})

	logging.Info("Serving websocket feed", zap.String("addr", serveAddr))
	if err := g.Wait(); err != nil && err != context.Canceled {
		return err
	}
	logging.Info("Serve stopped")
	return nil
}
