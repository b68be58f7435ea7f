package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/callebtc/bitchat-simulator-sub000/internal/config"
	"github.com/callebtc/bitchat-simulator-sub000/internal/engine"
	"github.com/callebtc/bitchat-simulator-sub000/internal/events"
	"github.com/callebtc/bitchat-simulator-sub000/internal/logging"
	"github.com/callebtc/bitchat-simulator-sub000/internal/sink"
	"github.com/callebtc/bitchat-simulator-sub000/internal/tui"
)

var (
	dryRun      bool
	interactive bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the mesh chat simulation",
	Long: `Run the mesh chat simulation headlessly, publishing events to the
configured sink (stdout, file, or websocket) until sim.duration_seconds
elapses, or forever if it is zero.

Use --interactive or -i to watch the simulation in a terminal
dashboard instead of streaming raw events.`,
	RunE: runSimulation,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate configuration without starting the simulation")
	runCmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "run with the interactive dashboard")
}

func runSimulation(_ *cobra.Command, _ []string) error {
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

	if interactive {
		logCfg.Format = "text"
		logCfg.Level = "error"
	}

	if err := logging.Initialize(logCfg); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer logging.Sync()

	if cfgFile := viper.ConfigFileUsed(); cfgFile != "" {
		logging.Info("Using config file", zap.String("path", cfgFile))
	}

	if dryRun {
		fmt.Println("Configuration is valid!")
		fmt.Printf("  Agents: %d\n", cfg.Agents.Count)
		fmt.Printf("  Bounds: (%.0f,%.0f)-(%.0f,%.0f)\n",
			cfg.World.Bounds.MinX, cfg.World.Bounds.MinY, cfg.World.Bounds.MaxX, cfg.World.Bounds.MaxY)
		fmt.Printf("  Sink: %s\n", cfg.Sink.Type)
		fmt.Printf("  Tick rate: %.1fHz\n", cfg.Sim.TickHz)
		return nil
	}

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

	if interactive {
		go func() {
			if err := tui.Run(eng); err != nil {
				logging.Error("dashboard error", zap.Error(err))
			}
			cancel()
		}()
		runTicks(ctx, eng, cfg)
		return nil
	}

	sk, err := sink.New(cfg.Sink)
	if err != nil {
		return fmt.Errorf("failed to create sink: %w", err)
	}
	defer func() { _ = sk.Close() }()

	stopForward := forwardEvents(ctx, eng, sk)
	defer stopForward()

	logging.Info("Simulation running. Press Ctrl+C to stop.")
	runTicks(ctx, eng, cfg)
	logging.Info("Simulation stopped")

	return nil
}

// forwardEvents subscribes to every event the engine publishes and
// forwards it to sk, tagging it with the sim-time timestamp it occurred
// at. Returns an unsubscribe function.
func forwardEvents(ctx context.Context, eng *engine.Engine, sk sink.Sink) func() {
	return eng.Bus.Subscribe("*", func(evt events.Event) {
		_ = sk.Send(ctx, sink.Event{
			Timestamp: eng.Now,
			Topic:     evt.Topic,
			Detail:    evt.Detail,
		})
	})
}

// runTicks drives eng.Step at cfg.Sim.TickHz until ctx is cancelled or
// cfg.Sim.DurationSeconds of sim time has elapsed (0 means run forever).
func runTicks(ctx context.Context, eng *engine.Engine, cfg *config.Config) {
	hz := cfg.Sim.TickHz
	if hz <= 0 {
		hz = 10
	}
	dt := 1.0 / hz
	ticker := time.NewTicker(time.Duration(dt * float64(time.Second)))
	defer ticker.Stop()

	elapsed := 0.0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			eng.Step(dt)
			elapsed += dt
			if cfg.Sim.DurationSeconds > 0 && elapsed >= cfg.Sim.DurationSeconds {
				return
			}
		}
	}
}
