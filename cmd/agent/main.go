package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gaspersavle/FuzbAISim/internal/agent"
	"github.com/gaspersavle/FuzbAISim/internal/config"
	"github.com/gaspersavle/FuzbAISim/internal/geometry"
	"github.com/gaspersavle/FuzbAISim/internal/simclient"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "agent",
	Short: "FuzbAI demo agent",
	Long: `Runs the scripted goalkeeper agent against a simulator instance.

The agent polls camera telemetry on a fixed tick, runs the kick state
machine, and posts the resulting motor commands back.`,
	RunE: runAgent,
}

func init() {
	cfg = config.Default()

	rootCmd.Flags().StringVar(&cfg.SimAddr, "sim-addr", cfg.SimAddr, "Simulator HTTP address")
	rootCmd.Flags().BoolVar(&cfg.Blue, "blue", cfg.Blue, "Drive the blue motor bank")
	rootCmd.Flags().StringVar(&cfg.GeometryPath, "geometry", cfg.GeometryPath, "Table geometry JSON (empty for built-in)")
	rootCmd.Flags().DurationVar(&cfg.TickInterval, "tick", cfg.TickInterval, "Polling interval")
	rootCmd.Flags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")

	viper.BindPFlags(rootCmd.Flags())
	viper.SetEnvPrefix("FUZBAI")
	viper.AutomaticEnv()
}

func runAgent(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	logger := config.NewLogger(cfg.LogLevel, cfg.LogFile)

	table := geometry.Default()
	if cfg.GeometryPath != "" {
		var err error
		if table, err = geometry.Load(cfg.GeometryPath); err != nil {
			return err
		}
	}

	client := simclient.New(cfg.SimAddr, cfg.Blue)
	demo := agent.NewHeuristic(table, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info().Msg("shutdown signal received, stopping agent")
		cancel()
	}()

	logger.Info().
		Str("sim_addr", cfg.SimAddr).
		Bool("blue", cfg.Blue).
		Dur("tick", cfg.TickInterval).
		Msg("agent starting")

	ticker := time.NewTicker(cfg.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("agent stopped")
			return nil
		case <-ticker.C:
		}

		record, err := client.CameraState(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		commands := demo.ProcessData(record)
		if len(commands) == 0 {
			continue
		}
		if err := client.SendCommands(ctx, commands); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
