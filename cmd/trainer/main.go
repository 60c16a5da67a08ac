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

	"github.com/gaspersavle/FuzbAISim/internal/config"
	"github.com/gaspersavle/FuzbAISim/internal/env"
	"github.com/gaspersavle/FuzbAISim/internal/episodelog"
	"github.com/gaspersavle/FuzbAISim/internal/geometry"
	"github.com/gaspersavle/FuzbAISim/internal/replay"
	"github.com/gaspersavle/FuzbAISim/internal/simclient"
	"github.com/gaspersavle/FuzbAISim/internal/trainer"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "trainer",
	Short: "FuzbAI episode collection harness",
	Long: `Collects training episodes from one or more simulator instances.

Each parallel worker owns its own simulator connection and environment;
transitions land in a shared replay buffer and episode outcomes go to an
optional sqlite log and an HTML reward report.`,
	RunE: runTrainer,
}

func init() {
	cfg = config.Default()

	rootCmd.Flags().StringVar(&cfg.SimAddr, "sim-addr", cfg.SimAddr, "Simulator HTTP address")
	rootCmd.Flags().BoolVar(&cfg.Blue, "blue", cfg.Blue, "Train the blue motor bank")
	rootCmd.Flags().StringVar(&cfg.GeometryPath, "geometry", cfg.GeometryPath, "Table geometry JSON (empty for built-in)")
	rootCmd.Flags().IntVar(&cfg.Episodes, "episodes", cfg.Episodes, "Episodes per worker (-1 for unlimited)")
	rootCmd.Flags().IntVar(&cfg.MaxSteps, "max-steps", cfg.MaxSteps, "Step limit per episode")
	rootCmd.Flags().DurationVar(&cfg.StepDelay, "step-delay", cfg.StepDelay, "Delay between command and re-poll")
	rootCmd.Flags().IntVar(&cfg.BatchSize, "batch-size", cfg.BatchSize, "Replay flush batch size")
	rootCmd.Flags().StringVar(&cfg.Shaper, "shaper", cfg.Shaper, "Reward variant (stability, attack)")
	rootCmd.Flags().IntVar(&cfg.Parallel, "parallel", cfg.Parallel, "Parallel collection workers")
	rootCmd.Flags().IntVar(&cfg.ReplayCapacity, "replay-capacity", cfg.ReplayCapacity, "Replay buffer capacity (0 for unbounded)")
	rootCmd.Flags().StringVar(&cfg.EpisodeDB, "episode-db", cfg.EpisodeDB, "Sqlite episode log path (empty to skip)")
	rootCmd.Flags().StringVar(&cfg.ReportPath, "report", cfg.ReportPath, "Reward report HTML path (empty to skip)")
	rootCmd.Flags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	rootCmd.Flags().StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "Rotating log file path (empty for stdout only)")

	viper.BindPFlags(rootCmd.Flags())
	viper.SetEnvPrefix("FUZBAI")
	viper.AutomaticEnv()
}

func runTrainer(cmd *cobra.Command, args []string) error {
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
	team := geometry.TeamRed
	if cfg.Blue {
		team = geometry.TeamBlue
	}

	buffer := replay.NewBuffer(cfg.ReplayCapacity)

	var episodes *episodelog.Store
	if cfg.EpisodeDB != "" {
		var err error
		if episodes, err = episodelog.Open(cfg.EpisodeDB); err != nil {
			return err
		}
		defer episodes.Close()
	}

	opts := env.Options{StepDelay: cfg.StepDelay, MaxSteps: cfg.MaxSteps}
	collectorCfg := trainer.Config{
		Episodes:   cfg.Episodes,
		BatchSize:  cfg.BatchSize,
		ShaperName: cfg.Shaper,
	}

	collectors := make([]*trainer.Collector, 0, cfg.Parallel)
	for i := 0; i < cfg.Parallel; i++ {
		var shaper env.Shaper
		switch cfg.Shaper {
		case "attack":
			shaper = env.NewAttackShaper(table, team)
		default:
			shaper = env.NewStabilityShaper(team)
		}

		client := simclient.New(cfg.SimAddr, cfg.Blue)
		environment := env.New(client, table, team, shaper, opts, logger)
		policy := trainer.NewExploring(
			trainer.NewRandom(environment.NumRods(), time.Now().UnixNano()+int64(i)),
			environment.NumRods(), time.Now().UnixNano()-int64(i))

		collector, err := trainer.NewCollector(collectorCfg, environment, policy, buffer, episodes, logger)
		if err != nil {
			return err
		}
		collectors = append(collectors, collector)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info().Msg("shutdown signal received, stopping collection")
		cancel()
	}()

	logger.Info().
		Str("sim_addr", cfg.SimAddr).
		Int("workers", cfg.Parallel).
		Int("episodes", cfg.Episodes).
		Str("shaper", cfg.Shaper).
		Msg("collection starting")

	if err := trainer.RunParallel(ctx, collectors); err != nil && ctx.Err() == nil {
		return err
	}

	var results []trainer.EpisodeResult
	for _, c := range collectors {
		results = append(results, c.Results()...)
	}
	stats := buffer.GetStats()
	logger.Info().
		Int("episodes", len(results)).
		Int("transitions", stats.Transitions).
		Msg("collection finished")

	if cfg.ReportPath != "" && len(results) > 0 {
		if err := trainer.WriteRewardReport(cfg.ReportPath, results); err != nil {
			return err
		}
		logger.Info().Str("path", cfg.ReportPath).Msg("reward report written")
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
