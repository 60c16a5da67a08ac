package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gaspersavle/FuzbAISim/internal/config"
	"github.com/gaspersavle/FuzbAISim/internal/geometry"
	"github.com/gaspersavle/FuzbAISim/internal/simstub"
)

var (
	listenAddr   string
	geometryPath string
	tickInterval time.Duration
	logLevel     string
)

var rootCmd = &cobra.Command{
	Use:   "simstub",
	Short: "In-process foosball table stub",
	Long: `Serves the simulator's HTTP surface backed by a simplified physics
model, for agent and trainer development without the real simulator.`,
	RunE: runStub,
}

func init() {
	rootCmd.Flags().StringVar(&listenAddr, "listen", "127.0.0.1:23336", "Listen address")
	rootCmd.Flags().StringVar(&geometryPath, "geometry", "", "Table geometry JSON (empty for built-in)")
	rootCmd.Flags().DurationVar(&tickInterval, "tick", 20*time.Millisecond, "Physics tick interval")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	viper.BindPFlags(rootCmd.Flags())
	viper.SetEnvPrefix("FUZBAI")
	viper.AutomaticEnv()
}

func runStub(cmd *cobra.Command, args []string) error {
	logger := config.NewLogger(logLevel, "")

	geo := geometry.Default()
	if geometryPath != "" {
		var err error
		if geo, err = geometry.Load(geometryPath); err != nil {
			return err
		}
	}

	table := simstub.NewTable(geo)
	server := simstub.NewServer(table, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go table.Run(ctx, tickInterval)

	srv := &http.Server{
		Addr:         listenAddr,
		Handler:      server.Routes(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", listenAddr).Msg("simulator stub listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
