package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/fd1az/arbitrage-scout/business/market"
	"github.com/fd1az/arbitrage-scout/business/scout"
	scoutDI "github.com/fd1az/arbitrage-scout/business/scout/di"
	"github.com/fd1az/arbitrage-scout/internal/apm"
	"github.com/fd1az/arbitrage-scout/internal/config"
	"github.com/fd1az/arbitrage-scout/internal/health"
	"github.com/fd1az/arbitrage-scout/internal/logger"
	"github.com/fd1az/arbitrage-scout/internal/metrics"
	"github.com/fd1az/arbitrage-scout/internal/monolith"
	"github.com/fd1az/arbitrage-scout/pkg/ui"
)

const shutdownTimeout = 5 * time.Second

func newRunCommand() *cobra.Command {
	var cliMode bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Scan the configured markets until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// TUI is the default, CLI is for debugging and headless hosts
			return run(cmd.Context(), configPath, !cliMode)
		},
	}

	cmd.Flags().BoolVar(&cliMode, "cli", false, "Run in CLI mode with logs (no TUI)")
	return cmd
}

func run(ctx context.Context, configPath string, tuiMode bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Set TUI mode in config so modules know
	cfg.Scout.TUIMode = tuiMode

	log := newLogger(cfg, tuiMode)
	log.Info(ctx, "starting arbitrage scout",
		"version", version,
		"environment", cfg.App.Environment,
		"markets", cfg.Scout.Markets,
	)

	traceProvider, err := apm.NewTraceProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		return fmt.Errorf("failed to init tracing: %w", err)
	}
	defer func() {
		if err := traceProvider.Stop(); err != nil {
			log.Warn(ctx, "trace provider shutdown", "error", err)
		}
	}()

	if cfg.Telemetry.Enabled {
		meterProvider, reg, err := metrics.NewMetricProvider(ctx, metrics.FromTelemetry(cfg.Telemetry)...)
		if err != nil {
			return fmt.Errorf("failed to init metrics: %w", err)
		}
		metricsServer := metrics.NewServer(cfg.Telemetry.PrometheusPort, reg, log)
		metricsServer.Start(ctx)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = metricsServer.Stop(shutdownCtx)
			_ = meterProvider.Shutdown(shutdownCtx)
		}()
	}

	mono := monolith.New(cfg, log)
	defer func() {
		if err := mono.Close(); err != nil {
			log.Error(context.Background(), "shutdown", "error", err)
		}
	}()

	scoutMod := &scout.Module{}
	// Define modules in dependency order
	modules := []monolith.Module{
		&market.Module{}, // provides the MarketService
		scoutMod,         // scans the MarketService
	}

	if err := mono.RegisterModules(modules...); err != nil {
		return fmt.Errorf("failed to register modules: %w", err)
	}

	if cfg.Health.Enabled {
		healthServer := health.NewServer(cfg.Health.Port, version, log)
		healthServer.RegisterCheck("scanner", scoutMod.ScannerCheck())
		healthServer.RegisterCheck("tick", scoutDI.GetHeartbeat(mono.Services()).Check(cfg.Health.MaxTickAge))
		healthServer.Start(ctx)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = healthServer.Stop(shutdownCtx)
		}()
	}

	if tuiMode {
		// TUI mode: Start modules in background so TUI shows immediately
		startFunc := func(ctx context.Context) error {
			ui.Send(ui.StartupMsg{Step: "config", Status: "connected"})
			if err := mono.StartModules(ctx, modules...); err != nil {
				return fmt.Errorf("failed to start modules: %w", err)
			}
			return nil
		}
		return runTUI(ctx, startFunc)
	}

	// CLI mode: Start modules synchronously
	if err := mono.StartModules(ctx, modules...); err != nil {
		return fmt.Errorf("failed to start modules: %w", err)
	}
	return runCLI(ctx, log)
}

func newLogger(cfg *config.Config, tuiMode bool) *logger.Logger {
	level := logger.ParseLevel(cfg.App.LogLevel)
	if tuiMode {
		// In TUI mode, suppress logs (discard output)
		return logger.New(io.Discard, level, cfg.App.Name, nil)
	}
	if cfg.App.LogFormat == "text" {
		return logger.NewText(os.Stderr, level, cfg.App.Name, nil)
	}
	return logger.New(os.Stderr, level, cfg.App.Name, nil)
}

func runCLI(ctx context.Context, log logger.LoggerInterface) error {
	log.Info(ctx, "all modules started, scanning")

	// Wait for shutdown
	<-ctx.Done()

	log.Info(context.Background(), "shutting down")
	return nil
}

func runTUI(ctx context.Context, startFunc func(context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Channel to receive StartModulesMsg signal
	startSignal := make(chan struct{}, 1)
	ui.OnStartModules = func() {
		select {
		case startSignal <- struct{}{}:
		default:
		}
	}

	// Create and start the TUI program IMMEDIATELY (shows welcome screen)
	p := tea.NewProgram(ui.New(), tea.WithAltScreen())
	ui.Program = p

	errCh := make(chan error, 1)
	go func() {
		// Wait for welcome screen to complete (StartModulesMsg signal)
		select {
		case <-startSignal:
		case <-ctx.Done():
			errCh <- nil
			return
		}

		// Connections happen here, the TUI shows progress
		if err := startFunc(ctx); err != nil {
			ui.Send(ui.ErrorMsg{Error: err})
			errCh <- err
			return
		}

		<-ctx.Done()
		p.Quit()
		errCh <- nil
	}()

	// Run TUI (blocking) - shows immediately with welcome screen
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("TUI error: %w", err)
	}
	cancel()

	// Check for scanner errors
	select {
	case err := <-errCh:
		return err
	default:
		return nil
	}
}
