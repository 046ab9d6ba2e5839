package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/terrpan/acceptjson/internal/app"
	"github.com/terrpan/acceptjson/internal/config"
	"github.com/terrpan/acceptjson/internal/otel"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. Running the root command without a
// subcommand starts the server.
func newRootCmd() *cobra.Command {
	var configPath string

	version, commit, buildTime := config.GetBuildInfo()

	rootCmd := &cobra.Command{
		Use:   "acceptjson",
		Short: "HTTP server that makes API requests accept JSON",
		Long: `acceptjson serves an API whose requests always advertise application/json
in their Accept header, so clients that omit the header get JSON responses.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, buildTime),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.InitConfig(); err != nil {
				return fmt.Errorf("failed to initialize config: %w", err)
			}

			return config.LoadFile(configPath)
		},
		RunE: runServe,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file")
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newNormalizeCmd())

	return rootCmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return run(ctx)
}

// run starts the server and blocks until ctx is done or the server fails.
func run(ctx context.Context) error {
	if config.AppConfig.OTLP.EnableOTLP {
		tracing, err := otel.NewTracing(ctx, otel.TracingOptions{
			ServiceName: "acceptjson",
			StdOut:      config.AppConfig.OTLP.OTLPStdOut,
		})
		if err != nil {
			return fmt.Errorf("failed to setup OpenTelemetry: %w", err)
		}

		tracing.SetAsGlobal()

		defer func() {
			if err := tracing.Shutdown(context.Background()); err != nil {
				fmt.Fprintf(os.Stderr, "Error shutting down OpenTelemetry: %v\n", err)
			}
		}()
	}

	container, err := app.NewContainer(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize application container: %w", err)
	}

	container.Logger.Info("Starting acceptjson server",
		"version", config.AppConfig.Version,
		"commit", config.AppConfig.Commit,
		"build_time", config.AppConfig.BuildTime,
		"port", config.AppConfig.Port,
	)

	server := app.NewServer(container, config.AppConfig.Port)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}

		return nil
	case <-ctx.Done():
	}

	container.Logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		container.Logger.Error("Server forced to shutdown", "error", err)
	}

	if err := container.Shutdown(shutdownCtx); err != nil {
		container.Logger.Error("Failed to shutdown container", "error", err)
	}

	container.Logger.Info("Server exited")

	return nil
}
