package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stacklok/country-cache-server/internal/app"
	"github.com/stacklok/country-cache-server/internal/config"
	"github.com/stacklok/country-cache-server/internal/telemetry"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the country cache API server",
	Long: `Start the country cache API server.

The configuration file (--config) is optional. Without it the server stores
data under ./data, writes the summary image under ./cache and fetches from the
default public providers. A database section in the file switches storage to
PostgreSQL.`,
	RunE: runServe,
}

const defaultGracefulTimeout = 30 * time.Second

func init() {
	serveCmd.Flags().String("address", app.DefaultHTTPAddress, "Address to listen on")
	serveCmd.Flags().String("config", "", "Path to configuration file (YAML format)")
	serveCmd.Flags().Bool("auto-migrate", false, "Apply pending database migrations before serving")

	for _, name := range []string{"address", "config", "auto-migrate"} {
		if err := viper.BindPFlag(name, serveCmd.Flags().Lookup(name)); err != nil {
			slog.Error("Failed to bind flag", "flag", name, "error", err)
			os.Exit(1)
		}
	}
}

// loadConfig reads the configuration file, or returns the defaults when path is empty
func loadConfig(path string) (*config.Config, error) {
	var opts []config.Option
	if path != "" {
		opts = append(opts, config.WithConfigPath(path))
	}
	cfg, err := config.LoadConfig(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// buildServer wires telemetry and the application from the loaded configuration
func buildServer(
	ctx context.Context, cfg *config.Config, address string, autoMigrate bool,
) (*app.CountryCacheApp, *telemetry.Telemetry, error) {
	tel, err := telemetry.New(ctx, cfg.Telemetry)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	opts := []app.CountryCacheAppOptions{
		app.WithConfig(cfg),
		app.WithAddress(address),
		app.WithAutoMigrate(autoMigrate),
		app.WithMeterProvider(tel.MeterProvider()),
		app.WithTracerProvider(tel.TracerProvider()),
	}
	if h := tel.MetricsHandler(); h != nil {
		opts = append(opts, app.WithMetricsHandler(h))
	}

	countryApp, err := app.NewCountryCacheApp(ctx, opts...)
	if err != nil {
		if shutdownErr := tel.Shutdown(ctx); shutdownErr != nil {
			slog.Warn("Failed to shut down telemetry", "error", shutdownErr)
		}
		return nil, nil, fmt.Errorf("failed to build application: %w", err)
	}
	return countryApp, tel, nil
}

func runServe(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	configPath := viper.GetString("config")
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	slog.Info("Loaded configuration",
		"path", configPath,
		"storage", cfg.GetStorageType(),
		"gdp_mode", cfg.Refresh.GDPMultiplier.GetMode())

	countryApp, tel, err := buildServer(ctx, cfg, viper.GetString("address"), viper.GetBool("auto-migrate"))
	if err != nil {
		return err
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- countryApp.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-quit:
		slog.Info("Received shutdown signal", "signal", sig.String())
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			runErr = err
		}
	}

	if err := countryApp.Stop(defaultGracefulTimeout); err != nil {
		runErr = errors.Join(runErr, err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultGracefulTimeout)
	defer cancel()
	if err := tel.Shutdown(shutdownCtx); err != nil {
		slog.Warn("Failed to shut down telemetry", "error", err)
	}

	return runErr
}
