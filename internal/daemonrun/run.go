package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/google/uuid"

	"tvmeta/internal/config"
	"tvmeta/internal/daemon"
	"tvmeta/internal/daemonctl"
	"tvmeta/internal/logging"
	"tvmeta/internal/metrics"
	"tvmeta/internal/resolver"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel    string
	Development bool
}

// Run starts the tvmeta daemon and blocks until cmdCtx is cancelled or the
// process receives SIGINT/SIGTERM.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	level := cfg.Logging.Level
	if opts.LogLevel != "" {
		level = opts.LogLevel
	}
	outputs := []string{"stderr"}
	if cfg.Logging.File != "" {
		outputs = append(outputs, cfg.Logging.File)
	}
	logger, err := logging.New(logging.Options{
		Level:       level,
		Format:      cfg.Logging.Format,
		OutputPaths: outputs,
		Rotation: logging.Rotation{
			MaxSizeMB:  cfg.Logging.MaxSizeMB,
			MaxBackups: cfg.Logging.MaxBackups,
			MaxAgeDays: cfg.Logging.MaxAgeDays,
			Compress:   cfg.Logging.Compress,
		},
		Development: opts.Development,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	runID := uuid.NewString()
	logger = logger.With(logging.String("run_id", runID))

	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}
	logConfigSnapshot(logger, cfg)

	pidPath := daemonctl.PIDPath(cfg)
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	collector := metrics.New()
	engine, closeStore, err := resolver.Open(cfg, logger, collector)
	if err != nil {
		logger.Error("open resolution engine", logging.Error(err))
		return err
	}
	defer closeStore() //nolint:errcheck

	d, err := daemon.New(cfg, engine, collector, logger)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	if err := d.Start(signalCtx); err != nil {
		logging.ErrorWithContext(logger, "daemon start failed", "daemon_start_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check for another tvmetad and the metrics.bind address"),
			logging.String(logging.FieldImpact, "no background sweeping or warming"),
		)
		return err
	}

	<-signalCtx.Done()
	logger.Info("tvmetad shutting down")
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}

func logConfigSnapshot(logger *slog.Logger, cfg *config.Config) {
	if logger == nil || cfg == nil {
		return
	}
	logger.Info("configuration snapshot",
		logging.String(logging.FieldEventType, "config_snapshot"),
		logging.Bool("catalog_credentials_present", cfg.HasCatalogCredentials()),
		logging.String("catalog_base_url", cfg.Catalog.BaseURL),
		logging.String("catalog_language", cfg.Catalog.Language),
		logging.Float64("requests_per_second", cfg.Catalog.RequestsPerSecond),
		logging.Int("retry_attempts", cfg.Catalog.RetryAttempts),
		logging.String("db_path", cfg.Cache.DBPath),
		logging.Duration("stale_after", cfg.StaleAfter()),
		logging.Duration("retention", cfg.Retention()),
		logging.Duration("sweep_interval", cfg.SweepInterval()),
		logging.Int("warm_series", len(cfg.Warm.Series)),
		logging.String("metrics_bind", cfg.Metrics.Bind),
	)
}
