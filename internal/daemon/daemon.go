package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/sourcegraph/conc"

	"tvmeta/internal/config"
	"tvmeta/internal/daemonctl"
	"tvmeta/internal/logging"
	"tvmeta/internal/metrics"
	"tvmeta/internal/resolver"
	"tvmeta/internal/services"
	"tvmeta/internal/sweeper"
)

const shutdownTimeout = 5 * time.Second

// Daemon runs background cache maintenance and enforces single-instance execution.
type Daemon struct {
	cfg     *config.Config
	engine  *resolver.Engine
	metrics *metrics.Collector
	logger  *slog.Logger
	sweeper *sweeper.Sweeper

	lockPath string
	lock     *flock.Flock

	lifecycle   sync.Mutex
	mu          sync.Mutex
	running     atomic.Bool
	cancel      context.CancelFunc
	wg          *conc.WaitGroup
	server      *http.Server
	metricsAddr string
	warm        []resolver.WarmResult
}

// Status represents daemon runtime information.
type Status struct {
	Running       bool   `json:"running"`
	DBPath        string `json:"db_path"`
	LockFilePath  string `json:"lock_file_path"`
	MetricsAddr   string `json:"metrics_addr,omitempty"`
	WarmRequested int    `json:"warm_requested"`
	WarmResolved  int    `json:"warm_resolved"`
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, engine *resolver.Engine, collector *metrics.Collector, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || engine == nil {
		return nil, errors.New("daemon requires config and resolution engine")
	}
	if cfg.Metrics.Bind != "" && collector == nil {
		return nil, errors.New("metrics.bind is set but no metrics collector was provided")
	}
	logger = logging.NewComponentLogger(logger, "daemon")

	sw, err := sweeper.New(engine, cfg.Cache.LockPath, cfg.SweepInterval(), cfg.Retention(), logger)
	if err != nil {
		return nil, fmt.Errorf("create sweeper: %w", err)
	}

	lockPath := daemonctl.LockPath(cfg)
	return &Daemon{
		cfg:      cfg,
		engine:   engine,
		metrics:  collector,
		logger:   logger,
		sweeper:  sw,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Start acquires the daemon lock and launches the sweeper, the warm list, and
// the metrics listener.
func (d *Daemon) Start(ctx context.Context) error {
	d.lifecycle.Lock()
	defer d.lifecycle.Unlock()
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("another tvmetad instance is already running against %s", d.cfg.Cache.DBPath)
	}

	if err := d.startMetricsServer(); err != nil {
		_ = d.lock.Unlock()
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.wg = conc.NewWaitGroup()
	d.wg.Go(func() {
		d.sweeper.Run(runCtx)
	})
	if names := d.cfg.Warm.Series; len(names) > 0 {
		d.wg.Go(func() {
			d.runWarm(runCtx, names)
		})
	}

	d.running.Store(true)
	d.logger.Info("tvmetad started",
		logging.String("lock", d.lockPath),
		logging.String("db", d.cfg.Cache.DBPath),
		logging.String("metrics_addr", d.MetricsAddr()),
		logging.Int("warm_series", len(d.cfg.Warm.Series)),
	)
	return nil
}

// Stop halts background work and releases the daemon lock.
func (d *Daemon) Stop() {
	d.lifecycle.Lock()
	defer d.lifecycle.Unlock()
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.mu.Lock()
	server := d.server
	d.server = nil
	d.metricsAddr = ""
	d.mu.Unlock()
	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := server.Shutdown(shutdownCtx); err != nil {
			d.logger.Warn("metrics listener shutdown", logging.Error(err))
		}
		cancel()
	}
	if d.wg != nil {
		d.wg.Wait()
		d.wg = nil
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("tvmetad stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	return nil
}

// Status reports runtime information.
func (d *Daemon) Status() Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	status := Status{
		Running:       d.running.Load(),
		DBPath:        d.cfg.Cache.DBPath,
		LockFilePath:  d.lockPath,
		MetricsAddr:   d.metricsAddr,
		WarmRequested: len(d.warm),
	}
	for _, res := range d.warm {
		if res.Match != nil {
			status.WarmResolved++
		}
	}
	return status
}

// MetricsAddr returns the bound metrics listener address, or "" when disabled.
func (d *Daemon) MetricsAddr() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.metricsAddr
}

func (d *Daemon) startMetricsServer() error {
	if d.cfg.Metrics.Bind == "" {
		return nil
	}
	listener, err := net.Listen("tcp", d.cfg.Metrics.Bind)
	if err != nil {
		return fmt.Errorf("listen on metrics.bind %q: %w", d.cfg.Metrics.Bind, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", d.metrics.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	server := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	d.mu.Lock()
	d.server = server
	d.metricsAddr = listener.Addr().String()
	d.mu.Unlock()
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.ErrorWithContext(d.logger, "metrics listener failed", "metrics_listener_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check metrics.bind"),
			)
		}
	}()
	return nil
}

func (d *Daemon) runWarm(ctx context.Context, names []string) {
	ctx = services.WithRequestID(ctx, uuid.NewString())
	results := d.engine.Warm(ctx, names, d.cfg.Warm.Concurrency)
	for _, res := range results {
		if res.Err != nil && !errors.Is(res.Err, context.Canceled) {
			logging.WarnWithContext(logging.WithContext(ctx, d.logger), "warm lookup failed", "warm_failed",
				logging.String("series_name", res.Name),
				logging.String("error_kind", services.Kind(res.Err)),
				logging.Error(res.Err),
				logging.String(logging.FieldImpact, "series resolves on first request instead"),
			)
		}
	}
	d.mu.Lock()
	d.warm = results
	d.mu.Unlock()
}
