package commands

import (
	"context"
	"log/slog"
	"os"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/sheetwatch/internal/config"
	"git.home.luguber.info/inful/sheetwatch/internal/logfields"
	"git.home.luguber.info/inful/sheetwatch/internal/metrics"
	"git.home.luguber.info/inful/sheetwatch/internal/notify"
	"git.home.luguber.info/inful/sheetwatch/internal/version"
	"git.home.luguber.info/inful/sheetwatch/internal/watcher"
)

// RunCmd implements the 'run' command.
type RunCmd struct{}

func (r *RunCmd) Run(_ *Global, root *CLI) error {
	// Signals during startup must still end in a clean exit, so the handler
	// is installed before anything else is built.
	shutdown := watcher.NewShutdown()
	stop := shutdown.NotifyOnSignal(os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(root.EnvFile)
	if err != nil {
		return err
	}
	return RunWatch(context.Background(), cfg, shutdown)
}

// newNotifier builds the notifier; replaced in tests.
var newNotifier = func(cfg *config.Config) (notify.Notifier, error) {
	return notify.New(cfg)
}

// RunWatch wires the collaborators and blocks until shutdown is requested.
// A request that arrives while collaborators are being built makes the loop
// exit before its first read.
func RunWatch(ctx context.Context, cfg *config.Config, shutdown *watcher.Shutdown) error {
	slog.Info("Starting sheetwatch",
		slog.String("version", version.Version),
		slog.String("config", cfg.String()))

	targets, err := loadTargets(cfg)
	if err != nil {
		return err
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			slog.Warn("Failed to close state store", logfields.Error(cerr))
		}
	}()

	reader, err := newReader(ctx, cfg)
	if err != nil {
		return err
	}

	notifier, err := newNotifier(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := notifier.Close(); cerr != nil {
			slog.Warn("Failed to close notifier", logfields.Error(cerr))
		}
	}()

	recorder, stopMetrics := startMetrics(cfg.MetricsAddr)
	defer stopMetrics()

	w := watcher.New(targets, reader, notifier, store,
		watcher.WithInterval(cfg.PollIntervalSeconds),
		watcher.WithShutdown(shutdown),
		watcher.WithRecorder(recorder),
	)
	return w.Run(ctx)
}

// startMetrics serves Prometheus metrics on addr. An empty addr disables the
// endpoint and returns a no-op recorder.
func startMetrics(addr string) (metrics.Recorder, func()) {
	if addr == "" {
		return metrics.NoopRecorder{}, func() {}
	}
	reg := prom.NewRegistry()
	recorder := metrics.NewPrometheusRecorder(reg)
	srv := metrics.NewServer(addr, reg)
	srv.Start()
	return recorder, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Stop(ctx); err != nil {
			slog.Warn("Failed to stop metrics server", logfields.Error(err))
		}
	}
}
