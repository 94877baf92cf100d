package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	gcstorage "cloud.google.com/go/storage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Krause140/eudr-monitor-24-7/internal/api"
	"github.com/Krause140/eudr-monitor-24-7/internal/clock/system"
	"github.com/Krause140/eudr-monitor-24-7/internal/config"
	collyfetcher "github.com/Krause140/eudr-monitor-24-7/internal/fetcher/colly"
	"github.com/Krause140/eudr-monitor-24-7/internal/hash/sha256"
	"github.com/Krause140/eudr-monitor-24-7/internal/logging"
	"github.com/Krause140/eudr-monitor-24-7/internal/metrics"
	"github.com/Krause140/eudr-monitor-24-7/internal/monitor"
	"github.com/Krause140/eudr-monitor-24-7/internal/notifier/pubsub"
	"github.com/Krause140/eudr-monitor-24-7/internal/notifier/webhook"
	filestore "github.com/Krause140/eudr-monitor-24-7/internal/storage/file"
	"github.com/Krause140/eudr-monitor-24-7/internal/storage/gcs"
	"github.com/Krause140/eudr-monitor-24-7/internal/storage/postgres"
)

// components bundles everything the serve and sweep commands share.
type components struct {
	registry  *monitor.Registry
	state     *monitor.State
	scheduler *monitor.Scheduler
	store     monitor.SnapshotStore
	closers   []func()
}

func (c *components) close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the monitor with its scheduler and HTTP API.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return fmt.Errorf("logger init: %w", err)
	}
	defer logger.Sync() //nolint:errcheck // best-effort flush
	zap.ReplaceGlobals(logger)
	metrics.Init()

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	comps, err := buildComponents(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer comps.close()

	apiServer := api.NewServer(comps.state, comps.scheduler, comps.store, logger.Named("api"))
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("scheduler started", zap.Duration("interval", cfg.Monitor.Interval))
		comps.scheduler.Run(ctx)
	}()

	go func() {
		logger.Info("http server started", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}

	// Flush the final state with a fresh context; ctx is already canceled.
	if comps.store != nil {
		if err := comps.store.Save(shutdownCtx, comps.state.Export()); err != nil {
			logger.Error("final state save failed", zap.Error(err))
		} else {
			logger.Info("final state saved")
		}
	}
	logger.Info("shutdown complete")
	return nil
}

// buildComponents assembles the sweep pipeline from config. Provider switches
// select the snapshot store and notification channel.
func buildComponents(ctx context.Context, cfg config.Config, logger *zap.Logger) (*components, error) {
	registry, err := monitor.NewRegistry(cfg.Sources)
	if err != nil {
		return nil, fmt.Errorf("build source catalog: %w", err)
	}
	state := monitor.NewState(registry, monitor.StateConfig{
		EventCapacity:  cfg.Monitor.EventCapacity,
		SweepCapacity:  cfg.Monitor.SweepCapacity,
		ChangeCapacity: cfg.Monitor.ChangeCapacity,
	})

	comps := &components{registry: registry, state: state}

	store, err := buildSnapshotStore(ctx, cfg, comps)
	if err != nil {
		return nil, err
	}
	comps.store = store

	if store != nil {
		snap, found, loadErr := store.Load(ctx)
		switch {
		case loadErr != nil:
			logger.Warn("stored state unreadable, starting fresh", zap.Error(loadErr))
		case found:
			state.Restore(snap)
			logger.Info("state restored",
				zap.Int("total_sweeps", snap.TotalSweeps),
				zap.Int("tracked_sources", len(snap.History)),
			)
		default:
			logger.Info("no stored state, starting fresh")
		}
	}

	notifier, err := buildNotifier(ctx, cfg, logger, comps)
	if err != nil {
		return nil, err
	}

	fetcher := collyfetcher.New(collyfetcher.Config{
		UserAgent: cfg.Monitor.UserAgent,
		Timeout:   cfg.Monitor.FetchTimeout,
	})

	comps.scheduler = monitor.NewScheduler(
		monitor.SchedulerConfig{
			Interval:     cfg.Monitor.Interval,
			Spacing:      cfg.Monitor.Spacing,
			FetchTimeout: cfg.Monitor.FetchTimeout,
		},
		registry,
		state,
		fetcher,
		sha256.New(),
		system.New(),
		notifier,
		store,
		logger.Named("scheduler"),
	)
	return comps, nil
}

func buildSnapshotStore(ctx context.Context, cfg config.Config, comps *components) (monitor.SnapshotStore, error) {
	switch cfg.Snapshot.Provider {
	case "file":
		store, err := filestore.New(cfg.Snapshot.Path)
		if err != nil {
			return nil, fmt.Errorf("file snapshot store: %w", err)
		}
		return store, nil
	case "postgres":
		store, err := postgres.New(ctx, postgres.Config{
			DSN:      cfg.Snapshot.Postgres.DSN,
			Table:    cfg.Snapshot.Postgres.Table,
			MaxConns: cfg.Snapshot.Postgres.MaxConns,
			MinConns: cfg.Snapshot.Postgres.MinConns,
		})
		if err != nil {
			return nil, fmt.Errorf("postgres snapshot store: %w", err)
		}
		comps.closers = append(comps.closers, store.Close)
		return store, nil
	case "gcs":
		client, err := gcstorage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("gcs client: %w", err)
		}
		comps.closers = append(comps.closers, func() { _ = client.Close() })
		store, err := gcs.New(client, gcs.Config{
			Bucket: cfg.Snapshot.GCS.Bucket,
			Object: cfg.Snapshot.GCS.Object,
		})
		if err != nil {
			return nil, fmt.Errorf("gcs snapshot store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown snapshot provider %q", cfg.Snapshot.Provider)
	}
}

func buildNotifier(ctx context.Context, cfg config.Config, logger *zap.Logger, comps *components) (monitor.Notifier, error) {
	switch cfg.Notify.Provider {
	case "webhook":
		if cfg.Notify.WebhookURL == "" {
			logger.Info("no webhook endpoint configured, alerts disabled")
			return nil, nil
		}
		n, err := webhook.New(webhook.Config{
			Endpoint: cfg.Notify.WebhookURL,
			Timeout:  cfg.Notify.Timeout,
		}, logger.Named("webhook"))
		if err != nil {
			return nil, fmt.Errorf("webhook notifier: %w", err)
		}
		return n, nil
	case "pubsub":
		n, err := pubsub.New(ctx, cfg.Notify.PubSub.ProjectID, cfg.Notify.PubSub.TopicName)
		if err != nil {
			return nil, fmt.Errorf("pubsub notifier: %w", err)
		}
		comps.closers = append(comps.closers, func() { _ = n.Close() })
		return n, nil
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown notify provider %q", cfg.Notify.Provider)
	}
}
