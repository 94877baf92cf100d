package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Krause140/eudr-monitor-24-7/internal/config"
	"github.com/Krause140/eudr-monitor-24-7/internal/logging"
)

func newSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Run a single sweep over the catalog and exit.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSweep(cmd.Context())
		},
	}
}

func runSweep(ctx context.Context) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return fmt.Errorf("logger init: %w", err)
	}
	defer logger.Sync() //nolint:errcheck // best-effort flush

	comps, err := buildComponents(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer comps.close()

	if err := comps.scheduler.RunOnce(ctx); err != nil {
		return err
	}

	status := comps.state.Status()
	logger.Info("sweep complete",
		zap.Int("sources_checked", comps.registry.Len()),
		zap.Int("unread_changes", status.UnreadChanges),
	)
	return nil
}
