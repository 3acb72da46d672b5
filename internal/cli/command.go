package cli

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/couchcryptid/water-safety-service/internal/config"
	"github.com/couchcryptid/water-safety-service/internal/observability"
)

// oneShot loads configuration and wires the pipeline for commands that run
// once and exit. Logs go to stderr so stdout carries only results, and
// metrics use a private registry.
func oneShot(cmd *cobra.Command) (*app, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logger := observability.NewLogger(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetricsWith(prometheus.NewRegistry())

	a, err := buildApp(cmd.Context(), cfg, logger, metrics, false)
	if err != nil {
		return nil, nil, err
	}
	return a, logger, nil
}
