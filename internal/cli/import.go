package cli

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/water-safety-service/internal/adapter/sqlstore"
	"github.com/couchcryptid/water-safety-service/internal/config"
	"github.com/couchcryptid/water-safety-service/internal/observability"
)

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <violations.csv>",
		Short: "Load an EPA SDWA violations CSV export into the compliance store",
		Long: `import reads a SDWA_VIOLATIONS_ENFORCEMENT CSV export from EPA ECHO and
appends its rows to the store named by STORE_DRIVER and STORE_DSN, creating
the table when needed. The serving commands open the store read-only; this is
the only command that writes to it.`,
		Args: cobra.ExactArgs(1),
		RunE: runImport,
	}
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := observability.NewLogger(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	if cfg.StoreDriver == sqlstore.DriverSQLite {
		if err := os.MkdirAll(filepath.Dir(cfg.StoreDSN), 0o755); err != nil {
			return err
		}
	}
	db, err := sql.Open(cfg.StoreDriver, cfg.StoreDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	stats, err := sqlstore.Import(cmd.Context(), db, cfg.StoreDriver, f, logger)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "imported %d rows (%d skipped) into %s\n", stats.Rows, stats.Skipped, cfg.StoreDSN)
	return nil
}
