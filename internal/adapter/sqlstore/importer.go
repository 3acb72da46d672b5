package sqlstore

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/couchcryptid/water-safety-service/internal/domain"
)

// columns are the dataset fields the store reads, in insert order.
var columns = []string{
	"PWSID",
	"VIOLATION_DESC",
	"NON_COMPL_PER_BEGIN_DATE",
	"NON_COMPL_PER_END_DATE",
	"VIOLATION_STATUS",
	"IS_HEALTH_BASED_IND",
}

// ImportStats summarizes one CSV import.
type ImportStats struct {
	Rows    int
	Skipped int // rows without a PWSID

	// UnknownEnd counts imported rows whose end date could not be parsed.
	// They are stored with a NULL end, which reads as still open.
	UnknownEnd int
}

// Import loads an SDWA violations CSV export (as published by EPA ECHO) into
// db, creating the table if it does not exist. Extra columns are ignored and
// header names may carry a "SDWA_VIOLATIONS_ENFORCEMENT." prefix. Dates are
// normalized to ISO; empty or unparseable dates are stored as NULL. Only rows
// without a PWSID are skipped. The load runs in one transaction.
func Import(ctx context.Context, db *sql.DB, driver string, r io.Reader, logger *slog.Logger) (ImportStats, error) {
	var stats ImportStats
	d, err := dialectFor(driver)
	if err != nil {
		return stats, err
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		return stats, fmt.Errorf("read csv header: %w", err)
	}
	colIdx, err := indexColumns(header)
	if err != nil {
		return stats, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return stats, fmt.Errorf("begin import: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, d.createTable()); err != nil {
		return stats, fmt.Errorf("create %s: %w", table, err)
	}
	insert, err := tx.PrepareContext(ctx, d.rebind(
		`INSERT INTO `+table+` (`+strings.Join(columns, ", ")+`) VALUES (?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return stats, fmt.Errorf("prepare insert: %w", err)
	}
	defer insert.Close()

	line := 1
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return stats, fmt.Errorf("read csv line %d: %w", line, err)
		}

		get := func(col string) string {
			i := colIdx[col]
			if i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		pwsid := get("PWSID")
		if pwsid == "" {
			stats.Skipped++
			logger.Debug("skipping violation row without pwsid", "line", line)
			continue
		}

		// Rows with missing or garbled dates are kept; the open-health check
		// does not read dates.
		begin := importDate(get("NON_COMPL_PER_BEGIN_DATE"))
		if begin.garbled {
			logger.Warn("unparseable period begin date stored as NULL", "line", line, "pwsid", pwsid, "value", begin.raw)
		}
		end := importDate(get("NON_COMPL_PER_END_DATE"))
		if end.garbled {
			stats.UnknownEnd++
			logger.Warn("unparseable period end date stored as NULL, row is treated as open",
				"line", line, "pwsid", pwsid, "value", end.raw)
		}

		if _, err := insert.ExecContext(ctx,
			pwsid,
			get("VIOLATION_DESC"),
			begin.value(),
			end.value(),
			get("VIOLATION_STATUS"),
			strings.ToUpper(get("IS_HEALTH_BASED_IND")),
		); err != nil {
			return stats, fmt.Errorf("insert line %d: %w", line, err)
		}
		stats.Rows++
	}

	if err := tx.Commit(); err != nil {
		return stats, fmt.Errorf("commit import: %w", err)
	}
	logger.Info("violations imported", "rows", stats.Rows, "skipped", stats.Skipped)
	return stats, nil
}

type csvDate struct {
	raw     string
	t       time.Time
	ok      bool
	garbled bool
}

func importDate(raw string) csvDate {
	d := csvDate{raw: raw}
	if raw == "" {
		return d
	}
	d.t, d.ok = parseImportDate(raw)
	d.garbled = !d.ok
	return d
}

// ECHO exports write dates as MM/DD/YYYY.
var exportDateLayouts = []string{"01/02/2006", "1/2/2006"}

func parseImportDate(s string) (time.Time, bool) {
	if t, ok := parseDate(s); ok {
		return t, true
	}
	for _, layout := range exportDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return domain.DateOf(t), true
		}
	}
	return time.Time{}, false
}

// value is the ISO date to insert, or nil for NULL.
func (d csvDate) value() any {
	if !d.ok {
		return nil
	}
	return d.t.Format(time.DateOnly)
}

func indexColumns(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.ToUpper(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		h = strings.TrimPrefix(h, table+".")
		idx[h] = i
	}
	var missing []string
	for _, col := range columns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("csv is missing columns: %s", strings.Join(missing, ", "))
	}
	return idx, nil
}
