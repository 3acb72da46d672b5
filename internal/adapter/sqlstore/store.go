package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/couchcryptid/water-safety-service/internal/domain"
)

// DefaultPageSize bounds ViolationsFor when the caller passes no limit.
const DefaultPageSize = 50

const table = "SDWA_VIOLATIONS_ENFORCEMENT"

// Store implements domain.ComplianceStore over database/sql.
type Store struct {
	db      *sql.DB
	dialect dialect
	logger  *slog.Logger

	listQuery  string
	redQuery   string
	amberQuery string
}

// Open connects to the compliance dataset. SQLite databases are opened
// read-only with query_only set; the connection is verified before
// returning.
func Open(ctx context.Context, driver, dsn string, logger *slog.Logger) (*Store, error) {
	if _, err := dialectFor(driver); err != nil {
		return nil, err
	}
	if driver == DriverSQLite {
		dsn = readOnlyDSN(dsn)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w: %w", driver, domain.ErrStoreUnavailable, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s store: %w: %w", driver, domain.ErrStoreUnavailable, err)
	}

	s, err := New(db, driver, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.Info("compliance store opened", "driver", driver)
	return s, nil
}

// New wraps an already opened database handle.
func New(db *sql.DB, driver string, logger *slog.Logger) (*Store, error) {
	d, err := dialectFor(driver)
	if err != nil {
		return nil, err
	}
	end := d.endDate()
	return &Store{
		db:      db,
		dialect: d,
		logger:  logger,
		listQuery: d.rebind(`SELECT VIOLATION_DESC, NON_COMPL_PER_BEGIN_DATE, ` + end + `, VIOLATION_STATUS, IS_HEALTH_BASED_IND
FROM ` + table + `
WHERE PWSID = ?
ORDER BY NON_COMPL_PER_BEGIN_DATE DESC NULLS LAST
LIMIT ?`),
		redQuery: d.rebind(`SELECT EXISTS (
	SELECT 1 FROM ` + table + `
	WHERE PWSID = ?
	  AND IS_HEALTH_BASED_IND = 'Y'
	  AND (` + end + ` IS NULL OR VIOLATION_STATUS IN ('Unaddressed', 'Addressed'))
)`),
		amberQuery: d.rebind(`SELECT EXISTS (
	SELECT 1 FROM ` + table + `
	WHERE PWSID = ?
	  AND ` + d.dateOf(end) + ` >= ` + d.dateOf("?") + `
)`),
	}, nil
}

// readOnlyDSN turns a SQLite path or file: URI into a read-only URI.
func readOnlyDSN(dsn string) string {
	if !strings.HasPrefix(dsn, "file:") {
		dsn = "file:" + dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	if !strings.Contains(dsn, "mode=") {
		dsn += sep + "mode=ro"
		sep = "&"
	}
	if !strings.Contains(dsn, "query_only") {
		dsn += sep + "_pragma=query_only(1)"
	}
	return dsn
}

// Ping reports whether the dataset is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping store: %w: %w", domain.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// ViolationsFor lists a system's records, most recent compliance period first.
func (s *Store) ViolationsFor(ctx context.Context, systemID string, limit int) ([]domain.ViolationRecord, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}

	rows, err := s.db.QueryContext(ctx, s.listQuery, systemID, limit)
	if err != nil {
		return nil, fmt.Errorf("query violations for %s: %w: %w", systemID, domain.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	records := make([]domain.ViolationRecord, 0, limit)
	for rows.Next() {
		var desc, begin, end, status, health sql.NullString
		if err := rows.Scan(&desc, &begin, &end, &status, &health); err != nil {
			return nil, fmt.Errorf("scan violation for %s: %w: %w", systemID, domain.ErrStoreUnavailable, err)
		}

		rec := domain.ViolationRecord{
			Description: desc.String,
			Status:      domain.ViolationStatus(strings.TrimSpace(status.String)),
			HealthBased: strings.TrimSpace(health.String) == "Y",
		}
		if t, ok := parseDate(begin.String); ok {
			rec.PeriodStart = t
		}
		if t, ok := parseDate(end.String); ok {
			rec.PeriodEnd = &t
		} else if end.Valid && end.String != "" {
			s.logger.Warn("unparseable period end date", "system_id", systemID, "value", end.String)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate violations for %s: %w: %w", systemID, domain.ErrStoreUnavailable, err)
	}
	return records, nil
}

// HasOpenHealthViolation reports whether any health-based record is still
// open or carries an Unaddressed or Addressed status.
func (s *Store) HasOpenHealthViolation(ctx context.Context, systemID string) (bool, error) {
	return s.exists(ctx, s.redQuery, systemID)
}

// HasViolationEndedSince reports whether any record's period ended on or
// after the cutoff date.
func (s *Store) HasViolationEndedSince(ctx context.Context, systemID string, cutoff time.Time) (bool, error) {
	return s.exists(ctx, s.amberQuery, systemID, domain.DateOf(cutoff).Format(time.DateOnly))
}

func (s *Store) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var found bool
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&found); err != nil {
		return false, fmt.Errorf("existence query: %w: %w", domain.ErrStoreUnavailable, err)
	}
	return found, nil
}

// dateLayouts are the stored date forms SQLite's DATE() also understands, so
// records parsed from a listing agree with the existence queries. Other
// forms read as missing.
var dateLayouts = []string{
	time.DateOnly,
	time.DateTime,
	time.RFC3339Nano,
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return domain.DateOf(t), true
		}
	}
	return time.Time{}, false
}
