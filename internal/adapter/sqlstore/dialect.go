package sqlstore

import (
	"fmt"
	"strconv"
	"strings"
)

// Driver names registered by the imported database/sql drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// dialect papers over the differences between the bundled SQLite dataset,
// where dates are ISO text and missing end dates may be empty strings, and a
// Postgres copy with real DATE columns.
type dialect struct {
	driver string
}

func dialectFor(driver string) (dialect, error) {
	switch driver {
	case DriverSQLite, DriverPostgres:
		return dialect{driver: driver}, nil
	default:
		return dialect{}, fmt.Errorf("unsupported store driver %q", driver)
	}
}

// endDate is the end-of-period column with empty text normalized to NULL.
func (d dialect) endDate() string {
	if d.driver == DriverSQLite {
		return "NULLIF(NON_COMPL_PER_END_DATE, '')"
	}
	return "NON_COMPL_PER_END_DATE"
}

// dateOf truncates expr to a calendar date.
func (d dialect) dateOf(expr string) string {
	if d.driver == DriverSQLite {
		return "DATE(" + expr + ")"
	}
	return "(" + expr + ")::date"
}

// createTable is the DDL for an importable copy of the dataset.
func (d dialect) createTable() string {
	dateType := "TEXT"
	if d.driver == DriverPostgres {
		dateType = "DATE"
	}
	return `CREATE TABLE IF NOT EXISTS ` + table + ` (
	PWSID TEXT NOT NULL,
	VIOLATION_DESC TEXT,
	NON_COMPL_PER_BEGIN_DATE ` + dateType + `,
	NON_COMPL_PER_END_DATE ` + dateType + `,
	VIOLATION_STATUS TEXT,
	IS_HEALTH_BASED_IND TEXT
)`
}

// rebind rewrites ? placeholders to $n for Postgres.
func (d dialect) rebind(query string) string {
	if d.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
