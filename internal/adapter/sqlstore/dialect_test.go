package sqlstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialect_Rebind(t *testing.T) {
	pg, err := dialectFor(DriverPostgres)
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1 WHERE a = $1 AND b >= $2", pg.rebind("SELECT 1 WHERE a = ? AND b >= ?"))

	lite, err := dialectFor(DriverSQLite)
	require.NoError(t, err)
	assert.Equal(t, "a = ?", lite.rebind("a = ?"))
}

func TestDialect_Dates(t *testing.T) {
	pg, _ := dialectFor(DriverPostgres)
	lite, _ := dialectFor(DriverSQLite)

	assert.Equal(t, "(NON_COMPL_PER_END_DATE)::date", pg.dateOf(pg.endDate()))
	assert.Equal(t, "DATE(NULLIF(NON_COMPL_PER_END_DATE, ''))", lite.dateOf(lite.endDate()))
}

func TestDialectFor_Unknown(t *testing.T) {
	_, err := dialectFor("mysql")
	assert.Error(t, err)
}
