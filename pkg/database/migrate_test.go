package database

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/sapan_backend/config"
)

func TestMigrationsArePaired(t *testing.T) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		default:
			t.Errorf("unexpected file %s", name)
		}
	}
	assert.Equal(t, ups, downs)
}

func TestBookingUniqueIndexPresent(t *testing.T) {
	b, err := fs.ReadFile(migrationsFS, "migrations/000002_office_hours.up.sql")
	require.NoError(t, err)
	assert.Contains(t, string(b), "bookings_one_confirmed_per_start")
	assert.Contains(t, string(b), "WHERE status = 'confirmed'")
}

func TestDSN(t *testing.T) {
	c := FromCentralConfig(config.DatabaseConfig{Host: "db", Port: 5433, User: "u", Password: "p", DBName: "sapan"})
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=sapan sslmode=disable", c.DSN())
	assert.Equal(t, 25, c.MaxOpenConns)
}
