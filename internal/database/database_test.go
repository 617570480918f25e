package database

import (
	"path/filepath"
	"testing"

	"clash-tracker/internal/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tableExists(t *testing.T, cfg *config.Config, name string) bool {
	t.Helper()
	db, err := New(cfg, zerolog.Nop())
	require.NoError(t, err)
	defer db.Close()

	var n int
	err = db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, name).Scan(&n)
	require.NoError(t, err)
	return n > 0
}

func TestNew_RunsMigrations(t *testing.T) {
	cfg := &config.Config{DBPath: filepath.Join(t.TempDir(), "clash.db")}

	assert.True(t, tableExists(t, cfg, "profiles"))
	assert.True(t, tableExists(t, cfg, "goose_db_version"))
}

func TestNew_IsIdempotent(t *testing.T) {
	cfg := &config.Config{DBPath: filepath.Join(t.TempDir(), "clash.db")}

	first, err := New(cfg, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := New(cfg, zerolog.Nop())
	require.NoError(t, err)
	defer second.Close()

	var mode string
	require.NoError(t, second.QueryRow(`PRAGMA journal_mode`).Scan(&mode))
	assert.Equal(t, "wal", mode)
}

func TestNewX_SharesHandle(t *testing.T) {
	cfg := &config.Config{DBPath: filepath.Join(t.TempDir(), "clash.db")}
	db, err := New(cfg, zerolog.Nop())
	require.NoError(t, err)
	defer db.Close()

	x := NewX(db)
	assert.Same(t, db, x.DB)
	assert.Equal(t, "sqlite3", x.DriverName())
}
