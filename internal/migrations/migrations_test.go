package migrations

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMigrationPathFromConfig(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, dir, MigrationPath(dir, zap.NewNop()))
}

func TestMigrationPathFallback(t *testing.T) {
	// из internal/migrations до scripts/migrations два уровня вверх
	path := MigrationPath("does/not/exist", zap.NewNop())
	assert.True(t, strings.HasSuffix(filepath.ToSlash(path), "scripts/migrations"), path)
}

func TestInitMigrationHasUpAndDown(t *testing.T) {
	path := MigrationPath("does/not/exist", zap.NewNop())
	data, err := os.ReadFile(filepath.Join(path, "00001_init.sql"))
	require.NoError(t, err)

	sql := string(data)
	assert.Contains(t, sql, "-- +goose Up")
	assert.Contains(t, sql, "-- +goose Down")
	assert.Contains(t, sql, "CREATE TABLE IF NOT EXISTS characters")
	assert.Contains(t, sql, "session_id       VARCHAR(64) NOT NULL UNIQUE")
}
