package migration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()

	upPath, downPath, err := CreateMigration(dir, "Create Contract Groups")
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(upPath, "_create_contract_groups.up.sql"), upPath)
	assert.True(t, strings.HasSuffix(downPath, "_create_contract_groups.down.sql"), downPath)

	up, err := os.ReadFile(upPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "Create Contract Groups")

	down, err := os.ReadFile(downPath)
	require.NoError(t, err)
	assert.Contains(t, string(down), "revert")

	// The version prefix sorts after every shipped migration.
	base := filepath.Base(upPath)
	version := strings.SplitN(base, "_", 2)[0]
	assert.Len(t, version, 14)
	assert.Greater(t, version, "20250310121000")
}

func TestCreateMigration_IntoMissingDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "migrations")

	upPath, _, err := CreateMigration(dir, "initial")
	require.NoError(t, err)
	assert.FileExists(t, upPath)
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"create contract groups", "create_contract_groups"},
		{"Create-Queue Jobs", "create_queue_jobs"},
		{"  spaced  out  ", "spaced_out"},
		{"v2!!cleanup?", "v2cleanup"},
		{"already_sane", "already_sane"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeName(tt.input), "name %q", tt.input)
	}
}

func TestListMigrations(t *testing.T) {
	t.Run("lists one entry per pair", func(t *testing.T) {
		dir := t.TempDir()
		for _, name := range []string{
			"20250310120000_create_recurring_invoicing.up.sql",
			"20250310120000_create_recurring_invoicing.down.sql",
			"20250310120500_create_sponsorship.up.sql",
			"20250310120500_create_sponsorship.down.sql",
			"notes.txt",
		} {
			require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("--"), 0o644))
		}

		names, err := ListMigrations(dir)
		require.NoError(t, err)
		assert.Equal(t, []string{
			"20250310120000_create_recurring_invoicing",
			"20250310120500_create_sponsorship",
		}, names)
	})

	t.Run("missing directory lists as empty", func(t *testing.T) {
		names, err := ListMigrations(filepath.Join(t.TempDir(), "nope"))
		require.NoError(t, err)
		assert.Empty(t, names)
	})
}
