package migrations

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/placementcell/internal/pkg/logger"
)

func TestVersionOf(t *testing.T) {
	assert.Equal(t, "001", VersionOf("migrations/001_init.sql"))
	assert.Equal(t, "002", VersionOf("/abs/002_add_exports_index.sql"))
}

func TestSQLFiles_SortedAndFiltered(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"002_b.sql", "001_a.sql", "README.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1;"), 0o600))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "003_dir.sql"), 0o700))

	files, err := SQLFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "001_a.sql"), filepath.Join(dir, "002_b.sql")}, files)
}

func TestMigrationsDirectoryIsReadable(t *testing.T) {
	files, err := SQLFiles(filepath.Join("..", "..", "..", "migrations"))
	require.NoError(t, err)
	require.NotEmpty(t, files)
	assert.Equal(t, "001", VersionOf(files[0]))
}

func TestNewMigrator_LogsAsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger.Configure(logger.Config{Level: logger.InfoLevel, Output: &buf})
	t.Cleanup(func() {
		logger.Configure(logger.Config{Level: logger.InfoLevel, Pretty: true, Output: os.Stdout})
	})

	m := NewMigrator(nil)
	m.log.Info().Str("file", "001_init.sql").Msg("Migration applied")

	assert.Contains(t, buf.String(), `"component":"migrator"`)
	assert.Contains(t, buf.String(), `"file":"001_init.sql"`)
}
