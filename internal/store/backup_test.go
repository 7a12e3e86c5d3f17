package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackupCopiesDatabaseFile(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")

	db, err := Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	backupDir := filepath.Join(dir, "backups")
	logger := zerolog.Nop()
	b := NewBackupper(dbPath, BackupConfig{Path: backupDir, Interval: time.Hour}, &logger)

	require.NoError(t, b.Backup())

	files, err := os.ReadDir(backupDir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Contains(t, files[0].Name(), "backup_")

	info, err := files[0].Info()
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
