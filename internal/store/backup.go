package store

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// BackupConfig controls the periodic database file backup.
type BackupConfig struct {
	Interval      time.Duration
	Path          string
	RetentionDays int
}

// Backupper periodically copies the database file aside and prunes old
// copies past the retention window.
type Backupper struct {
	dbPath string
	cfg    BackupConfig
	logger *zerolog.Logger
}

// NewBackupper creates a Backupper for the database at dbPath.
func NewBackupper(dbPath string, cfg BackupConfig, logger *zerolog.Logger) *Backupper {
	if cfg.Interval <= 0 {
		cfg.Interval = 24 * time.Hour
	}
	if cfg.Path == "" {
		cfg.Path = "backups"
	}
	return &Backupper{dbPath: dbPath, cfg: cfg, logger: logger}
}

// Run takes an initial backup, then one per interval until the context is
// canceled.
func (b *Backupper) Run(ctx context.Context) {
	b.logger.Info().Dur("interval", b.cfg.Interval).Str("path", b.cfg.Path).Msg("backup started")

	ticker := time.NewTicker(b.cfg.Interval)
	defer ticker.Stop()

	if err := b.Backup(); err != nil {
		b.logger.Error().Err(err).Msg("initial backup failed")
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := b.Backup(); err != nil {
				b.logger.Error().Err(err).Msg("scheduled backup failed")
			}
			b.pruneOld()
		}
	}
}

// Backup copies the database file into the backup directory.
func (b *Backupper) Backup() error {
	if err := os.MkdirAll(b.cfg.Path, 0o755); err != nil {
		return fmt.Errorf("create backup directory: %w", err)
	}

	name := fmt.Sprintf("backup_%s.db", time.Now().Format("20060102_150405"))
	target := filepath.Join(b.cfg.Path, name)

	source, err := os.Open(b.dbPath)
	if err != nil {
		return err
	}
	defer source.Close()

	destination, err := os.Create(target)
	if err != nil {
		return err
	}
	defer destination.Close()

	if _, err := io.Copy(destination, source); err != nil {
		return err
	}

	b.logger.Info().Str("path", target).Msg("backup written")
	return nil
}

func (b *Backupper) pruneOld() {
	if b.cfg.RetentionDays <= 0 {
		return
	}

	files, err := os.ReadDir(b.cfg.Path)
	if err != nil {
		b.logger.Error().Err(err).Msg("read backup directory")
		return
	}

	cutoff := time.Now().AddDate(0, 0, -b.cfg.RetentionDays)
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		info, err := file.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			b.logger.Info().Str("file", file.Name()).Msg("deleting old backup")
			os.Remove(filepath.Join(b.cfg.Path, file.Name()))
		}
	}
}
