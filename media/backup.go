package media

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const backupLayout = "2006-01-02_15-04-05"

// Backup copies the uploads directory into a timestamped folder once a day
// and prunes folders older than the retention window.
type Backup struct {
	Source    string
	Dest      string
	Retention time.Duration
	Hour      int
	Minute    int

	logger *zap.Logger
	now    func() time.Time
}

func NewBackup(source, dest string, retention time.Duration, logger *zap.Logger) *Backup {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Backup{
		Source:    source,
		Dest:      dest,
		Retention: retention,
		Hour:      2,
		logger:    logger,
		now:       time.Now,
	}
}

// NextRun returns the next scheduled run strictly after now.
func (b *Backup) NextRun(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), b.Hour, b.Minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next
}

// Run blocks until ctx is cancelled, backing up once per day.
func (b *Backup) Run(ctx context.Context) error {
	for {
		next := b.NextRun(b.now())
		b.logger.Info("next uploads backup scheduled", zap.Time("at", next))

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}

		if dir, err := b.RunOnce(); err != nil {
			b.logger.Error("uploads backup failed", zap.Error(err))
		} else {
			b.logger.Info("uploads backed up", zap.String("dir", dir))
		}
	}
}

// RunOnce copies Source into a new timestamped folder under Dest and then
// prunes expired backups.
func (b *Backup) RunOnce() (string, error) {
	now := b.now()
	dest := filepath.Join(b.Dest, now.Format(backupLayout))
	if err := copyDir(b.Source, dest); err != nil {
		return "", errors.Wrap(err, "copy uploads")
	}
	b.cleanup(now)
	return dest, nil
}

func (b *Backup) cleanup(now time.Time) {
	entries, err := os.ReadDir(b.Dest)
	if err != nil {
		b.logger.Warn("failed to read backup directory", zap.Error(err))
		return
	}

	cutoff := now.Add(-b.Retention)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		taken, err := time.ParseInLocation(backupLayout, entry.Name(), now.Location())
		if err != nil {
			info, statErr := entry.Info()
			if statErr != nil {
				continue
			}
			taken = info.ModTime()
		}
		if !taken.Before(cutoff) {
			continue
		}
		path := filepath.Join(b.Dest, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			b.logger.Warn("failed to remove old backup", zap.String("dir", path), zap.Error(err))
			continue
		}
		b.logger.Info("removed old backup", zap.String("dir", path))
	}
}

func copyDir(src, dest string) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return err
	}
	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		destPath := filepath.Join(dest, entry.Name())
		if entry.IsDir() {
			err = copyDir(srcPath, destPath)
		} else {
			err = copyFile(srcPath, destPath)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err = io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
