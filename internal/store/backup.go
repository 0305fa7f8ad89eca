package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jorge-barreto/reqtrack/internal/model"
)

// DefaultBackupRetention is the number of backups kept when none is configured.
const DefaultBackupRetention = 10

const backupTimeLayout = "20060102-150405.000"

type Backup struct {
	Path    string
	ModTime time.Time
	Size    int64
}

// CreateBackup copies the current data file into the backup directory under
// a timestamped name and prunes old backups. It returns "" when there is
// nothing to back up.
func (s *Store) CreateBackup() (string, error) {
	if s.path == "" || s.backupDir == "" {
		return "", nil
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("reading %s: %w", s.path, err)
	}

	base := "backup-" + s.now().Format(backupTimeLayout)
	path := filepath.Join(s.backupDir, base+".json")
	for n := 1; fileExists(path); n++ {
		path = filepath.Join(s.backupDir, fmt.Sprintf("%s-%d.json", base, n))
	}
	if err := writeFileAtomic(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing backup: %w", err)
	}
	s.log.Info("backup created", zap.String("path", path))

	if err := s.prune(); err != nil {
		s.log.Warn("pruning backups", zap.Error(err))
	}
	return path, nil
}

// ListBackups returns backups newest first.
func (s *Store) ListBackups() ([]Backup, error) {
	if s.backupDir == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(s.backupDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var backups []Backup
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, "backup-") || !strings.HasSuffix(name, ".json") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		backups = append(backups, Backup{
			Path:    filepath.Join(s.backupDir, name),
			ModTime: info.ModTime(),
			Size:    info.Size(),
		})
	}
	sort.SliceStable(backups, func(i, j int) bool {
		if backups[i].ModTime.Equal(backups[j].ModTime) {
			return backups[i].Path > backups[j].Path
		}
		return backups[i].ModTime.After(backups[j].ModTime)
	})
	return backups, nil
}

// prune keeps the most recently modified backups and deletes the rest.
func (s *Store) prune() error {
	backups, err := s.ListBackups()
	if err != nil {
		return err
	}
	var errs []error
	for _, b := range backups[min(s.retention, len(backups)):] {
		if err := os.Remove(b.Path); err != nil {
			errs = append(errs, err)
			continue
		}
		s.log.Debug("backup pruned", zap.String("path", b.Path))
	}
	return errors.Join(errs...)
}

// RestoreBackup replaces the data file with the backup at path. The current
// file is backed up first. The backup must parse as a document. The restore
// goes through the write queue, so it lands after any write in flight and
// replaces a queued one.
func (s *Store) RestoreBackup(path string) error {
	if s.path == "" {
		return ErrNoWorkspace
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var doc model.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("backup %s is not a valid document: %w", path, err)
	}
	if _, err := s.CreateBackup(); err != nil {
		return fmt.Errorf("backing up current data: %w", err)
	}
	if err := s.enqueue(data); err != nil {
		return fmt.Errorf("restoring %s: %w", path, err)
	}
	s.log.Info("backup restored", zap.String("from", path))
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
