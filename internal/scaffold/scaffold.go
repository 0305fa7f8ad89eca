// Package scaffold creates a new reqtrack workspace.
package scaffold

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/jorge-barreto/reqtrack/internal/config"
	"github.com/jorge-barreto/reqtrack/internal/data"
	"github.com/jorge-barreto/reqtrack/internal/store"
	"github.com/jorge-barreto/reqtrack/internal/ux"
)

const configTemplate = `name: %s

# Workspace document and its rotating backups.
data-file: .reqtrack/data.json
backup-dir: .reqtrack/backups
backup-retention: 10

# Reads are cached this long; writes always invalidate the cache.
cache-ttl-ms: 1000

log-level: info

# Model used by "reqtrack chat" and "reqtrack doctor --explain".
llm:
  command: claude
  model: sonnet
  timeout: 2
`

// Options controls Init.
type Options struct {
	Name    string // workspace name, defaults to the directory name
	Project string // optional first project, made active
	Logger  *zap.Logger
}

// Init creates a .reqtrack/ directory with a config file and an empty data
// file in targetDir.
func Init(targetDir string, opts Options) error {
	dir := filepath.Join(targetDir, config.Dir)
	if _, err := os.Stat(dir); err == nil {
		return fmt.Errorf("%s directory already exists in %s", config.Dir, targetDir)
	}
	name := strings.TrimSpace(opts.Name)
	if name == "" {
		abs, err := filepath.Abs(targetDir)
		if err != nil {
			return err
		}
		name = filepath.Base(abs)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", config.Dir, err)
	}

	files := []struct {
		rel     string
		content string
	}{
		{"config.yaml", fmt.Sprintf(configTemplate, quote(name))},
		{".gitignore", "backups/\n"},
	}
	var written []string
	for _, f := range files {
		if err := os.WriteFile(filepath.Join(dir, f.rel), []byte(f.content), 0644); err != nil {
			return fmt.Errorf("writing %s: %w", f.rel, err)
		}
		written = append(written, filepath.Join(config.Dir, f.rel))
	}

	cfg, err := config.Load(filepath.Join(dir, "config.yaml"))
	if err != nil {
		return fmt.Errorf("generated config is invalid: %w", err)
	}
	st := store.New(store.Options{
		Path:            config.Resolve(targetDir, cfg.DataFile),
		BackupDir:       config.Resolve(targetDir, cfg.BackupDir),
		BackupRetention: cfg.BackupRetention,
		CacheTTL:        cfg.CacheTTL(),
		Logger:          opts.Logger,
	})
	svc, err := data.New(st, data.WithLogger(opts.Logger))
	if err != nil {
		return fmt.Errorf("creating data file: %w", err)
	}
	if project := strings.TrimSpace(opts.Project); project != "" {
		p, err := svc.AddProject(data.ProjectInput{Name: project})
		if err != nil {
			return fmt.Errorf("creating project: %w", err)
		}
		if err := svc.SetActiveProject(p.ID); err != nil {
			return fmt.Errorf("activating project: %w", err)
		}
	}
	if err := st.Save(svc.Document()); err != nil {
		return fmt.Errorf("writing data file: %w", err)
	}
	written = append(written, cfg.DataFile)

	fmt.Printf("\n%s%s✓ Initialized workspace %q%s\n\n", ux.Bold, ux.Green, name, ux.Reset)
	fmt.Printf("  Created:\n")
	for _, w := range written {
		fmt.Printf("    %s%s%s\n", ux.Cyan, w, ux.Reset)
	}
	fmt.Printf("\n  Next steps:\n")
	if opts.Project == "" {
		fmt.Printf("    1. Run %sreqtrack call create_project '{\"name\":\"...\",\"setActive\":true}'%s\n", ux.Cyan, ux.Reset)
	} else {
		fmt.Printf("    1. Run %sreqtrack status%s to see the active project\n", ux.Cyan, ux.Reset)
	}
	fmt.Printf("    2. Run %sreqtrack tools%s to list every operation\n", ux.Cyan, ux.Reset)
	fmt.Printf("    3. Try %sreqtrack chat \"add a milestone Beta due next month\"%s\n\n", ux.Cyan, ux.Reset)
	return nil
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
