package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/jorge-barreto/reqtrack/internal/config"
	"github.com/jorge-barreto/reqtrack/internal/data"
	"github.com/jorge-barreto/reqtrack/internal/dispatch"
	"github.com/jorge-barreto/reqtrack/internal/llm"
	"github.com/jorge-barreto/reqtrack/internal/logging"
	"github.com/jorge-barreto/reqtrack/internal/store"
)

var errNoRoot = errors.New("no .reqtrack/config.yaml found (searched from cwd to root)")

// workspace bundles everything a command needs to operate on the data file.
type workspace struct {
	root  string // "" when running without a workspace
	cfg   *config.Config
	log   *zap.Logger
	store *store.Store
	svc   *data.Service
	disp  *dispatch.Dispatcher
}

// openWorkspace loads the workspace containing cwd. Without one it falls
// back to defaults and an unsaved, empty document unless required is set.
func openWorkspace(cmd *cli.Command, required bool) (*workspace, error) {
	root, err := findProjectRoot()
	if err != nil && (required || !errors.Is(err, errNoRoot)) {
		return nil, err
	}

	cfg := config.Default()
	if root != "" {
		cfg, err = config.Load(filepath.Join(root, config.Dir, "config.yaml"))
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	}
	log, err := newLogger(cmd, cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	if root == "" {
		log.Warn("no workspace found, changes will not be saved", zap.String("hint", "run reqtrack init"))
	}

	var st *store.Store
	if root != "" {
		st = store.New(store.Options{
			Path:            config.Resolve(root, cfg.DataFile),
			BackupDir:       config.Resolve(root, cfg.BackupDir),
			BackupRetention: cfg.BackupRetention,
			CacheTTL:        cfg.CacheTTL(),
			Logger:          log.Named("store"),
		})
	} else {
		st = store.New(store.Options{Logger: log.Named("store")})
	}
	svc, err := data.New(st, data.WithLogger(log.Named("data")))
	if err != nil {
		return nil, err
	}
	return &workspace{
		root:  root,
		cfg:   cfg,
		log:   log,
		store: st,
		svc:   svc,
		disp:  dispatch.New(svc, dispatch.WithLogger(log.Named("dispatch"))),
	}, nil
}

func newLogger(cmd *cli.Command, configured string) (*zap.Logger, error) {
	return logging.New(logging.Level(cmd.String("log-level"), os.Getenv("REQTRACK_LOG_LEVEL"), configured))
}

// client returns the model client after checking its command is installed.
func (w *workspace) client() (llm.Client, error) {
	if err := llm.Preflight(w.cfg.LLM.Command); err != nil {
		return nil, err
	}
	dir := w.root
	if dir == "" {
		dir, _ = os.Getwd()
	}
	return &llm.ClaudeCLI{
		Command: w.cfg.LLM.Command,
		Model:   w.cfg.LLM.Model,
		Timeout: time.Duration(w.cfg.LLM.Timeout) * time.Minute,
		Dir:     dir,
		Log:     w.log.Named("llm"),
	}, nil
}

func (w *workspace) close() {
	_ = w.log.Sync()
}

// findProjectRoot walks up from cwd looking for .reqtrack/config.yaml.
func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		configPath := filepath.Join(dir, config.Dir, "config.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errNoRoot
		}
		dir = parent
	}
}
