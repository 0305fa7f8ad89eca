package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

var validModels = map[string]bool{
	"opus":   true,
	"sonnet": true,
	"haiku":  true,
}

var validLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks the config for errors and sets defaults.
func Validate(cfg *Config) error {
	if strings.TrimSpace(cfg.Name) == "" {
		return fmt.Errorf("config: 'name' is required")
	}

	if cfg.DataFile == "" {
		cfg.DataFile = filepath.Join(Dir, "data.json")
	}
	if filepath.Ext(cfg.DataFile) != ".json" {
		return fmt.Errorf("config: data-file %q must have a .json extension", cfg.DataFile)
	}
	if cfg.BackupDir == "" {
		cfg.BackupDir = filepath.Join(Dir, "backups")
	}
	if cfg.BackupRetention < 0 {
		return fmt.Errorf("config: backup-retention must be >= 1")
	}
	if cfg.BackupRetention == 0 {
		cfg.BackupRetention = 10
	}
	if cfg.CacheTTLMillis != nil && *cfg.CacheTTLMillis < 0 {
		return fmt.Errorf("config: cache-ttl-ms must be >= 0")
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if !validLevels[cfg.LogLevel] {
		return fmt.Errorf("config: unknown log-level %q (must be debug, info, warn, or error)", cfg.LogLevel)
	}

	if cfg.LLM.Command == "" {
		cfg.LLM.Command = "claude"
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "sonnet"
	}
	if !validModels[cfg.LLM.Model] {
		return fmt.Errorf("config: llm: unknown model %q (must be opus, sonnet, or haiku)", cfg.LLM.Model)
	}
	if cfg.LLM.Timeout < 0 {
		return fmt.Errorf("config: llm: timeout must be >= 0")
	}
	if cfg.LLM.Timeout == 0 {
		cfg.LLM.Timeout = 2
	}
	return nil
}
