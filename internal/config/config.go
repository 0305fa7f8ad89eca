package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Dir is the workspace directory that marks a reqtrack root.
const Dir = ".reqtrack"

type LLM struct {
	Command string `yaml:"command"`
	Model   string `yaml:"model"`
	Timeout int    `yaml:"timeout"` // minutes, 0 = no limit
}

type Config struct {
	Name            string `yaml:"name"`
	DataFile        string `yaml:"data-file"`
	BackupDir       string `yaml:"backup-dir"`
	BackupRetention int    `yaml:"backup-retention"`
	CacheTTLMillis  *int   `yaml:"cache-ttl-ms"`
	LogLevel        string `yaml:"log-level"`
	LLM             LLM    `yaml:"llm"`
}

// Load reads a YAML config file and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the validated configuration used when no workspace exists.
func Default() *Config {
	cfg := &Config{Name: "default"}
	if err := Validate(cfg); err != nil {
		panic(err)
	}
	return cfg
}

// CacheTTL returns the store read-cache lifetime.
func (c *Config) CacheTTL() time.Duration {
	if c.CacheTTLMillis == nil {
		return time.Second
	}
	return time.Duration(*c.CacheTTLMillis) * time.Millisecond
}

// Resolve returns p relative to root unless it is already absolute.
func Resolve(root, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}
