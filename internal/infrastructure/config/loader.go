// Package config loads and persists ~/.apex/config.yaml.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/doeshing/apex/assets"
	"github.com/doeshing/apex/internal/domain"
	"github.com/doeshing/apex/internal/pkg/filesystem"
	"github.com/doeshing/apex/internal/ports"
)

// EnvConfigPath overrides the config file location.
const EnvConfigPath = "APEX_CONFIG"

// FileLoader loads YAML configuration from ~/.apex/config.yaml (overridable
// via APEX_CONFIG or an explicit path).
type FileLoader struct {
	overridePath string
}

// NewFileLoader builds a new loader. An empty path uses the default lookup.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{overridePath: path}
}

// Load implements ports.ConfigProvider. A missing file is created from the
// embedded defaults.
func (l *FileLoader) Load(context.Context) (domain.Config, error) {
	path := l.resolvePath()
	if err := ensureConfigDir(path); err != nil {
		return domain.Config{}, fmt.Errorf("ensure config dir: %w", err)
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		if err := os.WriteFile(path, assets.DefaultConfigYAML, domain.SecureFilePermissions); err != nil {
			return domain.Config{}, fmt.Errorf("write default config: %w", err)
		}
		data = assets.DefaultConfigYAML
	} else if err != nil {
		return domain.Config{}, fmt.Errorf("read config: %w", err)
	}

	var cfg domain.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.Config{}, fmt.Errorf("parse %s: %w", path, err)
	}

	return hydrateDefaults(cfg), nil
}

// Path returns the resolved config file path.
func (l *FileLoader) Path() string {
	return l.resolvePath()
}

// Save writes the given config back to disk.
func (l *FileLoader) Save(cfg domain.Config) error {
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	path := l.resolvePath()
	if err := ensureConfigDir(path); err != nil {
		return err
	}
	return os.WriteFile(path, raw, domain.SecureFilePermissions)
}

// Reset backs up the current file, restores the embedded defaults and
// returns the backup path (empty when there was nothing to back up).
func (l *FileLoader) Reset() (string, error) {
	backup, err := l.Backup()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}
	path := l.resolvePath()
	if err := ensureConfigDir(path); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, assets.DefaultConfigYAML, domain.SecureFilePermissions); err != nil {
		return "", err
	}
	return backup, nil
}

// Backup copies the current config file to a timestamped backup.
func (l *FileLoader) Backup() (string, error) {
	path := l.resolvePath()
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	backup := fmt.Sprintf("%s.%s.bak", path, time.Now().Format("20060102T150405"))
	if err := os.WriteFile(backup, data, domain.SecureFilePermissions); err != nil {
		return "", err
	}
	return backup, nil
}

func (l *FileLoader) resolvePath() string {
	if l.overridePath != "" {
		return expandPath(l.overridePath)
	}
	if custom := os.Getenv(EnvConfigPath); custom != "" {
		return expandPath(custom)
	}
	return filepath.Join(filesystem.AppDir(), "config.yaml")
}

func ensureConfigDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions)
}

// hydrateDefaults fills what the file left empty and expands ~ in paths.
func hydrateDefaults(cfg domain.Config) domain.Config {
	if cfg.ConfigFormatVersion == "" {
		cfg.ConfigFormatVersion = "1"
	}
	cfg.Vocabulary = cfg.Vocabulary.WithDefaults()
	if cfg.Knowledge.DefaultModel == "" && len(cfg.Models) > 0 {
		cfg.Knowledge.DefaultModel = cfg.Models[0].Name
	}
	if cfg.Knowledge.CacheDir == "" {
		cfg.Knowledge.CacheDir = "~/.apex/cache"
	}
	if cfg.History.DBPath == "" {
		cfg.History.DBPath = "~/.apex/history.db"
	}
	if cfg.Bridge.CommandFile == "" {
		cfg.Bridge.CommandFile = "~/.apex/copilot_bridge.txt"
	}
	if cfg.Bridge.ResponseFile == "" {
		cfg.Bridge.ResponseFile = "~/.apex/apex_response.txt"
	}
	if cfg.Bridge.TargetURL == "" {
		cfg.Bridge.TargetURL = "http://" + cfg.GetServerAddr() + "/comando"
	}

	cfg.Knowledge.CacheDir = expandPath(cfg.Knowledge.CacheDir)
	cfg.History.DBPath = expandPath(cfg.History.DBPath)
	cfg.Bridge.CommandFile = expandPath(cfg.Bridge.CommandFile)
	cfg.Bridge.ResponseFile = expandPath(cfg.Bridge.ResponseFile)
	for name, path := range cfg.Actions.Folders {
		cfg.Actions.Folders[name] = expandPath(path)
	}
	return cfg
}

func expandPath(path string) string {
	return filesystem.ExpandPath(path, "")
}

var _ ports.ConfigProvider = (*FileLoader)(nil)
