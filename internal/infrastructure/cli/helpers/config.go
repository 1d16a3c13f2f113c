// Package helpers holds small utilities shared by cli subcommands.
package helpers

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/doeshing/apex/internal/app"
	appconfig "github.com/doeshing/apex/internal/application/config"
	"github.com/doeshing/apex/internal/domain"
)

// ErrUnknownKey is returned for a dotted key that does not exist in the config.
var ErrUnknownKey = errors.New("unknown configuration key")

// SaveConfig validates cfg, backs up the current file and writes cfg.
func SaveConfig(container *app.Container, cfg domain.Config) error {
	if container.ConfigLoader == nil {
		return errors.New("config loader unavailable")
	}
	if err := appconfig.Validate(cfg); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	loader := container.ConfigLoader
	if _, err := os.Stat(loader.Path()); err == nil {
		if _, err := loader.Backup(); err != nil {
			return fmt.Errorf("backup configuration: %w", err)
		}
	}
	if err := loader.Save(cfg); err != nil {
		return fmt.Errorf("save configuration: %w", err)
	}
	return nil
}

// LookupKey returns the YAML rendering of the value at a dotted key such as
// "knowledge.strategy".
func LookupKey(cfg domain.Config, key string) (string, error) {
	tree, err := toTree(cfg)
	if err != nil {
		return "", err
	}

	var node interface{} = tree
	for _, part := range splitKey(key) {
		m, ok := node.(map[string]interface{})
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
		}
		if node, ok = m[part]; !ok {
			return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
		}
	}

	out, err := yaml.Marshal(node)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(out), "\n"), nil
}

// SetKey returns a copy of cfg with the dotted key set to value. The value is
// parsed as YAML so "30", "true" and "[a, b]" keep their types.
func SetKey(cfg domain.Config, key, value string) (domain.Config, error) {
	parts := splitKey(key)
	if len(parts) == 0 {
		return cfg, fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}

	tree, err := toTree(cfg)
	if err != nil {
		return cfg, err
	}

	var parsed interface{}
	if err := yaml.Unmarshal([]byte(value), &parsed); err != nil {
		parsed = value
	}

	parent := tree
	for _, part := range parts[:len(parts)-1] {
		child, ok := parent[part].(map[string]interface{})
		if !ok {
			return cfg, fmt.Errorf("%w: %s", ErrUnknownKey, key)
		}
		parent = child
	}
	parent[parts[len(parts)-1]] = parsed

	raw, err := yaml.Marshal(tree)
	if err != nil {
		return cfg, err
	}
	var updated domain.Config
	if err := yaml.Unmarshal(raw, &updated); err != nil {
		return cfg, fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return updated, nil
}

func toTree(cfg domain.Config) (map[string]interface{}, error) {
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	tree := map[string]interface{}{}
	if err := yaml.Unmarshal(raw, &tree); err != nil {
		return nil, err
	}
	return tree, nil
}

func splitKey(key string) []string {
	var parts []string
	for _, part := range strings.Split(key, ".") {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}
