package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/apex/internal/domain"
)

func TestLoadWritesEmbeddedDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := NewFileLoader(path).Load(context.Background())

	require.NoError(t, err)
	assert.FileExists(t, path)
	assert.Equal(t, "APEX", cfg.Assistant.Name)
	assert.Equal(t, domain.StrategyAuto, cfg.GetStrategy())
	assert.Equal(t, "perplexity", cfg.Knowledge.DefaultModel)
	assert.Equal(t, filepath.Join(home, ".apex", "history.db"), cfg.History.DBPath)
	assert.Equal(t, filepath.Join(home, "Downloads"), cfg.Actions.Folders["downloads"])
	assert.Equal(t, domain.DefaultVocabulary().Fillers, cfg.Vocabulary.Fillers)
	require.NoError(t, cfg.ValidateConsistency())

	model, err := cfg.GetDefaultModel()
	require.NoError(t, err)
	assert.Equal(t, "https://api.perplexity.ai", model.Endpoint)
}

func TestLoadHonoursEnvOverride(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	path := filepath.Join(t.TempDir(), "apex.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
assistant:
  name: JARVIS
vocabulary:
  fillers: [jarvis]
server:
  addr: 0.0.0.0:8080
history:
  db_path: ~/data/apex.db
`), 0o600))
	t.Setenv(EnvConfigPath, path)

	loader := NewFileLoader("")
	cfg, err := loader.Load(context.Background())

	require.NoError(t, err)
	assert.Equal(t, path, loader.Path())
	assert.Equal(t, "JARVIS", cfg.GetAssistantName())
	assert.Equal(t, []string{"jarvis"}, cfg.Vocabulary.Fillers)
	assert.Equal(t, domain.DefaultVocabulary().SearchTriggers, cfg.Vocabulary.SearchTriggers)
	assert.Equal(t, "http://0.0.0.0:8080/comando", cfg.Bridge.TargetURL)
	assert.Equal(t, filepath.Join(home, "data", "apex.db"), cfg.History.DBPath)
	assert.Equal(t, filepath.Join(home, ".apex", "cache"), cfg.Knowledge.CacheDir)
}

func TestLoadRejectsInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("assistant: [unclosed"), 0o600))

	_, err := NewFileLoader(path).Load(context.Background())
	assert.ErrorContains(t, err, "parse")
}

func TestSaveAndReset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	loader := NewFileLoader(path)

	backup, err := loader.Reset()
	require.NoError(t, err)
	assert.Empty(t, backup)

	cfg, err := loader.Load(context.Background())
	require.NoError(t, err)
	cfg.Assistant.Name = "Sexta-feira"
	require.NoError(t, loader.Save(cfg))

	reloaded, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Sexta-feira", reloaded.Assistant.Name)

	backup, err = loader.Reset()
	require.NoError(t, err)
	assert.FileExists(t, backup)

	reset, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "APEX", reset.Assistant.Name)
}
