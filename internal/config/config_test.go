package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/linkpitch/internal/config"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, config.ProviderMock, cfg.LLM.Provider)
	assert.Equal(t, 500, cfg.LLM.MaxTokens)
	assert.InDelta(t, 0.7, cfg.LLM.Temperature, 1e-9)
	assert.Equal(t, 5, cfg.Generation.HistoryWindow)
	assert.Equal(t, "memory", cfg.Storage.Backend)
	assert.True(t, cfg.Debug.Enabled)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "linkpitch.yaml")
	yml := `
llm:
  provider: openai
  model: some/model
storage:
  backend: sqlite
  sqlite_path: /tmp/x.db
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))
	t.Setenv("HF_MODEL", "override/model")
	t.Setenv("LINKPITCH_DEBUG", "0")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, config.ProviderOpenAI, cfg.LLM.Provider)
	assert.Equal(t, "override/model", cfg.LLM.Model)
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.Equal(t, "/tmp/x.db", cfg.Storage.SQLitePath)
	assert.False(t, cfg.Debug.Enabled)
}

func TestLoadRejectsUnknownProvider(t *testing.T) {
	t.Setenv("LINKPITCH_LLM_PROVIDER", "claude-on-a-toaster")

	_, err := config.Load("")
	require.Error(t, err)
}

func TestLoadFirestoreRequiresProject(t *testing.T) {
	t.Setenv("LINKPITCH_STORAGE_BACKEND", "firestore")

	_, err := config.Load("")
	require.Error(t, err)
}

func TestLoadKeepsZeroTemperature(t *testing.T) {
	path := filepath.Join(t.TempDir(), "linkpitch.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm:\n  temperature: 0\n"), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Zero(t, cfg.LLM.Temperature)
}
