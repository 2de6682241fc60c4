package bootstrap

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/linkpitch/internal/adapters/llm"
	"github.com/PabloGalante/linkpitch/internal/config"
	"github.com/PabloGalante/linkpitch/internal/domain"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Debug.Dir = t.TempDir()
	return cfg
}

func TestNew_MemoryMock(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage.Backend = "memory"
	cfg.LLM.Provider = config.ProviderMock

	app, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer app.Close()

	assert.True(t, app.AIStatus.Configured)
	assert.IsType(t, &llm.MockLLM{}, app.Chat)

	res, err := app.Generation.Generate(context.Background(), "jane", "owner", domain.RawContext{ContactName: "Jane"})
	require.NoError(t, err)
	assert.True(t, res.Success)
}

func TestNew_SQLiteOpenAIWithoutKey(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage.Backend = "sqlite"
	cfg.Storage.SQLitePath = filepath.Join(t.TempDir(), "app.db")
	cfg.LLM.Provider = config.ProviderOpenAI
	cfg.LLM.APIKey = ""

	app, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer app.Close()

	assert.False(t, app.AIStatus.Configured)
	assert.Equal(t, "openai", app.AIStatus.Provider)

	_, err = app.Generation.Generate(context.Background(), "jane", "owner", domain.RawContext{})
	require.Error(t, err)
	assert.Equal(t, domain.KindMessageGenerationError, domain.KindOf(err))
	assert.True(t, domain.IsKind(err, domain.KindConfigurationError))
}

func TestNew_GeminiWithoutCredentialsFailsOnUse(t *testing.T) {
	cfg := testConfig(t)
	cfg.LLM.Provider = config.ProviderGemini
	cfg.LLM.APIKey = ""
	cfg.LLM.GCPProject = ""

	app, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer app.Close()

	assert.False(t, app.AIStatus.Configured)
	_, err = app.Chat.GenerateChat(context.Background(), nil, domain.ChatOptions{})
	assert.True(t, domain.IsKind(err, domain.KindConfigurationError))
}
