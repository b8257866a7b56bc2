package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_NonExistentGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "https://api.mistral.ai/v1", cfg.Provider.BaseURL)
	assert.Equal(t, "MISTRAL_API_KEY", cfg.Provider.APIKeyEnv)
	assert.Equal(t, "mistral-small-latest", cfg.Provider.ChatModel)
	assert.Equal(t, "mistral-embed", cfg.Provider.EmbedModel)
	assert.Equal(t, 800, cfg.Chunking.Size)
	require.NotNil(t, cfg.Chunking.Overlap)
	assert.Equal(t, 100, *cfg.Chunking.Overlap)
	assert.Equal(t, 4, cfg.Retrieval.TopK)
	require.NotNil(t, cfg.Completion.Temperature)
	assert.InDelta(t, 0.2, *cfg.Completion.Temperature, 1e-6)
	assert.Equal(t, 500, cfg.Completion.MaxTokens)
}

func TestLoad_ValidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docchat.yaml")
	content := `
provider:
  chat_model: mistral-large-latest
chunking:
  size: 400
retrieval:
  top_k: 8
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "mistral-large-latest", cfg.Provider.ChatModel)
	assert.Equal(t, 400, cfg.Chunking.Size)
	assert.Equal(t, 8, cfg.Retrieval.TopK)
	// untouched fields still get defaults
	assert.Equal(t, "mistral-embed", cfg.Provider.EmbedModel)
	require.NotNil(t, cfg.Chunking.Overlap)
	assert.Equal(t, 100, *cfg.Chunking.Overlap)
}

// An explicit zero is a valid setting for overlap and temperature and must
// not be rewritten to the default.
func TestLoad_ExplicitZerosKept(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docchat.yaml")
	content := `
chunking:
  overlap: 0
completion:
  temperature: 0
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	require.NotNil(t, cfg.Chunking.Overlap)
	assert.Equal(t, 0, *cfg.Chunking.Overlap)
	require.NotNil(t, cfg.Completion.Temperature)
	assert.InDelta(t, 0.0, *cfg.Completion.Temperature, 1e-6)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docchat.yaml")
	require.NoError(t, os.WriteFile(path, []byte(":\n\t- broken"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "docchat.yaml")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	cfg.Retrieval.TopK = 6

	require.NoError(t, Save(path, cfg))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 6, loaded.Retrieval.TopK)
}

func TestAPIKey(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	cfg.Provider.APIKeyEnv = "DOCCHAT_TEST_KEY"

	t.Run("missing is an error", func(t *testing.T) {
		t.Setenv("DOCCHAT_TEST_KEY", "")
		_, err := cfg.APIKey()
		require.Error(t, err)
	})

	t.Run("present", func(t *testing.T) {
		t.Setenv("DOCCHAT_TEST_KEY", "secret")
		key, err := cfg.APIKey()
		require.NoError(t, err)
		assert.Equal(t, "secret", key)
	})
}
