package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_CreatesDefaults(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	m := NewManager(dir)

	require.NoError(t, m.Load())
	assert.Equal(t, DefaultConfig(), m.Get())
	assert.FileExists(t, filepath.Join(dir, FileName))
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("model: llama3.2\nhistory_window: 3\n"), 0o600))

	m := NewManager(dir)
	require.NoError(t, m.Load())

	cfg := m.Get()
	assert.Equal(t, "llama3.2", cfg.Model)
	assert.Equal(t, 3, cfg.HistoryWindow)
	assert.Equal(t, 10, cfg.HistoryLimit)
	assert.Equal(t, "ollama", cfg.Provider)
	assert.True(t, cfg.Persist)
}

func TestLoad_ExpandsEnvVars(t *testing.T) {
	t.Setenv("MURMUR_TEST_HOST", "http://gpu-box:8080")
	t.Setenv("MURMUR_TEST_KEY", "sk-test")

	dir := t.TempDir()
	content := "provider: openai\nhost: ${MURMUR_TEST_HOST}\napi_key: $MURMUR_TEST_KEY\nmodel: $MURMUR_UNSET_VAR\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o600))

	m := NewManager(dir)
	require.NoError(t, m.Load())

	cfg := m.Get()
	assert.Equal(t, "http://gpu-box:8080", cfg.Host)
	assert.Equal(t, "sk-test", cfg.APIKey)
	assert.Equal(t, "$MURMUR_UNSET_VAR", cfg.Model)
}

func TestSet_KeepsEnvReferencesOnDisk(t *testing.T) {
	t.Setenv("MURMUR_TEST_KEY", "sk-supersecret")

	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	content := "provider: openai\napi_key: $MURMUR_TEST_KEY\nhost: ${MURMUR_TEST_HOST}\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	m := NewManager(dir)
	require.NoError(t, m.Load())
	require.NoError(t, m.Set("model", "llama3"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "$MURMUR_TEST_KEY")
	assert.Contains(t, string(data), "${MURMUR_TEST_HOST}")
	assert.NotContains(t, string(data), "sk-supersecret")
	assert.Contains(t, string(data), "model: llama3")

	assert.Equal(t, "sk-supersecret", m.Get().APIKey)

	// Later sets expand from the stored reference, not a stale value.
	t.Setenv("MURMUR_TEST_KEY", "sk-rotated")
	require.NoError(t, m.Set("theme", "dusk"))
	assert.Equal(t, "sk-rotated", m.Get().APIKey)
	assert.Equal(t, "llama3", m.Get().Model)
}

func TestSet_InvalidValueLeavesConfigUnchanged(t *testing.T) {
	m := NewManager(t.TempDir())
	require.NoError(t, m.Load())

	assert.Error(t, m.Set("history_limit", "lots"))
	assert.Equal(t, 10, m.Get().HistoryLimit)
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("model: [unclosed\n"), 0o600))

	err := NewManager(dir).Load()
	assert.ErrorContains(t, err, "failed to parse config YAML")
}

func TestSet_PersistsAndValidates(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(dir)
	require.NoError(t, m.Load())

	require.NoError(t, m.Set("model", "qwen2.5"))
	require.NoError(t, m.Set("history_limit", "20"))
	require.NoError(t, m.Set("persist", "false"))

	assert.ErrorIs(t, m.Set("colour", "red"), ErrUnknownKey)
	assert.Error(t, m.Set("history_window", "-1"))
	assert.Error(t, m.Set("persist", "maybe"))

	reloaded := NewManager(dir)
	require.NoError(t, reloaded.Load())
	cfg := reloaded.Get()
	assert.Equal(t, "qwen2.5", cfg.Model)
	assert.Equal(t, 20, cfg.HistoryLimit)
	assert.False(t, cfg.Persist)
}

func TestValue(t *testing.T) {
	m := NewManager(t.TempDir())

	for _, key := range Keys() {
		_, err := m.Value(key)
		assert.NoError(t, err, key)
	}

	m.Get().APIKey = "secret"
	v, err := m.Value("api_key")
	require.NoError(t, err)
	assert.NotContains(t, v, "secret")

	_, err = m.Value("nope")
	assert.ErrorIs(t, err, ErrUnknownKey)
}

func TestExpandString(t *testing.T) {
	t.Setenv("MURMUR_A", "alpha")

	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"$MURMUR_A", "alpha"},
		{"${MURMUR_A}/v1", "alpha/v1"},
		{"x-$MURMUR_A-y", "x-alpha-y"},
		{"$MURMUR_MISSING", "$MURMUR_MISSING"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, expandString(tt.in), tt.in)
	}
}
