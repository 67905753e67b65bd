package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useTempConfigDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	SetConfigDir(dir)
	t.Cleanup(func() { SetConfigDir("") })
	return dir
}

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, configFileName)
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestLoadMissingConfig(t *testing.T) {
	useTempConfigDir(t)

	_, err := Load()
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadAppliesDefaults(t *testing.T) {
	dir := useTempConfigDir(t)
	writeConfig(t, dir, "team:\n  provider: openai\n")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 300*time.Second, cfg.InputTimeout())
	assert.Equal(t, time.Second, cfg.PollInterval())
	assert.Equal(t, 30*time.Second, cfg.PingInterval())
	assert.Equal(t, 256, cfg.Bridge.OutboundBuffer)
	assert.Equal(t, "UserProxy", cfg.Bridge.HumanName)
	assert.Equal(t, "localhost:8765", cfg.Channels.Web.Addr)
	assert.Equal(t, "gpt-4o", cfg.GetModel())
	assert.Equal(t, 20, cfg.Team.MaxTurns)
	assert.Equal(t, "TERMINATE", cfg.Team.Termination)
	assert.NotNil(t, cfg.Channels.Telegram.AllowedIDs)
	require.NotNil(t, cfg.Logging.Enabled)
	assert.True(t, *cfg.Logging.Enabled)
}

func TestLoadExpandsEnvVars(t *testing.T) {
	dir := useTempConfigDir(t)
	t.Setenv("CHATBRIDGE_TEST_TG_TOKEN", "123:abc")
	writeConfig(t, dir, `
bridge:
  input_timeout: 45s
channels:
  telegram:
    token: ${CHATBRIDGE_TEST_TG_TOKEN}
    allowed_ids: [42]
team:
  provider: anthropic
  model: claude-sonnet-4-5
`)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 45*time.Second, cfg.InputTimeout())
	assert.Equal(t, "123:abc", cfg.Channels.Telegram.Token)
	assert.Equal(t, []int64{42}, cfg.Channels.Telegram.AllowedIDs)
	assert.Equal(t, "anthropic", cfg.GetProvider())
}

func TestLoadReadsDotEnvFromConfigDir(t *testing.T) {
	dir := useTempConfigDir(t)
	const key = "CHATBRIDGE_TEST_DOTENV_KEY"
	t.Cleanup(func() { os.Unsetenv(key) })
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(key+"=from-dotenv\n"), 0600))
	writeConfig(t, dir, "providers:\n  openai:\n    api_key: ${"+key+"}\n")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Providers.OpenAI.APIKey)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad duration", "bridge:\n  input_timeout: soon\n"},
		{"negative duration", "bridge:\n  poll_interval: -1s\n"},
		{"unknown provider", "team:\n  provider: nowhere\n"},
		{"unknown log format", "logging:\n  format: xml\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := useTempConfigDir(t)
			writeConfig(t, dir, tt.body)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestSaveThenLoad(t *testing.T) {
	useTempConfigDir(t)
	cfg := DefaultConfig()
	cfg.Bridge.InputTimeout = "10s"

	require.NoError(t, cfg.Save())

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, loaded.InputTimeout())
}

func TestGetAPIKeyPrefersEnv(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Providers.OpenRouter = &ProviderConfig{APIKey: "from-file", APIBase: "https://example.test/v1"}

	t.Setenv("OPENROUTER_API_KEY", "")
	key, err := cfg.GetAPIKey("openrouter")
	require.NoError(t, err)
	assert.Equal(t, "from-file", key)
	assert.Equal(t, "https://example.test/v1", cfg.GetAPIBase("openrouter"))

	t.Setenv("OPENROUTER_API_KEY", "from-env")
	key, err = cfg.GetAPIKey("openrouter")
	require.NoError(t, err)
	assert.Equal(t, "from-env", key)

	_, err = cfg.GetAPIKey("nowhere")
	assert.Error(t, err)
}

func TestGetAPIKeyMissing(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	cfg := DefaultConfig()

	_, err := cfg.GetAPIKey("anthropic")
	assert.Error(t, err)
}

func TestConfigDirFromEnv(t *testing.T) {
	SetConfigDir("")
	dir := t.TempDir()
	t.Setenv(HomeEnv, dir)

	got, err := ConfigDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Clean(dir), got)
}

func TestAgentsPath(t *testing.T) {
	dir := useTempConfigDir(t)
	cfg := DefaultConfig()

	got, err := cfg.AgentsPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "agents"), got)

	cfg.Team.AgentsDir = "/srv/agents"
	got, err = cfg.AgentsPath()
	require.NoError(t, err)
	assert.Equal(t, "/srv/agents", got)
}

func TestLoadOrDefaultWithoutFile(t *testing.T) {
	useTempConfigDir(t)
	t.Setenv("OPENAI_API_KEY", "sk-from-env")

	cfg, err := LoadOrDefault()
	require.NoError(t, err)
	assert.Equal(t, "openai", cfg.GetProvider())
	assert.Equal(t, "sk-from-env", cfg.Providers.OpenAI.APIKey)
	assert.Equal(t, 300*time.Second, cfg.InputTimeout())
}

func TestLoadOrDefaultPrefersFile(t *testing.T) {
	dir := useTempConfigDir(t)
	writeConfig(t, dir, "bridge:\n  input_timeout: 45s\nteam:\n  provider: anthropic\n")

	cfg, err := LoadOrDefault()
	require.NoError(t, err)
	assert.Equal(t, 45*time.Second, cfg.InputTimeout())
	assert.Equal(t, "anthropic", cfg.GetProvider())
}
