package config

import (
	"testing"
	"time"

	"github.com/Abraxas-365/mosaic/pkg/errx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("OPENAI_ASSISTANT_ID", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 60*time.Second, cfg.Server.MaxDuration())
	assert.Equal(t, 2, cfg.Server.MaxToolRounds)
	assert.Equal(t, "console", cfg.Email.Provider)
	assert.Equal(t, "./documents", cfg.Resume.Dir)
	assert.Equal(t, "local", cfg.Resume.Storage)
	assert.Equal(t, "openai", cfg.Assistant.Provider)
}

func TestLoad_PrefixedKeys(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_ASSISTANT_ID", "asst_123")
	t.Setenv("EMAIL_PROVIDER", "ses")
	t.Setenv("RESUME_DIR", "/srv/docs")
	t.Setenv("MAX_DURATION_SECONDS", "300")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sk-test", cfg.Assistant.APIKey)
	assert.Equal(t, "asst_123", cfg.Assistant.AssistantID)
	assert.Equal(t, "ses", cfg.Email.Provider)
	assert.Equal(t, "/srv/docs", cfg.Resume.Dir)
	assert.Equal(t, 300*time.Second, cfg.Server.MaxDuration())
	assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
	assert.NoError(t, cfg.Assistant.Validate())
}

func TestAssistantConfig_Validate(t *testing.T) {
	err := AssistantConfig{APIKey: "sk"}.Validate()
	require.Error(t, err)

	var e *errx.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, 500, e.HTTPStatus)
	assert.Equal(t, "Assistant ID not configured", e.Message)

	assert.NoError(t, AssistantConfig{Provider: "scripted"}.Validate())
}
