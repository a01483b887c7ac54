package main

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Abraxas-365/mosaic/pkg/config"
	"github.com/Abraxas-365/mosaic/pkg/sse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, provider string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "resume.pdf"), []byte("%PDF-1.4"), 0o644))

	return &config.Config{
		Server: config.ServerConfig{
			Port:               "0",
			CORSOrigins:        "*",
			AppVersion:         "test",
			MaxDurationSeconds: 5,
			MaxToolRounds:      2,
			UploadMaxBytes:     1 << 20,
		},
		Assistant: config.AssistantConfig{Provider: provider},
		Email: config.NotifxConfig{
			Provider:    "console",
			FromAddress: "noreply@example.com",
			FromName:    "Mosaic",
		},
		Resume: config.ResumeConfig{
			Storage:        "local",
			Dir:            dir,
			File:           "resume.pdf",
			AttachmentName: "Resume.pdf",
			Owner:          "Jane Doe",
		},
	}
}

func newTestContainer(t *testing.T, provider string) *Container {
	t.Helper()
	container, err := NewContainer(testConfig(t, provider))
	require.NoError(t, err)
	t.Cleanup(container.Cleanup)
	return container
}

func TestNewContainer_ReportsBadConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"assistant provider", func(c *config.Config) { c.Assistant.Provider = "llama" }, "unknown OPENAI_PROVIDER"},
		{"email provider", func(c *config.Config) { c.Email.Provider = "pigeon" }, "unknown EMAIL_PROVIDER"},
		{"storage", func(c *config.Config) { c.Resume.Storage = "ftp" }, "unknown RESUME_STORAGE"},
		{"redis url", func(c *config.Config) { c.Redis.URL = "::not a url" }, "invalid REDIS_URL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t, "scripted")
			tt.mutate(cfg)

			container, err := NewContainer(cfg)
			assert.Nil(t, container)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func get(t *testing.T, container *Container, method, path, body string) (int, string) {
	t.Helper()
	app := newApp(container)
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(raw)
}

func TestHealth(t *testing.T) {
	container := newTestContainer(t, "scripted")

	status, body := get(t, container, "GET", "/health?check_storage=true", "")
	require.Equal(t, 200, status)

	var health map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(body), &health))
	assert.Equal(t, "healthy", health["status"])
	assert.Equal(t, "configured", health["assistant"])
	assert.Equal(t, true, health["resume_available"])
}

func TestHealth_Unconfigured(t *testing.T) {
	container := newTestContainer(t, "openai")

	_, body := get(t, container, "GET", "/health", "")
	var health map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(body), &health))
	assert.Equal(t, "degraded", health["status"])
	assert.Equal(t, "OpenAI API key not configured", health["assistant_error"])
}

func TestChat_ScriptedEndToEnd(t *testing.T) {
	container := newTestContainer(t, "scripted")

	status, body := get(t, container, "POST", "/api/chat", `{"message":"Can we schedule a call?"}`)
	require.Equal(t, 200, status)

	var tr sse.Transcript
	dec := sse.NewDecoder()
	for _, ev := range append(dec.Feed([]byte(body)), dec.Flush()...) {
		tr.Apply(ev)
	}
	assert.NotEmpty(t, tr.ThreadID)
	assert.True(t, tr.ShowBooking)
	assert.Zero(t, dec.Dropped())
}

func TestChat_Unconfigured(t *testing.T) {
	container := newTestContainer(t, "openai")

	status, body := get(t, container, "POST", "/api/chat", `{"message":"hi"}`)
	assert.Equal(t, 500, status)
	assert.Contains(t, body, "OpenAI API key not configured")
}

func TestMetricsAndNotFound(t *testing.T) {
	container := newTestContainer(t, "scripted")

	status, body := get(t, container, "GET", "/metrics", "")
	assert.Equal(t, 200, status)
	assert.Contains(t, body, "mosaic_chat_active_streams")

	status, body = get(t, container, "GET", "/nope", "")
	assert.Equal(t, 404, status)
	assert.Contains(t, body, "NOT_FOUND")
}
