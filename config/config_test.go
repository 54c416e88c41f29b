package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_DefaultsWithoutEnvFile(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), ".env"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.Equal(t, 1000, cfg.Calendar.PageSize)
	assert.Equal(t, 10, cfg.Calendar.MaxPages)
	assert.Equal(t, time.Second, cfg.Calendar.SearchDebounce)
	assert.Equal(t, 30*time.Minute, cfg.Calendar.SessionIdleTTL)
	assert.Equal(t, 10*time.Second, cfg.Backend.Timeout)
	assert.True(t, cfg.Metrics.Enabled)

	loc, err := cfg.Calendar.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Jakarta", loc.String())
}

func TestLoadConfig_EnvFileAndEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "JWT_SECRET=from-file\nCALENDAR_PAGE_SIZE=250\nCALENDAR_SEARCH_DEBOUNCE=300ms\nBACKEND_BASE_URL=http://backend:9000\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("CALENDAR_PAGE_SIZE", "500")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.JWT.Secret)
	assert.Equal(t, 500, cfg.Calendar.PageSize)
	assert.Equal(t, 300*time.Millisecond, cfg.Calendar.SearchDebounce)
	assert.Equal(t, "http://backend:9000", cfg.Backend.BaseURL)
}

func TestLoadConfig_RejectsInvalidSettings(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "missing secret", env: map[string]string{"JWT_SECRET": ""}},
		{name: "page size too large", env: map[string]string{"CALENDAR_PAGE_SIZE": "5000"}},
		{name: "unknown timezone", env: map[string]string{"CALENDAR_TIMEZONE": "Mars/Olympus"}},
		{name: "zero debounce", env: map[string]string{"CALENDAR_SEARCH_DEBOUNCE": "0s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", "secret")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := LoadConfig(filepath.Join(t.TempDir(), ".env"))
			assert.Error(t, err)
		})
	}
}
