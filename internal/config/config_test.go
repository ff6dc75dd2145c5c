package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ordinal.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "sqlite3", cfg.Driver)
	assert.Equal(t, "ordinal.db", cfg.DSN)
	assert.Equal(t, 5*time.Second, cfg.LockTimeout.Std())
	assert.Equal(t, 3, cfg.Retry.Attempts)
	assert.Equal(t, 50*time.Millisecond, cfg.Retry.Base.Std())
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
driver: postgres
dsn: postgres://localhost/ordinal
lock_timeout: 250ms
retry:
  attempts: 5
log_level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Driver)
	assert.Equal(t, "postgres://localhost/ordinal", cfg.DSN)
	assert.Equal(t, 250*time.Millisecond, cfg.LockTimeout.Std())
	assert.Equal(t, 5, cfg.Retry.Attempts)
	assert.Equal(t, DefaultRetryBase, cfg.Retry.Base.Std(), "omitted field keeps default")
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_EmptyFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load config")
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"unknown key", "drvier: sqlite3", "field drvier not found"},
		{"bad driver", "driver: mysql", `driver "mysql"`},
		{"bad duration", "lock_timeout: soon", `duration "soon"`},
		{"zero timeout", "lock_timeout: 0s", "lock_timeout 0s: must be positive"},
		{"zero attempts", "retry:\n  attempts: 0", "retry.attempts 0"},
		{"empty dsn", `dsn: ""`, "dsn: must not be empty"},
		{"bad level", "log_level: loud", `log_level "loud"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			err := Parse([]byte(tt.yaml), &cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestDuration_MarshalRoundTrip(t *testing.T) {
	out, err := Duration(1500 * time.Millisecond).MarshalYAML()
	require.NoError(t, err)
	assert.Equal(t, "1.5s", out)
}
