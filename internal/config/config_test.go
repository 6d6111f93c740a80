package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
}

func TestFromLookup_Defaults(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(nil))
	require.NoError(t, err)
	assert.Equal(t, ":9091", cfg.HTTPAddr)
	assert.Equal(t, 12, cfg.PageSize)
	assert.Equal(t, 5*time.Second, cfg.NoticeTTL)
	assert.Equal(t, 10*time.Second, cfg.APITimeout)
	assert.True(t, cfg.Offline())
	assert.Empty(t, cfg.RedisAddr)
}

func TestFromLookup_Overrides(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(map[string]string{
		"API_BASE_URL": "https://api.example.com/dev",
		"PAGE_SIZE":    "24",
		"NOTICE_TTL":   "2s",
		"CONSOLE":      "true",
		"REDIS_ADDR":   "localhost:6379",
	}))
	require.NoError(t, err)
	assert.False(t, cfg.Offline())
	assert.Equal(t, 24, cfg.PageSize)
	assert.Equal(t, 2*time.Second, cfg.NoticeTTL)
	assert.True(t, cfg.Console)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
}

func TestFromLookup_Invalid(t *testing.T) {
	for _, env := range []map[string]string{
		{"PAGE_SIZE": "abc"},
		{"PAGE_SIZE": "0"},
		{"PAGE_SIZE": "101"},
		{"NOTICE_TTL": "soon"},
		{"API_TIMEOUT": "10"},
		{"CONSOLE": "maybe"},
	} {
		_, err := FromLookup(lookupFrom(env))
		assert.Error(t, err, "%v", env)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("FARMACIA_TEST_ONLY=1\nHTTP_ADDR=:7070\n"), 0o600))
	t.Setenv("HTTP_ADDR", "")
	require.NoError(t, os.Unsetenv("HTTP_ADDR"))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.HTTPAddr)
	assert.Equal(t, "1", os.Getenv("FARMACIA_TEST_ONLY"))
	os.Unsetenv("FARMACIA_TEST_ONLY")
}
