package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeCreatesDefaultFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	require.NoError(t, Initialize(""))

	_, err := os.Stat(filepath.Join(home, FileName))
	require.NoError(t, err)

	cfg := Get()
	assert.Equal(t, "https://gateway.lacosapp.com/api", cfg.Server.URL)
	assert.Equal(t, "lacos", cfg.DeepLink.Scheme)
	assert.Contains(t, cfg.DeepLink.Hosts, "lacosapp.com")
	assert.Equal(t, 10, cfg.Routing.Attempts())
}

func TestInitializeReadsExplicitFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	content := []byte(`
server:
  url: http://127.0.0.1:9000/api
  timeout: 5s
storage:
  driver: memory
routing:
  reset_delay: 50ms
  drain_attempts: 3
  drain_interval: 20ms
deeplink:
  scheme: lacos
  hosts: [example.org]
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	require.NoError(t, Initialize(path))
	cfg := Get()

	assert.Equal(t, "http://127.0.0.1:9000/api", cfg.Server.URL)
	assert.Equal(t, 5*time.Second, cfg.Server.TimeoutDuration())
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, 50*time.Millisecond, cfg.Routing.ResetDelayDuration())
	assert.Equal(t, 20*time.Millisecond, cfg.Routing.DrainIntervalDuration())
	assert.Equal(t, 3, cfg.Routing.Attempts())
	assert.Equal(t, []string{"example.org"}, cfg.DeepLink.Hosts)
	assert.Equal(t, path, Path())
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "env.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  url: http://file\n"), 0o600))
	t.Setenv("LACOS_SERVER_URL", "http://env")

	require.NoError(t, Initialize(path))
	assert.Equal(t, "http://env", Get().Server.URL)
}

func TestInvalidDurationsFallBack(t *testing.T) {
	r := RoutingConfig{ResetDelay: "soon", DrainInterval: "-1s"}
	assert.Equal(t, 300*time.Millisecond, r.ResetDelayDuration())
	assert.Equal(t, 500*time.Millisecond, r.DrainIntervalDuration())
	assert.Equal(t, 30*time.Second, ServerConfig{}.TimeoutDuration())
}

func TestOutputFormatPrecedence(t *testing.T) {
	t.Cleanup(func() { SetOutputFormat("") })

	globalConfig = &Config{Format: FormatConfig{Default: "yaml"}}
	assert.Equal(t, "yaml", GetOutputFormat())

	SetOutputFormat("json")
	assert.Equal(t, "json", GetOutputFormat())
}
