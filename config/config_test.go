package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromBytes(t *testing.T) {
	yamlData := `
version: "1.0"
name: dev-box
watch:
  status_dir: /tmp/status
  poll_interval: 3s
daemon:
  socket_path: /tmp/aw.sock
logging:
  level: debug
`
	cfg, err := LoadFromBytes([]byte(yamlData))
	require.NoError(t, err)

	assert.Equal(t, "dev-box", cfg.Name)
	assert.Equal(t, "/tmp/status", cfg.Watch.StatusDir)
	assert.Equal(t, 3*time.Second, cfg.Watch.PollIntervalDuration())
	assert.Equal(t, "/tmp/aw.sock", cfg.Daemon.SocketPath)

	// Unknown top-level keys land in Extensions
	assert.Contains(t, cfg.Extensions, "logging")
}

func TestLoadFromBytesInvalidYAML(t *testing.T) {
	_, err := LoadFromBytes([]byte("version: [unclosed"))
	require.Error(t, err)
}

func TestSetDefaults(t *testing.T) {
	cfg := Config{}
	cfg.SetDefaults()

	assert.Equal(t, "1.0", cfg.Version)
	require.NotNil(t, cfg.Watch)
	require.NotNil(t, cfg.Daemon)
	assert.Equal(t, 2*time.Second, cfg.Watch.PollIntervalDuration())
	assert.Equal(t, 100*time.Millisecond, cfg.Watch.DebounceDuration())
}

func TestDurationFallbacks(t *testing.T) {
	w := &WatchConfig{PollInterval: "not-a-duration", Debounce: "-5s"}
	assert.Equal(t, 2*time.Second, w.PollIntervalDuration())
	assert.Equal(t, 100*time.Millisecond, w.DebounceDuration())

	var nilWatch *WatchConfig
	assert.Equal(t, 2*time.Second, nilWatch.PollIntervalDuration())
}

func TestUnmarshalExtension(t *testing.T) {
	cfg, err := LoadFromBytes([]byte(`
version: "1.0"
logging:
  level: warn
  report_caller: true
`))
	require.NoError(t, err)

	type logSection struct {
		Level        string `yaml:"level"`
		ReportCaller bool   `yaml:"report_caller"`
	}

	var section logSection
	require.NoError(t, cfg.UnmarshalExtension("logging", &section))
	assert.Equal(t, "warn", section.Level)
	assert.True(t, section.ReportCaller)

	// Missing keys are not an error; the target stays zero-valued
	var missing logSection
	require.NoError(t, cfg.UnmarshalExtension("absent", &missing))
	assert.Empty(t, missing.Level)
}

func TestMergeConfigs(t *testing.T) {
	base := &Config{
		Version: "1.0",
		Watch:   &WatchConfig{StatusDir: "/base/status", PollInterval: "1s"},
		Extensions: map[string]interface{}{
			"logging": map[string]interface{}{"level": "info", "report_caller": true},
		},
	}
	override := &Config{
		Watch:  &WatchConfig{StatusDir: "/override/status"},
		Daemon: &DaemonConfig{SocketPath: "/run/aw.sock"},
		Extensions: map[string]interface{}{
			"logging": map[string]interface{}{"level": "debug"},
		},
	}

	merged := mergeConfigs(base, override)

	assert.Equal(t, "/override/status", merged.Watch.StatusDir)
	assert.Equal(t, "1s", merged.Watch.PollInterval)
	assert.Equal(t, "/run/aw.sock", merged.Daemon.SocketPath)

	logging := merged.Extensions["logging"].(map[string]interface{})
	assert.Equal(t, "debug", logging["level"])
	assert.Equal(t, true, logging["report_caller"])
}

func TestFindConfigFileWalksUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))

	configPath := filepath.Join(root, "agentwatch.yml")
	require.NoError(t, os.WriteFile(configPath, []byte("version: \"1.0\"\n"), 0644))

	found, err := FindConfigFile(nested)
	require.NoError(t, err)
	assert.Equal(t, configPath, found)
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("AW_TEST_DIR", "/var/run/agentwatch")

	out := expandEnvVars("status_dir: ${AW_TEST_DIR}/status")
	assert.Equal(t, "status_dir: /var/run/agentwatch/status", out)

	out = expandEnvVars("socket: ${AW_TEST_UNSET:-/tmp/default.sock}")
	assert.Equal(t, "socket: /tmp/default.sock", out)
}
