package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestColumnsCommand(t *testing.T) {
	out, err := execute(t, "columns")
	require.NoError(t, err)
	assert.Contains(t, out, "hosts")
	assert.Contains(t, out, "servicesbyhostgroup")

	out, err = execute(t, "columns", "downtimes")
	require.NoError(t, err)
	assert.Contains(t, out, "host_name")
	assert.Contains(t, out, "service_description")

	_, err = execute(t, "columns", "nosuch")
	assert.Error(t, err)
}

func TestLoadConfigFlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "livestatus.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen: 127.0.0.1:6557\nsocket: /tmp/live\nmax_log_events: 5\n"), 0644))

	require.NoError(t, serveCmd.ParseFlags([]string{
		"--config", path,
		"--listen", "127.0.0.1:7000",
		"--max-log-events", "9",
	}))

	cfg, err := loadConfig(serveCmd)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:7000", cfg.Listen)
	assert.Equal(t, "/tmp/live", cfg.Socket)
	assert.Equal(t, 9, cfg.MaxLogEvents)
}
