package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()
	assert.Equal(t, DefaultListen, c.Listen)
	assert.Equal(t, DefaultMetricsListen, c.Metrics.Listen)
	assert.Equal(t, "info", c.Log.Level)
	assert.Empty(t, c.Socket)
	assert.NoError(t, c.Validate())
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		check   func(t *testing.T, c *Config)
		wantErr bool
	}{
		{
			name: "full file",
			yaml: `
listen: 0.0.0.0:6557
socket: /var/run/live
feed:
  listen: 127.0.0.1:7000
  file: /var/lib/livestatus/feed.jsonl
  tail_log: /var/log/monitoring.log
metrics:
  listen: :9150
log:
  level: debug
  json: true
pnp_path: /var/lib/pnp4nagios/perfdata
log_archive: /var/lib/livestatus/log.db
max_log_events: 10000
`,
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, "0.0.0.0:6557", c.Listen)
				assert.Equal(t, "/var/run/live", c.Socket)
				assert.Equal(t, "127.0.0.1:7000", c.Feed.Listen)
				assert.Equal(t, "/var/lib/livestatus/feed.jsonl", c.Feed.File)
				assert.Equal(t, "/var/log/monitoring.log", c.Feed.TailLog)
				assert.Equal(t, ":9150", c.Metrics.Listen)
				assert.Equal(t, "debug", c.Log.Level)
				assert.True(t, c.Log.JSON)
				assert.Equal(t, "/var/lib/pnp4nagios/perfdata", c.PnpPath)
				assert.Equal(t, "/var/lib/livestatus/log.db", c.LogArchive)
				assert.Equal(t, 10000, c.MaxLogEvents)
			},
		},
		{
			name: "socket only keeps tcp off",
			yaml: "socket: /tmp/live\n",
			check: func(t *testing.T, c *Config) {
				assert.Empty(t, c.Listen)
				assert.Equal(t, DefaultMetricsListen, c.Metrics.Listen)
			},
		},
		{
			name: "empty file",
			yaml: "",
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, Default(), c)
			},
		},
		{
			name:    "bad address",
			yaml:    "listen: localhost\n",
			wantErr: true,
		},
		{
			name:    "bad level",
			yaml:    "log:\n  level: chatty\n",
			wantErr: true,
		},
		{
			name:    "negative log cap",
			yaml:    "max_log_events: -1\n",
			wantErr: true,
		},
		{
			name:    "not yaml",
			yaml:    "listen: [",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Parse([]byte(tt.yaml))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, c)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "livestatus.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen: 127.0.0.1:6557\n"), 0644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:6557", c.Listen)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
