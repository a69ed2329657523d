package feed

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cuemby/livestatus/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFeed = `{"type":"initial_host_status","data":{"host_name":"web01","address":"10.0.0.1"}}
{"type":"initial_service_status","data":{"host_name":"web01","service_description":"http"}}

{"type":"update_service_status","data":{"host_name":"web01","service_description":"http","state_id":2,"state_type_id":1}}
not a record
{"type":"update_host_status","data":{"host_name":"ghost","state_id":1}}
{"type":"add_comment","data":{"host_name":"web01","author":"admin","comment":"investigating"}}
{"type":"log","data":{"log":"[100] SERVICE ALERT: web01;http;CRITICAL;HARD;1;down"}}
`

func serviceState(t *testing.T, s *store.Store, host, desc string) int {
	t.Helper()
	var state int
	require.NoError(t, s.View(func(tx *store.Tx) error {
		svc, ok := tx.Service(host, desc)
		require.True(t, ok)
		state = svc.State
		return nil
	}))
	return state
}

func TestConsume(t *testing.T) {
	s := store.New()
	c := NewConsumer(s)

	stats, err := c.Consume(context.Background(), strings.NewReader(sampleFeed))
	require.NoError(t, err)
	assert.Equal(t, Stats{Applied: 5, Rejected: 1, Invalid: 1}, stats)

	assert.Equal(t, 2, serviceState(t, s, "web01", "http"))
	counts := s.ObjectCounts()
	assert.Equal(t, 1, counts["hosts"])
	assert.Equal(t, 1, counts["comments"])
	assert.Equal(t, 1, counts["log"])
}

func TestConsumeStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewConsumer(store.New()).Consume(ctx, strings.NewReader(sampleFeed))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReplayFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feed.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(sampleFeed), 0644))

	s := store.New()
	stats, err := NewConsumer(s).ReplayFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 5, stats.Applied)

	_, err = NewConsumer(s).ReplayFile(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestListener(t *testing.T) {
	s := store.New()
	l := NewListener(NewConsumer(s), "127.0.0.1:0")
	require.NoError(t, l.Start(context.Background()))
	defer l.Stop()

	conn, err := net.Dial("tcp", l.Addr().String())
	require.NoError(t, err)
	_, err = fmt.Fprint(conn, sampleFeed)
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	assert.Eventually(t, func() bool {
		return l.Stats().Applied == 5
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 2, serviceState(t, s, "web01", "http"))

	require.NoError(t, l.Stop())
	assert.NoError(t, l.Stop())
}
