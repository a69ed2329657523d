package store

import (
	"path/filepath"
	"testing"

	"github.com/cuemby/livestatus/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoltLogStorePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.db")

	ls, err := NewBoltLogStore(path, 0)
	require.NoError(t, err)
	for i := int64(0); i < 3; i++ {
		require.NoError(t, ls.Append(&types.LogEvent{Time: 100 + i, Message: "line"}))
	}
	assert.Equal(t, 3, ls.Len())
	require.NoError(t, ls.Close())

	reopened, err := NewBoltLogStore(path, 0)
	require.NoError(t, err)
	defer reopened.Close()

	assert.Equal(t, 3, reopened.Len())
	evs, err := reopened.Events()
	require.NoError(t, err)
	require.Len(t, evs, 3)
	assert.Equal(t, int64(100), evs[0].Time)
	assert.Equal(t, int64(102), evs[2].Time)
}

func TestBoltLogStorePrunesOldest(t *testing.T) {
	ls, err := NewBoltLogStore(filepath.Join(t.TempDir(), "log.db"), 2)
	require.NoError(t, err)
	defer ls.Close()

	for i := int64(0); i < 5; i++ {
		require.NoError(t, ls.Append(&types.LogEvent{Time: i}))
	}

	evs, err := ls.Events()
	require.NoError(t, err)
	require.Len(t, evs, 2)
	assert.Equal(t, int64(3), evs[0].Time)
	assert.Equal(t, int64(4), evs[1].Time)
	assert.Equal(t, 2, ls.Len())
}

func TestStoreWithBoltLogStore(t *testing.T) {
	ls, err := NewBoltLogStore(filepath.Join(t.TempDir(), "log.db"), 0)
	require.NoError(t, err)

	s := New(WithLogStore(ls))
	defer s.Close()

	mustApply(t, s, logLine("[100] HOST ALERT: web01;DOWN;HARD;1;timeout"))

	require.NoError(t, s.View(func(tx *Tx) error {
		logs, err := tx.Logs()
		require.NoError(t, err)
		require.Len(t, logs, 1)
		assert.Equal(t, "web01", logs[0].HostName)
		assert.Equal(t, types.LogClassAlert, logs[0].Class)
		return nil
	}))
}

func TestBoltLogStoreReset(t *testing.T) {
	ls, err := NewBoltLogStore(filepath.Join(t.TempDir(), "log.db"), 0)
	require.NoError(t, err)
	defer ls.Close()

	require.NoError(t, ls.Append(&types.LogEvent{Time: 1}))
	require.NoError(t, ls.Reset())
	assert.Equal(t, 0, ls.Len())

	require.NoError(t, ls.Append(&types.LogEvent{Time: 2}))
	evs, err := ls.Events()
	require.NoError(t, err)
	require.Len(t, evs, 1)
	assert.Equal(t, int64(2), evs[0].Time)
}
