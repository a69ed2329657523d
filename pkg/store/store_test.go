package store

import (
	"errors"
	"testing"
	"time"

	"github.com/cuemby/livestatus/pkg/events"
	"github.com/cuemby/livestatus/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hostEvent(name string, parents ...string) events.HostStatus {
	h := types.NewHost(name)
	h.Parents = parents
	return events.HostStatus{Host: h}
}

func serviceEvent(host, desc string) events.ServiceStatus {
	return events.ServiceStatus{Service: types.NewService(host, desc)}
}

func logLine(line string) events.LogLine {
	return events.LogLine{Line: line}
}

func mustApply(t *testing.T, s *Store, evs ...events.Event) {
	t.Helper()
	for _, ev := range evs {
		require.NoError(t, s.Apply(ev))
	}
}

func TestApplyInitialIsIdempotent(t *testing.T) {
	s := New()
	mustApply(t, s, hostEvent("web01"), hostEvent("web01"))

	h := types.NewHost("web01")
	h.Address = "10.0.0.1"
	mustApply(t, s, events.HostStatus{Host: h})

	err := s.View(func(tx *Tx) error {
		hosts := tx.Hosts()
		require.Len(t, hosts, 1)
		assert.Equal(t, "10.0.0.1", hosts[0].Address)
		return nil
	})
	require.NoError(t, err)
}

func TestApplyUpdate(t *testing.T) {
	s := New()
	mustApply(t, s, hostEvent("web01"), serviceEvent("web01", "http"))

	mustApply(t, s, events.ServiceUpdate{
		HostName:    "web01",
		Description: "http",
		Patch: events.Fields(map[string]any{
			"state_id":      2,
			"output":        "connection refused",
			"unknown_field": "ignored",
		}),
	})

	require.NoError(t, s.View(func(tx *Tx) error {
		svc, ok := tx.Service("web01", "http")
		require.True(t, ok)
		assert.Equal(t, 2, svc.State)
		assert.Equal(t, "connection refused", svc.PluginOutput)
		// untouched fields keep their defaults
		assert.True(t, svc.ActiveChecksEnabled)
		assert.Equal(t, 1, svc.MaxCheckAttempts)
		return nil
	}))
}

func TestApplyUpdateUnknownKey(t *testing.T) {
	tests := []struct {
		name string
		ev   events.Event
	}{
		{"host", events.HostUpdate{HostName: "ghost"}},
		{"service", events.ServiceUpdate{HostName: "ghost", Description: "ping"}},
		{"timeperiod", events.TimeperiodUpdate{Name: "never"}},
		{"downtime", events.DowntimeUpdate{ID: 42}},
		{"delete downtime", events.DowntimeDelete{ID: 42}},
		{"delete comment", events.CommentDelete{ID: 42}},
		{"peer", events.PeerUpdate{Kind: types.PeerPoller, Name: "poller-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			err := s.Apply(tt.ev)
			assert.True(t, errors.Is(err, ErrUnknownObject), "got %v", err)
			assert.Equal(t, 0, s.ObjectCounts()["hosts"])
		})
	}
}

func TestApplyBadPatchLeavesStoreUntouched(t *testing.T) {
	s := New()
	mustApply(t, s, hostEvent("web01"))

	err := s.Apply(events.HostUpdate{HostName: "web01", Patch: events.Patch(`{"state_id":"down"}`)})
	require.Error(t, err)

	require.NoError(t, s.View(func(tx *Tx) error {
		h, _ := tx.Host("web01")
		assert.Equal(t, 0, h.State)
		return nil
	}))
}

func TestApplyRejectsUnknownKinds(t *testing.T) {
	tests := []struct {
		name string
		ev   events.Event
	}{
		{"group", events.GroupStatus{Group: &types.Group{Name: "g", Kind: "hostgroups"}}},
		{"peer", events.PeerStatus{Peer: &types.PeerLink{Name: "p", Kind: "arbiter"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			err := s.Apply(tt.ev)
			assert.True(t, errors.Is(err, ErrInvalidEvent), "got %v", err)

			// The write lock is released: a view and a further apply complete
			done := make(chan struct{})
			go func() {
				defer close(done)
				_ = s.View(func(tx *Tx) error {
					assert.Empty(t, tx.Groups(types.HostGroup))
					return nil
				})
				_ = s.Apply(hostEvent("web01"))
			}()
			select {
			case <-done:
			case <-time.After(2 * time.Second):
				t.Fatal("store still locked after rejected event")
			}
			assert.Equal(t, 1, s.ObjectCounts()["hosts"])
		})
	}
}

func TestDowntimeAndCommentLifecycle(t *testing.T) {
	s := New()
	mustApply(t, s,
		hostEvent("web01"),
		events.DowntimeAdd{Downtime: &types.Downtime{HostName: "web01", Author: "admin"}},
		events.DowntimeAdd{Downtime: &types.Downtime{HostName: "web01", Description: "http"}},
		events.CommentAdd{Comment: &types.Comment{ID: 7, HostName: "web01", Text: "rebooting"}},
		events.CommentAdd{Comment: &types.Comment{HostName: "web01", Text: "again"}},
	)

	require.NoError(t, s.View(func(tx *Tx) error {
		dts := tx.Downtimes()
		require.Len(t, dts, 2)
		assert.Equal(t, 1, dts[0].ID)
		assert.Equal(t, 2, dts[1].ID)
		assert.Len(t, tx.DowntimesOf(types.ObjectRef{HostName: "web01"}), 1)

		comments := tx.Comments()
		require.Len(t, comments, 2)
		assert.Equal(t, 7, comments[0].ID)
		assert.Equal(t, 8, comments[1].ID)
		return nil
	}))

	mustApply(t, s,
		events.DowntimeUpdate{ID: 1, Patch: events.Fields(map[string]any{"is_in_effect": true})},
		events.DowntimeDelete{ID: 2},
		events.CommentDelete{ID: 7},
	)

	require.NoError(t, s.View(func(tx *Tx) error {
		dts := tx.Downtimes()
		require.Len(t, dts, 1)
		assert.True(t, dts[0].IsInEffect)
		assert.Equal(t, "admin", dts[0].Author)
		assert.Len(t, tx.Comments(), 1)
		return nil
	}))
}

func TestGroupMembershipIsSymmetric(t *testing.T) {
	s := New()
	h := types.NewHost("web01")
	h.Groups = []string{"linux"}
	mustApply(t, s,
		events.HostStatus{Host: h},
		hostEvent("db01"),
		events.GroupStatus{Group: &types.Group{Kind: types.HostGroup, Name: "linux", Members: []string{"db01"}}},
		events.GroupStatus{Group: &types.Group{Kind: types.HostGroup, Name: "all", Members: []string{"web01", "db01"}}},
	)

	require.NoError(t, s.View(func(tx *Tx) error {
		assert.Equal(t, []string{"db01", "web01"}, tx.Members(types.HostGroup, "linux"))
		assert.Equal(t, []string{"all", "linux"}, tx.GroupsOf(types.HostGroup, "web01"))
		assert.Equal(t, []string{"all", "linux"}, tx.GroupsOf(types.HostGroup, "db01"))
		return nil
	}))
}

func TestServicesOfHost(t *testing.T) {
	s := New()
	mustApply(t, s,
		hostEvent("web01"),
		serviceEvent("web01", "ssh"),
		serviceEvent("web01", "http"),
		serviceEvent("web02", "http"),
	)

	require.NoError(t, s.View(func(tx *Tx) error {
		svcs := tx.ServicesOf("web01")
		require.Len(t, svcs, 2)
		assert.Equal(t, "http", svcs[0].Description)
		assert.Equal(t, "ssh", svcs[1].Description)
		assert.Len(t, tx.Services(), 3)
		return nil
	}))
}

func TestPeerDefaults(t *testing.T) {
	s := New()
	mustApply(t, s,
		events.PeerStatus{Peer: types.NewPeerLink(types.PeerBroker, "broker-1")},
		events.PeerUpdate{Kind: types.PeerBroker, Name: "broker-1", Patch: events.Fields(map[string]any{"alive": false})},
	)

	require.NoError(t, s.View(func(tx *Tx) error {
		peers := tx.Peers(types.PeerBroker)
		require.Len(t, peers, 1)
		assert.Equal(t, 7772, peers[0].Port)
		assert.False(t, peers[0].Alive)
		assert.Equal(t, types.PeerBroker, peers[0].Kind)
		return nil
	}))
}

func TestApplyPublishesNotifications(t *testing.T) {
	broker := events.NewBroker()
	broker.Start()
	defer broker.Stop()
	sub := broker.Subscribe()

	s := New(WithBroker(broker))
	mustApply(t, s, hostEvent("web01"))
	_ = s.Apply(events.HostUpdate{HostName: "ghost"})

	first := <-sub
	assert.Equal(t, events.EventInitialHost, first.Type)
	assert.Equal(t, "web01", first.Key)
	assert.False(t, first.Rejected)
	assert.NotEmpty(t, first.ID)

	second := <-sub
	assert.True(t, second.Rejected)
	assert.Equal(t, "ghost", second.Key)
}

func TestLogLinesWithLimit(t *testing.T) {
	s := New(WithLogStore(NewMemoryLogStore(2)))
	mustApply(t, s,
		events.LogLine{Line: "[1000] LOG VERSION: 2.0"},
		events.LogLine{Line: "[1001] HOST ALERT: web01;DOWN;HARD;3;timeout"},
		events.LogLine{Line: "[1002] HOST ALERT: web01;UP;HARD;1;ok"},
	)

	require.NoError(t, s.View(func(tx *Tx) error {
		logs, err := tx.Logs()
		require.NoError(t, err)
		require.Len(t, logs, 2)
		assert.Equal(t, int64(1001), logs[0].Time)
		assert.Equal(t, uint64(3), logs[1].Seq)
		return nil
	}))
}

func TestReset(t *testing.T) {
	s := New()
	mustApply(t, s,
		hostEvent("web01"),
		serviceEvent("web01", "http"),
		events.CommentAdd{Comment: &types.Comment{HostName: "web01", Text: "hi"}},
		logLine("[100] HOST ALERT: web01;DOWN;HARD;1;timeout"),
	)

	require.NoError(t, s.Reset())

	counts := s.ObjectCounts()
	for table, n := range counts {
		assert.Zero(t, n, table)
	}

	// Ids and log sequence numbers start over
	mustApply(t, s,
		hostEvent("web02"),
		events.CommentAdd{Comment: &types.Comment{HostName: "web02"}},
		logLine("[200] HOST ALERT: web02;UP;HARD;1;ok"),
	)
	require.NoError(t, s.View(func(tx *Tx) error {
		comments := tx.Comments()
		require.Len(t, comments, 1)
		assert.Equal(t, 1, comments[0].ID)

		logs, err := tx.Logs()
		require.NoError(t, err)
		require.Len(t, logs, 1)
		assert.Equal(t, uint64(1), logs[0].Seq)
		return nil
	}))
}
