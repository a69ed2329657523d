package store

import (
	"testing"

	"github.com/cuemby/livestatus/pkg/events"
	"github.com/cuemby/livestatus/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hardState(state int) events.Patch {
	return events.Fields(map[string]any{"state_id": state, "state_type_id": types.StateTypeHard})
}

func newTopology(t *testing.T) *Store {
	t.Helper()
	s := New()
	mustApply(t, s,
		hostEvent("test_router_0"),
		hostEvent("test_host_0", "test_router_0"),
		serviceEvent("test_host_0", "test_ok_0"),
	)
	return s
}

func TestRouterDownMakesEverythingBelowAnImpact(t *testing.T) {
	s := newTopology(t)
	mustApply(t, s, events.HostUpdate{HostName: "test_router_0", Patch: hardState(types.HostDown)})

	require.NoError(t, s.View(func(tx *Tx) error {
		router, _ := tx.Host("test_router_0")
		host, _ := tx.Host("test_host_0")
		svc, _ := tx.Service("test_host_0", "test_ok_0")

		assert.True(t, router.IsProblem)
		assert.False(t, router.IsImpact)
		assert.Equal(t, []types.ObjectRef{
			{HostName: "test_host_0"},
			{HostName: "test_host_0", Description: "test_ok_0"},
		}, router.Impacts)

		// an UP host below a DOWN router is still impacted
		assert.False(t, host.IsProblem)
		assert.True(t, host.IsImpact)
		assert.Equal(t, []types.ObjectRef{{HostName: "test_router_0"}}, host.SourceProblems)

		assert.True(t, svc.IsImpact)
		assert.Equal(t, []types.ObjectRef{{HostName: "test_router_0"}}, svc.SourceProblems)
		return nil
	}))
}

func TestOnlyRootCauseIsAProblem(t *testing.T) {
	s := newTopology(t)
	mustApply(t, s,
		events.HostUpdate{HostName: "test_host_0", Patch: hardState(types.HostDown)},
		events.HostUpdate{HostName: "test_router_0", Patch: hardState(types.HostDown)},
		events.ServiceUpdate{HostName: "test_host_0", Description: "test_ok_0", Patch: hardState(types.ServiceCritical)},
	)

	require.NoError(t, s.View(func(tx *Tx) error {
		assert.Equal(t, []types.ObjectRef{{HostName: "test_router_0"}}, tx.Problems())
		return nil
	}))
}

func TestSoftStateIsNotAProblem(t *testing.T) {
	s := newTopology(t)
	mustApply(t, s, events.HostUpdate{
		HostName: "test_router_0",
		Patch:    events.Fields(map[string]any{"state_id": 1, "state_type_id": types.StateTypeSoft}),
	})

	require.NoError(t, s.View(func(tx *Tx) error {
		assert.Empty(t, tx.Problems())
		host, _ := tx.Host("test_host_0")
		assert.False(t, host.IsImpact)
		return nil
	}))
}

func TestRecoveryClearsImpacts(t *testing.T) {
	s := newTopology(t)
	mustApply(t, s,
		events.HostUpdate{HostName: "test_router_0", Patch: hardState(types.HostDown)},
		events.HostUpdate{HostName: "test_router_0", Patch: hardState(types.HostUp)},
	)

	require.NoError(t, s.View(func(tx *Tx) error {
		for _, h := range tx.Hosts() {
			assert.False(t, h.IsProblem, h.Name)
			assert.False(t, h.IsImpact, h.Name)
			assert.Empty(t, h.Impacts, h.Name)
			assert.Empty(t, h.SourceProblems, h.Name)
		}
		return nil
	}))
}

func TestImpactsAndSourceProblemsAreSymmetric(t *testing.T) {
	s := New()
	mustApply(t, s,
		hostEvent("core"),
		hostEvent("edge_a", "core"),
		hostEvent("edge_b", "core"),
		hostEvent("leaf", "edge_a", "edge_b"),
		serviceEvent("leaf", "http"),
		events.HostUpdate{HostName: "core", Patch: hardState(types.HostDown)},
		events.HostUpdate{HostName: "edge_b", Patch: hardState(types.HostUnreachable)},
	)

	require.NoError(t, s.View(func(tx *Tx) error {
		refs := []types.ObjectRef{{HostName: "core"}, {HostName: "edge_a"}, {HostName: "edge_b"}, {HostName: "leaf"}, {HostName: "leaf", Description: "http"}}
		for _, a := range refs {
			da, _ := tx.Derived(a)
			for _, b := range da.Impacts {
				db, ok := tx.Derived(b)
				require.True(t, ok)
				assert.Contains(t, db.SourceProblems, a)
			}
			for _, b := range da.SourceProblems {
				db, _ := tx.Derived(b)
				assert.Contains(t, db.Impacts, a)
			}
		}
		assert.Equal(t, []string{"edge_a", "edge_b"}, tx.Children("core"))
		return nil
	}))
}

func TestActDependOfOverridesParents(t *testing.T) {
	s := newTopology(t)
	mustApply(t, s,
		hostEvent("other"),
		events.ServiceStatus{Service: &types.Service{
			HostName:    "test_host_0",
			Description: "app",
			ActDependOf: []types.ObjectRef{{HostName: "other"}},
			CheckState:  types.DefaultCheckState(),
		}},
	)

	require.NoError(t, s.View(func(tx *Tx) error {
		deps := tx.Dependencies(types.ObjectRef{HostName: "test_host_0", Description: "app"})
		assert.Equal(t, []types.ObjectRef{{HostName: "other"}}, deps)
		assert.Equal(t,
			[]types.ObjectRef{{HostName: "test_host_0", Description: "app"}},
			tx.Dependents(types.ObjectRef{HostName: "other"}))
		return nil
	}))
}
