package columns

import (
	"github.com/cuemby/livestatus/pkg/store"
	"github.com/cuemby/livestatus/pkg/types"
)

func groupBaseColumns() []def[*types.Group] {
	return []def[*types.Group]{
		strCol("name", "Name of the group", func(g *types.Group) string { return g.Name }),
		strCol("alias", "An alias of the group", func(g *types.Group) string { return g.Alias }),
		strCol("notes", "Optional notes to the group", func(g *types.Group) string { return g.Notes }),
		strCol("notes_url", "An optional URL with further information about the group", func(g *types.Group) string { return g.NotesURL }),
		strCol("action_url", "An optional URL to custom actions or information about the group", func(g *types.Group) string { return g.ActionURL }),
	}
}

func memberHosts(g *types.Group, tx *store.Tx) []*types.Host {
	var out []*types.Host
	for _, name := range tx.Members(types.HostGroup, g.Name) {
		if h, ok := tx.Host(name); ok {
			out = append(out, h)
		}
	}
	return out
}

func memberServices(g *types.Group, tx *store.Tx) []*types.Service {
	var out []*types.Service
	for _, key := range tx.Members(types.ServiceGroup, g.Name) {
		ref := types.ParseObjectRef(key)
		if svc, ok := tx.Service(ref.HostName, ref.Description); ok {
			out = append(out, svc)
		}
	}
	return out
}

func hostgroupColumns() []def[*types.Group] {
	hostCount := func(match func(*types.Host) bool) func(*types.Group, *store.Tx) Value {
		return func(g *types.Group, tx *store.Tx) Value {
			n := 0
			for _, h := range memberHosts(g, tx) {
				if match(h) {
					n++
				}
			}
			return Int(int64(n))
		}
	}
	checkedIn := func(state int) func(*types.Host) bool {
		return func(h *types.Host) bool { return h.HasBeenChecked && h.State == state }
	}

	defs := append(groupBaseColumns(),
		listCol("members", "A list of all host names that are members of the hostgroup", func(g *types.Group, tx *store.Tx) []string {
			return tx.Members(types.HostGroup, g.Name)
		}),
		def[*types.Group]{"members_with_state", TypeList, "A list of all host names that are members of the hostgroup together with state and has_been_checked", func(g *types.Group, tx *store.Tx) Value {
			hosts := memberHosts(g, tx)
			items := make([]Value, len(hosts))
			for i, h := range hosts {
				items[i] = Tuple(String(h.Name), Int(int64(h.State)), Bool(h.HasBeenChecked))
			}
			return List(items...)
		}},
		def[*types.Group]{"num_hosts", TypeInt, "The total number of hosts in the group", hostCount(func(*types.Host) bool { return true })},
		def[*types.Group]{"num_hosts_pending", TypeInt, "The number of hosts in the group that are pending", hostCount(func(h *types.Host) bool { return !h.HasBeenChecked })},
		def[*types.Group]{"num_hosts_up", TypeInt, "The number of hosts in the group that are up", hostCount(checkedIn(types.HostUp))},
		def[*types.Group]{"num_hosts_down", TypeInt, "The number of hosts in the group that are down", hostCount(checkedIn(types.HostDown))},
		def[*types.Group]{"num_hosts_unreach", TypeInt, "The number of hosts in the group that are unreachable", hostCount(checkedIn(types.HostUnreachable))},
		def[*types.Group]{"worst_host_state", TypeInt, "The worst state of all of the groups' hosts (UP <= UNREACHABLE <= DOWN)", func(g *types.Group, tx *store.Tx) Value {
			worst := types.HostUp
			for _, h := range memberHosts(g, tx) {
				if h.HasBeenChecked && hostSeverity(h.State) > hostSeverity(worst) {
					worst = h.State
				}
			}
			return Int(int64(worst))
		}},
	)
	return append(defs, serviceCountColumns(func(g *types.Group, tx *store.Tx) []*types.Service {
		var out []*types.Service
		for _, h := range memberHosts(g, tx) {
			out = append(out, tx.ServicesOf(h.Name)...)
		}
		return out
	})...)
}

func servicegroupColumns() []def[*types.Group] {
	defs := append(groupBaseColumns(),
		def[*types.Group]{"members", TypeList, "A list of all members of the service group as host/service pairs", func(g *types.Group, tx *store.Tx) Value {
			svcs := memberServices(g, tx)
			items := make([]Value, len(svcs))
			for i, svc := range svcs {
				items[i] = Tuple(String(svc.HostName), String(svc.Description))
			}
			return List(items...)
		}},
		def[*types.Group]{"members_with_state", TypeList, "A list of all members of the service group with state and has_been_checked", func(g *types.Group, tx *store.Tx) Value {
			svcs := memberServices(g, tx)
			items := make([]Value, len(svcs))
			for i, svc := range svcs {
				items[i] = Tuple(String(svc.HostName), String(svc.Description), Int(int64(svc.State)), Bool(svc.HasBeenChecked))
			}
			return List(items...)
		}},
	)
	return append(defs, serviceCountColumns(memberServices)...)
}

func contactgroupColumns() []def[*types.Group] {
	return []def[*types.Group]{
		strCol("name", "The name of the contactgroup", func(g *types.Group) string { return g.Name }),
		strCol("alias", "The alias of the contactgroup", func(g *types.Group) string { return g.Alias }),
		listCol("members", "A list of all members of this contactgroup", func(g *types.Group, tx *store.Tx) []string {
			return tx.Members(types.ContactGroup, g.Name)
		}),
	}
}
