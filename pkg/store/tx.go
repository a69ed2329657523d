package store

import (
	"sort"

	"github.com/cuemby/livestatus/pkg/types"
)

// Tx is a read transaction handed to View callbacks. Returned objects are
// owned by the store and must not be modified or retained after the
// callback returns. Lists are sorted by natural key.
type Tx struct {
	s *Store
}

// Program returns the global program status
func (tx *Tx) Program() *types.ProgramStatus {
	return tx.s.program
}

// Hosts returns all hosts sorted by name
func (tx *Tx) Hosts() []*types.Host {
	out := make([]*types.Host, 0, len(tx.s.hosts))
	for _, h := range tx.s.hosts {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Host looks up a host by name
func (tx *Tx) Host(name string) (*types.Host, bool) {
	h, ok := tx.s.hosts[name]
	return h, ok
}

// Services returns all services sorted by host name and description
func (tx *Tx) Services() []*types.Service {
	out := make([]*types.Service, 0, len(tx.s.services))
	for _, svc := range tx.s.services {
		out = append(out, svc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ref().Less(out[j].Ref()) })
	return out
}

// Service looks up a service by key
func (tx *Tx) Service(hostName, description string) (*types.Service, bool) {
	svc, ok := tx.s.services[types.ObjectRef{HostName: hostName, Description: description}]
	return svc, ok
}

// ServicesOf returns the services of a host sorted by description
func (tx *Tx) ServicesOf(hostName string) []*types.Service {
	descs := tx.s.hostSvcs[hostName]
	out := make([]*types.Service, 0, len(descs))
	for _, desc := range descs {
		out = append(out, tx.s.services[types.ObjectRef{HostName: hostName, Description: desc}])
	}
	return out
}

// Groups returns the groups of a kind sorted by name
func (tx *Tx) Groups(kind types.GroupKind) []*types.Group {
	m := tx.s.groups[kind]
	out := make([]*types.Group, 0, len(m))
	for _, g := range m {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Group looks up a group by name
func (tx *Tx) Group(kind types.GroupKind, name string) (*types.Group, bool) {
	g, ok := tx.s.groups[kind][name]
	return g, ok
}

// Members returns the member keys of a group: host names, "host/service"
// refs or contact names
func (tx *Tx) Members(kind types.GroupKind, group string) []string {
	return tx.s.membership[kind].members[group]
}

// GroupsOf returns the names of the groups a member key belongs to
func (tx *Tx) GroupsOf(kind types.GroupKind, member string) []string {
	return tx.s.membership[kind].memberOf[member]
}

// Contacts returns all contacts sorted by name
func (tx *Tx) Contacts() []*types.Contact {
	out := make([]*types.Contact, 0, len(tx.s.contacts))
	for _, c := range tx.s.contacts {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Contact looks up a contact by name
func (tx *Tx) Contact(name string) (*types.Contact, bool) {
	c, ok := tx.s.contacts[name]
	return c, ok
}

// Commands returns all commands sorted by name
func (tx *Tx) Commands() []*types.Command {
	out := make([]*types.Command, 0, len(tx.s.commands))
	for _, c := range tx.s.commands {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Timeperiods returns all timeperiods sorted by name
func (tx *Tx) Timeperiods() []*types.Timeperiod {
	out := make([]*types.Timeperiod, 0, len(tx.s.timeperiods))
	for _, tp := range tx.s.timeperiods {
		out = append(out, tp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Downtimes returns all downtimes sorted by id
func (tx *Tx) Downtimes() []*types.Downtime {
	out := make([]*types.Downtime, 0, len(tx.s.downtimes))
	for _, d := range tx.s.downtimes {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// DowntimesOf returns the downtimes attached to exactly ref
func (tx *Tx) DowntimesOf(ref types.ObjectRef) []*types.Downtime {
	var out []*types.Downtime
	for _, d := range tx.Downtimes() {
		if d.Owner() == ref {
			out = append(out, d)
		}
	}
	return out
}

// Comments returns all comments sorted by id
func (tx *Tx) Comments() []*types.Comment {
	out := make([]*types.Comment, 0, len(tx.s.comments))
	for _, c := range tx.s.comments {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// CommentsOf returns the comments attached to exactly ref
func (tx *Tx) CommentsOf(ref types.ObjectRef) []*types.Comment {
	var out []*types.Comment
	for _, c := range tx.Comments() {
		if c.Owner() == ref {
			out = append(out, c)
		}
	}
	return out
}

// Peers returns the peer links of a kind sorted by name
func (tx *Tx) Peers(kind types.PeerKind) []*types.PeerLink {
	m := tx.s.peers[kind]
	out := make([]*types.PeerLink, 0, len(m))
	for _, p := range m {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Logs returns the log events in ingestion order
func (tx *Tx) Logs() ([]*types.LogEvent, error) {
	return tx.s.logs.Events()
}

// LogCount returns the number of stored log events
func (tx *Tx) LogCount() int {
	return tx.s.logs.Len()
}

// Children returns the names of the hosts declaring name as a parent
func (tx *Tx) Children(name string) []string {
	return tx.s.graph.children[name]
}

// Dependencies returns what ref depends on: act_depend_of, or the parents
// of a host and the owning host of a service when none is declared
func (tx *Tx) Dependencies(ref types.ObjectRef) []types.ObjectRef {
	return tx.s.graph.deps[ref]
}

// Dependents returns the objects depending on ref
func (tx *Tx) Dependents(ref types.ObjectRef) []types.ObjectRef {
	return tx.s.graph.dependents[ref]
}

// Problems returns every host and service flagged as a problem, hosts first
func (tx *Tx) Problems() []types.ObjectRef {
	var out []types.ObjectRef
	for _, h := range tx.Hosts() {
		if h.IsProblem {
			out = append(out, h.Ref())
		}
	}
	for _, svc := range tx.Services() {
		if svc.IsProblem {
			out = append(out, svc.Ref())
		}
	}
	return out
}

// Derived returns the problem/impact block of a host or service
func (tx *Tx) Derived(ref types.ObjectRef) (types.Derived, bool) {
	if ref.IsService() {
		svc, ok := tx.s.services[ref]
		if !ok {
			return types.Derived{}, false
		}
		return svc.Derived, true
	}
	h, ok := tx.s.hosts[ref.HostName]
	if !ok {
		return types.Derived{}, false
	}
	return h.Derived, true
}
