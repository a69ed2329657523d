package columns

import (
	"sort"

	"github.com/cuemby/livestatus/pkg/store"
	"github.com/cuemby/livestatus/pkg/types"
)

// Counters exposes the server's running totals to the status table
type Counters interface {
	Requests() int64
	Connections() int64
}

// Options tune the column registry
type Options struct {
	// PnpPath is the PNP4Nagios perfdata directory checked by
	// pnpgraph_present. Empty disables the lookup.
	PnpPath string

	// Counters feeds the requests and connections columns of status
	Counters Counters

	// Version is reported as livestatus_version
	Version string
}

// Registry holds every table, built once at startup
type Registry struct {
	tables map[string]*Table
}

// NewRegistry builds all tables
func NewRegistry(opts Options) *Registry {
	r := &Registry{tables: make(map[string]*Table)}

	hosts := hostColumns(opts)
	services := serviceColumns(opts)

	t := r.add("hosts", func(tx *store.Tx) ([]any, error) { return rowsOf(tx.Hosts()), nil })
	addDefs(t, "", self[*types.Host], hosts)

	t = r.add("services", func(tx *store.Tx) ([]any, error) { return rowsOf(tx.Services()), nil })
	addDefs(t, "host_", hostOf(func(svc *types.Service) string { return svc.HostName }), hosts)
	addDefs(t, "", self[*types.Service], services)

	t = r.add("hostgroups", groupRows(types.HostGroup))
	addDefs(t, "", self[*types.Group], hostgroupColumns())

	t = r.add("servicegroups", groupRows(types.ServiceGroup))
	addDefs(t, "", self[*types.Group], servicegroupColumns())

	t = r.add("contactgroups", groupRows(types.ContactGroup))
	addDefs(t, "", self[*types.Group], contactgroupColumns())

	t = r.add("contacts", func(tx *store.Tx) ([]any, error) { return rowsOf(tx.Contacts()), nil })
	addDefs(t, "", self[*types.Contact], contactColumns())

	t = r.add("commands", func(tx *store.Tx) ([]any, error) { return rowsOf(tx.Commands()), nil })
	addDefs(t, "", self[*types.Command], commandColumns())

	t = r.add("timeperiods", func(tx *store.Tx) ([]any, error) { return rowsOf(tx.Timeperiods()), nil })
	addDefs(t, "", self[*types.Timeperiod], timeperiodColumns())

	t = r.add("downtimes", func(tx *store.Tx) ([]any, error) { return rowsOf(tx.Downtimes()), nil })
	addDefs(t, "host_", hostOf(func(d *types.Downtime) string { return d.HostName }), hosts)
	addDefs(t, "service_", serviceOf(func(d *types.Downtime) (string, string) { return d.HostName, d.Description }), services)
	addDefs(t, "", self[*types.Downtime], downtimeColumns())

	t = r.add("comments", func(tx *store.Tx) ([]any, error) { return rowsOf(tx.Comments()), nil })
	addDefs(t, "host_", hostOf(func(c *types.Comment) string { return c.HostName }), hosts)
	addDefs(t, "service_", serviceOf(func(c *types.Comment) (string, string) { return c.HostName, c.Description }), services)
	addDefs(t, "", self[*types.Comment], commentColumns())

	t = r.add("status", func(tx *store.Tx) ([]any, error) { return []any{tx.Program()}, nil })
	addDefs(t, "", self[*types.ProgramStatus], statusColumns(opts))

	for _, kind := range []types.PeerKind{types.PeerScheduler, types.PeerPoller, types.PeerReactionner, types.PeerBroker} {
		t = r.add(string(kind)+"s", func(tx *store.Tx) ([]any, error) { return rowsOf(tx.Peers(kind)), nil })
		addDefs(t, "", self[*types.PeerLink], peerColumns(kind))
	}

	t = r.add("problems", problemRows)
	addDefs(t, "", self[*problemRow], problemColumns())

	t = r.add("log", func(tx *store.Tx) ([]any, error) {
		logs, err := tx.Logs()
		if err != nil {
			return nil, err
		}
		return rowsOf(logs), nil
	})
	addDefs(t, "current_host_", hostOf(func(e *types.LogEvent) string { return e.HostName }), hosts)
	addDefs(t, "current_service_", serviceOf(func(e *types.LogEvent) (string, string) { return e.HostName, e.Description }), services)
	addDefs(t, "current_contact_", contactOf(func(e *types.LogEvent) string { return e.ContactName }), contactColumns())
	addDefs(t, "", self[*types.LogEvent], logColumns())
	t.AddAlias("log_time", "time")

	t = r.add("hostsbygroup", hostsByGroupRows)
	addDefs(t, "", project(func(row *hostInGroup) *types.Host { return row.host }), hosts)
	addDefs(t, "hostgroup_", project(func(row *hostInGroup) *types.Group { return row.group }), hostgroupColumns())

	t = r.add("servicesbygroup", servicesByGroupRows)
	addDefs(t, "host_", hostOf(func(row *serviceInGroup) string { return row.svc.HostName }), hosts)
	addDefs(t, "", project(func(row *serviceInGroup) *types.Service { return row.svc }), services)
	addDefs(t, "servicegroup_", project(func(row *serviceInGroup) *types.Group { return row.group }), servicegroupColumns())

	t = r.add("servicesbyhostgroup", servicesByHostgroupRows)
	addDefs(t, "host_", hostOf(func(row *serviceInGroup) string { return row.svc.HostName }), hosts)
	addDefs(t, "", project(func(row *serviceInGroup) *types.Service { return row.svc }), services)
	addDefs(t, "hostgroup_", project(func(row *serviceInGroup) *types.Group { return row.group }), hostgroupColumns())

	t = r.add("columns", func(*store.Tx) ([]any, error) {
		var rows []any
		for _, table := range r.Tables() {
			rows = append(rows, rowsOf(table.Columns())...)
		}
		return rows, nil
	})
	addDefs(t, "", self[*Column], []def[*Column]{
		strCol("name", "The name of the column within the table", func(c *Column) string { return c.Name }),
		strCol("table", "The name of the table", func(c *Column) string { return c.Table }),
		strCol("type", "The data type of the column (int, float, string, list)", func(c *Column) string { return c.Type.String() }),
		strCol("description", "A description of the column", func(c *Column) string { return c.Description }),
	})

	return r
}

func (r *Registry) add(name string, rows RowSource) *Table {
	t := newTable(name, rows)
	r.tables[name] = t
	return t
}

// Table looks up a table by name
func (r *Registry) Table(name string) (*Table, bool) {
	t, ok := r.tables[name]
	return t, ok
}

// Tables returns all tables sorted by name
func (r *Registry) Tables() []*Table {
	out := make([]*Table, 0, len(r.tables))
	for _, t := range r.tables {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// project resolves rows of type R to one of their fields
func project[R, T any](fn func(R) T) resolver[T] {
	return func(row any, _ *store.Tx) (T, bool) {
		r, ok := row.(R)
		if !ok {
			var zero T
			return zero, false
		}
		return fn(r), true
	}
}

func contactOf[R any](name func(R) string) resolver[*types.Contact] {
	return func(row any, tx *store.Tx) (*types.Contact, bool) {
		r, ok := row.(R)
		if !ok {
			return nil, false
		}
		return tx.Contact(name(r))
	}
}

func groupRows(kind types.GroupKind) RowSource {
	return func(tx *store.Tx) ([]any, error) {
		return rowsOf(tx.Groups(kind)), nil
	}
}

func problemRows(tx *store.Tx) ([]any, error) {
	var rows []any
	for _, ref := range tx.Problems() {
		d, ok := tx.Derived(ref)
		if !ok {
			continue
		}
		rows = append(rows, &problemRow{source: ref, impacts: d.Impacts})
	}
	return rows, nil
}

type hostInGroup struct {
	host  *types.Host
	group *types.Group
}

type serviceInGroup struct {
	svc   *types.Service
	group *types.Group
}

func hostsByGroupRows(tx *store.Tx) ([]any, error) {
	var rows []any
	for _, g := range tx.Groups(types.HostGroup) {
		for _, h := range memberHosts(g, tx) {
			rows = append(rows, &hostInGroup{host: h, group: g})
		}
	}
	return rows, nil
}

func servicesByGroupRows(tx *store.Tx) ([]any, error) {
	var rows []any
	for _, g := range tx.Groups(types.ServiceGroup) {
		for _, svc := range memberServices(g, tx) {
			rows = append(rows, &serviceInGroup{svc: svc, group: g})
		}
	}
	return rows, nil
}

func servicesByHostgroupRows(tx *store.Tx) ([]any, error) {
	var rows []any
	for _, g := range tx.Groups(types.HostGroup) {
		for _, h := range memberHosts(g, tx) {
			for _, svc := range tx.ServicesOf(h.Name) {
				rows = append(rows, &serviceInGroup{svc: svc, group: g})
			}
		}
	}
	return rows, nil
}
