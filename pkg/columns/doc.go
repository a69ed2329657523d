/*
Package columns declares the Livestatus tables and their columns.

A Table pairs a RowSource, which lists rows from a store view, with named
columns whose extractors turn a row into a typed Value. Most columns are
declared as def tables per entity and attached with a prefix, so the
services table exposes host columns as host_<name> without repeating
them:

	t := r.add("services", serviceRows)
	addDefs(t, "host_", hostOf(func(svc *types.Service) string { return svc.HostName }), hosts)
	addDefs(t, "", self[*types.Service], services)

Requests naming an unknown column are resolved with ColumnOrEmpty, which
returns a column producing an empty string. Filters on unknown columns
are rejected by the query parser.

NewRegistry builds every table once; the registry is read-only afterwards
and shared by all connections.
*/
package columns
