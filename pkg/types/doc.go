/*
Package types defines the monitoring entities mirrored by the object store.

Hosts and services share a CheckState holding everything the scheduler
decides (state, state type, check timings, feature flags). The store never
computes these values, it only copies them from the event feed. The Derived
block (is_problem, is_impact, impacts, source_problems) is the exception:
the store recomputes it from the mirrored hard states and the act_depend_of
relation on every change.

Relations between objects are stored as keys, never as pointers:

	host.Parents        []string     host names
	host.ActDependOf    []ObjectRef  hosts or services this one depends on
	group.Members       []string     host names, "host/service" refs or contacts
	downtime.HostName + downtime.Description
	                                  owning host or service

All traversal goes through the store's lookup-by-key, so the object graph
has no ownership cycles and a row can be copied by value.

# JSON

Struct tags follow the field names of the scheduler's status broks, which
lets the feed decode a brok payload directly onto a defaulted value
(NewHost, NewService, NewPeerLink) and apply partial updates by decoding a
patch onto a copy of the current object.
*/
package types
