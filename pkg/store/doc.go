/*
Package store holds the live object store: an in-memory mirror of hosts,
services, groups, contacts, downtimes, comments, log events and peer links,
mutated only by applying feed events.

	s := store.New(store.WithLogStore(store.NewMemoryLogStore(10000)))
	if err := s.Apply(events.HostStatus{Host: types.NewHost("web01")}); err != nil {
		// unknown key or malformed event; the store is unchanged
	}
	s.View(func(tx *store.Tx) error {
		for _, h := range tx.Hosts() {
			...
		}
		return nil
	})

Apply holds the write lock for the whole event, View holds the read lock for
the whole callback, so a query never sees part of an event. Create events
overwrite by natural key, update events decode a JSON patch onto a copy of
the current object and swap it in.

The problem/impact relation and the parent/child graph are recomputed on
every host or service change. Group membership is one index per group kind,
fed both by group member lists and by the groups an object declares.

The log table lives behind LogStore: MemoryLogStore, or BoltLogStore for an
on-disk archive that survives restarts.
*/
package store
