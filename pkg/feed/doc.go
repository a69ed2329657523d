/*
Package feed turns the monitoring system's state-change stream into store
events.

Records are JSON lines of the form

	{"type": "update_host_status", "data": {"host_name": "web01", "state_id": 1}}

Decode maps a record to a typed events.Event and Encode is its inverse.
A Consumer applies events to the store and counts applied, rejected and
invalid records. Records reach the consumer from three sources:

  - ReplayFile reads a feed file once at start
  - Listener accepts TCP connections, each a stream of records
  - TailLog follows a monitoring log file and applies each new line as a
    log event

FSM adapts the consumer to hashicorp/raft, so a replicated log of feed
records can drive the store. Snapshots hold the full table contents and
the raw log lines.
*/
package feed
