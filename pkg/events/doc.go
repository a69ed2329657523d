/*
Package events defines the typed feed events that mutate the object store
and the broker that announces them.

# Events

Each feed record type maps to one Go type implementing Event:

	program_status / update_program_status   ProgramStatus, ProgramStatusUpdate
	initial_host_status / update_host_status HostStatus, HostUpdate
	initial_service_status / update_...      ServiceStatus, ServiceUpdate
	initial_{host,service,contact}group_...  GroupStatus
	initial_contact_status                   ContactStatus
	initial_command_status                   CommandStatus
	initial/update_timeperiod_status         TimeperiodStatus, TimeperiodUpdate
	add/update/delete_downtime               DowntimeAdd, DowntimeUpdate, DowntimeDelete
	add/delete_comment                       CommentAdd, CommentDelete
	log                                      LogLine
	initial/update_<peer>_status             PeerStatus, PeerUpdate

Create events carry a full object and overwrite by natural key. Update
events carry the key plus a Patch: the raw JSON of the changed attributes,
decoded by the store onto a copy of the current object.

	ev := events.HostUpdate{
		HostName: "web01",
		Patch:    events.Fields(map[string]any{"state_id": 1}),
	}

# Broker

The store publishes a Notification for every applied or rejected event.
Publish never blocks: a full queue drops the notification, and a slow
subscriber misses notifications rather than stalling ingestion.

	┌───────┐  Publish  ┌──────────────┐  broadcast  ┌─────────────┐
	│ store │ ────────► │ queue (100)  │ ──────────► │ subscribers │
	└───────┘           └──────────────┘             │ (50 each)   │
	                                                 └─────────────┘

	broker := events.NewBroker()
	broker.Start()
	defer broker.Stop()

	sub := broker.Subscribe()
	defer broker.Unsubscribe(sub)
	for n := range sub {
		fmt.Println(n.Type, n.Key, n.Rejected)
	}
*/
package events
