package events

import (
	"encoding/json"
	"fmt"

	"github.com/cuemby/livestatus/pkg/types"
)

// EventType is the brok type name of a feed record
type EventType string

const (
	EventProgramStatus       EventType = "program_status"
	EventUpdateProgramStatus EventType = "update_program_status"
	EventInitialHost         EventType = "initial_host_status"
	EventUpdateHost          EventType = "update_host_status"
	EventInitialService      EventType = "initial_service_status"
	EventUpdateService       EventType = "update_service_status"
	EventInitialHostgroup    EventType = "initial_hostgroup_status"
	EventInitialServicegroup EventType = "initial_servicegroup_status"
	EventInitialContactgroup EventType = "initial_contactgroup_status"
	EventInitialContact      EventType = "initial_contact_status"
	EventInitialCommand      EventType = "initial_command_status"
	EventInitialTimeperiod   EventType = "initial_timeperiod_status"
	EventUpdateTimeperiod    EventType = "update_timeperiod_status"
	EventAddDowntime         EventType = "add_downtime"
	EventUpdateDowntime      EventType = "update_downtime"
	EventDeleteDowntime      EventType = "delete_downtime"
	EventAddComment          EventType = "add_comment"
	EventDeleteComment       EventType = "delete_comment"
	EventLog                 EventType = "log"
	EventInitialScheduler    EventType = "initial_scheduler_status"
	EventUpdateScheduler     EventType = "update_scheduler_status"
	EventInitialPoller       EventType = "initial_poller_status"
	EventUpdatePoller        EventType = "update_poller_status"
	EventInitialReactionner  EventType = "initial_reactionner_status"
	EventUpdateReactionner   EventType = "update_reactionner_status"
	EventInitialBroker       EventType = "initial_broker_status"
	EventUpdateBroker        EventType = "update_broker_status"
)

// Event is one typed record of the state-change feed
type Event interface {
	Type() EventType
}

// Patch is a partial JSON object decoded onto a copy of the current value.
// Fields absent from the patch keep their value; unknown fields are ignored.
type Patch json.RawMessage

// MarshalJSON keeps the patch verbatim
func (p Patch) MarshalJSON() ([]byte, error) {
	if len(p) == 0 {
		return []byte("{}"), nil
	}
	return p, nil
}

// UnmarshalJSON stores a copy of the raw object
func (p *Patch) UnmarshalJSON(data []byte) error {
	*p = append((*p)[:0], data...)
	return nil
}

// ApplyTo decodes the patch onto v
func (p Patch) ApplyTo(v any) error {
	if len(p) == 0 {
		return nil
	}
	if err := json.Unmarshal(p, v); err != nil {
		return fmt.Errorf("failed to apply patch: %w", err)
	}
	return nil
}

// Fields builds a patch from a field map
func Fields(fields map[string]any) Patch {
	data, err := json.Marshal(fields)
	if err != nil {
		return nil
	}
	return Patch(data)
}

// ProgramStatus replaces the global program status
type ProgramStatus struct {
	Status *types.ProgramStatus
}

func (ProgramStatus) Type() EventType { return EventProgramStatus }

// ProgramStatusUpdate patches the global program status
type ProgramStatusUpdate struct {
	Patch Patch
}

func (ProgramStatusUpdate) Type() EventType { return EventUpdateProgramStatus }

// HostStatus creates or overwrites a host
type HostStatus struct {
	Host *types.Host
}

func (HostStatus) Type() EventType { return EventInitialHost }

// HostUpdate patches an existing host
type HostUpdate struct {
	HostName string
	Patch    Patch
}

func (HostUpdate) Type() EventType { return EventUpdateHost }

// ServiceStatus creates or overwrites a service
type ServiceStatus struct {
	Service *types.Service
}

func (ServiceStatus) Type() EventType { return EventInitialService }

// ServiceUpdate patches an existing service
type ServiceUpdate struct {
	HostName    string
	Description string
	Patch       Patch
}

func (ServiceUpdate) Type() EventType { return EventUpdateService }

// GroupStatus creates or overwrites a host, service or contact group
type GroupStatus struct {
	Group *types.Group
}

func (e GroupStatus) Type() EventType {
	switch e.Group.Kind {
	case types.ServiceGroup:
		return EventInitialServicegroup
	case types.ContactGroup:
		return EventInitialContactgroup
	default:
		return EventInitialHostgroup
	}
}

// ContactStatus creates or overwrites a contact
type ContactStatus struct {
	Contact *types.Contact
}

func (ContactStatus) Type() EventType { return EventInitialContact }

// CommandStatus creates or overwrites a command
type CommandStatus struct {
	Command *types.Command
}

func (CommandStatus) Type() EventType { return EventInitialCommand }

// TimeperiodStatus creates or overwrites a timeperiod
type TimeperiodStatus struct {
	Timeperiod *types.Timeperiod
}

func (TimeperiodStatus) Type() EventType { return EventInitialTimeperiod }

// TimeperiodUpdate patches an existing timeperiod
type TimeperiodUpdate struct {
	Name  string
	Patch Patch
}

func (TimeperiodUpdate) Type() EventType { return EventUpdateTimeperiod }

// DowntimeAdd registers a downtime. An ID of zero gets the next free id.
type DowntimeAdd struct {
	Downtime *types.Downtime
}

func (DowntimeAdd) Type() EventType { return EventAddDowntime }

// DowntimeUpdate patches a downtime, typically is_in_effect
type DowntimeUpdate struct {
	ID    int
	Patch Patch
}

func (DowntimeUpdate) Type() EventType { return EventUpdateDowntime }

// DowntimeDelete removes an expired or cancelled downtime
type DowntimeDelete struct {
	ID int
}

func (DowntimeDelete) Type() EventType { return EventDeleteDowntime }

// CommentAdd registers a comment. An ID of zero gets the next free id.
type CommentAdd struct {
	Comment *types.Comment
}

func (CommentAdd) Type() EventType { return EventAddComment }

// CommentDelete removes a comment
type CommentDelete struct {
	ID int
}

func (CommentDelete) Type() EventType { return EventDeleteComment }

// LogLine appends one raw monitoring log line
type LogLine struct {
	Line string
}

func (LogLine) Type() EventType { return EventLog }

// PeerStatus creates or overwrites a peer link
type PeerStatus struct {
	Peer *types.PeerLink
}

func (e PeerStatus) Type() EventType {
	return EventType("initial_" + string(e.Peer.Kind) + "_status")
}

// PeerUpdate patches an existing peer link
type PeerUpdate struct {
	Kind  types.PeerKind
	Name  string
	Patch Patch
}

func (e PeerUpdate) Type() EventType {
	return EventType("update_" + string(e.Kind) + "_status")
}
