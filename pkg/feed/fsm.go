package feed

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/cuemby/livestatus/pkg/events"
	"github.com/cuemby/livestatus/pkg/store"
	"github.com/cuemby/livestatus/pkg/types"
	"github.com/hashicorp/raft"
)

// FSM implements the Raft finite state machine over the object store.
// Every committed log entry is one JSON feed record, so several livestatus
// nodes replicating one raft log serve identical tables.
type FSM struct {
	consumer *Consumer
	store    *store.Store
}

// NewFSM creates a state machine applying to s
func NewFSM(s *store.Store) *FSM {
	return &FSM{
		consumer: NewConsumer(s),
		store:    s,
	}
}

// Apply applies a committed raft log entry. The return value is nil or the
// error that rejected the record.
func (f *FSM) Apply(l *raft.Log) interface{} {
	if l.Type != raft.LogCommand {
		return nil
	}
	if err := f.consumer.ApplyRecord(l.Data); err != nil {
		return err
	}
	return nil
}

// Snapshot captures the whole store. The capture is encoded inside one read
// transaction, since the store recomputes derived fields in place once the
// lock is released; Persist only writes the encoded bytes.
func (f *FSM) Snapshot() (raft.FSMSnapshot, error) {
	snap := &Snapshot{Peers: make(map[types.PeerKind][]*types.PeerLink)}

	var data []byte
	err := f.store.View(func(tx *store.Tx) error {
		snap.Program = tx.Program()
		snap.Hosts = tx.Hosts()
		snap.Services = tx.Services()
		snap.HostGroups = tx.Groups(types.HostGroup)
		snap.ServiceGroups = tx.Groups(types.ServiceGroup)
		snap.ContactGroups = tx.Groups(types.ContactGroup)
		snap.Contacts = tx.Contacts()
		snap.Commands = tx.Commands()
		snap.Timeperiods = tx.Timeperiods()
		snap.Downtimes = tx.Downtimes()
		snap.Comments = tx.Comments()
		for _, kind := range []types.PeerKind{types.PeerScheduler, types.PeerPoller, types.PeerReactionner, types.PeerBroker} {
			if peers := tx.Peers(kind); len(peers) > 0 {
				snap.Peers[kind] = peers
			}
		}

		logs, err := tx.Logs()
		if err != nil {
			return fmt.Errorf("failed to list log events: %w", err)
		}
		for _, ev := range logs {
			snap.Log = append(snap.Log, ev.Message)
		}

		data, err = json.Marshal(snap)
		if err != nil {
			return fmt.Errorf("failed to encode snapshot: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &encodedSnapshot{data: data}, nil
}

// Restore replaces the store content with a snapshot
func (f *FSM) Restore(rc io.ReadCloser) error {
	defer rc.Close()

	var snap Snapshot
	if err := json.NewDecoder(rc).Decode(&snap); err != nil {
		return fmt.Errorf("failed to decode snapshot: %w", err)
	}

	if err := f.store.Reset(); err != nil {
		return err
	}
	for _, ev := range snap.Events() {
		if err := f.store.Apply(ev); err != nil {
			return fmt.Errorf("failed to restore %s: %w", ev.Type(), err)
		}
	}
	return nil
}

// Snapshot is a point-in-time copy of the store
type Snapshot struct {
	Program       *types.ProgramStatus                 `json:"program"`
	Hosts         []*types.Host                        `json:"hosts"`
	Services      []*types.Service                     `json:"services"`
	HostGroups    []*types.Group                       `json:"hostgroups"`
	ServiceGroups []*types.Group                       `json:"servicegroups"`
	ContactGroups []*types.Group                       `json:"contactgroups"`
	Contacts      []*types.Contact                     `json:"contacts"`
	Commands      []*types.Command                     `json:"commands"`
	Timeperiods   []*types.Timeperiod                  `json:"timeperiods"`
	Downtimes     []*types.Downtime                    `json:"downtimes"`
	Comments      []*types.Comment                     `json:"comments"`
	Peers         map[types.PeerKind][]*types.PeerLink `json:"peers"`
	Log           []string                             `json:"log"`
}

// Events returns the events that rebuild the snapshot on an empty store
func (s *Snapshot) Events() []events.Event {
	var evs []events.Event
	if s.Program != nil {
		evs = append(evs, events.ProgramStatus{Status: s.Program})
	}
	for _, h := range s.Hosts {
		evs = append(evs, events.HostStatus{Host: h})
	}
	for _, svc := range s.Services {
		evs = append(evs, events.ServiceStatus{Service: svc})
	}
	groups := map[types.GroupKind][]*types.Group{
		types.HostGroup:    s.HostGroups,
		types.ServiceGroup: s.ServiceGroups,
		types.ContactGroup: s.ContactGroups,
	}
	for _, kind := range []types.GroupKind{types.HostGroup, types.ServiceGroup, types.ContactGroup} {
		for _, g := range groups[kind] {
			g.Kind = kind
			evs = append(evs, events.GroupStatus{Group: g})
		}
	}
	for _, c := range s.Contacts {
		evs = append(evs, events.ContactStatus{Contact: c})
	}
	for _, c := range s.Commands {
		evs = append(evs, events.CommandStatus{Command: c})
	}
	for _, tp := range s.Timeperiods {
		evs = append(evs, events.TimeperiodStatus{Timeperiod: tp})
	}
	for _, d := range s.Downtimes {
		evs = append(evs, events.DowntimeAdd{Downtime: d})
	}
	for _, c := range s.Comments {
		evs = append(evs, events.CommentAdd{Comment: c})
	}
	for _, kind := range []types.PeerKind{types.PeerScheduler, types.PeerPoller, types.PeerReactionner, types.PeerBroker} {
		for _, p := range s.Peers[kind] {
			p.Kind = kind
			evs = append(evs, events.PeerStatus{Peer: p})
		}
	}
	for _, line := range s.Log {
		evs = append(evs, events.LogLine{Line: line})
	}
	return evs
}

// encodedSnapshot is the raft.FSMSnapshot returned by FSM.Snapshot
type encodedSnapshot struct {
	data []byte
}

// Persist writes the snapshot to the given SnapshotSink
func (s *encodedSnapshot) Persist(sink raft.SnapshotSink) error {
	err := func() error {
		if _, err := sink.Write(s.data); err != nil {
			return err
		}
		return sink.Close()
	}()

	if err != nil {
		sink.Cancel()
	}
	return err
}

// Release releases the snapshot resources
func (s *encodedSnapshot) Release() {
	s.data = nil
}
