package feed

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/cuemby/livestatus/pkg/events"
	"github.com/cuemby/livestatus/pkg/types"
)

// ErrUnknownType is returned for a record whose type names no event
var ErrUnknownType = errors.New("unknown brok type")

// Record is the wire form of one feed event: a JSON object per line
type Record struct {
	Type events.EventType `json:"type"`
	Data json.RawMessage  `json:"data"`
}

type hostKey struct {
	HostName string `json:"host_name"`
}

type serviceKey struct {
	HostName    string `json:"host_name"`
	Description string `json:"service_description"`
}

type idKey struct {
	ID int `json:"id"`
}

type nameKey struct {
	Name string `json:"name"`
}

type timeperiodKey struct {
	Name string `json:"timeperiod_name"`
}

type logData struct {
	Log string `json:"log"`
}

var groupKinds = map[events.EventType]types.GroupKind{
	events.EventInitialHostgroup:    types.HostGroup,
	events.EventInitialServicegroup: types.ServiceGroup,
	events.EventInitialContactgroup: types.ContactGroup,
}

var peerKinds = map[string]types.PeerKind{
	string(types.PeerScheduler):   types.PeerScheduler,
	string(types.PeerPoller):      types.PeerPoller,
	string(types.PeerReactionner): types.PeerReactionner,
	string(types.PeerBroker):      types.PeerBroker,
}

// Decode parses one JSON record into a typed event. Fields missing from
// the payload keep their defaults; unknown fields are ignored.
func Decode(line []byte) (events.Event, error) {
	var rec Record
	if err := json.Unmarshal(line, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}
	return rec.Event()
}

// Event converts the record into its typed event
func (r Record) Event() (events.Event, error) {
	data := r.Data
	if len(data) == 0 || string(data) == "null" {
		data = json.RawMessage("{}")
	}

	if kind, ok := groupKinds[r.Type]; ok {
		g := &types.Group{Kind: kind}
		if err := unmarshal(r.Type, data, g); err != nil {
			return nil, err
		}
		return events.GroupStatus{Group: g}, nil
	}

	switch r.Type {
	case events.EventProgramStatus:
		ps := types.NewProgramStatus()
		if err := unmarshal(r.Type, data, ps); err != nil {
			return nil, err
		}
		return events.ProgramStatus{Status: ps}, nil

	case events.EventUpdateProgramStatus:
		return events.ProgramStatusUpdate{Patch: events.Patch(data)}, nil

	case events.EventInitialHost:
		h := types.NewHost("")
		if err := unmarshal(r.Type, data, h); err != nil {
			return nil, err
		}
		return events.HostStatus{Host: h}, nil

	case events.EventUpdateHost:
		var key hostKey
		if err := unmarshal(r.Type, data, &key); err != nil {
			return nil, err
		}
		return events.HostUpdate{HostName: key.HostName, Patch: events.Patch(data)}, nil

	case events.EventInitialService:
		svc := types.NewService("", "")
		if err := unmarshal(r.Type, data, svc); err != nil {
			return nil, err
		}
		return events.ServiceStatus{Service: svc}, nil

	case events.EventUpdateService:
		var key serviceKey
		if err := unmarshal(r.Type, data, &key); err != nil {
			return nil, err
		}
		return events.ServiceUpdate{
			HostName:    key.HostName,
			Description: key.Description,
			Patch:       events.Patch(data),
		}, nil

	case events.EventInitialContact:
		c := &types.Contact{HostNotificationsEnabled: true, ServiceNotificationsEnabled: true}
		if err := unmarshal(r.Type, data, c); err != nil {
			return nil, err
		}
		return events.ContactStatus{Contact: c}, nil

	case events.EventInitialCommand:
		c := &types.Command{}
		if err := unmarshal(r.Type, data, c); err != nil {
			return nil, err
		}
		return events.CommandStatus{Command: c}, nil

	case events.EventInitialTimeperiod:
		tp := &types.Timeperiod{}
		if err := unmarshal(r.Type, data, tp); err != nil {
			return nil, err
		}
		return events.TimeperiodStatus{Timeperiod: tp}, nil

	case events.EventUpdateTimeperiod:
		var key timeperiodKey
		if err := unmarshal(r.Type, data, &key); err != nil {
			return nil, err
		}
		return events.TimeperiodUpdate{Name: key.Name, Patch: events.Patch(data)}, nil

	case events.EventAddDowntime:
		d := &types.Downtime{}
		if err := unmarshal(r.Type, data, d); err != nil {
			return nil, err
		}
		return events.DowntimeAdd{Downtime: d}, nil

	case events.EventUpdateDowntime:
		var key idKey
		if err := unmarshal(r.Type, data, &key); err != nil {
			return nil, err
		}
		return events.DowntimeUpdate{ID: key.ID, Patch: events.Patch(data)}, nil

	case events.EventDeleteDowntime:
		var key idKey
		if err := unmarshal(r.Type, data, &key); err != nil {
			return nil, err
		}
		return events.DowntimeDelete{ID: key.ID}, nil

	case events.EventAddComment:
		c := &types.Comment{}
		if err := unmarshal(r.Type, data, c); err != nil {
			return nil, err
		}
		return events.CommentAdd{Comment: c}, nil

	case events.EventDeleteComment:
		var key idKey
		if err := unmarshal(r.Type, data, &key); err != nil {
			return nil, err
		}
		return events.CommentDelete{ID: key.ID}, nil

	case events.EventLog:
		var l logData
		if err := unmarshal(r.Type, data, &l); err != nil {
			return nil, err
		}
		return events.LogLine{Line: l.Log}, nil
	}

	return r.peerEvent(data)
}

// peerEvent handles initial_<kind>_status and update_<kind>_status
func (r Record) peerEvent(data json.RawMessage) (events.Event, error) {
	name := string(r.Type)
	if rest, ok := strings.CutPrefix(name, "initial_"); ok {
		if kind, ok := peerKinds[strings.TrimSuffix(rest, "_status")]; ok && strings.HasSuffix(rest, "_status") {
			p := types.NewPeerLink(kind, "")
			if err := unmarshal(r.Type, data, p); err != nil {
				return nil, err
			}
			p.Kind = kind
			return events.PeerStatus{Peer: p}, nil
		}
	}
	if rest, ok := strings.CutPrefix(name, "update_"); ok {
		if kind, ok := peerKinds[strings.TrimSuffix(rest, "_status")]; ok && strings.HasSuffix(rest, "_status") {
			var key nameKey
			if err := unmarshal(r.Type, data, &key); err != nil {
				return nil, err
			}
			return events.PeerUpdate{Kind: kind, Name: key.Name, Patch: events.Patch(data)}, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownType, r.Type)
}

func unmarshal(typ events.EventType, data json.RawMessage, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode %s payload: %w", typ, err)
	}
	return nil
}

// Encode renders ev as one JSON record, the inverse of Decode
func Encode(ev events.Event) ([]byte, error) {
	var (
		payload any
		key     any
		patch   events.Patch
	)

	switch e := ev.(type) {
	case events.ProgramStatus:
		payload = e.Status
	case events.ProgramStatusUpdate:
		patch = e.Patch
	case events.HostStatus:
		payload = e.Host
	case events.HostUpdate:
		key, patch = hostKey{HostName: e.HostName}, e.Patch
	case events.ServiceStatus:
		payload = e.Service
	case events.ServiceUpdate:
		key, patch = serviceKey{HostName: e.HostName, Description: e.Description}, e.Patch
	case events.GroupStatus:
		payload = e.Group
	case events.ContactStatus:
		payload = e.Contact
	case events.CommandStatus:
		payload = e.Command
	case events.TimeperiodStatus:
		payload = e.Timeperiod
	case events.TimeperiodUpdate:
		key, patch = timeperiodKey{Name: e.Name}, e.Patch
	case events.DowntimeAdd:
		payload = e.Downtime
	case events.DowntimeUpdate:
		key, patch = idKey{ID: e.ID}, e.Patch
	case events.DowntimeDelete:
		payload = idKey{ID: e.ID}
	case events.CommentAdd:
		payload = e.Comment
	case events.CommentDelete:
		payload = idKey{ID: e.ID}
	case events.LogLine:
		payload = logData{Log: e.Line}
	case events.PeerStatus:
		payload = e.Peer
	case events.PeerUpdate:
		key, patch = nameKey{Name: e.Name}, e.Patch
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, ev.Type())
	}

	var (
		data []byte
		err  error
	)
	if payload != nil {
		data, err = json.Marshal(payload)
	} else {
		data, err = mergePatch(key, patch)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", ev.Type(), err)
	}
	return json.Marshal(Record{Type: ev.Type(), Data: data})
}

// mergePatch writes the key fields over the patch object
func mergePatch(key any, patch events.Patch) ([]byte, error) {
	fields := make(map[string]json.RawMessage)
	if len(patch) > 0 {
		if err := json.Unmarshal(patch, &fields); err != nil {
			return nil, err
		}
	}
	if key != nil {
		keyData, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		keyFields := make(map[string]json.RawMessage)
		if err := json.Unmarshal(keyData, &keyFields); err != nil {
			return nil, err
		}
		for k, v := range keyFields {
			fields[k] = v
		}
	}
	return json.Marshal(fields)
}
