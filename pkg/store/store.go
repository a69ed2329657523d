package store

import (
	"errors"
	"fmt"
	"sync"

	"github.com/cuemby/livestatus/pkg/events"
	"github.com/cuemby/livestatus/pkg/log"
	"github.com/cuemby/livestatus/pkg/types"
	"github.com/rs/zerolog"
)

var (
	// ErrUnknownObject is returned when an event references a key the store
	// has never seen
	ErrUnknownObject = errors.New("unknown object")

	// ErrInvalidEvent is returned for events missing their key
	ErrInvalidEvent = errors.New("invalid event")
)

// Store is the live mirror of the monitoring deployment. It is written only
// by Apply and read through View; both take the store lock, so a reader never
// observes a half-applied event.
type Store struct {
	mu sync.RWMutex

	program     *types.ProgramStatus
	hosts       map[string]*types.Host
	services    map[types.ObjectRef]*types.Service
	hostSvcs    map[string][]string
	groups      map[types.GroupKind]map[string]*types.Group
	contacts    map[string]*types.Contact
	commands    map[string]*types.Command
	timeperiods map[string]*types.Timeperiod
	downtimes   map[int]*types.Downtime
	comments    map[int]*types.Comment
	peers       map[types.PeerKind]map[string]*types.PeerLink

	membership map[types.GroupKind]*membership
	graph      *graph

	nextDowntimeID int
	nextCommentID  int
	logSeq         uint64

	logs   LogStore
	broker *events.Broker
	logger zerolog.Logger
}

// Option configures a Store
type Option func(*Store)

// WithLogStore sets the backend of the log table. Defaults to an unbounded
// MemoryLogStore.
func WithLogStore(ls LogStore) Option {
	return func(s *Store) {
		s.logs = ls
	}
}

// WithBroker publishes a notification for every applied or rejected event
func WithBroker(b *events.Broker) Option {
	return func(s *Store) {
		s.broker = b
	}
}

// New creates an empty store
func New(opts ...Option) *Store {
	s := &Store{logger: log.WithComponent("store")}
	s.clear()
	for _, opt := range opts {
		opt(s)
	}
	if s.logs == nil {
		s.logs = NewMemoryLogStore(0)
	}
	return s
}

func (s *Store) clear() {
	s.program = types.NewProgramStatus()
	s.hosts = make(map[string]*types.Host)
	s.services = make(map[types.ObjectRef]*types.Service)
	s.hostSvcs = make(map[string][]string)
	s.groups = make(map[types.GroupKind]map[string]*types.Group)
	s.contacts = make(map[string]*types.Contact)
	s.commands = make(map[string]*types.Command)
	s.timeperiods = make(map[string]*types.Timeperiod)
	s.downtimes = make(map[int]*types.Downtime)
	s.comments = make(map[int]*types.Comment)
	s.peers = make(map[types.PeerKind]map[string]*types.PeerLink)
	s.membership = make(map[types.GroupKind]*membership)
	s.graph = newGraph()
	s.nextDowntimeID = 1
	s.nextCommentID = 1
	s.logSeq = 0

	for _, kind := range []types.GroupKind{types.HostGroup, types.ServiceGroup, types.ContactGroup} {
		s.groups[kind] = make(map[string]*types.Group)
		s.membership[kind] = newMembership()
	}
	for _, kind := range []types.PeerKind{types.PeerScheduler, types.PeerPoller, types.PeerReactionner, types.PeerBroker} {
		s.peers[kind] = make(map[string]*types.PeerLink)
	}
}

// Reset drops every object and log event, leaving the store as New
// returned it
func (s *Store) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clear()
	if err := s.logs.Reset(); err != nil {
		return fmt.Errorf("failed to reset log store: %w", err)
	}
	return nil
}

// Close releases the log store
func (s *Store) Close() error {
	return s.logs.Close()
}

// View runs fn with a read transaction. The whole callback sees one
// consistent state of the store.
func (s *Store) View(fn func(tx *Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(&Tx{s: s})
}

// Apply mutates the objects named by ev. Create events overwrite an existing
// key; update events for an unknown key return ErrUnknownObject and leave the
// store untouched.
func (s *Store) Apply(ev events.Event) error {
	key, err := s.applyLocked(ev)
	if err != nil {
		s.logger.Warn().
			Str("type", string(ev.Type())).
			Str("key", key).
			Err(err).
			Msg("Event rejected")
	}
	if s.broker != nil {
		n := &events.Notification{Type: ev.Type(), Key: key, Rejected: err != nil}
		if err != nil {
			n.Message = err.Error()
		}
		s.broker.Publish(n)
	}
	return err
}

func (s *Store) applyLocked(ev events.Event) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apply(ev)
}

func (s *Store) apply(ev events.Event) (string, error) {
	switch e := ev.(type) {
	case events.ProgramStatus:
		if e.Status == nil {
			return "", ErrInvalidEvent
		}
		ps := *e.Status
		s.program = &ps
		return "program", nil

	case events.ProgramStatusUpdate:
		ps := *s.program
		if err := e.Patch.ApplyTo(&ps); err != nil {
			return "program", err
		}
		s.program = &ps
		return "program", nil

	case events.HostStatus:
		if e.Host == nil || e.Host.Name == "" {
			return "", ErrInvalidEvent
		}
		h := *e.Host
		h.Derived = types.Derived{}
		s.putHost(&h)
		return h.Name, nil

	case events.HostUpdate:
		cur, ok := s.hosts[e.HostName]
		if !ok {
			return e.HostName, fmt.Errorf("host %q: %w", e.HostName, ErrUnknownObject)
		}
		h := *cur.Clone()
		if err := e.Patch.ApplyTo(&h); err != nil {
			return e.HostName, err
		}
		h.Name = e.HostName
		s.putHost(&h)
		return h.Name, nil

	case events.ServiceStatus:
		if e.Service == nil || e.Service.HostName == "" || e.Service.Description == "" {
			return "", ErrInvalidEvent
		}
		svc := *e.Service
		svc.Derived = types.Derived{}
		s.putService(&svc)
		return svc.Ref().String(), nil

	case events.ServiceUpdate:
		ref := types.ObjectRef{HostName: e.HostName, Description: e.Description}
		cur, ok := s.services[ref]
		if !ok {
			return ref.String(), fmt.Errorf("service %q: %w", ref.String(), ErrUnknownObject)
		}
		svc := *cur.Clone()
		if err := e.Patch.ApplyTo(&svc); err != nil {
			return ref.String(), err
		}
		svc.HostName, svc.Description = ref.HostName, ref.Description
		s.putService(&svc)
		return ref.String(), nil

	case events.GroupStatus:
		if e.Group == nil || e.Group.Name == "" {
			return "", ErrInvalidEvent
		}
		g := *e.Group
		if g.Kind == "" {
			g.Kind = types.HostGroup
		}
		if _, ok := s.groups[g.Kind]; !ok {
			return g.Name, fmt.Errorf("group kind %q: %w", g.Kind, ErrInvalidEvent)
		}
		s.groups[g.Kind][g.Name] = &g
		s.membership[g.Kind].setListed(g.Name, g.Members)
		return g.Name, nil

	case events.ContactStatus:
		if e.Contact == nil || e.Contact.Name == "" {
			return "", ErrInvalidEvent
		}
		c := *e.Contact
		s.contacts[c.Name] = &c
		return c.Name, nil

	case events.CommandStatus:
		if e.Command == nil || e.Command.Name == "" {
			return "", ErrInvalidEvent
		}
		c := *e.Command
		s.commands[c.Name] = &c
		return c.Name, nil

	case events.TimeperiodStatus:
		if e.Timeperiod == nil || e.Timeperiod.Name == "" {
			return "", ErrInvalidEvent
		}
		tp := *e.Timeperiod
		s.timeperiods[tp.Name] = &tp
		return tp.Name, nil

	case events.TimeperiodUpdate:
		cur, ok := s.timeperiods[e.Name]
		if !ok {
			return e.Name, fmt.Errorf("timeperiod %q: %w", e.Name, ErrUnknownObject)
		}
		tp := *cur
		if err := e.Patch.ApplyTo(&tp); err != nil {
			return e.Name, err
		}
		tp.Name = e.Name
		s.timeperiods[tp.Name] = &tp
		return tp.Name, nil

	case events.DowntimeAdd:
		if e.Downtime == nil || e.Downtime.HostName == "" {
			return "", ErrInvalidEvent
		}
		d := *e.Downtime
		if d.ID <= 0 {
			d.ID = s.nextDowntimeID
		}
		if d.ID >= s.nextDowntimeID {
			s.nextDowntimeID = d.ID + 1
		}
		s.downtimes[d.ID] = &d
		return fmt.Sprint(d.ID), nil

	case events.DowntimeUpdate:
		cur, ok := s.downtimes[e.ID]
		if !ok {
			return fmt.Sprint(e.ID), fmt.Errorf("downtime %d: %w", e.ID, ErrUnknownObject)
		}
		d := *cur
		if err := e.Patch.ApplyTo(&d); err != nil {
			return fmt.Sprint(e.ID), err
		}
		d.ID = e.ID
		s.downtimes[d.ID] = &d
		return fmt.Sprint(d.ID), nil

	case events.DowntimeDelete:
		if _, ok := s.downtimes[e.ID]; !ok {
			return fmt.Sprint(e.ID), fmt.Errorf("downtime %d: %w", e.ID, ErrUnknownObject)
		}
		delete(s.downtimes, e.ID)
		return fmt.Sprint(e.ID), nil

	case events.CommentAdd:
		if e.Comment == nil || e.Comment.HostName == "" {
			return "", ErrInvalidEvent
		}
		c := *e.Comment
		if c.ID <= 0 {
			c.ID = s.nextCommentID
		}
		if c.ID >= s.nextCommentID {
			s.nextCommentID = c.ID + 1
		}
		s.comments[c.ID] = &c
		return fmt.Sprint(c.ID), nil

	case events.CommentDelete:
		if _, ok := s.comments[e.ID]; !ok {
			return fmt.Sprint(e.ID), fmt.Errorf("comment %d: %w", e.ID, ErrUnknownObject)
		}
		delete(s.comments, e.ID)
		return fmt.Sprint(e.ID), nil

	case events.LogLine:
		le := ParseLogLine(e.Line)
		s.logSeq++
		le.Seq = s.logSeq
		if err := s.logs.Append(le); err != nil {
			return "log", fmt.Errorf("failed to append log line: %w", err)
		}
		return "log", nil

	case events.PeerStatus:
		if e.Peer == nil || e.Peer.Name == "" {
			return "", ErrInvalidEvent
		}
		p := *e.Peer
		if p.Kind == "" {
			p.Kind = types.PeerScheduler
		}
		if _, ok := s.peers[p.Kind]; !ok {
			return p.Name, fmt.Errorf("peer kind %q: %w", p.Kind, ErrInvalidEvent)
		}
		s.peers[p.Kind][p.Name] = &p
		return p.Name, nil

	case events.PeerUpdate:
		cur, ok := s.peers[e.Kind][e.Name]
		if !ok {
			return e.Name, fmt.Errorf("%s %q: %w", e.Kind, e.Name, ErrUnknownObject)
		}
		p := *cur
		if err := e.Patch.ApplyTo(&p); err != nil {
			return e.Name, err
		}
		p.Kind, p.Name = e.Kind, e.Name
		s.peers[p.Kind][p.Name] = &p
		return p.Name, nil
	}

	return "", fmt.Errorf("unsupported event type %q: %w", ev.Type(), ErrInvalidEvent)
}

func (s *Store) putHost(h *types.Host) {
	s.hosts[h.Name] = h
	s.membership[types.HostGroup].setDeclared(h.Name, h.Groups)
	s.recomputeGraph()
}

func (s *Store) putService(svc *types.Service) {
	ref := svc.Ref()
	if _, ok := s.services[ref]; !ok {
		s.hostSvcs[svc.HostName] = insertSorted(s.hostSvcs[svc.HostName], svc.Description)
	}
	s.services[ref] = svc
	s.membership[types.ServiceGroup].setDeclared(ref.String(), svc.Groups)
	s.recomputeGraph()
}

// ObjectCounts returns the number of rows per object table
func (s *Store) ObjectCounts() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]int{
		"hosts":         len(s.hosts),
		"services":      len(s.services),
		"hostgroups":    len(s.groups[types.HostGroup]),
		"servicegroups": len(s.groups[types.ServiceGroup]),
		"contactgroups": len(s.groups[types.ContactGroup]),
		"contacts":      len(s.contacts),
		"commands":      len(s.commands),
		"timeperiods":   len(s.timeperiods),
		"downtimes":     len(s.downtimes),
		"comments":      len(s.comments),
		"log":           s.logs.Len(),
		"schedulers":    len(s.peers[types.PeerScheduler]),
		"pollers":       len(s.peers[types.PeerPoller]),
		"reactionners":  len(s.peers[types.PeerReactionner]),
		"brokers":       len(s.peers[types.PeerBroker]),
	}
}
