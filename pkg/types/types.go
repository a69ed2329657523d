package types

import (
	"slices"
	"strings"
)

// Host states
const (
	HostUp          = 0
	HostDown        = 1
	HostUnreachable = 2
)

// Service states
const (
	ServiceOK       = 0
	ServiceWarning  = 1
	ServiceCritical = 2
	ServiceUnknown  = 3
)

// State types
const (
	StateTypeSoft = 0
	StateTypeHard = 1
)

// Check types
const (
	CheckTypeActive  = 0
	CheckTypePassive = 1
)

// Comment entry types
const (
	UserCommentEntry            = 1
	DowntimeCommentEntry        = 2
	FlappingCommentEntry        = 3
	AcknowledgementCommentEntry = 4
)

// Comment and downtime owner types
const (
	HostObjectType    = 1
	ServiceObjectType = 2
)

// ObjectRef identifies a host (Description empty) or a service
type ObjectRef struct {
	HostName    string `json:"host_name"`
	Description string `json:"service_description,omitempty"`
}

// IsService reports whether the reference points to a service
func (r ObjectRef) IsService() bool {
	return r.Description != ""
}

// String renders "host" or "host/service"
func (r ObjectRef) String() string {
	if r.Description == "" {
		return r.HostName
	}
	return r.HostName + "/" + r.Description
}

// Less orders references by host name, hosts before their services
func (r ObjectRef) Less(o ObjectRef) bool {
	if r.HostName != o.HostName {
		return r.HostName < o.HostName
	}
	return r.Description < o.Description
}

// ParseObjectRef parses "host" or "host/service"
func ParseObjectRef(s string) ObjectRef {
	host, desc, _ := strings.Cut(s, "/")
	return ObjectRef{HostName: host, Description: desc}
}

// CustomVar is one custom variable, kept in declaration order
type CustomVar struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// CheckState holds the mutable check status shared by hosts and services.
// It is mirrored from the scheduler, never computed here.
type CheckState struct {
	State                     int     `json:"state_id"`
	StateType                 int     `json:"state_type_id"`
	LastState                 int     `json:"last_state_id"`
	LastHardState             int     `json:"last_hard_state_id"`
	PluginOutput              string  `json:"output"`
	LongPluginOutput          string  `json:"long_output"`
	PerfData                  string  `json:"perf_data"`
	CheckType                 int     `json:"check_type"`
	Latency                   float64 `json:"latency"`
	ExecutionTime             float64 `json:"execution_time"`
	PercentStateChange        float64 `json:"percent_state_change"`
	LastCheck                 int64   `json:"last_chk"`
	NextCheck                 int64   `json:"next_chk"`
	LastStateChange           int64   `json:"last_state_change"`
	LastHardStateChange       int64   `json:"last_hard_state_change"`
	LastNotification          int64   `json:"last_notification"`
	HasBeenChecked            bool    `json:"has_been_checked"`
	CurrentAttempt            int     `json:"attempt"`
	CurrentNotificationNumber int     `json:"current_notification_number"`
	IsFlapping                bool    `json:"is_flapping"`
	Acknowledged              bool    `json:"problem_has_been_acknowledged"`
	AcknowledgementType       int     `json:"acknowledgement_type"`
	IsExecuting               bool    `json:"in_checking"`
	ScheduledDowntimeDepth    int     `json:"scheduled_downtime_depth"`
	ActiveChecksEnabled       bool    `json:"active_checks_enabled"`
	AcceptPassiveChecks       bool    `json:"passive_checks_enabled"`
	NotificationsEnabled      bool    `json:"notifications_enabled"`
	EventHandlerEnabled       bool    `json:"event_handler_enabled"`
	FlapDetectionEnabled      bool    `json:"flap_detection_enabled"`
	ProcessPerfData           bool    `json:"process_performances_data"`
	ObsessOver                bool    `json:"obsess_over"`
	InCheckPeriod             bool    `json:"in_check_period"`
	InNotificationPeriod      bool    `json:"in_notification_period"`
	ModifiedAttributes        int     `json:"modified_attributes"`
}

// HardState returns the state as seen by hard-state consumers
func (c *CheckState) HardState() int {
	if c.StateType == StateTypeHard {
		return c.State
	}
	return c.LastHardState
}

// Derived holds the problem/impact relation recomputed by the store
type Derived struct {
	IsProblem      bool
	IsImpact       bool
	Impacts        []ObjectRef
	SourceProblems []ObjectRef
}

// Host represents a monitored host
type Host struct {
	Name               string      `json:"host_name"`
	DisplayName        string      `json:"display_name"`
	Alias              string      `json:"alias"`
	Address            string      `json:"address"`
	CheckCommand       string      `json:"check_command"`
	EventHandler       string      `json:"event_handler"`
	CheckPeriod        string      `json:"check_period"`
	NotificationPeriod string      `json:"notification_period"`
	CheckInterval      float64     `json:"check_interval"`
	RetryInterval      float64     `json:"retry_interval"`
	MaxCheckAttempts   int         `json:"max_check_attempts"`
	Notes              string      `json:"notes"`
	NotesURL           string      `json:"notes_url"`
	ActionURL          string      `json:"action_url"`
	IconImage          string      `json:"icon_image"`
	IconImageAlt       string      `json:"icon_image_alt"`
	Parents            []string    `json:"parents"`
	Contacts           []string    `json:"contacts"`
	ContactGroups      []string    `json:"contact_groups"`
	Groups             []string    `json:"hostgroups"`
	CustomVariables    []CustomVar `json:"customs"`
	ActDependOf        []ObjectRef `json:"act_depend_of"`
	CheckState

	// Derived is maintained by the store; any value in a payload is ignored.
	Derived `json:"-"`
}

// Clone returns a copy that shares no slices with h
func (h *Host) Clone() *Host {
	c := *h
	c.Parents = slices.Clone(h.Parents)
	c.Contacts = slices.Clone(h.Contacts)
	c.ContactGroups = slices.Clone(h.ContactGroups)
	c.Groups = slices.Clone(h.Groups)
	c.CustomVariables = slices.Clone(h.CustomVariables)
	c.ActDependOf = slices.Clone(h.ActDependOf)
	return &c
}

// Ref returns the host's object reference
func (h *Host) Ref() ObjectRef {
	return ObjectRef{HostName: h.Name}
}

// Service represents a monitored service, owned by exactly one host
type Service struct {
	HostName           string      `json:"host_name"`
	Description        string      `json:"service_description"`
	DisplayName        string      `json:"display_name"`
	CheckCommand       string      `json:"check_command"`
	EventHandler       string      `json:"event_handler"`
	CheckPeriod        string      `json:"check_period"`
	NotificationPeriod string      `json:"notification_period"`
	CheckInterval      float64     `json:"check_interval"`
	RetryInterval      float64     `json:"retry_interval"`
	MaxCheckAttempts   int         `json:"max_check_attempts"`
	Notes              string      `json:"notes"`
	NotesURL           string      `json:"notes_url"`
	ActionURL          string      `json:"action_url"`
	IconImage          string      `json:"icon_image"`
	IconImageAlt       string      `json:"icon_image_alt"`
	Contacts           []string    `json:"contacts"`
	ContactGroups      []string    `json:"contact_groups"`
	Groups             []string    `json:"servicegroups"`
	CustomVariables    []CustomVar `json:"customs"`
	ActDependOf        []ObjectRef `json:"act_depend_of"`
	CheckState

	Derived `json:"-"`
}

// Clone returns a copy that shares no slices with s
func (s *Service) Clone() *Service {
	c := *s
	c.Contacts = slices.Clone(s.Contacts)
	c.ContactGroups = slices.Clone(s.ContactGroups)
	c.Groups = slices.Clone(s.Groups)
	c.CustomVariables = slices.Clone(s.CustomVariables)
	c.ActDependOf = slices.Clone(s.ActDependOf)
	return &c
}

// Ref returns the service's object reference
func (s *Service) Ref() ObjectRef {
	return ObjectRef{HostName: s.HostName, Description: s.Description}
}

// GroupKind distinguishes the three group tables
type GroupKind string

const (
	HostGroup    GroupKind = "hostgroup"
	ServiceGroup GroupKind = "servicegroup"
	ContactGroup GroupKind = "contactgroup"
)

// Group is a host, service or contact group. Members reference keys:
// host names, "host/service" refs or contact names.
type Group struct {
	Kind      GroupKind `json:"-"`
	Name      string    `json:"name"`
	Alias     string    `json:"alias"`
	Notes     string    `json:"notes"`
	NotesURL  string    `json:"notes_url"`
	ActionURL string    `json:"action_url"`
	Members   []string  `json:"members"`
}

// Contact represents a notification recipient
type Contact struct {
	Name                        string      `json:"contact_name"`
	Alias                       string      `json:"alias"`
	Email                       string      `json:"email"`
	Pager                       string      `json:"pager"`
	CanSubmitCommands           bool        `json:"can_submit_commands"`
	HostNotificationsEnabled    bool        `json:"host_notifications_enabled"`
	ServiceNotificationsEnabled bool        `json:"service_notifications_enabled"`
	HostNotificationPeriod      string      `json:"host_notification_period"`
	ServiceNotificationPeriod   string      `json:"service_notification_period"`
	CustomVariables             []CustomVar `json:"customs"`
}

// Command is a check or notification command definition
type Command struct {
	Name string `json:"command_name"`
	Line string `json:"command_line"`
}

// Timeperiod mirrors a timeperiod and whether "now" is inside it
type Timeperiod struct {
	Name  string `json:"timeperiod_name"`
	Alias string `json:"alias"`
	In    bool   `json:"is_active"`
}

// Downtime is a scheduled downtime of a host or a service
type Downtime struct {
	ID           int    `json:"id"`
	HostName     string `json:"host_name"`
	Description  string `json:"service_description"`
	Author       string `json:"author"`
	Comment      string `json:"comment"`
	EntryTime    int64  `json:"entry_time"`
	StartTime    int64  `json:"start_time"`
	EndTime      int64  `json:"end_time"`
	Fixed        bool   `json:"fixed"`
	Duration     int64  `json:"duration"`
	TriggeredBy  int    `json:"trigger_id"`
	CommentID    int    `json:"comment_id"`
	IsInEffect   bool   `json:"is_in_effect"`
	CanBeDeleted bool   `json:"can_be_deleted"`
}

// Owner returns the object the downtime is attached to
func (d *Downtime) Owner() ObjectRef {
	return ObjectRef{HostName: d.HostName, Description: d.Description}
}

// Type returns HostObjectType or ServiceObjectType
func (d *Downtime) Type() int {
	if d.Description != "" {
		return ServiceObjectType
	}
	return HostObjectType
}

// Comment is an operator or system comment on a host or a service
type Comment struct {
	ID          int    `json:"id"`
	HostName    string `json:"host_name"`
	Description string `json:"service_description"`
	Author      string `json:"author"`
	Text        string `json:"comment"`
	EntryTime   int64  `json:"entry_time"`
	EntryType   int    `json:"entry_type"`
	Persistent  bool   `json:"persistent"`
	Source      int    `json:"source"`
	Expires     bool   `json:"expires"`
	ExpireTime  int64  `json:"expire_time"`
}

// Owner returns the object the comment is attached to
func (c *Comment) Owner() ObjectRef {
	return ObjectRef{HostName: c.HostName, Description: c.Description}
}

// Type returns HostObjectType or ServiceObjectType
func (c *Comment) Type() int {
	if c.Description != "" {
		return ServiceObjectType
	}
	return HostObjectType
}

// LogClass categorizes log lines
type LogClass int

const (
	LogClassInfo         LogClass = 0
	LogClassAlert        LogClass = 1
	LogClassProgram      LogClass = 2
	LogClassNotification LogClass = 3
	LogClassPassive      LogClass = 4
	LogClassCommand      LogClass = 5
	LogClassState        LogClass = 6
	LogClassText         LogClass = 7
)

// LogEvent is one parsed monitoring log line. It is never mutated after
// ingestion.
type LogEvent struct {
	Seq          uint64   `json:"seq"`
	Time         int64    `json:"time"`
	Message      string   `json:"message"`
	Class        LogClass `json:"class"`
	Type         string   `json:"type"`
	Options      string   `json:"options"`
	State        int      `json:"state"`
	StateType    string   `json:"state_type"`
	Attempt      int      `json:"attempt"`
	HostName     string   `json:"host_name"`
	Description  string   `json:"service_description"`
	ContactName  string   `json:"contact_name"`
	CommandName  string   `json:"command_name"`
	PluginOutput string   `json:"plugin_output"`
}

// PeerKind names the peer-link tables
type PeerKind string

const (
	PeerScheduler   PeerKind = "scheduler"
	PeerPoller      PeerKind = "poller"
	PeerReactionner PeerKind = "reactionner"
	PeerBroker      PeerKind = "broker"
)

// DefaultPort returns the well-known daemon port of a peer kind
func (k PeerKind) DefaultPort() int {
	switch k {
	case PeerScheduler:
		return 7768
	case PeerReactionner:
		return 7769
	case PeerPoller:
		return 7771
	case PeerBroker:
		return 7772
	}
	return 0
}

// PeerLink is a registered monitoring-infrastructure daemon
type PeerLink struct {
	Kind    PeerKind `json:"-"`
	Name    string   `json:"name"`
	Address string   `json:"address"`
	Port    int      `json:"port"`
	Spare   bool     `json:"spare"`
	Alive   bool     `json:"alive"`
	Weight  int      `json:"weight"`
}

// ProgramStatus mirrors the scheduler's global status
type ProgramStatus struct {
	ProgramVersion             string `json:"program_version"`
	ProgramStart               int64  `json:"program_start"`
	PID                        int    `json:"pid"`
	IntervalLength             int    `json:"interval_length"`
	LastCommandCheck           int64  `json:"last_command_check"`
	LastLogRotation            int64  `json:"last_log_rotation"`
	AcceptPassiveHostChecks    bool   `json:"passive_host_checks_enabled"`
	AcceptPassiveServiceChecks bool   `json:"passive_service_checks_enabled"`
	CheckExternalCommands      bool   `json:"check_external_commands"`
	CheckHostFreshness         bool   `json:"check_host_freshness"`
	CheckServiceFreshness      bool   `json:"check_service_freshness"`
	EnableEventHandlers        bool   `json:"event_handlers_enabled"`
	EnableFlapDetection        bool   `json:"flap_detection_enabled"`
	EnableNotifications        bool   `json:"notifications_enabled"`
	ExecuteHostChecks          bool   `json:"active_host_checks_enabled"`
	ExecuteServiceChecks       bool   `json:"active_service_checks_enabled"`
	ObsessOverHosts            bool   `json:"obsess_over_hosts"`
	ObsessOverServices         bool   `json:"obsess_over_services"`
	ProcessPerformanceData     bool   `json:"process_performance_data"`
}

// DefaultCheckState returns the check state of a freshly declared object:
// pending, all feature flags on.
func DefaultCheckState() CheckState {
	return CheckState{
		StateType:            StateTypeHard,
		CurrentAttempt:       1,
		ActiveChecksEnabled:  true,
		AcceptPassiveChecks:  true,
		NotificationsEnabled: true,
		EventHandlerEnabled:  true,
		FlapDetectionEnabled: true,
		ProcessPerfData:      true,
		InCheckPeriod:        true,
		InNotificationPeriod: true,
	}
}

// NewHost returns a host with defaults applied
func NewHost(name string) *Host {
	return &Host{Name: name, MaxCheckAttempts: 1, CheckState: DefaultCheckState()}
}

// NewService returns a service with defaults applied
func NewService(hostName, description string) *Service {
	return &Service{
		HostName:         hostName,
		Description:      description,
		MaxCheckAttempts: 1,
		CheckState:       DefaultCheckState(),
	}
}

// NewPeerLink returns a peer link with the kind's default port and weight
func NewPeerLink(kind PeerKind, name string) *PeerLink {
	return &PeerLink{Kind: kind, Name: name, Port: kind.DefaultPort(), Alive: true, Weight: 1}
}

// NewProgramStatus returns the program status used until the feed sends one
func NewProgramStatus() *ProgramStatus {
	return &ProgramStatus{
		IntervalLength:             60,
		AcceptPassiveHostChecks:    true,
		AcceptPassiveServiceChecks: true,
		CheckExternalCommands:      true,
		EnableEventHandlers:        true,
		EnableFlapDetection:        true,
		EnableNotifications:        true,
		ExecuteHostChecks:          true,
		ExecuteServiceChecks:       true,
		ProcessPerformanceData:     true,
	}
}
