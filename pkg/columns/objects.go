package columns

import (
	"github.com/cuemby/livestatus/pkg/store"
	"github.com/cuemby/livestatus/pkg/types"
)

func contactColumns() []def[*types.Contact] {
	defs := []def[*types.Contact]{
		strCol("name", "The login name of the contact person", func(c *types.Contact) string { return c.Name }),
		strCol("alias", "The full name of the contact", func(c *types.Contact) string { return c.Alias }),
		strCol("email", "The email address of the contact", func(c *types.Contact) string { return c.Email }),
		strCol("pager", "The pager address of the contact", func(c *types.Contact) string { return c.Pager }),
		boolCol("can_submit_commands", "Whether the contact is allowed to submit commands (0/1)", func(c *types.Contact) bool { return c.CanSubmitCommands }),
		boolCol("host_notifications_enabled", "Whether the contact will be notified about host problems in general (0/1)", func(c *types.Contact) bool { return c.HostNotificationsEnabled }),
		boolCol("service_notifications_enabled", "Whether the contact will be notified about service problems in general (0/1)", func(c *types.Contact) bool { return c.ServiceNotificationsEnabled }),
		strCol("host_notification_period", "The time period in which the contact will be notified about host problems", func(c *types.Contact) string { return c.HostNotificationPeriod }),
		strCol("service_notification_period", "The time period in which the contact will be notified about service problems", func(c *types.Contact) string { return c.ServiceNotificationPeriod }),
	}
	return append(defs, customVariableColumns(func(c *types.Contact) []types.CustomVar { return c.CustomVariables })...)
}

func commandColumns() []def[*types.Command] {
	return []def[*types.Command]{
		strCol("name", "The name of the command", func(c *types.Command) string { return c.Name }),
		strCol("line", "The shell command line", func(c *types.Command) string { return c.Line }),
	}
}

func timeperiodColumns() []def[*types.Timeperiod] {
	return []def[*types.Timeperiod]{
		strCol("name", "The name of the timeperiod", func(tp *types.Timeperiod) string { return tp.Name }),
		strCol("alias", "The alias of the timeperiod", func(tp *types.Timeperiod) string { return tp.Alias }),
		boolCol("in", "Whether we are currently in this period (0/1)", func(tp *types.Timeperiod) bool { return tp.In }),
	}
}

func downtimeColumns() []def[*types.Downtime] {
	return []def[*types.Downtime]{
		intCol("id", "The id of the downtime", func(d *types.Downtime) int { return d.ID }),
		strCol("author", "The contact that scheduled the downtime", func(d *types.Downtime) string { return d.Author }),
		strCol("comment", "A comment text", func(d *types.Downtime) string { return d.Comment }),
		timeCol("entry_time", "The time the entry was made as UNIX timestamp", func(d *types.Downtime) int64 { return d.EntryTime }),
		timeCol("start_time", "The start time of the downtime as UNIX timestamp", func(d *types.Downtime) int64 { return d.StartTime }),
		timeCol("end_time", "The end time of the downtime as UNIX timestamp", func(d *types.Downtime) int64 { return d.EndTime }),
		boolCol("fixed", "A 1 if the downtime is fixed, a 0 if it is flexible", func(d *types.Downtime) bool { return d.Fixed }),
		intCol("duration", "The duration of the downtime in seconds", func(d *types.Downtime) int { return int(d.Duration) }),
		intCol("triggered_by", "The id of the downtime this downtime was triggered by or 0 if it was not triggered by another downtime", func(d *types.Downtime) int { return d.TriggeredBy }),
		intCol("comment_id", "The id of the comment created for this downtime", func(d *types.Downtime) int { return d.CommentID }),
		boolCol("is_in_effect", "Whether the downtime is currently active (0/1)", func(d *types.Downtime) bool { return d.IsInEffect }),
		boolCol("can_be_deleted", "Whether the downtime can be deleted (0/1)", func(d *types.Downtime) bool { return d.CanBeDeleted }),
		intCol("type", "1 for a host downtime, 2 for a service downtime", func(d *types.Downtime) int { return d.Type() }),
		boolCol("is_service", "0, if this entry is for a host, 1 if it is for a service", func(d *types.Downtime) bool { return d.Description != "" }),
		strCol("host_name", "Host name", func(d *types.Downtime) string { return d.HostName }),
		strCol("service_description", "Description of the service", func(d *types.Downtime) string { return d.Description }),
	}
}

func commentColumns() []def[*types.Comment] {
	return []def[*types.Comment]{
		intCol("id", "The id of the comment", func(c *types.Comment) int { return c.ID }),
		strCol("author", "The contact that entered the comment", func(c *types.Comment) string { return c.Author }),
		strCol("comment", "A comment text", func(c *types.Comment) string { return c.Text }),
		timeCol("entry_time", "The time the entry was made as UNIX timestamp", func(c *types.Comment) int64 { return c.EntryTime }),
		intCol("entry_type", "The type of the comment: 1 is user, 2 is downtime, 3 is flap and 4 is acknowledgement", func(c *types.Comment) int { return c.EntryType }),
		boolCol("expires", "Whether this comment expires", func(c *types.Comment) bool { return c.Expires }),
		timeCol("expire_time", "The time of expiry of this comment as a UNIX timestamp", func(c *types.Comment) int64 { return c.ExpireTime }),
		boolCol("persistent", "Whether this comment is persistent (0/1)", func(c *types.Comment) bool { return c.Persistent }),
		intCol("source", "The source of the comment (0 is internal and 1 is external)", func(c *types.Comment) int { return c.Source }),
		intCol("type", "The type of the comment: 1 is host, 2 is service", func(c *types.Comment) int { return c.Type() }),
		boolCol("is_service", "0, if this entry is for a host, 1 if it is for a service", func(c *types.Comment) bool { return c.Description != "" }),
		strCol("host_name", "Host name", func(c *types.Comment) string { return c.HostName }),
		strCol("service_description", "Description of the service", func(c *types.Comment) string { return c.Description }),
	}
}

func peerColumns(kind types.PeerKind) []def[*types.PeerLink] {
	defs := []def[*types.PeerLink]{
		strCol("name", "The name of the "+string(kind), func(p *types.PeerLink) string { return p.Name }),
		strCol("address", "The ip or dns address of the "+string(kind), func(p *types.PeerLink) string { return p.Address }),
		intCol("port", "The TCP port of the "+string(kind), func(p *types.PeerLink) int { return p.Port }),
		boolCol("spare", "If the "+string(kind)+" is a spare or not", func(p *types.PeerLink) bool { return p.Spare }),
		boolCol("alive", "If the "+string(kind)+" is alive or not", func(p *types.PeerLink) bool { return p.Alive }),
	}
	if kind == types.PeerScheduler {
		defs = append(defs, intCol("weight", "Weight (in terms of hosts) of the scheduler", func(p *types.PeerLink) int { return p.Weight }))
	}
	return defs
}

func statusColumns(opts Options) []def[*types.ProgramStatus] {
	counter := func(fn func(Counters) int64) func(*types.ProgramStatus, *store.Tx) Value {
		return func(*types.ProgramStatus, *store.Tx) Value {
			if opts.Counters == nil {
				return Int(0)
			}
			return Int(fn(opts.Counters))
		}
	}

	return []def[*types.ProgramStatus]{
		strCol("program_version", "The version of the monitoring daemon", func(p *types.ProgramStatus) string { return p.ProgramVersion }),
		strCol("livestatus_version", "The version of the livestatus module", func(*types.ProgramStatus) string { return opts.Version }),
		timeCol("program_start", "The time of the last program start as UNIX timestamp", func(p *types.ProgramStatus) int64 { return p.ProgramStart }),
		intCol("nagios_pid", "The process ID of the monitoring core", func(p *types.ProgramStatus) int { return p.PID }),
		intCol("interval_length", "The default interval length from the core configuration", func(p *types.ProgramStatus) int { return p.IntervalLength }),
		timeCol("last_command_check", "The time of the last check for a command as UNIX timestamp", func(p *types.ProgramStatus) int64 { return p.LastCommandCheck }),
		timeCol("last_log_rotation", "Time time of the last log file rotation", func(p *types.ProgramStatus) int64 { return p.LastLogRotation }),
		boolCol("accept_passive_host_checks", "Whether passive host checks are accepted in general (0/1)", func(p *types.ProgramStatus) bool { return p.AcceptPassiveHostChecks }),
		boolCol("accept_passive_service_checks", "Whether passive service checks are activated in general (0/1)", func(p *types.ProgramStatus) bool { return p.AcceptPassiveServiceChecks }),
		boolCol("check_external_commands", "Whether the core checks for external commands at its command pipe (0/1)", func(p *types.ProgramStatus) bool { return p.CheckExternalCommands }),
		boolCol("check_host_freshness", "Whether host freshness checking is activated in general (0/1)", func(p *types.ProgramStatus) bool { return p.CheckHostFreshness }),
		boolCol("check_service_freshness", "Whether service freshness checking is activated in general (0/1)", func(p *types.ProgramStatus) bool { return p.CheckServiceFreshness }),
		boolCol("enable_event_handlers", "Whether event handlers are activated in general (0/1)", func(p *types.ProgramStatus) bool { return p.EnableEventHandlers }),
		boolCol("enable_flap_detection", "Whether flap detection is activated in general (0/1)", func(p *types.ProgramStatus) bool { return p.EnableFlapDetection }),
		boolCol("enable_notifications", "Whether notifications are enabled in general (0/1)", func(p *types.ProgramStatus) bool { return p.EnableNotifications }),
		boolCol("execute_host_checks", "Whether host checks are executed in general (0/1)", func(p *types.ProgramStatus) bool { return p.ExecuteHostChecks }),
		boolCol("execute_service_checks", "Whether active service checks are activated in general (0/1)", func(p *types.ProgramStatus) bool { return p.ExecuteServiceChecks }),
		boolCol("obsess_over_hosts", "Whether the core will obsess over host checks (0/1)", func(p *types.ProgramStatus) bool { return p.ObsessOverHosts }),
		boolCol("obsess_over_services", "Whether the core will obsess over service checks and run the ocsp_command (0/1)", func(p *types.ProgramStatus) bool { return p.ObsessOverServices }),
		boolCol("process_performance_data", "Whether processing of performance data is activated in general (0/1)", func(p *types.ProgramStatus) bool { return p.ProcessPerformanceData }),
		{"cached_log_messages", TypeInt, "The current number of log messages kept in memory", func(_ *types.ProgramStatus, tx *store.Tx) Value {
			return Int(int64(tx.LogCount()))
		}},
		{"requests", TypeInt, "The number of requests to livestatus since program start", counter(Counters.Requests)},
		{"connections", TypeInt, "The number of client connections to livestatus since program start", counter(Counters.Connections)},
	}
}

// problemRow is one row of the problems table
type problemRow struct {
	source  types.ObjectRef
	impacts []types.ObjectRef
}

func problemColumns() []def[*problemRow] {
	return []def[*problemRow]{
		strCol("source", "The source problem", func(p *problemRow) string { return p.source.String() }),
		{"impacts", TypeList, "The objects impacted by the problem, services first", func(p *problemRow, _ *store.Tx) Value {
			var svcs, hosts []types.ObjectRef
			for _, ref := range p.impacts {
				if ref.IsService() {
					svcs = append(svcs, ref)
				} else {
					hosts = append(hosts, ref)
				}
			}
			return refStrings(append(svcs, hosts...))
		}},
	}
}
