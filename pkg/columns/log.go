package columns

import "github.com/cuemby/livestatus/pkg/types"

func logColumns() []def[*types.LogEvent] {
	return []def[*types.LogEvent]{
		timeCol("time", "Time of the log event (UNIX timestamp)", func(e *types.LogEvent) int64 { return e.Time }),
		intCol("lineno", "The number of the line in the log", func(e *types.LogEvent) int { return int(e.Seq) }),
		intCol("class", "The class of the message as integer (0:info, 1:state, 2:program, 3:notification, 4:passive, 5:command)", func(e *types.LogEvent) int { return int(e.Class) }),
		strCol("message", "The complete message line including the timestamp", func(e *types.LogEvent) string { return e.Message }),
		strCol("type", "The type of the message (text before the colon)", func(e *types.LogEvent) string { return e.Type }),
		strCol("options", "The part of the message after the ':'", func(e *types.LogEvent) string { return e.Options }),
		intCol("state", "The state of the host or service in question", func(e *types.LogEvent) int { return e.State }),
		strCol("state_type", "The type of the state (varies on different log classes)", func(e *types.LogEvent) string { return e.StateType }),
		intCol("attempt", "The number of the check attempt", func(e *types.LogEvent) int { return e.Attempt }),
		strCol("host_name", "The name of the host the log entry is about (might be empty)", func(e *types.LogEvent) string { return e.HostName }),
		strCol("service_description", "The description of the service the log entry is about (might be empty)", func(e *types.LogEvent) string { return e.Description }),
		strCol("contact_name", "The name of the contact the log entry is about (might be empty)", func(e *types.LogEvent) string { return e.ContactName }),
		strCol("command_name", "The name of the command of the log entry (e.g. for notifications)", func(e *types.LogEvent) string { return e.CommandName }),
		strCol("plugin_output", "The output of the check, if any is associated with the message", func(e *types.LogEvent) string { return e.PluginOutput }),
	}
}
