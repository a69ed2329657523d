package store

import (
	"strconv"
	"strings"

	"github.com/cuemby/livestatus/pkg/types"
)

var hostStates = map[string]int{
	"UP":          types.HostUp,
	"DOWN":        types.HostDown,
	"UNREACHABLE": types.HostUnreachable,
}

var serviceStates = map[string]int{
	"OK":       types.ServiceOK,
	"WARNING":  types.ServiceWarning,
	"CRITICAL": types.ServiceCritical,
	"UNKNOWN":  types.ServiceUnknown,
}

// ParseLogLine parses "[<epoch>] <TYPE>: <options>" once at ingestion.
// Lines without a timestamp are kept as text; timestamped lines without a
// type header are program or info messages.
func ParseLogLine(line string) *types.LogEvent {
	line = strings.TrimRight(line, "\r\n")
	ev := &types.LogEvent{Message: line, Class: types.LogClassText}

	if !strings.HasPrefix(line, "[") {
		return ev
	}
	end := strings.IndexByte(line, ']')
	if end < 0 {
		return ev
	}
	ts, err := strconv.ParseInt(line[1:end], 10, 64)
	if err != nil {
		return ev
	}
	ev.Time = ts
	rest := strings.TrimSpace(line[end+1:])

	typ, opts, ok := strings.Cut(rest, ": ")
	if !ok || strings.ContainsAny(typ, ";[") {
		ev.Class = programClass(rest)
		ev.Options = rest
		return ev
	}
	ev.Type = typ
	ev.Options = opts
	ev.Class = types.LogClassInfo

	f := strings.Split(opts, ";")
	field := func(i int) string {
		if i < len(f) {
			return f[i]
		}
		return ""
	}
	// tail joins the remaining fields, plugin output may contain ';'
	tail := func(i int) string {
		if i < len(f) {
			return strings.Join(f[i:], ";")
		}
		return ""
	}

	switch typ {
	case "HOST ALERT", "CURRENT HOST STATE", "INITIAL HOST STATE":
		ev.Class = types.LogClassAlert
		if typ != "HOST ALERT" {
			ev.Class = types.LogClassState
		}
		ev.HostName = field(0)
		ev.State = hostStates[field(1)]
		ev.StateType = field(2)
		ev.Attempt, _ = strconv.Atoi(field(3))
		ev.PluginOutput = tail(4)

	case "SERVICE ALERT", "CURRENT SERVICE STATE", "INITIAL SERVICE STATE":
		ev.Class = types.LogClassAlert
		if typ != "SERVICE ALERT" {
			ev.Class = types.LogClassState
		}
		ev.HostName = field(0)
		ev.Description = field(1)
		ev.State = serviceStates[field(2)]
		ev.StateType = field(3)
		ev.Attempt, _ = strconv.Atoi(field(4))
		ev.PluginOutput = tail(5)

	case "HOST FLAPPING ALERT", "HOST DOWNTIME ALERT":
		ev.Class = types.LogClassAlert
		ev.HostName = field(0)
		ev.StateType = field(1)
		ev.PluginOutput = tail(2)

	case "SERVICE FLAPPING ALERT", "SERVICE DOWNTIME ALERT":
		ev.Class = types.LogClassAlert
		ev.HostName = field(0)
		ev.Description = field(1)
		ev.StateType = field(2)
		ev.PluginOutput = tail(3)

	case "HOST NOTIFICATION":
		ev.Class = types.LogClassNotification
		ev.ContactName = field(0)
		ev.HostName = field(1)
		ev.StateType = field(2)
		ev.State = hostStates[field(2)]
		ev.CommandName = field(3)
		ev.PluginOutput = tail(4)

	case "SERVICE NOTIFICATION":
		ev.Class = types.LogClassNotification
		ev.ContactName = field(0)
		ev.HostName = field(1)
		ev.Description = field(2)
		ev.StateType = field(3)
		ev.State = serviceStates[field(3)]
		ev.CommandName = field(4)
		ev.PluginOutput = tail(5)

	case "PASSIVE HOST CHECK":
		ev.Class = types.LogClassPassive
		ev.HostName = field(0)
		ev.State, _ = strconv.Atoi(field(1))
		ev.PluginOutput = tail(2)

	case "PASSIVE SERVICE CHECK":
		ev.Class = types.LogClassPassive
		ev.HostName = field(0)
		ev.Description = field(1)
		ev.State, _ = strconv.Atoi(field(2))
		ev.PluginOutput = tail(3)

	case "EXTERNAL COMMAND":
		ev.Class = types.LogClassCommand
		ev.CommandName = field(0)
		if strings.HasPrefix(ev.CommandName, "[") {
			if i := strings.Index(ev.CommandName, "] "); i >= 0 {
				ev.CommandName = ev.CommandName[i+2:]
			}
		}

	case "LOG ROTATION", "LOG VERSION":
		ev.Class = types.LogClassProgram
	}

	return ev
}

func programClass(msg string) types.LogClass {
	lower := strings.ToLower(msg)
	for _, marker := range []string{"starting", "shutting down", "restarting", "bailing out", "active mode", "standby mode"} {
		if strings.Contains(lower, marker) {
			return types.LogClassProgram
		}
	}
	return types.LogClassInfo
}
