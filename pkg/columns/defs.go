package columns

import (
	"github.com/cuemby/livestatus/pkg/store"
	"github.com/cuemby/livestatus/pkg/types"
)

func strCol[T any](name, desc string, fn func(T) string) def[T] {
	return def[T]{name, TypeString, desc, func(v T, _ *store.Tx) Value { return String(fn(v)) }}
}

func intCol[T any](name, desc string, fn func(T) int) def[T] {
	return def[T]{name, TypeInt, desc, func(v T, _ *store.Tx) Value { return Int(int64(fn(v))) }}
}

func boolCol[T any](name, desc string, fn func(T) bool) def[T] {
	return def[T]{name, TypeInt, desc, func(v T, _ *store.Tx) Value { return Bool(fn(v)) }}
}

func floatCol[T any](name, desc string, fn func(T) float64) def[T] {
	return def[T]{name, TypeFloat, desc, func(v T, _ *store.Tx) Value { return Float(fn(v)) }}
}

func timeCol[T any](name, desc string, fn func(T) int64) def[T] {
	return def[T]{name, TypeTime, desc, func(v T, _ *store.Tx) Value { return Time(fn(v)) }}
}

func listCol[T any](name, desc string, fn func(T, *store.Tx) []string) def[T] {
	return def[T]{name, TypeList, desc, func(v T, tx *store.Tx) Value { return Strings(fn(v, tx)) }}
}

// checkColumns are the check-state columns shared by hosts and services
func checkColumns[T any](cs func(T) *types.CheckState) []def[T] {
	return []def[T]{
		intCol("state", "The current state of the object", func(v T) int { return cs(v).State }),
		intCol("state_type", "Type of the current state (0: soft, 1: hard)", func(v T) int { return cs(v).StateType }),
		intCol("hard_state", "The effective hard state of the object", func(v T) int { return cs(v).HardState() }),
		intCol("last_state", "The state before the last state change", func(v T) int { return cs(v).LastState }),
		intCol("last_hard_state", "The last hard state", func(v T) int { return cs(v).LastHardState }),
		strCol("plugin_output", "Output of the last check plugin", func(v T) string { return cs(v).PluginOutput }),
		strCol("long_plugin_output", "Complete output from check plugin", func(v T) string { return cs(v).LongPluginOutput }),
		strCol("perf_data", "Optional performance data of the last check", func(v T) string { return cs(v).PerfData }),
		intCol("check_type", "Type of check (0: active, 1: passive)", func(v T) int { return cs(v).CheckType }),
		floatCol("latency", "Time difference between scheduled check time and actual check time", func(v T) float64 { return cs(v).Latency }),
		floatCol("execution_time", "Time the check needed for execution", func(v T) float64 { return cs(v).ExecutionTime }),
		floatCol("percent_state_change", "Percent state change", func(v T) float64 { return cs(v).PercentStateChange }),
		timeCol("last_check", "Time of the last check (Unix timestamp)", func(v T) int64 { return cs(v).LastCheck }),
		timeCol("next_check", "Scheduled time for the next check (Unix timestamp)", func(v T) int64 { return cs(v).NextCheck }),
		timeCol("last_state_change", "Time of the last state change (Unix timestamp)", func(v T) int64 { return cs(v).LastStateChange }),
		timeCol("last_hard_state_change", "Time of the last hard state change (Unix timestamp)", func(v T) int64 { return cs(v).LastHardStateChange }),
		timeCol("last_notification", "Time of the last notification (Unix timestamp)", func(v T) int64 { return cs(v).LastNotification }),
		boolCol("has_been_checked", "Whether a check has already been executed (0/1)", func(v T) bool { return cs(v).HasBeenChecked }),
		intCol("current_attempt", "Number of the current check attempts", func(v T) int { return cs(v).CurrentAttempt }),
		intCol("current_notification_number", "Number of the current notification", func(v T) int { return cs(v).CurrentNotificationNumber }),
		boolCol("is_flapping", "Whether the state is flapping (0/1)", func(v T) bool { return cs(v).IsFlapping }),
		boolCol("acknowledged", "Whether the current problem has been acknowledged (0/1)", func(v T) bool { return cs(v).Acknowledged }),
		intCol("acknowledgement_type", "Type of acknowledgement (0: none, 1: normal, 2: sticky)", func(v T) int { return cs(v).AcknowledgementType }),
		boolCol("is_executing", "Whether a check is currently being executed (0/1)", func(v T) bool { return cs(v).IsExecuting }),
		intCol("scheduled_downtime_depth", "The number of downtimes this object is currently in", func(v T) int { return cs(v).ScheduledDowntimeDepth }),
		boolCol("active_checks_enabled", "Whether active checks are enabled (0/1)", func(v T) bool { return cs(v).ActiveChecksEnabled }),
		boolCol("accept_passive_checks", "Whether passive checks are accepted (0/1)", func(v T) bool { return cs(v).AcceptPassiveChecks }),
		boolCol("notifications_enabled", "Whether notifications are enabled (0/1)", func(v T) bool { return cs(v).NotificationsEnabled }),
		boolCol("event_handler_enabled", "Whether event handling is enabled (0/1)", func(v T) bool { return cs(v).EventHandlerEnabled }),
		boolCol("flap_detection_enabled", "Whether flap detection is enabled (0/1)", func(v T) bool { return cs(v).FlapDetectionEnabled }),
		boolCol("process_performance_data", "Whether processing of performance data is enabled (0/1)", func(v T) bool { return cs(v).ProcessPerfData }),
		boolCol("in_check_period", "Whether the object is currently in its check period (0/1)", func(v T) bool { return cs(v).InCheckPeriod }),
		boolCol("in_notification_period", "Whether the object is currently in its notification period (0/1)", func(v T) bool { return cs(v).InNotificationPeriod }),
		intCol("modified_attributes", "A bitmask specifying which attributes have been modified", func(v T) int { return cs(v).ModifiedAttributes }),
		def[T]{"modified_attributes_list", TypeList, "A list of all modified attributes", func(v T, _ *store.Tx) Value {
			return Strings(ModifiedAttributeNames(cs(v).ModifiedAttributes))
		}},
	}
}

// derivedColumns expose the problem/impact relation
func derivedColumns[T any](d func(T) *types.Derived) []def[T] {
	return []def[T]{
		boolCol("is_problem", "Whether the object is a root problem (0/1)", func(v T) bool { return d(v).IsProblem }),
		boolCol("is_impact", "Whether the object is impacted by a problem (0/1)", func(v T) bool { return d(v).IsImpact }),
		{"impacts", TypeList, "The objects impacted by this problem", func(v T, _ *store.Tx) Value { return refList(d(v).Impacts) }},
		{"source_problems", TypeList, "The root problems impacting this object", func(v T, _ *store.Tx) Value { return refList(d(v).SourceProblems) }},
	}
}

// dependencyColumns expose the dependency edges of an object
func dependencyColumns[T any](ref func(T) types.ObjectRef) []def[T] {
	return []def[T]{
		{"parent_dependencies", TypeList, "The objects this object depends on", func(v T, tx *store.Tx) Value {
			return refStrings(tx.Dependencies(ref(v)))
		}},
		{"child_dependencies", TypeList, "The objects depending on this object", func(v T, tx *store.Tx) Value {
			return refStrings(tx.Dependents(ref(v)))
		}},
		{"comments", TypeList, "A list of the ids of all comments", func(v T, tx *store.Tx) Value {
			comments := tx.CommentsOf(ref(v))
			ids := make([]Value, len(comments))
			for i, c := range comments {
				ids[i] = Int(int64(c.ID))
			}
			return List(ids...)
		}},
		{"downtimes", TypeList, "A list of the ids of all scheduled downtimes", func(v T, tx *store.Tx) Value {
			downtimes := tx.DowntimesOf(ref(v))
			ids := make([]Value, len(downtimes))
			for i, d := range downtimes {
				ids[i] = Int(int64(d.ID))
			}
			return List(ids...)
		}},
	}
}
