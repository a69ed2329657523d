package columns

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cuemby/livestatus/pkg/store"
	"github.com/cuemby/livestatus/pkg/types"
)

// modifiedAttributes names the bits of modified_attributes, ascending
var modifiedAttributes = []struct {
	bit  int
	name string
}{
	{1, "notifications_enabled"},
	{2, "active_checks_enabled"},
	{4, "passive_checks_enabled"},
	{8, "event_handler_enabled"},
	{16, "flap_detection_enabled"},
	{32, "failure_prediction_enabled"},
	{64, "performance_data_enabled"},
	{128, "obsessive_handler_enabled"},
	{256, "event_handler_command"},
	{512, "check_command"},
	{1024, "normal_check_interval"},
	{2048, "retry_check_interval"},
	{4096, "max_check_attempts"},
	{8192, "freshness_checks_enabled"},
	{16384, "check_timeperiod"},
	{32768, "custom_variable"},
	{65536, "notification_timeperiod"},
}

// ModifiedAttributeNames lists the names of the bits set in mask
func ModifiedAttributeNames(mask int) []string {
	var out []string
	for _, attr := range modifiedAttributes {
		if mask&attr.bit != 0 {
			out = append(out, attr.name)
		}
	}
	return out
}

// serviceSeverity orders service states OK < WARNING < UNKNOWN < CRITICAL
func serviceSeverity(state int) int {
	switch state {
	case types.ServiceOK:
		return 0
	case types.ServiceWarning:
		return 1
	case types.ServiceUnknown:
		return 2
	default:
		return 3
	}
}

// hostSeverity orders host states UP < UNREACHABLE < DOWN
func hostSeverity(state int) int {
	switch state {
	case types.HostUp:
		return 0
	case types.HostUnreachable:
		return 1
	default:
		return 2
	}
}

func expandHostMacros(s string, h *types.Host) string {
	if !strings.Contains(s, "$") || h == nil {
		return s
	}
	return strings.NewReplacer(
		"$HOSTNAME$", h.Name,
		"$HOSTADDRESS$", h.Address,
		"$HOSTALIAS$", h.Alias,
		"$HOSTDISPLAYNAME$", displayName(h.DisplayName, h.Name),
	).Replace(s)
}

func expandServiceMacros(s string, svc *types.Service, h *types.Host) string {
	if !strings.Contains(s, "$") {
		return s
	}
	s = strings.NewReplacer(
		"$SERVICEDESC$", svc.Description,
		"$SERVICEDISPLAYNAME$", displayName(svc.DisplayName, svc.Description),
	).Replace(s)
	if h == nil {
		return strings.ReplaceAll(s, "$HOSTNAME$", svc.HostName)
	}
	return expandHostMacros(s, h)
}

func displayName(display, fallback string) string {
	if display == "" {
		return fallback
	}
	return display
}

// pnpGraphPresent reports whether the PNP4Nagios xml of an object exists
func pnpGraphPresent(pnpPath, host, service string) Value {
	if pnpPath == "" {
		return Int(0)
	}
	if service == "" {
		service = "_HOST_"
	}
	name := strings.ReplaceAll(service, " ", "_") + ".xml"
	if _, err := os.Stat(filepath.Join(pnpPath, host, name)); err != nil {
		return Int(0)
	}
	return Int(1)
}

func customVariableColumns[T any](vars func(T) []types.CustomVar) []def[T] {
	return []def[T]{
		{"custom_variable_names", TypeList, "A list of the names of all custom variables", func(v T, _ *store.Tx) Value {
			cv := vars(v)
			names := make([]string, len(cv))
			for i, c := range cv {
				names[i] = c.Name
			}
			return Strings(names)
		}},
		{"custom_variable_values", TypeList, "A list of the values of the custom variables", func(v T, _ *store.Tx) Value {
			cv := vars(v)
			values := make([]string, len(cv))
			for i, c := range cv {
				values[i] = c.Value
			}
			return Strings(values)
		}},
		{"custom_variables", TypeList, "A list of all custom variables, as name|value pairs", func(v T, _ *store.Tx) Value {
			cv := vars(v)
			items := make([]Value, len(cv))
			for i, c := range cv {
				items[i] = Tuple(String(c.Name), String(c.Value))
			}
			return List(items...)
		}},
	}
}

// refList renders object references: hosts as names, services as
// host|service tuples
func refList(refs []types.ObjectRef) Value {
	items := make([]Value, len(refs))
	for i, ref := range refs {
		if ref.IsService() {
			items[i] = Tuple(String(ref.HostName), String(ref.Description))
		} else {
			items[i] = String(ref.HostName)
		}
	}
	return List(items...)
}

// refStrings renders object references as "host" or "host/service"
func refStrings(refs []types.ObjectRef) Value {
	items := make([]string, len(refs))
	for i, ref := range refs {
		items[i] = ref.String()
	}
	return Strings(items)
}
