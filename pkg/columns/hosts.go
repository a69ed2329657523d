package columns

import (
	"github.com/cuemby/livestatus/pkg/store"
	"github.com/cuemby/livestatus/pkg/types"
)

func hostColumns(opts Options) []def[*types.Host] {
	defs := []def[*types.Host]{
		strCol("name", "Host name", func(h *types.Host) string { return h.Name }),
		strCol("host_name", "Host name", func(h *types.Host) string { return h.Name }),
		strCol("display_name", "Optional display name of the host", func(h *types.Host) string { return displayName(h.DisplayName, h.Name) }),
		strCol("alias", "An alias name for the host", func(h *types.Host) string { return h.Alias }),
		strCol("address", "IP address", func(h *types.Host) string { return h.Address }),
		strCol("check_command", "Nagios command for active host check of this host", func(h *types.Host) string { return h.CheckCommand }),
		strCol("event_handler", "Nagios command used as event handler", func(h *types.Host) string { return h.EventHandler }),
		strCol("check_period", "Time period in which this host will be checked", func(h *types.Host) string { return h.CheckPeriod }),
		strCol("notification_period", "Time period in which problems of this host will be notified", func(h *types.Host) string { return h.NotificationPeriod }),
		floatCol("check_interval", "Number of basic interval lengths between two scheduled checks", func(h *types.Host) float64 { return h.CheckInterval }),
		floatCol("retry_interval", "Number of basic interval lengths between checks when retrying after a soft error", func(h *types.Host) float64 { return h.RetryInterval }),
		intCol("max_check_attempts", "Max check attempts for active host checks", func(h *types.Host) int { return h.MaxCheckAttempts }),
		strCol("notes", "Optional notes for this host", func(h *types.Host) string { return h.Notes }),
		strCol("notes_url", "An optional URL with further information about the host", func(h *types.Host) string { return h.NotesURL }),
		strCol("action_url", "An optional URL to custom actions or information about this host", func(h *types.Host) string { return h.ActionURL }),
		strCol("icon_image", "The name of an image file to be used in the web pages", func(h *types.Host) string { return h.IconImage }),
		strCol("icon_image_alt", "Alternative text for the icon_image", func(h *types.Host) string { return h.IconImageAlt }),
		strCol("notes_expanded", "The same as notes, but with the most important macros expanded", func(h *types.Host) string { return expandHostMacros(h.Notes, h) }),
		strCol("notes_url_expanded", "Same as notes_url, but with the most important macros expanded", func(h *types.Host) string { return expandHostMacros(h.NotesURL, h) }),
		strCol("action_url_expanded", "The same as action_url, but with the most important macros expanded", func(h *types.Host) string { return expandHostMacros(h.ActionURL, h) }),
		strCol("icon_image_expanded", "The same as icon_image, but with the most important macros expanded", func(h *types.Host) string { return expandHostMacros(h.IconImage, h) }),
		boolCol("obsess_over_host", "The current obsess_over_host setting (0/1)", func(h *types.Host) bool { return h.ObsessOver }),
		listCol("parents", "A list of all direct parents of the host", func(h *types.Host, _ *store.Tx) []string { return h.Parents }),
		listCol("childs", "A list of all direct children of the host", func(h *types.Host, tx *store.Tx) []string { return tx.Children(h.Name) }),
		listCol("contacts", "A list of all contacts of this host", func(h *types.Host, _ *store.Tx) []string { return h.Contacts }),
		listCol("contact_groups", "A list of all contact groups this host is in", func(h *types.Host, _ *store.Tx) []string { return h.ContactGroups }),
		listCol("groups", "A list of all host groups this host is in", func(h *types.Host, tx *store.Tx) []string {
			return tx.GroupsOf(types.HostGroup, h.Name)
		}),
		{"pnpgraph_present", TypeInt, "Whether there is a PNP4Nagios graph present for this host (0/1)", func(h *types.Host, _ *store.Tx) Value {
			return pnpGraphPresent(opts.PnpPath, h.Name, "")
		}},
		listCol("services", "A list of all services of the host", func(h *types.Host, tx *store.Tx) []string {
			svcs := tx.ServicesOf(h.Name)
			out := make([]string, len(svcs))
			for i, svc := range svcs {
				out[i] = svc.Description
			}
			return out
		}),
		{"services_with_state", TypeList, "A list of all services including their state and whether they have been checked", func(h *types.Host, tx *store.Tx) Value {
			svcs := tx.ServicesOf(h.Name)
			items := make([]Value, len(svcs))
			for i, svc := range svcs {
				items[i] = Tuple(String(svc.Description), Int(int64(svc.State)), Bool(svc.HasBeenChecked))
			}
			return List(items...)
		}},
	}

	defs = append(defs, checkColumns(func(h *types.Host) *types.CheckState { return &h.CheckState })...)
	defs = append(defs, derivedColumns(func(h *types.Host) *types.Derived { return &h.Derived })...)
	defs = append(defs, dependencyColumns(func(h *types.Host) types.ObjectRef { return h.Ref() })...)
	defs = append(defs, customVariableColumns(func(h *types.Host) []types.CustomVar { return h.CustomVariables })...)
	defs = append(defs, serviceCountColumns(func(h *types.Host, tx *store.Tx) []*types.Service { return tx.ServicesOf(h.Name) })...)
	return defs
}

// serviceCountColumns summarize a set of services: the services of a host,
// of the members of a host group or of a service group
func serviceCountColumns[T any](svcs func(T, *store.Tx) []*types.Service) []def[T] {
	count := func(match func(*types.Service) bool) func(T, *store.Tx) Value {
		return func(v T, tx *store.Tx) Value {
			n := 0
			for _, svc := range svcs(v, tx) {
				if match(svc) {
					n++
				}
			}
			return Int(int64(n))
		}
	}
	checkedIn := func(state int) func(*types.Service) bool {
		return func(svc *types.Service) bool { return svc.HasBeenChecked && svc.State == state }
	}
	hardIn := func(state int) func(*types.Service) bool {
		return func(svc *types.Service) bool { return svc.HasBeenChecked && svc.HardState() == state }
	}
	worst := func(state func(*types.Service) int) func(T, *store.Tx) Value {
		return func(v T, tx *store.Tx) Value {
			worst := types.ServiceOK
			for _, svc := range svcs(v, tx) {
				if !svc.HasBeenChecked {
					continue
				}
				if s := state(svc); serviceSeverity(s) > serviceSeverity(worst) {
					worst = s
				}
			}
			return Int(int64(worst))
		}
	}

	return []def[T]{
		{"num_services", TypeInt, "The total number of services", count(func(*types.Service) bool { return true })},
		{"num_services_pending", TypeInt, "The number of services which have not been checked yet", count(func(svc *types.Service) bool { return !svc.HasBeenChecked })},
		{"num_services_ok", TypeInt, "The number of services with state OK", count(checkedIn(types.ServiceOK))},
		{"num_services_warn", TypeInt, "The number of services with state WARN", count(checkedIn(types.ServiceWarning))},
		{"num_services_crit", TypeInt, "The number of services with state CRIT", count(checkedIn(types.ServiceCritical))},
		{"num_services_unknown", TypeInt, "The number of services with state UNKNOWN", count(checkedIn(types.ServiceUnknown))},
		{"num_services_hard_ok", TypeInt, "The number of services with hard state OK", count(hardIn(types.ServiceOK))},
		{"num_services_hard_warn", TypeInt, "The number of services with hard state WARN", count(hardIn(types.ServiceWarning))},
		{"num_services_hard_crit", TypeInt, "The number of services with hard state CRIT", count(hardIn(types.ServiceCritical))},
		{"num_services_hard_unknown", TypeInt, "The number of services with hard state UNKNOWN", count(hardIn(types.ServiceUnknown))},
		{"worst_service_state", TypeInt, "The worst soft state of all services", worst(func(svc *types.Service) int { return svc.State })},
		{"worst_service_hard_state", TypeInt, "The worst hard state of all services", worst(func(svc *types.Service) int { return svc.HardState() })},
	}
}
