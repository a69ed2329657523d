package columns

import (
	"github.com/cuemby/livestatus/pkg/store"
	"github.com/cuemby/livestatus/pkg/types"
)

func serviceColumns(opts Options) []def[*types.Service] {
	host := func(svc *types.Service, tx *store.Tx) *types.Host {
		h, _ := tx.Host(svc.HostName)
		return h
	}
	expanded := func(name, desc string, field func(*types.Service) string) def[*types.Service] {
		return def[*types.Service]{name, TypeString, desc, func(svc *types.Service, tx *store.Tx) Value {
			return String(expandServiceMacros(field(svc), svc, host(svc, tx)))
		}}
	}

	defs := []def[*types.Service]{
		strCol("host_name", "Host name", func(svc *types.Service) string { return svc.HostName }),
		strCol("description", "Description of the service (also used as key)", func(svc *types.Service) string { return svc.Description }),
		strCol("service_description", "Description of the service (also used as key)", func(svc *types.Service) string { return svc.Description }),
		strCol("display_name", "An optional display name", func(svc *types.Service) string { return displayName(svc.DisplayName, svc.Description) }),
		strCol("check_command", "Nagios command used for active checks", func(svc *types.Service) string { return svc.CheckCommand }),
		strCol("event_handler", "Nagios command used as event handler", func(svc *types.Service) string { return svc.EventHandler }),
		strCol("check_period", "The name of the check period of the service", func(svc *types.Service) string { return svc.CheckPeriod }),
		strCol("notification_period", "The name of the notification period of the service", func(svc *types.Service) string { return svc.NotificationPeriod }),
		floatCol("check_interval", "Number of basic interval lengths between two scheduled checks", func(svc *types.Service) float64 { return svc.CheckInterval }),
		floatCol("retry_interval", "Number of basic interval lengths between checks when retrying after a soft error", func(svc *types.Service) float64 { return svc.RetryInterval }),
		intCol("max_check_attempts", "The maximum number of check attempts", func(svc *types.Service) int { return svc.MaxCheckAttempts }),
		strCol("notes", "Optional notes about the service", func(svc *types.Service) string { return svc.Notes }),
		strCol("notes_url", "An optional URL for further notes", func(svc *types.Service) string { return svc.NotesURL }),
		strCol("action_url", "An optional URL for actions or custom information about the service", func(svc *types.Service) string { return svc.ActionURL }),
		strCol("icon_image", "The name of an image to be used as icon in the web interface", func(svc *types.Service) string { return svc.IconImage }),
		strCol("icon_image_alt", "An alternative text for the icon_image for browsers not displaying icons", func(svc *types.Service) string { return svc.IconImageAlt }),
		expanded("notes_expanded", "The notes with (the most important) macros expanded", func(svc *types.Service) string { return svc.Notes }),
		expanded("notes_url_expanded", "The notes_url with (the most important) macros expanded", func(svc *types.Service) string { return svc.NotesURL }),
		expanded("action_url_expanded", "The action_url with (the most important) macros expanded", func(svc *types.Service) string { return svc.ActionURL }),
		expanded("icon_image_expanded", "The icon_image with (the most important) macros expanded", func(svc *types.Service) string { return svc.IconImage }),
		boolCol("obsess_over_service", "Whether 'obsess_over_service' is enabled for the service (0/1)", func(svc *types.Service) bool { return svc.ObsessOver }),
		listCol("contacts", "A list of all contacts of the service", func(svc *types.Service, _ *store.Tx) []string { return svc.Contacts }),
		listCol("contact_groups", "A list of all contact groups this service is in", func(svc *types.Service, _ *store.Tx) []string { return svc.ContactGroups }),
		listCol("groups", "A list of all service groups the service is in", func(svc *types.Service, tx *store.Tx) []string {
			return tx.GroupsOf(types.ServiceGroup, svc.Ref().String())
		}),
		{"pnpgraph_present", TypeInt, "Whether there is a PNP4Nagios graph present for this service (0/1)", func(svc *types.Service, _ *store.Tx) Value {
			return pnpGraphPresent(opts.PnpPath, svc.HostName, svc.Description)
		}},
	}

	defs = append(defs, checkColumns(func(svc *types.Service) *types.CheckState { return &svc.CheckState })...)
	defs = append(defs, derivedColumns(func(svc *types.Service) *types.Derived { return &svc.Derived })...)
	defs = append(defs, dependencyColumns(func(svc *types.Service) types.ObjectRef { return svc.Ref() })...)
	defs = append(defs, customVariableColumns(func(svc *types.Service) []types.CustomVar { return svc.CustomVariables })...)
	return defs
}

// hostOf resolves the host a row refers to by name
func hostOf[R any](name func(R) string) resolver[*types.Host] {
	return func(row any, tx *store.Tx) (*types.Host, bool) {
		r, ok := row.(R)
		if !ok {
			return nil, false
		}
		return tx.Host(name(r))
	}
}

// serviceOf resolves the service a row refers to by key
func serviceOf[R any](key func(R) (string, string)) resolver[*types.Service] {
	return func(row any, tx *store.Tx) (*types.Service, bool) {
		r, ok := row.(R)
		if !ok {
			return nil, false
		}
		host, desc := key(r)
		if desc == "" {
			return nil, false
		}
		return tx.Service(host, desc)
	}
}
