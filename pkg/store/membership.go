package store

import "sort"

// membership is the authoritative group index of one group kind. Members
// come from two directions: the member list of a group and the groups an
// object declares. Both feed one index so that "members of G" and "groups of
// M" are always symmetric.
type membership struct {
	listed   map[string][]string // group -> members named by the group
	declared map[string][]string // member -> groups named by the member

	members  map[string][]string // group -> sorted members
	memberOf map[string][]string // member -> sorted groups
}

func newMembership() *membership {
	return &membership{
		listed:   make(map[string][]string),
		declared: make(map[string][]string),
		members:  make(map[string][]string),
		memberOf: make(map[string][]string),
	}
}

func (m *membership) setListed(group string, members []string) {
	m.listed[group] = append([]string(nil), members...)
	m.rebuild()
}

func (m *membership) setDeclared(member string, groups []string) {
	if len(groups) == 0 && len(m.declared[member]) == 0 {
		return
	}
	m.declared[member] = append([]string(nil), groups...)
	m.rebuild()
}

func (m *membership) rebuild() {
	members := make(map[string]map[string]bool)
	add := func(group, member string) {
		if group == "" || member == "" {
			return
		}
		if members[group] == nil {
			members[group] = make(map[string]bool)
		}
		members[group][member] = true
	}
	for group, list := range m.listed {
		for _, member := range list {
			add(group, member)
		}
	}
	for member, groups := range m.declared {
		for _, group := range groups {
			add(group, member)
		}
	}

	m.members = make(map[string][]string, len(members))
	m.memberOf = make(map[string][]string)
	for group, set := range members {
		for member := range set {
			m.members[group] = append(m.members[group], member)
			m.memberOf[member] = append(m.memberOf[member], group)
		}
	}
	for _, list := range m.members {
		sort.Strings(list)
	}
	for _, list := range m.memberOf {
		sort.Strings(list)
	}
}

func insertSorted(list []string, s string) []string {
	i := sort.SearchStrings(list, s)
	if i < len(list) && list[i] == s {
		return list
	}
	list = append(list, "")
	copy(list[i+1:], list[i:])
	list[i] = s
	return list
}
