package store

import (
	"sort"

	"github.com/cuemby/livestatus/pkg/types"
)

// graph holds the dependency edges derived from parents and act_depend_of.
// It is rebuilt together with the problem/impact fields of every host and
// service whenever one of them changes.
type graph struct {
	deps       map[types.ObjectRef][]types.ObjectRef
	dependents map[types.ObjectRef][]types.ObjectRef
	children   map[string][]string
}

func newGraph() *graph {
	return &graph{
		deps:       make(map[types.ObjectRef][]types.ObjectRef),
		dependents: make(map[types.ObjectRef][]types.ObjectRef),
		children:   make(map[string][]string),
	}
}

// recomputeGraph rebuilds the edges and the derived problem/impact relation.
// An object is bad when it is in a hard non-OK state; a bad object is a
// problem unless one of the objects it depends on is bad as well. Every
// object reachable from a problem over reverse dependency edges is one of
// its impacts, and lists the problem among its source problems.
func (s *Store) recomputeGraph() {
	g := newGraph()

	for name, h := range s.hosts {
		ref := h.Ref()
		deps := h.ActDependOf
		if len(deps) == 0 {
			for _, parent := range h.Parents {
				deps = append(deps, types.ObjectRef{HostName: parent})
			}
		}
		g.deps[ref] = deps
		for _, parent := range h.Parents {
			g.children[parent] = append(g.children[parent], name)
		}
	}
	for ref, svc := range s.services {
		deps := svc.ActDependOf
		if len(deps) == 0 {
			deps = []types.ObjectRef{{HostName: svc.HostName}}
		}
		g.deps[ref] = deps
	}
	for ref, deps := range g.deps {
		for _, dep := range deps {
			if s.exists(dep) {
				g.dependents[dep] = append(g.dependents[dep], ref)
			}
		}
	}
	for _, list := range g.dependents {
		sortRefs(list)
	}
	for _, list := range g.children {
		sort.Strings(list)
	}

	var problems []types.ObjectRef
	for ref := range g.deps {
		d := s.derived(ref)
		*d = types.Derived{}
		if !s.bad(ref) {
			continue
		}
		rootCause := true
		for _, dep := range g.deps[ref] {
			if s.bad(dep) {
				rootCause = false
				break
			}
		}
		if rootCause {
			problems = append(problems, ref)
		}
	}
	sortRefs(problems)

	for _, problem := range problems {
		pd := s.derived(problem)
		pd.IsProblem = true

		visited := map[types.ObjectRef]bool{problem: true}
		queue := append([]types.ObjectRef(nil), g.dependents[problem]...)
		for len(queue) > 0 {
			ref := queue[0]
			queue = queue[1:]
			if visited[ref] {
				continue
			}
			visited[ref] = true

			d := s.derived(ref)
			d.IsImpact = true
			d.SourceProblems = append(d.SourceProblems, problem)
			pd.Impacts = append(pd.Impacts, ref)
			queue = append(queue, g.dependents[ref]...)
		}
		sortRefs(pd.Impacts)
	}
	for ref := range g.deps {
		sortRefs(s.derived(ref).SourceProblems)
	}

	s.graph = g
}

func (s *Store) exists(ref types.ObjectRef) bool {
	if ref.IsService() {
		_, ok := s.services[ref]
		return ok
	}
	_, ok := s.hosts[ref.HostName]
	return ok
}

func (s *Store) bad(ref types.ObjectRef) bool {
	var cs *types.CheckState
	if ref.IsService() {
		svc, ok := s.services[ref]
		if !ok {
			return false
		}
		cs = &svc.CheckState
	} else {
		h, ok := s.hosts[ref.HostName]
		if !ok {
			return false
		}
		cs = &h.CheckState
	}
	return cs.StateType == types.StateTypeHard && cs.State != 0
}

// derived returns the derived block of an existing host or service
func (s *Store) derived(ref types.ObjectRef) *types.Derived {
	if ref.IsService() {
		return &s.services[ref].Derived
	}
	return &s.hosts[ref.HostName].Derived
}

// sortRefs orders hosts first, then services, each by key
func sortRefs(refs []types.ObjectRef) {
	sort.Slice(refs, func(i, j int) bool {
		a, b := refs[i], refs[j]
		if a.IsService() != b.IsService() {
			return !a.IsService()
		}
		return a.Less(b)
	})
}
