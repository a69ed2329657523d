package query

import (
	"math"
	"strings"

	"github.com/cuemby/livestatus/pkg/columns"
	"github.com/cuemby/livestatus/pkg/store"
)

// Reducer folds matching rows of a stats clause
type Reducer string

const (
	ReduceCount Reducer = "count"
	ReduceSum   Reducer = "sum"
	ReduceMin   Reducer = "min"
	ReduceMax   Reducer = "max"
	ReduceAvg   Reducer = "avg"
)

var reducers = map[string]Reducer{
	"sum": ReduceSum,
	"min": ReduceMin,
	"max": ReduceMax,
	"avg": ReduceAvg,
}

// Stat is one aggregation clause. Count clauses carry a predicate; the
// other reducers fold Column over every row of the group.
type Stat struct {
	Filter  Filter
	Reducer Reducer
	Column  *columns.Column
	Alias   string
}

// parseStat parses "<reducer> <column> [as <alias>]" or a filter leaf with
// an optional "as <alias>" suffix
func parseStat(table *columns.Table, spec string) (*Stat, error) {
	fields := strings.Fields(spec)
	alias := ""
	if n := len(fields); n >= 4 && fields[n-2] == "as" {
		alias = fields[n-1]
		fields = fields[:n-2]
	}

	if r, ok := reducers[strings.ToLower(firstOf(fields))]; ok && len(fields) == 2 {
		col, found := table.Column(fields[1])
		if !found {
			return nil, errNoSuchColumn(fields[1])
		}
		return &Stat{Filter: matchAll{}, Reducer: r, Column: col, Alias: alias}, nil
	}

	if alias != "" {
		spec = strings.Join(fields, " ")
	}
	f, err := parseLeaf(table, spec)
	if err != nil {
		return nil, err
	}
	return &Stat{Filter: f, Reducer: ReduceCount, Alias: alias}, nil
}

func firstOf(fields []string) string {
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// statStack mirrors stack for Stats lines. StatsAnd/StatsOr merge the
// predicates of the newest n clauses into one count clause and StatsNegate
// inverts the newest predicate. Reducer clauses (sum, min, max, avg) carry
// no predicate, so combining or negating them is an invalid request.
type statStack []*Stat

func (s *statStack) push(st *Stat) {
	*s = append(*s, st)
}

func (s *statStack) combine(n int, or bool) error {
	if n <= 0 || len(*s) == 0 {
		return nil
	}
	if n > len(*s) {
		n = len(*s)
	}
	start := len(*s) - n
	nodes := make([]Filter, 0, n)
	for _, st := range (*s)[start:] {
		if st.Reducer != ReduceCount {
			return errInvalidFilter()
		}
		nodes = append(nodes, st.Filter)
	}
	*s = (*s)[:start]

	var f Filter = andFilter(nodes)
	if or {
		f = orFilter(nodes)
	}
	s.push(&Stat{Filter: f, Reducer: ReduceCount})
	return nil
}

func (s *statStack) negate() error {
	if len(*s) == 0 {
		return nil
	}
	top := (*s)[len(*s)-1]
	if top.Reducer != ReduceCount {
		return errInvalidFilter()
	}
	(*s)[len(*s)-1] = &Stat{Filter: notFilter{top.Filter}, Reducer: ReduceCount, Alias: top.Alias}
	return nil
}

// accumulator folds one stats clause within one group
type accumulator struct {
	stat  *Stat
	count int
	sum   float64
	min   float64
	max   float64
}

func (a *accumulator) add(row any, tx *store.Tx) bool {
	if !a.stat.Filter.Match(row, tx) {
		return false
	}
	a.count++
	if a.stat.Reducer == ReduceCount {
		return true
	}
	v := a.stat.Column.Extract(row, tx).Number()
	a.sum += v
	if a.count == 1 {
		a.min, a.max = v, v
	} else {
		a.min = math.Min(a.min, v)
		a.max = math.Max(a.max, v)
	}
	return true
}

// value returns the aggregate; clauses without input yield 0
func (a *accumulator) value() columns.Value {
	switch a.stat.Reducer {
	case ReduceSum:
		return columns.Float(a.sum)
	case ReduceMin:
		return columns.Float(a.min)
	case ReduceMax:
		return columns.Float(a.max)
	case ReduceAvg:
		if a.count == 0 {
			return columns.Float(0)
		}
		return columns.Float(a.sum / float64(a.count))
	default:
		return columns.Int(int64(a.count))
	}
}

type group struct {
	key     []columns.Value
	accs    []*accumulator
	matched bool
}

// aggregate folds rows into one output row per group, in first-seen order.
// Groups without a single matching row are dropped unless there is no
// grouping at all, in which case exactly one row is returned.
func aggregate(rows []any, tx *store.Tx, groupBy []*columns.Column, stats []*Stat) [][]columns.Value {
	newGroup := func(key []columns.Value) *group {
		g := &group{key: key, accs: make([]*accumulator, len(stats))}
		for i, st := range stats {
			g.accs[i] = &accumulator{stat: st}
		}
		return g
	}

	var order []*group
	groups := make(map[string]*group)
	if len(groupBy) == 0 {
		g := newGroup(nil)
		g.matched = true
		order = append(order, g)
		groups[""] = g
	}

	for _, row := range rows {
		key := make([]columns.Value, len(groupBy))
		parts := make([]string, len(groupBy))
		for i, col := range groupBy {
			key[i] = col.Extract(row, tx)
			parts[i] = key[i].Text()
		}
		id := strings.Join(parts, "\x00")

		g, ok := groups[id]
		if !ok {
			g = newGroup(key)
			groups[id] = g
			order = append(order, g)
		}
		for _, acc := range g.accs {
			if acc.add(row, tx) {
				g.matched = true
			}
		}
	}

	out := make([][]columns.Value, 0, len(order))
	for _, g := range order {
		if !g.matched {
			continue
		}
		row := append([]columns.Value(nil), g.key...)
		for _, acc := range g.accs {
			row = append(row, acc.value())
		}
		out = append(out, row)
	}
	return out
}
