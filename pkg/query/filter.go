package query

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/cuemby/livestatus/pkg/columns"
	"github.com/cuemby/livestatus/pkg/store"
)

// Filter is a predicate over one table row. Filters never modify the store
// and may be evaluated concurrently.
type Filter interface {
	Match(row any, tx *store.Tx) bool
}

type matchAll struct{}

func (matchAll) Match(any, *store.Tx) bool { return true }

type andFilter []Filter

func (f andFilter) Match(row any, tx *store.Tx) bool {
	for _, sub := range f {
		if !sub.Match(row, tx) {
			return false
		}
	}
	return true
}

type orFilter []Filter

func (f orFilter) Match(row any, tx *store.Tx) bool {
	for _, sub := range f {
		if sub.Match(row, tx) {
			return true
		}
	}
	return false
}

type notFilter struct {
	Filter
}

func (f notFilter) Match(row any, tx *store.Tx) bool {
	return !f.Filter.Match(row, tx)
}

// leaf compares one column against a literal
type leaf struct {
	column *columns.Column
	match  func(columns.Value) bool
}

func (f *leaf) Match(row any, tx *store.Tx) bool {
	return f.match(f.column.Extract(row, tx))
}

// operators lists the accepted comparison operators without their
// negating "!" prefix
var operators = map[string]bool{
	"=": true, "~": true, "~~": true, "=~": true,
	"<": true, ">": true, "<=": true, ">=": true,
}

// parseLeaf parses "<column> <op> <value>". The value may be empty.
func parseLeaf(table *columns.Table, spec string) (*leaf, error) {
	spec = strings.TrimLeft(spec, " \t")
	name, rest, ok := strings.Cut(spec, " ")
	if !ok || name == "" {
		return nil, errInvalidFilter()
	}
	rest = strings.TrimLeft(rest, " \t")
	op, literal, _ := strings.Cut(rest, " ")
	if op == "" {
		return nil, errInvalidFilter()
	}

	col, found := table.Column(name)
	if !found {
		return nil, errNoSuchColumn(name)
	}

	negate := false
	if strings.HasPrefix(op, "!") {
		negate = true
		op = op[1:]
	}
	if !operators[op] {
		return nil, errInvalidFilter()
	}

	match, err := comparator(col.Type, op, literal)
	if err != nil {
		return nil, err
	}
	if negate {
		inner := match
		match = func(v columns.Value) bool { return !inner(v) }
	}
	return &leaf{column: col, match: match}, nil
}

func comparator(typ columns.Type, op, literal string) (func(columns.Value) bool, error) {
	switch {
	case typ == columns.TypeList:
		return listComparator(op, literal)
	case typ.IsNumeric():
		return numberComparator(op, literal)
	default:
		return stringComparator(op, literal)
	}
}

func compileInsensitive(literal string) (*regexp.Regexp, error) {
	re, err := regexp.Compile("(?i)" + literal)
	if err != nil {
		return nil, errInvalidFilter()
	}
	return re, nil
}

func stringComparator(op, literal string) (func(columns.Value) bool, error) {
	switch op {
	case "=":
		return func(v columns.Value) bool { return v.Text() == literal }, nil
	case "~":
		return func(v columns.Value) bool { return strings.Contains(v.Text(), literal) }, nil
	case "~~":
		re, err := compileInsensitive(literal)
		if err != nil {
			return nil, err
		}
		return func(v columns.Value) bool { return re.MatchString(v.Text()) }, nil
	case "=~":
		return func(v columns.Value) bool { return strings.EqualFold(v.Text(), literal) }, nil
	case "<":
		return func(v columns.Value) bool { return v.Text() < literal }, nil
	case ">":
		return func(v columns.Value) bool { return v.Text() > literal }, nil
	case "<=":
		return func(v columns.Value) bool { return v.Text() <= literal }, nil
	default:
		return func(v columns.Value) bool { return v.Text() >= literal }, nil
	}
}

// numberComparator compares numerically. The match operators compare the
// rendered number as text; every other operator needs a numeric literal.
func numberComparator(op, literal string) (func(columns.Value) bool, error) {
	if op == "~" || op == "~~" {
		return func(v columns.Value) bool { return strings.Contains(v.Text(), literal) }, nil
	}

	ref, err := strconv.ParseFloat(strings.TrimSpace(literal), 64)
	if err != nil {
		return nil, errInvalidFilter()
	}
	switch op {
	case "=", "=~":
		return func(v columns.Value) bool { return v.Number() == ref }, nil
	case "<":
		return func(v columns.Value) bool { return v.Number() < ref }, nil
	case ">":
		return func(v columns.Value) bool { return v.Number() > ref }, nil
	case "<=":
		return func(v columns.Value) bool { return v.Number() <= ref }, nil
	default:
		return func(v columns.Value) bool { return v.Number() >= ref }, nil
	}
}

func listComparator(op, literal string) (func(columns.Value) bool, error) {
	contains := func(v columns.Value, eq func(string) bool) bool {
		for _, item := range v.Items() {
			if eq(item) {
				return true
			}
		}
		return false
	}

	switch op {
	case ">=":
		return func(v columns.Value) bool {
			return contains(v, func(s string) bool { return s == literal })
		}, nil
	case "<":
		return func(v columns.Value) bool {
			return !contains(v, func(s string) bool { return s == literal })
		}, nil
	case "<=":
		return func(v columns.Value) bool {
			return contains(v, func(s string) bool { return strings.EqualFold(s, literal) })
		}, nil
	case ">":
		return func(v columns.Value) bool {
			return !contains(v, func(s string) bool { return strings.EqualFold(s, literal) })
		}, nil
	case "=":
		return func(v columns.Value) bool { return v.Join(",", "|") == literal }, nil
	case "=~":
		return func(v columns.Value) bool { return strings.EqualFold(v.Join(",", "|"), literal) }, nil
	case "~":
		return func(v columns.Value) bool {
			return contains(v, func(s string) bool { return strings.Contains(s, literal) })
		}, nil
	default:
		re, err := compileInsensitive(literal)
		if err != nil {
			return nil, err
		}
		return func(v columns.Value) bool { return contains(v, re.MatchString) }, nil
	}
}

// stack holds pending filter nodes. And/Or pop the newest n nodes and push
// their combination; n larger than the stack combines everything.
type stack []Filter

func (s *stack) push(f Filter) {
	*s = append(*s, f)
}

func (s *stack) combine(n int, or bool) {
	if n <= 0 || len(*s) == 0 {
		return
	}
	if n > len(*s) {
		n = len(*s)
	}
	start := len(*s) - n
	nodes := append([]Filter(nil), (*s)[start:]...)
	*s = (*s)[:start]
	if or {
		s.push(orFilter(nodes))
	} else {
		s.push(andFilter(nodes))
	}
}

func (s *stack) negate() {
	if len(*s) == 0 {
		return
	}
	top := len(*s) - 1
	(*s)[top] = notFilter{(*s)[top]}
}

// root collapses the remaining nodes with an implicit and
func (s stack) root() Filter {
	switch len(s) {
	case 0:
		return matchAll{}
	case 1:
		return s[0]
	default:
		return andFilter(append([]Filter(nil), s...))
	}
}
