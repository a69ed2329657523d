package query

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/cuemby/livestatus/pkg/columns"
	"github.com/cuemby/livestatus/pkg/output"
	"github.com/cuemby/livestatus/pkg/store"
)

// Query is a parsed GET request
type Query struct {
	Table   *columns.Table
	Columns []*columns.Column
	Headers bool
	Filter  Filter
	Stats   []*Stat
	GroupBy []*columns.Column
	Limit   int // negative means unlimited

	Format     output.Format
	Separators output.Separators

	// Fixed16 and KeepAlive are kept even when parsing fails, so an error
	// response can still be framed and the connection kept
	Fixed16   bool
	KeepAlive bool
}

// Result is the projected or aggregated output of a query
type Result struct {
	Headers []string
	Rows    [][]columns.Value
}

// Parse parses a request. On failure the returned query is still non-nil
// and carries the framing directives seen anywhere in the request; the
// error is a *RequestError.
func Parse(request string, registry *columns.Registry) (*Query, error) {
	q := &Query{
		Filter:     matchAll{},
		Limit:      -1,
		Format:     output.FormatCSV,
		Separators: output.DefaultSeparators,
	}

	lines := strings.Split(strings.ReplaceAll(request, "\r\n", "\n"), "\n")
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	if len(lines) == 0 {
		return q, errBadMethod()
	}

	var firstErr error
	fail := func(err error) {
		if firstErr == nil {
			firstErr = err
		}
	}

	method, tableName, _ := strings.Cut(strings.TrimSpace(lines[0]), " ")
	if method != "GET" {
		fail(errBadMethod())
	} else if t, ok := registry.Table(strings.TrimSpace(tableName)); ok {
		q.Table = t
	} else {
		fail(errNoSuchTable(strings.TrimSpace(tableName)))
	}

	var (
		filters      stack
		stats        statStack
		columnNames  []string
		headersSet   bool
		explicitCols bool
	)

	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			break
		}
		keyword, arg, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		arg = strings.TrimSpace(arg)

		switch keyword {
		case "ResponseHeader":
			q.Fixed16 = arg == "fixed16"
			continue
		case "KeepAlive":
			q.KeepAlive = arg == "on"
			continue
		}
		if firstErr != nil {
			continue
		}

		switch keyword {
		case "Columns":
			columnNames = append(columnNames, strings.Fields(arg)...)
			explicitCols = true
		case "ColumnHeaders":
			q.Headers = arg == "on"
			headersSet = true
		case "Filter":
			f, err := parseLeaf(q.Table, arg)
			if err != nil {
				fail(err)
				continue
			}
			filters.push(f)
		case "And":
			filters.combine(atoi(arg), false)
		case "Or":
			filters.combine(atoi(arg), true)
		case "Not", "Negate":
			filters.negate()
		case "Stats":
			st, err := parseStat(q.Table, arg)
			if err != nil {
				fail(err)
				continue
			}
			stats.push(st)
		case "StatsAnd":
			if err := stats.combine(atoi(arg), false); err != nil {
				fail(err)
			}
		case "StatsOr":
			if err := stats.combine(atoi(arg), true); err != nil {
				fail(err)
			}
		case "StatsNegate":
			if err := stats.negate(); err != nil {
				fail(err)
			}
		case "StatsGroupBy":
			for _, name := range strings.Fields(arg) {
				col, found := q.Table.Column(name)
				if !found {
					fail(errNoSuchColumn(name))
					break
				}
				q.GroupBy = append(q.GroupBy, col)
			}
		case "OutputFormat":
			q.Format = output.ParseFormat(arg)
		case "Limit":
			if n, err := strconv.Atoi(arg); err == nil && n >= 0 {
				q.Limit = n
			}
		case "Separators":
			q.Separators = output.ParseSeparators(arg)
		}
	}
	if firstErr != nil {
		return q, firstErr
	}

	q.Filter = filters.root()
	q.Stats = stats

	if explicitCols {
		q.Columns = make([]*columns.Column, len(columnNames))
		for i, name := range columnNames {
			q.Columns[i] = q.Table.ColumnOrEmpty(name)
		}
	} else if len(q.Stats) == 0 {
		q.Columns = q.Table.Columns()
		if !headersSet {
			q.Headers = true
		}
	}
	if len(q.Stats) > 0 {
		q.GroupBy = append(append([]*columns.Column(nil), q.Columns...), q.GroupBy...)
	}
	return q, nil
}

func atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

// Execute runs the query against one store snapshot
func (q *Query) Execute(tx *store.Tx) (*Result, error) {
	rows, err := q.Table.Rows(tx)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", q.Table.Name, err)
	}

	matched := rows[:0:0]
	for _, row := range rows {
		if q.Filter.Match(row, tx) {
			matched = append(matched, row)
		}
	}

	res := &Result{}
	if len(q.Stats) > 0 {
		res.Rows = aggregate(matched, tx, q.GroupBy, q.Stats)
		if q.Headers {
			for _, col := range q.GroupBy {
				res.Headers = append(res.Headers, col.Name)
			}
			for i, st := range q.Stats {
				name := st.Alias
				if name == "" {
					name = "stats_" + strconv.Itoa(i+1)
				}
				res.Headers = append(res.Headers, name)
			}
		}
	} else {
		res.Rows = make([][]columns.Value, len(matched))
		for i, row := range matched {
			values := make([]columns.Value, len(q.Columns))
			for j, col := range q.Columns {
				values[j] = col.Extract(row, tx)
			}
			res.Rows[i] = values
		}
		if q.Headers {
			res.Headers = make([]string, len(q.Columns))
			for i, col := range q.Columns {
				res.Headers[i] = col.Name
			}
		}
	}

	if q.Limit >= 0 && len(res.Rows) > q.Limit {
		res.Rows = res.Rows[:q.Limit]
	}
	return res, nil
}

// Encode renders a result in the query's output format
func (q *Query) Encode(res *Result) (string, error) {
	return output.Encode(res.Headers, res.Rows, output.Options{Format: q.Format, Separators: q.Separators})
}

// Status extracts the status code of an error returned by Parse
func Status(err error) int {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Status
	}
	if err != nil {
		return StatusInternal
	}
	return StatusOK
}
