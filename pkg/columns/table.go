package columns

import (
	"sort"

	"github.com/cuemby/livestatus/pkg/store"
)

// Extractor reads one cell from a row. Rows are the objects returned by the
// table's row source; extractors may also look up related objects in tx.
type Extractor func(row any, tx *store.Tx) Value

// Column describes one column of a table
type Column struct {
	Name        string
	Table       string
	Type        Type
	Description string
	Extract     Extractor
}

// RowSource lists the rows of a table in key-sorted order
type RowSource func(tx *store.Tx) ([]any, error)

// Table is a named row-producing view with its column registry
type Table struct {
	Name    string
	rows    RowSource
	columns []*Column
	index   map[string]*Column
}

func newTable(name string, rows RowSource) *Table {
	return &Table{Name: name, rows: rows, index: make(map[string]*Column)}
}

// AddColumn registers a column, replacing an existing one of the same name
func (t *Table) AddColumn(name string, typ Type, desc string, extract Extractor) *Column {
	col := &Column{Name: name, Table: t.Name, Type: typ, Description: desc, Extract: extract}
	if _, ok := t.index[name]; ok {
		for i, c := range t.columns {
			if c.Name == name {
				t.columns[i] = col
			}
		}
	} else {
		t.columns = append(t.columns, col)
	}
	t.index[name] = col
	return col
}

// AddAlias registers name as another name of an existing column
func (t *Table) AddAlias(name, target string) {
	col, ok := t.index[target]
	if !ok {
		return
	}
	t.AddColumn(name, col.Type, col.Description, col.Extract)
}

// Column looks up a column by name
func (t *Table) Column(name string) (*Column, bool) {
	col, ok := t.index[name]
	return col, ok
}

// ColumnOrEmpty returns the named column, or a string column that always
// yields "" when the table has no such column
func (t *Table) ColumnOrEmpty(name string) *Column {
	if col, ok := t.index[name]; ok {
		return col
	}
	return &Column{
		Name:    name,
		Table:   t.Name,
		Type:    TypeString,
		Extract: func(any, *store.Tx) Value { return String("") },
	}
}

// Columns returns all columns sorted by name
func (t *Table) Columns() []*Column {
	out := append([]*Column(nil), t.columns...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Rows lists the table's rows
func (t *Table) Rows(tx *store.Tx) ([]any, error) {
	return t.rows(tx)
}

// def is a column definition over an entity type T, reusable under several
// tables and name prefixes
type def[T any] struct {
	name string
	typ  Type
	desc string
	fn   func(v T, tx *store.Tx) Value
}

// resolver maps a table row to the entity a set of definitions reads
type resolver[T any] func(row any, tx *store.Tx) (T, bool)

// addDefs registers defs under prefix. Rows whose entity cannot be resolved
// yield the zero value of the column type.
func addDefs[T any](t *Table, prefix string, resolve resolver[T], defs []def[T]) {
	for _, d := range defs {
		fn, typ := d.fn, d.typ
		t.AddColumn(prefix+d.name, typ, d.desc, func(row any, tx *store.Tx) Value {
			v, ok := resolve(row, tx)
			if !ok {
				return Zero(typ)
			}
			return fn(v, tx)
		})
	}
}

// self resolves rows that already are the entity
func self[T any](row any, _ *store.Tx) (T, bool) {
	v, ok := row.(T)
	return v, ok
}

// rowsOf converts a typed slice to table rows
func rowsOf[T any](items []T) []any {
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out
}
