package columns

import (
	"math"
	"strconv"
	"strings"
)

// Type is the semantic type of a column
type Type int

const (
	TypeString Type = iota
	TypeInt
	TypeFloat
	TypeTime
	TypeList
	TypeBlob
	// TypeTuple is only used for list elements rendered with the pair
	// separator, e.g. host|service or name|state|has_been_checked
	TypeTuple
)

// String returns the type name shown by the columns table
func (t Type) String() string {
	switch t {
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeTime:
		return "time"
	case TypeList:
		return "list"
	case TypeBlob:
		return "blob"
	case TypeTuple:
		return "tuple"
	default:
		return "string"
	}
}

// IsNumeric reports whether values of this type compare numerically
func (t Type) IsNumeric() bool {
	return t == TypeInt || t == TypeFloat || t == TypeTime
}

// Value is one extracted cell
type Value struct {
	Type  Type
	Int   int64
	Float float64
	Str   string
	List  []Value
}

// Int returns an integer value
func Int(n int64) Value {
	return Value{Type: TypeInt, Int: n}
}

// Bool returns 1 or 0
func Bool(b bool) Value {
	if b {
		return Int(1)
	}
	return Int(0)
}

// Float returns a float value
func Float(f float64) Value {
	return Value{Type: TypeFloat, Float: f}
}

// Time returns an epoch seconds value
func Time(epoch int64) Value {
	return Value{Type: TypeTime, Int: epoch}
}

// String returns a string value
func String(s string) Value {
	return Value{Type: TypeString, Str: s}
}

// Blob returns a blob value
func Blob(s string) Value {
	return Value{Type: TypeBlob, Str: s}
}

// List returns a list value; a nil list becomes an empty list
func List(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{Type: TypeList, List: items}
}

// Strings returns a list of string values
func Strings(items []string) Value {
	out := make([]Value, len(items))
	for i, s := range items {
		out[i] = String(s)
	}
	return Value{Type: TypeList, List: out}
}

// Tuple returns a list element rendered with the pair separator
func Tuple(fields ...Value) Value {
	return Value{Type: TypeTuple, List: fields}
}

// Zero returns the empty value of a type
func Zero(t Type) Value {
	switch t {
	case TypeList:
		return List()
	case TypeInt, TypeFloat, TypeTime, TypeBlob, TypeTuple:
		return Value{Type: t}
	default:
		return String("")
	}
}

// Number returns the numeric value, strings are parsed, failures are 0
func (v Value) Number() float64 {
	switch v.Type {
	case TypeInt, TypeTime:
		return float64(v.Int)
	case TypeFloat:
		return v.Float
	case TypeString, TypeBlob:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		if err != nil {
			return 0
		}
		return f
	}
	return 0
}

// Text renders a scalar the way it appears in CSV output. Lists and tuples
// use "," and "|".
func (v Value) Text() string {
	switch v.Type {
	case TypeInt, TypeTime:
		return strconv.FormatInt(v.Int, 10)
	case TypeFloat:
		return FormatFloat(v.Float)
	case TypeList:
		return v.Join(",", "|")
	case TypeTuple:
		parts := make([]string, len(v.List))
		for i, f := range v.List {
			parts[i] = f.Text()
		}
		return strings.Join(parts, "|")
	default:
		return v.Str
	}
}

// Join renders a list with the given list and pair separators
func (v Value) Join(listSep, pairSep string) string {
	parts := make([]string, len(v.List))
	for i, item := range v.List {
		if item.Type == TypeTuple {
			fields := make([]string, len(item.List))
			for j, f := range item.List {
				fields[j] = f.Text()
			}
			parts[i] = strings.Join(fields, pairSep)
			continue
		}
		parts[i] = item.Text()
	}
	return strings.Join(parts, listSep)
}

// Items returns the text of each list element
func (v Value) Items() []string {
	out := make([]string, len(v.List))
	for i, item := range v.List {
		out[i] = item.Text()
	}
	return out
}

// FormatFloat renders floats without a fractional part as integers.
// Infinities and NaN have no literal in JSON or Python and render as 0.
func FormatFloat(f float64) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return "0"
	}
	if f == float64(int64(f)) && f < 1e15 && f > -1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
