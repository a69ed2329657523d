package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/cuemby/livestatus/pkg/columns"
)

// Format selects the response body encoding
type Format string

const (
	FormatCSV    Format = "csv"
	FormatJSON   Format = "json"
	FormatPython Format = "python"
)

// ParseFormat maps an OutputFormat value to a Format. python3 is accepted
// as python; anything unknown falls back to CSV.
func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON
	case "python", "python3":
		return FormatPython
	default:
		return FormatCSV
	}
}

// Separators are the four CSV separators
type Separators struct {
	Line  string
	Field string
	List  string
	Pair  string
}

// DefaultSeparators are newline, semicolon, comma and pipe
var DefaultSeparators = Separators{Line: "\n", Field: ";", List: ",", Pair: "|"}

// ParseSeparators parses "<line> <field> <list> <pair>" as decimal character
// codes. Missing or invalid codes keep their default.
func ParseSeparators(s string) Separators {
	seps := DefaultSeparators
	targets := []*string{&seps.Line, &seps.Field, &seps.List, &seps.Pair}
	for i, f := range strings.Fields(s) {
		if i >= len(targets) {
			break
		}
		code, err := strconv.Atoi(f)
		if err != nil || code < 0 || code > 255 {
			continue
		}
		*targets[i] = string(rune(code))
	}
	return seps
}

// Options control one encoding
type Options struct {
	Format     Format
	Separators Separators
}

// Encode renders headers (omitted when nil) and rows
func Encode(headers []string, rows [][]columns.Value, opts Options) (string, error) {
	switch opts.Format {
	case FormatJSON:
		return encodeJSON(headers, rows)
	case FormatPython:
		return encodePython(headers, rows), nil
	default:
		seps := opts.Separators
		if seps == (Separators{}) {
			seps = DefaultSeparators
		}
		return encodeCSV(headers, rows, seps), nil
	}
}

// Fixed16 prepends the 16 byte status line: a 3 digit code and the body
// length right-aligned in 11 columns. Lengths wider than 11 digits are
// written in full and push the line past 16 bytes.
func Fixed16(status int, body string) string {
	return fixedHeader(status, len(body)) + body
}

func fixedHeader(status, length int) string {
	return fmt.Sprintf("%3d %11d\n", status, length)
}

func encodeCSV(headers []string, rows [][]columns.Value, seps Separators) string {
	var b strings.Builder
	if headers != nil {
		for i, h := range headers {
			if i > 0 {
				b.WriteString(seps.Field)
			}
			b.WriteString(quoteCSV(h, seps))
		}
		b.WriteString(seps.Line)
	}
	if headers == nil && len(rows) == 0 {
		return seps.Line
	}
	for _, row := range rows {
		for i, v := range row {
			if i > 0 {
				b.WriteString(seps.Field)
			}
			b.WriteString(csvCell(v, seps))
		}
		b.WriteString(seps.Line)
	}
	return b.String()
}

func csvCell(v columns.Value, seps Separators) string {
	switch v.Type {
	case columns.TypeList:
		return v.Join(seps.List, seps.Pair)
	case columns.TypeTuple:
		return columns.List(v).Join(seps.List, seps.Pair)
	case columns.TypeString, columns.TypeBlob:
		return quoteCSV(v.Str, seps)
	default:
		return v.Text()
	}
}

func quoteCSV(s string, seps Separators) string {
	if !strings.Contains(s, `"`) && !strings.Contains(s, seps.Field) && !strings.Contains(s, seps.Line) {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func encodeJSON(headers []string, rows [][]columns.Value) (string, error) {
	out := make([][]any, 0, len(rows)+1)
	if headers != nil {
		h := make([]any, len(headers))
		for i, name := range headers {
			h[i] = name
		}
		out = append(out, h)
	}
	for _, row := range rows {
		r := make([]any, len(row))
		for i, v := range row {
			r[i] = jsonValue(v)
		}
		out = append(out, r)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		return "", fmt.Errorf("failed to encode json response: %w", err)
	}
	return buf.String(), nil
}

func jsonValue(v columns.Value) any {
	switch v.Type {
	case columns.TypeInt, columns.TypeTime:
		return v.Int
	case columns.TypeFloat:
		return json.Number(columns.FormatFloat(v.Float))
	case columns.TypeList, columns.TypeTuple:
		items := make([]any, len(v.List))
		for i, item := range v.List {
			items[i] = jsonValue(item)
		}
		return items
	default:
		return v.Str
	}
}

func encodePython(headers []string, rows [][]columns.Value) string {
	var b strings.Builder
	b.WriteByte('[')
	first := true
	sep := func() {
		if !first {
			b.WriteString(", ")
		}
		first = false
	}
	if headers != nil {
		sep()
		b.WriteByte('[')
		for i, h := range headers {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(pythonString(h))
		}
		b.WriteByte(']')
	}
	for _, row := range rows {
		sep()
		writePythonList(&b, row)
	}
	b.WriteString("]\n")
	return b.String()
}

func writePythonList(b *strings.Builder, items []columns.Value) {
	b.WriteByte('[')
	for i, v := range items {
		if i > 0 {
			b.WriteString(", ")
		}
		writePythonValue(b, v)
	}
	b.WriteByte(']')
}

func writePythonValue(b *strings.Builder, v columns.Value) {
	switch v.Type {
	case columns.TypeInt, columns.TypeTime:
		b.WriteString(strconv.FormatInt(v.Int, 10))
	case columns.TypeFloat:
		b.WriteString(columns.FormatFloat(v.Float))
	case columns.TypeList, columns.TypeTuple:
		writePythonList(b, v.List)
	default:
		b.WriteString(pythonString(v.Str))
	}
}

// pythonString renders a single-quoted python string literal
func pythonString(s string) string {
	var b strings.Builder
	b.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\'':
			b.WriteString(`\'`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&b, `\x%02x`, r)
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
	return b.String()
}
