// Package tabular flattens content that carries no healthcare signature
// into a single "Data" sheet: delimited text, generic JSON and generic XML.
package tabular

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cast"

	"github.com/ehr/interchange/internal/platform/sheet"
)

// SheetName names the single sheet this package produces.
const SheetName = "Data"

// ErrMalformed is returned when content is neither delimited text nor
// well-formed JSON or XML.
var ErrMalformed = errors.New("tabular: malformed content")

// Delimiters are tried in this order when sniffing.
var Delimiters = []rune{',', '\t', '|'}

// Parse flattens content into at most one sheet. Content with no records
// yields no sheets and no error.
func Parse(content string) ([]sheet.Sheet, error) {
	trimmed := strings.TrimSpace(strings.TrimPrefix(content, "\ufeff"))
	if trimmed == "" {
		return nil, nil
	}

	var (
		t   *table
		err error
	)
	switch {
	case (trimmed[0] == '{' || trimmed[0] == '[') && json.Valid([]byte(trimmed)):
		t, err = fromJSON([]byte(trimmed))
	case trimmed[0] == '<':
		t, err = fromXML([]byte(trimmed))
	default:
		return sheet.Collect(fromDelimited(trimmed, Sniff(trimmed))), nil
	}
	if err != nil {
		return nil, err
	}
	return sheet.Collect(t.sheet()), nil
}

// Sniff picks the delimiter for text. The first delimiter that appears on
// every sampled line, with a per-line count spread of at most two, wins.
// Comma is the default.
func Sniff(text string) rune {
	lines := strings.SplitN(text, "\n", 6)
	if len(lines) > 5 {
		lines = lines[:5]
	}
	for _, d := range Delimiters {
		lo, hi, n := -1, 0, 0
		for _, line := range lines {
			if strings.TrimSpace(line) == "" {
				continue
			}
			c := strings.Count(line, string(d))
			if lo < 0 || c < lo {
				lo = c
			}
			if c > hi {
				hi = c
			}
			n++
		}
		if n > 0 && lo >= 1 && hi-lo <= 2 {
			return d
		}
	}
	return ','
}

// fromDelimited reads delimited text. The first non-blank record is the
// header; every data row is padded or truncated to the header width.
func fromDelimited(text string, delim rune) *sheet.Sheet {
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var s *sheet.Sheet
	for {
		rec, err := r.Read()
		if err != nil {
			// io.EOF; with LazyQuotes no parse error is reported.
			break
		}
		if blank(rec) {
			continue
		}
		if s == nil {
			s = sheet.New(SheetName, headerNames(rec))
			continue
		}
		row := make([]any, len(rec))
		for i, v := range rec {
			row[i] = strings.TrimSpace(v)
		}
		s.Append(row...)
	}
	return s
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// headerNames trims header cells and names blank ones by position.
func headerNames(rec []string) []string {
	out := make([]string, len(rec))
	for i, h := range rec {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("Column %d", i+1)
		}
		out[i] = h
	}
	return out
}

// record is one flattened row with its keys in first-seen order.
type record struct {
	keys   []string
	values map[string]any
}

func newRecord() *record {
	return &record{values: make(map[string]any)}
}

// set stores v under key. A repeated key joins its values with "; ".
func (r *record) set(key string, v any) {
	prev, ok := r.values[key]
	if !ok {
		r.keys = append(r.keys, key)
		r.values[key] = v
		return
	}
	r.values[key] = cast.ToString(prev) + "; " + cast.ToString(v)
}

// table accumulates records and the union of their keys.
type table struct {
	columns []string
	seen    map[string]bool
	records []*record
}

func newTable() *table {
	return &table{seen: make(map[string]bool)}
}

func (t *table) add(r *record) {
	if len(r.keys) == 0 {
		return
	}
	for _, k := range r.keys {
		if !t.seen[k] {
			t.seen[k] = true
			t.columns = append(t.columns, k)
		}
	}
	t.records = append(t.records, r)
}

func (t *table) sheet() *sheet.Sheet {
	if len(t.records) == 0 {
		return nil
	}
	s := sheet.New(SheetName, t.columns)
	for _, r := range t.records {
		row := make([]any, len(t.columns))
		for i, c := range t.columns {
			row[i] = r.values[c]
		}
		s.Append(row...)
	}
	return s
}

// scalar converts a decoded JSON number to int64 or float64 and leaves
// other scalars as they are.
func scalar(v any) any {
	n, ok := v.(json.Number)
	if !ok {
		return v
	}
	if i, err := cast.ToInt64E(n.String()); err == nil && !strings.ContainsAny(n.String(), ".eE") {
		return i
	}
	if f, err := cast.ToFloat64E(n.String()); err == nil {
		return f
	}
	return n.String()
}

func compact(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
