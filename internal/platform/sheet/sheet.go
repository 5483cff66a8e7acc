// Package sheet defines the tabular output shared by every interchange
// decoder: a named grid of string-headed columns with currency hints.
package sheet

import (
	"fmt"
	"strconv"
	"unicode/utf8"
)

// MaxNameLength is the longest sheet name a workbook renderer accepts.
const MaxNameLength = 31

// Sheet is one named table produced from a decoded document.
type Sheet struct {
	Name            string   `json:"name" yaml:"name"`
	Headers         []string `json:"headers" yaml:"headers"`
	Rows            [][]any  `json:"rows" yaml:"rows"`
	CurrencyColumns []int    `json:"currency_columns,omitempty" yaml:"currency_columns,omitempty"`
}

// New creates an empty sheet. Currency columns are 1-based header positions.
func New(name string, headers []string, currency ...int) *Sheet {
	h := make([]string, len(headers))
	copy(h, headers)
	return &Sheet{
		Name:            TruncateName(name),
		Headers:         h,
		Rows:            [][]any{},
		CurrencyColumns: currency,
	}
}

// Append adds a row, padding short rows with empty strings and dropping
// values beyond the header count.
func (s *Sheet) Append(values ...any) {
	s.Rows = append(s.Rows, Pad(values, len(s.Headers)))
}

// Len returns the number of data rows.
func (s *Sheet) Len() int {
	return len(s.Rows)
}

// Empty reports whether the sheet carries no data rows.
func (s *Sheet) Empty() bool {
	return len(s.Rows) == 0
}

// IsCurrency reports whether the 1-based column holds monetary values.
func (s *Sheet) IsCurrency(col int) bool {
	for _, c := range s.CurrencyColumns {
		if c == col {
			return true
		}
	}
	return false
}

// Pad returns a row of exactly n values.
func Pad(values []any, n int) []any {
	row := make([]any, n)
	for i := range row {
		if i < len(values) && values[i] != nil {
			row[i] = values[i]
		} else {
			row[i] = ""
		}
	}
	return row
}

// TruncateName shortens a sheet name to MaxNameLength runes.
func TruncateName(name string) string {
	if utf8.RuneCountInString(name) <= MaxNameLength {
		return name
	}
	r := []rune(name)
	return string(r[:MaxNameLength])
}

// Text renders a cell value as a string. Floats print without exponent and
// with the shortest representation that round-trips.
func Text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

// Collect returns the non-nil, non-empty sheets in order.
func Collect(sheets ...*Sheet) []Sheet {
	out := make([]Sheet, 0, len(sheets))
	for _, s := range sheets {
		if s == nil || s.Empty() {
			continue
		}
		out = append(out, *s)
	}
	return out
}
