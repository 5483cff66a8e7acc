package x12

import (
	"strconv"
	"strings"
)

// SafeFloat parses s as a float, returning def when s is empty or malformed.
func SafeFloat(s string, def float64) float64 {
	if s == "" {
		return def
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return def
	}
	return v
}

// SafeInt parses s as an integer, returning def when s is empty or malformed.
func SafeInt(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return v
}

// FormatDate converts CCYYMMDD or YYMMDD to MM/DD/YYYY. Two-digit years
// below 50 fall in the 2000s. Any other length is returned trimmed but
// otherwise unchanged.
func FormatDate(s string) string {
	s = strings.TrimSpace(s)
	switch len(s) {
	case 8:
		return s[4:6] + "/" + s[6:8] + "/" + s[0:4]
	case 6:
		century := "19"
		if yy, err := strconv.Atoi(s[0:2]); err == nil && yy < 50 {
			century = "20"
		}
		return s[2:4] + "/" + s[4:6] + "/" + century + s[0:2]
	}
	return s
}

// describe resolves code through table, falling back to the code itself.
func describe(table map[string]string, code string) string {
	if d, ok := table[code]; ok {
		return d
	}
	return code
}

var genders = map[string]string{
	"M": "Male",
	"F": "Female",
	"U": "Unknown",
}

// personName renders "last, first" with stray separators trimmed.
func personName(last, first string) string {
	return strings.Trim(last+", "+first, ", ")
}
