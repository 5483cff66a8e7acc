package hl7v2

import "strings"

// FormatDate converts an HL7 DT value (YYYYMMDD...) to MM/DD/YYYY. Values
// shorter than eight characters are returned unchanged.
func FormatDate(v string) string {
	if len(v) < 8 {
		return v
	}
	return v[4:6] + "/" + v[6:8] + "/" + v[0:4]
}

// FormatDateTime converts an HL7 TS value to "MM/DD/YYYY HH:MM", or to a
// bare date when no time is present. Any timezone offset is dropped.
func FormatDateTime(v string) string {
	v = stripZone(v)
	switch {
	case len(v) >= 12:
		return v[4:6] + "/" + v[6:8] + "/" + v[0:4] + " " + v[8:10] + ":" + v[10:12]
	case len(v) >= 8:
		return FormatDate(v)
	}
	return v
}

func stripZone(v string) string {
	if i := strings.IndexAny(v, "+-"); i >= 0 {
		return v[:i]
	}
	return v
}
