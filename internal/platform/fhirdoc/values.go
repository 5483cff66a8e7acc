package fhirdoc

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// object returns v as an *Object, or nil.
func object(v any) *Object {
	o, _ := v.(*Object)
	return o
}

// list wraps a single value in a slice; nil becomes an empty slice.
func list(v any) []any {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		return t
	}
	return []any{v}
}

// str renders a scalar as text. Objects and arrays render as "".
func str(v any) string {
	switch t := v.(type) {
	case *Object, []any, nil:
		return ""
	case json.Number:
		return t.String()
	}
	return cast.ToString(v)
}

// scalar converts JSON numbers to float64 so cells hold native numbers.
func scalar(v any) any {
	switch t := v.(type) {
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case nil, *Object, []any:
		return ""
	}
	return v
}

// truthy mirrors the emptiness test FHIR consumers apply to optional
// elements: absent, "", empty objects and arrays are all empty.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case *Object:
		return t.Len() > 0
	case []any:
		return len(t) > 0
	case bool:
		return t
	case json.Number:
		f, err := t.Float64()
		return err != nil || f != 0
	}
	return true
}

// firstString returns the first non-empty string among keys of o.
func firstString(o *Object, keys ...string) string {
	for _, k := range keys {
		if s := str(o.Get(k)); s != "" {
			return s
		}
	}
	return ""
}

func joinNonEmpty(parts []string, sep string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

// =========== FHIR datatypes ===========

// humanName renders the first HumanName as its text, or "Family, Given".
func humanName(v any) string {
	names := list(v)
	if len(names) == 0 {
		return ""
	}
	if s, ok := names[0].(string); ok {
		return s
	}
	name := object(names[0])
	if text := str(name.Get("text")); text != "" {
		return text
	}
	var given []string
	for _, g := range list(name.Get("given")) {
		given = append(given, str(g))
	}
	return strings.Trim(str(name.Get("family"))+", "+strings.Join(given, " "), ", ")
}

// coding returns the code and display of a CodeableConcept. Display falls
// back to the concept text.
func coding(v any) (code, display string) {
	if !truthy(v) {
		return "", ""
	}
	if s, ok := v.(string); ok {
		return "", s
	}
	cc := object(v)
	text := str(cc.Get("text"))
	codings := list(cc.Get("coding"))
	if len(codings) == 0 {
		return "", text
	}
	first := object(codings[0])
	code = str(first.Get("code"))
	display = text
	if first.Has("display") {
		display = str(first.Get("display"))
	}
	if display == "" {
		display = text
	}
	return code, display
}

// concept renders a CodeableConcept as "code - display", or whichever
// part is present.
func concept(v any) string {
	if !truthy(v) {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	cc := object(v)
	if len(list(cc.Get("coding"))) == 0 {
		return str(cc.Get("text"))
	}
	code, display := coding(v)
	if code != "" && display != "" {
		return code + " - " + display
	}
	if display != "" {
		return display
	}
	if code != "" {
		return code
	}
	return str(cc.Get("text"))
}

// concepts joins each CodeableConcept in v with "; ".
func concepts(v any) string {
	var out []string
	for _, c := range list(v) {
		out = append(out, concept(c))
	}
	return strings.Join(out, "; ")
}

// reference renders a Reference as its display, or the literal reference.
func reference(v any) string {
	if !truthy(v) {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return firstString(object(v), "display", "reference")
}

// references joins reference(item.Get(key)) over each element of v. An
// empty key treats the elements themselves as references.
func references(v any, key string) string {
	var out []string
	for _, item := range list(v) {
		if key != "" {
			item = object(item).Get(key)
		}
		out = append(out, reference(item))
	}
	return strings.Join(out, "; ")
}

// period returns the normalized start and end of a Period.
func period(v any) (start, end string) {
	p := object(v)
	return FormatDate(str(p.Get("start"))), FormatDate(str(p.Get("end")))
}

// address renders the first Address as its text, or its joined parts.
func address(v any) string {
	addrs := list(v)
	if len(addrs) == 0 {
		return ""
	}
	if s, ok := addrs[0].(string); ok {
		return s
	}
	a := object(addrs[0])
	if text := str(a.Get("text")); text != "" {
		return text
	}
	var parts []string
	for _, l := range list(a.Get("line")) {
		parts = append(parts, str(l))
	}
	parts = append(parts, str(a.Get("city")), str(a.Get("state")), str(a.Get("postalCode")))
	return joinNonEmpty(parts, ", ")
}

// telecom returns the value of the first ContactPoint with the given
// system, or of the first entry when system is "".
func telecom(v any, system string) string {
	for _, t := range list(v) {
		if s, ok := t.(string); ok {
			return s
		}
		cp := object(t)
		if system != "" && str(cp.Get("system")) != system {
			continue
		}
		return str(cp.Get("value"))
	}
	return ""
}

// quantity renders a Quantity as "value unit".
func quantity(v any, defaultUnit string) string {
	q := object(v)
	if q.Len() == 0 {
		return ""
	}
	unit := str(q.Get("unit"))
	if !q.Has("unit") {
		unit = defaultUnit
	}
	return strings.TrimSpace(str(q.Get("value")) + " " + unit)
}

// =========== Dates ===========

var dateLayouts = []struct {
	layout   string
	withTime bool
}{
	{time.RFC3339Nano, true},
	{"2006-01-02T15:04:05", true},
	{"2006-01-02T15:04", true},
	{"2006-01-02", false},
}

// FormatDate normalizes FHIR date and dateTime values to MM/DD/YYYY, plus
// " HH:MM" when a time is present. Partial dates (YYYY, YYYY-MM) and
// anything unparseable are returned unchanged.
func FormatDate(s string) string {
	for _, l := range dateLayouts {
		t, err := time.Parse(l.layout, s)
		if err != nil {
			continue
		}
		if l.withTime {
			return t.Format("01/02/2006 15:04")
		}
		return t.Format("01/02/2006")
	}
	return s
}
