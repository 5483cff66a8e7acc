// Package fhirdoc flattens FHIR resources, bundles and resource arrays in
// JSON or XML form into per-resource-type sheets.
package fhirdoc

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ehr/interchange/internal/platform/sheet"
)

// ErrNoResources is returned when the document holds no object with a
// resourceType.
var ErrNoResources = errors.New("fhir: no resources found")

// Parse decodes FHIR content. The first sheet is always "FHIR Summary"
// (counts per resource type, sorted by type); one sheet per resource type
// follows in first-seen order.
func Parse(content string) ([]sheet.Sheet, error) {
	doc, err := load(content)
	if err != nil {
		return nil, err
	}
	resources := collect(doc)
	if len(resources) == 0 {
		return nil, ErrNoResources
	}
	return Sheets(resources), nil
}

// Sheets renders already decoded resources.
func Sheets(resources []*Object) []sheet.Sheet {
	var order []string
	byType := make(map[string][]*Object)
	for _, r := range resources {
		rt := str(r.Get("resourceType"))
		if rt == "" {
			rt = "Unknown"
		}
		if _, seen := byType[rt]; !seen {
			order = append(order, rt)
		}
		byType[rt] = append(byType[rt], r)
	}

	summary := sheet.New("FHIR Summary", []string{"Resource Type", "Count"})
	sorted := append([]string(nil), order...)
	sort.Strings(sorted)
	for _, rt := range sorted {
		summary.Append(rt, len(byType[rt]))
	}

	out := []sheet.Sheet{*summary}
	for _, rt := range order {
		var s *sheet.Sheet
		if p, ok := projectors[rt]; ok {
			s = sheet.New(p.sheet, p.headers, p.currency...)
			for _, r := range byType[rt] {
				s.Append(p.row(r)...)
			}
		} else {
			s = sheet.New("FHIR "+rt, genericHeaders)
			for _, r := range byType[rt] {
				s.Append(genericRow(rt, r)...)
			}
		}
		out = append(out, *s)
	}
	return out
}

func load(content string) (any, error) {
	content = strings.TrimSpace(strings.TrimPrefix(content, "\ufeff"))
	switch {
	case strings.HasPrefix(content, "{"), strings.HasPrefix(content, "["):
		v, err := decodeJSON([]byte(content))
		if err != nil {
			return nil, fmt.Errorf("fhir: decode json: %w", err)
		}
		return v, nil
	case strings.HasPrefix(content, "<"):
		v, err := decodeXML([]byte(content))
		if err != nil {
			return nil, fmt.Errorf("fhir: decode xml: %w", err)
		}
		return v, nil
	}
	return nil, errors.New("fhir: content is neither JSON nor XML")
}

// collect unwraps a Bundle, a bare resource or an array of resources.
func collect(doc any) []*Object {
	var out []*Object
	switch t := doc.(type) {
	case *Object:
		if str(t.Get("resourceType")) == "Bundle" {
			for _, e := range list(t.Get("entry")) {
				entry := object(e)
				res := entry
				if entry.Has("resource") {
					res = object(entry.Get("resource"))
				}
				if res.Has("resourceType") {
					out = append(out, res)
				}
			}
		} else if t.Has("resourceType") {
			out = append(out, t)
		}
	case []any:
		for _, item := range t {
			if o := object(item); o.Has("resourceType") {
				out = append(out, o)
			}
		}
	}
	return out
}
