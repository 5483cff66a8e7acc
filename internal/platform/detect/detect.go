// Package detect classifies interchange content by cheap signature checks
// over a bounded prefix.
package detect

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
)

// Format names an interchange format.
type Format string

const (
	None  Format = ""
	X12   Format = "x12"
	HL7v2 Format = "hl7v2"
	FHIR  Format = "fhir"
	CDA   Format = "cda"
	NCPDP Format = "ncpdp"
	CSV   Format = "csv"
)

// Formats lists every concrete format in detection priority order.
var Formats = []Format{NCPDP, X12, HL7v2, FHIR, CDA, CSV}

// Description is a one-line summary of each format.
var Description = map[Format]string{
	NCPDP: "NCPDP Telecommunication Standard pharmacy claims",
	X12:   "ASC X12 EDI (835, 837, 270/271, 276/277, 278, 834, 997/999)",
	HL7v2: "HL7 v2.x pipe-delimited messages",
	FHIR:  "FHIR R4 resources, bundles or arrays (JSON or XML)",
	CDA:   "HL7 v3 CDA / C-CDA clinical documents",
	CSV:   "Delimited text, generic JSON or generic XML",
}

// ParseFormat resolves a format name, case-insensitively.
func ParseFormat(s string) (Format, bool) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, true
		}
	}
	return None, false
}

const (
	controlWindow = 200
	sniffWindow   = 2000
	minISALength  = 106
)

var (
	ncpdpBIN  = regexp.MustCompile(`^\d{6}(51|D0)`)
	hl7Header = regexp.MustCompile(`^(MSH|FHS|BHS)[|^]`)
)

// Detect classifies content. Signatures overlap, so checks run in a fixed
// priority order and the first match wins. None means unrecognized.
func Detect(content string) Format {
	cleaned := strings.TrimPrefix(content, "\ufeff")
	stripped := strings.TrimSpace(cleaned)
	if stripped == "" {
		return None
	}

	if strings.ContainsAny(prefix(cleaned, controlWindow), "\x1c\x1d\x1e") ||
		ncpdpBIN.MatchString(stripped) {
		return NCPDP
	}

	if len(stripped) >= minISALength && strings.EqualFold(stripped[:3], "ISA") {
		return X12
	}

	if hl7Header.MatchString(stripped) {
		return HL7v2
	}
	if strings.Contains(stripped, "\nMSH|") || strings.Contains(stripped, "\rMSH|") {
		return HL7v2
	}

	if stripped[0] == '{' || stripped[0] == '[' {
		if json.Valid([]byte(stripped)) {
			if hasResourceType([]byte(stripped)) {
				return FHIR
			}
			return CSV
		}
	}

	if stripped[0] == '<' {
		head := prefix(stripped, sniffWindow)
		lower := strings.ToLower(head)
		switch {
		case strings.Contains(lower, "fhir"):
			return FHIR
		case strings.Contains(lower, "clinicaldocument"), strings.Contains(lower, "urn:hl7-org:v3"):
			return CDA
		}
		return CSV
	}

	if looksDelimited(stripped) {
		return CSV
	}
	return None
}

// prefix returns at most n bytes of s.
func prefix(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// hasResourceType reports whether a JSON object, or the first element of a
// JSON array, has a top-level "resourceType" key. Only the keys are read;
// values are skipped without being decoded.
func hasResourceType(data []byte) bool {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return false
	}
	if tok == json.Delim('[') {
		if !dec.More() {
			return false
		}
		if tok, err = dec.Token(); err != nil {
			return false
		}
	}
	if tok != json.Delim('{') {
		return false
	}
	for dec.More() {
		key, err := dec.Token()
		if err != nil {
			return false
		}
		if key == "resourceType" {
			return true
		}
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return false
		}
	}
	return false
}

// looksDelimited samples the first five non-empty lines and accepts a
// delimiter that appears on every line with a per-line count spread of at
// most two.
func looksDelimited(s string) bool {
	lines := strings.SplitN(s, "\n", 6)
	if len(lines) < 2 {
		return false
	}
	if len(lines) > 5 {
		lines = lines[:5]
	}
	for _, delim := range []string{",", "\t", "|"} {
		lo, hi, n := -1, 0, 0
		for _, line := range lines {
			if strings.TrimSpace(line) == "" {
				continue
			}
			c := strings.Count(line, delim)
			if lo < 0 || c < lo {
				lo = c
			}
			if c > hi {
				hi = c
			}
			n++
		}
		if n > 0 && lo >= 1 && hi-lo <= 2 {
			return true
		}
	}
	return false
}
