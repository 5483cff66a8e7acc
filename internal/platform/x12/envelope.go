// Package x12 frames ASC X12 interchanges and decodes the healthcare
// transaction sets (835, 837, 270/271, 276/277, 278, 834, 997/999) into
// sheets.
package x12

import (
	"errors"
	"strings"
)

// isaLength is the fixed length of an ISA segment including its terminator.
const isaLength = 106

var (
	// ErrMissingISA is returned when content does not begin with an ISA segment.
	ErrMissingISA = errors.New("x12: file does not appear to be a valid EDI X12 file (missing ISA segment)")

	// ErrTooShort is returned when content is shorter than a full ISA segment.
	ErrTooShort = errors.New("x12: file is too short to contain a valid ISA segment")
)

// Segment is one X12 segment split into its elements. Element 0 is the
// segment identifier.
type Segment struct {
	Raw      string
	Elements []string
}

// ID returns the upper-cased segment identifier.
func (s Segment) ID() string {
	if len(s.Elements) == 0 {
		return ""
	}
	return strings.ToUpper(s.Elements[0])
}

// Element returns element i, or "" when the segment is shorter.
func (s Segment) Element(i int) string {
	if i < 0 || i >= len(s.Elements) {
		return ""
	}
	return s.Elements[i]
}

// Len returns the number of elements including the identifier.
func (s Segment) Len() int {
	return len(s.Elements)
}

// Transaction is the contiguous run of segments from an ST through its SE.
type Transaction struct {
	Code     string
	Segments []Segment
}

// Envelope is a framed interchange: its three delimiters and every
// non-empty segment in order.
type Envelope struct {
	ElementSep    string
	SubElementSep string
	SegmentTerm   string
	Segments      []Segment
}

// Frame validates the ISA header, reads the delimiters from their fixed
// offsets and splits the interchange into segments.
func Frame(content string) (*Envelope, error) {
	content = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(content), "\ufeff"))

	if len(content) < 3 || !strings.EqualFold(content[:3], "ISA") {
		return nil, ErrMissingISA
	}
	if len(content) < isaLength {
		return nil, ErrTooShort
	}

	env := &Envelope{
		ElementSep:    content[3:4],
		SubElementSep: content[104:105],
		SegmentTerm:   content[105:106],
	}

	for _, raw := range strings.Split(content, env.SegmentTerm) {
		raw = strings.TrimSpace(raw)
		raw = strings.NewReplacer("\n", "", "\r", "").Replace(raw)
		if raw == "" {
			continue
		}
		env.Segments = append(env.Segments, Segment{
			Raw:      raw,
			Elements: strings.Split(raw, env.ElementSep),
		})
	}

	return env, nil
}

// Elements splits a raw segment string on the element separator.
func (e *Envelope) Elements(segment string) []string {
	return strings.Split(segment, e.ElementSep)
}

// SubElements splits a composite element on the sub-element separator.
func (e *Envelope) SubElements(element string) []string {
	return strings.Split(element, e.SubElementSep)
}

// Sub returns sub-element i of a composite element, or "".
func (e *Envelope) Sub(element string, i int) string {
	parts := e.SubElements(element)
	if i < 0 || i >= len(parts) {
		return ""
	}
	return parts[i]
}

// TransactionType returns "835" or "837" from the first ST segment, or ""
// for any other transaction set.
func (e *Envelope) TransactionType() string {
	switch code := e.TransactionCode(); code {
	case "835", "837":
		return code
	}
	return ""
}

// TransactionCode returns ST01 of the first ST segment, whatever its value.
func (e *Envelope) TransactionCode() string {
	for _, seg := range e.Segments {
		if seg.ID() == "ST" {
			return seg.Element(1)
		}
	}
	return ""
}

// Transactions returns each ST..SE run. Segments outside a transaction, an
// SE without a preceding ST and a trailing unterminated ST are dropped.
func (e *Envelope) Transactions() []Transaction {
	var (
		txns    []Transaction
		current []Segment
		inside  bool
	)

	for _, seg := range e.Segments {
		switch seg.ID() {
		case "ST":
			inside = true
			current = []Segment{seg}
		case "SE":
			if inside {
				current = append(current, seg)
				txns = append(txns, Transaction{
					Code:     current[0].Element(1),
					Segments: current,
				})
			}
			inside = false
			current = nil
		default:
			if inside {
				current = append(current, seg)
			}
		}
	}

	return txns
}
