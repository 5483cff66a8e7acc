// Package ncpdp decodes NCPDP Telecommunication Standard pharmacy claims in
// either the control-character framing or the fixed-position header form.
package ncpdp

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// Framing characters.
const (
	SegmentSeparator = "\x1e"
	GroupSeparator   = "\x1d"
	FieldSeparator   = "\x1c"
)

// ErrEmpty is returned for blank input.
var ErrEmpty = errors.New("ncpdp: content is empty")

const (
	claimSegment = "AM07"
	rawDataCode  = "raw_data"
)

// Header holds the transaction header fields.
type Header struct {
	BIN                    string
	Version                string
	TransactionCode        string
	ProcessorControlNumber string
	TransactionCount       string
	ServiceProviderID      string
	DateOfService          string
}

// Empty reports whether no header field was set.
func (h Header) Empty() bool {
	return h == Header{}
}

// Field is one coded value. Segment is the segment the code was read in,
// which decides its display name.
type Field struct {
	Code    string
	Segment string
	Value   string
}

// Name returns the human-readable field name.
func (f Field) Name() string {
	if f.Code == rawDataCode {
		return "Raw Data"
	}
	return FieldName(f.Segment, f.Code)
}

// Claim is an ordered map of field code to value. Setting a code again
// replaces its value in place.
type Claim struct {
	Fields []Field
	index  map[string]int
}

func newClaim() *Claim {
	return &Claim{index: make(map[string]int)}
}

// Set stores a field value.
func (c *Claim) Set(segment, code, value string) {
	if i, ok := c.index[code]; ok {
		c.Fields[i].Value = value
		return
	}
	c.index[code] = len(c.Fields)
	c.Fields = append(c.Fields, Field{Code: code, Segment: segment, Value: value})
}

// Get returns the value stored for code.
func (c *Claim) Get(code string) string {
	if i, ok := c.index[code]; ok {
		return c.Fields[i].Value
	}
	return ""
}

func (c *Claim) clone() *Claim {
	out := newClaim()
	for _, f := range c.Fields {
		out.Set(f.Segment, f.Code, f.Value)
	}
	return out
}

// Transaction is one decoded NCPDP transaction.
type Transaction struct {
	Header Header
	Claims []*Claim
}

// Decode splits content into transactions on the group separator and
// decodes each one.
func Decode(content string) ([]Transaction, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmpty
	}
	var parts []string
	if strings.Contains(content, GroupSeparator) {
		parts = strings.Split(content, GroupSeparator)
	} else {
		parts = []string{content}
	}

	out := make([]Transaction, 0, len(parts))
	for _, p := range parts {
		if strings.ContainsAny(p, FieldSeparator+SegmentSeparator) {
			out = append(out, decodeDelimited(p))
		} else {
			out = append(out, decodeFixed(p))
		}
	}
	return out, nil
}

// decodeDelimited reads the control-character framing: segments split on
// RS, fields on FS, and each field's first two characters are its code.
// An AM field names the segment that follows. Every AM07 after the first
// starts a new claim seeded with the fields read before the first AM07.
func decodeDelimited(content string) Transaction {
	var (
		txn     Transaction
		shared  = newClaim()
		current = shared
		segment string
		claims  int
	)

	for _, seg := range strings.Split(content, SegmentSeparator) {
		if strings.TrimSpace(seg) == "" {
			continue
		}
		for _, field := range strings.Split(seg, FieldSeparator) {
			if len(field) < 2 {
				continue
			}
			code := strings.ToUpper(field[:2])
			value := strings.TrimSpace(field[2:])
			if value == "" {
				continue
			}

			if code == "AM" {
				segment = "AM" + value
				if segment == claimSegment {
					claims++
					if claims > 1 {
						txn.Claims = append(txn.Claims, current)
						current = shared.clone()
					} else {
						shared = current.clone()
					}
				}
				continue
			}

			setHeader(&txn.Header, code, value)
			current.Set(segment, code, value)
		}
	}

	if len(current.Fields) > 0 {
		txn.Claims = append(txn.Claims, current)
	}
	return txn
}

func setHeader(h *Header, code, value string) {
	switch code {
	case "A1":
		h.BIN = value
	case "A2":
		h.Version = value
	case "A3":
		h.TransactionCode = value
	case "A4":
		h.ProcessorControlNumber = value
	case "A9":
		h.TransactionCount = value
	case "A7":
		h.ServiceProviderID = value
	case "A5":
		h.DateOfService = value
	}
}

// decodeFixed reads a fixed-position header. A leading six-digit BIN
// selects positional slicing; anything else is kept as a raw preview.
func decodeFixed(content string) Transaction {
	var txn Transaction
	content = strings.TrimSpace(content)
	if len(content) < 10 {
		return txn
	}

	claim := newClaim()
	if isDigits(content[:6]) {
		h := &txn.Header
		h.BIN = content[:6]
		h.Version = cut(content, 6, 8)
		h.TransactionCode = cut(content, 8, 10)
		if len(content) > 20 {
			h.ProcessorControlNumber = strings.TrimSpace(cut(content, 10, 20))
		}
		if len(content) > 21 {
			h.TransactionCount = cut(content, 20, 21)
		}
		if len(content) > 37 {
			h.ServiceProviderID = strings.TrimSpace(cut(content, 23, 38))
		}
		if len(content) > 45 {
			h.DateOfService = cut(content, 38, 46)
		}
		if len(content) > 46 {
			claim.Set("", rawDataCode, cut(content, 46, 46+200))
		}
	} else {
		claim.Set("", rawDataCode, cut(content, 0, 500))
	}

	if len(claim.Fields) > 0 {
		txn.Claims = []*Claim{claim}
	}
	return txn
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}

// cut returns the byte range [from, to) of s clamped to its length. A rune
// split by either edge is dropped so the result stays valid UTF-8.
func cut(s string, from, to int) string {
	to = min(to, len(s))
	for from < to && !utf8.RuneStart(s[from]) {
		from++
	}
	for to > from && to < len(s) && !utf8.RuneStart(s[to]) {
		to--
	}
	if from >= to {
		return ""
	}
	return s[from:to]
}
