package hl7v2

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNoMessages is returned when content holds no MSH-led message.
var ErrNoMessages = errors.New("hl7v2: no MSH segment found")

// Separators is the delimiter set a message declares in MSH-1 and MSH-2.
type Separators struct {
	Field        string
	Component    string
	Repetition   string
	Escape       string
	SubComponent string
}

// DefaultSeparators are the standard |^~\& delimiters.
var DefaultSeparators = Separators{
	Field:        "|",
	Component:    "^",
	Repetition:   "~",
	Escape:       "\\",
	SubComponent: "&",
}

// Message represents a parsed HL7v2 message.
type Message struct {
	Separators   Separators
	Type         string    // MSH-9 message type (e.g. "ADT^A01")
	ControlID    string    // MSH-10
	Version      string    // MSH-12.1 (e.g. "2.5.1")
	Timestamp    time.Time // MSH-7
	SendingApp   string    // MSH-3.1
	SendingFac   string    // MSH-4.1
	ReceivingApp string    // MSH-5.1
	ReceivingFac string    // MSH-6.1
	Segments     []Segment
}

// Segment represents a single HL7v2 segment.
type Segment struct {
	Name   string // e.g. "MSH", "PID", "OBR", "OBX"
	Fields []Field
}

// Field represents a field which can have components and repetitions.
type Field struct {
	Value      string
	Components []string   // components of the first repetition
	Repeats    [][]string // each repetition split into components
}

// ParseMessage parses a single raw HL7v2 message. It supports \r, \n, and
// \r\n segment separators; batch wrapper segments are skipped.
func ParseMessage(raw []byte) (*Message, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("hl7v2: message is empty")
	}
	lines := segmentLines(string(raw))
	if len(lines) == 0 {
		return nil, fmt.Errorf("hl7v2: no segments found")
	}
	if !strings.HasPrefix(lines[0], "MSH") {
		return nil, fmt.Errorf("hl7v2: first segment must be MSH, got %q", lines[0][:min(3, len(lines[0]))])
	}
	return parseLines(lines), nil
}

// ParseBatch splits content into messages at MSH boundaries and parses each.
// FHS/BHS/BTS/FTS wrappers and lines before the first MSH are discarded.
func ParseBatch(content string) ([]*Message, error) {
	var msgs []*Message
	for _, lines := range SplitMessages(content) {
		msgs = append(msgs, parseLines(lines))
	}
	if len(msgs) == 0 {
		return nil, ErrNoMessages
	}
	return msgs, nil
}

// SplitMessages groups the segment lines of content into messages, one per
// MSH segment.
func SplitMessages(content string) [][]string {
	var (
		messages [][]string
		current  []string
	)
	for _, line := range segmentLines(content) {
		if strings.HasPrefix(line, "MSH") {
			if current != nil {
				messages = append(messages, current)
			}
			current = []string{line}
			continue
		}
		if current != nil {
			current = append(current, line)
		}
	}
	if current != nil {
		messages = append(messages, current)
	}
	return messages
}

// segmentLines normalizes line endings and returns the non-empty segment
// lines, minus batch wrappers.
func segmentLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\r")
	text = strings.ReplaceAll(text, "\n", "\r")

	var lines []string
	for _, line := range strings.Split(text, "\r") {
		line = strings.TrimSpace(line)
		if line == "" || isBatchWrapper(line) {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

func isBatchWrapper(line string) bool {
	for _, p := range []string{"FHS", "BHS", "BTS", "FTS"} {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}

// DeriveSeparators reads the delimiter set from an MSH line. Missing
// encoding characters fall back to the defaults.
func DeriveSeparators(msh string) Separators {
	seps := DefaultSeparators
	if len(msh) <= 3 {
		return seps
	}
	seps.Field = msh[3:4]

	enc := ""
	if parts := strings.Split(msh, seps.Field); len(parts) > 1 {
		enc = parts[1]
	}
	set := []*string{&seps.Component, &seps.Repetition, &seps.Escape, &seps.SubComponent}
	for i, r := range []rune(enc) {
		if i >= len(set) {
			break
		}
		*set[i] = string(r)
	}
	return seps
}

func parseLines(lines []string) *Message {
	msg := &Message{Separators: DeriveSeparators(lines[0])}
	for _, line := range lines {
		msg.Segments = append(msg.Segments, parseSegment(line, msg.Separators))
	}
	msg.extractMSHFields()
	return msg
}

// parseSegment parses a single segment line into a Segment struct.
func parseSegment(line string, seps Separators) Segment {
	parts := strings.Split(line, seps.Field)
	seg := Segment{Name: parts[0]}

	// MSH-1 is the field separator itself and MSH-2 the raw encoding
	// characters, so MSH fields sit one position ahead of other segments.
	if seg.Name == "MSH" {
		seg.Fields = append(seg.Fields, Field{Value: seps.Field, Components: []string{seps.Field}})
		if len(parts) > 1 {
			seg.Fields = append(seg.Fields, Field{Value: parts[1], Components: []string{parts[1]}})
		}
		if len(parts) > 2 {
			for _, f := range parts[2:] {
				seg.Fields = append(seg.Fields, parseField(f, seps))
			}
		}
		return seg
	}

	for _, f := range parts[1:] {
		seg.Fields = append(seg.Fields, parseField(f, seps))
	}
	return seg
}

// parseField parses a single field, handling components and repetitions.
func parseField(raw string, seps Separators) Field {
	f := Field{Value: raw}
	for _, rep := range strings.Split(raw, seps.Repetition) {
		f.Repeats = append(f.Repeats, strings.Split(rep, seps.Component))
	}
	f.Components = f.Repeats[0]
	return f
}

// extractMSHFields copies commonly used MSH fields into the Message struct.
func (m *Message) extractMSHFields() {
	msh := m.GetSegment("MSH")
	if msh == nil {
		return
	}

	m.SendingApp = msh.GetComponent(3, 1)
	m.SendingFac = msh.GetComponent(4, 1)
	m.ReceivingApp = msh.GetComponent(5, 1)
	m.ReceivingFac = msh.GetComponent(6, 1)

	if ts, err := parseHL7Timestamp(msh.GetField(7)); err == nil {
		m.Timestamp = ts
	}

	m.Type = msh.GetField(9)
	m.ControlID = msh.GetField(10)
	m.Version = msh.GetComponent(12, 1)
}

// parseHL7Timestamp parses an HL7v2 timestamp string (YYYYMMDDHHmmss or YYYYMMDD).
func parseHL7Timestamp(s string) (time.Time, error) {
	s = stripZone(strings.TrimSpace(s))
	switch {
	case len(s) >= 14:
		return time.Parse("20060102150405", s[:14])
	case len(s) >= 12:
		return time.Parse("200601021504", s[:12])
	case len(s) >= 8:
		return time.Parse("20060102", s[:8])
	default:
		return time.Time{}, fmt.Errorf("hl7v2: unrecognized timestamp format: %q", s)
	}
}

// GetSegment returns the first segment with the given name, or nil if not found.
func (m *Message) GetSegment(name string) *Segment {
	for i := range m.Segments {
		if m.Segments[i].Name == name {
			return &m.Segments[i]
		}
	}
	return nil
}

// GetSegments returns all segments with the given name.
func (m *Message) GetSegments(name string) []Segment {
	var result []Segment
	for _, seg := range m.Segments {
		if seg.Name == name {
			result = append(result, seg)
		}
	}
	return result
}

// field returns the 1-based field, or nil when absent. Fields[0] holds
// field 1 for every segment, MSH included.
func (s *Segment) field(index int) *Field {
	idx := index - 1
	if idx < 0 || idx >= len(s.Fields) {
		return nil
	}
	return &s.Fields[idx]
}

// GetField returns the value of a field by 1-based index.
func (s *Segment) GetField(index int) string {
	if f := s.field(index); f != nil {
		return f.Value
	}
	return ""
}

// GetComponent returns a component value by 1-based field and component
// indices, read from the field's first repetition.
func (s *Segment) GetComponent(fieldIdx, compIdx int) string {
	f := s.field(fieldIdx)
	if f == nil {
		return ""
	}
	ci := compIdx - 1
	if ci < 0 || ci >= len(f.Components) {
		return ""
	}
	return f.Components[ci]
}

// FirstComponent returns component compIdx, falling back to component
// fallbackIdx when it is empty.
func (s *Segment) FirstComponent(fieldIdx, compIdx, fallbackIdx int) string {
	if v := s.GetComponent(fieldIdx, compIdx); v != "" {
		return v
	}
	return s.GetComponent(fieldIdx, fallbackIdx)
}

// Repetitions returns each repetition of a field split into components.
func (s *Segment) Repetitions(index int) [][]string {
	f := s.field(index)
	if f == nil || f.Value == "" {
		return nil
	}
	return f.Repeats
}

// component returns the 1-based component of a split repetition.
func component(parts []string, i int) string {
	if i-1 < 0 || i-1 >= len(parts) {
		return ""
	}
	return parts[i-1]
}

// Trigger returns the trigger event component of MSH-9.
func (m *Message) Trigger() string {
	if msh := m.GetSegment("MSH"); msh != nil {
		return msh.GetComponent(9, 2)
	}
	return ""
}
