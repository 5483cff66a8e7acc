// Package convert routes interchange content to the decoder for its format
// and normalizes decoder failures into FormatError and EmptyResultError.
package convert

import (
	"bytes"
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/ehr/interchange/internal/platform/ccda"
	"github.com/ehr/interchange/internal/platform/detect"
	"github.com/ehr/interchange/internal/platform/fhirdoc"
	"github.com/ehr/interchange/internal/platform/hl7v2"
	"github.com/ehr/interchange/internal/platform/ncpdp"
	"github.com/ehr/interchange/internal/platform/sheet"
	"github.com/ehr/interchange/internal/platform/tabular"
	"github.com/ehr/interchange/internal/platform/x12"
)

// FormatError is a fatal, per-document failure: the content matched no
// signature, or its envelope could not be framed.
type FormatError struct {
	Format detect.Format
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Format == detect.None {
		return e.Reason
	}
	return fmt.Sprintf("invalid %s content: %s", e.Format, e.Reason)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// EmptyResultError reports content that framed but produced no rows.
type EmptyResultError struct {
	Format detect.Format
}

func (e *EmptyResultError) Error() string {
	return fmt.Sprintf("no data found for format %s", e.Format)
}

// FormatOf returns the format named by a *FormatError or
// *EmptyResultError, or detect.None.
func FormatOf(err error) detect.Format {
	var fe *FormatError
	if errors.As(err, &fe) {
		return fe.Format
	}
	var ee *EmptyResultError
	if errors.As(err, &ee) {
		return ee.Format
	}
	return detect.None
}

// ErrUnrecognized is wrapped by the FormatError returned when detection
// finds no match.
var ErrUnrecognized = errors.New("content does not match any supported format")

// Parser decodes content of one format into sheets.
type Parser func(content string) ([]sheet.Sheet, error)

var parsers = map[detect.Format]Parser{
	detect.X12:   x12.Parse,
	detect.HL7v2: hl7v2.Parse,
	detect.FHIR:  fhirdoc.Parse,
	detect.CDA:   ccda.Parse,
	detect.NCPDP: ncpdp.Parse,
	detect.CSV:   tabular.Parse,
}

// Result is a successful conversion.
type Result struct {
	Format detect.Format `json:"format"`
	Sheets []sheet.Sheet `json:"sheets"`
}

// Rows returns the total number of data rows across all sheets.
func (r *Result) Rows() int {
	n := 0
	for i := range r.Sheets {
		n += r.Sheets[i].Len()
	}
	return n
}

// Parse converts content. When known is detect.None the format is
// detected first. The error is a *FormatError or *EmptyResultError.
func Parse(content string, known detect.Format) (*Result, error) {
	format := known
	if format == detect.None {
		format = detect.Detect(content)
		if format == detect.None {
			return nil, &FormatError{Reason: ErrUnrecognized.Error(), Err: ErrUnrecognized}
		}
	}

	parse, ok := parsers[format]
	if !ok {
		return nil, &FormatError{Format: format, Reason: "unsupported format"}
	}

	sheets, err := parse(content)
	if err != nil {
		if errors.Is(err, fhirdoc.ErrNoResources) {
			return nil, &EmptyResultError{Format: format}
		}
		return nil, &FormatError{Format: format, Reason: err.Error(), Err: err}
	}
	sheets = nonEmpty(sheets)
	if len(sheets) == 0 {
		return nil, &EmptyResultError{Format: format}
	}
	return &Result{Format: format, Sheets: sheets}, nil
}

// nonEmpty returns the sheets with rows in a new slice, leaving the decoder's
// slice untouched.
func nonEmpty(sheets []sheet.Sheet) []sheet.Sheet {
	out := make([]sheet.Sheet, 0, len(sheets))
	for _, s := range sheets {
		if !s.Empty() {
			out = append(out, s)
		}
	}
	return out
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Decode turns uploaded bytes into text: a UTF-8 byte order mark is
// dropped, valid UTF-8 is used as is and anything else is read as
// ISO-8859-1.
func Decode(data []byte) string {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return string(data)
	}
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return string(data)
	}
	return string(out)
}

// ParseBytes decodes data and converts it.
func ParseBytes(data []byte, known detect.Format) (*Result, error) {
	return Parse(Decode(data), known)
}
