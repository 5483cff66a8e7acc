package export

import (
	"bufio"
	"encoding/json"
	"io"

	"github.com/ehr/interchange/internal/platform/sheet"
)

// NDJSONWriter writes one JSON object per line.
type NDJSONWriter struct {
	w *bufio.Writer
}

// NewNDJSONWriter creates a new NDJSONWriter that writes to w.
func NewNDJSONWriter(w io.Writer) *NDJSONWriter {
	return &NDJSONWriter{
		w: bufio.NewWriter(w),
	}
}

// WriteRecord serialises v as a single JSON line followed by a newline.
func (n *NDJSONWriter) WriteRecord(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := n.w.Write(data); err != nil {
		return err
	}
	return n.w.WriteByte('\n')
}

// Flush flushes any buffered data to the underlying writer.
func (n *NDJSONWriter) Flush() error {
	return n.w.Flush()
}

// RowRecord is one sheet row as written to NDJSON. Data maps each header to
// its cell.
type RowRecord struct {
	Sheet string         `json:"sheet"`
	Row   int            `json:"row"`
	Data  map[string]any `json:"data"`
}

func writeNDJSON(w io.Writer, sheets []sheet.Sheet) error {
	nw := NewNDJSONWriter(w)
	for _, s := range sheets {
		for i, row := range s.Rows {
			data := make(map[string]any, len(s.Headers))
			for j, h := range s.Headers {
				if j < len(row) {
					data[h] = row[j]
				}
			}
			if err := nw.WriteRecord(RowRecord{Sheet: s.Name, Row: i + 1, Data: data}); err != nil {
				return err
			}
		}
	}
	return nw.Flush()
}
