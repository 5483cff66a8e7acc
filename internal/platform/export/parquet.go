package export

import (
	"fmt"
	"io"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"

	"github.com/ehr/interchange/internal/platform/sheet"
)

// CellRecord is one cell in the long-format Parquet layout: every sheet
// flattens to (sheet, row, column) triples so that sheets with different
// headers share one schema.
type CellRecord struct {
	Sheet    string `parquet:"sheet,dict"`
	Row      int32  `parquet:"row"`
	Column   int32  `parquet:"column"`
	Header   string `parquet:"header,dict"`
	Value    string `parquet:"value"`
	Currency bool   `parquet:"currency"`
}

// Cells flattens sheets into cell records. Rows and columns are 1-based.
func Cells(sheets []sheet.Sheet) []CellRecord {
	var out []CellRecord
	for i := range sheets {
		s := &sheets[i]
		for r, row := range s.Rows {
			for c, h := range s.Headers {
				var v any
				if c < len(row) {
					v = row[c]
				}
				out = append(out, CellRecord{
					Sheet:    s.Name,
					Row:      int32(r + 1),
					Column:   int32(c + 1),
					Header:   h,
					Value:    cellText(s, c, v),
					Currency: s.IsCurrency(c + 1),
				})
			}
		}
	}
	return out
}

func writeParquet(w io.Writer, sheets []sheet.Sheet) error {
	pw := parquet.NewGenericWriter[CellRecord](w,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedDefault}),
		parquet.CreatedBy("interchange", "1.0", ""),
	)
	if _, err := pw.Write(Cells(sheets)); err != nil {
		pw.Close()
		return fmt.Errorf("export: write parquet rows: %w", err)
	}
	if err := pw.Close(); err != nil {
		return fmt.Errorf("export: close parquet writer: %w", err)
	}
	return nil
}
