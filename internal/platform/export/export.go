// Package export writes sheets to files and streams: JSON, YAML, NDJSON,
// CSV and Parquet.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/ehr/interchange/internal/platform/sheet"
)

// Format is an output encoding.
type Format string

const (
	JSON    Format = "json"
	YAML    Format = "yaml"
	NDJSON  Format = "ndjson"
	CSV     Format = "csv"
	Parquet Format = "parquet"
)

// Formats lists every output format.
var Formats = []Format{JSON, YAML, NDJSON, CSV, Parquet}

// ParseFormat resolves an output format name. "yml" is accepted for YAML.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f == "yml" {
		return YAML, nil
	}
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("export: unknown output format %q", s)
}

// Ext returns the file extension, without the dot.
func (f Format) Ext() string {
	return string(f)
}

// Streamable reports whether the format writes every sheet to one stream.
// CSV writes one file per sheet.
func (f Format) Streamable() bool {
	return f != CSV
}

// OutputBase names the combined output for a set of input files:
// "<base>_parsed" for a single input, "combined_parsed" otherwise.
func OutputBase(inputs []string) string {
	if len(inputs) == 1 {
		base := filepath.Base(inputs[0])
		return strings.TrimSuffix(base, filepath.Ext(base)) + "_parsed"
	}
	return "combined_parsed"
}

// Write encodes sheets to w. CSV writes only the first sheet; use
// WriteFiles for the full set.
func Write(w io.Writer, f Format, sheets []sheet.Sheet) error {
	switch f {
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(nonNil(sheets))
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(nonNil(sheets)); err != nil {
			return fmt.Errorf("export: encode yaml: %w", err)
		}
		return enc.Close()
	case NDJSON:
		return writeNDJSON(w, sheets)
	case CSV:
		if len(sheets) == 0 {
			return nil
		}
		return writeCSV(w, &sheets[0])
	case Parquet:
		return writeParquet(w, sheets)
	}
	return fmt.Errorf("export: unknown output format %q", f)
}

func nonNil(sheets []sheet.Sheet) []sheet.Sheet {
	if sheets == nil {
		return []sheet.Sheet{}
	}
	return sheets
}

// WriteFiles writes sheets under dir and returns the paths written. Stream
// formats produce "<base>.<ext>"; CSV produces "<base>_<sheet>.csv" per
// sheet.
func WriteFiles(dir, base string, f Format, sheets []sheet.Sheet) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("export: create output directory: %w", err)
	}

	if f.Streamable() {
		path := filepath.Join(dir, base+"."+f.Ext())
		if err := writeFile(path, func(w io.Writer) error { return Write(w, f, sheets) }); err != nil {
			return nil, err
		}
		return []string{path}, nil
	}

	var paths []string
	used := make(map[string]int)
	for i := range sheets {
		name := base + "_" + slug(sheets[i].Name)
		if n := used[name]; n > 0 {
			used[name]++
			name += "_" + strconv.Itoa(n+1)
		} else {
			used[name] = 1
		}
		path := filepath.Join(dir, name+".csv")
		s := &sheets[i]
		if err := writeFile(path, func(w io.Writer) error { return writeCSV(w, s) }); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: create %s: %w", path, err)
	}
	if err := write(file); err != nil {
		file.Close()
		return fmt.Errorf("export: write %s: %w", path, err)
	}
	return file.Close()
}

// slug lowercases a sheet name and replaces runs of anything but letters
// and digits with a single underscore.
func slug(name string) string {
	var b strings.Builder
	underscore := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			underscore = false
			continue
		}
		if !underscore && b.Len() > 0 {
			b.WriteByte('_')
			underscore = true
		}
	}
	out := strings.TrimSuffix(b.String(), "_")
	if out == "" {
		return "sheet"
	}
	return out
}

func writeCSV(w io.Writer, s *sheet.Sheet) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(s.Headers); err != nil {
		return err
	}
	record := make([]string, len(s.Headers))
	for _, row := range s.Rows {
		for i := range record {
			record[i] = ""
			if i < len(row) {
				record[i] = cellText(s, i, row[i])
			}
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// cellText renders a cell. Numbers in currency columns get two decimals.
func cellText(s *sheet.Sheet, col int, v any) string {
	if s.IsCurrency(col + 1) {
		switch n := v.(type) {
		case float64:
			return strconv.FormatFloat(n, 'f', 2, 64)
		case int:
			return strconv.FormatFloat(float64(n), 'f', 2, 64)
		case int64:
			return strconv.FormatFloat(float64(n), 'f', 2, 64)
		}
	}
	return sheet.Text(v)
}
