package export

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/parquet-go/parquet-go"
	"gopkg.in/yaml.v3"

	"github.com/ehr/interchange/internal/platform/sheet"
)

func sampleSheets() []sheet.Sheet {
	claims := sheet.New("835 Claims", []string{"Claim ID", "Charge", "Paid"}, 2, 3)
	claims.Append("CLM001", 150.5, int64(100))
	claims.Append("CLM002", "n/a", 0.0)

	info := sheet.New("Summary / Totals", []string{"Field", "Value"})
	info.Append("Payer", "ACME")

	return []sheet.Sheet{*claims, *info}
}

// =========== Format names ===========

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"json", JSON, false},
		{" YAML ", YAML, false},
		{"yml", YAML, false},
		{"ndjson", NDJSON, false},
		{"CSV", CSV, false},
		{"parquet", Parquet, false},
		{"xlsx", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestOutputBase(t *testing.T) {
	tests := []struct {
		inputs []string
		want   string
	}{
		{[]string{"/data/remit.835"}, "remit_parsed"},
		{[]string{"claims.x12.txt"}, "claims.x12_parsed"},
		{[]string{"noext"}, "noext_parsed"},
		{[]string{"a.txt", "b.txt"}, "combined_parsed"},
		{nil, "combined_parsed"},
	}
	for _, tt := range tests {
		if got := OutputBase(tt.inputs); got != tt.want {
			t.Errorf("OutputBase(%v) = %q, want %q", tt.inputs, got, tt.want)
		}
	}
}

func TestSlug(t *testing.T) {
	tests := map[string]string{
		"835 Claims":       "835_claims",
		"Summary / Totals": "summary_totals",
		"  --  ":           "sheet",
		"CDA Vital Signs!": "cda_vital_signs",
	}
	for in, want := range tests {
		if got := slug(in); got != want {
			t.Errorf("slug(%q) = %q, want %q", in, got, want)
		}
	}
}

// =========== Stream formats ===========

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, JSON, sampleSheets()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	var got []sheet.Sheet
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got) != 2 || got[0].Name != "835 Claims" || len(got[0].Rows) != 2 {
		t.Fatalf("unexpected sheets: %+v", got)
	}
	if len(got[0].CurrencyColumns) != 2 {
		t.Errorf("currency columns = %v, want [2 3]", got[0].CurrencyColumns)
	}
}

func TestWriteJSONNoSheets(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, JSON, nil); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != "[]" {
		t.Errorf("output = %q, want []", got)
	}
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, YAML, sampleSheets()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	var got []map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d sheets, want 2", len(got))
	}
	if got[1]["name"] != "Summary / Totals" {
		t.Errorf("name = %v", got[1]["name"])
	}
	if !strings.Contains(buf.String(), "currency_columns:") {
		t.Error("expected currency_columns in output")
	}
}

func TestWriteNDJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, NDJSON, sampleSheets()); err != nil {
		t.Fatalf("Write: %v", err)
	}

	var records []RowRecord
	scanner := bufio.NewScanner(&buf)
	for scanner.Scan() {
		var r RowRecord
		if err := json.Unmarshal(scanner.Bytes(), &r); err != nil {
			t.Fatalf("line %q: %v", scanner.Text(), err)
		}
		records = append(records, r)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
	if records[0].Sheet != "835 Claims" || records[0].Row != 1 {
		t.Errorf("first record = %+v", records[0])
	}
	if records[0].Data["Claim ID"] != "CLM001" {
		t.Errorf("Claim ID = %v", records[0].Data["Claim ID"])
	}
	if records[2].Sheet != "Summary / Totals" || records[2].Data["Value"] != "ACME" {
		t.Errorf("last record = %+v", records[2])
	}
}

func TestNDJSONWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewNDJSONWriter(&buf)
	if err := w.WriteRecord(map[string]int{"a": 1}); err != nil {
		t.Fatalf("WriteRecord: %v", err)
	}
	if buf.Len() != 0 {
		t.Error("expected output to stay buffered before Flush")
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if got := buf.String(); got != "{\"a\":1}\n" {
		t.Errorf("output = %q", got)
	}
}

func TestWriteCSVCurrency(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, CSV, sampleSheets()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	want := [][]string{
		{"Claim ID", "Charge", "Paid"},
		{"CLM001", "150.50", "100.00"},
		{"CLM002", "n/a", "0.00"},
	}
	if len(records) != len(want) {
		t.Fatalf("got %d records, want %d", len(records), len(want))
	}
	for i := range want {
		if strings.Join(records[i], ",") != strings.Join(want[i], ",") {
			t.Errorf("record %d = %v, want %v", i, records[i], want[i])
		}
	}
}

func TestWriteUnknownFormat(t *testing.T) {
	if err := Write(&bytes.Buffer{}, Format("xlsx"), nil); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

// =========== Files ===========

func TestWriteFilesCSVPerSheet(t *testing.T) {
	dir := t.TempDir()
	paths, err := WriteFiles(dir, "remit_parsed", CSV, sampleSheets())
	if err != nil {
		t.Fatalf("WriteFiles: %v", err)
	}
	want := []string{
		filepath.Join(dir, "remit_parsed_835_claims.csv"),
		filepath.Join(dir, "remit_parsed_summary_totals.csv"),
	}
	if len(paths) != len(want) {
		t.Fatalf("paths = %v, want %v", paths, want)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("paths[%d] = %q, want %q", i, paths[i], want[i])
		}
	}

	data, err := os.ReadFile(paths[1])
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got := string(data); got != "Field,Value\nPayer,ACME\n" {
		t.Errorf("summary csv = %q", got)
	}
}

func TestWriteFilesCSVDuplicateNames(t *testing.T) {
	a := sheet.New("Claims", []string{"A"})
	a.Append("1")
	b := sheet.New("claims", []string{"B"})
	b.Append("2")

	paths, err := WriteFiles(t.TempDir(), "out", CSV, []sheet.Sheet{*a, *b})
	if err != nil {
		t.Fatalf("WriteFiles: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("paths = %v", paths)
	}
	if filepath.Base(paths[0]) != "out_claims.csv" || filepath.Base(paths[1]) != "out_claims_2.csv" {
		t.Errorf("paths = %v", paths)
	}
}

func TestWriteFilesStream(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	paths, err := WriteFiles(dir, "combined_parsed", JSON, sampleSheets())
	if err != nil {
		t.Fatalf("WriteFiles: %v", err)
	}
	if len(paths) != 1 || paths[0] != filepath.Join(dir, "combined_parsed.json") {
		t.Fatalf("paths = %v", paths)
	}
	if _, err := os.Stat(paths[0]); err != nil {
		t.Errorf("stat: %v", err)
	}
}

// =========== Parquet ===========

func TestWriteFilesParquet(t *testing.T) {
	dir := t.TempDir()
	paths, err := WriteFiles(dir, "remit_parsed", Parquet, sampleSheets())
	if err != nil {
		t.Fatalf("WriteFiles: %v", err)
	}

	records, err := parquet.ReadFile[CellRecord](paths[0])
	if err != nil {
		t.Fatalf("read parquet: %v", err)
	}
	// 2 rows x 3 columns + 1 row x 2 columns
	if len(records) != 8 {
		t.Fatalf("got %d cells, want 8", len(records))
	}

	first := records[1]
	if first.Sheet != "835 Claims" || first.Row != 1 || first.Column != 2 || first.Header != "Charge" {
		t.Errorf("cell = %+v", first)
	}
	if first.Value != "150.50" || !first.Currency {
		t.Errorf("charge cell = %+v, want currency 150.50", first)
	}

	last := records[7]
	if last.Sheet != "Summary / Totals" || last.Value != "ACME" || last.Currency {
		t.Errorf("last cell = %+v", last)
	}
}

func TestCellsPadsShortRows(t *testing.T) {
	s := sheet.Sheet{Name: "Raw", Headers: []string{"A", "B"}, Rows: [][]any{{"x"}}}
	cells := Cells([]sheet.Sheet{s})
	if len(cells) != 2 {
		t.Fatalf("got %d cells, want 2", len(cells))
	}
	if cells[1].Header != "B" || cells[1].Value != "" {
		t.Errorf("padded cell = %+v", cells[1])
	}
}
