package tabular

import (
	"errors"
	"reflect"
	"testing"

	"github.com/ehr/interchange/internal/platform/sheet"
)

const sampleJSON = `[
  {"id": 1, "name": "x"},
  {"id": 2, "extra": true, "nested": {"k": "v"}, "tags": ["a", "b"]}
]`

const sampleXML = `<?xml version="1.0"?>
<patients xmlns="urn:example">
  <patient id="1"><name>Jo</name><age>40</age></patient>
  <patient id="2"><name>Al</name><phone>5</phone><phone>6</phone></patient>
</patients>`

func mustParse(t *testing.T, content string) sheet.Sheet {
	t.Helper()
	sheets, err := Parse(content)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(sheets) != 1 {
		t.Fatalf("expected 1 sheet, got %d", len(sheets))
	}
	if sheets[0].Name != SheetName {
		t.Errorf("expected sheet %q, got %q", SheetName, sheets[0].Name)
	}
	return sheets[0]
}

func assertRows(t *testing.T, s sheet.Sheet, headers []string, rows [][]any) {
	t.Helper()
	if !reflect.DeepEqual(s.Headers, headers) {
		t.Errorf("headers %q, want %q", s.Headers, headers)
	}
	if !reflect.DeepEqual(s.Rows, rows) {
		t.Errorf("rows %#v, want %#v", s.Rows, rows)
	}
}

// =========== Delimited Text Tests ===========

func TestParse_ShortRowIsPadded(t *testing.T) {
	s := mustParse(t, "a,b,c,d\n1,2")
	assertRows(t, s, []string{"a", "b", "c", "d"}, [][]any{{"1", "2", "", ""}})
}

func TestParse_LongRowIsTruncated(t *testing.T) {
	s := mustParse(t, "a,b\n1,2,3")
	assertRows(t, s, []string{"a", "b"}, [][]any{{"1", "2"}})
}

func TestParse_SniffedDelimiters(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"tab", "name\tage\nJo\t40"},
		{"pipe", "name|age\nJo|40"},
		{"comma with blank lines", "name,age\n\nJo,40\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := mustParse(t, tt.content)
			assertRows(t, s, []string{"name", "age"}, [][]any{{"Jo", "40"}})
		})
	}
}

func TestParse_QuotedFields(t *testing.T) {
	s := mustParse(t, "name,note\n\"Doe, J\",\"said \"\"hi\"\"\"")
	assertRows(t, s, []string{"name", "note"}, [][]any{{"Doe, J", `said "hi"`}})
}

func TestParse_BlankHeaderNamedByPosition(t *testing.T) {
	s := mustParse(t, "a,\n1,2")
	assertRows(t, s, []string{"a", "Column 2"}, [][]any{{"1", "2"}})
}

func TestParse_HeaderOnly(t *testing.T) {
	sheets, err := Parse("a,b,c\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(sheets) != 0 {
		t.Errorf("expected no sheets for a header without rows, got %d", len(sheets))
	}
}

func TestSniff(t *testing.T) {
	tests := []struct {
		text string
		want rune
	}{
		{"a,b\n1,2", ','},
		{"a\tb\n1\t2", '\t'},
		{"a|b\n1|2", '|'},
		{"a,b\tc\n1\t2", '\t'},
		{"no delimiters here", ','},
	}
	for _, tt := range tests {
		if got := Sniff(tt.text); got != tt.want {
			t.Errorf("Sniff(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

// =========== JSON Tests ===========

func TestParse_JSONArrayUnionOfKeys(t *testing.T) {
	s := mustParse(t, sampleJSON)
	assertRows(t, s,
		[]string{"id", "name", "extra", "nested.k", "tags"},
		[][]any{
			{int64(1), "x", "", "", ""},
			{int64(2), "", true, "v", `["a","b"]`},
		})
}

func TestParse_JSONWrapperObject(t *testing.T) {
	s := mustParse(t, `{"data": [{"a": 1.5}, {"a": 2}]}`)
	assertRows(t, s, []string{"a"}, [][]any{{1.5}, {int64(2)}})
}

func TestParse_JSONSingleObject(t *testing.T) {
	s := mustParse(t, `{"a": "x", "b": null, "c": {"d": false}}`)
	assertRows(t, s, []string{"a", "b", "c.d"}, [][]any{{"x", "", false}})
}

func TestParse_JSONScalarArray(t *testing.T) {
	s := mustParse(t, `[1, "two"]`)
	assertRows(t, s, []string{"value"}, [][]any{{int64(1)}, {"two"}})
}

func TestParse_JSONEmptyArray(t *testing.T) {
	sheets, err := Parse("[]")
	if err != nil || len(sheets) != 0 {
		t.Errorf("expected no sheets and no error, got %d, %v", len(sheets), err)
	}
}

// =========== XML Tests ===========

func TestParse_XMLRepeatedRecords(t *testing.T) {
	s := mustParse(t, sampleXML)
	assertRows(t, s,
		[]string{"@id", "name", "age", "phone"},
		[][]any{
			{"1", "Jo", "40", ""},
			{"2", "Al", "", "5; 6"},
		})
}

func TestParse_XMLNestedContainer(t *testing.T) {
	s := mustParse(t, `<export><meta><v>1</v></meta><items><item>a</item><item>b</item></items></export>`)
	assertRows(t, s, []string{"value"}, [][]any{{"a"}, {"b"}})
}

func TestParse_XMLSingleRecord(t *testing.T) {
	s := mustParse(t, `<doc><a>1</a><b><c>2</c></b></doc>`)
	assertRows(t, s, []string{"a", "b.c"}, [][]any{{"1", "2"}})
}

func TestParse_XMLMalformed(t *testing.T) {
	_, err := Parse(`<a><b></a>`)
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("expected ErrMalformed, got %v", err)
	}
}

// =========== Edge Case Tests ===========

func TestParse_Empty(t *testing.T) {
	for _, content := range []string{"", "   \n", "\ufeff"} {
		sheets, err := Parse(content)
		if err != nil || sheets != nil {
			t.Errorf("Parse(%q) = %v, %v; want nil, nil", content, sheets, err)
		}
	}
}

func TestParse_InvalidJSONReadAsText(t *testing.T) {
	s := mustParse(t, "{a,b\n1,2")
	assertRows(t, s, []string{"{a", "b"}, [][]any{{"1", "2"}})
}
