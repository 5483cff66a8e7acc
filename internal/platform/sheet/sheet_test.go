package sheet

import (
	"strings"
	"testing"
)

func TestNew_TruncatesName(t *testing.T) {
	s := New(strings.Repeat("X", 40), []string{"A"})
	if len(s.Name) != MaxNameLength {
		t.Errorf("expected name length %d, got %d", MaxNameLength, len(s.Name))
	}
	short := New("835 Claims", []string{"A"})
	if short.Name != "835 Claims" {
		t.Errorf("expected name unchanged, got %q", short.Name)
	}
}

func TestAppend_PadsShortRows(t *testing.T) {
	s := New("Data", []string{"a", "b", "c", "d"})
	s.Append("1", "2")
	if len(s.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(s.Rows))
	}
	row := s.Rows[0]
	if len(row) != 4 {
		t.Fatalf("expected row length 4, got %d", len(row))
	}
	if row[2] != "" || row[3] != "" {
		t.Errorf("expected trailing empty strings, got %v", row)
	}
}

func TestAppend_DropsExtraValues(t *testing.T) {
	s := New("Data", []string{"a"})
	s.Append("1", "2", "3")
	if len(s.Rows[0]) != 1 {
		t.Errorf("expected row length 1, got %d", len(s.Rows[0]))
	}
}

func TestAppend_NilBecomesEmpty(t *testing.T) {
	s := New("Data", []string{"a", "b"})
	s.Append(nil, 1.5)
	if s.Rows[0][0] != "" {
		t.Errorf("expected nil to pad as empty string, got %v", s.Rows[0][0])
	}
	if s.Rows[0][1] != 1.5 {
		t.Errorf("expected 1.5, got %v", s.Rows[0][1])
	}
}

func TestIsCurrency(t *testing.T) {
	s := New("Pay", []string{"a", "b", "c"}, 2)
	if !s.IsCurrency(2) {
		t.Error("expected column 2 to be currency")
	}
	if s.IsCurrency(1) {
		t.Error("expected column 1 not to be currency")
	}
}

func TestText(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"abc", "abc"},
		{1500.0, "1500"},
		{25.5, "25.5"},
		{3, "3"},
		{true, "true"},
	}
	for _, tt := range tests {
		if got := Text(tt.in); got != tt.want {
			t.Errorf("Text(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCollect_SkipsEmpty(t *testing.T) {
	a := New("A", []string{"x"})
	b := New("B", []string{"x"})
	b.Append("1")
	out := Collect(a, nil, b)
	if len(out) != 1 || out[0].Name != "B" {
		t.Errorf("expected only sheet B, got %+v", out)
	}
}
