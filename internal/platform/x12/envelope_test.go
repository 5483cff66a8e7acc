package x12

import (
	"errors"
	"strings"
	"testing"
)

// =========== Framing Tests ===========

func TestFrame_Delimiters(t *testing.T) {
	env, err := Frame(sample835)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if env.ElementSep != "*" {
		t.Errorf("expected element separator '*', got %q", env.ElementSep)
	}
	if env.SubElementSep != ":" {
		t.Errorf("expected sub-element separator ':', got %q", env.SubElementSep)
	}
	if env.SegmentTerm != "~" {
		t.Errorf("expected segment terminator '~', got %q", env.SegmentTerm)
	}
	if len(env.Segments) != 41 {
		t.Errorf("expected 41 segments, got %d", len(env.Segments))
	}
}

func TestFrame_AlternateDelimiters(t *testing.T) {
	content := strings.NewReplacer("*", "|", ":", ">", "~", "!").Replace(sample835)
	env, err := Frame(content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if env.ElementSep != "|" || env.SubElementSep != ">" || env.SegmentTerm != "!" {
		t.Errorf("unexpected delimiters %q %q %q", env.ElementSep, env.SubElementSep, env.SegmentTerm)
	}
	remits := DecodeRemittances(env)
	if len(remits) != 1 || len(remits[0].Claims) != 2 {
		t.Fatalf("expected 1 remittance with 2 claims, got %+v", remits)
	}
	if got := remits[0].Claims[0].ServiceLines[0].ProcedureCode; got != "99213" {
		t.Errorf("expected procedure 99213, got %q", got)
	}
}

func TestFrame_StripsBOMAndNewlines(t *testing.T) {
	content := "\ufeff  " + strings.ReplaceAll(sample835, "~", "~\r\n")
	env, err := Frame(content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(env.Segments) != 41 {
		t.Errorf("expected 41 segments, got %d", len(env.Segments))
	}
	for _, seg := range env.Segments {
		if strings.ContainsAny(seg.Raw, "\r\n") {
			t.Errorf("segment %q still contains line breaks", seg.Raw)
		}
	}
}

func TestFrame_LowercaseISA(t *testing.T) {
	if _, err := Frame("isa" + sample835[3:]); err != nil {
		t.Errorf("expected lowercase ISA to frame, got %v", err)
	}
}

func TestFrame_MissingISA(t *testing.T) {
	_, err := Frame("GS*HP*SENDER~ST*835*0001~SE*2*0001~")
	if !errors.Is(err, ErrMissingISA) {
		t.Errorf("expected ErrMissingISA, got %v", err)
	}
}

func TestFrame_TooShort(t *testing.T) {
	_, err := Frame("ISA*00*short~")
	if !errors.Is(err, ErrTooShort) {
		t.Errorf("expected ErrTooShort, got %v", err)
	}
}

func TestEnvelope_TransactionType(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"835", sample835, "835"},
		{"837", sample837, "837"},
		{"271", sample271, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := Frame(tt.content)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := env.TransactionType(); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestEnvelope_Transactions(t *testing.T) {
	env, err := Frame(sample835)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	txns := env.Transactions()
	if len(txns) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(txns))
	}
	txn := txns[0]
	if txn.Code != "835" {
		t.Errorf("expected code 835, got %q", txn.Code)
	}
	if txn.Segments[0].ID() != "ST" || txn.Segments[len(txn.Segments)-1].ID() != "SE" {
		t.Error("expected transaction bounded by ST and SE")
	}
	// 41 segments minus ISA, GS, GE, IEA
	if len(txn.Segments) != 37 {
		t.Errorf("expected 37 segments in transaction, got %d", len(txn.Segments))
	}
}

func TestEnvelope_TransactionsDropUnbalanced(t *testing.T) {
	content := isaHeader +
		"SE*1*0000~" +
		"ST*999*0001~AK1*HC*1~SE*3*0001~" +
		"ST*999*0002~AK1*HC*2~SE*3*0002~" +
		"ST*999*0003~AK1*HC*3~" +
		"IEA*1*000000001~"
	env, err := Frame(content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	txns := env.Transactions()
	if len(txns) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(txns))
	}
	seen := map[string]bool{}
	for _, txn := range txns {
		for _, seg := range txn.Segments {
			if seen[seg.Raw] {
				t.Errorf("segment %q appears in two transactions", seg.Raw)
			}
			seen[seg.Raw] = true
		}
	}
}

func TestSegment_Element(t *testing.T) {
	seg := Segment{Elements: []string{"CLP", "CLM001", "1"}}
	if seg.Element(1) != "CLM001" {
		t.Errorf("expected CLM001, got %q", seg.Element(1))
	}
	if seg.Element(9) != "" {
		t.Errorf("expected empty for out of range, got %q", seg.Element(9))
	}
	if seg.Element(-1) != "" {
		t.Errorf("expected empty for negative index, got %q", seg.Element(-1))
	}
}

// =========== Value Conversion Tests ===========

func TestFormatDate(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"20230115", "01/15/2023"},
		{"230115", "01/15/2023"},
		{"990115", "01/15/1999"},
		{"491231", "12/31/2049"},
		{"500101", "01/01/1950"},
		{" 20230115 ", "01/15/2023"},
		{"2023", "2023"},
		{"20230115-20230120", "20230115-20230120"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := FormatDate(tt.in); got != tt.want {
			t.Errorf("FormatDate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatDate_Pure(t *testing.T) {
	first := FormatDate("20230115")
	second := FormatDate("20230115")
	if first != second {
		t.Errorf("expected identical results, got %q and %q", first, second)
	}
}

func TestSafeFloat(t *testing.T) {
	if got := SafeFloat("1500.00", 0); got != 1500 {
		t.Errorf("expected 1500, got %v", got)
	}
	if got := SafeFloat("", 7); got != 7 {
		t.Errorf("expected default 7, got %v", got)
	}
	if got := SafeFloat("abc", 0); got != 0 {
		t.Errorf("expected default 0, got %v", got)
	}
}

func TestSafeInt(t *testing.T) {
	if got := SafeInt("42", 0); got != 42 {
		t.Errorf("expected 42, got %d", got)
	}
	if got := SafeInt("4.2", -1); got != -1 {
		t.Errorf("expected default -1, got %d", got)
	}
}
