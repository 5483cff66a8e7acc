package fhirdoc

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/ehr/interchange/internal/platform/sheet"
)

const sampleBundle = `{
  "resourceType": "Bundle",
  "type": "collection",
  "entry": [
    {"resource": {"resourceType": "Patient", "id": "pat-1",
      "identifier": [
        {"type": {"coding": [{"code": "MR"}]}, "value": "MRN123"},
        {"type": {"coding": [{"code": "SS"}]}, "value": "123-45-6789"}
      ],
      "name": [{"family": "Doe", "given": ["John", "Q"]}],
      "birthDate": "1980-01-15", "gender": "male",
      "address": [{"line": ["123 Main St"], "city": "Springfield", "state": "IL", "postalCode": "62701"}],
      "telecom": [{"system": "phone", "value": "555-1234"}, {"system": "email", "value": "john@example.com"}],
      "maritalStatus": {"coding": [{"code": "M", "display": "Married"}]}}},
    {"resource": {"resourceType": "Observation", "id": "obs-1", "status": "final",
      "category": [{"coding": [{"code": "vital-signs", "display": "Vital Signs"}]}],
      "code": {"coding": [{"code": "8867-4", "display": "Heart rate"}]},
      "valueQuantity": {"value": 72, "unit": "beats/min"},
      "referenceRange": [{"low": {"value": 60}, "high": {"value": 100}}],
      "subject": {"reference": "Patient/pat-1"},
      "effectiveDateTime": "2024-01-15T10:30:00Z"}},
    {"resource": {"resourceType": "Claim", "id": "clm-1", "status": "active",
      "type": {"coding": [{"code": "professional"}]}, "use": "claim",
      "patient": {"display": "John Doe"}, "provider": {"reference": "Organization/org-1"},
      "priority": {"coding": [{"code": "normal"}]},
      "total": {"value": 250.5, "currency": "USD"},
      "diagnosis": [{"sequence": 1, "diagnosisCodeableConcept": {"coding": [{"code": "J06.9", "display": "Acute URI"}]}}],
      "item": [{"sequence": 1}, {"sequence": 2}]}},
    {"resource": {"resourceType": "Observation", "id": "obs-2", "status": "final",
      "code": {"text": "Smoking status"},
      "valueCodeableConcept": {"coding": [{"code": "266919005", "display": "Never smoked"}]}}},
    {"resource": {"resourceType": "Basic", "id": "b-1",
      "meta": {"versionId": "1"}, "text": {"status": "generated"},
      "created": "2024-02-01", "author": {"display": "Dr Who"},
      "language": "en", "implicitRules": "http://example.org/rules",
      "note": "free text", "subject": {"reference": "Patient/pat-1"}}}
  ]
}`

const samplePatientXML = `<?xml version="1.0" encoding="UTF-8"?>
<Patient xmlns="http://hl7.org/fhir">
  <id value="px-1"/>
  <name>
    <family value="Smith"/>
    <given value="Jane"/>
    <given value="A"/>
  </name>
  <gender value="female"/>
  <birthDate value="1975-06-30"/>
  <telecom>
    <system value="phone"/>
    <value value="555-9999"/>
  </telecom>
</Patient>`

const sampleBundleXML = `<Bundle xmlns="http://hl7.org/fhir">
  <type value="collection"/>
  <entry>
    <resource>
      <Condition>
        <id value="cond-1"/>
        <clinicalStatus><coding><code value="active"/></coding></clinicalStatus>
        <code><coding><code value="E11.9"/><display value="Type 2 diabetes"/></coding></code>
        <subject><reference value="Patient/px-1"/></subject>
        <onsetDateTime value="2019-03-01"/>
      </Condition>
    </resource>
  </entry>
  <entry>
    <resource>
      <Coverage>
        <id value="cov-1"/>
        <status value="active"/>
        <beneficiary><display value="Jane Smith"/></beneficiary>
        <payor><display value="Acme Health"/></payor>
        <class>
          <type><coding><code value="group"/></coding></type>
          <value value="GRP-9"/>
          <name value="Acme Employees"/>
        </class>
        <class>
          <type><coding><code value="plan"/></coding></type>
          <value value="GOLD"/>
        </class>
        <period><start value="2024-01-01"/><end value="2024-12-31"/></period>
      </Coverage>
    </resource>
  </entry>
</Bundle>`

// =========== JSON Tests ===========

func TestParse_Bundle(t *testing.T) {
	sheets, err := Parse(sampleBundle)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	var names []string
	for _, s := range sheets {
		names = append(names, s.Name)
	}
	want := []string{"FHIR Summary", "FHIR Patients", "FHIR Observations", "FHIR Claims", "FHIR Basic"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("expected sheets %v, got %v", want, names)
	}

	summary := sheets[0].Rows
	wantSummary := [][]any{{"Basic", 1}, {"Claim", 1}, {"Observation", 2}, {"Patient", 1}}
	if !reflect.DeepEqual(summary, wantSummary) {
		t.Errorf("expected summary %v, got %v", wantSummary, summary)
	}
}

func TestParse_Patient(t *testing.T) {
	sheets := mustParse(t, sampleBundle)
	got := sheets[1].Rows[0]
	want := []any{"pat-1", "Doe, John Q", "01/15/1980", "male",
		"123 Main St, Springfield, IL, 62701", "555-1234", "john@example.com",
		"M - Married", "MRN123", "123-45-6789"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("patient row\n got %v\nwant %v", got, want)
	}
}

func TestParse_Observations(t *testing.T) {
	sheets := mustParse(t, sampleBundle)
	obs := sheets[2]
	if len(obs.Rows) != 2 {
		t.Fatalf("expected 2 observations, got %d", len(obs.Rows))
	}

	want := []any{"obs-1", "final", "vital-signs - Vital Signs", "8867-4", "Heart rate",
		72.0, "beats/min", "60 - 100", "Patient/pat-1", "01/15/2024 10:30", ""}
	if !reflect.DeepEqual(obs.Rows[0], want) {
		t.Errorf("vital row\n got %v\nwant %v", obs.Rows[0], want)
	}

	coded := obs.Rows[1]
	if coded[4] != "Smoking status" || coded[5] != "266919005 - Never smoked" {
		t.Errorf("expected text display and coded value, got %v", coded)
	}
}

func TestParse_ClaimCurrency(t *testing.T) {
	claims := mustParse(t, sampleBundle)[3]
	want := []any{"clm-1", "active", "professional", "claim", "John Doe",
		"Organization/org-1", "normal", 250.5, "J06.9 - Acute URI", 2}
	if !reflect.DeepEqual(claims.Rows[0], want) {
		t.Errorf("claim row\n got %v\nwant %v", claims.Rows[0], want)
	}
	if !claims.IsCurrency(8) {
		t.Error("expected Total column flagged as currency")
	}
}

func TestParse_GenericKeyDataOrder(t *testing.T) {
	basic := mustParse(t, sampleBundle)[4]
	want := []any{"b-1", "Basic", "", "Patient/pat-1", "02/01/2024",
		"created: 2024-02-01; language: en; implicitRules: http://example.org/rules; note: free text"}
	if !reflect.DeepEqual(basic.Rows[0], want) {
		t.Errorf("generic row\n got %v\nwant %v", basic.Rows[0], want)
	}
}

func TestParse_Array(t *testing.T) {
	content := `[{"resourceType": "Organization", "id": "org-1", "name": "Acme", "active": true},
		{"not": "a resource"}]`
	sheets := mustParse(t, content)
	if len(sheets) != 2 || sheets[1].Name != "FHIR Organizations" {
		t.Fatalf("unexpected sheets %v", sheets)
	}
	row := sheets[1].Rows[0]
	if row[1] != "Acme" || row[7] != true {
		t.Errorf("unexpected organization row %v", row)
	}
}

func TestParse_SingleResource(t *testing.T) {
	content := `{"resourceType": "Immunization", "id": "imm-1", "status": "completed",
		"vaccineCode": {"coding": [{"code": "207", "display": "COVID-19"}]},
		"patient": {"reference": "Patient/1"}, "occurrenceDateTime": "2021-04-01",
		"doseQuantity": {"value": 0.3, "unit": "mL"}}`
	sheets := mustParse(t, content)
	row := sheets[1].Rows[0]
	want := []any{"imm-1", "completed", "207", "COVID-19", "Patient/1",
		"04/01/2021", "", "", "", "0.3 mL", ""}
	if !reflect.DeepEqual(row, want) {
		t.Errorf("immunization row\n got %v\nwant %v", row, want)
	}
}

// =========== XML Tests ===========

func TestParse_XMLResource(t *testing.T) {
	sheets := mustParse(t, samplePatientXML)
	if sheets[0].Rows[0][0] != "Patient" {
		t.Fatalf("expected root element to name the resource type, got %v", sheets[0].Rows)
	}
	row := sheets[1].Rows[0]
	if row[0] != "px-1" || row[1] != "Smith, Jane A" || row[2] != "06/30/1975" || row[5] != "555-9999" {
		t.Errorf("unexpected XML patient row %v", row)
	}
}

func TestParse_XMLBundle(t *testing.T) {
	sheets := mustParse(t, sampleBundleXML)
	if len(sheets) != 3 {
		t.Fatalf("expected summary, conditions and coverage, got %d sheets", len(sheets))
	}

	cond := sheets[1].Rows[0]
	want := []any{"cond-1", "active", "", "E11.9", "Type 2 diabetes", "Patient/px-1",
		"03/01/2019", "", "", ""}
	if !reflect.DeepEqual(cond, want) {
		t.Errorf("condition row\n got %v\nwant %v", cond, want)
	}

	cov := sheets[2].Rows[0]
	wantCov := []any{"cov-1", "active", "", "", "Jane Smith", "Acme Health",
		"GRP-9", "Acme Employees", "GOLD", "01/01/2024", "12/31/2024"}
	if !reflect.DeepEqual(cov, wantCov) {
		t.Errorf("coverage row\n got %v\nwant %v", cov, wantCov)
	}
}

// =========== Error Tests ===========

func TestParse_Errors(t *testing.T) {
	if _, err := Parse(`{"foo": "bar"}`); !errors.Is(err, ErrNoResources) {
		t.Errorf("expected ErrNoResources, got %v", err)
	}
	if _, err := Parse(`{"resourceType": "Bundle", "entry": []}`); !errors.Is(err, ErrNoResources) {
		t.Errorf("expected ErrNoResources for empty bundle, got %v", err)
	}
	if _, err := Parse(`{"resourceType": `); err == nil || !strings.HasPrefix(err.Error(), "fhir: ") {
		t.Errorf("expected fhir decode error, got %v", err)
	}
	if _, err := Parse("plain text"); err == nil {
		t.Error("expected error for non JSON/XML content")
	}
}

// =========== Value Helper Tests ===========

func TestFormatDate(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"2024-01-15", "01/15/2024"},
		{"2024-01-15T10:30:00Z", "01/15/2024 10:30"},
		{"2024-01-15T10:30:00.123-05:00", "01/15/2024 10:30"},
		{"2024-01", "2024-01"},
		{"1999", "1999"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := FormatDate(tt.in); got != tt.want {
			t.Errorf("FormatDate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestConcept(t *testing.T) {
	obj := func(js string) any {
		v, err := decodeJSON([]byte(js))
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		return v
	}
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"code and display", obj(`{"coding": [{"code": "A", "display": "Alpha"}]}`), "A - Alpha"},
		{"code only", obj(`{"coding": [{"code": "A"}]}`), "A"},
		{"display from text", obj(`{"coding": [{"code": "A"}], "text": "Alpha"}`), "A - Alpha"},
		{"text only", obj(`{"text": "Free"}`), "Free"},
		{"bare string", "plain", "plain"},
		{"absent", nil, ""},
	}
	for _, tt := range tests {
		if got := concept(tt.in); got != tt.want {
			t.Errorf("%s: concept = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestDecodeJSON_KeepsKeyOrder(t *testing.T) {
	v, err := decodeJSON([]byte(`{"z": 1, "a": 2, "m": {"y": 1, "b": 2}}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	o := v.(*Object)
	if !reflect.DeepEqual(o.Keys(), []string{"z", "a", "m"}) {
		t.Errorf("unexpected key order %v", o.Keys())
	}
	if !reflect.DeepEqual(object(o.Get("m")).Keys(), []string{"y", "b"}) {
		t.Errorf("unexpected nested key order %v", object(o.Get("m")).Keys())
	}
	if _, err := decodeJSON([]byte(`{} {}`)); err == nil {
		t.Error("expected error for trailing data")
	}
}

func mustParse(t *testing.T, content string) []sheet.Sheet {
	t.Helper()
	sheets, err := Parse(content)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return sheets
}
