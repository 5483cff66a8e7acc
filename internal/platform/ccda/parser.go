// Package ccda flattens CDA R2 / C-CDA clinical documents into sheets:
// document metadata, patients, authors, a section index and one sheet per
// section that carries structured entries.
package ccda

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ehr/interchange/internal/platform/sheet"
)

// ErrMalformed is returned when the document is not well-formed XML, even
// after namespace declarations are stripped.
var ErrMalformed = errors.New("ccda: malformed XML")

const (
	maxNarrative = 500
	maxEntryText = 200
)

var xmlnsDecl = regexp.MustCompile(`xmlns[^"]*="[^"]*"`)

// Parse decodes a CDA document into sheets. A document that parses but
// carries nothing recognizable yields no sheets and no error.
func Parse(content string) ([]sheet.Sheet, error) {
	doc, err := Decode([]byte(content))
	if err != nil {
		return nil, err
	}
	return Sheets(doc), nil
}

// Decode unmarshals a CDA document. When the first attempt fails the
// namespace declarations are stripped and decoding is retried once.
func Decode(data []byte) (*ClinicalDocument, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: document is empty", ErrMalformed)
	}

	var doc ClinicalDocument
	err := unmarshal(data, &doc)
	if err == nil {
		return &doc, nil
	}

	doc = ClinicalDocument{}
	if retryErr := unmarshal(xmlnsDecl.ReplaceAll(data, nil), &doc); retryErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return &doc, nil
}

func unmarshal(data []byte, doc *ClinicalDocument) error {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charsetReader
	return dec.Decode(doc)
}

// Sheets renders a decoded document. Sheets without rows are omitted.
func Sheets(doc *ClinicalDocument) []sheet.Sheet {
	out := sheet.Collect(documentInfo(doc), patients(doc), authors(doc), sections(doc))
	return append(out, entrySheets(doc)...)
}

func documentInfo(doc *ClinicalDocument) *sheet.Sheet {
	s := sheet.New("CDA Document Info", []string{"Field", "Value"})
	if doc.Title != nil {
		s.Append("Document Title", doc.Title.String())
	}
	if doc.Code != nil {
		s.Append("Document Type", doc.Code.joined())
	}
	if doc.EffectiveTime != nil {
		s.Append("Document Date", formatDate(doc.EffectiveTime.Value))
	}
	if doc.ConfidentialityCode != nil {
		s.Append("Confidentiality", doc.ConfidentialityCode.label())
	}
	if doc.LanguageCode != nil {
		s.Append("Language", doc.LanguageCode.Code)
	}
	if doc.ID != nil {
		id := doc.ID.Extension
		if id == "" {
			id = doc.ID.Root
		}
		s.Append("Document ID", id)
	}
	if c := doc.Custodian; c != nil && c.AssignedCustodian != nil {
		if org := c.AssignedCustodian.RepresentedCustodianOrganization; org != nil && org.Name != nil {
			s.Append("Custodian", org.Name.String())
		}
	}
	return s
}

func patients(doc *ClinicalDocument) *sheet.Sheet {
	s := sheet.New("CDA Patient", []string{
		"Patient Name", "Date of Birth", "Gender",
		"Address", "Phone/Email", "MRN", "SSN", "Race", "Ethnicity",
	})
	for _, rt := range doc.RecordTargets {
		role := rt.PatientRole
		if role == nil {
			continue
		}

		var mrn, ssn string
		for _, id := range role.IDs {
			switch {
			case strings.Contains(id.Root, OIDSSN):
				ssn = id.Extension
			case id.Extension != "":
				mrn = id.Extension
			}
		}

		var name, dob, gender, race, ethnicity string
		if p := role.Patient; p != nil {
			name = p.Name.String()
			if p.BirthTime != nil {
				dob = formatDate(p.BirthTime.Value)
			}
			gender = p.AdministrativeGenderCode.label()
			race = p.RaceCode.label()
			ethnicity = p.EthnicGroupCode.label()
		}

		s.Append(name, dob, gender, role.Addr.String(), telecoms(role.Telecoms),
			mrn, ssn, race, ethnicity)
	}
	return s
}

// telecoms renders each contact as "value (use)" with the URL scheme
// removed.
func telecoms(ts []Telecom) string {
	var out []string
	for _, t := range ts {
		if t.Value == "" {
			continue
		}
		v := strings.NewReplacer("tel:", "", "mailto:", "").Replace(t.Value)
		if t.Use != "" {
			v += " (" + t.Use + ")"
		}
		out = append(out, v)
	}
	return strings.Join(out, "; ")
}

func authors(doc *ClinicalDocument) *sheet.Sheet {
	s := sheet.New("CDA Authors", []string{"Author Name", "Author Time", "Organization"})
	for _, a := range doc.Authors {
		var when, name, org string
		if a.Time != nil {
			when = formatDate(a.Time.Value)
		}
		if aa := a.AssignedAuthor; aa != nil {
			if aa.AssignedPerson != nil {
				name = aa.AssignedPerson.Name.String()
			}
			if aa.RepresentedOrganization != nil {
				org = aa.RepresentedOrganization.Name.String()
			}
		}
		s.Append(name, when, org)
	}
	return s
}

// bodySections returns the sections of the structured body in order.
func bodySections(doc *ClinicalDocument) []*Section {
	if doc.Component == nil || doc.Component.StructuredBody == nil {
		return nil
	}
	var out []*Section
	for _, c := range doc.Component.StructuredBody.Components {
		if c.Section != nil {
			out = append(out, c.Section)
		}
	}
	return out
}

func sections(doc *ClinicalDocument) *sheet.Sheet {
	s := sheet.New("CDA Sections", []string{"Section Title", "Section Code", "Narrative Text (Preview)"})
	for _, sec := range bodySections(doc) {
		title := sec.Title.String()
		code := sec.Code.joined()
		if title == "" && code == "" {
			continue
		}
		s.Append(title, code, truncate(sec.Text.String(), maxNarrative))
	}
	return s
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}

// entrySheets builds one sheet per section with entries. Columns are the
// union of the fields found across the section's entries, in first-seen
// order.
func entrySheets(doc *ClinicalDocument) []sheet.Sheet {
	var out []sheet.Sheet
	for _, sec := range bodySections(doc) {
		var (
			rows    []map[string]string
			columns []string
			seen    = make(map[string]bool)
		)
		for i := range sec.Entries {
			fields, keys := entryFields(&sec.Entries[i])
			if len(keys) == 0 {
				continue
			}
			for _, k := range keys {
				if !seen[k] {
					seen[k] = true
					columns = append(columns, k)
				}
			}
			rows = append(rows, fields)
		}
		if len(rows) == 0 {
			continue
		}

		s := sheet.New("CDA "+sectionTitle(sec), columns)
		for _, r := range rows {
			values := make([]any, len(columns))
			for i, c := range columns {
				values[i] = r[c]
			}
			s.Append(values...)
		}
		out = append(out, *s)
	}
	return out
}

// sectionTitle names an entry sheet by the section title, then by its
// LOINC section code.
func sectionTitle(sec *Section) string {
	if t := sec.Title.String(); t != "" {
		return t
	}
	if sec.Code != nil {
		if name := sectionNames[sec.Code.Code]; name != "" {
			return name
		}
	}
	return "Unknown Section"
}

var sectionNames = map[string]string{
	LOINCAllergies:     "Allergies",
	LOINCMedications:   "Medications",
	LOINCProblems:      "Problems",
	LOINCProcedures:    "Procedures",
	LOINCResults:       "Results",
	LOINCVitalSigns:    "Vital Signs",
	LOINCImmunizations: "Immunizations",
	LOINCSocialHistory: "Social History",
	LOINCPlanOfCare:    "Plan of Care",
	LOINCEncounters:    "Encounters",
}

// entryFields extracts the common clinical-statement fields of an entry's
// first statement. keys lists the populated field names in column order.
func entryFields(e *Entry) (fields map[string]string, keys []string) {
	st := e.Statement()
	if st == nil {
		return nil, nil
	}
	fields = make(map[string]string)
	set := func(k, v string) {
		if _, ok := fields[k]; !ok {
			keys = append(keys, k)
		}
		fields[k] = v
	}

	if st.Code != nil {
		set("Code", st.Code.Code)
		set("Display Name", st.Code.DisplayName)
		set("Code System", st.Code.CodeSystemName)
	}
	if st.StatusCode != nil {
		set("Status", st.StatusCode.Code)
	}
	if et := st.EffectiveTime; et != nil {
		if et.Value != "" {
			set("Date", formatDate(et.Value))
		}
		if et.Low != nil {
			set("Start Date", formatDate(et.Low.Value))
		}
		if et.High != nil {
			set("End Date", formatDate(et.High.Value))
		}
	}
	if v := st.Value.String(); v != "" {
		set("Value", v)
	}
	if text := st.Text.String(); text != "" && utf8.RuneCountInString(text) < maxEntryText {
		set("Text", text)
	}
	return fields, keys
}

// formatDate renders an HL7 timestamp as MM/DD/YYYY, adding HH:MM when the
// value carries a time. Values that do not parse are returned unchanged.
func formatDate(raw string) string {
	s := strings.TrimSpace(raw)
	if i := strings.IndexAny(s, "+-"); i >= 8 {
		s = s[:i]
	}
	if i := strings.IndexByte(s, '.'); i >= 8 {
		s = s[:i]
	}
	t, err := parseHL7Time(s)
	if err != nil {
		return raw
	}
	if len(s) >= 12 {
		return t.Format("01/02/2006 15:04")
	}
	return t.Format("01/02/2006")
}

// parseHL7Time parses an HL7 time string into a time.Time.
func parseHL7Time(s string) (time.Time, error) {
	switch {
	case len(s) >= 14:
		return time.Parse("20060102150405", s[:14])
	case len(s) >= 12:
		return time.Parse("200601021504", s[:12])
	case len(s) >= 8:
		return time.Parse("20060102", s[:8])
	}
	return time.Time{}, fmt.Errorf("ccda: unrecognized time format: %s", s)
}
