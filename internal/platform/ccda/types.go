package ccda

import (
	"encoding/xml"
	"strings"
)

// CDA OIDs and LOINC section codes.
const (
	CDANamespace  = "urn:hl7-org:v3"
	SDTCNamespace = "urn:hl7-org:sdtc"

	// OIDSSN is the root of a US Social Security Number identifier.
	OIDSSN = "2.16.840.1.113883.4.1"

	LOINCAllergies     = "48765-2"
	LOINCMedications   = "10160-0"
	LOINCProblems      = "11450-4"
	LOINCProcedures    = "47519-4"
	LOINCResults       = "30954-2"
	LOINCVitalSigns    = "8716-3"
	LOINCImmunizations = "11369-6"
	LOINCSocialHistory = "29762-2"
	LOINCPlanOfCare    = "18776-5"
	LOINCEncounters    = "46240-8"
)

// Struct tags carry no namespace, so elements match by local name in both
// namespaced and bare documents.

// ClinicalDocument is the root element of a CDA R2 document. Its own name
// is not checked.
type ClinicalDocument struct {
	ID                  *InstanceID    `xml:"id"`
	Code                *Code          `xml:"code"`
	Title               *Text          `xml:"title"`
	EffectiveTime       *TimeValue     `xml:"effectiveTime"`
	ConfidentialityCode *Code          `xml:"confidentialityCode"`
	LanguageCode        *Code          `xml:"languageCode"`
	RecordTargets       []RecordTarget `xml:"recordTarget"`
	Authors             []Author       `xml:"author"`
	Custodian           *Custodian     `xml:"custodian"`
	Component           *Component     `xml:"component"`
}

// Text is an element whose content may mix character data and markup.
type Text struct {
	Inner string `xml:",innerxml"`
}

// String flattens the element's character data: every non-blank text run
// is trimmed and the runs are joined with single spaces.
func (t *Text) String() string {
	if t == nil {
		return ""
	}
	return flatten(t.Inner)
}

func flatten(inner string) string {
	dec := xml.NewDecoder(strings.NewReader("<t>" + inner + "</t>"))
	dec.Strict = false
	var parts []string
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		if cd, ok := tok.(xml.CharData); ok {
			if s := strings.TrimSpace(string(cd)); s != "" {
				parts = append(parts, s)
			}
		}
	}
	return strings.Join(parts, " ")
}

// InstanceID is a unique instance identifier.
type InstanceID struct {
	Root      string `xml:"root,attr"`
	Extension string `xml:"extension,attr"`
}

// Code represents a coded value with optional code system.
type Code struct {
	Code           string `xml:"code,attr"`
	CodeSystem     string `xml:"codeSystem,attr"`
	CodeSystemName string `xml:"codeSystemName,attr"`
	DisplayName    string `xml:"displayName,attr"`
}

// label returns the display name, falling back to the code.
func (c *Code) label() string {
	if c == nil {
		return ""
	}
	if c.DisplayName != "" {
		return c.DisplayName
	}
	return c.Code
}

// joined renders "code - display", or the bare code without a display.
func (c *Code) joined() string {
	if c == nil {
		return ""
	}
	if c.DisplayName != "" {
		return c.Code + " - " + c.DisplayName
	}
	return c.Code
}

// TimeValue holds an HL7 timestamp (YYYYMMDD[HHmm[ss]]).
type TimeValue struct {
	Value string `xml:"value,attr"`
}

// Interval is an effectiveTime that is either a point or a low/high range.
type Interval struct {
	Value string     `xml:"value,attr"`
	Low   *TimeValue `xml:"low"`
	High  *TimeValue `xml:"high"`
}

// RecordTarget holds the patient information in the CDA header.
type RecordTarget struct {
	PatientRole *PatientRole `xml:"patientRole"`
}

// PatientRole contains patient identifiers and demographics.
type PatientRole struct {
	IDs      []InstanceID `xml:"id"`
	Addr     *Address     `xml:"addr"`
	Telecoms []Telecom    `xml:"telecom"`
	Patient  *Patient     `xml:"patient"`
}

// Patient holds patient demographic data.
type Patient struct {
	Name                     *Name      `xml:"name"`
	AdministrativeGenderCode *Code      `xml:"administrativeGenderCode"`
	BirthTime                *TimeValue `xml:"birthTime"`
	RaceCode                 *Code      `xml:"raceCode"`
	EthnicGroupCode          *Code      `xml:"ethnicGroupCode"`
}

// Name represents a person's name.
type Name struct {
	Given  []Text `xml:"given"`
	Family *Text  `xml:"family"`
	Text
}

// String renders "Family, Given", or whichever part is present, or the
// element's full text.
func (n *Name) String() string {
	if n == nil {
		return ""
	}
	var given []string
	for i := range n.Given {
		given = append(given, n.Given[i].String())
	}
	g := strings.Join(given, " ")
	f := n.Family.String()
	switch {
	case f != "" && g != "":
		return f + ", " + g
	case f != "":
		return f
	case g != "":
		return g
	}
	return n.Text.String()
}

// Address represents a postal address.
type Address struct {
	StreetAddress *Text `xml:"streetAddressLine"`
	City          *Text `xml:"city"`
	State         *Text `xml:"state"`
	PostalCode    *Text `xml:"postalCode"`
	Country       *Text `xml:"country"`
	Text
}

// String joins the address parts with ", ", falling back to the element
// text.
func (a *Address) String() string {
	if a == nil {
		return ""
	}
	var parts []string
	for _, p := range []*Text{a.StreetAddress, a.City, a.State, a.PostalCode, a.Country} {
		if s := p.String(); s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) > 0 {
		return strings.Join(parts, ", ")
	}
	return a.Text.String()
}

// Telecom represents a contact point (phone, email, etc.).
type Telecom struct {
	Use   string `xml:"use,attr"`
	Value string `xml:"value,attr"`
}

// Author holds authoring information in the CDA header.
type Author struct {
	Time           *TimeValue      `xml:"time"`
	AssignedAuthor *AssignedAuthor `xml:"assignedAuthor"`
}

// AssignedAuthor identifies the author entity.
type AssignedAuthor struct {
	AssignedPerson          *Person       `xml:"assignedPerson"`
	RepresentedOrganization *Organization `xml:"representedOrganization"`
}

// Person wraps a name.
type Person struct {
	Name *Name `xml:"name"`
}

// Organization represents a healthcare organization.
type Organization struct {
	Name *Text `xml:"name"`
}

// Custodian holds the custodian organization in the CDA header.
type Custodian struct {
	AssignedCustodian *AssignedCustodian `xml:"assignedCustodian"`
}

// AssignedCustodian contains the custodian organization.
type AssignedCustodian struct {
	RepresentedCustodianOrganization *Organization `xml:"representedCustodianOrganization"`
}

// Component wraps the structured body of the CDA document.
type Component struct {
	StructuredBody *StructuredBody `xml:"structuredBody"`
}

// StructuredBody holds the document sections.
type StructuredBody struct {
	Components []SectionComponent `xml:"component"`
}

// SectionComponent wraps a single section.
type SectionComponent struct {
	Section *Section `xml:"section"`
}

// Section represents a CDA section with code, narrative and entries.
type Section struct {
	Code    *Code   `xml:"code"`
	Title   *Text   `xml:"title"`
	Text    *Text   `xml:"text"`
	Entries []Entry `xml:"entry"`
}

// Entry is a CDA entry holding one clinical statement.
type Entry struct {
	Act                     *Statement `xml:"act"`
	Observation             *Statement `xml:"observation"`
	SubstanceAdministration *Statement `xml:"substanceAdministration"`
	Procedure               *Statement `xml:"procedure"`
	Encounter               *Statement `xml:"encounter"`
	Organizer               *Statement `xml:"organizer"`
	Supply                  *Statement `xml:"supply"`
}

// Statement returns the first clinical statement present, checked in the
// order act, observation, substanceAdministration, procedure, encounter,
// organizer, supply.
func (e *Entry) Statement() *Statement {
	for _, s := range []*Statement{e.Act, e.Observation, e.SubstanceAdministration,
		e.Procedure, e.Encounter, e.Organizer, e.Supply} {
		if s != nil {
			return s
		}
	}
	return nil
}

// Statement holds the fields shared by CDA clinical statements.
type Statement struct {
	Code          *Code     `xml:"code"`
	StatusCode    *Code     `xml:"statusCode"`
	EffectiveTime *Interval `xml:"effectiveTime"`
	Value         *Value    `xml:"value"`
	Text          *Text     `xml:"text"`
}

// Value represents a typed value (physical quantity, coded value, etc.).
type Value struct {
	Value       string `xml:"value,attr"`
	Unit        string `xml:"unit,attr"`
	Code        string `xml:"code,attr"`
	DisplayName string `xml:"displayName,attr"`
}

// String renders "value unit", or the display, code or bare value.
func (v *Value) String() string {
	switch {
	case v == nil:
		return ""
	case v.Value != "" && v.Unit != "":
		return v.Value + " " + v.Unit
	case v.DisplayName != "":
		return v.DisplayName
	case v.Code != "":
		return v.Code
	}
	return v.Value
}
