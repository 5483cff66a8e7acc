package fhirdoc

import (
	"strings"
)

// projector renders one resource type as a sheet.
type projector struct {
	sheet    string
	headers  []string
	currency []int
	row      func(r *Object) []any
}

var projectors = map[string]projector{
	"Patient": {
		sheet: "FHIR Patients",
		headers: []string{"ID", "Name", "Date of Birth", "Gender", "Address",
			"Phone", "Email", "Marital Status", "MRN", "SSN"},
		row: patientRow,
	},
	"Encounter": {
		sheet: "FHIR Encounters",
		headers: []string{"ID", "Status", "Class", "Type", "Subject",
			"Start", "End", "Reason", "Participant", "Location",
			"Service Provider", "Diagnosis Codes"},
		row: encounterRow,
	},
	"Observation": {
		sheet: "FHIR Observations",
		headers: []string{"ID", "Status", "Category", "Code", "Display",
			"Value", "Units", "Reference Range",
			"Subject", "Effective Date", "Issued"},
		row: observationRow,
	},
	"Condition": {
		sheet: "FHIR Conditions",
		headers: []string{"ID", "Clinical Status", "Verification Status",
			"Code", "Display", "Subject",
			"Onset", "Abatement", "Recorded Date", "Severity"},
		row: conditionRow,
	},
	"Procedure": {
		sheet: "FHIR Procedures",
		headers: []string{"ID", "Status", "Code", "Display", "Subject",
			"Performed Start", "Performed End", "Performer", "Location", "Reason"},
		row: procedureRow,
	},
	"MedicationRequest": {
		sheet: "FHIR Medications",
		headers: []string{"ID", "Status", "Intent", "Medication", "Subject",
			"Requester", "Dosage Instructions", "Authored On",
			"Reason", "Dispense Quantity"},
		row: medicationRequestRow,
	},
	"MedicationDispense": {
		sheet: "FHIR Dispenses",
		headers: []string{"ID", "Status", "Medication", "Subject",
			"Performer", "Quantity", "Days Supply", "When Handed Over"},
		row: medicationDispenseRow,
	},
	"Claim": {
		sheet: "FHIR Claims",
		headers: []string{"ID", "Status", "Type", "Use", "Patient",
			"Provider", "Priority", "Total",
			"Diagnosis Codes", "Item Count"},
		currency: []int{8},
		row:      claimRow,
	},
	"ExplanationOfBenefit": {
		sheet: "FHIR EOBs",
		headers: []string{"ID", "Status", "Type", "Use", "Patient",
			"Provider", "Outcome",
			"Total (Submitted)", "Total (Benefit)",
			"Payment Amount", "Payment Date",
			"Diagnosis Codes", "Item Count"},
		currency: []int{8, 9, 10},
		row:      eobRow,
	},
	"Coverage": {
		sheet: "FHIR Coverage",
		headers: []string{"ID", "Status", "Type", "Subscriber", "Beneficiary",
			"Payor", "Group ID", "Group Name", "Plan",
			"Period Start", "Period End"},
		row: coverageRow,
	},
	"DiagnosticReport": {
		sheet: "FHIR Diagnostic Reports",
		headers: []string{"ID", "Status", "Category", "Code", "Display",
			"Subject", "Effective Date", "Issued",
			"Performer", "Result Count", "Conclusion"},
		row: diagnosticReportRow,
	},
	"AllergyIntolerance": {
		sheet: "FHIR Allergies",
		headers: []string{"ID", "Clinical Status", "Verification Status", "Type",
			"Category", "Criticality", "Code", "Display",
			"Patient", "Onset", "Recorded Date", "Reactions"},
		row: allergyRow,
	},
	"Immunization": {
		sheet: "FHIR Immunizations",
		headers: []string{"ID", "Status", "Vaccine Code", "Vaccine Name",
			"Patient", "Occurrence Date", "Lot Number",
			"Site", "Route", "Dose Quantity", "Performer"},
		row: immunizationRow,
	},
	"Practitioner": {
		sheet: "FHIR Practitioners",
		headers: []string{"ID", "Name", "Gender", "Birth Date",
			"Identifier", "Qualification", "Phone", "Email", "Address"},
		row: practitionerRow,
	},
	"Organization": {
		sheet: "FHIR Organizations",
		headers: []string{"ID", "Name", "Type", "Identifier", "Phone", "Email",
			"Address", "Active"},
		row: organizationRow,
	},
}

var genericHeaders = []string{"ID", "Resource Type", "Status", "Subject", "Date", "Key Data"}

func id(r *Object) string     { return str(r.Get("id")) }
func status(r *Object) string { return str(r.Get("status")) }

// dateOf normalizes the first present date-valued key.
func dateOf(r *Object, keys ...string) string {
	return FormatDate(firstString(r, keys...))
}

// effective reads effectiveDateTime, falling back to effectivePeriod.start.
func effective(r *Object) string {
	if e := dateOf(r, "effectiveDateTime"); e != "" {
		return e
	}
	start, _ := period(r.Get("effectivePeriod"))
	return start
}

// conceptText lowercases every code, display and text of a concept, for
// keyword matching of loosely coded types.
func conceptText(v any) string {
	cc := object(v)
	parts := []string{str(cc.Get("text"))}
	for _, c := range list(cc.Get("coding")) {
		co := object(c)
		parts = append(parts, str(co.Get("code")), str(co.Get("display")))
	}
	if s, ok := v.(string); ok {
		parts = append(parts, s)
	}
	return strings.ToLower(strings.Join(parts, " "))
}

// identifiers renders "value (type)" for each identifier with a value.
func identifiers(v any) string {
	var out []string
	for _, i := range list(v) {
		ident := object(i)
		if value := str(ident.Get("value")); value != "" {
			out = append(out, value+" ("+concept(ident.Get("type"))+")")
		}
	}
	return strings.Join(out, "; ")
}

// diagnosisCodes joins diagnosisCodeableConcept over Claim/EOB diagnoses.
func diagnosisCodes(v any) string {
	var out []string
	for _, d := range list(v) {
		if cc := object(d).Get("diagnosisCodeableConcept"); truthy(cc) {
			out = append(out, concept(cc))
		}
	}
	return strings.Join(out, "; ")
}

// money returns the value of a Money element, or the element itself when
// it is a bare number.
func money(v any) any {
	if o := object(v); o != nil {
		return scalar(o.Get("value"))
	}
	return scalar(v)
}

// medication resolves medication[x].
func medication(r *Object) string {
	if m := concept(r.Get("medicationCodeableConcept")); m != "" {
		return m
	}
	return reference(r.Get("medicationReference"))
}

func patientRow(r *Object) []any {
	var mrn, ssn string
	for _, i := range list(r.Get("identifier")) {
		ident := object(i)
		code, _ := coding(ident.Get("type"))
		kind := conceptText(ident.Get("type"))
		value := str(ident.Get("value"))
		switch {
		case code == "MR" || code == "MRN" || strings.Contains(kind, "medical"):
			mrn = value
		case code == "SS" || strings.Contains(kind, "social"):
			ssn = value
		case mrn == "":
			mrn = value
		}
	}
	return []any{
		id(r), humanName(r.Get("name")), dateOf(r, "birthDate"),
		str(r.Get("gender")), address(r.Get("address")),
		telecom(r.Get("telecom"), "phone"), telecom(r.Get("telecom"), "email"),
		concept(r.Get("maritalStatus")), mrn, ssn,
	}
}

func encounterRow(r *Object) []any {
	class := str(r.Get("class"))
	if c := object(r.Get("class")); c != nil {
		class = firstString(c, "display", "code")
	}
	start, end := period(r.Get("period"))

	var dx []string
	for _, d := range list(r.Get("diagnosis")) {
		cond := object(d).Get("condition")
		if object(cond).Has("coding") {
			dx = append(dx, concept(cond))
		} else {
			dx = append(dx, reference(cond))
		}
	}

	return []any{
		id(r), status(r), class, concepts(r.Get("type")),
		reference(r.Get("subject")),
		start, end, concepts(r.Get("reasonCode")),
		references(r.Get("participant"), "individual"),
		references(r.Get("location"), "location"),
		reference(r.Get("serviceProvider")), strings.Join(dx, "; "),
	}
}

func observationRow(r *Object) []any {
	code, display := coding(r.Get("code"))

	var value any = ""
	units := ""
	switch {
	case truthy(r.Get("valueQuantity")):
		q := object(r.Get("valueQuantity"))
		value = scalar(q.Get("value"))
		units = firstString(q, "unit", "code")
	case r.Has("valueString"):
		value = str(r.Get("valueString"))
	case r.Has("valueCodeableConcept"):
		value = concept(r.Get("valueCodeableConcept"))
	case r.Has("valueBoolean"):
		value = str(r.Get("valueBoolean"))
	case r.Has("valueInteger"):
		value = scalar(r.Get("valueInteger"))
	case r.Has("valueDateTime"):
		value = dateOf(r, "valueDateTime")
	}

	rangeText := ""
	if ranges := list(r.Get("referenceRange")); len(ranges) > 0 {
		rr := object(ranges[0])
		low := str(object(rr.Get("low")).Get("value"))
		high := str(object(rr.Get("high")).Get("value"))
		if low != "" && high != "" {
			rangeText = low + " - " + high
		} else {
			rangeText = str(rr.Get("text"))
		}
	}

	return []any{
		id(r), status(r), concepts(r.Get("category")), code, display,
		value, units, rangeText,
		reference(r.Get("subject")),
		effective(r), dateOf(r, "issued"),
	}
}

func conditionRow(r *Object) []any {
	code, display := coding(r.Get("code"))
	return []any{
		id(r),
		concept(r.Get("clinicalStatus")),
		concept(r.Get("verificationStatus")),
		code, display,
		reference(r.Get("subject")),
		dateOf(r, "onsetDateTime", "onsetString"),
		dateOf(r, "abatementDateTime", "abatementString"),
		dateOf(r, "recordedDate"),
		concept(r.Get("severity")),
	}
}

func procedureRow(r *Object) []any {
	code, display := coding(r.Get("code"))
	start, end := dateOf(r, "performedDateTime"), ""
	if start == "" {
		start, end = period(r.Get("performedPeriod"))
	}
	return []any{
		id(r), status(r), code, display,
		reference(r.Get("subject")),
		start, end, references(r.Get("performer"), "actor"),
		reference(r.Get("location")), concepts(r.Get("reasonCode")),
	}
}

func medicationRequestRow(r *Object) []any {
	var dosages []string
	for _, d := range list(r.Get("dosageInstruction")) {
		if text := str(object(d).Get("text")); text != "" {
			dosages = append(dosages, text)
		}
	}
	return []any{
		id(r), status(r), str(r.Get("intent")),
		medication(r), reference(r.Get("subject")),
		reference(r.Get("requester")),
		strings.Join(dosages, "; "), dateOf(r, "authoredOn"),
		concepts(r.Get("reasonCode")),
		quantity(object(r.Get("dispenseRequest")).Get("quantity"), ""),
	}
}

func medicationDispenseRow(r *Object) []any {
	return []any{
		id(r), status(r), medication(r),
		reference(r.Get("subject")),
		references(r.Get("performer"), "actor"),
		quantity(r.Get("quantity"), ""),
		quantity(r.Get("daysSupply"), "days"),
		dateOf(r, "whenHandedOver"),
	}
}

func claimRow(r *Object) []any {
	return []any{
		id(r), status(r), concept(r.Get("type")),
		str(r.Get("use")), reference(r.Get("patient")),
		reference(r.Get("provider")),
		concept(r.Get("priority")), money(r.Get("total")),
		diagnosisCodes(r.Get("diagnosis")), len(list(r.Get("item"))),
	}
}

func eobRow(r *Object) []any {
	var submitted, benefit any = "", ""
	for _, t := range list(r.Get("total")) {
		total := object(t)
		kind := conceptText(total.Get("category"))
		value := money(total.Get("amount"))
		switch {
		case strings.Contains(kind, "submitted"):
			submitted = value
		case strings.Contains(kind, "benefit"):
			benefit = value
		case submitted == "":
			submitted = value
		}
	}

	payment := object(r.Get("payment"))
	var payAmount any = ""
	if payment.Has("amount") {
		payAmount = money(payment.Get("amount"))
	}

	return []any{
		id(r), status(r), concept(r.Get("type")),
		str(r.Get("use")), reference(r.Get("patient")),
		reference(r.Get("provider")),
		str(r.Get("outcome")),
		submitted, benefit, payAmount, FormatDate(str(payment.Get("date"))),
		diagnosisCodes(r.Get("diagnosis")), len(list(r.Get("item"))),
	}
}

func coverageRow(r *Object) []any {
	var groupID, groupName, plan string
	for _, c := range list(r.Get("class")) {
		class := object(c)
		kind := conceptText(class.Get("type"))
		switch {
		case strings.Contains(kind, "group"):
			groupID = str(class.Get("value"))
			groupName = str(class.Get("name"))
		case strings.Contains(kind, "plan"):
			plan = firstString(class, "value", "name")
		}
	}
	start, end := period(r.Get("period"))
	return []any{
		id(r), status(r), concept(r.Get("type")),
		reference(r.Get("subscriber")),
		reference(r.Get("beneficiary")),
		references(r.Get("payor"), ""), groupID, groupName, plan,
		start, end,
	}
}

func diagnosticReportRow(r *Object) []any {
	code, display := coding(r.Get("code"))
	return []any{
		id(r), status(r), concepts(r.Get("category")), code, display,
		reference(r.Get("subject")),
		effective(r), dateOf(r, "issued"),
		references(r.Get("performer"), ""), len(list(r.Get("result"))),
		str(r.Get("conclusion")),
	}
}

func allergyRow(r *Object) []any {
	code, display := coding(r.Get("code"))

	var categories []string
	for _, c := range list(r.Get("category")) {
		categories = append(categories, str(c))
	}

	var reactions []string
	for _, rx := range list(r.Get("reaction")) {
		reaction := object(rx)
		m := concepts(reaction.Get("manifestation"))
		if m == "" {
			continue
		}
		if severity := str(reaction.Get("severity")); severity != "" {
			m += " (" + severity + ")"
		}
		reactions = append(reactions, m)
	}

	return []any{
		id(r),
		concept(r.Get("clinicalStatus")),
		concept(r.Get("verificationStatus")),
		str(r.Get("type")), strings.Join(categories, ", "), str(r.Get("criticality")),
		code, display,
		reference(r.Get("patient")),
		dateOf(r, "onsetDateTime"), dateOf(r, "recordedDate"),
		strings.Join(reactions, "; "),
	}
}

func immunizationRow(r *Object) []any {
	code, display := coding(r.Get("vaccineCode"))
	return []any{
		id(r), status(r), code, display,
		reference(r.Get("patient")),
		dateOf(r, "occurrenceDateTime", "occurrenceString"), str(r.Get("lotNumber")),
		concept(r.Get("site")), concept(r.Get("route")),
		quantity(r.Get("doseQuantity"), ""), references(r.Get("performer"), "actor"),
	}
}

func practitionerRow(r *Object) []any {
	var quals []string
	for _, q := range list(r.Get("qualification")) {
		quals = append(quals, concept(object(q).Get("code")))
	}
	return []any{
		id(r), humanName(r.Get("name")), str(r.Get("gender")), dateOf(r, "birthDate"),
		identifiers(r.Get("identifier")), strings.Join(quals, "; "),
		telecom(r.Get("telecom"), "phone"), telecom(r.Get("telecom"), "email"),
		address(r.Get("address")),
	}
}

func organizationRow(r *Object) []any {
	var active any = ""
	if b, ok := r.Get("active").(bool); ok {
		active = b
	} else if s := str(r.Get("active")); s != "" {
		active = s == "true"
	}
	return []any{
		id(r), str(r.Get("name")), concepts(r.Get("type")), identifiers(r.Get("identifier")),
		telecom(r.Get("telecom"), "phone"), telecom(r.Get("telecom"), "email"),
		address(r.Get("address")), active,
	}
}

// genericSkip are keys the fallback never reports as key data.
var genericSkip = map[string]bool{
	"resourceType": true, "id": true, "status": true, "meta": true, "text": true,
}

func genericRow(resourceType string, r *Object) []any {
	subject := r.Get("subject")
	if !truthy(subject) {
		subject = r.Get("patient")
	}

	var keyData []string
	for _, k := range r.Keys() {
		if genericSkip[k] {
			continue
		}
		if s, ok := r.Get(k).(string); ok && s != "" && len(s) < 100 {
			keyData = append(keyData, k+": "+s)
		}
		if len(keyData) >= 5 {
			break
		}
	}

	return []any{
		id(r), resourceType, status(r), reference(subject),
		dateOf(r, "date", "created", "issued", "effectiveDateTime", "authoredOn"),
		strings.Join(keyData, "; "),
	}
}
