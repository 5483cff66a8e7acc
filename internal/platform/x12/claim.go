package x12

import (
	"fmt"
	"strings"

	"github.com/ehr/interchange/internal/platform/sheet"
)

// Party holds the name, identifiers and address of a provider, subscriber
// or patient loop in an 837.
type Party struct {
	Name        string
	ID          string
	NPI         string
	TaxID       string
	DOB         string
	Gender      string
	AddressLine string
	City        string
	State       string
	Zip         string
	GroupNumber string
	GroupName   string
	PayerName   string
	PayerID     string
}

// Diagnosis is one HI composite.
type Diagnosis struct {
	Code      string
	Type      string
	Qualifier string
}

// ClaimServiceLine is an SV1 or SV2 loop.
type ClaimServiceLine struct {
	ClaimID            string
	LineNumber         int
	ProcedureQualifier string
	ProcedureCode      string
	Modifiers          string
	ChargeAmount       float64
	UnitType           string
	Units              float64
	PlaceOfService     string
	DiagnosisPointers  string
	ServiceDateFrom    string
	ServiceDateTo      string
	RevenueCode        string
	NDCCode            string
}

// Claim is a CLM loop with the provider, subscriber and patient context
// in force when it closed.
type Claim struct {
	ClaimID             string
	TotalCharge         float64
	PlaceOfServiceCode  string
	PlaceOfService      string
	FrequencyCode       string
	ProviderSignature   string
	AssignmentCode      string
	BenefitsAssignment  string
	ReleaseOfInfo       string
	Diagnoses           []Diagnosis
	ServiceLines        []ClaimServiceLine
	ServiceDateFrom     string
	ServiceDateTo       string
	AdmissionDate       string
	DischargeDate       string
	RenderingProvider   string
	RenderingNPI        string
	ReferringProvider   string
	ReferringNPI        string
	ServiceFacility     string
	ServiceFacilityNPI  string
	PriorAuthorization  string
	OriginalReference   string
	BillingProvider     Party
	Subscriber          Party
	Patient             Party
}

// ClaimSubmission is one decoded 837 transaction.
type ClaimSubmission struct {
	Subtype         string
	BillingProvider Party
	Claims          []Claim
}

type claimState struct {
	env        *Envelope
	out        ClaimSubmission
	subscriber Party
	patient    *Party
	claim      *Claim
	line       *ClaimServiceLine
	level      string
	hasLevel   bool
}

// DecodeClaims decodes every transaction in env as an 837.
func DecodeClaims(env *Envelope) []ClaimSubmission {
	var out []ClaimSubmission
	for _, txn := range env.Transactions() {
		out = append(out, decodeClaimSubmission(env, txn.Segments))
	}
	return out
}

func decodeClaimSubmission(env *Envelope, segments []Segment) ClaimSubmission {
	st := &claimState{env: env, out: ClaimSubmission{Subtype: "837"}}
	for _, seg := range segments {
		st.apply(seg)
	}
	st.flushClaim()
	return st.out
}

// claimSubtype reads the implementation guide reference in ST03.
func claimSubtype(ref string) string {
	switch {
	case strings.Contains(ref, "222"):
		return "837P"
	case strings.Contains(ref, "223"):
		return "837I"
	case strings.Contains(ref, "224"):
		return "837D"
	}
	return "837"
}

func (st *claimState) flushLine() {
	if st.line != nil && st.claim != nil {
		st.claim.ServiceLines = append(st.claim.ServiceLines, *st.line)
	}
	st.line = nil
}

// flushClaim snapshots the current context into the open claim and
// closes it. Without a distinct HL 23 patient the subscriber is the patient.
func (st *claimState) flushClaim() {
	st.flushLine()
	if st.claim == nil {
		return
	}
	c := st.claim
	c.BillingProvider = st.out.BillingProvider
	c.Subscriber = st.subscriber
	if st.patient != nil {
		c.Patient = *st.patient
	} else {
		c.Patient = st.subscriber
	}
	st.out.Claims = append(st.out.Claims, *c)
	st.claim = nil
}

// addressee picks the loop an N3/N4/DMG segment belongs to.
func (st *claimState) addressee() *Party {
	switch {
	case st.level == "20" || (!st.hasLevel && st.claim == nil):
		return &st.out.BillingProvider
	case st.level == "23" && st.patient != nil:
		return st.patient
	case st.level == "22":
		return &st.subscriber
	}
	return nil
}

func (st *claimState) apply(seg Segment) {
	switch seg.ID() {
	case "ST":
		st.out.Subtype = claimSubtype(seg.Element(3))

	case "HL":
		st.flushClaim()
		st.level = seg.Element(3)
		st.hasLevel = true
		switch st.level {
		case "22":
			st.subscriber = Party{}
			st.patient = nil
		case "23":
			st.patient = &Party{}
		}

	case "SBR":
		if seg.Len() > 9 {
			st.subscriber.GroupNumber = seg.Element(3)
			st.subscriber.GroupName = seg.Element(4)
		}

	case "NM1":
		st.applyName(seg)

	case "N3":
		addr := seg.Element(1)
		if addr2 := seg.Element(2); addr2 != "" {
			addr = strings.TrimSpace(addr + " " + addr2)
		}
		if p := st.addressee(); p != nil {
			p.AddressLine = addr
		}

	case "N4":
		if p := st.addressee(); p != nil {
			p.City, p.State, p.Zip = seg.Element(1), seg.Element(2), seg.Element(3)
		}

	case "REF":
		value := seg.Element(2)
		switch q := seg.Element(1); {
		case q == "EI" && st.claim == nil:
			st.out.BillingProvider.TaxID = value
		case (q == "1G" || q == "G1") && st.claim != nil:
			st.claim.PriorAuthorization = value
		case q == "D9" && st.claim != nil:
			st.claim.OriginalReference = value
		}

	case "DMG":
		dob := FormatDate(seg.Element(2))
		gender := describe(genders, seg.Element(3))
		switch {
		case st.level == "23" && st.patient != nil:
			st.patient.DOB, st.patient.Gender = dob, gender
		case st.level == "22":
			st.subscriber.DOB, st.subscriber.Gender = dob, gender
		}

	case "CLM":
		st.flushClaim()
		pos := st.env.SubElements(seg.Element(5))
		facility := pos[0]
		c := &Claim{
			ClaimID:            seg.Element(1),
			TotalCharge:        SafeFloat(seg.Element(2), 0),
			PlaceOfServiceCode: facility,
			PlaceOfService:     describe(placeOfService, facility),
			ProviderSignature:  seg.Element(6),
			AssignmentCode:     seg.Element(7),
			BenefitsAssignment: seg.Element(8),
			ReleaseOfInfo:      seg.Element(9),
		}
		if len(pos) > 2 {
			c.FrequencyCode = pos[2]
		}
		st.claim = c

	case "HI":
		if st.claim == nil {
			return
		}
		for _, el := range seg.Elements[1:] {
			if el == "" {
				continue
			}
			parts := st.env.SubElements(el)
			if len(parts) < 2 || parts[1] == "" {
				continue
			}
			typ := "Other"
			if parts[0] == "ABK" || parts[0] == "BK" {
				typ = "Principal"
			}
			st.claim.Diagnoses = append(st.claim.Diagnoses, Diagnosis{
				Code:      parts[1],
				Type:      typ,
				Qualifier: parts[0],
			})
		}

	case "DTP":
		st.applyDate(seg)

	case "SV1":
		if st.claim == nil {
			return
		}
		st.flushLine()
		proc := st.env.SubElements(seg.Element(1))
		var mods []string
		for i := 2; i < len(proc) && i < 6; i++ {
			if proc[i] != "" {
				mods = append(mods, proc[i])
			}
		}
		pos := seg.Element(5)
		st.line = &ClaimServiceLine{
			ClaimID:            st.claim.ClaimID,
			LineNumber:         len(st.claim.ServiceLines) + 1,
			ProcedureQualifier: proc[0],
			ProcedureCode:      element(proc, 1),
			Modifiers:          strings.Join(mods, ":"),
			ChargeAmount:       SafeFloat(seg.Element(2), 0),
			UnitType:           seg.Element(3),
			Units:              SafeFloat(seg.Element(4), 0),
			PlaceOfService:     describe(placeOfService, pos),
			DiagnosisPointers:  seg.Element(7),
		}

	case "SV2":
		if st.claim == nil {
			return
		}
		st.flushLine()
		proc := st.env.SubElements(seg.Element(2))
		st.line = &ClaimServiceLine{
			ClaimID:            st.claim.ClaimID,
			LineNumber:         len(st.claim.ServiceLines) + 1,
			RevenueCode:        seg.Element(1),
			ProcedureQualifier: proc[0],
			ProcedureCode:      element(proc, 1),
			ChargeAmount:       SafeFloat(seg.Element(3), 0),
			UnitType:           seg.Element(4),
			Units:              SafeFloat(seg.Element(5), 0),
		}

	case "LX":
		if st.claim != nil {
			st.flushLine()
		}

	case "LIN":
		if st.line != nil && seg.Element(2) == "N4" {
			st.line.NDCCode = seg.Element(3)
		}
	}
}

func (st *claimState) applyName(seg Segment) {
	entity := seg.Element(1)
	last, first, middle := seg.Element(3), seg.Element(4), seg.Element(5)
	qualifier, id := seg.Element(8), seg.Element(9)

	name := last
	if seg.Element(2) == "1" {
		name = last + ", " + first
		if middle != "" {
			name += " " + middle
		}
	}

	switch entity {
	case "85":
		st.out.BillingProvider.Name = name
		if qualifier == "XX" {
			st.out.BillingProvider.NPI = id
		}
	case "IL":
		st.subscriber.Name = name
		if qualifier == "MI" || id != "" {
			st.subscriber.ID = id
		}
	case "QC":
		if st.patient != nil {
			st.patient.Name = name
		}
	case "PR":
		st.subscriber.PayerName = name
		st.subscriber.PayerID = id
	case "82":
		if st.claim != nil {
			st.claim.RenderingProvider, st.claim.RenderingNPI = name, id
		}
	case "DN":
		if st.claim != nil {
			st.claim.ReferringProvider, st.claim.ReferringNPI = name, id
		}
	case "77":
		if st.claim != nil {
			st.claim.ServiceFacility, st.claim.ServiceFacilityNPI = name, id
		}
	}
}

// applyDate handles DTP. RD8 ranges are split on the hyphen.
func (st *claimState) applyDate(seg Segment) {
	qualifier, format, value := seg.Element(1), seg.Element(2), seg.Element(3)

	from, to := FormatDate(value), ""
	if format == "RD8" && strings.Contains(value, "-") {
		parts := strings.Split(value, "-")
		from = FormatDate(parts[0])
		to = FormatDate(parts[1])
	}

	switch {
	case st.line != nil:
		switch qualifier {
		case "472", "150", "151":
			st.line.ServiceDateFrom, st.line.ServiceDateTo = from, to
		}
	case st.claim != nil:
		switch qualifier {
		case "431", "472":
			st.claim.ServiceDateFrom, st.claim.ServiceDateTo = from, to
		case "435":
			st.claim.AdmissionDate = from
		case "096":
			st.claim.DischargeDate = from
		}
	}
}

func element(parts []string, i int) string {
	if i < len(parts) {
		return parts[i]
	}
	return ""
}

// ClaimSheets flattens decoded 837 transactions into claim, service line
// and diagnosis sheets.
func ClaimSheets(subs []ClaimSubmission) []sheet.Sheet {
	claims := sheet.New("837 Claims", []string{
		"Claim ID", "Total Charges", "Place of Service",
		"Patient Name", "Patient DOB", "Patient Gender",
		"Subscriber Name", "Subscriber ID", "Payer Name", "Payer ID",
		"Billing Provider", "Billing Provider NPI", "Billing Provider Tax ID",
		"Rendering Provider", "Rendering Provider NPI", "Referring Provider",
		"Service Date From", "Service Date To",
		"Diagnosis Codes", "Prior Authorization", "Number of Service Lines",
	}, 2)
	lines := sheet.New("837 Service Lines", []string{
		"Claim ID", "Line #", "Procedure Code", "Modifiers",
		"Charge Amount", "Units", "Unit Type",
		"Place of Service", "Revenue Code",
		"Service Date From", "Service Date To",
		"Diagnosis Pointers", "NDC Code",
	}, 5)
	diagnoses := sheet.New("837 Diagnosis Codes", []string{
		"Claim ID", "Diagnosis Code", "Type", "Qualifier",
	})

	for _, sub := range subs {
		for _, c := range sub.Claims {
			dx := make([]string, 0, len(c.Diagnoses))
			for _, d := range c.Diagnoses {
				dx = append(dx, fmt.Sprintf("%s (%s)", d.Code, d.Type))
				diagnoses.Append(c.ClaimID, d.Code, d.Type, d.Qualifier)
			}

			claims.Append(
				c.ClaimID, c.TotalCharge, c.PlaceOfService,
				c.Patient.Name, c.Patient.DOB, c.Patient.Gender,
				c.Subscriber.Name, c.Subscriber.ID,
				c.Subscriber.PayerName, c.Subscriber.PayerID,
				c.BillingProvider.Name, c.BillingProvider.NPI, c.BillingProvider.TaxID,
				c.RenderingProvider, c.RenderingNPI, c.ReferringProvider,
				c.ServiceDateFrom, c.ServiceDateTo,
				strings.Join(dx, ", "), c.PriorAuthorization, len(c.ServiceLines),
			)

			for _, l := range c.ServiceLines {
				lines.Append(
					l.ClaimID, l.LineNumber, l.ProcedureCode, l.Modifiers,
					l.ChargeAmount, l.Units, l.UnitType,
					l.PlaceOfService, l.RevenueCode,
					l.ServiceDateFrom, l.ServiceDateTo,
					l.DiagnosisPointers, l.NDCCode,
				)
			}
		}
	}

	return sheet.Collect(claims, lines, diagnoses)
}
