package x12

import (
	"strings"

	"github.com/ehr/interchange/internal/platform/sheet"
)

// sheetSet accumulates rows into sheets by name so that repeated
// transactions of one type land in a single sheet.
type sheetSet struct {
	order  []string
	sheets map[string]*sheet.Sheet
}

func newSheetSet() *sheetSet {
	return &sheetSet{sheets: make(map[string]*sheet.Sheet)}
}

func (s *sheetSet) get(name string, headers []string, currency ...int) *sheet.Sheet {
	name = sheet.TruncateName(name)
	if sh, ok := s.sheets[name]; ok {
		return sh
	}
	sh := sheet.New(name, headers, currency...)
	s.sheets[name] = sh
	s.order = append(s.order, name)
	return sh
}

func (s *sheetSet) collect() []sheet.Sheet {
	list := make([]*sheet.Sheet, 0, len(s.order))
	for _, name := range s.order {
		list = append(list, s.sheets[name])
	}
	return sheet.Collect(list...)
}

// GenericSheets decodes transactions other than 835/837 by dispatching on
// each transaction's ST01 code.
func GenericSheets(env *Envelope) []sheet.Sheet {
	set := newSheetSet()
	for _, txn := range env.Transactions() {
		decode, ok := genericDecoders[txn.Code]
		if !ok {
			decode = decodeRaw
		}
		decode(env, txn, set)
	}
	return set.collect()
}

type genericDecoder func(env *Envelope, txn Transaction, set *sheetSet)

var genericDecoders = map[string]genericDecoder{
	"270": decodeEligibility,
	"271": decodeEligibility,
	"276": decodeClaimStatus,
	"277": decodeClaimStatus,
	"278": decodePriorAuth,
	"834": decodeEnrollment,
	"997": decodeAcknowledgment,
	"999": decodeAcknowledgment,
}

// =========== 270/271 eligibility ===========

type eligibilityEntity struct {
	entityType      string
	name            string
	id              string
	idQualifier     string
	dob             string
	gender          string
	planDate        string
	eligibilityDate string
}

func decodeEligibility(_ *Envelope, txn Transaction, set *sheetSet) {
	response := txn.Code == "271"

	var (
		entities []*eligibilityEntity
		current  *eligibilityEntity
		benefits [][]any
	)

	currentName := func() string {
		if current == nil {
			return ""
		}
		return current.name
	}

	for _, seg := range txn.Segments {
		switch seg.ID() {
		case "NM1":
			name := seg.Element(3)
			if seg.Element(2) == "1" && seg.Element(4) != "" {
				name = seg.Element(3) + ", " + seg.Element(4)
			}
			current = &eligibilityEntity{
				entityType:  describe(entityCodes, seg.Element(1)),
				name:        name,
				idQualifier: seg.Element(8),
				id:          seg.Element(9),
			}
			entities = append(entities, current)

		case "DMG":
			if current != nil {
				current.dob = FormatDate(seg.Element(2))
				current.gender = describe(genders, seg.Element(3))
			}

		case "DTP":
			if current == nil {
				continue
			}
			switch seg.Element(1) {
			case "291":
				current.planDate = FormatDate(seg.Element(3))
			case "307":
				current.eligibilityDate = FormatDate(seg.Element(3))
			}

		case "EB":
			if !response {
				continue
			}
			info, service := seg.Element(1), seg.Element(3)
			var amount any = ""
			if seg.Len() > 6 {
				amount = SafeFloat(seg.Element(6), 0)
			}
			benefits = append(benefits, []any{
				currentName(), info, describe(benefitInfoCodes, info),
				seg.Element(2), service, describe(serviceTypeCodes, service),
				seg.Element(4), seg.Element(5), amount, seg.Element(7),
			})

		case "AAA":
			benefits = append(benefits, []any{
				currentName(), "REJECT", "Reject: " + seg.Element(3),
			})
		}
	}

	if len(entities) > 0 {
		label := "270 Entities"
		if response {
			label = "271 Entities"
		}
		sh := set.get(label, []string{
			"Entity Type", "Name", "ID", "ID Qualifier",
			"Date of Birth", "Gender", "Plan Date", "Eligibility Date",
		})
		for _, e := range entities {
			sh.Append(e.entityType, e.name, e.id, e.idQualifier,
				e.dob, e.gender, e.planDate, e.eligibilityDate)
		}
	}

	if len(benefits) > 0 {
		sh := set.get("271 Benefits", []string{
			"Entity Name", "Information Type", "Description",
			"Coverage Level", "Service Type", "Service Description",
			"Plan Name", "Time Period", "Amount", "Percentage",
		}, 9)
		for _, row := range benefits {
			sh.Append(row...)
		}
	}
}

// =========== 276/277 claim status ===========

type statusEntry struct {
	patientName    string
	patientID      string
	providerName   string
	providerID     string
	payerName      string
	payerID        string
	claimID        string
	payerClaimID   string
	serviceDate    string
	receivedDate   string
	totalCharge    any
	traceNumber    string
	statusCategory string
	statusCode     string
	statusEntity   string
	statusDate     string
	touched        bool
}

func decodeClaimStatus(env *Envelope, txn Transaction, set *sheetSet) {
	response := txn.Code == "277"

	var entries []statusEntry
	cur := statusEntry{totalCharge: ""}

	for _, seg := range txn.Segments {
		switch seg.ID() {
		case "NM1":
			name := personName(seg.Element(3), seg.Element(4))
			switch seg.Element(1) {
			case "IL", "QC":
				cur.patientName, cur.patientID = name, seg.Element(9)
			case "85", "1P":
				cur.providerName, cur.providerID = name, seg.Element(9)
			case "PR":
				cur.payerName, cur.payerID = name, seg.Element(9)
			default:
				continue
			}
			cur.touched = true

		case "TRN":
			cur.traceNumber = seg.Element(2)
			cur.touched = true

		case "REF":
			switch seg.Element(1) {
			case "EJ", "BLT", "D9":
				cur.claimID = seg.Element(2)
			case "1K":
				cur.payerClaimID = seg.Element(2)
			default:
				continue
			}
			cur.touched = true

		case "DTP":
			switch seg.Element(1) {
			case "472":
				cur.serviceDate = FormatDate(seg.Element(3))
			case "050":
				cur.receivedDate = FormatDate(seg.Element(3))
			default:
				continue
			}
			cur.touched = true

		case "AMT":
			if seg.Element(1) == "T3" {
				cur.totalCharge = SafeFloat(seg.Element(2), 0)
				cur.touched = true
			}

		case "STC":
			if !response {
				continue
			}
			parts := env.SubElements(seg.Element(1))
			cur.statusCategory = parts[0]
			cur.statusCode = element(parts, 1)
			cur.statusEntity = element(parts, 2)
			cur.statusDate = FormatDate(seg.Element(2))
			if seg.Len() > 4 {
				cur.totalCharge = SafeFloat(seg.Element(4), 0)
			}
			cur.touched = true

		case "SE":
			if cur.touched {
				entries = append(entries, cur)
			}
			cur = statusEntry{totalCharge: ""}
		}
	}

	if len(entries) == 0 {
		return
	}

	headers := []string{
		"Patient Name", "Patient ID", "Provider Name", "Provider ID",
		"Payer Name", "Claim ID", "Service Date", "Total Charge", "Trace Number",
	}
	label := "276 Status Request"
	if response {
		label = "277 Claim Status"
		headers = append(headers, "Status Category", "Status Code", "Status Date", "Payer Claim ID")
	}

	// Total Charge is column 8 in both layouts; the 277 columns follow it.
	sh := set.get(label, headers, 8)
	for _, e := range entries {
		row := []any{
			e.patientName, e.patientID, e.providerName, e.providerID,
			e.payerName, e.claimID, e.serviceDate, e.totalCharge, e.traceNumber,
		}
		if response {
			row = append(row, e.statusCategory, e.statusCode, e.statusDate, e.payerClaimID)
		}
		sh.Append(row...)
	}
}

// =========== 834 enrollment ===========

type member struct {
	name                string
	memberID            string
	dob                 string
	gender              string
	subscriberIndicator string
	relationship        string
	maintenanceType     string
	maintenanceCode     string
	maintenanceDate     string
	benefitStatus       string
	planCode            string
	coverageType        string
	coverageStart       string
	coverageEnd         string
	address             string
	cityStateZip        string
	sponsor             string
}

func decodeEnrollment(_ *Envelope, txn Transaction, set *sheetSet) {
	var (
		members []*member
		current *member
		sponsor string
	)

	for _, seg := range txn.Segments {
		id := seg.ID()
		if id == "N1" {
			if seg.Element(1) == "P5" {
				sponsor = seg.Element(2)
			}
			continue
		}
		if id == "INS" {
			current = &member{
				sponsor:             sponsor,
				subscriberIndicator: seg.Element(1),
				relationship:        seg.Element(2),
				maintenanceType:     seg.Element(3),
				benefitStatus:       seg.Element(5),
			}
			members = append(members, current)
			continue
		}
		if current == nil {
			continue
		}

		switch id {
		case "NM1":
			if seg.Element(1) == "IL" {
				current.name = personName(seg.Element(3), seg.Element(4))
				current.memberID = seg.Element(9)
			}
		case "DMG":
			current.dob = FormatDate(seg.Element(2))
			current.gender = describe(genders, seg.Element(3))
		case "DTP":
			date := FormatDate(seg.Element(3))
			switch seg.Element(1) {
			case "336":
				current.coverageStart = date
			case "337":
				current.coverageEnd = date
			case "303":
				current.maintenanceDate = date
			}
		case "HD":
			current.maintenanceCode = seg.Element(1)
			current.planCode = seg.Element(3)
			current.coverageType = seg.Element(5)
		case "N3":
			current.address = seg.Element(1)
		case "N4":
			current.cityStateZip = strings.Trim(seg.Element(1)+", "+seg.Element(2)+" "+seg.Element(3), ", ")
		}
	}

	if len(members) == 0 {
		return
	}

	sh := set.get("834 Enrollment", []string{
		"Name", "Member ID", "Date of Birth", "Gender",
		"Subscriber?", "Relationship", "Maintenance Type", "Benefit Status",
		"Plan Code", "Coverage Type", "Coverage Start", "Coverage End",
		"Address", "City/State/Zip", "Sponsor",
	})
	for _, m := range members {
		sh.Append(m.name, m.memberID, m.dob, m.gender,
			m.subscriberIndicator, m.relationship, m.maintenanceType, m.benefitStatus,
			m.planCode, m.coverageType, m.coverageStart, m.coverageEnd,
			m.address, m.cityStateZip, m.sponsor)
	}
}

// =========== 278 prior authorization ===========

type authEntry struct {
	patientName       string
	patientID         string
	providerName      string
	providerID        string
	payerName         string
	traceNumber       string
	requestCategory   string
	certificationType string
	serviceType       string
	procedureCode     string
	diagnoses         []string
	serviceDate       string
	decision          string
	authNumber        string
	touched           bool
}

func decodePriorAuth(env *Envelope, txn Transaction, set *sheetSet) {
	var (
		entries []authEntry
		cur     authEntry
	)

	for _, seg := range txn.Segments {
		switch seg.ID() {
		case "NM1":
			name := personName(seg.Element(3), seg.Element(4))
			switch seg.Element(1) {
			case "IL", "QC":
				cur.patientName, cur.patientID = name, seg.Element(9)
			case "85", "1P":
				cur.providerName, cur.providerID = name, seg.Element(9)
			case "PR":
				cur.payerName = name
			default:
				continue
			}
			cur.touched = true
		case "TRN":
			cur.traceNumber = seg.Element(2)
			cur.touched = true
		case "UM":
			cur.requestCategory = seg.Element(1)
			cur.certificationType = seg.Element(2)
			cur.serviceType = seg.Element(3)
			cur.touched = true
		case "HCR":
			cur.decision = seg.Element(1)
			cur.authNumber = seg.Element(2)
			cur.touched = true
		case "SV1", "SV2":
			cur.procedureCode = env.Sub(seg.Element(1), 1)
			cur.touched = true
		case "DTP":
			if seg.Element(1) == "472" {
				cur.serviceDate = FormatDate(seg.Element(3))
				cur.touched = true
			}
		case "HI":
			for _, el := range seg.Elements[1:] {
				if code := env.Sub(el, 1); el != "" && code != "" {
					cur.diagnoses = append(cur.diagnoses, code)
					cur.touched = true
				}
			}
		case "SE":
			if cur.touched {
				entries = append(entries, cur)
			}
			cur = authEntry{}
		}
	}

	if len(entries) == 0 {
		return
	}

	sh := set.get("278 Prior Auth", []string{
		"Patient Name", "Patient ID", "Provider Name", "Provider ID",
		"Payer Name", "Trace Number",
		"Request Category", "Certification Type", "Service Type",
		"Procedure Code", "Diagnosis Codes", "Service Date",
		"Decision", "Auth Number",
	})
	for _, e := range entries {
		sh.Append(e.patientName, e.patientID, e.providerName, e.providerID,
			e.payerName, e.traceNumber,
			e.requestCategory, e.certificationType, e.serviceType,
			e.procedureCode, strings.Join(e.diagnoses, ", "), e.serviceDate,
			e.decision, e.authNumber)
	}
}

// =========== 997/999 acknowledgment ===========

var ackStatus = map[string]string{
	"A": "Accepted",
	"E": "Accepted with Errors",
	"R": "Rejected",
	"P": "Partially Accepted",
}

type ack struct {
	functionalID string
	groupControl string
	status       string
	txnStatus    string
	included     string
	received     string
	accepted     string
}

func decodeAcknowledgment(_ *Envelope, txn Transaction, set *sheetSet) {
	var acks []*ack
	last := func() *ack {
		if len(acks) == 0 {
			return nil
		}
		return acks[len(acks)-1]
	}

	for _, seg := range txn.Segments {
		switch seg.ID() {
		case "AK1":
			acks = append(acks, &ack{
				functionalID: seg.Element(1),
				groupControl: seg.Element(2),
			})
		case "AK9":
			if a := last(); a != nil {
				a.status = describe(ackStatus, seg.Element(1))
				a.included = seg.Element(2)
				a.received = seg.Element(3)
				a.accepted = seg.Element(4)
			}
		case "AK5":
			if a := last(); a != nil {
				a.status = describe(ackStatus, seg.Element(1))
			}
		case "IK5":
			if a := last(); a != nil {
				a.txnStatus = describe(ackStatus, seg.Element(1))
			}
		}
	}

	if len(acks) == 0 {
		return
	}

	label := "997 Acknowledgment"
	if txn.Code == "999" {
		label = "999 Acknowledgment"
	}
	sh := set.get(label, []string{
		"Functional ID", "Group Control #", "Status",
		"Included Txns", "Received Txns", "Accepted Txns",
	})
	for _, a := range acks {
		status := a.status
		if status == "" {
			status = a.txnStatus
		}
		sh.Append(a.functionalID, a.groupControl, status, a.included, a.received, a.accepted)
	}
}

// =========== raw fallback ===========

func decodeRaw(env *Envelope, txn Transaction, set *sheetSet) {
	sh := set.get("X12 "+txn.Code+" Segments", []string{"Segment ID", "Elements"})
	for _, seg := range txn.Segments {
		rest := ""
		if seg.Len() > 1 {
			rest = strings.Join(seg.Elements[1:], env.ElementSep)
		}
		sh.Append(seg.Elements[0], rest)
	}
}

// TransactionName describes an X12 transaction set code.
func TransactionName(code string) string {
	if name, ok := transactionNames[code]; ok {
		return name
	}
	return "X12 " + code
}
