package x12

import (
	"fmt"
	"strings"

	"github.com/ehr/interchange/internal/platform/sheet"
)

// Payment is the 835 header: how and when the payer paid.
type Payment struct {
	Amount      float64
	Method      string
	Date        string
	TraceNumber string
	PayerName   string
	PayerID     string
	PayeeName   string
	PayeeID     string
}

// Adjustment is one reason-coded CAS amount.
type Adjustment struct {
	GroupCode         string
	GroupDescription  string
	ReasonCode        string
	ReasonDescription string
	Amount            float64
	Quantity          float64
}

// RemitServiceLine is an SVC loop within an 835 claim.
type RemitServiceLine struct {
	ClaimID               string
	ProcedureQualifier    string
	ProcedureCode         string
	Modifiers             string
	ChargeAmount          float64
	PaymentAmount         float64
	RevenueCode           string
	UnitsPaid             float64
	OriginalProcedureCode string
	OriginalUnits         float64
	ServiceDate           string
	Adjustments           []Adjustment
	RemarkCodes           []string
}

// RemitClaim is a CLP loop.
type RemitClaim struct {
	PatientControlNumber  string
	StatusCode            string
	Status                string
	TotalCharge           float64
	PaymentAmount         float64
	PatientResponsibility float64
	FilingIndicator       string
	PayerClaimNumber      string

	PatientLast            string
	PatientFirst           string
	InsuredLast            string
	InsuredFirst           string
	CorrectedInsuredLast   string
	CorrectedInsuredFirst  string
	RenderingProviderLast  string
	RenderingProviderFirst string
	RenderingProviderNPI   string

	ReceivedDate           string
	StatementFrom          string
	StatementTo            string
	CoverageExpirationDate string

	Adjustments  []Adjustment
	ServiceLines []RemitServiceLine
}

// Remittance is one decoded 835 transaction.
type Remittance struct {
	Payment Payment
	Claims  []RemitClaim
}

type remitContext int

const (
	remitHeader remitContext = iota
	remitClaim
	remitService
)

type remitState struct {
	env     *Envelope
	out     Remittance
	claim   *RemitClaim
	line    *RemitServiceLine
	context remitContext
}

// DecodeRemittances decodes every transaction in env as an 835.
func DecodeRemittances(env *Envelope) []Remittance {
	var out []Remittance
	for _, txn := range env.Transactions() {
		out = append(out, decodeRemittance(env, txn.Segments))
	}
	return out
}

func decodeRemittance(env *Envelope, segments []Segment) Remittance {
	st := &remitState{env: env}
	for _, seg := range segments {
		st.apply(seg)
	}
	st.flushClaim()
	return st.out
}

func (st *remitState) flushLine() {
	if st.line != nil && st.claim != nil {
		st.claim.ServiceLines = append(st.claim.ServiceLines, *st.line)
	}
	st.line = nil
}

func (st *remitState) flushClaim() {
	st.flushLine()
	if st.claim != nil {
		st.out.Claims = append(st.out.Claims, *st.claim)
	}
	st.claim = nil
}

func (st *remitState) apply(seg Segment) {
	p := &st.out.Payment

	switch seg.ID() {
	case "BPR":
		p.Amount = SafeFloat(seg.Element(2), 0)
		if seg.Len() > 4 {
			p.Method = describe(paymentMethods, seg.Element(4))
		}
		if seg.Len() > 16 {
			p.Date = FormatDate(seg.Element(16))
		}

	case "TRN":
		if seg.Len() > 2 {
			p.TraceNumber = seg.Element(2)
		}

	case "N1":
		switch seg.Element(1) {
		case "PR":
			p.PayerName, p.PayerID = seg.Element(2), seg.Element(4)
		case "PE":
			p.PayeeName, p.PayeeID = seg.Element(2), seg.Element(4)
		}

	case "CLP":
		st.flushClaim()
		code := seg.Element(2)
		st.claim = &RemitClaim{
			PatientControlNumber:  seg.Element(1),
			StatusCode:            code,
			Status:                describe(claimStatus, code),
			TotalCharge:           SafeFloat(seg.Element(3), 0),
			PaymentAmount:         SafeFloat(seg.Element(4), 0),
			PatientResponsibility: SafeFloat(seg.Element(5), 0),
			FilingIndicator:       seg.Element(6),
			PayerClaimNumber:      seg.Element(7),
		}
		st.context = remitClaim

	case "NM1":
		if st.claim == nil {
			return
		}
		last, first := seg.Element(3), seg.Element(4)
		switch seg.Element(1) {
		case "QC":
			st.claim.PatientLast, st.claim.PatientFirst = last, first
		case "IL":
			st.claim.InsuredLast, st.claim.InsuredFirst = last, first
		case "74":
			st.claim.CorrectedInsuredLast, st.claim.CorrectedInsuredFirst = last, first
		case "82":
			st.claim.RenderingProviderLast, st.claim.RenderingProviderFirst = last, first
			st.claim.RenderingProviderNPI = seg.Element(9)
		}

	case "SVC":
		if st.claim == nil {
			return
		}
		st.flushLine()
		proc := st.env.SubElements(seg.Element(1))
		line := &RemitServiceLine{
			ClaimID:       st.claim.PatientControlNumber,
			ChargeAmount:  SafeFloat(seg.Element(2), 0),
			PaymentAmount: SafeFloat(seg.Element(3), 0),
			RevenueCode:   seg.Element(4),
			UnitsPaid:     SafeFloat(seg.Element(5), 0),
			OriginalUnits: SafeFloat(seg.Element(7), 0),
		}
		line.ProcedureQualifier = proc[0]
		if len(proc) > 1 {
			line.ProcedureCode = proc[1]
		}
		if len(proc) > 2 {
			line.Modifiers = strings.Join(proc[2:], ":")
		}
		if orig := seg.Element(6); orig != "" {
			line.OriginalProcedureCode = st.env.Sub(orig, 1)
		}
		st.line = line
		st.context = remitService

	case "CAS":
		for _, adj := range ParseAdjustments(seg) {
			switch {
			case st.context == remitService && st.line != nil:
				st.line.Adjustments = append(st.line.Adjustments, adj)
			case st.claim != nil:
				st.claim.Adjustments = append(st.claim.Adjustments, adj)
			}
		}

	case "DTM":
		st.applyDate(seg.Element(1), FormatDate(seg.Element(2)))

	case "LQ":
		if st.line == nil {
			return
		}
		if q := seg.Element(1); q == "HE" || q == "RX" {
			st.line.RemarkCodes = append(st.line.RemarkCodes, seg.Element(2))
		}
	}
}

// applyDate routes a DTM by qualifier and by the loop it appears in.
func (st *remitState) applyDate(qualifier, date string) {
	if qualifier == "405" {
		if st.out.Payment.Date == "" {
			st.out.Payment.Date = date
		}
		return
	}
	if st.claim == nil {
		return
	}

	switch st.context {
	case remitService:
		if st.line == nil {
			return
		}
		switch qualifier {
		case "472", "150", "151":
			st.line.ServiceDate = date
		}
	case remitClaim:
		switch qualifier {
		case "050":
			st.claim.ReceivedDate = date
		case "232":
			st.claim.StatementFrom = date
		case "233":
			st.claim.StatementTo = date
		case "036":
			st.claim.CoverageExpirationDate = date
		}
	}
}

// ParseAdjustments reads the (reason, amount, quantity) triplets of a CAS
// segment starting at element 2. Reading stops at the first empty reason
// or when the elements run out.
//
// Some senders omit quantities and write reason/amount pairs, as in
// CAS*CO*45*50.00*2*10.00. When the element count after the group code is
// even and one more than a multiple of three, triplets would strand the
// last reason without an amount, so the segment is read in steps of two
// with zero quantities instead.
func ParseAdjustments(seg Segment) []Adjustment {
	group := seg.Element(1)
	groupDesc := describe(casGroups, group)

	step := 3
	if n := seg.Len() - 2; n > 0 && n%3 == 1 && n%2 == 0 {
		step = 2
	}

	var out []Adjustment
	for i := 2; i+1 < seg.Len(); i += step {
		reason := seg.Element(i)
		if reason == "" {
			break
		}
		adj := Adjustment{
			GroupCode:         group,
			GroupDescription:  groupDesc,
			ReasonCode:        reason,
			ReasonDescription: reasonCodes[reason],
			Amount:            SafeFloat(seg.Element(i+1), 0),
		}
		if step == 3 {
			adj.Quantity = SafeFloat(seg.Element(i+2), 0)
		}
		out = append(out, adj)
	}
	return out
}

// AdjustmentTotals sums a claim's adjustments at both claim and service
// level into CO, PR and everything else.
func (c RemitClaim) AdjustmentTotals() (co, pr, other float64) {
	add := func(adjs []Adjustment) {
		for _, a := range adjs {
			switch a.GroupCode {
			case "CO":
				co += a.Amount
			case "PR":
				pr += a.Amount
			default:
				other += a.Amount
			}
		}
	}
	add(c.Adjustments)
	for _, l := range c.ServiceLines {
		add(l.Adjustments)
	}
	return co, pr, other
}

// RemittanceSheets flattens decoded 835 transactions into the payment,
// claim, service line and adjustment sheets.
func RemittanceSheets(remits []Remittance) []sheet.Sheet {
	payments := sheet.New("835 Payment Summary", []string{
		"Trace Number", "Payment Amount", "Payment Method", "Payment Date",
		"Payer Name", "Payer ID", "Payee Name", "Payee ID",
	}, 2)
	claims := sheet.New("835 Claims", []string{
		"Trace Number", "Patient Control Number", "Claim Status",
		"Patient Name", "Insured Name",
		"Total Charges", "Payment Amount", "Patient Responsibility",
		"Payer Claim Number", "Filing Indicator",
		"Rendering Provider", "Rendering Provider NPI",
		"Statement From", "Statement To", "Claim Received Date",
		"Total Adjustments (CO)", "Total Adjustments (PR)", "Total Adjustments (OA)",
	}, 6, 7, 8, 16, 17, 18)
	lines := sheet.New("835 Service Lines", []string{
		"Patient Control Number", "Procedure Code", "Modifiers", "Revenue Code",
		"Charge Amount", "Payment Amount", "Units Paid", "Service Date",
		"Original Procedure Code", "Original Units",
		"Adjustment Groups", "Remark Codes",
	}, 5, 6)
	adjustments := sheet.New("835 Adjustments", []string{
		"Patient Control Number", "Level", "Group Code", "Group Description",
		"Reason Code", "Reason Description", "Adjustment Amount", "Quantity",
	}, 7)

	for _, r := range remits {
		p := r.Payment
		payments.Append(p.TraceNumber, p.Amount, p.Method, p.Date,
			p.PayerName, p.PayerID, p.PayeeName, p.PayeeID)

		for _, c := range r.Claims {
			co, pr, oa := c.AdjustmentTotals()
			claims.Append(
				p.TraceNumber, c.PatientControlNumber, c.Status,
				personName(c.PatientLast, c.PatientFirst),
				personName(c.InsuredLast, c.InsuredFirst),
				c.TotalCharge, c.PaymentAmount, c.PatientResponsibility,
				c.PayerClaimNumber, c.FilingIndicator,
				personName(c.RenderingProviderLast, c.RenderingProviderFirst),
				c.RenderingProviderNPI,
				c.StatementFrom, c.StatementTo, c.ReceivedDate,
				co, pr, oa,
			)

			for _, a := range c.Adjustments {
				adjustments.Append(c.PatientControlNumber, "Claim",
					a.GroupCode, a.GroupDescription, a.ReasonCode, a.ReasonDescription,
					a.Amount, a.Quantity)
			}

			for _, l := range c.ServiceLines {
				lines.Append(
					l.ClaimID, l.ProcedureCode, l.Modifiers, l.RevenueCode,
					l.ChargeAmount, l.PaymentAmount, l.UnitsPaid, l.ServiceDate,
					l.OriginalProcedureCode, l.OriginalUnits,
					adjustmentSummary(l.Adjustments), strings.Join(l.RemarkCodes, ", "),
				)
				level := fmt.Sprintf("Service (%s)", l.ProcedureCode)
				for _, a := range l.Adjustments {
					adjustments.Append(c.PatientControlNumber, level,
						a.GroupCode, a.GroupDescription, a.ReasonCode, a.ReasonDescription,
						a.Amount, a.Quantity)
				}
			}
		}
	}

	return sheet.Collect(payments, claims, lines, adjustments)
}

func adjustmentSummary(adjs []Adjustment) string {
	parts := make([]string, 0, len(adjs))
	for _, a := range adjs {
		parts = append(parts, fmt.Sprintf("%s-%s: $%.2f", a.GroupCode, a.ReasonCode, a.Amount))
	}
	return strings.Join(parts, "; ")
}
