package hl7v2

import (
	"strconv"
	"strings"
)

// Header holds the MSH values reported for each message.
type Header struct {
	MessageType       string
	TriggerEvent      string
	MessageStructure  string
	DateTime          string
	ControlID         string
	Version           string
	SendingApp        string
	SendingFacility   string
	ReceivingApp      string
	ReceivingFacility string
}

// Patient is projected from PID.
type Patient struct {
	Name          string
	ID            string
	AllIDs        string
	DateOfBirth   string
	Gender        string
	Address       string
	HomePhone     string
	AccountNumber string
	SSN           string
}

// Visit is projected from PV1.
type Visit struct {
	PatientClass         string
	Location             string
	Room                 string
	Bed                  string
	AttendingDoctor      string
	ReferringDoctor      string
	AdmittingDoctor      string
	HospitalService      string
	VisitNumber          string
	AdmitDate            string
	DischargeDate        string
	DischargeDisposition string
	AdmitSource          string
}

// Order pairs the i-th ORC with the i-th OBR. ORC values win when both
// carry a field.
type Order struct {
	Control             string
	PlacerNumber        string
	FillerNumber        string
	Status              string
	ServiceID           string
	ServiceName         string
	OrderingProvider    string
	OrderDateTime       string
	ObservationDateTime string
	ResultsDateTime     string
	ResultStatus        string
	Reason              string
}

// Observation is projected from OBX.
type Observation struct {
	SetID          string
	ValueType      string
	ID             string
	Name           string
	SubID          string
	Value          string
	Units          string
	ReferenceRange string
	AbnormalFlags  string
	ResultStatus   string
	DateTime       string
}

// Diagnosis is projected from DG1.
type Diagnosis struct {
	SetID       string
	Code        string
	Description string
	DateTime    string
	Type        string
}

// Insurance is projected from IN1.
type Insurance struct {
	SetID          string
	PlanID         string
	PlanName       string
	CompanyID      string
	CompanyName    string
	GroupNumber    string
	GroupName      string
	EffectiveDate  string
	ExpirationDate string
	InsuredName    string
	PolicyNumber   string
}

// Allergy is projected from AL1.
type Allergy struct {
	SetID    string
	Type     string
	Allergen string
	Severity string
	Reaction string
}

// Financial is projected from FT1. Amounts are float64 when numeric.
type Financial struct {
	Date                 string
	Type                 string
	Code                 string
	Description          string
	Quantity             string
	AmountExtended       any
	AmountUnit           any
	ProcedureCode        string
	ProcedureDescription string
	DiagnosisCode        string
}

// Schedule is projected from SCH.
type Schedule struct {
	PlacerID      string
	FillerID      string
	Reason        string
	Type          string
	StartDateTime string
	EndDateTime   string
	Duration      string
	FillerStatus  string
}

// Contents is everything extracted from one message.
type Contents struct {
	Header       Header
	Patients     []Patient
	Visits       []Visit
	Orders       []Order
	Observations []Observation
	Diagnoses    []Diagnosis
	Insurance    []Insurance
	Allergies    []Allergy
	Financials   []Financial
	Schedules    []Schedule
}

// Decode extracts the typed records of a parsed message.
func Decode(msg *Message) Contents {
	c := Contents{Header: decodeHeader(msg)}

	for _, s := range msg.GetSegments("PID") {
		c.Patients = append(c.Patients, decodePatient(&s))
	}
	for _, s := range msg.GetSegments("PV1") {
		c.Visits = append(c.Visits, decodeVisit(&s))
	}
	c.Orders = decodeOrders(msg.GetSegments("ORC"), msg.GetSegments("OBR"))
	for _, s := range msg.GetSegments("OBX") {
		c.Observations = append(c.Observations, decodeObservation(&s))
	}
	for _, s := range msg.GetSegments("DG1") {
		c.Diagnoses = append(c.Diagnoses, decodeDiagnosis(&s))
	}
	for _, s := range msg.GetSegments("IN1") {
		c.Insurance = append(c.Insurance, decodeInsurance(&s))
	}
	for _, s := range msg.GetSegments("AL1") {
		c.Allergies = append(c.Allergies, decodeAllergy(&s))
	}
	for _, s := range msg.GetSegments("FT1") {
		c.Financials = append(c.Financials, decodeFinancial(&s))
	}
	for _, s := range msg.GetSegments("SCH") {
		c.Schedules = append(c.Schedules, decodeSchedule(&s))
	}
	return c
}

func decodeHeader(msg *Message) Header {
	h := Header{
		ControlID:         msg.ControlID,
		Version:           msg.Version,
		SendingApp:        msg.SendingApp,
		SendingFacility:   msg.SendingFac,
		ReceivingApp:      msg.ReceivingApp,
		ReceivingFacility: msg.ReceivingFac,
	}
	if msh := msg.GetSegment("MSH"); msh != nil {
		h.MessageType = msh.GetComponent(9, 1)
		h.TriggerEvent = msh.GetComponent(9, 2)
		h.MessageStructure = msh.GetComponent(9, 3)
		h.DateTime = FormatDateTime(msh.GetField(7))
	}
	return h
}

func decodePatient(pid *Segment) Patient {
	var ids []string
	for _, rep := range pid.Repetitions(3) {
		id, kind := component(rep, 1), component(rep, 5)
		switch {
		case id == "":
		case kind != "":
			ids = append(ids, id+" ("+kind+")")
		default:
			ids = append(ids, id)
		}
	}

	var addr []string
	for _, i := range []int{1, 3, 4, 5} {
		if v := pid.GetComponent(11, i); v != "" {
			addr = append(addr, v)
		}
	}

	return Patient{
		Name:          personName(pid.GetComponent(5, 1), pid.GetComponent(5, 2), pid.GetComponent(5, 3)),
		ID:            pid.GetComponent(3, 1),
		AllIDs:        strings.Join(ids, "; "),
		DateOfBirth:   FormatDate(pid.GetField(7)),
		Gender:        describe(genders, pid.GetField(8)),
		Address:       strings.Join(addr, ", "),
		HomePhone:     pid.GetComponent(13, 1),
		AccountNumber: pid.GetComponent(18, 1),
		SSN:           pid.GetField(19),
	}
}

func decodeVisit(pv1 *Segment) Visit {
	return Visit{
		PatientClass:         describe(patientClasses, pv1.GetField(2)),
		Location:             pv1.GetComponent(3, 1),
		Room:                 pv1.GetComponent(3, 2),
		Bed:                  pv1.GetComponent(3, 3),
		AttendingDoctor:      providerName(pv1, 7),
		ReferringDoctor:      providerName(pv1, 8),
		HospitalService:      pv1.GetField(10),
		AdmitSource:          pv1.GetField(14),
		AdmittingDoctor:      providerName(pv1, 17),
		VisitNumber:          pv1.GetComponent(19, 1),
		DischargeDisposition: pv1.GetField(36),
		AdmitDate:            FormatDateTime(pv1.GetField(44)),
		DischargeDate:        FormatDateTime(pv1.GetField(45)),
	}
}

func decodeOrders(orcs, obrs []Segment) []Order {
	n := max(len(orcs), len(obrs))
	orders := make([]Order, 0, n)
	for i := 0; i < n; i++ {
		var o Order
		if i < len(orcs) {
			orc := &orcs[i]
			o.Control = withDescription(orderControls, orc.GetField(1))
			o.PlacerNumber = orc.GetComponent(2, 1)
			o.FillerNumber = orc.GetComponent(3, 1)
			o.Status = orc.GetField(5)
			o.OrderDateTime = FormatDateTime(orc.GetField(9))
			o.OrderingProvider = providerName(orc, 12)
		}
		if i < len(obrs) {
			obr := &obrs[i]
			if o.PlacerNumber == "" {
				o.PlacerNumber = obr.GetComponent(2, 1)
			}
			if o.FillerNumber == "" {
				o.FillerNumber = obr.GetComponent(3, 1)
			}
			o.ServiceID = obr.GetComponent(4, 1)
			o.ServiceName = obr.GetComponent(4, 2)
			o.ObservationDateTime = FormatDateTime(obr.GetField(7))
			if o.OrderingProvider == "" {
				o.OrderingProvider = providerName(obr, 16)
			}
			o.ResultsDateTime = FormatDateTime(obr.GetField(22))
			o.ResultStatus = withDescription(resultStatuses, obr.GetField(25))
			o.Reason = obr.FirstComponent(31, 2, 1)
		}
		orders = append(orders, o)
	}
	return orders
}

func decodeObservation(obx *Segment) Observation {
	o := Observation{
		SetID:          obx.GetField(1),
		ValueType:      obx.GetField(2),
		ID:             obx.GetComponent(3, 1),
		Name:           obx.GetComponent(3, 2),
		SubID:          obx.GetField(4),
		Value:          obx.GetField(5),
		Units:          obx.GetComponent(6, 1),
		ReferenceRange: obx.GetField(7),
		AbnormalFlags:  obx.GetField(8),
		ResultStatus:   describe(resultStatuses, obx.GetField(11)),
		DateTime:       FormatDateTime(obx.GetField(14)),
	}
	switch o.ValueType {
	case "CE", "CWE", "CNE":
		o.Value = obx.FirstComponent(5, 2, 1)
	}
	return o
}

func decodeDiagnosis(dg1 *Segment) Diagnosis {
	d := Diagnosis{
		SetID:       dg1.GetField(1),
		Code:        dg1.GetComponent(3, 1),
		Description: dg1.GetComponent(3, 2),
		DateTime:    FormatDateTime(dg1.GetField(5)),
		Type:        describe(diagnosisTypes, dg1.GetField(6)),
	}
	if d.Description == "" {
		d.Description = dg1.GetField(4)
	}
	return d
}

func decodeInsurance(in1 *Segment) Insurance {
	ins := Insurance{
		SetID:          in1.GetField(1),
		PlanID:         in1.GetComponent(2, 1),
		PlanName:       in1.GetComponent(2, 2),
		CompanyID:      in1.GetComponent(3, 1),
		CompanyName:    in1.GetComponent(4, 1),
		GroupNumber:    in1.GetField(8),
		GroupName:      in1.GetComponent(9, 1),
		EffectiveDate:  FormatDate(in1.GetField(12)),
		ExpirationDate: FormatDate(in1.GetField(13)),
		PolicyNumber:   in1.GetField(36),
	}
	if ins.CompanyName == "" {
		ins.CompanyName = in1.GetField(4)
	}
	if ins.GroupName == "" {
		ins.GroupName = in1.GetField(9)
	}
	if in1.GetField(16) != "" {
		ins.InsuredName = personName(in1.GetComponent(16, 1), in1.GetComponent(16, 2), in1.GetComponent(16, 3))
	}
	return ins
}

func decodeAllergy(al1 *Segment) Allergy {
	return Allergy{
		SetID:    al1.GetField(1),
		Type:     describe(allergenTypes, al1.GetField(2)),
		Allergen: al1.FirstComponent(3, 2, 1),
		Severity: describe(severities, al1.GetField(4)),
		Reaction: al1.GetField(5),
	}
}

func decodeFinancial(ft1 *Segment) Financial {
	return Financial{
		Date:                 FormatDateTime(ft1.GetField(4)),
		Type:                 ft1.GetField(6),
		Code:                 ft1.GetComponent(7, 1),
		Description:          ft1.GetComponent(7, 2),
		Quantity:             ft1.GetField(10),
		AmountExtended:       amount(ft1.GetField(11)),
		AmountUnit:           amount(ft1.GetField(12)),
		DiagnosisCode:        ft1.GetComponent(19, 1),
		ProcedureCode:        ft1.GetComponent(25, 1),
		ProcedureDescription: ft1.GetComponent(25, 2),
	}
}

func decodeSchedule(sch *Segment) Schedule {
	s := Schedule{
		PlacerID:     sch.GetComponent(1, 1),
		FillerID:     sch.GetComponent(2, 1),
		Reason:       sch.FirstComponent(7, 2, 1),
		Type:         sch.FirstComponent(8, 2, 1),
		FillerStatus: sch.GetField(25),
	}
	// Only the first timing repetition is reported.
	if reps := sch.Repetitions(11); len(reps) > 0 {
		s.Duration = component(reps[0], 3)
		s.StartDateTime = FormatDateTime(component(reps[0], 4))
		s.EndDateTime = FormatDateTime(component(reps[0], 5))
	}
	return s
}

// personName renders an XPN as "Last, First Middle".
func personName(last, first, middle string) string {
	name := last
	if first != "" {
		name = strings.TrimPrefix(last+", "+first, ", ")
	}
	if middle != "" {
		name += " " + middle
	}
	return name
}

// providerName renders an XCN field (id^last^first) as "Last, First",
// falling back to the last name and then the id number.
func providerName(s *Segment, field int) string {
	id, last, first := s.GetComponent(field, 1), s.GetComponent(field, 2), s.GetComponent(field, 3)
	switch {
	case last != "" && first != "":
		return last + ", " + first
	case last != "":
		return last
	}
	return id
}

func amount(v string) any {
	if v == "" {
		return ""
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return v
	}
	return f
}
