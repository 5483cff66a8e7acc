package hl7v2

import "github.com/ehr/interchange/internal/platform/sheet"

// Parse decodes single or batched HL7v2 content into sheets. The
// "HL7 Messages" sheet is always present; every other sheet flattens one
// record kind across all messages, tagged with the message control id.
func Parse(content string) ([]sheet.Sheet, error) {
	msgs, err := ParseBatch(content)
	if err != nil {
		return nil, err
	}
	decoded := make([]Contents, len(msgs))
	for i, m := range msgs {
		decoded[i] = Decode(m)
	}
	return Sheets(decoded), nil
}

// Sheets renders decoded messages.
func Sheets(msgs []Contents) []sheet.Sheet {
	messages := sheet.New("HL7 Messages", []string{
		"Message Type", "Trigger Event", "Message Date/Time",
		"Message Control ID", "Version",
		"Sending Application", "Sending Facility",
		"Receiving Application", "Receiving Facility",
	})
	patients := sheet.New("HL7 Patients", []string{
		"Message Control ID", "Patient Name", "Patient ID",
		"All Patient IDs", "Date of Birth", "Gender",
		"Address", "Home Phone", "Account Number", "SSN",
	})
	visits := sheet.New("HL7 Visits", []string{
		"Message Control ID", "Patient Class", "Location",
		"Room", "Bed", "Attending Doctor", "Referring Doctor",
		"Admitting Doctor", "Hospital Service", "Visit Number",
		"Admit Date", "Discharge Date", "Discharge Disposition",
		"Admit Source",
	})
	orders := sheet.New("HL7 Orders", []string{
		"Message Control ID", "Order Control", "Placer Order #",
		"Filler Order #", "Order Status", "Service ID",
		"Service Name", "Ordering Provider", "Order Date/Time",
		"Observation Date/Time", "Results Date/Time",
		"Result Status", "Reason",
	})
	results := sheet.New("HL7 Results", []string{
		"Message Control ID", "Set ID", "Observation ID",
		"Observation Name", "Value", "Units",
		"Reference Range", "Abnormal Flags", "Result Status",
		"Observation Date/Time", "Value Type",
	})
	diagnoses := sheet.New("HL7 Diagnoses", []string{
		"Message Control ID", "Set ID", "Diagnosis Code",
		"Diagnosis Description", "Diagnosis Type", "Diagnosis Date",
	})
	insurance := sheet.New("HL7 Insurance", []string{
		"Message Control ID", "Set ID", "Plan ID", "Plan Name",
		"Company ID", "Company Name", "Group Number", "Group Name",
		"Insured Name", "Policy Number",
		"Plan Effective Date", "Plan Expiration Date",
	})
	allergies := sheet.New("HL7 Allergies", []string{
		"Message Control ID", "Set ID", "Allergen Type",
		"Allergen", "Severity", "Reaction",
	})
	financial := sheet.New("HL7 Financial", []string{
		"Message Control ID", "Transaction Date", "Transaction Type",
		"Transaction Code", "Description", "Quantity",
		"Amount (Extended)", "Amount (Unit)",
		"Procedure Code", "Procedure Description", "Diagnosis Code",
	}, 7, 8)
	scheduling := sheet.New("HL7 Scheduling", []string{
		"Message Control ID", "Placer Appointment ID",
		"Filler Appointment ID", "Appointment Reason",
		"Appointment Type", "Start Date/Time", "End Date/Time",
		"Duration", "Filler Status",
	})

	for _, m := range msgs {
		h := m.Header
		id := h.ControlID
		messages.Append(h.MessageType, h.TriggerEvent, h.DateTime, h.ControlID, h.Version,
			h.SendingApp, h.SendingFacility, h.ReceivingApp, h.ReceivingFacility)

		for _, p := range m.Patients {
			patients.Append(id, p.Name, p.ID, p.AllIDs, p.DateOfBirth, p.Gender,
				p.Address, p.HomePhone, p.AccountNumber, p.SSN)
		}
		for _, v := range m.Visits {
			visits.Append(id, v.PatientClass, v.Location, v.Room, v.Bed,
				v.AttendingDoctor, v.ReferringDoctor, v.AdmittingDoctor,
				v.HospitalService, v.VisitNumber, v.AdmitDate, v.DischargeDate,
				v.DischargeDisposition, v.AdmitSource)
		}
		for _, o := range m.Orders {
			orders.Append(id, o.Control, o.PlacerNumber, o.FillerNumber, o.Status,
				o.ServiceID, o.ServiceName, o.OrderingProvider, o.OrderDateTime,
				o.ObservationDateTime, o.ResultsDateTime, o.ResultStatus, o.Reason)
		}
		for _, o := range m.Observations {
			results.Append(id, o.SetID, o.ID, o.Name, o.Value, o.Units,
				o.ReferenceRange, o.AbnormalFlags, o.ResultStatus, o.DateTime, o.ValueType)
		}
		for _, d := range m.Diagnoses {
			diagnoses.Append(id, d.SetID, d.Code, d.Description, d.Type, d.DateTime)
		}
		for _, i := range m.Insurance {
			insurance.Append(id, i.SetID, i.PlanID, i.PlanName, i.CompanyID, i.CompanyName,
				i.GroupNumber, i.GroupName, i.InsuredName, i.PolicyNumber,
				i.EffectiveDate, i.ExpirationDate)
		}
		for _, a := range m.Allergies {
			allergies.Append(id, a.SetID, a.Type, a.Allergen, a.Severity, a.Reaction)
		}
		for _, f := range m.Financials {
			financial.Append(id, f.Date, f.Type, f.Code, f.Description, f.Quantity,
				f.AmountExtended, f.AmountUnit, f.ProcedureCode, f.ProcedureDescription, f.DiagnosisCode)
		}
		for _, s := range m.Schedules {
			scheduling.Append(id, s.PlacerID, s.FillerID, s.Reason, s.Type,
				s.StartDateTime, s.EndDateTime, s.Duration, s.FillerStatus)
		}
	}

	return sheet.Collect(messages, patients, visits, orders, results,
		diagnoses, insurance, allergies, financial, scheduling)
}
