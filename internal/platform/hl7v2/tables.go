package hl7v2

var patientClasses = map[string]string{
	"I": "Inpatient",
	"O": "Outpatient",
	"E": "Emergency",
	"P": "Preadmit",
	"R": "Recurring Patient",
	"B": "Obstetrics",
	"N": "Not Applicable",
	"U": "Unknown",
}

var genders = map[string]string{
	"M": "Male",
	"F": "Female",
	"U": "Unknown",
	"O": "Other",
	"A": "Ambiguous",
}

var diagnosisTypes = map[string]string{
	"A": "Admitting",
	"F": "Final",
	"W": "Working",
	"D": "Discharge",
}

var orderControls = map[string]string{
	"NW": "New Order",
	"OK": "Order Accepted",
	"CA": "Cancel",
	"OC": "Order Canceled",
	"DC": "Discontinue",
	"HD": "Hold",
	"RL": "Release Hold",
	"SC": "Status Changed",
	"SN": "Send Number",
	"XO": "Change Order",
	"XR": "Changed as Requested",
	"RE": "Observations to Follow",
	"RU": "Replacement Unsolicited",
	"CH": "Child Order",
	"PA": "Parent Order",
}

var resultStatuses = map[string]string{
	"C": "Correction",
	"D": "Deleted",
	"F": "Final",
	"I": "Specimen In Lab",
	"O": "Order Received",
	"P": "Preliminary",
	"R": "Results Entered",
	"S": "Partial",
	"X": "Canceled",
	"U": "Results Unavailable",
	"W": "Post Original as Wrong",
}

var allergenTypes = map[string]string{
	"DA": "Drug",
	"FA": "Food",
	"EA": "Environmental",
	"MA": "Miscellaneous",
	"LA": "Pollen",
	"AA": "Animal",
}

var severities = map[string]string{
	"SV": "Severe",
	"MO": "Moderate",
	"MI": "Mild",
	"U":  "Unknown",
}

// describe resolves a code, passing unknown codes through unchanged.
func describe(table map[string]string, code string) string {
	if v, ok := table[code]; ok {
		return v
	}
	return code
}

// withDescription renders "CODE (Description)". Unknown codes are
// returned bare.
func withDescription(table map[string]string, code string) string {
	if v, ok := table[code]; ok {
		return code + " (" + v + ")"
	}
	return code
}
