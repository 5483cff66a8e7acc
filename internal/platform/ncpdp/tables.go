package ncpdp

// TransactionCodes names NCPDP transaction codes (A3).
var TransactionCodes = map[string]string{
	"E1": "Eligibility Verification",
	"B1": "Billing",
	"B2": "Reversal",
	"B3": "Rebill",
	"P1": "Prior Auth Request Billing",
	"P2": "Prior Auth Reversal",
	"P3": "Prior Auth Inquiry",
	"P4": "Prior Auth Request Only",
	"N1": "Information Reporting",
	"N2": "Information Reporting Reversal",
	"N3": "Information Reporting Rebill",
	"C1": "Controlled Substance Reporting",
	"C2": "Controlled Substance Reporting Reversal",
	"C3": "Controlled Substance Reporting Rebill",
}

// SegmentNames names segment identifiers (AM01..AM26).
var SegmentNames = map[string]string{
	"AM01": "Patient",
	"AM02": "Pharmacy Provider",
	"AM03": "Prescriber",
	"AM04": "Insurance",
	"AM05": "COB/Other Payments",
	"AM06": "Workers Compensation",
	"AM07": "Claim",
	"AM08": "DUR/PPS",
	"AM09": "Coupon",
	"AM10": "Compound",
	"AM11": "Pricing",
	"AM12": "Prior Authorization",
	"AM13": "Clinical",
	"AM14": "Additional Documentation",
	"AM15": "Facility",
	"AM16": "Narrative",
	"AM20": "Response Message",
	"AM21": "Response Status",
	"AM22": "Response Claim",
	"AM23": "Response Pricing",
	"AM24": "Response DUR/PPS",
	"AM25": "Response Insurance",
	"AM26": "Response Prior Authorization",
}

// FieldNames is the base field-code table. Codes reused by another segment
// are resolved through segmentFieldNames first.
var FieldNames = map[string]string{
	"A1": "BIN Number",
	"A2": "Version/Release Number",
	"A3": "Transaction Code",
	"A4": "Processor Control Number",
	"A9": "Transaction Count",
	"A6": "Service Provider ID Qualifier",
	"A7": "Service Provider ID",
	"A5": "Date of Service",
	"AK": "Software Vendor/Certification ID",
	"CA": "Patient ID Qualifier",
	"CB": "Patient ID",
	"CC": "Date of Birth",
	"CD": "Patient Gender Code",
	"CE": "Patient First Name",
	"CF": "Patient Last Name",
	"CG": "Patient Street Address",
	"CH": "Patient City",
	"CI": "Patient State",
	"CJ": "Patient Zip Code",
	"CK": "Patient Phone Number",
	"CL": "Patient Location Code",
	"CM": "Employer ID",
	"CN": "Smoker/Non-Smoker Code",
	"CX": "Patient Email Address",
	"CY": "Patient Residence",
	"C1": "Group ID",
	"C2": "Cardholder ID",
	"C3": "Person Code",
	"C6": "Patient Relationship Code",
	"C8": "Other Coverage Code",
	"C9": "Eligibility Clarification Code",
	"D1": "Date of Service",
	"D2": "Prescription/Service Reference # Qualifier",
	"D3": "Fill Number",
	"D4": "DAW/Product Selection Code",
	"D5": "Compound Code",
	"D6": "Number of Refills Authorized",
	"D7": "Product/Service ID Qualifier",
	"D8": "Dispensing Status",
	"D9": "Date Prescription Written",
	"DA": "Number of Refills Authorized",
	"DB": "Prescription Origin Code",
	"DC": "Submission Clarification Code",
	"DD": "Quantity Prescribed",
	"DE": "Other Coverage Code",
	"DF": "Unit of Measure",
	"DG": "Pharmacy Service Type",
	"DJ": "Product/Service ID",
	"DK": "Prescription/Service Reference Number",
	"DQ": "Usual & Customary Charge",
	"DR": "Ingredient Cost Submitted",
	"DS": "Dispensing Fee Submitted",
	"DT": "Patient Paid Amount Submitted",
	"DU": "Days Supply",
	"DV": "Gross Amount Due",
	"DW": "Basis of Cost Determination",
	"DX": "Quantity Dispensed",
	"DY": "Level of Service",
	"DZ": "Reason for Service Code",
	"2E": "Prescriber Last Name",
	"2F": "Prescriber First Name",
	"2G": "Prescriber Street Address",
	"2H": "Prescriber City",
	"2J": "Prescriber State",
	"2K": "Prescriber Zip Code",
	"B1": "Provider ID Qualifier",
	"B2": "Provider ID",
	"HA": "Ingredient Cost Paid",
	"HB": "Dispensing Fee Paid",
	"HC": "Tax Exempt Indicator",
	"HD": "Patient Sales Tax Amount",
	"HE": "Flat Sales Tax Amount Paid",
	"HF": "Percentage Sales Tax Amount Paid",
	"HG": "Percentage Sales Tax Rate Paid",
	"HH": "Percentage Sales Tax Basis Paid",
	"HJ": "Incentive Amount Paid",
	"HK": "Professional Service Fee Paid",
	"HN": "Other Amount Paid",
	"HP": "Patient Pay Amount",
	"AN": "Response Transaction Code",
	"F3": "Authorization Number",
	"F4": "Reject Code",
	"F5": "Reject Count",
	"F6": "Approved Message Code",
	"F9": "Additional Message Information",
	"FA": "Additional Message Qualifier",
	"FB": "Additional Message Count",
	"FC": "Remaining Benefit Amount",
	"FD": "Accumulated Deductible Amount",
	"FE": "Remaining Deductible Amount",
	"FH": "Plan ID",
	"FI": "Network Reimbursement ID",
	"FJ": "Payer ID Qualifier",
	"FK": "Payer ID",
}

// segmentFieldNames overrides FieldNames for codes that a segment defines
// differently.
var segmentFieldNames = map[string]map[string]string{
	"AM03": {
		"DB": "Prescriber ID",
		"DR": "Prescriber Last Name",
	},
	"AM04": {
		"CC": "Cardholder First Name",
		"CD": "Cardholder Last Name",
	},
}

// currencyFields are the monetary field codes.
var currencyFields = map[string]bool{
	"DQ": true, "DR": true, "DS": true, "DT": true, "DV": true,
	"HA": true, "HB": true, "HD": true, "HE": true, "HF": true,
	"HJ": true, "HK": true, "HN": true, "HP": true,
	"FC": true, "FD": true, "FE": true,
}

// FieldName returns the name of a field code within a segment, falling
// back to the code itself.
func FieldName(segment, code string) string {
	if name, ok := segmentFieldNames[segment][code]; ok {
		return name
	}
	if name, ok := FieldNames[code]; ok {
		return name
	}
	return code
}
