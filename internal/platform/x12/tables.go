package x12

// claimStatus maps CLP02 to its description.
var claimStatus = map[string]string{
	"1":  "Processed as Primary",
	"2":  "Processed as Secondary",
	"3":  "Processed as Tertiary",
	"4":  "Denied",
	"19": "Processed as Primary, Forwarded",
	"20": "Processed as Secondary, Forwarded",
	"21": "Processed as Tertiary, Forwarded",
	"22": "Reversal of Previous Payment",
	"23": "Not Our Claim, Forwarded",
	"25": "Reject",
}

// casGroups maps CAS01 group codes.
var casGroups = map[string]string{
	"CO": "Contractual Obligation",
	"CR": "Correction/Reversal",
	"OA": "Other Adjustment",
	"PI": "Payor Initiated Reduction",
	"PR": "Patient Responsibility",
}

var paymentMethods = map[string]string{
	"ACH": "ACH (Electronic)",
	"CHK": "Check",
	"BOP": "Financial Institution Option",
	"FWT": "Federal Reserve Wire Transfer",
	"NON": "Non-Payment Data",
}

// reasonCodes holds claim adjustment reason codes (CARC).
var reasonCodes = map[string]string{
	"1":   "Deductible",
	"2":   "Coinsurance",
	"3":   "Copayment",
	"4":   "Procedure not consistent with modifier or modifier missing",
	"5":   "Procedure code inconsistent with place of service",
	"6":   "Procedure/revenue code inconsistent with patient age",
	"9":   "Diagnosis inconsistent with procedure",
	"10":  "Diagnosis inconsistent with patient age",
	"11":  "Diagnosis inconsistent with patient gender",
	"13":  "Date of death precedes date of service",
	"14":  "Date of birth follows date of service",
	"16":  "Claim/service lacks information needed for adjudication",
	"18":  "Exact duplicate claim/service",
	"19":  "Expense incurred during lapse in coverage",
	"20":  "Procedure/service not covered by benefits",
	"22":  "Care may be covered by another payer",
	"23":  "Payment adjusted (authorized amount)",
	"24":  "Charges covered under capitation agreement",
	"26":  "Expenses incurred prior to coverage",
	"27":  "Expenses incurred after coverage terminated",
	"29":  "Timely filing limit",
	"31":  "Patient not eligible on date of service",
	"32":  "Our records indicate patient is an inpatient",
	"33":  "Equipment supply from another provider",
	"34":  "Equipment supply already provided",
	"35":  "Bundled/inclusive with another service",
	"39":  "Revenue code and procedure code do not match",
	"40":  "Charges do not meet qualifications for emergent/urgent care",
	"44":  "Exceeds plan/payer limitation",
	"45":  "Charges exceed fee schedule/maximum allowable",
	"49":  "Non-covered (routine/preventive)",
	"50":  "Non-covered unless condition coded/documented",
	"51":  "Non-covered (pre-existing condition)",
	"53":  "Services by an unauthorized provider",
	"54":  "Multiple physicians/ambulance suppliers",
	"55":  "Procedure/treatment not provided/utilized",
	"56":  "Procedure/treatment not related to condition",
	"58":  "Treatment was deemed experimental",
	"59":  "Processed based on multiple/concurrent procedure rules",
	"66":  "Blood deductible",
	"69":  "Day outlier amount",
	"70":  "Cost outlier - Loss exceeds threshold",
	"89":  "Professional fee removed from DRG price",
	"90":  "Ingredient cost adjustment",
	"94":  "Plan procedures not followed",
	"95":  "Plan not approved (non-network provider)",
	"96":  "Non-covered charge(s)",
	"97":  "Payment adjusted (processed information)",
	"100": "Payment made to patient/insured",
	"101": "Predetermination/preauthorization/precertification pricing",
	"102": "Major medical adjustment",
	"103": "Provider promotional discount",
	"104": "Managed care withholding",
	"105": "Tax withholding",
	"106": "Patient payment option/election not in effect",
	"107": "Claim/service denied (related to another covered service)",
	"108": "Rent/purchase guidelines",
	"109": "Claim/service not covered by this payer",
	"110": "Billing data correction",
	"111": "Not covered unless specific condition is met",
	"112": "Service not furnished directly to patient",
	"114": "Procedure/product not approved by FDA",
	"115": "Procedure postponed/canceled/delayed",
	"116": "Claim lacks required network authorization",
	"117": "Payment adjusted due to patient transfer",
	"118": "Benefit reduced for diagnostic test ordered by referring physician",
	"119": "Benefit maximum for this time period reached",
	"121": "Indemnification adjustment",
	"122": "Psychiatric reduction",
	"125": "Payment adjusted (submission/billing error)",
	"128": "Newborn's services covered by mother's claim",
	"129": "Prior processing information",
	"130": "Claim submission fee",
	"131": "Claim denied (specific clinical criteria not met)",
	"132": "Prematurity adjustment (institutional claims only)",
	"133": "Adjusted based on stop-loss provisions",
	"134": "Processed through global surgery package",
	"135": "Plan limitations (e.g., number of leaves per period)",
	"136": "Failure to obtain second surgical opinion",
	"137": "Regulatory surcharges/assessments/recovery",
	"138": "Appeal or review adjustment",
	"139": "Capital costs above/below threshold",
	"140": "Patient/insured health ID not on file",
	"142": "Monthly benefit maximum reached",
	"143": "Portion of payment deferred",
	"144": "Incentive adjustment",
	"146": "Diagnosis denied (mismatched procedures)",
	"147": "Provider contracted/negotiated rate expired",
	"148": "Information from another provider not provided",
	"149": "Lifetime benefit maximum reached",
	"150": "Payer deems this not a covered service",
	"151": "Payment adjusted based on plan requirements",
	"152": "Payer deems patient not eligible for this service",
	"153": "Prior auth/preservice decision",
	"154": "Bundled charges; separate reimbursement not allowed",
	"155": "Patient refused service/treatment",
	"157": "Service/procedure denied (not authorized referral)",
	"158": "Service not authorized on this date",
	"159": "Service at inappropriate level",
	"160": "Injury/illness related to work",
	"161": "Injury/illness related to auto accident",
	"162": "Injury/illness related to another party",
	"163": "Attachment/other documentation not received",
	"164": "Attachment/other documentation incomplete",
	"166": "These services not payable from this payer",
	"167": "Diagnosis not covered",
	"169": "Alternate benefit has been provided",
	"170": "Payment is denied when performed by this provider type",
	"171": "Payment adjusted based on jurisdiction regulations",
	"172": "Payment adjusted based on reason of review",
	"173": "Service claim paid toward contribution to premium",
	"174": "Service paid at zero rate for this payer",
	"175": "Payment adjusted: prescription coverage",
	"176": "Claims paid in full",
	"177": "Patient has not met the deductible",
	"178": "Previous payment reversed due to retroactive disenrollment",
	"179": "Services not provided by network/primary care providers",
	"180": "Service not furnished in a certified ASC",
	"181": "Procedure code billed is not correct/valid",
	"182": "Secondary payment on a non-covered service",
	"183": "Service denied (point of service requirement not met)",
	"184": "Purchased service charge exceeds acceptable limit",
	"185": "Dental code submitted is not appropriate",
	"186": "Level of care not appropriate",
	"187": "Non-covered consumer directed health plan",
	"188": "Procedure code/service inconsistent with provider type/specialty",
	"189": "Not otherwise classified procedure code",
	"190": "Payment adjusted: missing or invalid CPT/HCPCS",
	"192": "Non-standard adjustment code from payer",
	"193": "Original payment decision is maintained",
	"194": "Anesthesia performed by the operating doctor",
	"195": "Refund issued to insured/subscriber",
	"197": "Precertification/notification/authorization/utilization-denied",
	"198": "Claim/service adjusted: type of claim conflict",
	"199": "Revenue code and procedure code subject to NCCI edits",
	"200": "Expenses incurred during lapse/waiting period",
	"201": "Workers comp case settled; future bills not payable",
	"202": "Non-covered personal comfort/convenience item",
	"203": "Discontinued/reduced service",
	"204": "Service/equipment/drug not covered by this payer's plan",
	"205": "Pharmacy discount",
	"206": "National Drug Code (NDC) not covered",
	"207": "Dispensing fee adjustment",
	"208": "Claim denied - pharmacy not eligible",
	"209": "Reduced for home health prospective payment",
	"210": "Payment adjusted: pre-admission testing",
	"211": "National Drug Code (NDC) not eligible",
	"212": "Claim denied: global maternity fee",
	"213": "Payment adjusted: in-network/out-of-network status",
	"215": "Payment adjusted per auto no-fault processing",
	"216": "Payment adjusted based on plan limits",
	"219": "Payment adjusted: concurrent care reduction",
	"222": "Clinical trial reduction",
	"223": "Adjustment code for mandated federal/state/local law",
	"224": "Patient identification changed",
	"225": "Duplicate of an original claim processed as an adjustment",
	"226": "Information requested from patient/insured/responsible party",
	"227": "Information requested from provider",
	"228": "Denied - no response to repeated requests",
	"229": "Patient identification compromised",
	"230": "No available/qualified review organization",
	"231": "Mutually exclusive procedures per NCCI",
	"232": "Institutional claims: readmission reduction",
	"233": "This service line is out of balance",
	"234": "Service not rendered in a network facility",
	"235": "Sales tax",
	"236": "Pharmacy: claim cost exceeds pricing threshold",
	"237": "Pharmacy: claim gap claim not covered",
	"238": "Pharmacy: claim is below cost threshold",
	"239": "Claim span dates overlap previously adjudicated dates",
	"240": "Charges adjusted based on plan benefit design",
	"241": "Low income subsidy (LIS) co-pay amount",
	"242": "Services not provided by network pharmacy",
	"243": "Services not authorized by network/primary care providers",
	"244": "Payment reduced to zero due to litigation",
	"245": "Provider performance bonus",
	"246": "This service is not covered when performed by this provider",
	"247": "Non-payable code billed in a non-covered charge",
	"248": "Non-covered service: patient requested",
	"249": "Outpatient/ER claim with admission: processed as inpatient",
	"250": "Plan deeming: services covered by a prior payer",
	"251": "Service(s) adjusted due to prior payer's adjudication",
	"252": "Adjustment using a payer-determined fee schedule",
	"253": "Sequestration: mandated reduction to federal payment",
	"254": "Observation charges bundled with inpatient admission",
	"255": "Bundled or included procedure/service",
	"256": "Service subject to regulatory mandated discount",
	"257": "Service covered at reduced rate due to plan change",
	"258": "Claim adjusted: provider-assessed appeal rights",
	"260": "Requirement for additional processing",
	"261": "DRG weight-adjusted payment",
	"262": "Claim adjusted based on payer quality program",
	"263": "Adjustment for timeliness of claims processing",
	"264": "Adjusted per Value-Based Purchasing (VBP) program",
}

// placeOfService maps CMS place of service codes.
var placeOfService = map[string]string{
	"01": "Pharmacy",
	"02": "Telehealth (other than patient home)",
	"03": "School",
	"04": "Homeless Shelter",
	"05": "Indian Health Service Free-Standing",
	"06": "Indian Health Service Provider-Based",
	"07": "Tribal 638 Free-Standing",
	"08": "Tribal 638 Provider-Based",
	"09": "Prison/Correctional Facility",
	"10": "Telehealth (patient home)",
	"11": "Office",
	"12": "Home",
	"13": "Assisted Living Facility",
	"14": "Group Home",
	"15": "Mobile Unit",
	"16": "Temporary Lodging",
	"17": "Walk-in Retail Health Clinic",
	"18": "Place of Employment/Worksite",
	"19": "Off-Campus Outpatient Hospital",
	"20": "Urgent Care Facility",
	"21": "Inpatient Hospital",
	"22": "On-Campus Outpatient Hospital",
	"23": "Emergency Room - Hospital",
	"24": "Ambulatory Surgical Center",
	"25": "Birthing Center",
	"26": "Military Treatment Facility",
	"31": "Skilled Nursing Facility",
	"32": "Nursing Facility",
	"33": "Custodial Care Facility",
	"34": "Hospice",
	"41": "Ambulance - Land",
	"42": "Ambulance - Air or Water",
	"49": "Independent Clinic",
	"50": "Federally Qualified Health Center",
	"51": "Inpatient Psychiatric Facility",
	"52": "Psychiatric Facility - Partial Hospitalization",
	"53": "Community Mental Health Center",
	"54": "Intermediate Care Facility/MR",
	"55": "Residential Substance Abuse Treatment",
	"56": "Psychiatric Residential Treatment Center",
	"57": "Non-Residential Substance Abuse Treatment",
	"60": "Mass Immunization Center",
	"61": "Comprehensive Inpatient Rehab Facility",
	"62": "Comprehensive Outpatient Rehab Facility",
	"65": "End-Stage Renal Disease Treatment Facility",
	"71": "State or Local Public Health Clinic",
	"72": "Rural Health Clinic",
	"81": "Independent Laboratory",
	"99": "Other Place of Service",
}

var transactionNames = map[string]string{
	"270": "Eligibility Inquiry",
	"271": "Eligibility Response",
	"276": "Claim Status Request",
	"277": "Claim Status Response",
	"278": "Health Care Services Review (Prior Auth)",
	"834": "Benefit Enrollment and Maintenance",
	"820": "Premium Payment",
	"835": "Remittance Advice",
	"837": "Health Care Claim",
	"999": "Implementation Acknowledgment",
	"997": "Functional Acknowledgment",
	"275": "Additional Information to Support a Health Care Claim",
	"274": "Health Care Provider Information",
}

// entityCodes maps NM1/N1 entity identifier codes.
var entityCodes = map[string]string{
	"03": "Dependent",
	"1P": "Provider",
	"2B": "Third-Party Administrator",
	"36": "Employer",
	"40": "Receiver",
	"41": "Submitter",
	"82": "Rendering Provider",
	"85": "Billing Provider",
	"87": "Pay-to Provider",
	"DQ": "Supervising Provider",
	"FA": "Facility",
	"IL": "Insured/Subscriber",
	"P3": "Primary Care Provider",
	"P4": "Prior Insurance Carrier",
	"P5": "Plan Sponsor",
	"PE": "Payee",
	"PR": "Payer",
	"QC": "Patient",
}

// benefitInfoCodes maps EB01 eligibility or benefit information codes.
var benefitInfoCodes = map[string]string{
	"1":  "Active Coverage",
	"2":  "Active - Full Risk Capitation",
	"3":  "Active - Services Capitated",
	"4":  "Active - Services Capitated to Primary Care Provider",
	"5":  "Active - Pending Investigation",
	"6":  "Inactive",
	"7":  "Inactive - Pending Eligibility Update",
	"8":  "Inactive - Pending Investigation",
	"A":  "Co-Insurance",
	"B":  "Co-Payment",
	"C":  "Deductible",
	"CB": "Coverage Basis",
	"D":  "Benefit Description",
	"E":  "Exclusions",
	"F":  "Limitations",
	"G":  "Out of Pocket (Stop Loss)",
	"H":  "Unlimited",
	"I":  "Non-Covered",
	"J":  "Cost Containment",
	"K":  "Reserve",
	"L":  "Primary Care Provider",
	"M":  "Pre-existing Condition",
	"MC": "Managed Care Coordinator",
	"N":  "Services Restricted to Following Provider",
	"O":  "Not Deemed a Medical Necessity",
	"P":  "Benefit Disclaimer",
	"Q":  "Second Surgical Opinion Required",
	"R":  "Other or Additional Payor",
	"S":  "Prior Year(s) History",
	"T":  "Card(s) Reported Lost/Stolen",
	"U":  "Contact Following Entity for Information",
	"V":  "Cannot Process",
	"W":  "Other Source of Data",
	"X":  "Health Care Facility",
	"Y":  "Spend Down",
}

var serviceTypeCodes = map[string]string{
	"1":  "Medical Care",
	"2":  "Surgical",
	"3":  "Consultation",
	"4":  "Diagnostic X-Ray",
	"5":  "Diagnostic Lab",
	"6":  "Radiation Therapy",
	"7":  "Anesthesia",
	"8":  "Surgical Assistance",
	"12": "Durable Medical Equipment Purchase",
	"14": "Renal Supplies in the Home",
	"18": "Durable Medical Equipment Rental",
	"23": "Diagnostic Dental",
	"24": "Periodontics",
	"25": "Restorative",
	"26": "Endodontics",
	"27": "Dental Crowns",
	"28": "Dental Accident",
	"30": "Health Benefit Plan Coverage",
	"32": "Plan Waiting Period",
	"33": "Chiropractic",
	"34": "Chiropractic Office Visits",
	"35": "Dental Care",
	"36": "Dental Crowns",
	"37": "Dental Accident",
	"38": "Orthodontics",
	"39": "Prosthodontics",
	"40": "Oral Surgery",
	"41": "Routine (Preventive) Dental",
	"42": "Home Health Care",
	"43": "Home Health Prescriptions",
	"44": "Home Health Visits",
	"45": "Hospice",
	"46": "Respite Care",
	"47": "Hospital",
	"48": "Hospital - Inpatient",
	"50": "Hospital - Outpatient",
	"51": "Hospital - Emergency Accident",
	"52": "Hospital - Emergency Medical",
	"53": "Hospital - Ambulatory Surgical",
	"54": "Long Term Care",
	"55": "Major Medical",
	"56": "Medically Related Transportation",
	"57": "Air Transportation",
	"58": "Cabulance",
	"59": "Licensed Ambulance",
	"60": "General Benefits",
	"61": "In-vitro Fertilization",
	"62": "MRI/CAT Scan",
	"63": "Donor Procedures",
	"64": "Acupuncture",
	"65": "Newborn Care",
	"66": "Pathology",
	"67": "Smoking Cessation",
	"68": "Well Baby Care",
	"69": "Maternity",
	"70": "Transplants",
	"71": "Audiology Exam",
	"72": "Inhalation Therapy",
	"73": "Diagnostic Medical",
	"74": "Private Duty Nursing",
	"75": "Prosthetic Device",
	"76": "Dialysis",
	"77": "Otological Exam",
	"78": "Chemotherapy",
	"79": "Allergy Testing",
	"80": "Immunizations",
	"81": "Routine Physical",
	"82": "Family Planning",
	"83": "Infertility",
	"84": "Abortion",
	"85": "AIDS",
	"86": "Emergency Services",
	"87": "Cancer",
	"88": "Pharmacy",
	"89": "Free Standing Prescription Drug",
	"90": "Mail Order Prescription Drug",
	"91": "Brand Name Prescription Drug",
	"92": "Generic Prescription Drug",
	"93": "Podiatry",
	"94": "Podiatry - Office Visits",
	"95": "Podiatry - Nursing Home Visits",
	"96": "Professional (Physician)",
	"97": "Anesthesiologist",
	"98": "Professional (Physician) Visit - Office",
	"99": "Professional (Physician) Visit - Inpatient",
	"A0": "Professional (Physician) Visit - Outpatient",
	"A1": "Professional (Physician) Visit - Nursing Home",
	"A2": "Professional (Physician) Visit - Skilled Nursing",
	"A3": "Professional (Physician) Visit - Home",
	"A4": "Psychiatric",
	"A5": "Psychiatric - Room and Board",
	"A6": "Psychotherapy",
	"A7": "Psychiatric - Inpatient",
	"A8": "Psychiatric - Outpatient",
	"A9": "Rehabilitation",
	"AB": "Rehabilitation - Inpatient",
	"AC": "Rehabilitation - Outpatient",
	"AD": "Occupational Therapy",
	"AE": "Physical Medicine",
	"AF": "Speech Therapy",
	"AG": "Skilled Nursing Care",
	"AH": "Skilled Nursing Care - Room and Board",
	"AI": "Substance Abuse",
	"AJ": "Alcoholism",
	"AK": "Drug Addiction",
	"AL": "Vision (Optometry)",
	"AM": "Frames",
	"AN": "Routine Exam (Optometry)",
	"AO": "Lenses",
	"AQ": "Nonmedically Necessary Physical",
	"AR": "Experimental Drug Therapy",
	"BA": "Independent Medical Evaluation",
	"BB": "Partial Hospitalization (Psychiatric)",
	"BC": "Day Care (Psychiatric)",
	"BD": "Cognitive Therapy",
	"BE": "Massage Therapy",
	"BF": "Pulmonary Rehabilitation",
	"BG": "Cardiac Rehabilitation",
	"BH": "Pediatric",
	"BI": "Nursery",
	"BJ": "Skin",
	"BK": "Orthopedic",
	"BL": "Cardiac",
	"BM": "Lymphatic",
	"BN": "Gastrointestinal",
	"BP": "Endocrine",
	"BQ": "Neurology",
	"BR": "Eye",
	"BS": "Invasive Procedures",
	"UC": "Urgent Care",
}
