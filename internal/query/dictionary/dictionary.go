// Package dictionary holds the static reference tables that free-text job
// queries are matched against: role synonyms, qualifications, departments,
// locations, job types, organisation keywords and common misspellings.
//
// Every table is an ordered slice. Callers scan them linearly and the first
// entry that matches wins for single-valued fields, so entry order is part
// of the observable behaviour. The tables are never mutated after init.
package dictionary

// RoleSynonym maps a short lookup key to the title phrases it expands to.
type RoleSynonym struct {
	Key        string
	Expansions []string
}

// Typo maps a common misspelling to its correction.
type Typo struct {
	Typo       string
	Correction string
}

// RoleSynonyms is scanned in order; every key found in a query contributes
// all of its expansions.
var RoleSynonyms = []RoleSynonym{
	{"jr", []string{"Junior Resident", "JR", "Junior Resident Doctor"}},
	{"sr", []string{"Senior Resident", "SR", "Senior Resident Doctor"}},
	{"mo", []string{"Medical Officer", "MO", "Resident Medical Officer"}},
	{"rmo", []string{"Resident Medical Officer", "RMO", "Duty Medical Officer"}},
	{"doctor", []string{"Doctor", "Physician", "Medical Doctor", "MD"}},
	{"nurse", []string{"Nurse", "Staff Nurse", "Registered Nurse", "Nursing Officer"}},
	{"cardiologist", []string{"Cardiologist", "Heart Specialist", "Cardiology Consultant"}},
	{"surgeon", []string{"Surgeon", "General Surgeon", "Surgical Specialist"}},
	{"physician", []string{"Physician", "General Physician", "Consultant Physician"}},
	{"consultant", []string{"Consultant", "Specialist", "Senior Consultant"}},
	{"resident", []string{"Resident", "Resident Doctor", "Junior Resident", "Senior Resident"}},
	{"pharmacist", []string{"Pharmacist", "Clinical Pharmacist", "Hospital Pharmacist"}},
	{"technician", []string{"Technician", "Lab Technician", "Medical Technician"}},
	{"physiotherapist", []string{"Physiotherapist", "Physical Therapist", "Physio"}},
	{"radiologist", []string{"Radiologist", "Radiology Consultant", "Imaging Specialist"}},
	{"anesthetist", []string{"Anesthetist", "Anesthesiologist", "Anaesthetist"}},
	{"pediatrician", []string{"Pediatrician", "Child Specialist", "Paediatrician"}},
	{"gynecologist", []string{"Gynecologist", "Obstetrician", "OBGYN"}},
	{"dentist", []string{"Dentist", "Dental Surgeon", "BDS Doctor"}},
	{"gp", []string{"General Practitioner", "GP", "Family Physician"}},
	{"intern", []string{"Intern", "Medical Intern", "House Surgeon"}},
}

// Qualifications are canonical degree and diploma tokens.
var Qualifications = []string{
	"MBBS",
	"MD",
	"MS",
	"DNB",
	"BDS",
	"MDS",
	"BAMS",
	"BHMS",
	"BUMS",
	"BSc Nursing",
	"MSc Nursing",
	"GNM",
	"ANM",
	"B Pharm",
	"M Pharm",
	"D Pharm",
	"Pharm D",
	"BPT",
	"MPT",
	"DMLT",
	"BMLT",
	"MPH",
	"MHA",
	"PhD",
	"FRCS",
	"MRCP",
	"DCH",
	"DGO",
}

// QualificationSynonyms lists the long-form names emitted as synonyms
// whenever the keyed qualification matches.
var QualificationSynonyms = map[string][]string{
	"MBBS": {"Bachelor of Medicine", "Bachelor of Surgery"},
	"MD":   {"Doctor of Medicine"},
	"MS":   {"Master of Surgery"},
}

// Departments are canonical medical department names.
var Departments = []string{
	"Cardiology",
	"Neurology",
	"Orthopedics",
	"Pediatrics",
	"Gynecology",
	"Obstetrics",
	"Dermatology",
	"Radiology",
	"Anesthesiology",
	"Pathology",
	"Psychiatry",
	"ENT",
	"Ophthalmology",
	"Oncology",
	"Nephrology",
	"Urology",
	"Gastroenterology",
	"Pulmonology",
	"Endocrinology",
	"Neonatology",
	"Emergency Medicine",
	"General Medicine",
	"General Surgery",
	"Critical Care",
	"ICU",
	"Dentistry",
	"Physiotherapy",
	"Nursing",
	"Pharmacy",
}

// Cities are scanned before States.
var Cities = []string{
	"Mumbai",
	"Delhi",
	"Bangalore",
	"Bengaluru",
	"Chennai",
	"Kolkata",
	"Hyderabad",
	"Pune",
	"Ahmedabad",
	"Jaipur",
	"Lucknow",
	"Kanpur",
	"Nagpur",
	"Indore",
	"Bhopal",
	"Patna",
	"Chandigarh",
	"Kochi",
	"Coimbatore",
	"Visakhapatnam",
	"Thiruvananthapuram",
	"Guwahati",
	"Bhubaneswar",
	"Noida",
	"Gurgaon",
	"Gurugram",
	"Surat",
	"Vadodara",
	"Nashik",
	"Mysore",
	"Mangalore",
	"Dehradun",
	"Ranchi",
	"Raipur",
	"Amritsar",
	"Ludhiana",
	"Varanasi",
	"Madurai",
}

var States = []string{
	"Maharashtra",
	"Karnataka",
	"Tamil Nadu",
	"Kerala",
	"Gujarat",
	"Rajasthan",
	"Uttar Pradesh",
	"Madhya Pradesh",
	"West Bengal",
	"Bihar",
	"Punjab",
	"Haryana",
	"Telangana",
	"Andhra Pradesh",
	"Odisha",
	"Assam",
	"Jharkhand",
	"Chhattisgarh",
	"Uttarakhand",
	"Himachal Pradesh",
	"Goa",
}

// Locations is Cities followed by States.
var Locations = append(append(make([]string, 0, len(Cities)+len(States)), Cities...), States...)

// JobTypes are employment-type phrases. Hyphens are replaced by spaces
// when a match is emitted.
var JobTypes = []string{
	"full-time",
	"full time",
	"part-time",
	"part time",
	"contract",
	"temporary",
	"internship",
	"locum",
	"permanent",
	"remote",
	"freelance",
}

// CompanyKeywords are organisation-type phrases.
var CompanyKeywords = []string{
	"Hospital",
	"Clinic",
	"Medical College",
	"Nursing Home",
	"Diagnostic Centre",
	"Diagnostics",
	"Healthcare",
	"Pharma",
	"AIIMS",
	"Apollo",
	"Fortis",
	"Government",
	"Private",
}

var Typos = []Typo{
	{"docter", "doctor"},
	{"doctr", "doctor"},
	{"nurce", "nurse"},
	{"surgon", "surgeon"},
	{"cardiolgist", "cardiologist"},
	{"physcian", "physician"},
	{"pharmasist", "pharmacist"},
	{"technicain", "technician"},
	{"radiolgy", "radiology"},
	{"gynaecologist", "gynecologist"},
	{"resedent", "resident"},
	{"consultent", "consultant"},
	{"medicle", "medical"},
	{"hospitel", "hospital"},
}
