package rates

import "strings"

// vehicleTypeCanonical folds textual variants of the same physical category
// onto one canonical label.
var vehicleTypeCanonical = map[string]string{
	"digger & boring machine":          "Digger and Boring machine",
	"digger and boring machine":        "Digger and Boring machine",
	"bacho loader":                     "Backho Loader",
	"backho loader":                    "Backho Loader",
	"educational bus under school name": "Educational Bus",
}

// vehicleTypeVariants expands a label to every spelling that appears in the
// data, so records stored under either variant still match.
var vehicleTypeVariants = map[string][]string{
	"digger and boring machine": {"Digger and Boring machine", "Digger & Boring machine"},
	"digger & boring machine":   {"Digger and Boring machine", "Digger & Boring machine"},
	"backho loader":             {"Backho Loader", "Bacho Loader"},
	"bacho loader":              {"Backho Loader", "Bacho Loader"},
	"educational bus":           {"Educational Bus", "Educational Bus under school name"},
	"educational bus under school name": {"Educational Bus", "Educational Bus under school name"},
}

// CanonicalVehicleType returns the canonical spelling for a vehicle-type
// label, or the trimmed label itself when no alias is known.
func CanonicalVehicleType(label string) string {
	t := strings.TrimSpace(label)
	if t == "" {
		return ""
	}
	if canon, ok := vehicleTypeCanonical[strings.ToLower(t)]; ok {
		return canon
	}
	return t
}

// VehicleTypeVariants returns every equivalent spelling for a vehicle-type
// label, including the label itself when no aliases are known.
func VehicleTypeVariants(label string) []string {
	t := strings.TrimSpace(label)
	if variants, ok := vehicleTypeVariants[strings.ToLower(t)]; ok {
		return variants
	}
	return []string{t}
}

// StateCodeMap converts UI display names to the codes stored on records.
var StateCodeMap = map[string]string{
	"Tamil Nadu":     "TN",
	"Kerala":         "KL",
	"Karnataka":      "KA",
	"Puducherry":     "PY",
	"Pondicherry":    "PY",
	"Telangana":      "TS",
	"Andhra Pradesh": "AP",
	"Maharashtra":    "MH",
	"Madhya Pradesh": "MP",
	"Assam":          "AS",
	"Haryana":        "HR",
	"Rajasthan":      "RJ",
	"Uttar Pradesh":  "UP",
}

// StateDisplayMap converts stored state codes back to display names.
var StateDisplayMap = map[string]string{
	"TN": "Tamil Nadu",
	"KL": "Kerala",
	"KA": "Karnataka",
	"PY": "Puducherry",
	"TS": "Telangana",
	"AP": "Andhra Pradesh",
	"MH": "Maharashtra",
	"MP": "Madhya Pradesh",
	"AS": "Assam",
	"HR": "Haryana",
	"RJ": "Rajasthan",
	"UP": "Uttar Pradesh",
}

// StateCode resolves a display name or code to the stored state code.
func StateCode(state string) string {
	t := strings.TrimSpace(state)
	if code, ok := StateCodeMap[t]; ok {
		return code
	}
	return t
}

// VehicleCategoryMap folds display names and casing variants onto the
// category codes stored on records.
var VehicleCategoryMap = map[string]string{
	"goods carrying vehicle":     "GCV",
	"gcv":                        "GCV",
	"passenger carrying vehicle": "PCV",
	"pcv":                        "PCV",
	"two-wheeler":                "Two Wheeler",
	"two wheeler":                "Two Wheeler",
	"private car":                "Private Car",
	"private-car":                "Private Car",
	"miscellaneous":              "Misc",
	"misc":                       "Misc",
}

// VehicleCategoryCode resolves a category display name to its stored code.
func VehicleCategoryCode(category string) string {
	t := strings.TrimSpace(category)
	if code, ok := VehicleCategoryMap[strings.ToLower(t)]; ok {
		return code
	}
	return t
}
