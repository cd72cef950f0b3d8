package catalog

import "strings"

// OtherArea is the bucket for inquiries outside the serviced neighborhoods.
// It is never premium for scoring purposes.
const OtherArea = "Others"

// Budget bands as presented on the inquiry form, lowest to highest.
const (
	BudgetBand500To700  = "RM 500-700"
	BudgetBand700To900  = "RM 700-900"
	BudgetBand900To1200 = "RM 900-1200"
	BudgetBand1200Plus  = "RM 1200+"
)

// areaOrder preserves the presentation order of the serviced areas.
// OtherArea is listed last and holds overflow properties.
var areaOrder = []string{
	"KL City Center",
	"Mont Kiara",
	"Ampang",
	"Ara Damansara",
	"Cheras",
	"Petaling Jaya",
	"Bukit Jalil",
	"Setapak",
	"Subang Jaya",
	"Sentul",
	"Sungai Besi",
	"Bandar Sri Permaisuri",
	"Seri Kembangan",
	OtherArea,
}

var areaProperties = map[string][]string{
	"KL City Center": {
		"121 Residence", "7 Tree Seven", "Armani SOHO", "Austin Regency",
		"Icon City", "Majestic Maxim", "One Cochrane", "Pixel City Central",
		"The OOAK", "Trion KL", "Youth City",
	},
	"Mont Kiara": {
		"Mont Kiara", "Duta Park", "M Adora", "M Vertica",
		"The Andes", "Vertu Resort",
	},
	"Ampang": {
		"Acacia Residence Ampang", "Astoria Ampang", "The Azure",
		"The Azure Residences",
	},
	"Ara Damansara": {
		"Ara Damansara", "AraTre Residence", "Emporis Kota Damansara",
		"Kota Damansara",
	},
	"Cheras": {
		"Arte Cheras", "Cheras", "D'Cosmos", "Razak City Residences",
	},
	"Petaling Jaya": {
		"Parc3 Petaling Jaya", "The PARC3", "Kelana Jaya",
	},
	"Bukit Jalil": {
		"Bora Residence Bukit Jalil", "HighPark Suites", "Platinum Splendor",
	},
	"Setapak": {
		"Setapak", "Fairview Residence", "Keramat",
	},
	"Subang Jaya": {
		"Subang Jaya", "Sunway Avila", "Sunway Serene",
	},
	"Sentul": {
		"Sentul", "Vista Sentul", "Sinaran Sentul",
	},
	"Sungai Besi": {
		"Sungai Besi", "Marina Residence", "Sapphire Paradigm",
	},
	"Bandar Sri Permaisuri": {
		"Bandar Sri Permaisuri", "Astoria", "Epic Residence",
	},
	"Seri Kembangan": {
		"Seri Kembangan", "Secoya Residence", "Rica Residence",
	},
	OtherArea: {
		"Medini Signature", "Meta City", "MH Platinum 2", "Pinnacle",
		"Sinaran Residence", "The Birch", "Unio Residence",
		"Vivo Executive Apartment", "Vivo Residence",
	},
}

// Areas returns the serviced areas in presentation order.
func Areas() []string {
	out := make([]string, len(areaOrder))
	copy(out, areaOrder)
	return out
}

// Properties returns the co-living properties for an area, nil when the
// area is unknown. The input is normalized first.
func Properties(area string) []string {
	canonical, _ := Normalize(area)
	props, ok := areaProperties[canonical]
	if !ok {
		return nil
	}
	out := make([]string, len(props))
	copy(out, props)
	return out
}

// Lookup resolves input to its canonical catalog area, reporting
// whether it exists. Unlike Normalize there is no OtherArea fallback,
// so the chat flow can reject areas that are not on the menu.
func Lookup(input string) (string, bool) {
	trimmed := strings.TrimSpace(input)
	for _, area := range areaOrder {
		if strings.EqualFold(area, trimmed) {
			return area, true
		}
	}
	return "", false
}

// LookupProperty resolves input to the canonical property name within
// an area, reporting whether the area lists it.
func LookupProperty(area, input string) (string, bool) {
	trimmed := strings.TrimSpace(input)
	for _, p := range Properties(area) {
		if strings.EqualFold(p, trimmed) {
			return p, true
		}
	}
	return "", false
}

// Normalize maps free-form area input onto the canonical catalog entry.
// Unrecognized input falls into OtherArea. The second return reports
// whether the area is a serviced (premium) neighborhood; OtherArea is not.
func Normalize(input string) (string, bool) {
	if area, ok := Lookup(input); ok {
		return area, area != OtherArea
	}
	return OtherArea, false
}

// IsPremium reports whether the input resolves to a serviced neighborhood.
func IsPremium(area string) bool {
	_, premium := Normalize(area)
	return premium
}

// HasProperty reports whether the property belongs to the area's listing.
func HasProperty(area, property string) bool {
	_, ok := LookupProperty(area, property)
	return ok
}

// BudgetBands returns the form's budget options, lowest to highest.
func BudgetBands() []string {
	return []string{BudgetBand500To700, BudgetBand700To900, BudgetBand900To1200, BudgetBand1200Plus}
}

// ValidBudgetBand reports whether the band is one of the form options.
func ValidBudgetBand(band string) bool {
	for _, b := range BudgetBands() {
		if b == strings.TrimSpace(band) {
			return true
		}
	}
	return false
}

// IsLowBudget reports whether the band is one of the two lowest, which
// triggers the limited-availability notice in the chat flow.
func IsLowBudget(band string) bool {
	b := strings.TrimSpace(band)
	return b == BudgetBand500To700 || b == BudgetBand700To900
}

// UnitTypes returns the gender arrangement options on the inquiry form.
func UnitTypes() []string {
	return []string{"Female unit", "Male unit", "Mixed Gender unit"}
}

// TenancyMonths returns the tenancy period options in months.
func TenancyMonths() []int {
	return []int{6, 12}
}
