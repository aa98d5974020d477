package enums

import "strings"

// Country is the canonical country name used for every ledger lookup.
type Country string

const (
	CountryUAE       Country = "UAE"
	CountryOman      Country = "Oman"
	CountryKSA       Country = "KSA"
	CountryBahrain   Country = "Bahrain"
	CountryIndia     Country = "India"
	CountryKuwait    Country = "Kuwait"
	CountryQatar     Country = "Qatar"
	CountryPakistan  Country = "Pakistan"
	CountryJordan    Country = "Jordan"
	CountryUSA       Country = "USA"
	CountryUK        Country = "UK"
	CountryCanada    Country = "Canada"
	CountryAustralia Country = "Australia"
)

var validCountries = []Country{
	CountryUAE,
	CountryOman,
	CountryKSA,
	CountryBahrain,
	CountryIndia,
	CountryKuwait,
	CountryQatar,
	CountryPakistan,
	CountryJordan,
	CountryUSA,
	CountryUK,
	CountryCanada,
	CountryAustralia,
}

// countryAliases maps lowercase free-text names and ISO codes onto the
// canonical enumeration.
var countryAliases = map[string]Country{
	"uae":                  CountryUAE,
	"ae":                   CountryUAE,
	"are":                  CountryUAE,
	"united arab emirates": CountryUAE,
	"emirates":             CountryUAE,
	"dubai":                CountryUAE,
	"oman":                 CountryOman,
	"om":                   CountryOman,
	"ksa":                  CountryKSA,
	"sa":                   CountryKSA,
	"sau":                  CountryKSA,
	"saudi":                CountryKSA,
	"saudi arabia":         CountryKSA,
	"kingdom of saudi arabia": CountryKSA,
	"bahrain":        CountryBahrain,
	"bh":             CountryBahrain,
	"india":          CountryIndia,
	"in":             CountryIndia,
	"ind":            CountryIndia,
	"kuwait":         CountryKuwait,
	"kw":             CountryKuwait,
	"qatar":          CountryQatar,
	"qa":             CountryQatar,
	"pakistan":       CountryPakistan,
	"pk":             CountryPakistan,
	"pak":            CountryPakistan,
	"jordan":         CountryJordan,
	"jo":             CountryJordan,
	"usa":            CountryUSA,
	"us":             CountryUSA,
	"united states":  CountryUSA,
	"united states of america": CountryUSA,
	"america":        CountryUSA,
	"uk":             CountryUK,
	"gb":             CountryUK,
	"gbr":            CountryUK,
	"united kingdom": CountryUK,
	"england":        CountryUK,
	"canada":         CountryCanada,
	"ca":             CountryCanada,
	"can":            CountryCanada,
	"australia":      CountryAustralia,
	"au":             CountryAustralia,
	"aus":            CountryAustralia,
}

// String implements fmt.Stringer.
func (c Country) String() string {
	return string(c)
}

// IsValid reports whether the value is one of the canonical countries.
func (c Country) IsValid() bool {
	for _, candidate := range validCountries {
		if candidate == c {
			return true
		}
	}
	return false
}

// CanonicalCountry maps free-text country names and ISO codes onto the
// canonical enumeration. Unknown values pass through unchanged; they simply
// never match a ledger row, so the stock appears unavailable.
func CanonicalCountry(value string) Country {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return Country(trimmed)
	}
	if canonical, ok := countryAliases[strings.ToLower(trimmed)]; ok {
		return canonical
	}
	return Country(trimmed)
}
