package enums

import "fmt"

// Currency is the ISO currency code an order is denominated in.
type Currency string

const (
	CurrencyAED Currency = "AED"
	CurrencyOMR Currency = "OMR"
	CurrencySAR Currency = "SAR"
	CurrencyBHD Currency = "BHD"
	CurrencyINR Currency = "INR"
	CurrencyKWD Currency = "KWD"
	CurrencyQAR Currency = "QAR"
	CurrencyPKR Currency = "PKR"
	CurrencyJOD Currency = "JOD"
	CurrencyUSD Currency = "USD"
	CurrencyGBP Currency = "GBP"
	CurrencyCAD Currency = "CAD"
	CurrencyAUD Currency = "AUD"
)

var validCurrencies = []Currency{
	CurrencyAED,
	CurrencyOMR,
	CurrencySAR,
	CurrencyBHD,
	CurrencyINR,
	CurrencyKWD,
	CurrencyQAR,
	CurrencyPKR,
	CurrencyJOD,
	CurrencyUSD,
	CurrencyGBP,
	CurrencyCAD,
	CurrencyAUD,
}

// currencyByCountry maps canonical countries onto their billing currency.
var currencyByCountry = map[Country]Currency{
	CountryUAE:       CurrencyAED,
	CountryOman:      CurrencyOMR,
	CountryKSA:       CurrencySAR,
	CountryBahrain:   CurrencyBHD,
	CountryIndia:     CurrencyINR,
	CountryKuwait:    CurrencyKWD,
	CountryQatar:     CurrencyQAR,
	CountryPakistan:  CurrencyPKR,
	CountryJordan:    CurrencyJOD,
	CountryUSA:       CurrencyUSD,
	CountryUK:        CurrencyGBP,
	CountryCanada:    CurrencyCAD,
	CountryAustralia: CurrencyAUD,
}

func (c Currency) String() string {
	return string(c)
}

func (c Currency) IsValid() bool {
	for _, candidate := range validCurrencies {
		if candidate == c {
			return true
		}
	}
	return false
}

// CurrencyForCountry resolves the billing currency of a canonical country.
// Unknown countries default to USD.
func CurrencyForCountry(country Country) Currency {
	if currency, ok := currencyByCountry[country]; ok {
		return currency
	}
	return CurrencyUSD
}

func ParseCurrency(value string) (Currency, error) {
	for _, candidate := range validCurrencies {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid currency %q", value)
}
