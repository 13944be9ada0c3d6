package economics

import (
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cast"
)

// Euro is the currency every price is normalised to
const Euro = "EUR"

// Rates maps an ISO currency code to units of that currency per 1 EUR
type Rates map[string]float64

// DefaultRates covers the currencies of the shop catalog
func DefaultRates() Rates {
	return Rates{
		"EUR": 1,
		"CZK": 25.0,
		"PLN": 4.3,
		"HUF": 395.0,
		"RON": 4.97,
		"BGN": 1.9558,
		"DKK": 7.46,
		"SEK": 11.5,
		"NOK": 11.7,
		"CHF": 0.94,
		"GBP": 0.85,
		"USD": 1.08,
	}
}

// currencyAliases maps symbols and local spellings seen in shop listings
var currencyAliases = map[string]string{
	"€":    "EUR",
	"EURO": "EUR",
	"KČ":   "CZK",
	"KC":   "CZK",
	"ZŁ":   "PLN",
	"ZL":   "PLN",
	"FT":   "HUF",
	"LEI":  "RON",
	"KR":   "SEK",
	"£":    "GBP",
	"$":    "USD",
}

// NormalizeCurrency returns the ISO code for a currency tag
func NormalizeCurrency(tag string) string {
	code := strings.ToUpper(strings.TrimSpace(tag))
	if alias, ok := currencyAliases[code]; ok {
		return alias
	}
	return code
}

// ParseRates reads "CZK=25.1,PLN=4.3" pairs on top of base
func ParseRates(pairs string, base Rates) (Rates, error) {
	out := make(Rates, len(base))
	for code, rate := range base {
		out[code] = rate
	}
	if strings.TrimSpace(pairs) == "" {
		return out, nil
	}
	for _, pair := range strings.Split(pairs, ",") {
		code, value, found := strings.Cut(strings.TrimSpace(pair), "=")
		if !found {
			return nil, fmt.Errorf("invalid rate %q: expected CODE=RATE", pair)
		}
		rate, err := cast.ToFloat64E(strings.TrimSpace(value))
		if err != nil || rate <= 0 || math.IsInf(rate, 0) {
			return nil, fmt.Errorf("invalid rate for %s: %q", code, value)
		}
		out[strings.ToUpper(strings.TrimSpace(code))] = rate
	}
	return out, nil
}

// ToEuro converts a site-native price into EUR. Unit and amount are kept.
// An unknown currency reports false.
func (r Rates) ToEuro(p PriceQuantity) (PriceQuantity, bool) {
	code := NormalizeCurrency(p.Currency)
	if code == "" {
		return PriceQuantity{}, false
	}
	rate, ok := r[code]
	if !ok || rate <= 0 {
		return PriceQuantity{}, false
	}
	out := p
	out.Value = math.Round(p.Value/rate*100) / 100
	out.Currency = Euro
	return out, true
}
