package service

// currency.go — document currency resolution and minor-unit handling.
// Precedence: explicit request → customer preference → company default.
// Resolution is a default-fill, never an overwrite: a currency the user
// already chose is passed back as `requested` and always wins, so calling
// resolve twice with the same inputs is idempotent.

import "strings"

// currencyMinorUnits lists ISO 4217 codes whose minor unit differs from the
// usual 2. Everything not listed rounds to 2 decimal places.
var currencyMinorUnits = map[string]int32{
	"BIF": 0, "CLP": 0, "DJF": 0, "GNF": 0, "ISK": 0, "JPY": 0,
	"KMF": 0, "KRW": 0, "PYG": 0, "RWF": 0, "UGX": 0, "VND": 0,
	"VUV": 0, "XAF": 0, "XOF": 0, "XPF": 0,
	"BHD": 3, "IQD": 3, "JOD": 3, "KWD": 3, "LYD": 3, "OMR": 3, "TND": 3,
}

// CurrencyDecimals returns the number of minor-unit digits for an ISO 4217 code.
func CurrencyDecimals(code string) int32 {
	if d, ok := currencyMinorUnits[code]; ok {
		return d
	}
	return 2
}

// validCurrencyCode checks the ISO 4217 shape: exactly three ASCII uppercase letters.
func validCurrencyCode(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// ResolveCurrency picks the effective currency for a document.
// Invalid candidates are skipped rather than erroring so that a malformed
// customer preference still falls back to the company default. When no
// level yields a valid code, ErrMissingCurrency is returned.
func ResolveCurrency(requested, customer, company string) (string, error) {
	for _, candidate := range []string{requested, customer, company} {
		c := strings.ToUpper(strings.TrimSpace(candidate))
		if validCurrencyCode(c) {
			return c, nil
		}
	}
	return "", ErrMissingCurrency
}
