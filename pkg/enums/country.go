package enums

import (
	"fmt"
	"strings"
)

// Country is the closed set of shipping destinations the storefront quotes.
type Country string

const (
	CountryCanada    Country = "canada"
	CountryUSA       Country = "usa"
	CountryUK        Country = "uk"
	CountryAustralia Country = "australia"
	CountryGermany   Country = "germany"
	CountryFrance    Country = "france"
	CountryJapan     Country = "japan"
	CountryIndia     Country = "india"
)

var validCountries = []Country{
	CountryCanada,
	CountryUSA,
	CountryUK,
	CountryAustralia,
	CountryGermany,
	CountryFrance,
	CountryJapan,
	CountryIndia,
}

// Countries returns every supported destination.
func Countries() []Country {
	out := make([]Country, len(validCountries))
	copy(out, validCountries)
	return out
}

// String implements fmt.Stringer.
func (c Country) String() string {
	return string(c)
}

// IsValid reports whether the value is a known Country.
func (c Country) IsValid() bool {
	for _, candidate := range validCountries {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCountry converts raw input into a Country.
func ParseCountry(value string) (Country, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validCountries {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid country %q", value)
}
