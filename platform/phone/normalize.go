// Package phone normalizes applicant phone numbers for one home region.
package phone

import (
	"errors"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegion is used when no region is configured.
const DefaultRegion = "RO"

var (
	// ErrInvalid means the input is not a dialable number.
	ErrInvalid = errors.New("invalid phone number")
	// ErrNotMobile means the number is valid but not a mobile line of the home region.
	ErrNotMobile = errors.New("phone number is not a mobile number of the home region")
)

// Normalizer parses numbers without a country prefix as belonging to its region.
type Normalizer struct {
	region string
}

// New creates a normalizer for an ISO 3166 region code. An empty region
// falls back to DefaultRegion.
func New(region string) *Normalizer {
	region = strings.ToUpper(strings.TrimSpace(region))
	if region == "" {
		region = DefaultRegion
	}
	return &Normalizer{region: region}
}

// Region returns the home region.
func (n *Normalizer) Region() string { return n.region }

// E164 formats input to E.164. Input that does not parse as a valid number
// is returned trimmed, so the backend can report it.
func (n *Normalizer) E164(input string) string {
	trimmed := strings.TrimSpace(input)
	number, err := n.parse(trimmed)
	if err != nil {
		return trimmed
	}
	return phonenumbers.Format(number, phonenumbers.E164)
}

// Mobile returns input in E.164 when it is a mobile number of the home region.
func (n *Normalizer) Mobile(input string) (string, error) {
	number, err := n.parse(strings.TrimSpace(input))
	if err != nil {
		return "", err
	}
	if phonenumbers.GetRegionCodeForNumber(number) != n.region {
		return "", ErrNotMobile
	}
	switch phonenumbers.GetNumberType(number) {
	case phonenumbers.MOBILE, phonenumbers.FIXED_LINE_OR_MOBILE:
		return phonenumbers.Format(number, phonenumbers.E164), nil
	default:
		return "", ErrNotMobile
	}
}

func (n *Normalizer) parse(input string) (*phonenumbers.PhoneNumber, error) {
	if input == "" {
		return nil, ErrInvalid
	}
	number, err := phonenumbers.Parse(input, n.region)
	if err != nil || !phonenumbers.IsValidNumber(number) {
		return nil, ErrInvalid
	}
	return number, nil
}
