package address

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// defaultRegion applies when the input carries no international prefix.
const defaultRegion = "IN"

// minPhoneInput is the input length below which normalization is not
// attempted, so partial input is left alone while the user types.
const minPhoneInput = 10

// NormalizePhone formats raw as an E.164 number once it is long enough to
// be a complete number. Shorter input, and input the library cannot parse
// as a valid number, is returned as typed.
func NormalizePhone(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if len(trimmed) < minPhoneInput {
		return raw
	}

	parsed, err := phonenumbers.Parse(trimmed, defaultRegion)
	if err != nil || !phonenumbers.IsValidNumber(parsed) {
		return raw
	}
	return phonenumbers.Format(parsed, phonenumbers.E164)
}
