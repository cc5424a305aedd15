// Package phone normalizes phone numbers.
package phone

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

const DefaultRegion = "NG"

var (
	ErrInvalidNumber = errors.New("invalid phone number")
)

// NormalizeE164 formats input to E.164. If parsing fails, it returns the
// trimmed input.
func NormalizeE164(input, region string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return trimmed
	}

	number, err := parse(trimmed, region)
	if err != nil {
		return trimmed
	}
	return phonenumbers.Format(number, phonenumbers.E164)
}

// DestinationID returns the international number without the leading plus,
// as deep links to messaging services expect it.
func DestinationID(input, region string) (string, error) {
	const op = "phone.DestinationID"

	number, err := parse(strings.TrimSpace(input), region)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	e164 := phonenumbers.Format(number, phonenumbers.E164)
	return strings.TrimPrefix(e164, "+"), nil
}

func parse(s, region string) (*phonenumbers.PhoneNumber, error) {
	if region == "" {
		region = DefaultRegion
	}
	// Bare international digits, as in "2348056623864".
	if s != "" && !strings.HasPrefix(s, "+") && !strings.HasPrefix(s, "0") {
		if n, err := phonenumbers.Parse("+"+s, region); err == nil &&
			phonenumbers.IsValidNumber(n) {
			return n, nil
		}
	}

	n, err := phonenumbers.Parse(s, region)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidNumber, s, err)
	}
	if !phonenumbers.IsValidNumber(n) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidNumber, s)
	}
	return n, nil
}
