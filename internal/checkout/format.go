package checkout

import "strings"

const (
	maxCardDigits = 16
	maxCVCLength  = 4
)

func digitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatCardNumber keeps the digits of raw and groups them by four, separated
// by single spaces.
func FormatCardNumber(raw string) string {
	digits := digitsOnly(raw)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && i%4 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// FormatExpiry keeps the digits of raw, puts a slash after the month and
// clamps the result to "MM/YY".
func FormatExpiry(raw string) string {
	digits := digitsOnly(raw)
	if len(digits) < 2 {
		return digits
	}
	out := digits[:2] + "/" + digits[2:]
	if len(out) > 5 {
		out = out[:5]
	}
	return out
}

// CardTypeOf detects the brand from the first digit.
func CardTypeOf(number string) CardType {
	switch {
	case strings.HasPrefix(number, "4"):
		return CardTypeVisa
	case strings.HasPrefix(number, "5"):
		return CardTypeMastercard
	}
	return CardTypeNone
}

// normalize applies the input rules of the card form to a raw value.
func normalize(field Field, raw string) string {
	switch field {
	case FieldNumber:
		digits := digitsOnly(raw)
		if len(digits) > maxCardDigits {
			digits = digits[:maxCardDigits]
		}
		return FormatCardNumber(digits)
	case FieldExpiry:
		return FormatExpiry(raw)
	case FieldCVC:
		if len(raw) > maxCVCLength {
			return raw[:maxCVCLength]
		}
	}
	return raw
}
