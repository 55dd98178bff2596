package checkout

import (
	"strconv"
	"strings"
	"time"
)

const (
	msgNumberRequired = "Card number is required"
	msgNumberInvalid  = "Invalid card number"
	msgNameRequired   = "Name is required"
	msgExpiryRequired = "Expiry date is required"
	msgExpiryFormat   = "Invalid date format (MM/YY)"
	msgExpired        = "Card has expired"
	msgCVCRequired    = "CVC is required"
	msgCVCShort       = "CVC must be at least 3 digits"
)

// ValidateCardInfo checks every card field and returns the failing ones.
// now decides whether the expiry date has passed.
func ValidateCardInfo(info CardInfo, now time.Time) ValidationErrors {
	errs := ValidationErrors{}

	number := strings.ReplaceAll(info.Number, " ", "")
	switch {
	case number == "":
		errs[FieldNumber] = msgNumberRequired
	case !Luhn(number):
		errs[FieldNumber] = msgNumberInvalid
	}

	if strings.TrimSpace(info.Name) == "" {
		errs[FieldName] = msgNameRequired
	}

	if msg := validateExpiry(info.Expiry, now); msg != "" {
		errs[FieldExpiry] = msg
	}

	switch {
	case info.CVC == "":
		errs[FieldCVC] = msgCVCRequired
	case len(info.CVC) < 3:
		errs[FieldCVC] = msgCVCShort
	}

	return errs
}

// Luhn reports whether digits passes the Luhn checksum. Any non-digit
// character fails the check.
func Luhn(digits string) bool {
	if digits == "" {
		return false
	}
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		c := digits[i]
		if c < '0' || c > '9' {
			return false
		}
		d := int(c - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

func validateExpiry(expiry string, now time.Time) string {
	if expiry == "" {
		return msgExpiryRequired
	}
	parts := strings.Split(expiry, "/")
	if len(parts) != 2 || !twoDigits(parts[0]) || !twoDigits(parts[1]) {
		return msgExpiryFormat
	}
	month, _ := strconv.Atoi(parts[0])
	year, _ := strconv.Atoi(parts[1])
	if month < 1 || month > 12 {
		return msgExpiryFormat
	}

	loc := now.Location()
	// Last millisecond of the expiry month.
	end := time.Date(2000+year, time.Month(month)+1, 1, 0, 0, 0, 0, loc).Add(-time.Millisecond)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	if end.Before(today) {
		return msgExpired
	}
	return ""
}

func twoDigits(s string) bool {
	return len(s) == 2 && s[0] >= '0' && s[0] <= '9' && s[1] >= '0' && s[1] <= '9'
}
