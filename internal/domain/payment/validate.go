package payment

import (
	"strconv"
	"strings"
	"time"
)

// FieldErrors maps input field names to human-readable messages. It is the
// recoverable validation result surfaced to the caller; an empty map means
// the input passed.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	parts := make([]string, 0, len(e))
	for field, msg := range e {
		parts = append(parts, field+": "+msg)
	}
	return "invalid payment details: " + strings.Join(parts, "; ")
}

// ValidateCardNumber reports whether raw is a plausible card number: after
// stripping spaces and dashes it must be 13-19 digits passing the Luhn
// checksum.
func ValidateCardNumber(raw string) bool {
	clean := strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' {
			return -1
		}
		return r
	}, raw)

	if len(clean) < 13 || len(clean) > 19 {
		return false
	}
	sum := 0
	double := false
	for i := len(clean) - 1; i >= 0; i-- {
		c := clean[i]
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

// ValidateCVV reports whether raw is exactly 3 or 4 digits.
func ValidateCVV(raw string) bool {
	if len(raw) != 3 && len(raw) != 4 {
		return false
	}
	for i := range len(raw) {
		if raw[i] < '0' || raw[i] > '9' {
			return false
		}
	}
	return true
}

// Validator checks expiry dates against an injectable clock so tests are
// deterministic.
type Validator struct {
	now func() time.Time
}

// NewValidator returns a Validator using the wall clock.
func NewValidator() *Validator {
	return &Validator{now: time.Now}
}

// maxValidityYears caps how far ahead an expiry year may sit. Issuers hand
// out cards valid for a few years at most, so a two-digit year decades out
// is a wrapped-around past date, not a real expiry.
const maxValidityYears = 25

// ValidateExpiry reports whether raw is a well-formed "MM/YY" expiry that is
// not strictly before the current month. Two-digit years compare against the
// current year mod 100 and never roll over into the next century, so "12/99"
// is treated as long past.
func (v *Validator) ValidateExpiry(raw string) bool {
	monthStr, yearStr, ok := strings.Cut(raw, "/")
	if !ok {
		return false
	}
	month, err := strconv.Atoi(monthStr)
	if err != nil {
		return false
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return false
	}
	if month < 1 || month > 12 {
		return false
	}

	now := v.now()
	curYear := now.Year() % 100
	curMonth := int(now.Month())

	if year < curYear {
		return false
	}
	if year-curYear > maxValidityYears {
		return false
	}
	if year == curYear && month < curMonth {
		return false
	}
	return true
}

// Validate checks a whole instrument and returns field-level errors. Card
// instruments require every card field; alternate methods delegate to an
// external flow and pass without field checks.
func (v *Validator) Validate(inst Instrument) FieldErrors {
	errs := FieldErrors{}
	if inst.Method != MethodCard {
		return errs
	}

	if strings.TrimSpace(inst.CardholderName) == "" {
		errs["cardholderName"] = "Cardholder name is required"
	}
	if strings.TrimSpace(inst.CardNumber) == "" {
		errs["cardNumber"] = "Card number is required"
	} else if !ValidateCardNumber(inst.CardNumber) {
		errs["cardNumber"] = "Invalid card number"
	}
	if strings.TrimSpace(inst.Expiry) == "" {
		errs["expiryDate"] = "Expiry date is required"
	} else if !v.ValidateExpiry(inst.Expiry) {
		errs["expiryDate"] = "Invalid expiry date"
	}
	if strings.TrimSpace(inst.CVV) == "" {
		errs["cvv"] = "CVV is required"
	} else if !ValidateCVV(inst.CVV) {
		errs["cvv"] = "Invalid CVV"
	}
	return errs
}
