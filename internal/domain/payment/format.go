package payment

import "strings"

// FormatCardNumber groups the digits of raw into runs of four separated by
// spaces. Only the first 16 digits are formatted; anything beyond is
// dropped from the display value.
func FormatCardNumber(raw string) string {
	digits := digitsOf(raw)
	if len(digits) > 16 {
		digits = digits[:16]
	}

	var groups []string
	for len(digits) > 4 {
		groups = append(groups, digits[:4])
		digits = digits[4:]
	}
	if digits != "" {
		groups = append(groups, digits)
	}
	return strings.Join(groups, " ")
}

// FormatExpiry inserts the "/" separator after the month once at least two
// digits have been typed.
func FormatExpiry(raw string) string {
	digits := digitsOf(raw)
	if len(digits) > 4 {
		digits = digits[:4]
	}
	if len(digits) >= 2 {
		return digits[:2] + "/" + digits[2:]
	}
	return digits
}
