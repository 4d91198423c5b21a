// Package payment validates and summarizes payment instruments. Validity is
// determined purely by format; authorization itself is an external concern.
package payment

import "strings"

// Method identifies how the customer pays.
type Method string

const (
	// MethodCard is a credit or debit card entered inline.
	MethodCard Method = "card"
	// MethodPayPal delegates to an external redirect flow; no card fields
	// are collected or validated.
	MethodPayPal Method = "paypal"
)

// Instrument is the payment input collected during checkout. Card fields
// are only meaningful when Method is MethodCard.
type Instrument struct {
	Method         Method
	CardholderName string
	CardNumber     string
	Expiry         string // "MM/YY"
	CVV            string
}

// Summary is the persistable form of an instrument: the method plus at most
// the last four digits of the card number. The full PAN and CVV never leave
// the checkout session.
type Summary struct {
	Method    Method `json:"method"`
	CardLast4 string `json:"cardLast4,omitempty"`
}

// Summarize masks the instrument down to what an order record may keep.
func Summarize(inst Instrument) Summary {
	s := Summary{Method: inst.Method}
	if inst.Method == MethodCard {
		digits := digitsOf(inst.CardNumber)
		if len(digits) >= 4 {
			s.CardLast4 = digits[len(digits)-4:]
		}
	}
	return s
}

// Brand guesses the card network from the leading digits, for display only.
func Brand(cardNumber string) string {
	digits := digitsOf(cardNumber)
	switch {
	case strings.HasPrefix(digits, "4"):
		return "visa"
	case strings.HasPrefix(digits, "5"), strings.HasPrefix(digits, "2"):
		return "mastercard"
	case strings.HasPrefix(digits, "3"):
		return "amex"
	default:
		return "card"
	}
}

func digitsOf(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
