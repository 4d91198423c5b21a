package order

import (
	"math/rand/v2"
	"strconv"
	"strings"
	"time"
)

// idPrefix is the fixed two-letter prefix on every order identifier.
const idPrefix = "GM"

const suffixLen = 5

const base36Upper = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewID generates an order identifier: the "GM" prefix, the timestamp in
// base 36, and a short random suffix. The result is URL-safe, uppercase,
// and serves as both the lookup key and the customer-facing confirmation
// reference.
func NewID(now time.Time) string {
	var b strings.Builder
	b.WriteString(idPrefix)
	b.WriteString(strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36)))
	for range suffixLen {
		b.WriteByte(base36Upper[rand.IntN(len(base36Upper))])
	}
	return b.String()
}
