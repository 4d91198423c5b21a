package order

import (
	"regexp"
	"strings"
)

// DefaultCountry is used when a shipping profile omits the country.
const DefaultCountry = "United States"

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\+?[\d\s\-()]{10,}$`)
)

// ShippingProfile holds the delivery address collected during checkout.
// It is transient until it becomes part of an order record.
type ShippingProfile struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zipCode"`
	Country   string `json:"country"`
}

// FieldErrors maps shipping field names to messages, one per failed field.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	return "invalid shipping profile: " + strings.Join(fields, ", ")
}

// Validate checks every required field and returns field-level errors.
// All fields are trimmed before checking; the country defaults rather than
// failing. An empty map means the profile is complete.
func (p *ShippingProfile) Validate() FieldErrors {
	errs := FieldErrors{}

	if strings.TrimSpace(p.FirstName) == "" {
		errs["firstName"] = "First name is required"
	}
	if strings.TrimSpace(p.LastName) == "" {
		errs["lastName"] = "Last name is required"
	}

	email := strings.TrimSpace(p.Email)
	switch {
	case email == "":
		errs["email"] = "Email is required"
	case !emailPattern.MatchString(email):
		errs["email"] = "Invalid email address"
	}

	phone := strings.TrimSpace(p.Phone)
	switch {
	case phone == "":
		errs["phone"] = "Phone number is required"
	case !phonePattern.MatchString(phone):
		errs["phone"] = "Invalid phone number"
	}

	if strings.TrimSpace(p.Address) == "" {
		errs["address"] = "Address is required"
	}
	if strings.TrimSpace(p.City) == "" {
		errs["city"] = "City is required"
	}
	if strings.TrimSpace(p.State) == "" {
		errs["state"] = "State is required"
	}
	if strings.TrimSpace(p.ZipCode) == "" {
		errs["zipCode"] = "ZIP code is required"
	}

	if strings.TrimSpace(p.Country) == "" {
		p.Country = DefaultCountry
	}

	return errs
}
