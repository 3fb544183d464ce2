package booking

import (
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/navidrop/taxi-site/internal/fleet"
)

// Indian mobile numbers: first digit 6-9, ten digits total.
var mobilePattern = regexp.MustCompile(`^[6-9][0-9]{9}$`)

// overridable in tests
var nowFunc = time.Now

// rule validates one field against the whole draft, so cross-field
// constraints (return date vs pickup date, trip type) read naturally.
type rule func(d *Draft) string

var rules = map[Field]rule{
	FieldPickup: func(d *Draft) string {
		if strings.TrimSpace(d.Pickup) == "" {
			return "Pickup location is required"
		}
		return ""
	},
	FieldDropoff: func(d *Draft) string {
		if strings.TrimSpace(d.Dropoff) == "" {
			return "Drop location is required"
		}
		return ""
	},
	FieldPickupDate: func(d *Draft) string {
		if d.PickupDate == "" {
			return "Travel date is required"
		}
		day, err := time.Parse(DateLayout, d.PickupDate)
		if err != nil {
			return "Enter a valid travel date"
		}
		if day.Before(today()) {
			return "Travel date cannot be in the past"
		}
		return ""
	},
	FieldReturnDate: func(d *Draft) string {
		if d.TripType != TripRoundTrip {
			return ""
		}
		if d.ReturnDate == "" {
			return "Return date is required for round trips"
		}
		ret, err := time.Parse(DateLayout, d.ReturnDate)
		if err != nil {
			return "Enter a valid return date"
		}
		if pick, err := time.Parse(DateLayout, d.PickupDate); err == nil {
			// Equal dates are rejected: a round trip returns on a later day.
			if !ret.After(pick) {
				return "Return date must be after the travel date"
			}
		}
		return ""
	},
	FieldTime: func(d *Draft) string {
		if !d.Time.IsSet() {
			return "Travel time is required"
		}
		return ""
	},
	FieldVehicleType: func(d *Draft) string {
		if d.VehicleType == "" {
			return "Select a vehicle type"
		}
		if _, ok := fleet.ByID(d.VehicleType); !ok {
			return "Select a vehicle type"
		}
		return ""
	},
	FieldName: func(d *Draft) string {
		name := strings.TrimSpace(d.Name)
		if name == "" {
			return "Name is required"
		}
		if utf8.RuneCountInString(name) < 3 {
			return "Name must be at least 3 characters"
		}
		return ""
	},
	FieldMobile: func(d *Draft) string {
		if d.Mobile == "" {
			return "Mobile number is required"
		}
		if !mobilePattern.MatchString(d.Mobile) {
			return "Enter a valid 10-digit mobile number"
		}
		return ""
	},
	FieldEmail: func(d *Draft) string {
		if d.Email == "" {
			return "" // optional
		}
		if !validEmail(d.Email) {
			return "Enter a valid email address"
		}
		return ""
	},
}

// ValidateField returns the error message for one field, or "" when the
// field satisfies its rule.
func ValidateField(f Field, d *Draft) string {
	r, ok := rules[f]
	if !ok {
		return ""
	}
	return r(d)
}

// Validate runs the rules for the named fields and returns a field-to-message
// map holding only failures. An empty map means the subset passes.
func Validate(fields []Field, d *Draft) map[Field]string {
	errs := make(map[Field]string)
	for _, f := range fields {
		if msg := ValidateField(f, d); msg != "" {
			errs[f] = msg
		}
	}
	return errs
}

// StepFields returns the fields gating advancement out of a wizard step.
// Return date only gates step 1 for round trips.
func StepFields(step int, trip TripType) []Field {
	switch step {
	case 1:
		fields := []Field{FieldPickup, FieldDropoff, FieldPickupDate, FieldTime, FieldVehicleType}
		if trip == TripRoundTrip {
			fields = append(fields, FieldReturnDate)
		}
		return fields
	case 2:
		return []Field{FieldName, FieldMobile, FieldEmail}
	default:
		return nil
	}
}

// NormalizeMobile strips non-digit characters and truncates to ten digits,
// matching what the input control stores.
func NormalizeMobile(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
			if b.Len() == 10 {
				break
			}
		}
	}
	return b.String()
}

func validEmail(s string) bool {
	if strings.IndexFunc(s, unicode.IsSpace) >= 0 {
		return false
	}
	at := strings.LastIndex(s, "@")
	if at <= 0 || at == len(s)-1 {
		return false
	}
	domain := s[at+1:]
	dot := strings.Index(domain, ".")
	return dot > 0 && dot < len(domain)-1
}

// today truncates the clock to a date-only value; time of day never affects
// date comparisons.
func today() time.Time {
	y, m, d := nowFunc().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
