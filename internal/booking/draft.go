// Package booking implements the booking-intent capture workflow: the draft
// a customer fills in, per-field validation, the three-step wizard state
// machine, and submission to the dispatcher channels.
package booking

import (
	"fmt"

	"github.com/navidrop/taxi-site/internal/geo"
)

// TripType classifies a booking; it affects required fields and the fare
// surcharge.
type TripType string

const (
	TripOneWay    TripType = "one-way"
	TripRoundTrip TripType = "round-trip"
)

// Period is the AM/PM half of a travel time.
type Period string

const (
	PeriodAM Period = "AM"
	PeriodPM Period = "PM"
)

// TimeOfDay is the travel time selection. Hour 0 means unset; minutes are
// optional.
type TimeOfDay struct {
	Hour   int    `json:"hour"`
	Minute int    `json:"minute"`
	Period Period `json:"period"`
}

// IsSet reports whether at least the hour and period have been chosen.
func (t TimeOfDay) IsSet() bool {
	return t.Hour >= 1 && t.Hour <= 12 && (t.Period == PeriodAM || t.Period == PeriodPM)
}

func (t TimeOfDay) String() string {
	if !t.IsSet() {
		return ""
	}
	return fmt.Sprintf("%d:%02d %s", t.Hour, t.Minute, t.Period)
}

// SubmissionState tracks the confirm action while leaving step 2.
type SubmissionState string

const (
	SubmissionIdle      SubmissionState = "idle"
	SubmissionInFlight  SubmissionState = "in-flight"
	SubmissionSucceeded SubmissionState = "succeeded"
	SubmissionFailed    SubmissionState = "failed"
)

// Field names a form field for validation and error reporting.
type Field string

const (
	FieldPickup      Field = "pickup"
	FieldTripType    Field = "tripType"
	FieldDropoff     Field = "dropoff"
	FieldPickupDate  Field = "pickupDate"
	FieldReturnDate  Field = "returnDate"
	FieldTime        Field = "time"
	FieldVehicleType Field = "vehicleType"
	FieldName        Field = "name"
	FieldMobile      Field = "mobile"
	FieldEmail       Field = "email"
)

// DateLayout is the wire and storage format for travel dates.
const DateLayout = "2006-01-02"

// Draft is the mutable booking attempt. It is owned by one Form for the
// lifetime of the attempt; coordinates are only ever set by accepting a
// suggestion and are cleared whenever the matching text is edited, so text
// and coordinates cannot silently diverge.
type Draft struct {
	Pickup       string     `json:"pickup"`
	Dropoff      string     `json:"dropoff"`
	PickupCoord  *geo.Coord `json:"pickup_coord,omitempty"`
	DropoffCoord *geo.Coord `json:"dropoff_coord,omitempty"`
	TripType     TripType   `json:"trip_type"`
	PickupDate   string     `json:"pickup_date"`
	ReturnDate   string     `json:"return_date"`
	Time         TimeOfDay  `json:"time"`
	VehicleType  string     `json:"vehicle_type"`
	DistanceKm   string     `json:"distance_km"`
	DistanceAuto bool       `json:"distance_auto"`
	Name         string     `json:"name"`
	Mobile       string     `json:"mobile"`
	Email        string     `json:"email"`
}

// NewDraft returns the initial empty draft. One-way is the default trip type.
func NewDraft() Draft {
	return Draft{TripType: TripOneWay}
}
