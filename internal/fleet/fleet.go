// Package fleet defines the static vehicle catalog offered for booking.
package fleet

// Vehicle is a bookable vehicle class. Read-only reference data.
type Vehicle struct {
	ID            string  `json:"id"`
	DisplayName   string  `json:"display_name"`
	Models        string  `json:"models"`
	RatePerKm     float64 `json:"rate_per_km"`
	RoundTripBata float64 `json:"round_trip_bata"`
}

// Catalog is the ordered list of vehicle classes. RoundTripBata is the fixed
// driver allowance added to round-trip fares, independent of distance.
var Catalog = []Vehicle{
	{ID: "sedan", DisplayName: "Sedan (4+1)", Models: "Indica, Swift Dzire", RatePerKm: 14, RoundTripBata: 400},
	{ID: "suv", DisplayName: "SUV (6+1)", Models: "Xylo, Tavera", RatePerKm: 18, RoundTripBata: 500},
	{ID: "innova", DisplayName: "Innova Premium (6+1)", Models: "Toyota Innova", RatePerKm: 19, RoundTripBata: 600},
	{ID: "muv", DisplayName: "MUV (7+1)", Models: "Tavera", RatePerKm: 18, RoundTripBata: 500},
}

// ByID looks a vehicle up by its catalog id.
func ByID(id string) (Vehicle, bool) {
	for _, v := range Catalog {
		if v.ID == id {
			return v, true
		}
	}
	return Vehicle{}, false
}
