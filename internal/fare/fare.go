// Package fare computes trip fare estimates from the vehicle catalog.
package fare

import (
	"math"

	"github.com/navidrop/taxi-site/internal/fleet"
)

// Quote is a fare breakdown. Surcharge is the round-trip driver allowance.
type Quote struct {
	Base      float64 `json:"base"`
	Surcharge float64 `json:"surcharge"`
	Total     float64 `json:"total"`
}

// Compute derives a quote from the selected vehicle, distance, and trip type.
// A missing or invalid distance counts as zero rather than an error; callers
// only surface a price once Total is positive.
func Compute(v fleet.Vehicle, distanceKm float64, roundTrip bool) Quote {
	if distanceKm < 0 || math.IsNaN(distanceKm) || math.IsInf(distanceKm, 0) {
		distanceKm = 0
	}

	q := Quote{Base: v.RatePerKm * distanceKm}
	if roundTrip {
		q.Surcharge = v.RoundTripBata
	}
	q.Total = q.Base + q.Surcharge
	return q
}
