// Package gazetteer holds the fixed list of Tamil Nadu districts used for
// offline place resolution. Centroid coordinates are approximate but close
// enough for distance estimation.
package gazetteer

import (
	"strings"

	"github.com/navidrop/taxi-site/internal/geo"
)

// MaxResults caps how many districts a single filter call returns.
const MaxResults = 8

// District is a named region with a precomputed centroid.
type District struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// Coord returns the district centroid.
func (d District) Coord() geo.Coord {
	return geo.Coord{Lat: d.Lat, Lon: d.Lon}
}

// Districts is the canonical ordered list covering the operating region.
var Districts = []District{
	{Name: "Ariyalur", Lat: 11.1400, Lon: 79.0700},
	{Name: "Chengalpattu", Lat: 12.6928, Lon: 79.9766},
	{Name: "Chennai", Lat: 13.0827, Lon: 80.2707},
	{Name: "Coimbatore", Lat: 11.0168, Lon: 76.9558},
	{Name: "Cuddalore", Lat: 11.7447, Lon: 79.7680},
	{Name: "Dharmapuri", Lat: 12.1357, Lon: 78.1587},
	{Name: "Dindigul", Lat: 10.3673, Lon: 77.9803},
	{Name: "Erode", Lat: 11.3410, Lon: 77.7172},
	{Name: "Kallakurichi", Lat: 11.7361, Lon: 78.9600},
	{Name: "Kanchipuram", Lat: 12.8352, Lon: 79.7001},
	{Name: "Kanyakumari", Lat: 8.0883, Lon: 77.5385},
	{Name: "Karur", Lat: 10.9601, Lon: 78.0766},
	{Name: "Krishnagiri", Lat: 12.5192, Lon: 78.2138},
	{Name: "Madurai", Lat: 9.9252, Lon: 78.1198},
	{Name: "Mayiladuthurai", Lat: 11.1047, Lon: 79.6524},
	{Name: "Nagapattinam", Lat: 10.7639, Lon: 79.8449},
	{Name: "Namakkal", Lat: 11.2190, Lon: 78.1674},
	{Name: "Nilgiris", Lat: 11.4064, Lon: 76.6932},
	{Name: "Perambalur", Lat: 11.2333, Lon: 78.8833},
	{Name: "Pudukkottai", Lat: 10.3810, Lon: 78.8200},
	{Name: "Ramanathapuram", Lat: 9.3716, Lon: 78.8308},
	{Name: "Ranipet", Lat: 12.9447, Lon: 79.3196},
	{Name: "Salem", Lat: 11.6643, Lon: 78.1460},
	{Name: "Sivaganga", Lat: 9.8450, Lon: 78.4810},
	{Name: "Tenkasi", Lat: 8.9590, Lon: 77.3153},
	{Name: "Thanjavur", Lat: 10.7867, Lon: 79.1378},
	{Name: "Theni", Lat: 10.0104, Lon: 77.4768},
	{Name: "Thoothukudi (Tuticorin)", Lat: 8.7642, Lon: 78.1348},
	{Name: "Tiruchirappalli (Trichy)", Lat: 10.7905, Lon: 78.7047},
	{Name: "Tirunelveli", Lat: 8.7139, Lon: 77.7567},
	{Name: "Tirupathur", Lat: 12.4966, Lon: 78.5718},
	{Name: "Tiruppur", Lat: 11.1085, Lon: 77.3411},
	{Name: "Thiruvallur", Lat: 13.1444, Lon: 79.9089},
	{Name: "Thiruvannamalai", Lat: 12.2253, Lon: 79.0747},
	{Name: "Tiruvarur", Lat: 10.7720, Lon: 79.6368},
	{Name: "Vellore", Lat: 12.9165, Lon: 79.1325},
	{Name: "Viluppuram", Lat: 11.9394, Lon: 79.4924},
	{Name: "Virudhunagar", Lat: 9.5851, Lon: 77.9579},
}

// Filter returns districts whose name contains query (case-insensitive),
// in gazetteer order, capped to MaxResults. An empty query matches nothing.
func Filter(query string) []District {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	var out []District
	for _, d := range Districts {
		if strings.Contains(strings.ToLower(d.Name), q) {
			out = append(out, d)
			if len(out) == MaxResults {
				break
			}
		}
	}
	return out
}
