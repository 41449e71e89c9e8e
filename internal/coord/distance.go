package coord

import "math"

// query radius bounds for backend area lookups (meters)
const (
	MinQueryRadius = 50000.0
	MaxQueryRadius = 80000.0
)

// HaversineMeters is the great-circle distance on a sphere of EarthRadius.
func HaversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	rad := math.Pi / 180.0
	dLat := (lat2 - lat1) * rad
	dLon := (lon2 - lon1) * rad
	sLat := math.Sin(dLat / 2)
	sLon := math.Sin(dLon / 2)
	a := sLat*sLat + math.Cos(lat1*rad)*math.Cos(lat2*rad)*sLon*sLon
	if a > 1 {
		a = 1
	}
	return 2 * EarthRadius * math.Asin(math.Sqrt(a))
}

// ClampRadius bounds a query radius to [MinQueryRadius, MaxQueryRadius] and
// rounds it to whole meters. NaN maps to the lower bound.
func ClampRadius(r float64) float64 {
	if math.IsNaN(r) || r < MinQueryRadius {
		return MinQueryRadius
	}
	if r > MaxQueryRadius {
		return MaxQueryRadius
	}
	return math.Round(r)
}
