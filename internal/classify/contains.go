// Package classify answers point-in-zone questions for normalized areas and
// ranks overlapping zones by severity.
package classify

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/mohammed-shakir/airspace-overlay/internal/area"
	"github.com/mohammed-shakir/airspace-overlay/internal/coord"
	"github.com/mohammed-shakir/airspace-overlay/internal/core/model"
)

// RingContains is even-odd ray casting. The ring may be open or closed.
func RingContains(ring []model.GeoPoint, lng, lat float64) bool {
	n := len(ring)
	if n < 3 {
		return false
	}
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := ring[i].Longitude, ring[i].Latitude
		xj, yj := ring[j].Longitude, ring[j].Latitude
		// epsilon keeps horizontal edges from dividing by zero
		if (yi > lat) != (yj > lat) && lng < (xj-xi)*(lat-yi)/(yj-yi+1e-12)+xi {
			inside = !inside
		}
	}
	return inside
}

// AreaContainsWgsPoint tests a WGS-84 point against an area's own geometry.
// Only the outer ring of the first polygon member is used; holes are not
// subtracted.
func AreaContainsWgsPoint(a area.Area, lng, lat float64) bool {
	switch a.Shape.Kind {
	case area.KindCircle:
		c := a.Shape.Center
		return coord.HaversineMeters(lat, lng, c.Latitude, c.Longitude) <= a.Shape.Radius
	case area.KindPolygon, area.KindMultiPolygon:
		return RingContains(a.Shape.OuterRing(), lng, lat)
	case area.KindPath:
		return PathContains(a.Shape.Path, a.Shape.Width, lng, lat)
	default:
		return false
	}
}

// PathContains reports whether a point lies within width/2 meters of the
// center line. Vertices are projected onto a tangent plane at the point,
// which holds for corridors a few kilometers long.
func PathContains(path []model.GeoPoint, width, lng, lat float64) bool {
	if len(path) < 2 || !(width > 0) {
		return false
	}
	rad := math.Pi / 180
	kx := coord.EarthRadius * rad * math.Cos(lat*rad)
	ky := coord.EarthRadius * rad
	ls := make(orb.LineString, len(path))
	for i, p := range path {
		ls[i] = orb.Point{(p.Longitude - lng) * kx, (p.Latitude - lat) * ky}
	}
	return planar.DistanceFrom(ls, orb.Point{0, 0}) <= width/2
}
