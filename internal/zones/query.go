package zones

import (
	"math"

	"github.com/mohammed-shakir/airspace-overlay/internal/coord"
	"github.com/mohammed-shakir/airspace-overlay/internal/core/model"
)

const radiusStep = 10000

// RadiusBuckets lists every radius a cached query can carry.
var RadiusBuckets = []int{50000, 60000, 70000, 80000}

// BucketRadius rounds a clamped radius up to the next 10 km step.
func BucketRadius(r float64) int {
	c := coord.ClampRadius(r)
	b := int(math.Ceil(c/radiusStep)) * radiusStep
	return min(max(b, int(coord.MinQueryRadius)), int(coord.MaxQueryRadius))
}

// QueryForRegion converts a GCJ-02 viewport into the WGS-84 circle sent to
// the backend.
func QueryForRegion(r model.Region) model.AreaQuery {
	rect := coord.RectToWgs84(coord.RectFromRegion(r))
	return model.AreaQuery{
		Center: coord.RectCenter(rect),
		Radius: coord.QueryRadius(rect),
	}
}

// QueryForPoint is the minimum-radius circle around a GCJ-02 point.
func QueryForPoint(p model.GeoPoint) model.AreaQuery {
	return model.AreaQuery{
		Center: coord.Gcj02PointToWgs84(p),
		Radius: coord.MinQueryRadius,
	}
}

// expandRect grows a WGS-84 rect by meters on every side.
func expandRect(b model.BoundingRect, meters float64) model.BoundingRect {
	tl := coord.RectAround(model.GeoPoint{Longitude: b.TopLeftLng, Latitude: b.TopLeftLat}, meters)
	br := coord.RectAround(model.GeoPoint{Longitude: b.BottomRightLng, Latitude: b.BottomRightLat}, meters)
	return model.BoundingRect{
		TopLeftLat:     math.Max(tl.TopLeftLat, br.TopLeftLat),
		TopLeftLng:     math.Min(tl.TopLeftLng, br.TopLeftLng),
		BottomRightLat: math.Min(tl.BottomRightLat, br.BottomRightLat),
		BottomRightLng: math.Max(tl.BottomRightLng, br.BottomRightLng),
	}
}
