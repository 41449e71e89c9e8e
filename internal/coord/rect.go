package coord

import (
	"math"

	"github.com/mohammed-shakir/airspace-overlay/internal/core/model"
)

// RectFromRegion builds a BoundingRect from a viewport region, ordering the
// corners and clamping latitude to [-90,90] and longitude to [-180,180].
func RectFromRegion(r model.Region) model.BoundingRect {
	top := math.Max(r.Northeast.Latitude, r.Southwest.Latitude)
	bottom := math.Min(r.Northeast.Latitude, r.Southwest.Latitude)
	return model.BoundingRect{
		TopLeftLat:     clampLat(top),
		TopLeftLng:     wrapLng(r.Southwest.Longitude),
		BottomRightLat: clampLat(bottom),
		BottomRightLng: wrapLng(r.Northeast.Longitude),
	}
}

// RectAround returns the rect enclosing a circle of radiusMeters around center.
func RectAround(center model.GeoPoint, radiusMeters float64) model.BoundingRect {
	dLat := radiusMeters / EarthRadius * 180.0 / math.Pi
	cosLat := math.Cos(center.Latitude * math.Pi / 180.0)
	dLng := 180.0
	if cosLat > 1e-12 {
		dLng = math.Min(dLat/cosLat, 180.0)
	}
	return model.BoundingRect{
		TopLeftLat:     clampLat(center.Latitude + dLat),
		TopLeftLng:     clampLng(center.Longitude - dLng),
		BottomRightLat: clampLat(center.Latitude - dLat),
		BottomRightLng: clampLng(center.Longitude + dLng),
	}
}

// RectToWgs84 converts a GCJ-02 rect to WGS-84 corner by corner.
func RectToWgs84(b model.BoundingRect) model.BoundingRect {
	tl := Gcj02ToWgs84(b.TopLeftLng, b.TopLeftLat)
	br := Gcj02ToWgs84(b.BottomRightLng, b.BottomRightLat)
	return RectFromRegion(model.Region{
		Northeast: model.GeoPoint{Longitude: br.Longitude, Latitude: tl.Latitude},
		Southwest: model.GeoPoint{Longitude: tl.Longitude, Latitude: br.Latitude},
	})
}

func RectCenter(b model.BoundingRect) model.GeoPoint {
	return model.GeoPoint{
		Longitude: (b.TopLeftLng + b.BottomRightLng) / 2,
		Latitude:  (b.TopLeftLat + b.BottomRightLat) / 2,
	}
}

// QueryRadius is the clamped distance from the rect center to its top-left corner.
func QueryRadius(b model.BoundingRect) float64 {
	c := RectCenter(b)
	return ClampRadius(HaversineMeters(c.Latitude, c.Longitude, b.TopLeftLat, b.TopLeftLng))
}

func clampLat(v float64) float64 {
	return math.Max(-90, math.Min(90, v))
}

func clampLng(v float64) float64 {
	return math.Max(-180, math.Min(180, v))
}

func wrapLng(v float64) float64 {
	if v >= -180 && v <= 180 {
		return v
	}
	w := math.Mod(v+180, 360)
	if w < 0 {
		w += 360
	}
	return w - 180
}
