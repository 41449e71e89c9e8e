// Package coord converts between WGS-84 and GCJ-02 and holds the projection,
// tile and distance math used by the overlay builders.
//
// All functions are pure and total: they never panic or return errors, and
// non-finite input simply propagates to the output.
package coord

import (
	"math"

	"github.com/mohammed-shakir/airspace-overlay/internal/core/model"
)

const (
	// semi-major axis and eccentricity squared used by the GCJ-02 offset
	gcjA  = 6378137.0
	gcjEE = 0.00669342162296594323
)

// mainland China envelope; no offset is applied outside of it
const (
	chinaMinLng = 72.004
	chinaMaxLng = 137.8347
	chinaMinLat = 0.8293
	chinaMaxLat = 55.8271
)

// OutOfChina reports whether (lng, lat) lies outside the GCJ-02 envelope.
func OutOfChina(lng, lat float64) bool {
	return lng < chinaMinLng || lng > chinaMaxLng || lat < chinaMinLat || lat > chinaMaxLat
}

// Wgs84ToGcj02 applies the GCJ-02 obfuscation to a WGS-84 point.
func Wgs84ToGcj02(lng, lat float64) model.GeoPoint {
	if OutOfChina(lng, lat) {
		return model.GeoPoint{Longitude: lng, Latitude: lat}
	}
	dLng, dLat := gcjDelta(lng, lat)
	return model.GeoPoint{Longitude: lng + dLng, Latitude: lat + dLat}
}

// Gcj02ToWgs84 is the first-order inverse: 2*p - Wgs84ToGcj02(p).
// It is deliberately not refined iteratively so results stay comparable with
// coordinates already stored by other clients.
func Gcj02ToWgs84(lng, lat float64) model.GeoPoint {
	if OutOfChina(lng, lat) {
		return model.GeoPoint{Longitude: lng, Latitude: lat}
	}
	g := Wgs84ToGcj02(lng, lat)
	return model.GeoPoint{Longitude: 2*lng - g.Longitude, Latitude: 2*lat - g.Latitude}
}

// Wgs84PointToGcj02 and Gcj02PointToWgs84 are GeoPoint conveniences.
func Wgs84PointToGcj02(p model.GeoPoint) model.GeoPoint {
	return Wgs84ToGcj02(p.Longitude, p.Latitude)
}

func Gcj02PointToWgs84(p model.GeoPoint) model.GeoPoint {
	return Gcj02ToWgs84(p.Longitude, p.Latitude)
}

func gcjDelta(lng, lat float64) (dLng, dLat float64) {
	dLat = transformLat(lng-105.0, lat-35.0)
	dLng = transformLon(lng-105.0, lat-35.0)
	radLat := lat / 180.0 * math.Pi
	magic := math.Sin(radLat)
	magic = 1 - gcjEE*magic*magic
	sqrtMagic := math.Sqrt(magic)
	dLat = (dLat * 180.0) / ((gcjA * (1 - gcjEE)) / (magic * sqrtMagic) * math.Pi)
	dLng = (dLng * 180.0) / (gcjA / sqrtMagic * math.Cos(radLat) * math.Pi)
	return dLng, dLat
}

func transformLat(x, y float64) float64 {
	ret := -100.0 + 2.0*x + 3.0*y + 0.2*y*y + 0.1*x*y + 0.2*math.Sqrt(math.Abs(x))
	ret += (20.0*math.Sin(6.0*x*math.Pi) + 20.0*math.Sin(2.0*x*math.Pi)) * 2.0 / 3.0
	ret += (20.0*math.Sin(y*math.Pi) + 40.0*math.Sin(y/3.0*math.Pi)) * 2.0 / 3.0
	ret += (160.0*math.Sin(y/12.0*math.Pi) + 320*math.Sin(y*math.Pi/30.0)) * 2.0 / 3.0
	return ret
}

func transformLon(x, y float64) float64 {
	ret := 300.0 + x + 2.0*y + 0.1*x*x + 0.1*x*y + 0.1*math.Sqrt(math.Abs(x))
	ret += (20.0*math.Sin(6.0*x*math.Pi) + 20.0*math.Sin(2.0*x*math.Pi)) * 2.0 / 3.0
	ret += (20.0*math.Sin(x*math.Pi) + 40.0*math.Sin(x/3.0*math.Pi)) * 2.0 / 3.0
	ret += (150.0*math.Sin(x/12.0*math.Pi) + 300.0*math.Sin(x/30.0*math.Pi)) * 2.0 / 3.0
	return ret
}
