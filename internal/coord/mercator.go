package coord

import (
	"math"

	"github.com/mohammed-shakir/airspace-overlay/internal/core/model"
)

const (
	// EarthRadius is the sphere radius for EPSG:3857 and haversine distances.
	EarthRadius = 6378137.0
	// OriginShift is half the EPSG:3857 world width in meters.
	OriginShift = math.Pi * EarthRadius
	TileSize    = 256
)

// LonLatToMercator projects a WGS-84 point to EPSG:3857 meters.
func LonLatToMercator(lng, lat float64) model.MercatorPoint {
	x := lng * OriginShift / 180.0
	y := math.Log(math.Tan((90.0+lat)*math.Pi/360.0)) * EarthRadius
	return model.MercatorPoint{X: x, Y: y}
}

// MercatorToLonLat is the exact inverse of LonLatToMercator.
func MercatorToLonLat(x, y float64) model.GeoPoint {
	lng := x / OriginShift * 180.0
	lat := (2*math.Atan(math.Exp(y/EarthRadius)) - math.Pi/2) * 180.0 / math.Pi
	return model.GeoPoint{Longitude: lng, Latitude: lat}
}

// TileXYToBBOX3857 returns [minX, minY, maxX, maxY] in EPSG:3857 for a
// slippy-map tile, rounded to 6 decimals.
func TileXYToBBOX3857(x, y, zoom int) [4]float64 {
	size := 2 * OriginShift / math.Exp2(float64(zoom))
	minX := -OriginShift + float64(x)*size
	maxX := minX + size
	maxY := OriginShift - float64(y)*size
	minY := maxY - size
	return [4]float64{round6(minX), round6(minY), round6(maxX), round6(maxY)}
}

// LonLatToTile returns the slippy-map tile containing a WGS-84 point.
// Indices are clamped to the valid range for the zoom so poles and NaN input
// do not produce garbage tile numbers.
func LonLatToTile(lng, lat float64, zoom int) model.TileCoordinate {
	n := math.Exp2(float64(zoom))
	sinLat := math.Sin(lat * math.Pi / 180.0)
	fx := (lng + 180.0) / 360.0 * n
	fy := (0.5 - math.Log((1+sinLat)/(1-sinLat))/(4*math.Pi)) * n
	return model.TileCoordinate{
		X:    clampTileIndex(fx, n),
		Y:    clampTileIndex(fy, n),
		Zoom: zoom,
	}
}

func clampTileIndex(f, n float64) int {
	if math.IsNaN(f) || f < 0 {
		return 0
	}
	v := math.Floor(f)
	if v > n-1 {
		v = n - 1
	}
	return int(v)
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
