// Package invalidation defines the zone change events published by the zone
// authoring backend.
package invalidation

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/mohammed-shakir/airspace-overlay/internal/coord"
	"github.com/mohammed-shakir/airspace-overlay/internal/core/model"
)

const (
	SRIDWGS84 = "EPSG:4326"
	SRIDGCJ02 = "GCJ-02"
)

// Event reports that a zone changed inside an area given either as a bbox or
// as a GeoJSON Polygon/MultiPolygon (WGS-84).
type Event struct {
	Version  int             `json:"version"`
	Op       string          `json:"op"`
	TS       time.Time       `json:"ts"`
	ZoneID   string          `json:"zone_id,omitempty"`
	Revision uint64          `json:"revision,omitempty"`
	Source   string          `json:"source,omitempty"`
	BBox     *BBox           `json:"bbox,omitempty"`
	Geometry json.RawMessage `json:"geometry,omitempty"`
}

type BBox struct {
	X1   float64 `json:"x1"`
	Y1   float64 `json:"y1"`
	X2   float64 `json:"x2"`
	Y2   float64 `json:"y2"`
	SRID string  `json:"srid"`
}

var ErrUnsupportedGeometry = errors.New("geometry.type must be Polygon or MultiPolygon")

func (e Event) Validate() error {
	if e.Version != 1 {
		return fmt.Errorf("version must be 1")
	}
	switch e.Op {
	case "insert", "update", "delete":
	default:
		return fmt.Errorf("op must be insert|update|delete")
	}
	if e.TS.IsZero() {
		return fmt.Errorf("ts is required")
	}
	hasBBox := e.BBox != nil
	hasGeom := len(e.Geometry) > 0
	if hasBBox == hasGeom {
		return fmt.Errorf("exactly one of bbox or geometry is required")
	}
	if hasBBox {
		bb := *e.BBox
		if bb.SRID != SRIDWGS84 && bb.SRID != SRIDGCJ02 {
			return fmt.Errorf("bbox.srid must be %s or %s", SRIDWGS84, SRIDGCJ02)
		}
		if !(bb.X1 >= -180 && bb.X1 <= 180 && bb.X2 >= -180 && bb.X2 <= 180) {
			return fmt.Errorf("bbox longitude out of range")
		}
		if !(bb.Y1 >= -90 && bb.Y1 <= 90 && bb.Y2 >= -90 && bb.Y2 <= 90) {
			return fmt.Errorf("bbox latitude out of range")
		}
		if !(bb.X2 > bb.X1 && bb.Y2 > bb.Y1) {
			return fmt.Errorf("bbox must satisfy x2>x1 and y2>y1")
		}
		return nil
	}
	_, err := geometryBound(e.Geometry)
	return err
}

// Rect returns the changed area as a WGS-84 rect. Call Validate first.
func (e Event) Rect() (model.BoundingRect, error) {
	if e.BBox != nil {
		b := *e.BBox
		r := model.BoundingRect{TopLeftLat: b.Y2, TopLeftLng: b.X1, BottomRightLat: b.Y1, BottomRightLng: b.X2}
		if b.SRID == SRIDGCJ02 {
			r = coord.RectToWgs84(r)
		}
		return r, nil
	}
	bound, err := geometryBound(e.Geometry)
	if err != nil {
		return model.BoundingRect{}, err
	}
	return model.BoundingRect{
		TopLeftLat:     bound.Max.Lat(),
		TopLeftLng:     bound.Min.Lon(),
		BottomRightLat: bound.Min.Lat(),
		BottomRightLng: bound.Max.Lon(),
	}, nil
}

// DedupeKey identifies the zone for revision ordering; empty when the event
// carries no zone id.
func (e Event) DedupeKey() string {
	return strings.TrimSpace(e.ZoneID)
}

func geometryBound(raw json.RawMessage) (orb.Bound, error) {
	g, err := geojson.UnmarshalGeometry(raw)
	if err != nil {
		return orb.Bound{}, fmt.Errorf("geometry parse: %w", err)
	}
	switch geom := g.Geometry().(type) {
	case orb.Polygon:
		if len(geom) == 0 || len(geom[0]) == 0 {
			return orb.Bound{}, fmt.Errorf("geometry has no outer ring")
		}
		return geom.Bound(), nil
	case orb.MultiPolygon:
		if len(geom) == 0 {
			return orb.Bound{}, fmt.Errorf("geometry has no polygons")
		}
		return geom.Bound(), nil
	default:
		return orb.Bound{}, ErrUnsupportedGeometry
	}
}
