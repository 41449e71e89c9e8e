// Package model defines core domain types shared across the service.
package model

import "fmt"

// GeoPoint carries no coordinate-system tag; every function documents whether
// it expects WGS-84 or GCJ-02.
type GeoPoint struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

// MercatorPoint is EPSG:3857 meters.
type MercatorPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type TileCoordinate struct {
	X    int `json:"x"`
	Y    int `json:"y"`
	Zoom int `json:"zoom"`
}

// ID returns the stable "{zoom}-{x}-{y}" identifier.
func (t TileCoordinate) ID() string {
	return fmt.Sprintf("%d-%d-%d", t.Zoom, t.X, t.Y)
}

// BoundingRect is axis aligned; TopLeftLat >= BottomRightLat.
type BoundingRect struct {
	TopLeftLat     float64 `json:"topLeftLat"`
	TopLeftLng     float64 `json:"topLeftLng"`
	BottomRightLat float64 `json:"bottomRightLat"`
	BottomRightLng float64 `json:"bottomRightLng"`
}

// String representation matching wfs/wms bbox order (minx,miny,maxx,maxy)
func (b BoundingRect) String() string {
	return fmt.Sprintf("%.6f,%.6f,%.6f,%.6f", b.TopLeftLng, b.BottomRightLat, b.BottomRightLng, b.TopLeftLat)
}

// Region is a map viewport as reported by the map widget.
type Region struct {
	Northeast GeoPoint `json:"northeast"`
	Southwest GeoPoint `json:"southwest"`
}

type Bounds struct {
	Southwest GeoPoint `json:"southwest"`
	Northeast GeoPoint `json:"northeast"`
}

type WmsTile struct {
	ID     string  `json:"id"`
	Src    string  `json:"src"`
	Bounds Bounds  `json:"bounds"`
	Alpha  float64 `json:"alpha"`
}

type ShapeKind string

const (
	ShapePolygon ShapeKind = "polygon"
	ShapeCircle  ShapeKind = "circle"
	ShapePath    ShapeKind = "path"
)

type Polygon struct {
	Points      []GeoPoint `json:"points"`
	StrokeColor string     `json:"strokeColor"`
	FillColor   string     `json:"fillColor"`
	StrokeWidth int        `json:"strokeWidth"`
}

type Circle struct {
	Longitude   float64 `json:"longitude"`
	Latitude    float64 `json:"latitude"`
	Radius      float64 `json:"radius"`
	Color       string  `json:"color"`
	FillColor   string  `json:"fillColor"`
	StrokeWidth int     `json:"strokeWidth"`
}

// Path is a corridor drawn as a polyline; Width is the corridor width in meters.
type Path struct {
	Points      []GeoPoint `json:"points"`
	Width       float64    `json:"width"`
	Color       string     `json:"color"`
	FillColor   string     `json:"fillColor"`
	StrokeWidth int        `json:"strokeWidth"`
}

// RenderShape holds exactly one of Polygon, Circle or Path, selected by Kind.
type RenderShape struct {
	Kind    ShapeKind `json:"kind"`
	Level   int       `json:"level"`
	Polygon *Polygon  `json:"polygon,omitempty"`
	Circle  *Circle   `json:"circle,omitempty"`
	Path    *Path     `json:"path,omitempty"`
}

// AreaQuery is the WGS-84 circle sent to the backend area endpoint.
type AreaQuery struct {
	Center GeoPoint
	Radius float64
}
