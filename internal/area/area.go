// Package area normalizes backend restricted-area descriptors into a tagged
// shape union once, at the response boundary, so geometry code never has to
// inspect loosely structured JSON again.
package area

import (
	"slices"

	"github.com/mohammed-shakir/airspace-overlay/internal/core/model"
)

type Kind int

const (
	KindNone Kind = iota
	KindCircle
	KindPolygon
	KindMultiPolygon
	KindPath
)

func (k Kind) String() string {
	switch k {
	case KindCircle:
		return "circle"
	case KindPolygon:
		return "polygon"
	case KindMultiPolygon:
		return "multipolygon"
	case KindPath:
		return "path"
	default:
		return "none"
	}
}

// Shape is a WGS-84 geometry. For polygons Polygons[i][0] is the outer ring of
// member i and further rings are holes. A path is a corridor of Width meters
// centered on Path.
type Shape struct {
	Kind     Kind
	Center   model.GeoPoint
	Radius   float64
	Polygons [][][]model.GeoPoint
	Path     []model.GeoPoint
	Width    float64
}

// OuterRing returns the outer ring of the first polygon member, or nil.
func (s Shape) OuterRing() []model.GeoPoint {
	if s.Kind != KindPolygon && s.Kind != KindMultiPolygon {
		return nil
	}
	if len(s.Polygons) == 0 || len(s.Polygons[0]) == 0 {
		return nil
	}
	return s.Polygons[0][0]
}

func (s Shape) Equal(o Shape) bool {
	if s.Kind != o.Kind {
		return false
	}
	switch s.Kind {
	case KindCircle:
		return s.Center == o.Center && s.Radius == o.Radius
	case KindPath:
		return s.Width == o.Width && slices.Equal(s.Path, o.Path)
	}
	return slices.EqualFunc(s.Polygons, o.Polygons, func(a, b [][]model.GeoPoint) bool {
		return slices.EqualFunc(a, b, func(x, y []model.GeoPoint) bool {
			return slices.Equal(x, y)
		})
	})
}

// Area is one restricted zone as returned by the backend.
type Area struct {
	ID       string
	Name     string
	Level    int
	Height   float64
	Color    string
	Shape    Shape
	SubAreas []Area
}

func (a Area) HasSubAreas() bool { return len(a.SubAreas) > 0 }
