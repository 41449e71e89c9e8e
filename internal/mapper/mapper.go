// Package mapper converts between geographic coordinates and H3 cells.
package mapper

import (
	"github.com/mohammed-shakir/airspace-overlay/internal/core/model"
)

type Interface interface {
	CellForPoint(p model.GeoPoint, res int) (string, error)
	CellCenter(cell string) (model.GeoPoint, error)
	CellsForRect(b model.BoundingRect, res int) ([]string, error)
}
