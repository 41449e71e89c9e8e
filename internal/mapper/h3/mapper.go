package h3mapper

import (
	"fmt"
	"sort"

	h3 "github.com/uber/h3-go/v4"

	"github.com/mohammed-shakir/airspace-overlay/internal/core/model"
)

type Mapper struct{}

func New() *Mapper { return &Mapper{} }

// CellForPoint returns the cell containing a WGS-84 point.
func (m *Mapper) CellForPoint(p model.GeoPoint, res int) (string, error) {
	if err := validateRes(res); err != nil {
		return "", err
	}
	c, err := h3.LatLngToCell(h3.LatLng{Lat: p.Latitude, Lng: p.Longitude}, res)
	if err != nil {
		return "", fmt.Errorf("h3 cell for point: %w", err)
	}
	return c.String(), nil
}

// CellCenter returns the centroid of a cell given in string form.
func (m *Mapper) CellCenter(cell string) (model.GeoPoint, error) {
	var c h3.Cell
	if err := c.UnmarshalText([]byte(cell)); err != nil {
		return model.GeoPoint{}, fmt.Errorf("parse cell: %w", err)
	}
	if !c.IsValid() {
		return model.GeoPoint{}, fmt.Errorf("invalid h3 cell %q", cell)
	}
	ll, err := h3.CellToLatLng(c)
	if err != nil {
		return model.GeoPoint{}, fmt.Errorf("h3 cell center: %w", err)
	}
	return model.GeoPoint{Longitude: ll.Lng, Latitude: ll.Lat}, nil
}

// CellsForRect returns every cell that may contain a point of the WGS-84
// rect: the polyfill plus the corner and center cells, dilated by one ring so
// cells whose centroid falls just outside the rect are included. Output is
// sorted and unique.
func (m *Mapper) CellsForRect(b model.BoundingRect, res int) ([]string, error) {
	if err := validateRes(res); err != nil {
		return nil, err
	}
	outer := h3.GeoLoop{
		{Lat: b.BottomRightLat, Lng: b.TopLeftLng},
		{Lat: b.BottomRightLat, Lng: b.BottomRightLng},
		{Lat: b.TopLeftLat, Lng: b.BottomRightLng},
		{Lat: b.TopLeftLat, Lng: b.TopLeftLng},
	}
	cells, err := h3.PolygonToCells(h3.GeoPolygon{GeoLoop: outer}, res)
	if err != nil {
		return nil, fmt.Errorf("h3 polyfill: %w", err)
	}

	center := h3.LatLng{
		Lat: (b.TopLeftLat + b.BottomRightLat) / 2,
		Lng: (b.TopLeftLng + b.BottomRightLng) / 2,
	}
	for _, ll := range append([]h3.LatLng(outer), center) {
		c, err := h3.LatLngToCell(ll, res)
		if err != nil {
			return nil, fmt.Errorf("h3 cell for corner: %w", err)
		}
		cells = append(cells, c)
	}

	seen := make(map[string]struct{}, len(cells)*7)
	out := make([]string, 0, len(cells)*7)
	for _, c := range cells {
		disk, err := h3.GridDisk(c, 1)
		if err != nil {
			return nil, fmt.Errorf("h3 grid disk: %w", err)
		}
		for _, d := range disk {
			s := d.String()
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out, nil
}

func validateRes(res int) error {
	if res < 0 || res > 15 {
		return fmt.Errorf("invalid H3 resolution %d (must be 0..15)", res)
	}
	return nil
}
