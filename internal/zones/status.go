package zones

import (
	"github.com/mohammed-shakir/airspace-overlay/internal/area"
	"github.com/mohammed-shakir/airspace-overlay/internal/classify"
	"github.com/mohammed-shakir/airspace-overlay/internal/core/model"
)

// Status answers "is this point inside a restricted zone".
type Status struct {
	Inside   bool    `json:"inside"`
	Level    int     `json:"level,omitempty"`
	Label    string  `json:"label,omitempty"`
	Height   float64 `json:"height,omitempty"`
	ZoneID   string  `json:"zoneId,omitempty"`
	ZoneName string  `json:"zoneName,omitempty"`
}

// StatusAt classifies a WGS-84 point against already parsed areas.
func StatusAt(areas []area.Area, p model.GeoPoint) Status {
	hit, ok := classify.MostSevereAt(areas, p.Longitude, p.Latitude)
	if !ok {
		return Status{}
	}
	return Status{
		Inside:   true,
		Level:    hit.Level,
		Label:    hit.Label,
		Height:   hit.Height,
		ZoneID:   hit.Area.ID,
		ZoneName: hit.Area.Name,
	}
}
