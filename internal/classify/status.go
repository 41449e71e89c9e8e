package classify

import "github.com/mohammed-shakir/airspace-overlay/internal/area"

// Hit is the zone chosen for a point.
type Hit struct {
	Area   area.Area
	Level  int
	Label  string
	Height float64
}

// MostSevereAt returns the most severe zone containing the WGS-84 point.
// Areas with sub-areas are represented by their sub-areas only, matching what
// is drawn on the map. Ties keep the first zone encountered.
func MostSevereAt(areas []area.Area, lng, lat float64) (Hit, bool) {
	var best Hit
	found := false
	consider := func(a area.Area, parent *area.Area) {
		if !AreaContainsWgsPoint(a, lng, lat) {
			return
		}
		lvl := DisplayLevel(a, parent)
		if found && SeverityRank(lvl) >= SeverityRank(best.Level) {
			return
		}
		best = Hit{
			Area:   a,
			Level:  lvl,
			Label:  LevelLabel(lvl),
			Height: EffectiveHeight(a, parent),
		}
		found = true
	}
	for i := range areas {
		a := &areas[i]
		if !a.HasSubAreas() {
			consider(*a, nil)
			continue
		}
		for _, s := range a.SubAreas {
			consider(s, a)
		}
	}
	return best, found
}
