package classify

import (
	"math"

	"github.com/mohammed-shakir/airspace-overlay/internal/area"
)

// zone level codes
const (
	LevelAuthorized      = 1
	LevelRestricted      = 2
	LevelEnhancedWarning = 3
	LevelWarning         = 4
	LevelAltitudeLimit   = 6
	LevelRegulation      = 7
	LevelSuitable        = 8
	LevelScenic          = 10
)

const unknownRank = 100

var severityOrder = map[int]int{
	LevelRestricted:      0,
	LevelAltitudeLimit:   1,
	LevelAuthorized:      2,
	LevelEnhancedWarning: 3,
	LevelWarning:         4,
	LevelRegulation:      5,
	LevelScenic:          6,
	LevelSuitable:        7,
}

// SeverityRank orders level codes, lower is more severe. Unknown levels rank 100.
func SeverityRank(level int) int {
	if r, ok := severityOrder[level]; ok {
		return r
	}
	return unknownRank
}

var labels = map[int]string{
	LevelRestricted:      "禁飞区",
	LevelAltitudeLimit:   "限高区",
	LevelAuthorized:      "授权区",
	LevelWarning:         "警示区",
	LevelEnhancedWarning: "加强警示区",
	LevelRegulation:      "法规限制区",
	LevelSuitable:        "适飞区",
	LevelScenic:          "风景示范区",
}

const defaultLabel = "空域限制区"

// LevelLabel maps a level code to its display label.
func LevelLabel(level int) string {
	if l, ok := labels[level]; ok {
		return l
	}
	return defaultLabel
}

// SameGeometry: circles within 1e-5 degrees and 1 m radius, or identical polygons or paths.
func SameGeometry(a, b area.Area) bool {
	sa, sb := a.Shape, b.Shape
	if sa.Kind == area.KindNone || sa.Kind != sb.Kind {
		return false
	}
	if sa.Kind == area.KindCircle {
		return math.Abs(sa.Center.Latitude-sb.Center.Latitude) <= 1e-5 &&
			math.Abs(sa.Center.Longitude-sb.Center.Longitude) <= 1e-5 &&
			math.Abs(sa.Radius-sb.Radius) <= 1
	}
	return sa.Equal(sb)
}

// EffectiveHeight returns the area's own positive height, otherwise one
// inherited from a sibling sub-area (or the parent) sharing its footprint.
// parent is nil for top-level areas.
func EffectiveHeight(a area.Area, parent *area.Area) float64 {
	if a.Height > 0 {
		return a.Height
	}
	if parent == nil {
		return 0
	}
	for _, s := range parent.SubAreas {
		if s.Height > 0 && SameGeometry(a, s) {
			return s.Height
		}
	}
	if parent.Height > 0 && SameGeometry(a, *parent) {
		return parent.Height
	}
	return 0
}

// DisplayLevel is the level used for status: any effective height turns the
// area into an altitude-limit zone.
func DisplayLevel(a area.Area, parent *area.Area) int {
	if EffectiveHeight(a, parent) > 0 {
		return LevelAltitudeLimit
	}
	return a.Level
}

func LabelForArea(a area.Area, parent *area.Area) string {
	return LevelLabel(DisplayLevel(a, parent))
}
