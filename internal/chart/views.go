package chart

import (
	"fmt"
	"io"
	"strconv"

	"github.com/sydlexius/coverlens/internal/aggregate"
)

// View names a chart derived from an aggregate summary.
type View string

const (
	ViewGenre     View = "genre"
	ViewYears     View = "years"
	ViewInfluence View = "influence"
)

// Views lists the supported chart views.
var Views = []View{ViewGenre, ViewYears, ViewInfluence}

// ParseView validates a view name.
func ParseView(s string) (View, error) {
	for _, v := range Views {
		if string(v) == s {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown chart view %q (want genre, years or influence)", s)
}

// Render draws the given view of s as PNG. Genre and influence are bar
// charts sorted by count; years is a line chart in year order.
func Render(w io.Writer, view View, s aggregate.Summary) error {
	switch view {
	case ViewGenre:
		return Bar(w, "Genre Distribution", countPoints(s.Genres()))
	case ViewInfluence:
		return Bar(w, "Top Influential Artists", countPoints(s.TopInfluences()))
	case ViewYears:
		years := s.Years()
		points := make([]Point, len(years))
		for i, y := range years {
			points[i] = Point{Label: strconv.Itoa(y.Year), Value: y.Count}
		}
		return Line(w, "Covers Over Time", points)
	default:
		return fmt.Errorf("unknown chart view %q", view)
	}
}

func countPoints(counts []aggregate.Count) []Point {
	points := make([]Point, len(counts))
	for i, c := range counts {
		points[i] = Point{Label: c.Label, Value: c.Count}
	}
	return points
}
