package aggregate

import (
	"cmp"
	"slices"

	"github.com/sydlexius/coverlens/internal/covers"
)

// DefaultTarget labels the artist at the center of the influence graph.
const DefaultTarget = "Target Artist"

// Summary holds the three derived views of a set of cover records.
type Summary struct {
	Influence map[string]int `json:"influence"`
	Genre     map[string]int `json:"genre"`
	ByYear    map[int]int    `json:"by_year"`
}

// Count is one labeled bucket, used for sorted display.
type Count struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// YearCount is one year bucket.
type YearCount struct {
	Year  int `json:"year"`
	Count int `json:"count"`
}

// Edge is a weighted directed edge of the influence graph.
type Edge struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Weight int    `json:"weight"`
}

// Aggregate counts records by performer, by genre and by year. Performer
// names are compared exactly. Records without a genre count as
// covers.UnknownGenre; records without a year are left out of ByYear.
func Aggregate(records []covers.CoverRecord) Summary {
	s := Summary{
		Influence: make(map[string]int),
		Genre:     make(map[string]int),
		ByYear:    make(map[int]int),
	}
	for _, r := range records {
		s.Influence[r.Performer]++

		genre := r.Genre
		if genre == "" {
			genre = covers.UnknownGenre
		}
		s.Genre[genre]++

		if r.Year != nil {
			s.ByYear[*r.Year]++
		}
	}
	return s
}

// TopInfluences returns performer counts, largest first, ties by name.
func (s Summary) TopInfluences() []Count {
	return sortedCounts(s.Influence)
}

// Genres returns genre counts, largest first, ties by name.
func (s Summary) Genres() []Count {
	return sortedCounts(s.Genre)
}

// Years returns year counts in ascending year order.
func (s Summary) Years() []YearCount {
	out := make([]YearCount, 0, len(s.ByYear))
	for y, n := range s.ByYear {
		out = append(out, YearCount{Year: y, Count: n})
	}
	slices.SortFunc(out, func(a, b YearCount) int { return cmp.Compare(a.Year, b.Year) })
	return out
}

// Graph returns one edge per performer pointing at target, weighted by the
// performer's count, in TopInfluences order. An empty target uses DefaultTarget.
func (s Summary) Graph(target string) []Edge {
	if target == "" {
		target = DefaultTarget
	}
	top := s.TopInfluences()
	edges := make([]Edge, 0, len(top))
	for _, c := range top {
		edges = append(edges, Edge{From: c.Label, To: target, Weight: c.Count})
	}
	return edges
}

func sortedCounts(m map[string]int) []Count {
	out := make([]Count, 0, len(m))
	for k, v := range m {
		out = append(out, Count{Label: k, Count: v})
	}
	slices.SortFunc(out, func(a, b Count) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Label, b.Label)
	})
	return out
}
