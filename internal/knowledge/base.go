package knowledge

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/dayplan/itinerary-backend-go/internal/models"
	"github.com/dayplan/itinerary-backend-go/internal/spatial"
)

//go:embed data/boston_areas.json
var bostonAreas []byte

// Base is the immutable area knowledge base. It is built once at process
// start into an indexed lookup and is safe for unsynchronized concurrent
// reads. Queries never mutate state.
type Base struct {
	byKey   map[string]*models.Area // lower-cased name -> area
	ordered []*models.Area          // dataset order, for stable iteration
}

// New builds the knowledge base from the embedded dataset
func New() (*Base, error) {
	return NewFromJSON(bostonAreas)
}

// NewFromJSON builds a knowledge base from raw dataset bytes
func NewFromJSON(data []byte) (*Base, error) {
	var areas []models.Area
	if err := json.Unmarshal(data, &areas); err != nil {
		return nil, fmt.Errorf("failed to parse area dataset: %w", err)
	}
	if len(areas) == 0 {
		return nil, fmt.Errorf("area dataset is empty")
	}

	b := &Base{byKey: make(map[string]*models.Area, len(areas))}
	for i := range areas {
		a := &areas[i]
		key := strings.ToLower(a.Name)
		if _, dup := b.byKey[key]; dup {
			return nil, fmt.Errorf("duplicate area name %q in dataset", a.Name)
		}
		b.byKey[key] = a
		b.ordered = append(b.ordered, a)
	}
	return b, nil
}

// Get looks up an area by name, case-insensitively
func (b *Base) Get(name string) (*models.Area, bool) {
	a, ok := b.byKey[strings.ToLower(strings.TrimSpace(name))]
	return a, ok
}

// All returns every area in dataset order
func (b *Base) All() []*models.Area {
	out := make([]*models.Area, len(b.ordered))
	copy(out, b.ordered)
	return out
}

// Names returns all canonical area names in dataset order
func (b *Base) Names() []string {
	names := make([]string, len(b.ordered))
	for i, a := range b.ordered {
		names[i] = a.Name
	}
	return names
}

// ByCharacteristic returns areas carrying the given tag
func (b *Base) ByCharacteristic(tag string) []*models.Area {
	tag = strings.ToLower(strings.TrimSpace(tag))
	var out []*models.Area
	for _, a := range b.ordered {
		if a.HasCharacteristic(tag) {
			out = append(out, a)
		}
	}
	return out
}

// InRegion returns areas within the given region
func (b *Base) InRegion(region string) []*models.Area {
	var out []*models.Area
	for _, a := range b.ordered {
		if strings.EqualFold(a.Region, region) {
			out = append(out, a)
		}
	}
	return out
}

// ByCrowdLevel returns areas whose crowd level for the bucket is at most max,
// quietest first
func (b *Base) ByCrowdLevel(bucket models.TimeBucket, max int) []*models.Area {
	var out []*models.Area
	for _, a := range b.ordered {
		if lvl := a.CrowdLevels.For(bucket); lvl > 0 && lvl <= max {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CrowdLevels.For(bucket) < out[j].CrowdLevels.For(bucket)
	})
	return out
}

// Nearest returns the area whose center is closest to the given point
func (b *Base) Nearest(loc models.LatLng) *models.Area {
	var best *models.Area
	bestDist := 0.0
	for _, a := range b.ordered {
		d := spatial.HaversineDistance(loc, models.LatLng{Lat: a.Lat, Lng: a.Lon})
		if best == nil || d < bestDist {
			best, bestDist = a, d
		}
	}
	return best
}

// Neighbors returns the neighbor areas of the named area that exist in the
// dataset. Dangling references are skipped here; NeighborAsymmetries reports
// them.
func (b *Base) Neighbors(name string) []*models.Area {
	a, ok := b.Get(name)
	if !ok {
		return nil
	}
	var out []*models.Area
	for _, n := range a.Neighbors {
		if na, ok := b.Get(n); ok {
			out = append(out, na)
		}
	}
	return out
}

// Asymmetry is one data-quality finding in the neighbor graph
type Asymmetry struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Reason string `json:"reason"` // "missing" or "one-way"
}

// NeighborAsymmetries reports neighbor references that point at areas absent
// from the dataset, and edges that are not reciprocated. The graph is
// intended to be symmetric but is not guaranteed to be; findings are a data
// quality signal, not an error.
func (b *Base) NeighborAsymmetries() []Asymmetry {
	var out []Asymmetry
	for _, a := range b.ordered {
		for _, n := range a.Neighbors {
			other, ok := b.Get(n)
			if !ok {
				out = append(out, Asymmetry{From: a.Name, To: n, Reason: "missing"})
				continue
			}
			reciprocated := false
			for _, back := range other.Neighbors {
				if strings.EqualFold(back, a.Name) {
					reciprocated = true
					break
				}
			}
			if !reciprocated {
				out = append(out, Asymmetry{From: a.Name, To: other.Name, Reason: "one-way"})
			}
		}
	}
	return out
}
