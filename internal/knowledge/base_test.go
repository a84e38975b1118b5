package knowledge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dayplan/itinerary-backend-go/internal/models"
)

func newTestBase(t *testing.T) *Base {
	t.Helper()
	b, err := New()
	require.NoError(t, err)
	return b
}

func TestNewFromJSONRejectsBadInput(t *testing.T) {
	_, err := NewFromJSON([]byte("not json"))
	assert.Error(t, err)

	_, err = NewFromJSON([]byte("[]"))
	assert.Error(t, err)

	dup := `[{"name":"Back Bay"},{"name":"back bay"}]`
	_, err = NewFromJSON([]byte(dup))
	assert.ErrorContains(t, err, "duplicate")
}

func TestGetCaseInsensitive(t *testing.T) {
	b := newTestBase(t)

	a, ok := b.Get("back bay")
	require.True(t, ok)
	assert.Equal(t, "Back Bay", a.Name)
	assert.Equal(t, models.AreaTypeNeighborhood, a.Type)

	_, ok = b.Get("Allston")
	assert.False(t, ok)
}

func TestAllReturnsCopy(t *testing.T) {
	b := newTestBase(t)

	all := b.All()
	require.NotEmpty(t, all)
	all[0] = nil
	assert.NotNil(t, b.All()[0])
}

func TestByCharacteristic(t *testing.T) {
	b := newTestBase(t)

	outdoor := b.ByCharacteristic("outdoor")
	names := areaNames(outdoor)
	assert.Contains(t, names, "Seaport")
	assert.Contains(t, names, "Jamaica Plain")
	assert.NotContains(t, names, "Chinatown")

	assert.Empty(t, b.ByCharacteristic("subterranean"))
}

func TestInRegion(t *testing.T) {
	b := newTestBase(t)

	cambridge := b.InRegion("cambridge")
	assert.Len(t, cambridge, 3)
	assert.Contains(t, areaNames(cambridge), "Harvard Square")
}

func TestByCrowdLevelQuietestFirst(t *testing.T) {
	b := newTestBase(t)

	quiet := b.ByCrowdLevel(models.BucketWeekend, 3)
	require.NotEmpty(t, quiet)
	assert.Equal(t, "Kendall Square", quiet[0].Name)
	for i := 1; i < len(quiet); i++ {
		prev := quiet[i-1].CrowdLevels.For(models.BucketWeekend)
		cur := quiet[i].CrowdLevels.For(models.BucketWeekend)
		assert.LessOrEqual(t, prev, cur)
		assert.LessOrEqual(t, cur, 3)
	}
}

func TestNearest(t *testing.T) {
	b := newTestBase(t)

	// Fenway Park
	a := b.Nearest(models.LatLng{Lat: 42.3467, Lng: -71.0972})
	require.NotNil(t, a)
	assert.Equal(t, "Fenway", a.Name)

	// Harvard Yard
	a = b.Nearest(models.LatLng{Lat: 42.374, Lng: -71.1169})
	require.NotNil(t, a)
	assert.Equal(t, "Harvard Square", a.Name)
}

func TestNeighborsSkipsDanglingReferences(t *testing.T) {
	b := newTestBase(t)

	// Fenway lists Allston, which is not in the dataset
	names := areaNames(b.Neighbors("Fenway"))
	assert.Contains(t, names, "Back Bay")
	assert.Contains(t, names, "South End")
	assert.NotContains(t, names, "Allston")

	assert.Nil(t, b.Neighbors("Nowhere"))
}

func TestNeighborAsymmetries(t *testing.T) {
	b := newTestBase(t)

	findings := b.NeighborAsymmetries()
	require.NotEmpty(t, findings)

	assert.Contains(t, findings, Asymmetry{From: "Fenway", To: "Allston", Reason: "missing"})
	assert.Contains(t, findings, Asymmetry{From: "Jamaica Plain", To: "Roxbury", Reason: "missing"})
	assert.Contains(t, findings, Asymmetry{From: "Chinatown", To: "Theater District", Reason: "missing"})
	assert.Contains(t, findings, Asymmetry{From: "Fenway", To: "South End", Reason: "one-way"})
	assert.Contains(t, findings, Asymmetry{From: "West End", To: "Downtown", Reason: "one-way"})
	assert.Contains(t, findings, Asymmetry{From: "Charlestown", To: "West End", Reason: "one-way"})

	// Fully reciprocated edges must not be reported
	for _, f := range findings {
		assert.False(t, f.From == "Back Bay" && f.To == "Fenway")
	}
}

func areaNames(areas []*models.Area) []string {
	out := make([]string, len(areas))
	for i, a := range areas {
		out[i] = a.Name
	}
	return out
}
