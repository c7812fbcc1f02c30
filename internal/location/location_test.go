package location

import (
	"net/url"
	"testing"

	"github.com/atinylittleshell/memorycare/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	hanoi  = models.LocationInfo{Latitude: 21.0285, Longitude: 105.8542}
	saigon = models.LocationInfo{Latitude: 10.7769, Longitude: 106.7009}
)

func TestDistance(t *testing.T) {
	assert.InDelta(t, 0, Distance(hanoi, hanoi), 1e-6)

	// Hanoi to Ho Chi Minh City is roughly 1,140 km as the crow flies.
	d := Distance(hanoi, saigon)
	assert.InDelta(t, 1_140_000, d, 20_000)
	assert.InDelta(t, d, Distance(saigon, hanoi), 1e-6)

	// A quarter of the equator.
	quarter := Distance(models.LocationInfo{}, models.LocationInfo{Longitude: 90})
	assert.InDelta(t, 10_007_557, quarter, 1_000)
}

func TestNearest(t *testing.T) {
	_, _, ok := Nearest(hanoi, nil)
	assert.False(t, ok)

	places := []models.SavedLocation{
		{ID: "1", Name: "Saigon", Location: saigon},
		{ID: "2", Name: "Lake", Location: models.LocationInfo{Latitude: 21.0287, Longitude: 105.8524}},
	}
	nearest, meters, ok := Nearest(hanoi, places)
	require.True(t, ok)
	assert.Equal(t, "Lake", nearest.Name)
	assert.Less(t, meters, 500.0)
}

func TestMapsLink(t *testing.T) {
	link := MapsLink(hanoi)
	parsed, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "www.google.com", parsed.Host)
	assert.Equal(t, "21.028500,105.854200", parsed.Query().Get("q"))
}

func TestDirectionsLink(t *testing.T) {
	parsed, err := url.Parse(DirectionsLink(saigon, hanoi))
	require.NoError(t, err)
	assert.Equal(t, "/maps/dir/", parsed.Path)
	assert.Equal(t, "10.776900,106.700900", parsed.Query().Get("origin"))
	assert.Equal(t, "21.028500,105.854200", parsed.Query().Get("destination"))
	assert.Equal(t, "walking", parsed.Query().Get("travelmode"))
}
