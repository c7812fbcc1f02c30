// Package location has the small amount of geometry the planner needs:
// distances between saved places and links that open them on a map.
package location

import (
	"fmt"
	"math"
	"net/url"

	"github.com/atinylittleshell/memorycare/internal/models"
)

const earthRadiusMeters = 6371008.8

// Distance returns the great-circle distance between a and b in metres.
func Distance(a, b models.LocationInfo) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(h)))
}

// Nearest returns the saved place closest to from. ok is false when places is
// empty.
func Nearest(from models.LocationInfo, places []models.SavedLocation) (nearest models.SavedLocation, meters float64, ok bool) {
	for i, place := range places {
		d := Distance(from, place.Location)
		if i == 0 || d < meters {
			nearest, meters, ok = place, d, true
		}
	}
	return nearest, meters, ok
}

// MapsLink returns a Google Maps URL centred on loc.
func MapsLink(loc models.LocationInfo) string {
	query := url.Values{}
	query.Set("q", fmt.Sprintf("%.6f,%.6f", loc.Latitude, loc.Longitude))
	return "https://www.google.com/maps?" + query.Encode()
}

// DirectionsLink returns a Google Maps walking directions URL from origin to
// destination.
func DirectionsLink(origin, destination models.LocationInfo) string {
	query := url.Values{}
	query.Set("api", "1")
	query.Set("origin", fmt.Sprintf("%.6f,%.6f", origin.Latitude, origin.Longitude))
	query.Set("destination", fmt.Sprintf("%.6f,%.6f", destination.Latitude, destination.Longitude))
	query.Set("travelmode", "walking")
	return "https://www.google.com/maps/dir/?" + query.Encode()
}
