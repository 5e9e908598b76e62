// Package geo provides the great-circle distance used by the alert matching
// engine's radius predicate.
package geo

import (
	"math"

	"github.com/mapmarket/reaction-service/internal/domain"
)

// earthRadiusKm is the mean Earth radius.
const earthRadiusKm = 6371.0

// DistanceKm returns the haversine distance between two points in kilometers.
// If either point is absent the distance is +Inf, so any radius comparison
// fails closed.
func DistanceKm(a, b *domain.Coordinates) float64 {
	if a == nil || b == nil {
		return math.Inf(1)
	}

	dLat := toRad(b.Lat - a.Lat)
	dLng := toRad(b.Lng - a.Lng)
	lat1 := toRad(a.Lat)
	lat2 := toRad(b.Lat)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLng/2)*math.Sin(dLng/2)*math.Cos(lat1)*math.Cos(lat2)

	// Floating point can push h a hair past 1 near antipodal points; clamp so
	// the sqrt below cannot go NaN and poison a radius comparison.
	if h > 1 {
		h = 1
	}
	if h < 0 {
		h = 0
	}

	return 2 * earthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
