// Package geo provides spherical-earth distance and projection primitives.
package geo

import (
	"math"

	"github.com/ukydev/fleet-tracking/internal/models"
)

// EarthRadiusMeters is the mean Earth radius used for all spherical math.
const EarthRadiusMeters = 6371000.0

// DefaultCircleSteps is the default sampling granularity for CircleToPolygon.
const DefaultCircleSteps = 64

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

func toDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}

// Haversine returns the great-circle distance in meters between two points.
// Invalid inputs produce NaN, which propagates; the function never panics.
func Haversine(a, b models.Location) float64 {
	dLat := toRad(b.Lat - a.Lat)
	dLon := toRad(b.Lon - a.Lon)
	lat1 := toRad(a.Lat)
	lat2 := toRad(b.Lat)
	s := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return EarthRadiusMeters * 2 * math.Atan2(math.Sqrt(s), math.Sqrt(1-s))
}

// Destination projects a point from origin along the given forward bearing
// (degrees clockwise from north) for the given distance in meters, using the
// direct geodesic formula on a sphere.
func Destination(origin models.Location, bearingDeg, distanceM float64) models.Location {
	lat1 := toRad(origin.Lat)
	lon1 := toRad(origin.Lon)
	brng := toRad(bearingDeg)
	d := distanceM / EarthRadiusMeters

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(d) +
		math.Cos(lat1)*math.Sin(d)*math.Cos(brng))
	lon2 := lon1 + math.Atan2(
		math.Sin(brng)*math.Sin(d)*math.Cos(lat1),
		math.Cos(d)-math.Sin(lat1)*math.Sin(lat2))

	// Normalize longitude to [-180, 180).
	lonDeg := math.Mod(toDeg(lon2)+540, 360) - 180
	return models.Location{Lat: toDeg(lat2), Lon: lonDeg}
}

// CircleToPolygon approximates a circle as a closed ring of steps+1 points,
// sampling equally spaced bearings around the center and repeating the first
// point as the last to close the ring. steps <= 0 falls back to
// DefaultCircleSteps. The step count trades fidelity against cost.
func CircleToPolygon(center models.Location, radiusM float64, steps int) []models.Location {
	if steps <= 0 {
		steps = DefaultCircleSteps
	}
	ring := make([]models.Location, 0, steps+1)
	for i := 0; i < steps; i++ {
		bearing := float64(i) * 360 / float64(steps)
		ring = append(ring, Destination(center, bearing, radiusM))
	}
	ring = append(ring, ring[0])
	return ring
}
