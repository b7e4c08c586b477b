// Package geofence evaluates spatial containment of points against circular
// and polygonal regions.
package geofence

import (
	"github.com/ukydev/fleet-tracking/internal/geo"
	"github.com/ukydev/fleet-tracking/internal/models"
)

// Region is a validated geofence geometry. It is a closed sum: the only
// implementations are Circle and Polygon, both constructed through NewCircle,
// NewPolygon or FromModel so malformed geometry is rejected up front.
type Region interface {
	// Contains reports whether the point lies inside the region. Region
	// boundaries are inclusive for circles; polygon edge behavior follows
	// the even-odd ray cast.
	Contains(p models.Location) bool

	// sealed prevents implementations outside this package.
	sealed()
}

// Circle is a circular region defined by a center and radius in meters.
type Circle struct {
	Center  models.Location
	RadiusM float64
}

// NewCircle validates and builds a circular region. A non-positive radius is
// a configuration error, never silently treated as "contains nothing".
func NewCircle(center models.Location, radiusM float64) (Circle, error) {
	if radiusM <= 0 {
		return Circle{}, models.NewConfigurationError("circle geofence radius must be positive, got %f", radiusM)
	}
	if !center.InRange() {
		return Circle{}, models.NewConfigurationError("circle geofence center out of range: lat=%f lon=%f", center.Lat, center.Lon)
	}
	return Circle{Center: center, RadiusM: radiusM}, nil
}

// Contains uses the exact great-circle distance; the boundary is inclusive.
func (c Circle) Contains(p models.Location) bool {
	return geo.Haversine(c.Center, p) <= c.RadiusM
}

func (c Circle) sealed() {}

// Ring returns a closed polygonal approximation of the circle for display and
// export, sampled at the given granularity.
func (c Circle) Ring(steps int) []models.Location {
	return geo.CircleToPolygon(c.Center, c.RadiusM, steps)
}

// Polygon is a polygonal region defined by a closed ring of vertices.
type Polygon struct {
	ring []models.Location
}

// NewPolygon validates and builds a polygonal region. The ring is implicitly
// closed: if the first vertex is not repeated as the last, it is appended.
// Fewer than 3 distinct vertices is a configuration error.
func NewPolygon(ring []models.Location) (Polygon, error) {
	if len(ring) == 0 {
		return Polygon{}, models.NewConfigurationError("polygon geofence has no vertices")
	}
	closed := make([]models.Location, len(ring))
	copy(closed, ring)
	if closed[0] != closed[len(closed)-1] {
		closed = append(closed, closed[0])
	}
	distinct := countDistinct(closed[:len(closed)-1])
	if distinct < 3 {
		return Polygon{}, models.NewConfigurationError("polygon geofence needs at least 3 distinct vertices, got %d", distinct)
	}
	for _, v := range closed {
		if !v.InRange() {
			return Polygon{}, models.NewConfigurationError("polygon geofence vertex out of range: lat=%f lon=%f", v.Lat, v.Lon)
		}
	}
	return Polygon{ring: closed}, nil
}

func countDistinct(points []models.Location) int {
	seen := make(map[models.Location]struct{}, len(points))
	for _, p := range points {
		seen[p] = struct{}{}
	}
	return len(seen)
}

// Contains runs an even-odd ray cast over the ring in (lon, lat) order. The
// test treats coordinates as planar, which is a known approximation valid at
// the regional scale of typical geofences (sub-100km), not a geodesically
// exact containment test.
func (pg Polygon) Contains(p models.Location) bool {
	inside := false
	n := len(pg.ring)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := pg.ring[i].Lon, pg.ring[i].Lat
		xj, yj := pg.ring[j].Lon, pg.ring[j].Lat
		if (yi > p.Lat) != (yj > p.Lat) &&
			p.Lon < (xj-xi)*(p.Lat-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}

func (pg Polygon) sealed() {}

// Ring returns the closed vertex ring.
func (pg Polygon) Ring() []models.Location {
	out := make([]models.Location, len(pg.ring))
	copy(out, pg.ring)
	return out
}

// FromModel builds a validated Region from a stored geofence document. The
// document's type tag selects the geometry; anything else is a configuration
// error.
func FromModel(g *models.Geofence) (Region, error) {
	switch g.Type {
	case models.GeofenceCircle:
		return NewCircle(g.Center, g.RadiusM)
	case models.GeofencePolygon:
		return NewPolygon(g.Ring)
	default:
		return nil, models.NewConfigurationError("geofence %q has unknown type %q", g.Name, g.Type)
	}
}

// Contains evaluates a stored geofence document against a point. Malformed
// geofences surface a configuration error rather than silently returning
// false.
func Contains(g *models.Geofence, p models.Location) (bool, error) {
	region, err := FromModel(g)
	if err != nil {
		return false, err
	}
	return region.Contains(p), nil
}
