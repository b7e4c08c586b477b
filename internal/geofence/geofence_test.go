package geofence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/ukydev/fleet-tracking/internal/geo"
	"github.com/ukydev/fleet-tracking/internal/models"
)

func TestNewCircle_Validation(t *testing.T) {
	center := models.Location{Lat: 51.5, Lon: -0.12}

	_, err := NewCircle(center, 0)
	assert.Error(t, err)
	assert.True(t, models.IsKind(err, models.KindConfiguration))

	_, err = NewCircle(center, -100)
	assert.Error(t, err)

	_, err = NewCircle(models.Location{Lat: 95, Lon: 0}, 100)
	assert.Error(t, err)

	c, err := NewCircle(center, 250)
	assert.NoError(t, err)
	assert.Equal(t, 250.0, c.RadiusM)
}

func TestCircle_Contains(t *testing.T) {
	center := models.Location{Lat: 51.5074, Lon: -0.1278}
	c, err := NewCircle(center, 1000)
	if err != nil {
		t.Fatalf("NewCircle: %v", err)
	}

	tests := []struct {
		name     string
		point    models.Location
		expected bool
	}{
		{"center", center, true},
		{"just inside", geo.Destination(center, 90, 999), true},
		{"near boundary inside", geo.Destination(center, 45, 999.9), true},
		{"just outside", geo.Destination(center, 90, 1002), false},
		{"far away", models.Location{Lat: 48.8566, Lon: 2.3522}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Contains(tt.point); got != tt.expected {
				t.Errorf("Contains(%+v) = %v, want %v", tt.point, got, tt.expected)
			}
		})
	}
}

func TestCircle_ContainsMatchesHaversine(t *testing.T) {
	center := models.Location{Lat: 40.0, Lon: -74.0}
	c, _ := NewCircle(center, 500)
	for _, bearing := range []float64{0, 60, 120, 180, 240, 300} {
		for _, dist := range []float64{10, 499, 501, 2000} {
			p := geo.Destination(center, bearing, dist)
			want := geo.Haversine(center, p) <= c.RadiusM
			if got := c.Contains(p); got != want {
				t.Errorf("bearing %.0f dist %.0f: Contains = %v, haversine rule = %v", bearing, dist, got, want)
			}
		}
	}
}

func TestNewPolygon_Validation(t *testing.T) {
	_, err := NewPolygon(nil)
	assert.True(t, models.IsKind(err, models.KindConfiguration))

	// Two distinct vertices, even with the ring closed, is degenerate.
	_, err = NewPolygon([]models.Location{
		{Lat: 0, Lon: 0}, {Lat: 1, Lon: 1}, {Lat: 0, Lon: 0},
	})
	assert.True(t, models.IsKind(err, models.KindConfiguration))

	_, err = NewPolygon([]models.Location{
		{Lat: 0, Lon: 0}, {Lat: 0, Lon: 200}, {Lat: 1, Lon: 1},
	})
	assert.True(t, models.IsKind(err, models.KindConfiguration))

	pg, err := NewPolygon([]models.Location{
		{Lat: 0, Lon: 0}, {Lat: 0, Lon: 1}, {Lat: 1, Lon: 1},
	})
	assert.NoError(t, err)
	// Ring closed implicitly.
	ring := pg.Ring()
	assert.Len(t, ring, 4)
	assert.Equal(t, ring[0], ring[3])
}

func TestPolygon_Contains(t *testing.T) {
	// Unit square around the origin.
	pg, err := NewPolygon([]models.Location{
		{Lat: -1, Lon: -1}, {Lat: -1, Lon: 1}, {Lat: 1, Lon: 1}, {Lat: 1, Lon: -1},
	})
	if err != nil {
		t.Fatalf("NewPolygon: %v", err)
	}

	tests := []struct {
		name     string
		point    models.Location
		expected bool
	}{
		{"center", models.Location{Lat: 0, Lon: 0}, true},
		{"inside near corner", models.Location{Lat: 0.9, Lon: 0.9}, true},
		{"outside north", models.Location{Lat: 1.5, Lon: 0}, false},
		{"outside east", models.Location{Lat: 0, Lon: 1.5}, false},
		{"far outside", models.Location{Lat: 50, Lon: 50}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pg.Contains(tt.point); got != tt.expected {
				t.Errorf("Contains(%+v) = %v, want %v", tt.point, got, tt.expected)
			}
		})
	}
}

func TestPolygon_ContainsConcave(t *testing.T) {
	// L-shape: the notch at the top right is outside.
	pg, err := NewPolygon([]models.Location{
		{Lat: 0, Lon: 0}, {Lat: 0, Lon: 2}, {Lat: 1, Lon: 2},
		{Lat: 1, Lon: 1}, {Lat: 2, Lon: 1}, {Lat: 2, Lon: 0},
	})
	if err != nil {
		t.Fatalf("NewPolygon: %v", err)
	}
	assert.True(t, pg.Contains(models.Location{Lat: 0.5, Lon: 0.5}))
	assert.True(t, pg.Contains(models.Location{Lat: 1.5, Lon: 0.5}))
	assert.False(t, pg.Contains(models.Location{Lat: 1.5, Lon: 1.5}))
}

func TestContains_FromModel(t *testing.T) {
	circle := &models.Geofence{
		Name: "depot", Type: models.GeofenceCircle,
		Center: models.Location{Lat: 51.5, Lon: -0.12}, RadiusM: 300,
	}
	inside, err := Contains(circle, models.Location{Lat: 51.5, Lon: -0.12})
	assert.NoError(t, err)
	assert.True(t, inside)

	polygon := &models.Geofence{
		Name: "yard", Type: models.GeofencePolygon,
		Ring: []models.Location{{Lat: -1, Lon: -1}, {Lat: -1, Lon: 1}, {Lat: 1, Lon: 1}, {Lat: 1, Lon: -1}},
	}
	inside, err = Contains(polygon, models.Location{Lat: 0, Lon: 0})
	assert.NoError(t, err)
	assert.True(t, inside)

	bad := &models.Geofence{Name: "broken", Type: "ellipse"}
	_, err = Contains(bad, models.Location{})
	assert.True(t, models.IsKind(err, models.KindConfiguration))

	degenerate := &models.Geofence{Name: "flat", Type: models.GeofenceCircle, RadiusM: 0}
	_, err = Contains(degenerate, models.Location{})
	assert.True(t, models.IsKind(err, models.KindConfiguration))
}

func TestCircleRingContainment(t *testing.T) {
	// Points comfortably inside a circle should also test inside its
	// polygonized ring at default granularity.
	center := models.Location{Lat: 52.52, Lon: 13.405}
	c, _ := NewCircle(center, 1000)
	pg, err := NewPolygon(c.Ring(geo.DefaultCircleSteps))
	if err != nil {
		t.Fatalf("NewPolygon from ring: %v", err)
	}
	for _, bearing := range []float64{0, 90, 180, 270} {
		inside := geo.Destination(center, bearing, 900)
		if !pg.Contains(inside) {
			t.Errorf("point %.0fm inside the circle not inside the polygonized ring", 900.0)
		}
		outside := geo.Destination(center, bearing, 1100)
		if pg.Contains(outside) {
			t.Errorf("point outside the circle reported inside the polygonized ring")
		}
	}
}
