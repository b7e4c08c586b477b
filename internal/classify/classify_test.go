package classify

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/ukydev/fleet-tracking/internal/models"
)

func TestClassify_Tables(t *testing.T) {
	tests := []struct {
		name      string
		eventType models.EventType
		severity  models.Severity
		priority  models.Priority
	}{
		{"panic button", models.EventPanicButton, models.SeverityCritical, models.PriorityHigh},
		{"tamper alert", models.EventTamperAlert, models.SeverityCritical, models.PriorityHigh},
		{"speed alert", models.EventSpeedAlert, models.SeverityWarning, models.PriorityHigh},
		{"idle timeout", models.EventIdleTimeout, models.SeverityWarning, models.PriorityLow},
		{"geofence enter", models.EventGeofenceEnter, models.SeverityInfo, models.PriorityMedium},
		{"geofence exit", models.EventGeofenceExit, models.SeverityInfo, models.PriorityMedium},
		{"harsh braking", models.EventHarshBraking, models.SeverityWarning, models.PriorityMedium},
		{"maintenance due", models.EventMaintenanceDue, models.SeverityWarning, models.PriorityMedium},
		{"unknown type", models.EventType("unknown_type_xyz"), models.SeverityInfo, models.PriorityLow},
		{"empty type", models.EventType(""), models.SeverityInfo, models.PriorityLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Classify(tt.eventType, EventData{})
			if c.Severity != tt.severity {
				t.Errorf("Classify(%s).Severity = %s, want %s", tt.eventType, c.Severity, tt.severity)
			}
			if c.Priority != tt.priority {
				t.Errorf("Classify(%s).Priority = %s, want %s", tt.eventType, c.Priority, tt.priority)
			}
		})
	}
}

func TestClassify_UnknownTypeEmptyEnrichment(t *testing.T) {
	c := Classify("unknown_type_xyz", EventData{SpeedKph: 120, SpeedLimitKph: 80})
	assert.NotNil(t, c.Enrichment)
	assert.Empty(t, c.Enrichment)
}

func TestClassify_SpeedAlertEnrichment(t *testing.T) {
	c := Classify(models.EventSpeedAlert, EventData{SpeedKph: 100, SpeedLimitKph: 80})
	assert.Equal(t, 20.0, c.Enrichment["overspeed_amount"])
	assert.Equal(t, 80.0, c.Enrichment["speed_limit_kph"])
}

func TestClassify_HarshDrivingGForce(t *testing.T) {
	accel := Classify(models.EventHarshAcceleration, EventData{AccelMS2: 4.905})
	assert.InDelta(t, 0.5, accel.Enrichment["g_force"].(float64), 1e-9)

	// Braking readings are negative; g-force uses the magnitude.
	braking := Classify(models.EventHarshBraking, EventData{AccelMS2: -9.81})
	assert.InDelta(t, 1.0, braking.Enrichment["g_force"].(float64), 1e-9)
}

func TestClassify_GeofenceEnrichment(t *testing.T) {
	c := Classify(models.EventGeofenceEnter, EventData{GeofenceID: "gf-1", GeofenceName: "depot"})
	assert.Equal(t, "gf-1", c.Enrichment["geofence_id"])
	assert.Equal(t, "depot", c.Enrichment["geofence_name"])
}

func TestClassify_MaintenanceDueEnrichment(t *testing.T) {
	c := Classify(models.EventMaintenanceDue, EventData{OverdueDays: 12})
	assert.Equal(t, 12, c.Enrichment["overdue_days"])
}

func TestClassify_Deterministic(t *testing.T) {
	data := EventData{SpeedKph: 131.7, SpeedLimitKph: 90}
	first := Classify(models.EventSpeedAlert, data)
	for i := 0; i < 10; i++ {
		again := Classify(models.EventSpeedAlert, data)
		if again.Severity != first.Severity || again.Priority != first.Priority {
			t.Fatal("classification is not deterministic")
		}
		if math.Abs(again.Enrichment["overspeed_amount"].(float64)-first.Enrichment["overspeed_amount"].(float64)) > 0 {
			t.Fatal("enrichment is not deterministic")
		}
	}
}
