// Package classify maps vehicle event types to severity, priority and
// event-specific enrichment data.
package classify

import (
	"math"

	"github.com/ukydev/fleet-tracking/internal/models"
)

// gravity is standard gravitational acceleration in m/s², used to express
// harsh driving readings as g-force.
const gravity = 9.81

// EventData carries the raw readings an event was synthesized from. Fields
// irrelevant to the event type are ignored by classification.
type EventData struct {
	SpeedKph      float64
	SpeedLimitKph float64
	AccelMS2      float64
	IdleSec       int
	GeofenceID    string
	GeofenceName  string
	OverdueDays   int
	FuelLevelPct  float64
	BatteryPct    float64
}

// Classification is the two-axis urgency assignment plus enrichment payload.
type Classification struct {
	Severity   models.Severity
	Priority   models.Priority
	Enrichment map[string]interface{}
}

// severityTable and priorityTable are exhaustive over the taxonomy; event
// types absent from them resolve through the explicit default arm in Classify
// rather than through zero-value lookups.
var severityTable = map[models.EventType]models.Severity{
	models.EventGeofenceEnter:     models.SeverityInfo,
	models.EventGeofenceExit:      models.SeverityInfo,
	models.EventSpeedAlert:        models.SeverityWarning,
	models.EventIdleTimeout:       models.SeverityWarning,
	models.EventPanicButton:       models.SeverityCritical,
	models.EventTamperAlert:       models.SeverityCritical,
	models.EventHarshAcceleration: models.SeverityWarning,
	models.EventHarshBraking:      models.SeverityWarning,
	models.EventMaintenanceDue:    models.SeverityWarning,
	models.EventLowFuel:           models.SeverityWarning,
	models.EventLowBattery:        models.SeverityWarning,
	models.EventDeviceOffline:     models.SeverityWarning,
}

var priorityTable = map[models.EventType]models.Priority{
	models.EventGeofenceEnter:     models.PriorityMedium,
	models.EventGeofenceExit:      models.PriorityMedium,
	models.EventSpeedAlert:        models.PriorityHigh,
	models.EventIdleTimeout:       models.PriorityLow,
	models.EventPanicButton:       models.PriorityHigh,
	models.EventTamperAlert:       models.PriorityHigh,
	models.EventHarshAcceleration: models.PriorityMedium,
	models.EventHarshBraking:      models.PriorityMedium,
	models.EventMaintenanceDue:    models.PriorityMedium,
	models.EventLowFuel:           models.PriorityLow,
	models.EventLowBattery:        models.PriorityLow,
	models.EventDeviceOffline:     models.PriorityMedium,
}

// Classify resolves severity, priority and enrichment for an event type. The
// function is total: unknown event types degrade to info/low with empty
// enrichment so that ingestion never stalls on an unrecognized event.
func Classify(eventType models.EventType, data EventData) Classification {
	severity, ok := severityTable[eventType]
	if !ok {
		severity = models.SeverityInfo
	}
	priority, ok := priorityTable[eventType]
	if !ok {
		priority = models.PriorityLow
	}
	return Classification{
		Severity:   severity,
		Priority:   priority,
		Enrichment: enrich(eventType, data),
	}
}

func enrich(eventType models.EventType, data EventData) map[string]interface{} {
	enrichment := map[string]interface{}{}
	switch eventType {
	case models.EventSpeedAlert:
		enrichment["overspeed_amount"] = data.SpeedKph - data.SpeedLimitKph
		enrichment["speed_limit_kph"] = data.SpeedLimitKph
	case models.EventHarshAcceleration, models.EventHarshBraking:
		enrichment["g_force"] = math.Abs(data.AccelMS2) / gravity
	case models.EventGeofenceEnter, models.EventGeofenceExit:
		enrichment["geofence_id"] = data.GeofenceID
		enrichment["geofence_name"] = data.GeofenceName
	case models.EventIdleTimeout:
		enrichment["idle_sec"] = data.IdleSec
	case models.EventMaintenanceDue:
		enrichment["overdue_days"] = data.OverdueDays
	case models.EventLowFuel:
		enrichment["fuel_level_pct"] = data.FuelLevelPct
	case models.EventLowBattery:
		enrichment["battery_pct"] = data.BatteryPct
	}
	return enrichment
}
