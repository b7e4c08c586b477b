package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EventType identifies a recognized vehicle event in the fixed taxonomy.
type EventType string

const (
	EventGeofenceEnter     EventType = "geofence_enter"
	EventGeofenceExit      EventType = "geofence_exit"
	EventSpeedAlert        EventType = "speed_alert"
	EventIdleTimeout       EventType = "idle_timeout"
	EventPanicButton       EventType = "panic_button"
	EventTamperAlert       EventType = "tamper_alert"
	EventHarshAcceleration EventType = "harsh_acceleration"
	EventHarshBraking      EventType = "harsh_braking"
	EventMaintenanceDue    EventType = "maintenance_due"
	EventLowFuel           EventType = "low_fuel"
	EventLowBattery        EventType = "low_battery"
	EventDeviceOffline     EventType = "device_offline"
)

// Severity classifies an event's urgency for display.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Priority classifies an event's urgency for routing.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Acknowledgement states of an event.
const (
	EventUnacknowledged = "unacknowledged"
	EventAcknowledged   = "acknowledged"
	EventResolved       = "resolved"
)

// VehicleEvent is a classified occurrence synthesized from a telemetry
// transition or a device signal. Events are immutable except for the
// acknowledge/resolve transitions.
type VehicleEvent struct {
	ID               primitive.ObjectID     `bson:"_id,omitempty" json:"id"`
	VehicleID        string                 `bson:"vehicle_id" json:"vehicle_id"`
	DeviceID         string                 `bson:"device_id,omitempty" json:"device_id,omitempty"`
	Type             EventType              `bson:"type" json:"type"`
	Severity         Severity               `bson:"severity" json:"severity"`
	Priority         Priority               `bson:"priority" json:"priority"`
	Location         Location               `bson:"location" json:"location"`
	SpeedKph         float64                `bson:"speed_kph" json:"speed_kph"`
	Enrichment       map[string]interface{} `bson:"enrichment" json:"enrichment"`
	AckState         string                 `bson:"ack_state" json:"ack_state"`
	AcknowledgedBy   string                 `bson:"acknowledged_by,omitempty" json:"acknowledged_by,omitempty"`
	AcknowledgedAt   *time.Time             `bson:"acknowledged_at,omitempty" json:"acknowledged_at,omitempty"`
	ResolvedBy       string                 `bson:"resolved_by,omitempty" json:"resolved_by,omitempty"`
	ResolvedAt       *time.Time             `bson:"resolved_at,omitempty" json:"resolved_at,omitempty"`
	NotificationSent bool                   `bson:"notification_sent" json:"notification_sent"`
	OccurredAt       time.Time              `bson:"occurred_at" json:"occurred_at"`
	CreatedAt        time.Time              `bson:"created_at" json:"created_at"`
}

// Acknowledge moves an unacknowledged event to acknowledged, attributed to
// the acting user. Any other starting state is rejected.
func (e *VehicleEvent) Acknowledge(actor string, at time.Time) error {
	if e.AckState != EventUnacknowledged {
		return NewValidationError("event %s cannot be acknowledged from state %q", e.ID.Hex(), e.AckState)
	}
	e.AckState = EventAcknowledged
	e.AcknowledgedBy = actor
	e.AcknowledgedAt = &at
	return nil
}

// Resolve moves an acknowledged event to resolved, attributed to the acting
// user. Resolving an unacknowledged or already resolved event is rejected.
func (e *VehicleEvent) Resolve(actor string, at time.Time) error {
	if e.AckState != EventAcknowledged {
		return NewValidationError("event %s cannot be resolved from state %q", e.ID.Hex(), e.AckState)
	}
	e.AckState = EventResolved
	e.ResolvedBy = actor
	e.ResolvedAt = &at
	return nil
}
