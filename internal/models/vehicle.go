package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VehicleStatus is the operational state of a fleet vehicle.
type VehicleStatus string

const (
	VehicleActive         VehicleStatus = "active"
	VehicleInactive       VehicleStatus = "inactive"
	VehicleMaintenance    VehicleStatus = "maintenance"
	VehicleDecommissioned VehicleStatus = "decommissioned"
)

// AlertSettings holds per-vehicle thresholds and per-alert-type enable flags.
type AlertSettings struct {
	SpeedLimitKph  float64         `bson:"speed_limit_kph" json:"speed_limit_kph"`
	IdleTimeoutSec int             `bson:"idle_timeout_sec" json:"idle_timeout_sec"`
	Enabled        map[string]bool `bson:"enabled" json:"enabled"`
}

// Vehicle represents a fleet vehicle owned by exactly one customer. Geofence
// assignments are weak references by identifier, not ownership.
type Vehicle struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CustomerID      string             `bson:"customer_id" json:"customer_id"`
	DeviceID        string             `bson:"device_id,omitempty" json:"device_id,omitempty"`
	GeofenceIDs     []string           `bson:"geofence_ids" json:"geofence_ids"`
	VIN             string             `bson:"vin,omitempty" json:"vin,omitempty"`
	LicensePlate    string             `bson:"license_plate,omitempty" json:"license_plate,omitempty"`
	Make            string             `bson:"make" json:"make"`
	Model           string             `bson:"model" json:"model"`
	Year            int                `bson:"year" json:"year"`
	CurrentLocation Location           `bson:"current_location" json:"current_location"`
	OdometerKm      float64            `bson:"odometer_km" json:"odometer_km"`
	FuelLevelPct    float64            `bson:"fuel_level_pct" json:"fuel_level_pct"`
	NextServiceKm   float64            `bson:"next_service_km" json:"next_service_km"`
	NextServiceDate *time.Time         `bson:"next_service_date,omitempty" json:"next_service_date,omitempty"`
	InsuranceExpiry *time.Time         `bson:"insurance_expiry,omitempty" json:"insurance_expiry,omitempty"`
	Alerts          AlertSettings      `bson:"alerts" json:"alerts"`
	Status          VehicleStatus      `bson:"status" json:"status"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time          `bson:"updated_at" json:"updated_at"`
}

// IsValidVehicleStatus checks if a status belongs to the vehicle lifecycle.
func IsValidVehicleStatus(status VehicleStatus) bool {
	switch status {
	case VehicleActive, VehicleInactive, VehicleMaintenance, VehicleDecommissioned:
		return true
	default:
		return false
	}
}

// AlertEnabled reports whether alerts of the given event type are enabled for
// this vehicle. Types absent from the map are enabled by default.
func (v *Vehicle) AlertEnabled(eventType EventType) bool {
	if v.Alerts.Enabled == nil {
		return true
	}
	enabled, ok := v.Alerts.Enabled[string(eventType)]
	if !ok {
		return true
	}
	return enabled
}
