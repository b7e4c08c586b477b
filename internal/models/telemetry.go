package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BusData carries vehicle-bus readings reported alongside a position fix.
type BusData struct {
	OdometerKm   float64 `bson:"odometer_km" json:"odometer_km"`
	FuelLevelPct float64 `bson:"fuel_level_pct" json:"fuel_level_pct"`
	EngineOn     bool    `bson:"engine_on" json:"engine_on"`
	AccelX       float64 `bson:"accel_x" json:"accel_x"`
	AccelY       float64 `bson:"accel_y" json:"accel_y"`
	AccelZ       float64 `bson:"accel_z" json:"accel_z"`
}

// DeviceHealth carries device self-reported health indicators.
type DeviceHealth struct {
	BatteryPct     float64 `bson:"battery_pct" json:"battery_pct"`
	SignalStrength int     `bson:"signal_strength" json:"signal_strength"`
	GPSFix         bool    `bson:"gps_fix" json:"gps_fix"`
}

// TelemetrySample is one raw report from a device at a timestamp. Samples are
// immutable once created and appended to a timestamp-indexed history per device.
type TelemetrySample struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	DeviceID        string             `bson:"device_id" json:"device_id"`
	VehicleID       string             `bson:"vehicle_id,omitempty" json:"vehicle_id,omitempty"`
	Timestamp       time.Time          `bson:"timestamp" json:"timestamp"`
	Location        Location           `bson:"location" json:"location"`
	AltitudeM       float64            `bson:"altitude_m" json:"altitude_m"`
	AccuracyM       float64            `bson:"accuracy_m" json:"accuracy_m"`
	HeadingDeg      float64            `bson:"heading_deg" json:"heading_deg"`
	SpeedKph        float64            `bson:"speed_kph" json:"speed_kph"`
	IdleSec         int                `bson:"idle_sec" json:"idle_sec"`
	Bus             BusData            `bson:"bus" json:"bus"`
	Health          DeviceHealth       `bson:"health" json:"health"`
	DiagnosticCodes []string           `bson:"diagnostic_codes" json:"diagnostic_codes"`
	PanicButton     bool               `bson:"panic_button" json:"panic_button"`
	TamperDetected  bool               `bson:"tamper_detected" json:"tamper_detected"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
}
