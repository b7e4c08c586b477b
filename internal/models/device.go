package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DeviceStatus is the lifecycle state of a tracking device.
type DeviceStatus string

const (
	DeviceSold        DeviceStatus = "sold"
	DeviceRegistered  DeviceStatus = "registered"
	DeviceActivated   DeviceStatus = "activated"
	DeviceSuspended   DeviceStatus = "suspended"
	DeviceDeactivated DeviceStatus = "deactivated"
)

// DeviceConfig holds per-device operational settings.
type DeviceConfig struct {
	ReportingIntervalSec int             `bson:"reporting_interval_sec" json:"reporting_interval_sec"`
	SpeedLimitKph        float64         `bson:"speed_limit_kph" json:"speed_limit_kph"`
	IdleTimeoutSec       int             `bson:"idle_timeout_sec" json:"idle_timeout_sec"`
	Features             map[string]bool `bson:"features" json:"features"`
}

// Device represents a physical tracking unit installed in a vehicle.
type Device struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SerialNumber string             `bson:"serial_number" json:"serial_number"`
	Model        string             `bson:"model" json:"model"`
	Firmware     string             `bson:"firmware" json:"firmware"`
	Status       DeviceStatus       `bson:"status" json:"status"`
	Config       DeviceConfig       `bson:"config" json:"config"`
	VehicleID    string             `bson:"vehicle_id,omitempty" json:"vehicle_id,omitempty"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}

// deviceRank orders lifecycle states for the monotonic-transition rule.
var deviceRank = map[DeviceStatus]int{
	DeviceSold:        0,
	DeviceRegistered:  1,
	DeviceActivated:   2,
	DeviceSuspended:   3,
	DeviceDeactivated: 4,
}

// IsValidDeviceStatus checks if a status belongs to the device lifecycle.
func IsValidDeviceStatus(status DeviceStatus) bool {
	_, ok := deviceRank[status]
	return ok
}

// CanTransition reports whether a device may move from its current status to
// the target. Transitions are monotonic along the lifecycle except that a
// suspended device may be reactivated.
func (d *Device) CanTransition(target DeviceStatus) bool {
	from, ok := deviceRank[d.Status]
	if !ok {
		return false
	}
	to, ok := deviceRank[target]
	if !ok {
		return false
	}
	if d.Status == DeviceSuspended && target == DeviceActivated {
		return true
	}
	return to > from
}
