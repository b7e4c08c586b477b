package db

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ukydev/fleet-tracking/internal/models"
)

// Cursor defines the interface for cursor operations over query results.
type Cursor interface {
	All(ctx context.Context, out interface{}) error
	Close(ctx context.Context) error
}

// TelemetryCollection defines the interface for telemetry sample storage.
type TelemetryCollection interface {
	InsertSample(ctx context.Context, sample models.TelemetrySample) error
	FindSamples(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (Cursor, error)
}

// EventCollection defines the interface for vehicle event storage.
type EventCollection interface {
	InsertEvent(ctx context.Context, event models.VehicleEvent) error
	FindEvents(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (Cursor, error)
	FindEventByID(ctx context.Context, id string) (*models.VehicleEvent, error)
	UpdateEventAckState(ctx context.Context, event *models.VehicleEvent) error
}

// NotificationCollection defines the interface for notification storage.
type NotificationCollection interface {
	InsertNotification(ctx context.Context, notification models.Notification) error
	UpdateDeliveryStatus(ctx context.Context, id string, channel models.Channel, status models.DeliveryStatus) error
	MarkNotificationRead(ctx context.Context, id string) error
}

// VehicleCollection defines the interface for vehicle data operations.
type VehicleCollection interface {
	InsertVehicle(ctx context.Context, vehicle models.Vehicle) error
	FindVehicleByID(ctx context.Context, id string) (*models.Vehicle, error)
	FindVehicleByDeviceID(ctx context.Context, deviceID string) (*models.Vehicle, error)
	UpdateVehicleTelemetry(ctx context.Context, id string, sample *models.TelemetrySample) error
}

// GeofenceCollection defines the interface for geofence definition storage.
type GeofenceCollection interface {
	InsertGeofence(ctx context.Context, geofence models.Geofence) error
	FindGeofencesByIDs(ctx context.Context, ids []string) ([]*models.Geofence, error)
}

// UserCollection defines the interface for operator account storage.
type UserCollection interface {
	InsertUser(ctx context.Context, user models.User) error
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// DeviceCollection defines the interface for device registry operations.
type DeviceCollection interface {
	InsertDevice(ctx context.Context, device models.Device) error
	FindDeviceBySerial(ctx context.Context, serial string) (*models.Device, error)
	UpdateDeviceStatus(ctx context.Context, id string, status models.DeviceStatus) error
}
