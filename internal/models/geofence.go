package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GeofenceType tags the stored geometry of a geofence document.
type GeofenceType string

const (
	GeofenceCircle  GeofenceType = "circle"
	GeofencePolygon GeofenceType = "polygon"
)

// Geofence is a customer-owned geographic region evaluated for vehicle
// enter/exit events. Circle regions use Center and RadiusM; polygon regions
// use Ring (implicitly closed). The typed geometry used for containment is
// built from this document by the geofence package.
type Geofence struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CustomerID   string             `bson:"customer_id" json:"customer_id"`
	Name         string             `bson:"name" json:"name"`
	Description  string             `bson:"description,omitempty" json:"description,omitempty"`
	Type         GeofenceType       `bson:"type" json:"type"`
	Center       Location           `bson:"center,omitempty" json:"center,omitempty"`
	RadiusM      float64            `bson:"radius_m,omitempty" json:"radius_m,omitempty"`
	Ring         []Location         `bson:"ring,omitempty" json:"ring,omitempty"`
	AlertOnEnter bool               `bson:"alert_on_enter" json:"alert_on_enter"`
	AlertOnExit  bool               `bson:"alert_on_exit" json:"alert_on_exit"`
	VehicleIDs   []string           `bson:"vehicle_ids" json:"vehicle_ids"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}
