// Package factory constructs canonical fleet records with complete
// defaulting, normalization and format-level validation.
package factory

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ukydev/fleet-tracking/internal/classify"
	"github.com/ukydev/fleet-tracking/internal/geofence"
	"github.com/ukydev/fleet-tracking/internal/models"
)

// Default device configuration values.
const (
	DefaultReportingIntervalSec = 60
	DefaultIdleTimeoutSec       = 300
	DefaultSpeedLimitKph        = 0 // 0 = no limit configured, speed alerts disabled
)

// DeviceInput is the raw material for a new device record.
type DeviceInput struct {
	SerialNumber         string
	Model                string
	Firmware             string
	ReportingIntervalSec int
	SpeedLimitKph        float64
	IdleTimeoutSec       int
	Features             map[string]bool
}

// NewDevice builds a device in the registered state with config defaults
// applied. The serial number is required and normalized to upper case.
func NewDevice(in DeviceInput) (*models.Device, error) {
	serial := NormalizePlate(in.SerialNumber)
	if serial == "" {
		return nil, models.NewValidationError("device serial number is required")
	}
	cfg := models.DeviceConfig{
		ReportingIntervalSec: in.ReportingIntervalSec,
		SpeedLimitKph:        in.SpeedLimitKph,
		IdleTimeoutSec:       in.IdleTimeoutSec,
		Features:             in.Features,
	}
	if cfg.ReportingIntervalSec <= 0 {
		cfg.ReportingIntervalSec = DefaultReportingIntervalSec
	}
	if cfg.IdleTimeoutSec <= 0 {
		cfg.IdleTimeoutSec = DefaultIdleTimeoutSec
	}
	if cfg.SpeedLimitKph < 0 {
		cfg.SpeedLimitKph = DefaultSpeedLimitKph
	}
	if cfg.Features == nil {
		cfg.Features = map[string]bool{}
	}
	now := time.Now().UTC()
	return &models.Device{
		SerialNumber: serial,
		Model:        SanitizeText(in.Model),
		Firmware:     SanitizeText(in.Firmware),
		Status:       models.DeviceRegistered,
		Config:       cfg,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// VehicleInput is the raw material for a new vehicle record.
type VehicleInput struct {
	CustomerID     string
	DeviceID       string
	VIN            string
	LicensePlate   string
	Make           string
	Model          string
	Year           int
	Location       *models.Location
	GeofenceIDs    []string
	SpeedLimitKph  float64
	IdleTimeoutSec int
}

// NewVehicle builds an active vehicle with defaults applied. The VIN is
// normalized but its checksum is not enforced here: callers run ValidateVIN
// and decide whether a mismatch rejects the vehicle or merely flags it.
func NewVehicle(in VehicleInput) (*models.Vehicle, error) {
	if in.CustomerID == "" {
		return nil, models.NewValidationError("vehicle customer id is required")
	}
	location := models.Location{}
	if in.Location != nil {
		if !in.Location.InRange() {
			return nil, models.NewValidationError("vehicle location out of range: lat=%f lon=%f", in.Location.Lat, in.Location.Lon)
		}
		location = *in.Location
	}
	geofenceIDs := in.GeofenceIDs
	if geofenceIDs == nil {
		geofenceIDs = []string{}
	}
	now := time.Now().UTC()
	return &models.Vehicle{
		CustomerID:      in.CustomerID,
		DeviceID:        in.DeviceID,
		GeofenceIDs:     geofenceIDs,
		VIN:             NormalizeVIN(in.VIN),
		LicensePlate:    NormalizePlate(in.LicensePlate),
		Make:            SanitizeText(in.Make),
		Model:           SanitizeText(in.Model),
		Year:            in.Year,
		CurrentLocation: location,
		FuelLevelPct:    models.AmountUnset,
		NextServiceKm:   models.AmountUnset,
		Alerts: models.AlertSettings{
			SpeedLimitKph:  in.SpeedLimitKph,
			IdleTimeoutSec: in.IdleTimeoutSec,
			Enabled:        map[string]bool{},
		},
		Status:    models.VehicleActive,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// SampleInput is one raw device report before validation.
type SampleInput struct {
	DeviceID        string
	VehicleID       string
	Timestamp       time.Time
	Location        models.Location
	AltitudeM       float64
	AccuracyM       float64
	HeadingDeg      float64
	SpeedKph        float64
	IdleSec         int
	Bus             models.BusData
	Health          models.DeviceHealth
	DiagnosticCodes []string
	PanicButton     bool
	TamperDetected  bool
}

// NewTelemetrySample validates and normalizes a raw device report. Lat/lon
// out of range rejects the whole sample; optional fields keep their zero
// defaults. The creation timestamp is always set even when the report
// timestamp is missing.
func NewTelemetrySample(in SampleInput) (*models.TelemetrySample, error) {
	if in.DeviceID == "" {
		return nil, models.NewValidationError("telemetry sample device id is required")
	}
	if !in.Location.InRange() {
		return nil, models.NewValidationError("telemetry sample location out of range: lat=%f lon=%f", in.Location.Lat, in.Location.Lon)
	}
	now := time.Now().UTC()
	ts := in.Timestamp
	if ts.IsZero() {
		ts = now
	}
	codes := in.DiagnosticCodes
	if codes == nil {
		codes = []string{}
	}
	return &models.TelemetrySample{
		DeviceID:        in.DeviceID,
		VehicleID:       in.VehicleID,
		Timestamp:       ts,
		Location:        in.Location,
		AltitudeM:       in.AltitudeM,
		AccuracyM:       in.AccuracyM,
		HeadingDeg:      in.HeadingDeg,
		SpeedKph:        in.SpeedKph,
		IdleSec:         in.IdleSec,
		Bus:             in.Bus,
		Health:          in.Health,
		DiagnosticCodes: codes,
		PanicButton:     in.PanicButton,
		TamperDetected:  in.TamperDetected,
		CreatedAt:       now,
	}, nil
}

// NewEvent builds a classified, unacknowledged vehicle event from a telemetry
// transition or device signal. Classification is total, so construction only
// fails on an out-of-range location.
func NewEvent(vehicleID, deviceID string, eventType models.EventType, location models.Location, speedKph float64, data classify.EventData, occurredAt time.Time) (*models.VehicleEvent, error) {
	if !location.InRange() {
		return nil, models.NewValidationError("event location out of range: lat=%f lon=%f", location.Lat, location.Lon)
	}
	c := classify.Classify(eventType, data)
	now := time.Now().UTC()
	if occurredAt.IsZero() {
		occurredAt = now
	}
	// The id is assigned here, not by the insert, so notifications routed
	// before persistence reference the same event id that lands in storage.
	return &models.VehicleEvent{
		ID:         primitive.NewObjectID(),
		VehicleID:  vehicleID,
		DeviceID:   deviceID,
		Type:       eventType,
		Severity:   c.Severity,
		Priority:   c.Priority,
		Location:   location,
		SpeedKph:   speedKph,
		Enrichment: c.Enrichment,
		AckState:   models.EventUnacknowledged,
		OccurredAt: occurredAt,
		CreatedAt:  now,
	}, nil
}

// GeofenceInput is the raw material for a new geofence record.
type GeofenceInput struct {
	CustomerID   string
	Name         string
	Description  string
	Type         models.GeofenceType
	Center       models.Location
	RadiusM      float64
	Ring         []models.Location
	AlertOnEnter bool
	AlertOnExit  bool
	VehicleIDs   []string
}

// NewGeofence builds a geofence document after proving its geometry is
// constructible: a region that would fail containment evaluation is rejected
// at creation time rather than at ingest time.
func NewGeofence(in GeofenceInput) (*models.Geofence, error) {
	if in.CustomerID == "" {
		return nil, models.NewValidationError("geofence customer id is required")
	}
	name := SanitizeText(in.Name)
	if name == "" {
		return nil, models.NewValidationError("geofence name is required")
	}
	g := &models.Geofence{
		CustomerID:   in.CustomerID,
		Name:         name,
		Description:  SanitizeText(in.Description),
		Type:         in.Type,
		Center:       in.Center,
		RadiusM:      in.RadiusM,
		Ring:         in.Ring,
		AlertOnEnter: in.AlertOnEnter,
		AlertOnExit:  in.AlertOnExit,
		VehicleIDs:   in.VehicleIDs,
	}
	if g.VehicleIDs == nil {
		g.VehicleIDs = []string{}
	}
	if _, err := geofence.FromModel(g); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	g.CreatedAt = now
	g.UpdatedAt = now
	return g, nil
}

// planDefaults maps subscription plans to vehicle limits and monthly pricing
// in cents.
var planDefaults = map[string]struct {
	VehicleLimit int
	MonthlyCents int64
}{
	models.PlanBasic:      {VehicleLimit: 5, MonthlyCents: 2900},
	models.PlanStandard:   {VehicleLimit: 25, MonthlyCents: 9900},
	models.PlanEnterprise: {VehicleLimit: 500, MonthlyCents: 49900},
}

// NewSubscription builds an active subscription. An empty plan defaults to
// basic; an unknown plan is rejected.
func NewSubscription(customerID, plan string) (*models.Subscription, error) {
	if customerID == "" {
		return nil, models.NewValidationError("subscription customer id is required")
	}
	if plan == "" {
		plan = models.PlanBasic
	}
	defaults, ok := planDefaults[plan]
	if !ok {
		return nil, models.NewValidationError("unknown subscription plan %q", plan)
	}
	now := time.Now().UTC()
	return &models.Subscription{
		CustomerID:   customerID,
		Plan:         plan,
		VehicleLimit: defaults.VehicleLimit,
		MonthlyCents: defaults.MonthlyCents,
		Active:       true,
		StartedAt:    now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// NewBillingRecord builds a pending billing record. A negative amount
// defaults to the AmountUnset sentinel so unpriced charges are
// distinguishable from free ones.
func NewBillingRecord(customerID, subscriptionID, description string, amountCents int64, periodStart, periodEnd time.Time) (*models.BillingRecord, error) {
	if customerID == "" {
		return nil, models.NewValidationError("billing record customer id is required")
	}
	if periodEnd.Before(periodStart) {
		return nil, models.NewValidationError("billing period end precedes start")
	}
	if amountCents < 0 {
		amountCents = models.AmountUnset
	}
	return &models.BillingRecord{
		CustomerID:     customerID,
		SubscriptionID: subscriptionID,
		Description:    SanitizeText(description),
		AmountCents:    amountCents,
		Currency:       "USD",
		PeriodStart:    periodStart,
		PeriodEnd:      periodEnd,
		Status:         "pending",
		CreatedAt:      time.Now().UTC(),
	}, nil
}
