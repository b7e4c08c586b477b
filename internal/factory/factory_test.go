package factory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/ukydev/fleet-tracking/internal/classify"
	"github.com/ukydev/fleet-tracking/internal/models"
)

func TestNewDevice_Defaults(t *testing.T) {
	device, err := NewDevice(DeviceInput{SerialNumber: "sn-0042-a"})
	assert.NoError(t, err)
	assert.Equal(t, "SN0042A", device.SerialNumber)
	assert.Equal(t, models.DeviceRegistered, device.Status)
	assert.Equal(t, DefaultReportingIntervalSec, device.Config.ReportingIntervalSec)
	assert.Equal(t, DefaultIdleTimeoutSec, device.Config.IdleTimeoutSec)
	assert.NotNil(t, device.Config.Features)
	assert.False(t, device.CreatedAt.IsZero())
	assert.False(t, device.UpdatedAt.IsZero())
}

func TestNewDevice_RequiresSerial(t *testing.T) {
	_, err := NewDevice(DeviceInput{})
	assert.True(t, models.IsKind(err, models.KindValidation))
}

func TestDeviceLifecycleTransitions(t *testing.T) {
	device, _ := NewDevice(DeviceInput{SerialNumber: "sn1"})

	tests := []struct {
		name    string
		from    models.DeviceStatus
		to      models.DeviceStatus
		allowed bool
	}{
		{"registered to activated", models.DeviceRegistered, models.DeviceActivated, true},
		{"activated to suspended", models.DeviceActivated, models.DeviceSuspended, true},
		{"suspended back to activated", models.DeviceSuspended, models.DeviceActivated, true},
		{"suspended to deactivated", models.DeviceSuspended, models.DeviceDeactivated, true},
		{"activated to registered", models.DeviceActivated, models.DeviceRegistered, false},
		{"deactivated to activated", models.DeviceDeactivated, models.DeviceActivated, false},
		{"registered to registered", models.DeviceRegistered, models.DeviceRegistered, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			device.Status = tt.from
			if got := device.CanTransition(tt.to); got != tt.allowed {
				t.Errorf("CanTransition(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.allowed)
			}
		})
	}
}

func TestNewVehicle(t *testing.T) {
	loc := models.Location{Lat: 51.5, Lon: -0.12}
	vehicle, err := NewVehicle(VehicleInput{
		CustomerID:   "cust-1",
		VIN:          "1hgcm82633a004352",
		LicensePlate: "ab-12 cd",
		Make:         "Ford",
		Model:        "Transit",
		Year:         2022,
		Location:     &loc,
	})
	assert.NoError(t, err)
	assert.Equal(t, "1HGCM82633A004352", vehicle.VIN)
	assert.Equal(t, "AB12CD", vehicle.LicensePlate)
	assert.Equal(t, models.VehicleActive, vehicle.Status)
	assert.Equal(t, float64(models.AmountUnset), vehicle.FuelLevelPct)
	assert.NotNil(t, vehicle.GeofenceIDs)
}

func TestNewVehicle_LocationOutOfRange(t *testing.T) {
	_, err := NewVehicle(VehicleInput{
		CustomerID: "cust-1",
		Location:   &models.Location{Lat: 95, Lon: 0},
	})
	assert.True(t, models.IsKind(err, models.KindValidation))
}

func TestNewVehicle_VINAdvisory(t *testing.T) {
	// A vehicle with a bad VIN checksum still constructs; the caller decides
	// what to do with the advisory error.
	vehicle, err := NewVehicle(VehicleInput{CustomerID: "cust-1", VIN: "1HGCM82634A004352"})
	assert.NoError(t, err)
	assert.Error(t, ValidateVIN(vehicle.VIN))
	assert.True(t, models.IsKind(ValidateVIN(vehicle.VIN), models.KindInvalidVIN))
}

func TestNewTelemetrySample(t *testing.T) {
	tests := []struct {
		name    string
		in      SampleInput
		wantErr bool
	}{
		{"valid", SampleInput{DeviceID: "dev-1", Location: models.Location{Lat: 10, Lon: 20}}, false},
		{"boundary lat lon", SampleInput{DeviceID: "dev-1", Location: models.Location{Lat: 90, Lon: 180}}, false},
		{"lat too high", SampleInput{DeviceID: "dev-1", Location: models.Location{Lat: 95, Lon: 0}}, true},
		{"lon too low", SampleInput{DeviceID: "dev-1", Location: models.Location{Lat: 0, Lon: -181}}, true},
		{"missing device", SampleInput{Location: models.Location{Lat: 0, Lon: 0}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sample, err := NewTelemetrySample(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !models.IsKind(err, models.KindValidation) {
					t.Errorf("expected validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if sample.CreatedAt.IsZero() || sample.Timestamp.IsZero() {
				t.Error("timestamps must be set at creation")
			}
			if sample.DiagnosticCodes == nil {
				t.Error("diagnostic codes must default to an empty slice")
			}
		})
	}
}

func TestNewEvent_Classified(t *testing.T) {
	event, err := NewEvent("veh-1", "dev-1", models.EventSpeedAlert,
		models.Location{Lat: 1, Lon: 2}, 100,
		classify.EventData{SpeedKph: 100, SpeedLimitKph: 80}, time.Time{})
	assert.NoError(t, err)
	assert.Equal(t, models.SeverityWarning, event.Severity)
	assert.Equal(t, models.PriorityHigh, event.Priority)
	assert.Equal(t, 20.0, event.Enrichment["overspeed_amount"])
	assert.Equal(t, models.EventUnacknowledged, event.AckState)
	assert.False(t, event.OccurredAt.IsZero())
	assert.False(t, event.NotificationSent)
	assert.False(t, event.ID.IsZero())
}

func TestEventAcknowledgeResolve(t *testing.T) {
	event, _ := NewEvent("veh-1", "dev-1", models.EventPanicButton,
		models.Location{}, 0, classify.EventData{}, time.Now())

	// Resolving before acknowledging is rejected.
	assert.Error(t, event.Resolve("bob", time.Now()))

	assert.NoError(t, event.Acknowledge("alice", time.Now()))
	assert.Equal(t, models.EventAcknowledged, event.AckState)
	assert.Equal(t, "alice", event.AcknowledgedBy)
	assert.NotNil(t, event.AcknowledgedAt)

	// Double acknowledge is rejected.
	assert.Error(t, event.Acknowledge("carol", time.Now()))

	assert.NoError(t, event.Resolve("bob", time.Now()))
	assert.Equal(t, models.EventResolved, event.AckState)
	assert.Equal(t, "bob", event.ResolvedBy)
	assert.NotNil(t, event.ResolvedAt)

	assert.Error(t, event.Resolve("dave", time.Now()))
}

func TestNewGeofence(t *testing.T) {
	g, err := NewGeofence(GeofenceInput{
		CustomerID: "cust-1",
		Name:       "Depot <script>alert(1)</script>",
		Type:       models.GeofenceCircle,
		Center:     models.Location{Lat: 51.5, Lon: -0.12},
		RadiusM:    300,
	})
	assert.NoError(t, err)
	assert.Equal(t, "Depot alert(1)", g.Name)
	assert.NotNil(t, g.VehicleIDs)

	_, err = NewGeofence(GeofenceInput{
		CustomerID: "cust-1", Name: "bad", Type: models.GeofenceCircle, RadiusM: 0,
	})
	assert.True(t, models.IsKind(err, models.KindConfiguration))

	_, err = NewGeofence(GeofenceInput{
		CustomerID: "cust-1", Name: "bad", Type: models.GeofencePolygon,
		Ring: []models.Location{{Lat: 0, Lon: 0}, {Lat: 1, Lon: 1}},
	})
	assert.True(t, models.IsKind(err, models.KindConfiguration))
}

func TestNewSubscription(t *testing.T) {
	sub, err := NewSubscription("cust-1", "")
	assert.NoError(t, err)
	assert.Equal(t, models.PlanBasic, sub.Plan)
	assert.Equal(t, 5, sub.VehicleLimit)
	assert.True(t, sub.Active)

	_, err = NewSubscription("cust-1", "platinum")
	assert.True(t, models.IsKind(err, models.KindValidation))
}

func TestNewBillingRecord(t *testing.T) {
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	rec, err := NewBillingRecord("cust-1", "sub-1", "monthly plan", -50, start, end)
	assert.NoError(t, err)
	assert.Equal(t, int64(models.AmountUnset), rec.AmountCents)
	assert.Equal(t, "USD", rec.Currency)
	assert.Equal(t, "pending", rec.Status)

	_, err = NewBillingRecord("cust-1", "", "backwards", 100, end, start)
	assert.True(t, models.IsKind(err, models.KindValidation))
}

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"hello world", "hello world"},
		{"<script>alert('x')</script>note", "alert('x')note"},
		{"a < b > c", "a  b  c"},
		{"  padded  ", "padded"},
	}
	for _, tt := range tests {
		if got := SanitizeText(tt.in); got != tt.expected {
			t.Errorf("SanitizeText(%q) = %q, want %q", tt.in, got, tt.expected)
		}
	}
}

func TestSanitizePhone(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"+44 (0) 20-7946 0958", "+44 (0) 20-7946 0958"},
		{"call me: 555.123.4567!", "5551234567"},
		{"+44\t20 7946 0958", "+44\t20 7946 0958"},
		{"abc", ""},
	}
	for _, tt := range tests {
		if got := SanitizePhone(tt.in); got != tt.expected {
			t.Errorf("SanitizePhone(%q) = %q, want %q", tt.in, got, tt.expected)
		}
	}
}

func TestCapabilities(t *testing.T) {
	assert.Equal(t, []string{"*"}, models.CapabilitiesFor(models.RoleOwner))
	assert.True(t, models.RoleOwner.HasCapability("anything_at_all"))

	assert.True(t, models.RoleManager.HasCapability("acknowledge_events"))
	assert.False(t, models.RoleManager.HasCapability("manage_users"))

	assert.True(t, models.RoleViewer.HasCapability("view_events"))
	assert.False(t, models.RoleViewer.HasCapability("acknowledge_events"))

	// Unknown roles fail closed with an empty capability set.
	assert.Empty(t, models.CapabilitiesFor(models.Role("intern")))
	assert.False(t, models.Role("intern").HasCapability("view_events"))
}
