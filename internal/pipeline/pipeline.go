// Package pipeline orchestrates telemetry ingestion: sample validation,
// geofence transition detection, threshold alerting, event classification and
// notification routing.
package pipeline

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/fleet-tracking/internal/classify"
	"github.com/ukydev/fleet-tracking/internal/factory"
	"github.com/ukydev/fleet-tracking/internal/geofence"
	"github.com/ukydev/fleet-tracking/internal/models"
	"github.com/ukydev/fleet-tracking/internal/notify"
)

// Thresholds for device-reading alerts that are not per-vehicle configurable.
const (
	HarshAccelThresholdMS2 = 3.5
	LowFuelThresholdPct    = 15
	LowBatteryThresholdPct = 20
)

// MembershipStore records the current containment flag per (vehicle,
// geofence) pair. Vehicles with no recorded flag start outside. Updates must
// be atomic per pair.
type MembershipStore interface {
	Inside(ctx context.Context, vehicleID, geofenceID string) (bool, error)
	SetInside(ctx context.Context, vehicleID, geofenceID string, inside bool) error
}

// MemoryMembershipStore is a mutex-guarded in-memory MembershipStore.
type MemoryMembershipStore struct {
	mu    sync.RWMutex
	flags map[string]bool
}

// NewMemoryMembershipStore creates an empty in-memory membership store.
func NewMemoryMembershipStore() *MemoryMembershipStore {
	return &MemoryMembershipStore{flags: make(map[string]bool)}
}

func (s *MemoryMembershipStore) Inside(_ context.Context, vehicleID, geofenceID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.flags[vehicleID+"/"+geofenceID], nil
}

func (s *MemoryMembershipStore) SetInside(_ context.Context, vehicleID, geofenceID string, inside bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flags[vehicleID+"/"+geofenceID] = inside
	return nil
}

// Result is the outcome of processing one sample: the validated record plus
// zero or more synthesized events and notifications, returned to the caller
// for persistence and dispatch.
type Result struct {
	Sample        *models.TelemetrySample
	Events        []*models.VehicleEvent
	Notifications []*models.Notification
}

// Pipeline is the ingestion engine. It holds no I/O of its own: geofence
// definitions and vehicle configuration are fetched by the caller and passed
// in, and the caller persists the result.
type Pipeline struct {
	store    MembershipStore
	channels []models.Channel
	logger   *log.Logger

	mu           sync.Mutex
	vehicleLocks map[string]*sync.Mutex
}

// New creates a pipeline. channels lists the notification channels configured
// for this deployment; when empty, events are synthesized but no
// notifications are routed.
func New(store MembershipStore, channels []models.Channel, logger *log.Logger) *Pipeline {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Pipeline{
		store:        store,
		channels:     channels,
		logger:       logger,
		vehicleLocks: make(map[string]*sync.Mutex),
	}
}

// lockVehicle serializes processing per vehicle so samples are handled in
// arrival order; different vehicles proceed in parallel.
func (p *Pipeline) lockVehicle(vehicleID string) *sync.Mutex {
	p.mu.Lock()
	defer p.mu.Unlock()
	l, ok := p.vehicleLocks[vehicleID]
	if !ok {
		l = &sync.Mutex{}
		p.vehicleLocks[vehicleID] = l
	}
	return l
}

// Process runs one raw device report through the pipeline against the
// vehicle's assigned geofences. A malformed sample aborts only that sample;
// a malformed geofence is skipped with a warning and does not block the
// remaining geofences or the threshold checks.
func (p *Pipeline) Process(ctx context.Context, vehicle *models.Vehicle, fences []*models.Geofence, in factory.SampleInput) (*Result, error) {
	vehicleID := vehicle.ID.Hex()
	lock := p.lockVehicle(vehicleID)
	lock.Lock()
	defer lock.Unlock()

	in.VehicleID = vehicleID
	sample, err := factory.NewTelemetrySample(in)
	if err != nil {
		return nil, err
	}

	result := &Result{Sample: sample}

	p.evaluateGeofences(ctx, vehicle, fences, sample, result)
	p.evaluateThresholds(vehicle, sample, result)
	p.evaluateDeviceFlags(vehicle, sample, result)

	if len(p.channels) > 0 {
		for _, event := range result.Events {
			notification, err := notify.Route(event, p.channels, notify.Options{})
			if err != nil {
				p.logger.WithError(err).WithField("event_type", event.Type).
					Warn("notification routing failed")
				continue
			}
			event.NotificationSent = true
			result.Notifications = append(result.Notifications, notification)
		}
	}
	return result, nil
}

func (p *Pipeline) evaluateGeofences(ctx context.Context, vehicle *models.Vehicle, fences []*models.Geofence, sample *models.TelemetrySample, result *Result) {
	vehicleID := vehicle.ID.Hex()
	for _, fence := range fences {
		fenceID := fence.ID.Hex()
		inside, err := geofence.Contains(fence, sample.Location)
		if err != nil {
			// One malformed region must not suppress alerting for the rest.
			p.logger.WithError(err).WithFields(log.Fields{
				"vehicle_id":  vehicleID,
				"geofence_id": fenceID,
			}).Warn("skipping malformed geofence")
			continue
		}

		was, err := p.store.Inside(ctx, vehicleID, fenceID)
		if err != nil {
			p.logger.WithError(err).WithFields(log.Fields{
				"vehicle_id":  vehicleID,
				"geofence_id": fenceID,
			}).Warn("membership flag read failed")
			continue
		}
		if inside == was {
			continue
		}
		if err := p.store.SetInside(ctx, vehicleID, fenceID, inside); err != nil {
			p.logger.WithError(err).WithFields(log.Fields{
				"vehicle_id":  vehicleID,
				"geofence_id": fenceID,
			}).Warn("membership flag write failed")
			continue
		}

		var eventType models.EventType
		switch {
		case inside && fence.AlertOnEnter:
			eventType = models.EventGeofenceEnter
		case !inside && fence.AlertOnExit:
			eventType = models.EventGeofenceExit
		default:
			continue
		}
		if !vehicle.AlertEnabled(eventType) {
			continue
		}
		p.appendEvent(result, vehicle, sample, eventType, classify.EventData{
			GeofenceID:   fenceID,
			GeofenceName: fence.Name,
		})
	}
}

func (p *Pipeline) evaluateThresholds(vehicle *models.Vehicle, sample *models.TelemetrySample, result *Result) {
	if limit := vehicle.Alerts.SpeedLimitKph; limit > 0 && sample.SpeedKph > limit && vehicle.AlertEnabled(models.EventSpeedAlert) {
		p.appendEvent(result, vehicle, sample, models.EventSpeedAlert, classify.EventData{
			SpeedKph:      sample.SpeedKph,
			SpeedLimitKph: limit,
		})
	}
	if timeout := vehicle.Alerts.IdleTimeoutSec; timeout > 0 && sample.IdleSec >= timeout && vehicle.AlertEnabled(models.EventIdleTimeout) {
		p.appendEvent(result, vehicle, sample, models.EventIdleTimeout, classify.EventData{
			IdleSec: sample.IdleSec,
		})
	}
	if accel := sample.Bus.AccelX; accel >= HarshAccelThresholdMS2 && vehicle.AlertEnabled(models.EventHarshAcceleration) {
		p.appendEvent(result, vehicle, sample, models.EventHarshAcceleration, classify.EventData{
			AccelMS2: accel,
		})
	} else if accel <= -HarshAccelThresholdMS2 && vehicle.AlertEnabled(models.EventHarshBraking) {
		p.appendEvent(result, vehicle, sample, models.EventHarshBraking, classify.EventData{
			AccelMS2: accel,
		})
	}
	if fuel := sample.Bus.FuelLevelPct; fuel > 0 && fuel <= LowFuelThresholdPct && vehicle.AlertEnabled(models.EventLowFuel) {
		p.appendEvent(result, vehicle, sample, models.EventLowFuel, classify.EventData{
			FuelLevelPct: fuel,
		})
	}
	if battery := sample.Health.BatteryPct; battery > 0 && battery <= LowBatteryThresholdPct && vehicle.AlertEnabled(models.EventLowBattery) {
		p.appendEvent(result, vehicle, sample, models.EventLowBattery, classify.EventData{
			BatteryPct: battery,
		})
	}
}

// evaluateDeviceFlags synthesizes events for device-reported signals. Panic
// and tamper are unconditional: they are not gated by per-vehicle alert
// settings.
func (p *Pipeline) evaluateDeviceFlags(vehicle *models.Vehicle, sample *models.TelemetrySample, result *Result) {
	if sample.PanicButton {
		p.appendEvent(result, vehicle, sample, models.EventPanicButton, classify.EventData{})
	}
	if sample.TamperDetected {
		p.appendEvent(result, vehicle, sample, models.EventTamperAlert, classify.EventData{})
	}
}

func (p *Pipeline) appendEvent(result *Result, vehicle *models.Vehicle, sample *models.TelemetrySample, eventType models.EventType, data classify.EventData) {
	event, err := factory.NewEvent(vehicle.ID.Hex(), sample.DeviceID, eventType, sample.Location, sample.SpeedKph, data, sample.Timestamp)
	if err != nil {
		p.logger.WithError(err).WithField("event_type", eventType).
			Warn("event construction failed")
		return
	}
	result.Events = append(result.Events, event)
}
