// Package mqtt ingests telemetry published by devices over MQTT. Devices
// publish one JSON sample per message to fleet/telemetry/<device-serial>.
package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"

	"github.com/ukydev/fleet-tracking/internal/db"
	"github.com/ukydev/fleet-tracking/internal/factory"
	"github.com/ukydev/fleet-tracking/internal/models"
	"github.com/ukydev/fleet-tracking/internal/pipeline"
)

const (
	telemetryTopic = "fleet/telemetry/#"
	subscribeQoS   = 1
)

// samplePayload is the wire shape devices publish.
type samplePayload struct {
	DeviceID        string              `json:"device_id"`
	Timestamp       time.Time           `json:"timestamp"`
	Location        models.Location     `json:"location"`
	AltitudeM       float64             `json:"altitude_m"`
	AccuracyM       float64             `json:"accuracy_m"`
	HeadingDeg      float64             `json:"heading_deg"`
	SpeedKph        float64             `json:"speed_kph"`
	IdleSec         int                 `json:"idle_sec"`
	Bus             models.BusData      `json:"bus"`
	Health          models.DeviceHealth `json:"health"`
	DiagnosticCodes []string            `json:"diagnostic_codes"`
	PanicButton     bool                `json:"panic_button"`
	TamperDetected  bool                `json:"tamper_detected"`
}

// Subscriber consumes device telemetry from the broker and feeds it through
// the ingestion pipeline. A malformed message is logged and dropped; it never
// stops the subscription.
type Subscriber struct {
	client        paho.Client
	pipeline      *pipeline.Pipeline
	samples       db.TelemetryCollection
	events        db.EventCollection
	notifications db.NotificationCollection
	vehicles      db.VehicleCollection
	geofences     db.GeofenceCollection
	logger        *log.Logger
}

// NewSubscriber creates a subscriber connected per the MQTT_BROKER and
// MQTT_CLIENT_ID environment variables.
func NewSubscriber(p *pipeline.Pipeline, samples db.TelemetryCollection, events db.EventCollection,
	notifications db.NotificationCollection, vehicles db.VehicleCollection, geofences db.GeofenceCollection,
	logger *log.Logger) (*Subscriber, error) {
	if logger == nil {
		logger = log.StandardLogger()
	}

	broker := os.Getenv("MQTT_BROKER")
	if broker == "" {
		broker = "tcp://localhost:1883"
	}
	clientID := os.Getenv("MQTT_CLIENT_ID")
	if clientID == "" {
		clientID = "fleet-tracking-ingest"
	}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second)
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		logger.WithError(err).Warn("mqtt connection lost")
	}

	s := &Subscriber{
		client:        paho.NewClient(opts),
		pipeline:      p,
		samples:       samples,
		events:        events,
		notifications: notifications,
		vehicles:      vehicles,
		geofences:     geofences,
		logger:        logger,
	}
	return s, nil
}

// Start connects to the broker and subscribes to the telemetry topic.
func (s *Subscriber) Start() error {
	if token := s.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt connect failed: %w", token.Error())
	}
	if token := s.client.Subscribe(telemetryTopic, subscribeQoS, s.handleMessage); token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt subscribe failed: %w", token.Error())
	}
	s.logger.WithField("topic", telemetryTopic).Info("mqtt subscriber started")
	return nil
}

// Stop unsubscribes and disconnects from the broker.
func (s *Subscriber) Stop() {
	if s.client.IsConnected() {
		s.client.Unsubscribe(telemetryTopic)
		s.client.Disconnect(250)
	}
}

func (s *Subscriber) handleMessage(_ paho.Client, msg paho.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var payload samplePayload
	if err := json.Unmarshal(msg.Payload(), &payload); err != nil {
		s.logger.WithError(err).WithField("topic", msg.Topic()).
			Warn("dropping malformed telemetry message")
		return
	}
	if payload.DeviceID == "" {
		s.logger.WithField("topic", msg.Topic()).
			Warn("dropping telemetry message without device id")
		return
	}

	vehicle, err := s.vehicles.FindVehicleByDeviceID(ctx, payload.DeviceID)
	if err != nil {
		s.logger.WithError(err).WithField("device_id", payload.DeviceID).
			Warn("dropping telemetry for unknown device")
		return
	}

	fences, err := s.geofences.FindGeofencesByIDs(ctx, vehicle.GeofenceIDs)
	if err != nil {
		s.logger.WithError(err).WithField("vehicle_id", vehicle.ID.Hex()).
			Error("failed to load geofences")
		return
	}

	result, err := s.pipeline.Process(ctx, vehicle, fences, factory.SampleInput{
		DeviceID:        payload.DeviceID,
		Timestamp:       payload.Timestamp,
		Location:        payload.Location,
		AltitudeM:       payload.AltitudeM,
		AccuracyM:       payload.AccuracyM,
		HeadingDeg:      payload.HeadingDeg,
		SpeedKph:        payload.SpeedKph,
		IdleSec:         payload.IdleSec,
		Bus:             payload.Bus,
		Health:          payload.Health,
		DiagnosticCodes: payload.DiagnosticCodes,
		PanicButton:     payload.PanicButton,
		TamperDetected:  payload.TamperDetected,
	})
	if err != nil {
		s.logger.WithError(err).WithField("device_id", payload.DeviceID).
			Warn("dropping rejected telemetry sample")
		return
	}

	if err := s.samples.InsertSample(ctx, *result.Sample); err != nil {
		s.logger.WithError(err).Error("failed to persist sample")
		return
	}
	for _, event := range result.Events {
		if err := s.events.InsertEvent(ctx, *event); err != nil {
			s.logger.WithError(err).WithField("event_type", event.Type).
				Error("failed to persist event")
		}
	}
	for _, notification := range result.Notifications {
		if err := s.notifications.InsertNotification(ctx, *notification); err != nil {
			s.logger.WithError(err).Error("failed to persist notification")
		}
	}
	if err := s.vehicles.UpdateVehicleTelemetry(ctx, vehicle.ID.Hex(), result.Sample); err != nil {
		s.logger.WithError(err).WithField("vehicle_id", vehicle.ID.Hex()).
			Warn("failed to update vehicle telemetry")
	}
}
