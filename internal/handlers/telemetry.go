package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ukydev/fleet-tracking/internal/db"
	"github.com/ukydev/fleet-tracking/internal/factory"
	"github.com/ukydev/fleet-tracking/internal/models"
	"github.com/ukydev/fleet-tracking/internal/pipeline"
)

// TelemetryHandler handles telemetry ingestion requests
type TelemetryHandler struct {
	pipeline      *pipeline.Pipeline
	samples       db.TelemetryCollection
	events        db.EventCollection
	notifications db.NotificationCollection
	vehicles      db.VehicleCollection
	geofences     db.GeofenceCollection
	logger        *log.Logger
}

// NewTelemetryHandler creates a new telemetry handler
func NewTelemetryHandler(p *pipeline.Pipeline, samples db.TelemetryCollection, events db.EventCollection,
	notifications db.NotificationCollection, vehicles db.VehicleCollection, geofences db.GeofenceCollection,
	logger *log.Logger) *TelemetryHandler {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &TelemetryHandler{
		pipeline:      p,
		samples:       samples,
		events:        events,
		notifications: notifications,
		vehicles:      vehicles,
		geofences:     geofences,
		logger:        logger,
	}
}

// ingestRequest is the wire shape of one device report.
type ingestRequest struct {
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

// ingestResponse reports what the pipeline synthesized from one sample.
type ingestResponse struct {
	Events        []*models.VehicleEvent `json:"events"`
	Notifications []*models.Notification `json:"notifications"`
}

// Ingest handles a device telemetry report
func (h *TelemetryHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	var req ingestRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if req.DeviceID == "" {
		http.Error(w, "device_id is required", http.StatusBadRequest)
		return
	}

	// Resolve the reporting device to its vehicle
	vehicle, err := h.vehicles.FindVehicleByDeviceID(r.Context(), req.DeviceID)
	if err != nil {
		http.Error(w, "Unknown device", http.StatusNotFound)
		return
	}

	fences, err := h.geofences.FindGeofencesByIDs(r.Context(), vehicle.GeofenceIDs)
	if err != nil {
		h.logger.WithError(err).WithField("vehicle_id", vehicle.ID.Hex()).
			Error("failed to load geofences")
		http.Error(w, "Failed to load geofences", http.StatusInternalServerError)
		return
	}

	result, err := h.pipeline.Process(r.Context(), vehicle, fences, factory.SampleInput{
		DeviceID:        req.DeviceID,
		Timestamp:       req.Timestamp,
		Location:        req.Location,
		AltitudeM:       req.AltitudeM,
		AccuracyM:       req.AccuracyM,
		HeadingDeg:      req.HeadingDeg,
		SpeedKph:        req.SpeedKph,
		IdleSec:         req.IdleSec,
		Bus:             req.Bus,
		Health:          req.Health,
		DiagnosticCodes: req.DiagnosticCodes,
		PanicButton:     req.PanicButton,
		TamperDetected:  req.TamperDetected,
	})
	if err != nil {
		if models.IsKind(err, models.KindValidation) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, "Failed to process sample", http.StatusInternalServerError)
		return
	}

	if err := h.samples.InsertSample(r.Context(), *result.Sample); err != nil {
		h.logger.WithError(err).Error("failed to persist sample")
		http.Error(w, "Failed to persist sample", http.StatusInternalServerError)
		return
	}
	for _, event := range result.Events {
		if err := h.events.InsertEvent(r.Context(), *event); err != nil {
			h.logger.WithError(err).WithField("event_type", event.Type).
				Error("failed to persist event")
		}
	}
	for _, notification := range result.Notifications {
		if err := h.notifications.InsertNotification(r.Context(), *notification); err != nil {
			h.logger.WithError(err).Error("failed to persist notification")
		}
	}

	// Keep the vehicle's latest readings current; failure here does not fail
	// the ingest.
	if err := h.vehicles.UpdateVehicleTelemetry(r.Context(), vehicle.ID.Hex(), result.Sample); err != nil {
		h.logger.WithError(err).WithField("vehicle_id", vehicle.ID.Hex()).
			Warn("failed to update vehicle telemetry")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(ingestResponse{
		Events:        result.Events,
		Notifications: result.Notifications,
	})
}

// History returns recent samples for a device, newest first
func (h *TelemetryHandler) History(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	deviceID := r.URL.Query().Get("device_id")
	if deviceID == "" {
		http.Error(w, "device_id is required", http.StatusBadRequest)
		return
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(defaultListLimit)
	cursor, err := h.samples.FindSamples(r.Context(), bson.M{"device_id": deviceID}, opts)
	if err != nil {
		h.logger.WithError(err).Error("failed to query samples")
		http.Error(w, "Failed to query samples", http.StatusInternalServerError)
		return
	}
	defer cursor.Close(r.Context())

	samples := []models.TelemetrySample{}
	if err := cursor.All(r.Context(), &samples); err != nil {
		h.logger.WithError(err).Error("failed to decode samples")
		http.Error(w, "Failed to decode samples", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(samples)
}
