package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/fleet-tracking/internal/db"
	"github.com/ukydev/fleet-tracking/internal/factory"
	"github.com/ukydev/fleet-tracking/internal/models"
)

// DeviceHandler handles device registration and lifecycle requests
type DeviceHandler struct {
	devices db.DeviceCollection
	logger  *log.Logger
}

// NewDeviceHandler creates a new device handler
func NewDeviceHandler(devices db.DeviceCollection, logger *log.Logger) *DeviceHandler {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &DeviceHandler{
		devices: devices,
		logger:  logger,
	}
}

// RegisterDevice registers a new tracking device
func (h *DeviceHandler) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	var req struct {
		SerialNumber         string          `json:"serial_number"`
		Model                string          `json:"model"`
		Firmware             string          `json:"firmware"`
		ReportingIntervalSec int             `json:"reporting_interval_sec"`
		SpeedLimitKph        float64         `json:"speed_limit_kph"`
		IdleTimeoutSec       int             `json:"idle_timeout_sec"`
		Features             map[string]bool `json:"features"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	device, err := factory.NewDevice(factory.DeviceInput{
		SerialNumber:         req.SerialNumber,
		Model:                req.Model,
		Firmware:             req.Firmware,
		ReportingIntervalSec: req.ReportingIntervalSec,
		SpeedLimitKph:        req.SpeedLimitKph,
		IdleTimeoutSec:       req.IdleTimeoutSec,
		Features:             req.Features,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Serial numbers are unique across the fleet
	if _, err := h.devices.FindDeviceBySerial(r.Context(), device.SerialNumber); err == nil {
		http.Error(w, "Device serial already registered", http.StatusConflict)
		return
	}

	if err := h.devices.InsertDevice(r.Context(), *device); err != nil {
		h.logger.WithError(err).WithField("serial", device.SerialNumber).
			Error("failed to persist device")
		http.Error(w, "Failed to register device", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(device)
}

// UpdateDeviceStatus applies a lifecycle transition to a device
func (h *DeviceHandler) UpdateDeviceStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	var req struct {
		SerialNumber string              `json:"serial_number"`
		Status       models.DeviceStatus `json:"status"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if req.SerialNumber == "" {
		http.Error(w, "serial_number is required", http.StatusBadRequest)
		return
	}
	if !models.IsValidDeviceStatus(req.Status) {
		http.Error(w, "Invalid device status", http.StatusBadRequest)
		return
	}

	device, err := h.devices.FindDeviceBySerial(r.Context(), req.SerialNumber)
	if err != nil {
		http.Error(w, "Device not found", http.StatusNotFound)
		return
	}

	if !device.CanTransition(req.Status) {
		http.Error(w, "Invalid lifecycle transition", http.StatusConflict)
		return
	}

	if err := h.devices.UpdateDeviceStatus(r.Context(), device.ID.Hex(), req.Status); err != nil {
		h.logger.WithError(err).WithField("serial", req.SerialNumber).
			Error("failed to update device status")
		http.Error(w, "Failed to update device status", http.StatusInternalServerError)
		return
	}

	device.Status = req.Status
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(device)
}
