package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ukydev/fleet-tracking/internal/db"
	"github.com/ukydev/fleet-tracking/internal/middleware"
	"github.com/ukydev/fleet-tracking/internal/models"
)

const defaultListLimit = 100

// EventHandler handles event acknowledgement and notification state requests
type EventHandler struct {
	events        db.EventCollection
	notifications db.NotificationCollection
	logger        *log.Logger
}

// NewEventHandler creates a new event handler
func NewEventHandler(events db.EventCollection, notifications db.NotificationCollection, logger *log.Logger) *EventHandler {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &EventHandler{
		events:        events,
		notifications: notifications,
		logger:        logger,
	}
}

// AcknowledgeEvent moves an event to acknowledged, attributed to the caller
func (h *EventHandler) AcknowledgeEvent(w http.ResponseWriter, r *http.Request) {
	h.transitionEvent(w, r, func(event *models.VehicleEvent, actor string) error {
		return event.Acknowledge(actor, time.Now().UTC())
	})
}

// ResolveEvent moves an acknowledged event to resolved, attributed to the caller
func (h *EventHandler) ResolveEvent(w http.ResponseWriter, r *http.Request) {
	h.transitionEvent(w, r, func(event *models.VehicleEvent, actor string) error {
		return event.Resolve(actor, time.Now().UTC())
	})
}

func (h *EventHandler) transitionEvent(w http.ResponseWriter, r *http.Request, apply func(*models.VehicleEvent, string) error) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "Event id is required", http.StatusBadRequest)
		return
	}

	event, err := h.events.FindEventByID(r.Context(), id)
	if err != nil {
		http.Error(w, "Event not found", http.StatusNotFound)
		return
	}

	if err := apply(event, claims.UserID); err != nil {
		// Acknowledge/resolve only reject invalid state transitions
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	if err := h.events.UpdateEventAckState(r.Context(), event); err != nil {
		h.logger.WithError(err).WithField("event_id", id).
			Error("failed to persist event state")
		http.Error(w, "Failed to update event", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(event)
}

// ListEvents returns recent events, newest first, optionally filtered by
// vehicle
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	filter := bson.M{}
	if vehicleID := r.URL.Query().Get("vehicle_id"); vehicleID != "" {
		filter["vehicle_id"] = vehicleID
	}
	if ackState := r.URL.Query().Get("ack_state"); ackState != "" {
		filter["ack_state"] = ackState
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "occurred_at", Value: -1}}).
		SetLimit(defaultListLimit)
	cursor, err := h.events.FindEvents(r.Context(), filter, opts)
	if err != nil {
		h.logger.WithError(err).Error("failed to query events")
		http.Error(w, "Failed to query events", http.StatusInternalServerError)
		return
	}
	defer cursor.Close(r.Context())

	events := []models.VehicleEvent{}
	if err := cursor.All(r.Context(), &events); err != nil {
		h.logger.WithError(err).Error("failed to decode events")
		http.Error(w, "Failed to decode events", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(events)
}

// MarkNotificationRead flags a notification as read
func (h *EventHandler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "Notification id is required", http.StatusBadRequest)
		return
	}

	if err := h.notifications.MarkNotificationRead(r.Context(), id); err != nil {
		http.Error(w, "Failed to mark notification read", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"message": "Notification marked read"})
}
