// Package notify turns classified vehicle events into notification records
// with per-channel delivery tracking.
package notify

import (
	"fmt"
	"time"

	"github.com/ukydev/fleet-tracking/internal/models"
)

// Options carry optional routing parameters.
type Options struct {
	Title     string
	Message   string
	ExpiresAt *time.Time
}

// Route builds a notification for a classified event across the requested
// channels. Every requested channel starts pending except dashboard, whose
// in-app delivery is synchronous and therefore starts delivered. Channels
// that were not requested carry no delivery status at all, which is distinct
// from pending.
func Route(event *models.VehicleEvent, channels []models.Channel, opts Options) (*models.Notification, error) {
	now := time.Now().UTC()
	if opts.ExpiresAt != nil && !opts.ExpiresAt.After(now) {
		return nil, models.NewConfigurationError("notification expiry %s is not after creation time", opts.ExpiresAt.Format(time.RFC3339))
	}

	delivery := make(map[models.Channel]models.DeliveryStatus, len(channels))
	requested := make([]models.Channel, 0, len(channels))
	for _, c := range channels {
		if !models.IsValidChannel(c) {
			return nil, models.NewConfigurationError("unknown notification channel %q", c)
		}
		if _, dup := delivery[c]; dup {
			continue
		}
		status := models.DeliveryPending
		if c == models.ChannelDashboard {
			status = models.DeliveryDelivered
		}
		delivery[c] = status
		requested = append(requested, c)
	}

	title := opts.Title
	if title == "" {
		title = defaultTitle(event)
	}
	message := opts.Message
	if message == "" {
		message = defaultMessage(event)
	}

	n := &models.Notification{
		Title:     title,
		Message:   message,
		Channels:  requested,
		Delivery:  delivery,
		ExpiresAt: opts.ExpiresAt,
		CreatedAt: now,
	}
	if event != nil {
		if !event.ID.IsZero() {
			n.EventID = event.ID.Hex()
		}
		n.VehicleID = event.VehicleID
		n.Severity = event.Severity
	} else {
		n.Severity = models.SeverityInfo
	}
	return n, nil
}

func defaultTitle(event *models.VehicleEvent) string {
	if event == nil {
		return "Fleet notification"
	}
	return fmt.Sprintf("%s (%s)", event.Type, event.Severity)
}

func defaultMessage(event *models.VehicleEvent) string {
	if event == nil {
		return ""
	}
	return fmt.Sprintf("Vehicle %s reported %s at lat=%.5f lon=%.5f",
		event.VehicleID, event.Type, event.Location.Lat, event.Location.Lon)
}
