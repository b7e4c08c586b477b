package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Channel is a notification delivery channel.
type Channel string

const (
	ChannelEmail     Channel = "email"
	ChannelSMS       Channel = "sms"
	ChannelPush      Channel = "push"
	ChannelDashboard Channel = "dashboard"
)

// AllChannels lists the supported delivery channels.
var AllChannels = []Channel{ChannelEmail, ChannelSMS, ChannelPush, ChannelDashboard}

// IsValidChannel checks if a channel is supported.
func IsValidChannel(c Channel) bool {
	switch c {
	case ChannelEmail, ChannelSMS, ChannelPush, ChannelDashboard:
		return true
	default:
		return false
	}
}

// DeliveryStatus is the per-channel dispatch state of a notification. The
// empty value means the channel was not requested, which is distinct from
// pending.
type DeliveryStatus string

const (
	DeliveryPending   DeliveryStatus = "pending"
	DeliveryDelivered DeliveryStatus = "delivered"
	DeliveryFailed    DeliveryStatus = "failed"
)

// Notification is a dispatch record derived from a vehicle event, or
// generated independently, with per-channel delivery tracking.
type Notification struct {
	ID         primitive.ObjectID         `bson:"_id,omitempty" json:"id"`
	EventID    string                     `bson:"event_id,omitempty" json:"event_id,omitempty"`
	VehicleID  string                     `bson:"vehicle_id,omitempty" json:"vehicle_id,omitempty"`
	Title      string                     `bson:"title" json:"title"`
	Message    string                     `bson:"message" json:"message"`
	Severity   Severity                   `bson:"severity" json:"severity"`
	Channels   []Channel                  `bson:"channels" json:"channels"`
	Delivery   map[Channel]DeliveryStatus `bson:"delivery" json:"delivery"`
	Read       bool                       `bson:"read" json:"read"`
	ReadAt     *time.Time                 `bson:"read_at,omitempty" json:"read_at,omitempty"`
	Archived   bool                       `bson:"archived" json:"archived"`
	ArchivedAt *time.Time                 `bson:"archived_at,omitempty" json:"archived_at,omitempty"`
	ExpiresAt  *time.Time                 `bson:"expires_at,omitempty" json:"expires_at,omitempty"`
	CreatedAt  time.Time                  `bson:"created_at" json:"created_at"`
}

// StatusFor returns the delivery status for a channel and whether the channel
// was requested at all.
func (n *Notification) StatusFor(c Channel) (DeliveryStatus, bool) {
	status, ok := n.Delivery[c]
	return status, ok
}

// MarkRead flags the notification as read at the given time.
func (n *Notification) MarkRead(at time.Time) {
	if n.Read {
		return
	}
	n.Read = true
	n.ReadAt = &at
}

// MarkArchived flags the notification as archived at the given time.
func (n *Notification) MarkArchived(at time.Time) {
	if n.Archived {
		return
	}
	n.Archived = true
	n.ArchivedAt = &at
}
