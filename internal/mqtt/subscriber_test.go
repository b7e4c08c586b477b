package mqtt

import (
	"context"
	"encoding/json"
	"io"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ukydev/fleet-tracking/internal/db"
	"github.com/ukydev/fleet-tracking/internal/models"
	"github.com/ukydev/fleet-tracking/internal/pipeline"
)

type fakeMessage struct {
	topic   string
	payload []byte
}

func (m *fakeMessage) Duplicate() bool   { return false }
func (m *fakeMessage) Qos() byte         { return 1 }
func (m *fakeMessage) Retained() bool    { return false }
func (m *fakeMessage) Topic() string     { return m.topic }
func (m *fakeMessage) MessageID() uint16 { return 0 }
func (m *fakeMessage) Payload() []byte   { return m.payload }
func (m *fakeMessage) Ack()              {}

type stubStore struct {
	vehicle       *models.Vehicle
	fences        []*models.Geofence
	samples       []models.TelemetrySample
	events        []models.VehicleEvent
	notifications []models.Notification
	updated       int
}

func (s *stubStore) InsertSample(_ context.Context, sample models.TelemetrySample) error {
	s.samples = append(s.samples, sample)
	return nil
}

func (s *stubStore) FindSamples(_ context.Context, _ interface{}, _ ...*options.FindOptions) (db.Cursor, error) {
	return nil, nil
}

func (s *stubStore) InsertEvent(_ context.Context, event models.VehicleEvent) error {
	s.events = append(s.events, event)
	return nil
}

func (s *stubStore) FindEvents(_ context.Context, _ interface{}, _ ...*options.FindOptions) (db.Cursor, error) {
	return nil, nil
}

func (s *stubStore) FindEventByID(_ context.Context, _ string) (*models.VehicleEvent, error) {
	return nil, nil
}

func (s *stubStore) UpdateEventAckState(_ context.Context, _ *models.VehicleEvent) error {
	return nil
}

func (s *stubStore) InsertNotification(_ context.Context, n models.Notification) error {
	s.notifications = append(s.notifications, n)
	return nil
}

func (s *stubStore) UpdateDeliveryStatus(_ context.Context, _ string, _ models.Channel, _ models.DeliveryStatus) error {
	return nil
}

func (s *stubStore) MarkNotificationRead(_ context.Context, _ string) error { return nil }

func (s *stubStore) InsertVehicle(_ context.Context, _ models.Vehicle) error { return nil }

func (s *stubStore) FindVehicleByID(_ context.Context, _ string) (*models.Vehicle, error) {
	return s.vehicle, nil
}

func (s *stubStore) FindVehicleByDeviceID(_ context.Context, deviceID string) (*models.Vehicle, error) {
	if s.vehicle == nil || s.vehicle.DeviceID != deviceID {
		return nil, assert.AnError
	}
	return s.vehicle, nil
}

func (s *stubStore) UpdateVehicleTelemetry(_ context.Context, _ string, _ *models.TelemetrySample) error {
	s.updated++
	return nil
}

func (s *stubStore) InsertGeofence(_ context.Context, _ models.Geofence) error { return nil }

func (s *stubStore) FindGeofencesByIDs(_ context.Context, _ []string) ([]*models.Geofence, error) {
	return s.fences, nil
}

func testLogger() *log.Logger {
	l := log.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestSubscriber(store *stubStore) *Subscriber {
	p := pipeline.New(pipeline.NewMemoryMembershipStore(), []models.Channel{models.ChannelDashboard}, nil)
	return &Subscriber{
		pipeline:      p,
		samples:       store,
		events:        store,
		notifications: store,
		vehicles:      store,
		geofences:     store,
		logger:        testLogger(),
	}
}

func TestHandleMessage_PersistsSampleAndEvents(t *testing.T) {
	store := &stubStore{
		vehicle: &models.Vehicle{
			ID:       primitive.NewObjectID(),
			DeviceID: "dev-9",
			Alerts:   models.AlertSettings{SpeedLimitKph: 80},
			Status:   models.VehicleActive,
		},
	}
	sub := newTestSubscriber(store)

	payload, _ := json.Marshal(samplePayload{
		DeviceID: "dev-9",
		Location: models.Location{Lat: 40.0, Lon: 29.0},
		SpeedKph: 120,
	})
	sub.handleMessage(nil, &fakeMessage{topic: "fleet/telemetry/dev-9", payload: payload})

	assert.Len(t, store.samples, 1)
	assert.Len(t, store.events, 1)
	assert.Equal(t, models.EventSpeedAlert, store.events[0].Type)
	assert.Len(t, store.notifications, 1)
	assert.Equal(t, 1, store.updated)
}

func TestHandleMessage_DropsMalformedPayload(t *testing.T) {
	store := &stubStore{}
	sub := newTestSubscriber(store)

	sub.handleMessage(nil, &fakeMessage{topic: "fleet/telemetry/x", payload: []byte("{not json")})

	assert.Empty(t, store.samples)
	assert.Empty(t, store.events)
}

func TestHandleMessage_DropsUnknownDevice(t *testing.T) {
	store := &stubStore{}
	sub := newTestSubscriber(store)

	payload, _ := json.Marshal(samplePayload{
		DeviceID: "ghost",
		Location: models.Location{Lat: 0, Lon: 0},
	})
	sub.handleMessage(nil, &fakeMessage{topic: "fleet/telemetry/ghost", payload: payload})

	assert.Empty(t, store.samples)
}

func TestHandleMessage_DropsOutOfRangeSample(t *testing.T) {
	store := &stubStore{
		vehicle: &models.Vehicle{
			ID:       primitive.NewObjectID(),
			DeviceID: "dev-9",
			Status:   models.VehicleActive,
		},
	}
	sub := newTestSubscriber(store)

	payload, _ := json.Marshal(samplePayload{
		DeviceID: "dev-9",
		Location: models.Location{Lat: 95, Lon: 0},
	})
	sub.handleMessage(nil, &fakeMessage{topic: "fleet/telemetry/dev-9", payload: payload})

	assert.Empty(t, store.samples)
	assert.Empty(t, store.events)
}
