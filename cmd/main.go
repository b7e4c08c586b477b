package main

import (
	"net/http"
	"os"
	"strings"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/ukydev/fleet-tracking/internal/auth"
	"github.com/ukydev/fleet-tracking/internal/db"
	"github.com/ukydev/fleet-tracking/internal/handlers"
	"github.com/ukydev/fleet-tracking/internal/middleware"
	"github.com/ukydev/fleet-tracking/internal/models"
	"github.com/ukydev/fleet-tracking/internal/mqtt"
	"github.com/ukydev/fleet-tracking/internal/pipeline"
)

// notificationChannels parses NOTIFY_CHANNELS (comma separated); unset means
// dashboard only.
func notificationChannels() []models.Channel {
	raw := os.Getenv("NOTIFY_CHANNELS")
	if raw == "" {
		return []models.Channel{models.ChannelDashboard}
	}
	var channels []models.Channel
	for _, part := range strings.Split(raw, ",") {
		c := models.Channel(strings.TrimSpace(part))
		if models.IsValidChannel(c) {
			channels = append(channels, c)
		} else {
			log.WithField("channel", part).Warn("ignoring unknown notification channel")
		}
	}
	return channels
}

func main() {
	// Load .env if present; real deployments set the environment directly
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file found")
	}

	log.SetFormatter(&log.JSONFormatter{})
	if level, err := log.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		log.SetLevel(level)
	}

	client, err := db.ConnectMongo()
	if err != nil {
		log.WithError(err).Fatal("failed to connect to MongoDB")
	}
	log.Info("connected to MongoDB")

	dbName := os.Getenv("MONGO_DB")
	if dbName == "" {
		dbName = "fleet"
	}
	database := client.Database(dbName)

	users := &db.MongoCollection{Collection: database.Collection("users")}
	devices := &db.MongoCollection{Collection: database.Collection("devices")}
	samples := &db.MongoCollection{Collection: database.Collection("telemetry")}
	events := &db.MongoCollection{Collection: database.Collection("events")}
	notifications := &db.MongoCollection{Collection: database.Collection("notifications")}
	vehicles := &db.MongoCollection{Collection: database.Collection("vehicles")}
	geofences := &db.MongoCollection{Collection: database.Collection("geofences")}
	membership := &db.MongoMembershipStore{Collection: database.Collection("geofence_membership")}

	engine := pipeline.New(membership, notificationChannels(), log.StandardLogger())

	authService, err := auth.NewService()
	if err != nil {
		log.WithError(err).Fatal("failed to create auth service")
	}
	authMiddleware := middleware.NewAuthMiddleware(authService)
	rateLimiter := middleware.NewRateLimitMiddleware()

	authHandler := handlers.NewAuthHandler(authService, users, log.StandardLogger())
	deviceHandler := handlers.NewDeviceHandler(devices, log.StandardLogger())
	telemetryHandler := handlers.NewTelemetryHandler(engine, samples, events, notifications, vehicles, geofences, log.StandardLogger())
	eventHandler := handlers.NewEventHandler(events, notifications, log.StandardLogger())

	if os.Getenv("MQTT_ENABLED") == "true" {
		subscriber, err := mqtt.NewSubscriber(engine, samples, events, notifications, vehicles, geofences, log.StandardLogger())
		if err != nil {
			log.WithError(err).Fatal("failed to create mqtt subscriber")
		}
		if err := subscriber.Start(); err != nil {
			log.WithError(err).Fatal("failed to start mqtt subscriber")
		}
		defer subscriber.Stop()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/api/auth/login", authHandler.Login)
	mux.HandleFunc("/api/auth/register", authHandler.Register)
	mux.Handle("/api/devices",
		authMiddleware.RequirePermission("manage_devices")(http.HandlerFunc(deviceHandler.RegisterDevice)))
	mux.Handle("/api/devices/status",
		authMiddleware.RequirePermission("manage_devices")(http.HandlerFunc(deviceHandler.UpdateDeviceStatus)))
	mux.HandleFunc("/api/telemetry", telemetryHandler.Ingest)
	mux.Handle("/api/telemetry/history",
		authMiddleware.RequirePermission("view_telemetry")(http.HandlerFunc(telemetryHandler.History)))
	mux.Handle("/api/events",
		authMiddleware.RequirePermission("view_events")(http.HandlerFunc(eventHandler.ListEvents)))
	mux.Handle("/api/events/acknowledge",
		authMiddleware.RequirePermission("acknowledge_events")(http.HandlerFunc(eventHandler.AcknowledgeEvent)))
	mux.Handle("/api/events/resolve",
		authMiddleware.RequirePermission("resolve_events")(http.HandlerFunc(eventHandler.ResolveEvent)))
	mux.Handle("/api/notifications/read",
		authMiddleware.RequirePermission("view_notifications")(http.HandlerFunc(eventHandler.MarkNotificationRead)))

	handler := rateLimiter.RateLimit(120, 60)(authMiddleware.Authenticate(mux))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.WithField("port", port).Info("HTTP server listening")
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.WithError(err).Fatal("HTTP server failed")
	}
}
