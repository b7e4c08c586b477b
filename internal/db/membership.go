package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoMembershipStore persists per-(vehicle, geofence) containment flags as
// one document per pair, upserted atomically. It implements
// pipeline.MembershipStore for deployments where ingestion restarts must not
// replay enter events.
type MongoMembershipStore struct {
	Collection *mongo.Collection
}

type membershipDoc struct {
	VehicleID  string    `bson:"vehicle_id"`
	GeofenceID string    `bson:"geofence_id"`
	Inside     bool      `bson:"inside"`
	UpdatedAt  time.Time `bson:"updated_at"`
}

// Inside reads the current containment flag; a missing document means the
// vehicle starts outside.
func (s *MongoMembershipStore) Inside(ctx context.Context, vehicleID, geofenceID string) (bool, error) {
	if s.Collection == nil {
		return false, fmt.Errorf("mongo collection is nil")
	}
	var doc membershipDoc
	err := s.Collection.FindOne(ctx, bson.M{
		"vehicle_id":  vehicleID,
		"geofence_id": geofenceID,
	}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return false, nil
		}
		return false, err
	}
	return doc.Inside, nil
}

// SetInside upserts the containment flag for one pair.
func (s *MongoMembershipStore) SetInside(ctx context.Context, vehicleID, geofenceID string, inside bool) error {
	if s.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	_, err := s.Collection.UpdateOne(ctx,
		bson.M{"vehicle_id": vehicleID, "geofence_id": geofenceID},
		bson.M{"$set": bson.M{"inside": inside, "updated_at": time.Now()}},
		options.Update().SetUpsert(true))
	return err
}
