// Package store is the Mongo persistence layer. A Store is constructed once
// in main and handed to every component; nothing in here keeps global state.
package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	colProfiles  = "profiles"
	colServices  = "services"
	colSchedules = "schedulings"
	colRecords   = "medicalrecords"
	colInventory = "medicalinventories"
)

type Store struct {
	db *mongo.Database
}

func New(db *mongo.Database) *Store {
	return &Store{db: db}
}

// EnsureIndexes creates the unique and query indexes the business rules rely
// on. The compound unique index on (staffId, date, session) is what makes
// concurrent bookings for the same slot lose with a duplicate-key error.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.db.Collection(colProfiles).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "account.username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "account.email", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return err
	}

	_, err = s.db.Collection(colServices).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = s.db.Collection(colSchedules).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "staffId", Value: 1},
				{Key: "date", Value: 1},
				{Key: "session", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "patientId", Value: 1}, {Key: "date", Value: 1}}},
	})
	if err != nil {
		return err
	}

	_, err = s.db.Collection(colRecords).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "patientId", Value: 1}},
	})
	return err
}
