package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rakhadian/clinic-api/internal/clinicerr"
	"github.com/rakhadian/clinic-api/internal/models"
)

func (s *Store) ListServices(ctx context.Context) ([]models.Service, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := s.db.Collection(colServices).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var services []models.Service
	if err := cursor.All(ctx, &services); err != nil {
		return nil, err
	}
	return services, nil
}

func (s *Store) FindService(ctx context.Context, id primitive.ObjectID) (*models.Service, error) {
	var svc models.Service
	err := s.db.Collection(colServices).FindOne(ctx, bson.M{"_id": id}).Decode(&svc)
	if err == mongo.ErrNoDocuments {
		return nil, clinicerr.NotFound("service")
	}
	if err != nil {
		return nil, err
	}
	return &svc, nil
}

func (s *Store) InsertService(ctx context.Context, svc *models.Service) error {
	now := time.Now().UTC()
	svc.CreatedAt = now
	svc.UpdatedAt = now
	if svc.ID.IsZero() {
		svc.ID = primitive.NewObjectID()
	}
	_, err := s.db.Collection(colServices).InsertOne(ctx, svc)
	if mongo.IsDuplicateKeyError(err) {
		return clinicerr.Conflict("a service with this name already exists")
	}
	return err
}

func (s *Store) UpdateService(ctx context.Context, id primitive.ObjectID, upd models.ServiceUpdate) (*models.Service, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if upd.Name != nil {
		set["name"] = *upd.Name
	}
	if upd.Price != nil {
		set["price"] = *upd.Price
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var svc models.Service
	err := s.db.Collection(colServices).
		FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).
		Decode(&svc)
	if err == mongo.ErrNoDocuments {
		return nil, clinicerr.NotFound("service")
	}
	if mongo.IsDuplicateKeyError(err) {
		return nil, clinicerr.Conflict("a service with this name already exists")
	}
	if err != nil {
		return nil, err
	}
	return &svc, nil
}

func (s *Store) DeleteService(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.db.Collection(colServices).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return clinicerr.NotFound("service")
	}
	return nil
}

func (s *Store) DeleteAllServices(ctx context.Context) error {
	_, err := s.db.Collection(colServices).DeleteMany(ctx, bson.M{})
	return err
}
