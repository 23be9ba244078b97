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

func (s *Store) ListInventory(ctx context.Context) ([]models.MedicalInventory, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := s.db.Collection(colInventory).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var items []models.MedicalInventory
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) FindInventory(ctx context.Context, id primitive.ObjectID) (*models.MedicalInventory, error) {
	var item models.MedicalInventory
	err := s.db.Collection(colInventory).FindOne(ctx, bson.M{"_id": id}).Decode(&item)
	if err == mongo.ErrNoDocuments {
		return nil, clinicerr.NotFound("inventory item")
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// InsertInventory persists one or more items in a single call.
func (s *Store) InsertInventory(ctx context.Context, items []models.MedicalInventory) error {
	now := time.Now().UTC()
	docs := make([]interface{}, 0, len(items))
	for i := range items {
		items[i].CreatedAt = now
		items[i].UpdatedAt = now
		if items[i].ID.IsZero() {
			items[i].ID = primitive.NewObjectID()
		}
		docs = append(docs, items[i])
	}
	_, err := s.db.Collection(colInventory).InsertMany(ctx, docs)
	return err
}

func (s *Store) UpdateInventory(ctx context.Context, id primitive.ObjectID, upd models.InventoryUpdate) (*models.MedicalInventory, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if upd.Name != nil {
		set["name"] = *upd.Name
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}
	if upd.Price != nil {
		set["price"] = *upd.Price
	}
	if upd.Stock != nil {
		set["stock"] = *upd.Stock
	}
	if upd.Type != nil {
		set["type"] = *upd.Type
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var item models.MedicalInventory
	err := s.db.Collection(colInventory).
		FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).
		Decode(&item)
	if err == mongo.ErrNoDocuments {
		return nil, clinicerr.NotFound("inventory item")
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) DeleteInventory(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.db.Collection(colInventory).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return clinicerr.NotFound("inventory item")
	}
	return nil
}

func (s *Store) DeleteAllInventory(ctx context.Context) error {
	_, err := s.db.Collection(colInventory).DeleteMany(ctx, bson.M{})
	return err
}

// DecrementStock subtracts quantity from an item's stock only when enough
// stock remains. The guard lives in the filter so concurrent prescriptions
// cannot drive stock negative.
func (s *Store) DecrementStock(ctx context.Context, id primitive.ObjectID, quantity int) error {
	filter := bson.M{"_id": id, "stock": bson.M{"$gte": quantity}}
	update := bson.M{
		"$inc": bson.M{"stock": -quantity},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	}
	res, err := s.db.Collection(colInventory).UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		if _, ferr := s.FindInventory(ctx, id); ferr != nil {
			return ferr
		}
		return clinicerr.Validation("quantity", "insufficient stock for the prescribed quantity")
	}
	return nil
}

// IncrementStock adds quantity back to an item's stock, undoing a decrement
// whose surrounding operation failed.
func (s *Store) IncrementStock(ctx context.Context, id primitive.ObjectID, quantity int) error {
	update := bson.M{
		"$inc": bson.M{"stock": quantity},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	}
	res, err := s.db.Collection(colInventory).UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return clinicerr.NotFound("inventory item")
	}
	return nil
}
