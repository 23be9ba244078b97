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

// InsertProfile persists a new profile. A duplicate username or email is
// reported as a conflict via the unique indexes.
func (s *Store) InsertProfile(ctx context.Context, p *models.Profile) error {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	_, err := s.db.Collection(colProfiles).InsertOne(ctx, p)
	if mongo.IsDuplicateKeyError(err) {
		return clinicerr.Conflict("an account with this username or email already exists")
	}
	return err
}

func (s *Store) FindProfile(ctx context.Context, id primitive.ObjectID) (*models.Profile, error) {
	var p models.Profile
	err := s.db.Collection(colProfiles).FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, clinicerr.NotFound("profile")
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) FindProfileByEmail(ctx context.Context, email string) (*models.Profile, error) {
	var p models.Profile
	err := s.db.Collection(colProfiles).FindOne(ctx, bson.M{"account.email": email}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, clinicerr.NotFound("profile")
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProfile applies the provided fields and returns the updated document.
func (s *Store) UpdateProfile(ctx context.Context, id primitive.ObjectID, upd models.ProfileUpdate) (*models.Profile, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if upd.Name != nil {
		set["name"] = *upd.Name
	}
	if upd.DOB != nil {
		set["dob"] = *upd.DOB
	}
	if upd.Age != nil {
		set["age"] = *upd.Age
	}
	if upd.Gender != nil {
		set["gender"] = *upd.Gender
	}
	if upd.Address != nil {
		set["address"] = *upd.Address
	}
	if upd.Phone != nil {
		set["phone"] = *upd.Phone
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var p models.Profile
	err := s.db.Collection(colProfiles).
		FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).
		Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, clinicerr.NotFound("profile")
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) ListProfilesByRole(ctx context.Context, role models.Role) ([]models.Profile, error) {
	cursor, err := s.db.Collection(colProfiles).Find(ctx, bson.M{"account.role": role})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var profiles []models.Profile
	if err := cursor.All(ctx, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

// FindStaffForService returns every staff profile carrying a specialty for
// the service. Expired or inactive specialties still match: historical
// bookings were made under that rule and the lookup keeps it.
func (s *Store) FindStaffForService(ctx context.Context, serviceID primitive.ObjectID) ([]models.Profile, error) {
	filter := bson.M{"staffDetails.specialties.serviceId": serviceID}
	cursor, err := s.db.Collection(colProfiles).Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var staff []models.Profile
	if err := cursor.All(ctx, &staff); err != nil {
		return nil, err
	}
	return staff, nil
}
