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

// InsertSchedule persists a new appointment. The compound unique index on
// (staffId, date, session) turns a double booking into a conflict.
func (s *Store) InsertSchedule(ctx context.Context, sch *models.Schedule) error {
	now := time.Now().UTC()
	sch.CreatedAt = now
	sch.UpdatedAt = now
	if sch.ID.IsZero() {
		sch.ID = primitive.NewObjectID()
	}
	_, err := s.db.Collection(colSchedules).InsertOne(ctx, sch)
	if mongo.IsDuplicateKeyError(err) {
		return clinicerr.Conflict("this staff member already has an appointment for that date and session")
	}
	return err
}

func (s *Store) FindSchedule(ctx context.Context, id primitive.ObjectID) (*models.Schedule, error) {
	var sch models.Schedule
	err := s.db.Collection(colSchedules).FindOne(ctx, bson.M{"_id": id}).Decode(&sch)
	if err == mongo.ErrNoDocuments {
		return nil, clinicerr.NotFound("schedule")
	}
	if err != nil {
		return nil, err
	}
	return &sch, nil
}

func (s *Store) ListSchedules(ctx context.Context, f models.ScheduleFilter) ([]models.Schedule, error) {
	filter := bson.M{}
	if !f.StaffID.IsZero() {
		filter["staffId"] = f.StaffID
	}
	if !f.PatientID.IsZero() {
		filter["patientId"] = f.PatientID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cursor, err := s.db.Collection(colSchedules).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var schedules []models.Schedule
	if err := cursor.All(ctx, &schedules); err != nil {
		return nil, err
	}
	return schedules, nil
}

// MarkPaymentPaid flips payment.status from PENDING to PAID. The filter
// includes the PENDING precondition so a concurrent second confirmation
// matches nothing and comes back as a state error.
func (s *Store) MarkPaymentPaid(ctx context.Context, id primitive.ObjectID) (*models.Schedule, error) {
	filter := bson.M{"_id": id, "payment.status": models.PaymentPending}
	update := bson.M{"$set": bson.M{
		"payment.status": models.PaymentPaid,
		"updatedAt":      time.Now().UTC(),
	}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var sch models.Schedule
	err := s.db.Collection(colSchedules).FindOneAndUpdate(ctx, filter, update, opts).Decode(&sch)
	if err == mongo.ErrNoDocuments {
		return nil, clinicerr.State("the down payment has already been settled")
	}
	if err != nil {
		return nil, err
	}
	return &sch, nil
}

// TransitionStatus moves a paid WAITING schedule to its terminal status.
// The WAITING and PAID preconditions live in the filter, so the transition
// can happen at most once per schedule even under concurrent requests.
func (s *Store) TransitionStatus(ctx context.Context, id primitive.ObjectID, to models.ScheduleStatus) (*models.Schedule, error) {
	filter := bson.M{
		"_id":            id,
		"status":         models.StatusWaiting,
		"payment.status": models.PaymentPaid,
	}
	update := bson.M{"$set": bson.M{
		"status":    to,
		"updatedAt": time.Now().UTC(),
	}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var sch models.Schedule
	err := s.db.Collection(colSchedules).FindOneAndUpdate(ctx, filter, update, opts).Decode(&sch)
	if err == mongo.ErrNoDocuments {
		return nil, clinicerr.State("status can only be changed once")
	}
	if err != nil {
		return nil, err
	}
	return &sch, nil
}

// LinkScheduleRecord stores the medical record reference on a schedule.
func (s *Store) LinkScheduleRecord(ctx context.Context, scheduleID, recordID primitive.ObjectID) error {
	update := bson.M{"$set": bson.M{
		"medicalRecordId": recordID,
		"updatedAt":       time.Now().UTC(),
	}}
	res, err := s.db.Collection(colSchedules).UpdateOne(ctx, bson.M{"_id": scheduleID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return clinicerr.NotFound("schedule")
	}
	return nil
}
