// Package records files medical records: vitals validation, prescription
// handling with stock decrements, and linkage back to the confirmed
// appointment the record was written for.
package records

import (
	"context"
	"errors"
	"log"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/rakhadian/clinic-api/internal/clinicerr"
	"github.com/rakhadian/clinic-api/internal/models"
)

// Store is the persistence surface the record service needs.
type Store interface {
	InsertRecord(ctx context.Context, rec *models.MedicalRecord) error
	ListRecordsByPatient(ctx context.Context, patientID primitive.ObjectID) ([]models.MedicalRecord, error)
	ListRecords(ctx context.Context) ([]models.MedicalRecord, error)
	FindSchedule(ctx context.Context, id primitive.ObjectID) (*models.Schedule, error)
	LinkScheduleRecord(ctx context.Context, scheduleID, recordID primitive.ObjectID) error
	DecrementStock(ctx context.Context, id primitive.ObjectID, quantity int) error
	IncrementStock(ctx context.Context, id primitive.ObjectID, quantity int) error
}

type Service struct {
	store    Store
	validate *validator.Validate
}

func NewService(store Store) *Service {
	return &Service{store: store, validate: validator.New()}
}

// CreateInput is a medical record submission. ScheduleID is optional; when
// present the record is filed against that appointment.
type CreateInput struct {
	PatientID           primitive.ObjectID
	ScheduleID          *primitive.ObjectID
	Complaint           string
	MedicalHistory      string
	PhysicalExamination string
	Vitals              models.Vitals
	ServiceNotes        []models.ServiceNote
}

var vitalsMessages = map[string]string{
	"Systolic":        "systolic pressure must be between 0 and 300",
	"Diastolic":       "diastolic pressure must be between 0 and 200",
	"HeartRate":       "heart rate must be between 0 and 300",
	"RespiratoryRate": "respiratory rate must be between 0 and 100",
	"Temperature":     "temperature must be between 30 and 45",
}

var vitalsFields = map[string]string{
	"Systolic":        "systolic",
	"Diastolic":       "diastolic",
	"HeartRate":       "heartRate",
	"RespiratoryRate": "respiratoryRate",
	"Temperature":     "temperature",
}

// Create validates and persists a medical record. Prescription entries
// without a medication selection are dropped rather than rejected; the
// remaining entries decrement the item's stock. When a schedule is given it
// must be CONFIRMED, and it always receives the record reference.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.MedicalRecord, error) {
	if in.PatientID.IsZero() {
		return nil, clinicerr.Validation("patientId", "a patient reference is required")
	}

	if err := s.validate.Struct(in.Vitals); err != nil {
		var invalid validator.ValidationErrors
		if !errors.As(err, &invalid) {
			return nil, err
		}
		verr := &clinicerr.ValidationError{}
		for _, fe := range invalid {
			verr.Add(vitalsFields[fe.Field()], vitalsMessages[fe.Field()])
		}
		return nil, verr
	}

	notes := pruneServiceNotes(in.ServiceNotes)
	for _, note := range notes {
		for _, detail := range note.Prescription.Details {
			if detail.Quantity <= 0 {
				return nil, clinicerr.Validation("quantity", "prescription quantity must be positive")
			}
		}
	}

	var schedule *models.Schedule
	if in.ScheduleID != nil {
		var err error
		schedule, err = s.store.FindSchedule(ctx, *in.ScheduleID)
		if err != nil {
			return nil, err
		}
		if schedule.Status != models.StatusConfirmed {
			return nil, clinicerr.State("medical records can only be filed against a confirmed appointment")
		}
	}

	// Decrements are applied one by one; if any of them or the insert
	// fails, the ones already applied are returned so stock never drifts
	// without a persisted record.
	applied := make([]models.PrescriptionDetail, 0)
	for _, note := range notes {
		for _, detail := range note.Prescription.Details {
			if err := s.store.DecrementStock(ctx, detail.MedicalInventory, detail.Quantity); err != nil {
				s.restock(ctx, applied)
				return nil, err
			}
			applied = append(applied, detail)
		}
	}

	rec := &models.MedicalRecord{
		PatientID:           in.PatientID,
		Complaint:           in.Complaint,
		MedicalHistory:      in.MedicalHistory,
		PhysicalExamination: in.PhysicalExamination,
		Vitals:              in.Vitals,
		ServiceNotes:        notes,
	}
	if err := s.store.InsertRecord(ctx, rec); err != nil {
		s.restock(ctx, applied)
		return nil, err
	}

	if schedule != nil {
		if err := s.store.LinkScheduleRecord(ctx, schedule.ID, rec.ID); err != nil {
			return nil, err
		}
	}
	return rec, nil
}

// restock returns previously decremented quantities after a later step in
// Create fails. Best effort: a restock failure must not mask the error that
// triggered it.
func (s *Service) restock(ctx context.Context, applied []models.PrescriptionDetail) {
	for _, detail := range applied {
		if err := s.store.IncrementStock(ctx, detail.MedicalInventory, detail.Quantity); err != nil {
			log.Printf("failed to restock %s by %d: %v", detail.MedicalInventory.Hex(), detail.Quantity, err)
		}
	}
}

func (s *Service) ListByPatient(ctx context.Context, patientID primitive.ObjectID) ([]models.MedicalRecord, error) {
	records, err := s.store.ListRecordsByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []models.MedicalRecord{}
	}
	return records, nil
}

func (s *Service) List(ctx context.Context) ([]models.MedicalRecord, error) {
	records, err := s.store.ListRecords(ctx)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []models.MedicalRecord{}
	}
	return records, nil
}

// pruneServiceNotes drops prescription details whose medication reference
// was never set. The intake form allows adding empty rows; they are not an
// error, they just carry no prescription.
func pruneServiceNotes(notes []models.ServiceNote) []models.ServiceNote {
	out := make([]models.ServiceNote, 0, len(notes))
	for _, note := range notes {
		kept := make([]models.PrescriptionDetail, 0, len(note.Prescription.Details))
		for _, detail := range note.Prescription.Details {
			if detail.MedicalInventory.IsZero() {
				continue
			}
			kept = append(kept, detail)
		}
		note.Prescription.Details = kept
		out = append(out, note)
	}
	return out
}
