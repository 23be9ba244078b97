package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Vitals captured during an examination. Ranges follow the clinical intake
// form: out-of-range values are rejected before persistence.
type Vitals struct {
	Systolic        float64 `bson:"systolic" json:"systolic" validate:"min=0,max=300"`
	Diastolic       float64 `bson:"diastolic" json:"diastolic" validate:"min=0,max=200"`
	HeartRate       float64 `bson:"heartRate" json:"heartRate" validate:"min=0,max=300"`
	RespiratoryRate float64 `bson:"respiratoryRate" json:"respiratoryRate" validate:"min=0,max=100"`
	Temperature     float64 `bson:"temperature" json:"temperature" validate:"min=30,max=45"`
}

// PrescriptionDetail references one inventory item on a prescription.
type PrescriptionDetail struct {
	MedicalInventory   primitive.ObjectID `bson:"medicalInventory" json:"medicalInventory"`
	Quantity           int                `bson:"quantity" json:"quantity"`
	DosageInstructions string             `bson:"dosageInstructions,omitempty" json:"dosageInstructions,omitempty"`
}

type Prescription struct {
	Details []PrescriptionDetail `bson:"details" json:"details"`
}

type ServiceNote struct {
	AdditionalNotes string       `bson:"additionalNotes,omitempty" json:"additionalNotes,omitempty"`
	Prescription    Prescription `bson:"prescription" json:"prescription"`
}

// MedicalRecord is a clinical note filed by a doctor for a patient.
type MedicalRecord struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PatientID           primitive.ObjectID `bson:"patientId" json:"patientId"`
	Complaint           string             `bson:"complaint,omitempty" json:"complaint,omitempty"`
	MedicalHistory      string             `bson:"medicalHistory,omitempty" json:"medicalHistory,omitempty"`
	PhysicalExamination string             `bson:"physicalExamination,omitempty" json:"physicalExamination,omitempty"`
	Vitals              Vitals             `bson:"vitals" json:"vitals"`
	ServiceNotes        []ServiceNote      `bson:"serviceNotes" json:"serviceNotes"`
	CreatedAt           time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time          `bson:"updatedAt" json:"updatedAt"`
}
