package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Session is the time block of an appointment, three per day.
type Session string

const (
	SessionMorning   Session = "MORNING"
	SessionAfternoon Session = "AFTERNOON"
	SessionEvening   Session = "EVENING"
)

func (s Session) Valid() bool {
	switch s {
	case SessionMorning, SessionAfternoon, SessionEvening:
		return true
	}
	return false
}

// ScheduleStatus is the appointment lifecycle state. COMPLETED is persisted
// by historical data but no transition produces it.
type ScheduleStatus string

const (
	StatusWaiting   ScheduleStatus = "WAITING"
	StatusConfirmed ScheduleStatus = "CONFIRMED"
	StatusCompleted ScheduleStatus = "COMPLETED"
	StatusCancelled ScheduleStatus = "CANCELLED"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentPaid      PaymentStatus = "PAID"
	PaymentCancelled PaymentStatus = "CANCELLED"
)

// Payment is the down-payment sub-document owned by a schedule. Amount is a
// snapshot taken at booking time and never recomputed.
type Payment struct {
	Amount float64       `bson:"amount" json:"amount"`
	Status PaymentStatus `bson:"status" json:"status"`
	Method string        `bson:"paymentMethod,omitempty" json:"paymentMethod,omitempty"`
}

// Schedule is an appointment. The triple (staffId, date, session) is unique:
// one staff member holds at most one appointment per session per day.
type Schedule struct {
	ID              primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	StaffID         primitive.ObjectID  `bson:"staffId" json:"staffId"`
	PatientID       primitive.ObjectID  `bson:"patientId" json:"patientId"`
	ServiceID       primitive.ObjectID  `bson:"serviceId" json:"serviceId"`
	Date            time.Time           `bson:"date" json:"date"`
	Session         Session             `bson:"session" json:"session"`
	Status          ScheduleStatus      `bson:"status" json:"status"`
	Payment         Payment             `bson:"payment" json:"payment"`
	MedicalRecordID *primitive.ObjectID `bson:"medicalRecordId,omitempty" json:"medicalRecordId,omitempty"`
	CreatedAt       time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// ScheduleFilter narrows schedule listings. Zero fields are ignored.
type ScheduleFilter struct {
	StaffID   primitive.ObjectID
	PatientID primitive.ObjectID
	Status    ScheduleStatus
}
