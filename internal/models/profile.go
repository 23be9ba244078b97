package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role is the account role stored on every profile.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleDoctor  Role = "DOCTOR"
	RoleOfficer Role = "OFFICER"
	RolePatient Role = "PATIENT"
)

// Valid reports whether r is one of the four known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDoctor, RoleOfficer, RolePatient:
		return true
	}
	return false
}

// IsStaff reports whether the role is allowed to carry StaffDetails.
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleDoctor || r == RoleOfficer
}

// Day of the week for staff weekly schedules.
type Day string

const (
	Monday    Day = "MONDAY"
	Tuesday   Day = "TUESDAY"
	Wednesday Day = "WEDNESDAY"
	Thursday  Day = "THURSDAY"
	Friday    Day = "FRIDAY"
	Saturday  Day = "SATURDAY"
	Sunday    Day = "SUNDAY"
)

// Account is the login identity embedded in a profile.
// Username and email are unique across the collection.
type Account struct {
	Username string `bson:"username" json:"username"`
	Email    string `bson:"email" json:"email"`
	Password string `bson:"password" json:"-"` // bcrypt hash, never serialized
	Role     Role   `bson:"role" json:"role"`
}

type Position struct {
	Name      string  `bson:"name" json:"name"`
	MinSalary float64 `bson:"minSalary" json:"minSalary"`
	MaxSalary float64 `bson:"maxSalary" json:"maxSalary"`
}

// Specialty declares that a staff member can deliver a catalog service.
type Specialty struct {
	ServiceID primitive.ObjectID `bson:"serviceId" json:"serviceId"`
	StartDate time.Time          `bson:"startDate" json:"startDate"`
	EndDate   *time.Time         `bson:"endDate,omitempty" json:"endDate,omitempty"`
	Active    bool               `bson:"active" json:"active"`
}

type Capacity struct {
	Session     Session `bson:"session" json:"session"`
	MaxPatients int     `bson:"maxPatients" json:"maxPatients"`
}

type WeeklySchedule struct {
	Day        Day        `bson:"day" json:"day"`
	IsActive   bool       `bson:"isActive" json:"isActive"`
	Capacities []Capacity `bson:"capacities" json:"capacities"`
}

// StaffDetails is present only on staff profiles (ADMIN, DOCTOR, OFFICER).
type StaffDetails struct {
	Position    Position         `bson:"position" json:"position"`
	Salary      float64          `bson:"salary" json:"salary"`
	JoinDate    time.Time        `bson:"joinDate" json:"joinDate"`
	Active      bool             `bson:"active" json:"active"`
	Specialties []Specialty      `bson:"specialties" json:"specialties"`
	Schedule    []WeeklySchedule `bson:"schedule" json:"schedule"`
}

// Profile is the identity record for both patients and staff. StaffDetails
// stays nil for patients, so patient documents never carry the sub-document.
type Profile struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	DOB          *time.Time         `bson:"dob,omitempty" json:"dob,omitempty"`
	Age          int                `bson:"age,omitempty" json:"age,omitempty"`
	Gender       string             `bson:"gender,omitempty" json:"gender,omitempty"`
	Address      string             `bson:"address,omitempty" json:"address,omitempty"`
	Phone        string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Account      Account            `bson:"account" json:"account"`
	StaffDetails *StaffDetails      `bson:"staffDetails,omitempty" json:"staffDetails,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ProfileUpdate carries the mutable profile fields; nil means "leave as is".
type ProfileUpdate struct {
	Name    *string    `json:"name,omitempty"`
	DOB     *time.Time `json:"dob,omitempty"`
	Age     *int       `json:"age,omitempty"`
	Gender  *string    `json:"gender,omitempty"`
	Address *string    `json:"address,omitempty"`
	Phone   *string    `json:"phone,omitempty"`
}
