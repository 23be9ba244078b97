// Package scheduling implements the appointment booking engine: slot
// uniqueness, the down-payment snapshot and the payment-gated single-shot
// status transition.
package scheduling

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/rakhadian/clinic-api/internal/clinicerr"
	"github.com/rakhadian/clinic-api/internal/metrics"
	"github.com/rakhadian/clinic-api/internal/models"
)

// DownPaymentRate is the share of the service price collected at booking.
const DownPaymentRate = 0.15

// Store is the persistence surface the engine needs. *store.Store satisfies
// it; tests inject stubs.
type Store interface {
	FindService(ctx context.Context, id primitive.ObjectID) (*models.Service, error)
	InsertSchedule(ctx context.Context, sch *models.Schedule) error
	FindSchedule(ctx context.Context, id primitive.ObjectID) (*models.Schedule, error)
	ListSchedules(ctx context.Context, f models.ScheduleFilter) ([]models.Schedule, error)
	MarkPaymentPaid(ctx context.Context, id primitive.ObjectID) (*models.Schedule, error)
	TransitionStatus(ctx context.Context, id primitive.ObjectID, to models.ScheduleStatus) (*models.Schedule, error)
	FindStaffForService(ctx context.Context, serviceID primitive.ObjectID) ([]models.Profile, error)
}

type Engine struct {
	store   Store
	metrics *metrics.BookingMetrics
}

// NewEngine builds the engine. metrics may be nil.
func NewEngine(store Store, m *metrics.BookingMetrics) *Engine {
	return &Engine{store: store, metrics: m}
}

// CreateInput is a validated booking request.
type CreateInput struct {
	StaffID   primitive.ObjectID
	PatientID primitive.ObjectID
	ServiceID primitive.ObjectID
	Date      time.Time
	Session   models.Session
}

// Create books an appointment in WAITING status with a PENDING down payment
// of exactly 15% of the service's current price. The price is snapshotted:
// later catalog changes never touch existing bookings. A taken
// (staff, date, session) slot is a conflict.
func (e *Engine) Create(ctx context.Context, in CreateInput) (*models.Schedule, error) {
	if !in.Session.Valid() {
		return nil, clinicerr.Validation("session", "session must be MORNING, AFTERNOON or EVENING")
	}
	if in.Date.IsZero() {
		return nil, clinicerr.Validation("date", "a valid appointment date is required")
	}
	if in.StaffID.IsZero() || in.PatientID.IsZero() || in.ServiceID.IsZero() {
		return nil, clinicerr.Validation("staffId", "staff, patient and service references are required")
	}

	service, err := e.store.FindService(ctx, in.ServiceID)
	if err != nil {
		return nil, err
	}

	sch := &models.Schedule{
		StaffID:   in.StaffID,
		PatientID: in.PatientID,
		ServiceID: in.ServiceID,
		Date:      normalizeDate(in.Date),
		Session:   in.Session,
		Status:    models.StatusWaiting,
		Payment: models.Payment{
			Amount: service.Price * DownPaymentRate,
			Status: models.PaymentPending,
		},
	}

	if err := e.store.InsertSchedule(ctx, sch); err != nil {
		var conflict *clinicerr.ConflictError
		if errors.As(err, &conflict) {
			e.metrics.ObserveBookingConflict()
		}
		return nil, err
	}
	e.metrics.ObserveBookingCreated()
	return sch, nil
}

// ConfirmPayment settles the down payment. The submitted amount must equal
// the stored amount exactly; there is no tolerance and no partial payment.
// A schedule whose payment is no longer PENDING rejects the call.
func (e *Engine) ConfirmPayment(ctx context.Context, id primitive.ObjectID, amount float64) (*models.Schedule, error) {
	sch, err := e.store.FindSchedule(ctx, id)
	if err != nil {
		return nil, err
	}
	if sch.Payment.Status != models.PaymentPending {
		return nil, clinicerr.State("the down payment has already been settled")
	}
	if amount != sch.Payment.Amount {
		return nil, clinicerr.Validation("amount", "the payment amount must match the required down payment")
	}

	updated, err := e.store.MarkPaymentPaid(ctx, id)
	if err != nil {
		return nil, err
	}
	e.metrics.ObservePaymentConfirmed()
	return updated, nil
}

// UpdateStatus is the doctor's single-shot decision on a paid appointment:
// WAITING moves to CONFIRMED or CANCELLED exactly once. COMPLETED exists in
// the status enum but no transition produces it.
func (e *Engine) UpdateStatus(ctx context.Context, id primitive.ObjectID, newStatus models.ScheduleStatus, actingRole models.Role) (*models.Schedule, error) {
	if actingRole != models.RoleDoctor {
		return nil, clinicerr.Unauthorized("only doctors can change an appointment status")
	}
	if newStatus != models.StatusConfirmed && newStatus != models.StatusCancelled {
		return nil, clinicerr.Validation("status", "status must be CONFIRMED or CANCELLED")
	}

	sch, err := e.store.FindSchedule(ctx, id)
	if err != nil {
		return nil, err
	}
	if sch.Status != models.StatusWaiting {
		return nil, clinicerr.State("status can only be changed once")
	}
	if sch.Payment.Status != models.PaymentPaid {
		return nil, clinicerr.State("the down payment must be settled before the status can change")
	}

	updated, err := e.store.TransitionStatus(ctx, id, newStatus)
	if err != nil {
		return nil, err
	}
	e.metrics.ObserveStatusTransition(string(newStatus))
	return updated, nil
}

// EligibleStaff lists every staff profile declaring a specialty for the
// service. A service nobody covers yields an empty list, not an error, and
// the order is whatever the store returns.
func (e *Engine) EligibleStaff(ctx context.Context, serviceID primitive.ObjectID) ([]models.Profile, error) {
	staff, err := e.store.FindStaffForService(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	if staff == nil {
		staff = []models.Profile{}
	}
	return staff, nil
}

func (e *Engine) Get(ctx context.Context, id primitive.ObjectID) (*models.Schedule, error) {
	return e.store.FindSchedule(ctx, id)
}

func (e *Engine) List(ctx context.Context, f models.ScheduleFilter) ([]models.Schedule, error) {
	schedules, err := e.store.ListSchedules(ctx, f)
	if err != nil {
		return nil, err
	}
	if schedules == nil {
		schedules = []models.Schedule{}
	}
	return schedules, nil
}

// normalizeDate truncates to a UTC calendar day so the uniqueness triple
// compares dates, not instants.
func normalizeDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
