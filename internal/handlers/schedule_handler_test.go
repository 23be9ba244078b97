package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/rakhadian/clinic-api/internal/clinicerr"
	"github.com/rakhadian/clinic-api/internal/middleware"
	"github.com/rakhadian/clinic-api/internal/models"
	"github.com/rakhadian/clinic-api/internal/records"
	"github.com/rakhadian/clinic-api/internal/scheduling"
)

// fakeStore backs the handlers, the engine and the record service in
// memory for end-to-end handler tests without Mongo.
type fakeStore struct {
	profiles  map[primitive.ObjectID]*models.Profile
	services  map[primitive.ObjectID]*models.Service
	schedules map[primitive.ObjectID]*models.Schedule
	inventory map[primitive.ObjectID]*models.MedicalInventory
	recs      []*models.MedicalRecord
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		profiles:  make(map[primitive.ObjectID]*models.Profile),
		services:  make(map[primitive.ObjectID]*models.Service),
		schedules: make(map[primitive.ObjectID]*models.Schedule),
		inventory: make(map[primitive.ObjectID]*models.MedicalInventory),
	}
}

func (f *fakeStore) InsertProfile(_ context.Context, p *models.Profile) error {
	for _, existing := range f.profiles {
		if existing.Account.Username == p.Account.Username || existing.Account.Email == p.Account.Email {
			return clinicerr.Conflict("an account with this username or email already exists")
		}
	}
	p.ID = primitive.NewObjectID()
	f.profiles[p.ID] = p
	return nil
}

func (f *fakeStore) FindProfile(_ context.Context, id primitive.ObjectID) (*models.Profile, error) {
	p, ok := f.profiles[id]
	if !ok {
		return nil, clinicerr.NotFound("profile")
	}
	return p, nil
}

func (f *fakeStore) FindProfileByEmail(_ context.Context, email string) (*models.Profile, error) {
	for _, p := range f.profiles {
		if p.Account.Email == email {
			return p, nil
		}
	}
	return nil, clinicerr.NotFound("profile")
}

func (f *fakeStore) UpdateProfile(_ context.Context, id primitive.ObjectID, upd models.ProfileUpdate) (*models.Profile, error) {
	p, ok := f.profiles[id]
	if !ok {
		return nil, clinicerr.NotFound("profile")
	}
	if upd.Name != nil {
		p.Name = *upd.Name
	}
	return p, nil
}

func (f *fakeStore) ListProfilesByRole(_ context.Context, role models.Role) ([]models.Profile, error) {
	var out []models.Profile
	for _, p := range f.profiles {
		if p.Account.Role == role {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeStore) FindStaffForService(_ context.Context, serviceID primitive.ObjectID) ([]models.Profile, error) {
	var out []models.Profile
	for _, p := range f.profiles {
		if p.StaffDetails == nil {
			continue
		}
		for _, sp := range p.StaffDetails.Specialties {
			if sp.ServiceID == serviceID {
				out = append(out, *p)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeStore) ListServices(_ context.Context) ([]models.Service, error) {
	var out []models.Service
	for _, svc := range f.services {
		out = append(out, *svc)
	}
	return out, nil
}

func (f *fakeStore) FindService(_ context.Context, id primitive.ObjectID) (*models.Service, error) {
	svc, ok := f.services[id]
	if !ok {
		return nil, clinicerr.NotFound("service")
	}
	return svc, nil
}

func (f *fakeStore) InsertService(_ context.Context, svc *models.Service) error {
	svc.ID = primitive.NewObjectID()
	f.services[svc.ID] = svc
	return nil
}

func (f *fakeStore) UpdateService(_ context.Context, id primitive.ObjectID, upd models.ServiceUpdate) (*models.Service, error) {
	svc, ok := f.services[id]
	if !ok {
		return nil, clinicerr.NotFound("service")
	}
	if upd.Name != nil {
		svc.Name = *upd.Name
	}
	if upd.Price != nil {
		svc.Price = *upd.Price
	}
	return svc, nil
}

func (f *fakeStore) DeleteService(_ context.Context, id primitive.ObjectID) error {
	if _, ok := f.services[id]; !ok {
		return clinicerr.NotFound("service")
	}
	delete(f.services, id)
	return nil
}

func (f *fakeStore) DeleteAllServices(_ context.Context) error {
	f.services = make(map[primitive.ObjectID]*models.Service)
	return nil
}

func (f *fakeStore) ListInventory(_ context.Context) ([]models.MedicalInventory, error) {
	var out []models.MedicalInventory
	for _, item := range f.inventory {
		out = append(out, *item)
	}
	return out, nil
}

func (f *fakeStore) FindInventory(_ context.Context, id primitive.ObjectID) (*models.MedicalInventory, error) {
	item, ok := f.inventory[id]
	if !ok {
		return nil, clinicerr.NotFound("inventory item")
	}
	return item, nil
}

func (f *fakeStore) InsertInventory(_ context.Context, items []models.MedicalInventory) error {
	for i := range items {
		items[i].ID = primitive.NewObjectID()
		item := items[i]
		f.inventory[item.ID] = &item
	}
	return nil
}

func (f *fakeStore) UpdateInventory(_ context.Context, id primitive.ObjectID, upd models.InventoryUpdate) (*models.MedicalInventory, error) {
	item, ok := f.inventory[id]
	if !ok {
		return nil, clinicerr.NotFound("inventory item")
	}
	if upd.Stock != nil {
		item.Stock = *upd.Stock
	}
	return item, nil
}

func (f *fakeStore) DeleteInventory(_ context.Context, id primitive.ObjectID) error {
	if _, ok := f.inventory[id]; !ok {
		return clinicerr.NotFound("inventory item")
	}
	delete(f.inventory, id)
	return nil
}

func (f *fakeStore) DeleteAllInventory(_ context.Context) error {
	f.inventory = make(map[primitive.ObjectID]*models.MedicalInventory)
	return nil
}

func (f *fakeStore) DecrementStock(_ context.Context, id primitive.ObjectID, quantity int) error {
	item, ok := f.inventory[id]
	if !ok {
		return clinicerr.NotFound("inventory item")
	}
	if item.Stock < quantity {
		return clinicerr.Validation("quantity", "insufficient stock for the prescribed quantity")
	}
	item.Stock -= quantity
	return nil
}

func (f *fakeStore) IncrementStock(_ context.Context, id primitive.ObjectID, quantity int) error {
	item, ok := f.inventory[id]
	if !ok {
		return clinicerr.NotFound("inventory item")
	}
	item.Stock += quantity
	return nil
}

func (f *fakeStore) InsertSchedule(_ context.Context, sch *models.Schedule) error {
	for _, existing := range f.schedules {
		if existing.StaffID == sch.StaffID && existing.Date.Equal(sch.Date) && existing.Session == sch.Session {
			return clinicerr.Conflict("this staff member already has an appointment for that date and session")
		}
	}
	sch.ID = primitive.NewObjectID()
	f.schedules[sch.ID] = sch
	return nil
}

func (f *fakeStore) FindSchedule(_ context.Context, id primitive.ObjectID) (*models.Schedule, error) {
	sch, ok := f.schedules[id]
	if !ok {
		return nil, clinicerr.NotFound("schedule")
	}
	copied := *sch
	return &copied, nil
}

func (f *fakeStore) ListSchedules(_ context.Context, filter models.ScheduleFilter) ([]models.Schedule, error) {
	var out []models.Schedule
	for _, sch := range f.schedules {
		if !filter.PatientID.IsZero() && sch.PatientID != filter.PatientID {
			continue
		}
		if !filter.StaffID.IsZero() && sch.StaffID != filter.StaffID {
			continue
		}
		if filter.Status != "" && sch.Status != filter.Status {
			continue
		}
		out = append(out, *sch)
	}
	return out, nil
}

func (f *fakeStore) MarkPaymentPaid(_ context.Context, id primitive.ObjectID) (*models.Schedule, error) {
	sch, ok := f.schedules[id]
	if !ok || sch.Payment.Status != models.PaymentPending {
		return nil, clinicerr.State("the down payment has already been settled")
	}
	sch.Payment.Status = models.PaymentPaid
	copied := *sch
	return &copied, nil
}

func (f *fakeStore) TransitionStatus(_ context.Context, id primitive.ObjectID, to models.ScheduleStatus) (*models.Schedule, error) {
	sch, ok := f.schedules[id]
	if !ok || sch.Status != models.StatusWaiting || sch.Payment.Status != models.PaymentPaid {
		return nil, clinicerr.State("status can only be changed once")
	}
	sch.Status = to
	copied := *sch
	return &copied, nil
}

func (f *fakeStore) InsertRecord(_ context.Context, rec *models.MedicalRecord) error {
	rec.ID = primitive.NewObjectID()
	f.recs = append(f.recs, rec)
	return nil
}

func (f *fakeStore) ListRecordsByPatient(_ context.Context, patientID primitive.ObjectID) ([]models.MedicalRecord, error) {
	var out []models.MedicalRecord
	for _, rec := range f.recs {
		if rec.PatientID == patientID {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (f *fakeStore) ListRecords(_ context.Context) ([]models.MedicalRecord, error) {
	var out []models.MedicalRecord
	for _, rec := range f.recs {
		out = append(out, *rec)
	}
	return out, nil
}

func (f *fakeStore) LinkScheduleRecord(_ context.Context, scheduleID, recordID primitive.ObjectID) error {
	sch, ok := f.schedules[scheduleID]
	if !ok {
		return clinicerr.NotFound("schedule")
	}
	sch.MedicalRecordID = &recordID
	return nil
}

// asUser injects the identity the auth middleware would normally extract
// from the bearer token.
func asUser(id primitive.ObjectID, role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", id.Hex())
		c.Set("userRole", role)
		c.Next()
	}
}

type testEnv struct {
	store     *fakeStore
	handler   *Handler
	patientID primitive.ObjectID
	doctorID  primitive.ObjectID
	serviceID primitive.ObjectID
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := newFakeStore()
	engine := scheduling.NewEngine(store, nil)
	recordSvc := records.NewService(store)

	serviceID := primitive.NewObjectID()
	store.services[serviceID] = &models.Service{ID: serviceID, Name: "Dental Cleaning", Price: 200000}

	return &testEnv{
		store:     store,
		handler:   NewHandler(store, engine, recordSvc),
		patientID: primitive.NewObjectID(),
		doctorID:  primitive.NewObjectID(),
		serviceID: serviceID,
	}
}

func (e *testEnv) router(id primitive.ObjectID, role models.Role) *gin.Engine {
	r := gin.New()
	api := r.Group("/api", asUser(id, role))
	api.POST("/schedules", middleware.RequireRoles(models.RolePatient), e.handler.CreateSchedule)
	api.GET("/schedules", e.handler.ListSchedules)
	api.GET("/schedules/:id", e.handler.GetSchedule)
	api.POST("/schedules/:id/payment", middleware.RequireRoles(models.RolePatient), e.handler.ConfirmPayment)
	api.PATCH("/schedules/:id/status", middleware.RequireRoles(models.RoleDoctor), e.handler.UpdateScheduleStatus)
	api.GET("/services/:id/staff", e.handler.ListEligibleStaff)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func (e *testEnv) book(t *testing.T) models.Schedule {
	t.Helper()
	r := e.router(e.patientID, models.RolePatient)
	w := doJSON(t, r, http.MethodPost, "/api/schedules", gin.H{
		"staffId":   e.doctorID.Hex(),
		"serviceId": e.serviceID.Hex(),
		"date":      "2024-06-01",
		"session":   "MORNING",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var sch models.Schedule
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sch))
	return sch
}

func TestCreateScheduleHTTP(t *testing.T) {
	env := newTestEnv(t)
	sch := env.book(t)

	assert.Equal(t, models.StatusWaiting, sch.Status)
	assert.Equal(t, models.PaymentPending, sch.Payment.Status)
	assert.Equal(t, 30000.0, sch.Payment.Amount)
	assert.Equal(t, env.patientID, sch.PatientID)
}

func TestCreateScheduleDuplicateHTTP(t *testing.T) {
	env := newTestEnv(t)
	env.book(t)

	otherPatient := primitive.NewObjectID()
	r := env.router(otherPatient, models.RolePatient)
	w := doJSON(t, r, http.MethodPost, "/api/schedules", gin.H{
		"staffId":   env.doctorID.Hex(),
		"serviceId": env.serviceID.Hex(),
		"date":      "2024-06-01",
		"session":   "MORNING",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCreateScheduleRequiresPatientRole(t *testing.T) {
	env := newTestEnv(t)
	r := env.router(env.doctorID, models.RoleDoctor)
	w := doJSON(t, r, http.MethodPost, "/api/schedules", gin.H{
		"staffId":   env.doctorID.Hex(),
		"serviceId": env.serviceID.Hex(),
		"date":      "2024-06-01",
		"session":   "MORNING",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestConfirmPaymentHTTP(t *testing.T) {
	env := newTestEnv(t)
	sch := env.book(t)
	r := env.router(env.patientID, models.RolePatient)

	w := doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/schedules/%s/payment", sch.ID.Hex()), gin.H{"amount": 29999})
	require.Equal(t, http.StatusBadRequest, w.Code)
	var payload struct {
		Errors map[string]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.Contains(t, payload.Errors, "amount")

	w = doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/schedules/%s/payment", sch.ID.Hex()), gin.H{"amount": 30000})
	require.Equal(t, http.StatusOK, w.Code)
	var paid models.Schedule
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &paid))
	assert.Equal(t, models.PaymentPaid, paid.Payment.Status)

	// Settling twice is rejected.
	w = doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/schedules/%s/payment", sch.ID.Hex()), gin.H{"amount": 30000})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestConfirmPaymentZeroAmountReachesExactMatch(t *testing.T) {
	env := newTestEnv(t)
	sch := env.book(t)
	r := env.router(env.patientID, models.RolePatient)

	// A literal zero must fail the exact-amount check, not request binding.
	w := doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/schedules/%s/payment", sch.ID.Hex()), gin.H{"amount": 0})
	require.Equal(t, http.StatusBadRequest, w.Code)
	var payload struct {
		Errors map[string]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.Contains(t, payload.Errors, "amount")

	w = doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/schedules/%s/payment", sch.ID.Hex()), gin.H{"amount": -1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateScheduleStatusHTTP(t *testing.T) {
	env := newTestEnv(t)
	sch := env.book(t)

	patient := env.router(env.patientID, models.RolePatient)
	doctor := env.router(env.doctorID, models.RoleDoctor)
	statusPath := fmt.Sprintf("/api/schedules/%s/status", sch.ID.Hex())

	// Unpaid bookings cannot be confirmed.
	w := doJSON(t, doctor, http.MethodPatch, statusPath, gin.H{"status": "CONFIRMED"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, patient, http.MethodPost, fmt.Sprintf("/api/schedules/%s/payment", sch.ID.Hex()), gin.H{"amount": 30000})
	require.Equal(t, http.StatusOK, w.Code)

	// Patients cannot decide; the role gate rejects before the engine.
	w = doJSON(t, patient, http.MethodPatch, statusPath, gin.H{"status": "CONFIRMED"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, doctor, http.MethodPatch, statusPath, gin.H{"status": "CONFIRMED"})
	require.Equal(t, http.StatusOK, w.Code)
	var confirmed models.Schedule
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &confirmed))
	assert.Equal(t, models.StatusConfirmed, confirmed.Status)

	// The decision is single-shot.
	w = doJSON(t, doctor, http.MethodPatch, statusPath, gin.H{"status": "CANCELLED"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestListSchedulesScopedByRole(t *testing.T) {
	env := newTestEnv(t)
	env.book(t)

	otherPatient := primitive.NewObjectID()
	r := env.router(otherPatient, models.RolePatient)
	w := doJSON(t, r, http.MethodGet, "/api/schedules", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())

	r = env.router(env.doctorID, models.RoleDoctor)
	w = doJSON(t, r, http.MethodGet, "/api/schedules", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var schedules []models.Schedule
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &schedules))
	assert.Len(t, schedules, 1)
}

func TestGetScheduleHidesOtherPatients(t *testing.T) {
	env := newTestEnv(t)
	sch := env.book(t)

	r := env.router(primitive.NewObjectID(), models.RolePatient)
	w := doJSON(t, r, http.MethodGet, "/api/schedules/"+sch.ID.Hex(), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestListEligibleStaffHTTP(t *testing.T) {
	env := newTestEnv(t)
	doctor := &models.Profile{
		Name:    "dr. Sari",
		Account: models.Account{Username: "sari", Email: "sari@clinic.test", Role: models.RoleDoctor},
		StaffDetails: &models.StaffDetails{
			Specialties: []models.Specialty{{ServiceID: env.serviceID, Active: true}},
		},
	}
	require.NoError(t, env.store.InsertProfile(context.Background(), doctor))

	r := env.router(env.patientID, models.RolePatient)
	w := doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/services/%s/staff", env.serviceID.Hex()), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var staff []models.Profile
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &staff))
	assert.Len(t, staff, 1)

	// Unknown service: empty list, not an error.
	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/services/%s/staff", primitive.NewObjectID().Hex()), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}
