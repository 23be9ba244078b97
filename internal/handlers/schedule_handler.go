package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/rakhadian/clinic-api/internal/middleware"
	"github.com/rakhadian/clinic-api/internal/models"
	"github.com/rakhadian/clinic-api/internal/scheduling"
)

type CreateScheduleRequest struct {
	StaffID   string `json:"staffId" binding:"required"`
	ServiceID string `json:"serviceId" binding:"required"`
	Date      string `json:"date" binding:"required"`
	Session   string `json:"session" binding:"required"`
}

// CreateSchedule books an appointment for the authenticated patient.
func (h *Handler) CreateSchedule(c *gin.Context) {
	var req CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	callerID, _ := middleware.CallerID(c)
	patientID, err := primitive.ObjectIDFromHex(callerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user ID in token"})
		return
	}

	staffID, err := primitive.ObjectIDFromHex(req.StaffID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"staffId": "invalid staff reference"}})
		return
	}
	serviceID, err := primitive.ObjectIDFromHex(req.ServiceID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"serviceId": "invalid service reference"}})
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"date": "invalid date format, use YYYY-MM-DD"}})
		return
	}

	schedule, err := h.Scheduler.Create(c.Request.Context(), scheduling.CreateInput{
		StaffID:   staffID,
		PatientID: patientID,
		ServiceID: serviceID,
		Date:      date,
		Session:   models.Session(req.Session),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, schedule)
}

// ListSchedules lists appointments scoped to the caller: patients see their
// own bookings, doctors their own appointment book, admins and officers see
// everything.
func (h *Handler) ListSchedules(c *gin.Context) {
	callerID, _ := middleware.CallerID(c)
	callerRole, _ := middleware.CallerRole(c)

	var filter models.ScheduleFilter
	id, err := primitive.ObjectIDFromHex(callerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user ID in token"})
		return
	}
	switch callerRole {
	case models.RolePatient:
		filter.PatientID = id
	case models.RoleDoctor:
		filter.StaffID = id
	}
	if status := c.Query("status"); status != "" {
		filter.Status = models.ScheduleStatus(status)
	}

	schedules, err := h.Scheduler.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, schedules)
}

func (h *Handler) GetSchedule(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	schedule, err := h.Scheduler.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	// Patients can only look at their own bookings.
	callerID, _ := middleware.CallerID(c)
	callerRole, _ := middleware.CallerRole(c)
	if callerRole == models.RolePatient && schedule.PatientID.Hex() != callerID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Permission denied"})
		return
	}
	c.JSON(http.StatusOK, schedule)
}

// Amount is a pointer so a submitted zero is "present but zero" to the
// binding layer and still reaches the engine's exact-match check.
type ConfirmPaymentRequest struct {
	Amount *float64 `json:"amount" binding:"required,gte=0"`
}

// ConfirmPayment settles the down payment on a booking.
func (h *Handler) ConfirmPayment(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	var req ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	schedule, err := h.Scheduler.ConfirmPayment(c.Request.Context(), id, *req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, schedule)
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateScheduleStatus is the doctor's one-time confirm-or-cancel decision.
func (h *Handler) UpdateScheduleStatus(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	callerRole, _ := middleware.CallerRole(c)
	schedule, err := h.Scheduler.UpdateStatus(c.Request.Context(), id, models.ScheduleStatus(req.Status), callerRole)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, schedule)
}
