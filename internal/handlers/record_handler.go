package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/rakhadian/clinic-api/internal/middleware"
	"github.com/rakhadian/clinic-api/internal/models"
	"github.com/rakhadian/clinic-api/internal/records"
)

type CreateRecordRequest struct {
	PatientID           string               `json:"patientId" binding:"required"`
	ScheduleID          string               `json:"scheduleId"`
	Complaint           string               `json:"complaint"`
	MedicalHistory      string               `json:"medicalHistory"`
	PhysicalExamination string               `json:"physicalExamination"`
	Vitals              models.Vitals        `json:"vitals" binding:"required"`
	ServiceNotes        []models.ServiceNote `json:"serviceNotes"`
}

// CreateMedicalRecord files a clinical note. Doctors only; the route group
// enforces the role.
func (h *Handler) CreateMedicalRecord(c *gin.Context) {
	var req CreateRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	patientID, err := primitive.ObjectIDFromHex(req.PatientID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"patientId": "invalid patient reference"}})
		return
	}

	in := records.CreateInput{
		PatientID:           patientID,
		Complaint:           req.Complaint,
		MedicalHistory:      req.MedicalHistory,
		PhysicalExamination: req.PhysicalExamination,
		Vitals:              req.Vitals,
		ServiceNotes:        req.ServiceNotes,
	}
	if req.ScheduleID != "" {
		scheduleID, err := primitive.ObjectIDFromHex(req.ScheduleID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"scheduleId": "invalid schedule reference"}})
			return
		}
		in.ScheduleID = &scheduleID
	}

	rec, err := h.Records.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// ListMedicalRecords returns all records for staff; patients get their own.
func (h *Handler) ListMedicalRecords(c *gin.Context) {
	callerID, _ := middleware.CallerID(c)
	callerRole, _ := middleware.CallerRole(c)

	if callerRole == models.RolePatient {
		id, err := primitive.ObjectIDFromHex(callerID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user ID in token"})
			return
		}
		recs, err := h.Records.ListByPatient(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, recs)
		return
	}

	recs, err := h.Records.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recs)
}

// ListPatientMedicalRecords returns one patient's history, for staff.
func (h *Handler) ListPatientMedicalRecords(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	recs, err := h.Records.ListByPatient(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recs)
}
