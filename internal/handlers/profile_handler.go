package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/rakhadian/clinic-api/internal/middleware"
	"github.com/rakhadian/clinic-api/internal/models"
	"github.com/rakhadian/clinic-api/internal/utils"
)

// GetCurrentProfile returns the authenticated caller's own profile.
func (h *Handler) GetCurrentProfile(c *gin.Context) {
	callerID, ok := middleware.CallerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}
	id, err := primitive.ObjectIDFromHex(callerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user ID in token"})
		return
	}

	profile, err := h.Store.FindProfile(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *Handler) GetProfile(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	profile, err := h.Store.FindProfile(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UpdateProfile lets a user edit their own identity fields. Staff and admins
// can edit any profile.
func (h *Handler) UpdateProfile(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	callerID, _ := middleware.CallerID(c)
	callerRole, _ := middleware.CallerRole(c)
	if callerRole == models.RolePatient && callerID != id.Hex() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Permission denied"})
		return
	}

	var upd models.ProfileUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	profile, err := h.Store.UpdateProfile(c.Request.Context(), id, upd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// ListPatients is used by doctors when filing medical records.
func (h *Handler) ListPatients(c *gin.Context) {
	patients, err := h.Store.ListProfilesByRole(c.Request.Context(), models.RolePatient)
	if err != nil {
		respondError(c, err)
		return
	}
	if patients == nil {
		patients = []models.Profile{}
	}
	c.JSON(http.StatusOK, patients)
}

type CreateStaffRequest struct {
	Name     string  `json:"name" binding:"required"`
	Username string  `json:"username" binding:"required,min=3"`
	Email    string  `json:"email" binding:"required,email"`
	Password string  `json:"password" binding:"required,min=8"`
	Role     string  `json:"role" binding:"required"`
	Salary   float64 `json:"salary"`
	Position struct {
		Name      string  `json:"name" binding:"required"`
		MinSalary float64 `json:"minSalary"`
		MaxSalary float64 `json:"maxSalary"`
	} `json:"position" binding:"required"`
	JoinDate    time.Time               `json:"joinDate" binding:"required"`
	Specialties []models.Specialty      `json:"specialties"`
	Schedule    []models.WeeklySchedule `json:"schedule"`
}

// CreateStaffProfile creates a staff account with StaffDetails. Admin only;
// the route group enforces the role.
func (h *Handler) CreateStaffProfile(c *gin.Context) {
	var req CreateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	role := models.Role(req.Role)
	if !role.IsStaff() {
		c.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"role": "role must be ADMIN, DOCTOR or OFFICER"}})
		return
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	profile := models.Profile{
		Name: req.Name,
		Account: models.Account{
			Username: req.Username,
			Email:    req.Email,
			Password: hashedPassword,
			Role:     role,
		},
		StaffDetails: &models.StaffDetails{
			Position: models.Position{
				Name:      req.Position.Name,
				MinSalary: req.Position.MinSalary,
				MaxSalary: req.Position.MaxSalary,
			},
			Salary:      req.Salary,
			JoinDate:    req.JoinDate,
			Active:      true,
			Specialties: req.Specialties,
			Schedule:    req.Schedule,
		},
	}

	if err := h.Store.InsertProfile(c.Request.Context(), &profile); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, profile)
}
