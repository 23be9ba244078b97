package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rakhadian/clinic-api/internal/models"
)

func (h *Handler) ListServices(c *gin.Context) {
	services, err := h.Store.ListServices(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if services == nil {
		services = []models.Service{}
	}
	c.JSON(http.StatusOK, services)
}

func (h *Handler) GetService(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	service, err := h.Store.FindService(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, service)
}

type CreateServiceRequest struct {
	Name  string  `json:"name" binding:"required,min=1,max=100"`
	Price float64 `json:"price" binding:"required,min=0"`
}

func (h *Handler) CreateService(c *gin.Context) {
	var req CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	service := models.Service{Name: req.Name, Price: req.Price}
	if err := h.Store.InsertService(c.Request.Context(), &service); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, service)
}

func (h *Handler) UpdateService(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	var upd models.ServiceUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if upd.Name == nil && upd.Price == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No fields to update"})
		return
	}

	service, err := h.Store.UpdateService(c.Request.Context(), id, upd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, service)
}

func (h *Handler) DeleteService(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.Store.DeleteService(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Service deleted"})
}

func (h *Handler) DeleteAllServices(c *gin.Context) {
	if err := h.Store.DeleteAllServices(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All services deleted"})
}

// ListEligibleStaff returns the staff who can deliver a service, for the
// booking form's staff picker.
func (h *Handler) ListEligibleStaff(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	staff, err := h.Scheduler.EligibleStaff(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, staff)
}
