package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/rakhadian/clinic-api/internal/clinicerr"
	"github.com/rakhadian/clinic-api/internal/models"
	"github.com/rakhadian/clinic-api/internal/records"
	"github.com/rakhadian/clinic-api/internal/scheduling"
)

// Store is the persistence surface the plain CRUD handlers use directly.
// The scheduling and record workflows go through their services instead.
type Store interface {
	InsertProfile(ctx context.Context, p *models.Profile) error
	FindProfile(ctx context.Context, id primitive.ObjectID) (*models.Profile, error)
	FindProfileByEmail(ctx context.Context, email string) (*models.Profile, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, upd models.ProfileUpdate) (*models.Profile, error)
	ListProfilesByRole(ctx context.Context, role models.Role) ([]models.Profile, error)

	ListServices(ctx context.Context) ([]models.Service, error)
	FindService(ctx context.Context, id primitive.ObjectID) (*models.Service, error)
	InsertService(ctx context.Context, svc *models.Service) error
	UpdateService(ctx context.Context, id primitive.ObjectID, upd models.ServiceUpdate) (*models.Service, error)
	DeleteService(ctx context.Context, id primitive.ObjectID) error
	DeleteAllServices(ctx context.Context) error

	ListInventory(ctx context.Context) ([]models.MedicalInventory, error)
	FindInventory(ctx context.Context, id primitive.ObjectID) (*models.MedicalInventory, error)
	InsertInventory(ctx context.Context, items []models.MedicalInventory) error
	UpdateInventory(ctx context.Context, id primitive.ObjectID, upd models.InventoryUpdate) (*models.MedicalInventory, error)
	DeleteInventory(ctx context.Context, id primitive.ObjectID) error
	DeleteAllInventory(ctx context.Context) error
}

type Handler struct {
	Store     Store
	Scheduler *scheduling.Engine
	Records   *records.Service
}

func NewHandler(store Store, scheduler *scheduling.Engine, recordSvc *records.Service) *Handler {
	return &Handler{
		Store:     store,
		Scheduler: scheduler,
		Records:   recordSvc,
	}
}

// respondError translates the error taxonomy into HTTP responses. Validation
// failures carry per-field messages; anything unrecognized is logged and
// returned as a generic 500 so internals never leak.
func respondError(c *gin.Context, err error) {
	var verr *clinicerr.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{"errors": verr.Fields})
		return
	}
	var conflict *clinicerr.ConflictError
	if errors.As(err, &conflict) {
		c.JSON(http.StatusConflict, gin.H{"error": conflict.Message})
		return
	}
	var state *clinicerr.StateError
	if errors.As(err, &state) {
		c.JSON(http.StatusConflict, gin.H{"error": state.Message})
		return
	}
	var auth *clinicerr.AuthorizationError
	if errors.As(err, &auth) {
		c.JSON(http.StatusForbidden, gin.H{"error": auth.Message})
		return
	}
	var notFound *clinicerr.NotFoundError
	if errors.As(err, &notFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": notFound.Error()})
		return
	}
	log.Printf("internal error: %v", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong. Please try again."})
}

// objectIDParam parses a hex ObjectID path parameter.
func objectIDParam(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return primitive.NilObjectID, false
	}
	return id, true
}
