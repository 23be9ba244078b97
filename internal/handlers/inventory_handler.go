package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rakhadian/clinic-api/internal/models"
)

func (h *Handler) ListInventory(c *gin.Context) {
	items, err := h.Store.ListInventory(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if items == nil {
		items = []models.MedicalInventory{}
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) GetInventory(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	item, err := h.Store.FindInventory(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

type InventoryItemRequest struct {
	Name        string  `json:"name" binding:"required,min=1,max=100"`
	Description string  `json:"description"`
	Price       float64 `json:"price" binding:"min=0"`
	Stock       int     `json:"stock" binding:"min=0"`
	Type        string  `json:"type" binding:"required"`
}

// CreateInventory accepts a single item or a batch under "items".
func (h *Handler) CreateInventory(c *gin.Context) {
	var batch struct {
		Items []InventoryItemRequest `json:"items"`
	}
	if err := c.ShouldBindBodyWithJSON(&batch); err != nil || len(batch.Items) == 0 {
		var single InventoryItemRequest
		if err := c.ShouldBindBodyWithJSON(&single); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		batch.Items = []InventoryItemRequest{single}
	}

	items := make([]models.MedicalInventory, 0, len(batch.Items))
	for _, req := range batch.Items {
		itemType := models.InventoryType(req.Type)
		if !itemType.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"type": "type must be MEDICINE, AIDS, EQUIPMENT or SUPPLY"}})
			return
		}
		items = append(items, models.MedicalInventory{
			Name:        req.Name,
			Description: req.Description,
			Price:       req.Price,
			Stock:       req.Stock,
			Type:        itemType,
		})
	}

	if err := h.Store.InsertInventory(c.Request.Context(), items); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, items)
}

func (h *Handler) UpdateInventory(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	var upd models.InventoryUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if upd.Type != nil && !upd.Type.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"type": "type must be MEDICINE, AIDS, EQUIPMENT or SUPPLY"}})
		return
	}

	item, err := h.Store.UpdateInventory(c.Request.Context(), id, upd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handler) DeleteInventory(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.Store.DeleteInventory(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Inventory item deleted"})
}

func (h *Handler) DeleteAllInventory(c *gin.Context) {
	if err := h.Store.DeleteAllInventory(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All inventory items deleted"})
}
