package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type InventoryType string

const (
	InventoryMedicine  InventoryType = "MEDICINE"
	InventoryAids      InventoryType = "AIDS"
	InventoryEquipment InventoryType = "EQUIPMENT"
	InventorySupply    InventoryType = "SUPPLY"
)

func (t InventoryType) Valid() bool {
	switch t {
	case InventoryMedicine, InventoryAids, InventoryEquipment, InventorySupply:
		return true
	}
	return false
}

// MedicalInventory is a prescribable item. Stock is decremented when a
// prescription referencing the item is filed.
type MedicalInventory struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Price       float64            `bson:"price" json:"price"`
	Stock       int                `bson:"stock" json:"stock"`
	Type        InventoryType      `bson:"type" json:"type"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// InventoryUpdate carries the mutable inventory fields; nil means "leave as is".
type InventoryUpdate struct {
	Name        *string        `json:"name,omitempty"`
	Description *string        `json:"description,omitempty"`
	Price       *float64       `json:"price,omitempty"`
	Stock       *int           `json:"stock,omitempty"`
	Type        *InventoryType `json:"type,omitempty"`
}
