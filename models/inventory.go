package models

import "time"

const (
	MachineAvailable   = "available"
	MachineInUse       = "in_use"
	MachineMaintenance = "maintenance"
)

type Machine struct {
	ID        string    `json:"id" bson:"id"`
	Name      string    `json:"name" bson:"name"`
	StudioID  string    `json:"studioId,omitempty" bson:"studioId,omitempty"`
	Status    string    `json:"status" bson:"status"`
	Notes     string    `json:"notes,omitempty" bson:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`
}

type Tool struct {
	ID        string    `json:"id" bson:"id"`
	Name      string    `json:"name" bson:"name"`
	StudioID  string    `json:"studioId,omitempty" bson:"studioId,omitempty"`
	// Member currently holding the tool, empty when checked in.
	HeldBy    string    `json:"heldBy,omitempty" bson:"heldBy,omitempty"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

type Material struct {
	ID        string    `json:"id" bson:"id"`
	Name      string    `json:"name" bson:"name"`
	Unit      string    `json:"unit,omitempty" bson:"unit,omitempty"`
	Quantity  float64   `json:"quantity" bson:"quantity"`
	UnitPrice float64   `json:"unitPrice,omitempty" bson:"unitPrice,omitempty"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}
