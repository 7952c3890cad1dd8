package models

import "time"

type Payment struct {
	ID        string    `json:"id" bson:"id"`
	MemberID  string    `json:"memberId" bson:"memberId"`
	Amount    float64   `json:"amount" bson:"amount"`
	Currency  string    `json:"currency" bson:"currency"`
	Method    string    `json:"method,omitempty" bson:"method,omitempty"`
	PlanID    string    `json:"planId,omitempty" bson:"planId,omitempty"`
	PlanName  string    `json:"planName,omitempty" bson:"planName,omitempty"`
	Cycle     string    `json:"cycle,omitempty" bson:"cycle,omitempty"`
	Note      string    `json:"note,omitempty" bson:"note,omitempty"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

type Plan struct {
	ID    string  `json:"id" bson:"id"`
	Name  string  `json:"name" bson:"name"`
	Cycle string  `json:"cycle" bson:"cycle"`
	Price float64 `json:"price" bson:"price"`
}

// IdempotencyRecord backs the Idempotency-Key replay guard on mutating
// payment endpoints.
type IdempotencyRecord struct {
	Key         string         `json:"key" bson:"key"`
	Method      string         `json:"method" bson:"method"`
	Path        string         `json:"path" bson:"path"`
	UserID      string         `json:"user_id" bson:"user_id"`
	RequestHash string         `json:"request_hash" bson:"request_hash"`
	Response    map[string]any `json:"response,omitempty" bson:"response,omitempty"`
	CreatedAt   time.Time      `json:"created_at" bson:"created_at"`
	ExpiresAt   time.Time      `json:"expires_at" bson:"expires_at"`
}
