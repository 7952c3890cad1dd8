package models

import "time"

const (
	ReservationTypeMachine  = "machine"
	ReservationTypeTutoring = "tutoring"

	RequestModeGeneral = "general"
	RequestModeStudio  = "studio"
	RequestModeStaff   = "staff"
	RequestModeClass   = "class"

	ReservationPending   = "pending"
	ReservationApproved  = "approved"
	ReservationDenied    = "denied"
	ReservationCancelled = "cancelled"
)

type Reservation struct {
	ID          string    `json:"id" bson:"id"`
	Type        string    `json:"type" bson:"type"`
	RequestMode string    `json:"requestMode" bson:"requestMode"`
	Status      string    `json:"status" bson:"status"`
	Title       string    `json:"title,omitempty" bson:"title,omitempty"`
	Notes       string    `json:"notes,omitempty" bson:"notes,omitempty"`
	StartAt     time.Time `json:"startAt" bson:"startAt"`
	EndAt       time.Time `json:"endAt" bson:"endAt"`
	StudioID    string    `json:"studioId,omitempty" bson:"studioId,omitempty"`
	MachineID   string    `json:"machineId,omitempty" bson:"machineId,omitempty"`
	StaffUserID string    `json:"staffUserId,omitempty" bson:"staffUserId,omitempty"`
	Requester   MemberRef `json:"requester" bson:"requester"`
	// URL of an optional uploaded attachment (sketch, part photo).
	AttachmentURL string    `json:"attachmentURL,omitempty" bson:"attachmentURL,omitempty"`
	CreatedAt     time.Time `json:"createdAt" bson:"createdAt"`
}
