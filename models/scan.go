package models

import "time"

// Scan outcomes. Errors during resolution are deliberately folded into the
// not_found flow for the kiosk user; the distinction survives here for staff.
const (
	ScanCheckedIn       = "checked_in"
	ScanCheckedOut      = "checked_out"
	ScanNotFound        = "not_found"
	ScanError           = "error"
	ScanBlockedExpired  = "blocked_membership_expired"
	ScanBlockedInactive = "blocked_membership_inactive"
)

// Scan is the diagnostic record written for every badge scan attempt.
type Scan struct {
	ID        string    `json:"id" bson:"id"`
	Code      string    `json:"code" bson:"code"`
	MemberID  string    `json:"memberId,omitempty" bson:"memberId,omitempty"`
	Outcome   string    `json:"outcome" bson:"outcome"`
	Error     string    `json:"error,omitempty" bson:"error,omitempty"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}
