package membership

import (
	"time"

	"nova/models"
)

const (
	StatusActive   = "active"
	StatusExpired  = "expired"
	StatusInactive = "inactive"
)

// ExpiryWarnWindow is how close to expiry a member can get before the kiosk
// starts showing a renewal warning on check-in.
const ExpiryWarnWindow = 7 * 24 * time.Hour

// Status is the derived membership state at a given instant. Never persisted.
type Status struct {
	Code        string    `json:"code"`
	Label       string    `json:"label"`
	ExpiresAt   time.Time `json:"expiresAt,omitzero"`
	PlanName    string    `json:"planName,omitempty"`
	PlanID      string    `json:"planId,omitempty"`
	Cycle       string    `json:"cycle,omitempty"`
	HadAny      bool      `json:"hadAny"`
	ExpiresSoon bool      `json:"expiresSoon"`
}

var labels = map[string]string{
	StatusActive:   "Active membership",
	StatusExpired:  "Membership expired",
	StatusInactive: "No membership on record",
}

// Evaluate classifies a member's membership state at the given instant.
// Pure: reads the member record, touches nothing else.
func Evaluate(m *models.Member, now time.Time) Status {
	st := Status{Code: StatusInactive}

	var expiresAt time.Time
	if m.ActiveSubscription != nil {
		st.PlanName = m.ActiveSubscription.Name
		st.PlanID = m.ActiveSubscription.PlanID
		st.Cycle = m.ActiveSubscription.Cycle
		if t, ok := ToInstant(m.ActiveSubscription.ExpiresAt); ok {
			expiresAt = t
		}
	}
	if expiresAt.IsZero() {
		// Legacy records kept expiry directly on the member.
		if t, ok := ToInstant(m.MembershipExpiresAt); ok {
			expiresAt = t
		}
	}
	st.ExpiresAt = expiresAt

	st.HadAny = m.ActiveSubscription != nil ||
		len(m.Subscriptions) > 0 ||
		m.MembershipExpiresAt != nil

	switch {
	case !expiresAt.IsZero() && expiresAt.After(now):
		st.Code = StatusActive
		st.ExpiresSoon = expiresAt.Sub(now) <= ExpiryWarnWindow
	case st.HadAny:
		st.Code = StatusExpired
	}

	st.Label = labels[st.Code]
	return st
}

// AddCycle advances a date by one billing cycle. Unknown cycle names fall
// back to monthly.
func AddCycle(t time.Time, cycle string) time.Time {
	switch cycle {
	case "quarterly":
		return t.AddDate(0, 3, 0)
	case "yearly":
		return t.AddDate(1, 0, 0)
	default: // monthly
		return t.AddDate(0, 1, 0)
	}
}
