package models

import "time"

// Badge is the physical badge currently assigned to a member.
type Badge struct {
	ID          string `json:"id" bson:"id"`
	BadgeNumber string `json:"badgeNumber,omitempty" bson:"badgeNumber,omitempty"`
	DoorNumber  string `json:"doorNumber,omitempty" bson:"doorNumber,omitempty"`
	PhotoURL    string `json:"photoURL,omitempty" bson:"photoURL,omitempty"`
}

// Subscription is a membership plan purchase. ExpiresAt is intentionally
// untyped: imported records carry native dates, epoch seconds, epoch millis
// or {seconds}-shaped objects. membership.ToInstant is the only reader.
type Subscription struct {
	Name      string `json:"name" bson:"name"`
	PlanID    string `json:"planId" bson:"planId"`
	Cycle     string `json:"cycle" bson:"cycle"`
	ExpiresAt any    `json:"expiresAt" bson:"expiresAt"`
}

type Member struct {
	UserID         string `json:"userid" bson:"userid"`
	Username       string `json:"username,omitempty" bson:"username,omitempty"`
	Password       string `json:"-" bson:"password,omitempty"`
	FullName       string `json:"fullName" bson:"fullName"`
	Email          string `json:"email,omitempty" bson:"email,omitempty"`
	Phone          string `json:"phone,omitempty" bson:"phone,omitempty"`
	MembershipType string `json:"membershipType,omitempty" bson:"membershipType,omitempty"`

	// Roles entries are either bare role-name strings or
	// {id, name, isEmployee} objects. membership.NormalizeRole canonicalizes.
	Roles []any `json:"roles,omitempty" bson:"roles,omitempty"`

	Badge *Badge `json:"badge,omitempty" bson:"badge,omitempty"`
	// Legacy flat badge field still present on older records.
	BadgeID string `json:"badgeId,omitempty" bson:"badgeId,omitempty"`

	ActiveSubscription *Subscription  `json:"activeSubscription,omitempty" bson:"activeSubscription,omitempty"`
	Subscriptions      []Subscription `json:"subscriptions,omitempty" bson:"subscriptions,omitempty"`
	// Legacy expiry field predating ActiveSubscription.
	MembershipExpiresAt any `json:"membershipExpiresAt,omitempty" bson:"membershipExpiresAt,omitempty"`

	PhotoURL  string    `json:"photoURL,omitempty" bson:"photoURL,omitempty"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at,omitempty" bson:"updated_at,omitempty"`

	RefreshToken  string    `json:"-" bson:"refresh_token,omitempty"`
	RefreshExpiry time.Time `json:"-" bson:"refresh_expiry,omitempty"`
	LastLogin     time.Time `json:"last_login,omitempty" bson:"last_login,omitempty"`
}

// MemberRef is the denormalized snapshot embedded in sessions, reservations
// and scans.
type MemberRef struct {
	ID   string `json:"id" bson:"id"`
	Name string `json:"name,omitempty" bson:"name,omitempty"`
}

func (m *Member) Ref() MemberRef {
	return MemberRef{ID: m.UserID, Name: m.FullName}
}

// BadgeCode returns the raw badge code wherever the record carries it.
func (m *Member) BadgeCode() string {
	if m.Badge != nil && m.Badge.ID != "" {
		return m.Badge.ID
	}
	return m.BadgeID
}
