package models

import "time"

const (
	SessionTypeCheckIn = "CheckIn"
	SessionTypeClockIn = "ClockIn"
)

// Session is one presence interval. EndTime has no omitempty on purpose:
// an open session must be stored with endTime explicitly null so the
// open-session query and the partial unique index can see it.
type Session struct {
	ID        string     `json:"id" bson:"id"`
	Member    MemberRef  `json:"member" bson:"member"`
	StartTime time.Time  `json:"startTime" bson:"startTime"`
	EndTime   *time.Time `json:"endTime" bson:"endTime"`
	Type      string     `json:"type" bson:"type"`
}
