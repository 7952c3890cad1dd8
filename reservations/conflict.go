package reservations

import (
	"context"
	"time"

	"nova/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// candidateLimit caps the prefiltered candidate set per conflict check.
const candidateLimit = 50

// ResourceQuery identifies the concrete resource a proposed reservation
// would occupy.
type ResourceQuery struct {
	Type        string
	RequestMode string
	MachineID   string
	StaffUserID string
}

// Concrete reports whether the query names a resource that can structurally
// conflict. General/studio tutoring requests with no staff assignment
// cannot, so conflict checking is skipped for them.
func (q ResourceQuery) Concrete() bool {
	switch q.Type {
	case models.ReservationTypeMachine:
		return q.MachineID != ""
	case models.ReservationTypeTutoring:
		return q.RequestMode == models.RequestModeStaff && q.StaffUserID != ""
	default:
		return false
	}
}

// Overlaps implements strict half-open interval overlap: a reservation
// ending exactly when another starts does not conflict.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// blocking statuses; denied and cancelled reservations never conflict.
func blocks(status string) bool {
	return status == models.ReservationPending || status == models.ReservationApproved
}

// CandidateLister returns reservations on a resource starting before the
// proposed end: a necessary-but-not-sufficient prefilter that bounds the
// candidate set. Final overlap filtering happens in the checker.
type CandidateLister interface {
	ListCandidates(ctx context.Context, q ResourceQuery, before time.Time) ([]models.Reservation, error)
}

type MongoReservations struct {
	Col *mongo.Collection
}

func (s MongoReservations) ListCandidates(ctx context.Context, q ResourceQuery, before time.Time) ([]models.Reservation, error) {
	filter := bson.M{"startAt": bson.M{"$lt": before}}
	if q.Type == models.ReservationTypeMachine {
		filter["machineId"] = q.MachineID
	} else {
		filter["staffUserId"] = q.StaffUserID
	}

	opts := options.Find().
		SetSort(bson.M{"startAt": 1}).
		SetLimit(candidateLimit)
	cur, err := s.Col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Reservation
	for cur.Next(ctx) {
		var res models.Reservation
		if err := cur.Decode(&res); err == nil {
			out = append(out, res)
		}
	}
	return out, cur.Err()
}

// Checker decides whether a proposed time window is free on a resource.
type Checker struct {
	Store CandidateLister
}

// FindConflicts returns the pending/approved reservations whose intervals
// overlap [start, end) on the queried resource. Empty means clear to book;
// callers treat any non-empty result as a hard block.
func (c *Checker) FindConflicts(ctx context.Context, q ResourceQuery, start, end time.Time) ([]models.Reservation, error) {
	if !q.Concrete() {
		return nil, nil
	}

	candidates, err := c.Store.ListCandidates(ctx, q, end)
	if err != nil {
		return nil, err
	}

	var conflicts []models.Reservation
	for _, cand := range candidates {
		if !blocks(cand.Status) {
			continue
		}
		if Overlaps(start, end, cand.StartAt, cand.EndAt) {
			conflicts = append(conflicts, cand)
		}
	}
	return conflicts, nil
}
