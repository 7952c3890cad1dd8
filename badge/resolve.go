package badge

import (
	"context"
	"errors"
	"log"

	"nova/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// fallbackFields are the badge fields tried, in order, when the index misses.
// The loop is capped by this list: resolution never fans out beyond it.
var fallbackFields = []string{"badge.id", "badge.badgeNumber"}

// MemberSource is the store side of resolution. Implemented by MongoMembers;
// tests use counting fakes.
type MemberSource interface {
	FindByID(ctx context.Context, id string) (*models.Member, error)
	FindByBadgeField(ctx context.Context, field, code string) (*models.Member, error)
}

// MongoMembers resolves members out of the users collection.
type MongoMembers struct {
	Col *mongo.Collection
}

func (s MongoMembers) FindByID(ctx context.Context, id string) (*models.Member, error) {
	var m models.Member
	err := s.Col.FindOne(ctx, bson.M{"userid": id}).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s MongoMembers) FindByBadgeField(ctx context.Context, field, code string) (*models.Member, error) {
	var m models.Member
	err := s.Col.FindOne(ctx, bson.M{field: code}).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Pool is an id-keyed in-memory member set handed in by callers that already
// hold a bulk member load.
type Pool map[string]*models.Member

func NewPool(members []models.Member) Pool {
	p := make(Pool, len(members))
	for i := range members {
		p[members[i].UserID] = &members[i]
	}
	return p
}

// ResolveOptions tune one resolution call.
type ResolveOptions struct {
	// Pool is consulted before any store read.
	Pool Pool
	// AllowStoreFallback permits the bounded per-field fallback query on an
	// index miss.
	AllowStoreFallback bool
	// FreshFetch permits one direct by-id read when the index knows the id
	// but the pool does not hold the record.
	FreshFetch bool
}

// Resolution is the outcome of resolving a scanned code.
//   - Member set: full record found.
//   - Member nil, MemberID set: the badge maps to a known id whose data was
//     unavailable. Callers must treat this differently from not-found.
//   - both zero: not found.
type Resolution struct {
	Member   *models.Member
	MemberID string
}

func (r Resolution) Found() bool { return r.Member != nil || r.MemberID != "" }

// Resolver maps scanned badge codes to member records using the cheapest
// available path. Store errors on the fallback path are logged and treated
// as misses; the kiosk routes those scans to the assistance flow.
type Resolver struct {
	Index *Index
	Store MemberSource
}

// Resolve implements the lookup ladder: index hit → pool (zero store reads)
// → optional single by-id read → id-only stub; on index miss, at most one
// query per fallback badge field.
func (rs *Resolver) Resolve(ctx context.Context, code string, opts ResolveOptions) Resolution {
	norm, ok := Normalize(code)
	if !ok {
		return Resolution{}
	}

	if id, hit := rs.Index.Lookup(norm); hit {
		if m, ok := opts.Pool[id]; ok {
			return Resolution{Member: m, MemberID: id}
		}
		if opts.FreshFetch && rs.Store != nil {
			m, err := rs.Store.FindByID(ctx, id)
			if err != nil {
				log.Println("badge resolve: by-id fetch failed:", err)
			} else if m != nil {
				return Resolution{Member: m, MemberID: id}
			}
		}
		// Known id, data unavailable right now.
		return Resolution{MemberID: id}
	}

	if !opts.AllowStoreFallback || rs.Store == nil {
		return Resolution{}
	}

	for _, field := range fallbackFields {
		m, err := rs.Store.FindByBadgeField(ctx, field, norm)
		if err != nil {
			log.Println("badge resolve: fallback query failed:", err)
			continue
		}
		if m != nil {
			rs.Index.Update(m.UserID, norm)
			return Resolution{Member: m, MemberID: m.UserID}
		}
	}
	return Resolution{}
}
