package sessions

import (
	"context"
	"errors"
	"time"

	"nova/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrAlreadyOpen is returned when a member already has an open session. The
// partial unique index on open sessions turns the double-tap race into this
// error instead of a second open session.
var ErrAlreadyOpen = errors.New("member already has an open session")

// Store is the persistence surface of the lifecycle manager.
type Store interface {
	FindOpen(ctx context.Context, memberID string) (*models.Session, error)
	Insert(ctx context.Context, s *models.Session) error
	SetEnd(ctx context.Context, sessionID string, at time.Time) error
}

type MongoStore struct {
	Col *mongo.Collection
}

func (s MongoStore) FindOpen(ctx context.Context, memberID string) (*models.Session, error) {
	var sess models.Session
	err := s.Col.FindOne(ctx, bson.M{"member.id": memberID, "endTime": nil}).Decode(&sess)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s MongoStore) Insert(ctx context.Context, sess *models.Session) error {
	_, err := s.Col.InsertOne(ctx, sess)
	if mongo.IsDuplicateKeyError(err) {
		return ErrAlreadyOpen
	}
	return err
}

func (s MongoStore) SetEnd(ctx context.Context, sessionID string, at time.Time) error {
	res, err := s.Col.UpdateOne(ctx,
		bson.M{"id": sessionID},
		bson.M{"$set": bson.M{"endTime": at}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Manager owns the session state machine: NoSession → Open → Closed, where
// Open is the only state with a null endTime.
type Manager struct {
	store Store
	now   func() time.Time
}

func NewManager(store Store) *Manager {
	return &Manager{store: store, now: time.Now}
}

func (m *Manager) FindOpenSession(ctx context.Context, memberID string) (*models.Session, error) {
	return m.store.FindOpen(ctx, memberID)
}

// StartSession opens a new session. Callers are expected to have checked
// FindOpenSession first; if a concurrent scan won the race anyway, the store
// reports ErrAlreadyOpen.
func (m *Manager) StartSession(ctx context.Context, member models.MemberRef, sessionType string) (*models.Session, error) {
	sess := &models.Session{
		ID:        uuid.NewString(),
		Member:    member,
		StartTime: m.now(),
		EndTime:   nil,
		Type:      sessionType,
	}
	if err := m.store.Insert(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// EndSession closes a session. Setting endTime twice just overwrites the
// timestamp, so double invocation is harmless.
func (m *Manager) EndSession(ctx context.Context, sessionID string) error {
	return m.store.SetEnd(ctx, sessionID, m.now())
}
