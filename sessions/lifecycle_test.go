package sessions

import (
	"context"
	"testing"
	"time"

	"nova/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// memStore mimics the sessions collection, including the partial unique
// index on open sessions.
type memStore struct {
	sessions map[string]*models.Session
	inserts  int
}

func newMemStore() *memStore {
	return &memStore{sessions: map[string]*models.Session{}}
}

func (s *memStore) FindOpen(_ context.Context, memberID string) (*models.Session, error) {
	for _, sess := range s.sessions {
		if sess.Member.ID == memberID && sess.EndTime == nil {
			cp := *sess
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *memStore) Insert(_ context.Context, sess *models.Session) error {
	if sess.EndTime == nil {
		for _, existing := range s.sessions {
			if existing.Member.ID == sess.Member.ID && existing.EndTime == nil {
				return ErrAlreadyOpen
			}
		}
	}
	cp := *sess
	s.sessions[sess.ID] = &cp
	s.inserts++
	return nil
}

func (s *memStore) SetEnd(_ context.Context, sessionID string, at time.Time) error {
	sess, ok := s.sessions[sessionID]
	if !ok {
		return mongo.ErrNoDocuments
	}
	sess.EndTime = &at
	return nil
}

func TestStartThenFindOpen(t *testing.T) {
	store := newMemStore()
	mgr := NewManager(store)
	ctx := context.Background()
	member := models.MemberRef{ID: "u1", Name: "Dana Lee"}

	sess, err := mgr.StartSession(ctx, member, models.SessionTypeCheckIn)
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if sess.EndTime != nil {
		t.Error("new session must be open")
	}
	if sess.Type != models.SessionTypeCheckIn {
		t.Errorf("type = %q", sess.Type)
	}

	open, err := mgr.FindOpenSession(ctx, "u1")
	if err != nil || open == nil {
		t.Fatalf("FindOpenSession: %v, %v", open, err)
	}
	if open.ID != sess.ID || open.EndTime != nil {
		t.Errorf("open session = %+v", open)
	}
}

func TestEndClosesTheSession(t *testing.T) {
	store := newMemStore()
	mgr := NewManager(store)
	ctx := context.Background()

	sess, _ := mgr.StartSession(ctx, models.MemberRef{ID: "u1"}, models.SessionTypeCheckIn)
	if err := mgr.EndSession(ctx, sess.ID); err != nil {
		t.Fatalf("EndSession: %v", err)
	}

	open, err := mgr.FindOpenSession(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if open != nil {
		t.Errorf("expected no open session after check-out, got %+v", open)
	}
}

func TestSecondStartIsRejected(t *testing.T) {
	store := newMemStore()
	mgr := NewManager(store)
	ctx := context.Background()
	member := models.MemberRef{ID: "u1"}

	if _, err := mgr.StartSession(ctx, member, models.SessionTypeCheckIn); err != nil {
		t.Fatal(err)
	}
	if _, err := mgr.StartSession(ctx, member, models.SessionTypeCheckIn); err != ErrAlreadyOpen {
		t.Errorf("second start: err = %v, want ErrAlreadyOpen", err)
	}
	if store.inserts != 1 {
		t.Errorf("inserts = %d, want 1", store.inserts)
	}
}

func TestReopenAfterClose(t *testing.T) {
	store := newMemStore()
	mgr := NewManager(store)
	ctx := context.Background()
	member := models.MemberRef{ID: "u1"}

	first, _ := mgr.StartSession(ctx, member, models.SessionTypeCheckIn)
	mgr.EndSession(ctx, first.ID)

	second, err := mgr.StartSession(ctx, member, models.SessionTypeClockIn)
	if err != nil {
		t.Fatalf("restart after close: %v", err)
	}
	if second.ID == first.ID {
		t.Error("a fresh session must get a fresh id")
	}
}

func TestEndUnknownSession(t *testing.T) {
	mgr := NewManager(newMemStore())
	if err := mgr.EndSession(context.Background(), "nope"); err != mongo.ErrNoDocuments {
		t.Errorf("err = %v, want ErrNoDocuments", err)
	}
}
