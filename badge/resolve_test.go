package badge

import (
	"context"
	"errors"
	"testing"

	"nova/models"
)

type fakeStore struct {
	byID    map[string]*models.Member
	byField map[string]*models.Member // key: field + "|" + code
	err     error

	idCalls    int
	fieldCalls int
}

func (f *fakeStore) FindByID(_ context.Context, id string) (*models.Member, error) {
	f.idCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.byID[id], nil
}

func (f *fakeStore) FindByBadgeField(_ context.Context, field, code string) (*models.Member, error) {
	f.fieldCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.byField[field+"|"+code], nil
}

func member(id, name, badgeID string) models.Member {
	return models.Member{
		UserID:   id,
		FullName: name,
		Badge:    &models.Badge{ID: badgeID},
	}
}

func TestResolveZeroReadsOnPrimedCache(t *testing.T) {
	members := []models.Member{member("u9", "Dana Lee", "54321")}
	ix := NewIndex(nil)
	ix.Prime(members)

	store := &fakeStore{}
	rs := &Resolver{Index: ix, Store: store}

	res := rs.Resolve(context.Background(), "54321", ResolveOptions{
		Pool:               NewPool(members),
		AllowStoreFallback: true,
		FreshFetch:         true,
	})
	if res.Member == nil || res.Member.UserID != "u9" {
		t.Fatalf("resolution = %+v", res)
	}
	if store.idCalls != 0 || store.fieldCalls != 0 {
		t.Errorf("store touched: %d id calls, %d field calls", store.idCalls, store.fieldCalls)
	}
}

func TestResolveStubWhenPoolMissesAndNoFreshFetch(t *testing.T) {
	ix := NewIndex(nil)
	ix.Update("u3", "111")
	rs := &Resolver{Index: ix, Store: &fakeStore{}}

	res := rs.Resolve(context.Background(), "111", ResolveOptions{})
	if res.Member != nil {
		t.Fatalf("expected stub, got full member %+v", res.Member)
	}
	if res.MemberID != "u3" || !res.Found() {
		t.Errorf("stub resolution = %+v", res)
	}
}

func TestResolveFreshFetchDoesOneRead(t *testing.T) {
	m := member("u3", "Ira Okafor", "111")
	ix := NewIndex(nil)
	ix.Update("u3", "111")
	store := &fakeStore{byID: map[string]*models.Member{"u3": &m}}
	rs := &Resolver{Index: ix, Store: store}

	res := rs.Resolve(context.Background(), "111", ResolveOptions{FreshFetch: true})
	if res.Member == nil || res.Member.FullName != "Ira Okafor" {
		t.Fatalf("resolution = %+v", res)
	}
	if store.idCalls != 1 {
		t.Errorf("idCalls = %d, want 1", store.idCalls)
	}
}

func TestResolveFallbackPrimesIndex(t *testing.T) {
	m := member("u7", "Sam Reyes", "888")
	ix := NewIndex(nil)
	store := &fakeStore{byField: map[string]*models.Member{"badge.id|888": &m}}
	rs := &Resolver{Index: ix, Store: store}

	res := rs.Resolve(context.Background(), "8-8-8", ResolveOptions{AllowStoreFallback: true})
	if res.Member == nil || res.Member.UserID != "u7" {
		t.Fatalf("resolution = %+v", res)
	}

	// second scan must resolve from the index without store traffic
	before := store.fieldCalls
	res = rs.Resolve(context.Background(), "888", ResolveOptions{
		Pool: Pool{"u7": &m},
	})
	if res.Member == nil || store.fieldCalls != before {
		t.Errorf("expected zero-read second resolution, fieldCalls %d → %d", before, store.fieldCalls)
	}
}

func TestResolveFallbackTriesBoundedFieldList(t *testing.T) {
	m := member("u8", "Noor Haddad", "")
	m.Badge.BadgeNumber = "444"
	ix := NewIndex(nil)
	store := &fakeStore{byField: map[string]*models.Member{"badge.badgeNumber|444": &m}}
	rs := &Resolver{Index: ix, Store: store}

	res := rs.Resolve(context.Background(), "444", ResolveOptions{AllowStoreFallback: true})
	if res.Member == nil || res.Member.UserID != "u8" {
		t.Fatalf("resolution = %+v", res)
	}
	if store.fieldCalls != len(fallbackFields) {
		t.Errorf("fieldCalls = %d, want %d", store.fieldCalls, len(fallbackFields))
	}
}

func TestResolveStoreErrorReadsAsNotFound(t *testing.T) {
	ix := NewIndex(nil)
	store := &fakeStore{err: errors.New("network down")}
	rs := &Resolver{Index: ix, Store: store}

	res := rs.Resolve(context.Background(), "123", ResolveOptions{AllowStoreFallback: true})
	if res.Found() {
		t.Errorf("store error must read as not-found, got %+v", res)
	}
}

func TestResolveRejectsNonNumericInput(t *testing.T) {
	store := &fakeStore{}
	rs := &Resolver{Index: NewIndex(nil), Store: store}
	res := rs.Resolve(context.Background(), "not-a-badge", ResolveOptions{AllowStoreFallback: true})
	if res.Found() || store.fieldCalls != 0 {
		t.Errorf("non-numeric input must short-circuit, res=%+v calls=%d", res, store.fieldCalls)
	}
}
