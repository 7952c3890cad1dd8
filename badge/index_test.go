package badge

import (
	"testing"
	"time"
)

type fakeCache struct {
	data map[string]string
	gets int
	sets int
}

func newFakeCache() *fakeCache { return &fakeCache{data: map[string]string{}} }

func (f *fakeCache) Get(key string) (string, error) {
	f.gets++
	return f.data[key], nil
}

func (f *fakeCache) Set(key, value string, _ time.Duration) error {
	f.sets++
	f.data[key] = value
	return nil
}

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"00123", "00123", true},
		{"54-32/1", "54321", true},
		{" 0 0 7 ", "007", true},
		{"abc", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := Normalize(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("Normalize(%q) = %q,%v want %q,%v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	for _, in := range []string{"00123", "5-4-3", "x9y8", "000", "nope"} {
		once, ok1 := Normalize(in)
		if !ok1 {
			continue
		}
		twice, ok2 := Normalize(once)
		if !ok2 || twice != once {
			t.Errorf("Normalize not idempotent for %q: %q vs %q", in, once, twice)
		}
	}
}

func TestUpdateLookupRoundTrip(t *testing.T) {
	ix := NewIndex(nil)
	ix.Update("u1", "00123")

	if id, ok := ix.Lookup("00123"); !ok || id != "u1" {
		t.Errorf("Lookup(00123) = %q,%v", id, ok)
	}
	// numeric alias tolerates the leading-zero mismatch
	if id, ok := ix.Lookup("123"); !ok || id != "u1" {
		t.Errorf("Lookup(123) = %q,%v", id, ok)
	}
	if _, ok := ix.Lookup("999"); ok {
		t.Error("unexpected hit for unknown code")
	}
}

func TestUpdateOverwritesOnReassignment(t *testing.T) {
	ix := NewIndex(nil)
	ix.Update("u1", "777")
	ix.Update("u2", "777")
	if id, _ := ix.Lookup("777"); id != "u2" {
		t.Errorf("expected reassignment to win, got %q", id)
	}
}

func TestClear(t *testing.T) {
	cache := newFakeCache()
	ix := NewIndex(cache)
	ix.Update("u1", "123")
	ix.Clear()
	if _, ok := ix.Lookup("123"); ok {
		t.Error("lookup hit after Clear")
	}
	if cache.sets < 2 {
		t.Errorf("Clear should persist empty state, sets = %d", cache.sets)
	}
}

func TestPersistedSnapshotSurvivesRestart(t *testing.T) {
	cache := newFakeCache()
	ix := NewIndex(cache)
	ix.Update("u1", "00123")

	// a fresh index over the same cache sees the mapping
	ix2 := NewIndex(cache)
	if id, ok := ix2.Lookup("123"); !ok || id != "u1" {
		t.Errorf("restarted index Lookup = %q,%v", id, ok)
	}
}

func TestStaleSnapshotDiscarded(t *testing.T) {
	cache := newFakeCache()
	ix := NewIndex(cache)
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	ix.now = func() time.Time { return base }
	ix.Update("u1", "123")

	ix2 := NewIndex(cache)
	ix2.now = func() time.Time { return base.Add(DefaultTTL + time.Minute) }
	if _, ok := ix2.Lookup("123"); ok {
		t.Error("snapshot older than TTL must be discarded")
	}
}

func TestLazyLoadIsTTLGated(t *testing.T) {
	cache := newFakeCache()
	ix := NewIndex(cache)
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	now := base
	ix.now = func() time.Time { return now }

	ix.Lookup("1")
	ix.Lookup("2")
	ix.Lookup("3")
	if cache.gets != 1 {
		t.Fatalf("expected one snapshot read inside the TTL window, got %d", cache.gets)
	}

	now = base.Add(DefaultTTL + time.Second)
	ix.Lookup("4")
	if cache.gets != 2 {
		t.Fatalf("expected a reload after the TTL elapsed, got %d reads", cache.gets)
	}
}
