package membership

import (
	"testing"
	"time"

	"nova/models"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestEvaluateBoundaries(t *testing.T) {
	cases := []struct {
		name   string
		member models.Member
		code   string
		hadAny bool
	}{
		{
			name: "expiry one second out is active",
			member: models.Member{ActiveSubscription: &models.Subscription{
				Name: "Maker", ExpiresAt: now.Add(1 * time.Second),
			}},
			code:   StatusActive,
			hadAny: true,
		},
		{
			name: "expiry one second past is expired",
			member: models.Member{ActiveSubscription: &models.Subscription{
				Name: "Maker", ExpiresAt: now.Add(-1 * time.Second),
			}},
			code:   StatusExpired,
			hadAny: true,
		},
		{
			name:   "no subscription history is inactive",
			member: models.Member{},
			code:   StatusInactive,
		},
		{
			name: "legacy expiry field alone still classifies",
			member: models.Member{
				MembershipExpiresAt: now.Add(-240 * time.Hour),
			},
			code:   StatusExpired,
			hadAny: true,
		},
		{
			name: "subscription list without active sub counts as history",
			member: models.Member{
				Subscriptions: []models.Subscription{{Name: "Old"}},
			},
			code:   StatusExpired,
			hadAny: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st := Evaluate(&tc.member, now)
			if st.Code != tc.code {
				t.Errorf("code = %q, want %q", st.Code, tc.code)
			}
			if st.HadAny != tc.hadAny {
				t.Errorf("hadAny = %v, want %v", st.HadAny, tc.hadAny)
			}
		})
	}
}

func TestEvaluateNearExpiryWarning(t *testing.T) {
	m := models.Member{ActiveSubscription: &models.Subscription{
		Name: "Maker", PlanID: "p1", Cycle: "monthly",
		ExpiresAt: now.Add(3 * 24 * time.Hour),
	}}
	st := Evaluate(&m, now)
	if st.Code != StatusActive {
		t.Fatalf("code = %q, want active", st.Code)
	}
	if !st.ExpiresSoon {
		t.Error("expected ExpiresSoon for expiry 3 days out")
	}

	m.ActiveSubscription.ExpiresAt = now.Add(30 * 24 * time.Hour)
	if st := Evaluate(&m, now); st.ExpiresSoon {
		t.Error("30 days out should not warn")
	}
}

func TestToInstantShapes(t *testing.T) {
	want := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	secs := want.Unix()

	cases := []struct {
		name string
		in   any
		ok   bool
	}{
		{"native time", want, true},
		{"epoch seconds int64", secs, true},
		{"epoch seconds float64", float64(secs), true},
		{"epoch millis", float64(want.UnixMilli()), true},
		{"seconds object", map[string]any{"seconds": float64(secs)}, true},
		{"nil", nil, false},
		{"string garbage", "tomorrow", false},
		{"zero time", time.Time{}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ToInstant(tc.in)
			if ok != tc.ok {
				t.Fatalf("ok = %v, want %v", ok, tc.ok)
			}
			if ok && !got.Equal(want) {
				t.Errorf("got %v, want %v", got, want)
			}
		})
	}
}

func TestAddCycle(t *testing.T) {
	base := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)

	if got := AddCycle(base, "monthly"); got != base.AddDate(0, 1, 0) {
		t.Errorf("monthly: got %v", got)
	}
	if got := AddCycle(base, "quarterly"); got != base.AddDate(0, 3, 0) {
		t.Errorf("quarterly: got %v", got)
	}
	if got := AddCycle(base, "yearly"); got != base.AddDate(1, 0, 0) {
		t.Errorf("yearly: got %v", got)
	}
	// unknown cycle falls back to monthly
	if got := AddCycle(base, "weekly-ish"); got != base.AddDate(0, 1, 0) {
		t.Errorf("fallback: got %v", got)
	}
}
