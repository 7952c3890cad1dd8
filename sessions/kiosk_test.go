package sessions

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"nova/badge"
	"nova/models"
)

type recordedScans struct {
	scans []models.Scan
}

func (r *recordedScans) Record(_ context.Context, s models.Scan) {
	r.scans = append(r.scans, s)
}

func kioskFixture(t *testing.T, members []models.Member) (*KioskHandler, *memStore, *recordedScans) {
	t.Helper()
	ix := badge.NewIndex(nil)
	ix.Prime(members)

	byID := map[string]*models.Member{}
	for i := range members {
		byID[members[i].UserID] = &members[i]
	}

	store := newMemStore()
	rec := &recordedScans{}
	h := &KioskHandler{
		Resolver: &badge.Resolver{Index: ix, Store: poolSource{byID}},
		Manager:  NewManager(store),
		Recorder: rec,
	}
	return h, store, rec
}

// poolSource serves FreshFetch reads out of a fixed map.
type poolSource struct {
	byID map[string]*models.Member
}

func (p poolSource) FindByID(_ context.Context, id string) (*models.Member, error) {
	return p.byID[id], nil
}

func (p poolSource) FindByBadgeField(_ context.Context, field, code string) (*models.Member, error) {
	for _, m := range p.byID {
		if field == "badge.id" && m.Badge != nil && m.Badge.ID == code {
			return m, nil
		}
	}
	return nil, nil
}

func doScan(t *testing.T, h *KioskHandler, code string) map[string]any {
	t.Helper()
	req := httptest.NewRequest("POST", "/api/kiosk/scan",
		strings.NewReader(`{"code":"`+code+`"}`))
	w := httptest.NewRecorder()
	h.Scan(w, req, nil)

	var resp map[string]any
	if err := json.NewDecoder(w.Result().Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return resp
}

func TestScanHappyPathCheckIn(t *testing.T) {
	members := []models.Member{{
		UserID:   "u9",
		FullName: "Dana Lee",
		Badge:    &models.Badge{ID: "54321"},
		ActiveSubscription: &models.Subscription{
			Name: "Maker", ExpiresAt: time.Now().Add(30 * 24 * time.Hour),
		},
	}}
	h, store, rec := kioskFixture(t, members)

	resp := doScan(t, h, "54321")
	if resp["outcome"] != models.ScanCheckedIn {
		t.Fatalf("outcome = %v", resp["outcome"])
	}

	open, _ := NewManager(store).FindOpenSession(context.Background(), "u9")
	if open == nil || open.EndTime != nil {
		t.Fatalf("expected an open session, got %+v", open)
	}
	if open.Type != models.SessionTypeCheckIn {
		t.Errorf("session type = %q", open.Type)
	}
	if len(rec.scans) != 1 || rec.scans[0].Outcome != models.ScanCheckedIn {
		t.Errorf("scan record = %+v", rec.scans)
	}
}

func TestScanTogglesToCheckOut(t *testing.T) {
	members := []models.Member{{
		UserID:   "u9",
		FullName: "Dana Lee",
		Badge:    &models.Badge{ID: "54321"},
		ActiveSubscription: &models.Subscription{
			Name: "Maker", ExpiresAt: time.Now().Add(30 * 24 * time.Hour),
		},
	}}
	h, store, _ := kioskFixture(t, members)

	doScan(t, h, "54321")
	resp := doScan(t, h, "54321")
	if resp["outcome"] != models.ScanCheckedOut {
		t.Fatalf("second scan outcome = %v", resp["outcome"])
	}
	open, _ := NewManager(store).FindOpenSession(context.Background(), "u9")
	if open != nil {
		t.Errorf("expected no open session after toggle, got %+v", open)
	}
}

func TestScanExpiredMemberBlockedWithoutSession(t *testing.T) {
	members := []models.Member{{
		UserID:   "u2",
		FullName: "Pat Kim",
		Badge:    &models.Badge{ID: "22222"},
		ActiveSubscription: &models.Subscription{
			Name: "Maker", ExpiresAt: time.Now().Add(-10 * 24 * time.Hour),
		},
	}}
	h, store, rec := kioskFixture(t, members)

	resp := doScan(t, h, "22222")
	if resp["outcome"] != models.ScanBlockedExpired {
		t.Fatalf("outcome = %v", resp["outcome"])
	}
	if store.inserts != 0 {
		t.Error("blocked member must not get a session")
	}
	if len(rec.scans) != 1 || rec.scans[0].Outcome != models.ScanBlockedExpired {
		t.Errorf("scan record = %+v", rec.scans)
	}
}

func TestScanInactiveMemberBlocked(t *testing.T) {
	members := []models.Member{{
		UserID:   "u5",
		FullName: "Lee Novak",
		Badge:    &models.Badge{ID: "33333"},
	}}
	h, store, _ := kioskFixture(t, members)

	resp := doScan(t, h, "33333")
	if resp["outcome"] != models.ScanBlockedInactive {
		t.Fatalf("outcome = %v", resp["outcome"])
	}
	if store.inserts != 0 {
		t.Error("inactive member must not get a session")
	}
}

func TestScanUnknownBadge(t *testing.T) {
	h, _, rec := kioskFixture(t, nil)
	resp := doScan(t, h, "99999")
	if resp["outcome"] != models.ScanNotFound {
		t.Fatalf("outcome = %v", resp["outcome"])
	}
	if len(rec.scans) != 1 || rec.scans[0].Outcome != models.ScanNotFound {
		t.Errorf("scan record = %+v", rec.scans)
	}
}

func TestScanEmployeeClockIn(t *testing.T) {
	members := []models.Member{{
		UserID:   "u7",
		FullName: "Ash Ito",
		Badge:    &models.Badge{ID: "44444"},
		Roles: []any{
			map[string]any{"id": "r1", "name": "Shop Lead", "isEmployee": true},
		},
		ActiveSubscription: &models.Subscription{
			Name: "Staff", ExpiresAt: time.Now().Add(365 * 24 * time.Hour),
		},
	}}
	h, store, _ := kioskFixture(t, members)

	doScan(t, h, "44444")
	open, _ := NewManager(store).FindOpenSession(context.Background(), "u7")
	if open == nil || open.Type != models.SessionTypeClockIn {
		t.Fatalf("expected ClockIn session, got %+v", open)
	}
}
