package sessions

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"nova/models"

	"github.com/julienschmidt/httprouter"
)

// Registered with the same pattern the route table uses; the param name in
// the pattern and the handler must match exactly or the lookup silently
// runs with an empty member id.
func TestGetOpenRouteParamName(t *testing.T) {
	store := newMemStore()
	mgr := NewManager(store)
	h := &Handler{Manager: mgr}

	router := httprouter.New()
	router.GET("/api/sessions/open/:memberId", h.GetOpen)

	sess, err := mgr.StartSession(context.Background(), models.MemberRef{ID: "u1", Name: "Dana Lee"}, models.SessionTypeCheckIn)
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/open/u1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Session *models.Session `json:"session"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Session == nil {
		t.Fatal("open session for u1 not returned")
	}
	if body.Session.ID != sess.ID || body.Session.Member.ID != "u1" {
		t.Errorf("session = %+v", body.Session)
	}
}

func TestGetOpenRouteNoSession(t *testing.T) {
	h := &Handler{Manager: NewManager(newMemStore())}

	router := httprouter.New()
	router.GET("/api/sessions/open/:memberId", h.GetOpen)

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/open/u2", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Session *models.Session `json:"session"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Session != nil {
		t.Errorf("expected null session, got %+v", body.Session)
	}
}
