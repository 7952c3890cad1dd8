package sessions

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"nova/badge"
	"nova/membership"
	"nova/models"
	"nova/utils"

	"github.com/julienschmidt/httprouter"
)

// ScanRecorder persists the per-scan diagnostic record. Implemented by the
// scans package; tests inject fakes.
type ScanRecorder interface {
	Record(ctx context.Context, scan models.Scan)
}

// Notifier pushes kiosk events (check-in/out) to live dashboards.
type Notifier interface {
	Notify(event any)
}

// KioskHandler drives the badge-scan flow: resolve → membership gate →
// session toggle. Every attempt leaves a scan record, including the ones the
// kiosk user only sees as "please see staff".
type KioskHandler struct {
	Resolver *badge.Resolver
	Manager  *Manager
	Recorder ScanRecorder
	Notifier Notifier
}

type scanRequest struct {
	Code string `json:"code"`
}

type scanResponse struct {
	Outcome    string             `json:"outcome"`
	Member     *models.MemberRef  `json:"member,omitempty"`
	Membership *membership.Status `json:"membership,omitempty"`
	Session    *models.Session    `json:"session,omitempty"`
}

// Scan handles POST /api/kiosk/scan.
func (h *KioskHandler) Scan(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	code, ok := badge.Normalize(req.Code)
	if !ok {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid badge code")
		return
	}

	ctx := r.Context()
	res := h.Resolver.Resolve(ctx, code, badge.ResolveOptions{
		AllowStoreFallback: true,
		FreshFetch:         true,
	})

	scan := models.Scan{
		ID:        "scan-" + utils.GenerateRandomString(12),
		Code:      code,
		Timestamp: time.Now(),
	}

	switch {
	case res.Member == nil && res.MemberID == "":
		// Miss after cache and fallback. Kiosk shows the relink flow.
		scan.Outcome = models.ScanNotFound
		h.finish(ctx, scan, scanResponse{Outcome: models.ScanNotFound})
		utils.RespondWithJSON(w, http.StatusOK, scanResponse{Outcome: models.ScanNotFound})
		return

	case res.Member == nil:
		// Badge known but member data unavailable (store trouble). Same
		// assistance flow for the user, distinct record for staff.
		scan.MemberID = res.MemberID
		scan.Outcome = models.ScanError
		scan.Error = "member data unavailable"
		h.finish(ctx, scan, scanResponse{Outcome: models.ScanNotFound})
		utils.RespondWithJSON(w, http.StatusOK, scanResponse{Outcome: models.ScanNotFound})
		return
	}

	m := res.Member
	scan.MemberID = m.UserID
	ref := m.Ref()

	status := membership.Evaluate(m, time.Now())
	switch status.Code {
	case membership.StatusExpired:
		scan.Outcome = models.ScanBlockedExpired
		resp := scanResponse{Outcome: models.ScanBlockedExpired, Member: &ref, Membership: &status}
		h.finish(ctx, scan, resp)
		utils.RespondWithJSON(w, http.StatusOK, resp)
		return
	case membership.StatusInactive:
		scan.Outcome = models.ScanBlockedInactive
		resp := scanResponse{Outcome: models.ScanBlockedInactive, Member: &ref, Membership: &status}
		h.finish(ctx, scan, resp)
		utils.RespondWithJSON(w, http.StatusOK, resp)
		return
	}

	// Active member: a scan toggles presence.
	open, err := h.Manager.FindOpenSession(ctx, m.UserID)
	if err != nil {
		scan.Outcome = models.ScanError
		scan.Error = err.Error()
		h.finish(ctx, scan, scanResponse{Outcome: models.ScanNotFound})
		utils.RespondWithJSON(w, http.StatusOK, scanResponse{Outcome: models.ScanNotFound})
		return
	}

	if open != nil {
		if err := h.Manager.EndSession(ctx, open.ID); err != nil {
			utils.RespondWithError(w, http.StatusInternalServerError, "failed to check out")
			return
		}
		scan.Outcome = models.ScanCheckedOut
		resp := scanResponse{Outcome: models.ScanCheckedOut, Member: &ref, Membership: &status, Session: open}
		h.finish(ctx, scan, resp)
		utils.RespondWithJSON(w, http.StatusOK, resp)
		return
	}

	sessionType := models.SessionTypeCheckIn
	if membership.HasEmployeeRole(m.Roles) {
		sessionType = models.SessionTypeClockIn
	}

	sess, err := h.Manager.StartSession(ctx, ref, sessionType)
	if err == ErrAlreadyOpen {
		// Double tap lost the race; report the member as checked in.
		scan.Outcome = models.ScanCheckedIn
		resp := scanResponse{Outcome: models.ScanCheckedIn, Member: &ref, Membership: &status}
		h.finish(ctx, scan, resp)
		utils.RespondWithJSON(w, http.StatusOK, resp)
		return
	}
	if err != nil {
		scan.Outcome = models.ScanError
		scan.Error = err.Error()
		h.finish(ctx, scan, scanResponse{Outcome: models.ScanNotFound})
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to check in")
		return
	}

	scan.Outcome = models.ScanCheckedIn
	resp := scanResponse{Outcome: models.ScanCheckedIn, Member: &ref, Membership: &status, Session: sess}
	h.finish(ctx, scan, resp)
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *KioskHandler) finish(ctx context.Context, scan models.Scan, event scanResponse) {
	if h.Recorder != nil {
		h.Recorder.Record(ctx, scan)
	}
	if h.Notifier != nil {
		h.Notifier.Notify(event)
	}
	log.Printf("kiosk scan %s → %s", scan.Code, scan.Outcome)
}
