package sessions

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"nova/db"
	"nova/models"
	"nova/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Handler exposes explicit session operations for the back office (staff
// clock-in, manual check-out, session listings).
type Handler struct {
	Manager *Manager
}

// Start handles POST /api/sessions. Body: {member: {id, name}, type}.
func (h *Handler) Start(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body struct {
		Member models.MemberRef `json:"member"`
		Type   string           `json:"type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if body.Member.ID == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "missing member id")
		return
	}
	if body.Type != models.SessionTypeClockIn {
		body.Type = models.SessionTypeCheckIn
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if open, err := h.Manager.FindOpenSession(ctx, body.Member.ID); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	} else if open != nil {
		utils.RespondWithJSON(w, http.StatusConflict, map[string]any{
			"error":   "member already has an open session",
			"session": open,
		})
		return
	}

	sess, err := h.Manager.StartSession(ctx, body.Member, body.Type)
	if err == ErrAlreadyOpen {
		utils.RespondWithError(w, http.StatusConflict, "member already has an open session")
		return
	}
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, map[string]any{"session": sess})
}

// End handles POST /api/sessions/:id/end.
func (h *Handler) End(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	sessionID := ps.ByName("id")
	if sessionID == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "missing id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	err := h.Manager.EndSession(ctx, sessionID)
	if err == mongo.ErrNoDocuments {
		utils.RespondWithError(w, http.StatusNotFound, "session not found")
		return
	}
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// GetOpen handles GET /api/sessions/open/:memberId.
func (h *Handler) GetOpen(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	sess, err := h.Manager.FindOpenSession(ctx, ps.ByName("memberId"))
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]any{"session": sess})
}

// List handles GET /api/sessions?type=&open=&limit=.
func List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	filter := bson.M{}
	if t := r.URL.Query().Get("type"); t != "" {
		filter["type"] = t
	}
	if r.URL.Query().Get("open") == "true" {
		filter["endTime"] = nil
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.M{"startTime": -1}).SetLimit(200)
	cur, err := db.SessionsCollection.Find(ctx, filter, opts)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	defer cur.Close(ctx)

	var sessions []models.Session
	for cur.Next(ctx) {
		var s models.Session
		if err := cur.Decode(&s); err == nil {
			sessions = append(sessions, s)
		}
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]any{"sessions": sessions})
}
