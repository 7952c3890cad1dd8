package reservations

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"nova/db"
	"nova/models"
	"nova/utils"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// maxConflictsShown bounds how many colliding reservations the wizard lists.
const maxConflictsShown = 5

// Handler serves the reservation wizard and back-office endpoints.
type Handler struct {
	Checker *Checker
}

func resourceOf(res *models.Reservation) ResourceQuery {
	return ResourceQuery{
		Type:        res.Type,
		RequestMode: res.RequestMode,
		MachineID:   res.MachineID,
		StaffUserID: res.StaffUserID,
	}
}

func validate(res *models.Reservation) string {
	switch res.Type {
	case models.ReservationTypeMachine:
		if res.MachineID == "" {
			return "machine reservations need a machineId"
		}
	case models.ReservationTypeTutoring:
		if res.RequestMode == models.RequestModeStaff && res.StaffUserID == "" {
			return "staff requests need a staffUserId"
		}
	default:
		return "invalid reservation type"
	}
	if res.Requester.ID == "" {
		return "missing requester"
	}
	if res.StartAt.IsZero() || res.EndAt.IsZero() || !res.StartAt.Before(res.EndAt) {
		return "end must be after start"
	}
	return ""
}

// CheckConflicts handles POST /api/reservations/check. The wizard calls this
// (debounced client-side) while the user edits the time range.
func (h *Handler) CheckConflicts(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var res models.Reservation
	if err := json.NewDecoder(r.Body).Decode(&res); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if !res.StartAt.Before(res.EndAt) {
		utils.RespondWithError(w, http.StatusBadRequest, "end must be after start")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	conflicts, err := h.Checker.FindConflicts(ctx, resourceOf(&res), res.StartAt, res.EndAt)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	if len(conflicts) > maxConflictsShown {
		conflicts = conflicts[:maxConflictsShown]
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]any{
		"clear":     len(conflicts) == 0,
		"conflicts": conflicts,
	})
}

// Create handles POST /api/reservations. Conflicts are a hard block: there
// is no override path. The check-then-insert here is not transactional; two
// concurrent bookings can both pass the check (documented race).
func (h *Handler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var res models.Reservation
	if err := json.NewDecoder(r.Body).Decode(&res); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if msg := validate(&res); msg != "" {
		utils.RespondWithError(w, http.StatusBadRequest, msg)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	conflicts, err := h.Checker.FindConflicts(ctx, resourceOf(&res), res.StartAt, res.EndAt)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	if len(conflicts) > 0 {
		if len(conflicts) > maxConflictsShown {
			conflicts = conflicts[:maxConflictsShown]
		}
		utils.RespondWithJSON(w, http.StatusConflict, map[string]any{
			"error":     "time slot is taken",
			"conflicts": conflicts,
		})
		return
	}

	res.ID = uuid.NewString()
	res.Status = models.ReservationPending
	res.CreatedAt = time.Now()

	if _, err := db.ReservationsCollection.InsertOne(ctx, res); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}

	Broadcast(resourceKey(&res), map[string]any{"action": "created", "reservation": res})
	utils.RespondWithJSON(w, http.StatusCreated, map[string]any{"reservation": res})
}

// List handles GET /api/reservations?status=&machineId=&staffUserId=.
func (h *Handler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	filter := bson.M{}
	if v := r.URL.Query().Get("status"); v != "" {
		filter["status"] = v
	}
	if v := r.URL.Query().Get("machineId"); v != "" {
		filter["machineId"] = v
	}
	if v := r.URL.Query().Get("staffUserId"); v != "" {
		filter["staffUserId"] = v
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.M{"startAt": 1}).SetLimit(200)
	cur, err := db.ReservationsCollection.Find(ctx, filter, opts)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	defer cur.Close(ctx)

	var out []models.Reservation
	for cur.Next(ctx) {
		var res models.Reservation
		if err := cur.Decode(&res); err == nil {
			out = append(out, res)
		}
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]any{"reservations": out})
}

// Get handles GET /api/reservations/:id.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var res models.Reservation
	if err := db.ReservationsCollection.FindOne(ctx, bson.M{"id": ps.ByName("id")}).Decode(&res); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "not found")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]any{"reservation": res})
}

var validTransitions = map[string]bool{
	models.ReservationPending:   true,
	models.ReservationApproved:  true,
	models.ReservationDenied:    true,
	models.ReservationCancelled: true,
}

// UpdateStatus handles PUT /api/reservations/:id/status.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if !validTransitions[body.Status] {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid status")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	found := db.ReservationsCollection.FindOneAndUpdate(ctx,
		bson.M{"id": ps.ByName("id")},
		bson.M{"$set": bson.M{"status": body.Status}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var updated models.Reservation
	if err := found.Decode(&updated); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "not found")
		return
	}

	Broadcast(resourceKey(&updated), map[string]any{"action": "status", "reservation": updated})
	utils.RespondWithJSON(w, http.StatusOK, map[string]any{"reservation": updated})
}

// Cancel handles POST /api/reservations/:id/cancel (shortcut, idempotent).
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	found := db.ReservationsCollection.FindOneAndUpdate(ctx,
		bson.M{"id": ps.ByName("id")},
		bson.M{"$set": bson.M{"status": models.ReservationCancelled}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var updated models.Reservation
	if err := found.Decode(&updated); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "not found")
		return
	}

	Broadcast(resourceKey(&updated), map[string]any{"action": "cancelled", "reservation": updated})
	utils.RespondWithJSON(w, http.StatusOK, map[string]any{"reservation": updated})
}
