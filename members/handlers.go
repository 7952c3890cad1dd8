package members

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"nova/badge"
	"nova/db"
	"nova/membership"
	"nova/models"
	"nova/utils"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Handler owns the member back-office endpoints. It carries the badge index
// so badge assignments and bulk loads keep the kiosk hot path primed.
type Handler struct {
	Index *badge.Index
}

// List handles GET /api/members. Loading the full pool is what the kiosk
// front end does on boot, so this is also where the badge index gets primed.
func (h *Handler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	cur, err := db.UserCollection.Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"fullName": 1}))
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	defer cur.Close(ctx)

	var members []models.Member
	for cur.Next(ctx) {
		var m models.Member
		if err := cur.Decode(&m); err == nil {
			members = append(members, m)
		}
	}

	h.Index.Prime(members)
	utils.RespondWithJSON(w, http.StatusOK, map[string]any{"members": members})
}

// Get handles GET /api/members/:id, with the derived membership status
// attached so the back office never recomputes it client-side.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var m models.Member
	err := db.UserCollection.FindOne(ctx, bson.M{"userid": ps.ByName("id")}).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		utils.RespondWithError(w, http.StatusNotFound, "member not found")
		return
	}
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}

	status := membership.Evaluate(&m, time.Now())
	utils.RespondWithJSON(w, http.StatusOK, map[string]any{
		"member":     m,
		"membership": status,
		"roles":      membership.NormalizeRoles(m.Roles),
	})
}

// Create handles POST /api/members (signup from the front desk).
func (h *Handler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var m models.Member
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if m.FullName == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "missing fullName")
		return
	}

	m.UserID = "u" + utils.GenerateRandomString(10)
	m.CreatedAt = time.Now()
	m.Password = ""

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if _, err := db.UserCollection.InsertOne(ctx, m); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	if m.BadgeCode() != "" {
		h.Index.Update(m.UserID, m.BadgeCode())
	}
	utils.RespondWithJSON(w, http.StatusCreated, map[string]any{"member": m})
}

// Update handles PUT /api/members/:id for contact/profile fields. Badge and
// subscription changes go through their dedicated endpoints.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body struct {
		FullName       string `json:"fullName"`
		Email          string `json:"email"`
		Phone          string `json:"phone"`
		MembershipType string `json:"membershipType"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	set := bson.M{"updated_at": time.Now()}
	if body.FullName != "" {
		set["fullName"] = body.FullName
	}
	if body.Email != "" {
		set["email"] = body.Email
	}
	if body.Phone != "" {
		set["phone"] = body.Phone
	}
	if body.MembershipType != "" {
		set["membershipType"] = body.MembershipType
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := db.UserCollection.UpdateOne(ctx, bson.M{"userid": ps.ByName("id")}, bson.M{"$set": set})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	if res.MatchedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "member not found")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// AssignBadge handles PUT /api/members/:id/badge. Reassignment overwrites:
// the index stays 1:1 current-code → member.
func (h *Handler) AssignBadge(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	memberID := ps.ByName("id")
	var b models.Badge
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	code, ok := badge.Normalize(b.ID)
	if !ok {
		utils.RespondWithError(w, http.StatusBadRequest, "badge code must contain digits")
		return
	}
	b.ID = code

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := db.UserCollection.UpdateOne(ctx,
		bson.M{"userid": memberID},
		bson.M{"$set": bson.M{"badge": b, "updated_at": time.Now()}},
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	if res.MatchedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "member not found")
		return
	}

	h.Index.Update(memberID, code)
	utils.RespondWithJSON(w, http.StatusOK, map[string]any{"badge": b})
}

// Renew handles POST /api/members/:id/renew. Body: {planId, planName, cycle,
// amount, method}. Writes the payment and overwrites activeSubscription with
// a fresh expiry one cycle out (from the current expiry when still active,
// from now otherwise).
func (h *Handler) Renew(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	memberID := ps.ByName("id")
	var body struct {
		PlanID   string  `json:"planId"`
		PlanName string  `json:"planName"`
		Cycle    string  `json:"cycle"`
		Amount   float64 `json:"amount"`
		Method   string  `json:"method"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var m models.Member
	err := db.UserCollection.FindOne(ctx, bson.M{"userid": memberID}).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		utils.RespondWithError(w, http.StatusNotFound, "member not found")
		return
	}
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}

	now := time.Now()
	base := now
	if st := membership.Evaluate(&m, now); st.Code == membership.StatusActive {
		base = st.ExpiresAt
	}
	expiresAt := membership.AddCycle(base, body.Cycle)

	sub := models.Subscription{
		Name:      body.PlanName,
		PlanID:    body.PlanID,
		Cycle:     body.Cycle,
		ExpiresAt: expiresAt,
	}
	_, err = db.UserCollection.UpdateOne(ctx,
		bson.M{"userid": memberID},
		bson.M{
			"$set":  bson.M{"activeSubscription": sub, "updated_at": now},
			"$push": bson.M{"subscriptions": sub},
		},
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}

	payment := models.Payment{
		ID:        uuid.NewString(),
		MemberID:  memberID,
		Amount:    body.Amount,
		Currency:  "USD",
		Method:    body.Method,
		PlanID:    body.PlanID,
		PlanName:  body.PlanName,
		Cycle:     body.Cycle,
		CreatedAt: now,
	}
	if _, err := db.PaymentsCollection.InsertOne(ctx, payment); err != nil {
		// Subscription already updated; payment record is recoverable from
		// the processor side, so log instead of failing the renewal.
		log.Println("renewal payment record failed:", err)
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]any{
		"subscription": sub,
		"payment":      payment,
	})
}
