package passes

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"nova/db"
	"nova/globals"
	"nova/models"
	"nova/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Signed passes expire after a day; the door controller re-fetches nightly.
const passTTL = 24 * time.Hour

// GeneratePayload returns memberID|badgeCode|expiry|signature.
func GeneratePayload(memberID, badgeCode string, now time.Time) string {
	expiry := now.Add(passTTL).Unix()
	data := fmt.Sprintf("%s|%s|%d", memberID, badgeCode, expiry)

	h := hmac.New(sha256.New, globals.PassSecret)
	h.Write([]byte(data))
	sig := base64.StdEncoding.EncodeToString(h.Sum(nil))

	return fmt.Sprintf("%s|%s", data, sig)
}

// VerifyPayload checks the signature and expiry of a scanned pass payload and
// returns the member id.
func VerifyPayload(payload string, now time.Time) (string, error) {
	parts := strings.Split(payload, "|")
	if len(parts) != 4 {
		return "", errors.New("malformed pass")
	}
	data := strings.Join(parts[:3], "|")

	h := hmac.New(sha256.New, globals.PassSecret)
	h.Write([]byte(data))
	want := base64.StdEncoding.EncodeToString(h.Sum(nil))
	if !hmac.Equal([]byte(want), []byte(parts[3])) {
		return "", errors.New("bad signature")
	}

	expiry, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil || now.Unix() > expiry {
		return "", errors.New("pass expired")
	}
	return parts[0], nil
}

// PrintPass handles GET /api/members/:id/pass and streams a QR PNG the member
// can show at the door when they forget their badge.
func PrintPass(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	memberID := ps.ByName("id")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var m models.Member
	err := db.UserCollection.FindOne(ctx, bson.M{"userid": memberID}).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		http.Error(w, "member not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}

	payload := GeneratePayload(m.UserID, m.BadgeCode(), time.Now())
	png, err := qrcode.Encode(payload, qrcode.Medium, 256)
	if err != nil {
		http.Error(w, "Failed to generate QR code", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", "inline; filename=pass-"+m.UserID+".png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// VerifyPass handles POST /api/passes/verify. Body: {payload}.
func VerifyPass(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body struct {
		Payload string `json:"payload"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	memberID, err := VerifyPayload(body.Payload, time.Now())
	if err != nil {
		utils.RespondWithJSON(w, http.StatusOK, map[string]any{"valid": false, "reason": err.Error()})
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]any{"valid": true, "memberId": memberID})
}
