package scans

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"nova/db"
	"nova/models"
	"nova/rdx"
	"nova/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const eventChannel = "kiosk:scans"

// MongoRecorder persists scan diagnostics and publishes each one for live
// dashboards. Writes are best effort: a failed diagnostic write never blocks
// the scan flow.
type MongoRecorder struct{}

func (MongoRecorder) Record(ctx context.Context, scan models.Scan) {
	if _, err := db.ScansCollection.InsertOne(ctx, scan); err != nil {
		log.Println("scan record insert failed:", err)
		return
	}
	if data, err := json.Marshal(scan); err == nil {
		rdx.Publish(eventChannel, string(data))
	}
}

// List handles GET /api/scans?outcome=&memberId=&limit=. Staff-only; this is
// where swallowed resolution errors surface for review.
func List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	filter := bson.M{}
	if v := r.URL.Query().Get("outcome"); v != "" {
		filter["outcome"] = v
	}
	if v := r.URL.Query().Get("memberId"); v != "" {
		filter["memberId"] = v
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.M{"timestamp": -1}).SetLimit(200)
	cur, err := db.ScansCollection.Find(ctx, filter, opts)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	defer cur.Close(ctx)

	var out []models.Scan
	for cur.Next(ctx) {
		var s models.Scan
		if err := cur.Decode(&s); err == nil {
			out = append(out, s)
		}
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]any{"scans": out})
}
