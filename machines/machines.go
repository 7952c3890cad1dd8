package machines

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
)

// ---------- Machines ----------

func ListMachines(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	filter := bson.M{}
	if v := r.URL.Query().Get("studioId"); v != "" {
		filter["studioId"] = v
	}
	if v := r.URL.Query().Get("status"); v != "" {
		filter["status"] = v
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	cur, err := db.MachinesCollection.Find(ctx, filter)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	defer cur.Close(ctx)

	var machines []models.Machine
	for cur.Next(ctx) {
		var m models.Machine
		if err := cur.Decode(&m); err == nil {
			machines = append(machines, m)
		}
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]any{"machines": machines})
}

func CreateMachine(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var m models.Machine
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if m.Name == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "missing name")
		return
	}
	m.ID = uuid.NewString()
	if m.Status == "" {
		m.Status = models.MachineAvailable
	}
	m.CreatedAt = time.Now()

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	if _, err := db.MachinesCollection.InsertOne(ctx, m); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, map[string]any{"machine": m})
}

func UpdateMachineStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body struct {
		Status string `json:"status"`
		Notes  string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	switch body.Status {
	case models.MachineAvailable, models.MachineInUse, models.MachineMaintenance:
	default:
		utils.RespondWithError(w, http.StatusBadRequest, "invalid status")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	res, err := db.MachinesCollection.UpdateOne(ctx,
		bson.M{"id": ps.ByName("id")},
		bson.M{"$set": bson.M{"status": body.Status, "notes": body.Notes, "updatedAt": time.Now()}},
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	if res.MatchedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "machine not found")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func DeleteMachine(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	if _, err := db.MachinesCollection.DeleteOne(ctx, bson.M{"id": ps.ByName("id")}); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---------- Tools ----------

func ListTools(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	cur, err := db.ToolsCollection.Find(ctx, bson.M{})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	defer cur.Close(ctx)

	var tools []models.Tool
	for cur.Next(ctx) {
		var t models.Tool
		if err := cur.Decode(&t); err == nil {
			tools = append(tools, t)
		}
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]any{"tools": tools})
}

func CreateTool(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var t models.Tool
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if t.Name == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "missing name")
		return
	}
	t.ID = uuid.NewString()
	t.CreatedAt = time.Now()

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	if _, err := db.ToolsCollection.InsertOne(ctx, t); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, map[string]any{"tool": t})
}

// CheckOutTool handles POST /api/tools/:id/checkout. Body: {memberId}; an
// empty memberId checks the tool back in.
func CheckOutTool(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body struct {
		MemberID string `json:"memberId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	res, err := db.ToolsCollection.UpdateOne(ctx,
		bson.M{"id": ps.ByName("id")},
		bson.M{"$set": bson.M{"heldBy": body.MemberID}},
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	if res.MatchedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "tool not found")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func DeleteTool(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	if _, err := db.ToolsCollection.DeleteOne(ctx, bson.M{"id": ps.ByName("id")}); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---------- Materials ----------

func ListMaterials(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	cur, err := db.MaterialsCollection.Find(ctx, bson.M{})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	defer cur.Close(ctx)

	var materials []models.Material
	for cur.Next(ctx) {
		var m models.Material
		if err := cur.Decode(&m); err == nil {
			materials = append(materials, m)
		}
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]any{"materials": materials})
}

func CreateMaterial(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var m models.Material
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if m.Name == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "missing name")
		return
	}
	m.ID = uuid.NewString()
	m.CreatedAt = time.Now()

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	if _, err := db.MaterialsCollection.InsertOne(ctx, m); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, map[string]any{"material": m})
}

func DeleteMaterial(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	if _, err := db.MaterialsCollection.DeleteOne(ctx, bson.M{"id": ps.ByName("id")}); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AdjustMaterial handles POST /api/materials/:id/adjust. Body: {delta}.
func AdjustMaterial(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body struct {
		Delta float64 `json:"delta"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	res, err := db.MaterialsCollection.UpdateOne(ctx,
		bson.M{"id": ps.ByName("id")},
		bson.M{"$inc": bson.M{"quantity": body.Delta}},
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	if res.MatchedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "material not found")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]any{"ok": true})
}
