package roles

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

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const cacheKey = "roles:all"
const cacheTTL = 10 * time.Minute

// List handles GET /api/roles, served from the Redis cache when warm.
func List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if cached, err := rdx.RdxGet(cacheKey); err == nil && cached != "" {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(cached))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	cur, err := db.RolesCollection.Find(ctx, bson.M{})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	defer cur.Close(ctx)

	var roles []models.Role
	for cur.Next(ctx) {
		var role models.Role
		if err := cur.Decode(&role); err == nil {
			roles = append(roles, role)
		}
	}

	payload, _ := json.Marshal(map[string]any{"roles": roles})
	if err := rdx.SetWithExpiry(cacheKey, string(payload), cacheTTL); err != nil {
		log.Println("roles cache write failed:", err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(payload)
}

// Create handles POST /api/roles.
func Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var role models.Role
	if err := json.NewDecoder(r.Body).Decode(&role); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if role.Name == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "missing name")
		return
	}
	role.ID = uuid.NewString()

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if _, err := db.RolesCollection.InsertOne(ctx, role); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	rdx.RdxDel(cacheKey)
	utils.RespondWithJSON(w, http.StatusCreated, map[string]any{"role": role})
}

// Update handles PUT /api/roles/:id. A rename fans out to the denormalized
// role objects embedded in user records; see reconcile below.
func Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	roleID := ps.ByName("id")
	var body struct {
		Name        string   `json:"name"`
		Permissions []string `json:"permissions"`
		IsEmployee  *bool    `json:"isEmployee"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var existing models.Role
	if err := db.RolesCollection.FindOne(ctx, bson.M{"id": roleID}).Decode(&existing); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "role not found")
		return
	}
	if existing.Protected {
		utils.RespondWithError(w, http.StatusForbidden, "role is protected")
		return
	}

	set := bson.M{}
	if body.Name != "" {
		set["name"] = body.Name
	}
	if body.Permissions != nil {
		set["permissions"] = body.Permissions
	}
	if body.IsEmployee != nil {
		set["isEmployee"] = *body.IsEmployee
	}
	if len(set) == 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "nothing to update")
		return
	}

	if _, err := db.RolesCollection.UpdateOne(ctx, bson.M{"id": roleID}, bson.M{"$set": set}); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	rdx.RdxDel(cacheKey)

	if body.Name != "" && body.Name != existing.Name {
		// Users embed {id, name, isEmployee} copies; reconcile in the
		// background. Not atomic with the role update — the copies are
		// eventually consistent and the window is visible to readers.
		go reconcileRename(roleID, body.Name)
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// Delete handles DELETE /api/roles/:id.
func Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	roleID := ps.ByName("id")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var existing models.Role
	if err := db.RolesCollection.FindOne(ctx, bson.M{"id": roleID}).Decode(&existing); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "role not found")
		return
	}
	if existing.Protected {
		utils.RespondWithError(w, http.StatusForbidden, "role is protected")
		return
	}

	if _, err := db.RolesCollection.DeleteOne(ctx, bson.M{"id": roleID}); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}

	// Pull both representations out of user role arrays.
	_, err := db.UserCollection.UpdateMany(ctx,
		bson.M{},
		bson.M{"$pull": bson.M{"roles": bson.M{"$in": bson.A{existing.Name, bson.M{"id": roleID}}}}},
	)
	if err != nil {
		log.Println("role delete fan-out failed:", err)
	}

	rdx.RdxDel(cacheKey)
	w.WriteHeader(http.StatusNoContent)
}

// reconcileRename updates the denormalized role name on every user holding
// the role. Batched positional update; failures are logged for a retry by
// the next rename or a manual sweep.
func reconcileRename(roleID, newName string) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	res, err := db.UserCollection.UpdateMany(ctx,
		bson.M{"roles.id": roleID},
		bson.M{"$set": bson.M{"roles.$[elem].name": newName}},
		options.Update().SetArrayFilters(options.ArrayFilters{
			Filters: []any{bson.M{"elem.id": roleID}},
		}),
	)
	if err != nil {
		log.Printf("role rename reconcile for %s failed: %v", roleID, err)
		return
	}
	log.Printf("role rename reconcile for %s touched %d users", roleID, res.ModifiedCount)
}
