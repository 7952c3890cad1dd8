package filedrop

import (
	"context"
	"fmt"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"time"

	"nova/db"
	"nova/utils"

	"github.com/disintegration/imaging"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
)

const photoUploadDir = "./static/memberpic"

// UploadMemberPhoto handles POST /api/members/:id/photo (multipart form,
// field "photo"). Saves the original plus a 300px-wide badge thumbnail and
// stores the URL on the member record.
func UploadMemberPhoto(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	memberID := ps.ByName("id")

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("photo")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "missing photo file")
		return
	}
	defer file.Close()

	if !utils.ValidateImageFileType(w, header) {
		return
	}

	photoURL, err := savePhoto(file, memberID)
	if err != nil {
		log.Println("photo upload failed:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to save photo")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := db.UserCollection.UpdateOne(ctx,
		bson.M{"userid": memberID},
		bson.M{"$set": bson.M{"photoURL": photoURL, "updated_at": time.Now()}},
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	if res.MatchedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "member not found")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]any{"photoURL": photoURL})
}

func savePhoto(src multipart.File, memberID string) (string, error) {
	img, err := imaging.Decode(src)
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	fileName := memberID + ".jpg"
	originalPath := filepath.Join(photoUploadDir, fileName)
	thumbDir := filepath.Join(photoUploadDir, "thumb")
	thumbnailPath := filepath.Join(thumbDir, fileName)

	if err := utils.EnsureDir(photoUploadDir); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}
	if err := utils.EnsureDir(thumbDir); err != nil {
		return "", fmt.Errorf("failed to create thumbnail directory: %w", err)
	}

	if err := imaging.Save(img, originalPath); err != nil {
		return "", fmt.Errorf("failed to save original image: %w", err)
	}

	thumbImg := imaging.Resize(img, 300, 0, imaging.Lanczos)
	if err := imaging.Save(thumbImg, thumbnailPath); err != nil {
		return "", fmt.Errorf("failed to save thumbnail: %w", err)
	}

	return "/memberpic/" + fileName, nil
}
