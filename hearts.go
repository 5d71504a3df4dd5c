package main

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type heartDTO struct {
	ID        string     `json:"id"`
	CreatedAt string     `json:"createdAt"`
	User      publicUser `json:"user"`
}

// POST /api/posts/{id}/hearts
func (a *api) handleCreateHeart(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "id")

	var in struct {
		UserID string `json:"userId"`
	}
	if err := decodeJSON(r, &in); err != nil || in.UserID == "" {
		errorJSON(w, http.StatusBadRequest, "User ID is required")
		return
	}

	if ok := a.postExists(w, r, postID); !ok {
		return
	}

	var count int64
	if err := a.db.WithContext(r.Context()).Model(&Heart{}).
		Where("user_id = ? AND post_id = ?", in.UserID, postID).
		Count(&count).Error; err != nil {
		a.log.Error("heart lookup error", "err", err)
		errorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if count > 0 {
		errorJSON(w, http.StatusConflict, "User has already hearted this post")
		return
	}

	heart := Heart{ID: uuid.NewString(), UserID: in.UserID, PostID: postID}
	if err := a.db.WithContext(r.Context()).Create(&heart).Error; err != nil {
		// Two concurrent hearts can both pass the pre-check; the unique
		// index on (user_id, post_id) settles it.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			errorJSON(w, http.StatusConflict, "User has already hearted this post")
			return
		}
		a.log.Error("heart create error", "err", err)
		errorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "Post hearted successfully"})
}

// DELETE /api/posts/{id}/hearts
func (a *api) handleDeleteHeart(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "id")

	var in struct {
		UserID string `json:"userId"`
	}
	if err := decodeJSON(r, &in); err != nil || in.UserID == "" {
		errorJSON(w, http.StatusBadRequest, "User ID is required")
		return
	}

	res := a.db.WithContext(r.Context()).
		Where("user_id = ? AND post_id = ?", in.UserID, postID).
		Delete(&Heart{})
	if res.Error != nil {
		a.log.Error("heart delete error", "err", res.Error)
		errorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if res.RowsAffected == 0 {
		errorJSON(w, http.StatusNotFound, "Heart not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Post unhearted successfully"})
}

// GET /api/posts/{id}/hearts
func (a *api) handleListHearts(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "id")

	if ok := a.postExists(w, r, postID); !ok {
		return
	}

	var hearts []Heart
	if err := a.db.WithContext(r.Context()).
		Where("post_id = ?", postID).
		Order("created_at DESC, id DESC").
		Find(&hearts).Error; err != nil {
		a.log.Error("hearts list error", "err", err)
		errorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	ids := make([]string, 0, len(hearts))
	for _, h := range hearts {
		ids = append(ids, h.UserID)
	}
	users, err := a.usersByID(r, ids)
	if err != nil {
		a.log.Error("heart users lookup error", "err", err)
		errorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	out := make([]heartDTO, 0, len(hearts))
	for _, h := range hearts {
		u, ok := users[h.UserID]
		if !ok {
			// User row is gone; do not emit a heart with an empty identity.
			continue
		}
		out = append(out, heartDTO{
			ID:        h.ID,
			CreatedAt: h.CreatedAt.UTC().Format(timeLayout),
			User:      toPublicUser(u),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"heartsCount": len(out),
		"hearts":      out,
	})
}

// postExists writes the 404/500 response itself when the post cannot be
// used; callers just return on false.
func (a *api) postExists(w http.ResponseWriter, r *http.Request, postID string) bool {
	var p Post
	err := a.db.WithContext(r.Context()).First(&p, "id = ?", postID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		errorJSON(w, http.StatusNotFound, "Post not found")
		return false
	} else if err != nil {
		a.log.Error("post lookup error", "err", err)
		errorJSON(w, http.StatusInternalServerError, "Internal server error")
		return false
	}
	return true
}
