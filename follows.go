package main

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// POST /api/users/{id}/follow
func (a *api) handleFollow(w http.ResponseWriter, r *http.Request) {
	followedID := chi.URLParam(r, "id")

	var in struct {
		UserID string `json:"userId"`
	}
	if err := decodeJSON(r, &in); err != nil || in.UserID == "" {
		errorJSON(w, http.StatusBadRequest, "User ID is required")
		return
	}
	if in.UserID == followedID {
		errorJSON(w, http.StatusBadRequest, "Cannot follow yourself")
		return
	}

	if ok := a.userExists(w, r, followedID); !ok {
		return
	}

	var count int64
	if err := a.db.WithContext(r.Context()).Model(&Follow{}).
		Where("follower_id = ? AND followed_id = ?", in.UserID, followedID).
		Count(&count).Error; err != nil {
		a.log.Error("follow lookup error", "err", err)
		errorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if count > 0 {
		errorJSON(w, http.StatusConflict, "Already following this user")
		return
	}

	follow := Follow{ID: uuid.NewString(), FollowerID: in.UserID, FollowedID: followedID}
	if err := a.db.WithContext(r.Context()).Create(&follow).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			errorJSON(w, http.StatusConflict, "Already following this user")
			return
		}
		a.log.Error("follow create error", "err", err)
		errorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "User followed successfully"})
}

// DELETE /api/users/{id}/follow
func (a *api) handleUnfollow(w http.ResponseWriter, r *http.Request) {
	followedID := chi.URLParam(r, "id")

	var in struct {
		UserID string `json:"userId"`
	}
	if err := decodeJSON(r, &in); err != nil || in.UserID == "" {
		errorJSON(w, http.StatusBadRequest, "User ID is required")
		return
	}

	res := a.db.WithContext(r.Context()).
		Where("follower_id = ? AND followed_id = ?", in.UserID, followedID).
		Delete(&Follow{})
	if res.Error != nil {
		a.log.Error("unfollow error", "err", res.Error)
		errorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if res.RowsAffected == 0 {
		errorJSON(w, http.StatusNotFound, "Not following this user")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "User unfollowed successfully"})
}

// GET /api/users/{id}/followers
func (a *api) handleListFollowers(w http.ResponseWriter, r *http.Request) {
	a.listFollowUsers(w, r, "follows.follower_id", "follows.followed_id")
}

// GET /api/users/{id}/following
func (a *api) handleListFollowing(w http.ResponseWriter, r *http.Request) {
	a.listFollowUsers(w, r, "follows.followed_id", "follows.follower_id")
}

// listFollowUsers returns the users on the selectCol side of the follow
// edge where matchCol equals the path user.
func (a *api) listFollowUsers(w http.ResponseWriter, r *http.Request, selectCol, matchCol string) {
	userID := chi.URLParam(r, "id")
	if ok := a.userExists(w, r, userID); !ok {
		return
	}

	edge := func() *gorm.DB {
		return a.db.WithContext(r.Context()).Model(&User{}).
			Joins("JOIN follows ON "+selectCol+" = users.id").
			Where(matchCol+" = ?", userID)
	}

	var total int64
	if err := edge().Count(&total).Error; err != nil {
		a.log.Error("follow count error", "err", err)
		errorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	q := edge().Order("follows.created_at DESC")
	if page, size, ok := pageParams(r); ok {
		q = q.Offset((page - 1) * size).Limit(size)
	}

	var users []User
	if err := q.Find(&users).Error; err != nil {
		a.log.Error("follow list error", "err", err)
		errorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	out := make([]publicUser, 0, len(users))
	for _, u := range users {
		out = append(out, toPublicUser(u))
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": out, "total": total})
}

// userExists mirrors postExists for user rows.
func (a *api) userExists(w http.ResponseWriter, r *http.Request, userID string) bool {
	var u User
	err := a.db.WithContext(r.Context()).First(&u, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		errorJSON(w, http.StatusNotFound, "User not found")
		return false
	} else if err != nil {
		a.log.Error("user lookup error", "err", err)
		errorJSON(w, http.StatusInternalServerError, "Internal server error")
		return false
	}
	return true
}
