package main

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	defaultNotifPageSize = 20
	maxNotifPageSize     = 100
)

// GET /api/notifications?userId=&unread=&page=&pageSize=
func (a *api) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	userID := strings.TrimSpace(q.Get("userId"))
	if userID == "" {
		errorJSON(w, http.StatusBadRequest, "User ID is required")
		return
	}

	page := 1
	if v, err := strconv.Atoi(q.Get("page")); err == nil && v > 1 {
		page = v
	}
	size := defaultNotifPageSize
	if v, err := strconv.Atoi(q.Get("pageSize")); err == nil && v >= 1 {
		size = v
	}
	if size > maxNotifPageSize {
		size = maxNotifPageSize
	}
	unread := q.Get("unread") == "1" || strings.EqualFold(q.Get("unread"), "true")

	filtered := func() *gorm.DB {
		tx := a.db.WithContext(r.Context()).Model(&Notification{}).Where("user_id = ?", userID)
		if unread {
			tx = tx.Where("read_at IS NULL")
		}
		return tx
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		a.log.Error("notifications count error", "err", err)
		errorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	var notifs []Notification
	if err := filtered().
		Order("created_at DESC, id DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&notifs).Error; err != nil {
		a.log.Error("notifications list error", "err", err)
		errorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"notifications": notifs,
		"total":         total,
	})
}

// POST /api/notifications
//
// Internal trigger endpoint: other services (or the app itself) record a
// notification for a user.
func (a *api) handleCreateNotification(w http.ResponseWriter, r *http.Request) {
	var in Notification
	if err := decodeJSON(r, &in); err != nil {
		errorJSON(w, http.StatusBadRequest, "Missing required fields")
		return
	}
	if in.UserID == "" || in.Type == "" || in.Title == "" || in.Message == "" {
		errorJSON(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	var count int64
	if err := a.db.WithContext(r.Context()).Model(&User{}).Where("id = ?", in.UserID).Count(&count).Error; err != nil {
		a.log.Error("notification user lookup error", "err", err)
		errorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if count == 0 {
		errorJSON(w, http.StatusNotFound, "User not found")
		return
	}

	notif := Notification{
		ID:       uuid.NewString(),
		UserID:   in.UserID,
		Type:     in.Type,
		Priority: in.Priority,
		Title:    in.Title,
		Message:  in.Message,
		Data:     in.Data,
		Channel:  in.Channel,
	}
	if notif.Priority == "" {
		notif.Priority = "normal"
	}
	if notif.Channel == "" {
		notif.Channel = "in_app"
	}

	if err := a.db.WithContext(r.Context()).Create(&notif).Error; err != nil {
		a.log.Error("notification create error", "err", err)
		errorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"notification": notif})
}
