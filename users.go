package main

import (
	"net/http"
	"strings"
)

// GET /api/users/search?q=
func (a *api) handleSearchUsers(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		errorJSON(w, http.StatusBadRequest, "Search query is required")
		return
	}

	pattern := "%" + strings.ToLower(q) + "%"
	query := a.db.WithContext(r.Context()).Model(&User{}).
		Where("lower(name) LIKE ? OR lower(email) LIKE ?", pattern, pattern).
		Order("name ASC")
	if page, size, ok := pageParams(r); ok {
		query = query.Offset((page - 1) * size).Limit(size)
	} else {
		query = query.Limit(50)
	}

	var users []User
	if err := query.Find(&users).Error; err != nil {
		a.log.Error("user search error", "err", err)
		errorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	out := make([]publicUser, 0, len(users))
	for _, u := range users {
		out = append(out, toPublicUser(u))
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": out})
}
