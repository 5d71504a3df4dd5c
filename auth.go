package main

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"
)

// POST /api/auth/signup
func (a *api) handleSignup(w http.ResponseWriter, r *http.Request) {
	var in authCredentials
	if err := decodeJSON(r, &in); err != nil {
		errorJSON(w, http.StatusBadRequest, "Email, username, and password are required")
		return
	}
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	in.Username = strings.TrimSpace(in.Username)
	if in.Email == "" || in.Username == "" || in.Password == "" {
		errorJSON(w, http.StatusBadRequest, "Email, username, and password are required")
		return
	}

	status, body, err := a.auth.Signup(r.Context(), in)
	if err != nil {
		a.log.Error("signup backend error", "err", err)
		errorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeRaw(w, status, body)
}

// POST /api/auth/login
func (a *api) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in authCredentials
	if err := decodeJSON(r, &in); err != nil {
		errorJSON(w, http.StatusBadRequest, "Email and password are required")
		return
	}
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	if in.Email == "" || in.Password == "" {
		errorJSON(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	status, body, err := a.auth.Login(r.Context(), in)
	if err != nil {
		a.log.Error("login backend error", "err", err)
		errorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeRaw(w, status, body)
}

// GET /api/auth/session
func (a *api) handleSession(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		errorJSON(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	u, err := a.sessionUser(r, token)
	if err != nil {
		if errors.Is(err, errSessionInvalid) {
			errorJSON(w, http.StatusUnauthorized, "Invalid or expired session")
			return
		}
		a.log.Error("session lookup error", "err", err)
		errorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": u})
}

// POST /api/auth/logout
//
// Deletes the session row whether or not it has expired; an expired token
// still logs out cleanly.
func (a *api) handleLogout(w http.ResponseWriter, r *http.Request) {
	var in struct {
		SessionToken string `json:"sessionToken"`
	}
	if err := decodeJSON(r, &in); err != nil {
		errorJSON(w, http.StatusBadRequest, "Session token is required")
		return
	}
	if in.SessionToken == "" {
		errorJSON(w, http.StatusBadRequest, "Session token is required")
		return
	}

	res := a.db.WithContext(r.Context()).Where("session_token = ?", in.SessionToken).Delete(&Session{})
	if res.Error != nil {
		a.log.Error("logout error", "err", res.Error)
		errorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if res.RowsAffected == 0 {
		errorJSON(w, http.StatusNotFound, "Session not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

var errSessionInvalid = errors.New("session invalid")

// sessionUser resolves an opaque bearer token to its user. Expired sessions
// and sessions whose user vanished count as invalid, not as errors.
func (a *api) sessionUser(r *http.Request, token string) (*User, error) {
	var sess Session
	err := a.db.WithContext(r.Context()).Where("session_token = ?", token).First(&sess).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errSessionInvalid
	} else if err != nil {
		return nil, err
	}
	if time.Now().After(sess.Expires) {
		return nil, errSessionInvalid
	}

	var u User
	err = a.db.WithContext(r.Context()).First(&u, "id = ?", sess.UserID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errSessionInvalid
	} else if err != nil {
		return nil, err
	}
	return &u, nil
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
