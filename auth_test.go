package main

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignup_MissingFields(t *testing.T) {
	a := newTestAPI(t)
	h := a.routes()

	for _, body := range []map[string]string{
		{},
		{"email": "a@x.com", "password": "pw"},
		{"email": "a@x.com", "username": "a"},
		{"username": "a", "password": "pw"},
	} {
		rec, out := doJSON(t, h, http.MethodPost, "/api/auth/signup", body, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Email, username, and password are required", out["error"])
	}
}

func TestSignup_CreatesUserAndSession(t *testing.T) {
	a := newTestAPI(t)
	h := a.routes()

	rec, out := doJSON(t, h, http.MethodPost, "/api/auth/signup", map[string]string{
		"email":    "Alice@Example.com",
		"username": "alice",
		"password": "secret123",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	assert.Equal(t, "alice@example.com", out["email"]) // normalized
	assert.Equal(t, "alice", out["username"])
	assert.Equal(t, "bearer", out["token_type"])
	assert.NotEmpty(t, out["id"])
	assert.NotEmpty(t, out["sessionToken"])

	// The access token is a signed JWT carrying the user id.
	claims, err := parseToken([]byte(a.cfg.JWTSecret), out["access_token"].(string))
	require.NoError(t, err)
	assert.Equal(t, out["id"], claims.UserID)

	// A session row backs the opaque token.
	var sess Session
	require.NoError(t, a.db.Where("session_token = ?", out["sessionToken"]).First(&sess).Error)
	assert.Equal(t, out["id"], sess.UserID)
	assert.True(t, sess.Expires.After(time.Now()))
}

func TestSignup_DuplicateEmail(t *testing.T) {
	a := newTestAPI(t)
	h := a.routes()
	mustCreateUser(t, a, "Alice", "alice@example.com")

	rec, out := doJSON(t, h, http.MethodPost, "/api/auth/signup", map[string]string{
		"email":    "alice@example.com",
		"username": "alice2",
		"password": "secret123",
	}, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Email already exists", out["error"])
}

func TestLogin(t *testing.T) {
	a := newTestAPI(t)
	h := a.routes()

	_, signup := doJSON(t, h, http.MethodPost, "/api/auth/signup", map[string]string{
		"email":    "bob@example.com",
		"username": "bob",
		"password": "hunter22",
	}, nil)

	t.Run("wrong password", func(t *testing.T) {
		rec, out := doJSON(t, h, http.MethodPost, "/api/auth/login", map[string]string{
			"email":    "bob@example.com",
			"password": "wrong",
		}, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Incorrect email or password", out["error"])
	})

	t.Run("unknown email", func(t *testing.T) {
		rec, out := doJSON(t, h, http.MethodPost, "/api/auth/login", map[string]string{
			"email":    "nobody@example.com",
			"password": "hunter22",
		}, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Incorrect email or password", out["error"])
	})

	t.Run("missing fields", func(t *testing.T) {
		rec, out := doJSON(t, h, http.MethodPost, "/api/auth/login", map[string]string{
			"email": "bob@example.com",
		}, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Email and password are required", out["error"])
	})

	t.Run("success issues a usable session", func(t *testing.T) {
		rec, out := doJSON(t, h, http.MethodPost, "/api/auth/login", map[string]string{
			"email":    "bob@example.com",
			"password": "hunter22",
		}, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, signup["id"], out["id"])

		rec2, out2 := doJSON(t, h, http.MethodGet, "/api/auth/session", nil, map[string]string{
			"Authorization": "Bearer " + out["sessionToken"].(string),
		})
		require.Equal(t, http.StatusOK, rec2.Code)
		user := out2["user"].(map[string]any)
		assert.Equal(t, signup["id"], user["id"])
		assert.Equal(t, "bob", user["name"])
		_, hasPassword := user["password"]
		assert.False(t, hasPassword, "password must never be serialized")
	})
}

func TestSession_Unauthenticated(t *testing.T) {
	a := newTestAPI(t)
	h := a.routes()

	t.Run("no header", func(t *testing.T) {
		rec, out := doJSON(t, h, http.MethodGet, "/api/auth/session", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Not authenticated", out["error"])
	})

	t.Run("malformed header", func(t *testing.T) {
		rec, _ := doJSON(t, h, http.MethodGet, "/api/auth/session", nil, map[string]string{
			"Authorization": "Basic abc",
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unknown token", func(t *testing.T) {
		rec, out := doJSON(t, h, http.MethodGet, "/api/auth/session", nil, map[string]string{
			"Authorization": "Bearer deadbeef",
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Invalid or expired session", out["error"])
	})

	t.Run("expired token", func(t *testing.T) {
		u := mustCreateUser(t, a, "Carol", "carol@example.com")
		sess := mustCreateSession(t, a, u.ID, time.Now().Add(-time.Hour))

		rec, out := doJSON(t, h, http.MethodGet, "/api/auth/session", nil, map[string]string{
			"Authorization": "Bearer " + sess.SessionToken,
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Invalid or expired session", out["error"])
	})
}

func TestLogout(t *testing.T) {
	a := newTestAPI(t)
	h := a.routes()

	t.Run("missing token", func(t *testing.T) {
		rec, out := doJSON(t, h, http.MethodPost, "/api/auth/logout", map[string]string{}, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Session token is required", out["error"])
	})

	t.Run("unknown token", func(t *testing.T) {
		rec, out := doJSON(t, h, http.MethodPost, "/api/auth/logout", map[string]string{
			"sessionToken": "non-existent-token",
		}, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Session not found", out["error"])
	})

	t.Run("deletes the session", func(t *testing.T) {
		u := mustCreateUser(t, a, "Dave", "dave@example.com")
		sess := mustCreateSession(t, a, u.ID, time.Now().Add(time.Hour))

		rec, out := doJSON(t, h, http.MethodPost, "/api/auth/logout", map[string]string{
			"sessionToken": sess.SessionToken,
		}, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Logged out successfully", out["message"])

		var count int64
		require.NoError(t, a.db.Model(&Session{}).Where("session_token = ?", sess.SessionToken).Count(&count).Error)
		assert.Zero(t, count)
	})

	t.Run("expired session still logs out", func(t *testing.T) {
		u := mustCreateUser(t, a, "Erin", "erin@example.com")
		sess := mustCreateSession(t, a, u.ID, time.Now().Add(-24*time.Hour))

		rec, out := doJSON(t, h, http.MethodPost, "/api/auth/logout", map[string]string{
			"sessionToken": sess.SessionToken,
		}, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Logged out successfully", out["message"])
	})
}
