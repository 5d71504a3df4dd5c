package main

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestGetProfile(t *testing.T) {
	a := newTestAPI(t)
	h := a.routes()
	u := mustCreateUser(t, a, "Alice", "alice@example.com")

	t.Run("missing id", func(t *testing.T) {
		rec, out := doJSON(t, h, http.MethodGet, "/api/users/profile", nil, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "User ID is required", out["error"])
	})

	t.Run("unknown user", func(t *testing.T) {
		rec, out := doJSON(t, h, http.MethodGet, "/api/users/profile?userId=missing", nil, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "User not found", out["error"])
	})

	t.Run("returns profile without password", func(t *testing.T) {
		rec, out := doJSON(t, h, http.MethodGet, "/api/users/profile?userId="+u.ID, nil, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		user := out["user"].(map[string]any)
		assert.Equal(t, u.ID, user["id"])
		assert.Equal(t, "Alice", user["name"])
		assert.Equal(t, "alice@example.com", user["email"])
		assert.NotEmpty(t, user["createdAt"])
		for _, field := range []string{"location", "about", "gender", "website", "interests", "occupation"} {
			assert.Contains(t, user, field)
		}
		_, hasPassword := user["password"]
		assert.False(t, hasPassword)
	})
}

func TestUpdateProfile_Validation(t *testing.T) {
	a := newTestAPI(t)
	h := a.routes()
	u := mustCreateUser(t, a, "Alice", "alice@example.com")

	cases := []struct {
		name    string
		body    map[string]any
		status  int
		message string
	}{
		{"missing user id", map[string]any{"name": "X"}, http.StatusBadRequest, "User ID is required"},
		{"unknown user", map[string]any{"userId": "missing", "name": "X"}, http.StatusNotFound, "User not found"},
		{"empty name", map[string]any{"userId": u.ID, "name": "  "}, http.StatusBadRequest, "Name must be between 1 and 100 characters"},
		{"name too long", map[string]any{"userId": u.ID, "name": strings.Repeat("x", 101)}, http.StatusBadRequest, "Name must be between 1 and 100 characters"},
		{"bad email", map[string]any{"userId": u.ID, "email": "invalid-email-format"}, http.StatusBadRequest, "Invalid email format"},
		{"bad birthday", map[string]any{"userId": u.ID, "birthday": "not-a-date"}, http.StatusBadRequest, "Invalid birthday date"},
		{"bad gender", map[string]any{"userId": u.ID, "gender": "unknown"}, http.StatusBadRequest, "Invalid gender value"},
		{"bad website", map[string]any{"userId": u.ID, "website": "not a url"}, http.StatusBadRequest, "Invalid website URL"},
		{"ftp website", map[string]any{"userId": u.ID, "website": "ftp://example.com"}, http.StatusBadRequest, "Invalid website URL"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, out := doJSON(t, h, http.MethodPut, "/api/users/profile", tc.body, nil)
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.message, out["error"])
		})
	}
}

func TestUpdateProfile_EmailUniqueness(t *testing.T) {
	a := newTestAPI(t)
	h := a.routes()
	mustCreateUser(t, a, "A", "a@x.com")
	b := mustCreateUser(t, a, "B", "b@x.com")

	t.Run("taking another user's email conflicts", func(t *testing.T) {
		rec, out := doJSON(t, h, http.MethodPut, "/api/users/profile", map[string]any{
			"userId": b.ID,
			"email":  "a@x.com",
		}, nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "Email is already taken", out["error"])
	})

	t.Run("keeping own email succeeds", func(t *testing.T) {
		rec, out := doJSON(t, h, http.MethodPut, "/api/users/profile", map[string]any{
			"userId": b.ID,
			"email":  "b@x.com",
		}, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Profile updated successfully", out["message"])
	})
}

func TestUpdateProfile_Success(t *testing.T) {
	a := newTestAPI(t)
	h := a.routes()
	u := mustCreateUser(t, a, "Alice", "alice@example.com")

	rec, out := doJSON(t, h, http.MethodPut, "/api/users/profile", map[string]any{
		"userId":     u.ID,
		"name":       "Alice Cooper",
		"email":      "Alice.Cooper@Example.com",
		"image":      "https://example.com/avatar.jpg",
		"location":   "Tel Aviv",
		"about":      "grateful every day",
		"birthday":   "1990-04-01",
		"gender":     "female",
		"website":    "https://alice.example.com",
		"interests":  "hiking, coffee",
		"occupation": "engineer",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Profile updated successfully", out["message"])

	user := out["user"].(map[string]any)
	assert.Equal(t, "Alice Cooper", user["name"])
	assert.Equal(t, "alice.cooper@example.com", user["email"])
	assert.Equal(t, "Tel Aviv", user["location"])
	assert.Equal(t, "female", user["gender"])
	assert.Equal(t, "https://alice.example.com", user["website"])

	// Persisted, not just echoed.
	var reread User
	require.NoError(t, a.db.First(&reread, "id = ?", u.ID).Error)
	assert.Equal(t, "Alice Cooper", reread.Name)
	require.NotNil(t, reread.Birthday)
	assert.Equal(t, "1990-04-01", reread.Birthday.Format("2006-01-02"))
}

func TestUpdateProfile_OmittedFieldsUntouched(t *testing.T) {
	a := newTestAPI(t)
	h := a.routes()
	u := mustCreateUser(t, a, "Alice", "alice@example.com")
	require.NoError(t, a.db.Model(&u).Update("location", "Haifa").Error)

	rec, _ := doJSON(t, h, http.MethodPut, "/api/users/profile", map[string]any{
		"userId": u.ID,
		"about":  "updated about",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var reread User
	require.NoError(t, a.db.First(&reread, "id = ?", u.ID).Error)
	assert.Equal(t, "Haifa", reread.Location)
	assert.Equal(t, "updated about", reread.About)
	assert.Equal(t, "Alice", reread.Name)
}

func TestUpdateProfile_NameBoundCountsRunes(t *testing.T) {
	a := newTestAPI(t)
	h := a.routes()
	u := mustCreateUser(t, a, "Alice", "alice@example.com")

	// 100 runes of multibyte text is well over 100 bytes but still valid.
	name := strings.Repeat("é", 100)
	rec, out := doJSON(t, h, http.MethodPut, "/api/users/profile", map[string]any{"userId": u.ID, "name": name}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, name, out["user"].(map[string]any)["name"])

	rec, out = doJSON(t, h, http.MethodPut, "/api/users/profile", map[string]any{"userId": u.ID, "name": strings.Repeat("é", 101)}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Name must be between 1 and 100 characters", out["error"])
}

func TestUserEmailUniqueIndexBacksThePreCheck(t *testing.T) {
	a := newTestAPI(t)
	mustCreateUser(t, a, "Alice", "alice@example.com")

	// A direct duplicate insert (the losing side of a race) is rejected by
	// the storage layer and surfaces as the translated sentinel.
	dup := User{ID: "u2", Name: "Imposter", Email: "alice@example.com", Password: "x"}
	err := a.db.Create(&dup).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}
