package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestAPI(t *testing.T) *api {
	t.Helper()

	// Named in-memory database so gorm's pooled connections share state.
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, autoMigrate(db))

	cfg := Config{JWTSecret: "test-secret", CORSOrigin: "http://localhost:3000", Port: "0"}
	discard := slog.New(slog.NewTextHandler(io.Discard, nil))
	return newAPI(db, cfg, discard)
}

// doJSON runs one request through the full router and decodes the JSON body.
func doJSON(t *testing.T, h http.Handler, method, path string, body any, headers map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), "body: %s", rec.Body.String())
	}
	return rec, out
}

func mustCreateUser(t *testing.T, a *api, name, email string) User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	require.NoError(t, err)
	u := User{
		ID:       uuid.NewString(),
		Name:     name,
		Email:    email,
		Password: string(hash),
	}
	require.NoError(t, a.db.Create(&u).Error)
	return u
}

func mustCreatePost(t *testing.T, a *api, authorID, content, postType string, age time.Duration) Post {
	t.Helper()
	p := Post{
		ID:        uuid.NewString(),
		Content:   content,
		PostType:  postType,
		AuthorID:  authorID,
		CreatedAt: time.Now().UTC().Add(-age),
	}
	require.NoError(t, a.db.Create(&p).Error)
	return p
}

func mustCreateSession(t *testing.T, a *api, userID string, expires time.Time) Session {
	t.Helper()
	token, err := newToken()
	require.NoError(t, err)
	s := Session{
		ID:           uuid.NewString(),
		SessionToken: token,
		UserID:       userID,
		Expires:      expires,
	}
	require.NoError(t, a.db.Create(&s).Error)
	return s
}
