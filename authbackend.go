package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	sessionTTL     = 7 * 24 * time.Hour
	accessTokenTTL = 7 * 24 * time.Hour
)

type authCredentials struct {
	Email    string `json:"email"`
	Username string `json:"username,omitempty"`
	Password string `json:"password"`
}

// AuthBackend owns signup and login. Responses are relayed to the client
// verbatim, so both implementations return a status code plus a marshaled
// JSON body.
type AuthBackend interface {
	Signup(ctx context.Context, creds authCredentials) (int, []byte, error)
	Login(ctx context.Context, creds authCredentials) (int, []byte, error)
}

/* ---------- Local backend (default): users and sessions in our DB ---------- */

type localAuthBackend struct {
	db        *gorm.DB
	jwtSecret []byte
}

// authSuccess mirrors the delegated backend's response shape. The DB session
// is the session-of-truth; access_token is kept for client compatibility.
type authSuccess struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	AccessToken  string    `json:"access_token"`
	TokenType    string    `json:"token_type"`
	SessionToken string    `json:"sessionToken"`
	Expires      time.Time `json:"expires"`
}

func (b *localAuthBackend) Signup(ctx context.Context, creds authCredentials) (int, []byte, error) {
	var count int64
	if err := b.db.WithContext(ctx).Model(&User{}).Where("email = ?", creds.Email).Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count > 0 {
		return http.StatusConflict, mustJSON(map[string]string{"error": "Email already exists"}), nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.DefaultCost)
	if err != nil {
		return 0, nil, err
	}
	u := User{
		ID:       uuid.NewString(),
		Name:     creds.Username,
		Email:    creds.Email,
		Password: string(hash),
	}
	if err := b.db.WithContext(ctx).Create(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return http.StatusConflict, mustJSON(map[string]string{"error": "Email already exists"}), nil
		}
		return 0, nil, err
	}
	return b.issue(ctx, u, http.StatusCreated)
}

func (b *localAuthBackend) Login(ctx context.Context, creds authCredentials) (int, []byte, error) {
	var u User
	err := b.db.WithContext(ctx).Where("email = ?", creds.Email).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return http.StatusUnauthorized, mustJSON(map[string]string{"error": "Incorrect email or password"}), nil
	} else if err != nil {
		return 0, nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(creds.Password)) != nil {
		return http.StatusUnauthorized, mustJSON(map[string]string{"error": "Incorrect email or password"}), nil
	}
	return b.issue(ctx, u, http.StatusOK)
}

func (b *localAuthBackend) issue(ctx context.Context, u User, status int) (int, []byte, error) {
	sess, err := createSession(b.db.WithContext(ctx), u.ID)
	if err != nil {
		return 0, nil, err
	}
	tok, err := signToken(b.jwtSecret, u.ID, accessTokenTTL)
	if err != nil {
		return 0, nil, err
	}
	return status, mustJSON(authSuccess{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Name,
		AccessToken:  tok,
		TokenType:    "bearer",
		SessionToken: sess.SessionToken,
		Expires:      sess.Expires,
	}), nil
}

func createSession(db *gorm.DB, userID string) (*Session, error) {
	token, err := newToken()
	if err != nil {
		return nil, err
	}
	sess := Session{
		ID:           uuid.NewString(),
		SessionToken: token,
		UserID:       userID,
		Expires:      time.Now().UTC().Add(sessionTTL),
	}
	if err := db.Create(&sess).Error; err != nil {
		return nil, err
	}
	return &sess, nil
}

func mustJSON(v any) []byte {
	b, _ := json.Marshal(v)
	return b
}

/* ---------- HTTP backend: forward to an external auth service ---------- */

type httpAuthBackend struct {
	baseURL string
	client  *http.Client
}

func newHTTPAuthBackend(baseURL string) *httpAuthBackend {
	return &httpAuthBackend{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (b *httpAuthBackend) Signup(ctx context.Context, creds authCredentials) (int, []byte, error) {
	return b.forward(ctx, "/api/v1/auth/signup", creds)
}

func (b *httpAuthBackend) Login(ctx context.Context, creds authCredentials) (int, []byte, error) {
	return b.forward(ctx, "/api/v1/auth/login", creds)
}

func (b *httpAuthBackend) forward(ctx context.Context, path string, creds authCredentials) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+path, bytes.NewReader(mustJSON(creds)))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, body, nil
}
