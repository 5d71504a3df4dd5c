package main

import (
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL    string
	JWTSecret      string
	AuthBackendURL string // empty: sessions and credentials live in the local DB
	CORSOrigin     string
	Port           string
	DemoMode       bool
}

func loadConfig() Config {
	return Config{
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		AuthBackendURL: strings.TrimRight(os.Getenv("AUTH_BACKEND_URL"), "/"),
		CORSOrigin:     getenv("CORS_ORIGIN", "http://localhost:3000"),
		Port:           getenv("PORT", "8080"),
		DemoMode:       strings.ToLower(os.Getenv("DEMO_MODE")) == "true",
	}
}

// loadDotenv picks up a .env from the working directory or a parent.
// Fine if none exists (prod sets real env).
func loadDotenv() {
	for _, p := range []string{".env", filepath.Join("..", ".env")} {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Overload(p)
			log.Println("[env] loaded", p)
			return
		}
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
