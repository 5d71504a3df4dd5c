package main

import (
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"
)

func main() {
	loadDotenv()
	cfg := loadConfig()

	if cfg.DatabaseURL == "" {
		log.Fatal("[DB] DATABASE_URL is not set. Refusing to start.")
	}
	if cfg.JWTSecret == "" && cfg.AuthBackendURL == "" {
		log.Fatal("[auth] JWT_SECRET is not set. Refusing to start.")
	}

	logLevel := slog.LevelInfo
	if os.Getenv("DEBUG") == "true" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	db, err := openDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[DB] connect failed: %v", err)
	}
	log.Println("[DB] connected")

	if err := autoMigrate(db); err != nil {
		log.Fatalf("[DB] migrate failed: %v", err)
	}

	if cfg.DemoMode {
		if err := seedDemoData(db); err != nil {
			log.Printf("[demo] seed failed: %v", err)
		}
	}

	a := newAPI(db, cfg, logger)

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           a.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Println("API listening on", addr, "CORS_ORIGIN:", cfg.CORSOrigin)
	log.Fatal(srv.ListenAndServe())
}
