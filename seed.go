package main

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// seedDemoData populates an empty database with a demo account and a few
// posts so a fresh environment has something to render. No-op when any
// user already exists.
func seedDemoData(db *gorm.DB) error {
	var count int64
	if err := db.Model(&User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("demo-password"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	demo := User{
		ID:       uuid.NewString(),
		Name:     "Demo User",
		Email:    "demo@grateful.local",
		Password: string(hash),
		About:    "Seeded demo account",
	}
	if err := db.Create(&demo).Error; err != nil {
		return err
	}

	seedPosts := []struct {
		content  string
		postType string
		age      time.Duration
	}{
		{"Grateful for a quiet morning and good coffee.", PostTypeDaily, 48 * time.Hour},
		{"Caught the sunset over the bay today.", PostTypePhoto, 24 * time.Hour},
		{"A stranger helped me carry groceries up the stairs.", PostTypeSpontaneous, 2 * time.Hour},
	}
	for _, p := range seedPosts {
		post := Post{
			ID:        uuid.NewString(),
			Content:   p.content,
			PostType:  p.postType,
			AuthorID:  demo.ID,
			CreatedAt: time.Now().UTC().Add(-p.age),
		}
		if err := db.Create(&post).Error; err != nil {
			return err
		}
	}
	return nil
}
