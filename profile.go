package main

import (
	"errors"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// GET /api/users/profile?userId=
func (a *api) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("userId"))
	if userID == "" {
		errorJSON(w, http.StatusBadRequest, "User ID is required")
		return
	}

	var u User
	err := a.db.WithContext(r.Context()).First(&u, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		errorJSON(w, http.StatusNotFound, "User not found")
		return
	} else if err != nil {
		a.log.Error("profile lookup error", "err", err)
		errorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": u})
}

// profileUpdateReq uses pointers so an omitted field stays untouched while
// an explicit empty string clears it.
type profileUpdateReq struct {
	UserID     string  `json:"userId"`
	Name       *string `json:"name"`
	Email      *string `json:"email"`
	Image      *string `json:"image"`
	Location   *string `json:"location"`
	About      *string `json:"about"`
	Birthday   *string `json:"birthday"`
	Gender     *string `json:"gender"`
	Website    *string `json:"website"`
	Interests  *string `json:"interests"`
	Occupation *string `json:"occupation"`
}

// PUT /api/users/profile
func (a *api) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var in profileUpdateReq
	if err := decodeJSON(r, &in); err != nil {
		errorJSON(w, http.StatusBadRequest, "User ID is required")
		return
	}
	if in.UserID == "" {
		errorJSON(w, http.StatusBadRequest, "User ID is required")
		return
	}

	var u User
	err := a.db.WithContext(r.Context()).First(&u, "id = ?", in.UserID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		errorJSON(w, http.StatusNotFound, "User not found")
		return
	} else if err != nil {
		a.log.Error("profile lookup error", "err", err)
		errorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if n := utf8.RuneCountInString(name); n < 1 || n > 100 {
			errorJSON(w, http.StatusBadRequest, "Name must be between 1 and 100 characters")
			return
		}
		u.Name = name
	}

	if in.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*in.Email))
		if !emailPattern.MatchString(email) {
			errorJSON(w, http.StatusBadRequest, "Invalid email format")
			return
		}
		if email != u.Email {
			var count int64
			if err := a.db.WithContext(r.Context()).Model(&User{}).
				Where("email = ? AND id <> ?", email, u.ID).
				Count(&count).Error; err != nil {
				a.log.Error("email check error", "err", err)
				errorJSON(w, http.StatusInternalServerError, "Internal server error")
				return
			}
			if count > 0 {
				errorJSON(w, http.StatusConflict, "Email is already taken")
				return
			}
		}
		u.Email = email
	}

	if in.Birthday != nil {
		if *in.Birthday == "" {
			u.Birthday = nil
		} else {
			t, err := parseBirthday(*in.Birthday)
			if err != nil {
				errorJSON(w, http.StatusBadRequest, "Invalid birthday date")
				return
			}
			u.Birthday = &t
		}
	}

	if in.Gender != nil {
		g := strings.TrimSpace(*in.Gender)
		if g != "" && !validGenders[g] {
			errorJSON(w, http.StatusBadRequest, "Invalid gender value")
			return
		}
		u.Gender = g
	}

	if in.Website != nil {
		site := strings.TrimSpace(*in.Website)
		if site != "" && !validWebsite(site) {
			errorJSON(w, http.StatusBadRequest, "Invalid website URL")
			return
		}
		u.Website = site
	}

	if in.Image != nil {
		u.Image = strings.TrimSpace(*in.Image)
	}
	if in.Location != nil {
		u.Location = strings.TrimSpace(*in.Location)
	}
	if in.About != nil {
		u.About = *in.About
	}
	if in.Interests != nil {
		u.Interests = *in.Interests
	}
	if in.Occupation != nil {
		u.Occupation = strings.TrimSpace(*in.Occupation)
	}

	if err := a.db.WithContext(r.Context()).Save(&u).Error; err != nil {
		// Concurrent update can slip past the email pre-check; the unique
		// index still holds.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			errorJSON(w, http.StatusConflict, "Email is already taken")
			return
		}
		a.log.Error("profile update error", "err", err)
		errorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Profile updated successfully",
		"user":    u,
	})
}

func parseBirthday(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errors.New("unrecognized date")
}

func validWebsite(s string) bool {
	u, err := url.ParseRequestURI(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
