package main

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

/* ---------- Public JSON ---------- */

type postDTO struct {
	ID        string     `json:"id"`
	Content   string     `json:"content"`
	PostType  string     `json:"postType"`
	AuthorID  string     `json:"authorId,omitempty"`
	CreatedAt string     `json:"createdAt"`
	Author    publicUser `json:"author"`
}

func toPostDTO(p Post, author User, withAuthorID bool) postDTO {
	out := postDTO{
		ID:        p.ID,
		Content:   p.Content,
		PostType:  p.PostType,
		CreatedAt: p.CreatedAt.UTC().Format(timeLayout),
		Author:    toPublicUser(author),
	}
	if withAuthorID {
		out.AuthorID = p.AuthorID
	}
	return out
}

/* ---------- Handlers ---------- */

// POST /api/posts
func (a *api) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Content  string `json:"content"`
		PostType string `json:"postType"`
		AuthorID string `json:"authorId"`
	}
	if err := decodeJSON(r, &in); err != nil {
		errorJSON(w, http.StatusBadRequest, "Content is required")
		return
	}
	in.Content = strings.TrimSpace(in.Content)
	if in.Content == "" {
		errorJSON(w, http.StatusBadRequest, "Content is required")
		return
	}
	if !validPostTypes[in.PostType] {
		errorJSON(w, http.StatusBadRequest, "Invalid post type")
		return
	}
	if in.AuthorID == "" {
		errorJSON(w, http.StatusBadRequest, "Author ID is required")
		return
	}

	var author User
	err := a.db.WithContext(r.Context()).First(&author, "id = ?", in.AuthorID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		errorJSON(w, http.StatusNotFound, "User not found")
		return
	} else if err != nil {
		a.log.Error("author lookup error", "err", err)
		errorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	post := Post{
		ID:       uuid.NewString(),
		Content:  in.Content,
		PostType: in.PostType,
		AuthorID: in.AuthorID,
	}
	if err := a.db.WithContext(r.Context()).Create(&post).Error; err != nil {
		a.log.Error("post create error", "err", err)
		errorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Post created successfully",
		"post":    toPostDTO(post, author, true),
	})
}

// GET /api/posts/{id}
func (a *api) handleGetPost(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "id")

	var p Post
	err := a.db.WithContext(r.Context()).First(&p, "id = ?", postID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		errorJSON(w, http.StatusNotFound, "Post not found")
		return
	} else if err != nil {
		a.log.Error("post lookup error", "err", err)
		errorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	var author User
	err = a.db.WithContext(r.Context()).First(&author, "id = ?", p.AuthorID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Orphaned posts stay invisible, same as in listings.
		errorJSON(w, http.StatusNotFound, "Post not found")
		return
	} else if err != nil {
		a.log.Error("author lookup error", "err", err)
		errorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"post": toPostDTO(p, author, false)})
}

// GET /api/posts
func (a *api) handleListPosts(w http.ResponseWriter, r *http.Request) {
	a.listPosts(w, r, "")
}

// GET /api/users/{id}/posts
func (a *api) handleUserPosts(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	var u User
	err := a.db.WithContext(r.Context()).First(&u, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		errorJSON(w, http.StatusNotFound, "User not found")
		return
	} else if err != nil {
		a.log.Error("user lookup error", "err", err)
		errorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	a.listPosts(w, r, userID)
}

func (a *api) listPosts(w http.ResponseWriter, r *http.Request, authorID string) {
	q := a.db.WithContext(r.Context()).Model(&Post{}).Order("created_at DESC, id DESC")
	if authorID != "" {
		q = q.Where("author_id = ?", authorID)
	}
	if page, size, ok := pageParams(r); ok {
		q = q.Offset((page - 1) * size).Limit(size)
	}

	var posts []Post
	if err := q.Find(&posts).Error; err != nil {
		a.log.Error("posts list error", "err", err)
		errorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	authors, err := a.usersByID(r, authorIDs(posts))
	if err != nil {
		a.log.Error("authors lookup error", "err", err)
		errorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	out := make([]postDTO, 0, len(posts))
	for _, p := range posts {
		author, ok := authors[p.AuthorID]
		if !ok {
			// Author row is gone; do not emit a post with an empty identity.
			continue
		}
		out = append(out, toPostDTO(p, author, false))
	}
	writeJSON(w, http.StatusOK, map[string]any{"posts": out})
}

/* ---------- helpers ---------- */

const timeLayout = "2006-01-02T15:04:05.000Z07:00"

func authorIDs(posts []Post) []string {
	seen := make(map[string]bool, len(posts))
	ids := make([]string, 0, len(posts))
	for _, p := range posts {
		if !seen[p.AuthorID] {
			seen[p.AuthorID] = true
			ids = append(ids, p.AuthorID)
		}
	}
	return ids
}

func (a *api) usersByID(r *http.Request, ids []string) (map[string]User, error) {
	out := make(map[string]User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var users []User
	if err := a.db.WithContext(r.Context()).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

// pageParams reads optional page/pageSize query values. Absent or invalid
// values mean "no paging".
func pageParams(r *http.Request) (page, size int, ok bool) {
	q := r.URL.Query()
	sizeStr := strings.TrimSpace(q.Get("pageSize"))
	if sizeStr == "" {
		return 0, 0, false
	}
	size, err := strconv.Atoi(sizeStr)
	if err != nil || size < 1 {
		return 0, 0, false
	}
	if size > 100 {
		size = 100
	}
	page = 1
	if p, err := strconv.Atoi(strings.TrimSpace(q.Get("page"))); err == nil && p > 1 {
		page = p
	}
	return page, size, true
}
