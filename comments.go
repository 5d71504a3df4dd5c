package main

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type commentDTO struct {
	ID           string     `json:"id"`
	Content      string     `json:"content"`
	ParentID     *string    `json:"parentId,omitempty"`
	CreatedAt    string     `json:"createdAt"`
	RepliesCount int64      `json:"repliesCount"`
	Author       publicUser `json:"author"`
}

// POST /api/posts/{id}/comments
func (a *api) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "id")

	var in struct {
		Content  string  `json:"content"`
		AuthorID string  `json:"authorId"`
		ParentID *string `json:"parentId"`
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
	if in.AuthorID == "" {
		errorJSON(w, http.StatusBadRequest, "Author ID is required")
		return
	}

	if ok := a.postExists(w, r, postID); !ok {
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

	if in.ParentID != nil {
		var count int64
		if err := a.db.WithContext(r.Context()).Model(&Comment{}).
			Where("id = ? AND post_id = ?", *in.ParentID, postID).
			Count(&count).Error; err != nil {
			a.log.Error("parent comment lookup error", "err", err)
			errorJSON(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		if count == 0 {
			errorJSON(w, http.StatusNotFound, "Comment not found")
			return
		}
	}

	comment := Comment{
		ID:       uuid.NewString(),
		PostID:   postID,
		AuthorID: in.AuthorID,
		ParentID: in.ParentID,
		Content:  in.Content,
	}
	if err := a.db.WithContext(r.Context()).Create(&comment).Error; err != nil {
		a.log.Error("comment create error", "err", err)
		errorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Comment created successfully",
		"comment": commentDTO{
			ID:        comment.ID,
			Content:   comment.Content,
			ParentID:  comment.ParentID,
			CreatedAt: comment.CreatedAt.UTC().Format(timeLayout),
			Author:    toPublicUser(author),
		},
	})
}

// GET /api/posts/{id}/comments
func (a *api) handleListComments(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "id")

	if ok := a.postExists(w, r, postID); !ok {
		return
	}

	// Top-level comments only; replies are reachable through repliesCount.
	topLevel := func() *gorm.DB {
		return a.db.WithContext(r.Context()).Model(&Comment{}).
			Where("post_id = ? AND parent_id IS NULL", postID)
	}

	var total int64
	if err := topLevel().Count(&total).Error; err != nil {
		a.log.Error("comment count error", "err", err)
		errorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	q := topLevel().Order("created_at DESC, id DESC")
	if page, size, ok := pageParams(r); ok {
		q = q.Offset((page - 1) * size).Limit(size)
	} else {
		q = q.Limit(20)
	}

	var comments []Comment
	if err := q.Find(&comments).Error; err != nil {
		a.log.Error("comment list error", "err", err)
		errorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	ids := make([]string, 0, len(comments))
	for _, c := range comments {
		ids = append(ids, c.AuthorID)
	}
	authors, err := a.usersByID(r, ids)
	if err != nil {
		a.log.Error("comment authors lookup error", "err", err)
		errorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	replies, err := a.replyCounts(r, comments)
	if err != nil {
		a.log.Error("reply count error", "err", err)
		errorJSON(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	out := make([]commentDTO, 0, len(comments))
	for _, c := range comments {
		author, ok := authors[c.AuthorID]
		if !ok {
			continue
		}
		out = append(out, commentDTO{
			ID:           c.ID,
			Content:      c.Content,
			CreatedAt:    c.CreatedAt.UTC().Format(timeLayout),
			RepliesCount: replies[c.ID],
			Author:       toPublicUser(author),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"comments": out, "total": total})
}

// replyCounts returns the number of direct replies per comment in one
// grouped query.
func (a *api) replyCounts(r *http.Request, comments []Comment) (map[string]int64, error) {
	out := make(map[string]int64, len(comments))
	if len(comments) == 0 {
		return out, nil
	}
	ids := make([]string, 0, len(comments))
	for _, c := range comments {
		ids = append(ids, c.ID)
	}
	var rows []struct {
		ParentID string
		N        int64
	}
	if err := a.db.WithContext(r.Context()).Model(&Comment{}).
		Select("parent_id, count(*) AS n").
		Where("parent_id IN ?", ids).
		Group("parent_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ParentID] = row.N
	}
	return out, nil
}
