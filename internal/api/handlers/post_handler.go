package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lrivas/postly-be/internal/auth"
	"github.com/lrivas/postly-be/internal/authz"
	"github.com/lrivas/postly-be/internal/services"
	"github.com/rs/zerolog/log"
)

// PostHandler handles the post endpoints. The router gates roles; this
// handler additionally enforces ownership on edit and delete.
type PostHandler struct {
	service services.PostServiceProvider
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(service services.PostServiceProvider) *PostHandler {
	return &PostHandler{service: service}
}

// PostPayload defines the structure for post create and update requests.
type PostPayload struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	TagNames []string `json:"tagNames"`
}

// List handles paginated listing of non-deleted posts.
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	offset, limit := pagination(r, 100, 500)

	posts, err := h.service.ListPosts(offset, limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list posts")
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

// Create handles post creation. Ownership is forced to the caller; the
// payload cannot create posts on someone else's behalf.
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.CallerFromContext(r.Context())
	if !ok {
		http.Error(w, "Could not retrieve user from token", http.StatusInternalServerError)
		return
	}

	var payload PostPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	post, err := h.service.CreatePost(payload.Title, payload.Content, caller.ID, payload.TagNames)
	if err != nil {
		log.Error().Err(err).Str("user_id", caller.ID).Msg("Failed to create post")
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

// Get handles retrieving a single non-deleted post with its tags.
func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	post, err := h.service.GetPostByID(id)
	if err != nil {
		log.Warn().Err(err).Str("post_id", id).Msg("Failed to get post")
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// Update overwrites title and content and appends new tags. Only the
// post's owner may update it, on top of the role gate.
func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.CallerFromContext(r.Context())
	if !ok {
		http.Error(w, "Could not retrieve user from token", http.StatusInternalServerError)
		return
	}

	id := chi.URLParam(r, "id")
	var payload PostPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	post, err := h.service.GetPostByID(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !authz.CanModifyPost(caller, post) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	updated, err := h.service.UpdatePost(id, payload.Title, payload.Content, payload.TagNames)
	if err != nil {
		log.Error().Err(err).Str("post_id", id).Msg("Failed to update post")
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Delete soft-deletes a post, owner-gated like Update. A second delete
// of the same post is a 404: the flag was already set.
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.CallerFromContext(r.Context())
	if !ok {
		http.Error(w, "Could not retrieve user from token", http.StatusInternalServerError)
		return
	}

	id := chi.URLParam(r, "id")
	post, err := h.service.GetPostByID(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !authz.CanModifyPost(caller, post) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	deleted, err := h.service.DeletePost(id)
	if err != nil {
		log.Error().Err(err).Str("post_id", id).Msg("Failed to delete post")
		writeServiceError(w, err)
		return
	}
	if !deleted {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Filter handles token search across title, content and tag names of
// non-deleted posts.
func (h *PostHandler) Filter(w http.ResponseWriter, r *http.Request) {
	offset, limit := pagination(r, 10, 100)
	query := r.URL.Query().Get("search")

	result, err := h.service.SearchPosts(query, offset, limit)
	if err != nil {
		log.Error().Err(err).Str("query", query).Msg("Failed to filter posts")
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ListTags returns every known tag.
func (h *PostHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.service.ListTags()
	if err != nil {
		log.Error().Err(err).Msg("Failed to list tags")
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tags)
}
