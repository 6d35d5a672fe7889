package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lrivas/postly-be/internal/models"
	"github.com/lrivas/postly-be/internal/services"
	"github.com/rs/zerolog/log"
)

// UserHandler handles the admin-only user directory endpoints. Role
// gating happens in the router; ownership never applies to users.
type UserHandler struct {
	service services.UserServiceProvider
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service services.UserServiceProvider) *UserHandler {
	return &UserHandler{service: service}
}

// UserUpdatePayload defines the structure for user update requests.
type UserUpdatePayload struct {
	Name   string      `json:"name"`
	Email  string      `json:"email"`
	Role   models.Role `json:"role"`
	Active bool        `json:"active"`
}

// List handles paginated listing of active users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	offset, limit := pagination(r, 100, 500)

	users, err := h.service.ListUsers(offset, limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list users")
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// Get handles retrieving a single active user by id.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	user, err := h.service.GetUserByID(id)
	if err != nil {
		log.Warn().Err(err).Str("user_id", id).Msg("Failed to get user")
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Update overwrites a user's profile fields, role and active flag.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var payload UserUpdatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if !payload.Role.Valid() {
		http.Error(w, "Unknown role", http.StatusBadRequest)
		return
	}

	user, err := h.service.UpdateUser(id, services.UserUpdate{
		Name:   payload.Name,
		Email:  payload.Email,
		Role:   payload.Role,
		Active: payload.Active,
	})
	if err != nil {
		log.Error().Err(err).Str("user_id", id).Msg("Failed to update user")
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Deactivate soft-removes an active user. 404 when no active user
// matches; the account row is never physically deleted.
func (h *UserHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ok, err := h.service.DeactivateUser(id)
	if err != nil {
		log.Error().Err(err).Str("user_id", id).Msg("Failed to deactivate user")
		writeServiceError(w, err)
		return
	}
	if !ok {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Activate restores a deactivated user. The lookup only considers
// inactive accounts; activating an already-active user is a 404.
func (h *UserHandler) Activate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ok, err := h.service.ActivateUser(id)
	if err != nil {
		log.Error().Err(err).Str("user_id", id).Msg("Failed to activate user")
		writeServiceError(w, err)
		return
	}
	if !ok {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Filter handles token search across name, email and role of every user,
// active or not.
func (h *UserHandler) Filter(w http.ResponseWriter, r *http.Request) {
	offset, limit := pagination(r, 10, 100)
	query := r.URL.Query().Get("search")

	result, err := h.service.SearchUsers(query, offset, limit)
	if err != nil {
		log.Error().Err(err).Str("query", query).Msg("Failed to filter users")
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
