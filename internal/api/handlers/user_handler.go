package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/userdir-be/internal/models"
	"github.com/isdelr/userdir-be/internal/services"
	"github.com/rs/zerolog/log"
)

// EventPublisher receives user change events.
type EventPublisher interface {
	Publish(event models.UserEvent)
}

// UserHandler handles HTTP requests for the user directory.
type UserHandler struct {
	service services.UserServiceProvider
	events  EventPublisher
}

// NewUserHandler creates a new UserHandler. events may be nil.
func NewUserHandler(service services.UserServiceProvider, events EventPublisher) *UserHandler {
	return &UserHandler{service: service, events: events}
}

// Create handles POST /api/user.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload models.NewUserFields
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.service.CreateUser(r.Context(), payload)
	if err != nil {
		log.Warn().Err(err).Str("account_number", payload.AccountNumber).Msg("Failed to create user")
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.publish(models.EventUserCreated, user)
	writeJSON(w, http.StatusCreated, user)
}

// GetByAccountNumber handles GET /api/user/account/{accountNumber}.
// Unknown account numbers yield 200 with an empty object.
func (h *UserHandler) GetByAccountNumber(w http.ResponseWriter, r *http.Request) {
	accountNumber := chi.URLParam(r, "accountNumber")
	user, err := h.service.GetUserByAccountNumber(r.Context(), accountNumber)
	if err != nil {
		log.Error().Err(err).Str("account_number", accountNumber).Msg("Failed to get user by account number")
		writeError(w, http.StatusInternalServerError, "Error fetching user")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// GetByIdentityNumber handles GET /api/user/identity/{identityNumber}.
func (h *UserHandler) GetByIdentityNumber(w http.ResponseWriter, r *http.Request) {
	identityNumber := chi.URLParam(r, "identityNumber")
	user, err := h.service.GetUserByIdentityNumber(r.Context(), identityNumber)
	if err != nil {
		log.Error().Err(err).Str("identity_number", identityNumber).Msg("Failed to get user by identity number")
		writeError(w, http.StatusInternalServerError, "Error fetching user")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Update handles PUT /api/user/{id} with a partial user body.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var patch models.UserPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.service.UpdateUser(r.Context(), id, patch)
	if err != nil {
		if errors.Is(err, models.ErrValidation) {
			log.Warn().Err(err).Str("user_id", id).Msg("Rejected user update")
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Error().Err(err).Str("user_id", id).Msg("Failed to update user")
		writeError(w, http.StatusInternalServerError, "Error updating user")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	h.publish(models.EventUserUpdated, user)
	writeJSON(w, http.StatusOK, user)
}

// Delete handles DELETE /api/user/{id}.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	user, err := h.service.DeleteUser(r.Context(), id)
	if err != nil {
		log.Error().Err(err).Str("user_id", id).Msg("Failed to delete user")
		writeError(w, http.StatusInternalServerError, "Error deleting user")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	h.publish(models.EventUserDeleted, user)
	writeJSON(w, http.StatusOK, map[string]string{"message": "User deleted successfully"})
}

func (h *UserHandler) publish(eventType string, user *models.User) {
	if h.events != nil {
		h.events.Publish(models.NewUserEvent(eventType, user))
	}
}
