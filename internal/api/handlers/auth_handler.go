package handlers

import (
	"net/http"

	"github.com/rs/zerolog/log"
)

// TokenGenerator issues access tokens.
type TokenGenerator interface {
	GenerateToken() (string, error)
}

// AuthHandler hands out bearer tokens.
type AuthHandler struct {
	tokens TokenGenerator
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(tokens TokenGenerator) *AuthHandler {
	return &AuthHandler{tokens: tokens}
}

// Token handles POST /api/auth/token.
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	token, err := h.tokens.GenerateToken()
	if err != nil {
		log.Error().Err(err).Msg("Failed to generate token")
		writeError(w, http.StatusInternalServerError, "Error generating token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}
