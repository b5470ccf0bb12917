package handlers

import (
	"errors"
	"log"
	"net/http"

	"choreboard/internal/auth"
	"choreboard/internal/service"
	"choreboard/internal/utils"
)

// errorResponse is the JSON error body rendered to clients
type errorResponse struct {
	Error string `json:"error"`
}

// respondWithError logs the cause and renders a JSON error body
func respondWithError(w http.ResponseWriter, status int, userMsg string, err error) {
	if err != nil {
		log.Printf("%s: %v", userMsg, err)
	}
	writeJSON(w, status, errorResponse{Error: userMsg})
}

// respondServiceError maps a taxonomy error to its HTTP status and
// user-visible message. Unknown errors become opaque 500s.
func respondServiceError(w http.ResponseWriter, err error) {
	var validationErr utils.ValidationError
	if errors.As(err, &validationErr) {
		respondWithError(w, http.StatusBadRequest, validationErr.Error(), nil)
		return
	}

	var authErr *auth.Error
	if errors.As(err, &authErr) {
		status := http.StatusBadRequest
		if authErr.Code == auth.CodeInvalidToken || authErr.Code == auth.CodeInvalidCredentials {
			status = http.StatusUnauthorized
		}
		respondWithError(w, status, authErr.Message(), err)
		return
	}

	switch {
	case errors.Is(err, service.ErrDuplicateInvite),
		errors.Is(err, service.ErrAlreadyMember),
		errors.Is(err, service.ErrInviteNotPending):
		respondWithError(w, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, service.ErrInvalidInvite),
		errors.Is(err, service.ErrChoreNotFound),
		errors.Is(err, service.ErrMemberNotFound):
		respondWithError(w, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, service.ErrEmailMismatch):
		respondWithError(w, http.StatusForbidden, err.Error(), nil)
	case errors.Is(err, service.ErrInvalidTransition):
		respondWithError(w, http.StatusConflict, err.Error(), nil)
	default:
		respondWithError(w, http.StatusInternalServerError, "Internal server error", err)
	}
}
