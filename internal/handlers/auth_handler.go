package handlers

import (
	"net/http"

	"choreboard/internal/auth"
	"choreboard/internal/utils"
)

// AuthHandler exposes the identity-provider operations the application
// consumes. Credential verification itself stays with the provider;
// sign-in happens client-side against it and this API only ever sees ID
// tokens.
type AuthHandler struct {
	provider auth.Provider
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(provider auth.Provider) *AuthHandler {
	return &AuthHandler{provider: provider}
}

type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

// Register creates a new account with the identity provider
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := utils.ValidateEmail(req.Email); err != nil {
		respondServiceError(w, err)
		return
	}
	if err := utils.ValidatePassword(req.Password); err != nil {
		respondServiceError(w, err)
		return
	}

	ident, err := h.provider.CreateUser(r.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, ident)
}

// Me returns the authenticated caller's identity
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, IdentityFromContext(r.Context()))
}

// SignOut revokes the caller's refresh tokens
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	ident := IdentityFromContext(r.Context())
	if err := h.provider.SignOut(r.Context(), ident.UID); err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
