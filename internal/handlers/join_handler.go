package handlers

import (
	"net/http"

	"choreboard/internal/service"
)

// JoinHandler serves the join-link surface: a route parameterized by the
// invite token, used to resolve and accept an invite
type JoinHandler struct {
	familyService *service.FamilyService
}

// NewJoinHandler creates a new join handler
func NewJoinHandler(familyService *service.FamilyService) *JoinHandler {
	return &JoinHandler{familyService: familyService}
}

// Resolve looks up the pending invite behind a join link for the signed-in
// caller
func (h *JoinHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	ident := IdentityFromContext(r.Context())

	invite, err := h.familyService.ResolveInviteByToken(r.Context(), r.PathValue("token"), ident.Email)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, invite)
}

type acceptInviteRequest struct {
	DisplayName string `json:"displayName"`
	Avatar      string `json:"avatar"`
}

// Accept claims the invite for the signed-in caller and adds them to the
// family roster
func (h *JoinHandler) Accept(w http.ResponseWriter, r *http.Request) {
	ident := IdentityFromContext(r.Context())

	var req acceptInviteRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	member, err := h.familyService.AcceptInvite(r.Context(), r.PathValue("token"), ident, req.DisplayName, req.Avatar)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, member)
}
