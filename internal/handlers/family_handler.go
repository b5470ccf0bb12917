package handlers

import (
	"net/http"

	"choreboard/internal/models"
	"choreboard/internal/service"
)

// FamilyHandler handles roster and invite HTTP requests
type FamilyHandler struct {
	familyService *service.FamilyService
}

// NewFamilyHandler creates a new family handler
func NewFamilyHandler(familyService *service.FamilyService) *FamilyHandler {
	return &FamilyHandler{familyService: familyService}
}

// ListMembers returns the caller's family roster, creating the caller's own
// membership on first contact
func (h *FamilyHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	ident := IdentityFromContext(r.Context())

	self, err := h.familyService.EnsureMember(r.Context(), ident)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	members, err := h.familyService.ListMembers(r.Context(), self.FamilyID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"familyId": self.FamilyID,
		"members":  members,
	})
}

// RemoveMember deletes a roster entry. Destructive; the client confirms
// before calling.
func (h *FamilyHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	if err := h.familyService.RemoveMember(r.Context(), r.PathValue("id")); err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

type sendInviteRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// SendInvite issues an invite to join the caller's family
func (h *FamilyHandler) SendInvite(w http.ResponseWriter, r *http.Request) {
	ident := IdentityFromContext(r.Context())

	var req sendInviteRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	self, err := h.familyService.EnsureMember(r.Context(), ident)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	invite, err := h.familyService.SendInvite(r.Context(), ident, self.FamilyID, req.Email, models.Role(req.Role))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, invite)
}

// ListPendingInvites returns the caller's family's open invites
func (h *FamilyHandler) ListPendingInvites(w http.ResponseWriter, r *http.Request) {
	ident := IdentityFromContext(r.Context())

	self, err := h.familyService.EnsureMember(r.Context(), ident)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	invites, err := h.familyService.ListPendingInvites(r.Context(), self.FamilyID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, invites)
}

// ResendInvite refreshes a pending invite and dispatches its email again
func (h *FamilyHandler) ResendInvite(w http.ResponseWriter, r *http.Request) {
	invite, err := h.familyService.ResendInvite(r.Context(), r.PathValue("id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, invite)
}

// CancelInvite declines a pending invite
func (h *FamilyHandler) CancelInvite(w http.ResponseWriter, r *http.Request) {
	if err := h.familyService.CancelInvite(r.Context(), r.PathValue("id")); err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
