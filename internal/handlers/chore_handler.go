package handlers

import (
	"net/http"
	"time"

	"choreboard/internal/models"
	"choreboard/internal/service"
)

// ChoreHandler handles chore HTTP requests
type ChoreHandler struct {
	choreService *service.ChoreService
}

// NewChoreHandler creates a new chore handler
func NewChoreHandler(choreService *service.ChoreService) *ChoreHandler {
	return &ChoreHandler{choreService: choreService}
}

type createChoreRequest struct {
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	AssignmentType    string     `json:"assignmentType"`
	AssignedTo        []string   `json:"assignedTo"`
	RotationFrequency int        `json:"rotationFrequency"`
	RotationPeriod    string     `json:"rotationPeriod"`
	DueDate           *time.Time `json:"dueDate"`
	Frequency         string     `json:"frequency"`
}

// Create adds a new active chore owned by the caller
func (h *ChoreHandler) Create(w http.ResponseWriter, r *http.Request) {
	ident := IdentityFromContext(r.Context())

	var req createChoreRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	// the form defaults to a rotating chore
	if req.AssignmentType == "" {
		req.AssignmentType = string(models.AssignRotate)
	}

	chore, err := h.choreService.CreateChore(r.Context(), ident.UID, service.CreateChoreInput{
		Title:             req.Title,
		Description:       req.Description,
		AssignmentType:    models.AssignmentType(req.AssignmentType),
		AssignedTo:        req.AssignedTo,
		RotationFrequency: req.RotationFrequency,
		RotationPeriod:    models.RotationPeriod(req.RotationPeriod),
		DueDate:           req.DueDate,
		Frequency:         req.Frequency,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, chore)
}

// List returns the active chores, newest first
func (h *ChoreHandler) List(w http.ResponseWriter, r *http.Request) {
	chores, err := h.choreService.ListActiveChores(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, chores)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus completes or archives a chore
func (h *ChoreHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	chore, err := h.choreService.UpdateStatus(r.Context(), r.PathValue("id"), models.ChoreStatus(req.Status))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, chore)
}

// Delete removes a chore outright. Destructive; the client confirms before
// calling.
func (h *ChoreHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.choreService.DeleteChore(r.Context(), r.PathValue("id")); err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
