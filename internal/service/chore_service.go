package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"choreboard/internal/models"
	"choreboard/internal/repository"
	"choreboard/internal/store"
	"choreboard/internal/utils"
)

var (
	ErrChoreNotFound     = errors.New("chore not found")
	ErrInvalidTransition = errors.New("invalid chore status transition")
)

// legacy single-value cadence accepted for compatibility
var legacyFrequencies = map[string]bool{
	"daily":   true,
	"weekly":  true,
	"monthly": true,
	"once":    true,
}

// CreateChoreInput carries the assignment configuration for a new chore
type CreateChoreInput struct {
	Title             string
	Description       string
	AssignmentType    models.AssignmentType
	AssignedTo        []string
	RotationFrequency int
	RotationPeriod    models.RotationPeriod
	DueDate           *time.Time
	Frequency         string
}

// ChoreService owns chore documents and their status lifecycle
type ChoreService struct {
	choreRepo *repository.ChoreRepository
}

// NewChoreService creates a new chore service
func NewChoreService(choreRepo *repository.ChoreRepository) *ChoreService {
	return &ChoreService{choreRepo: choreRepo}
}

// CreateChore validates the assignment configuration and creates an active
// chore owned by ownerID
func (s *ChoreService) CreateChore(ctx context.Context, ownerID string, input CreateChoreInput) (*models.Chore, error) {
	if input.Title == "" {
		return nil, utils.ValidationError{Field: "title", Message: "title is required"}
	}
	if !input.AssignmentType.IsValid() {
		return nil, utils.ValidationError{Field: "assignmentType", Message: "assignment type must be everyone, anyone or rotate"}
	}
	if input.AssignmentType == models.AssignRotate {
		if input.RotationFrequency <= 0 {
			return nil, utils.ValidationError{Field: "rotationFrequency", Message: "rotation frequency must be a positive integer"}
		}
		if !input.RotationPeriod.IsValid() {
			return nil, utils.ValidationError{Field: "rotationPeriod", Message: "rotation period must be day, week or month"}
		}
	}
	if input.Frequency != "" && !legacyFrequencies[input.Frequency] {
		return nil, utils.ValidationError{Field: "frequency", Message: "frequency must be daily, weekly, monthly or once"}
	}

	assignedTo := input.AssignedTo
	if assignedTo == nil {
		assignedTo = []string{}
	}

	chore := &models.Chore{
		Title:          input.Title,
		Description:    input.Description,
		Status:         models.ChoreActive,
		AssignmentType: input.AssignmentType,
		AssignedTo:     assignedTo,
		DueDate:        input.DueDate,
		Frequency:      input.Frequency,
		CreatedAt:      time.Now(),
		CreatedBy:      ownerID,
	}
	if input.AssignmentType == models.AssignRotate {
		chore.RotationFrequency = input.RotationFrequency
		chore.RotationPeriod = input.RotationPeriod
	}

	id, err := s.choreRepo.Create(ctx, chore)
	if err != nil {
		return nil, fmt.Errorf("failed to create chore: %w", err)
	}
	chore.ID = id
	return chore, nil
}

// GetChore retrieves a chore by id
func (s *ChoreService) GetChore(ctx context.Context, id string) (*models.Chore, error) {
	chore, err := s.choreRepo.Get(ctx, id)
	if err != nil {
		return nil, s.mapNotFound(err)
	}
	return chore, nil
}

// UpdateStatus moves a chore along its lifecycle. Only active -> completed
// and active -> archived are exposed; completed and archived are terminal.
// Completing a chore stamps completedAt.
func (s *ChoreService) UpdateStatus(ctx context.Context, id string, next models.ChoreStatus) (*models.Chore, error) {
	if !next.IsValid() {
		return nil, utils.ValidationError{Field: "status", Message: "status must be active, completed or archived"}
	}

	chore, err := s.choreRepo.Get(ctx, id)
	if err != nil {
		return nil, s.mapNotFound(err)
	}
	if !chore.Status.CanTransitionTo(next) {
		return nil, ErrInvalidTransition
	}

	now := time.Now()
	updates := map[string]any{
		"status":    string(next),
		"updatedAt": now,
	}
	if next == models.ChoreCompleted {
		updates["completedAt"] = now
	}

	if err := s.choreRepo.UpdateFields(ctx, id, updates); err != nil {
		return nil, s.mapNotFound(err)
	}

	chore.Status = next
	chore.UpdatedAt = &now
	if next == models.ChoreCompleted {
		chore.CompletedAt = &now
	}
	return chore, nil
}

// DeleteChore hard-deletes a chore; irreversible. The caller is expected
// to have confirmed the action at the boundary.
func (s *ChoreService) DeleteChore(ctx context.Context, id string) error {
	if _, err := s.choreRepo.Get(ctx, id); err != nil {
		return s.mapNotFound(err)
	}
	if err := s.choreRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete chore: %w", err)
	}
	return nil
}

// ListActiveChores returns the active chores, newest first
func (s *ChoreService) ListActiveChores(ctx context.Context) ([]models.Chore, error) {
	chores, err := s.choreRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list chores: %w", err)
	}
	return chores, nil
}

// WatchActiveChores streams the active chores: the current set first, then
// a fresh snapshot after every change
func (s *ChoreService) WatchActiveChores(ctx context.Context) (<-chan []models.Chore, func(), error) {
	sub, err := s.choreRepo.WatchActive(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to watch chores: %w", err)
	}
	out, stop := forward(sub, repository.DecodeChores)
	return out, stop, nil
}

func (s *ChoreService) mapNotFound(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrChoreNotFound
	}
	return fmt.Errorf("failed to access chore: %w", err)
}
