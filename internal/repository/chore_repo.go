package repository

import (
	"context"

	"choreboard/internal/models"
	"choreboard/internal/store"
)

// ChoreRepository persists chores in the chores collection
type ChoreRepository struct {
	store store.Store
}

func NewChoreRepository(s store.Store) *ChoreRepository {
	return &ChoreRepository{store: s}
}

// Create adds a chore document
func (r *ChoreRepository) Create(ctx context.Context, c *models.Chore) (string, error) {
	data := map[string]any{
		"title":          c.Title,
		"description":    c.Description,
		"status":         string(c.Status),
		"assignmentType": string(c.AssignmentType),
		"assignedTo":     c.AssignedTo,
		"createdAt":      c.CreatedAt,
		"createdBy":      c.CreatedBy,
	}
	if c.AssignmentType == models.AssignRotate {
		data["rotationFrequency"] = c.RotationFrequency
		data["rotationPeriod"] = string(c.RotationPeriod)
	}
	if c.DueDate != nil {
		data["dueDate"] = *c.DueDate
	}
	if c.Frequency != "" {
		data["frequency"] = c.Frequency
	}
	return r.store.Create(ctx, store.Chores, data)
}

// Get retrieves a chore by document id
func (r *ChoreRepository) Get(ctx context.Context, id string) (*models.Chore, error) {
	doc, err := r.store.Get(ctx, store.Chores, id)
	if err != nil {
		return nil, err
	}
	return DecodeChore(doc), nil
}

// UpdateFields applies a partial update to a chore
func (r *ChoreRepository) UpdateFields(ctx context.Context, id string, updates map[string]any) error {
	return r.store.Update(ctx, store.Chores, id, updates)
}

// Delete removes a chore document; irreversible
func (r *ChoreRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, store.Chores, id)
}

// ListActive returns the active chores, newest first
func (r *ChoreRepository) ListActive(ctx context.Context) ([]models.Chore, error) {
	docs, err := r.store.Query(ctx, store.Chores, activeChoreFilter(), choreOrder())
	if err != nil {
		return nil, err
	}
	return DecodeChores(docs), nil
}

// WatchActive opens a live subscription over the active chores
func (r *ChoreRepository) WatchActive(ctx context.Context) (store.Subscription, error) {
	return r.store.Subscribe(ctx, store.Chores, activeChoreFilter(), choreOrder())
}

func activeChoreFilter() []store.Filter {
	return []store.Filter{{Field: "status", Value: string(models.ChoreActive)}}
}

func choreOrder() *store.Order {
	return &store.Order{Field: "createdAt", Desc: true}
}

// DecodeChore materializes a Chore from a raw document
func DecodeChore(doc store.Document) *models.Chore {
	return &models.Chore{
		ID:                doc.ID,
		Title:             getString(doc.Data, "title"),
		Description:       getString(doc.Data, "description"),
		Status:            models.ChoreStatus(getString(doc.Data, "status")),
		AssignmentType:    models.AssignmentType(getString(doc.Data, "assignmentType")),
		AssignedTo:        getStringSlice(doc.Data, "assignedTo"),
		RotationFrequency: getInt(doc.Data, "rotationFrequency"),
		RotationPeriod:    models.RotationPeriod(getString(doc.Data, "rotationPeriod")),
		DueDate:           getTimePtr(doc.Data, "dueDate"),
		Frequency:         getString(doc.Data, "frequency"),
		CreatedAt:         getTime(doc.Data, "createdAt"),
		CreatedBy:         getString(doc.Data, "createdBy"),
		UpdatedAt:         getTimePtr(doc.Data, "updatedAt"),
		CompletedAt:       getTimePtr(doc.Data, "completedAt"),
	}
}

// DecodeChores materializes a snapshot of Chore documents
func DecodeChores(docs []store.Document) []models.Chore {
	out := make([]models.Chore, 0, len(docs))
	for _, doc := range docs {
		out = append(out, *DecodeChore(doc))
	}
	return out
}
