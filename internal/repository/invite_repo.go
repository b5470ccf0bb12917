package repository

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"choreboard/internal/models"
	"choreboard/internal/store"
)

// InviteRepository persists invites in the familyInvites collection
type InviteRepository struct {
	store store.Store
}

func NewInviteRepository(s store.Store) *InviteRepository {
	return &InviteRepository{store: s}
}

// GenerateToken generates a random invite token for a join link
func (r *InviteRepository) GenerateToken() (string, error) {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// Create issues a new pending invite with a freshly generated token
func (r *InviteRepository) Create(ctx context.Context, email string, role models.Role, familyID, invitedBy string) (*models.FamilyInvite, error) {
	token, err := r.GenerateToken()
	if err != nil {
		return nil, err
	}

	invite := &models.FamilyInvite{
		Email:     email,
		Role:      role,
		FamilyID:  familyID,
		InvitedBy: invitedBy,
		InvitedAt: time.Now(),
		Status:    models.InvitePending,
		Token:     token,
	}

	id, err := r.store.Create(ctx, store.FamilyInvites, map[string]any{
		"email":     invite.Email,
		"role":      string(invite.Role),
		"familyId":  invite.FamilyID,
		"invitedBy": invite.InvitedBy,
		"invitedAt": invite.InvitedAt,
		"status":    string(invite.Status),
		"token":     invite.Token,
	})
	if err != nil {
		return nil, err
	}

	invite.ID = id
	return invite, nil
}

// Get retrieves an invite by document id
func (r *InviteRepository) Get(ctx context.Context, id string) (*models.FamilyInvite, error) {
	doc, err := r.store.Get(ctx, store.FamilyInvites, id)
	if err != nil {
		return nil, err
	}
	return DecodeInvite(doc), nil
}

// FindPendingByToken returns the pending invite matching a join-link token,
// or nil when none matches. Consumed tokens no longer match the pending
// filter, so they are indistinguishable from never-issued ones.
func (r *InviteRepository) FindPendingByToken(ctx context.Context, token string) (*models.FamilyInvite, error) {
	docs, err := r.store.Query(ctx, store.FamilyInvites, []store.Filter{
		{Field: "token", Value: token},
		{Field: "status", Value: string(models.InvitePending)},
	}, nil)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}
	return DecodeInvite(docs[0]), nil
}

// FindPendingByEmail returns the pending invite for an email in a family,
// or nil when none exists
func (r *InviteRepository) FindPendingByEmail(ctx context.Context, familyID, email string) (*models.FamilyInvite, error) {
	docs, err := r.store.Query(ctx, store.FamilyInvites, []store.Filter{
		{Field: "familyId", Value: familyID},
		{Field: "email", Value: email},
		{Field: "status", Value: string(models.InvitePending)},
	}, nil)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}
	return DecodeInvite(docs[0]), nil
}

// UpdateStatus moves an invite to a terminal status
func (r *InviteRepository) UpdateStatus(ctx context.Context, id string, status models.InviteStatus) error {
	return r.store.Update(ctx, store.FamilyInvites, id, map[string]any{
		"status": string(status),
	})
}

// UpdateStatusTx moves an invite to a terminal status inside an open
// transaction
func (r *InviteRepository) UpdateStatusTx(tx store.Tx, id string, status models.InviteStatus) error {
	return tx.Update(store.FamilyInvites, id, map[string]any{
		"status": string(status),
	})
}

// Touch refreshes the invited timestamp on resend; status is untouched
func (r *InviteRepository) Touch(ctx context.Context, id string, at time.Time) error {
	return r.store.Update(ctx, store.FamilyInvites, id, map[string]any{
		"invitedAt": at,
	})
}

// ListPendingByFamily returns a family's open invites, newest first
func (r *InviteRepository) ListPendingByFamily(ctx context.Context, familyID string) ([]models.FamilyInvite, error) {
	docs, err := r.store.Query(ctx, store.FamilyInvites, pendingInviteFilter(familyID), inviteOrder())
	if err != nil {
		return nil, err
	}
	return DecodeInvites(docs), nil
}

// WatchPendingByFamily opens a live subscription over a family's open invites
func (r *InviteRepository) WatchPendingByFamily(ctx context.Context, familyID string) (store.Subscription, error) {
	return r.store.Subscribe(ctx, store.FamilyInvites, pendingInviteFilter(familyID), inviteOrder())
}

func pendingInviteFilter(familyID string) []store.Filter {
	return []store.Filter{
		{Field: "familyId", Value: familyID},
		{Field: "status", Value: string(models.InvitePending)},
	}
}

func inviteOrder() *store.Order {
	return &store.Order{Field: "invitedAt", Desc: true}
}

// DecodeInvite materializes a FamilyInvite from a raw document
func DecodeInvite(doc store.Document) *models.FamilyInvite {
	return &models.FamilyInvite{
		ID:        doc.ID,
		Email:     getString(doc.Data, "email"),
		Role:      models.Role(getString(doc.Data, "role")),
		FamilyID:  getString(doc.Data, "familyId"),
		InvitedBy: getString(doc.Data, "invitedBy"),
		InvitedAt: getTime(doc.Data, "invitedAt"),
		Status:    models.InviteStatus(getString(doc.Data, "status")),
		Token:     getString(doc.Data, "token"),
	}
}

// DecodeInvites materializes a snapshot of FamilyInvite documents
func DecodeInvites(docs []store.Document) []models.FamilyInvite {
	out := make([]models.FamilyInvite, 0, len(docs))
	for _, doc := range docs {
		out = append(out, *DecodeInvite(doc))
	}
	return out
}
