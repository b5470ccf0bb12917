package repository

import (
	"context"

	"choreboard/internal/models"
	"choreboard/internal/store"
)

// MemberRepository persists family members in the familyMembers collection
type MemberRepository struct {
	store store.Store
}

func NewMemberRepository(s store.Store) *MemberRepository {
	return &MemberRepository{store: s}
}

// Create adds a family member document
func (r *MemberRepository) Create(ctx context.Context, m *models.FamilyMember) (string, error) {
	return r.store.Create(ctx, store.FamilyMembers, encodeMember(m))
}

// CreateTx adds a family member inside an open transaction
func (r *MemberRepository) CreateTx(tx store.Tx, m *models.FamilyMember) (string, error) {
	return tx.Create(store.FamilyMembers, encodeMember(m))
}

// Get retrieves a member by document id
func (r *MemberRepository) Get(ctx context.Context, id string) (*models.FamilyMember, error) {
	doc, err := r.store.Get(ctx, store.FamilyMembers, id)
	if err != nil {
		return nil, err
	}
	return DecodeMember(doc), nil
}

// Delete removes a member document (legacy direct-removal model)
func (r *MemberRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, store.FamilyMembers, id)
}

// FindByUser returns the member record linked to a signed-up user, or nil
// when the user belongs to no family yet
func (r *MemberRepository) FindByUser(ctx context.Context, userID string) (*models.FamilyMember, error) {
	docs, err := r.store.Query(ctx, store.FamilyMembers, []store.Filter{
		{Field: "userId", Value: userID},
	}, nil)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}
	return DecodeMember(docs[0]), nil
}

// FindByEmail returns the roster entry with the given email in a family,
// or nil when none exists
func (r *MemberRepository) FindByEmail(ctx context.Context, familyID, email string) (*models.FamilyMember, error) {
	docs, err := r.store.Query(ctx, store.FamilyMembers, []store.Filter{
		{Field: "familyId", Value: familyID},
		{Field: "email", Value: email},
	}, nil)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}
	return DecodeMember(docs[0]), nil
}

// ListByFamily returns a family's roster, newest first
func (r *MemberRepository) ListByFamily(ctx context.Context, familyID string) ([]models.FamilyMember, error) {
	docs, err := r.store.Query(ctx, store.FamilyMembers, memberFilter(familyID), memberOrder())
	if err != nil {
		return nil, err
	}
	return DecodeMembers(docs), nil
}

// WatchByFamily opens a live subscription over a family's roster
func (r *MemberRepository) WatchByFamily(ctx context.Context, familyID string) (store.Subscription, error) {
	return r.store.Subscribe(ctx, store.FamilyMembers, memberFilter(familyID), memberOrder())
}

func memberFilter(familyID string) []store.Filter {
	return []store.Filter{{Field: "familyId", Value: familyID}}
}

func memberOrder() *store.Order {
	return &store.Order{Field: "createdAt", Desc: true}
}

func encodeMember(m *models.FamilyMember) map[string]any {
	data := map[string]any{
		"name":         m.Name,
		"email":        m.Email,
		"avatar":       m.Avatar,
		"role":         string(m.Role),
		"userId":       m.UserID,
		"familyId":     m.FamilyID,
		"inviteStatus": string(m.InviteStatus),
		"invitedBy":    m.InvitedBy,
		"createdAt":    m.CreatedAt,
	}
	if m.InvitedAt != nil {
		data["invitedAt"] = *m.InvitedAt
	}
	if m.AcceptedAt != nil {
		data["acceptedAt"] = *m.AcceptedAt
	}
	return data
}

// DecodeMember materializes a FamilyMember from a raw document
func DecodeMember(doc store.Document) *models.FamilyMember {
	return &models.FamilyMember{
		ID:           doc.ID,
		Name:         getString(doc.Data, "name"),
		Email:        getString(doc.Data, "email"),
		Avatar:       getString(doc.Data, "avatar"),
		Role:         models.Role(getString(doc.Data, "role")),
		UserID:       getString(doc.Data, "userId"),
		FamilyID:     getString(doc.Data, "familyId"),
		InviteStatus: models.InviteStatus(getString(doc.Data, "inviteStatus")),
		InvitedBy:    getString(doc.Data, "invitedBy"),
		InvitedAt:    getTimePtr(doc.Data, "invitedAt"),
		AcceptedAt:   getTimePtr(doc.Data, "acceptedAt"),
		CreatedAt:    getTime(doc.Data, "createdAt"),
	}
}

// DecodeMembers materializes a snapshot of FamilyMember documents
func DecodeMembers(docs []store.Document) []models.FamilyMember {
	out := make([]models.FamilyMember, 0, len(docs))
	for _, doc := range docs {
		out = append(out, *DecodeMember(doc))
	}
	return out
}
