package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"choreboard/internal/auth"
	"choreboard/internal/models"
	"choreboard/internal/repository"
	"choreboard/internal/store"
	"choreboard/internal/utils"
)

var (
	ErrDuplicateInvite  = errors.New("a pending invite already exists for this email")
	ErrAlreadyMember    = errors.New("this email already belongs to a family member")
	ErrInvalidInvite    = errors.New("invalid or expired invite link")
	ErrEmailMismatch    = errors.New("this invite is for a different email address")
	ErrInviteNotPending = errors.New("invite is no longer pending")
	ErrMemberNotFound   = errors.New("family member not found")
)

// FamilyService owns the family roster and the invite lifecycle
type FamilyService struct {
	memberRepo *repository.MemberRepository
	inviteRepo *repository.InviteRepository
	store      store.Store
	email      *EmailService
}

// NewFamilyService creates a new family service
func NewFamilyService(memberRepo *repository.MemberRepository, inviteRepo *repository.InviteRepository, s store.Store, email *EmailService) *FamilyService {
	return &FamilyService{
		memberRepo: memberRepo,
		inviteRepo: inviteRepo,
		store:      s,
		email:      email,
	}
}

// EnsureMember returns the roster entry for a signed-in user, creating the
// first member of their own family on first contact. A brand-new user
// becomes an accepted parent of a family keyed by their own uid.
func (s *FamilyService) EnsureMember(ctx context.Context, ident auth.Identity) (*models.FamilyMember, error) {
	member, err := s.memberRepo.FindByUser(ctx, ident.UID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up membership: %w", err)
	}
	if member != nil {
		return member, nil
	}

	name := ident.DisplayName
	if name == "" {
		name = "Parent"
	}
	now := time.Now()
	member = &models.FamilyMember{
		Name:         name,
		Email:        ident.Email,
		Role:         models.RoleParent,
		UserID:       ident.UID,
		FamilyID:     ident.UID,
		InviteStatus: models.InviteAccepted,
		CreatedAt:    now,
	}

	id, err := s.memberRepo.Create(ctx, member)
	if err != nil {
		return nil, fmt.Errorf("failed to create first family member: %w", err)
	}
	member.ID = id

	log.Printf("Created first family member for user %s (family %s)", ident.UID, member.FamilyID)
	return member, nil
}

// SendInvite issues a pending invite for an email address and dispatches
// the join link. At most one pending invite may exist per (email, family)
// pair, and emails already on the roster cannot be invited again.
func (s *FamilyService) SendInvite(ctx context.Context, inviter auth.Identity, familyID, email string, role models.Role) (*models.FamilyInvite, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := utils.ValidateEmail(email); err != nil {
		return nil, err
	}
	if !role.IsValid() {
		return nil, utils.ValidationError{Field: "role", Message: "role must be parent or child"}
	}

	existing, err := s.memberRepo.FindByEmail(ctx, familyID, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check family roster: %w", err)
	}
	if existing != nil {
		return nil, ErrAlreadyMember
	}

	pending, err := s.inviteRepo.FindPendingByEmail(ctx, familyID, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing invites: %w", err)
	}
	if pending != nil {
		return nil, ErrDuplicateInvite
	}

	invite, err := s.inviteRepo.Create(ctx, email, role, familyID, inviter.UID)
	if err != nil {
		return nil, fmt.Errorf("failed to create invite: %w", err)
	}

	// Dispatching the email is a side effect; the invite stands either way
	// and the join link is always logged.
	log.Printf("Invite created for %s (family %s): %s", email, familyID, s.email.JoinLink(invite.Token))
	if err := s.email.SendInviteEmail(ctx, email, inviter.DisplayName, string(role), invite.Token); err != nil {
		log.Printf("Warning: failed to send invite email to %s: %v", email, err)
	}

	return invite, nil
}

// ResendInvite refreshes the invited timestamp on a pending invite and
// dispatches the join link again. Status is never changed.
func (s *FamilyService) ResendInvite(ctx context.Context, inviteID string) (*models.FamilyInvite, error) {
	invite, err := s.getInvite(ctx, inviteID)
	if err != nil {
		return nil, err
	}
	if !invite.IsPending() {
		return nil, ErrInviteNotPending
	}

	now := time.Now()
	if err := s.inviteRepo.Touch(ctx, invite.ID, now); err != nil {
		return nil, fmt.Errorf("failed to refresh invite: %w", err)
	}
	invite.InvitedAt = now

	if err := s.email.SendInviteEmail(ctx, invite.Email, "", string(invite.Role), invite.Token); err != nil {
		log.Printf("Warning: failed to resend invite email to %s: %v", invite.Email, err)
	}

	return invite, nil
}

// CancelInvite declines a pending invite. Cancelling an already-declined
// invite is a no-op; an accepted invite cannot be cancelled.
func (s *FamilyService) CancelInvite(ctx context.Context, inviteID string) error {
	invite, err := s.getInvite(ctx, inviteID)
	if err != nil {
		return err
	}

	switch invite.Status {
	case models.InviteDeclined:
		return nil
	case models.InviteAccepted:
		return ErrInviteNotPending
	}

	if err := s.inviteRepo.UpdateStatus(ctx, invite.ID, models.InviteDeclined); err != nil {
		return fmt.Errorf("failed to cancel invite: %w", err)
	}
	return nil
}

// ResolveInviteByToken looks up the pending invite behind a join link and
// checks that the caller is its addressee. Consumed and unknown tokens are
// indistinguishable.
func (s *FamilyService) ResolveInviteByToken(ctx context.Context, token, callerEmail string) (*models.FamilyInvite, error) {
	invite, err := s.inviteRepo.FindPendingByToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to look up invite: %w", err)
	}
	if invite == nil {
		return nil, ErrInvalidInvite
	}
	if !strings.EqualFold(invite.Email, callerEmail) {
		return nil, ErrEmailMismatch
	}
	return invite, nil
}

// AcceptInvite claims a pending invite for the signed-in user: one
// transaction creates the accepted roster entry and consumes the invite.
func (s *FamilyService) AcceptInvite(ctx context.Context, token string, ident auth.Identity, displayName, avatar string) (*models.FamilyMember, error) {
	invite, err := s.ResolveInviteByToken(ctx, token, ident.Email)
	if err != nil {
		return nil, err
	}

	if displayName == "" {
		displayName = ident.DisplayName
	}
	if err := utils.ValidateName(displayName); err != nil {
		return nil, err
	}
	if err := utils.ValidateAvatarURL(avatar); err != nil {
		return nil, err
	}

	now := time.Now()
	invitedAt := invite.InvitedAt
	member := &models.FamilyMember{
		Name:         displayName,
		Email:        ident.Email,
		Avatar:       avatar,
		Role:         invite.Role,
		UserID:       ident.UID,
		FamilyID:     invite.FamilyID,
		InviteStatus: models.InviteAccepted,
		InvitedBy:    invite.InvitedBy,
		InvitedAt:    &invitedAt,
		AcceptedAt:   &now,
		CreatedAt:    now,
	}

	err = s.store.RunTransaction(ctx, func(tx store.Tx) error {
		id, err := s.memberRepo.CreateTx(tx, member)
		if err != nil {
			return err
		}
		member.ID = id
		return s.inviteRepo.UpdateStatusTx(tx, invite.ID, models.InviteAccepted)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to accept invite: %w", err)
	}

	log.Printf("Invite %s accepted by user %s (family %s)", invite.ID, ident.UID, invite.FamilyID)
	return member, nil
}

// ListMembers returns a family's roster, newest first
func (s *FamilyService) ListMembers(ctx context.Context, familyID string) ([]models.FamilyMember, error) {
	members, err := s.memberRepo.ListByFamily(ctx, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list family members: %w", err)
	}
	return members, nil
}

// ListPendingInvites returns a family's open invites, newest first
func (s *FamilyService) ListPendingInvites(ctx context.Context, familyID string) ([]models.FamilyInvite, error) {
	invites, err := s.inviteRepo.ListPendingByFamily(ctx, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending invites: %w", err)
	}
	return invites, nil
}

// WatchMembers streams a family's roster: the current set first, then a
// fresh snapshot after every change. The returned stop function must be
// called when the consumer goes away.
func (s *FamilyService) WatchMembers(ctx context.Context, familyID string) (<-chan []models.FamilyMember, func(), error) {
	sub, err := s.memberRepo.WatchByFamily(ctx, familyID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to watch family members: %w", err)
	}
	out, stop := forward(sub, repository.DecodeMembers)
	return out, stop, nil
}

// WatchPendingInvites streams a family's open invites
func (s *FamilyService) WatchPendingInvites(ctx context.Context, familyID string) (<-chan []models.FamilyInvite, func(), error) {
	sub, err := s.inviteRepo.WatchPendingByFamily(ctx, familyID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to watch pending invites: %w", err)
	}
	out, stop := forward(sub, repository.DecodeInvites)
	return out, stop, nil
}

// RemoveMember deletes a roster entry outright (legacy direct-removal
// model; the invite-based model never hard-deletes)
func (s *FamilyService) RemoveMember(ctx context.Context, memberID string) error {
	if _, err := s.memberRepo.Get(ctx, memberID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrMemberNotFound
		}
		return fmt.Errorf("failed to get family member: %w", err)
	}
	if err := s.memberRepo.Delete(ctx, memberID); err != nil {
		return fmt.Errorf("failed to remove family member: %w", err)
	}
	return nil
}

func (s *FamilyService) getInvite(ctx context.Context, inviteID string) (*models.FamilyInvite, error) {
	invite, err := s.inviteRepo.Get(ctx, inviteID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidInvite
		}
		return nil, fmt.Errorf("failed to get invite: %w", err)
	}
	return invite, nil
}
