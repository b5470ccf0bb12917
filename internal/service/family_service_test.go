package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"choreboard/internal/auth"
	"choreboard/internal/models"
	"choreboard/internal/repository"
	"choreboard/internal/store"
)

func newFamilyService(t *testing.T) (*FamilyService, store.Store) {
	t.Helper()
	s := store.NewMemory()
	email, err := NewEmailService("", "", "", "http://localhost:3000", false)
	if err != nil {
		t.Fatalf("NewEmailService() error = %v", err)
	}
	svc := NewFamilyService(repository.NewMemberRepository(s), repository.NewInviteRepository(s), s, email)
	return svc, s
}

var parentIdent = auth.Identity{UID: "parent-uid", Email: "parent@example.com", DisplayName: "Pat"}

func TestEnsureMemberBootstrapsFirstParent(t *testing.T) {
	svc, _ := newFamilyService(t)
	ctx := context.Background()

	member, err := svc.EnsureMember(ctx, parentIdent)
	if err != nil {
		t.Fatalf("EnsureMember() error = %v", err)
	}
	if member.Role != models.RoleParent {
		t.Errorf("role = %v, want parent", member.Role)
	}
	if member.FamilyID != parentIdent.UID {
		t.Errorf("familyId = %v, want %v", member.FamilyID, parentIdent.UID)
	}
	if member.InviteStatus != models.InviteAccepted {
		t.Errorf("inviteStatus = %v, want accepted", member.InviteStatus)
	}

	// a second call returns the existing entry instead of creating another
	again, err := svc.EnsureMember(ctx, parentIdent)
	if err != nil {
		t.Fatalf("EnsureMember() second call error = %v", err)
	}
	if again.ID != member.ID {
		t.Errorf("second EnsureMember created a new member: %v vs %v", again.ID, member.ID)
	}

	members, err := svc.ListMembers(ctx, parentIdent.UID)
	if err != nil {
		t.Fatalf("ListMembers() error = %v", err)
	}
	if len(members) != 1 {
		t.Errorf("roster has %d members, want 1", len(members))
	}
}

func TestSendInviteDuplicatePending(t *testing.T) {
	svc, _ := newFamilyService(t)
	ctx := context.Background()

	if _, err := svc.SendInvite(ctx, parentIdent, "fam-1", "kid@example.com", models.RoleChild); err != nil {
		t.Fatalf("SendInvite() error = %v", err)
	}
	_, err := svc.SendInvite(ctx, parentIdent, "fam-1", "KID@example.com", models.RoleChild)
	if !errors.Is(err, ErrDuplicateInvite) {
		t.Errorf("second SendInvite error = %v, want ErrDuplicateInvite", err)
	}
}

func TestSendInviteExistingMember(t *testing.T) {
	svc, _ := newFamilyService(t)
	ctx := context.Background()

	member, err := svc.EnsureMember(ctx, parentIdent)
	if err != nil {
		t.Fatalf("EnsureMember() error = %v", err)
	}
	_, err = svc.SendInvite(ctx, parentIdent, member.FamilyID, parentIdent.Email, models.RoleParent)
	if !errors.Is(err, ErrAlreadyMember) {
		t.Errorf("SendInvite for roster email error = %v, want ErrAlreadyMember", err)
	}
}

func TestSendInviteValidation(t *testing.T) {
	svc, _ := newFamilyService(t)
	ctx := context.Background()

	if _, err := svc.SendInvite(ctx, parentIdent, "fam-1", "not-an-email", models.RoleChild); err == nil {
		t.Error("SendInvite with invalid email succeeded, want error")
	}
	if _, err := svc.SendInvite(ctx, parentIdent, "fam-1", "kid@example.com", models.Role("admin")); err == nil {
		t.Error("SendInvite with invalid role succeeded, want error")
	}
}

func TestResolveInviteByToken(t *testing.T) {
	svc, _ := newFamilyService(t)
	ctx := context.Background()

	invite, err := svc.SendInvite(ctx, parentIdent, "fam-1", "kid@example.com", models.RoleChild)
	if err != nil {
		t.Fatalf("SendInvite() error = %v", err)
	}

	resolved, err := svc.ResolveInviteByToken(ctx, invite.Token, "KID@Example.com")
	if err != nil {
		t.Fatalf("ResolveInviteByToken() error = %v", err)
	}
	if resolved.ID != invite.ID {
		t.Errorf("resolved invite %v, want %v", resolved.ID, invite.ID)
	}

	if _, err := svc.ResolveInviteByToken(ctx, "bogus-token", "kid@example.com"); !errors.Is(err, ErrInvalidInvite) {
		t.Errorf("unknown token error = %v, want ErrInvalidInvite", err)
	}
	if _, err := svc.ResolveInviteByToken(ctx, invite.Token, "other@example.com"); !errors.Is(err, ErrEmailMismatch) {
		t.Errorf("wrong email error = %v, want ErrEmailMismatch", err)
	}
}

func TestAcceptInvite(t *testing.T) {
	svc, _ := newFamilyService(t)
	ctx := context.Background()

	invite, err := svc.SendInvite(ctx, parentIdent, "fam-1", "kid@example.com", models.RoleChild)
	if err != nil {
		t.Fatalf("SendInvite() error = %v", err)
	}

	kid := auth.Identity{UID: "kid-uid", Email: "kid@example.com"}
	member, err := svc.AcceptInvite(ctx, invite.Token, kid, "Kiddo", "")
	if err != nil {
		t.Fatalf("AcceptInvite() error = %v", err)
	}
	if member.Role != invite.Role {
		t.Errorf("member role = %v, want %v", member.Role, invite.Role)
	}
	if member.FamilyID != invite.FamilyID {
		t.Errorf("member familyId = %v, want %v", member.FamilyID, invite.FamilyID)
	}
	if member.InviteStatus != models.InviteAccepted {
		t.Errorf("member inviteStatus = %v, want accepted", member.InviteStatus)
	}
	if member.AcceptedAt == nil {
		t.Error("member acceptedAt not set")
	}

	// the invite is consumed and drops out of the pending set
	pending, err := svc.ListPendingInvites(ctx, "fam-1")
	if err != nil {
		t.Fatalf("ListPendingInvites() error = %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("pending invites after accept = %d, want 0", len(pending))
	}

	// a consumed token behaves like an unknown one
	if _, err := svc.AcceptInvite(ctx, invite.Token, kid, "Kiddo", ""); !errors.Is(err, ErrInvalidInvite) {
		t.Errorf("second AcceptInvite error = %v, want ErrInvalidInvite", err)
	}

	members, err := svc.ListMembers(ctx, "fam-1")
	if err != nil {
		t.Fatalf("ListMembers() error = %v", err)
	}
	if len(members) != 1 {
		t.Errorf("roster has %d members, want 1", len(members))
	}
}

func TestAcceptInviteEmailMismatchCreatesNoMember(t *testing.T) {
	svc, _ := newFamilyService(t)
	ctx := context.Background()

	invite, err := svc.SendInvite(ctx, parentIdent, "fam-1", "kid@example.com", models.RoleChild)
	if err != nil {
		t.Fatalf("SendInvite() error = %v", err)
	}

	stranger := auth.Identity{UID: "stranger-uid", Email: "stranger@example.com"}
	if _, err := svc.AcceptInvite(ctx, invite.Token, stranger, "Stranger", ""); !errors.Is(err, ErrEmailMismatch) {
		t.Fatalf("AcceptInvite() error = %v, want ErrEmailMismatch", err)
	}

	members, err := svc.ListMembers(ctx, "fam-1")
	if err != nil {
		t.Fatalf("ListMembers() error = %v", err)
	}
	if len(members) != 0 {
		t.Errorf("roster has %d members after rejected accept, want 0", len(members))
	}
	pending, _ := svc.ListPendingInvites(ctx, "fam-1")
	if len(pending) != 1 {
		t.Errorf("invite no longer pending after rejected accept")
	}
}

func TestResendInvite(t *testing.T) {
	svc, _ := newFamilyService(t)
	ctx := context.Background()

	invite, err := svc.SendInvite(ctx, parentIdent, "fam-1", "kid@example.com", models.RoleChild)
	if err != nil {
		t.Fatalf("SendInvite() error = %v", err)
	}
	before := invite.InvitedAt
	time.Sleep(5 * time.Millisecond)

	resent, err := svc.ResendInvite(ctx, invite.ID)
	if err != nil {
		t.Fatalf("ResendInvite() error = %v", err)
	}
	if !resent.InvitedAt.After(before) {
		t.Errorf("invitedAt not refreshed: %v -> %v", before, resent.InvitedAt)
	}
	if resent.Status != models.InvitePending {
		t.Errorf("status after resend = %v, want pending", resent.Status)
	}
	if resent.Token != invite.Token {
		t.Errorf("token changed on resend")
	}
}

func TestCancelInvite(t *testing.T) {
	svc, _ := newFamilyService(t)
	ctx := context.Background()

	invite, err := svc.SendInvite(ctx, parentIdent, "fam-1", "kid@example.com", models.RoleChild)
	if err != nil {
		t.Fatalf("SendInvite() error = %v", err)
	}

	if err := svc.CancelInvite(ctx, invite.ID); err != nil {
		t.Fatalf("CancelInvite() error = %v", err)
	}
	// cancelling again is idempotent
	if err := svc.CancelInvite(ctx, invite.ID); err != nil {
		t.Errorf("second CancelInvite() error = %v, want nil", err)
	}

	pending, _ := svc.ListPendingInvites(ctx, "fam-1")
	if len(pending) != 0 {
		t.Errorf("pending invites after cancel = %d, want 0", len(pending))
	}

	// resend and cancel refuse consumed invites
	if _, err := svc.ResendInvite(ctx, invite.ID); !errors.Is(err, ErrInviteNotPending) {
		t.Errorf("ResendInvite after cancel error = %v, want ErrInviteNotPending", err)
	}
}

func TestCancelAcceptedInvite(t *testing.T) {
	svc, _ := newFamilyService(t)
	ctx := context.Background()

	invite, err := svc.SendInvite(ctx, parentIdent, "fam-1", "kid@example.com", models.RoleChild)
	if err != nil {
		t.Fatalf("SendInvite() error = %v", err)
	}
	kid := auth.Identity{UID: "kid-uid", Email: "kid@example.com"}
	if _, err := svc.AcceptInvite(ctx, invite.Token, kid, "Kiddo", ""); err != nil {
		t.Fatalf("AcceptInvite() error = %v", err)
	}

	if err := svc.CancelInvite(ctx, invite.ID); !errors.Is(err, ErrInviteNotPending) {
		t.Errorf("CancelInvite on accepted invite error = %v, want ErrInviteNotPending", err)
	}
}

func TestRemoveMember(t *testing.T) {
	svc, _ := newFamilyService(t)
	ctx := context.Background()

	member, err := svc.EnsureMember(ctx, parentIdent)
	if err != nil {
		t.Fatalf("EnsureMember() error = %v", err)
	}
	if err := svc.RemoveMember(ctx, member.ID); err != nil {
		t.Fatalf("RemoveMember() error = %v", err)
	}
	if err := svc.RemoveMember(ctx, member.ID); !errors.Is(err, ErrMemberNotFound) {
		t.Errorf("RemoveMember on missing member error = %v, want ErrMemberNotFound", err)
	}
}

func TestWatchPendingInvites(t *testing.T) {
	svc, _ := newFamilyService(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, stop, err := svc.WatchPendingInvites(ctx, "fam-1")
	if err != nil {
		t.Fatalf("WatchPendingInvites() error = %v", err)
	}
	defer stop()

	if invites := waitInvites(t, ch); len(invites) != 0 {
		t.Fatalf("initial snapshot has %d invites, want 0", len(invites))
	}

	if _, err := svc.SendInvite(ctx, parentIdent, "fam-1", "kid@example.com", models.RoleChild); err != nil {
		t.Fatalf("SendInvite() error = %v", err)
	}
	if invites := waitInvites(t, ch); len(invites) != 1 {
		t.Fatalf("snapshot after invite has %d invites, want 1", len(invites))
	}
}

func waitInvites(t *testing.T, ch <-chan []models.FamilyInvite) []models.FamilyInvite {
	t.Helper()
	select {
	case invites, ok := <-ch:
		if !ok {
			t.Fatal("invite channel closed unexpectedly")
		}
		return invites
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for invite snapshot")
	}
	return nil
}
