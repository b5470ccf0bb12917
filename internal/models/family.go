package models

import "time"

// Role of a family member
type Role string

const (
	RoleParent Role = "parent"
	RoleChild  Role = "child"
)

// IsValid reports whether the role is one of the known values
func (r Role) IsValid() bool {
	return r == RoleParent || r == RoleChild
}

// InviteStatus tracks the lifecycle of an invite. Transitions only move
// forward: pending -> accepted or pending -> declined.
type InviteStatus string

const (
	InvitePending  InviteStatus = "pending"
	InviteAccepted InviteStatus = "accepted"
	InviteDeclined InviteStatus = "declined"
)

// FamilyMember represents a person on a family roster. The first member of a
// family is self-created at onboarding; every other member starts life as a
// pending invite.
type FamilyMember struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Email        string       `json:"email"`
	Avatar       string       `json:"avatar,omitempty"`
	Role         Role         `json:"role"`
	UserID       string       `json:"userId"` // identity provider UID, empty until the invitee signs up
	FamilyID     string       `json:"familyId"`
	InviteStatus InviteStatus `json:"inviteStatus"`
	InvitedBy    string       `json:"invitedBy,omitempty"`
	InvitedAt    *time.Time   `json:"invitedAt,omitempty"`
	AcceptedAt   *time.Time   `json:"acceptedAt,omitempty"`
	CreatedAt    time.Time    `json:"createdAt"`
}
