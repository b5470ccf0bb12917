package models

import "time"

// FamilyInvite is a pending offer to join a family. The token is the sole
// credential embedded in the join link; no expiry is enforced, a consumed
// token simply stops matching the pending filter.
type FamilyInvite struct {
	ID        string       `json:"id"`
	Email     string       `json:"email"`
	Role      Role         `json:"role"`
	FamilyID  string       `json:"familyId"`
	InvitedBy string       `json:"invitedBy"`
	InvitedAt time.Time    `json:"invitedAt"`
	Status    InviteStatus `json:"status"`
	Token     string       `json:"token"`
}

// IsPending reports whether the invite can still be claimed or cancelled
func (i *FamilyInvite) IsPending() bool {
	return i.Status == InvitePending
}
