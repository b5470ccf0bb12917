package models

import (
	"testing"
	"time"
)

func TestChoreStatusCanTransitionTo(t *testing.T) {
	tests := []struct {
		name string
		from ChoreStatus
		to   ChoreStatus
		want bool
	}{
		{
			name: "active to completed",
			from: ChoreActive,
			to:   ChoreCompleted,
			want: true,
		},
		{
			name: "active to archived",
			from: ChoreActive,
			to:   ChoreArchived,
			want: true,
		},
		{
			name: "completed is terminal",
			from: ChoreCompleted,
			to:   ChoreArchived,
			want: false,
		},
		{
			name: "archived is terminal",
			from: ChoreArchived,
			to:   ChoreCompleted,
			want: false,
		},
		{
			name: "no path back to active",
			from: ChoreCompleted,
			to:   ChoreActive,
			want: false,
		},
		{
			name: "active to active is not a transition",
			from: ChoreActive,
			to:   ChoreActive,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
				t.Errorf("%s.CanTransitionTo(%s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestAssignmentTypeIsValid(t *testing.T) {
	tests := []struct {
		name string
		at   AssignmentType
		want bool
	}{
		{name: "everyone", at: AssignEveryone, want: true},
		{name: "anyone", at: AssignAnyone, want: true},
		{name: "rotate", at: AssignRotate, want: true},
		{name: "empty", at: AssignmentType(""), want: false},
		{name: "unknown", at: AssignmentType("nobody"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.at.IsValid(); got != tt.want {
				t.Errorf("AssignmentType(%q).IsValid() = %v, want %v", tt.at, got, tt.want)
			}
		})
	}
}

func TestInviteIsPending(t *testing.T) {
	tests := []struct {
		name   string
		status InviteStatus
		want   bool
	}{
		{name: "pending", status: InvitePending, want: true},
		{name: "accepted", status: InviteAccepted, want: false},
		{name: "declined", status: InviteDeclined, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			invite := FamilyInvite{
				Email:     "test@example.com",
				Role:      RoleChild,
				FamilyID:  "fam-1",
				InvitedAt: time.Now(),
				Status:    tt.status,
				Token:     "abc123",
			}
			if got := invite.IsPending(); got != tt.want {
				t.Errorf("FamilyInvite{Status: %s}.IsPending() = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}

func TestChoreRotationOrder(t *testing.T) {
	members := []string{"m1", "m2", "m3"}

	rotating := Chore{AssignmentType: AssignRotate, AssignedTo: members}
	if got := rotating.RotationOrder(); len(got) != 3 {
		t.Errorf("RotationOrder() on rotating chore = %v, want %v", got, members)
	}

	shared := Chore{AssignmentType: AssignEveryone, AssignedTo: members}
	if got := shared.RotationOrder(); got != nil {
		t.Errorf("RotationOrder() on non-rotating chore = %v, want nil", got)
	}
}
