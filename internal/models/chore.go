package models

import "time"

// ChoreStatus tracks the lifecycle of a chore
type ChoreStatus string

const (
	ChoreActive    ChoreStatus = "active"
	ChoreCompleted ChoreStatus = "completed"
	ChoreArchived  ChoreStatus = "archived"
)

// IsValid reports whether the status is one of the known values
func (s ChoreStatus) IsValid() bool {
	return s == ChoreActive || s == ChoreCompleted || s == ChoreArchived
}

// CanTransitionTo reports whether a chore may move from s to next. The only
// exposed transitions are active -> completed and active -> archived; both
// target states are terminal.
func (s ChoreStatus) CanTransitionTo(next ChoreStatus) bool {
	return s == ChoreActive && (next == ChoreCompleted || next == ChoreArchived)
}

// AssignmentType describes how a chore is assigned across the family
type AssignmentType string

const (
	AssignEveryone AssignmentType = "everyone"
	AssignAnyone   AssignmentType = "anyone"
	AssignRotate   AssignmentType = "rotate"
)

// IsValid reports whether the assignment type is one of the known values
func (a AssignmentType) IsValid() bool {
	return a == AssignEveryone || a == AssignAnyone || a == AssignRotate
}

// RotationPeriod is the unit of a rotation cadence
type RotationPeriod string

const (
	PeriodDay   RotationPeriod = "day"
	PeriodWeek  RotationPeriod = "week"
	PeriodMonth RotationPeriod = "month"
)

// IsValid reports whether the rotation period is one of the known values
func (p RotationPeriod) IsValid() bool {
	return p == PeriodDay || p == PeriodWeek || p == PeriodMonth
}

// Chore is a task tracked for a family. Rotation fields are configuration
// only; nothing in the system computes whose turn it currently is.
type Chore struct {
	ID                string         `json:"id"`
	Title             string         `json:"title"`
	Description       string         `json:"description,omitempty"`
	Status            ChoreStatus    `json:"status"`
	AssignmentType    AssignmentType `json:"assignmentType"`
	AssignedTo        []string       `json:"assignedTo"` // ordered member ids
	RotationFrequency int            `json:"rotationFrequency,omitempty"`
	RotationPeriod    RotationPeriod `json:"rotationPeriod,omitempty"`
	DueDate           *time.Time     `json:"dueDate,omitempty"`
	Frequency         string         `json:"frequency,omitempty"` // legacy: daily|weekly|monthly|once
	CreatedAt         time.Time      `json:"createdAt"`
	CreatedBy         string         `json:"createdBy"`
	UpdatedAt         *time.Time     `json:"updatedAt,omitempty"`
	CompletedAt       *time.Time     `json:"completedAt,omitempty"`
}

// RotationOrder returns the configured candidate ring for a rotating chore,
// or nil for other assignment types.
func (c *Chore) RotationOrder() []string {
	if c.AssignmentType != AssignRotate {
		return nil
	}
	return c.AssignedTo
}
