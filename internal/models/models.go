package models

import (
	"fmt"
	"time"
)

// Role is the closed set of user roles. Admin and Manager are equivalent
// everywhere: both pass CanManage and no admin-only operation exists.
type Role string

const (
	RoleAdmin   Role = "Admin"
	RoleManager Role = "Manager"
	RoleUser    Role = "User"
)

// ParseRole maps a stored string onto a Role, rejecting anything outside
// the closed set.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleManager, RoleUser:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// CanManage reports whether the role may create, edit and delete any task.
func (r Role) CanManage() bool {
	return r == RoleAdmin || r == RoleManager
}

// Status is the persisted task status. Overdue and DueSoon are never
// stored; they are derived on read, see Classify.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusCompleted Status = "Completed"
)

// Priority of a task.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// ValidPriority reports whether p is one of the three known priorities.
func ValidPriority(p Priority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// DerivedStatus is the display classification of a task at a given instant.
type DerivedStatus string

const (
	DerivedPending   DerivedStatus = "Pending"
	DerivedDueSoon   DerivedStatus = "DueSoon"
	DerivedOverdue   DerivedStatus = "Overdue"
	DerivedCompleted DerivedStatus = "Completed"
)

// DueSoonHorizon is the window ahead of now within which a pending task
// counts as due soon.
const DueSoonHorizon = 24 * time.Hour

// Classify computes the display status of a task from its stored status,
// its due date and the current time. Completed tasks are never
// reclassified. The function is pure: same inputs, same answer.
func Classify(status Status, due, now time.Time) DerivedStatus {
	if status == StatusCompleted {
		return DerivedCompleted
	}
	if due.Before(now) {
		return DerivedOverdue
	}
	if !due.After(now.Add(DueSoonHorizon)) {
		return DerivedDueSoon
	}
	return DerivedPending
}

// Session is the authenticated identity threaded through every core call.
// It replaces the ambient session state of the old dashboard.
type Session struct {
	UserID int  `json:"user_id"`
	Role   Role `json:"role"`
}

// CanManage reports whether the session holder is privileged.
func (s Session) CanManage() bool {
	return s.Role.CanManage()
}

// Owns reports whether the session holder is the assignee.
func (s Session) Owns(assignedTo int) bool {
	return s.UserID == assignedTo
}

type User struct {
	ID        int       `json:"id"`
	Username  string    `json:"username"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type Task struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DueDate     time.Time `json:"due_date"`
	Status      Status    `json:"status"`
	Priority    Priority  `json:"priority"`
	Category    string    `json:"category"`
	AssignedTo  int       `json:"assigned_to"`
	CreatedBy   *int      `json:"created_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TaskView is a Task plus its classification at read time.
type TaskView struct {
	Task
	DerivedStatus DerivedStatus `json:"derived_status"`
}

type Comment struct {
	ID        int       `json:"id"`
	TaskID    int       `json:"task_id"`
	AuthorID  int       `json:"author_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}
