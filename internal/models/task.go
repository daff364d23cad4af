package models

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidPriority = errors.New("models: invalid task priority")

type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

func (p Priority) IsValid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	default:
		return false
	}
}

// Rank orders priorities High > Medium > Low. Unknown values rank lowest.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

func ParsePriority(s string) (Priority, error) {
	p := Priority(s)
	if !p.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPriority, s)
	}
	return p, nil
}

type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Priority    Priority  `json:"priority"`
	Deadline    time.Time `json:"deadline"`
	Completed   bool      `json:"completed"`
	LabelIDs    []string  `json:"label_ids"`
	IsOverdue   bool      `json:"is_overdue"`
	UserID      string    `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// OverdueAt reports whether the deadline is strictly before now and the
// task is not completed.
func (t Task) OverdueAt(now time.Time) bool {
	return !t.Completed && t.Deadline.Before(now)
}

func (t Task) HasAnyLabel(ids []string) bool {
	for _, want := range ids {
		for _, have := range t.LabelIDs {
			if have == want {
				return true
			}
		}
	}
	return false
}

type TaskCreate struct {
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	Priority    Priority  `json:"priority"`
	Deadline    time.Time `json:"deadline"`
	LabelIDs    []string  `json:"label_ids,omitempty"`
}

type TaskUpdate struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Priority    *Priority  `json:"priority,omitempty"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	Completed   *bool      `json:"completed,omitempty"`
	LabelIDs    *[]string  `json:"label_ids,omitempty"`
}

func (u TaskUpdate) IsEmpty() bool {
	return u.Title == nil &&
		u.Description == nil &&
		u.Priority == nil &&
		u.Deadline == nil &&
		u.Completed == nil &&
		u.LabelIDs == nil
}

// Apply copies every set field of u onto t.
func (u TaskUpdate) Apply(t *Task) {
	if u.Title != nil {
		t.Title = *u.Title
	}
	if u.Description != nil {
		description := *u.Description
		t.Description = &description
	}
	if u.Priority != nil {
		t.Priority = *u.Priority
	}
	if u.Deadline != nil {
		t.Deadline = *u.Deadline
	}
	if u.Completed != nil {
		t.Completed = *u.Completed
	}
	if u.LabelIDs != nil {
		t.LabelIDs = append([]string(nil), (*u.LabelIDs)...)
	}
}
