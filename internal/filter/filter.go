// Package filter derives the visible task list from the full task set.
//
// Apply is pure: identical inputs always yield identical, identically
// ordered output, and applying the same options twice changes nothing.
package filter

import (
	"slices"
	"time"

	"github.com/adanyl0v/go-tasks/internal/models"
)

type Completion string

const (
	CompletionAll        Completion = "all"
	CompletionCompleted  Completion = "completed"
	CompletionIncomplete Completion = "incomplete"
)

type Overdue string

const (
	OverdueAll  Overdue = "all"
	OverdueOnly Overdue = "overdue"
	OverdueNot  Overdue = "not_overdue"
)

type SortKey string

const (
	SortCreatedAt SortKey = "created_at"
	SortDeadline  SortKey = "deadline"
	SortPriority  SortKey = "priority"
)

type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

// PriorityAll disables priority filtering.
const PriorityAll models.Priority = "all"

type Options struct {
	Priority  models.Priority
	Completed Completion
	Overdue   Overdue
	// LabelIDs keeps tasks carrying any of the ids. Empty disables it.
	LabelIDs []string
	SortBy   SortKey
	Order    Order
}

func Default() Options {
	return Options{
		Priority:  PriorityAll,
		Completed: CompletionAll,
		Overdue:   OverdueAll,
		SortBy:    SortCreatedAt,
		Order:     OrderDesc,
	}
}

// Active reports whether o differs from Default.
func (o Options) Active() bool {
	o = o.normalized()
	d := Default()
	return o.Priority != d.Priority ||
		o.Completed != d.Completed ||
		o.Overdue != d.Overdue ||
		len(o.LabelIDs) > 0 ||
		o.SortBy != d.SortBy ||
		o.Order != d.Order
}

// Reset returns the default options.
func (o Options) Reset() Options {
	return Default()
}

// ToggleLabel adds id to the label selection or removes it if present.
func (o Options) ToggleLabel(id string) Options {
	ids := make([]string, 0, len(o.LabelIDs)+1)
	found := false
	for _, have := range o.LabelIDs {
		if have == id {
			found = true
			continue
		}
		ids = append(ids, have)
	}
	if !found {
		ids = append(ids, id)
	}
	o.LabelIDs = ids
	return o
}

func (o Options) normalized() Options {
	if o.Priority == "" {
		o.Priority = PriorityAll
	}
	if o.Completed == "" {
		o.Completed = CompletionAll
	}
	if o.Overdue == "" {
		o.Overdue = OverdueAll
	}
	if o.SortBy == "" {
		o.SortBy = SortCreatedAt
	}
	if o.Order == "" {
		o.Order = OrderDesc
	}
	return o
}

// Apply returns the tasks matching every active predicate of opts, ordered
// by opts.SortBy and opts.Order. Overdue is evaluated against now. The input
// slice is never modified.
func Apply(tasks []models.Task, opts Options, now time.Time) []models.Task {
	opts = opts.normalized()

	out := make([]models.Task, 0, len(tasks))
	for _, task := range tasks {
		if matches(task, opts, now) {
			out = append(out, task)
		}
	}

	cmp := compareBy(opts.SortBy)
	if opts.Order == OrderDesc {
		asc := cmp
		cmp = func(a, b models.Task) int { return asc(b, a) }
	}
	slices.SortStableFunc(out, cmp)
	return out
}

func matches(task models.Task, opts Options, now time.Time) bool {
	if opts.Priority != PriorityAll && task.Priority != opts.Priority {
		return false
	}

	switch opts.Completed {
	case CompletionCompleted:
		if !task.Completed {
			return false
		}
	case CompletionIncomplete:
		if task.Completed {
			return false
		}
	}

	switch opts.Overdue {
	case OverdueOnly:
		if !task.OverdueAt(now) {
			return false
		}
	case OverdueNot:
		if task.OverdueAt(now) {
			return false
		}
	}

	if len(opts.LabelIDs) > 0 && !task.HasAnyLabel(opts.LabelIDs) {
		return false
	}
	return true
}

func compareBy(key SortKey) func(a, b models.Task) int {
	switch key {
	case SortDeadline:
		return func(a, b models.Task) int { return a.Deadline.Compare(b.Deadline) }
	case SortPriority:
		return func(a, b models.Task) int { return a.Priority.Rank() - b.Priority.Rank() }
	default:
		return func(a, b models.Task) int { return a.CreatedAt.Compare(b.CreatedAt) }
	}
}
