package models

import (
	"errors"
	"testing"
	"time"
)

func TestTaskOverdueAt(t *testing.T) {
	now := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	task := Task{Deadline: now.Add(-time.Minute)}
	if !task.OverdueAt(now) {
		t.Fatal("expected past deadline to be overdue")
	}

	task.Completed = true
	if task.OverdueAt(now) {
		t.Fatal("completed task must never be overdue")
	}

	task = Task{Deadline: now}
	if task.OverdueAt(now) {
		t.Fatal("deadline equal to now must not be overdue")
	}
}

func TestPriorityRankOrder(t *testing.T) {
	if !(PriorityHigh.Rank() > PriorityMedium.Rank() && PriorityMedium.Rank() > PriorityLow.Rank()) {
		t.Fatalf("unexpected ranks: high=%d medium=%d low=%d",
			PriorityHigh.Rank(), PriorityMedium.Rank(), PriorityLow.Rank())
	}
}

func TestParsePriority(t *testing.T) {
	p, err := ParsePriority("Medium")
	if err != nil || p != PriorityMedium {
		t.Fatalf("parse Medium: %v %q", err, p)
	}
	_, err = ParsePriority("urgent")
	if !errors.Is(err, ErrInvalidPriority) {
		t.Fatalf("expected ErrInvalidPriority, got %v", err)
	}
}

func TestTaskUpdateApply(t *testing.T) {
	task := Task{Title: "old", Priority: PriorityLow, LabelIDs: []string{"a"}}
	title := "new"
	completed := true
	ids := []string{"b", "c"}
	TaskUpdate{Title: &title, Completed: &completed, LabelIDs: &ids}.Apply(&task)

	if task.Title != "new" || !task.Completed || task.Priority != PriorityLow {
		t.Fatalf("unexpected task after apply: %+v", task)
	}
	ids[0] = "mutated"
	if task.LabelIDs[0] != "b" {
		t.Fatalf("label ids must be copied, got %v", task.LabelIDs)
	}
	if !(TaskUpdate{}).IsEmpty() {
		t.Fatal("zero update must be empty")
	}
}
