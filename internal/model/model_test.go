package model

import (
	"testing"
	"time"
)

func TestNewTask_Defaults(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	task := NewTask("Write spec", now)
	if task.ID == "" {
		t.Fatal("ID should be generated")
	}
	if task.Status != TaskTodo {
		t.Fatalf("Status = %q", task.Status)
	}
	if task.Priority != PriorityMedium {
		t.Fatalf("Priority = %q", task.Priority)
	}
	if task.SubtaskIDs == nil || task.FollowUps == nil || task.Tags == nil {
		t.Fatal("slices should be non-nil")
	}
}

func TestNewIDs_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewID()
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
}

func TestProjectClone_Independent(t *testing.T) {
	now := time.Now()
	p := NewProject("Apollo", now, now.AddDate(0, 5, 0), now)
	p.Milestones = append(p.Milestones, NewMilestone("Design", now, now))
	p.Milestones[0].LinkedTaskIDs = append(p.Milestones[0].LinkedTaskIDs, "t1")

	cp := p.Clone()
	cp.Milestones[0].LinkedTaskIDs[0] = "changed"
	cp.Milestones[0].Name = "changed"

	if p.Milestones[0].LinkedTaskIDs[0] != "t1" {
		t.Fatalf("original linkedTaskIds mutated: %v", p.Milestones[0].LinkedTaskIDs)
	}
	if p.Milestones[0].Name != "Design" {
		t.Fatalf("original milestone mutated: %q", p.Milestones[0].Name)
	}
}

func TestTaskOverdue(t *testing.T) {
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	due := now.AddDate(0, 0, -1)
	task := NewTask("x", now)
	task.DueDate = &due
	if !task.Overdue(now) {
		t.Fatal("expected overdue")
	}
	task.Status = TaskDone
	if task.Overdue(now) {
		t.Fatal("done task is never overdue")
	}
}
