package model

import "testing"

func TestParseTaskStatus_Normalizes(t *testing.T) {
	cases := map[string]TaskStatus{
		"todo":        TaskTodo,
		"To Do":       TaskTodo,
		"in_progress": TaskInProgress,
		"In Progress": TaskInProgress,
		"IN-REVIEW":   TaskInReview,
		"completed":   TaskDone,
		"Done":        TaskDone,
		"canceled":    TaskCancelled,
	}
	for in, want := range cases {
		got, err := ParseTaskStatus(in)
		if err != nil {
			t.Fatalf("ParseTaskStatus(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseTaskStatus(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseTaskStatus_Invalid(t *testing.T) {
	_, err := ParseTaskStatus("sideways")
	if err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestParseMilestoneStatus_Aliases(t *testing.T) {
	got, err := ParseMilestoneStatus("done")
	if err != nil {
		t.Fatal(err)
	}
	if got != MilestoneCompleted {
		t.Fatalf("got %q, want completed", got)
	}
	got, err = ParseMilestoneStatus("Not Started")
	if err != nil {
		t.Fatal(err)
	}
	if got != MilestoneNotStarted {
		t.Fatalf("got %q, want not-started", got)
	}
}

func TestParseRequirementEnums(t *testing.T) {
	if v, err := ParseRequirementType("Non Functional"); err != nil || v != TypeNonFunctional {
		t.Fatalf("type = %q, %v", v, err)
	}
	if v, err := ParseRequirementStatus("under_review"); err != nil || v != ReqUnderReview {
		t.Fatalf("status = %q, %v", v, err)
	}
	if v, err := ParseLinkType("derived from"); err != nil || v != LinkDerivesFrom {
		t.Fatalf("link = %q, %v", v, err)
	}
	if v, err := ParseTargetType("test case"); err != nil || v != TargetTestCase {
		t.Fatalf("target = %q, %v", v, err)
	}
	if v, err := ParseNoteCategory("review"); err != nil || v != NoteReview {
		t.Fatalf("category = %q, %v", v, err)
	}
	if v, err := ParseTaskPriority("critical"); err != nil || v != PriorityUrgent {
		t.Fatalf("priority = %q, %v", v, err)
	}
}

func TestRequirementKey(t *testing.T) {
	if k := RequirementKey(1); k != "REQ-001" {
		t.Fatalf("key = %q", k)
	}
	if k := RequirementKey(1234); k != "REQ-1234" {
		t.Fatalf("key = %q", k)
	}
	n, ok := ParseRequirementKey("req-042")
	if !ok || n != 42 {
		t.Fatalf("ParseRequirementKey = %d, %v", n, ok)
	}
	if _, ok := ParseRequirementKey("TASK-1"); ok {
		t.Fatal("TASK-1 should not parse as a requirement key")
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-02-01")
	if err != nil {
		t.Fatal(err)
	}
	if d.Year() != 2025 || d.Month() != 2 || d.Day() != 1 {
		t.Fatalf("date = %v", d)
	}
	if _, err := ParseDate("2025-02-01T10:00:00Z"); err != nil {
		t.Fatal(err)
	}
	if _, err := ParseDate("next tuesday"); err == nil {
		t.Fatal("expected error")
	}
}
