package data

import (
	"errors"
	"testing"
	"time"

	"github.com/jorge-barreto/reqtrack/internal/model"
)

func ptime(s string) *time.Time {
	t := date(s)
	return &t
}

func TestStatistics(t *testing.T) {
	svc, _ := newTestService(t)
	p := mustProject(t, svc, "Apollo")
	mustTask(t, svc, TaskInput{Title: "late", ProjectID: p.ID, DueDate: ptime("2025-01-05")})
	mustTask(t, svc, TaskInput{Title: "done", ProjectID: p.ID, Status: model.TaskDone, DueDate: ptime("2025-01-05")})
	mustRequirement(t, svc, "R")
	if _, err := svc.AddNote(NoteInput{Title: "N"}); err != nil {
		t.Fatal(err)
	}

	st := svc.Statistics()
	if st.Projects != 1 || st.Tasks != 2 || st.OverdueTasks != 1 || st.Requirements != 1 || st.Notes != 1 {
		t.Fatalf("stats = %+v", st)
	}
	if st.TasksByStatus["todo"] != 1 || st.TasksByStatus["done"] != 1 {
		t.Fatalf("tasksByStatus = %v", st.TasksByStatus)
	}
}

func TestAnalyzeSchedule(t *testing.T) {
	svc, _ := newTestService(t)
	p := mustProject(t, svc, "Apollo")
	if err := svc.SetActiveProject(p.ID); err != nil {
		t.Fatal(err)
	}
	soon, _ := svc.AddMilestone(p.ID, MilestoneInput{Name: "Soon", DueDate: date("2025-01-15")})
	svc.AddMilestone(p.ID, MilestoneInput{Name: "Missed", DueDate: date("2025-01-01")})
	svc.AddMilestone(p.ID, MilestoneInput{Name: "Later", DueDate: date("2025-04-01")})
	mustTask(t, svc, TaskInput{Title: "overdue", DueDate: ptime("2025-01-08")})
	mustTask(t, svc, TaskInput{Title: "soon", DueDate: ptime("2025-01-12"), LinkedMilestoneID: soon.ID})
	mustTask(t, svc, TaskInput{Title: "someday"})

	rep, err := svc.AnalyzeSchedule("", 0)
	if err != nil {
		t.Fatal(err)
	}
	if rep.ProjectID != p.ID {
		t.Fatalf("projectId = %q", rep.ProjectID)
	}
	if len(rep.OverdueTasks) != 1 || rep.OverdueTasks[0].Title != "overdue" {
		t.Fatalf("overdue = %+v", rep.OverdueTasks)
	}
	if len(rep.DueSoonTasks) != 1 || rep.DueSoonTasks[0].Title != "soon" {
		t.Fatalf("dueSoon = %+v", rep.DueSoonTasks)
	}
	if len(rep.OverdueMilestones) != 1 || rep.OverdueMilestones[0].Name != "Missed" {
		t.Fatalf("overdueMilestones = %+v", rep.OverdueMilestones)
	}
	if len(rep.UpcomingMilestones) != 1 || len(rep.AtRiskMilestones) != 1 {
		t.Fatalf("upcoming/atRisk = %+v / %+v", rep.UpcomingMilestones, rep.AtRiskMilestones)
	}
	if rep.UnscheduledOpenWork != 1 {
		t.Fatalf("unscheduled = %d", rep.UnscheduledOpenWork)
	}
	if _, err := svc.AnalyzeSchedule("nope", 0); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestAnalyzeRisks(t *testing.T) {
	svc, _ := newTestService(t)
	mustTask(t, svc, TaskInput{Title: "stuck", Status: model.TaskBlocked})
	mustTask(t, svc, TaskInput{Title: "late", Priority: model.PriorityHigh, DueDate: ptime("2025-01-01"), Assignee: "ana"})
	mustTask(t, svc, TaskInput{Title: "orphan urgent", Priority: model.PriorityUrgent})
	r, _ := svc.AddRequirement(RequirementInput{Title: "Shipped", Status: model.ReqReleased})
	gone := mustRequirement(t, svc, "Gone")
	traceReq(t, svc, r, gone, model.LinkDependsOn)
	svc.DeleteRequirement(gone.ID)

	rep, err := svc.AnalyzeRisks("")
	if err != nil {
		t.Fatal(err)
	}
	kinds := map[string]Severity{}
	for _, risk := range rep.Risks {
		kinds[risk.Kind] = risk.Severity
	}
	want := map[string]Severity{
		"blocked-task":           SeverityMedium,
		"overdue-task":           SeverityHigh,
		"unassigned-urgent-task": SeverityMedium,
		"untested-requirement":   SeverityLow,
		"dangling-trace":         SeverityLow,
	}
	for k, sev := range want {
		if kinds[k] != sev {
			t.Errorf("risk %s = %q, want %q", k, kinds[k], sev)
		}
	}
	if rep.Risks[0].Severity != SeverityHigh {
		t.Fatalf("first risk = %+v, want high severity first", rep.Risks[0])
	}
}

func TestProjectSummary(t *testing.T) {
	svc, _ := newTestService(t)
	p := mustProject(t, svc, "Apollo")
	m, _ := svc.AddMilestone(p.ID, MilestoneInput{Name: "M", DueDate: date("2025-02-01")})
	mustTask(t, svc, TaskInput{Title: "a", LinkedMilestoneID: m.ID, Status: model.TaskDone})
	mustTask(t, svc, TaskInput{Title: "b", LinkedMilestoneID: m.ID})

	sum, err := svc.ProjectSummary(p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if sum.Progress != 50 || len(sum.Milestones) != 1 {
		t.Fatalf("summary = %+v", sum)
	}
	if pr := sum.Milestones[0].Progress; pr.Linked != 2 || pr.Completed != 1 {
		t.Fatalf("milestone progress = %+v", pr)
	}
}

func TestNotes(t *testing.T) {
	svc, _ := newTestService(t)
	p := mustProject(t, svc, "Apollo")
	svc.SetActiveProject(p.ID)
	if _, err := svc.AddNote(NoteInput{Title: "N", LinkedTaskIDs: []string{"missing"}}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	first, _ := svc.AddNote(NoteInput{Title: "first", Category: model.NoteDecision})
	pinned, _ := svc.AddNote(NoteInput{Title: "pinned", IsPinned: true})

	notes := svc.NotesByActiveProject()
	if len(notes) != 2 || notes[0].ID != pinned.ID {
		t.Fatalf("notes = %+v", notes)
	}
	content := "we chose JSON"
	got, err := svc.UpdateNote(first.ID, NotePatch{Content: &content})
	if err != nil || got.Content != content {
		t.Fatalf("UpdateNote = %+v, %v", got, err)
	}
	proj, _ := svc.Project(p.ID)
	if len(proj.NoteIDs) != 2 {
		t.Fatalf("noteIds = %v", proj.NoteIDs)
	}
	if removed, _ := svc.DeleteNote(first.ID); !removed {
		t.Fatal("DeleteNote reported no removal")
	}
	proj, _ = svc.Project(p.ID)
	if len(proj.NoteIDs) != 1 {
		t.Fatalf("noteIds after delete = %v", proj.NoteIDs)
	}
}
