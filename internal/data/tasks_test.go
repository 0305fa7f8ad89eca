package data

import (
	"errors"
	"testing"

	"github.com/jorge-barreto/reqtrack/internal/model"
)

func TestApolloScenario(t *testing.T) {
	svc, _ := newTestService(t)
	p := mustProject(t, svc, "Apollo")
	m, err := svc.AddMilestone(p.ID, MilestoneInput{Name: "Design Complete", DueDate: date("2025-02-01")})
	if err != nil {
		t.Fatal(err)
	}
	due := date("2025-01-20")
	task := mustTask(t, svc, TaskInput{Title: "Write spec", DueDate: &due})

	linked, err := svc.LinkTaskToMilestone(task.ID, m.ID)
	if err != nil {
		t.Fatal(err)
	}
	if linked.LinkedMilestoneID != m.ID {
		t.Fatalf("task.linkedMilestoneId = %q, want %q", linked.LinkedMilestoneID, m.ID)
	}
	ref, _ := svc.Milestone(m.ID)
	if ids := ref.Milestone.LinkedTaskIDs; len(ids) != 1 || ids[0] != task.ID {
		t.Fatalf("milestone.linkedTaskIds = %v", ids)
	}

	if _, err := svc.CompleteTask(task.ID); err != nil {
		t.Fatal(err)
	}
	pr, err := svc.MilestoneProgress(m.ID)
	if err != nil {
		t.Fatal(err)
	}
	if pr.Linked != 1 || pr.Completed != 1 || pr.Percent != 100 {
		t.Fatalf("progress = %+v, want 1/1", pr)
	}
	got, _ := svc.Task(task.ID)
	if got.CompletedDate == nil || !got.CompletedDate.Equal(testNow) {
		t.Fatalf("completedDate = %v", got.CompletedDate)
	}
	proj, _ := svc.Project(p.ID)
	if proj.Progress != 100 {
		t.Fatalf("project progress = %d, want 100", proj.Progress)
	}
}

func TestLinkIsIdempotent(t *testing.T) {
	svc, ms := newTestService(t)
	p := mustProject(t, svc, "Apollo")
	m, _ := svc.AddMilestone(p.ID, MilestoneInput{Name: "M", DueDate: date("2025-02-01")})
	task := mustTask(t, svc, TaskInput{Title: "T", ProjectID: p.ID})

	if _, err := svc.LinkTaskToMilestone(task.ID, m.ID); err != nil {
		t.Fatal(err)
	}
	saves := ms.saves
	if _, err := svc.LinkTaskToMilestone(task.ID, m.ID); err != nil {
		t.Fatal(err)
	}
	if ms.saves != saves {
		t.Fatal("second identical link wrote to disk")
	}
	ref, _ := svc.Milestone(m.ID)
	if n := len(ref.Milestone.LinkedTaskIDs); n != 1 {
		t.Fatalf("linkedTaskIds has %d entries, want 1", n)
	}
}

func TestRelinkMovesTask(t *testing.T) {
	svc, _ := newTestService(t)
	p := mustProject(t, svc, "Apollo")
	m1, _ := svc.AddMilestone(p.ID, MilestoneInput{Name: "M1", DueDate: date("2025-02-01")})
	m2, _ := svc.AddMilestone(p.ID, MilestoneInput{Name: "M2", DueDate: date("2025-03-01")})
	task := mustTask(t, svc, TaskInput{Title: "T", LinkedMilestoneID: m1.ID})

	if _, err := svc.LinkTaskToMilestone(task.ID, m2.ID); err != nil {
		t.Fatal(err)
	}
	r1, _ := svc.Milestone(m1.ID)
	r2, _ := svc.Milestone(m2.ID)
	if len(r1.Milestone.LinkedTaskIDs) != 0 {
		t.Fatalf("old milestone still links %v", r1.Milestone.LinkedTaskIDs)
	}
	if len(r2.Milestone.LinkedTaskIDs) != 1 {
		t.Fatalf("new milestone links %v", r2.Milestone.LinkedTaskIDs)
	}

	got, err := svc.UnlinkTaskFromMilestone(task.ID)
	if err != nil {
		t.Fatal(err)
	}
	r2, _ = svc.Milestone(m2.ID)
	if got.LinkedMilestoneID != "" || len(r2.Milestone.LinkedTaskIDs) != 0 {
		t.Fatalf("unlink left %q / %v", got.LinkedMilestoneID, r2.Milestone.LinkedTaskIDs)
	}
}

func TestLinkAcrossProjectsRejected(t *testing.T) {
	svc, _ := newTestService(t)
	a := mustProject(t, svc, "Apollo")
	g := mustProject(t, svc, "Gemini")
	m, _ := svc.AddMilestone(g.ID, MilestoneInput{Name: "G-M", DueDate: date("2025-02-01")})
	task := mustTask(t, svc, TaskInput{Title: "T", ProjectID: a.ID})

	if _, err := svc.LinkTaskToMilestone(task.ID, m.ID); !errors.Is(err, ErrInvalid) {
		t.Fatalf("err = %v, want ErrInvalid", err)
	}
	if _, err := svc.LinkTaskToMilestone(task.ID, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if _, err := svc.LinkTaskToMilestone("missing", m.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdateTaskRoutesMilestoneThroughLink(t *testing.T) {
	svc, _ := newTestService(t)
	p := mustProject(t, svc, "Apollo")
	m, _ := svc.AddMilestone(p.ID, MilestoneInput{Name: "M", DueDate: date("2025-02-01")})
	task := mustTask(t, svc, TaskInput{Title: "T", ProjectID: p.ID})

	mid := m.ID
	if _, err := svc.UpdateTask(task.ID, TaskPatch{LinkedMilestoneID: &mid}); err != nil {
		t.Fatal(err)
	}
	ref, _ := svc.Milestone(m.ID)
	if len(ref.Milestone.LinkedTaskIDs) != 1 {
		t.Fatalf("linkedTaskIds = %v", ref.Milestone.LinkedTaskIDs)
	}

	// Moving the task out of the project drops the milestone link.
	g := mustProject(t, svc, "Gemini")
	gid := g.ID
	got, err := svc.UpdateTask(task.ID, TaskPatch{ProjectID: &gid})
	if err != nil {
		t.Fatal(err)
	}
	ref, _ = svc.Milestone(m.ID)
	if got.LinkedMilestoneID != "" || len(ref.Milestone.LinkedTaskIDs) != 0 {
		t.Fatalf("link survived project move: %q %v", got.LinkedMilestoneID, ref.Milestone.LinkedTaskIDs)
	}
	ap, _ := svc.Project(p.ID)
	gp, _ := svc.Project(g.ID)
	if len(ap.TaskIDs) != 0 || len(gp.TaskIDs) != 1 {
		t.Fatalf("taskIds = %v / %v", ap.TaskIDs, gp.TaskIDs)
	}
}

func TestDeleteTaskCascades(t *testing.T) {
	svc, _ := newTestService(t)
	p := mustProject(t, svc, "Apollo")
	m, _ := svc.AddMilestone(p.ID, MilestoneInput{Name: "M", DueDate: date("2025-02-01")})
	parent := mustTask(t, svc, TaskInput{Title: "Parent", ProjectID: p.ID})
	task := mustTask(t, svc, TaskInput{Title: "Child", ParentTaskID: parent.ID, LinkedMilestoneID: m.ID})
	grandchild := mustTask(t, svc, TaskInput{Title: "Grandchild", ParentTaskID: task.ID})
	note, err := svc.AddNote(NoteInput{Title: "N", LinkedTaskIDs: []string{task.ID}})
	if err != nil {
		t.Fatal(err)
	}

	removed, err := svc.DeleteTask(task.ID)
	if err != nil || !removed {
		t.Fatalf("DeleteTask = %v, %v", removed, err)
	}
	ref, _ := svc.Milestone(m.ID)
	if len(ref.Milestone.LinkedTaskIDs) != 0 {
		t.Fatalf("milestone still links %v", ref.Milestone.LinkedTaskIDs)
	}
	par, _ := svc.Task(parent.ID)
	if len(par.SubtaskIDs) != 0 {
		t.Fatalf("parent subtasks = %v", par.SubtaskIDs)
	}
	gc, _ := svc.Task(grandchild.ID)
	if gc.ParentTaskID != "" {
		t.Fatalf("grandchild parent = %q", gc.ParentTaskID)
	}
	proj, _ := svc.Project(p.ID)
	if containsString(proj.TaskIDs, task.ID) {
		t.Fatal("project still lists deleted task")
	}
	n, _ := svc.Note(note.ID)
	if len(n.LinkedTaskIDs) != 0 {
		t.Fatalf("note still links %v", n.LinkedTaskIDs)
	}
	if removed, _ := svc.DeleteTask(task.ID); removed {
		t.Fatal("second delete reported removal")
	}
}

func TestSubtaskCycleRejected(t *testing.T) {
	svc, _ := newTestService(t)
	a := mustTask(t, svc, TaskInput{Title: "A"})
	b := mustTask(t, svc, TaskInput{Title: "B", ParentTaskID: a.ID})
	aid, bid := a.ID, b.ID
	if _, err := svc.UpdateTask(a.ID, TaskPatch{ParentTaskID: &bid}); !errors.Is(err, ErrInvalid) {
		t.Fatalf("err = %v, want ErrInvalid", err)
	}
	if _, err := svc.UpdateTask(a.ID, TaskPatch{ParentTaskID: &aid}); !errors.Is(err, ErrInvalid) {
		t.Fatalf("self-parent err = %v, want ErrInvalid", err)
	}
}

func TestProjectProgressIgnoresCancelled(t *testing.T) {
	svc, _ := newTestService(t)
	p := mustProject(t, svc, "Apollo")
	mustTask(t, svc, TaskInput{Title: "done", ProjectID: p.ID, Status: model.TaskDone})
	mustTask(t, svc, TaskInput{Title: "todo", ProjectID: p.ID})
	mustTask(t, svc, TaskInput{Title: "dropped", ProjectID: p.ID, Status: model.TaskCancelled})

	proj, _ := svc.Project(p.ID)
	if proj.Progress != 50 {
		t.Fatalf("progress = %d, want 50", proj.Progress)
	}
}

func TestReopenClearsCompletedDate(t *testing.T) {
	svc, _ := newTestService(t)
	task := mustTask(t, svc, TaskInput{Title: "T", Status: model.TaskDone})
	if task.CompletedDate == nil {
		t.Fatal("completedDate not set on creation as done")
	}
	todo := model.TaskTodo
	got, err := svc.UpdateTask(task.ID, TaskPatch{Status: &todo})
	if err != nil {
		t.Fatal(err)
	}
	if got.CompletedDate != nil {
		t.Fatalf("completedDate = %v, want nil", got.CompletedDate)
	}
}

func TestFollowUps(t *testing.T) {
	svc, _ := newTestService(t)
	task := mustTask(t, svc, TaskInput{Title: "T"})
	f, err := svc.AddFollowUp(task.ID, "ping vendor", date("2025-01-15"))
	if err != nil {
		t.Fatal(err)
	}
	done, err := svc.CompleteFollowUp(task.ID, f.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !done.Completed || done.CompletedDate == nil {
		t.Fatalf("follow-up = %+v", done)
	}
	if _, err := svc.CompleteFollowUp(task.ID, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if _, err := svc.AddFollowUp(task.ID, " ", testNow); !errors.Is(err, ErrInvalid) {
		t.Fatalf("err = %v, want ErrInvalid", err)
	}
	removed, err := svc.DeleteFollowUp(task.ID, f.ID)
	if err != nil || !removed {
		t.Fatalf("DeleteFollowUp = %v, %v", removed, err)
	}
	got, _ := svc.Task(task.ID)
	if len(got.FollowUps) != 0 {
		t.Fatalf("followUps = %+v", got.FollowUps)
	}
}

func TestDeleteMilestoneUnlinksTasks(t *testing.T) {
	svc, _ := newTestService(t)
	p := mustProject(t, svc, "Apollo")
	m, _ := svc.AddMilestone(p.ID, MilestoneInput{Name: "M", DueDate: date("2025-02-01")})
	other, _ := svc.AddMilestone(p.ID, MilestoneInput{Name: "Other", DueDate: date("2025-03-01")})
	task := mustTask(t, svc, TaskInput{Title: "T", LinkedMilestoneID: m.ID})

	removed, err := svc.DeleteMilestone(m.ID)
	if err != nil || !removed {
		t.Fatalf("DeleteMilestone = %v, %v", removed, err)
	}
	got, _ := svc.Task(task.ID)
	if got.LinkedMilestoneID != "" {
		t.Fatalf("task still linked to %q", got.LinkedMilestoneID)
	}
	if _, ok := svc.Milestone(other.ID); !ok {
		t.Fatal("index broken after milestone delete")
	}
}

func TestMilestoneValidation(t *testing.T) {
	svc, _ := newTestService(t)
	p := mustProject(t, svc, "Apollo")
	if _, err := svc.AddMilestone(p.ID, MilestoneInput{Name: "M"}); !errors.Is(err, ErrInvalid) {
		t.Fatalf("missing due date err = %v", err)
	}
	if _, err := svc.AddMilestone("nope", MilestoneInput{Name: "M", DueDate: testNow}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing project err = %v", err)
	}
	m, _ := svc.AddMilestone(p.ID, MilestoneInput{Name: "M", DueDate: testNow})
	st := model.MilestoneCompleted
	got, err := svc.UpdateMilestone(m.ID, MilestonePatch{Status: &st})
	if err != nil {
		t.Fatal(err)
	}
	if got.CompletedDate == nil {
		t.Fatal("completedDate not stamped")
	}
}
