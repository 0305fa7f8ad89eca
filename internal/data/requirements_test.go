package data

import (
	"errors"
	"testing"

	"github.com/jorge-barreto/reqtrack/internal/model"
)

func TestRequirementKeysNeverReused(t *testing.T) {
	svc, _ := newTestService(t)
	r1 := mustRequirement(t, svc, "Login")
	r2 := mustRequirement(t, svc, "Session mgmt")
	if r1.Key != "REQ-001" || r2.Key != "REQ-002" {
		t.Fatalf("keys = %q, %q", r1.Key, r2.Key)
	}
	if _, err := svc.DeleteRequirement(r2.ID); err != nil {
		t.Fatal(err)
	}
	r3 := mustRequirement(t, svc, "Logout")
	if r3.Key != "REQ-003" {
		t.Fatalf("key after delete = %q, want REQ-003", r3.Key)
	}
}

func traceReq(t *testing.T, svc *Service, src, dst model.Requirement, lt model.LinkType) model.TraceLink {
	t.Helper()
	l, err := svc.AddTraceLink(TraceInput{SourceID: src.ID, TargetID: dst.ID, TargetType: model.TargetRequirement, LinkType: lt})
	if err != nil {
		t.Fatal(err)
	}
	return l
}

func TestSuspectLinkScenario(t *testing.T) {
	svc, _ := newTestService(t)
	login := mustRequirement(t, svc, "Login")
	session := mustRequirement(t, svc, "Session mgmt")
	link := traceReq(t, svc, session, login, model.LinkDerivesFrom)

	title := "Login with SSO"
	if _, err := svc.UpdateRequirement(login.ID, RequirementPatch{Title: &title}); err != nil {
		t.Fatal(err)
	}
	got, _ := svc.Requirement(session.ID)
	if !got.HasSuspectLinks {
		t.Fatal("hasSuspectLinks = false after target title change")
	}
	if l := got.Trace(link.ID); l == nil || !l.IsSuspect {
		t.Fatalf("link = %+v, want suspect", l)
	}
	sus := svc.GetSuspectRequirements()
	if len(sus) != 1 || sus[0].Requirement.ID != session.ID || sus[0].SuspectCount != 1 {
		t.Fatalf("suspects = %+v", sus)
	}
	src, _ := svc.Requirement(login.ID)
	if src.HasSuspectLinks {
		t.Fatal("the edited requirement itself was marked suspect")
	}

	cleared, err := svc.ClearSuspectLink(session.ID, link.ID)
	if err != nil {
		t.Fatal(err)
	}
	if cleared.HasSuspectLinks || cleared.Trace(link.ID).IsSuspect {
		t.Fatalf("after clear = %+v", cleared)
	}
	if n := len(svc.GetSuspectRequirements()); n != 0 {
		t.Fatalf("suspects after clear = %d", n)
	}
}

func TestNonCoreEditDoesNotMarkSuspect(t *testing.T) {
	svc, _ := newTestService(t)
	login := mustRequirement(t, svc, "Login")
	session := mustRequirement(t, svc, "Session mgmt")
	traceReq(t, svc, session, login, model.LinkDerivesFrom)

	cov := 40
	if _, err := svc.UpdateRequirement(login.ID, RequirementPatch{TestCoverage: &cov}); err != nil {
		t.Fatal(err)
	}
	same := "Login"
	if _, err := svc.UpdateRequirement(login.ID, RequirementPatch{Title: &same}); err != nil {
		t.Fatal(err)
	}
	got, _ := svc.Requirement(session.ID)
	if got.HasSuspectLinks {
		t.Fatal("suspect after non-core edit")
	}
}

func TestClearAllSuspectLinks(t *testing.T) {
	svc, _ := newTestService(t)
	a := mustRequirement(t, svc, "A")
	b := mustRequirement(t, svc, "B")
	c := mustRequirement(t, svc, "C")
	traceReq(t, svc, c, a, model.LinkRefines)
	traceReq(t, svc, c, b, model.LinkRefines)
	approved := model.ReqApproved
	svc.UpdateRequirement(a.ID, RequirementPatch{Status: &approved})
	svc.UpdateRequirement(b.ID, RequirementPatch{Status: &approved})

	got, _ := svc.Requirement(c.ID)
	if len(got.SuspectLinkIDs) != 2 {
		t.Fatalf("suspectLinkIds = %v", got.SuspectLinkIDs)
	}
	cleared, err := svc.ClearAllSuspectLinks(c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if cleared.HasSuspectLinks || len(cleared.SuspectLinkIDs) != 0 {
		t.Fatalf("after clear all = %+v", cleared)
	}
}

func TestImpactScenario(t *testing.T) {
	svc, _ := newTestService(t)
	r1 := mustRequirement(t, svc, "Login")
	r2 := mustRequirement(t, svc, "Session")
	r3 := mustRequirement(t, svc, "Token refresh")
	traceReq(t, svc, r2, r1, model.LinkSatisfies)
	traceReq(t, svc, r3, r2, model.LinkSatisfies)

	rep, err := svc.AnalyzeImpact(r1.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(rep.Items) != 2 {
		t.Fatalf("items = %+v", rep.Items)
	}
	if rep.Items[0].Key != "REQ-002" || rep.Items[0].Depth != 1 {
		t.Fatalf("first = %+v, want REQ-002 at depth 1", rep.Items[0])
	}
	if rep.Items[1].Key != "REQ-003" || rep.Items[1].Depth != 2 {
		t.Fatalf("second = %+v, want REQ-003 at depth 2", rep.Items[1])
	}
	if rep.Items[0].LinkType != model.LinkSatisfies || rep.Items[0].Direction != DirectionIncoming {
		t.Fatalf("first link = %+v", rep.Items[0])
	}
	if rep.Direct != 1 || rep.Transitive != 1 {
		t.Fatalf("direct/transitive = %d/%d", rep.Direct, rep.Transitive)
	}
}

func TestImpactToleratesCycles(t *testing.T) {
	svc, _ := newTestService(t)
	a := mustRequirement(t, svc, "A")
	b := mustRequirement(t, svc, "B")
	c := mustRequirement(t, svc, "C")
	traceReq(t, svc, a, b, model.LinkRelatedTo)
	traceReq(t, svc, b, c, model.LinkRelatedTo)
	traceReq(t, svc, c, a, model.LinkRelatedTo)
	traceReq(t, svc, b, a, model.LinkRelatedTo)

	rep, err := svc.AnalyzeImpact(a.ID)
	if err != nil {
		t.Fatal(err)
	}
	seen := map[string]int{}
	for _, it := range rep.Items {
		seen[it.ID]++
	}
	if len(rep.Items) != 2 || seen[b.ID] != 1 || seen[c.ID] != 1 {
		t.Fatalf("items = %+v", rep.Items)
	}
	for _, it := range rep.Items {
		if it.Depth != 1 {
			t.Fatalf("item %s depth %d, want 1", it.Key, it.Depth)
		}
	}
}

func TestImpactReportsDanglingTargets(t *testing.T) {
	svc, _ := newTestService(t)
	a := mustRequirement(t, svc, "A")
	b := mustRequirement(t, svc, "B")
	traceReq(t, svc, a, b, model.LinkDependsOn)
	if _, err := svc.AddTraceLink(TraceInput{SourceID: a.ID, TargetID: "src/auth.go", TargetType: model.TargetCode, LinkType: model.LinkImplements}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.DeleteRequirement(b.ID); err != nil {
		t.Fatal(err)
	}
	got, _ := svc.Requirement(a.ID)
	if len(got.Traces) != 2 {
		t.Fatalf("incoming trace removed on delete: %+v", got.Traces)
	}
	rep, err := svc.AnalyzeImpact(a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(rep.Items) != 2 || !rep.Items[0].Missing || rep.Items[1].Missing {
		t.Fatalf("items = %+v", rep.Items)
	}
}

func TestAddTraceLinkValidation(t *testing.T) {
	svc, _ := newTestService(t)
	a := mustRequirement(t, svc, "A")
	if _, err := svc.AddTraceLink(TraceInput{SourceID: a.ID, TargetID: "nope", TargetType: model.TargetRequirement}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if _, err := svc.AddTraceLink(TraceInput{SourceID: a.ID, TargetID: "nope", TargetType: model.TargetTask}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	b := mustRequirement(t, svc, "B")
	l1 := traceReq(t, svc, a, b, model.LinkRefines)
	l2 := traceReq(t, svc, a, b, model.LinkRefines)
	if l1.ID != l2.ID {
		t.Fatal("duplicate link created")
	}
	removed, err := svc.RemoveTraceLink(a.ID, l1.ID)
	if err != nil || !removed {
		t.Fatalf("RemoveTraceLink = %v, %v", removed, err)
	}
}

func TestLockedRequirement(t *testing.T) {
	svc, ms := newTestService(t)
	r := mustRequirement(t, svc, "Login")
	if _, err := svc.CreateBaseline(BaselineInput{Name: "v1", RequirementIDs: []string{r.ID}, Lock: true}); err != nil {
		t.Fatal(err)
	}
	saves := ms.saves

	title := "Changed"
	if _, err := svc.UpdateRequirement(r.ID, RequirementPatch{Title: &title}); !errors.Is(err, ErrLocked) {
		t.Fatalf("err = %v, want ErrLocked", err)
	}
	if ms.saves != saves {
		t.Fatal("rejected edit was persisted")
	}
	got, _ := svc.Requirement(r.ID)
	if got.Title != "Login" || got.Version != 1 {
		t.Fatalf("locked requirement changed: %+v", got)
	}

	cov := 100
	tags := []string{"auth"}
	got, err := svc.UpdateRequirement(r.ID, RequirementPatch{TestCoverage: &cov, Tags: &tags})
	if err != nil {
		t.Fatalf("non-core edit on locked requirement: %v", err)
	}
	if got.TestCoverage != 100 {
		t.Fatalf("testCoverage = %d", got.TestCoverage)
	}
	if removed, err := svc.DeleteRequirement(r.ID); removed || !errors.Is(err, ErrLocked) {
		t.Fatalf("DeleteRequirement = %v, %v", removed, err)
	}
}

func TestVersionBumpsOnCoreEdit(t *testing.T) {
	svc, _ := newTestService(t)
	r := mustRequirement(t, svc, "Login")
	p := model.ReqPriorityHigh
	got, err := svc.UpdateRequirement(r.ID, RequirementPatch{Priority: &p})
	if err != nil {
		t.Fatal(err)
	}
	if got.Version != 2 {
		t.Fatalf("version = %d, want 2", got.Version)
	}
}

func TestRequirementHierarchy(t *testing.T) {
	svc, _ := newTestService(t)
	parent := mustRequirement(t, svc, "Auth")
	child, err := svc.AddRequirement(RequirementInput{Title: "Login", ParentID: parent.ID})
	if err != nil {
		t.Fatal(err)
	}
	got, _ := svc.Requirement(parent.ID)
	if len(got.Children) != 1 || got.Children[0] != child.ID {
		t.Fatalf("children = %v", got.Children)
	}
	cid := child.ID
	if _, err := svc.UpdateRequirement(parent.ID, RequirementPatch{ParentID: &cid}); !errors.Is(err, ErrInvalid) {
		t.Fatalf("cycle err = %v, want ErrInvalid", err)
	}
	if _, err := svc.DeleteRequirement(parent.ID); err != nil {
		t.Fatal(err)
	}
	orphan, _ := svc.Requirement(child.ID)
	if orphan.ParentID != "" {
		t.Fatalf("parentId = %q after parent delete", orphan.ParentID)
	}
}

func TestCoverageReport(t *testing.T) {
	svc, _ := newTestService(t)
	for _, c := range []int{100, 100, 50, 0} {
		if _, err := svc.AddRequirement(RequirementInput{Title: "R", TestCoverage: c}); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := svc.AddRequirement(RequirementInput{Title: "bad", TestCoverage: 101}); !errors.Is(err, ErrInvalid) {
		t.Fatalf("err = %v, want ErrInvalid", err)
	}
	rep := svc.GenerateCoverageReport()
	if rep.Total != 4 || rep.Covered != 2 || rep.PartiallyCovered != 1 || rep.Uncovered != 1 {
		t.Fatalf("report = %+v", rep)
	}
	if rep.Percentage != 50 {
		t.Fatalf("percentage = %v, want 50", rep.Percentage)
	}
	if len(rep.UncoveredItems) != 1 {
		t.Fatalf("uncoveredItems = %+v", rep.UncoveredItems)
	}
}

func TestCoverageReportEmpty(t *testing.T) {
	svc, _ := newTestService(t)
	rep := svc.GenerateCoverageReport()
	if rep.Total != 0 || rep.Percentage != 0 {
		t.Fatalf("report = %+v", rep)
	}
}

func TestCompareBaseline(t *testing.T) {
	svc, _ := newTestService(t)
	a := mustRequirement(t, svc, "A")
	b := mustRequirement(t, svc, "B")
	mustRequirement(t, svc, "C")
	bl, err := svc.CreateBaseline(BaselineInput{Name: "draft"})
	if err != nil {
		t.Fatal(err)
	}
	if len(bl.RequirementSnapshots) != 3 || bl.Status != model.BaselineDraft {
		t.Fatalf("baseline = %+v", bl)
	}
	title := "A2"
	svc.UpdateRequirement(a.ID, RequirementPatch{Title: &title})
	svc.DeleteRequirement(b.ID)

	diff, err := svc.CompareBaseline(bl.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(diff.Changed) != 1 || diff.Changed[0].ID != a.ID || diff.Changed[0].Fields[0] != "title" {
		t.Fatalf("changed = %+v", diff.Changed)
	}
	if len(diff.Removed) != 1 || diff.Removed[0].ID != b.ID {
		t.Fatalf("removed = %+v", diff.Removed)
	}
	if diff.Unchanged != 1 {
		t.Fatalf("unchanged = %d", diff.Unchanged)
	}

	locked, err := svc.LockBaseline(bl.ID)
	if err != nil {
		t.Fatal(err)
	}
	if locked.Status != model.BaselineLocked || locked.LockedAt == nil {
		t.Fatalf("locked = %+v", locked)
	}
	got, _ := svc.Requirement(a.ID)
	if !got.IsLocked {
		t.Fatal("requirement not locked with baseline")
	}
}

func TestDeleteRequirementCascades(t *testing.T) {
	svc, _ := newTestService(t)
	p := mustProject(t, svc, "Apollo")
	m, _ := svc.AddMilestone(p.ID, MilestoneInput{Name: "M", DueDate: testNow})
	r, err := svc.AddRequirement(RequirementInput{Title: "R", ProjectID: p.ID})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.LinkRequirementToMilestone(r.ID, m.ID); err != nil {
		t.Fatal(err)
	}
	n, _ := svc.AddNote(NoteInput{Title: "N", LinkedRequirementIDs: []string{r.ID}})

	if removed, err := svc.DeleteRequirement(r.ID); err != nil || !removed {
		t.Fatalf("DeleteRequirement = %v, %v", removed, err)
	}
	proj, _ := svc.Project(p.ID)
	if len(proj.RequirementIDs) != 0 || len(proj.Milestones[0].LinkedRequirementIDs) != 0 {
		t.Fatalf("project refs = %v / %v", proj.RequirementIDs, proj.Milestones[0].LinkedRequirementIDs)
	}
	note, _ := svc.Note(n.ID)
	if len(note.LinkedRequirementIDs) != 0 {
		t.Fatalf("note refs = %v", note.LinkedRequirementIDs)
	}
}
