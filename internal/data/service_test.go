package data

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/jorge-barreto/reqtrack/internal/model"
	"github.com/jorge-barreto/reqtrack/internal/store"
)

type memStore struct {
	mu    sync.Mutex
	doc   *model.Document
	saves int
	err   error
}

func (m *memStore) Load() (*model.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.doc == nil {
		return model.NewDocument(), nil
	}
	return m.doc.Clone(), nil
}

func (m *memStore) Save(d *model.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.err != nil {
		return m.err
	}
	m.doc = d.Clone()
	return nil
}

func (m *memStore) saved() *model.Document {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.doc
}

var testNow = time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)

func date(s string) time.Time {
	t, err := model.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newTestService(t testing.TB) (*Service, *memStore) {
	t.Helper()
	ms := &memStore{}
	svc, err := New(ms,
		WithLogger(zaptest.NewLogger(t)),
		WithClock(func() time.Time { return testNow }),
		WithIDGenerator(seqIDs()))
	if err != nil {
		t.Fatal(err)
	}
	return svc, ms
}

func mustProject(t testing.TB, svc *Service, name string) model.Project {
	t.Helper()
	p, err := svc.AddProject(ProjectInput{Name: name, StartDate: date("2025-01-01"), TargetEndDate: date("2025-06-01")})
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func mustTask(t testing.TB, svc *Service, in TaskInput) model.Task {
	t.Helper()
	task, err := svc.AddTask(in)
	if err != nil {
		t.Fatal(err)
	}
	return task
}

func mustRequirement(t testing.TB, svc *Service, title string) model.Requirement {
	t.Helper()
	r, err := svc.AddRequirement(RequirementInput{Title: title})
	if err != nil {
		t.Fatal(err)
	}
	return r
}

type failingLoad struct{ memStore }

func (f *failingLoad) Load() (*model.Document, error) {
	return nil, errors.New("disk on fire")
}

func TestNew_LoadError(t *testing.T) {
	_, err := New(&failingLoad{})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestMutationsPersist(t *testing.T) {
	svc, ms := newTestService(t)
	p := mustProject(t, svc, "Apollo")
	if ms.saves != 1 {
		t.Fatalf("saves = %d, want 1", ms.saves)
	}
	doc := ms.saved()
	if len(doc.Projects) != 1 || doc.Projects[0].ID != p.ID {
		t.Fatalf("saved projects = %+v", doc.Projects)
	}
}

func TestFailedValidationDoesNotPersist(t *testing.T) {
	svc, ms := newTestService(t)
	if _, err := svc.AddProject(ProjectInput{Name: "  "}); !errors.Is(err, ErrInvalid) {
		t.Fatalf("err = %v, want ErrInvalid", err)
	}
	if ms.saves != 0 {
		t.Fatalf("saves = %d, want 0", ms.saves)
	}
}

func TestPersistFailureIsWarning(t *testing.T) {
	svc, ms := newTestService(t)
	ms.err = errors.New("read-only file system")
	p, err := svc.AddProject(ProjectInput{Name: "Apollo"})
	if !errors.Is(err, ErrPersist) {
		t.Fatalf("err = %v, want ErrPersist", err)
	}
	if !Applied(err) {
		t.Fatal("Applied = false for persist failure")
	}
	if _, ok := svc.Project(p.ID); !ok {
		t.Fatal("project missing from memory after persist failure")
	}
}

func TestSubscribe(t *testing.T) {
	svc, _ := newTestService(t)
	var got []Change
	unsub := svc.Subscribe(func(c Change) { got = append(got, c) })
	p := mustProject(t, svc, "Apollo")
	if len(got) != 1 || got[0] != (Change{OpCreate, KindProject, p.ID}) {
		t.Fatalf("changes = %+v", got)
	}
	unsub()
	mustProject(t, svc, "Gemini")
	if len(got) != 1 {
		t.Fatalf("changes after unsubscribe = %+v", got)
	}
}

func TestSubscriberMayCallService(t *testing.T) {
	svc, _ := newTestService(t)
	var names []string
	svc.Subscribe(func(c Change) {
		if p, ok := svc.Project(c.ID); ok {
			names = append(names, p.Name)
		}
	})
	mustProject(t, svc, "Apollo")
	if len(names) != 1 || names[0] != "Apollo" {
		t.Fatalf("names = %v", names)
	}
}

func TestActiveProject(t *testing.T) {
	svc, ms := newTestService(t)
	a := mustProject(t, svc, "Apollo")
	g := mustProject(t, svc, "Gemini")

	if err := svc.SetActiveProject(a.ID); err != nil {
		t.Fatal(err)
	}
	if err := svc.SetActiveProject(g.ID); err != nil {
		t.Fatal(err)
	}
	if got := svc.ActiveProjectID(); got != g.ID {
		t.Fatalf("active = %q, want %q", got, g.ID)
	}
	if ms.saved().Metadata.ActiveProjectID != g.ID {
		t.Fatal("active project not persisted")
	}
	if err := svc.SetActiveProject("nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if got := svc.ActiveProjectID(); got != g.ID {
		t.Fatalf("active changed by failed call: %q", got)
	}
	if err := svc.SetActiveProject(""); err != nil {
		t.Fatal(err)
	}
	if _, ok := svc.ActiveProject(); ok {
		t.Fatal("active project still set after clear")
	}
}

func TestActiveProjectScopesQueries(t *testing.T) {
	svc, _ := newTestService(t)
	a := mustProject(t, svc, "Apollo")
	g := mustProject(t, svc, "Gemini")
	mustTask(t, svc, TaskInput{Title: "A1", ProjectID: a.ID})
	mustTask(t, svc, TaskInput{Title: "G1", ProjectID: g.ID})
	mustTask(t, svc, TaskInput{Title: "loose"})

	if got := len(svc.TasksByActiveProject()); got != 3 {
		t.Fatalf("unscoped tasks = %d, want 3", got)
	}
	if err := svc.SetActiveProject(a.ID); err != nil {
		t.Fatal(err)
	}
	tasks := svc.TasksByActiveProject()
	if len(tasks) != 1 || tasks[0].Title != "A1" {
		t.Fatalf("scoped tasks = %+v", tasks)
	}
	created := mustTask(t, svc, TaskInput{Title: "A2"})
	if created.ProjectID != a.ID {
		t.Fatalf("new task project = %q, want active %q", created.ProjectID, a.ID)
	}
}

func TestDeleteProjectClearsReferences(t *testing.T) {
	svc, _ := newTestService(t)
	p := mustProject(t, svc, "Apollo")
	if err := svc.SetActiveProject(p.ID); err != nil {
		t.Fatal(err)
	}
	m, err := svc.AddMilestone(p.ID, MilestoneInput{Name: "M1", DueDate: date("2025-02-01")})
	if err != nil {
		t.Fatal(err)
	}
	task := mustTask(t, svc, TaskInput{Title: "T", LinkedMilestoneID: m.ID})
	req := mustRequirement(t, svc, "R")

	removed, err := svc.DeleteProject(p.ID)
	if err != nil || !removed {
		t.Fatalf("DeleteProject = %v, %v", removed, err)
	}
	if svc.ActiveProjectID() != "" {
		t.Fatal("active project not cleared")
	}
	got, _ := svc.Task(task.ID)
	if got.ProjectID != "" || got.LinkedMilestoneID != "" {
		t.Fatalf("task refs = %q %q", got.ProjectID, got.LinkedMilestoneID)
	}
	r, _ := svc.Requirement(req.ID)
	if r.ProjectID != "" {
		t.Fatalf("requirement project = %q", r.ProjectID)
	}
	if _, ok := svc.Milestone(m.ID); ok {
		t.Fatal("milestone survived project delete")
	}
	if removed, _ := svc.DeleteProject(p.ID); removed {
		t.Fatal("second delete reported removal")
	}
}

func TestRoundTripThroughFileStore(t *testing.T) {
	path := t.TempDir() + "/data.json"
	st := store.New(store.Options{Path: path, CacheTTL: -1})
	svc, err := New(st, WithLogger(zaptest.NewLogger(t)))
	if err != nil {
		t.Fatal(err)
	}
	p := mustProject(t, svc, "Apollo")
	r := mustRequirement(t, svc, "Login")
	if err := svc.SetActiveProject(p.ID); err != nil {
		t.Fatal(err)
	}

	reloaded, err := New(store.New(store.Options{Path: path}))
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.ActiveProjectID() != p.ID {
		t.Fatalf("active = %q", reloaded.ActiveProjectID())
	}
	got, ok := reloaded.RequirementByKey("req-1")
	if !ok || got.ID != r.ID {
		t.Fatalf("RequirementByKey = %+v, %v", got, ok)
	}
}
