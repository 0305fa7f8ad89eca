package dispatch

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jorge-barreto/reqtrack/internal/data"
	"github.com/jorge-barreto/reqtrack/internal/match"
	"github.com/jorge-barreto/reqtrack/internal/model"
)

// maxHints caps the candidate lists attached to failed lookups.
const maxHints = 10

// Candidate is one suggestion attached to a failed lookup.
type Candidate struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Key  string `json:"key,omitempty"`
}

// lookupError reports a reference that resolved to nothing, with the
// nearest candidates under hintKey.
type lookupError struct {
	kind    string
	query   string
	hintKey string
	hints   []Candidate
}

func (e *lookupError) Error() string {
	if e.query == "" {
		return "no " + e.kind
	}
	return fmt.Sprintf("no %s matches %q", e.kind, e.query)
}

func (e *lookupError) Unwrap() error { return data.ErrNotFound }

// pick resolves query by fuzzy name, trying the scoped list before the full
// one. On failure the nearest candidates from the scoped list (or the full
// list when the scope is empty) become hints.
func pick[T any](kind, hintKey, query string, scoped, all []T, name func(T) string, cand func(T) Candidate) (T, error) {
	for _, items := range [][]T{scoped, all} {
		if v, _, ok := match.Best(query, items, name); ok {
			return v, nil
		}
	}
	pool := scoped
	if len(pool) == 0 {
		pool = all
	}
	near := match.Nearest(query, pool, name, maxHints)
	hints := make([]Candidate, len(near))
	for i, v := range near {
		hints[i] = cand(v)
	}
	var zero T
	return zero, &lookupError{kind: kind, query: query, hintKey: hintKey, hints: hints}
}

func projectName(p model.Project) string          { return p.Name }
func taskTitle(t model.Task) string               { return t.Title }
func requirementTitle(r model.Requirement) string { return r.Title }
func milestoneName(m data.MilestoneRef) string    { return m.Milestone.Name }
func noteTitle(n model.Note) string               { return n.Title }
func baselineName(b model.Baseline) string        { return b.Name }

func projectCandidate(p model.Project) Candidate   { return Candidate{ID: p.ID, Name: p.Name} }
func taskCandidate(t model.Task) Candidate         { return Candidate{ID: t.ID, Name: t.Title} }
func noteCandidate(n model.Note) Candidate         { return Candidate{ID: n.ID, Name: n.Title} }
func baselineCandidate(b model.Baseline) Candidate { return Candidate{ID: b.ID, Name: b.Name} }

func requirementCandidate(r model.Requirement) Candidate {
	return Candidate{ID: r.ID, Name: r.Title, Key: r.Key}
}

func milestoneCandidate(m data.MilestoneRef) Candidate {
	return Candidate{ID: m.Milestone.ID, Name: m.Milestone.Name + " (" + m.ProjectName + ")"}
}

func (d *Dispatcher) project(query string) (model.Project, error) {
	q := strings.TrimSpace(query)
	if p, ok := d.svc.Project(q); ok {
		return p, nil
	}
	return pick("project", "availableProjects", q, nil, d.svc.Projects(), projectName, projectCandidate)
}

// projectID resolves an optional project reference; "" stays "".
func (d *Dispatcher) projectID(query string) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", nil
	}
	p, err := d.project(query)
	return p.ID, err
}

// activeOr resolves an optional project reference, falling back to the
// active project.
func (d *Dispatcher) activeOr(query string) (model.Project, error) {
	if strings.TrimSpace(query) != "" {
		return d.project(query)
	}
	if p, ok := d.svc.ActiveProject(); ok {
		return p, nil
	}
	return model.Project{}, &lookupError{
		kind:    "active project",
		query:   "",
		hintKey: "availableProjects",
		hints:   candidates(d.svc.Projects(), projectCandidate),
	}
}

func (d *Dispatcher) task(query string) (model.Task, error) {
	q := strings.TrimSpace(query)
	if t, ok := d.svc.Task(q); ok {
		return t, nil
	}
	return pick("task", "availableTasks", q, d.svc.TasksByActiveProject(), d.svc.Tasks(), taskTitle, taskCandidate)
}

func (d *Dispatcher) requirement(query string) (model.Requirement, error) {
	q := strings.TrimSpace(query)
	if r, ok := d.svc.Requirement(q); ok {
		return r, nil
	}
	if r, ok := d.svc.RequirementByKey(q); ok {
		return r, nil
	}
	return pick("requirement", "availableRequirements", q,
		d.svc.RequirementsByActiveProject(), d.svc.Requirements(), requirementTitle, requirementCandidate)
}

// milestone resolves a milestone reference, searching projectID (or the
// active project when empty) before every project.
func (d *Dispatcher) milestone(query, projectID string) (data.MilestoneRef, error) {
	q := strings.TrimSpace(query)
	if m, ok := d.svc.Milestone(q); ok {
		return m, nil
	}
	all := d.svc.AllMilestones()
	if projectID == "" {
		projectID = d.svc.ActiveProjectID()
	}
	var scoped []data.MilestoneRef
	if projectID != "" {
		for _, m := range all {
			if m.ProjectID == projectID {
				scoped = append(scoped, m)
			}
		}
	}
	return pick("milestone", "availableMilestones", q, scoped, all, milestoneName, milestoneCandidate)
}

func (d *Dispatcher) note(query string) (model.Note, error) {
	q := strings.TrimSpace(query)
	if n, ok := d.svc.Note(q); ok {
		return n, nil
	}
	return pick("note", "availableNotes", q, d.svc.NotesByActiveProject(), d.svc.Notes(), noteTitle, noteCandidate)
}

func (d *Dispatcher) baseline(query string) (model.Baseline, error) {
	q := strings.TrimSpace(query)
	if b, ok := d.svc.Baseline(q); ok {
		return b, nil
	}
	return pick("baseline", "availableBaselines", q, nil, d.svc.Baselines(), baselineName, baselineCandidate)
}

func followUp(t model.Task, query string) (model.FollowUp, error) {
	q := strings.TrimSpace(query)
	for _, f := range t.FollowUps {
		if f.ID == q {
			return f, nil
		}
	}
	return pick("follow-up", "availableFollowUps", q, nil, t.FollowUps,
		func(f model.FollowUp) string { return f.Content },
		func(f model.FollowUp) Candidate { return Candidate{ID: f.ID, Name: f.Content} })
}

// traceLink finds one of r's links by link id, by target id, or by the key
// or title of a target requirement.
func (d *Dispatcher) traceLink(r model.Requirement, query string) (model.TraceLink, error) {
	q := strings.TrimSpace(query)
	for _, l := range r.Traces {
		if l.ID == q || l.TargetID == q {
			return l, nil
		}
	}
	if target, err := d.requirement(q); err == nil {
		for _, l := range r.Traces {
			if l.TargetID == target.ID {
				return l, nil
			}
		}
	}
	hints := make([]Candidate, 0, len(r.Traces))
	for _, l := range r.Traces {
		hints = append(hints, Candidate{ID: l.ID, Name: string(l.LinkType) + " " + d.describeTarget(l)})
	}
	if len(hints) > maxHints {
		hints = hints[:maxHints]
	}
	return model.TraceLink{}, &lookupError{
		kind:    "trace link on " + r.Key,
		query:   q,
		hintKey: "availableLinks",
		hints:   hints,
	}
}

// traceTarget resolves the target of a new trace link. Requirement and task
// targets are looked up; other target types are external references kept
// verbatim.
func (d *Dispatcher) traceTarget(query string, t model.TargetType) (string, error) {
	switch t {
	case model.TargetRequirement:
		r, err := d.requirement(query)
		return r.ID, err
	case model.TargetTask:
		tk, err := d.task(query)
		return tk.ID, err
	default:
		return strings.TrimSpace(query), nil
	}
}

func (d *Dispatcher) describeTarget(l model.TraceLink) string {
	switch l.TargetType {
	case model.TargetRequirement:
		if r, ok := d.svc.Requirement(l.TargetID); ok {
			return r.Key + " " + r.Title
		}
	case model.TargetTask:
		if t, ok := d.svc.Task(l.TargetID); ok {
			return "task " + t.Title
		}
	}
	return string(l.TargetType) + " " + l.TargetID
}

func candidates[T any](items []T, cand func(T) Candidate) []Candidate {
	if len(items) > maxHints {
		items = items[:maxHints]
	}
	out := make([]Candidate, len(items))
	for i, v := range items {
		out[i] = cand(v)
	}
	return out
}

func asLookup(err error) (*lookupError, bool) {
	var le *lookupError
	ok := errors.As(err, &le)
	return le, ok
}
