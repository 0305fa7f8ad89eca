// Package doctor checks a workspace document for broken cross-references.
package doctor

import (
	"context"
	"fmt"
	"strings"

	"github.com/jorge-barreto/reqtrack/internal/llm"
	"github.com/jorge-barreto/reqtrack/internal/model"
	"github.com/jorge-barreto/reqtrack/internal/ux"
)

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Finding is one integrity problem.
type Finding struct {
	Severity Severity `json:"severity"`
	Kind     string   `json:"kind"`
	ID       string   `json:"id"`
	Detail   string   `json:"detail"`
}

const maxFindings = 50

const explainPrompt = `You are helping repair a requirements and project tracking workspace. An integrity check found the problems below.

## Findings (%d total%s)
%s

## Workspace
%d projects, %d tasks, %d requirements, %d notes. Requirement key counter: %d.

Instructions:
1. Group related findings and explain the likely cause of each group.
2. Say which findings can corrupt data (errors) and which are cosmetic (warnings).
3. Suggest concrete repairs as reqtrack tool calls where possible, for example:
   - reqtrack call link_task_to_milestone '{"task":"...","milestone":"..."}'
   - reqtrack call remove_trace_link '{"source":"REQ-001","link":"..."}'
4. If the data file must be edited by hand, say exactly which field to change.

Be direct and concise.`

type checker struct {
	doc      *model.Document
	findings []Finding

	projects     map[string]*model.Project
	milestones   map[string]*model.Project
	tasks        map[string]*model.Task
	requirements map[string]*model.Requirement
}

func (c *checker) add(sev Severity, kind, id, format string, args ...any) {
	c.findings = append(c.findings, Finding{Severity: sev, Kind: kind, ID: id, Detail: fmt.Sprintf(format, args...)})
}

// Check inspects doc and returns every problem found, errors first.
func Check(doc *model.Document) []Finding {
	c := &checker{
		doc:          doc,
		projects:     map[string]*model.Project{},
		milestones:   map[string]*model.Project{},
		tasks:        map[string]*model.Task{},
		requirements: map[string]*model.Requirement{},
	}
	c.index()
	c.checkActiveProject()
	c.checkProjects()
	c.checkTasks()
	c.checkRequirements()
	c.checkNotes()

	var errs, warns []Finding
	for _, f := range c.findings {
		if f.Severity == SeverityError {
			errs = append(errs, f)
		} else {
			warns = append(warns, f)
		}
	}
	return append(errs, warns...)
}

func (c *checker) index() {
	seen := map[string]string{}
	dup := func(kind, id string) {
		if prev, ok := seen[id]; ok {
			c.add(SeverityError, "duplicate-id", id, "id used by a %s and a %s", prev, kind)
			return
		}
		seen[id] = kind
	}
	for i := range c.doc.Projects {
		p := &c.doc.Projects[i]
		dup("project", p.ID)
		c.projects[p.ID] = p
		for j := range p.Milestones {
			dup("milestone", p.Milestones[j].ID)
			c.milestones[p.Milestones[j].ID] = p
		}
	}
	for i := range c.doc.Tasks {
		dup("task", c.doc.Tasks[i].ID)
		c.tasks[c.doc.Tasks[i].ID] = &c.doc.Tasks[i]
	}
	for i := range c.doc.Requirements {
		dup("requirement", c.doc.Requirements[i].ID)
		c.requirements[c.doc.Requirements[i].ID] = &c.doc.Requirements[i]
	}
}

func (c *checker) checkActiveProject() {
	id := c.doc.Metadata.ActiveProjectID
	if id != "" && c.projects[id] == nil {
		c.add(SeverityWarning, "dangling-active-project", id, "active project does not exist")
	}
}

func (c *checker) checkProjects() {
	for _, p := range c.doc.Projects {
		for _, tid := range p.TaskIDs {
			t := c.tasks[tid]
			switch {
			case t == nil:
				c.add(SeverityWarning, "dangling-project-task", p.ID, "project %q lists missing task %s", p.Name, tid)
			case t.ProjectID != p.ID:
				c.add(SeverityError, "project-task-mismatch", tid, "project %q lists task %q which belongs to %q", p.Name, t.Title, t.ProjectID)
			}
		}
		for _, rid := range p.RequirementIDs {
			if c.requirements[rid] == nil {
				c.add(SeverityWarning, "dangling-project-requirement", p.ID, "project %q lists missing requirement %s", p.Name, rid)
			}
		}
		for _, m := range p.Milestones {
			for _, tid := range m.LinkedTaskIDs {
				t := c.tasks[tid]
				switch {
				case t == nil:
					c.add(SeverityError, "dangling-milestone-task", m.ID, "milestone %q lists missing task %s", m.Name, tid)
				case t.LinkedMilestoneID != m.ID:
					c.add(SeverityError, "milestone-link-mismatch", tid, "milestone %q lists task %q but the task links to %q", m.Name, t.Title, t.LinkedMilestoneID)
				}
			}
			for _, rid := range m.LinkedRequirementIDs {
				if c.requirements[rid] == nil {
					c.add(SeverityWarning, "dangling-milestone-requirement", m.ID, "milestone %q lists missing requirement %s", m.Name, rid)
				}
			}
		}
	}
}

func (c *checker) checkTasks() {
	for _, t := range c.doc.Tasks {
		if t.ProjectID != "" && c.projects[t.ProjectID] == nil {
			c.add(SeverityError, "dangling-task-project", t.ID, "task %q belongs to missing project %s", t.Title, t.ProjectID)
		} else if p := c.projects[t.ProjectID]; p != nil && !contains(p.TaskIDs, t.ID) {
			c.add(SeverityWarning, "project-task-unlisted", t.ID, "task %q is missing from project %q", t.Title, p.Name)
		}

		if mid := t.LinkedMilestoneID; mid != "" {
			p := c.milestones[mid]
			switch {
			case p == nil:
				c.add(SeverityError, "dangling-task-milestone", t.ID, "task %q links to missing milestone %s", t.Title, mid)
			case !contains(p.Milestone(mid).LinkedTaskIDs, t.ID):
				c.add(SeverityError, "milestone-link-mismatch", t.ID, "task %q links to milestone %q which does not list it", t.Title, p.Milestone(mid).Name)
			case t.ProjectID != "" && p.ID != t.ProjectID:
				c.add(SeverityError, "cross-project-link", t.ID, "task %q links to a milestone of project %q", t.Title, p.Name)
			}
		}

		if pid := t.ParentTaskID; pid != "" {
			parent := c.tasks[pid]
			switch {
			case parent == nil:
				c.add(SeverityError, "dangling-parent-task", t.ID, "task %q has missing parent %s", t.Title, pid)
			case !contains(parent.SubtaskIDs, t.ID):
				c.add(SeverityError, "subtask-mismatch", t.ID, "task %q is not listed by its parent %q", t.Title, parent.Title)
			}
		}
		for _, sid := range t.SubtaskIDs {
			sub := c.tasks[sid]
			switch {
			case sub == nil:
				c.add(SeverityWarning, "dangling-subtask", t.ID, "task %q lists missing subtask %s", t.Title, sid)
			case sub.ParentTaskID != t.ID:
				c.add(SeverityError, "subtask-mismatch", sid, "task %q lists subtask %q whose parent is %q", t.Title, sub.Title, sub.ParentTaskID)
			}
		}
	}
}

func (c *checker) checkRequirements() {
	keys := map[string]string{}
	maxKey := 0
	for _, r := range c.doc.Requirements {
		if prev, ok := keys[r.Key]; ok {
			c.add(SeverityError, "duplicate-key", r.ID, "key %s is also used by %s", r.Key, prev)
		}
		keys[r.Key] = r.ID
		if n, ok := model.ParseRequirementKey(r.Key); ok {
			maxKey = max(maxKey, n)
		} else {
			c.add(SeverityWarning, "malformed-key", r.ID, "requirement %q has malformed key %q", r.Title, r.Key)
		}

		if pid := r.ParentID; pid != "" {
			parent := c.requirements[pid]
			switch {
			case parent == nil:
				c.add(SeverityError, "dangling-parent-requirement", r.ID, "%s has missing parent %s", r.Key, pid)
			case !contains(parent.Children, r.ID):
				c.add(SeverityError, "child-mismatch", r.ID, "%s is not listed by its parent %s", r.Key, parent.Key)
			}
		}
		for _, cid := range r.Children {
			if child := c.requirements[cid]; child == nil || child.ParentID != r.ID {
				c.add(SeverityWarning, "child-mismatch", r.ID, "%s lists child %s which does not point back", r.Key, cid)
			}
		}

		suspect := 0
		for _, l := range r.Traces {
			if l.IsSuspect {
				suspect++
				if !contains(r.SuspectLinkIDs, l.ID) {
					c.add(SeverityWarning, "suspect-mismatch", r.ID, "%s link %s is suspect but not listed", r.Key, l.ID)
				}
			}
			switch l.TargetType {
			case model.TargetRequirement:
				if c.requirements[l.TargetID] == nil {
					c.add(SeverityWarning, "dangling-trace", r.ID, "%s %s missing requirement %s", r.Key, l.LinkType, l.TargetID)
				}
			case model.TargetTask:
				if c.tasks[l.TargetID] == nil {
					c.add(SeverityWarning, "dangling-trace", r.ID, "%s %s missing task %s", r.Key, l.LinkType, l.TargetID)
				}
			}
		}
		if r.HasSuspectLinks != (len(r.SuspectLinkIDs) > 0) {
			c.add(SeverityWarning, "suspect-mismatch", r.ID, "%s hasSuspectLinks=%t with %d listed suspect links", r.Key, r.HasSuspectLinks, len(r.SuspectLinkIDs))
		}
		if suspect < len(r.SuspectLinkIDs) {
			c.add(SeverityWarning, "suspect-mismatch", r.ID, "%s lists %d suspect links but %d are flagged", r.Key, len(r.SuspectLinkIDs), suspect)
		}
	}
	if counter := c.doc.Metadata.RequirementKeyCounter; counter < maxKey {
		c.add(SeverityError, "key-counter-behind", "", "requirement key counter %d is below the highest key REQ-%03d; new keys would collide", counter, maxKey)
	}
}

func (c *checker) checkNotes() {
	for _, n := range c.doc.Notes {
		if n.ProjectID != "" && c.projects[n.ProjectID] == nil {
			c.add(SeverityWarning, "dangling-note-project", n.ID, "note %q belongs to missing project %s", n.Title, n.ProjectID)
		}
		for _, rid := range n.LinkedRequirementIDs {
			if c.requirements[rid] == nil {
				c.add(SeverityWarning, "dangling-note-link", n.ID, "note %q links missing requirement %s", n.Title, rid)
			}
		}
		for _, tid := range n.LinkedTaskIDs {
			if c.tasks[tid] == nil {
				c.add(SeverityWarning, "dangling-note-link", n.ID, "note %q links missing task %s", n.Title, tid)
			}
		}
	}
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

// Errors counts findings of error severity.
func Errors(findings []Finding) int {
	n := 0
	for _, f := range findings {
		if f.Severity == SeverityError {
			n++
		}
	}
	return n
}

// Render prints findings.
func Render(findings []Finding) {
	if len(findings) == 0 {
		fmt.Printf("%s✓ No problems found%s\n", ux.Green, ux.Reset)
		return
	}
	for _, f := range findings {
		color := ux.Yellow
		if f.Severity == SeverityError {
			color = ux.Red
		}
		fmt.Printf("  %s%-7s%s %-28s %s\n", color, f.Severity, ux.Reset, f.Kind, f.Detail)
	}
	fmt.Printf("\n%d errors, %d warnings\n", Errors(findings), len(findings)-Errors(findings))
}

func buildPrompt(doc *model.Document, findings []Finding) string {
	shown := findings
	more := ""
	if len(shown) > maxFindings {
		shown = shown[:maxFindings]
		more = fmt.Sprintf(", first %d shown", maxFindings)
	}
	lines := make([]string, len(shown))
	for i, f := range shown {
		lines[i] = fmt.Sprintf("- [%s] %s (%s): %s", f.Severity, f.Kind, f.ID, f.Detail)
	}
	return fmt.Sprintf(explainPrompt, len(findings), more, strings.Join(lines, "\n"),
		len(doc.Projects), len(doc.Tasks), len(doc.Requirements), len(doc.Notes),
		doc.Metadata.RequirementKeyCounter)
}

// Explain asks the model to diagnose findings and suggest repairs.
func Explain(ctx context.Context, client llm.Client, doc *model.Document, findings []Finding) (string, error) {
	if len(findings) == 0 {
		return "", nil
	}
	reply, err := client.Complete(ctx, buildPrompt(doc, findings))
	if err != nil {
		return "", fmt.Errorf("asking model for diagnosis: %w", err)
	}
	return strings.TrimSpace(reply), nil
}
