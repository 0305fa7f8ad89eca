package chat

import (
	"fmt"
	"strings"
	"time"

	"github.com/jorge-barreto/reqtrack/internal/data"
)

// maxListed caps each section of the snapshot.
const maxListed = 50

// Snapshot is the text view of the workspace sent with every request.
type Snapshot struct {
	Today         time.Time
	ActiveProject string
	Projects      []string
	Milestones    []string
	Tasks         []string
	Requirements  []string
	Notes         []string
	Omitted       map[string]int // section -> entries left out
}

// Gather builds a snapshot of svc. Milestones, tasks, requirements and notes
// are limited to the active project when one is selected.
func Gather(svc *data.Service, now time.Time) *Snapshot {
	s := &Snapshot{Today: now, Omitted: map[string]int{}}
	active := svc.ActiveProjectID()

	names := map[string]string{}
	for _, p := range svc.Projects() {
		names[p.ID] = p.Name
		line := fmt.Sprintf("- %s (id: %s) status=%s progress=%d%%", p.Name, p.ID, p.Status, p.Progress)
		if p.ID == active {
			line += " [active]"
			s.ActiveProject = fmt.Sprintf("%s (id: %s)", p.Name, p.ID)
		}
		s.Projects = append(s.Projects, line)
	}

	milestoneNames := map[string]string{}
	for _, ref := range svc.AllMilestones() {
		milestoneNames[ref.Milestone.ID] = ref.Milestone.Name
	}
	for _, ref := range svc.MilestonesByActiveProject() {
		m := ref.Milestone
		pr, _ := svc.MilestoneProgress(m.ID)
		s.Milestones = append(s.Milestones, fmt.Sprintf("- %s (id: %s) project=%s due=%s status=%s tasks=%d/%d done",
			m.Name, m.ID, ref.ProjectName, m.DueDate.Format(time.DateOnly), m.Status, pr.Completed, pr.Linked))
	}

	for _, t := range svc.TasksByActiveProject() {
		var b strings.Builder
		fmt.Fprintf(&b, "- %s (id: %s) status=%s priority=%s", t.Title, t.ID, t.Status, t.Priority)
		if t.DueDate != nil {
			fmt.Fprintf(&b, " due=%s", t.DueDate.Format(time.DateOnly))
			if t.Overdue(now) {
				b.WriteString(" [overdue]")
			}
		}
		if t.Assignee != "" {
			fmt.Fprintf(&b, " assignee=%s", t.Assignee)
		}
		if name := milestoneNames[t.LinkedMilestoneID]; name != "" {
			fmt.Fprintf(&b, " milestone=%q", name)
		}
		if active == "" && t.ProjectID != "" {
			fmt.Fprintf(&b, " project=%q", names[t.ProjectID])
		}
		s.Tasks = append(s.Tasks, b.String())
	}

	for _, r := range svc.RequirementsByActiveProject() {
		line := fmt.Sprintf("- %s %s (id: %s) type=%s status=%s priority=%s coverage=%d%%",
			r.Key, r.Title, r.ID, r.Type, r.Status, r.Priority, r.TestCoverage)
		if r.HasSuspectLinks {
			line += " [suspect]"
		}
		if r.IsLocked {
			line += " [locked]"
		}
		if n := len(r.Traces); n > 0 {
			line += fmt.Sprintf(" links=%d", n)
		}
		s.Requirements = append(s.Requirements, line)
	}

	for _, n := range svc.NotesByActiveProject() {
		line := fmt.Sprintf("- %s (id: %s) category=%s", n.Title, n.ID, n.Category)
		if n.IsPinned {
			line += " [pinned]"
		}
		s.Notes = append(s.Notes, line)
	}

	s.Projects = s.cap("projects", s.Projects)
	s.Milestones = s.cap("milestones", s.Milestones)
	s.Tasks = s.cap("tasks", s.Tasks)
	s.Requirements = s.cap("requirements", s.Requirements)
	s.Notes = s.cap("notes", s.Notes)
	return s
}

func (s *Snapshot) cap(section string, lines []string) []string {
	if len(lines) <= maxListed {
		return lines
	}
	s.Omitted[section] = len(lines) - maxListed
	return lines[:maxListed]
}

// Render formats the snapshot as a prompt section.
func (s *Snapshot) Render() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Today: %s\n", s.Today.Format(time.DateOnly))
	if s.ActiveProject != "" {
		fmt.Fprintf(&buf, "Active project: %s\n", s.ActiveProject)
	} else {
		buf.WriteString("Active project: none\n")
	}
	s.section(&buf, "Projects", "projects", s.Projects)
	s.section(&buf, "Milestones", "milestones", s.Milestones)
	s.section(&buf, "Tasks", "tasks", s.Tasks)
	s.section(&buf, "Requirements", "requirements", s.Requirements)
	s.section(&buf, "Notes", "notes", s.Notes)
	return buf.String()
}

func (s *Snapshot) section(buf *strings.Builder, title, key string, lines []string) {
	fmt.Fprintf(buf, "\n### %s\n", title)
	if len(lines) == 0 {
		buf.WriteString("(none)\n")
		return
	}
	for _, l := range lines {
		buf.WriteString(l)
		buf.WriteByte('\n')
	}
	if n := s.Omitted[key]; n > 0 {
		fmt.Fprintf(buf, "... and %d more\n", n)
	}
}

