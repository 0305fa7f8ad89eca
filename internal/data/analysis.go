package data

import (
	"sort"
	"time"

	"github.com/jorge-barreto/reqtrack/internal/model"
)

// Statistics summarizes the active project, or the whole workspace when no
// project is active.
type Statistics struct {
	ActiveProjectID      string         `json:"activeProjectId,omitempty"`
	Projects             int            `json:"projects"`
	Milestones           int            `json:"milestones"`
	Tasks                int            `json:"tasks"`
	TasksByStatus        map[string]int `json:"tasksByStatus"`
	OverdueTasks         int            `json:"overdueTasks"`
	Requirements         int            `json:"requirements"`
	RequirementsByStatus map[string]int `json:"requirementsByStatus"`
	SuspectRequirements  int            `json:"suspectRequirements"`
	LockedRequirements   int            `json:"lockedRequirements"`
	Notes                int            `json:"notes"`
	Baselines            int            `json:"baselines"`
	CoveragePercentage   float64        `json:"coveragePercentage"`
}

func (s *Service) Statistics() Statistics {
	cov := s.GenerateCoverageReport()
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	st := Statistics{
		ActiveProjectID:      s.doc.Metadata.ActiveProjectID,
		Projects:             len(s.doc.Projects),
		TasksByStatus:        map[string]int{},
		RequirementsByStatus: map[string]int{},
		Baselines:            len(s.doc.Baselines),
		CoveragePercentage:   cov.Percentage,
	}
	for _, p := range s.doc.Projects {
		if s.inScope(p.ID) {
			st.Milestones += len(p.Milestones)
		}
	}
	for _, t := range s.doc.Tasks {
		if !s.inScope(t.ProjectID) {
			continue
		}
		st.Tasks++
		st.TasksByStatus[string(t.Status)]++
		if t.Overdue(now) {
			st.OverdueTasks++
		}
	}
	for _, r := range s.doc.Requirements {
		if !s.inScope(r.ProjectID) {
			continue
		}
		st.Requirements++
		st.RequirementsByStatus[string(r.Status)]++
		if r.HasSuspectLinks {
			st.SuspectRequirements++
		}
		if r.IsLocked {
			st.LockedRequirements++
		}
	}
	for _, n := range s.doc.Notes {
		if s.inScope(n.ProjectID) {
			st.Notes++
		}
	}
	return st
}

type TaskSummary struct {
	ID       string             `json:"id"`
	Title    string             `json:"title"`
	Status   model.TaskStatus   `json:"status"`
	Priority model.TaskPriority `json:"priority"`
	DueDate  *time.Time         `json:"dueDate,omitempty"`
	Assignee string             `json:"assignee,omitempty"`
}

func summarizeTask(t model.Task) TaskSummary {
	return TaskSummary{ID: t.ID, Title: t.Title, Status: t.Status, Priority: t.Priority, DueDate: copyTime(t.DueDate), Assignee: t.Assignee}
}

type MilestoneSummary struct {
	ID        string                `json:"id"`
	Name      string                `json:"name"`
	Status    model.MilestoneStatus `json:"status"`
	DueDate   time.Time             `json:"dueDate"`
	Progress  Progress              `json:"progress"`
	DaysLeft  int                   `json:"daysLeft"`
	ProjectID string                `json:"projectId"`
}

// ProjectSummary is a project's status at a glance.
type ProjectSummary struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	Status       model.ProjectStatus `json:"status"`
	Progress     int                 `json:"progress"`
	Active       bool                `json:"active"`
	TaskCounts   map[string]int      `json:"taskCounts"`
	Milestones   []MilestoneSummary  `json:"milestones"`
	Requirements int                 `json:"requirements"`
	OverdueTasks []TaskSummary       `json:"overdueTasks"`
}

func (s *Service) ProjectSummary(id string) (ProjectSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.project(id)
	if p == nil {
		return ProjectSummary{}, notFound("project", id)
	}
	now := s.now()
	sum := ProjectSummary{
		ID:           p.ID,
		Name:         p.Name,
		Status:       p.Status,
		Progress:     p.Progress,
		Active:       s.doc.Metadata.ActiveProjectID == p.ID,
		TaskCounts:   map[string]int{},
		Milestones:   []MilestoneSummary{},
		Requirements: len(p.RequirementIDs),
		OverdueTasks: []TaskSummary{},
	}
	for i := range p.Milestones {
		sum.Milestones = append(sum.Milestones, s.milestoneSummary(p, &p.Milestones[i], now))
	}
	for _, tid := range p.TaskIDs {
		t := s.task(tid)
		if t == nil {
			continue
		}
		sum.TaskCounts[string(t.Status)]++
		if t.Overdue(now) {
			sum.OverdueTasks = append(sum.OverdueTasks, summarizeTask(*t))
		}
	}
	return sum, nil
}

func (s *Service) milestoneSummary(p *model.Project, m *model.Milestone, now time.Time) MilestoneSummary {
	return MilestoneSummary{
		ID:        m.ID,
		Name:      m.Name,
		Status:    m.Status,
		DueDate:   m.DueDate,
		Progress:  s.milestoneProgress(m),
		DaysLeft:  daysBetween(now, m.DueDate),
		ProjectID: p.ID,
	}
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}

func milestoneOpen(m *model.Milestone) bool {
	return m.Status != model.MilestoneCompleted && m.Status != model.MilestoneCancelled
}

// ScheduleReport lists schedule problems within a look-ahead horizon.
type ScheduleReport struct {
	ProjectID           string             `json:"projectId,omitempty"`
	Horizon             string             `json:"horizon"`
	OverdueTasks        []TaskSummary      `json:"overdueTasks"`
	DueSoonTasks        []TaskSummary      `json:"dueSoonTasks"`
	OverdueMilestones   []MilestoneSummary `json:"overdueMilestones"`
	UpcomingMilestones  []MilestoneSummary `json:"upcomingMilestones"`
	AtRiskMilestones    []MilestoneSummary `json:"atRiskMilestones"`
	UnscheduledOpenWork int                `json:"unscheduledOpenWork"`
}

// DefaultHorizon is the look-ahead used when AnalyzeSchedule gets zero.
const DefaultHorizon = 14 * 24 * time.Hour

// AnalyzeSchedule reports overdue and upcoming work for a project (the
// active project when projectID is empty, everything when none is active).
// An open milestone due within the horizon is at risk when under half of its
// linked tasks are done or any linked task is blocked or overdue.
func (s *Service) AnalyzeSchedule(projectID string, horizon time.Duration) (ScheduleReport, error) {
	if horizon <= 0 {
		horizon = DefaultHorizon
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	projectID, err := s.scope(projectID)
	if err != nil {
		return ScheduleReport{}, err
	}
	now := s.now()
	limit := now.Add(horizon)
	rep := ScheduleReport{
		ProjectID:          projectID,
		Horizon:            horizon.String(),
		OverdueTasks:       []TaskSummary{},
		DueSoonTasks:       []TaskSummary{},
		OverdueMilestones:  []MilestoneSummary{},
		UpcomingMilestones: []MilestoneSummary{},
		AtRiskMilestones:   []MilestoneSummary{},
	}
	for _, t := range s.doc.Tasks {
		if (projectID != "" && t.ProjectID != projectID) || !t.Status.Open() {
			continue
		}
		switch {
		case t.DueDate == nil:
			rep.UnscheduledOpenWork++
		case t.DueDate.Before(now):
			rep.OverdueTasks = append(rep.OverdueTasks, summarizeTask(t))
		case !t.DueDate.After(limit):
			rep.DueSoonTasks = append(rep.DueSoonTasks, summarizeTask(t))
		}
	}
	for i := range s.doc.Projects {
		p := &s.doc.Projects[i]
		if projectID != "" && p.ID != projectID {
			continue
		}
		for j := range p.Milestones {
			m := &p.Milestones[j]
			if !milestoneOpen(m) {
				continue
			}
			sum := s.milestoneSummary(p, m, now)
			switch {
			case m.DueDate.Before(now):
				rep.OverdueMilestones = append(rep.OverdueMilestones, sum)
			case !m.DueDate.After(limit):
				rep.UpcomingMilestones = append(rep.UpcomingMilestones, sum)
				if s.milestoneAtRisk(m, sum.Progress, now) {
					rep.AtRiskMilestones = append(rep.AtRiskMilestones, sum)
				}
			}
		}
	}
	sortTasksByDue(rep.OverdueTasks)
	sortTasksByDue(rep.DueSoonTasks)
	return rep, nil
}

func (s *Service) milestoneAtRisk(m *model.Milestone, pr Progress, now time.Time) bool {
	if pr.Linked > 0 && pr.Percent < 50 {
		return true
	}
	for _, tid := range m.LinkedTaskIDs {
		if t := s.task(tid); t != nil && (t.Status == model.TaskBlocked || t.Overdue(now)) {
			return true
		}
	}
	return false
}

func sortTasksByDue(ts []TaskSummary) {
	sort.SliceStable(ts, func(i, j int) bool {
		return ts[i].DueDate.Before(*ts[j].DueDate)
	})
}

// scope resolves an optional project id against the active project.
func (s *Service) scope(projectID string) (string, error) {
	if projectID == "" {
		projectID = s.doc.Metadata.ActiveProjectID
	}
	if projectID != "" && s.project(projectID) == nil {
		return "", notFound("project", projectID)
	}
	return projectID, nil
}

type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

var severityRank = map[Severity]int{SeverityHigh: 0, SeverityMedium: 1, SeverityLow: 2}

type Risk struct {
	Severity Severity `json:"severity"`
	Kind     string   `json:"kind"`
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Detail   string   `json:"detail"`
}

type RiskReport struct {
	ProjectID string         `json:"projectId,omitempty"`
	Risks     []Risk         `json:"risks"`
	Counts    map[string]int `json:"counts"`
}

// AnalyzeRisks collects risk items for a project, most severe first.
func (s *Service) AnalyzeRisks(projectID string) (RiskReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	projectID, err := s.scope(projectID)
	if err != nil {
		return RiskReport{}, err
	}
	now := s.now()
	rep := RiskReport{ProjectID: projectID, Risks: []Risk{}, Counts: map[string]int{}}
	add := func(r Risk) {
		rep.Risks = append(rep.Risks, r)
		rep.Counts[string(r.Severity)]++
	}
	inProject := func(id string) bool { return projectID == "" || id == projectID }

	for _, t := range s.doc.Tasks {
		if !inProject(t.ProjectID) {
			continue
		}
		if t.Status == model.TaskBlocked {
			add(Risk{SeverityMedium, "blocked-task", t.ID, t.Title, "task is blocked"})
		}
		if t.Overdue(now) {
			sev := SeverityMedium
			if t.Priority == model.PriorityUrgent || t.Priority == model.PriorityHigh {
				sev = SeverityHigh
			}
			add(Risk{sev, "overdue-task", t.ID, t.Title, "due " + t.DueDate.Format(time.DateOnly)})
		}
		if t.Priority == model.PriorityUrgent && t.Assignee == "" && t.Status.Open() {
			add(Risk{SeverityMedium, "unassigned-urgent-task", t.ID, t.Title, "urgent task has no assignee"})
		}
	}
	for _, p := range s.doc.Projects {
		if !inProject(p.ID) {
			continue
		}
		for i := range p.Milestones {
			m := &p.Milestones[i]
			if milestoneOpen(m) && m.DueDate.Before(now) {
				add(Risk{SeverityHigh, "overdue-milestone", m.ID, m.Name, "due " + m.DueDate.Format(time.DateOnly)})
			}
		}
	}
	for _, r := range s.doc.Requirements {
		if !inProject(r.ProjectID) {
			continue
		}
		if r.HasSuspectLinks {
			add(Risk{SeverityMedium, "suspect-requirement", r.ID, r.Key + " " + r.Title, "trace links need review"})
		}
		if r.TestCoverage == 0 && needsCoverage(r.Status) {
			add(Risk{SeverityLow, "untested-requirement", r.ID, r.Key + " " + r.Title, "status " + string(r.Status) + " with no test coverage"})
		}
		for _, l := range r.Traces {
			if (l.TargetType == model.TargetRequirement && s.requirement(l.TargetID) == nil) ||
				(l.TargetType == model.TargetTask && s.task(l.TargetID) == nil) {
				add(Risk{SeverityLow, "dangling-trace", r.ID, r.Key + " " + r.Title, string(l.TargetType) + " " + l.TargetID + " no longer exists"})
			}
		}
	}
	sort.SliceStable(rep.Risks, func(i, j int) bool {
		return severityRank[rep.Risks[i].Severity] < severityRank[rep.Risks[j].Severity]
	})
	return rep, nil
}

func needsCoverage(st model.RequirementStatus) bool {
	switch st {
	case model.ReqImplemented, model.ReqVerified, model.ReqValidated, model.ReqReleased:
		return true
	}
	return false
}
